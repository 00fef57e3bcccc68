package cmd

import (
	"context"
	"fmt"

	"github.com/iksnae/mirova/internal"
	"github.com/spf13/cobra"
)

var themeCmd = &cobra.Command{
	Use:       "theme [light|dark|toggle]",
	Short:     "Show or change the colour theme",
	Args:      cobra.MaximumNArgs(1),
	ValidArgs: []string{"light", "dark", "toggle"},
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := openApp(cmd.Context())
		if err != nil {
			return err
		}
		defer a.Close()

		if len(args) == 0 {
			fmt.Fprintln(cmd.OutOrStdout(), a.ws.Theme.Theme())
			return nil
		}

		t, err := setTheme(cmd.Context(), a.ws.Theme, args[0])
		if err != nil {
			return err
		}
		internal.PrintSuccess(fmt.Sprintf("Theme set to %s", t))
		return nil
	},
}

// setTheme applies "toggle" or a theme name and restyles the output.
// A failed save keeps the new theme for this run; the store logs it.
func setTheme(ctx context.Context, store *internal.ThemeStore, arg string) (internal.Theme, error) {
	if arg == "toggle" {
		t, _ := store.Toggle(ctx)
		internal.ApplyTheme(t)
		return t, nil
	}

	t, err := internal.ParseTheme(arg)
	if err != nil {
		return "", err
	}
	_ = store.Set(ctx, t)
	internal.ApplyTheme(t)
	return t, nil
}

func init() {
	rootCmd.AddCommand(themeCmd)
}
