package cmd

import (
	"errors"
	"fmt"

	"github.com/iksnae/mirova/internal"
	"github.com/spf13/cobra"
)

var loginForm internal.LoginForm

var loginCmd = &cobra.Command{
	Use:   "login",
	Short: "Sign in and switch to your history",
	Long: `Sign in with your name, email and a password of at most 8 characters.

The password is only validated, never stored. Your email selects the history
that later commands read and write.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		user, err := internal.ValidateLogin(loginForm)
		if err != nil {
			var verr *internal.ValidationError
			if errors.As(err, &verr) {
				return errors.New(verr.Message)
			}
			return err
		}

		a, err := openApp(cmd.Context())
		if err != nil {
			return err
		}
		defer a.Close()

		if err := a.ws.Auth.Login(cmd.Context(), user); err != nil {
			return fmt.Errorf("failed to save sign-in: %w", err)
		}
		internal.PrintSuccess(fmt.Sprintf("Signed in as %s <%s> (%d history item(s))",
			user.DisplayName(), user.Email, a.ws.History.Len()))
		return nil
	},
}

var logoutCmd = &cobra.Command{
	Use:   "logout",
	Short: "Sign out",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := openApp(cmd.Context())
		if err != nil {
			return err
		}
		defer a.Close()

		if _, ok := a.ws.Auth.Current(); !ok {
			internal.PrintInfo("Not signed in")
			return nil
		}
		if err := a.ws.Auth.Logout(cmd.Context()); err != nil {
			return fmt.Errorf("failed to sign out: %w", err)
		}
		internal.PrintSuccess("Signed out")
		return nil
	},
}

var whoamiCmd = &cobra.Command{
	Use:   "whoami",
	Short: "Show the signed-in user",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := openApp(cmd.Context())
		if err != nil {
			return err
		}
		defer a.Close()

		out := cmd.OutOrStdout()
		user, ok := a.ws.Auth.Current()
		if !ok {
			fmt.Fprintln(out, "anonymous")
			return nil
		}
		fmt.Fprintf(out, "%s <%s>\n", user.DisplayName(), user.Email)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(loginCmd, logoutCmd, whoamiCmd)
	loginCmd.Flags().StringVar(&loginForm.FirstName, "first", "", "First name")
	loginCmd.Flags().StringVar(&loginForm.LastName, "last", "", "Last name")
	loginCmd.Flags().StringVar(&loginForm.Email, "email", "", "Email address")
	loginCmd.Flags().StringVar(&loginForm.Password, "password", "", "Password (at most 8 characters)")
}
