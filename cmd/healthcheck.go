package cmd

import (
	"fmt"
	"io"

	"github.com/charmbracelet/lipgloss"
	"github.com/iksnae/mirova/internal"
	"github.com/spf13/cobra"
)

var (
	successStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("42")).
			Bold(true)

	warningStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("214")).
			Bold(true)

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("196")).
			Bold(true)

	infoStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("39"))

	sectionStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("62")).
			Bold(true).
			Underline(true)
)

var healthcheckCmd = &cobra.Command{
	Use:   "healthcheck",
	Short: "Check configuration, storage and API key",
	Long: `Check the health of mirova by verifying:
  • Data directory and config file detection
  • Configuration loading and validation
  • Storage backend access
  • Signed-in identity and history
  • Generative service API key

This command is useful for debugging setup issues. Pass --verbose for details.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		out := cmd.OutOrStdout()
		fmt.Fprintln(out, sectionStyle.Render("🔍 MIROVA Health Check"))
		fmt.Fprintln(out)

		// Step 1: paths and config
		fmt.Fprintln(out, infoStyle.Render("Step 1: Loading configuration..."))
		cfg, paths, err := loadConfig()
		if err != nil {
			fmt.Fprintln(out, errorStyle.Render("❌ Configuration failed:"), err)
			return err
		}
		fmt.Fprintln(out, successStyle.Render("✅ Configuration loaded"))
		if verbose {
			fmt.Fprintf(out, "   Data dir: %s\n", paths.DataDir)
			if paths.ConfigExists() {
				fmt.Fprintf(out, "   Config: %s\n", paths.Config)
			} else {
				fmt.Fprintf(out, "   Config: none (defaults and environment)\n")
			}
		}
		fmt.Fprintln(out)

		// Step 2: storage
		fmt.Fprintln(out, infoStyle.Render("Step 2: Opening storage..."))
		a, err := openApp(cmd.Context())
		if err != nil {
			fmt.Fprintln(out, errorStyle.Render("❌ Failed to open storage:"), err)
			return err
		}
		defer a.Close()
		fmt.Fprintln(out, successStyle.Render(fmt.Sprintf("✅ %s storage ready", cfg.Storage.Backend)))
		if verbose {
			reportStorage(cmd, out, a)
		}
		fmt.Fprintln(out)

		// Step 3: identity
		fmt.Fprintln(out, infoStyle.Render("Step 3: Checking identity..."))
		if user, ok := a.ws.Auth.Current(); ok {
			fmt.Fprintln(out, successStyle.Render(fmt.Sprintf("✅ Signed in as %s (%d history item(s))", user.Email, a.ws.History.Len())))
		} else {
			fmt.Fprintln(out, warningStyle.Render("⚠️  Not signed in; history will not be saved"))
		}
		fmt.Fprintln(out)

		// Step 4: API key
		fmt.Fprintln(out, infoStyle.Render("Step 4: Checking API key..."))
		apiKeyOK := cfg.GenAI.APIKey != ""
		if apiKeyOK {
			fmt.Fprintln(out, successStyle.Render("✅ API key configured"))
			if verbose {
				fmt.Fprintf(out, "   Endpoint: %s\n", cfg.GenAI.BaseURL)
				fmt.Fprintf(out, "   Chat model: %s\n", cfg.GenAI.ChatModel)
			}
		} else {
			fmt.Fprintln(out, warningStyle.Render("⚠️  No API key; set MIROVA_GENAI_API_KEY or GEMINI_API_KEY"))
		}
		fmt.Fprintln(out)

		fmt.Fprintln(out, sectionStyle.Render("📊 Summary"))
		fmt.Fprintln(out)
		if apiKeyOK {
			fmt.Fprintln(out, successStyle.Render("✅ Health check passed!"))
		} else {
			fmt.Fprintln(out, warningStyle.Render("⚠️  Storage works, generation is unavailable"))
		}
		return nil
	},
}

func reportStorage(cmd *cobra.Command, out io.Writer, a *app) {
	fmt.Fprintf(out, "   Path: %s\n", a.cfg.Storage.Path)
	switch kv := a.ws.KV().(type) {
	case *internal.SQLiteKV:
		count, size, err := kv.Stats(cmd.Context())
		if err != nil {
			fmt.Fprintln(out, warningStyle.Render("   ⚠️  Could not read stats:"), err)
			return
		}
		fmt.Fprintf(out, "   Documents: %d (%d bytes)\n", count, size)
	case *internal.FileKV:
		index, err := kv.LoadIndex()
		if err != nil {
			fmt.Fprintln(out, warningStyle.Render("   ⚠️  Could not read index:"), err)
			return
		}
		fmt.Fprintf(out, "   Documents: %d (index %s)\n", len(index.Entries), kv.IndexPath())
	default:
		fmt.Fprintf(out, "   Type: %T\n", kv)
	}
}

func init() {
	rootCmd.AddCommand(healthcheckCmd)
}
