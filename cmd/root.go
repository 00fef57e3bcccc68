package cmd

import (
	"fmt"
	"os"

	"github.com/iksnae/mirova/internal"
	"github.com/spf13/cobra"
)

var (
	verbose     bool
	storagePath string
	configPath  string
	version     string = "dev"
	commit      string = "unknown"
	date        string = "unknown"
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "mirova",
	Short: "Chat, image, code and transcription workspace backed by Gemini",
	Long: `MIROVA is a terminal workspace for generative AI.

It keeps tabbed chat, image and code sessions, a speech-to-text pad, and a
per-user history of everything you generate, stored locally.

Features:
  • Chat with image attachments and optional spoken replies
  • Text-to-image generation and multi-image editing
  • Code generation in any language
  • Streaming transcription of audio files
  • Per-user history with restore and export (JSONL, Markdown, YAML, JSON)

Quick Start:
  mirova login --first Ada --last Lovelace --email ada@example.com --password secret
  mirova shell                          # Interactive workspace
  mirova history list                   # Past interactions
  mirova history export --format md     # Export as Markdown

The API key is read from MIROVA_GENAI_API_KEY, GEMINI_API_KEY or the config file.`,
	Version: fmt.Sprintf("%s (commit: %s, built: %s)", version, commit, date),
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		internal.SetVerbose(verbose)
	},
	SilenceUsage: true,
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	defer internal.SyncLogger()
	if err := rootCmd.Execute(); err != nil {
		internal.PrintError(fmt.Sprintf("Error: %v", err))
		internal.SyncLogger()
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose logging")
	rootCmd.PersistentFlags().StringVar(&storagePath, "storage", "", "Custom storage location (database file, or directory for the file backend)")
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "Config file (default $MIROVA_HOME/config.toml)")

	// Set version template to ensure --version flag works
	rootCmd.SetVersionTemplate(`{{printf "%s\n" .Version}}`)
}
