package cmd

import (
	"bytes"
	"os"
	"testing"

	"github.com/iksnae/mirova/internal"
	"github.com/iksnae/mirova/testutil"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

// setupCommandTest points MIROVA_HOME at a fresh directory and clears the
// environment and flag state left behind by earlier runs
func setupCommandTest(t *testing.T) internal.StoragePaths {
	t.Helper()
	dir := testutil.CreateDataDir(t)
	for _, name := range []string{
		"MIROVA_APP", "MIROVA_STORAGE_BACKEND", "MIROVA_STORAGE_PATH", "MIROVA_HISTORY_MAX_ITEMS",
		"MIROVA_GENAI_API_KEY", "MIROVA_GENAI_BASE_URL", "MIROVA_GENAI_TIMEOUT", "MIROVA_GENAI_SPEAK",
		"MIROVA_GENAI_VOICE", "MIROVA_LOG_LEVEL",
		"GEMINI_API_KEY", "API_KEY",
	} {
		t.Setenv(name, "")
		os.Unsetenv(name)
	}
	resetFlags(rootCmd)
	t.Cleanup(func() { resetFlags(rootCmd) })
	return internal.StoragePathsAt(dir)
}

// resetFlags restores every flag of c and its subcommands to its default
func resetFlags(c *cobra.Command) {
	reset := func(f *pflag.Flag) {
		_ = f.Value.Set(f.DefValue)
		f.Changed = false
	}
	c.Flags().VisitAll(reset)
	c.PersistentFlags().VisitAll(reset)
	for _, sub := range c.Commands() {
		resetFlags(sub)
	}
}

// runCommand executes the root command with args and returns what it wrote to stdout
func runCommand(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var stdout, stderr bytes.Buffer
	rootCmd.SetArgs(args)
	rootCmd.SetOut(&stdout)
	rootCmd.SetErr(&stderr)
	err := rootCmd.Execute()
	resetFlags(rootCmd)
	return stdout.String(), err
}
