package internal

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/charmbracelet/lipgloss"
)

// palette is the set of output styles for one theme
type palette struct {
	progress lipgloss.Style
	success  lipgloss.Style
	err      lipgloss.Style
	warning  lipgloss.Style
	accent   lipgloss.Style
	muted    lipgloss.Style
}

func newPalette(t Theme) palette {
	if t == ThemeLight {
		return palette{
			progress: lipgloss.NewStyle().Foreground(lipgloss.Color("55")).Bold(true),
			success:  lipgloss.NewStyle().Foreground(lipgloss.Color("28")).Bold(true),
			err:      lipgloss.NewStyle().Foreground(lipgloss.Color("160")).Bold(true),
			warning:  lipgloss.NewStyle().Foreground(lipgloss.Color("130")).Bold(true),
			accent:   lipgloss.NewStyle().Foreground(lipgloss.Color("91")).Bold(true),
			muted:    lipgloss.NewStyle().Foreground(lipgloss.Color("244")),
		}
	}
	return palette{
		progress: lipgloss.NewStyle().Foreground(lipgloss.Color("62")).Bold(true),
		success:  lipgloss.NewStyle().Foreground(lipgloss.Color("42")).Bold(true),
		err:      lipgloss.NewStyle().Foreground(lipgloss.Color("196")).Bold(true),
		warning:  lipgloss.NewStyle().Foreground(lipgloss.Color("214")).Bold(true),
		accent:   lipgloss.NewStyle().Foreground(lipgloss.Color("141")).Bold(true),
		muted:    lipgloss.NewStyle().Foreground(lipgloss.Color("245")),
	}
}

var styles = newPalette(DefaultTheme)

// ApplyTheme switches the terminal output styles
func ApplyTheme(t Theme) {
	styles = newPalette(t)
}

// Accent renders s in the theme's accent colour
func Accent(s string) string { return styles.accent.Render(s) }

// Muted renders s dimmed
func Muted(s string) string { return styles.muted.Render(s) }

// ShowProgress runs fn while a spinner with message is shown on stderr
func ShowProgress(ctx context.Context, message string, fn func() error) error {
	// Check if we're in a TTY
	if !isTerminal(os.Stderr) {
		LogDebug(message)
		return fn()
	}
	return showProgressSimple(ctx, message, fn)
}

// showProgressSimple uses a simple text-based spinner
func showProgressSimple(ctx context.Context, message string, fn func() error) error {
	spinnerChars := []string{"⠋", "⠙", "⠹", "⠸", "⠼", "⠴", "⠦", "⠧", "⠇", "⠏"}
	done := make(chan error, 1)
	stop := make(chan struct{})
	spinnerDone := make(chan struct{})

	go func() {
		defer close(spinnerDone)
		ticker := time.NewTicker(100 * time.Millisecond)
		defer ticker.Stop()
		i := 0
		for {
			select {
			case <-stop:
				return
			case <-ticker.C:
				char := spinnerChars[i%len(spinnerChars)]
				fmt.Fprintf(os.Stderr, "\r%s %s", styles.progress.Render(char), message)
				i++
			}
		}
	}()

	go func() {
		done <- fn()
	}()

	var err error
	select {
	case err = <-done:
	case <-ctx.Done():
		err = ctx.Err()
	}
	close(stop)
	<-spinnerDone

	if err != nil {
		fmt.Fprintf(os.Stderr, "\r%s %s\n", styles.err.Render("✗"), message)
		return err
	}
	fmt.Fprintf(os.Stderr, "\r%s %s\n", styles.success.Render("✓"), message)
	return nil
}

// isTerminal checks if the writer is a terminal
func isTerminal(w io.Writer) bool {
	if f, ok := w.(*os.File); ok {
		stat, err := f.Stat()
		if err != nil {
			return false
		}
		return (stat.Mode() & os.ModeCharDevice) != 0
	}
	return false
}

// IsTerminal reports whether stdout is a terminal
func IsTerminal() bool { return isTerminal(os.Stdout) }

// PrintSuccess prints a success message
func PrintSuccess(message string) {
	if isTerminal(os.Stdout) {
		fmt.Printf("%s %s\n", styles.success.Render("✓"), message)
	} else {
		fmt.Println(message)
	}
}

// PrintError prints an error message
func PrintError(message string) {
	if isTerminal(os.Stderr) {
		fmt.Fprintf(os.Stderr, "%s %s\n", styles.err.Render("✗"), message)
	} else {
		fmt.Fprintf(os.Stderr, "%s\n", message)
	}
}

// PrintInfo prints an info message
func PrintInfo(message string) {
	if isTerminal(os.Stdout) {
		fmt.Printf("%s %s\n", styles.progress.Render("ℹ"), message)
	} else {
		fmt.Println(message)
	}
}

// PrintWarning prints a warning message
func PrintWarning(message string) {
	if isTerminal(os.Stderr) {
		fmt.Fprintf(os.Stderr, "%s %s\n", styles.warning.Render("⚠"), message)
	} else {
		fmt.Fprintf(os.Stderr, "WARNING: %s\n", message)
	}
}
