package cmd

import (
	"encoding/base64"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/iksnae/mirova/internal"
	"github.com/iksnae/mirova/internal/export"
	"github.com/spf13/cobra"
)

var (
	historyFeature   string
	historyLimit     int
	historySaveImage string
	exportFormat     string
	exportOutputDir  string
	exportUser       string
	exportAll        bool
)

var (
	// Styles
	headerStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("62")).
			Padding(0, 1)

	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("212"))

	idStyle = lipgloss.NewStyle().
		Foreground(lipgloss.Color("240")).
		Italic(true)

	featureStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("135")).
			Italic(true)

	dateStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("243"))

	userMessageStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("39")).
				Bold(true).
				Padding(0, 1)

	modelMessageStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("135")).
				Bold(true).
				Padding(0, 1)

	messageContentStyle = lipgloss.NewStyle().
				Padding(0, 2).
				MarginBottom(1)
)

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Browse, export and clear your history",
	Long: `Every completed chat, image, code and transcription is recorded in the
history of the signed-in user, newest first. Anonymous history lives only as
long as the running process.`,
}

var historyListCmd = &cobra.Command{
	Use:   "list",
	Short: "List history items",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := openApp(cmd.Context())
		if err != nil {
			return err
		}
		defer a.Close()

		items, err := filterItems(a.ws.History.Items(), historyFeature)
		if err != nil {
			return err
		}
		total := len(items)
		if historyLimit > 0 && historyLimit < len(items) {
			items = items[:historyLimit]
		}
		displayHistory(cmd.OutOrStdout(), items, total, time.Now())
		return nil
	},
}

var historyShowCmd = &cobra.Command{
	Use:   "show <item-id>",
	Short: "Show a history item",
	Long:  `Show a history item by its id or a unique id prefix (as printed by 'mirova history list').`,
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := openApp(cmd.Context())
		if err != nil {
			return err
		}
		defer a.Close()

		item, err := findItem(a.ws.History.Items(), args[0])
		if err != nil {
			return err
		}
		displayItem(cmd.OutOrStdout(), item, a.ws.Theme.Theme())

		if historySaveImage != "" {
			return saveImage(item, historySaveImage)
		}
		return nil
	},
}

var historyClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Delete every history item of the signed-in user",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := openApp(cmd.Context())
		if err != nil {
			return err
		}
		defer a.Close()

		n := a.ws.History.Len()
		a.ws.History.Clear(cmd.Context())
		internal.PrintSuccess(fmt.Sprintf("Cleared %d history item(s)", n))
		return nil
	},
}

var historyUsersCmd = &cobra.Command{
	Use:   "users",
	Short: "List identities with stored history",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := openApp(cmd.Context())
		if err != nil {
			return err
		}
		defer a.Close()

		identities, err := a.ws.History.Identities(cmd.Context())
		if err != nil {
			return fmt.Errorf("failed to list identities: %w", err)
		}
		out := cmd.OutOrStdout()
		if len(identities) == 0 {
			fmt.Fprintln(out, headerStyle.Render("📋 No stored history"))
			return nil
		}
		w := tabwriter.NewWriter(out, 0, 0, 3, ' ', 0)
		for _, identity := range identities {
			marker := ""
			if identity == a.ws.History.Identity() {
				marker = "*"
			}
			count := len(a.ws.History.ItemsFor(cmd.Context(), identity))
			_, _ = fmt.Fprintf(w, "%s\t%s\t%d\t\n", marker, identity, count)
		}
		return w.Flush()
	},
}

var historyExportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export history to a file",
	Long: `Export history to jsonl, md, yaml or json.

By default the signed-in user's history is exported. Use --user to export another
stored identity, or --all to export every identity (identical items are written once).`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		exporter, err := export.NewExporter(exportFormat)
		if err != nil {
			return err
		}

		a, err := openApp(cmd.Context())
		if err != nil {
			return err
		}
		defer a.Close()

		docs, err := exportDocuments(cmd, a)
		if err != nil {
			return err
		}

		if err := os.MkdirAll(exportOutputDir, 0755); err != nil {
			return fmt.Errorf("failed to create output directory: %w", err)
		}

		var written []string
		err = internal.ShowProgress(cmd.Context(), fmt.Sprintf("Exporting %d history document(s) to %s", len(docs), exportOutputDir), func() error {
			for _, doc := range docs {
				path, err := writeDocument(exporter, doc, exportOutputDir)
				if err != nil {
					return err
				}
				written = append(written, path)
			}
			return nil
		})
		if err != nil {
			return err
		}

		for _, path := range written {
			fmt.Fprintln(cmd.OutOrStdout(), path)
		}
		internal.PrintSuccess(fmt.Sprintf("Export complete: %d file(s) written to %s", len(written), exportOutputDir))
		return nil
	},
}

func exportDocuments(cmd *cobra.Command, a *app) ([]*export.Document, error) {
	exportedAt := time.Now().UTC().Format(time.RFC3339)
	ctx := cmd.Context()

	switch {
	case exportAll:
		identities, err := a.ws.History.Identities(ctx)
		if err != nil {
			return nil, fmt.Errorf("failed to list identities: %w", err)
		}
		var merged []internal.HistoryItem
		for _, identity := range identities {
			merged = append(merged, a.ws.History.ItemsFor(ctx, identity)...)
		}
		items := internal.NewDeduplicator().Unique(merged)
		if items == nil {
			items = []internal.HistoryItem{}
		}
		return []*export.Document{{Identity: "all", ExportedAt: exportedAt, Items: items}}, nil
	case exportUser != "":
		return []*export.Document{{Identity: exportUser, ExportedAt: exportedAt, Items: a.ws.History.ItemsFor(ctx, exportUser)}}, nil
	default:
		return []*export.Document{{Identity: a.ws.History.Identity(), ExportedAt: exportedAt, Items: a.ws.History.Items()}}, nil
	}
}

// writeDocument writes doc to dir/history_<identity>.<ext> and returns the path
func writeDocument(exporter export.Exporter, doc *export.Document, dir string) (string, error) {
	name := doc.Identity
	if name == "" {
		name = "anonymous"
	}
	path := filepath.Join(dir, fmt.Sprintf("history_%s.%s", sanitizeFileName(name), exporter.Extension()))

	file, err := os.Create(path)
	if err != nil {
		return "", &internal.ExportError{Format: exporter.Extension(), Path: path, Err: err}
	}
	if err := exporter.Export(doc, file); err != nil {
		_ = file.Close()
		return "", &internal.ExportError{Format: exporter.Extension(), Path: path, Err: err}
	}
	if err := file.Close(); err != nil {
		return "", &internal.ExportError{Format: exporter.Extension(), Path: path, Err: err}
	}
	internal.LogDebug("exported %d item(s) to %s", len(doc.Items), path)
	return path, nil
}

func sanitizeFileName(s string) string {
	return strings.Map(func(r rune) rune {
		switch r {
		case '/', '\\', ':', '*', '?', '"', '<', '>', '|', ' ':
			return '_'
		}
		return r
	}, s)
}

// filterItems keeps items of the named feature; an empty name keeps everything
func filterItems(items []internal.HistoryItem, feature string) ([]internal.HistoryItem, error) {
	if feature == "" {
		return items, nil
	}
	f, err := internal.ParseFeature(feature)
	if err != nil {
		return nil, err
	}
	filtered := make([]internal.HistoryItem, 0, len(items))
	for _, item := range items {
		if item.Feature == f {
			filtered = append(filtered, item)
		}
	}
	return filtered, nil
}

// findItem resolves a full id or a unique id prefix
func findItem(items []internal.HistoryItem, ref string) (internal.HistoryItem, error) {
	var matches []internal.HistoryItem
	for _, item := range items {
		if item.ID == ref {
			return item, nil
		}
		if strings.HasPrefix(item.ID, ref) {
			matches = append(matches, item)
		}
	}
	switch len(matches) {
	case 0:
		return internal.HistoryItem{}, fmt.Errorf("history item not found: %s (use 'mirova history list' to see available items)", ref)
	case 1:
		return matches[0], nil
	default:
		return internal.HistoryItem{}, fmt.Errorf("history item id %q is ambiguous (%d matches)", ref, len(matches))
	}
}

func displayHistory(out io.Writer, items []internal.HistoryItem, total int, now time.Time) {
	if len(items) == 0 {
		fmt.Fprintln(out, headerStyle.Render("📋 No history yet"))
		return
	}

	fmt.Fprintln(out, headerStyle.Render(fmt.Sprintf("📋 Found %d item(s)", total)))
	fmt.Fprintln(out)

	w := tabwriter.NewWriter(out, 0, 0, 3, ' ', 0)
	_, _ = fmt.Fprintln(w, titleStyle.Render("ID")+"\t"+titleStyle.Render("Feature")+"\t"+titleStyle.Render("Title")+"\t"+titleStyle.Render("When")+"\t")

	for _, item := range items {
		title := strings.ReplaceAll(item.Title(), "\n", " ")
		_, _ = fmt.Fprintf(w, "%s\t%s\t%s\t%s\t\n",
			idStyle.Render(shortID(item.ID)),
			featureStyle.Render(string(item.Feature)),
			truncate(title, 50),
			dateStyle.Render(formatWhen(item.Time(), now)))
	}
	_ = w.Flush()

	if total > len(items) {
		fmt.Fprintln(out, dateStyle.Italic(true).Render(fmt.Sprintf("... (%d more item(s))", total-len(items))))
	}
}

func displayItem(out io.Writer, item internal.HistoryItem, theme internal.Theme) {
	fmt.Fprintln(out, titleStyle.Render(item.Title()))
	meta := []string{string(item.Feature), item.Timestamp, "id " + item.ID}
	fmt.Fprintln(out, dateStyle.Render(strings.Join(meta, " • ")))
	fmt.Fprintln(out)

	switch p := item.Payload.(type) {
	case internal.ChatSession:
		for i, msg := range p.Messages {
			displayMessage(out, i+1, len(p.Messages), msg, theme)
		}
	case internal.ImageSession:
		fmt.Fprintf(out, "Prompt:     %s\n", p.Prompt)
		fmt.Fprintf(out, "Style:      %s\n", p.Style)
		fmt.Fprintf(out, "Resolution: %s\n", p.Resolution)
		fmt.Fprintf(out, "Sources:    %d image(s)\n", len(p.SourceImages))
		if p.GeneratedImage != "" {
			fmt.Fprintf(out, "Image:      %d bytes (use --save-image to write it)\n", base64.StdEncoding.DecodedLen(len(p.GeneratedImage)))
		}
	case internal.CoderSession:
		fmt.Fprintf(out, "Language: %s\n\n", p.Language)
		fmt.Fprintln(out, renderMarkdown(p.Result, theme))
	case internal.SttResult:
		fmt.Fprintf(out, "Language: %s\n\n", p.Language)
		fmt.Fprintln(out, wrapText(p.Result.Text, 80))
	}
}

func displayMessage(out io.Writer, index, total int, msg internal.Message, theme internal.Theme) {
	label := userMessageStyle.Render("👤 You")
	content := wrapText(strings.TrimSpace(msg.Text), 80)
	if msg.Role == internal.RoleModel {
		label = modelMessageStyle.Render("✨ MIROVA")
		content = renderMarkdown(strings.TrimSpace(msg.Text), theme)
	}

	header := label + " " + idStyle.Render("["+strconv.Itoa(index)+"/"+strconv.Itoa(total)+"]")
	if n := len(msg.Images); n > 0 {
		header += " " + dateStyle.Render(fmt.Sprintf("(%d image(s))", n))
	}
	fmt.Fprintln(out, header)

	if content == "" {
		content = "(empty message)"
	}
	fmt.Fprintln(out, messageContentStyle.Render(content))
}

// saveImage decodes the generated image of an image item into path
func saveImage(item internal.HistoryItem, path string) error {
	session, ok := item.Payload.(internal.ImageSession)
	if !ok || session.GeneratedImage == "" {
		return fmt.Errorf("history item %s has no generated image", item.ID)
	}
	data, err := base64.StdEncoding.DecodeString(session.GeneratedImage)
	if err != nil {
		return &internal.ParseError{Source: "image", Key: item.ID, Err: err}
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return &internal.ExportError{Format: "image", Path: path, Err: err}
	}
	internal.PrintSuccess(fmt.Sprintf("Image saved to %s", path))
	return nil
}

func init() {
	rootCmd.AddCommand(historyCmd)
	historyCmd.AddCommand(historyListCmd, historyShowCmd, historyClearCmd, historyUsersCmd, historyExportCmd)

	historyListCmd.Flags().StringVar(&historyFeature, "feature", "", "Only list one feature (chat, image, code, stt)")
	historyListCmd.Flags().IntVarP(&historyLimit, "limit", "n", 0, "Limit number of items to show")

	historyShowCmd.Flags().StringVar(&historySaveImage, "save-image", "", "Write the generated image of an image item to this file")

	historyExportCmd.Flags().StringVarP(&exportFormat, "format", "f", "jsonl", "Export format (jsonl, md, yaml, json)")
	historyExportCmd.Flags().StringVarP(&exportOutputDir, "out", "o", "./exports", "Output directory")
	historyExportCmd.Flags().StringVar(&exportUser, "user", "", "Export the history of this identity (email)")
	historyExportCmd.Flags().BoolVar(&exportAll, "all", false, "Export the history of every stored identity")
}
