package export

import (
	"fmt"
	"io"
	"strings"

	"github.com/iksnae/mirova/internal"
)

// MarkdownExporter exports a history document as readable Markdown.
// Image bytes are summarised rather than inlined.
type MarkdownExporter struct{}

// Export writes doc as Markdown
func (e *MarkdownExporter) Export(doc *Document, w io.Writer) error {
	identity := doc.Identity
	if identity == "" {
		identity = "anonymous"
	}
	_, _ = fmt.Fprintf(w, "# History for %s\n\n", identity)
	if doc.ExportedAt != "" {
		_, _ = fmt.Fprintf(w, "**Exported:** %s  \n", doc.ExportedAt)
	}
	_, _ = fmt.Fprintf(w, "**Items:** %d\n\n", len(doc.Items))

	for i, item := range doc.Items {
		_, _ = fmt.Fprintf(w, "---\n\n")
		_, _ = fmt.Fprintf(w, "## %d. %s\n\n", i+1, escapeMarkdown(item.Title()))
		_, _ = fmt.Fprintf(w, "**Feature:** %s  \n", item.Feature)
		_, _ = fmt.Fprintf(w, "**Time:** %s\n\n", item.Timestamp)

		switch p := item.Payload.(type) {
		case internal.ChatSession:
			writeChat(w, p)
		case internal.ImageSession:
			writeImage(w, p)
		case internal.CoderSession:
			_, _ = fmt.Fprintf(w, "**Language:** %s\n\n", p.Language)
			_, _ = fmt.Fprintf(w, "%s\n\n", p.Result)
		case internal.SttResult:
			_, _ = fmt.Fprintf(w, "**Language:** %s\n\n", p.Language)
			_, _ = fmt.Fprintf(w, "%s\n\n", escapeMarkdown(p.Result.Text))
		}
	}

	return nil
}

func writeChat(w io.Writer, s internal.ChatSession) {
	for _, msg := range s.Messages {
		attachments := ""
		if n := len(msg.Images); n > 0 {
			attachments = fmt.Sprintf(" (%d image(s))", n)
		}
		_, _ = fmt.Fprintf(w, "**%s:**%s\n\n%s\n\n", msg.Role, attachments, escapeMarkdown(msg.Text))
	}
}

func writeImage(w io.Writer, s internal.ImageSession) {
	_, _ = fmt.Fprintf(w, "**Style:** %s  \n", s.Style)
	_, _ = fmt.Fprintf(w, "**Resolution:** %s  \n", s.Resolution)
	_, _ = fmt.Fprintf(w, "**Source images:** %d\n\n", len(s.SourceImages))
	if s.GeneratedImage != "" {
		_, _ = fmt.Fprintf(w, "_Generated image: %d bytes (base64)_\n\n", len(s.GeneratedImage))
	}
}

// escapeMarkdown escapes markdown special characters
func escapeMarkdown(text string) string {
	// Basic escaping - preserve code blocks
	lines := strings.Split(text, "\n")
	var result []string
	inCodeBlock := false

	for _, line := range lines {
		if strings.HasPrefix(line, "```") {
			inCodeBlock = !inCodeBlock
			result = append(result, line)
		} else if inCodeBlock {
			result = append(result, line)
		} else {
			line = strings.ReplaceAll(line, "**", "\\*\\*")
			line = strings.ReplaceAll(line, "__", "\\_\\_")
			result = append(result, line)
		}
	}

	return strings.Join(result, "\n")
}

// Extension returns the file extension for this format
func (e *MarkdownExporter) Extension() string {
	return "md"
}
