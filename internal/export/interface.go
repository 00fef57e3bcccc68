package export

import (
	"fmt"
	"io"

	"github.com/iksnae/mirova/internal"
)

// Document is the exported history of one identity
type Document struct {
	Identity   string                 `json:"identity" yaml:"identity"`
	ExportedAt string                 `json:"exportedAt" yaml:"exportedAt"`
	Items      []internal.HistoryItem `json:"items" yaml:"items"`
}

// Exporter defines the interface for all export formats
type Exporter interface {
	Export(doc *Document, w io.Writer) error
	Extension() string
}

// NewExporter creates a new exporter based on format
func NewExporter(format string) (Exporter, error) {
	switch format {
	case "jsonl":
		return &JSONLExporter{}, nil
	case "md", "markdown":
		return &MarkdownExporter{}, nil
	case "yaml":
		return &YAMLExporter{}, nil
	case "json":
		return &JSONExporter{}, nil
	default:
		return nil, fmt.Errorf("unsupported format: %s (supported: jsonl, md, yaml, json)", format)
	}
}
