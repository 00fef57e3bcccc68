package export

import (
	"encoding/json"
	"fmt"
	"io"
)

// JSONLExporter exports one history item per line, in the persisted item shape
type JSONLExporter struct{}

// Export writes each item of doc on its own line
func (e *JSONLExporter) Export(doc *Document, w io.Writer) error {
	enc := json.NewEncoder(w)

	for _, item := range doc.Items {
		if err := enc.Encode(item); err != nil {
			return fmt.Errorf("failed to encode history item %s: %w", item.ID, err)
		}
	}

	return nil
}

// Extension returns the file extension for this format
func (e *JSONLExporter) Extension() string {
	return "jsonl"
}
