package export

import (
	"io"

	"gopkg.in/yaml.v3"
)

// YAMLExporter exports a history document in YAML format
type YAMLExporter struct{}

// Export writes doc as YAML
func (e *YAMLExporter) Export(doc *Document, w io.Writer) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	defer func() { _ = enc.Close() }()

	return enc.Encode(doc)
}

// Extension returns the file extension for this format
func (e *YAMLExporter) Extension() string {
	return "yaml"
}
