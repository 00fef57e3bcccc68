package export

import (
	"bytes"
	"strings"
	"testing"

	"gopkg.in/yaml.v3"
)

func TestYAMLExporter_Export(t *testing.T) {
	var buf bytes.Buffer

	if err := (&YAMLExporter{}).Export(sampleDocument(), &buf); err != nil {
		t.Fatalf("YAMLExporter.Export() error = %v", err)
	}

	var generic map[string]any
	if err := yaml.Unmarshal(buf.Bytes(), &generic); err != nil {
		t.Fatalf("output is not valid YAML: %v", err)
	}
	if generic["identity"] != "ada@example.com" {
		t.Errorf("identity = %v", generic["identity"])
	}
	items, ok := generic["items"].([]any)
	if !ok || len(items) != 4 {
		t.Fatalf("items = %#v", generic["items"])
	}

	output := buf.String()
	for _, want := range []string{"feature: Mirova Coder", "language: Go", "text: namaste", "generatedImage: aW1hZ2U="} {
		if !strings.Contains(output, want) {
			t.Errorf("output should contain %q, got:\n%s", want, output)
		}
	}
}

func TestYAMLExporter_Extension(t *testing.T) {
	if got := (&YAMLExporter{}).Extension(); got != "yaml" {
		t.Errorf("YAMLExporter.Extension() = %v, want yaml", got)
	}
}
