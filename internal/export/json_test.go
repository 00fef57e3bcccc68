package export

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/iksnae/mirova/internal"
)

func TestJSONExporter_Export(t *testing.T) {
	tests := []struct {
		name      string
		doc       *Document
		wantItems int
	}{
		{name: "full history", doc: sampleDocument(), wantItems: 4},
		{name: "empty history", doc: &Document{Identity: "bob@example.com", Items: []internal.HistoryItem{}}, wantItems: 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			exporter := &JSONExporter{}

			if err := exporter.Export(tt.doc, &buf); err != nil {
				t.Fatalf("JSONExporter.Export() error = %v", err)
			}

			var got Document
			if err := json.Unmarshal(buf.Bytes(), &got); err != nil {
				t.Fatalf("output is not a valid document: %v\n%s", err, buf.String())
			}
			if got.Identity != tt.doc.Identity {
				t.Errorf("Identity = %q, want %q", got.Identity, tt.doc.Identity)
			}
			if len(got.Items) != tt.wantItems {
				t.Errorf("len(Items) = %d, want %d", len(got.Items), tt.wantItems)
			}
		})
	}
}

func TestJSONExporter_PayloadTypesSurvive(t *testing.T) {
	var buf bytes.Buffer
	if err := (&JSONExporter{}).Export(sampleDocument(), &buf); err != nil {
		t.Fatal(err)
	}

	var got Document
	if err := json.Unmarshal(buf.Bytes(), &got); err != nil {
		t.Fatal(err)
	}
	if _, ok := got.Items[1].Payload.(internal.CoderSession); !ok {
		t.Errorf("Items[1].Payload = %T, want CoderSession", got.Items[1].Payload)
	}
	if !bytes.Contains(buf.Bytes(), []byte("\n  \"identity\"")) {
		t.Error("output should be indented")
	}
}

func TestJSONExporter_Extension(t *testing.T) {
	if got := (&JSONExporter{}).Extension(); got != "json" {
		t.Errorf("JSONExporter.Extension() = %v, want json", got)
	}
}
