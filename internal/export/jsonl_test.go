package export

import (
	"bufio"
	"bytes"
	"encoding/json"
	"testing"

	"github.com/iksnae/mirova/internal"
)

func TestJSONLExporter_Export(t *testing.T) {
	var buf bytes.Buffer
	doc := sampleDocument()

	if err := (&JSONLExporter{}).Export(doc, &buf); err != nil {
		t.Fatalf("JSONLExporter.Export() error = %v", err)
	}

	scanner := bufio.NewScanner(&buf)
	var lines int
	for scanner.Scan() {
		var item internal.HistoryItem
		if err := json.Unmarshal(scanner.Bytes(), &item); err != nil {
			t.Fatalf("line %d is not a history item: %v", lines+1, err)
		}
		if item.ID != doc.Items[lines].ID {
			t.Errorf("line %d id = %q, want %q", lines+1, item.ID, doc.Items[lines].ID)
		}
		lines++
	}
	if lines != len(doc.Items) {
		t.Errorf("got %d lines, want %d", lines, len(doc.Items))
	}
}

func TestJSONLExporter_Empty(t *testing.T) {
	var buf bytes.Buffer
	if err := (&JSONLExporter{}).Export(&Document{}, &buf); err != nil {
		t.Fatal(err)
	}
	if buf.Len() != 0 {
		t.Errorf("expected no output, got %q", buf.String())
	}
}

func TestJSONLExporter_Extension(t *testing.T) {
	if got := (&JSONLExporter{}).Extension(); got != "jsonl" {
		t.Errorf("JSONLExporter.Extension() = %v, want jsonl", got)
	}
}
