package internal

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
)

// Deduplicator applies the same-session overwrite rule of the history log
type Deduplicator struct{}

// NewDeduplicator creates a new Deduplicator
func NewDeduplicator() *Deduplicator {
	return &Deduplicator{}
}

// Prepend returns a new slice with item first, followed by every entry of items that does
// not describe the same session as item. Payloads without an id never collide.
func (d *Deduplicator) Prepend(items []HistoryItem, item HistoryItem) []HistoryItem {
	out := make([]HistoryItem, 0, len(items)+1)
	out = append(out, item)

	id, ok := payloadID(item.Payload)
	for _, existing := range items {
		if ok {
			if otherID, otherOK := payloadID(existing.Payload); otherOK && otherID == id {
				continue
			}
		}
		out = append(out, existing)
	}
	return out
}

// Unique drops items whose payload content is identical to an earlier item.
// Used when merging histories of several identities for export.
func (d *Deduplicator) Unique(items []HistoryItem) []HistoryItem {
	seen := make(map[string]bool)
	var unique []HistoryItem

	for _, item := range items {
		hash := d.hashPayload(item)
		if !seen[hash] {
			seen[hash] = true
			unique = append(unique, item)
		}
	}

	return unique
}

// hashPayload creates a content-based hash for a history item
func (d *Deduplicator) hashPayload(item HistoryItem) string {
	h := sha256.New()
	h.Write([]byte(item.Feature))
	data, err := json.Marshal(item.Payload)
	if err != nil {
		// unhashable payloads are treated as distinct
		h.Write([]byte(item.ID))
	}
	h.Write(data)
	return hex.EncodeToString(h.Sum(nil))
}

func payloadID(p HistoryPayload) (string, bool) {
	if p == nil {
		return "", false
	}
	id, ok := p.PayloadID()
	if id == "" {
		return "", false
	}
	return id, ok
}
