package internal

import (
	"context"
	"encoding/json"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
)

// isoMillis matches the millisecond ISO-8601 form stored in history documents
const isoMillis = "2006-01-02T15:04:05.000Z07:00"

// HistoryStore is the per-identity log of completed interactions, newest first.
// Every mutation writes the whole list back to the identity's document; write failures
// are logged and never reach the caller.
type HistoryStore struct {
	mu       sync.Mutex
	kv       KVStore
	keys     Keyspace
	identity string
	items    []HistoryItem
	maxItems int
	dedup    *Deduplicator
	now      func() time.Time
	newID    func() string
}

// HistoryOption configures a HistoryStore
type HistoryOption func(*HistoryStore)

// WithMaxItems caps the log length; older items are dropped. Zero means unlimited.
func WithMaxItems(n int) HistoryOption {
	return func(h *HistoryStore) { h.maxItems = n }
}

// WithHistoryClock overrides the timestamp source
func WithHistoryClock(now func() time.Time) HistoryOption {
	return func(h *HistoryStore) { h.now = now }
}

// WithHistoryIDs overrides the item id source
func WithHistoryIDs(newID func() string) HistoryOption {
	return func(h *HistoryStore) { h.newID = newID }
}

// NewHistoryStore creates an anonymous, empty history over kv
func NewHistoryStore(kv KVStore, keys Keyspace, opts ...HistoryOption) *HistoryStore {
	h := &HistoryStore{
		kv:    kv,
		keys:  keys,
		items: []HistoryItem{},
		dedup: NewDeduplicator(),
		now:   time.Now,
		newID: func() string { return uuid.Must(uuid.NewV7()).String() },
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// Load switches to identity and replaces the in-memory list with its persisted document.
// An empty identity is the anonymous namespace, which is never persisted.
func (h *HistoryStore) Load(ctx context.Context, identity string) {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.identity = identity
	h.items = h.read(ctx, identity)
	LogDebug("history loaded for %q: %d items", identity, len(h.items))
}

func (h *HistoryStore) read(ctx context.Context, identity string) []HistoryItem {
	if identity == "" {
		return []HistoryItem{}
	}
	key := h.keys.History(identity)
	raw, ok, err := h.kv.Get(ctx, key)
	if err != nil {
		LogWarn("Failed to read history: %v", err)
		return []HistoryItem{}
	}
	if !ok {
		return []HistoryItem{}
	}

	var items []HistoryItem
	if err := json.Unmarshal([]byte(raw), &items); err != nil {
		LogWarn("Discarding history: %v", &ParseError{Source: "history", Key: key, Err: err})
		return []HistoryItem{}
	}
	if items == nil {
		items = []HistoryItem{}
	}
	return items
}

// Append records a completed interaction and returns the stored item
func (h *HistoryStore) Append(ctx context.Context, feature Feature, payload HistoryPayload) HistoryItem {
	h.mu.Lock()
	defer h.mu.Unlock()

	item := HistoryItem{
		ID:        h.newID(),
		Feature:   feature,
		Payload:   clonePayload(payload),
		Timestamp: h.now().UTC().Format(isoMillis),
	}

	items := h.dedup.Prepend(h.items, item)
	if h.maxItems > 0 && len(items) > h.maxItems {
		items = items[:h.maxItems]
	}
	h.items = items
	h.persist(ctx)
	return item
}

// Clear empties the current identity's history
func (h *HistoryStore) Clear(ctx context.Context) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.items = []HistoryItem{}
	h.persist(ctx)
}

func (h *HistoryStore) persist(ctx context.Context) {
	if h.identity == "" {
		return
	}
	data, err := json.Marshal(h.items)
	if err != nil {
		LogWarn("Failed to encode history: %v", err)
		return
	}
	if err := h.kv.Set(ctx, h.keys.History(h.identity), string(data)); err != nil {
		LogWarn("Failed to save history: %v", err)
	}
}

// Items returns a copy of the log, newest first
func (h *HistoryStore) Items() []HistoryItem {
	h.mu.Lock()
	defer h.mu.Unlock()
	out := make([]HistoryItem, len(h.items))
	for i, item := range h.items {
		item.Payload = clonePayload(item.Payload)
		out[i] = item
	}
	return out
}

// Find returns the item with id
func (h *HistoryStore) Find(id string) (HistoryItem, bool) {
	h.mu.Lock()
	defer h.mu.Unlock()
	for _, item := range h.items {
		if item.ID == id {
			item.Payload = clonePayload(item.Payload)
			return item, true
		}
	}
	return HistoryItem{}, false
}

// Identity returns the namespace currently loaded; empty when anonymous
func (h *HistoryStore) Identity() string {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.identity
}

// Len returns the number of items
func (h *HistoryStore) Len() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.items)
}

// Identities lists every identity with a persisted history document
func (h *HistoryStore) Identities(ctx context.Context) ([]string, error) {
	prefix := h.keys.HistoryPrefix()
	keys, err := h.kv.Keys(ctx, prefix)
	if err != nil {
		return nil, err
	}
	ids := make([]string, 0, len(keys))
	for _, k := range keys {
		ids = append(ids, strings.TrimPrefix(k, prefix))
	}
	return ids, nil
}

// ItemsFor reads another identity's history without switching to it
func (h *HistoryStore) ItemsFor(ctx context.Context, identity string) []HistoryItem {
	return h.read(ctx, identity)
}

func clonePayload(p HistoryPayload) HistoryPayload {
	switch v := p.(type) {
	case ChatSession:
		return v.Clone()
	case *ChatSession:
		return v.Clone()
	case ImageSession:
		return v.Clone()
	case *ImageSession:
		return v.Clone()
	case CoderSession:
		return v
	case *CoderSession:
		return *v
	case *SttResult:
		return *v
	}
	return p
}
