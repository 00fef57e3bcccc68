package internal

import (
	"context"
	"sort"
	"strings"
	"sync"
)

// KVStore is the local persistence contract: string keys, UTF-8 JSON string values,
// whole-document overwrite.
type KVStore interface {
	Get(ctx context.Context, key string) (string, bool, error)
	Set(ctx context.Context, key, value string) error
	Delete(ctx context.Context, key string) error
	// Keys lists every key starting with prefix, sorted
	Keys(ctx context.Context, prefix string) ([]string, error)
	Close() error
}

// Key namespace helpers. The app prefix defaults to DefaultAppPrefix.
const DefaultAppPrefix = "mirova"

// Keyspace builds the namespaced keys used by the stores
type Keyspace struct {
	App string
}

func (k Keyspace) app() string {
	if k.App == "" {
		return DefaultAppPrefix
	}
	return k.App
}

// User is the key of the persisted identity record
func (k Keyspace) User() string { return k.app() + "-user" }

// Theme is the key of the persisted theme preference
func (k Keyspace) Theme() string { return k.app() + "-theme" }

// HistoryPrefix is the common prefix of every history document key
func (k Keyspace) HistoryPrefix() string { return k.app() + "-history-" }

// History is the key of the history document for identity
func (k Keyspace) History(identity string) string { return k.HistoryPrefix() + identity }

// MemoryKV keeps documents in a map; nothing survives the process
type MemoryKV struct {
	mu   sync.RWMutex
	data map[string]string
}

// NewMemoryKV creates an empty in-memory store
func NewMemoryKV() *MemoryKV {
	return &MemoryKV{data: make(map[string]string)}
}

func (m *MemoryKV) Get(_ context.Context, key string) (string, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	v, ok := m.data[key]
	return v, ok, nil
}

func (m *MemoryKV) Set(_ context.Context, key, value string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data[key] = value
	return nil
}

func (m *MemoryKV) Delete(_ context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.data, key)
	return nil
}

func (m *MemoryKV) Keys(_ context.Context, prefix string) ([]string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var keys []string
	for k := range m.data {
		if strings.HasPrefix(k, prefix) {
			keys = append(keys, k)
		}
	}
	sort.Strings(keys)
	return keys, nil
}

func (m *MemoryKV) Close() error { return nil }
