package internal

import (
	"slices"
	"sync"
)

// Tab is the capability shared by every session entity held in a TabManager.
// Implementations are value types; Clone must deep-copy any slices.
type Tab[T any] interface {
	TabID() string
	TabName() string
	WithID(id string) T
	Clone() T
}

// TabFactory builds the default entity for a new tab; n is the 1-based tab count.
type TabFactory[T any] func(id string, n int) T

// TabState is a read-only snapshot of a TabManager
type TabState[T any] struct {
	Tabs     []T
	ActiveID string
}

// TabManager owns an ordered, never-empty collection of sessions and the active selection.
// Every mutation replaces the whole {tabs, activeID} pair under one lock, so readers never
// observe a half-applied change.
type TabManager[T Tab[T]] struct {
	mu      sync.Mutex
	tabs    []T
	active  string
	factory TabFactory[T]
	ids     IDSource
}

// NewTabManager creates a manager holding one default session, which is active.
// A nil ids falls back to DefaultIDs.
func NewTabManager[T Tab[T]](factory TabFactory[T], ids IDSource) *TabManager[T] {
	if ids == nil {
		ids = DefaultIDs()
	}
	first := factory(ids.NewID(), 1)
	return &TabManager[T]{
		tabs:    []T{first},
		active:  first.TabID(),
		factory: factory,
		ids:     ids,
	}
}

// SwitchTo makes id the active session. Unknown ids are ignored.
func (m *TabManager[T]) SwitchTo(id string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.indexOf(id) < 0 {
		LogDebug("switch to unknown tab %s ignored", id)
		return false
	}
	m.active = id
	return true
}

// Add appends a session and makes it active. With a seed, a deep copy of the seed is
// added under a freshly issued id; otherwise the factory builds a default session.
func (m *TabManager[T]) Add(seed *T) T {
	m.mu.Lock()
	defer m.mu.Unlock()

	id := m.ids.NewID()
	for m.indexOf(id) >= 0 {
		id = m.ids.NewID()
	}

	var tab T
	if seed != nil {
		tab = (*seed).Clone().WithID(id)
	} else {
		tab = m.factory(id, len(m.tabs)+1)
	}

	next := make([]T, len(m.tabs), len(m.tabs)+1)
	copy(next, m.tabs)
	m.tabs = append(next, tab)
	m.active = id
	return tab.Clone()
}

// Close removes the session with id. When the active session is closed the last remaining
// session becomes active; closing the only session replaces it with a fresh default one.
func (m *TabManager[T]) Close(id string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()

	idx := m.indexOf(id)
	if idx < 0 {
		return false
	}

	next := slices.Delete(slices.Clone(m.tabs), idx, idx+1)
	if len(next) == 0 {
		fresh := m.factory(m.ids.NewID(), 1)
		m.tabs = []T{fresh}
		m.active = fresh.TabID()
		return true
	}

	if m.active == id {
		m.active = next[len(next)-1].TabID()
	}
	m.tabs = next
	return true
}

// Update applies fn to a copy of the session with id and swaps the result in.
// The id and the position of the session never change. Unknown ids are a no-op.
func (m *TabManager[T]) Update(id string, fn func(*T)) bool {
	m.mu.Lock()
	defer m.mu.Unlock()

	idx := m.indexOf(id)
	if idx < 0 {
		return false
	}

	updated := m.tabs[idx].Clone()
	fn(&updated)
	updated = updated.WithID(id)

	next := slices.Clone(m.tabs)
	next[idx] = updated
	m.tabs = next
	return true
}

// Tabs returns a deep copy of the sessions in order
func (m *TabManager[T]) Tabs() []T {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.cloneTabs()
}

// ActiveID returns the id of the active session
func (m *TabManager[T]) ActiveID() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.active
}

// Active returns a copy of the active session
func (m *TabManager[T]) Active() T {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.tabs[m.indexOf(m.active)].Clone()
}

// Get returns a copy of the session with id
func (m *TabManager[T]) Get(id string) (T, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	idx := m.indexOf(id)
	if idx < 0 {
		var zero T
		return zero, false
	}
	return m.tabs[idx].Clone(), true
}

// Len returns the number of sessions
func (m *TabManager[T]) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.tabs)
}

// Snapshot returns the sessions and the active id read under a single lock
func (m *TabManager[T]) Snapshot() TabState[T] {
	m.mu.Lock()
	defer m.mu.Unlock()
	return TabState[T]{Tabs: m.cloneTabs(), ActiveID: m.active}
}

func (m *TabManager[T]) cloneTabs() []T {
	out := make([]T, len(m.tabs))
	for i, t := range m.tabs {
		out[i] = t.Clone()
	}
	return out
}

func (m *TabManager[T]) indexOf(id string) int {
	return slices.IndexFunc(m.tabs, func(t T) bool { return t.TabID() == id })
}
