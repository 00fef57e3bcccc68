package internal

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestChatStore() *ChatStore {
	return NewChatStore(&SequenceIDs{Prefix: "t"})
}

func tabIDs[T Tab[T]](tabs []T) []string {
	ids := make([]string, len(tabs))
	for i, tab := range tabs {
		ids[i] = tab.TabID()
	}
	return ids
}

func tabNames[T Tab[T]](tabs []T) []string {
	names := make([]string, len(tabs))
	for i, tab := range tabs {
		names[i] = tab.TabName()
	}
	return names
}

func TestNewTabManager(t *testing.T) {
	m := newTestChatStore()

	tabs := m.Tabs()
	require.Len(t, tabs, 1)
	assert.Equal(t, "Chat 1", tabs[0].Name)
	assert.Empty(t, tabs[0].Messages)
	assert.Equal(t, tabs[0].ID, m.ActiveID())
}

func TestNewTabManager_DefaultIDs(t *testing.T) {
	m := NewCoderStore(nil)
	assert.Len(t, m.ActiveID(), 26, "ULID ids are 26 characters")
}

func TestFeatureStoreDefaults(t *testing.T) {
	img := NewImageStore(&SequenceIDs{}).Active()
	assert.Equal(t, "Image 1", img.Name)
	assert.Equal(t, "Realistic", img.Style)
	assert.Equal(t, Resolution1x1, img.Resolution)
	assert.Empty(t, img.Prompt)
	assert.Empty(t, img.SourceImages)
	assert.Empty(t, img.GeneratedImage)

	code := NewCoderStore(&SequenceIDs{}).Active()
	assert.Equal(t, "Code 1", code.Name)
	assert.Equal(t, "JavaScript", code.Language)
	assert.Empty(t, code.Prompt)
	assert.Empty(t, code.Result)
}

func TestTabManager_AddCloseScenario(t *testing.T) {
	m := newTestChatStore()
	first := m.ActiveID()

	m.Add(nil)
	third := m.Add(nil)

	assert.Equal(t, []string{"Chat 1", "Chat 2", "Chat 3"}, tabNames(m.Tabs()))
	assert.Equal(t, third.ID, m.ActiveID())

	require.True(t, m.Close(third.ID))
	assert.Equal(t, []string{"Chat 1", "Chat 2"}, tabNames(m.Tabs()))
	assert.Equal(t, "Chat 2", m.Active().Name, "closing the active tab activates the last one")

	ids := tabIDs(m.Tabs())
	require.True(t, m.Close(ids[1]))
	require.True(t, m.Close(first))

	tabs := m.Tabs()
	require.Len(t, tabs, 1)
	assert.Equal(t, "Chat 1", tabs[0].Name)
	assert.Empty(t, tabs[0].Messages)
	assert.NotEqual(t, first, tabs[0].ID, "the replacement tab gets a fresh id")
	assert.Equal(t, tabs[0].ID, m.ActiveID())
}

func TestTabManager_Add(t *testing.T) {
	tests := []struct {
		name     string
		existing int
		seed     *ChatSession
		wantName string
	}{
		{name: "default", existing: 0, wantName: "Chat 2"},
		{name: "default after several", existing: 2, wantName: "Chat 4"},
		{
			name:     "seeded",
			existing: 0,
			seed:     &ChatSession{ID: "old", Name: "Imported", Messages: []Message{{ID: "m", Role: RoleUser, Text: "hi"}}},
			wantName: "Imported",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := newTestChatStore()
			for i := 0; i < tt.existing; i++ {
				m.Add(nil)
			}
			before := m.Len()

			added := m.Add(tt.seed)

			assert.Equal(t, before+1, m.Len())
			assert.Equal(t, tt.wantName, added.Name)
			assert.Equal(t, added.ID, m.ActiveID())
			assert.Equal(t, added.ID, m.Tabs()[m.Len()-1].ID, "new tabs are appended")
			if tt.seed != nil {
				assert.NotEqual(t, tt.seed.ID, added.ID)
				assert.Equal(t, tt.seed.Messages, added.Messages)
			}
		})
	}
}

func TestTabManager_AddSeedIsCopied(t *testing.T) {
	m := newTestChatStore()
	seed := ChatSession{ID: "s", Name: "Seed", Messages: []Message{{ID: "m", Role: RoleUser, Text: "original", Images: []string{"a"}}}}

	added := m.Add(&seed)
	seed.Messages[0].Text = "mutated"
	seed.Messages[0].Images[0] = "b"

	got, ok := m.Get(added.ID)
	require.True(t, ok)
	assert.Equal(t, "original", got.Messages[0].Text)
	assert.Equal(t, []string{"a"}, got.Messages[0].Images)
}

func TestTabManager_AddSkipsTakenIDs(t *testing.T) {
	m := NewChatStore(&fixedIDs{ids: []string{"dup", "dup", "fresh"}})

	added := m.Add(nil)

	assert.Equal(t, "fresh", added.ID)
	assert.Equal(t, []string{"dup", "fresh"}, tabIDs(m.Tabs()))
}

type fixedIDs struct {
	mu  sync.Mutex
	ids []string
	n   int
}

func (f *fixedIDs) NewID() string {
	f.mu.Lock()
	defer f.mu.Unlock()
	id := f.ids[f.n%len(f.ids)]
	f.n++
	return id
}

func TestTabManager_Close(t *testing.T) {
	tests := []struct {
		name       string
		tabs       int
		active     int // index made active before closing
		close      int // index to close; -1 closes an unknown id
		wantLen    int
		wantActive int // index into the remaining tabs
		wantClosed bool
	}{
		{name: "inactive tab keeps active", tabs: 3, active: 2, close: 0, wantLen: 2, wantActive: 1, wantClosed: true},
		{name: "active middle tab activates last", tabs: 3, active: 1, close: 1, wantLen: 2, wantActive: 1, wantClosed: true},
		{name: "active first tab activates last", tabs: 3, active: 0, close: 0, wantLen: 2, wantActive: 1, wantClosed: true},
		{name: "unknown id is a no-op", tabs: 2, active: 0, close: -1, wantLen: 2, wantActive: 0, wantClosed: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := newTestChatStore()
			for i := 1; i < tt.tabs; i++ {
				m.Add(nil)
			}
			ids := tabIDs(m.Tabs())
			m.SwitchTo(ids[tt.active])

			target := "missing"
			if tt.close >= 0 {
				target = ids[tt.close]
			}
			assert.Equal(t, tt.wantClosed, m.Close(target))

			remaining := tabIDs(m.Tabs())
			require.Len(t, remaining, tt.wantLen)
			assert.Equal(t, remaining[tt.wantActive], m.ActiveID())
			assert.NotContains(t, remaining, target)
		})
	}
}

func TestTabManager_CloseOnlyTab(t *testing.T) {
	m := newTestChatStore()
	only := m.ActiveID()
	m.Update(only, func(s *ChatSession) {
		s.Name = "Renamed"
		s.Messages = append(s.Messages, Message{ID: "m1", Role: RoleUser, Text: "hi"})
	})

	require.True(t, m.Close(only))

	tabs := m.Tabs()
	require.Len(t, tabs, 1)
	assert.NotEqual(t, only, tabs[0].ID)
	assert.Equal(t, "Chat 1", tabs[0].Name)
	assert.Empty(t, tabs[0].Messages)
	assert.Equal(t, tabs[0].ID, m.ActiveID())
}

func TestTabManager_SwitchTo(t *testing.T) {
	m := newTestChatStore()
	first := m.ActiveID()
	m.Add(nil)

	assert.True(t, m.SwitchTo(first))
	assert.Equal(t, first, m.ActiveID())

	assert.False(t, m.SwitchTo("missing"))
	assert.Equal(t, first, m.ActiveID(), "unknown ids leave the selection alone")
}

func TestTabManager_Update(t *testing.T) {
	m := newTestChatStore()
	m.Add(nil)
	m.Add(nil)
	before := tabIDs(m.Tabs())
	target := before[1]

	ok := m.Update(target, func(s *ChatSession) {
		s.Name = "Renamed"
		s.ID = "hijacked"
	})
	require.True(t, ok)

	after := m.Tabs()
	assert.Equal(t, before, tabIDs(after), "ids and order are preserved")
	assert.Equal(t, "Renamed", after[1].Name)
	assert.Equal(t, "Chat 1", after[0].Name)
	assert.Equal(t, "Chat 3", after[2].Name)

	snapshot := m.Snapshot()
	assert.False(t, m.Update("missing", func(s *ChatSession) { s.Name = "x" }))
	assert.Equal(t, snapshot, m.Snapshot())
}

func TestTabManager_ReadsAreCopies(t *testing.T) {
	m := newTestChatStore()
	id := m.ActiveID()
	m.Update(id, func(s *ChatSession) {
		s.Messages = []Message{{ID: "m1", Role: RoleUser, Text: "hi"}}
	})

	tabs := m.Tabs()
	tabs[0].Messages[0].Text = "changed"
	active := m.Active()
	active.Name = "changed"

	got, ok := m.Get(id)
	require.True(t, ok)
	assert.Equal(t, "hi", got.Messages[0].Text)
	assert.Equal(t, "Chat 1", got.Name)

	_, ok = m.Get("missing")
	assert.False(t, ok)
}

func TestTabManager_Concurrent(t *testing.T) {
	m := newTestChatStore()
	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			tab := m.Add(nil)
			m.Update(tab.ID, func(s *ChatSession) { s.Name = "busy" })
			if i%2 == 0 {
				m.Close(tab.ID)
			}
		}(i)
	}
	wg.Wait()

	state := m.Snapshot()
	assert.Len(t, state.Tabs, 26)
	assert.Contains(t, tabIDs(state.Tabs), state.ActiveID)

	seen := map[string]bool{}
	for _, id := range tabIDs(state.Tabs) {
		assert.False(t, seen[id], "duplicate id %s", id)
		seen[id] = true
	}
}

// invariants: never empty, unique ids, active is a member
func TestTabManager_Invariants(t *testing.T) {
	m := NewImageStore(&SequenceIDs{Prefix: "i"})
	ops := []func(){
		func() { m.Add(nil) },
		func() { m.Close(m.ActiveID()) },
		func() { m.Add(nil) },
		func() { m.Add(nil) },
		func() { m.SwitchTo(tabIDs(m.Tabs())[0]) },
		func() { m.Close(tabIDs(m.Tabs())[1]) },
		func() { m.Close(m.ActiveID()) },
		func() { m.Close(m.ActiveID()) },
		func() { m.Close(m.ActiveID()) },
		func() { m.SwitchTo("nope") },
	}

	for i, op := range ops {
		op()
		state := m.Snapshot()
		require.NotEmpty(t, state.Tabs, "step %d", i)
		assert.Contains(t, tabIDs(state.Tabs), state.ActiveID, "step %d", i)
		seen := map[string]bool{}
		for _, id := range tabIDs(state.Tabs) {
			require.False(t, seen[id], "step %d: duplicate id", i)
			seen[id] = true
		}
	}
}
