package internal

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iksnae/mirova/testutil"
)

func TestOpenDatabase(t *testing.T) {
	tests := []struct {
		name    string
		setup   func(t *testing.T) string
		wantErr bool
	}{
		{
			name: "existing database",
			setup: func(t *testing.T) string {
				dbPath := filepath.Join(testutil.CreateTempDir(t), "mirova.db")
				testutil.CreateSQLiteFixture(t, dbPath)
				return dbPath
			},
		},
		{
			name: "new database in a new directory",
			setup: func(t *testing.T) string {
				return filepath.Join(testutil.CreateTempDir(t), "nested", "dir", "mirova.db")
			},
		},
		{
			name:  "in memory",
			setup: func(t *testing.T) string { return ":memory:" },
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			db, err := OpenDatabase(tt.setup(t))
			if (err != nil) != tt.wantErr {
				t.Fatalf("OpenDatabase() error = %v, wantErr %v", err, tt.wantErr)
			}
			defer db.Close()

			// the table exists and is queryable
			_, err = QueryKV(db, "%")
			assert.NoError(t, err)
		})
	}
}

func TestQueryKV(t *testing.T) {
	db := testutil.CreateTestDB(t)

	tests := []struct {
		name    string
		pattern string
		want    int
	}{
		{name: "history documents", pattern: PrefixPattern("mirova-history-"), want: 2},
		{name: "app prefix", pattern: PrefixPattern("mirova-"), want: 4},
		{name: "everything", pattern: "%", want: 5},
		{name: "no match", pattern: PrefixPattern("nothing"), want: 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			pairs, err := QueryKV(db, tt.pattern)
			require.NoError(t, err)
			assert.Len(t, pairs, tt.want)
		})
	}
}

func TestPrefixPattern(t *testing.T) {
	assert.Equal(t, "mirova-history-%", PrefixPattern("mirova-history-"))
	assert.Equal(t, `a\_b\%c\\%`, PrefixPattern(`a_b%c\`))
}

func TestSQLiteKV_Fixture(t *testing.T) {
	ctx := context.Background()
	dbPath := filepath.Join(testutil.CreateTempDir(t), "mirova.db")
	testutil.CreateSQLiteFixture(t, dbPath)

	kv, err := OpenSQLiteKV(dbPath)
	require.NoError(t, err)
	defer kv.Close()
	assert.Equal(t, dbPath, kv.Path())

	h := NewHistoryStore(kv, Keyspace{})
	h.Load(ctx, "ada@example.com")
	require.Equal(t, 1, h.Len())
	assert.Equal(t, "sort a list", h.Items()[0].Title())

	count, size, err := kv.Stats(ctx)
	require.NoError(t, err)
	assert.Equal(t, 5, count)
	assert.Greater(t, size, int64(0))
}

func TestSQLiteKV_StoredHistoryDocument(t *testing.T) {
	ctx := context.Background()
	db := testutil.CreateInMemoryDB(t)
	testutil.InsertDocument(t, db, "mirova-history-ada@example.com", string(testutil.LoadFixture(t, "history_ada.json")))

	h := NewHistoryStore(NewSQLiteKV(db), Keyspace{})
	h.Load(ctx, "ada@example.com")

	items := h.Items()
	require.Len(t, items, 4)
	features := make([]Feature, len(items))
	for i, item := range items {
		features[i] = item.Feature
	}
	assert.Equal(t, []Feature{FeatureSTT, FeatureCoder, FeatureImage, FeatureChat}, features)
	assert.Equal(t, "lighthouse at dusk", items[2].Title())
	assert.Equal(t, "Hi! How can I help?", items[3].Result())

	var reloaded []HistoryItem
	testutil.JSONUnmarshal(t, testutil.JSONMarshal(t, items), &reloaded)
	assert.Equal(t, items, reloaded)
}

func TestFileKV_Index(t *testing.T) {
	ctx := context.Background()
	dir := filepath.Join(testutil.CreateTempDir(t), "store")
	kv, err := NewFileKV(dir)
	require.NoError(t, err)

	require.NoError(t, kv.Set(ctx, "mirova-history-a/b@c", `[]`))
	require.NoError(t, kv.Set(ctx, "mirova-theme", `dark`))

	index, err := kv.LoadIndex()
	require.NoError(t, err)
	require.Len(t, index.Entries, 2)
	assert.Equal(t, "1.0", index.Version)
	assert.Equal(t, filepath.Join(dir, "mirova-history-a%2Fb@c.json"), kv.DocumentPath("mirova-history-a/b@c"))

	require.NoError(t, kv.Clear())
	keys, err := kv.Keys(ctx, "")
	require.NoError(t, err)
	assert.Empty(t, keys)
	_, ok, err := kv.Get(ctx, "mirova-theme")
	require.NoError(t, err)
	assert.False(t, ok)
}
