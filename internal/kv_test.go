package internal

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iksnae/mirova/testutil"
)

// every backend must honour the same contract
func TestKVStoreContract(t *testing.T) {
	backends := []struct {
		name string
		open func(t *testing.T) KVStore
	}{
		{
			name: "memory",
			open: func(t *testing.T) KVStore { return NewMemoryKV() },
		},
		{
			name: "sqlite",
			open: func(t *testing.T) KVStore {
				kv, err := OpenSQLiteKV(filepath.Join(testutil.CreateTempDir(t), "mirova.db"))
				require.NoError(t, err)
				return kv
			},
		},
		{
			name: "sqlite in memory",
			open: func(t *testing.T) KVStore { return NewSQLiteKV(testutil.CreateInMemoryDB(t)) },
		},
		{
			name: "file",
			open: func(t *testing.T) KVStore {
				kv, err := NewFileKV(filepath.Join(testutil.CreateTempDir(t), "store"))
				require.NoError(t, err)
				return kv
			},
		},
	}

	for _, b := range backends {
		t.Run(b.name, func(t *testing.T) {
			ctx := context.Background()
			kv := b.open(t)
			defer kv.Close()

			_, ok, err := kv.Get(ctx, "mirova-user")
			require.NoError(t, err)
			assert.False(t, ok)

			require.NoError(t, kv.Set(ctx, "mirova-user", `{"email":"a@b"}`))
			require.NoError(t, kv.Set(ctx, "mirova-history-a@b", `[]`))
			require.NoError(t, kv.Set(ctx, "mirova-history-c_d@e", `[1]`))
			require.NoError(t, kv.Set(ctx, "mirova-history-a@b", `[2]`))

			v, ok, err := kv.Get(ctx, "mirova-history-a@b")
			require.NoError(t, err)
			require.True(t, ok)
			assert.Equal(t, `[2]`, v, "Set overwrites the whole document")

			keys, err := kv.Keys(ctx, "mirova-history-")
			require.NoError(t, err)
			assert.Equal(t, []string{"mirova-history-a@b", "mirova-history-c_d@e"}, keys)

			// LIKE wildcards in the prefix are literal
			keys, err = kv.Keys(ctx, "mirova-history-c_")
			require.NoError(t, err)
			assert.Equal(t, []string{"mirova-history-c_d@e"}, keys)
			keys, err = kv.Keys(ctx, "mirova%")
			require.NoError(t, err)
			assert.Empty(t, keys)

			require.NoError(t, kv.Delete(ctx, "mirova-user"))
			require.NoError(t, kv.Delete(ctx, "never-existed"))
			_, ok, err = kv.Get(ctx, "mirova-user")
			require.NoError(t, err)
			assert.False(t, ok)
		})
	}
}

func TestKeyspace(t *testing.T) {
	tests := []struct {
		app         string
		wantUser    string
		wantTheme   string
		wantHistory string
	}{
		{"", "mirova-user", "mirova-theme", "mirova-history-a@b"},
		{"demo", "demo-user", "demo-theme", "demo-history-a@b"},
	}

	for _, tt := range tests {
		k := Keyspace{App: tt.app}
		assert.Equal(t, tt.wantUser, k.User())
		assert.Equal(t, tt.wantTheme, k.Theme())
		assert.Equal(t, tt.wantHistory, k.History("a@b"))
	}
}
