package internal

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestThemeStore(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name   string
		stored string
		want   Theme
	}{
		{name: "default", stored: "", want: ThemeDark},
		{name: "light", stored: "light", want: ThemeLight},
		{name: "dark", stored: "dark", want: ThemeDark},
		{name: "unknown value", stored: "solarized", want: ThemeDark},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			kv := NewMemoryKV()
			if tt.stored != "" {
				require.NoError(t, kv.Set(ctx, "mirova-theme", tt.stored))
			}
			assert.Equal(t, tt.want, NewThemeStore(ctx, kv, Keyspace{}).Theme())
		})
	}
}

func TestThemeStore_SetAndToggle(t *testing.T) {
	ctx := context.Background()
	kv := NewMemoryKV()
	s := NewThemeStore(ctx, kv, Keyspace{})

	next, err := s.Toggle(ctx)
	require.NoError(t, err)
	assert.Equal(t, ThemeLight, next)

	raw, _, _ := kv.Get(ctx, "mirova-theme")
	assert.Equal(t, "light", raw)

	require.NoError(t, s.Set(ctx, ThemeDark))
	assert.Equal(t, ThemeDark, NewThemeStore(ctx, kv, Keyspace{}).Theme())

	assert.Error(t, s.Set(ctx, Theme("neon")))
	assert.Equal(t, ThemeDark, s.Theme())
}

func TestSttState(t *testing.T) {
	s := NewSttState()
	assert.Equal(t, "Telugu", s.Language())
	assert.Empty(t, s.Transcription())

	s.SetLanguage("Hindi")
	s.AppendTranscription("nam")
	s.AppendTranscription("aste")
	assert.Equal(t, "Hindi", s.Language())
	assert.Equal(t, "namaste", s.Transcription())

	s.SetTranscription("")
	assert.Empty(t, s.Transcription())
}
