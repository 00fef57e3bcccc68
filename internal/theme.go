package internal

import (
	"context"
	"sync"
)

// DefaultTheme is used when nothing valid is persisted
const DefaultTheme = ThemeDark

// ThemeStore keeps the colour scheme preference
type ThemeStore struct {
	mu    sync.Mutex
	kv    KVStore
	key   string
	theme Theme
}

// NewThemeStore restores the saved theme, falling back to DefaultTheme
func NewThemeStore(ctx context.Context, kv KVStore, keys Keyspace) *ThemeStore {
	s := &ThemeStore{kv: kv, key: keys.Theme(), theme: DefaultTheme}
	raw, ok, err := kv.Get(ctx, s.key)
	switch {
	case err != nil:
		LogWarn("Failed to read theme: %v", err)
	case ok:
		if t, err := ParseTheme(raw); err == nil {
			s.theme = t
		} else {
			LogDebug("ignoring saved theme %q", raw)
		}
	}
	return s
}

// Theme returns the current theme
func (s *ThemeStore) Theme() Theme {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.theme
}

// Set changes and persists the theme
func (s *ThemeStore) Set(ctx context.Context, t Theme) error {
	if _, err := ParseTheme(string(t)); err != nil {
		return err
	}
	s.mu.Lock()
	s.theme = t
	s.mu.Unlock()
	if err := s.kv.Set(ctx, s.key, string(t)); err != nil {
		LogWarn("Failed to save theme: %v", err)
		return err
	}
	return nil
}

// Toggle switches between light and dark
func (s *ThemeStore) Toggle(ctx context.Context) (Theme, error) {
	next := ThemeDark
	if s.Theme() == ThemeDark {
		next = ThemeLight
	}
	return next, s.Set(ctx, next)
}
