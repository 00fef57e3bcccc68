package internal

import (
	"context"
	"encoding/json"
	"strings"
	"sync"
	"unicode/utf8"
)

// MaxPasswordLength is the longest password the login form accepts
const MaxPasswordLength = 8

// LoginForm is the raw input of the login screen
type LoginForm struct {
	FirstName string
	LastName  string
	Email     string
	Password  string
}

// ValidateLogin checks the form and returns the identity to sign in with.
// Fields are kept as typed. The password is only checked for presence and length; it is never kept.
func ValidateLogin(form LoginForm) (AuthUser, error) {
	fields := []struct {
		name  string
		value string
	}{
		{"firstName", form.FirstName},
		{"lastName", form.LastName},
		{"email", form.Email},
		{"password", form.Password},
	}
	var missing []string
	for _, f := range fields {
		if strings.TrimSpace(f.value) == "" {
			missing = append(missing, f.name)
		}
	}
	if len(missing) > 0 {
		return AuthUser{}, &ValidationError{Fields: missing, Message: "Please fill in all fields."}
	}
	if utf8.RuneCountInString(form.Password) > MaxPasswordLength {
		return AuthUser{}, &ValidationError{Fields: []string{"password"}, Message: "Password must be 8 characters or less."}
	}
	return AuthUser{FirstName: form.FirstName, LastName: form.LastName, Email: form.Email}, nil
}

// IdentityListener is notified with the new identity (nil when signed out)
type IdentityListener func(ctx context.Context, user *AuthUser)

// AuthGate holds the process-wide signed-in identity
type AuthGate struct {
	mu        sync.Mutex
	kv        KVStore
	keys      Keyspace
	user      *AuthUser
	listeners []IdentityListener
}

// NewAuthGate restores a previously persisted identity; unreadable records mean anonymous
func NewAuthGate(ctx context.Context, kv KVStore, keys Keyspace) *AuthGate {
	g := &AuthGate{kv: kv, keys: keys}
	g.user = g.restore(ctx)
	return g
}

func (g *AuthGate) restore(ctx context.Context) *AuthUser {
	key := g.keys.User()
	raw, ok, err := g.kv.Get(ctx, key)
	if err != nil {
		LogWarn("Failed to read saved user: %v", err)
		return nil
	}
	if !ok {
		return nil
	}
	var user AuthUser
	if err := json.Unmarshal([]byte(raw), &user); err != nil {
		LogWarn("Ignoring saved user: %v", &ParseError{Source: "user", Key: key, Err: err})
		return nil
	}
	return &user
}

// OnChange registers a listener for identity changes
func (g *AuthGate) OnChange(fn IdentityListener) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.listeners = append(g.listeners, fn)
}

// Current returns the signed-in user, or false when anonymous
func (g *AuthGate) Current() (AuthUser, bool) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.user == nil {
		return AuthUser{}, false
	}
	return *g.user, true
}

// Identity returns the current email, empty when anonymous
func (g *AuthGate) Identity() string {
	u, ok := g.Current()
	if !ok {
		return ""
	}
	return u.Email
}

// Login sets and persists the identity. The in-memory identity changes even when the
// record cannot be written; the write error is returned.
func (g *AuthGate) Login(ctx context.Context, user AuthUser) error {
	data, err := json.Marshal(user)
	if err != nil {
		return err
	}

	g.mu.Lock()
	u := user
	g.user = &u
	listeners := append([]IdentityListener(nil), g.listeners...)
	g.mu.Unlock()

	saveErr := g.kv.Set(ctx, g.keys.User(), string(data))
	if saveErr != nil {
		LogWarn("Failed to save user: %v", saveErr)
	}
	LogInfo("signed in as %s", user.Email)
	g.notify(ctx, listeners, &u)
	return saveErr
}

// Logout clears the identity and removes the persisted record
func (g *AuthGate) Logout(ctx context.Context) error {
	g.mu.Lock()
	g.user = nil
	listeners := append([]IdentityListener(nil), g.listeners...)
	g.mu.Unlock()

	delErr := g.kv.Delete(ctx, g.keys.User())
	if delErr != nil {
		LogWarn("Failed to remove saved user: %v", delErr)
	}
	g.notify(ctx, listeners, nil)
	return delErr
}

func (g *AuthGate) notify(ctx context.Context, listeners []IdentityListener, user *AuthUser) {
	for _, fn := range listeners {
		fn(ctx, user)
	}
}
