package internal

import (
	"crypto/rand"
	"strconv"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"
)

// IDSource issues session ids
type IDSource interface {
	NewID() string
}

// ULIDSource issues lexicographically sortable ids.
// Ids created within the same millisecond stay strictly increasing.
type ULIDSource struct {
	mu      sync.Mutex
	entropy *ulid.MonotonicEntropy
	now     func() time.Time
}

// NewULIDSource creates a ULIDSource backed by crypto/rand
func NewULIDSource() *ULIDSource {
	return &ULIDSource{
		entropy: ulid.Monotonic(rand.Reader, 0),
		now:     time.Now,
	}
}

func (s *ULIDSource) NewID() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return ulid.MustNew(ulid.Timestamp(s.now()), s.entropy).String()
}

var (
	defaultIDs     IDSource
	defaultIDsOnce sync.Once
)

// DefaultIDs returns the process-wide ULID source
func DefaultIDs() IDSource {
	defaultIDsOnce.Do(func() {
		defaultIDs = NewULIDSource()
	})
	return defaultIDs
}

// SequenceIDs issues "<prefix><n>" ids; used where deterministic ids are wanted.
type SequenceIDs struct {
	mu     sync.Mutex
	Prefix string
	next   int
}

func (s *SequenceIDs) NewID() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.next++
	return s.Prefix + strconv.Itoa(s.next)
}
