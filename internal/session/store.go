package session

import (
	"fmt"
	"sync"
	"time"

	"github.com/nerrad567/rangeview/internal/reading"
)

// DefaultStalenessWindow is how long a reading stays current without a refresh.
const DefaultStalenessWindow = 5 * time.Second

// Gate decides whether the Store accepts writes.
type Gate interface {
	Enabled() bool
}

// openGate accepts every write.
type openGate struct{}

func (openGate) Enabled() bool { return true }

// Store holds the most recent Reading.
type Store struct {
	rng  reading.Range
	gate Gate

	mu      sync.Mutex
	latest  reading.Reading
	present bool
}

// NewStore creates an empty Store. A nil gate accepts every write.
func NewStore(rng reading.Range, gate Gate) *Store {
	if gate == nil {
		gate = openGate{}
	}
	return &Store{rng: rng, gate: gate}
}

// Range returns the clamp range applied on write.
func (s *Store) Range() reading.Range {
	return s.rng
}

// Record overwrites the latest Reading with r, clamped to the Store range.
// It returns false and stores nothing when the gate is closed.
//
// The gate is consulted under the store lock, so a write can never land
// after a concurrent Clear that followed the gate closing.
func (s *Store) Record(r reading.Reading) bool {
	r.Value = s.rng.Clamp(r.Value)

	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.gate.Enabled() {
		return false
	}
	s.latest = r
	s.present = true
	return true
}

// RecordPayload parses a message payload and records it as observed at now.
//
// Returns ErrSessionDisabled when the gate is closed, or an error wrapping
// reading.ErrMalformedPayload when the payload is not an integer.
func (s *Store) RecordPayload(payload []byte, now time.Time) (reading.Reading, error) {
	if !s.gate.Enabled() {
		return reading.Reading{}, ErrSessionDisabled
	}

	v, err := reading.Parse(payload)
	if err != nil {
		return reading.Reading{}, fmt.Errorf("recording payload: %w", err)
	}

	r := reading.New(s.rng.Clamp(v), now)
	if !s.Record(r) {
		return reading.Reading{}, ErrSessionDisabled
	}
	return r, nil
}

// Snapshot returns the latest Reading if one is stored and it is no older
// than window. A stale Reading is cleared so it stays absent until the next
// write.
func (s *Store) Snapshot(now time.Time, window time.Duration) (reading.Reading, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.present {
		return reading.Reading{}, false
	}
	if s.latest.Age(now) > window {
		s.latest = reading.Reading{}
		s.present = false
		return reading.Reading{}, false
	}
	return s.latest, true
}

// Clear drops the stored Reading.
func (s *Store) Clear() {
	s.mu.Lock()
	s.latest = reading.Reading{}
	s.present = false
	s.mu.Unlock()
}
