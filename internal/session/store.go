package session

import (
	"sync"
	"time"

	"github.com/google/uuid"
)

// DefaultTTL is how long a browsing session survives without interaction.
const DefaultTTL = time.Hour

type entry[T any] struct {
	value    T
	lastSeen time.Time
}

// Store keeps per-session values and forgets the idle ones.
type Store[T any] struct {
	mu       sync.Mutex
	ttl      time.Duration
	now      func() time.Time
	sessions map[string]*entry[T]
}

func NewStore[T any](ttl time.Duration) *Store[T] {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &Store[T]{ttl: ttl, now: time.Now, sessions: make(map[string]*entry[T])}
}

// Put stores v under a fresh session ID.
func (s *Store[T]) Put(v T) string {
	id := uuid.NewString()
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sessions[id] = &entry[T]{value: v, lastSeen: s.now()}
	return id
}

// Get returns the session value and marks it as used.
// Expired sessions are reported as missing.
func (s *Store[T]) Get(id string) (T, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var zero T
	e, ok := s.sessions[id]
	if !ok {
		return zero, false
	}
	now := s.now()
	if s.expired(e, now) {
		delete(s.sessions, id)
		return zero, false
	}
	e.lastSeen = now
	return e.value, true
}

func (s *Store[T]) Delete(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.sessions, id)
}

// Sweep removes expired sessions and returns how many were dropped.
func (s *Store[T]) Sweep() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := s.now()
	n := 0
	for id, e := range s.sessions {
		if s.expired(e, now) {
			delete(s.sessions, id)
			n++
		}
	}
	return n
}

func (s *Store[T]) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.sessions)
}

func (s *Store[T]) expired(e *entry[T], now time.Time) bool {
	return now.Sub(e.lastSeen) >= s.ttl
}
