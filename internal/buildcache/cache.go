package buildcache

import (
	"context"
	"sync"
	"time"

	"experiment-bot/internal/experiments"
)

// Cache stores builds by hash. Builds never change once published,
// so the TTL only bounds memory use.
type Cache interface {
	Get(ctx context.Context, hash string) (*experiments.Build, bool, error)
	Set(ctx context.Context, hash string, build *experiments.Build) error
}

type memEntry struct {
	build   *experiments.Build
	expires time.Time
}

// Memory is an in-process Cache.
type Memory struct {
	mu      sync.Mutex
	ttl     time.Duration
	entries map[string]memEntry
	now     func() time.Time
}

func NewMemory(ttl time.Duration) *Memory {
	return &Memory{ttl: ttl, entries: make(map[string]memEntry), now: time.Now}
}

func (m *Memory) Get(_ context.Context, hash string) (*experiments.Build, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	e, ok := m.entries[hash]
	if !ok {
		return nil, false, nil
	}
	if m.ttl > 0 && !m.now().Before(e.expires) {
		delete(m.entries, hash)
		return nil, false, nil
	}
	return e.build, true, nil
}

func (m *Memory) Set(_ context.Context, hash string, build *experiments.Build) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.entries[hash] = memEntry{build: build, expires: m.now().Add(m.ttl)}
	return nil
}
