package cache

import (
	"context"
	"sync"
	"time"
)

type entry struct {
	value     []byte
	timestamp time.Time
}

// Memory is the in-process Store. Expired entries are dropped on lookup.
type Memory struct {
	mu      sync.Mutex
	entries map[string]entry
	ttl     time.Duration
	now     func() time.Time
}

// NewMemory builds an empty cache.
func NewMemory(ttl time.Duration) *Memory {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &Memory{entries: make(map[string]entry), ttl: ttl, now: time.Now}
}

// WithClock swaps the time source; used by tests.
func (m *Memory) WithClock(now func() time.Time) *Memory {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.now = now
	return m
}

func (m *Memory) Get(_ context.Context, key string) ([]byte, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	e, ok := m.entries[key]
	if !ok {
		return nil, false
	}
	if m.now().Sub(e.timestamp) > m.ttl {
		delete(m.entries, key)
		return nil, false
	}
	return e.value, true
}

func (m *Memory) Set(_ context.Context, key string, value []byte) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.entries[key] = entry{value: value, timestamp: m.now()}
}

func (m *Memory) Invalidate(_ context.Context, key string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.entries, key)
}

func (m *Memory) InvalidateAll(_ context.Context) {
	m.mu.Lock()
	defer m.mu.Unlock()
	clear(m.entries)
}

// Len counts stored entries, expired or not.
func (m *Memory) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.entries)
}
