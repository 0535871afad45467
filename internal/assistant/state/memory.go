package state

import (
	"context"
	"sync"
	"time"
)

const DefaultTTL = 30 * time.Minute

type memoryEntry struct {
	state   *State
	expires time.Time
}

// MemoryStore keeps state in process. Entries expire TTL after their last Put.
type MemoryStore struct {
	mu      sync.Mutex
	ttl     time.Duration
	now     func() time.Time
	entries map[Key]memoryEntry
}

type MemoryOption func(*MemoryStore)

func WithClock(now func() time.Time) MemoryOption {
	return func(m *MemoryStore) {
		if now != nil {
			m.now = now
		}
	}
}

func NewMemoryStore(ttl time.Duration, opts ...MemoryOption) *MemoryStore {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	m := &MemoryStore{ttl: ttl, now: time.Now, entries: map[Key]memoryEntry{}}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

func (m *MemoryStore) Get(ctx context.Context, key Key) (*State, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	e, ok := m.entries[key]
	if !ok {
		return Idle(), nil
	}
	if !m.now().Before(e.expires) {
		delete(m.entries, key)
		return Idle(), nil
	}
	return e.state.Clone(), nil
}

func (m *MemoryStore) Put(ctx context.Context, key Key, st *State) error {
	if st == nil {
		return m.Clear(ctx, key)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	now := m.now()
	cp := st.Clone()
	cp.UpdatedAt = now
	m.entries[key] = memoryEntry{state: cp, expires: now.Add(m.ttl)}
	return nil
}

func (m *MemoryStore) Clear(ctx context.Context, key Key) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.entries, key)
	return nil
}

// Sweep drops expired entries and returns how many were removed.
func (m *MemoryStore) Sweep() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	now := m.now()
	n := 0
	for k, e := range m.entries {
		if !now.Before(e.expires) {
			delete(m.entries, k)
			n++
		}
	}
	return n
}

// Len is the number of stored entries, expired ones included.
func (m *MemoryStore) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.entries)
}

// RunSweeper sweeps every interval until ctx is done.
func (m *MemoryStore) RunSweeper(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		interval = time.Minute
	}
	t := time.NewTicker(interval)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
			m.Sweep()
		}
	}
}
