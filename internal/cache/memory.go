package cache

import (
	"context"
	"sort"
	"sync"
	"time"
)

type memoryValue struct {
	data      []byte
	expiresAt time.Time
}

type memorySet struct {
	members   map[string]struct{}
	expiresAt time.Time
}

// MemoryBackend is an in-process Backend. Expiry is checked on read against
// the configured clock; expired entries are dropped lazily.
type MemoryBackend struct {
	mu     sync.Mutex
	now    func() time.Time
	values map[string]memoryValue
	sets   map[string]*memorySet
}

var _ Backend = (*MemoryBackend)(nil)

// NewMemoryBackend creates an empty MemoryBackend. A nil clock defaults to time.Now.
func NewMemoryBackend(clock func() time.Time) *MemoryBackend {
	if clock == nil {
		clock = time.Now
	}
	return &MemoryBackend{
		now:    clock,
		values: make(map[string]memoryValue),
		sets:   make(map[string]*memorySet),
	}
}

// Get implements Backend.
func (m *MemoryBackend) Get(_ context.Context, key string) ([]byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	v, ok := m.values[key]
	if !ok {
		return nil, ErrMiss
	}
	if !m.now().Before(v.expiresAt) {
		delete(m.values, key)
		return nil, ErrMiss
	}

	out := make([]byte, len(v.data))
	copy(out, v.data)
	return out, nil
}

// Set implements Backend.
func (m *MemoryBackend) Set(_ context.Context, key string, value []byte, ttl time.Duration) error {
	data := make([]byte, len(value))
	copy(data, value)

	m.mu.Lock()
	defer m.mu.Unlock()
	m.values[key] = memoryValue{data: data, expiresAt: m.now().Add(ttl)}
	return nil
}

// Delete implements Backend. It removes plain values and sets alike.
func (m *MemoryBackend) Delete(_ context.Context, keys ...string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, key := range keys {
		delete(m.values, key)
		delete(m.sets, key)
	}
	return nil
}

// AddMember implements Backend.
func (m *MemoryBackend) AddMember(_ context.Context, setKey, member string, ttl time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	now := m.now()
	s, ok := m.sets[setKey]
	if !ok || !now.Before(s.expiresAt) {
		s = &memorySet{members: make(map[string]struct{})}
		m.sets[setKey] = s
	}
	s.members[member] = struct{}{}
	s.expiresAt = now.Add(ttl)
	return nil
}

// Members implements Backend. Members are returned sorted.
func (m *MemoryBackend) Members(_ context.Context, setKey string) ([]string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	s, ok := m.sets[setKey]
	if !ok {
		return nil, nil
	}
	if !m.now().Before(s.expiresAt) {
		delete(m.sets, setKey)
		return nil, nil
	}

	members := make([]string, 0, len(s.members))
	for member := range s.members {
		members = append(members, member)
	}
	sort.Strings(members)
	return members, nil
}

// Len returns the number of live plain values.
func (m *MemoryBackend) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()

	now := m.now()
	n := 0
	for _, v := range m.values {
		if now.Before(v.expiresAt) {
			n++
		}
	}
	return n
}
