package store

import (
	"sort"
	"sync"
)

// Memory is an in-process state store with the same key semantics as Store.
// It backs tests and the --db=:memory: mode.
type Memory struct {
	mu     sync.RWMutex
	values map[string][]byte
	runs   []TriggerRun
}

// NewMemory returns an empty in-memory store.
func NewMemory() *Memory {
	return &Memory{values: make(map[string][]byte)}
}

// Get returns the raw value stored under key.
func (m *Memory) Get(key string) ([]byte, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	v, ok := m.values[key]
	if !ok {
		return nil, ErrNotFound
	}
	return append([]byte(nil), v...), nil
}

// Put replaces the value stored under key.
func (m *Memory) Put(key string, value []byte) error {
	return m.PutMany(map[string][]byte{key: value})
}

// PutMany replaces several values at once.
func (m *Memory) PutMany(values map[string][]byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for k, v := range values {
		m.values[k] = append([]byte(nil), v...)
	}
	return nil
}

// Delete removes keys.
func (m *Memory) Delete(keys ...string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, k := range keys {
		delete(m.values, k)
	}
	return nil
}

// Keys returns every stored key in sorted order.
func (m *Memory) Keys() ([]string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	keys := make([]string, 0, len(m.values))
	for k := range m.values {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys, nil
}

// RecordRun appends a trigger run to the journal.
func (m *Memory) RecordRun(r TriggerRun) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	r.ID = int64(len(m.runs) + 1)
	m.runs = append(m.runs, r)
	return nil
}

// RecentRuns returns up to limit journalled runs, newest first.
func (m *Memory) RecentRuns(limit int) ([]TriggerRun, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []TriggerRun
	for i := len(m.runs) - 1; i >= 0 && len(out) < limit; i-- {
		out = append(out, m.runs[i])
	}
	return out, nil
}

// Close is a no-op.
func (m *Memory) Close() error { return nil }
