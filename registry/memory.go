package registry

import (
	"context"
	"sync"
)

// Memory is an in-process Registry.
type Memory struct {
	mu      sync.RWMutex
	records map[Key]*Record
}

// NewMemory returns an empty registry.
func NewMemory() *Memory {
	return &Memory{records: make(map[Key]*Record)}
}

// Best implements Registry.
func (m *Memory) Best(_ context.Context, key Key) (*Record, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	rec, ok := m.records[key]
	if !ok {
		return nil, ErrNotFound
	}
	return rec.Clone(), nil
}

// Submit implements Registry.
func (m *Memory) Submit(_ context.Context, rec *Record) (bool, error) {
	if err := rec.Validate(); err != nil {
		return false, err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if !Better(rec, m.records[rec.Key]) {
		return false, nil
	}
	m.records[rec.Key] = rec.Clone()
	return true, nil
}
