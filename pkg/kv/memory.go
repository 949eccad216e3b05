package kv

import (
	"context"
	"slices"
	"sync"
)

// Memory keeps records for the lifetime of the process.
type Memory struct {
	mux     sync.RWMutex
	records map[string][]byte
	watchers
}

func NewMemory() *Memory {
	return &Memory{
		records: make(map[string][]byte),
	}
}

func (m *Memory) Get(_ context.Context, key string) ([]byte, error) {
	m.mux.RLock()
	defer m.mux.RUnlock()
	if v, ok := m.records[key]; ok {
		return slices.Clone(v), nil
	}
	return nil, ErrNotFound
}

func (m *Memory) Set(_ context.Context, key string, value []byte) error {
	m.mux.Lock()
	m.records[key] = slices.Clone(value)
	m.mux.Unlock()

	m.fire(key)
	return nil
}

func (m *Memory) Watch(fn WatchFunc) {
	m.add(fn)
}

func (m *Memory) Close() error {
	return nil
}
