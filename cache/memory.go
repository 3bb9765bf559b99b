package cache

import (
	"context"
	"fmt"
	"sync"

	lru "github.com/hashicorp/golang-lru"
)

const DefaultMemorySize = 1024

// Memory is an in-process Store holding up to a fixed number of entries.
// The least recently used entry is evicted first.
type Memory struct {
	// guards Take so that the read and the removal happen as one step
	mu      sync.Mutex
	entries *lru.Cache
}

func NewMemory(size int) (*Memory, error) {
	entries, err := lru.New(size)
	if err != nil {
		return nil, fmt.Errorf("creating lru cache: %w", err)
	}
	return &Memory{entries: entries}, nil
}

func (m *Memory) Get(_ context.Context, key string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	value, ok := m.entries.Get(key)
	if !ok {
		return "", ErrNotFound
	}
	return value.(string), nil
}

func (m *Memory) Set(_ context.Context, key, value string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.entries.Add(key, value)
	return nil
}

func (m *Memory) Remove(_ context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.entries.Remove(key)
	return nil
}

func (m *Memory) Take(_ context.Context, key string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	value, ok := m.entries.Get(key)
	if !ok {
		return "", ErrNotFound
	}
	m.entries.Remove(key)
	return value.(string), nil
}

func (m *Memory) Len() int {
	return m.entries.Len()
}
