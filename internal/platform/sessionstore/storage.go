// Package sessionstore mirrors small pieces of viewer state into a
// per-session key/value storage that survives page reloads but not new
// sessions.
package sessionstore

import (
	"errors"
	"slices"
	"sync"
)

// ErrQuotaExceeded is returned by SetItem when the storage is full.
var ErrQuotaExceeded = errors.New("session storage quota exceeded")

// Storage is a string key/value store with the semantics of a browser
// sessionStorage. Implementations must be safe for concurrent use.
type Storage interface {
	GetItem(key string) (string, bool)
	SetItem(key, value string) error
	RemoveItem(key string)
	Keys() []string
}

// MemoryStorage is an in-process Storage with an optional size quota.
type MemoryStorage struct {
	mu       sync.RWMutex
	items    map[string]string
	size     int
	maxBytes int
}

// NewMemoryStorage creates an empty storage. maxBytes bounds the total size
// of keys plus values; zero means unbounded.
func NewMemoryStorage(maxBytes int) *MemoryStorage {
	return &MemoryStorage{
		items:    make(map[string]string),
		maxBytes: maxBytes,
	}
}

func (m *MemoryStorage) GetItem(key string) (string, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	v, ok := m.items[key]

	return v, ok
}

func (m *MemoryStorage) SetItem(key, value string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	size := m.size + len(key) + len(value)
	if old, ok := m.items[key]; ok {
		size -= len(key) + len(old)
	}

	if m.maxBytes > 0 && size > m.maxBytes {
		return ErrQuotaExceeded
	}

	m.items[key] = value
	m.size = size

	return nil
}

func (m *MemoryStorage) RemoveItem(key string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if old, ok := m.items[key]; ok {
		m.size -= len(key) + len(old)
		delete(m.items, key)
	}
}

// Keys returns the stored keys in sorted order.
func (m *MemoryStorage) Keys() []string {
	m.mu.RLock()
	defer m.mu.RUnlock()

	keys := make([]string, 0, len(m.items))
	for k := range m.items {
		keys = append(keys, k)
	}

	slices.Sort(keys)

	return keys
}

// Size returns the bytes currently used.
func (m *MemoryStorage) Size() int {
	m.mu.RLock()
	defer m.mu.RUnlock()

	return m.size
}
