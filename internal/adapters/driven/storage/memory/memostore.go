package memory

import (
	"sync"

	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/custodia-labs/factsheets/internal/core/ports/driven"
)

// Ensure both memo stores implement the interface.
var (
	_ driven.MemoStore[string] = (*MemoStore[string])(nil)
	_ driven.MemoStore[string] = (*LRUMemoStore[string])(nil)
)

// MemoStore is an unbounded memo cache. Entries live for the process lifetime.
type MemoStore[V any] struct {
	mu      sync.RWMutex
	entries map[string]V
}

// NewMemoStore creates an empty unbounded memo cache.
func NewMemoStore[V any]() *MemoStore[V] {
	return &MemoStore[V]{entries: make(map[string]V)}
}

// Get returns the memoised value for key.
func (m *MemoStore[V]) Get(key string) (V, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	v, ok := m.entries[key]
	return v, ok
}

// Put records a value.
func (m *MemoStore[V]) Put(key string, value V) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.entries[key] = value
}

// Len returns the number of memoised keys.
func (m *MemoStore[V]) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.entries)
}

// LRUMemoStore is a memo cache that evicts the least recently used key
// once it holds size entries.
type LRUMemoStore[V any] struct {
	cache *lru.Cache[string, V]
}

// NewLRUMemoStore creates a bounded memo cache.
func NewLRUMemoStore[V any](size int) (*LRUMemoStore[V], error) {
	cache, err := lru.New[string, V](size)
	if err != nil {
		return nil, err
	}
	return &LRUMemoStore[V]{cache: cache}, nil
}

// Get returns the memoised value for key and marks it recently used.
func (m *LRUMemoStore[V]) Get(key string) (V, bool) {
	return m.cache.Get(key)
}

// Put records a value, evicting the oldest key when full.
func (m *LRUMemoStore[V]) Put(key string, value V) {
	m.cache.Add(key, value)
}

// Len returns the number of memoised keys.
func (m *LRUMemoStore[V]) Len() int {
	return m.cache.Len()
}

// NewMemo returns a bounded store when maxEntries is positive, else an unbounded one.
func NewMemo[V any](maxEntries int) (driven.MemoStore[V], error) {
	if maxEntries > 0 {
		store, err := NewLRUMemoStore[V](maxEntries)
		if err != nil {
			return nil, err
		}
		return store, nil
	}
	return NewMemoStore[V](), nil
}
