package server

import (
	"errors"
	"sync"

	"github.com/nanw1103/yumako/internal/fstore"
	"github.com/nanw1103/yumako/pkg/lru"
)

// Backend is the keyspace a Server exposes over the wire. Implementations
// must be safe for concurrent use; connections are handled in parallel.
type Backend interface {
	// Set stores value under key, replacing any previous value.
	Set(key string, value []byte) error
	// Get returns the value stored under key. Absence is reported by
	// the bool, never as an error. The returned slice must not be
	// modified.
	Get(key string) ([]byte, bool, error)
	// Contains reports whether key is present without touching recency.
	Contains(key string) (bool, error)
	// Delete removes key and reports whether it was present.
	Delete(key string) (bool, error)
	// Keys returns all present keys.
	Keys() ([]string, error)
	// Len returns the number of stored keys.
	Len() (int, error)
	// Clear removes all keys.
	Clear() error
}

// MemoryBackend is an in-memory Backend over a recency cache. With a
// positive capacity the least recently used key is evicted when a new
// key would exceed the bound; zero capacity means no bound.
type MemoryBackend struct {
	mu    sync.Mutex
	cache *lru.Cache[string, []byte]
}

// NewMemoryBackend creates a MemoryBackend holding at most capacity
// keys, or unbounded when capacity is zero.
func NewMemoryBackend(capacity int) (*MemoryBackend, error) {
	onEvict := lru.WithOnEvict(func(string, []byte) {
		evictionsTotal.Inc()
	})

	if capacity == lru.Unbounded {
		return &MemoryBackend{cache: lru.NewUnbounded(onEvict)}, nil
	}

	cache, err := lru.New(capacity, onEvict)
	if err != nil {
		return nil, err
	}
	return &MemoryBackend{cache: cache}, nil
}

// Cap returns the capacity bound, or lru.Unbounded.
func (b *MemoryBackend) Cap() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.cache.Cap()
}

func (b *MemoryBackend) Set(key string, value []byte) error {
	// The caller's buffer may be reused after Set returns.
	stored := make([]byte, len(value))
	copy(stored, value)

	b.mu.Lock()
	defer b.mu.Unlock()
	b.cache.Set(key, stored)
	return nil
}

func (b *MemoryBackend) Get(key string) ([]byte, bool, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	value, ok := b.cache.Get(key)
	return value, ok, nil
}

func (b *MemoryBackend) Contains(key string) (bool, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.cache.Contains(key), nil
}

func (b *MemoryBackend) Delete(key string) (bool, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.cache.Delete(key), nil
}

func (b *MemoryBackend) Keys() ([]string, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	keys := make([]string, 0, b.cache.Len())
	for key := range b.cache.Keys() {
		keys = append(keys, key)
	}
	return keys, nil
}

func (b *MemoryBackend) Len() (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.cache.Len(), nil
}

func (b *MemoryBackend) Clear() error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.cache.Clear()
	return nil
}

// StoreBackend serves the contents of an fstore directory. The store is
// not safe for concurrent use, so every call holds the mutex.
//
// Stores opened with the text format round-trip values byte for byte;
// other formats serve their encoded form. Key names the store cannot
// represent are treated as absent on reads and rejected on writes.
type StoreBackend struct {
	mu    sync.Mutex
	store *fstore.Store
}

// NewStoreBackend creates a Backend over store.
func NewStoreBackend(store *fstore.Store) *StoreBackend {
	return &StoreBackend{store: store}
}

// Dir returns the served directory.
func (b *StoreBackend) Dir() string {
	return b.store.Dir()
}

func (b *StoreBackend) Set(key string, value []byte) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.store.Set(key, value)
}

func (b *StoreBackend) Get(key string) ([]byte, bool, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	value, err := b.store.GetBytes(key)
	if errors.Is(err, fstore.ErrNotFound) || errors.Is(err, fstore.ErrInvalidKey) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	return value, true, nil
}

func (b *StoreBackend) Contains(key string) (bool, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.store.Contains(key), nil
}

func (b *StoreBackend) Delete(key string) (bool, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	err := b.store.Delete(key)
	if errors.Is(err, fstore.ErrNotFound) || errors.Is(err, fstore.ErrInvalidKey) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

func (b *StoreBackend) Keys() ([]string, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.store.Keys()
}

func (b *StoreBackend) Len() (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	keys, err := b.store.Keys()
	if err != nil {
		return 0, err
	}
	return len(keys), nil
}

func (b *StoreBackend) Clear() error {
	b.mu.Lock()
	defer b.mu.Unlock()

	_, err := b.store.Clear()
	return err
}
