package lru

import "iter"

// Set is a bounded set of keys with LRU eviction. It is a thin wrapper over
// Cache with a unit value type: adding an element touches it, and adding a
// new element to a full set evicts the least-recently-used one. All ordering
// and eviction behavior is the cache's.
type Set[K comparable] struct {
	cache *Cache[K, struct{}]
}

// NewSet creates a set holding at most capacity elements.
// Returns ErrInvalidCapacity if capacity is zero or negative.
func NewSet[K comparable](capacity int) (*Set[K], error) {
	cache, err := New[K, struct{}](capacity)
	if err != nil {
		return nil, err
	}
	return &Set[K]{cache: cache}, nil
}

// NewUnboundedSet creates a set with no capacity limit.
func NewUnboundedSet[K comparable]() *Set[K] {
	return &Set[K]{cache: NewUnbounded[K, struct{}]()}
}

// Add inserts key, marking it most recently used. If the set is full and key
// is new, the least-recently-used element is evicted first.
func (s *Set[K]) Add(key K) {
	s.cache.Set(key, struct{}{})
}

// Contains reports whether key is present without altering recency order.
func (s *Set[K]) Contains(key K) bool {
	return s.cache.Contains(key)
}

// Remove deletes key if present and reports whether it was. Removing an
// absent key is a no-op.
func (s *Set[K]) Remove(key K) bool {
	return s.cache.Delete(key)
}

// Resize changes the capacity bound, evicting least-recently-used elements
// if the set no longer fits.
func (s *Set[K]) Resize(capacity int) error {
	return s.cache.Resize(capacity)
}

// Clear removes all elements. Capacity is unchanged.
func (s *Set[K]) Clear() {
	s.cache.Clear()
}

// Len returns the current number of elements.
func (s *Set[K]) Len() int {
	return s.cache.Len()
}

// Cap returns the capacity bound, or Unbounded.
func (s *Set[K]) Cap() int {
	return s.cache.Cap()
}

// All returns an iterator over elements in recency order, least recently
// used first. Mutating the set during a single pass is not supported.
func (s *Set[K]) All() iter.Seq[K] {
	return s.cache.Keys()
}
