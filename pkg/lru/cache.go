// Package lru provides bounded key-value and set containers that evict the
// least-recently-used entry when full.
//
// Every read or write of a key moves it to the most-recently-used position;
// eviction removes the entry that has gone longest without a touch. A map
// index over a doubly linked recency list keeps Get, Set, Delete and
// Contains at amortized O(1) regardless of capacity.
//
// Containers are single-owner: they hold no internal locks and never block.
// Callers that share one across goroutines must serialize each operation
// themselves.
package lru

import (
	"container/list"
	"errors"
	"iter"
)

// Unbounded is the capacity reported by caches that never evict.
const Unbounded = 0

// ErrInvalidCapacity is returned when a bound is requested but the supplied
// capacity is zero or negative.
var ErrInvalidCapacity = errors.New("lru: capacity must be a positive integer")

// entry is the (key, value) pair stored in the recency list. The key is kept
// here because eviction starts from list nodes, not from the map.
type entry[K comparable, V any] struct {
	key   K
	value V
}

// Cache is a key-value mapping with a maximum capacity and LRU eviction.
// It maintains keys in recency order: front = most recently used,
// back = least recently used.
type Cache[K comparable, V any] struct {
	capacity int // Unbounded (0) means no eviction
	items    map[K]*list.Element
	order    *list.List // front = most recent, back = least recent
	onEvict  func(K, V)
}

// Option configures a Cache.
type Option[K comparable, V any] func(*Cache[K, V])

// WithOnEvict sets an observer invoked for every capacity-driven eviction
// with the evicted key and value. It does not fire for Delete, Clear, or
// value updates, only when a full cache makes room for a new key (including
// Resize shrinking the bound).
func WithOnEvict[K comparable, V any](fn func(key K, value V)) Option[K, V] {
	return func(c *Cache[K, V]) {
		c.onEvict = fn
	}
}

// New creates a cache holding at most capacity entries.
// Returns ErrInvalidCapacity if capacity is zero or negative.
func New[K comparable, V any](capacity int, opts ...Option[K, V]) (*Cache[K, V], error) {
	if capacity <= 0 {
		return nil, ErrInvalidCapacity
	}
	c := newCache[K, V](capacity)
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// NewUnbounded creates a cache with no capacity limit. It keeps recency
// order but never evicts; Cap reports Unbounded.
func NewUnbounded[K comparable, V any](opts ...Option[K, V]) *Cache[K, V] {
	c := newCache[K, V](Unbounded)
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func newCache[K comparable, V any](capacity int) *Cache[K, V] {
	return &Cache[K, V]{
		capacity: capacity,
		items:    make(map[K]*list.Element),
		order:    list.New(),
	}
}

// Get returns the value stored under key and marks the key as most recently
// used. The second return is false if the key is absent; absence is a normal
// outcome, not an error, and leaves the cache untouched.
func (c *Cache[K, V]) Get(key K) (V, bool) {
	elem, ok := c.items[key]
	if !ok {
		var zero V
		return zero, false
	}
	c.order.MoveToFront(elem)
	return elem.Value.(*entry[K, V]).value, true
}

// GetOrDefault is Get with a fallback: it returns fallback when key is
// absent. The fallback is never inserted into the cache. Presence, not the
// value itself, decides which is returned; a stored zero value is still a
// hit.
func (c *Cache[K, V]) GetOrDefault(key K, fallback V) V {
	if v, ok := c.Get(key); ok {
		return v
	}
	return fallback
}

// Peek returns the value stored under key without updating recency order.
func (c *Cache[K, V]) Peek(key K) (V, bool) {
	elem, ok := c.items[key]
	if !ok {
		var zero V
		return zero, false
	}
	return elem.Value.(*entry[K, V]).value, true
}

// Set inserts or updates key. Updating an existing key replaces its value
// and marks it most recently used; it never evicts. Inserting a new key into
// a full cache first evicts exactly one entry, the least recently used, so
// the size bound holds when Set returns.
func (c *Cache[K, V]) Set(key K, value V) {
	if elem, ok := c.items[key]; ok {
		elem.Value.(*entry[K, V]).value = value
		c.order.MoveToFront(elem)
		return
	}

	if c.capacity != Unbounded && c.order.Len() >= c.capacity {
		c.evictOldest()
	}

	elem := c.order.PushFront(&entry[K, V]{key: key, value: value})
	c.items[key] = elem
}

// Contains reports whether key is present without altering recency order.
// Membership checks are deliberately side-effect-free so that diagnostics
// cannot change which entry is evicted next.
func (c *Cache[K, V]) Contains(key K) bool {
	_, ok := c.items[key]
	return ok
}

// Delete removes key if present and reports whether it was. Deleting an
// absent key is a no-op, not an error.
func (c *Cache[K, V]) Delete(key K) bool {
	elem, ok := c.items[key]
	if !ok {
		return false
	}
	c.order.Remove(elem)
	delete(c.items, key)
	return true
}

// Resize changes the capacity bound. Shrinking below the current size evicts
// least-recently-used entries until the cache fits. Returns
// ErrInvalidCapacity if capacity is zero or negative; resizing an unbounded
// cache imposes a bound.
func (c *Cache[K, V]) Resize(capacity int) error {
	if capacity <= 0 {
		return ErrInvalidCapacity
	}
	c.capacity = capacity
	for c.order.Len() > capacity {
		c.evictOldest()
	}
	return nil
}

// Clear removes all entries. Capacity is unchanged and the eviction observer
// does not fire.
func (c *Cache[K, V]) Clear() {
	c.items = make(map[K]*list.Element)
	c.order.Init()
}

// Len returns the current number of entries.
func (c *Cache[K, V]) Len() int {
	return len(c.items)
}

// Cap returns the capacity bound, or Unbounded for caches that never evict.
func (c *Cache[K, V]) Cap() int {
	return c.capacity
}

// All returns an iterator over (key, value) pairs in recency order, least
// recently used first. The traversal is lazy and restarts on each range
// statement; mutating the cache during a single pass is not supported.
func (c *Cache[K, V]) All() iter.Seq2[K, V] {
	return func(yield func(K, V) bool) {
		for elem := c.order.Back(); elem != nil; elem = elem.Prev() {
			ent := elem.Value.(*entry[K, V])
			if !yield(ent.key, ent.value) {
				return
			}
		}
	}
}

// Keys returns an iterator over keys in recency order, least recently used
// first. Same traversal contract as All.
func (c *Cache[K, V]) Keys() iter.Seq[K] {
	return func(yield func(K) bool) {
		for elem := c.order.Back(); elem != nil; elem = elem.Prev() {
			if !yield(elem.Value.(*entry[K, V]).key) {
				return
			}
		}
	}
}

// evictOldest removes the least-recently-used entry and notifies the
// eviction observer.
func (c *Cache[K, V]) evictOldest() {
	oldest := c.order.Back()
	if oldest == nil {
		return
	}
	ent := oldest.Value.(*entry[K, V])
	c.order.Remove(oldest)
	delete(c.items, ent.key)
	if c.onEvict != nil {
		c.onEvict(ent.key, ent.value)
	}
}
