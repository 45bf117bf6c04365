// Package memo provides TTL memoization of expensive calls over a
// bounded LRU cache, plus a file-backed variant that survives process
// restarts.
package memo

import (
	"fmt"
	"time"

	"github.com/cespare/xxhash/v2"

	"github.com/nanw1103/yumako/internal/logging"
	"github.com/nanw1103/yumako/pkg/lru"
)

// DefaultCapacity bounds a Memoizer's entry count unless overridden.
const DefaultCapacity = 128

// Clock provides time operations for expiry checks.
// The default implementation uses time.Now().
type Clock interface {
	Now() time.Time
}

type realClock struct{}

func (realClock) Now() time.Time {
	return time.Now()
}

// Key hashes its arguments into a cache key. Arguments are rendered
// with %v, so any fmt-printable value participates. A 0x1f separator
// between arguments keeps ("ab") and ("a", "b") distinct.
func Key(parts ...any) uint64 {
	d := xxhash.New()
	for _, part := range parts {
		_, _ = fmt.Fprintf(d, "%v\x1f", part)
	}
	return d.Sum64()
}

type memoEntry[V any] struct {
	value     V
	expiresAt time.Time // zero means no expiry
}

// Memoizer caches the results of expensive calls by key. Entries
// expire after the configured TTL and the least recently used entry
// is evicted when the capacity bound is reached.
//
// Failed calls are never cached; every Do after a failure retries.
type Memoizer[V any] struct {
	cache *lru.Cache[uint64, memoEntry[V]]
	ttl   time.Duration
	clock Clock
}

// Option configures a Memoizer.
type Option[V any] func(*memoConfig)

type memoConfig struct {
	capacity int
	clock    Clock
	log      logging.Logger
}

// WithCapacity bounds the number of memoized entries.
func WithCapacity[V any](n int) Option[V] {
	return func(c *memoConfig) {
		if n > 0 {
			c.capacity = n
		}
	}
}

// WithClock sets a custom clock for expiry checks.
// Useful for testing TTL behavior.
func WithClock[V any](clk Clock) Option[V] {
	return func(c *memoConfig) {
		c.clock = clk
	}
}

// WithLogger sets the logger used by the memoizer.
func WithLogger[V any](l logging.Logger) Option[V] {
	return func(c *memoConfig) {
		c.log = l
	}
}

// New creates a Memoizer whose entries expire after ttl.
// A zero ttl means entries never expire.
func New[V any](ttl time.Duration, opts ...Option[V]) *Memoizer[V] {
	cfg := memoConfig{
		capacity: DefaultCapacity,
		clock:    realClock{},
		log:      logging.Default(),
	}
	for _, opt := range opts {
		opt(&cfg)
	}

	log := cfg.log
	cache, err := lru.New[uint64, memoEntry[V]](cfg.capacity, lru.WithOnEvict(func(key uint64, _ memoEntry[V]) {
		log.Debug("memo evicted key=%016x", key)
	}))
	if err != nil {
		// capacity is forced positive by WithCapacity
		panic(err)
	}

	return &Memoizer[V]{
		cache: cache,
		ttl:   ttl,
		clock: cfg.clock,
	}
}

// Do returns the cached value for key, or computes it with fn and
// caches the result. An error from fn is returned without caching.
func (m *Memoizer[V]) Do(key uint64, fn func() (V, error)) (V, error) {
	if ent, ok := m.cache.Get(key); ok {
		if ent.expiresAt.IsZero() || m.clock.Now().Before(ent.expiresAt) {
			return ent.value, nil
		}
		m.cache.Delete(key)
	}

	value, err := fn()
	if err != nil {
		var zero V
		return zero, err
	}

	ent := memoEntry[V]{value: value}
	if m.ttl > 0 {
		ent.expiresAt = m.clock.Now().Add(m.ttl)
	}
	m.cache.Set(key, ent)
	return value, nil
}

// Get returns the cached value for key if present and unexpired.
func (m *Memoizer[V]) Get(key uint64) (V, bool) {
	ent, ok := m.cache.Get(key)
	if !ok {
		var zero V
		return zero, false
	}
	if !ent.expiresAt.IsZero() && !m.clock.Now().Before(ent.expiresAt) {
		m.cache.Delete(key)
		var zero V
		return zero, false
	}
	return ent.value, true
}

// Forget drops the cached value for key.
func (m *Memoizer[V]) Forget(key uint64) {
	m.cache.Delete(key)
}

// Flush drops every cached value.
func (m *Memoizer[V]) Flush() {
	m.cache.Clear()
}

// Len returns the number of cached entries, including ones that have
// expired but not yet been touched.
func (m *Memoizer[V]) Len() int {
	return m.cache.Len()
}
