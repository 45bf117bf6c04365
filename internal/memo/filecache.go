package memo

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/nanw1103/yumako/internal/logging"
)

// fileEnvelope wraps a cached value with the time it was computed.
type fileEnvelope[V any] struct {
	CachedAt time.Time `json:"cached_at"`
	Value    V         `json:"value"`
}

// FileCache memoizes a single expensive call to a file, so the cached
// result survives process restarts. A fresh result is also kept in
// memory to skip the file read on repeat calls within one process.
type FileCache[V any] struct {
	path  string
	ttl   time.Duration
	clock Clock
	log   logging.Logger

	useRAM bool
	ram    memoEntry[V]
	loaded bool
}

// FileOption configures a FileCache.
type FileOption[V any] func(*FileCache[V])

// WithFileClock sets a custom clock for expiry checks.
func WithFileClock[V any](clk Clock) FileOption[V] {
	return func(f *FileCache[V]) {
		f.clock = clk
	}
}

// WithRAMLayer controls the in-memory layer. Disable it when another
// process may rewrite the cache file between calls.
func WithRAMLayer[V any](enabled bool) FileOption[V] {
	return func(f *FileCache[V]) {
		f.useRAM = enabled
	}
}

// WithFileLogger sets the logger used by the file cache.
func WithFileLogger[V any](l logging.Logger) FileOption[V] {
	return func(f *FileCache[V]) {
		f.log = l
	}
}

// NewFileCache creates a FileCache at path whose entries expire after
// ttl. A zero ttl means a cached result never expires.
func NewFileCache[V any](path string, ttl time.Duration, opts ...FileOption[V]) *FileCache[V] {
	f := &FileCache[V]{
		path:   path,
		ttl:    ttl,
		clock:  realClock{},
		log:    logging.Default(),
		useRAM: true,
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// Path returns the cache file's path.
func (f *FileCache[V]) Path() string {
	return f.path
}

// Do returns the cached value, or computes it with fn and caches the
// result in the file. An error from fn is returned without caching.
func (f *FileCache[V]) Do(fn func() (V, error)) (V, error) {
	now := f.clock.Now()

	if f.useRAM && f.loaded {
		if f.ram.expiresAt.IsZero() || now.Before(f.ram.expiresAt) {
			return f.ram.value, nil
		}
		f.loaded = false
	}

	if value, ok := f.readFile(now); ok {
		return value, nil
	}

	value, err := fn()
	if err != nil {
		var zero V
		return zero, err
	}

	if err := f.writeFile(value, now); err != nil {
		f.log.Warn("Failed to write cache file %s: %v", f.path, err)
	}
	f.remember(value, now)
	return value, nil
}

// Invalidate removes the cache file and the in-memory copy, forcing
// the next Do to recompute.
func (f *FileCache[V]) Invalidate() error {
	f.loaded = false
	if err := os.Remove(f.path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to remove cache file: %w", err)
	}
	return nil
}

// readFile loads the envelope from disk if it exists and is fresh.
func (f *FileCache[V]) readFile(now time.Time) (V, bool) {
	var zero V

	data, err := os.ReadFile(f.path)
	if err != nil {
		if !os.IsNotExist(err) {
			f.log.Warn("Failed to read cache file %s: %v", f.path, err)
		}
		return zero, false
	}

	var env fileEnvelope[V]
	if err := json.Unmarshal(data, &env); err != nil {
		f.log.Warn("Ignoring corrupt cache file %s: %v", f.path, err)
		return zero, false
	}

	if f.ttl > 0 && !now.Before(env.CachedAt.Add(f.ttl)) {
		return zero, false
	}

	f.remember(env.Value, env.CachedAt)
	return env.Value, true
}

// writeFile stores the envelope on disk, creating parent directories
// as needed.
func (f *FileCache[V]) writeFile(value V, now time.Time) error {
	if dir := filepath.Dir(f.path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return err
		}
	}

	data, err := json.MarshalIndent(fileEnvelope[V]{CachedAt: now, Value: value}, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(f.path, data, 0644)
}

// remember places a value in the in-memory layer.
func (f *FileCache[V]) remember(value V, cachedAt time.Time) {
	if !f.useRAM {
		return
	}
	f.ram = memoEntry[V]{value: value}
	if f.ttl > 0 {
		f.ram.expiresAt = cachedAt.Add(f.ttl)
	}
	f.loaded = true
}
