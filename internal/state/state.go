// Package state provides a persistent key-value state file for small
// tools: run cursors, last-seen timestamps, counters. Values live in
// memory and are flushed to a single encoded file, by default on every
// write.
package state

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync"

	"github.com/nanw1103/yumako/internal/fstore"
	"github.com/nanw1103/yumako/internal/logging"
	"github.com/nanw1103/yumako/pkg/lru"
)

// DefaultPath is where the process-wide default state file lives.
const DefaultPath = ".state"

// File is a key-value store backed by a single file.
// A File is not safe for concurrent use.
type File struct {
	path      string
	codec     fstore.Codec
	autoFlush bool
	data      map[string]any
	log       logging.Logger
}

// Option configures a File.
type Option func(*config)

type config struct {
	autoFlush bool
	format    string
	log       logging.Logger
}

// WithAutoFlush controls whether every write is persisted immediately.
// The default is true; disable it for bursts of writes and call Flush.
func WithAutoFlush(enabled bool) Option {
	return func(c *config) {
		c.autoFlush = enabled
	}
}

// WithFormat selects the storage format. The default is "json".
func WithFormat(name string) Option {
	return func(c *config) {
		c.format = name
	}
}

// WithLogger sets the logger used by the file.
func WithLogger(l logging.Logger) Option {
	return func(c *config) {
		c.log = l
	}
}

// Open loads the state file at path, creating parent directories as
// needed. A missing file is an empty state, not an error.
func Open(path string, opts ...Option) (*File, error) {
	cfg := config{
		autoFlush: true,
		format:    "json",
		log:       logging.Default(),
	}
	for _, opt := range opts {
		opt(&cfg)
	}

	codec, err := fstore.LookupCodec(cfg.format)
	if err != nil {
		return nil, err
	}

	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("failed to create state directory: %w", err)
		}
	}

	f := &File{
		path:      path,
		codec:     codec,
		autoFlush: cfg.autoFlush,
		log:       cfg.log.WithField("state", path),
	}
	if err := f.Reload(); err != nil {
		return nil, err
	}

	f.log.Debug("opened state file format=%s keys=%d", codec.Name(), len(f.data))
	return f, nil
}

// Path returns the state file's path.
func (f *File) Path() string {
	return f.path
}

// Get returns the value stored under key.
func (f *File) Get(key string) (any, bool) {
	v, ok := f.data[key]
	return v, ok
}

// GetDefault returns the value stored under key, or fallback when the
// key is absent.
func (f *File) GetDefault(key string, fallback any) any {
	if v, ok := f.data[key]; ok {
		return v
	}
	return fallback
}

// Set stores value under key and persists when auto-flush is enabled.
func (f *File) Set(key string, value any) error {
	f.data[key] = value
	if f.autoFlush {
		return f.Flush()
	}
	return nil
}

// Unset removes key. Removing an absent key is a no-op.
func (f *File) Unset(key string) error {
	if _, ok := f.data[key]; !ok {
		return nil
	}
	delete(f.data, key)
	if f.autoFlush {
		return f.Flush()
	}
	return nil
}

// Clear removes all keys. The state file itself remains.
func (f *File) Clear() error {
	f.data = make(map[string]any)
	if f.autoFlush {
		return f.Flush()
	}
	return nil
}

// Delete removes the state file from disk and empties the in-memory
// state. Deleting an absent file is a no-op.
func (f *File) Delete() error {
	f.data = make(map[string]any)
	if err := os.Remove(f.path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to delete state file: %w", err)
	}
	return nil
}

// Flush writes the in-memory state to disk.
func (f *File) Flush() error {
	data, err := f.codec.Marshal(f.data)
	if err != nil {
		return fmt.Errorf("failed to encode state: %w", err)
	}
	if err := os.WriteFile(f.path, data, 0644); err != nil {
		return fmt.Errorf("failed to write state file: %w", err)
	}
	return nil
}

// Reload replaces the in-memory state with the file's contents,
// discarding unflushed changes.
func (f *File) Reload() error {
	data, err := os.ReadFile(f.path)
	if err != nil {
		if os.IsNotExist(err) {
			f.data = make(map[string]any)
			return nil
		}
		return fmt.Errorf("failed to read state file: %w", err)
	}

	m := make(map[string]any)
	if len(bytes.TrimSpace(data)) > 0 {
		if err := f.codec.Unmarshal(data, &m); err != nil {
			return fmt.Errorf("failed to parse state file %s: %w", f.path, err)
		}
	}
	f.data = m
	return nil
}

// Keys returns all stored keys, sorted.
func (f *File) Keys() []string {
	keys := make([]string, 0, len(f.data))
	for key := range f.data {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}

// Len returns the number of stored keys.
func (f *File) Len() int {
	return len(f.data)
}

// The process-wide default state file, created lazily.
var (
	defaultMu   sync.Mutex
	defaultFile *File
)

// InitDefault opens the process-wide default state file at path. Call
// it before Default to move the default off DefaultPath. Calling it
// again with the same path returns the existing instance; a different
// path is an error.
func InitDefault(path string, opts ...Option) (*File, error) {
	defaultMu.Lock()
	defer defaultMu.Unlock()

	if defaultFile != nil {
		if defaultFile.path != path {
			return nil, fmt.Errorf("default state already initialized at %q", defaultFile.path)
		}
		return defaultFile, nil
	}

	f, err := Open(path, opts...)
	if err != nil {
		return nil, err
	}
	defaultFile = f
	return f, nil
}

// Default returns the process-wide default state file, opening it at
// DefaultPath on first use.
func Default() (*File, error) {
	defaultMu.Lock()
	if defaultFile != nil {
		f := defaultFile
		defaultMu.Unlock()
		return f, nil
	}
	defaultMu.Unlock()

	return InitDefault(DefaultPath)
}

// sharedCapacity bounds the handle cache behind Shared.
const sharedCapacity = 16

var (
	sharedMu    sync.Mutex
	sharedFiles *lru.Cache[string, *File]
)

// Shared returns one File per path, so tools that touch several state
// files keep reusing the same handle. Options apply only when the path
// is first opened. Rarely used paths age out of the handle cache and
// are reopened on the next call, so Shared is meant for files with
// auto flush left on.
func Shared(path string, opts ...Option) (*File, error) {
	sharedMu.Lock()
	defer sharedMu.Unlock()

	if sharedFiles == nil {
		cache, err := lru.New[string, *File](sharedCapacity)
		if err != nil {
			return nil, err
		}
		sharedFiles = cache
	}

	if f, ok := sharedFiles.Get(path); ok {
		return f, nil
	}

	f, err := Open(path, opts...)
	if err != nil {
		return nil, err
	}
	sharedFiles.Set(path, f)
	return f, nil
}
