package fstore

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"
	"time"

	"github.com/nanw1103/yumako/internal/logging"
	"github.com/nanw1103/yumako/pkg/lru"
)

// ErrNotFound is returned when a key has no stored value.
var ErrNotFound = errors.New("key not found")

// ErrInvalidKey is returned when a key cannot name a store file.
var ErrInvalidKey = errors.New("invalid key")

// DefaultCacheSize bounds the in-memory read cache of a Store.
const DefaultCacheSize = 128

// Keys name files, so they are restricted to a safe character set.
var keyRe = regexp.MustCompile(`^[A-Za-z0-9][A-Za-z0-9._-]*$`)

// ObjectInfo describes one stored object.
type ObjectInfo struct {
	Key      string
	Size     int64
	Modified time.Time
}

// Store is a directory of encoded values, one file per key.
// A Store is not safe for concurrent use.
type Store struct {
	dir   string
	codec Codec
	cache *lru.Cache[string, []byte]
	log   logging.Logger
}

// StoreOption configures a Store.
type StoreOption func(*storeConfig)

type storeConfig struct {
	format    string
	cacheSize int
	log       logging.Logger
}

// WithFormat selects the storage format. The default is "json".
func WithFormat(name string) StoreOption {
	return func(c *storeConfig) {
		c.format = name
	}
}

// WithCacheSize bounds the read cache. Zero disables caching.
func WithCacheSize(n int) StoreOption {
	return func(c *storeConfig) {
		c.cacheSize = n
	}
}

// WithLogger sets the logger used by the store.
func WithLogger(l logging.Logger) StoreOption {
	return func(c *storeConfig) {
		c.log = l
	}
}

// Open creates the store directory if needed and returns a Store for it.
func Open(dir string, opts ...StoreOption) (*Store, error) {
	cfg := storeConfig{
		format:    "json",
		cacheSize: DefaultCacheSize,
		log:       logging.Default(),
	}
	for _, opt := range opts {
		opt(&cfg)
	}

	codec, err := LookupCodec(cfg.format)
	if err != nil {
		return nil, err
	}

	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create store directory: %w", err)
	}

	s := &Store{
		dir:   dir,
		codec: codec,
		log:   cfg.log.WithField("store", dir),
	}
	if cfg.cacheSize > 0 {
		s.cache, err = lru.New[string, []byte](cfg.cacheSize)
		if err != nil {
			return nil, err
		}
	}

	s.log.Debug("opened store format=%s cache=%d", codec.Name(), cfg.cacheSize)
	return s, nil
}

// Dir returns the store's directory.
func (s *Store) Dir() string {
	return s.dir
}

// Format returns the store's format name.
func (s *Store) Format() string {
	return s.codec.Name()
}

// Set encodes value and writes it under key, replacing any previous value.
func (s *Store) Set(key string, value any) error {
	if err := validateKey(key); err != nil {
		return err
	}

	data, err := s.codec.Marshal(value)
	if err != nil {
		return fmt.Errorf("failed to encode value for key %q: %w", key, err)
	}

	if err := os.WriteFile(s.path(key), data, 0644); err != nil {
		return fmt.Errorf("failed to write key %q: %w", key, err)
	}

	if s.cache != nil {
		s.cache.Set(key, data)
	}
	return nil
}

// Get decodes the value stored under key into out.
// It reports ErrNotFound when the key has no value.
func (s *Store) Get(key string, out any) error {
	data, err := s.raw(key)
	if err != nil {
		return err
	}
	if err := s.codec.Unmarshal(data, out); err != nil {
		return fmt.Errorf("failed to decode key %q: %w", key, err)
	}
	return nil
}

// GetBytes returns the encoded bytes stored under key.
func (s *Store) GetBytes(key string) ([]byte, error) {
	data, err := s.raw(key)
	if err != nil {
		return nil, err
	}
	// Callers may hold on to the slice; never hand out the cached copy.
	out := make([]byte, len(data))
	copy(out, data)
	return out, nil
}

// raw returns the encoded bytes for key, consulting the read cache first.
// The returned slice is shared with the cache and must not be modified.
func (s *Store) raw(key string) ([]byte, error) {
	if err := validateKey(key); err != nil {
		return nil, err
	}

	if s.cache != nil {
		if data, ok := s.cache.Get(key); ok {
			return data, nil
		}
	}

	data, err := os.ReadFile(s.path(key))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("key %q: %w", key, ErrNotFound)
		}
		return nil, fmt.Errorf("failed to read key %q: %w", key, err)
	}

	if s.cache != nil {
		s.cache.Set(key, data)
	}
	return data, nil
}

// Contains reports whether key has a stored value.
func (s *Store) Contains(key string) bool {
	if validateKey(key) != nil {
		return false
	}
	if s.cache != nil && s.cache.Contains(key) {
		return true
	}
	_, err := os.Stat(s.path(key))
	return err == nil
}

// Delete removes the value stored under key.
// It reports ErrNotFound when the key has no value.
func (s *Store) Delete(key string) error {
	if err := validateKey(key); err != nil {
		return err
	}

	if err := os.Remove(s.path(key)); err != nil {
		if os.IsNotExist(err) {
			return fmt.Errorf("key %q: %w", key, ErrNotFound)
		}
		return fmt.Errorf("failed to delete key %q: %w", key, err)
	}

	if s.cache != nil {
		s.cache.Delete(key)
	}
	return nil
}

// Keys returns all stored keys, sorted.
func (s *Store) Keys() ([]string, error) {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		return nil, fmt.Errorf("failed to read store directory: %w", err)
	}

	var keys []string
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), s.codec.Ext()) {
			continue
		}
		key := strings.TrimSuffix(entry.Name(), s.codec.Ext())
		if validateKey(key) != nil {
			s.log.Warn("Skipping file with unusable name: %s", entry.Name())
			continue
		}
		keys = append(keys, key)
	}

	sort.Strings(keys)
	return keys, nil
}

// Stat returns size and modification time for the value stored under key.
func (s *Store) Stat(key string) (ObjectInfo, error) {
	if err := validateKey(key); err != nil {
		return ObjectInfo{}, err
	}

	fi, err := os.Stat(s.path(key))
	if err != nil {
		if os.IsNotExist(err) {
			return ObjectInfo{}, fmt.Errorf("key %q: %w", key, ErrNotFound)
		}
		return ObjectInfo{}, fmt.Errorf("failed to stat key %q: %w", key, err)
	}

	return ObjectInfo{
		Key:      key,
		Size:     fi.Size(),
		Modified: fi.ModTime(),
	}, nil
}

// List returns ObjectInfo for every stored key, sorted by key.
func (s *Store) List() ([]ObjectInfo, error) {
	keys, err := s.Keys()
	if err != nil {
		return nil, err
	}

	infos := make([]ObjectInfo, 0, len(keys))
	for _, key := range keys {
		info, err := s.Stat(key)
		if err != nil {
			s.log.Warn("Skipping unreadable key %q: %v", key, err)
			continue
		}
		infos = append(infos, info)
	}
	return infos, nil
}

// Clear removes every stored value and returns how many were removed.
func (s *Store) Clear() (int, error) {
	keys, err := s.Keys()
	if err != nil {
		return 0, err
	}

	removed := 0
	for _, key := range keys {
		if err := s.Delete(key); err != nil {
			return removed, err
		}
		removed++
	}

	if s.cache != nil {
		s.cache.Clear()
	}
	return removed, nil
}

func (s *Store) path(key string) string {
	return filepath.Join(s.dir, key+s.codec.Ext())
}

func validateKey(key string) error {
	if !keyRe.MatchString(key) || strings.Contains(key, "..") {
		return fmt.Errorf("%w %q: keys may contain letters, digits, '.', '_' and '-'", ErrInvalidKey, key)
	}
	return nil
}
