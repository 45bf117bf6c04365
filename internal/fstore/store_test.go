package fstore

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/nanw1103/yumako/internal/logging"
)

type testRecord struct {
	Name  string   `json:"name" yaml:"name"`
	Count int      `json:"count" yaml:"count"`
	Tags  []string `json:"tags,omitempty" yaml:"tags,omitempty"`
}

// newTestStore creates a Store in a temporary directory.
func newTestStore(t *testing.T, opts ...StoreOption) *Store {
	t.Helper()
	opts = append(opts, WithLogger(logging.NopLogger{}))
	s, err := Open(filepath.Join(t.TempDir(), "store"), opts...)
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	return s
}

func TestOpenCreatesDirectory(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "nested", "store")
	s, err := Open(dir, WithLogger(logging.NopLogger{}))
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}

	fi, err := os.Stat(dir)
	if err != nil {
		t.Fatalf("expected store directory to exist: %v", err)
	}
	if !fi.IsDir() {
		t.Errorf("expected %s to be a directory", dir)
	}
	if s.Dir() != dir {
		t.Errorf("expected Dir() %q, got %q", dir, s.Dir())
	}
	if s.Format() != "json" {
		t.Errorf("expected default format json, got %q", s.Format())
	}
}

func TestOpenUnknownFormat(t *testing.T) {
	_, err := Open(t.TempDir(), WithFormat("xml"))
	if err == nil {
		t.Fatal("expected error for unknown format")
	}
}

func TestStore_SetGet(t *testing.T) {
	s := newTestStore(t)

	in := testRecord{Name: "deploy", Count: 3, Tags: []string{"prod", "eu"}}
	if err := s.Set("last-run", in); err != nil {
		t.Fatalf("Set failed: %v", err)
	}

	var out testRecord
	if err := s.Get("last-run", &out); err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if out.Name != "deploy" || out.Count != 3 {
		t.Errorf("round trip mismatch: %+v", out)
	}
	if len(out.Tags) != 2 || out.Tags[0] != "prod" {
		t.Errorf("expected tags preserved, got %v", out.Tags)
	}
}

func TestStore_SetOverwrites(t *testing.T) {
	s := newTestStore(t)

	_ = s.Set("counter", testRecord{Count: 1})
	if err := s.Set("counter", testRecord{Count: 2}); err != nil {
		t.Fatalf("Set failed: %v", err)
	}

	var out testRecord
	if err := s.Get("counter", &out); err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if out.Count != 2 {
		t.Errorf("expected count 2 after overwrite, got %d", out.Count)
	}
}

func TestStore_GetNotFound(t *testing.T) {
	s := newTestStore(t)

	var out testRecord
	err := s.Get("missing", &out)
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestStore_GetBytesReturnsCopy(t *testing.T) {
	s := newTestStore(t)

	_ = s.Set("rec", testRecord{Name: "original"})

	first, err := s.GetBytes("rec")
	if err != nil {
		t.Fatalf("GetBytes failed: %v", err)
	}
	first[0] = 'X'

	second, err := s.GetBytes("rec")
	if err != nil {
		t.Fatalf("GetBytes failed: %v", err)
	}
	if second[0] == 'X' {
		t.Error("expected GetBytes to return an independent copy")
	}
}

func TestStore_Contains(t *testing.T) {
	s := newTestStore(t)

	if s.Contains("absent") {
		t.Error("expected Contains false for absent key")
	}

	_ = s.Set("present", testRecord{Name: "x"})
	if !s.Contains("present") {
		t.Error("expected Contains true after Set")
	}
}

func TestStore_Delete(t *testing.T) {
	s := newTestStore(t)

	_ = s.Set("doomed", testRecord{Name: "x"})
	if err := s.Delete("doomed"); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}

	var out testRecord
	if err := s.Get("doomed", &out); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound after delete, got %v", err)
	}
}

func TestStore_DeleteNotFound(t *testing.T) {
	s := newTestStore(t)

	err := s.Delete("missing")
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestStore_KeysSorted(t *testing.T) {
	s := newTestStore(t)

	_ = s.Set("charlie", testRecord{})
	_ = s.Set("alpha", testRecord{})
	_ = s.Set("bravo", testRecord{})

	keys, err := s.Keys()
	if err != nil {
		t.Fatalf("Keys failed: %v", err)
	}
	if len(keys) != 3 {
		t.Fatalf("expected 3 keys, got %d", len(keys))
	}
	if keys[0] != "alpha" || keys[1] != "bravo" || keys[2] != "charlie" {
		t.Errorf("expected sorted keys, got %v", keys)
	}
}

func TestStore_KeysIgnoresForeignFiles(t *testing.T) {
	s := newTestStore(t)

	_ = s.Set("valid", testRecord{})

	// Files with other extensions or unusable names are not keys.
	_ = os.WriteFile(filepath.Join(s.Dir(), "notes.txt"), []byte("x"), 0644)
	_ = os.WriteFile(filepath.Join(s.Dir(), "bad name.json"), []byte("{}"), 0644)

	keys, err := s.Keys()
	if err != nil {
		t.Fatalf("Keys failed: %v", err)
	}
	if len(keys) != 1 || keys[0] != "valid" {
		t.Errorf("expected only the valid key, got %v", keys)
	}
}

func TestStore_Stat(t *testing.T) {
	s := newTestStore(t)

	_ = s.Set("rec", testRecord{Name: "x"})

	info, err := s.Stat("rec")
	if err != nil {
		t.Fatalf("Stat failed: %v", err)
	}
	if info.Key != "rec" {
		t.Errorf("expected key 'rec', got %q", info.Key)
	}
	if info.Size <= 0 {
		t.Errorf("expected positive size, got %d", info.Size)
	}
	if info.Modified.IsZero() {
		t.Error("expected non-zero modification time")
	}
}

func TestStore_StatNotFound(t *testing.T) {
	s := newTestStore(t)

	_, err := s.Stat("missing")
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestStore_List(t *testing.T) {
	s := newTestStore(t)

	_ = s.Set("beta", testRecord{Name: "b"})
	_ = s.Set("alpha", testRecord{Name: "a"})

	infos, err := s.List()
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if len(infos) != 2 {
		t.Fatalf("expected 2 objects, got %d", len(infos))
	}
	if infos[0].Key != "alpha" || infos[1].Key != "beta" {
		t.Errorf("expected objects sorted by key, got %v", infos)
	}
}

func TestStore_Clear(t *testing.T) {
	s := newTestStore(t)

	_ = s.Set("one", testRecord{})
	_ = s.Set("two", testRecord{})

	removed, err := s.Clear()
	if err != nil {
		t.Fatalf("Clear failed: %v", err)
	}
	if removed != 2 {
		t.Errorf("expected 2 removed, got %d", removed)
	}

	keys, _ := s.Keys()
	if len(keys) != 0 {
		t.Errorf("expected empty store after clear, got %v", keys)
	}
	if s.Contains("one") {
		t.Error("expected cache cleared as well")
	}
}

func TestStore_CacheServesRepeatReads(t *testing.T) {
	s := newTestStore(t)

	_ = s.Set("hot", testRecord{Name: "cached"})

	// Remove the file behind the store's back; the read cache still has it.
	if err := os.Remove(filepath.Join(s.Dir(), "hot.json")); err != nil {
		t.Fatalf("remove failed: %v", err)
	}

	var out testRecord
	if err := s.Get("hot", &out); err != nil {
		t.Fatalf("expected cache hit, got %v", err)
	}
	if out.Name != "cached" {
		t.Errorf("expected cached value, got %+v", out)
	}
}

func TestStore_NoCacheReadsDisk(t *testing.T) {
	s := newTestStore(t, WithCacheSize(0))

	_ = s.Set("cold", testRecord{Name: "x"})
	if err := os.Remove(filepath.Join(s.Dir(), "cold.json")); err != nil {
		t.Fatalf("remove failed: %v", err)
	}

	var out testRecord
	if err := s.Get("cold", &out); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound with caching disabled, got %v", err)
	}
}

func TestStore_InvalidKeys(t *testing.T) {
	s := newTestStore(t)

	invalid := []string{
		"",
		"../escape",
		"a/b",
		".hidden",
		"-leading-dash",
		"spa ce",
	}
	for _, key := range invalid {
		if err := s.Set(key, testRecord{}); !errors.Is(err, ErrInvalidKey) {
			t.Errorf("Set(%q) error = %v, want ErrInvalidKey", key, err)
		}
		var out testRecord
		if err := s.Get(key, &out); !errors.Is(err, ErrInvalidKey) {
			t.Errorf("Get(%q) error = %v, want ErrInvalidKey", key, err)
		}
	}
}

func TestStore_YAMLRoundTrip(t *testing.T) {
	s := newTestStore(t, WithFormat("yaml"))

	in := testRecord{Name: "deploy", Count: 7}
	if err := s.Set("rec", in); err != nil {
		t.Fatalf("Set failed: %v", err)
	}

	if _, err := os.Stat(filepath.Join(s.Dir(), "rec.yaml")); err != nil {
		t.Errorf("expected rec.yaml on disk: %v", err)
	}

	var out testRecord
	if err := s.Get("rec", &out); err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if out.Name != "deploy" || out.Count != 7 {
		t.Errorf("round trip mismatch: %+v", out)
	}
}

func TestStore_TextRoundTrip(t *testing.T) {
	s := newTestStore(t, WithFormat("text"))

	if err := s.Set("greeting", "hello world"); err != nil {
		t.Fatalf("Set failed: %v", err)
	}

	var out string
	if err := s.Get("greeting", &out); err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if out != "hello world" {
		t.Errorf("expected 'hello world', got %q", out)
	}
}

func TestStore_TextRejectsNonString(t *testing.T) {
	s := newTestStore(t, WithFormat("text"))

	if err := s.Set("rec", testRecord{}); err == nil {
		t.Error("expected error storing a struct in text format")
	}
}

func TestStore_FormatsAreIsolated(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "store")

	js, err := Open(dir, WithLogger(logging.NopLogger{}))
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	_ = js.Set("shared", testRecord{Name: "json"})

	ys, err := Open(dir, WithFormat("yaml"), WithLogger(logging.NopLogger{}))
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}

	// The yaml store does not see json files.
	keys, err := ys.Keys()
	if err != nil {
		t.Fatalf("Keys failed: %v", err)
	}
	if len(keys) != 0 {
		t.Errorf("expected yaml store to ignore json files, got %v", keys)
	}
}

func TestLookupCodec(t *testing.T) {
	for _, name := range []string{"json", "yaml", "text"} {
		c, err := LookupCodec(name)
		if err != nil {
			t.Errorf("LookupCodec(%q) failed: %v", name, err)
			continue
		}
		if c.Name() != name {
			t.Errorf("expected codec name %q, got %q", name, c.Name())
		}
	}

	if _, err := LookupCodec("protobuf"); err == nil {
		t.Error("expected error for unregistered codec")
	}
}

func TestFormats(t *testing.T) {
	formats := Formats()
	if len(formats) < 3 {
		t.Fatalf("expected at least 3 formats, got %v", formats)
	}
	for i := 1; i < len(formats); i++ {
		if formats[i-1] >= formats[i] {
			t.Errorf("expected sorted formats, got %v", formats)
		}
	}
}
