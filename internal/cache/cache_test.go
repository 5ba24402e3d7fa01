package cache

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"subdl/internal/oshash"
)

func fingerprint(hash string, size uint64) *oshash.Fingerprint {
	return &oshash.Fingerprint{Hash: hash, Size: size}
}

func TestMemoryCache_GetSet(t *testing.T) {
	c, err := New("memory", ProviderConfig{Size: 4, TTL: time.Minute})
	if err != nil {
		t.Fatalf("New() unexpected error: %v", err)
	}
	defer c.Close()

	if _, ok := c.Get("missing"); ok {
		t.Error("Get(missing) = true, want false")
	}

	first := fingerprint("18379ac9af039390", 366876694)
	c.Set("a", first)
	got, ok := c.Get("a")
	if !ok {
		t.Fatal("Get(a) = false, want true")
	}
	if got.Hash != first.Hash || got.Size != first.Size {
		t.Errorf("Get(a) = %+v, want %+v", got, first)
	}

	c.Set("a", fingerprint("0000000000020000", 131072))
	got, _ = c.Get("a")
	if got.Hash != "0000000000020000" || got.Size != 131072 {
		t.Errorf("Get(a) after overwrite = %+v, want the new fingerprint", got)
	}

	if !c.Contains("a") {
		t.Error("Contains(a) = false, want true")
	}
	if c.Len() != 1 {
		t.Errorf("Len() = %d, want 1", c.Len())
	}
}

func TestMemoryCache_EvictsOldest(t *testing.T) {
	evicted := make(map[string]bool)
	c, err := New("memory", ProviderConfig{
		Size: 2,
		TTL:  time.Minute,
		OnEvict: func(key string, _ *oshash.Fingerprint) {
			evicted[key] = true
		},
	})
	if err != nil {
		t.Fatalf("New() unexpected error: %v", err)
	}
	defer c.Close()

	c.Set("a", fingerprint("a", 1))
	c.Set("b", fingerprint("b", 2))
	c.Set("c", fingerprint("c", 3))

	if !evicted["a"] {
		t.Error("expected oldest entry 'a' to be evicted")
	}
	if _, ok := c.Get("a"); ok {
		t.Error("Get(a) = true after eviction, want false")
	}
}

func TestNew_UnknownProvider(t *testing.T) {
	if _, err := New("disk", ProviderConfig{Size: 1}); err == nil {
		t.Error("New(disk) expected error, got nil")
	}
}

func TestKey_ChangesWithMetadata(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "movie.mp4")
	if err := os.WriteFile(path, make([]byte, 10), 0o644); err != nil {
		t.Fatalf("failed to write test file: %v", err)
	}
	info, err := os.Stat(path)
	if err != nil {
		t.Fatalf("failed to stat test file: %v", err)
	}

	key := Key(path, info)
	if !strings.HasPrefix(key, path+"|10|") {
		t.Errorf("Key() = %q, want path and size prefix", key)
	}

	// A size change produces a different key, so a rewritten file misses.
	if err := os.WriteFile(path, make([]byte, 20), 0o644); err != nil {
		t.Fatalf("failed to rewrite test file: %v", err)
	}
	info, err = os.Stat(path)
	if err != nil {
		t.Fatalf("failed to stat test file: %v", err)
	}
	if Key(path, info) == key {
		t.Error("Key() unchanged after the file grew")
	}
}
