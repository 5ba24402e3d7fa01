package cache

import (
	"fmt"
	"io/fs"

	"subdl/internal/oshash"
)

// EvictCallback is called when an entry is evicted from the cache.
type EvictCallback func(key string, fp *oshash.Fingerprint)

// Cache memoizes fingerprint results with LRU semantics so the same input
// path is hashed at most once per batch. The only backend here is in-memory:
// results never outlive the run.
type Cache interface {
	// Get retrieves a fingerprint by key. Returns the fingerprint and true if found, or nil and false if not.
	Get(key string) (*oshash.Fingerprint, bool)

	// Set stores a fingerprint under the given key. If the key already exists, it is overwritten.
	Set(key string, fp *oshash.Fingerprint)

	// Contains checks whether a key exists in the cache without affecting LRU ordering.
	Contains(key string) bool

	// Len returns the number of entries currently in the cache.
	Len() int

	// Close releases any resources held by the cache. For in-memory caches, this is a no-op.
	Close() error
}

// Key derives the cache key for a path from its current metadata. Keys carry
// size and mtime, so a file modified mid-run misses and is hashed again.
func Key(path string, info fs.FileInfo) string {
	return fmt.Sprintf("%s|%d|%d", path, info.Size(), info.ModTime().UnixNano())
}
