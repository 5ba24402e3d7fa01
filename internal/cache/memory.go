package cache

import (
	lru "github.com/hashicorp/golang-lru/v2/expirable"

	"subdl/internal/oshash"
)

func init() {
	Register("memory", newMemoryCache)
}

// memoryCache implements Cache on hashicorp/golang-lru/v2/expirable, typed
// to fingerprint values.
type memoryCache struct {
	inner *lru.LRU[string, *oshash.Fingerprint]
}

func newMemoryCache(cfg ProviderConfig) (Cache, error) {
	var onEvict func(string, *oshash.Fingerprint)
	if cfg.OnEvict != nil {
		onEvict = func(key string, fp *oshash.Fingerprint) {
			cfg.OnEvict(key, fp)
		}
	}
	return &memoryCache{
		inner: lru.NewLRU[string, *oshash.Fingerprint](cfg.Size, onEvict, cfg.TTL),
	}, nil
}

func (m *memoryCache) Get(key string) (*oshash.Fingerprint, bool) {
	return m.inner.Get(key)
}

func (m *memoryCache) Set(key string, fp *oshash.Fingerprint) {
	m.inner.Add(key, fp)
}

func (m *memoryCache) Contains(key string) bool {
	return m.inner.Contains(key)
}

func (m *memoryCache) Len() int {
	return m.inner.Len()
}

func (m *memoryCache) Close() error {
	return nil
}
