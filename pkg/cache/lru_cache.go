package cache

import (
	"fmt"
	"sync"

	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/snow-ghost/wasminspect/core"
)

// LRUCache keeps recently produced module descriptors. A binary's descriptor
// never changes, so entries only leave by eviction.
type LRUCache struct {
	cache  *lru.Cache[CacheKey, *core.Descriptor]
	config *CacheConfig
	stats  *CacheStats
	mu     sync.Mutex
}

// NewLRUCache creates a new LRU cache
func NewLRUCache(config *CacheConfig) (*LRUCache, error) {
	if config == nil {
		config = DefaultCacheConfig()
	}

	c := &LRUCache{
		config: config,
		stats:  &CacheStats{MaxSize: config.MaxSize},
	}

	cache, err := lru.NewWithEvict[CacheKey, *core.Descriptor](config.MaxSize, func(CacheKey, *core.Descriptor) {
		c.stats.Evictions++
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create LRU cache: %w", err)
	}
	c.cache = cache

	return c, nil
}

// Get retrieves a descriptor from the cache
func (c *LRUCache) Get(key CacheKey) (*core.Descriptor, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	d, exists := c.cache.Get(key)
	if !exists {
		c.stats.Misses++
		return nil, false
	}
	c.stats.Hits++
	return d, true
}

// Set stores a descriptor in the cache
func (c *LRUCache) Set(key CacheKey, d *core.Descriptor) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.cache.Add(key, d)
	c.stats.Size = c.cache.Len()
}

// Stats returns cache statistics
func (c *LRUCache) Stats() CacheStats {
	c.mu.Lock()
	defer c.mu.Unlock()

	stats := *c.stats
	stats.Size = c.cache.Len()
	stats.CalculateHitRate()
	return stats
}
