package cache

import (
	"sync"

	"github.com/snow-ghost/wasminspect/core"
	"golang.org/x/sync/singleflight"
)

// Deduplicator collapses concurrent inspections of the same binary
type Deduplicator struct {
	group singleflight.Group
	mu    sync.Mutex
	stats DedupStats
}

// DedupStats represents deduplication statistics
type DedupStats struct {
	Requests     int64 `json:"requests"`
	Deduplicated int64 `json:"deduplicated"`
	CacheHits    int64 `json:"cache_hits"`
}

// NewDeduplicator creates a new deduplicator
func NewDeduplicator() *Deduplicator {
	return &Deduplicator{}
}

// Execute runs fn once per key among concurrent callers
func (d *Deduplicator) Execute(key CacheKey, fn func() (*core.Descriptor, error)) (*core.Descriptor, error) {
	d.count(func(s *DedupStats) { s.Requests++ })

	result, err, shared := d.group.Do(string(key), func() (interface{}, error) {
		return fn()
	})
	if shared {
		d.count(func(s *DedupStats) { s.Deduplicated++ })
	}
	if err != nil {
		return nil, err
	}
	return result.(*core.Descriptor), nil
}

// ExecuteWithCache consults cache before running fn, and stores what fn returns.
// The bool result reports a cache hit.
func (d *Deduplicator) ExecuteWithCache(key CacheKey, cache *LRUCache, fn func() (*core.Descriptor, error)) (*core.Descriptor, bool, error) {
	if cache != nil {
		if desc, exists := cache.Get(key); exists {
			d.count(func(s *DedupStats) { s.CacheHits++ })
			return desc, true, nil
		}
	}

	desc, err := d.Execute(key, func() (*core.Descriptor, error) {
		desc, err := fn()
		if err != nil {
			return nil, err
		}
		if cache != nil {
			cache.Set(key, desc)
		}
		return desc, nil
	})
	return desc, false, err
}

// Stats returns deduplication statistics
func (d *Deduplicator) Stats() DedupStats {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.stats
}

func (d *Deduplicator) count(update func(*DedupStats)) {
	d.mu.Lock()
	update(&d.stats)
	d.mu.Unlock()
}
