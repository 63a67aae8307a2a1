package cache

import (
	"crypto/sha256"
	"encoding/hex"
)

// CacheKey identifies a descriptor: the engine that produced it and the
// SHA-256 of the binary
type CacheKey string

// Digest returns the hex SHA-256 of a binary
func Digest(wasm []byte) string {
	sum := sha256.Sum256(wasm)
	return hex.EncodeToString(sum[:])
}

// KeyFor builds the cache key for a digest produced by Digest
func KeyFor(engine, digest string) CacheKey {
	return CacheKey(engine + ":" + digest)
}

// CacheConfig holds cache configuration
type CacheConfig struct {
	MaxSize int `yaml:"max_size" json:"max_size"` // Maximum number of entries
}

// DefaultCacheConfig returns a default cache configuration
func DefaultCacheConfig() *CacheConfig {
	return &CacheConfig{
		MaxSize: 128,
	}
}

// CacheStats represents cache statistics
type CacheStats struct {
	Hits      int64   `json:"hits"`
	Misses    int64   `json:"misses"`
	Evictions int64   `json:"evictions"`
	Size      int     `json:"size"`
	MaxSize   int     `json:"max_size"`
	HitRate   float64 `json:"hit_rate"`
}

// CalculateHitRate calculates the hit rate
func (s *CacheStats) CalculateHitRate() {
	total := s.Hits + s.Misses
	if total > 0 {
		s.HitRate = float64(s.Hits) / float64(total)
	}
}
