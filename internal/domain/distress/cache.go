// internal/domain/distress/cache.go
package distress

import (
	"crypto/sha256"
	"encoding/hex"
	"sync"
	"time"
)

// DefaultCacheTTL is how long a memoized analysis stays valid.
const DefaultCacheTTL = 5 * time.Minute

// analyzer is the slice of Classifier the cache depends on.
type analyzer interface {
	Analyze(text string) Analysis
}

type cacheEntry struct {
	analysis  Analysis
	createdAt time.Time
}

// CacheStats is a point-in-time snapshot of cache state.
type CacheStats struct {
	Total   int // resident entries, expired or not
	Valid   int
	Expired int
	HitRate float64 // hits / (hits + misses) since creation or last Clear
}

// Cache memoizes classifier output per normalized text. Entries expire
// after the TTL and are evicted lazily on lookup; Purge exists for a
// periodic sweep. Analysis is a pure function of its text, so concurrent
// computation of the same key is harmless (last write wins).
type Cache struct {
	mu      sync.Mutex
	entries map[string]cacheEntry
	backend analyzer
	ttl     time.Duration
	hits    uint64
	misses  uint64
	now     func() time.Time // overridable in tests
}

func NewCache(backend analyzer, ttl time.Duration) *Cache {
	if ttl <= 0 {
		ttl = DefaultCacheTTL
	}
	return &Cache{
		entries: make(map[string]cacheEntry),
		backend: backend,
		ttl:     ttl,
		now:     time.Now,
	}
}

// CacheKey is the deterministic content hash identical texts share:
// a sha256 of the normalized (case-insensitive, trimmed) text.
func CacheKey(text string) string {
	sum := sha256.Sum256([]byte(Normalize(text)))
	return hex.EncodeToString(sum[:])
}

// GetOrCompute returns the memoized analysis for text, computing and
// storing it on a miss. An entry older than the TTL counts as absent and
// is removed on the spot.
func (c *Cache) GetOrCompute(text string) Analysis {
	key := CacheKey(text)

	c.mu.Lock()
	if e, ok := c.entries[key]; ok {
		if c.now().Sub(e.createdAt) < c.ttl {
			c.hits++
			c.mu.Unlock()
			return copyAnalysis(e.analysis)
		}
		delete(c.entries, key)
	}
	c.misses++
	c.mu.Unlock()

	// Compute outside the lock: analysis is CPU-bound and pure, and a
	// duplicate computation under contention is cheaper than serializing
	// every caller behind it.
	analysis := c.backend.Analyze(text)

	c.mu.Lock()
	c.entries[key] = cacheEntry{analysis: copyAnalysis(analysis), createdAt: c.now()}
	c.mu.Unlock()
	return analysis
}

// Clear drops all entries and resets hit/miss accounting.
func (c *Cache) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries = make(map[string]cacheEntry)
	c.hits = 0
	c.misses = 0
}

// Purge removes every expired entry and reports how many were dropped.
// Lazy eviction already hides expired entries from lookups; this keeps the
// map from accumulating texts that are never asked about again.
func (c *Cache) Purge() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	dropped := 0
	now := c.now()
	for key, e := range c.entries {
		if now.Sub(e.createdAt) >= c.ttl {
			delete(c.entries, key)
			dropped++
		}
	}
	return dropped
}

// Stats returns a snapshot; it never exposes live references.
func (c *Cache) Stats() CacheStats {
	c.mu.Lock()
	defer c.mu.Unlock()
	stats := CacheStats{Total: len(c.entries)}
	now := c.now()
	for _, e := range c.entries {
		if now.Sub(e.createdAt) < c.ttl {
			stats.Valid++
		} else {
			stats.Expired++
		}
	}
	if lookups := c.hits + c.misses; lookups > 0 {
		stats.HitRate = float64(c.hits) / float64(lookups)
	}
	return stats
}

// copyAnalysis guards the cache's copy of Indicators against caller
// mutation; everything else in Analysis is a value.
func copyAnalysis(a Analysis) Analysis {
	indicators := make([]string, len(a.Indicators))
	copy(indicators, a.Indicators)
	a.Indicators = indicators
	return a
}
