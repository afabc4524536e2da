package knowledge

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/dgraph-io/ristretto"
)

// CachedSource is a read-through cache over another Source. Lookups are
// keyed by topic bucket, which is the source's own granularity, so a hit
// is always equivalent to a fresh lookup. Errors from the inner source
// are never cached.
type CachedSource struct {
	inner Source
	cache *ristretto.Cache
	ttl   time.Duration
}

// NewCached wraps a source with a bucket-keyed cache.
func NewCached(inner Source, ttl time.Duration) (*CachedSource, error) {
	cache, err := ristretto.NewCache(&ristretto.Config{
		NumCounters: 1 << 10,
		MaxCost:     1 << 20,
		BufferItems: 64,
		Metrics:     true,
	})
	if err != nil {
		return nil, fmt.Errorf("create knowledge cache: %w", err)
	}
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}
	return &CachedSource{inner: inner, cache: cache, ttl: ttl}, nil
}

// Lookup serves from cache when the bucket was seen recently, otherwise
// delegates and stores the result.
func (c *CachedSource) Lookup(ctx context.Context, query string) (*Result, error) {
	key := string(SniffTopic(query))

	if hit, ok := c.cache.Get(key); ok {
		if result, ok := hit.(*Result); ok {
			return result, nil
		}
	}

	result, err := c.inner.Lookup(ctx, query)
	if err != nil {
		return nil, err
	}

	c.cache.SetWithTTL(key, result, 1, c.ttl)
	return result, nil
}

// LogMetrics writes cache hit ratios to the log. Called opportunistically
// by hosts; there is no metrics export surface.
func (c *CachedSource) LogMetrics() {
	m := c.cache.Metrics
	if m == nil {
		return
	}
	log.Printf("[KNOWLEDGE] cache hits=%d misses=%d ratio=%.2f", m.Hits(), m.Misses(), m.Ratio())
}
