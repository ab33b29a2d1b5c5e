package embedding

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"time"

	gocache "github.com/patrickmn/go-cache"
)

const defaultCacheTTL = 30 * time.Minute

// CachedProvider memoizes embeddings by text hash. Repeated semantic
// searches for the same query skip the round trip to the embedding API.
type CachedProvider struct {
	inner Provider
	cache *gocache.Cache
}

func NewCached(inner Provider, ttl time.Duration) *CachedProvider {
	if ttl <= 0 {
		ttl = defaultCacheTTL
	}
	return &CachedProvider{
		inner: inner,
		cache: gocache.New(ttl, 10*time.Minute),
	}
}

func (c *CachedProvider) Embed(ctx context.Context, text string) ([]float64, error) {
	key := cacheKey(text)
	if cached, ok := c.cache.Get(key); ok {
		return cached.([]float64), nil
	}

	vector, err := c.inner.Embed(ctx, text)
	if err != nil {
		return nil, err
	}

	c.cache.Set(key, vector, gocache.DefaultExpiration)
	return vector, nil
}

func cacheKey(text string) string {
	sum := sha256.Sum256([]byte(text))
	return hex.EncodeToString(sum[:])
}
