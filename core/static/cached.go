package static

import (
	"context"
	"time"

	"github.com/catb00mer/fluffer/core/cache"
)

type cachedSource struct {
	src    Source
	assets *cache.LRUCache[string, Asset]
}

// Cached keeps up to size successfully opened assets of src in memory for
// ttl. Failures are not cached. Use it in front of remote sources.
func Cached(src Source, size int, ttl time.Duration) Source {
	return &cachedSource{
		src:    src,
		assets: cache.NewLRUCache(size, cache.WithTTL[string, Asset](ttl)),
	}
}

// Open implements Source.
func (c *cachedSource) Open(ctx context.Context, name string) (Asset, error) {
	if a, ok := c.assets.Get(name); ok {
		return a, nil
	}
	a, err := c.src.Open(ctx, name)
	if err != nil {
		return Asset{}, err
	}
	c.assets.Put(name, a)
	return a, nil
}
