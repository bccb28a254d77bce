// Package cache provides a thread-safe, generic LRU cache with optional
// expiry.
//
//	c := cache.NewLRUCache[string, []byte](100, cache.WithTTL[string, []byte](time.Minute))
//
//	c.Put("index.gmi", body)
//	if body, ok := c.Get("index.gmi"); ok {
//		...
//	}
//
// The least recently used entry is evicted once capacity is reached.
// Entries older than the TTL are dropped even if they are used often.
package cache
