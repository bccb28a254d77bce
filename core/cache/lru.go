package cache

import (
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"
)

// DefaultCapacity is used when NewLRUCache is given a non-positive size.
const DefaultCapacity = 128

// LRUCache evicts the least recently used entry when full.
type LRUCache[K comparable, V any] struct {
	lru *expirable.LRU[K, V]
}

// Option configures an LRUCache.
type Option[K comparable, V any] func(*options[K, V])

type options[K comparable, V any] struct {
	ttl     time.Duration
	onEvict func(K, V)
}

// WithTTL expires entries d after they were stored. Zero keeps them until
// evicted.
func WithTTL[K comparable, V any](d time.Duration) Option[K, V] {
	return func(o *options[K, V]) {
		if d > 0 {
			o.ttl = d
		}
	}
}

// WithEvictCallback runs fn for every entry leaving the cache, whether
// evicted, expired or removed.
func WithEvictCallback[K comparable, V any](fn func(K, V)) Option[K, V] {
	return func(o *options[K, V]) {
		o.onEvict = fn
	}
}

// NewLRUCache creates a cache holding up to capacity entries.
func NewLRUCache[K comparable, V any](capacity int, opts ...Option[K, V]) *LRUCache[K, V] {
	if capacity <= 0 {
		capacity = DefaultCapacity
	}
	o := &options[K, V]{}
	for _, opt := range opts {
		opt(o)
	}

	var onEvict expirable.EvictCallback[K, V]
	if o.onEvict != nil {
		onEvict = o.onEvict
	}
	return &LRUCache[K, V]{lru: expirable.NewLRU(capacity, onEvict, o.ttl)}
}

func (c *LRUCache[K, V]) Get(key K) (V, bool) {
	return c.lru.Get(key)
}

// Put stores value and reports whether an older entry was evicted to
// make room.
func (c *LRUCache[K, V]) Put(key K, value V) bool {
	return c.lru.Add(key, value)
}

// Remove deletes key and returns the value it held.
func (c *LRUCache[K, V]) Remove(key K) (V, bool) {
	value, ok := c.lru.Peek(key)
	if ok {
		c.lru.Remove(key)
	}
	return value, ok
}

func (c *LRUCache[K, V]) Len() int {
	return c.lru.Len()
}

// Purge empties the cache.
func (c *LRUCache[K, V]) Purge() {
	c.lru.Purge()
}
