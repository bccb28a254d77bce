// Package ratelimiter provides token bucket rate limiting with pluggable
// storage.
//
// A bucket holds up to Capacity tokens and gains RefillRate tokens every
// RefillInterval. Each request consumes tokens; a request that finds too
// few is denied until the bucket refills.
//
//	store := ratelimiter.NewMemoryStore()
//	go store.Run(ctx, time.Minute)
//
//	limiter, err := ratelimiter.NewBucket(store, ratelimiter.Config{
//		Capacity:       20,
//		RefillRate:     1,
//		RefillInterval: 3 * time.Second,
//	})
//	if err != nil {
//		return err
//	}
//
//	res, err := limiter.Allow(ctx, clientIP)
//	if err == nil && !res.Allowed() {
//		wait := res.RetryAfter()
//		...
//	}
//
// Capsules pass a limiter to fluffer.WithRateLimit; denied clients get
// status 44 with the number of seconds to wait.
package ratelimiter
