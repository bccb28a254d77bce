// Package redis connects to Redis and stores pinned client certificate
// fingerprints there.
//
// Connect validates the URL, then pings with retries until the server answers
// or the attempts run out. Healthcheck wraps a ping for readiness probes.
//
//	cfg := redis.Config{ConnectionURL: "redis://localhost:6379/0", RetryAttempts: 3}
//	client, err := redis.Connect(ctx, cfg)
//	if err != nil {
//		return err
//	}
//	defer client.Close()
//
// TrustStore implements trust.Store. Pins are written with SETNX so two
// capsule instances racing on the same name agree on a single winner:
//
//	store := redis.NewTrustStore(client, cfg.KeyPrefix)
//	verdict, err := c.Trust(store, "alice")
//
// Errors from the client are joined with ErrTrustStore. A missing key is
// reported as trust.ErrUnknown.
package redis
