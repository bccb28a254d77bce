// Package health provides HTTP probes for a running capsule.
//
// Gemini has no place for health endpoints, so they are served next to
// the metrics on the operator's HTTP listener:
//
//	mux.Handle("/health/live", health.Liveness())
//	mux.Handle("/health/ready", health.Readiness(log, redis.Healthcheck(client)))
//
// Dependency checks follow the func(context.Context) error signature.
package health
