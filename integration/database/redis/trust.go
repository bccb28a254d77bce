package redis

import (
	"context"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/catb00mer/fluffer/core/trust"
)

// Client is the subset of redis.UniversalClient the trust store needs.
type Client interface {
	Get(ctx context.Context, key string) *redis.StringCmd
	SetNX(ctx context.Context, key string, value any, expiration time.Duration) *redis.BoolCmd
	Del(ctx context.Context, keys ...string) *redis.IntCmd
}

// TrustStore pins certificate fingerprints in Redis so every capsule
// instance sharing the server agrees on them.
type TrustStore struct {
	client Client
	prefix string
}

var _ trust.Store = (*TrustStore)(nil)

// NewTrustStore creates a store whose keys start with prefix.
func NewTrustStore(client Client, prefix string) *TrustStore {
	return &TrustStore{client: client, prefix: prefix}
}

func (s *TrustStore) key(name string) string {
	return s.prefix + name
}

// Lookup implements trust.Store.
func (s *TrustStore) Lookup(ctx context.Context, name string) (string, error) {
	fp, err := s.client.Get(ctx, s.key(name)).Result()
	if errors.Is(err, redis.Nil) {
		return "", trust.ErrUnknown
	}
	if err != nil {
		return "", errors.Join(ErrTrustStore, err)
	}
	return fp, nil
}

// Remember implements trust.Store. Pins never expire.
func (s *TrustStore) Remember(ctx context.Context, name, fingerprint string) (bool, error) {
	ok, err := s.client.SetNX(ctx, s.key(name), fingerprint, 0).Result()
	if err != nil {
		return false, errors.Join(ErrTrustStore, err)
	}
	return ok, nil
}

// Forget implements trust.Store.
func (s *TrustStore) Forget(ctx context.Context, name string) error {
	if err := s.client.Del(ctx, s.key(name)).Err(); err != nil {
		return errors.Join(ErrTrustStore, err)
	}
	return nil
}
