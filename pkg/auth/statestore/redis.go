package statestore

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/dmitrymomot/authkit/pkg/auth"
)

const redisKeyPrefix = "oauth:state:"

// RedisStore is a redis-backed auth.StateStore. Expiry is delegated to
// redis key TTLs and consumption uses GETDEL so each state is redeemable at
// most once across all processes.
type RedisStore struct {
	client redis.UniversalClient
}

// NewRedisStore creates a redis-backed state store.
func NewRedisStore(client redis.UniversalClient) *RedisStore {
	return &RedisStore{client: client}
}

// Store saves a state under the key prefix with the given TTL.
func (s *RedisStore) Store(ctx context.Context, state string, ttl time.Duration) error {
	if err := s.client.Set(ctx, redisKeyPrefix+state, "1", ttl).Err(); err != nil {
		return fmt.Errorf("failed to store oauth state: %w", err)
	}
	return nil
}

// Consume atomically removes the state, failing with auth.ErrStateNotFound
// when it is unknown or already expired.
func (s *RedisStore) Consume(ctx context.Context, state string) error {
	err := s.client.GetDel(ctx, redisKeyPrefix+state).Err()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return auth.ErrStateNotFound
		}
		return fmt.Errorf("failed to consume oauth state: %w", err)
	}
	return nil
}

var _ auth.StateStore = (*RedisStore)(nil)
