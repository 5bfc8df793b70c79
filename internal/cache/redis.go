// Package cache provides the Redis cache store and a generic cache-aside
// resolver over it. The cache is a disposable accelerator: the backing store
// stays the source of truth on any miss or corruption.
package cache

import (
	"context"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
)

// Store is the minimal cache contract the resolver needs.
type Store interface {
	Get(ctx context.Context, key string) (value string, found bool, err error)
	SetWithExpiration(ctx context.Context, key, value string, ttl time.Duration) error
}

// Redis implements Store on a shared client.
type Redis struct {
	rdb *redis.Client
}

func NewRedis(rdb *redis.Client) *Redis {
	return &Redis{rdb: rdb}
}

func (r *Redis) Get(ctx context.Context, key string) (string, bool, error) {
	val, err := r.rdb.Get(ctx, key).Result()
	if errors.Is(err, redis.Nil) {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return val, true, nil
}

func (r *Redis) SetWithExpiration(ctx context.Context, key, value string, ttl time.Duration) error {
	return r.rdb.Set(ctx, key, value, ttl).Err()
}
