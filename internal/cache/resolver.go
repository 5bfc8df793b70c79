package cache

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"inbox/internal/observability"
)

// ErrNotFoundInCacheAndStore means both the cache and the backing store came
// up empty for a key the caller requires.
var ErrNotFoundInCacheAndStore = errors.New("not found in cache and store")

// Validator lets a cached snapshot reject itself after a JSON decode that
// technically succeeded but produced an unusable value.
type Validator interface {
	Validate() error
}

// GetOrFetch is the cache-aside resolver. Per call: at most one cache read,
// at most one store read, at most one cache write. A valid cached value
// short-circuits the store; any cache miss, decode failure, or validation
// failure falls through to fetch. The fetched value is written back with the
// TTL on a best-effort basis; a write failure never fails the call. fetch
// returning found=false maps to ErrNotFoundInCacheAndStore. No retries here;
// retry policy belongs to the caller.
func GetOrFetch[T Validator](ctx context.Context, store Store, key string, ttl time.Duration, fetch func(ctx context.Context) (T, bool, error)) (T, error) {
	var zero T

	if raw, found, err := store.Get(ctx, key); err == nil && found {
		var cached T
		if json.Unmarshal([]byte(raw), &cached) == nil && cached.Validate() == nil {
			observability.CacheResolver.WithLabelValues("hit").Inc()
			return cached, nil
		}
		observability.CacheResolver.WithLabelValues("corrupt").Inc()
	} else {
		observability.CacheResolver.WithLabelValues("miss").Inc()
	}

	fetched, found, err := fetch(ctx)
	if err != nil {
		return zero, err
	}
	if !found {
		return zero, ErrNotFoundInCacheAndStore
	}

	if b, err := json.Marshal(fetched); err == nil {
		if err := store.SetWithExpiration(ctx, key, string(b), ttl); err != nil {
			observability.CacheResolver.WithLabelValues("write_failed").Inc()
		}
	}
	return fetched, nil
}
