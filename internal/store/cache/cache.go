package cache

import (
	"context"
	"errors"
	"time"
)

// ErrCacheMiss is returned on absent or expired entries. Expired entries are
// treated as absent, they are not actively purged.
var ErrCacheMiss = errors.New("cache miss")

// CacheService is the contract both cache backends satisfy.
type CacheService interface {
	// Get retrieves a value from the cache, unmarshalling into dest.
	Get(ctx context.Context, key string, dest interface{}) error

	// Set stores a value in the cache with a TTL.
	Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error

	// Delete removes a value from the cache.
	Delete(ctx context.Context, key string) error
}
