package redis

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/cnmzsjbz199328/LazyDog/internal/store/cache"
	"github.com/redis/go-redis/v9"
)

// RedisCache is the shared cache backend for multi-instance deployments.
// TTL handling is native to redis, so expiry needs no lazy check here.
type RedisCache struct {
	client *redis.Client
}

func NewRedisCache(addr, password string, db int) cache.CacheService {
	return &RedisCache{
		client: redis.NewClient(&redis.Options{
			Addr:     addr,
			Password: password,
			DB:       db,
		}),
	}
}

func (c *RedisCache) Get(ctx context.Context, key string, dest interface{}) error {
	data, err := c.client.Get(ctx, key).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return cache.ErrCacheMiss
		}
		return err
	}
	return json.Unmarshal(data, dest)
}

func (c *RedisCache) Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	data, err := json.Marshal(value)
	if err != nil {
		return err
	}
	return c.client.Set(ctx, key, data, ttl).Err()
}

func (c *RedisCache) Delete(ctx context.Context, key string) error {
	return c.client.Del(ctx, key).Err()
}
