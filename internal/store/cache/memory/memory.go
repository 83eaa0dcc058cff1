package memory

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/cnmzsjbz199328/LazyDog/internal/store/cache"
)

type item struct {
	value     []byte
	expiresAt time.Time
}

// MemoryCache is the in-process cache backend. Expiry is lazy: entries past
// their TTL report a miss on read and are overwritten by the next Set.
type MemoryCache struct {
	items map[string]item
	mu    sync.RWMutex
}

func NewMemoryCache() cache.CacheService {
	return &MemoryCache{
		items: make(map[string]item),
	}
}

func (c *MemoryCache) Get(ctx context.Context, key string, dest interface{}) error {
	c.mu.RLock()
	defer c.mu.RUnlock()

	it, exists := c.items[key]
	if !exists {
		return cache.ErrCacheMiss
	}

	if time.Now().After(it.expiresAt) {
		return cache.ErrCacheMiss
	}

	return json.Unmarshal(it.value, dest)
}

func (c *MemoryCache) Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	data, err := json.Marshal(value)
	if err != nil {
		return err
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	c.items[key] = item{
		value:     data,
		expiresAt: time.Now().Add(ttl),
	}
	return nil
}

func (c *MemoryCache) Delete(ctx context.Context, key string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.items, key)
	return nil
}
