package catalog

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
)

// Cache is a short-lived redis read cache for product detail lookups. A nil
// cache (or a failing redis) degrades to loading straight from the repository.
type Cache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewCache instantiates the cache helper.
func NewCache(client *redis.Client, ttl time.Duration) *Cache {
	return &Cache{client: client, ttl: ttl}
}

func productCacheKey(id string) string {
	return "catalog:product:" + id
}

// FetchProduct loads a cached product or populates the cache via loader.
func (c *Cache) FetchProduct(ctx context.Context, id string, loader func(context.Context) (*Product, error)) (*Product, error) {
	if c == nil || c.client == nil {
		return loader(ctx)
	}

	payload, err := c.client.Get(ctx, productCacheKey(id)).Bytes()
	if err == nil {
		var p Product
		if jsonErr := json.Unmarshal(payload, &p); jsonErr == nil {
			return &p, nil
		}
	} else if !errors.Is(err, redis.Nil) {
		// cache trouble is not a request failure
		return loader(ctx)
	}

	p, err := loader(ctx)
	if err != nil {
		return nil, err
	}
	if raw, err := json.Marshal(p); err == nil {
		_ = c.client.Set(ctx, productCacheKey(id), raw, c.ttl).Err()
	}
	return p, nil
}

// Invalidate drops a product from the cache, used after stock changes.
func (c *Cache) Invalidate(ctx context.Context, id string) {
	if c == nil || c.client == nil {
		return
	}
	_ = c.client.Del(ctx, productCacheKey(id)).Err()
}
