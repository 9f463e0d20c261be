package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const keyPrefix = "catalog:"

// CatalogCache caches rendered storefront responses in Redis with a short TTL.
// Admin writes invalidate the whole namespace; storefront reads are the only
// writers of individual keys.
type CatalogCache struct {
	client *redis.Client
	ttl    time.Duration
}

// New creates a new Redis-backed catalog cache.
func New(client *redis.Client, ttl time.Duration) *CatalogCache {
	return &CatalogCache{
		client: client,
		ttl:    ttl,
	}
}

// Get loads the cached value for key into dest. Returns false on a miss.
func (c *CatalogCache) Get(ctx context.Context, key string, dest any) (bool, error) {
	data, err := c.client.Get(ctx, keyPrefix+key).Bytes()
	if err != nil {
		if err == redis.Nil {
			return false, nil
		}
		return false, fmt.Errorf("redis get %s: %w", key, err)
	}

	if err := json.Unmarshal(data, dest); err != nil {
		return false, fmt.Errorf("unmarshal cached %s: %w", key, err)
	}

	return true, nil
}

// Set stores value under key with the configured TTL.
func (c *CatalogCache) Set(ctx context.Context, key string, value any) error {
	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("marshal %s: %w", key, err)
	}

	if err := c.client.Set(ctx, keyPrefix+key, data, c.ttl).Err(); err != nil {
		return fmt.Errorf("redis set %s: %w", key, err)
	}

	return nil
}

// InvalidateAll removes every cached catalog entry. Called after any admin
// write since promos can change the rendering of arbitrary listings.
func (c *CatalogCache) InvalidateAll(ctx context.Context) error {
	iter := c.client.Scan(ctx, 0, keyPrefix+"*", 100).Iterator()
	var keys []string
	for iter.Next(ctx) {
		keys = append(keys, iter.Val())
	}
	if err := iter.Err(); err != nil {
		return fmt.Errorf("redis scan catalog keys: %w", err)
	}

	if len(keys) == 0 {
		return nil
	}

	if err := c.client.Del(ctx, keys...).Err(); err != nil {
		return fmt.Errorf("redis del catalog keys: %w", err)
	}

	return nil
}

// ProductKey builds the cache key for a product detail response.
func ProductKey(slug string) string {
	return "product:" + slug
}

// CategoryKey builds the cache key for a category detail response.
func CategoryKey(slug string) string {
	return "category:" + slug
}

// CategoriesKey is the cache key for the category listing response.
const CategoriesKey = "categories"

// ActivePromosKey is the cache key for the storefront active promo listing.
const ActivePromosKey = "promos:active"
