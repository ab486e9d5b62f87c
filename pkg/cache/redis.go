package cache

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
)

// LinkCacheInterface caches slug -> destination mappings for the redirect
// hot path.
type LinkCacheInterface interface {
	GetDestination(ctx context.Context, slug string) (string, bool, error)
	SetDestination(ctx context.Context, slug string, destination string, ttl time.Duration) error
	Delete(ctx context.Context, slug string) error
}

type LinkCache struct {
	client *redis.Client
}

func NewLinkCache(client *redis.Client) *LinkCache {
	return &LinkCache{client: client}
}

// GetDestination returns the cached destination for slug. The second return
// value is false on a cache miss.
func (c *LinkCache) GetDestination(ctx context.Context, slug string) (string, bool, error) {
	key := "link:" + slug
	val, err := c.client.Get(ctx, key).Result()
	if err == redis.Nil {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return val, true, nil
}

func (c *LinkCache) SetDestination(ctx context.Context, slug string, destination string, ttl time.Duration) error {
	key := "link:" + slug
	return c.client.Set(ctx, key, destination, ttl).Err()
}

func (c *LinkCache) Delete(ctx context.Context, slug string) error {
	key := "link:" + slug
	return c.client.Del(ctx, key).Err()
}
