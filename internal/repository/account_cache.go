package repository

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
)

const accountKeyPrefix = "okta_import:account:"

// AccountCache remembers whether an email already has an identity-provider account.
type AccountCache interface {
	// Get returns (exists, found, err); found is false on a cache miss.
	Get(ctx context.Context, email string) (bool, bool, error)
	Set(ctx context.Context, email string, exists bool) error
}

type redisAccountCache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRedisAccountCache builds a Redis-backed cache. A zero ttl keeps entries forever.
func NewRedisAccountCache(client *redis.Client, ttl time.Duration) AccountCache {
	return &redisAccountCache{client: client, ttl: ttl}
}

func (c *redisAccountCache) Get(ctx context.Context, email string) (bool, bool, error) {
	val, err := c.client.Get(ctx, accountKey(email)).Result()
	if errors.Is(err, redis.Nil) {
		return false, false, nil
	}
	if err != nil {
		return false, false, err
	}
	return val == "1", true, nil
}

func (c *redisAccountCache) Set(ctx context.Context, email string, exists bool) error {
	val := "0"
	if exists {
		val = "1"
	}
	return c.client.Set(ctx, accountKey(email), val, c.ttl).Err()
}

func accountKey(email string) string {
	return accountKeyPrefix + strings.ToLower(strings.TrimSpace(email))
}
