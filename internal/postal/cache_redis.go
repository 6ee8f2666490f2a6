package postal

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const cacheKeyPrefix = "cep:"

// RedisCache shares lookup results between server instances.
type RedisCache struct {
	client *redis.Client
}

func NewRedisCache(client *redis.Client) *RedisCache {
	return &RedisCache{client: client}
}

func (c *RedisCache) Get(ctx context.Context, cep string) (Entry, bool, error) {
	raw, err := c.client.Get(ctx, cacheKeyPrefix+cep).Bytes()
	if errors.Is(err, redis.Nil) {
		return Entry{}, false, nil
	}
	if err != nil {
		return Entry{}, false, fmt.Errorf("load cep %s: %w", cep, err)
	}
	var entry Entry
	if err := json.Unmarshal(raw, &entry); err != nil {
		return Entry{}, false, fmt.Errorf("decode cep %s: %w", cep, err)
	}
	if !entry.NotFound && entry.Address == nil {
		return Entry{}, false, nil
	}
	return entry, true, nil
}

func (c *RedisCache) Set(ctx context.Context, cep string, entry Entry, ttl time.Duration) error {
	raw, err := json.Marshal(entry)
	if err != nil {
		return fmt.Errorf("encode cep %s: %w", cep, err)
	}
	if err := c.client.Set(ctx, cacheKeyPrefix+cep, raw, ttl).Err(); err != nil {
		return fmt.Errorf("store cep %s: %w", cep, err)
	}
	return nil
}
