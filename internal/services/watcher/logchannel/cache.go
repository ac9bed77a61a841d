package logchannel

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// CacheTTL is how long a guild's log channels stay cached.
const CacheTTL = time.Hour

// RedisCache caches the log channels of each guild as a JSON list.
type RedisCache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRedisCache creates a cache on top of client.
func NewRedisCache(client *redis.Client) *RedisCache {
	return &RedisCache{client: client, ttl: CacheTTL}
}

// NewRedisClient connects to the server at url, e.g. redis://localhost:6379/0.
func NewRedisClient(ctx context.Context, url string) (*redis.Client, error) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("failed to parse redis url: %w", err)
	}

	client := redis.NewClient(opts)
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}
	return client, nil
}

func cacheKey(guildID string) string {
	return "logChannel:" + guildID
}

// Get returns the cached channels. ok is false on a cache miss.
func (c *RedisCache) Get(ctx context.Context, guildID string) (channels []LogChannel, ok bool, err error) {
	raw, err := c.client.Get(ctx, cacheKey(guildID)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("failed to read cache: %w", err)
	}

	if err := json.Unmarshal(raw, &channels); err != nil {
		return nil, false, fmt.Errorf("failed to decode cached log channels: %w", err)
	}
	return channels, true, nil
}

// Set caches channels for guildID.
func (c *RedisCache) Set(ctx context.Context, guildID string, channels []LogChannel) error {
	raw, err := json.Marshal(channels)
	if err != nil {
		return fmt.Errorf("failed to encode log channels: %w", err)
	}
	if err := c.client.Set(ctx, cacheKey(guildID), raw, c.ttl).Err(); err != nil {
		return fmt.Errorf("failed to write cache: %w", err)
	}
	return nil
}
