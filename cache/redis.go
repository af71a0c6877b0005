package cache

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"
)

// DefaultKeyPrefix namespaces every key written by RedisCache.
const DefaultKeyPrefix = "gatito:"

// RedisCache is a Redis-backed store shared across processes.
// Values are stored as JSON; keys are hashed so arbitrarily long memo keys
// map to fixed-length Redis keys.
type RedisCache[V any] struct {
	client    *redis.Client
	ttl       time.Duration
	keyPrefix string
	logger    *slog.Logger
}

// RedisConfig holds configuration for the Redis cache.
type RedisConfig struct {
	URL       string        // Redis connection URL (e.g., "redis://localhost:6379")
	TTL       time.Duration // Entry TTL (0 = no expiration)
	KeyPrefix string        // Prefix for all keys (default: "gatito:")
	Logger    *slog.Logger  // Receives read/write failures (default: slog.Default())
}

// NewRedisCache connects to Redis and verifies the connection.
func NewRedisCache[V any](cfg RedisConfig) (*RedisCache[V], error) {
	opts, err := redis.ParseURL(cfg.URL)
	if err != nil {
		return nil, err
	}

	client := redis.NewClient(opts)

	// Test connection
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, err
	}

	c := NewRedisCacheFromClient[V](client, cfg.TTL, cfg.KeyPrefix)
	if cfg.Logger != nil {
		c.logger = cfg.Logger
	}
	return c, nil
}

// NewRedisCacheFromClient creates a RedisCache from an existing Redis client.
func NewRedisCacheFromClient[V any](client *redis.Client, ttl time.Duration, keyPrefix string) *RedisCache[V] {
	if keyPrefix == "" {
		keyPrefix = DefaultKeyPrefix
	}
	if ttl < 0 {
		ttl = 0
	}

	return &RedisCache[V]{
		client:    client,
		ttl:       ttl,
		keyPrefix: keyPrefix,
		logger:    slog.Default(),
	}
}

// Key returns the Redis key used for a memo key.
func (c *RedisCache[V]) Key(key string) string {
	sum := sha256.Sum256([]byte(key))
	return c.keyPrefix + hex.EncodeToString(sum[:])
}

// Get retrieves a value from Redis. Failures are logged and read as misses.
func (c *RedisCache[V]) Get(key string) (V, bool) {
	var zero V
	ctx := context.Background()

	data, err := c.client.Get(ctx, c.Key(key)).Bytes()
	if errors.Is(err, redis.Nil) {
		return zero, false
	}
	if err != nil {
		c.logger.Warn("redis cache get failed", "error", err)
		return zero, false
	}

	var value V
	if err := json.Unmarshal(data, &value); err != nil {
		c.logger.Warn("redis cache entry undecodable", "error", err)
		return zero, false
	}
	return value, true
}

// Set stores a value in Redis.
func (c *RedisCache[V]) Set(key string, value V) error {
	data, err := json.Marshal(value)
	if err != nil {
		return err
	}
	return c.client.Set(context.Background(), c.Key(key), data, c.ttl).Err()
}

// Clear deletes every key under the prefix.
func (c *RedisCache[V]) Clear() error {
	ctx := context.Background()

	var cursor uint64
	for {
		keys, next, err := c.client.Scan(ctx, cursor, c.keyPrefix+"*", 0).Result()
		if err != nil {
			return err
		}
		if len(keys) > 0 {
			if err := c.client.Del(ctx, keys...).Err(); err != nil {
				return err
			}
		}
		cursor = next
		if cursor == 0 {
			return nil
		}
	}
}

// Close closes the Redis connection.
func (c *RedisCache[V]) Close() error {
	return c.client.Close()
}

// Ping tests the Redis connection.
func (c *RedisCache[V]) Ping() error {
	return c.client.Ping(context.Background()).Err()
}

// Verify RedisCache implements Store
var _ Store[bool] = (*RedisCache[bool])(nil)
