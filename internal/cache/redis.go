package cache

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/dhushyanth-h-m/blog-api/internal/config"
)

// RedisClient is a thin handle on the external cache store. A nil
// *RedisClient is valid and behaves as a permanently unavailable store, so
// the API can run with caching disabled.
type RedisClient struct {
	client *redis.Client
}

// NewRedisClient connects to Redis using the given configuration. It returns
// nil when the store is not configured; callers treat that as cache
// disabled rather than an error.
func NewRedisClient(cfg *config.Config) *RedisClient {
	if cfg == nil || !cfg.Redis.Enabled {
		return nil
	}

	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Host + ":" + cfg.Redis.Port,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})

	return &RedisClient{client: rdb}
}

// NewRedisClientFromAddr builds a client for an already-known address.
// Used by tests to point at miniredis.
func NewRedisClientFromAddr(addr string) *RedisClient {
	return &RedisClient{client: redis.NewClient(&redis.Options{Addr: addr})}
}

// Enabled reports whether a store connection is configured at all.
func (r *RedisClient) Enabled() bool {
	return r != nil && r.client != nil
}

// Available reports whether the store is configured and answering. This is
// the single liveness check every caching component consults.
func (r *RedisClient) Available(ctx context.Context) bool {
	return r.Enabled() && r.client.Ping(ctx).Err() == nil
}

// Set serializes value to JSON and writes it with the given expiry.
func (r *RedisClient) Set(ctx context.Context, key string, value interface{}, expiration time.Duration) error {
	data, err := json.Marshal(value)
	if err != nil {
		return err
	}
	return r.client.Set(ctx, key, data, expiration).Err()
}

// Get reads key and unmarshals the stored JSON into dest. Returns
// redis.Nil when the key is absent.
func (r *RedisClient) Get(ctx context.Context, key string, dest interface{}) error {
	data, err := r.client.Get(ctx, key).Result()
	if err != nil {
		return err
	}
	return json.Unmarshal([]byte(data), dest)
}

// SetRaw writes a pre-serialized body under key. The response-cache
// middleware stores bodies verbatim so a hit replays identical bytes.
func (r *RedisClient) SetRaw(ctx context.Context, key, value string, expiration time.Duration) error {
	return r.client.Set(ctx, key, value, expiration).Err()
}

// GetRaw reads the raw string stored under key.
func (r *RedisClient) GetRaw(ctx context.Context, key string) (string, error) {
	return r.client.Get(ctx, key).Result()
}

// Del removes the given keys and returns how many actually existed.
func (r *RedisClient) Del(ctx context.Context, keys ...string) (int64, error) {
	if len(keys) == 0 {
		return 0, nil
	}
	return r.client.Del(ctx, keys...).Result()
}

// Keys resolves all keys matching pattern using SCAN rather than KEYS, so
// a large keyspace does not block the store.
func (r *RedisClient) Keys(ctx context.Context, pattern string) ([]string, error) {
	var (
		cursor uint64
		found  []string
	)
	for {
		keys, next, err := r.client.Scan(ctx, cursor, pattern, 100).Result()
		if err != nil {
			return nil, err
		}
		found = append(found, keys...)
		cursor = next
		if cursor == 0 {
			return found, nil
		}
	}
}

// Ping issues a liveness probe.
func (r *RedisClient) Ping(ctx context.Context) error {
	return r.client.Ping(ctx).Err()
}

// Info returns the raw INFO output for the given section.
func (r *RedisClient) Info(ctx context.Context, section string) (string, error) {
	return r.client.Info(ctx, section).Result()
}

func (r *RedisClient) Close() error {
	if !r.Enabled() {
		return nil
	}
	return r.client.Close()
}
