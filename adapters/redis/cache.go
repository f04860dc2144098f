// Package rediscache provides a Redis-backed TTL cache for raw literature
// search responses.
package rediscache

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
)

// Config configures the Redis-backed Cache.
type Config struct {
	Addr         string
	DB           int
	Username     string
	Password     string
	Prefix       string
	TTL          time.Duration
	DialTimeout  time.Duration
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

// Cache stores raw search responses under a key prefix with a fixed TTL.
type Cache struct {
	rdb    redis.UniversalClient
	prefix string
	ttl    time.Duration
	// ownsClient determines whether Close() should close the underlying client
	ownsClient bool
}

// New creates a Cache with the provided configuration.
func New(cfg Config) (*Cache, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:         cfg.Addr,
		Username:     cfg.Username,
		Password:     cfg.Password,
		DB:           cfg.DB,
		DialTimeout:  cfg.DialTimeout,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
	})
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := rdb.Ping(ctx).Err(); err != nil {
		return nil, err
	}
	c := newCache(rdb, cfg)
	c.ownsClient = true
	return c, nil
}

// NewFromClient constructs a Cache from a user-managed redis.UniversalClient.
// The Cache will not Close() the client.
func NewFromClient(ctx context.Context, rdb redis.UniversalClient, cfg Config) (*Cache, error) {
	if err := rdb.Ping(ctx).Err(); err != nil {
		return nil, err
	}
	return newCache(rdb, cfg), nil
}

func newCache(rdb redis.UniversalClient, cfg Config) *Cache {
	prefix := cfg.Prefix
	if prefix == "" {
		prefix = "scholarstream"
	}
	ttl := cfg.TTL
	if ttl <= 0 {
		ttl = 15 * time.Minute
	}
	return &Cache{rdb: rdb, prefix: prefix, ttl: ttl}
}

func (c *Cache) key(k string) string { return c.prefix + ":search:" + k }

// Get returns the cached value for key, reporting whether it was present.
func (c *Cache) Get(ctx context.Context, key string) (string, bool, error) {
	v, err := c.rdb.Get(ctx, c.key(key)).Result()
	if err == redis.Nil {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return v, true, nil
}

// Set stores value under key with the configured TTL.
func (c *Cache) Set(ctx context.Context, key, value string) error {
	return c.rdb.Set(ctx, c.key(key), value, c.ttl).Err()
}

// Close closes the underlying Redis client if owned.
func (c *Cache) Close() error {
	if c.ownsClient {
		return c.rdb.Close()
	}
	return nil
}
