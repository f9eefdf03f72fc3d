// Package explaincache caches explanation text in redis so repeated
// questions about the same congestion event skip the two-step language chain.
// The cache is optional; an empty address disables it.
package explaincache

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/jiayuqiu/sisi-mcp/internal/contract"
)

// Cache is a redis-backed explanation cache.
type Cache struct {
	client *redis.Client
	ttl    time.Duration
}

var _ contract.ExplainCache = &Cache{} // Compile-time check

// New connects to redis and returns a Cache.
func New(ctx context.Context, addr, password string, ttl time.Duration) (*Cache, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to connect to redis at %s: %w", addr, err)
	}
	if ttl <= 0 {
		ttl = contract.DefaultCacheTTL
	}
	return &Cache{client: client, ttl: ttl}, nil
}

// key builds the cache key for one (channel, date) pair.
func key(pipeName string, dateID int) string {
	return fmt.Sprintf("explain:%s:%d", pipeName, dateID)
}

// Get returns the cached text and whether it was present.
func (c *Cache) Get(ctx context.Context, pipeName string, dateID int) (string, bool, error) {
	val, err := c.client.Get(ctx, key(pipeName, dateID)).Result()
	if errors.Is(err, redis.Nil) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("failed to read explanation cache: %w", err)
	}
	return val, true, nil
}

// Set stores the text under the cache TTL.
func (c *Cache) Set(ctx context.Context, pipeName string, dateID int, text string) error {
	if err := c.client.Set(ctx, key(pipeName, dateID), text, c.ttl).Err(); err != nil {
		return fmt.Errorf("failed to write explanation cache: %w", err)
	}
	return nil
}

// Close closes the redis connection.
func (c *Cache) Close() error {
	return c.client.Close()
}
