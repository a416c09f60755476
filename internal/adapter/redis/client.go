package redis

import (
	"context"
	"fmt"

	goredis "github.com/redis/go-redis/v9"
)

// Client wraps a go-redis client with the hooks binp installs.
type Client struct {
	rdb *goredis.Client
}

// NewClient creates a Redis client from a URL (e.g. "redis://localhost:6379/0").
// Hooks run in the given order, the first one outermost.
func NewClient(redisURL string, hooks ...goredis.Hook) (*Client, error) {
	opts, err := goredis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse redis URL: %w", err)
	}

	rdb := goredis.NewClient(opts)
	for _, hook := range hooks {
		rdb.AddHook(hook)
	}
	return &Client{rdb: rdb}, nil
}

// Ping verifies the Redis connection.
func (c *Client) Ping(ctx context.Context) error {
	return c.rdb.Ping(ctx).Err()
}

func (c *Client) Close() error {
	return c.rdb.Close()
}

// Underlying returns the raw go-redis client.
func (c *Client) Underlying() *goredis.Client {
	return c.rdb
}
