// Package cache wraps the optional Redis connection shared by the submission
// lock and the live donor feed.
package cache

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// Client wraps the go-redis client with health checking.
type Client struct {
	*redis.Client
}

// New connects to url. It returns nil, nil when url is empty so callers can
// fall back to in-process implementations.
func New(ctx context.Context, url string) (*Client, error) {
	if url == "" {
		return nil, nil
	}

	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("parse redis URL: %w", err)
	}
	opts.DialTimeout = 5 * time.Second
	opts.ReadTimeout = 3 * time.Second
	opts.WriteTimeout = 3 * time.Second

	client := redis.NewClient(opts)
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("redis ping failed: %w", err)
	}
	return &Client{Client: client}, nil
}

// Health pings Redis. A nil client is reported as disabled, not failing.
func (c *Client) Health(ctx context.Context) string {
	if c == nil {
		return "disabled"
	}
	if err := c.Ping(ctx).Err(); err != nil {
		return "unhealthy: " + err.Error()
	}
	return "ok"
}

// Close is safe on a nil client.
func (c *Client) Close() error {
	if c == nil {
		return nil
	}
	return c.Client.Close()
}
