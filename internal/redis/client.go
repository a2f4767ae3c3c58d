package redis

import (
	"context"
	"fmt"
	"log"

	"github.com/redis/go-redis/v9"
)

// Client is the shared Redis connection. The embedded *redis.Client is what
// command users such as the login limiter take.
type Client struct {
	*redis.Client
}

// NewClient creates a client from a URL of the form
// redis://[:password@]host:port[/db].
func NewClient(redisURL string) (*Client, error) {
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}

	return &Client{Client: redis.NewClient(opts)}, nil
}

// Connect creates a client and pings it once, so a bad URL or unreachable
// server fails at startup instead of on the first login.
func Connect(ctx context.Context, redisURL string) (*Client, error) {
	c, err := NewClient(redisURL)
	if err != nil {
		return nil, err
	}

	if err := c.Ping(ctx); err != nil {
		_ = c.Close()
		return nil, err
	}

	log.Printf("Connected to Redis at %s", c.Options().Addr)
	return c, nil
}

// Ping verifies the connection to Redis.
func (c *Client) Ping(ctx context.Context) error {
	if err := c.Client.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("redis ping: %w", err)
	}
	return nil
}
