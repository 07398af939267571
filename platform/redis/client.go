// Package redis wraps the go-redis client used for shared counters.
package redis

import (
	"context"
	"crypto/tls"
	"fmt"

	"leadgate/platform/config"

	"github.com/redis/go-redis/v9"
)

// Client wraps the go-redis client with health checking capabilities.
type Client struct {
	*redis.Client
}

// New creates a new Redis client from the provided configuration.
// Returns nil if the URL is empty (Redis not configured).
func New(ctx context.Context, cfg config.RedisConfig) (*Client, error) {
	if cfg.GetRedisURL() == "" {
		return nil, nil
	}

	opts, err := redis.ParseURL(cfg.GetRedisURL())
	if err != nil {
		return nil, fmt.Errorf("parse redis URL: %w", err)
	}
	if cfg.GetRedisTLSInsecure() {
		if opts.TLSConfig == nil {
			opts.TLSConfig = &tls.Config{}
		}
		opts.TLSConfig.InsecureSkipVerify = true
	}

	client := redis.NewClient(opts)
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("redis ping failed: %w", err)
	}

	return &Client{Client: client}, nil
}

// Health checks if the Redis connection is healthy.
func (c *Client) Health(ctx context.Context) error {
	return c.Ping(ctx).Err()
}

// Checker adapts the client to readiness probes that expect Ping(ctx) error.
func (c *Client) Checker() HealthAdapter {
	return HealthAdapter{client: c}
}

// HealthAdapter exposes Client.Health as Ping.
type HealthAdapter struct {
	client *Client
}

// Ping checks Redis connectivity.
func (h HealthAdapter) Ping(ctx context.Context) error {
	return h.client.Health(ctx)
}
