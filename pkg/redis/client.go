// Package redis stores compressed index artifacts in Redis with go-redis/v9.
// Every build is kept under its own key and a per-variant pointer names the
// latest one, so readers can load an index without the output directory.
package redis

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/Adithya-Monish-Kumar-K/cranfield-index/pkg/config"
)

// Client wraps a go-redis client and the artifact key namespace.
type Client struct {
	rdb    *redis.Client
	prefix string
	ttl    time.Duration
}

// NewClient creates a Redis client and verifies the connection with a PING.
func NewClient(cfg config.RedisConfig) (*Client, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
		PoolSize: cfg.PoolSize,
	})
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := rdb.Ping(ctx).Err(); err != nil {
		rdb.Close()
		return nil, fmt.Errorf("redis ping failed: %w", err)
	}
	prefix := cfg.KeyPrefix
	if prefix == "" {
		prefix = "cranfield"
	}
	return &Client{rdb: rdb, prefix: prefix, ttl: cfg.TTL}, nil
}

// ArtifactKey is the key holding the compressed artifact of one build.
func (c *Client) ArtifactKey(variant, buildID string) string {
	return fmt.Sprintf("%s:index:%s:%s", c.prefix, variant, buildID)
}

// LatestKey is the key naming the most recent build of variant.
func (c *Client) LatestKey(variant string) string {
	return fmt.Sprintf("%s:index:%s:latest", c.prefix, variant)
}

// PutArtifact stores data and its metadata hash for one build and moves the
// latest pointer, all in one MULTI/EXEC transaction.
func (c *Client) PutArtifact(ctx context.Context, variant, buildID string, data []byte, meta map[string]any) error {
	key := c.ArtifactKey(variant, buildID)
	_, err := c.rdb.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Set(ctx, key, data, c.ttl)
		if len(meta) > 0 {
			pipe.HSet(ctx, key+":meta", meta)
			if c.ttl > 0 {
				pipe.Expire(ctx, key+":meta", c.ttl)
			}
		}
		pipe.Set(ctx, c.LatestKey(variant), buildID, c.ttl)
		return nil
	})
	if err != nil {
		return fmt.Errorf("storing artifact %s: %w", key, err)
	}
	return nil
}

// LatestArtifact returns the build id and compressed artifact last stored
// for variant.
func (c *Client) LatestArtifact(ctx context.Context, variant string) (string, []byte, error) {
	buildID, err := c.rdb.Get(ctx, c.LatestKey(variant)).Result()
	if err != nil {
		return "", nil, fmt.Errorf("reading latest build of %s: %w", variant, err)
	}
	data, err := c.rdb.Get(ctx, c.ArtifactKey(variant, buildID)).Bytes()
	if err != nil {
		return "", nil, fmt.Errorf("reading artifact of build %s: %w", buildID, err)
	}
	return buildID, data, nil
}

// Meta returns the metadata hash of one build.
func (c *Client) Meta(ctx context.Context, variant, buildID string) (map[string]string, error) {
	return c.rdb.HGetAll(ctx, c.ArtifactKey(variant, buildID)+":meta").Result()
}

// IsNilError reports whether err is, or wraps, a Redis nil (key-not-found)
// error.
func IsNilError(err error) bool {
	return errors.Is(err, redis.Nil)
}

// Close closes the underlying Redis connection.
func (c *Client) Close() error {
	return c.rdb.Close()
}

// Ping sends a PING to Redis and returns any error.
func (c *Client) Ping(ctx context.Context) error {
	return c.rdb.Ping(ctx).Err()
}
