package redisclient

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// KV is the subset of Redis commands the portal relies on. Both the traced
// Client and the in-process MemoryClient satisfy it.
type KV interface {
	Get(ctx context.Context, key string) *redis.StringCmd
	Set(ctx context.Context, key string, value interface{}, expiration time.Duration) *redis.StatusCmd
	SetNX(ctx context.Context, key string, value interface{}, expiration time.Duration) *redis.BoolCmd
	Del(ctx context.Context, keys ...string) *redis.IntCmd
	Expire(ctx context.Context, key string, expiration time.Duration) *redis.BoolCmd
	ScanKeys(ctx context.Context, pattern string) ([]string, error)
	Ping(ctx context.Context) *redis.StatusCmd
}

// Client wraps a Redis client with OpenTelemetry tracing
type Client struct {
	cmdable redis.Cmdable
}

var _ KV = (*Client)(nil)

// NewClient creates a new traced Redis client for single Redis instance
func NewClient(client *redis.Client) *Client {
	return &Client{cmdable: client}
}

// NewClusterClient creates a new traced Redis client for Redis cluster
func NewClusterClient(client *redis.ClusterClient) *Client {
	return &Client{cmdable: client}
}

func (c *Client) start(ctx context.Context, op string, attrs ...attribute.KeyValue) (context.Context, trace.Span, time.Time) {
	attrs = append(attrs,
		attribute.String("redis.operation", op),
		attribute.String("redis.client", "portal-sg"),
	)
	ctx, span := otel.Tracer("redis").Start(ctx, "redis."+op, trace.WithAttributes(attrs...))
	return ctx, span, time.Now()
}

// finish closes the span; redis.Nil is a cache miss, not a failure.
func finish(span trace.Span, start time.Time, err error) {
	duration := time.Since(start)
	span.SetAttributes(
		attribute.Int64("redis.duration_ms", duration.Milliseconds()),
		attribute.String("redis.duration", duration.String()),
	)
	if err != nil && !errors.Is(err, redis.Nil) {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		span.SetAttributes(attribute.String("redis.error", err.Error()))
	} else {
		span.SetStatus(codes.Ok, "success")
	}
	span.End()
}

// Get wraps Redis Get with tracing
func (c *Client) Get(ctx context.Context, key string) *redis.StringCmd {
	ctx, span, start := c.start(ctx, "get", attribute.String("redis.key", key))
	cmd := c.cmdable.Get(ctx, key)
	if errors.Is(cmd.Err(), redis.Nil) {
		span.SetAttributes(attribute.Bool("redis.hit", false))
	}
	finish(span, start, cmd.Err())
	return cmd
}

// Set wraps Redis Set with tracing
func (c *Client) Set(ctx context.Context, key string, value interface{}, expiration time.Duration) *redis.StatusCmd {
	ctx, span, start := c.start(ctx, "set",
		attribute.String("redis.key", key),
		attribute.String("redis.expiration", expiration.String()),
	)
	cmd := c.cmdable.Set(ctx, key, value, expiration)
	finish(span, start, cmd.Err())
	return cmd
}

// SetNX wraps Redis SetNX with tracing
func (c *Client) SetNX(ctx context.Context, key string, value interface{}, expiration time.Duration) *redis.BoolCmd {
	ctx, span, start := c.start(ctx, "setnx",
		attribute.String("redis.key", key),
		attribute.String("redis.expiration", expiration.String()),
	)
	cmd := c.cmdable.SetNX(ctx, key, value, expiration)
	finish(span, start, cmd.Err())
	return cmd
}

// Del wraps Redis Del with tracing
func (c *Client) Del(ctx context.Context, keys ...string) *redis.IntCmd {
	ctx, span, start := c.start(ctx, "del",
		attribute.StringSlice("redis.keys", keys),
		attribute.Int("redis.key_count", len(keys)),
	)
	var cmd *redis.IntCmd
	if cluster, ok := c.cmdable.(*redis.ClusterClient); ok && len(keys) > 1 {
		cmd = delAcrossSlots(ctx, cluster, keys)
	} else {
		cmd = c.cmdable.Del(ctx, keys...)
	}
	finish(span, start, cmd.Err())
	return cmd
}

// delAcrossSlots deletes keys one per command, since a cluster refuses a
// multi-key DEL whose keys hash to different slots.
func delAcrossSlots(ctx context.Context, cluster *redis.ClusterClient, keys []string) *redis.IntCmd {
	cmds, err := cluster.Pipelined(ctx, func(pipe redis.Pipeliner) error {
		for _, key := range keys {
			pipe.Del(ctx, key)
		}
		return nil
	})
	var removed int64
	for _, cmd := range cmds {
		if del, ok := cmd.(*redis.IntCmd); ok {
			removed += del.Val()
		}
	}
	out := redis.NewIntCmd(ctx, "del")
	out.SetVal(removed)
	if err != nil {
		out.SetErr(err)
	}
	return out
}

// Expire wraps Redis Expire with tracing
func (c *Client) Expire(ctx context.Context, key string, expiration time.Duration) *redis.BoolCmd {
	ctx, span, start := c.start(ctx, "expire",
		attribute.String("redis.key", key),
		attribute.String("redis.expiration", expiration.String()),
	)
	cmd := c.cmdable.Expire(ctx, key, expiration)
	finish(span, start, cmd.Err())
	return cmd
}

// TTL wraps Redis TTL with tracing
func (c *Client) TTL(ctx context.Context, key string) *redis.DurationCmd {
	ctx, span, start := c.start(ctx, "ttl", attribute.String("redis.key", key))
	cmd := c.cmdable.TTL(ctx, key)
	finish(span, start, cmd.Err())
	return cmd
}

// ScanKeys walks the keyspace with SCAN and returns every key matching pattern.
// Unlike KEYS it does not block the server on large databases. On a cluster
// every master is scanned.
func (c *Client) ScanKeys(ctx context.Context, pattern string) ([]string, error) {
	ctx, span, start := c.start(ctx, "scan", attribute.String("redis.pattern", pattern))

	var (
		keys []string
		err  error
	)
	if cluster, ok := c.cmdable.(*redis.ClusterClient); ok {
		var mu sync.Mutex
		err = cluster.ForEachMaster(ctx, func(ctx context.Context, node *redis.Client) error {
			found, err := scanNode(ctx, node, pattern)
			mu.Lock()
			keys = append(keys, found...)
			mu.Unlock()
			return err
		})
	} else {
		keys, err = scanNode(ctx, c.cmdable, pattern)
	}

	span.SetAttributes(attribute.Int("redis.key_count", len(keys)))
	finish(span, start, err)
	return keys, err
}

func scanNode(ctx context.Context, node redis.Cmdable, pattern string) ([]string, error) {
	var (
		keys   []string
		cursor uint64
	)
	for {
		batch, next, err := node.Scan(ctx, cursor, pattern, 100).Result()
		if err != nil {
			return keys, err
		}
		keys = append(keys, batch...)
		if next == 0 {
			return keys, nil
		}
		cursor = next
	}
}

// Ping wraps Redis Ping with tracing
func (c *Client) Ping(ctx context.Context) *redis.StatusCmd {
	ctx, span, start := c.start(ctx, "ping")
	cmd := c.cmdable.Ping(ctx)
	finish(span, start, cmd.Err())
	return cmd
}

// PoolStats returns connection pool statistics when the underlying client exposes them
func (c *Client) PoolStats() *redis.PoolStats {
	switch client := c.cmdable.(type) {
	case *redis.Client:
		return client.PoolStats()
	case *redis.ClusterClient:
		return client.PoolStats()
	}
	return nil
}

// Close releases the underlying connections
func (c *Client) Close() error {
	if closer, ok := c.cmdable.(interface{ Close() error }); ok {
		return closer.Close()
	}
	return nil
}
