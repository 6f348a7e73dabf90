package ratelimit

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// RedisLimiter enforces fixed-window quotas against a shared Redis instance,
// giving horizontally scaled deployments one global counter per
// (preset, identifier) instead of one per process.
type RedisLimiter struct {
	client *redis.Client
	prefix string
	log    *zap.Logger
}

// NewRedisLimiter creates a Redis-backed limiter.
func NewRedisLimiter(client *redis.Client, log *zap.Logger) *RedisLimiter {
	if log == nil {
		log = zap.NewNop()
	}
	return &RedisLimiter{client: client, prefix: "ratelimit:", log: log}
}

// Allow checks one request against a named preset. The counter key expires
// with the window, so Redis handles sweeping on its own.
func (r *RedisLimiter) Allow(ctx context.Context, identifier string, p Preset) (Result, error) {
	key := r.prefix + p.Name + ":" + identifier

	pipe := r.client.TxPipeline()
	incr := pipe.Incr(ctx, key)
	// Only the request that opens the window sets the expiry; later
	// requests must not push the reset forward.
	pipe.ExpireNX(ctx, key, p.Window)
	ttl := pipe.PTTL(ctx, key)
	if _, err := pipe.Exec(ctx); err != nil {
		return Result{}, fmt.Errorf("rate limit check for %s: %w", p.Name, err)
	}

	count := int(incr.Val())
	resetAt := time.Now().Add(ttl.Val())

	res := Result{
		Allowed:   count <= p.MaxRequests,
		Limit:     p.MaxRequests,
		Remaining: p.MaxRequests - count,
		ResetAt:   resetAt,
	}
	if res.Remaining < 0 {
		res.Remaining = 0
	}
	return res, nil
}

// Ping verifies the Redis connection.
func (r *RedisLimiter) Ping(ctx context.Context) error {
	return r.client.Ping(ctx).Err()
}
