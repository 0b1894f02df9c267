package ratelimit

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisLimiter is a distributed counterpart to Limiter, for deployments
// running more than one HTTP process behind a shared rate-limit cap
// (spec.md §6: "rate-limit caps" as a process input; SPEC_FULL.md's
// domain-stack wiring gives go-redis a home here rather than only in an
// in-memory-only limiter). It uses a fixed one-minute window per key via
// INCR+EXPIRE, the simplest correct pattern for a per-minute cap.
type RedisLimiter struct {
	client *redis.Client
}

// NewRedisLimiter builds a RedisLimiter against addr (host:port).
func NewRedisLimiter(addr string) *RedisLimiter {
	return &RedisLimiter{client: redis.NewClient(&redis.Options{Addr: addr})}
}

// Allow returns true if key has not yet exceeded perMinute requests in
// the current one-minute window.
func (r *RedisLimiter) Allow(ctx context.Context, key string, perMinute int) (bool, error) {
	count, err := r.client.Incr(ctx, key).Result()
	if err != nil {
		return false, err
	}
	if count == 1 {
		r.client.Expire(ctx, key, time.Minute)
	}
	return count <= int64(perMinute), nil
}

// Close releases the underlying connection pool.
func (r *RedisLimiter) Close() error {
	return r.client.Close()
}
