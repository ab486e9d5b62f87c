package limiter

import (
	"context"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisLimiter is a distributed fixed-window counter. Every identity gets one
// counter key per window; INCR and EXPIRE run in a single pipeline so all
// server instances share the same budget.
type RedisLimiter struct {
	client *redis.Client
	prefix string
}

type RedisOption func(*RedisLimiter)

func WithPrefix(prefix string) RedisOption {
	return func(r *RedisLimiter) {
		r.prefix = prefix
	}
}

func NewRedisLimiter(client *redis.Client, opts ...RedisOption) (*RedisLimiter, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, err
	}

	r := &RedisLimiter{
		client: client,
		prefix: "ratelimit:",
	}
	for _, opt := range opts {
		opt(r)
	}
	return r, nil
}

func (r *RedisLimiter) Allow(ctx context.Context, id Identity, limit Limit) (Decision, error) {
	now := time.Now()
	windowStart := now.Truncate(limit.Window)
	resetTime := windowStart.Add(limit.Window)

	key := r.prefix + string(id.Namespace) + ":" + id.Key + ":" + strconv.FormatInt(windowStart.UnixNano(), 10)

	pipe := r.client.Pipeline()
	incr := pipe.Incr(ctx, key)
	// Expire slightly after the window closes so a counter never outlives
	// its boundary but clock skew between instances stays harmless.
	pipe.Expire(ctx, key, limit.Window*2)
	if _, err := pipe.Exec(ctx); err != nil {
		return Decision{}, err
	}

	count := incr.Val()
	remaining := limit.Requests - count
	if remaining < 0 {
		remaining = 0
	}

	if count > limit.Requests {
		return Decision{
			Allow:      false,
			Remaining:  0,
			RetryAfter: resetTime.Sub(now),
			ResetTime:  resetTime,
		}, nil
	}

	return Decision{
		Allow:     true,
		Remaining: remaining,
		ResetTime: resetTime,
	}, nil
}
