package ratelimit

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"intake/internal/constants"
)

// fixedWindowScript returns {allowed, count, pttl}. A denied call leaves the
// counter untouched.
var fixedWindowScript = redis.NewScript(`
local current = tonumber(redis.call('GET', KEYS[1]) or '0')
if current >= tonumber(ARGV[1]) then
	return {0, current, redis.call('PTTL', KEYS[1])}
end
local count = redis.call('INCR', KEYS[1])
local ttl = redis.call('PTTL', KEYS[1])
if count == 1 or ttl < 0 then
	redis.call('PEXPIRE', KEYS[1], ARGV[2])
	ttl = tonumber(ARGV[2])
end
return {1, count, ttl}
`)

// RedisLimiter shares fixed-window counters across processes.
type RedisLimiter struct {
	client redis.Scripter
	limit  int
	window time.Duration
	prefix string
	clock  Clock
}

func NewRedisLimiter(client redis.Scripter, limit int, window time.Duration, opts ...Option) *RedisLimiter {
	o := buildOptions(opts)
	return &RedisLimiter{
		client: client,
		limit:  limit,
		window: window,
		prefix: constants.RateLimitKeyPrefix,
		clock:  o.clock,
	}
}

func (l *RedisLimiter) Allow(ctx context.Context, key string) (Decision, error) {
	res, err := fixedWindowScript.Run(ctx, l.client,
		[]string{l.prefix + key},
		l.limit, l.window.Milliseconds(),
	).Int64Slice()
	if err != nil {
		return Decision{}, fmt.Errorf("failed to evaluate rate limit script: %w", err)
	}
	if len(res) != 3 {
		return Decision{}, fmt.Errorf("unexpected rate limit script result: %v", res)
	}

	ttl := time.Duration(res[2]) * time.Millisecond
	if ttl < 0 {
		ttl = l.window
	}

	return Decision{
		Allowed: res[0] == 1,
		Count:   int(res[1]),
		Limit:   l.limit,
		ResetAt: l.clock().Add(ttl),
	}, nil
}
