package ratelimit

import (
	"context"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/sirupsen/logrus"
)

// Limiter decides whether another attempt under key is allowed.
type Limiter interface {
	Allow(ctx context.Context, key string) (bool, error)
}

// Noop allows everything. It is used when no Redis address is configured.
type Noop struct{}

func (Noop) Allow(context.Context, string) (bool, error) {
	return true, nil
}

// counter is the subset of redis.Cmdable the fixed-window limiter needs.
type counter interface {
	Incr(ctx context.Context, key string) *redis.IntCmd
	Expire(ctx context.Context, key string, expiration time.Duration) *redis.BoolCmd
	TTL(ctx context.Context, key string) *redis.DurationCmd
}

// noExpiry is what TTL reports for a key that exists without an expiry.
const noExpiry = time.Duration(-1)

// RedisLimiter is a fixed-window counter: the first hit in a window sets the
// key's expiry, later hits only increment. A counter found without an expiry
// gets a fresh window, so a failed EXPIRE cannot lock a client out.
type RedisLimiter struct {
	client   counter
	prefix   string
	attempts int64
	window   time.Duration
}

func NewRedisLimiter(client redis.Cmdable, attempts int, window time.Duration) *RedisLimiter {
	return &RedisLimiter{
		client:   client,
		prefix:   "ratelimit:",
		attempts: int64(attempts),
		window:   window,
	}
}

func (l *RedisLimiter) Allow(ctx context.Context, key string) (bool, error) {
	k := l.prefix + key
	n, err := l.client.Incr(ctx, k).Result()
	if err != nil {
		return false, fmt.Errorf("failed to increment rate counter: %w", err)
	}
	needsWindow := n == 1
	if !needsWindow {
		ttl, err := l.client.TTL(ctx, k).Result()
		if err != nil {
			return false, fmt.Errorf("failed to read rate window: %w", err)
		}
		needsWindow = ttl == noExpiry
	}
	if needsWindow {
		if err := l.client.Expire(ctx, k, l.window).Err(); err != nil {
			return false, fmt.Errorf("failed to set rate window: %w", err)
		}
	}
	return n <= l.attempts, nil
}

// OpenRedis returns a client without pinging; connection errors surface on first use.
func OpenRedis(addr, password string, db int) *redis.Client {
	logrus.Infof("redis connecting %s[%d]", addr, db)
	return redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})
}
