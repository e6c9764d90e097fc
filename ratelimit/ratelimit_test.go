package ratelimit

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeCounter struct {
	counts    map[string]int64
	expires   map[string]time.Duration
	err       error
	expireErr error
}

func newFakeCounter() *fakeCounter {
	return &fakeCounter{counts: map[string]int64{}, expires: map[string]time.Duration{}}
}

func (f *fakeCounter) Incr(_ context.Context, key string) *redis.IntCmd {
	if f.err != nil {
		return redis.NewIntResult(0, f.err)
	}
	f.counts[key]++
	return redis.NewIntResult(f.counts[key], nil)
}

func (f *fakeCounter) Expire(_ context.Context, key string, d time.Duration) *redis.BoolCmd {
	if f.expireErr != nil {
		return redis.NewBoolResult(false, f.expireErr)
	}
	f.expires[key] = d
	return redis.NewBoolResult(true, nil)
}

func (f *fakeCounter) TTL(_ context.Context, key string) *redis.DurationCmd {
	if _, ok := f.counts[key]; !ok {
		return redis.NewDurationResult(-2, nil)
	}
	if d, ok := f.expires[key]; ok {
		return redis.NewDurationResult(d, nil)
	}
	return redis.NewDurationResult(noExpiry, nil)
}

// expireAll simulates the window elapsing.
func (f *fakeCounter) expireAll() {
	for k := range f.expires {
		delete(f.counts, k)
		delete(f.expires, k)
	}
}

func TestRedisLimiterFixedWindow(t *testing.T) {
	fc := newFakeCounter()
	l := &RedisLimiter{client: fc, prefix: "ratelimit:", attempts: 3, window: time.Minute}
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		ok, err := l.Allow(ctx, "verify:1.2.3.4")
		require.NoError(t, err)
		assert.True(t, ok)
	}
	ok, err := l.Allow(ctx, "verify:1.2.3.4")
	require.NoError(t, err)
	assert.False(t, ok)

	assert.Equal(t, time.Minute, fc.expires["ratelimit:verify:1.2.3.4"])

	ok, err = l.Allow(ctx, "verify:5.6.7.8")
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestRedisLimiterRepairsMissingWindow(t *testing.T) {
	fc := newFakeCounter()
	l := &RedisLimiter{client: fc, prefix: "ratelimit:", attempts: 2, window: time.Minute}
	ctx := context.Background()

	fc.expireErr = errors.New("connection reset")
	_, err := l.Allow(ctx, "verify:1.2.3.4")
	require.Error(t, err)
	assert.NotContains(t, fc.expires, "ratelimit:verify:1.2.3.4")

	fc.expireErr = nil
	ok, err := l.Allow(ctx, "verify:1.2.3.4")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, time.Minute, fc.expires["ratelimit:verify:1.2.3.4"])

	ok, err = l.Allow(ctx, "verify:1.2.3.4")
	require.NoError(t, err)
	assert.False(t, ok)

	fc.expireAll()
	ok, err = l.Allow(ctx, "verify:1.2.3.4")
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestRedisLimiterError(t *testing.T) {
	fc := newFakeCounter()
	fc.err = errors.New("connection refused")
	l := &RedisLimiter{client: fc, prefix: "ratelimit:", attempts: 3, window: time.Minute}

	_, err := l.Allow(context.Background(), "k")
	assert.Error(t, err)
}

func TestNoop(t *testing.T) {
	ok, err := Noop{}.Allow(context.Background(), "anything")
	require.NoError(t, err)
	assert.True(t, ok)
}
