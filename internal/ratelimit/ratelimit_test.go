package ratelimit

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

func TestMemory_Window(t *testing.T) {
	clock := &fakeClock{now: time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)}
	limiter := NewMemory(time.Second, clock.Now)
	ctx := context.Background()

	ok, err := limiter.Allow(ctx, "openai")
	require.NoError(t, err)
	assert.True(t, ok, "first call")

	clock.Advance(999 * time.Millisecond)
	ok, _ = limiter.Allow(ctx, "openai")
	assert.False(t, ok, "inside the window")

	clock.Advance(time.Millisecond)
	ok, _ = limiter.Allow(ctx, "openai")
	assert.True(t, ok, "window elapsed")
}

func TestMemory_RejectionDoesNotExtendWindow(t *testing.T) {
	clock := &fakeClock{now: time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)}
	limiter := NewMemory(time.Second, clock.Now)
	ctx := context.Background()

	ok, _ := limiter.Allow(ctx, "google")
	require.True(t, ok)

	for i := 0; i < 9; i++ {
		clock.Advance(100 * time.Millisecond)
		ok, _ = limiter.Allow(ctx, "google")
		assert.False(t, ok)
	}

	clock.Advance(100 * time.Millisecond)
	ok, _ = limiter.Allow(ctx, "google")
	assert.True(t, ok)
}

func TestMemory_KeysAreIndependent(t *testing.T) {
	limiter := NewMemory(time.Second, nil)
	ctx := context.Background()

	for _, key := range []string{"openai", "anthropic", "google", "replicate"} {
		ok, _ := limiter.Allow(ctx, key)
		assert.True(t, ok, key)
	}
	ok, _ := limiter.Allow(ctx, "anthropic")
	assert.False(t, ok)
	assert.Equal(t, time.Second, limiter.Interval())
}

func TestMemory_ConcurrentCallersAdmitOne(t *testing.T) {
	limiter := NewMemory(time.Hour, nil)

	var (
		wg      sync.WaitGroup
		mu      sync.Mutex
		allowed int
	)
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if ok, _ := limiter.Allow(context.Background(), "replicate"); ok {
				mu.Lock()
				allowed++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 1, allowed)
}

func TestRedis_Window(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	defer client.Close()

	limiter := NewRedis(client, "", time.Second)
	ctx := context.Background()

	ok, err := limiter.Allow(ctx, "openai")
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = limiter.Allow(ctx, "openai")
	require.NoError(t, err)
	assert.False(t, ok)

	ok, _ = limiter.Allow(ctx, "anthropic")
	assert.True(t, ok)

	assert.True(t, mr.Exists("prompt-gateway:ratelimit:openai"))

	mr.FastForward(time.Second)

	ok, _ = limiter.Allow(ctx, "openai")
	assert.True(t, ok)
}

func TestRedis_Unavailable(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr(), MaxRetries: -1})
	defer client.Close()
	mr.Close()

	_, err := NewRedis(client, "test:", time.Second).Allow(context.Background(), "openai")
	assert.Error(t, err)
}
