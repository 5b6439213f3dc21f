package ratelimit

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// Redis is a Limiter shared by every gateway instance pointed at the same
// Redis. A key is admitted when SET NX succeeds; the entry expires after the
// interval, reopening the window.
type Redis struct {
	client    redis.UniversalClient
	keyPrefix string
	interval  time.Duration
}

// NewRedis creates a Redis-backed limiter. keyPrefix defaults to
// "prompt-gateway:ratelimit:".
func NewRedis(client redis.UniversalClient, keyPrefix string, interval time.Duration) *Redis {
	if keyPrefix == "" {
		keyPrefix = "prompt-gateway:ratelimit:"
	}
	return &Redis{
		client:    client,
		keyPrefix: keyPrefix,
		interval:  interval,
	}
}

func (r *Redis) Interval() time.Duration { return r.interval }

func (r *Redis) Allow(ctx context.Context, key string) (bool, error) {
	ok, err := r.client.SetNX(ctx, r.keyPrefix+key, time.Now().UnixMilli(), r.interval).Result()
	if err != nil {
		return false, fmt.Errorf("redis rate limit check for %s: %w", key, err)
	}
	return ok, nil
}
