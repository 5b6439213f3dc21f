// Package ratelimit keeps the last-call state used to space out calls per key.
package ratelimit

import (
	"context"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// Limiter admits at most one call per key per interval. A rejected call does
// not move the window.
type Limiter interface {
	Allow(ctx context.Context, key string) (bool, error)
	Interval() time.Duration
}

// Memory is a process-local Limiter backed by one token bucket per key.
type Memory struct {
	limiters map[string]*rate.Limiter
	mu       sync.RWMutex
	interval time.Duration
	now      func() time.Time
}

// NewMemory creates an in-memory limiter. A nil clock uses time.Now.
func NewMemory(interval time.Duration, now func() time.Time) *Memory {
	if now == nil {
		now = time.Now
	}
	return &Memory{
		limiters: make(map[string]*rate.Limiter),
		interval: interval,
		now:      now,
	}
}

func (m *Memory) Interval() time.Duration { return m.interval }

// getLimiter returns the limiter for key, creating it on first use.
func (m *Memory) getLimiter(key string) *rate.Limiter {
	m.mu.RLock()
	limiter, exists := m.limiters[key]
	m.mu.RUnlock()

	if exists {
		return limiter
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	// Double-check after acquiring write lock
	if limiter, exists = m.limiters[key]; exists {
		return limiter
	}

	limiter = rate.NewLimiter(rate.Every(m.interval), 1)
	m.limiters[key] = limiter

	return limiter
}

func (m *Memory) Allow(_ context.Context, key string) (bool, error) {
	return m.getLimiter(key).AllowN(m.now(), 1), nil
}
