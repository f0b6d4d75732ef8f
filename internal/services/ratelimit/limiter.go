package ratelimit

import (
	"context"
	"fmt"
	"sync"

	"golang.org/x/time/rate"
)

// Limit is a token bucket setting for one key.
type Limit struct {
	RPS   float64
	Burst int
}

// Limiter holds one token bucket per key (vendor name). Unknown keys get the default limit.
type Limiter struct {
	mu       sync.Mutex
	m        map[string]*rate.Limiter
	fallback Limit
}

func New(fallback Limit) *Limiter {
	if fallback.Burst < 1 {
		fallback.Burst = 1
	}
	return &Limiter{m: make(map[string]*rate.Limiter), fallback: fallback}
}

// Configure sets or replaces the bucket for key.
func (l *Limiter) Configure(key string, lim Limit) {
	if lim.Burst < 1 {
		lim.Burst = 1
	}
	l.mu.Lock()
	l.m[key] = rate.NewLimiter(rate.Limit(lim.RPS), lim.Burst)
	l.mu.Unlock()
}

func (l *Limiter) get(key string) *rate.Limiter {
	l.mu.Lock()
	defer l.mu.Unlock()
	b, ok := l.m[key]
	if !ok {
		b = rate.NewLimiter(rate.Limit(l.fallback.RPS), l.fallback.Burst)
		l.m[key] = b
	}
	return b
}

// Allow returns true if one token can be consumed for key right now.
func (l *Limiter) Allow(key string) bool {
	return l.get(key).Allow()
}

// Wait blocks until a token for key is available or ctx is done.
func (l *Limiter) Wait(ctx context.Context, key string) error {
	if err := l.get(key).Wait(ctx); err != nil {
		return fmt.Errorf("rate limit %s: %w", key, err)
	}
	return nil
}
