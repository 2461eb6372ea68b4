package util

import (
	"context"
	"sync"
	"time"
)

// RateLimiter paces calls to a fixed per-minute budget by spacing them one
// interval apart. The first call passes immediately; each subsequent call is
// scheduled one interval after the previous one.
type RateLimiter struct {
	mu       sync.Mutex
	interval time.Duration
	next     time.Time // earliest time the next call may proceed
}

// NewRateLimiter creates a RateLimiter that admits perMinute calls per minute.
func NewRateLimiter(perMinute int) *RateLimiter {
	return &RateLimiter{interval: time.Minute / time.Duration(perMinute)}
}

// Wait blocks until the caller's scheduled slot arrives or the context is
// cancelled. Slots are claimed in call order.
func (rl *RateLimiter) Wait(ctx context.Context) error {
	rl.mu.Lock()
	now := time.Now()
	at := rl.next
	if at.Before(now) {
		at = now
	}
	rl.next = at.Add(rl.interval)
	rl.mu.Unlock()

	wait := at.Sub(now)
	if wait <= 0 {
		return nil
	}
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-time.After(wait):
		return nil
	}
}
