package billing

import (
	"context"
	"sync"
	"time"
)

// RateLimiter spaces out calls to the billing service
type RateLimiter interface {
	Wait(ctx context.Context) error
	PauseUntil(t time.Time)
}

type intervalLimiter struct {
	mu          sync.Mutex
	minDelay    time.Duration
	lastCall    time.Time
	pausedUntil time.Time
}

// NewRateLimiter returns a limiter that keeps at least minDelay between calls.
func NewRateLimiter(minDelay time.Duration) RateLimiter {
	return &intervalLimiter{minDelay: minDelay}
}

// Wait blocks until the next call may be made
func (r *intervalLimiter) Wait(ctx context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	next := r.lastCall.Add(r.minDelay)
	if r.pausedUntil.After(next) {
		next = r.pausedUntil
	}
	if wait := time.Until(next); wait > 0 {
		r.mu.Unlock()
		select {
		case <-ctx.Done():
			r.mu.Lock()
			return ctx.Err()
		case <-time.After(wait):
			r.mu.Lock()
		}
	}

	r.lastCall = time.Now()
	return nil
}

// PauseUntil holds back every call until t, e.g. after a 429.
func (r *intervalLimiter) PauseUntil(t time.Time) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if t.After(r.pausedUntil) {
		r.pausedUntil = t
	}
}
