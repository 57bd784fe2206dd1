// Package ratelimit implements fixed-window request limits backed by an
// injected TTL store.
package ratelimit

import (
	"time"

	"github.com/sblmetalroofing-oss/Rprime-sub003/internal/cache"
)

// Decision is the outcome of one Allow call.
type Decision struct {
	Allowed   bool
	Limit     int
	Remaining int
	ResetAt   time.Time
}

// Limiter allows at most limit calls per key within each window.
type Limiter struct {
	limit  int
	window time.Duration
	counts *cache.TTLStore[string, int]
}

// NewLimiter creates a Limiter. The store's TTL is the window length.
func NewLimiter(limit int, window time.Duration, opts ...cache.Option) *Limiter {
	if limit < 1 {
		limit = 1
	}
	return &Limiter{
		limit:  limit,
		window: window,
		counts: cache.NewTTLStore[string, int](window, opts...),
	}
}

// Allow records one call for key and reports whether it fits in the window.
func (l *Limiter) Allow(key string) Decision {
	count, resetAt := l.counts.Update(key, func(cur int, _ bool) int {
		return cur + 1
	})

	remaining := l.limit - count
	if remaining < 0 {
		remaining = 0
	}
	return Decision{
		Allowed:   count <= l.limit,
		Limit:     l.limit,
		Remaining: remaining,
		ResetAt:   resetAt,
	}
}

// Sweep drops windows that ended before now.
func (l *Limiter) Sweep(now time.Time) int {
	return l.counts.Sweep(now)
}

// Tracked returns the number of keys currently held.
func (l *Limiter) Tracked() int {
	return l.counts.Len()
}
