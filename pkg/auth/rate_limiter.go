package auth

import (
	"context"
	"fmt"
	"sync"
	"time"
)

// RateLimiter provides rate limiting functionality
type RateLimiter interface {
	Allow(ctx context.Context, key string) (bool, error)
	Reset(ctx context.Context, key string) error
}

// SlidingWindowLimiter allows at most limit calls per key within any
// windowSize span.
type SlidingWindowLimiter struct {
	mu         sync.Mutex
	windows    map[string]*window
	limit      int
	windowSize time.Duration
	now        func() time.Time
}

type window struct {
	requests []time.Time
}

// NewSlidingWindowLimiter creates a new sliding window rate limiter
func NewSlidingWindowLimiter(limit int, windowSize time.Duration) *SlidingWindowLimiter {
	return &SlidingWindowLimiter{
		windows:    make(map[string]*window),
		limit:      limit,
		windowSize: windowSize,
		now:        time.Now,
	}
}

// Allow records a call for key and reports whether it is within the limit.
func (l *SlidingWindowLimiter) Allow(ctx context.Context, key string) (bool, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	windowStart := now.Add(-l.windowSize)

	w, exists := l.windows[key]
	if !exists {
		w = &window{}
		l.windows[key] = w
	}

	kept := w.requests[:0]
	for _, at := range w.requests {
		if at.After(windowStart) {
			kept = append(kept, at)
		}
	}
	w.requests = kept

	if len(w.requests) >= l.limit {
		return false, nil
	}
	w.requests = append(w.requests, now)

	// Drop keys that went quiet so the map does not grow without bound.
	for k, other := range l.windows {
		if k != key && (len(other.requests) == 0 || !other.requests[len(other.requests)-1].After(windowStart)) {
			delete(l.windows, k)
		}
	}
	return true, nil
}

// Reset resets the rate limit for a key
func (l *SlidingWindowLimiter) Reset(ctx context.Context, key string) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	delete(l.windows, key)
	return nil
}

// IPRateLimiter limits login attempts per client address.
type IPRateLimiter struct {
	limiter RateLimiter
	limit   int
	window  time.Duration
}

// NewIPRateLimiter creates a limiter allowing attempts calls per window per IP.
func NewIPRateLimiter(attempts int, per time.Duration) *IPRateLimiter {
	return &IPRateLimiter{
		limiter: NewSlidingWindowLimiter(attempts, per),
		limit:   attempts,
		window:  per,
	}
}

// Allow checks if a request from an IP is allowed
func (l *IPRateLimiter) Allow(ctx context.Context, ip string) (bool, error) {
	return l.limiter.Allow(ctx, fmt.Sprintf("ip:%s", ip))
}

// Limit returns the configured attempts and window.
func (l *IPRateLimiter) Limit() (int, time.Duration) {
	return l.limit, l.window
}
