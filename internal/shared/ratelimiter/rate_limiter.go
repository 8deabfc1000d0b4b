// Package ratelimiter limits how often a client may call an endpoint using fixed time windows.
package ratelimiter

import (
	"context"
	"time"
)

const (
	// DefaultWindow is the length of one counting window.
	DefaultWindow = 15 * time.Minute
	// AuthLimit is the ceiling for authentication endpoints per window.
	AuthLimit = 5
	// APILimit is the ceiling for all API endpoints per window.
	APILimit = 100
)

// Store keeps per-key counters.
// Hit must increment and read the counter atomically for a key.
type Store interface {
	// Hit counts one request for key. If no window exists or the previous one
	// has elapsed, a new window of the given length starts with count 1.
	// It returns the count after the increment and when the window resets.
	Hit(ctx context.Context, key string, window time.Duration) (count int, resetAt time.Time, err error)
}

// Decision is the outcome of one Allow call.
type Decision struct {
	Allowed   bool
	Limit     int
	Remaining int
	ResetAt   time.Time
}

// RateLimiter allows at most limit requests per key within each window.
type RateLimiter struct {
	name    string
	limit   int           // 1ウィンドウあたりの上限
	window  time.Duration // どの単位でリセットするか
	message string
	store   Store
	now     func() time.Time
}

// NewRateLimiter creates a limiter. name namespaces its keys so that several
// limiters can share one Store without counting each other's requests.
func NewRateLimiter(name string, limit int, window time.Duration, message string, store Store) *RateLimiter {
	if window <= 0 {
		window = DefaultWindow
	}
	return &RateLimiter{
		name:    name,
		limit:   limit,
		window:  window,
		message: message,
		store:   store,
		now:     time.Now,
	}
}

// Name returns the limiter's key namespace.
func (rl *RateLimiter) Name() string { return rl.name }

// Allow counts one request for key and reports whether it is within the limit.
func (rl *RateLimiter) Allow(ctx context.Context, key string) (Decision, error) {
	count, resetAt, err := rl.store.Hit(ctx, rl.name+":"+key, rl.window)
	if err != nil {
		return Decision{Allowed: true, Limit: rl.limit, Remaining: rl.limit, ResetAt: rl.now().Add(rl.window)}, err
	}

	remaining := rl.limit - count
	if remaining < 0 {
		remaining = 0
	}
	return Decision{
		Allowed:   count <= rl.limit,
		Limit:     rl.limit,
		Remaining: remaining,
		ResetAt:   resetAt,
	}, nil
}
