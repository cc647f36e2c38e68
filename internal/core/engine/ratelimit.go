package engine

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/ariadng/clickup-mcp/internal/core"
)

// DefaultWindow is the ClickUp rate limit window.
const DefaultWindow = time.Minute

// RateLimiter admits at most Limit outbound requests per fixed window. A
// limiter belongs to one client session; it is safe for concurrent use.
type RateLimiter struct {
	Limit  int
	Window time.Duration
	Clock  func() time.Time

	mu          sync.Mutex
	windowStart time.Time
	count       int
}

// NewRateLimiter returns a limiter for limit requests per window.
func NewRateLimiter(limit int, window time.Duration) *RateLimiter {
	if window <= 0 {
		window = DefaultWindow
	}
	return &RateLimiter{Limit: limit, Window: window}
}

// Admit records one request against the current window, or rejects it with
// a RateLimited error carrying the time left until the window resets.
func (r *RateLimiter) Admit() error {
	if r == nil {
		return nil
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	now := r.now()
	r.resetIfStale(now)

	if r.count >= r.Limit {
		wait := r.windowStart.Add(r.window()).Sub(now)
		return &Error{
			Kind:       KindRateLimited,
			Message:    fmt.Sprintf("rate limit of %d requests per %s exceeded, resets in %s", r.Limit, r.window(), wait.Round(time.Millisecond)),
			RetryAfter: wait,
		}
	}

	r.count++
	return nil
}

// Wait blocks until a request is admitted or ctx is done.
func (r *RateLimiter) Wait(ctx context.Context) error {
	for {
		err := r.Admit()
		if err == nil {
			return nil
		}

		wait := time.Millisecond
		if classified, ok := err.(*Error); ok && classified.RetryAfter > 0 {
			wait = classified.RetryAfter
		}

		timer := time.NewTimer(wait)
		select {
		case <-ctx.Done():
			timer.Stop()
			return ctx.Err()
		case <-timer.C:
		}
	}
}

// Remaining returns how many requests the current window still admits.
func (r *RateLimiter) Remaining() int {
	if r == nil {
		return 0
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if r.stale(r.now()) {
		return r.Limit
	}
	if left := r.Limit - r.count; left > 0 {
		return left
	}
	return 0
}

// ResetAt returns when the current window ends. A stale window resets now.
func (r *RateLimiter) ResetAt() time.Time {
	if r == nil {
		return time.Time{}
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	now := r.now()
	if r.stale(now) {
		return now.Add(r.window())
	}
	return r.windowStart.Add(r.window())
}

// Status returns a snapshot for diagnostics.
func (r *RateLimiter) Status() core.RateLimitStatus {
	if r == nil {
		return core.RateLimitStatus{}
	}
	return core.RateLimitStatus{
		Limit:     r.Limit,
		Remaining: r.Remaining(),
		Window:    r.window(),
		ResetAt:   r.ResetAt(),
	}
}

func (r *RateLimiter) resetIfStale(now time.Time) {
	if r.stale(now) {
		r.windowStart = now
		r.count = 0
	}
}

func (r *RateLimiter) stale(now time.Time) bool {
	return r.windowStart.IsZero() || now.Sub(r.windowStart) >= r.window()
}

func (r *RateLimiter) window() time.Duration {
	if r.Window <= 0 {
		return DefaultWindow
	}
	return r.Window
}

func (r *RateLimiter) now() time.Time {
	if r != nil && r.Clock != nil {
		return r.Clock()
	}
	return time.Now().UTC()
}
