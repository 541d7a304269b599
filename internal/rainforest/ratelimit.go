package rainforest

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// ErrDailyLimitReached is returned when the daily call budget is exhausted.
var ErrDailyLimitReached = errors.New("daily API limit reached")

const window = 24 * time.Hour

// RateLimiter spaces API calls with a token bucket and caps the number of
// calls in a rolling 24-hour window. Every search spends upstream credits,
// so the daily cap doubles as a spending guard. A non-positive daily limit
// disables the cap.
type RateLimiter struct {
	limiter  *rate.Limiter
	maxDaily int64
	nowFunc  func() time.Time

	mu      sync.Mutex
	daily   int64
	resetAt time.Time
}

// Usage is a point-in-time view of the daily budget.
type Usage struct {
	Used      int64
	Limit     int64
	Remaining int64
	ResetAt   time.Time
}

// RateLimiterOption configures the RateLimiter.
type RateLimiterOption func(*RateLimiter)

// WithRateLimiterNowFunc overrides the time function for testing.
func WithRateLimiterNowFunc(f func() time.Time) RateLimiterOption {
	return func(r *RateLimiter) {
		r.nowFunc = f
	}
}

// NewRateLimiter creates a rate limiter with the given per-second rate,
// burst size, and daily limit. The window resets 24 hours after it opens.
func NewRateLimiter(
	perSecond float64,
	burst int,
	maxDaily int64,
	opts ...RateLimiterOption,
) *RateLimiter {
	r := &RateLimiter{
		limiter:  rate.NewLimiter(rate.Limit(perSecond), burst),
		maxDaily: maxDaily,
		nowFunc:  time.Now,
	}
	for _, opt := range opts {
		opt(r)
	}
	r.resetAt = r.nowFunc().Add(window)
	return r
}

// Wait blocks until the token bucket allows the call or ctx is done. It
// returns ErrDailyLimitReached without waiting when the budget is spent.
func (r *RateLimiter) Wait(ctx context.Context) error {
	if err := r.reserveDaily(); err != nil {
		return err
	}

	if err := r.limiter.Wait(ctx); err != nil {
		r.releaseDaily()
		return fmt.Errorf("rate limiter wait: %w", err)
	}

	return nil
}

func (r *RateLimiter) reserveDaily() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.rollLocked()

	if r.maxDaily > 0 && r.daily >= r.maxDaily {
		return fmt.Errorf("%w (%d/%d)", ErrDailyLimitReached, r.daily, r.maxDaily)
	}
	r.daily++
	return nil
}

func (r *RateLimiter) releaseDaily() {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.daily > 0 {
		r.daily--
	}
}

func (r *RateLimiter) rollLocked() {
	now := r.nowFunc()
	if now.After(r.resetAt) {
		r.daily = 0
		r.resetAt = now.Add(window)
	}
}

// DailyCount returns the number of calls made in the current window.
func (r *RateLimiter) DailyCount() int64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.daily
}

// Snapshot returns the current budget state.
func (r *RateLimiter) Snapshot() Usage {
	r.mu.Lock()
	defer r.mu.Unlock()

	u := Usage{
		Used:    r.daily,
		Limit:   r.maxDaily,
		ResetAt: r.resetAt,
	}
	if r.maxDaily > 0 {
		u.Remaining = max(r.maxDaily-r.daily, 0)
	}
	return u
}
