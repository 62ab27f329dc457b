package ratelimiter

import (
	"context"
	"log/slog"
	"time"

	"golang.org/x/time/rate"
)

// RateLimiterInterface limits how often outbound API calls are made.
type RateLimiterInterface interface {
	Wait(ctx context.Context) error
}

// RateLimiter allows at most limit calls per interval. It is safe for
// concurrent use by the fetch workers.
type RateLimiter struct {
	limit    int
	interval time.Duration
	limiter  *rate.Limiter
}

// NewRateLimiter creates a RateLimiter. A non-positive limit or interval
// disables limiting.
func NewRateLimiter(limit int, interval time.Duration) *RateLimiter {
	l := rate.NewLimiter(rate.Inf, 0)
	if limit > 0 && interval > 0 {
		l = rate.NewLimiter(rate.Every(interval/time.Duration(limit)), limit)
	}
	return &RateLimiter{limit: limit, interval: interval, limiter: l}
}

// Wait blocks until a call is allowed or ctx is done.
func (rl *RateLimiter) Wait(ctx context.Context) error {
	if rl.limiter.Limit() != rate.Inf && rl.limiter.Tokens() < 1 {
		slog.Debug("rate limit reached, waiting", "limit", rl.limit, "interval", rl.interval)
	}
	return rl.limiter.Wait(ctx)
}

// Unlimited never waits. Used by tests and when no API budget applies.
type Unlimited struct{}

func (Unlimited) Wait(ctx context.Context) error { return ctx.Err() }
