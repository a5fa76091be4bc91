package llm

import (
	"context"
	"time"

	"golang.org/x/time/rate"
)

// Limiter throttles LLM spend to one call per rolling window, process-wide
// across all providers. A call that would exceed the window blocks until the
// window admits it; it is never rejected. The check-and-admit is a single
// synchronized operation inside rate.Limiter, so two concurrent requests
// cannot both pass in the same window.
type Limiter struct {
	rl *rate.Limiter
}

// NewLimiter creates a limiter admitting one call per window.
func NewLimiter(window time.Duration) *Limiter {
	return &Limiter{rl: rate.NewLimiter(rate.Every(window), 1)}
}

// Wait blocks until the next call is admitted or ctx is done.
func (l *Limiter) Wait(ctx context.Context) error {
	return l.rl.Wait(ctx)
}
