package fetch

import (
	"context"
	"time"

	"golang.org/x/time/rate"
)

// Limiter gates outgoing content fetches. Implementations block until
// the next request may be sent or ctx is done.
type Limiter interface {
	Wait(ctx context.Context) error
}

// NewIntervalLimiter returns a Limiter that allows one request per
// interval. A non-positive interval disables the gate.
func NewIntervalLimiter(interval time.Duration) Limiter {
	if interval <= 0 {
		return NopLimiter{}
	}
	return rate.NewLimiter(rate.Every(interval), 1)
}

// NopLimiter never blocks.
type NopLimiter struct{}

// Wait returns ctx.Err() without waiting.
func (NopLimiter) Wait(ctx context.Context) error {
	return ctx.Err()
}
