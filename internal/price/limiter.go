package price

import (
	"context"
	"time"

	"golang.org/x/time/rate"
)

// Limiter enforces a minimum spacing between outbound price API calls,
// shared across every caller regardless of success or failure.
type Limiter struct {
	limiter *rate.Limiter
}

// NewLimiter allows one call per minInterval with no burst beyond the first.
func NewLimiter(minInterval time.Duration) *Limiter {
	if minInterval <= 0 {
		minInterval = time.Millisecond
	}
	return &Limiter{limiter: rate.NewLimiter(rate.Every(minInterval), 1)}
}

// Wait blocks until the limiter allows one call, or ctx is done.
func (l *Limiter) Wait(ctx context.Context) error {
	return l.limiter.Wait(ctx)
}
