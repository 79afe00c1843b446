package engine

import (
	"context"
	"time"

	"golang.org/x/time/rate"
)

// DefaultCallDelay is the pause FixedDelay inserts between API calls.
const DefaultCallDelay = 1500 * time.Millisecond

// Pacer decides how long to wait before each API call of a run. call is the
// zero-based index of the call about to be made.
type Pacer interface {
	Wait(ctx context.Context, call int) error
}

// FixedDelay waits a constant Delay before every call except the first.
type FixedDelay struct {
	Delay time.Duration
}

// Wait implements Pacer.
func (p FixedDelay) Wait(ctx context.Context, call int) error {
	if call == 0 || p.Delay <= 0 {
		return ctx.Err()
	}
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-time.After(p.Delay):
		return nil
	}
}

// TokenBucket allows bursts of calls up to a sustained rate.
type TokenBucket struct {
	limiter *rate.Limiter
}

// NewTokenBucket creates a TokenBucket allowing perSecond calls with the
// given burst.
func NewTokenBucket(perSecond float64, burst int) *TokenBucket {
	return &TokenBucket{limiter: rate.NewLimiter(rate.Limit(perSecond), max(burst, 1))}
}

// Wait implements Pacer.
func (p *TokenBucket) Wait(ctx context.Context, _ int) error {
	return p.limiter.Wait(ctx)
}

// NoDelay never waits.
type NoDelay struct{}

// Wait implements Pacer.
func (NoDelay) Wait(ctx context.Context, _ int) error {
	return ctx.Err()
}
