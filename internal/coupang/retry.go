package coupang

import (
	"context"
	"time"
)

// RetryPolicy controls how transient failures are retried. The delay before
// the next attempt grows linearly: BaseDelay + attempts*Step.
type RetryPolicy struct {
	MaxAttempts int
	BaseDelay   time.Duration
	Step        time.Duration
}

// DefaultRetryPolicy allows three attempts with 3s, 5s waits between them.
func DefaultRetryPolicy() RetryPolicy {
	return RetryPolicy{
		MaxAttempts: 3,
		BaseDelay:   1 * time.Second,
		Step:        2 * time.Second,
	}
}

// Delay returns the wait after the given number of completed attempts
// (1-based).
func (p RetryPolicy) Delay(attempts int) time.Duration {
	return p.BaseDelay + time.Duration(attempts)*p.Step
}

func (p RetryPolicy) maxAttempts() int {
	if p.MaxAttempts < 1 {
		return 1
	}
	return p.MaxAttempts
}

// sleepCtx waits for d or until ctx is done.
func sleepCtx(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
