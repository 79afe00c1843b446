package coupang_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lsm5482-blip/my-coupang-bot/internal/coupang"
)

func TestRateLimiter_Wait(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		rate    float64
		burst   int
		daily   int64
		calls   int
		wantErr bool
	}{
		{
			name:  "allows calls within rate",
			rate:  100,
			burst: 10,
			daily: 100,
			calls: 3,
		},
		{
			name:  "allows burst",
			rate:  100,
			burst: 5,
			daily: 100,
			calls: 5,
		},
		{
			name:  "no daily quota",
			rate:  100,
			burst: 10,
			daily: 0,
			calls: 8,
		},
		{
			name:    "rejects when daily limit reached",
			rate:    100,
			burst:   10,
			daily:   2,
			calls:   3,
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			rl := coupang.NewRateLimiter(tt.rate, tt.burst, tt.daily)

			var lastErr error
			for range tt.calls {
				lastErr = rl.Wait(context.Background())
				if lastErr != nil {
					break
				}
			}

			if tt.wantErr {
				require.ErrorIs(t, lastErr, coupang.ErrDailyLimitReached)
				assert.Contains(t, lastErr.Error(), "(2/2)")
			} else {
				require.NoError(t, lastErr)
			}
		})
	}
}

func TestRateLimiter_UsedAndRemaining(t *testing.T) {
	t.Parallel()

	rl := coupang.NewRateLimiter(100, 10, 3)

	assert.Equal(t, int64(0), rl.Used())
	assert.Equal(t, int64(3), rl.Remaining())

	require.NoError(t, rl.Wait(context.Background()))
	require.NoError(t, rl.Wait(context.Background()))
	assert.Equal(t, int64(2), rl.Used())
	assert.Equal(t, int64(1), rl.Remaining())

	require.NoError(t, rl.Wait(context.Background()))
	require.Error(t, rl.Wait(context.Background()))
	assert.Equal(t, int64(3), rl.Used())
	assert.Equal(t, int64(0), rl.Remaining())

	assert.Equal(t, int64(3), rl.MaxDaily())

	unlimited := coupang.NewRateLimiter(100, 10, 0)
	assert.Equal(t, int64(-1), unlimited.Remaining())
	assert.Equal(t, int64(0), unlimited.MaxDaily())
}

func TestRateLimiter_WindowReset(t *testing.T) {
	t.Parallel()

	start := time.Date(2025, 1, 15, 9, 0, 0, 0, time.UTC)
	var mu sync.Mutex
	currentTime := start

	rl := coupang.NewRateLimiter(
		100, 10, 2,
		coupang.WithRateLimiterNowFunc(func() time.Time {
			mu.Lock()
			defer mu.Unlock()
			return currentTime
		}),
	)
	assert.Equal(t, start.Add(24*time.Hour), rl.ResetAt())

	require.NoError(t, rl.Wait(context.Background()))
	require.NoError(t, rl.Wait(context.Background()))
	require.ErrorIs(t, rl.Wait(context.Background()), coupang.ErrDailyLimitReached)

	mu.Lock()
	currentTime = start.Add(24*time.Hour + time.Minute)
	mu.Unlock()

	require.NoError(t, rl.Wait(context.Background()))
	assert.Equal(t, int64(1), rl.Used())
	assert.Equal(t, currentTime.Add(24*time.Hour), rl.ResetAt())
}

func TestRateLimiter_ContextCanceled(t *testing.T) {
	t.Parallel()

	rl := coupang.NewRateLimiter(0.1, 1, 100)

	require.NoError(t, rl.Wait(context.Background()))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := rl.Wait(ctx)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "rate limiter wait")
	require.ErrorIs(t, err, context.Canceled)
}
