package coupang_test

import (
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lsm5482-blip/my-coupang-bot/internal/coupang"
)

func TestAPIError_MatchesOneKind(t *testing.T) {
	t.Parallel()

	sentinels := map[coupang.ErrorKind]error{
		coupang.KindClient:    coupang.ErrClient,
		coupang.KindTransient: coupang.ErrTransient,
		coupang.KindServer:    coupang.ErrServer,
		coupang.KindParsing:   coupang.ErrParsing,
	}

	for kind, want := range sentinels {
		t.Run(kind.String(), func(t *testing.T) {
			t.Parallel()

			err := fmt.Errorf("fetching: %w", &coupang.APIError{Kind: kind, Method: "GET", Path: "/p"})
			for other, sentinel := range sentinels {
				assert.Equal(t, other == kind, errors.Is(err, sentinel), "kind %s vs %s", kind, other)
			}
			assert.True(t, errors.Is(err, want))
			assert.False(t, coupang.IsFatal(err))
			assert.Equal(t, kind.String(), coupang.KindOf(err))
		})
	}
}

func TestAPIError_Error(t *testing.T) {
	t.Parallel()

	cause := errors.New("request timed out")
	err := &coupang.APIError{
		Kind:       coupang.KindTransient,
		Method:     "GET",
		Path:       "/p",
		StatusCode: 504,
		Attempts:   3,
		Err:        cause,
	}

	assert.Equal(t,
		"coupang API transient error: GET /p (status 504) after 3 attempts: request timed out",
		err.Error(),
	)
	require.ErrorIs(t, err, cause)
	assert.True(t, err.Retryable())
	assert.Equal(t, 3, coupang.AttemptsOf(fmt.Errorf("wrapped: %w", err)))
}

func TestAPIError_TruncatesBody(t *testing.T) {
	t.Parallel()

	err := &coupang.APIError{
		Kind:       coupang.KindServer,
		Method:     "GET",
		Path:       "/p",
		StatusCode: 500,
		Body:       strings.Repeat("x", 500),
	}
	assert.True(t, strings.HasSuffix(err.Error(), "..."))
	assert.Less(t, len(err.Error()), 300)
	assert.False(t, err.Retryable())
}

func TestKindOf(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		err  error
		want string
	}{
		{name: "daily quota", err: fmt.Errorf("rate limit: %w", coupang.ErrDailyLimitReached), want: "quota"},
		{name: "configuration", err: fmt.Errorf("x: %w", coupang.ErrConfiguration), want: "configuration"},
		{name: "plain", err: errors.New("boom"), want: "unknown"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, coupang.KindOf(tt.err))
			assert.Equal(t, 0, coupang.AttemptsOf(tt.err))
		})
	}
}
