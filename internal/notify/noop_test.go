package notify

import (
	"bytes"
	"context"
	"log/slog"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func debugLogger(buf *bytes.Buffer) *slog.Logger {
	return slog.New(slog.NewTextHandler(buf, &slog.HandlerOptions{Level: slog.LevelDebug}))
}

func TestNoOpNotifier_SendAlert(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name        string
		previousLow int64
		want        []string
		notWant     []string
	}{
		{
			name:        "repeat low includes previous",
			previousLow: 99000,
			want:        []string{"product_id=7104321", "price=60,000원", "discount_rate=40", "previous_low=99,000원"},
			notWant:     []string{"batch="},
		},
		{
			name:    "first sighting omits previous",
			want:    []string{"product_id=7104321"},
			notWant: []string{"previous_low"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			var buf bytes.Buffer
			n := NewNoOpNotifier(debugLogger(&buf))
			alert := testAlert(40)
			alert.PreviousLow = tt.previousLow

			require.NoError(t, n.SendAlert(context.Background(), &alert))
			for _, w := range tt.want {
				assert.Contains(t, buf.String(), w)
			}
			for _, w := range tt.notWant {
				assert.NotContains(t, buf.String(), w)
			}
		})
	}
}

func TestNoOpNotifier_SendBatchAlert(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	n := NewNoOpNotifier(debugLogger(&buf))
	alerts := []DealAlert{testAlert(40), testAlert(15)}

	require.NoError(t, n.SendBatchAlert(context.Background(), alerts, "all-time lows"))
	assert.Equal(t, 2, strings.Count(buf.String(), `batch="all-time lows"`))
}

func TestNoOpNotifier_SilentAboveDebug(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	n := NewNoOpNotifier(slog.New(slog.NewTextHandler(&buf, nil)))

	require.NoError(t, n.SendBatchAlert(context.Background(), []DealAlert{testAlert(40)}, "x"))
	require.NoError(t, n.SendBatchAlert(context.Background(), nil, "empty"))
	assert.Empty(t, buf.String())
}

func TestNewNoOpNotifier_NilLogger(t *testing.T) {
	t.Parallel()

	n := NewNoOpNotifier(nil)
	alert := testAlert(10)
	assert.NoError(t, n.SendAlert(context.Background(), &alert))
}

var _ Notifier = (*NoOpNotifier)(nil)
