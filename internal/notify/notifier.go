// Package notify defines the notification interface and implementations
// for all-time-low deal alerts.
package notify

import (
	"context"

	domain "github.com/lsm5482-blip/my-coupang-bot/pkg/types"
)

// DealAlert contains the data needed to announce one all-time-low deal.
type DealAlert struct {
	Product  domain.EvaluatedProduct
	Category string // label of the category or "goldbox"
	// PreviousLow is the lowest price recorded before this run, 0 on first
	// sighting.
	PreviousLow int64
}

// Notifier defines the interface for sending deal alert notifications.
type Notifier interface {
	SendAlert(ctx context.Context, alert *DealAlert) error
	SendBatchAlert(ctx context.Context, alerts []DealAlert, title string) error
}
