package notify

import (
	"context"
	"log/slog"
)

// NoOpNotifier implements Notifier without a delivery backend. Alerts are
// written to the log at debug level so a run without a webhook still shows
// what would have been announced.
type NoOpNotifier struct {
	log *slog.Logger
}

// NewNoOpNotifier creates a notifier that only logs alerts. A nil logger
// uses slog.Default.
func NewNoOpNotifier(log *slog.Logger) *NoOpNotifier {
	if log == nil {
		log = slog.Default()
	}
	return &NoOpNotifier{log: log}
}

// SendAlert logs a single alert.
func (n *NoOpNotifier) SendAlert(ctx context.Context, alert *DealAlert) error {
	n.logAlert(ctx, "", alert)
	return nil
}

// SendBatchAlert logs each alert of the batch under title.
func (n *NoOpNotifier) SendBatchAlert(ctx context.Context, alerts []DealAlert, title string) error {
	for i := range alerts {
		n.logAlert(ctx, title, &alerts[i])
	}
	return nil
}

func (n *NoOpNotifier) logAlert(ctx context.Context, title string, a *DealAlert) {
	attrs := []slog.Attr{
		slog.String("product_id", a.Product.ProductID),
		slog.String("name", a.Product.Name),
		slog.String("category", a.Category),
		slog.String("price", FormatWon(a.Product.SalePrice)),
		slog.Int("discount_rate", a.Product.DiscountRate),
	}
	if a.PreviousLow > 0 {
		attrs = append(attrs, slog.String("previous_low", FormatWon(a.PreviousLow)))
	}
	if title != "" {
		attrs = append(attrs, slog.String("batch", title))
	}
	n.log.LogAttrs(ctx, slog.LevelDebug, "all-time low (no notifier configured)", attrs...)
}
