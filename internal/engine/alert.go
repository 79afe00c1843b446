package engine

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/lsm5482-blip/my-coupang-bot/internal/history"
	"github.com/lsm5482-blip/my-coupang-bot/internal/metrics"
	"github.com/lsm5482-blip/my-coupang-bot/internal/notify"
	domain "github.com/lsm5482-blip/my-coupang-bot/pkg/types"
)

const batchThreshold = 5

// collectAlerts returns one alert per distinct all-time-low product with at
// least minDiscount percent off, featured list first, then categories in
// order.
func collectAlerts(res *domain.RunResult, h *history.History, minDiscount int) []notify.DealAlert {
	seen := make(map[string]struct{})
	var alerts []notify.DealAlert

	add := func(cr *domain.CategoryResult) {
		for _, p := range cr.Products {
			if !p.IsAllTimeLow || p.DiscountRate < minDiscount {
				continue
			}
			if _, dup := seen[p.ProductID]; dup {
				continue
			}
			seen[p.ProductID] = struct{}{}

			prev, _ := h.PriorLow(p.ProductID)
			alerts = append(alerts, notify.DealAlert{
				Product:     p,
				Category:    cr.Category.Label,
				PreviousLow: prev,
			})
		}
	}

	if res.Featured != nil {
		add(res.Featured)
	}
	for i := range res.Categories {
		add(&res.Categories[i])
	}
	return alerts
}

// ProcessAlerts delivers alerts through n. Five or more alerts are sent as one
// batch message, fewer are sent one by one. Failures are counted and logged
// but never fail the run.
func ProcessAlerts(
	ctx context.Context,
	n notify.Notifier,
	alerts []notify.DealAlert,
	log *slog.Logger,
) int {
	if len(alerts) == 0 {
		return 0
	}

	if len(alerts) >= batchThreshold {
		if err := n.SendBatchAlert(ctx, alerts, "New all-time lows"); err != nil {
			metrics.NotificationFailuresTotal.Inc()
			log.Error("sending batch alert failed", "count", len(alerts), "error", err)
			return 0
		}
		metrics.NotificationsSentTotal.Add(float64(len(alerts)))
		return len(alerts)
	}

	sent := 0
	for i := range alerts {
		if err := sendSingle(ctx, n, &alerts[i]); err != nil {
			metrics.NotificationFailuresTotal.Inc()
			log.Error("sending alert failed",
				"product_id", alerts[i].Product.ProductID,
				"error", err,
			)
			continue
		}
		sent++
	}
	return sent
}

func sendSingle(ctx context.Context, n notify.Notifier, alert *notify.DealAlert) error {
	if err := n.SendAlert(ctx, alert); err != nil {
		return fmt.Errorf("sending alert: %w", err)
	}
	metrics.NotificationsSentTotal.Inc()
	return nil
}
