package panels

import (
	"github.com/grafana/grafana-foundation-sdk/go/common"
	"github.com/grafana/grafana-foundation-sdk/go/stat"
	"github.com/grafana/grafana-foundation-sdk/go/timeseries"
)

// EvaluatedRate returns a timeseries panel of listings passing evaluation.
func EvaluatedRate() *timeseries.PanelBuilder {
	return timeseries.NewPanelBuilder().
		Title("Products Evaluated").
		Description("Listings that passed price resolution, per hour").
		Datasource(DSRef()).
		Height(TSHeight).
		Span(ThirdWidth).
		WithTarget(PromQuery(`increase(`+Sel("coupang_deals_products_evaluated_total")+`[1h])`, "evaluated", "A")).
		FillOpacity(10).
		LineWidth(2).
		Thresholds(ThresholdsGreenOnly()).
		ColorScheme(ColorSchemePaletteClassic()).
		DrawStyle(common.GraphDrawStyleLine)
}

// SkippedByReason returns a timeseries panel of listings excluded during
// evaluation.
func SkippedByReason() *timeseries.PanelBuilder {
	return timeseries.NewPanelBuilder().
		Title("Listings Skipped").
		Description("Listings excluded during evaluation per hour by reason").
		Datasource(DSRef()).
		Height(TSHeight).
		Span(ThirdWidth).
		WithTarget(PromQuery(
			`sum by (reason) (increase(`+Sel("coupang_deals_products_skipped_total")+`[1h]))`,
			"{{reason}}", "A",
		)).
		FillOpacity(10).
		LineWidth(2).
		Thresholds(ThresholdsGreenOnly()).
		ColorScheme(ColorSchemePaletteClassic()).
		Tooltip(MultiTooltip()).
		DrawStyle(common.GraphDrawStyleLine)
}

// AllTimeLows returns a stat panel of all-time lows found in the last day.
func AllTimeLows() *stat.PanelBuilder {
	return stat.NewPanelBuilder().
		Title("All-Time Lows (24h)").
		Description("Products observed at their lowest recorded price in the last 24 hours").
		Datasource(DSRef()).
		Height(TSHeight).
		Span(ThirdWidth).
		WithTarget(PromQuery(`increase(`+Sel("coupang_deals_all_time_lows_total")+`[24h])`, "", "A")).
		Thresholds(ThresholdsGreenOnly()).
		ColorScheme(ColorSchemeThresholds()).
		GraphMode(common.BigValueGraphModeArea)
}

// NotificationsSent returns a timeseries panel of delivered deal alerts.
func NotificationsSent() *timeseries.PanelBuilder {
	return timeseries.NewPanelBuilder().
		Title("Alerts Delivered").
		Description("Deal alerts delivered per hour").
		Datasource(DSRef()).
		Height(TSHeight).
		Span(ThirdWidth).
		WithTarget(PromQuery(`increase(`+Sel("coupang_deals_notifications_sent_total")+`[1h])`, "sent", "A")).
		FillOpacity(10).
		LineWidth(2).
		Thresholds(ThresholdsGreenOnly()).
		ColorScheme(ColorSchemePaletteClassic()).
		DrawStyle(common.GraphDrawStyleLine)
}

// NotificationLatency returns a timeseries panel of the p95 webhook latency.
func NotificationLatency() *timeseries.PanelBuilder {
	return timeseries.NewPanelBuilder().
		Title("Notification Latency (p95)").
		Description("95th percentile Discord webhook latency").
		Datasource(DSRef()).
		Height(TSHeight).
		Span(ThirdWidth).
		WithTarget(PromQuery(`coupang_deals:notification_duration:p95_5m`, "p95", "A")).
		Unit("s").
		FillOpacity(10).
		LineWidth(2).
		Thresholds(ThresholdsGreenYellowRed(1, 5)).
		ColorScheme(ColorSchemePaletteClassic()).
		DrawStyle(common.GraphDrawStyleLine)
}

// NotificationFailures returns a stat panel of failed deliveries in the last
// day.
func NotificationFailures() *stat.PanelBuilder {
	return stat.NewPanelBuilder().
		Title("Notification Failures (24h)").
		Description("Failed deal alert deliveries in the last 24 hours").
		Datasource(DSRef()).
		Height(TSHeight).
		Span(ThirdWidth).
		WithTarget(PromQuery(`increase(`+Sel("coupang_deals_notification_failures_total")+`[24h])`, "", "A")).
		Thresholds(ThresholdsGreenYellowRed(1, 5)).
		ColorScheme(ColorSchemeThresholds()).
		ColorMode(common.BigValueColorModeBackground).
		GraphMode(common.BigValueGraphModeArea)
}
