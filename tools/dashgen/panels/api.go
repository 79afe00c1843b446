package panels

import (
	"fmt"

	"github.com/grafana/grafana-foundation-sdk/go/common"
	"github.com/grafana/grafana-foundation-sdk/go/gauge"
	"github.com/grafana/grafana-foundation-sdk/go/stat"
	"github.com/grafana/grafana-foundation-sdk/go/timeseries"
)

// APICallsByOutcome returns a timeseries panel of Partners API attempts by
// outcome.
func APICallsByOutcome() *timeseries.PanelBuilder {
	return timeseries.NewPanelBuilder().
		Title("API Calls by Outcome").
		Description("Partners API HTTP attempts per second by outcome").
		Datasource(DSRef()).
		Height(TSHeight).
		Span(TSWidth).
		WithTarget(PromQuery(
			`sum by (outcome) (rate(`+Sel("coupang_deals_api_calls_total")+`[5m]))`,
			"{{outcome}}", "A",
		)).
		Unit("reqps").
		FillOpacity(10).
		LineWidth(2).
		Thresholds(ThresholdsGreenOnly()).
		ColorScheme(ColorSchemePaletteClassic()).
		Legend(TableLegend("mean", "max")).
		Tooltip(MultiTooltip()).
		DrawStyle(common.GraphDrawStyleLine)
}

// APILatency returns a timeseries panel of the p95 attempt latency per
// endpoint.
func APILatency() *timeseries.PanelBuilder {
	return timeseries.NewPanelBuilder().
		Title("API Latency (p95)").
		Description("95th percentile Partners API attempt latency by endpoint").
		Datasource(DSRef()).
		Height(TSHeight).
		Span(TSWidth).
		WithTarget(PromQuery(
			`histogram_quantile(0.95, sum by (le, endpoint) (rate(`+
				Sel("coupang_deals_api_call_duration_seconds_bucket")+`[5m])))`,
			"{{endpoint}}", "A",
		)).
		Unit("s").
		FillOpacity(10).
		LineWidth(2).
		Thresholds(ThresholdsGreenYellowRed(5, 15)).
		ColorScheme(ColorSchemePaletteClassic()).
		DrawStyle(common.GraphDrawStyleLine)
}

// QuotaGauge returns a gauge panel of daily usage as a percentage of the
// budget.
func QuotaGauge() *gauge.PanelBuilder {
	expr := fmt.Sprintf("%s / %d * 100", Sel("coupang_deals_api_daily_usage"), DailyLimit)
	return gauge.NewPanelBuilder().
		Title("Daily Quota %").
		Description(fmt.Sprintf("Rolling 24h Partners API usage as a percentage of %d calls", DailyLimit)).
		Datasource(DSRef()).
		Height(TSHeight).
		Span(ThirdWidth).
		WithTarget(PromQuery(expr, "", "A")).
		Unit("percent").
		Min(0).
		Max(100).
		Thresholds(ThresholdsGreenYellowRed(80, 95)).
		ColorScheme(ColorSchemeThresholds())
}

// Retries returns a timeseries panel of transient-failure retries.
func Retries() *timeseries.PanelBuilder {
	return timeseries.NewPanelBuilder().
		Title("Retries").
		Description("Retries of transient Partners API failures per minute").
		Datasource(DSRef()).
		Height(TSHeight).
		Span(ThirdWidth).
		WithTarget(PromQuery(
			`sum by (endpoint) (rate(`+Sel("coupang_deals_api_retries_total")+`[5m])) * 60`,
			"{{endpoint}}", "A",
		)).
		FillOpacity(10).
		LineWidth(2).
		Thresholds(ThresholdsGreenYellowRed(1, 5)).
		ColorScheme(ColorSchemePaletteClassic()).
		DrawStyle(common.GraphDrawStyleLine)
}

// LimitHits returns a stat panel showing daily limit hits in the past day.
func LimitHits() *stat.PanelBuilder {
	return stat.NewPanelBuilder().
		Title("Limit Hits (24h)").
		Description("Times the daily Partners API budget was exhausted in the last 24 hours").
		Datasource(DSRef()).
		Height(TSHeight).
		Span(ThirdWidth).
		WithTarget(PromQuery(`increase(`+Sel("coupang_deals_api_daily_limit_hits_total")+`[24h])`, "", "A")).
		Thresholds(ThresholdsGreenYellowRed(1, 3)).
		ColorScheme(ColorSchemeThresholds()).
		ColorMode(common.BigValueColorModeBackground).
		GraphMode(common.BigValueGraphModeArea)
}
