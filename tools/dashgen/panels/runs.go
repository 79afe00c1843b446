package panels

import (
	"github.com/grafana/grafana-foundation-sdk/go/common"
	"github.com/grafana/grafana-foundation-sdk/go/stat"
	"github.com/grafana/grafana-foundation-sdk/go/timeseries"
)

// UpStat returns a stat panel showing whether the target is scraped.
func UpStat() *stat.PanelBuilder {
	return stat.NewPanelBuilder().
		Title("Up").
		Description("Scrape status (1 = up, 0 = down)").
		Datasource(DSRef()).
		Height(StatHeight).
		Span(StatWidth).
		WithTarget(PromQuery(Sel("up"), "", "A")).
		Thresholds(ThresholdsRedGreen(1)).
		ColorScheme(ColorSchemeThresholds()).
		ColorMode(common.BigValueColorModeBackground).
		GraphMode(common.BigValueGraphModeNone).
		TextMode(common.BigValueTextModeValue)
}

// LastRunAge returns a stat panel showing time since the last finished run.
func LastRunAge() *stat.PanelBuilder {
	return stat.NewPanelBuilder().
		Title("Last Run").
		Description("Time since the last fetch run finished").
		Datasource(DSRef()).
		Height(StatHeight).
		Span(StatWidth).
		WithTarget(PromQuery(`time() - `+Sel("coupang_deals_last_run_timestamp_seconds"), "", "A")).
		Unit("s").
		Thresholds(ThresholdsGreenYellowRed(7*3600, 13*3600)).
		ColorScheme(ColorSchemeThresholds()).
		ColorMode(common.BigValueColorModeBackground).
		GraphMode(common.BigValueGraphModeNone)
}

// HistorySize returns a stat panel showing how many products have history.
func HistorySize() *stat.PanelBuilder {
	return stat.NewPanelBuilder().
		Title("Tracked Products").
		Description("Products with recorded price history").
		Datasource(DSRef()).
		Height(StatHeight).
		Span(StatWidth).
		WithTarget(PromQuery(Sel("coupang_deals_history_products"), "", "A")).
		Thresholds(ThresholdsGreenOnly()).
		ColorScheme(ColorSchemeThresholds()).
		GraphMode(common.BigValueGraphModeArea)
}

// HistoryErrors returns a stat panel showing history load and persist
// failures over the last day.
func HistoryErrors() *stat.PanelBuilder {
	return stat.NewPanelBuilder().
		Title("History Errors (24h)").
		Description("Price history load and persist failures in the last 24 hours").
		Datasource(DSRef()).
		Height(StatHeight).
		Span(StatWidth).
		WithTarget(PromQuery(
			`sum(increase(`+Sel("coupang_deals_history_errors_total")+`[24h]))`,
			"", "A",
		)).
		Thresholds(ThresholdsGreenYellowRed(1, 3)).
		ColorScheme(ColorSchemeThresholds()).
		ColorMode(common.BigValueColorModeBackground).
		GraphMode(common.BigValueGraphModeNone)
}

// RunsByResult returns a timeseries panel of finished runs by result.
func RunsByResult() *timeseries.PanelBuilder {
	return timeseries.NewPanelBuilder().
		Title("Runs by Result").
		Description("Fetch runs per hour by result (success, partial, canceled, fatal)").
		Datasource(DSRef()).
		Height(TSHeight).
		Span(ThirdWidth).
		WithTarget(PromQuery(
			`sum by (result) (increase(`+Sel("coupang_deals_runs_total")+`[1h]))`,
			"{{result}}", "A",
		)).
		FillOpacity(30).
		LineWidth(1).
		Thresholds(ThresholdsGreenOnly()).
		ColorScheme(ColorSchemePaletteClassic()).
		Tooltip(MultiTooltip()).
		DrawStyle(common.GraphDrawStyleBars)
}

// RunDuration returns a timeseries panel of the p95 run duration.
func RunDuration() *timeseries.PanelBuilder {
	return timeseries.NewPanelBuilder().
		Title("Run Duration (p95)").
		Description("95th percentile fetch run duration").
		Datasource(DSRef()).
		Height(TSHeight).
		Span(ThirdWidth).
		WithTarget(PromQuery(`coupang_deals:run_duration:p95_1h`, "p95", "A")).
		Unit("s").
		FillOpacity(10).
		LineWidth(2).
		Thresholds(ThresholdsGreenOnly()).
		ColorScheme(ColorSchemePaletteClassic()).
		DrawStyle(common.GraphDrawStyleLine)
}

// CategoryStates returns a timeseries panel of category fetches by terminal
// state.
func CategoryStates() *timeseries.PanelBuilder {
	return timeseries.NewPanelBuilder().
		Title("Categories by State").
		Description("Category fetches per hour ending evaluated or skipped").
		Datasource(DSRef()).
		Height(TSHeight).
		Span(ThirdWidth).
		WithTarget(PromQuery(
			`sum by (state) (increase(`+Sel("coupang_deals_categories_total")+`[1h]))`,
			"{{state}}", "A",
		)).
		FillOpacity(30).
		LineWidth(1).
		Thresholds(ThresholdsGreenOnly()).
		ColorScheme(ColorSchemePaletteClassic()).
		Tooltip(MultiTooltip()).
		DrawStyle(common.GraphDrawStyleBars)
}
