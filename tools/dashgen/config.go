package main

import "errors"

// KnownMetrics is the set of metric names exported by coupang-deals plus
// recording rule names referenced in dashboards and alerts.
var KnownMetrics = map[string]bool{
	// HTTP metrics.
	"coupang_deals_http_requests_total":                  true,
	"coupang_deals_http_request_duration_seconds_bucket": true,
	"coupang_deals_healthz_up":                           true,
	"coupang_deals_readyz_up":                            true,

	// Partners API metrics.
	"coupang_deals_api_calls_total":                  true,
	"coupang_deals_api_call_duration_seconds_bucket": true,
	"coupang_deals_api_retries_total":                true,
	"coupang_deals_api_daily_usage":                  true,
	"coupang_deals_api_daily_limit_hits_total":       true,

	// Run metrics.
	"coupang_deals_run_duration_seconds_bucket": true,
	"coupang_deals_runs_total":                  true,
	"coupang_deals_categories_total":            true,
	"coupang_deals_last_run_timestamp_seconds":  true,

	// Evaluation metrics.
	"coupang_deals_products_evaluated_total": true,
	"coupang_deals_products_skipped_total":   true,
	"coupang_deals_all_time_lows_total":      true,

	// History metrics.
	"coupang_deals_history_products":     true,
	"coupang_deals_history_errors_total": true,

	// Notification metrics.
	"coupang_deals_notifications_sent_total":             true,
	"coupang_deals_notification_failures_total":          true,
	"coupang_deals_notification_duration_seconds_bucket": true,

	// Recording rules.
	"coupang_deals:api_calls:rate5m":             true,
	"coupang_deals:api_errors:rate5m":            true,
	"coupang_deals:run_duration:p95_1h":          true,
	"coupang_deals:notification_duration:p95_5m": true,

	// Standard Prometheus metrics referenced in dashboards.
	"up": true,
}

// Config controls which artifacts the generator produces and where they go.
type Config struct {
	OutputDir        string
	DashboardEnabled bool
	RulesEnabled     bool
}

// DefaultConfig returns a Config that generates all artifacts into ../../deploy
// (relative to tools/dashgen/).
func DefaultConfig() Config {
	return Config{
		OutputDir:        "../../deploy",
		DashboardEnabled: true,
		RulesEnabled:     true,
	}
}

// Validate checks that the config is usable.
func (c Config) Validate() error {
	if c.OutputDir == "" {
		return errors.New("output directory must be set")
	}
	if !c.DashboardEnabled && !c.RulesEnabled {
		return errors.New("at least one of dashboard or rules must be enabled")
	}
	return nil
}
