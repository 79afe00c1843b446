package rules

// AlertRules returns a PrometheusRule CR containing alert rules for
// coupang-deals operational monitoring.
func AlertRules() PrometheusRule {
	return PrometheusRule{
		APIVersion: "monitoring.coreos.com/v1",
		Kind:       "PrometheusRule",
		Metadata:   metadata("coupang-deals-alerts"),
		Spec: PrometheusRuleSpec{
			Groups: []RuleGroup{
				{
					Name: "coupang-deals-alerts",
					Rules: []Rule{
						{
							Alert:  "CoupangDealsDown",
							Expr:   `absent(up{job="coupang-deals"})`,
							For:    "5m",
							Labels: severity("critical"),
							Annotations: map[string]string{
								"summary":     "coupang-deals is down",
								"description": "The coupang-deals job has been absent for more than 5 minutes.",
							},
						},
						{
							Alert:  "CoupangDealsNotReady",
							Expr:   `coupang_deals_readyz_up == 0`,
							For:    "5m",
							Labels: severity("warning"),
							Annotations: map[string]string{
								"summary":     "coupang-deals is not ready",
								"description": "/readyz has failed for 5 minutes, usually because the history database is unreachable.",
							},
						},
						{
							Alert:  "CoupangDealsRunStale",
							Expr:   `time() - coupang_deals_last_run_timestamp_seconds > 13 * 3600`,
							For:    "10m",
							Labels: severity("warning"),
							Annotations: map[string]string{
								"summary":     "No fetch run has finished recently",
								"description": "The last fetch run finished more than 13 hours ago, two scheduled intervals.",
							},
						},
						{
							Alert:  "CoupangDealsFatalRun",
							Expr:   `increase(coupang_deals_runs_total{result="fatal"}[1h]) > 0`,
							Labels: severity("critical"),
							Annotations: map[string]string{
								"summary":     "A fetch run aborted on a fatal error",
								"description": "A run stopped on a configuration error, usually missing or rejected API keys.",
							},
						},
						{
							Alert:  "CoupangDealsHighAPIErrorRate",
							Expr:   `coupang_deals:api_errors:rate5m / coupang_deals:api_calls:rate5m > 0.25`,
							For:    "15m",
							Labels: severity("warning"),
							Annotations: map[string]string{
								"summary":     "High Partners API error rate",
								"description": "More than 25% of Partners API attempts failed over 15 minutes.",
							},
						},
						{
							Alert:  "CoupangDealsDailyLimitReached",
							Expr:   `increase(coupang_deals_api_daily_limit_hits_total[1h]) > 0`,
							Labels: severity("warning"),
							Annotations: map[string]string{
								"summary":     "Partners API daily budget exhausted",
								"description": "Categories are being skipped until the rolling daily window resets.",
							},
						},
						{
							Alert:  "CoupangDealsHistoryPersistFailing",
							Expr:   `increase(coupang_deals_history_errors_total{op="persist"}[6h]) > 0`,
							Labels: severity("warning"),
							Annotations: map[string]string{
								"summary":     "Price history could not be saved",
								"description": "Observations from recent runs were not persisted and all-time lows may repeat.",
							},
						},
						{
							Alert:  "CoupangDealsNotificationFailures",
							Expr:   `increase(coupang_deals_notification_failures_total[1h]) > 0`,
							For:    "1m",
							Labels: severity("warning"),
							Annotations: map[string]string{
								"summary":     "Deal alert delivery failures detected",
								"description": "One or more Discord webhook deliveries have failed.",
							},
						},
					},
				},
			},
		},
	}
}
