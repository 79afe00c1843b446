package rules

// RecordingRules returns a PrometheusRule CR containing pre-computed
// expressions used by dashboards and alert rules.
func RecordingRules() PrometheusRule {
	return PrometheusRule{
		APIVersion: "monitoring.coreos.com/v1",
		Kind:       "PrometheusRule",
		Metadata:   metadata("coupang-deals-recording-rules"),
		Spec: PrometheusRuleSpec{
			Groups: []RuleGroup{
				{
					Name: "coupang-deals-recording",
					Rules: []Rule{
						{
							Record: "coupang_deals:api_calls:rate5m",
							Expr:   `sum(rate(coupang_deals_api_calls_total[5m]))`,
						},
						{
							Record: "coupang_deals:api_errors:rate5m",
							Expr:   `sum(rate(coupang_deals_api_calls_total{outcome!="ok"}[5m]))`,
						},
						{
							Record: "coupang_deals:run_duration:p95_1h",
							Expr:   `histogram_quantile(0.95, sum(rate(coupang_deals_run_duration_seconds_bucket[1h])) by (le))`,
						},
						{
							Record: "coupang_deals:notification_duration:p95_5m",
							Expr:   `histogram_quantile(0.95, sum(rate(coupang_deals_notification_duration_seconds_bucket[5m])) by (le))`,
						},
					},
				},
			},
		},
	}
}
