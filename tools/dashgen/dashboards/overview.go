// Package dashboards assembles Grafana dashboard definitions from panel builders.
package dashboards

import (
	"github.com/grafana/grafana-foundation-sdk/go/dashboard"

	"github.com/lsm5482-blip/my-coupang-bot/tools/dashgen/panels"
)

// UID is the stable Grafana identifier of the overview dashboard.
const UID = "coupang-deals-overview"

// BuildOverview constructs the coupang-deals overview dashboard.
func BuildOverview() *dashboard.DashboardBuilder {
	b := dashboard.NewDashboardBuilder("Coupang Deals Overview").
		Uid(UID).
		Tags([]string{"coupang-deals", "coupang"}).
		Refresh("1m").
		Time("now-24h", "now").
		Timezone("Asia/Seoul").
		Editable().
		Tooltip(dashboard.DashboardCursorSyncCrosshair).
		WithVariable(datasourceVar())

	b.WithRow(dashboard.NewRowBuilder("Overview").
		WithPanel(panels.UpStat()).
		WithPanel(panels.LastRunAge()).
		WithPanel(panels.HistorySize()).
		WithPanel(panels.HistoryErrors()))

	b.WithRow(dashboard.NewRowBuilder("Runs").
		WithPanel(panels.RunsByResult()).
		WithPanel(panels.RunDuration()).
		WithPanel(panels.CategoryStates()))

	b.WithRow(dashboard.NewRowBuilder("Partners API").
		WithPanel(panels.APICallsByOutcome()).
		WithPanel(panels.APILatency()).
		WithPanel(panels.QuotaGauge()).
		WithPanel(panels.Retries()).
		WithPanel(panels.LimitHits()))

	b.WithRow(dashboard.NewRowBuilder("Deals").
		WithPanel(panels.EvaluatedRate()).
		WithPanel(panels.SkippedByReason()).
		WithPanel(panels.AllTimeLows()))

	b.WithRow(dashboard.NewRowBuilder("Notifications").
		WithPanel(panels.NotificationsSent()).
		WithPanel(panels.NotificationLatency()).
		WithPanel(panels.NotificationFailures()))

	return b
}

func datasourceVar() *dashboard.DatasourceVariableBuilder {
	return dashboard.NewDatasourceVariableBuilder("datasource").
		Label("Datasource").
		Type("prometheus")
}
