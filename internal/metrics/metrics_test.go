package metrics

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMetricsRegistered(t *testing.T) {
	t.Parallel()

	// Verify all metrics are non-nil (registered via promauto on package init).
	assert.NotNil(t, HTTPRequestDuration)
	assert.NotNil(t, HTTPRequestsTotal)
	assert.NotNil(t, HealthzUp)
	assert.NotNil(t, ReadyzUp)
	assert.NotNil(t, CoupangAPICallsTotal)
	assert.NotNil(t, CoupangAPICallDuration)
	assert.NotNil(t, CoupangRetriesTotal)
	assert.NotNil(t, CoupangDailyUsage)
	assert.NotNil(t, CoupangDailyLimitHits)
	assert.NotNil(t, RunDuration)
	assert.NotNil(t, RunsTotal)
	assert.NotNil(t, CategoriesTotal)
	assert.NotNil(t, LastRunTimestamp)
	assert.NotNil(t, ProductsEvaluatedTotal)
	assert.NotNil(t, ProductsSkippedTotal)
	assert.NotNil(t, AllTimeLowsTotal)
	assert.NotNil(t, HistoryProducts)
	assert.NotNil(t, HistoryErrorsTotal)
	assert.NotNil(t, NotificationsSentTotal)
	assert.NotNil(t, NotificationFailuresTotal)
	assert.NotNil(t, NotificationDuration)
}

func TestCounterVecLabels(t *testing.T) {
	t.Parallel()

	before := testutil.ToFloat64(CategoriesTotal.WithLabelValues("test_state"))
	CategoriesTotal.WithLabelValues("test_state").Inc()
	assert.InDelta(t, before+1, testutil.ToFloat64(CategoriesTotal.WithLabelValues("test_state")), 0.001)
}

func TestWriteTextfile(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "coupang_deals.prom")
	HistoryProducts.Set(42)

	require.NoError(t, WriteTextfile(path))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "coupang_deals_history_products")
}

func TestWriteTextfile_BadDirectory(t *testing.T) {
	t.Parallel()

	err := WriteTextfile(filepath.Join(t.TempDir(), "missing", "x.prom"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "writing metrics textfile")
}
