package cmd

import (
	"bytes"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apiclient "github.com/lsm5482-blip/my-coupang-bot/internal/api/client"
	domain "github.com/lsm5482-blip/my-coupang-bot/pkg/types"
)

func sampleRun() *domain.RunResult {
	return &domain.RunResult{
		RunID:    "run-1",
		Duration: 1234 * time.Millisecond,
		Featured: &domain.CategoryResult{
			Category: domain.Category{ID: "goldbox", Label: "골드박스", Slug: "goldbox"},
			State:    domain.StateEvaluated,
			Count:    1,
			Products: []domain.EvaluatedProduct{
				{ProductID: "11", Name: "무선 이어폰", OriginalPrice: 100000, SalePrice: 59000, DiscountRate: 41, IsAllTimeLow: true},
			},
		},
		Categories: []domain.CategoryResult{
			{
				Category: domain.Category{ID: "1001", Label: "전자기기", Slug: "electronics"},
				State:    domain.StateEvaluated,
				Count:    1,
				Products: []domain.EvaluatedProduct{
					{ProductID: "12", Name: "모니터", OriginalPrice: 300000, SalePrice: 300000},
				},
			},
			{
				Category: domain.Category{ID: "1002", Label: "패션", Slug: "fashion"},
				State:    domain.StateSkipped,
				Error:    "daily API limit reached",
			},
		},
		AllTimeLows: 1,
	}
}

func TestPrintRunTable(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	require.NoError(t, printRunTable(&buf, sampleRun()))

	out := buf.String()
	assert.Contains(t, out, "골드박스 (goldbox)")
	assert.Contains(t, out, "패션 (1002)")
	assert.Contains(t, out, "skipped")
	assert.Contains(t, out, "daily API limit reached")
	assert.Contains(t, out, "무선 이어폰")
	assert.Contains(t, out, "59,000원")
	assert.Contains(t, out, "41%")
	assert.NotContains(t, out, "모니터")
	assert.Contains(t, out, "run run-1: 2 products, 1 all-time lows, 1.234s")
}

func TestPrintHistoryTable(t *testing.T) {
	t.Parallel()

	records := map[string]*domain.PriceRecord{
		"b": {Prices: []int64{900, 800, 850}},
		"a": {Prices: []int64{1000}},
	}

	tests := []struct {
		name     string
		ids      []string
		contains []string
		order    []string
	}{
		{
			name:     "all products sorted",
			contains: []string{"800원", "850원", "900,800,850"},
			order:    []string{"a ", "b "},
		},
		{
			name:     "selected products",
			ids:      []string{"b", "missing"},
			contains: []string{"missing  0"},
			order:    []string{"b ", "missing"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			var buf bytes.Buffer
			require.NoError(t, printHistoryTable(&buf, records, tt.ids))
			out := buf.String()

			for _, c := range tt.contains {
				assert.Contains(t, out, c)
			}
			last := -1
			for _, o := range tt.order {
				idx := bytes.Index(buf.Bytes(), []byte("\n"+o))
				require.Greater(t, idx, last, "expected %q after previous row", o)
				last = idx
			}
		})
	}
}

func TestOutputJSON(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	require.NoError(t, outputJSON(&buf, sampleRun()))

	var got domain.RunResult
	require.NoError(t, json.Unmarshal(buf.Bytes(), &got))
	assert.Equal(t, "run-1", got.RunID)
	require.Len(t, got.Categories, 2)
	assert.Equal(t, domain.StateSkipped, got.Categories[1].State)
}

func TestTruncate(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "short", truncate("short", 10))
	assert.Equal(t, "abcdefg...", truncate("abcdefghijklmnop", 10))
	assert.Equal(t, "삼성전자 ...", truncate("삼성전자 노트북 갤럭시북", 8))
}

func TestPrintQuotaTable(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		quota apiclient.Quota
		want  []string
	}{
		{
			name:  "limited",
			quota: apiclient.Quota{DailyLimit: 10000, DailyUsed: 142, Remaining: 9858},
			want:  []string{"10000", "142", "9858"},
		},
		{
			name:  "unlimited",
			quota: apiclient.Quota{DailyUsed: 7, Remaining: -1},
			want:  []string{"unlimited", "7"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			var buf bytes.Buffer
			require.NoError(t, printQuotaTable(&buf, &tt.quota))
			for _, w := range tt.want {
				assert.Contains(t, buf.String(), w)
			}
		})
	}
}
