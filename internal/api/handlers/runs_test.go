package handlers_test

import (
	"encoding/json"
	"errors"
	"net/http"
	"testing"

	"github.com/danielgtaylor/huma/v2/humatest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lsm5482-blip/my-coupang-bot/internal/api/handlers"
	domain "github.com/lsm5482-blip/my-coupang-bot/pkg/types"
)

func inline(f func()) { f() }

func TestGetLastRun(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name       string
		engine     *fakeEngine
		wantStatus int
		wantError  string
	}{
		{
			name:       "404 before first run",
			engine:     &fakeEngine{},
			wantStatus: http.StatusNotFound,
		},
		{
			name:       "returns last run",
			engine:     &fakeEngine{last: sampleRun()},
			wantStatus: http.StatusOK,
		},
		{
			name:       "includes fatal error",
			engine:     &fakeEngine{last: sampleRun(), err: errors.New("configuration error")},
			wantStatus: http.StatusOK,
			wantError:  "configuration error",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			_, api := humatest.New(t)
			handlers.RegisterRunRoutes(api, handlers.NewRunsHandler(tt.engine, &fakeTrigger{}))

			resp := api.Get("/api/v1/runs/last")
			require.Equal(t, tt.wantStatus, resp.Code)
			if tt.wantStatus != http.StatusOK {
				return
			}

			var body struct {
				Summary handlers.RunSummary `json:"summary"`
				Run     domain.RunResult    `json:"run"`
				Error   string              `json:"error"`
			}
			require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &body))
			assert.Equal(t, "run-1", body.Summary.RunID)
			assert.Equal(t, 2, body.Summary.Products)
			require.Len(t, body.Run.Categories, 2)
			assert.Equal(t, domain.StateSkipped, body.Run.Categories[1].State)
			assert.Equal(t, tt.wantError, body.Error)
		})
	}
}

func TestTriggerRun(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name       string
		running    bool
		wantStatus int
		wantCalls  int32
	}{
		{name: "starts a run", wantStatus: http.StatusAccepted, wantCalls: 1},
		{name: "conflict while running", running: true, wantStatus: http.StatusConflict, wantCalls: 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			trig := &fakeTrigger{running: tt.running}
			h := handlers.NewRunsHandler(&fakeEngine{}, trig, handlers.WithGoFunc(inline))

			_, api := humatest.New(t)
			handlers.RegisterRunRoutes(api, h)

			resp := api.Post("/api/v1/runs")
			require.Equal(t, tt.wantStatus, resp.Code)
			assert.Equal(t, tt.wantCalls, trig.calls.Load())
			if tt.wantStatus == http.StatusAccepted {
				assert.Contains(t, resp.Body.String(), "run started")
			}
		})
	}
}

func TestListCategories(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name       string
		categories []domain.Category
		wantIDs    []string
	}{
		{name: "empty list", wantIDs: []string{}},
		{
			name: "fetch order preserved",
			categories: []domain.Category{
				{ID: "1002", Label: "남성패션", Slug: "mens-fashion"},
				{ID: "1001", Label: "여성패션", Slug: "womens-fashion"},
			},
			wantIDs: []string{"1002", "1001"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			_, api := humatest.New(t)
			handlers.RegisterRunRoutes(api, handlers.NewRunsHandler(&fakeEngine{categories: tt.categories}, &fakeTrigger{}))

			resp := api.Get("/api/v1/categories")
			require.Equal(t, http.StatusOK, resp.Code)

			var body struct {
				Categories []domain.Category `json:"categories"`
			}
			require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &body))
			ids := make([]string, 0, len(body.Categories))
			for _, c := range body.Categories {
				ids = append(ids, c.ID)
			}
			assert.Equal(t, tt.wantIDs, ids)
		})
	}
}
