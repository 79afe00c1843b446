package handlers_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lsm5482-blip/my-coupang-bot/internal/api/handlers"
)

func TestHealthz(t *testing.T) {
	t.Parallel()

	h := handlers.NewHealthHandler(&fakeEngine{}, &fakeTrigger{}, nil)

	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/healthz", http.NoBody)
	rec := httptest.NewRecorder()

	require.NoError(t, h.Healthz(e.NewContext(req, rec)))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rec.Body.String())
}

func TestReadyz(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name       string
		engine     *fakeEngine
		running    bool
		pinger     handlers.Pinger
		wantStatus int
		wantBody   string
	}{
		{
			name:       "ready before first run",
			engine:     &fakeEngine{},
			wantStatus: http.StatusOK,
			wantBody:   `{"status":"ready","running":false}`,
		},
		{
			name:       "reports a run in progress",
			engine:     &fakeEngine{},
			running:    true,
			wantStatus: http.StatusOK,
			wantBody:   `{"status":"ready","running":true}`,
		},
		{
			name:       "includes last run summary",
			engine:     &fakeEngine{last: sampleRun()},
			wantStatus: http.StatusOK,
			wantBody: `{"status":"ready","running":false,"last_run":{
				"run_id":"run-1","started_at":"2024-06-10T06:13:20Z","duration":"1.5s",
				"products":2,"skipped":1,"all_time_lows":1}}`,
		},
		{
			name:       "failed run stays ready",
			engine:     &fakeEngine{last: sampleRun(), err: errors.New("creating signer: missing keys")},
			pinger:     pingFunc(func(context.Context) error { return nil }),
			wantStatus: http.StatusOK,
			wantBody: `{"status":"ready","running":false,"last_run":{
				"run_id":"run-1","started_at":"2024-06-10T06:13:20Z","duration":"1.5s",
				"products":2,"skipped":1,"all_time_lows":1},
				"last_error":"creating signer: missing keys"}`,
		},
		{
			name:       "503 when database ping fails",
			engine:     &fakeEngine{last: sampleRun()},
			pinger:     pingFunc(func(context.Context) error { return errors.New("connection refused") }),
			wantStatus: http.StatusServiceUnavailable,
			wantBody:   `{"status":"unavailable","running":false,"error":"connection refused"}`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			h := handlers.NewHealthHandler(tt.engine, &fakeTrigger{running: tt.running}, tt.pinger)

			e := echo.New()
			req := httptest.NewRequest(http.MethodGet, "/readyz", http.NoBody)
			rec := httptest.NewRecorder()

			require.NoError(t, h.Readyz(e.NewContext(req, rec)))
			assert.Equal(t, tt.wantStatus, rec.Code)
			assert.JSONEq(t, tt.wantBody, rec.Body.String())
		})
	}
}
