package cmd

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/lsm5482-blip/my-coupang-bot/internal/coupang"
	coupangmocks "github.com/lsm5482-blip/my-coupang-bot/internal/coupang/mocks"
	"github.com/lsm5482-blip/my-coupang-bot/internal/engine"
	historymocks "github.com/lsm5482-blip/my-coupang-bot/internal/history/mocks"
)

type pingFunc func(ctx context.Context) error

func (f pingFunc) Ping(ctx context.Context) error { return f(ctx) }

var testLog = slog.New(slog.NewTextHandler(io.Discard, nil))

func newTestApp(t *testing.T) (*app, *engine.Scheduler) {
	t.Helper()

	log := testLog
	src := coupangmocks.NewMockProductSource(t)
	store := historymocks.NewMockStore(t)

	eng := engine.NewEngine(src, store, nil,
		engine.WithLogger(log),
		engine.WithPacer(engine.NoDelay{}),
		engine.WithFeatured(false),
	)
	sched, err := engine.NewScheduler(eng, time.Hour, log)
	require.NoError(t, err)

	limiter := coupang.NewRateLimiter(100, 10, 10000)
	return &app{engine: eng, store: store, limiter: limiter, close: func() {}}, sched
}

func doGet(t *testing.T, h http.Handler, path string) (int, map[string]any) {
	t.Helper()

	req := httptest.NewRequest(http.MethodGet, path, http.NoBody)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	var body map[string]any
	if strings.HasPrefix(rec.Header().Get("Content-Type"), "application/json") {
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	}
	return rec.Code, body
}

func TestServer_Healthz(t *testing.T) {
	t.Parallel()

	a, sched := newTestApp(t)
	code, body := doGet(t, newServer(a, sched, testLog), "/healthz")

	assert.Equal(t, http.StatusOK, code)
	assert.Equal(t, "ok", body["status"])
}

func TestServer_Readyz_BeforeFirstRun(t *testing.T) {
	t.Parallel()

	a, sched := newTestApp(t)
	code, body := doGet(t, newServer(a, sched, testLog), "/readyz")

	assert.Equal(t, http.StatusOK, code)
	assert.Equal(t, "ready", body["status"])
	assert.Equal(t, false, body["running"])
	assert.NotContains(t, body, "last_run")
}

func TestServer_Readyz_AfterRun(t *testing.T) {
	t.Parallel()

	a, sched := newTestApp(t)
	store := a.store.(*historymocks.MockStore)
	store.EXPECT().Load(mock.Anything).Return(nil, nil).Once()
	store.EXPECT().Persist(mock.Anything, mock.Anything).Return(nil).Once()

	_, err := a.engine.RunOnce(context.Background())
	require.NoError(t, err)

	code, body := doGet(t, newServer(a, sched, testLog), "/readyz")
	assert.Equal(t, http.StatusOK, code)
	require.Contains(t, body, "last_run")
	assert.NotContains(t, body, "last_error")
}

func TestServer_Readyz_DatabaseDown(t *testing.T) {
	t.Parallel()

	a, sched := newTestApp(t)
	a.pinger = pingFunc(func(context.Context) error { return errors.New("connection refused") })

	code, body := doGet(t, newServer(a, sched, testLog), "/readyz")
	assert.Equal(t, http.StatusServiceUnavailable, code)
	assert.Equal(t, "unavailable", body["status"])
	assert.Equal(t, "connection refused", body["error"])
}

func TestServer_Metrics(t *testing.T) {
	t.Parallel()

	a, sched := newTestApp(t)
	req := httptest.NewRequest(http.MethodGet, "/metrics", http.NoBody)
	rec := httptest.NewRecorder()
	newServer(a, sched, testLog).ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "coupang_deals_")
}

func TestServer_API(t *testing.T) {
	t.Parallel()

	a, sched := newTestApp(t)
	srv := newServer(a, sched, testLog)

	code, body := doGet(t, srv, "/api/v1/categories")
	assert.Equal(t, http.StatusOK, code)
	assert.Empty(t, body["categories"])

	code, body = doGet(t, srv, "/api/v1/quota")
	assert.Equal(t, http.StatusOK, code)
	assert.InDelta(t, 10000, body["daily_limit"], 0.001)

	code, _ = doGet(t, srv, "/api/v1/runs/last")
	assert.Equal(t, http.StatusNotFound, code)

	req := httptest.NewRequest(http.MethodGet, "/openapi.json", http.NoBody)
	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "/api/v1/runs")
}

func TestServer_RequestID(t *testing.T) {
	t.Parallel()

	a, sched := newTestApp(t)
	req := httptest.NewRequest(http.MethodGet, "/healthz", http.NoBody)
	req.Header.Set("X-Request-ID", "abc")
	rec := httptest.NewRecorder()
	newServer(a, sched, testLog).ServeHTTP(rec, req)

	assert.Equal(t, "abc", rec.Header().Get("X-Request-ID"))
}

func TestVersionCmd(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	c := versionCmd()
	c.SetOut(&buf)
	c.SetArgs(nil)
	require.NoError(t, c.Execute())
	assert.Equal(t, "coupang-deals dev\n", buf.String())
}
