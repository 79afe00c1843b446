package handlers

import (
	"net/http"

	"github.com/labstack/echo/v4"
)

// RunState reports whether a fetch run is in progress.
type RunState interface {
	Running() bool
}

// HealthHandler provides health and readiness endpoints.
type HealthHandler struct {
	runs   RunReporter
	state  RunState
	pinger Pinger
}

// NewHealthHandler creates a new HealthHandler. pinger may be nil when the
// history backend has nothing to ping.
func NewHealthHandler(runs RunReporter, state RunState, pinger Pinger) *HealthHandler {
	return &HealthHandler{runs: runs, state: state, pinger: pinger}
}

// ReadyzResponse is the /readyz body.
type ReadyzResponse struct {
	Status    string      `json:"status"`
	Running   bool        `json:"running"`
	LastRun   *RunSummary `json:"last_run,omitempty"`
	LastError string      `json:"last_error,omitempty"`
	Error     string      `json:"error,omitempty"`
}

// Healthz returns 200 if the process is running.
//
// @Summary Liveness check
// @Tags health
// @Produce json
// @Success 200 {object} StatusResponse
// @Router /healthz [get]
func (*HealthHandler) Healthz(c echo.Context) error {
	return c.JSON(http.StatusOK, StatusResponse{Status: "ok"})
}

// Readyz returns 200 with the last run summary, or 503 when the history
// database is unreachable. A failed run does not make the service unready.
//
// @Summary Readiness check
// @Tags health
// @Produce json
// @Success 200 {object} ReadyzResponse
// @Failure 503 {object} ReadyzResponse
// @Router /readyz [get]
func (h *HealthHandler) Readyz(c echo.Context) error {
	resp := ReadyzResponse{Status: "ready"}
	if h.state != nil {
		resp.Running = h.state.Running()
	}

	if h.pinger != nil {
		if err := h.pinger.Ping(c.Request().Context()); err != nil {
			resp.Status = "unavailable"
			resp.Error = err.Error()
			return c.JSON(http.StatusServiceUnavailable, resp)
		}
	}

	last, lastErr := h.runs.LastRun()
	resp.LastRun = Summarize(last)
	if lastErr != nil {
		resp.LastError = lastErr.Error()
	}
	return c.JSON(http.StatusOK, resp)
}
