package handlers

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"

	domain "github.com/lsm5482-blip/my-coupang-bot/pkg/types"
)

// RunSource is the engine side of the run endpoints.
type RunSource interface {
	RunReporter
	Categories() []domain.Category
}

// Trigger starts a fetch run outside the schedule.
type Trigger interface {
	RunState
	RunNow()
}

// RunsHandler serves run status and manual triggers.
type RunsHandler struct {
	runs    RunSource
	trigger Trigger
	goFunc  func(func())
}

// RunsOption configures a RunsHandler.
type RunsOption func(*RunsHandler)

// WithGoFunc overrides how triggered runs are started; tests run them inline.
func WithGoFunc(f func(func())) RunsOption {
	return func(h *RunsHandler) {
		h.goFunc = f
	}
}

// NewRunsHandler creates a new RunsHandler.
func NewRunsHandler(runs RunSource, trigger Trigger, opts ...RunsOption) *RunsHandler {
	h := &RunsHandler{
		runs:    runs,
		trigger: trigger,
		goFunc:  func(f func()) { go f() },
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// LastRunOutput is the response body for the last-run endpoint.
type LastRunOutput struct {
	Body struct {
		Summary *RunSummary       `json:"summary"`
		Run     *domain.RunResult `json:"run"`
		Error   string            `json:"error,omitempty" doc:"Fatal error of the run, if any"`
	}
}

// GetLastRun returns the full result of the most recent run.
func (h *RunsHandler) GetLastRun(_ context.Context, _ *struct{}) (*LastRunOutput, error) {
	last, lastErr := h.runs.LastRun()
	if last == nil {
		return nil, huma.Error404NotFound("no run has completed yet")
	}

	resp := &LastRunOutput{}
	resp.Body.Summary = Summarize(last)
	resp.Body.Run = last
	if lastErr != nil {
		resp.Body.Error = lastErr.Error()
	}
	return resp, nil
}

// TriggerOutput is the response body for the trigger endpoint.
type TriggerOutput struct {
	Body struct {
		Status string `json:"status" example:"run started" doc:"Trigger status"`
	}
}

// TriggerRun starts a run in the background. A run already in progress is
// reported as a conflict.
func (h *RunsHandler) TriggerRun(_ context.Context, _ *struct{}) (*TriggerOutput, error) {
	if h.trigger.Running() {
		return nil, huma.Error409Conflict("a run is already in progress")
	}
	h.goFunc(h.trigger.RunNow)

	resp := &TriggerOutput{}
	resp.Body.Status = "run started"
	return resp, nil
}

// CategoriesOutput is the response body for the categories endpoint.
type CategoriesOutput struct {
	Body struct {
		Categories []domain.Category `json:"categories"`
	}
}

// ListCategories returns the configured categories in fetch order.
func (h *RunsHandler) ListCategories(_ context.Context, _ *struct{}) (*CategoriesOutput, error) {
	resp := &CategoriesOutput{}
	resp.Body.Categories = h.runs.Categories()
	if resp.Body.Categories == nil {
		resp.Body.Categories = []domain.Category{}
	}
	return resp, nil
}

// RegisterRunRoutes registers the run and category endpoints with the Huma API.
func RegisterRunRoutes(api huma.API, h *RunsHandler) {
	huma.Register(api, huma.Operation{
		OperationID: "get-last-run",
		Method:      http.MethodGet,
		Path:        "/api/v1/runs/last",
		Summary:     "Get the last run",
		Description: "Returns every category result of the most recent fetch run.",
		Tags:        []string{"runs"},
		Errors:      []int{http.StatusNotFound},
	}, h.GetLastRun)

	huma.Register(api, huma.Operation{
		OperationID:   "trigger-run",
		Method:        http.MethodPost,
		Path:          "/api/v1/runs",
		Summary:       "Trigger a fetch run",
		Description:   "Starts a fetch run outside the schedule.",
		Tags:          []string{"runs"},
		DefaultStatus: http.StatusAccepted,
		Errors:        []int{http.StatusConflict},
	}, h.TriggerRun)

	huma.Register(api, huma.Operation{
		OperationID: "list-categories",
		Method:      http.MethodGet,
		Path:        "/api/v1/categories",
		Summary:     "List categories",
		Description: "Returns the configured categories in fetch order.",
		Tags:        []string{"runs"},
	}, h.ListCategories)
}
