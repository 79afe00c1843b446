// Package handlers implements the coupang-deals HTTP API: probes served
// directly on Echo and the /api/v1 operations registered with Huma.
package handlers

import (
	"context"
	"time"

	domain "github.com/lsm5482-blip/my-coupang-bot/pkg/types"
)

// ErrorResponse is the standard error response body.
type ErrorResponse struct {
	Error string `json:"error" example:"something went wrong"`
}

// StatusResponse is a generic status response body.
type StatusResponse struct {
	Status string `json:"status" example:"ok"`
}

// Pinger checks a backing dependency, such as the history database.
type Pinger interface {
	Ping(ctx context.Context) error
}

// RunReporter exposes the outcome of the most recent fetch run.
type RunReporter interface {
	LastRun() (*domain.RunResult, error)
}

// RunSummary is the condensed form of a run used by the probe and run endpoints.
type RunSummary struct {
	RunID       string `json:"run_id"        example:"20240610T061320Z-1a2b"`
	StartedAt   string `json:"started_at"    example:"2024-06-10T06:13:20Z"`
	Duration    string `json:"duration"      example:"12.4s"`
	Products    int    `json:"products"      example:"160"`
	Skipped     int    `json:"skipped"       example:"1"`
	AllTimeLows int    `json:"all_time_lows" example:"7"`
}

// Summarize condenses r.
func Summarize(r *domain.RunResult) *RunSummary {
	if r == nil {
		return nil
	}
	return &RunSummary{
		RunID:       r.RunID,
		StartedAt:   r.StartedAt.UTC().Format(time.RFC3339),
		Duration:    r.Duration.String(),
		Products:    r.TotalProducts(),
		Skipped:     len(r.Skipped()),
		AllTimeLows: r.AllTimeLows,
	}
}
