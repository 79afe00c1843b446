package client

import (
	"context"

	"github.com/lsm5482-blip/my-coupang-bot/internal/api/handlers"
	domain "github.com/lsm5482-blip/my-coupang-bot/pkg/types"
)

// LastRun is the server's view of the most recent fetch run.
type LastRun struct {
	Summary handlers.RunSummary `json:"summary"`
	Run     domain.RunResult    `json:"run"`
	Error   string              `json:"error,omitempty"`
}

// GetLastRun returns the most recent run. It wraps ErrNotFound before the
// first run completes.
func (c *Client) GetLastRun(ctx context.Context) (*LastRun, error) {
	var out LastRun
	if err := c.get(ctx, "/api/v1/runs/last", &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// TriggerRun asks the server to start a run outside the schedule.
func (c *Client) TriggerRun(ctx context.Context) error {
	return c.post(ctx, "/api/v1/runs", nil, nil)
}

// ListCategories returns the server's configured categories.
func (c *Client) ListCategories(ctx context.Context) ([]domain.Category, error) {
	var out struct {
		Categories []domain.Category `json:"categories"`
	}
	if err := c.get(ctx, "/api/v1/categories", &out); err != nil {
		return nil, err
	}
	return out.Categories, nil
}
