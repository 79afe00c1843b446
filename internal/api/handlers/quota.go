package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/danielgtaylor/huma/v2"
)

// QuotaReporter exposes the Partners API daily budget.
type QuotaReporter interface {
	MaxDaily() int64
	Used() int64
	Remaining() int64
	ResetAt() time.Time
}

// QuotaHandler provides the Partners API quota status endpoint.
type QuotaHandler struct {
	rl QuotaReporter
}

// NewQuotaHandler creates a new QuotaHandler.
func NewQuotaHandler(rl QuotaReporter) *QuotaHandler {
	return &QuotaHandler{rl: rl}
}

// QuotaOutput is the response body for the quota endpoint.
type QuotaOutput struct {
	Body struct {
		DailyLimit int64     `json:"daily_limit" example:"10000"                doc:"Configured daily API call limit, 0 when unlimited"`
		DailyUsed  int64     `json:"daily_used"  example:"142"                  doc:"API attempts in the current 24-hour window"`
		Remaining  int64     `json:"remaining"   example:"9858"                 doc:"Attempts left in the window, -1 when unlimited"`
		ResetAt    time.Time `json:"reset_at"    example:"2024-06-10T14:30:00Z" doc:"When the current 24-hour window expires"`
	}
}

// GetQuota returns the current Partners API quota status.
func (h *QuotaHandler) GetQuota(_ context.Context, _ *struct{}) (*QuotaOutput, error) {
	resp := &QuotaOutput{}
	if h.rl == nil {
		return resp, nil
	}

	resp.Body.DailyLimit = h.rl.MaxDaily()
	resp.Body.DailyUsed = h.rl.Used()
	resp.Body.Remaining = h.rl.Remaining()
	resp.Body.ResetAt = h.rl.ResetAt()

	return resp, nil
}

// RegisterQuotaRoutes registers the quota endpoint with the Huma API.
func RegisterQuotaRoutes(api huma.API, h *QuotaHandler) {
	huma.Register(api, huma.Operation{
		OperationID: "get-quota",
		Method:      http.MethodGet,
		Path:        "/api/v1/quota",
		Summary:     "Get Partners API quota status",
		Description: "Returns the daily call budget, usage in the current window, and when the window resets.",
		Tags:        []string{"coupang"},
	}, h.GetQuota)
}
