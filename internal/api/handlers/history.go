package handlers

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"

	"github.com/lsm5482-blip/my-coupang-bot/internal/history"
)

// HistoryHandler serves recorded price histories.
type HistoryHandler struct {
	store history.Store
}

// NewHistoryHandler creates a new HistoryHandler.
func NewHistoryHandler(s history.Store) *HistoryHandler {
	return &HistoryHandler{store: s}
}

// GetHistoryInput is the request for one product's price history.
type GetHistoryInput struct {
	ProductID string `path:"product_id" example:"7001" doc:"Coupang product ID"`
}

// HistoryOutput is the response body for the history endpoint.
type HistoryOutput struct {
	Body struct {
		ProductID    string  `json:"product_id"   example:"7001"`
		Prices       []int64 `json:"prices"       doc:"Observed sale prices in KRW, oldest first"`
		Low          int64   `json:"low"          example:"39000"`
		Observations int     `json:"observations" example:"12"`
	}
}

// GetHistory returns the price history of a single product.
func (h *HistoryHandler) GetHistory(ctx context.Context, in *GetHistoryInput) (*HistoryOutput, error) {
	records, err := h.store.Load(ctx)
	if err != nil {
		return nil, huma.Error500InternalServerError("loading price history", err)
	}

	rec, ok := records[in.ProductID]
	low, hasLow := rec.Min()
	if !ok || !hasLow {
		return nil, huma.Error404NotFound("no price history for product " + in.ProductID)
	}

	resp := &HistoryOutput{}
	resp.Body.ProductID = in.ProductID
	resp.Body.Prices = rec.Prices
	resp.Body.Low = low
	resp.Body.Observations = len(rec.Prices)
	return resp, nil
}

// RegisterHistoryRoutes registers the history endpoint with the Huma API.
func RegisterHistoryRoutes(api huma.API, h *HistoryHandler) {
	huma.Register(api, huma.Operation{
		OperationID: "get-history",
		Method:      http.MethodGet,
		Path:        "/api/v1/history/{product_id}",
		Summary:     "Get product price history",
		Description: "Returns every recorded sale price of a product and its all-time low.",
		Tags:        []string{"history"},
		Errors:      []int{http.StatusNotFound, http.StatusInternalServerError},
	}, h.GetHistory)
}
