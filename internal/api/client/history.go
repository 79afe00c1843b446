package client

import (
	"context"
	"net/url"
	"time"
)

// PriceHistory is one product's recorded prices.
type PriceHistory struct {
	ProductID    string  `json:"product_id"`
	Prices       []int64 `json:"prices"`
	Low          int64   `json:"low"`
	Observations int     `json:"observations"`
}

// GetHistory returns the price history of productID.
func (c *Client) GetHistory(ctx context.Context, productID string) (*PriceHistory, error) {
	var out PriceHistory
	if err := c.get(ctx, "/api/v1/history/"+url.PathEscape(productID), &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Quota is the Partners API budget as seen by the server.
type Quota struct {
	DailyLimit int64     `json:"daily_limit"`
	DailyUsed  int64     `json:"daily_used"`
	Remaining  int64     `json:"remaining"`
	ResetAt    time.Time `json:"reset_at"`
}

// GetQuota returns the server's Partners API quota status.
func (c *Client) GetQuota(ctx context.Context) (*Quota, error) {
	var out Quota
	if err := c.get(ctx, "/api/v1/quota", &out); err != nil {
		return nil, err
	}
	return &out, nil
}
