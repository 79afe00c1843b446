// Package domain defines the core business types for the Coupang deal tracker.
package domain

import (
	"slices"
	"time"
)

// Category is a catalog category supplied by configuration. The ID is opaque
// to the tracker and passed through to the API unchanged.
type Category struct {
	ID    string `json:"id"    yaml:"id"    validate:"required"`
	Label string `json:"label" yaml:"label" validate:"required"`
	Slug  string `json:"slug"  yaml:"slug"  validate:"required,lowercase"`
}

// EvaluatedProduct is a listing that passed price resolution, annotated with
// its discount and all-time-low status.
type EvaluatedProduct struct {
	ProductID     string `json:"product_id"`
	Name          string `json:"name"`
	ImageURL      string `json:"image_url,omitempty"`
	ProductURL    string `json:"product_url,omitempty"`
	OriginalPrice int64  `json:"original_price"`
	SalePrice     int64  `json:"sale_price"`
	DiscountRate  int    `json:"discount_rate"`
	IsAllTimeLow  bool   `json:"is_all_time_low"`

	// Informational, only set when the API supplies them.
	CategoryName string `json:"category_name,omitempty"`
	IsRocket     bool   `json:"is_rocket,omitempty"`
}

// PriceRecord is the observed sale-price history for one product, oldest first.
type PriceRecord struct {
	Prices []int64 `json:"prices"`
}

// Min returns the lowest recorded price and false when the record is empty.
func (r *PriceRecord) Min() (int64, bool) {
	if r == nil || len(r.Prices) == 0 {
		return 0, false
	}
	return slices.Min(r.Prices), true
}

// FetchState tracks a category through a single run.
type FetchState string

// Fetch state constants. Evaluated and Skipped are terminal.
const (
	StatePending   FetchState = "pending"
	StateFetching  FetchState = "fetching"
	StateEvaluated FetchState = "evaluated"
	StateSkipped   FetchState = "skipped"
)

// CategoryResult is the outcome of fetching and evaluating one category.
type CategoryResult struct {
	Category Category           `json:"category"`
	State    FetchState         `json:"state"`
	Products []EvaluatedProduct `json:"products"`
	Count    int                `json:"count"`
	Attempts int                `json:"attempts,omitempty"`
	Error    string             `json:"error,omitempty"`
}

// RunResult is everything a single run produced, in the order the categories
// were supplied.
type RunResult struct {
	RunID       string           `json:"run_id"`
	StartedAt   time.Time        `json:"started_at"`
	Duration    time.Duration    `json:"duration"`
	Featured    *CategoryResult  `json:"featured,omitempty"`
	Categories  []CategoryResult `json:"categories"`
	AllTimeLows int              `json:"all_time_lows"`

	HistoryLoadError    string `json:"history_load_error,omitempty"`
	HistoryPersistError string `json:"history_persist_error,omitempty"`
}

// TotalProducts returns the number of evaluated products across the featured
// list and every category.
func (r *RunResult) TotalProducts() int {
	n := 0
	if r.Featured != nil {
		n += len(r.Featured.Products)
	}
	for i := range r.Categories {
		n += len(r.Categories[i].Products)
	}
	return n
}

// Skipped returns the categories that ended in StateSkipped.
func (r *RunResult) Skipped() []CategoryResult {
	var out []CategoryResult
	for i := range r.Categories {
		if r.Categories[i].State == StateSkipped {
			out = append(out, r.Categories[i])
		}
	}
	return out
}

// AllTimeLowProducts returns every product flagged as an all-time low, featured
// list first, then categories in order.
func (r *RunResult) AllTimeLowProducts() []EvaluatedProduct {
	var out []EvaluatedProduct
	collect := func(cr *CategoryResult) {
		for _, p := range cr.Products {
			if p.IsAllTimeLow {
				out = append(out, p)
			}
		}
	}
	if r.Featured != nil {
		collect(r.Featured)
	}
	for i := range r.Categories {
		collect(&r.Categories[i])
	}
	return out
}
