// Package history records observed sale prices per product and answers
// whether a price is an all-time low. History lives in memory for the
// duration of a run and is loaded from and persisted to a Store.
package history

import (
	"context"
	"errors"

	domain "github.com/lsm5482-blip/my-coupang-bot/pkg/types"
)

// ErrPersistence marks a history load or persist failure. Runs treat it as a
// warning.
var ErrPersistence = errors.New("price history persistence failed")

// ErrCorrupt marks stored history that was read but could not be decoded.
var ErrCorrupt = errors.New("price history is corrupt")

// Store loads and persists the full price history map.
type Store interface {
	Load(ctx context.Context) (map[string]*domain.PriceRecord, error)
	Persist(ctx context.Context, records map[string]*domain.PriceRecord) error
}

// Quarantiner is implemented by stores that can move unreadable history out
// of the way so that a fresh history can be persisted without destroying it.
type Quarantiner interface {
	Quarantine(ctx context.Context) (string, error)
}

// History is the in-memory price history for one run. It is not safe for
// concurrent use.
type History struct {
	records map[string]*domain.PriceRecord
	seen    map[string]sighting
}

// sighting is what a run knows about a product after its first observation.
type sighting struct {
	prior    int64 // minimum before this run
	hasPrior bool
	low      int64 // minimum including this run's recorded price
}

// New wraps previously loaded records. A nil map starts an empty history.
func New(records map[string]*domain.PriceRecord) *History {
	if records == nil {
		records = make(map[string]*domain.PriceRecord)
	}
	return &History{
		records: records,
		seen:    make(map[string]sighting),
	}
}

// Observe records price for productID and reports whether it is less than or
// equal to every previously recorded price. A product with no history is
// always an all-time low. A product is appended to at most once per History;
// later sightings in the same run are compared against the recorded prices,
// including the one recorded earlier in this run, and are not recorded.
func (h *History) Observe(productID string, price int64) bool {
	if s, ok := h.seen[productID]; ok {
		return price <= s.low
	}

	rec, ok := h.records[productID]
	if !ok || rec == nil {
		rec = &domain.PriceRecord{}
		h.records[productID] = rec
	}

	prior, hasPrior := rec.Min()
	s := sighting{prior: prior, hasPrior: hasPrior, low: price}
	if hasPrior {
		s.low = min(prior, price)
	}
	h.seen[productID] = s
	rec.Prices = append(rec.Prices, price)

	return !hasPrior || price <= prior
}

// Records returns the backing map, including this run's observations.
func (h *History) Records() map[string]*domain.PriceRecord {
	return h.records
}

// PriorLow returns the lowest price recorded for productID before this run.
// It reports false for products without earlier history or not yet observed.
func (h *History) PriorLow(productID string) (int64, bool) {
	s, ok := h.seen[productID]
	return s.prior, ok && s.hasPrior
}

// Len returns the number of products with history.
func (h *History) Len() int {
	return len(h.records)
}

// Observed returns how many distinct products were observed in this run.
func (h *History) Observed() int {
	return len(h.seen)
}
