// Package deals turns raw Partners API listings into evaluated products:
// resolving drifting field names, validating prices, computing the discount,
// and flagging all-time lows against price history.
package deals

import (
	"cmp"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"math/bits"
	"slices"
	"strconv"
	"strings"

	"github.com/lsm5482-blip/my-coupang-bot/internal/coupang"
	"github.com/lsm5482-blip/my-coupang-bot/internal/metrics"
	domain "github.com/lsm5482-blip/my-coupang-bot/pkg/types"
)

// Item-level skip reasons. None of them abort a run.
var (
	ErrMissingProductID  = errors.New("missing product id")
	ErrPriceResolution   = errors.New("no usable price")
	ErrInconsistentPrice = errors.New("original price below sale price")
)

// Candidate keys per field, in lookup order.
var (
	idKeys            = []string{"productId", "productID", "id", "itemId"}
	nameKeys          = []string{"productName", "title", "name"}
	imageKeys         = []string{"productImage", "imageUrl", "image"}
	urlKeys           = []string{"productUrl", "link", "url"}
	originalPriceKeys = []string{"originalPrice", "basePrice", "listPrice"}
	salePriceKeys     = []string{"salePrice", "productPrice", "price"}
	categoryKeys      = []string{"categoryName", "category"}
	rocketKeys        = []string{"isRocket"}
)

// Observer records a sale price and reports whether it is an all-time low.
type Observer interface {
	Observe(productID string, price int64) bool
}

// ObserverFunc adapts a function to Observer.
type ObserverFunc func(productID string, price int64) bool

// Observe calls f.
func (f ObserverFunc) Observe(productID string, price int64) bool {
	return f(productID, price)
}

// Evaluator resolves and ranks listings.
type Evaluator struct {
	log *slog.Logger
}

// Option configures an Evaluator.
type Option func(*Evaluator)

// WithLogger sets the logger used for skip diagnostics.
func WithLogger(l *slog.Logger) Option {
	return func(e *Evaluator) {
		e.log = l
	}
}

// NewEvaluator creates an Evaluator.
func NewEvaluator(opts ...Option) *Evaluator {
	e := &Evaluator{log: slog.Default()}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Evaluate resolves every listing, drops the ones that fail validation, marks
// all-time lows through obs and returns the rest sorted by discount
// descending. Ties keep their input order. obs may be nil.
func (e *Evaluator) Evaluate(raw []coupang.RawListing, obs Observer) []domain.EvaluatedProduct {
	out := make([]domain.EvaluatedProduct, 0, len(raw))
	for i, listing := range raw {
		p, err := Resolve(listing)
		if err != nil {
			metrics.ProductsSkippedTotal.WithLabelValues(skipReason(err)).Inc()
			e.log.Debug("skipping listing",
				"index", i,
				"product_id", p.ProductID,
				"reason", err,
			)
			continue
		}

		if obs != nil {
			p.IsAllTimeLow = obs.Observe(p.ProductID, p.SalePrice)
		}
		if p.IsAllTimeLow {
			metrics.AllTimeLowsTotal.Inc()
		}
		metrics.ProductsEvaluatedTotal.Inc()
		out = append(out, p)
	}

	slices.SortStableFunc(out, func(a, b domain.EvaluatedProduct) int {
		return cmp.Compare(b.DiscountRate, a.DiscountRate)
	})
	return out
}

// Resolve maps one listing onto an EvaluatedProduct without consulting
// history. On error the returned product carries whatever id was found.
func Resolve(l coupang.RawListing) (domain.EvaluatedProduct, error) {
	p := domain.EvaluatedProduct{
		ProductID:    stringField(l, idKeys),
		Name:         stringField(l, nameKeys),
		ImageURL:     stringField(l, imageKeys),
		ProductURL:   stringField(l, urlKeys),
		CategoryName: stringField(l, categoryKeys),
		IsRocket:     boolField(l, rocketKeys),
	}
	if p.ProductID == "" {
		return p, ErrMissingProductID
	}

	original, _ := priceField(l, originalPriceKeys)
	sale, _ := priceField(l, salePriceKeys)
	switch {
	case sale <= 0 && original <= 0:
		return p, ErrPriceResolution
	case sale <= 0:
		return p, fmt.Errorf("%w: sale price missing", ErrPriceResolution)
	case original <= 0:
		original = sale
	}
	if original < sale {
		return p, fmt.Errorf("%w: %d < %d", ErrInconsistentPrice, original, sale)
	}

	p.OriginalPrice = original
	p.SalePrice = sale
	p.DiscountRate = DiscountRate(original, sale)
	return p, nil
}

// DiscountRate returns round(100*(original-sale)/original), or 0 when
// original is not positive or sale is not below it. A negative sale counts as
// free.
func DiscountRate(original, sale int64) int {
	if original <= 0 || sale >= original {
		return 0
	}
	sale = max(sale, 0)
	diff := uint64(original - sale)

	// Half-up rounding of (200*diff + original) / (2*original) in 128 bits.
	hi, lo := bits.Mul64(diff, 200)
	lo, carry := bits.Add64(lo, uint64(original), 0)
	q, _ := bits.Div64(hi+carry, lo, 2*uint64(original))
	return int(q)
}

// ParsePrice converts a JSON number or a numeric string such as "12,900원"
// into whole won. Fractions are rounded.
func ParsePrice(v any) (int64, bool) {
	switch n := v.(type) {
	case json.Number:
		if i, err := n.Int64(); err == nil {
			return i, true
		}
		f, err := n.Float64()
		if err != nil {
			return 0, false
		}
		return roundFloat(f)
	case float64:
		return roundFloat(n)
	case int:
		return int64(n), true
	case int64:
		return n, true
	case string:
		s := strings.TrimSpace(n)
		s = strings.TrimSuffix(s, "원")
		s = strings.ReplaceAll(s, ",", "")
		s = strings.TrimSpace(s)
		if s == "" {
			return 0, false
		}
		if i, err := strconv.ParseInt(s, 10, 64); err == nil {
			return i, true
		}
		f, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return 0, false
		}
		return roundFloat(f)
	default:
		return 0, false
	}
}

func roundFloat(f float64) (int64, bool) {
	if math.IsNaN(f) || math.IsInf(f, 0) || math.Abs(f) > math.MaxInt64/2 {
		return 0, false
	}
	return int64(math.Round(f)), true
}

// priceField returns the first candidate that parses as a price.
func priceField(l coupang.RawListing, keys []string) (int64, bool) {
	for _, k := range keys {
		v, ok := l[k]
		if !ok || v == nil {
			continue
		}
		if price, ok := ParsePrice(v); ok {
			return price, true
		}
	}
	return 0, false
}

// stringField returns the first present, non-empty candidate as a string.
func stringField(l coupang.RawListing, keys []string) string {
	for _, k := range keys {
		var s string
		switch v := l[k].(type) {
		case string:
			s = strings.TrimSpace(v)
		case json.Number:
			s = v.String()
		case float64:
			s = strconv.FormatFloat(v, 'f', -1, 64)
		case int:
			s = strconv.Itoa(v)
		case int64:
			s = strconv.FormatInt(v, 10)
		}
		if s != "" {
			return s
		}
	}
	return ""
}

func boolField(l coupang.RawListing, keys []string) bool {
	for _, k := range keys {
		switch v := l[k].(type) {
		case bool:
			return v
		case string:
			b, err := strconv.ParseBool(v)
			if err == nil {
				return b
			}
			return strings.EqualFold(v, "y")
		}
	}
	return false
}

func skipReason(err error) string {
	switch {
	case errors.Is(err, ErrMissingProductID):
		return "missing_id"
	case errors.Is(err, ErrInconsistentPrice):
		return "inconsistent_price"
	default:
		return "price_resolution"
	}
}
