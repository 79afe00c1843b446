// Package engine runs the fetch pipeline: it sequences category fetches
// through the Partners API, evaluates listings against price history, and
// persists the history once per run.
package engine

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/lsm5482-blip/my-coupang-bot/internal/coupang"
	"github.com/lsm5482-blip/my-coupang-bot/internal/deals"
	"github.com/lsm5482-blip/my-coupang-bot/internal/history"
	"github.com/lsm5482-blip/my-coupang-bot/internal/metrics"
	"github.com/lsm5482-blip/my-coupang-bot/internal/notify"
	domain "github.com/lsm5482-blip/my-coupang-bot/pkg/types"
)

const defaultCategoryLimit = 20

// ErrHistoryNotPersisted is recorded when a run skips persisting because the
// stored history could not be loaded and writing would overwrite it.
var ErrHistoryNotPersisted = errors.New("price history not persisted: stored history could not be loaded")

// FeaturedCategory labels the goldbox list in run results.
var FeaturedCategory = domain.Category{ID: "goldbox", Label: "골드박스", Slug: "goldbox"}

// Engine orchestrates fetching, evaluation, history and alerting.
type Engine struct {
	source     coupang.ProductSource
	store      history.Store
	categories []domain.Category
	evaluator  *deals.Evaluator
	notifier   notify.Notifier
	log        *slog.Logger

	pacer         Pacer
	featured      bool
	categoryLimit int
	minDiscount   int
	textfile      string

	mu      sync.Mutex
	last    *domain.RunResult
	lastErr error
}

// NewEngine creates a new Engine. categories are fetched in the given order.
func NewEngine(
	src coupang.ProductSource,
	s history.Store,
	categories []domain.Category,
	opts ...EngineOption,
) *Engine {
	eng := &Engine{
		source:        src,
		store:         s,
		categories:    categories,
		log:           slog.Default(),
		pacer:         FixedDelay{Delay: DefaultCallDelay},
		featured:      true,
		categoryLimit: defaultCategoryLimit,
	}
	for _, opt := range opts {
		opt(eng)
	}
	if eng.evaluator == nil {
		eng.evaluator = deals.NewEvaluator(deals.WithLogger(eng.log))
	}
	if eng.notifier == nil {
		eng.notifier = notify.NewNoOpNotifier(eng.log)
	}
	return eng
}

// EngineOption configures the Engine.
type EngineOption func(*Engine)

// WithLogger sets a custom logger.
func WithLogger(l *slog.Logger) EngineOption {
	return func(e *Engine) {
		e.log = l
	}
}

// WithPacer sets the inter-call pacing policy.
func WithPacer(p Pacer) EngineOption {
	return func(e *Engine) {
		e.pacer = p
	}
}

// WithFeatured enables or disables the goldbox fetch at the start of a run.
func WithFeatured(enabled bool) EngineOption {
	return func(e *Engine) {
		e.featured = enabled
	}
}

// WithCategoryLimit sets how many listings to request per category.
func WithCategoryLimit(n int) EngineOption {
	return func(e *Engine) {
		e.categoryLimit = n
	}
}

// WithNotifier sends all-time lows with at least minDiscount percent off
// through n after each run.
func WithNotifier(n notify.Notifier, minDiscount int) EngineOption {
	return func(e *Engine) {
		e.notifier = n
		e.minDiscount = minDiscount
	}
}

// WithEvaluator overrides the default evaluator.
func WithEvaluator(ev *deals.Evaluator) EngineOption {
	return func(e *Engine) {
		e.evaluator = ev
	}
}

// WithMetricsTextfile writes the metrics registry to path after every run.
func WithMetricsTextfile(path string) EngineOption {
	return func(e *Engine) {
		e.textfile = path
	}
}

// RunOnce executes one full run. Category failures are recorded in the result
// and never abort the run; only a configuration error does, in which case the
// history is not persisted. If ctx is canceled the remaining categories are
// skipped, the history is still persisted, and ctx's error is returned with
// the result. When the stored history cannot be loaded the run continues with
// an empty history but does not persist it, unless the store reported the
// history corrupt and moved it aside.
func (eng *Engine) RunOnce(ctx context.Context) (*domain.RunResult, error) {
	start := time.Now()
	res := &domain.RunResult{
		RunID:      uuid.NewString(),
		StartedAt:  start,
		Categories: make([]domain.CategoryResult, 0, len(eng.categories)),
	}
	log := eng.log.With("run_id", res.RunID)
	log.Info("run starting", "categories", len(eng.categories), "featured", eng.featured)

	records, err := eng.store.Load(ctx)
	persist := true
	if err != nil {
		metrics.HistoryErrorsTotal.WithLabelValues("load").Inc()
		res.HistoryLoadError = err.Error()
		log.Warn("loading price history failed, starting empty", "error", err)
		records = nil
		persist = eng.quarantine(ctx, log, err)
	}
	h := history.New(records)

	call := 0
	if eng.featured {
		cr, err := eng.fetchCategory(ctx, log, call, FeaturedCategory, h, eng.source.Goldbox)
		if coupang.IsFatal(err) {
			return eng.finish(log, res, start, "fatal", err)
		}
		res.Featured = &cr
		call++
	}

	for _, cat := range eng.categories {
		fetch := func(ctx context.Context) ([]coupang.RawListing, error) {
			return eng.source.BestCategory(ctx, cat.ID, eng.categoryLimit)
		}
		cr, err := eng.fetchCategory(ctx, log, call, cat, h, fetch)
		if coupang.IsFatal(err) {
			return eng.finish(log, res, start, "fatal", err)
		}
		res.Categories = append(res.Categories, cr)
		call++
	}

	// Persist even when canceled so fetched observations are not lost.
	persistCtx := context.WithoutCancel(ctx)
	if !persist {
		metrics.HistoryErrorsTotal.WithLabelValues("persist").Inc()
		res.HistoryPersistError = ErrHistoryNotPersisted.Error()
		log.Warn("price history not persisted", "error", ErrHistoryNotPersisted)
	} else if err := eng.store.Persist(persistCtx, h.Records()); err != nil {
		metrics.HistoryErrorsTotal.WithLabelValues("persist").Inc()
		res.HistoryPersistError = err.Error()
		log.Warn("persisting price history failed", "error", err)
	} else {
		metrics.HistoryProducts.Set(float64(h.Len()))
		log.Info("price history persisted", "observed", h.Observed(), "products", h.Len())
	}

	res.AllTimeLows = len(res.AllTimeLowProducts())

	// A run that could not load history flags every product; it sends no alerts.
	switch {
	case res.HistoryLoadError != "":
		log.Warn("alerts suppressed, price history unavailable")
	case ctx.Err() == nil:
		alerts := collectAlerts(res, h, eng.minDiscount)
		if sent := ProcessAlerts(ctx, eng.notifier, alerts, log); sent > 0 {
			log.Info("alerts sent", "count", sent)
		}
	}

	outcome := "success"
	switch {
	case ctx.Err() != nil:
		outcome = "canceled"
	case len(res.Skipped()) > 0 || (res.Featured != nil && res.Featured.State == domain.StateSkipped):
		outcome = "partial"
	}
	return eng.finish(log, res, start, outcome, ctx.Err())
}

// quarantine decides whether this run may persist after a failed load. Only
// stored history that was decoded as corrupt and then moved aside is safe to
// replace; any other failure leaves the stored history untouched.
func (eng *Engine) quarantine(ctx context.Context, log *slog.Logger, loadErr error) bool {
	if !errors.Is(loadErr, history.ErrCorrupt) {
		return false
	}
	q, ok := eng.store.(history.Quarantiner)
	if !ok {
		return false
	}
	if _, err := q.Quarantine(ctx); err != nil {
		log.Error("moving corrupt price history aside failed", "error", err)
		return false
	}
	return true
}

func (eng *Engine) finish(
	log *slog.Logger,
	res *domain.RunResult,
	start time.Time,
	outcome string,
	err error,
) (*domain.RunResult, error) {
	res.Duration = time.Since(start)
	metrics.RunDuration.Observe(res.Duration.Seconds())
	metrics.RunsTotal.WithLabelValues(outcome).Inc()
	metrics.LastRunTimestamp.SetToCurrentTime()

	if eng.textfile != "" {
		if werr := metrics.WriteTextfile(eng.textfile); werr != nil {
			log.Warn("exporting metrics failed", "path", eng.textfile, "error", werr)
		}
	}

	if err != nil && outcome == "fatal" {
		log.Error("run aborted", "error", err, "duration", res.Duration)
		res = nil
	} else {
		log.Info("run complete",
			"outcome", outcome,
			"products", res.TotalProducts(),
			"skipped", len(res.Skipped()),
			"all_time_lows", res.AllTimeLows,
			"duration", res.Duration,
		)
	}

	eng.mu.Lock()
	if res != nil {
		eng.last = res
	}
	eng.lastErr = err
	eng.mu.Unlock()

	if err != nil {
		return res, fmt.Errorf("running fetch: %w", err)
	}
	return res, nil
}

// fetchCategory moves one category through pending, fetching and a terminal
// state. The returned error is the classified fetch failure, already
// reflected in the result.
func (eng *Engine) fetchCategory(
	ctx context.Context,
	log *slog.Logger,
	call int,
	cat domain.Category,
	obs deals.Observer,
	fetch func(context.Context) ([]coupang.RawListing, error),
) (domain.CategoryResult, error) {
	cr := domain.CategoryResult{
		Category: cat,
		State:    domain.StatePending,
		Products: []domain.EvaluatedProduct{},
	}

	if err := eng.pacer.Wait(ctx, call); err != nil {
		return eng.skip(log, cr, fmt.Errorf("waiting to fetch: %w", err)), err
	}

	cr.State = domain.StateFetching
	raw, err := fetch(ctx)
	if err != nil {
		return eng.skip(log, cr, err), err
	}

	cr.Products = eng.evaluator.Evaluate(raw, obs)
	cr.Count = len(cr.Products)
	cr.State = domain.StateEvaluated
	metrics.CategoriesTotal.WithLabelValues(string(domain.StateEvaluated)).Inc()

	log.Info("category evaluated",
		"category_id", cat.ID,
		"category", cat.Label,
		"listings", len(raw),
		"products", cr.Count,
	)
	return cr, nil
}

func (eng *Engine) skip(log *slog.Logger, cr domain.CategoryResult, err error) domain.CategoryResult {
	cr.State = domain.StateSkipped
	cr.Error = err.Error()
	cr.Attempts = coupang.AttemptsOf(err)
	metrics.CategoriesTotal.WithLabelValues(string(domain.StateSkipped)).Inc()

	level := slog.LevelError
	if errors.Is(err, context.Canceled) || errors.Is(err, coupang.ErrDailyLimitReached) {
		level = slog.LevelWarn
	}
	log.Log(context.Background(), level, "category skipped",
		"category_id", cr.Category.ID,
		"category", cr.Category.Label,
		"attempts", cr.Attempts,
		"kind", coupang.KindOf(err),
		"error", err,
	)
	return cr
}

// LastRun returns the most recent run result and its error. The result is nil
// until a run has completed.
func (eng *Engine) LastRun() (*domain.RunResult, error) {
	eng.mu.Lock()
	defer eng.mu.Unlock()
	return eng.last, eng.lastErr
}

// Categories returns the configured categories in fetch order.
func (eng *Engine) Categories() []domain.Category {
	return eng.categories
}
