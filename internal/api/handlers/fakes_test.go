package handlers_test

import (
	"context"
	"sync/atomic"
	"time"

	domain "github.com/lsm5482-blip/my-coupang-bot/pkg/types"
)

// fakeEngine implements RunSource.
type fakeEngine struct {
	last       *domain.RunResult
	err        error
	categories []domain.Category
}

func (f *fakeEngine) LastRun() (*domain.RunResult, error) { return f.last, f.err }

func (f *fakeEngine) Categories() []domain.Category { return f.categories }

// fakeTrigger implements Trigger.
type fakeTrigger struct {
	running bool
	calls   atomic.Int32
}

func (f *fakeTrigger) Running() bool { return f.running }

func (f *fakeTrigger) RunNow() { f.calls.Add(1) }

// pingFunc adapts a function to Pinger.
type pingFunc func(ctx context.Context) error

func (f pingFunc) Ping(ctx context.Context) error { return f(ctx) }

func sampleRun() *domain.RunResult {
	return &domain.RunResult{
		RunID:     "run-1",
		StartedAt: time.Date(2024, 6, 10, 6, 13, 20, 0, time.UTC),
		Duration:  1500 * time.Millisecond,
		Categories: []domain.CategoryResult{
			{
				Category: domain.Category{ID: "1001", Label: "여성패션", Slug: "womens-fashion"},
				State:    domain.StateEvaluated,
				Products: []domain.EvaluatedProduct{
					{ProductID: "7001", SalePrice: 39000, IsAllTimeLow: true},
					{ProductID: "7002", SalePrice: 12000},
				},
				Count: 2,
			},
			{
				Category: domain.Category{ID: "1002", Label: "남성패션", Slug: "mens-fashion"},
				State:    domain.StateSkipped,
				Error:    "transient",
			},
		},
		AllTimeLows: 1,
	}
}
