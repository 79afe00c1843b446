package cmd

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/lsm5482-blip/my-coupang-bot/internal/api/handlers"
	"github.com/lsm5482-blip/my-coupang-bot/internal/config"
	"github.com/lsm5482-blip/my-coupang-bot/internal/coupang"
	"github.com/lsm5482-blip/my-coupang-bot/internal/engine"
	"github.com/lsm5482-blip/my-coupang-bot/internal/history"
	"github.com/lsm5482-blip/my-coupang-bot/internal/notify"
)

// app holds the wired components shared by run and serve.
type app struct {
	engine  *engine.Engine
	store   history.Store
	limiter *coupang.RateLimiter
	pinger  handlers.Pinger
	close   func()
}

func newSigner(cfg *config.Config) (*coupang.Signer, error) {
	enc := coupang.DigestHex
	if cfg.Coupang.DigestEncoding == "base64" {
		enc = coupang.DigestBase64
	}
	return coupang.NewSigner(cfg.Coupang.Credentials(), coupang.WithDigestEncoding(enc))
}

func newStore(ctx context.Context, cfg *config.Config, log *slog.Logger) (history.Store, func(), error) {
	switch cfg.History.Backend {
	case "postgres":
		pg, err := history.NewPostgresStore(ctx, cfg.Database.DSN())
		if err != nil {
			return nil, nil, fmt.Errorf("connecting to database: %w", err)
		}
		if err := pg.Migrate(ctx); err != nil {
			pg.Close()
			return nil, nil, fmt.Errorf("running migrations: %w", err)
		}
		log.Info("price history backend", "backend", "postgres", "host", cfg.Database.Host)
		return pg, pg.Close, nil
	default:
		log.Info("price history backend", "backend", "file", "path", cfg.History.Path)
		return history.NewFileStore(cfg.History.Path, history.WithFileLogger(log)), func() {}, nil
	}
}

func newPacer(p config.PacingConfig) engine.Pacer {
	switch p.Mode {
	case "token_bucket":
		return engine.NewTokenBucket(p.PerSecond, p.Burst)
	case "none":
		return engine.NoDelay{}
	default:
		return engine.FixedDelay{Delay: p.Delay}
	}
}

func newNotifier(cfg *config.Config, log *slog.Logger) notify.Notifier {
	if cfg.Notifications.Discord.Enabled {
		return notify.NewDiscordNotifier(cfg.Notifications.Discord.WebhookURL)
	}
	return notify.NewNoOpNotifier(log)
}

// newProductsAPI wires the signer, rate limiter and retrying client from cfg.
// Missing credentials surface as coupang.ErrConfiguration before any call.
func newProductsAPI(cfg *config.Config, log *slog.Logger) (*coupang.ProductsAPI, *coupang.RateLimiter, error) {
	signer, err := newSigner(cfg)
	if err != nil {
		return nil, nil, fmt.Errorf("creating signer: %w", err)
	}

	limiter := coupang.NewRateLimiter(
		cfg.Coupang.RateLimit.PerSecond,
		cfg.Coupang.RateLimit.Burst,
		cfg.Coupang.RateLimit.DailyLimit,
	)
	client := coupang.NewHTTPClient(signer,
		coupang.WithBaseURL(cfg.Coupang.BaseURL),
		coupang.WithTimeout(cfg.Coupang.Timeout),
		coupang.WithRetryPolicy(cfg.Coupang.Retry.Policy()),
		coupang.WithRateLimiter(limiter),
		coupang.WithClientLogger(log),
	)
	return coupang.NewProductsAPI(client, cfg.Coupang.SubID), limiter, nil
}

// buildApp wires the Partners API, history store and engine from cfg.
func buildApp(ctx context.Context, cfg *config.Config, log *slog.Logger) (*app, error) {
	api, limiter, err := newProductsAPI(cfg, log)
	if err != nil {
		return nil, err
	}

	store, closeStore, err := newStore(ctx, cfg, log)
	if err != nil {
		return nil, err
	}

	eng := engine.NewEngine(api, store, cfg.Categories,
		engine.WithLogger(log),
		engine.WithPacer(newPacer(cfg.Fetch.Pacing)),
		engine.WithFeatured(!cfg.Fetch.DisableFeatured),
		engine.WithCategoryLimit(cfg.Fetch.CategoryLimit),
		engine.WithNotifier(newNotifier(cfg, log), cfg.Notifications.MinDiscount),
		engine.WithMetricsTextfile(cfg.Metrics.TextfilePath),
	)

	a := &app{engine: eng, store: store, limiter: limiter, close: closeStore}
	if pg, ok := store.(*history.PostgresStore); ok {
		a.pinger = pg
	}
	return a, nil
}
