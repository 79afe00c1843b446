package cmd

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/danielgtaylor/huma/v2"
	"github.com/danielgtaylor/huma/v2/adapters/humaecho"
	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/lsm5482-blip/my-coupang-bot/internal/api/handlers"
	"github.com/lsm5482-blip/my-coupang-bot/internal/api/middleware"
	"github.com/lsm5482-blip/my-coupang-bot/internal/engine"
)

func serveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the fetch on a schedule and serve health and metrics",
		RunE:  runServe,
	}
}

func runServe(cmd *cobra.Command, _ []string) error {
	cfg, log, err := loadConfig()
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	a, err := buildApp(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer a.close()

	sched, err := engine.NewScheduler(a.engine, cfg.Schedule.Interval, log,
		engine.WithRunTimeout(cfg.Fetch.RunTimeout),
	)
	if err != nil {
		return fmt.Errorf("creating scheduler: %w", err)
	}

	e := newServer(a, sched, log)
	e.Server.ReadTimeout = cfg.Server.ReadTimeout
	e.Server.WriteTimeout = cfg.Server.WriteTimeout
	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		log.Info("starting server", "addr", addr)
		if err := e.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("serving http: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		sched.Start()
		if !cfg.Schedule.SkipInitialRun {
			go sched.RunNow()
		}
		<-gctx.Done()

		log.Info("shutting down")
		waitForJobs(sched.Stop(), log)

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := e.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("shutting down server: %w", err)
		}
		return nil
	})

	if err := g.Wait(); err != nil {
		return err
	}
	log.Info("server stopped")
	return nil
}

func waitForJobs(done context.Context, log *slog.Logger) {
	select {
	case <-done.Done():
	case <-time.After(30 * time.Second):
		log.Warn("timed out waiting for scheduled run to stop")
	}
}

// newServer builds the Echo server: probes and metrics on the root router,
// the /api/v1 operations through Huma.
func newServer(a *app, sched *engine.Scheduler, log *slog.Logger) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	e.Use(middleware.Recovery(log))
	e.Use(middleware.RequestLog(log))
	e.Use(middleware.Metrics())

	health := handlers.NewHealthHandler(a.engine, sched, a.pinger)
	e.GET("/healthz", health.Healthz)
	e.GET("/readyz", health.Readyz)
	e.GET("/metrics", echo.WrapHandler(promhttp.Handler()))

	api := humaecho.New(e, huma.DefaultConfig("coupang-deals API", Version))
	handlers.RegisterRunRoutes(api, handlers.NewRunsHandler(a.engine, sched))
	handlers.RegisterHistoryRoutes(api, handlers.NewHistoryHandler(a.store))
	var quota handlers.QuotaReporter
	if a.limiter != nil {
		quota = a.limiter
	}
	handlers.RegisterQuotaRoutes(api, handlers.NewQuotaHandler(quota))

	return e
}
