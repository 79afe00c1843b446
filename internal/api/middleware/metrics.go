// Package middleware provides Echo middleware for the coupang-deals server.
package middleware

import (
	"strconv"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/lsm5482-blip/my-coupang-bot/internal/metrics"
)

// probeGauges maps probe paths to their up/down gauge. Probes and scrapes are
// kept out of the request histogram.
var probeGauges = map[string]prometheus.Gauge{
	"/healthz": metrics.HealthzUp,
	"/readyz":  metrics.ReadyzUp,
}

const metricsPath = "/metrics"

// Metrics returns Echo middleware that records request duration and status
// by route template. Unmatched routes are recorded under their raw path.
func Metrics() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			path := c.Path()
			if path == "" {
				path = c.Request().URL.Path
			}

			if path == metricsPath {
				return next(c)
			}
			if gauge, ok := probeGauges[path]; ok {
				err := next(c)
				gauge.Set(boolGauge(success(c.Response().Status)))
				return err
			}

			start := time.Now()
			err := next(c)

			status := strconv.Itoa(c.Response().Status)
			method := c.Request().Method
			metrics.HTTPRequestDuration.
				WithLabelValues(method, path, status).
				Observe(time.Since(start).Seconds())
			metrics.HTTPRequestsTotal.
				WithLabelValues(method, path, status).
				Inc()

			return err
		}
	}
}

func success(status int) bool {
	return status >= 200 && status < 300
}

func boolGauge(ok bool) float64 {
	if ok {
		return 1
	}
	return 0
}
