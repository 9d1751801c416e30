package middleware

import (
	"strconv"
	"time"

	"github.com/anonto42/nano-comments/backend/internal/metrics"
	"github.com/labstack/echo/v4"
)

// Metrics returns an echo middleware that records Prometheus metrics for HTTP requests.
// The websocket endpoint is skipped; its lifetime is tracked by the gateway gauges.
func Metrics() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if c.Path() == "/ws" {
				return next(c)
			}

			start := time.Now()
			err := next(c)
			if err != nil {
				// let echo write the error response so the status below is the real one
				c.Error(err)
			}

			path := c.Path()
			if path == "" {
				path = "unmatched"
			}
			status := strconv.Itoa(c.Response().Status)

			metrics.HTTPRequestsTotal.WithLabelValues(c.Request().Method, path, status).Inc()
			metrics.HTTPRequestDuration.WithLabelValues(c.Request().Method, path).Observe(time.Since(start).Seconds())
			return nil
		}
	}
}
