package middleware

import (
	"strconv"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	httpRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "coinlake_http_requests_total",
			Help: "Total HTTP requests by path, method, and status",
		},
		[]string{"path", "method", "status"},
	)
	httpRequestSeconds = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "coinlake_http_request_duration_seconds",
			Help:    "HTTP request latency",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"path", "method"},
	)
)

// Metrics records request counters and latency per route.
func Metrics() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			start := time.Now()
			err := next(c)

			path := c.Path()
			if path == "" {
				path = c.Request().URL.Path
			}
			method := c.Request().Method
			status := strconv.Itoa(c.Response().Status)

			httpRequestsTotal.WithLabelValues(path, method, status).Inc()
			httpRequestSeconds.WithLabelValues(path, method).Observe(time.Since(start).Seconds())

			return err
		}
	}
}
