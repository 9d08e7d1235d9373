package metrics

import (
	"strconv"
	"time"

	"github.com/labstack/echo"
	"github.com/prometheus/client_golang/prometheus"
)

var (
	httpRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "rga",
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request duration in seconds",
			Buckets:   []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		},
		[]string{"method", "path", "status"},
	)

	httpRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "rga",
			Name:      "http_requests_total",
			Help:      "Total number of HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	// EngineOperationDuration times every call the engine makes to the
	// search backend.
	EngineOperationDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "rga",
			Name:      "engine_operation_duration_seconds",
			Help:      "Knockout engine operation duration in seconds",
			Buckets:   []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30},
		},
		[]string{"operation"},
	)

	EngineErrorsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "rga",
			Name:      "engine_errors_total",
			Help:      "Total knockout engine errors",
		},
		[]string{"operation", "kind"}, // kind: "validation" / "backend"
	)

	RecordsIndexedTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "rga",
			Name:      "records_indexed_total",
			Help:      "Total flat knockout records indexed",
		},
	)

	CompoundTokensTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "rga",
			Name:      "compound_tokens_total",
			Help:      "Total compound filter tokens written",
		},
	)

	IngestionRequests = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Namespace: "rga",
			Name:      "ingestion_requests",
			Help:      "Ingestion requests currently tracked, by state",
		},
		[]string{"state"},
	)
)

func init() {
	prometheus.MustRegister(
		httpRequestDuration,
		httpRequestsTotal,
		EngineOperationDuration,
		EngineErrorsTotal,
		RecordsIndexedTotal,
		CompoundTokensTotal,
		IngestionRequests,
	)
}

// Middleware records HTTP request duration and count, labelled with the
// echo route pattern.
func Middleware() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			start := time.Now()

			err := next(c)
			if err != nil {
				c.Error(err)
			}

			status := strconv.Itoa(c.Response().Status)
			path := normalizePath(c.Path())
			method := c.Request().Method

			httpRequestDuration.WithLabelValues(method, path, status).Observe(time.Since(start).Seconds())
			httpRequestsTotal.WithLabelValues(method, path, status).Inc()
			return nil
		}
	}
}

// ObserveOperation times op and returns a func that stops the timer.
func ObserveOperation(op string) func() {
	start := time.Now()
	return func() {
		EngineOperationDuration.WithLabelValues(op).Observe(time.Since(start).Seconds())
	}
}

// normalizePath normalizes paths to prevent high cardinality in metrics labels.
func normalizePath(path string) string {
	if path == "" {
		return "unknown"
	}
	return path
}
