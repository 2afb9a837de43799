package prometheus

import (
	"net/http"
	"strconv"
	"time"

	"github.com/Legendary90/erp-zen-fix-47-sub001/pkg/config"
	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// HTTP request metrics
	HttpRequestsTotal   prometheus.CounterVec
	HttpRequestDuration prometheus.HistogramVec

	// Authentication metrics
	LoginCounter     prometheus.CounterVec
	RegisterCounter  prometheus.Counter
	LogoutCounter    prometheus.Counter
	AuthErrorCounter prometheus.CounterVec

	// Session metrics
	ActiveSessionsGauge prometheus.GaugeVec

	// Guard metrics
	GuardRejectionsCounter prometheus.CounterVec

	// Store operation metrics
	StoreOperationDuration prometheus.HistogramVec
)

// InitMetrics initializes Prometheus metrics with configuration
func InitMetrics(config *config.Config) {
	// Use metric prefix from configuration
	prefix := config.Metrics.Prefix

	HttpRequestsTotal = *promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: prefix + "_http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	HttpRequestDuration = *promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    prefix + "_http_request_duration_seconds",
			Help:    "Duration of HTTP requests in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path", "status"},
	)

	LoginCounter = *promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: prefix + "_login_total",
			Help: "Total number of login attempts",
		},
		[]string{"kind", "result"},
	)

	RegisterCounter = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: prefix + "_register_total",
			Help: "Total number of client registrations",
		},
	)

	LogoutCounter = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: prefix + "_logout_total",
			Help: "Total number of logouts",
		},
	)

	AuthErrorCounter = *promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: prefix + "_auth_errors_total",
			Help: "Total number of authentication errors",
		},
		[]string{"type"}, // "login_failure", "register_failure", "duplicate_company", etc.
	)

	ActiveSessionsGauge = *promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: prefix + "_active_sessions",
			Help: "Live sessions by kind",
		},
		[]string{"kind"},
	)

	GuardRejectionsCounter = *promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: prefix + "_guard_rejections_total",
			Help: "Requests turned away by the session guard",
		},
		[]string{"reason"}, // "loading", "no_client", "no_admin"
	)

	StoreOperationDuration = *promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    prefix + "_store_operation_duration_seconds",
			Help:    "Duration of row-store operations in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"operation"},
	)
}

// GetPrometheusHandler returns an HTTP handler for the Prometheus metrics
func GetPrometheusHandler() http.Handler {
	return promhttp.Handler()
}

// MetricsMiddleware creates a middleware function that captures metrics for each request
func MetricsMiddleware() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			start := time.Now()

			err := next(c)

			duration := time.Since(start).Seconds()
			method := c.Request().Method
			path := c.Path()
			status := strconv.Itoa(c.Response().Status)

			HttpRequestsTotal.WithLabelValues(method, path, status).Inc()
			HttpRequestDuration.WithLabelValues(method, path, status).Observe(duration)

			return err
		}
	}
}

// TrackStoreOperation returns a function that records the duration of a row-store operation
func TrackStoreOperation(operation string) func(startTime time.Time) {
	return func(startTime time.Time) {
		duration := time.Since(startTime).Seconds()
		StoreOperationDuration.WithLabelValues(operation).Observe(duration)
	}
}

// RecordLogin records a login attempt outcome by session kind
func RecordLogin(kind string, success bool) {
	result := "failure"
	if success {
		result = "success"
	}
	LoginCounter.WithLabelValues(kind, result).Inc()
}

// RecordAuthError records an authentication error by type
func RecordAuthError(errorType string) {
	AuthErrorCounter.WithLabelValues(errorType).Inc()
}

// RecordGuardRejection records a request turned away by the guard
func RecordGuardRejection(reason string) {
	GuardRejectionsCounter.WithLabelValues(reason).Inc()
}

// SetActiveSession sets the active-session gauge for a kind (0 or 1)
func SetActiveSession(kind string, active bool) {
	value := 0.0
	if active {
		value = 1.0
	}
	ActiveSessionsGauge.WithLabelValues(kind).Set(value)
}
