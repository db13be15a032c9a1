package main

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Prometheus metric definitions for the assessment API.

var (
	httpRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "tre",
			Subsystem: "api",
			Name:      "http_requests_total",
			Help:      "Total number of HTTP requests",
		},
		[]string{"method", "handler", "status"},
	)

	httpRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "tre",
			Subsystem: "api",
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request duration in seconds",
			Buckets:   prometheus.ExponentialBuckets(0.001, 2, 15),
		},
		[]string{"method", "handler"},
	)

	assessmentsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "tre",
			Subsystem: "risk",
			Name:      "assessments_total",
			Help:      "Total number of risk assessments by decision",
		},
		[]string{"decision"},
	)

	assessmentScores = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: "tre",
			Subsystem: "risk",
			Name:      "assessment_score",
			Help:      "Distribution of aggregate risk scores",
			Buckets:   prometheus.LinearBuckets(0, 10, 11),
		},
	)

	listOverridesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "tre",
			Subsystem: "risk",
			Name:      "list_overrides_total",
			Help:      "Assessments overridden by a payee list",
		},
		[]string{"list"},
	)

	dbConnectionPoolSize = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Namespace: "pgxpool",
			Name:      "connections",
			Help:      "Current number of connections in the pool",
		},
		[]string{"state"},
	)
)

// MetricsHandler returns the Prometheus metrics handler.
func MetricsHandler() http.Handler {
	return promhttp.Handler()
}

// InstrumentHTTPHandler wraps an HTTP handler with request metrics.
func InstrumentHTTPHandler(handlerName string, handler http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		wrapped := &responseWriter{ResponseWriter: w, statusCode: http.StatusOK}
		handler(wrapped, r)

		duration := time.Since(start).Seconds()
		status := statusCodeClass(wrapped.statusCode)

		httpRequestsTotal.WithLabelValues(r.Method, handlerName, status).Inc()
		httpRequestDuration.WithLabelValues(r.Method, handlerName).Observe(duration)
	}
}

type responseWriter struct {
	http.ResponseWriter
	statusCode int
}

func (rw *responseWriter) WriteHeader(code int) {
	rw.statusCode = code
	rw.ResponseWriter.WriteHeader(code)
}

func statusCodeClass(code int) string {
	switch {
	case code >= 200 && code < 300:
		return "2xx"
	case code >= 300 && code < 400:
		return "3xx"
	case code >= 400 && code < 500:
		return "4xx"
	case code >= 500:
		return "5xx"
	default:
		return "unknown"
	}
}

// RecordAssessment records decision and score for one assessment.
func RecordAssessment(decision string, score int) {
	assessmentsTotal.WithLabelValues(decision).Inc()
	assessmentScores.Observe(float64(score))
}

// RecordListOverride records a blacklist or whitelist override.
func RecordListOverride(list string) {
	listOverridesTotal.WithLabelValues(list).Inc()
}

// UpdateDBConnectionPoolMetrics updates database connection pool gauges.
func UpdateDBConnectionPoolMetrics(active, idle, total int) {
	dbConnectionPoolSize.WithLabelValues("active").Set(float64(active))
	dbConnectionPoolSize.WithLabelValues("idle").Set(float64(idle))
	dbConnectionPoolSize.WithLabelValues("total").Set(float64(total))
}
