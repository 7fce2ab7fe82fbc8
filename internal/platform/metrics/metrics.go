// Package metrics holds the Prometheus collectors of the service and small
// helpers that record into them.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Cache lookup results.
const (
	CacheHit   = "hit"
	CacheMiss  = "miss"
	CacheError = "error"
)

// Invalidation results.
const (
	InvalidationOK    = "ok"
	InvalidationError = "error"
)

var (
	// HTTPRequestDuration observes request latency in seconds.
	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "tasktrack_http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: prometheus.ExponentialBuckets(0.001, 2, 12), // 1ms to ~4s
		},
		[]string{"method", "route", "status"},
	)

	// CacheLookups counts task list cache lookups by result.
	CacheLookups = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "tasktrack_cache_lookups_total",
			Help: "Total number of task list cache lookups",
		},
		[]string{"result"},
	)

	// CacheInvalidations counts per-user cache invalidations by result.
	CacheInvalidations = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "tasktrack_cache_invalidations_total",
			Help: "Total number of per-user cache invalidations",
		},
		[]string{"result"},
	)
)

// RecordHTTPRequestDuration records one served request.
func RecordHTTPRequestDuration(method, route, status string, duration time.Duration) {
	HTTPRequestDuration.WithLabelValues(method, route, status).Observe(duration.Seconds())
}

// RecordCacheLookup counts a cache lookup with the given result.
func RecordCacheLookup(result string) {
	CacheLookups.WithLabelValues(result).Inc()
}

// RecordCacheInvalidation counts an invalidation with the given result.
func RecordCacheInvalidation(result string) {
	CacheInvalidations.WithLabelValues(result).Inc()
}

// Handler exposes the default registry.
func Handler() http.Handler {
	return promhttp.Handler()
}
