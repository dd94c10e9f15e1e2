// Moodie - Mood-Driven Plex Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/moodie

// Package metrics holds Moodie's Prometheus instrumentation:
// the recommendation pipeline, the page cache, the Plex catalog client,
// the feedback/history store, and the HTTP API.
package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// Recommendation pipeline

	RecommendRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "moodie_recommend_requests_total",
			Help: "Recommendation requests by outcome",
		},
		[]string{"outcome"}, // "cache_hit", "computed", "fallback", "error"
	)

	RecommendDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "moodie_recommend_duration_seconds",
			Help:    "End-to-end recommendation latency",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"source"}, // "cache", "pipeline"
	)

	RecommendCandidates = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "moodie_recommend_candidates",
			Help:    "Items surviving the filter stage per computed request",
			Buckets: prometheus.ExponentialBuckets(1, 4, 8), // 1 .. 16384
		},
	)

	FeedbackRecorded = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "moodie_feedback_recorded_total",
			Help: "Feedback signals persisted",
		},
		[]string{"signal"},
	)

	// Page cache

	CacheHits = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "moodie_cache_hits_total",
			Help: "Page cache hits",
		},
		[]string{"backend"},
	)

	CacheMisses = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "moodie_cache_misses_total",
			Help: "Page cache misses, including lazily expired entries",
		},
		[]string{"backend"},
	)

	CacheExpirations = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "moodie_cache_expirations_total",
			Help: "Entries removed because their TTL elapsed",
		},
		[]string{"backend"},
	)

	CacheInvalidations = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "moodie_cache_invalidated_entries_total",
			Help: "Entries removed by session invalidation",
		},
		[]string{"backend"},
	)

	CacheStaleWrites = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "moodie_cache_stale_writes_total",
			Help: "Page writes dropped because the session was invalidated while the page was computed",
		},
		[]string{"backend"},
	)

	CacheEntries = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "moodie_cache_entries",
			Help: "Current number of cached pages",
		},
		[]string{"backend"},
	)

	// Plex catalog source

	CatalogFetchDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "moodie_catalog_fetch_duration_seconds",
			Help:    "Duration of a full catalog fetch from Plex",
			Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30},
		},
	)

	CatalogFetchErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "moodie_catalog_fetch_errors_total",
			Help: "Failed catalog fetches by error type",
		},
		[]string{"error_type"}, // "unauthorized", "status", "transport", "decode", "circuit_open"
	)

	CatalogItems = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "moodie_catalog_items",
			Help: "Items returned by the most recent catalog fetch",
		},
	)

	MediaSyncRuns = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "moodie_media_sync_runs_total",
			Help: "Background media sync runs by result",
		},
		[]string{"result"},
	)

	CircuitBreakerState = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "moodie_circuit_breaker_state",
			Help: "Circuit breaker state (0=closed, 1=half-open, 2=open)",
		},
		[]string{"name"},
	)

	CircuitBreakerRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "moodie_circuit_breaker_requests_total",
			Help: "Requests through the circuit breaker",
		},
		[]string{"name", "result"}, // "success", "failure", "rejected"
	)

	CircuitBreakerTransitions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "moodie_circuit_breaker_state_transitions_total",
			Help: "Circuit breaker state transitions",
		},
		[]string{"name", "from_state", "to_state"},
	)

	// Store

	StoreOperationDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "moodie_store_operation_duration_seconds",
			Help:    "Duration of feedback/media/history store operations",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"driver", "operation"},
	)

	StoreOperationErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "moodie_store_operation_errors_total",
			Help: "Failed store operations",
		},
		[]string{"driver", "operation"},
	)

	// HTTP API

	APIRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "moodie_api_requests_total",
			Help: "HTTP requests by method, route and status",
		},
		[]string{"method", "endpoint", "status_code"},
	)

	APIRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "moodie_api_request_duration_seconds",
			Help:    "HTTP request latency",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "endpoint"},
	)

	APIActiveRequests = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "moodie_api_active_requests",
			Help: "In-flight HTTP requests",
		},
	)
)

// RecordRecommend records one recommendation request.
func RecordRecommend(outcome, source string, duration time.Duration) {
	RecommendRequests.WithLabelValues(outcome).Inc()
	RecommendDuration.WithLabelValues(source).Observe(duration.Seconds())
}

// RecordCatalogFetch records a catalog fetch; errorType is empty on success.
func RecordCatalogFetch(duration time.Duration, items int, errorType string) {
	CatalogFetchDuration.Observe(duration.Seconds())
	if errorType != "" {
		CatalogFetchErrors.WithLabelValues(errorType).Inc()
		return
	}
	CatalogItems.Set(float64(items))
}

// RecordStoreOperation records a store call and, if err is non-nil, an error.
func RecordStoreOperation(driver, operation string, duration time.Duration, err error) {
	StoreOperationDuration.WithLabelValues(driver, operation).Observe(duration.Seconds())
	if err != nil {
		StoreOperationErrors.WithLabelValues(driver, operation).Inc()
	}
}

// RecordAPIRequest records a completed HTTP request.
func RecordAPIRequest(method, endpoint string, statusCode int, duration time.Duration) {
	APIRequestsTotal.WithLabelValues(method, endpoint, strconv.Itoa(statusCode)).Inc()
	APIRequestDuration.WithLabelValues(method, endpoint).Observe(duration.Seconds())
}

// TrackActiveRequest adjusts the in-flight request gauge.
func TrackActiveRequest(inc bool) {
	if inc {
		APIActiveRequests.Inc()
	} else {
		APIActiveRequests.Dec()
	}
}
