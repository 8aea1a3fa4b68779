// Terroir - Agricultural Reference Data Hypermedia API
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/terroir

package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// Database Metrics
	DBQueryDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "terroir_query_duration_seconds",
			Help:    "Duration of dataset queries in seconds",
			Buckets: prometheus.DefBuckets, // 0.005s, 0.01s, 0.025s, 0.05s, 0.1s, 0.25s, 0.5s, 1s, 2.5s, 5s, 10s
		},
		[]string{"operation", "table"},
	)

	DBQueryErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "terroir_query_errors_total",
			Help: "Total number of dataset query errors",
		},
		[]string{"operation", "table", "error_type"},
	)

	DBSpatialPredicates = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "terroir_spatial_predicates_total",
			Help: "Total number of spatial predicates and orderings rendered into queries",
		},
		[]string{"kind"}, // "within", "contains", "distance", "nearest"
	)

	// Response Cache Metrics
	CacheHits = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "terroir_response_cache_hits_total",
			Help: "Total number of response cache hits",
		},
	)

	CacheMisses = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "terroir_response_cache_misses_total",
			Help: "Total number of response cache misses",
		},
	)

	CacheSize = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "terroir_response_cache_entries",
			Help: "Current number of cached query results",
		},
	)

	CacheEvictions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "terroir_response_cache_evictions_total",
			Help: "Total number of response cache evictions",
		},
		[]string{"reason"}, // "capacity", "expired"
	)

	// Listing Pipeline Metrics
	ListingDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "terroir_listing_duration_seconds",
			Help:    "Duration of paginated listing assembly (rows, count and credit fan-in)",
			Buckets: []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5},
		},
		[]string{"listing"},
	)

	ListingFailures = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "terroir_listing_failures_total",
			Help: "Total number of listings rendered in degraded mode",
		},
		[]string{"listing", "kind"},
	)

	// API Endpoint Metrics
	APIRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "api_requests_total",
			Help: "Total number of API requests",
		},
		[]string{"method", "endpoint", "status_code"},
	)

	APIRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "api_request_duration_seconds",
			Help:    "API request duration in seconds",
			Buckets: []float64{0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10}, // Optimized for API latency
		},
		[]string{"method", "endpoint"},
	)

	APIActiveRequests = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "api_active_requests",
			Help: "Current number of active API requests",
		},
	)

	APIResponsesByFormat = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "api_responses_by_format_total",
			Help: "Total number of rendered responses per representation",
		},
		[]string{"format"}, // "html", "json", "csv", "geojson"
	)

	// Circuit Breaker Metrics
	CircuitBreakerState = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "circuit_breaker_state",
			Help: "Circuit breaker state (0=closed, 1=half-open, 2=open)",
		},
		[]string{"name"},
	)

	CircuitBreakerRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "circuit_breaker_requests_total",
			Help: "Total number of requests through circuit breaker",
		},
		[]string{"name", "result"}, // result: "success", "failure", "rejected"
	)

	CircuitBreakerTransitions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "circuit_breaker_state_transitions_total",
			Help: "Total number of circuit breaker state transitions",
		},
		[]string{"name", "from_state", "to_state"},
	)
)

// RecordDBQuery records a database query metric
func RecordDBQuery(operation, table string, duration time.Duration, err error) {
	DBQueryDuration.WithLabelValues(operation, table).Observe(duration.Seconds())
	if err != nil {
		errorType := err.Error()
		// Truncate long error messages
		if len(errorType) > 50 {
			errorType = errorType[:50]
		}
		DBQueryErrors.WithLabelValues(operation, table, errorType).Inc()
	}
}

// RecordSpatial counts a rendered spatial predicate or ordering.
func RecordSpatial(kind string) {
	DBSpatialPredicates.WithLabelValues(kind).Inc()
}

// RecordCacheLookup records a response cache hit or miss.
func RecordCacheLookup(hit bool) {
	if hit {
		CacheHits.Inc()
		return
	}
	CacheMisses.Inc()
}

// RecordCacheEviction records a response cache eviction and the resulting size.
func RecordCacheEviction(reason string, size int) {
	CacheEvictions.WithLabelValues(reason).Inc()
	CacheSize.Set(float64(size))
}

// RecordListing records the outcome of one paginated listing.
func RecordListing(listing string, duration time.Duration, failureKind string) {
	ListingDuration.WithLabelValues(listing).Observe(duration.Seconds())
	if failureKind != "" {
		ListingFailures.WithLabelValues(listing, failureKind).Inc()
	}
}

// RecordAPIRequest records an API request metric
func RecordAPIRequest(method, endpoint, statusCode string, duration time.Duration) {
	APIRequestsTotal.WithLabelValues(method, endpoint, statusCode).Inc()
	APIRequestDuration.WithLabelValues(method, endpoint).Observe(duration.Seconds())
}

// RecordFormat counts a rendered representation.
func RecordFormat(format string) {
	APIResponsesByFormat.WithLabelValues(format).Inc()
}

// TrackActiveRequest tracks active API requests
func TrackActiveRequest(inc bool) {
	if inc {
		APIActiveRequests.Inc()
	} else {
		APIActiveRequests.Dec()
	}
}
