// Package metrics provides centralized Prometheus metrics for the application.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// HTTP metrics track HTTP request patterns and performance
var (
	// HTTPRequestsTotal counts total HTTP requests by method, path, and status
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	// HTTPRequestDuration measures HTTP request duration in seconds
	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path", "status"},
	)

	// HTTPResponseSize measures HTTP response body size in bytes
	HTTPResponseSize = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_response_size_bytes",
			Help:    "HTTP response size in bytes",
			Buckets: prometheus.ExponentialBuckets(100, 10, 8),
		},
		[]string{"method", "path"},
	)

	// ActiveConnections tracks the number of active HTTP connections
	ActiveConnections = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "http_active_connections",
			Help: "Number of active HTTP connections",
		},
	)
)

// Ingestion metrics track the news refresh pipeline
var (
	// FeedFetchAttemptsTotal counts feed fetch attempts by result
	FeedFetchAttemptsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "feed_fetch_attempts_total",
			Help: "Total number of feed fetch attempts",
		},
		[]string{"result"}, // result: success, failure
	)

	// FeedFetchDuration measures time to fetch and parse one feed
	FeedFetchDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "feed_fetch_duration_seconds",
			Help:    "Time taken to fetch and parse a single feed",
			Buckets: []float64{0.1, 0.2, 0.4, 0.8, 1.6, 3.2, 6.4, 12.8},
		},
	)

	// FeedFetchSize measures fetched feed body size in bytes
	FeedFetchSize = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name: "feed_fetch_size_bytes",
			Help: "Fetched feed body size in bytes",
			Buckets: []float64{
				1024, 4096, 16384, 65536, 262144,
				1048576, 2097152, 5242880, // up to the 5MiB cap
			},
		},
	)

	// ItemsIngestedTotal counts items processed by the ingest pipeline by result
	ItemsIngestedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "items_ingested_total",
			Help: "Total number of feed items processed",
		},
		[]string{"result"}, // result: inserted, duplicate, rejected
	)

	// IngestRunsTotal counts full ingest runs by outcome
	IngestRunsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ingest_runs_total",
			Help: "Total number of ingest runs",
		},
		[]string{"status"}, // status: success, partial, failure
	)

	// IngestRunDuration measures time to complete a full ingest run
	IngestRunDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "ingest_run_duration_seconds",
			Help:    "Time taken to complete a full ingest run",
			Buckets: prometheus.ExponentialBuckets(1, 2, 10),
		},
	)

	// CardsRefreshedTotal counts dashboard cards written by type
	CardsRefreshedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "cards_refreshed_total",
			Help: "Total number of dashboard cards refreshed",
		},
		[]string{"type"},
	)

	// CardRefreshErrors counts errors during card refresh
	CardRefreshErrors = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "card_refresh_errors_total",
			Help: "Total number of card refresh errors",
		},
	)

	// FeedsTotal tracks total number of registered feeds
	FeedsTotal = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "feeds_total",
			Help: "Total number of registered feeds",
		},
	)
)

// Database metrics track database performance
var (
	// DBQueryDuration measures database query duration
	DBQueryDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "db_query_duration_seconds",
			Help:    "Database query duration in seconds",
			Buckets: prometheus.ExponentialBuckets(0.001, 2, 10),
		},
		[]string{"operation"},
	)

	// DBConnectionsActive tracks active database connections
	DBConnectionsActive = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "db_connections_active",
			Help: "Number of active database connections",
		},
	)

	// DBConnectionsIdle tracks idle database connections
	DBConnectionsIdle = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "db_connections_idle",
			Help: "Number of idle database connections",
		},
	)
)

// RecordHTTPRequest records an HTTP request with its metadata
func RecordHTTPRequest(method, path, status string, duration time.Duration, responseSize int) {
	HTTPRequestsTotal.WithLabelValues(method, path, status).Inc()
	HTTPRequestDuration.WithLabelValues(method, path, status).Observe(duration.Seconds())

	if responseSize > 0 {
		HTTPResponseSize.WithLabelValues(method, path).Observe(float64(responseSize))
	}
}
