// Package metrics provides centralized Prometheus metrics for the
// fetch pipeline, media delivery, and database pool. Per-request HTTP
// metrics are registered by the HTTP handler layer, not here.
package metrics

import (
	"database/sql"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Business metrics track the fetch pipeline and media delivery
var (
	// VideosTotal tracks total number of videos in the database
	VideosTotal = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "videos_total",
			Help: "Total number of videos in the database",
		},
	)

	// SourcesTotal tracks total number of sources in the database
	SourcesTotal = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "sources_total",
			Help: "Total number of sources in the database",
		},
	)

	// VideosAddedTotal counts videos first seen during source fetches
	VideosAddedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "videos_added_total",
			Help: "Total number of new videos discovered during fetches",
		},
		[]string{"source_id"},
	)

	// VideosRefreshedTotal counts media reference refreshes by status
	VideosRefreshedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "videos_refreshed_total",
			Help: "Total number of video media refreshes",
		},
		[]string{"status"}, // status: success|canceled|failure
	)

	// SourceFetchDuration measures time to fetch one source end to end
	SourceFetchDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "source_fetch_duration_seconds",
			Help:    "Time taken to fetch a source",
			Buckets: prometheus.ExponentialBuckets(0.1, 2, 10),
		},
		[]string{"source_id"},
	)

	// SourceFetchErrors counts errors during source fetches
	SourceFetchErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "source_fetch_errors_total",
			Help: "Total number of source fetch errors",
		},
		[]string{"source_id", "error_type"},
	)

	// ExtractionDuration measures upstream extraction call duration
	ExtractionDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "extraction_duration_seconds",
			Help:    "Time taken by upstream extraction calls",
			Buckets: []float64{0.1, 0.2, 0.4, 0.8, 1.6, 3.2, 6.4, 12.8, 25.6},
		},
		[]string{"kind"}, // kind: source|video
	)

	// MediaResolveTotal counts media URL resolutions by outcome
	MediaResolveTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "media_resolve_total",
			Help: "Total number of media URL resolutions",
		},
		[]string{"outcome"}, // outcome: cache_hit|fresh|refetched|failure
	)

	// MediaProxyRetries counts forced re-fetches triggered by upstream 403s
	MediaProxyRetries = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "media_proxy_retries_total",
			Help: "Total number of proxy retries after upstream 403",
		},
	)
)

// Database metrics track query latency and the connection pool
var (
	// DBQueryDuration measures database query duration per operation
	DBQueryDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "db_query_duration_seconds",
			Help:    "Database query duration in seconds",
			Buckets: prometheus.ExponentialBuckets(0.001, 2, 10),
		},
		[]string{"operation"},
	)

	// DBConnectionsActive tracks in-use database connections
	DBConnectionsActive = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "db_connections_active",
			Help: "Number of in-use database connections",
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

// RecordDBPoolStats samples the connection pool gauges. Call
// periodically from the serving binary.
func RecordDBPoolStats(stats sql.DBStats) {
	DBConnectionsActive.Set(float64(stats.InUse))
	DBConnectionsIdle.Set(float64(stats.Idle))
}
