package metrics

import "time"

// RecordSourceFetch records the end-to-end outcome of one source fetch.
func RecordSourceFetch(sourceID string, duration time.Duration, added int) {
	SourceFetchDuration.WithLabelValues(sourceID).Observe(duration.Seconds())
	if added > 0 {
		VideosAddedTotal.WithLabelValues(sourceID).Add(float64(added))
	}
}

// RecordSourceFetchError records an error during a source fetch.
// errorType is a stable bucket, e.g. "extraction_failed" or "source_gone".
func RecordSourceFetchError(sourceID, errorType string) {
	SourceFetchErrors.WithLabelValues(sourceID, errorType).Inc()
}

// RecordVideoRefresh records one media refresh result.
// Status should be "success", "canceled", or "failure".
func RecordVideoRefresh(status string) {
	VideosRefreshedTotal.WithLabelValues(status).Inc()
}

// RecordExtraction records an upstream extraction call duration.
// Kind is "source" or "video".
func RecordExtraction(kind string, duration time.Duration) {
	ExtractionDuration.WithLabelValues(kind).Observe(duration.Seconds())
}

// RecordMediaResolve records a media URL resolution outcome:
// "cache_hit", "fresh", "refetched", or "failure".
func RecordMediaResolve(outcome string) {
	MediaResolveTotal.WithLabelValues(outcome).Inc()
}

// RecordMediaProxyRetry records a forced re-fetch after an upstream 403.
func RecordMediaProxyRetry() {
	MediaProxyRetries.Inc()
}

// UpdateVideosTotal updates the total video count gauge.
func UpdateVideosTotal(count int) {
	VideosTotal.Set(float64(count))
}

// UpdateSourcesTotal updates the total source count gauge.
func UpdateSourcesTotal(count int) {
	SourcesTotal.Set(float64(count))
}

// RecordDBQuery records the duration of a database query operation.
// Operation should describe the query (e.g. "select_videos", "insert_source").
func RecordDBQuery(operation string, duration time.Duration) {
	DBQueryDuration.WithLabelValues(operation).Observe(duration.Seconds())
}

// UpdateDBConnectionStats updates database connection pool statistics.
func UpdateDBConnectionStats(active, idle int) {
	DBConnectionsActive.Set(float64(active))
	DBConnectionsIdle.Set(float64(idle))
}
