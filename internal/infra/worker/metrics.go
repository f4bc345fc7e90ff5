package worker

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"tubefeed/internal/pkg/config"
)

// Metrics tracks the worker's scheduled fetch runs and its
// configuration health.
type Metrics struct {
	configMetrics *config.Metrics

	// FetchRunsTotal counts scheduled runs by status (success/failure).
	FetchRunsTotal *prometheus.CounterVec

	// FetchRunDurationSeconds measures one run over all sources.
	// Buckets reach into the tens of minutes: media resolution for a
	// long playlist dominates run time.
	FetchRunDurationSeconds prometheus.Histogram

	// SourcesProcessedTotal counts sources fetched across all runs.
	SourcesProcessedTotal prometheus.Counter

	// LastSuccessTimestamp is the Unix time of the last successful run.
	LastSuccessTimestamp prometheus.Gauge
}

func NewMetrics() *Metrics {
	return &Metrics{
		configMetrics: config.NewMetrics("worker"),

		FetchRunsTotal: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "worker_fetch_runs_total",
			Help: "Total scheduled fetch runs by status (success/failure)",
		}, []string{"status"}),

		FetchRunDurationSeconds: promauto.NewHistogram(prometheus.HistogramOpts{
			Name:    "worker_fetch_run_duration_seconds",
			Help:    "Duration of one scheduled fetch run over all sources",
			Buckets: []float64{1, 5, 30, 60, 300, 900, 1800, 3600},
		}),

		SourcesProcessedTotal: promauto.NewCounter(prometheus.CounterOpts{
			Name: "worker_sources_processed_total",
			Help: "Total sources fetched across all scheduled runs",
		}),

		LastSuccessTimestamp: promauto.NewGauge(prometheus.GaugeOpts{
			Name: "worker_fetch_last_success_timestamp",
			Help: "Unix timestamp of the last successful fetch run",
		}),
	}
}

func (m *Metrics) RecordRun(status string) {
	m.FetchRunsTotal.WithLabelValues(status).Inc()
}

func (m *Metrics) RecordRunDuration(seconds float64) {
	m.FetchRunDurationSeconds.Observe(seconds)
}

func (m *Metrics) RecordSourcesProcessed(count int) {
	m.SourcesProcessedTotal.Add(float64(count))
}

func (m *Metrics) RecordLastSuccess() {
	m.LastSuccessTimestamp.SetToCurrentTime()
}

func (m *Metrics) RecordConfigFallback(field string) {
	m.configMetrics.RecordFallback(field)
}

func (m *Metrics) SetConfigFallbackActive(active bool) {
	m.configMetrics.SetFallbackActive(active)
}

func (m *Metrics) RecordConfigLoad() {
	m.configMetrics.RecordLoadTimestamp()
}
