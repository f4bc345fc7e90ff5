// Package slo defines the service level objectives and the gauges that
// track them. The gauges are set by the process itself (the worker
// after each scheduled run, or any periodic sampler), so a dashboard
// compares current values against targets without recording rules.
package slo

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// SLO targets.
const (
	// AvailabilitySLO is the target API uptime percentage.
	AvailabilitySLO = 99.9

	// LatencyP95SLO is the API p95 latency target in seconds. Media
	// streaming endpoints are excluded: their duration is bounded by
	// the upstream CDN, not by us.
	LatencyP95SLO = 0.200

	// ErrorRateSLO is the maximum acceptable API error rate ratio.
	ErrorRateSLO = 0.001

	// FetchSuccessSLO is the target fraction of scheduled fetch runs
	// completing without a failed source. Upstream platforms throttle
	// and delist, so this target is looser than the API ones.
	FetchSuccessSLO = 0.95
)

var (
	availability = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "slo_availability_ratio",
		Help: "Current availability ratio (0-1), target: 0.999",
	})

	latencyP95 = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "slo_latency_p95_seconds",
		Help: "Current p95 latency in seconds, target: 0.200",
	})

	errorRate = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "slo_error_rate_ratio",
		Help: "Current error rate ratio (0-1), target: 0.001",
	})

	fetchSuccess = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "slo_fetch_success_ratio",
		Help: "Fraction of scheduled fetch runs completing cleanly (0-1), target: 0.95",
	})
)

// UpdateAvailability sets the current availability ratio, computed as
// (total - 5xx) / total over the caller's measurement window.
func UpdateAvailability(ratio float64) {
	availability.Set(ratio)
}

// UpdateLatencyP95 sets the current p95 latency in seconds.
func UpdateLatencyP95(seconds float64) {
	latencyP95.Set(seconds)
}

// UpdateErrorRate sets the current error rate ratio.
func UpdateErrorRate(ratio float64) {
	errorRate.Set(ratio)
}

// UpdateFetchSuccess sets the fraction of scheduled runs that completed
// without failures.
func UpdateFetchSuccess(ratio float64) {
	fetchSuccess.Set(ratio)
}
