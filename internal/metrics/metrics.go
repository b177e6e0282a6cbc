// Package metrics exposes the service's prometheus instrumentation.
// Detection failures are intentionally swallowed at the engine and loop
// boundaries to keep the service available; these counters are how those
// failures stay observable.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	UploadRequests = promauto.NewCounter(prometheus.CounterOpts{
		Name: "sentinel_upload_requests_total",
		Help: "Total image upload detection requests",
	})

	DetectorFailures = promauto.NewCounter(prometheus.CounterOpts{
		Name: "sentinel_detector_failures_total",
		Help: "Detector calls that failed and degraded to empty results",
	})

	MonitorCycles = promauto.NewCounter(prometheus.CounterOpts{
		Name: "sentinel_monitor_cycles_total",
		Help: "Monitoring loop cycles executed",
	})

	MonitorCycleFailures = promauto.NewCounter(prometheus.CounterOpts{
		Name: "sentinel_monitor_cycle_failures_total",
		Help: "Monitoring loop cycles that failed and were skipped",
	})

	Broadcasts = promauto.NewCounter(prometheus.CounterOpts{
		Name: "sentinel_ws_broadcasts_total",
		Help: "Events broadcast to websocket clients",
	})

	AlertsGenerated = promauto.NewCounter(prometheus.CounterOpts{
		Name: "sentinel_alerts_generated_total",
		Help: "Critical-object alerts generated",
	})

	InferenceDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "sentinel_inference_duration_seconds",
		Help:    "Wall time of detector inference calls",
		Buckets: prometheus.DefBuckets,
	})
)
