package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// Admission decisions partitioned by route and outcome
	AdmitDecisions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "revlimiter_admit_decisions_total",
			Help: "Total number of admission decisions, by route and outcome",
		},
		[]string{"route", "outcome"},
	)

	// Live token buckets per route, updated after every sweep
	LiveBuckets = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "revlimiter_live_buckets",
			Help: "Current number of live token buckets per route",
		},
		[]string{"route"},
	)

	// Buckets evicted by the periodic reclaimer
	SweptBuckets = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "revlimiter_swept_buckets_total",
			Help: "Total number of buckets evicted by the periodic reclaimer, per route",
		},
		[]string{"route"},
	)

	// Resident set size as sampled by the memory reporter
	ResidentMemory = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "revlimiter_resident_memory_kilobytes",
			Help: "Resident memory of the process in kilobytes",
		},
	)
)

// Handler returns an http.Handler that exposes the /metrics endpoint
func Handler() http.Handler {
	return promhttp.Handler()
}

// Recorder feeds admission outcomes into the decisions counter.
// It satisfies the api package's MetricsRecorder interface.
type Recorder struct{}

// RecordDecision records one admission decision for a route.
func (Recorder) RecordDecision(route string, allowed bool) {
	outcome := "allow"
	if !allowed {
		outcome = "deny"
	}
	AdmitDecisions.WithLabelValues(route, outcome).Inc()
}

// SweepObserver returns a callback suitable for revlimiter.WithSweepObserver
// that keeps the per-route bucket gauges current.
func SweepObserver(route string) func(removed, remaining int) {
	return func(removed, remaining int) {
		SweptBuckets.WithLabelValues(route).Add(float64(removed))
		LiveBuckets.WithLabelValues(route).Set(float64(remaining))
	}
}
