// File: /metrics/metrics.go
package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

var (
	// Registry is the dedicated Prometheus registry served on /metrics.
	Registry = prometheus.NewRegistry()

	HTTPRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{Name: "http_requests_total", Help: "Total HTTP requests."},
		[]string{"method", "path", "status"},
	)
	HTTPDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{Name: "http_request_duration_seconds", Help: "HTTP request duration in seconds.", Buckets: prometheus.DefBuckets},
		[]string{"method", "path", "status"},
	)

	// AnalyticsCacheLookups counts analytics cache lookups by metric kind and result (hit, miss).
	AnalyticsCacheLookups = prometheus.NewCounterVec(
		prometheus.CounterOpts{Name: "fuel_analytics_cache_lookups_total", Help: "Fuel analytics cache lookups by kind and result."},
		[]string{"kind", "result"},
	)
	// AnalyticsComputeDuration records how long a reconciliation pass takes.
	AnalyticsComputeDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{Name: "fuel_analytics_compute_seconds", Help: "Fuel ledger reconciliation time in seconds.", Buckets: prometheus.DefBuckets},
		[]string{"kind"},
	)

	TripTransitions = prometheus.NewCounterVec(
		prometheus.CounterOpts{Name: "trip_transitions_total", Help: "Trip status transitions by target status."},
		[]string{"status"},
	)
	// SideEffectFailures counts best-effort writes that failed and were skipped.
	SideEffectFailures = prometheus.NewCounterVec(
		prometheus.CounterOpts{Name: "side_effect_failures_total", Help: "Best-effort side effect failures by operation."},
		[]string{"operation"},
	)
	CacheSweepRemoved = prometheus.NewCounter(
		prometheus.CounterOpts{Name: "fuel_analytics_cache_swept_total", Help: "Expired analytics cache entries removed by the sweep job."},
	)
)

// RegisterDefault registers collectors on Registry once.
func RegisterDefault() {
	regOnce.Do(func() {
		Registry.MustRegister(HTTPRequests)
		Registry.MustRegister(HTTPDuration)
		Registry.MustRegister(AnalyticsCacheLookups)
		Registry.MustRegister(AnalyticsComputeDuration)
		Registry.MustRegister(TripTransitions)
		Registry.MustRegister(SideEffectFailures)
		Registry.MustRegister(CacheSweepRemoved)
		Registry.MustRegister(collectors.NewGoCollector())
		Registry.MustRegister(collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	})
}

var regOnce sync.Once
