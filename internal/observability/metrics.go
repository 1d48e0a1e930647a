package observability

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds the Prometheus counters and histograms for the resolution
// engine.
type Metrics struct {
	ResolveRequests *prometheus.CounterVec // labels: operation={geocode,reverse_geocode,travel_distance}, outcome={resolved,unresolved,fallback}

	ProviderRequests *prometheus.CounterVec   // labels: provider, method, outcome={ok,zero_results,error}
	ProviderDuration *prometheus.HistogramVec // labels: provider, method

	CacheLookups     *prometheus.CounterVec // labels: cache={geocode,reverse,distance}, result={hit,miss}
	IntervalRejected prometheus.Counter     // reverse-geocode calls refused by the minimum-interval gate
}

// NewMetrics creates and registers all engine metrics with the default
// Prometheus registry.
func NewMetrics() *Metrics {
	m := newMetrics()
	prometheus.MustRegister(
		m.ResolveRequests,
		m.ProviderRequests,
		m.ProviderDuration,
		m.CacheLookups,
		m.IntervalRejected,
	)
	return m
}

// NewMetricsForTesting creates Metrics without registering them, avoiding
// "already registered" panics when called from multiple tests.
func NewMetricsForTesting() *Metrics {
	return newMetrics()
}

func newMetrics() *Metrics {
	return &Metrics{
		ResolveRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "locationd",
			Name:      "resolve_requests_total",
			Help:      "Resolution requests by operation and outcome.",
		}, []string{"operation", "outcome"}),
		ProviderRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "locationd",
			Name:      "provider_requests_total",
			Help:      "External provider requests by provider, method, and outcome.",
		}, []string{"provider", "method", "outcome"}),
		ProviderDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "locationd",
			Name:      "provider_request_duration_seconds",
			Help:      "External provider request duration in seconds.",
			Buckets:   []float64{0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		}, []string{"provider", "method"}),
		CacheLookups: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "locationd",
			Name:      "cache_lookups_total",
			Help:      "Engine cache lookups by cache and result.",
		}, []string{"cache", "result"}),
		IntervalRejected: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "locationd",
			Name:      "reverse_interval_rejected_total",
			Help:      "Reverse-geocode calls refused by the minimum-interval gate.",
		}),
	}
}
