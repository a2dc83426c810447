package metrics

import "github.com/prometheus/client_golang/prometheus"

var (
	// RequestsTotal counts API requests by route and status code.
	RequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "portfolio_api_requests_total",
			Help: "Total API requests by route and status.",
		},
		[]string{"route", "status"},
	)

	// SnapshotCacheHits counts portfolio snapshot cache hits.
	SnapshotCacheHits = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "portfolio_snapshot_cache_hits_total",
		Help: "Total snapshot cache hits.",
	})

	// SnapshotCacheMisses counts portfolio snapshot cache misses.
	SnapshotCacheMisses = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "portfolio_snapshot_cache_misses_total",
		Help: "Total snapshot cache misses.",
	})

	// ProviderFailures counts balance provider failures by class.
	ProviderFailures = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "portfolio_provider_failures_total",
			Help: "Total balance provider failures by failure class.",
		},
		[]string{"class"},
	)

	// PriceResolutionFailures counts tokens whose price could not be resolved
	// by any tier.
	PriceResolutionFailures = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "portfolio_price_resolution_failures_total",
		Help: "Total tokens left with an unresolved price.",
	})
)

// MustRegisterMetrics registers all application metrics with the default
// Prometheus registry. Panics on duplicate registration.
func MustRegisterMetrics() {
	prometheus.MustRegister(
		RequestsTotal,
		SnapshotCacheHits,
		SnapshotCacheMisses,
		ProviderFailures,
		PriceResolutionFailures,
	)
}
