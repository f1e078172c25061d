package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Registry holds all Prometheus metrics for the relay
type Registry struct {
	// HTTP Metrics
	HTTPRequestsTotal    *prometheus.CounterVec
	HTTPRequestDuration  *prometheus.HistogramVec
	HTTPRequestsInFlight *prometheus.GaugeVec

	// Cache Metrics
	CacheHitsTotal   *prometheus.CounterVec
	CacheMissesTotal *prometheus.CounterVec
	CacheEntries     *prometheus.GaugeVec
	CacheCoalesced   *prometheus.CounterVec

	// Upstream Metrics
	FetchTotal    *prometheus.CounterVec
	FetchDuration *prometheus.HistogramVec

	// Write path
	ActivityTotal *prometheus.CounterVec
}

// NewRegistry registers every relay metric on reg. Pass
// prometheus.DefaultRegisterer in production and a fresh
// prometheus.NewRegistry() in tests.
func NewRegistry(reg prometheus.Registerer) *Registry {
	factory := promauto.With(reg)

	return &Registry{
		HTTPRequestsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "relay_http_requests_total",
				Help: "Total HTTP requests processed by endpoint, method, and status code",
			},
			[]string{"endpoint", "method", "status_code"},
		),
		HTTPRequestDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "relay_http_request_duration_seconds",
				Help:    "HTTP request latency distribution in seconds",
				Buckets: []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
			},
			[]string{"endpoint", "method"},
		),
		HTTPRequestsInFlight: factory.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "relay_http_requests_in_flight",
				Help: "Number of HTTP requests currently being processed",
			},
			[]string{"endpoint"},
		),

		CacheHitsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "relay_cache_hits_total",
				Help: "Total cache hits by cache name",
			},
			[]string{"cache"},
		),
		CacheMissesTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "relay_cache_misses_total",
				Help: "Total cache misses by cache name",
			},
			[]string{"cache"},
		),
		CacheEntries: factory.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "relay_cache_entries",
				Help: "Current number of entries held by each cache",
			},
			[]string{"cache"},
		),
		CacheCoalesced: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "relay_cache_coalesced_total",
				Help: "Loads that joined an in-flight fetch instead of issuing their own",
			},
			[]string{"cache"},
		),

		FetchTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "relay_upstream_fetch_total",
				Help: "Upstream fetches by cache name and outcome",
			},
			[]string{"cache", "outcome"},
		),
		FetchDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "relay_upstream_fetch_duration_seconds",
				Help:    "Upstream fetch latency in seconds",
				Buckets: []float64{0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
			},
			[]string{"cache"},
		),

		ActivityTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "relay_activity_total",
				Help: "Write-path operations by kind and status",
			},
			[]string{"kind", "status"},
		),
	}
}

// RecordCacheLookup counts a hit or miss. A nil registry is a no-op.
func (m *Registry) RecordCacheLookup(cache string, hit bool) {
	if m == nil {
		return
	}
	if hit {
		m.CacheHitsTotal.WithLabelValues(cache).Inc()
		return
	}
	m.CacheMissesTotal.WithLabelValues(cache).Inc()
}

func (m *Registry) RecordCoalesced(cache string) {
	if m == nil {
		return
	}
	m.CacheCoalesced.WithLabelValues(cache).Inc()
}

func (m *Registry) RecordFetch(cache, outcome string, seconds float64) {
	if m == nil {
		return
	}
	m.FetchTotal.WithLabelValues(cache, outcome).Inc()
	m.FetchDuration.WithLabelValues(cache).Observe(seconds)
}

func (m *Registry) SetCacheEntries(cache string, n int) {
	if m == nil {
		return
	}
	m.CacheEntries.WithLabelValues(cache).Set(float64(n))
}

func (m *Registry) RecordActivity(kind, status string) {
	if m == nil {
		return
	}
	m.ActivityTotal.WithLabelValues(kind, status).Inc()
}
