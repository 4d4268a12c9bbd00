package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// ResolveTotal counts point resolutions by the tier that produced the answer.
	ResolveTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "fews_resolve_total",
		Help: "Point-to-polygon resolutions by tier (strict, covering, nearest, unresolved)",
	}, []string{"tier"})
	ResolveDurationMs = prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "fews_resolve_duration_ms",
		Help:    "Resolve duration in milliseconds",
		Buckets: []float64{1, 5, 10, 20, 50, 100, 200, 500, 1000},
	})
	ResolveErrorsTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "fews_resolve_errors_total",
		Help: "Resolutions aborted by a polygon store failure",
	})
	HierarchyCacheTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "fews_hierarchy_cache_total",
		Help: "Candidate list cache lookups by result (hit, miss)",
	}, []string{"result"})
	HierarchyAssignTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "fews_hierarchy_assign_total",
		Help: "Deterministic code assignments by level and outcome (assigned, no_parent, no_candidates)",
	}, []string{"level", "outcome"})
	GeocodeCacheTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "fews_geocode_cache_total",
		Help: "Reverse geocode cache lookups by layer (lru, redis) and result (hit, miss)",
	}, []string{"layer", "result"})
	GeocodeProviderTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "fews_geocode_provider_total",
		Help: "Reverse geocode provider calls by status (ok, error)",
	}, []string{"status"})
	GeocodeProviderDurationMs = prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "fews_geocode_provider_duration_ms",
		Help:    "Reverse geocode provider call duration in milliseconds",
		Buckets: []float64{10, 50, 100, 200, 500, 1000, 2000, 5000},
	})
	SeedRecordsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "fews_seed_records_total",
		Help: "Seeded watershed records by outcome (inserted, skipped)",
	}, []string{"outcome"})
	HealthStatus = prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Name: "fews_health_status",
		Help: "Last heartbeat result per dependency (1 healthy, 0 failing)",
	}, []string{"check"})
	HTTPRequestsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "fews_http_requests_total",
		Help: "HTTP requests by method, path and status",
	}, []string{"method", "path", "status"})
)

func init() {
	prometheus.MustRegister(ResolveTotal)
	prometheus.MustRegister(ResolveDurationMs)
	prometheus.MustRegister(ResolveErrorsTotal)
	prometheus.MustRegister(HierarchyCacheTotal)
	prometheus.MustRegister(HierarchyAssignTotal)
	prometheus.MustRegister(GeocodeCacheTotal)
	prometheus.MustRegister(GeocodeProviderTotal)
	prometheus.MustRegister(GeocodeProviderDurationMs)
	prometheus.MustRegister(SeedRecordsTotal)
	prometheus.MustRegister(HealthStatus)
	prometheus.MustRegister(HTTPRequestsTotal)
}

// Handler exposes the default registry for scraping at /metrics.
func Handler() http.Handler { return promhttp.Handler() }
