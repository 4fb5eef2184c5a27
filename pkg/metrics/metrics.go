package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all Prometheus metrics for the application.
type Metrics struct {
	HTTPRequestsTotal   *prometheus.CounterVec
	HTTPRequestDuration *prometheus.HistogramVec

	LinkCacheLookups *prometheus.CounterVec
	LinkCacheFlushes *prometheus.CounterVec
	LinkCacheSize    prometheus.Gauge

	BrokenLinksRecorded *prometheus.CounterVec
	BlacklistPurged     *prometheus.CounterVec
}

// New registers the metrics with reg. Pass prometheus.DefaultRegisterer in
// production and a fresh registry in tests.
func New(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		HTTPRequestsTotal: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "http_requests_total",
				Help: "Total number of HTTP requests.",
			},
			[]string{"method", "path", "status"},
		),
		HTTPRequestDuration: f.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "http_request_duration_seconds",
				Help:    "Duration of HTTP requests.",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"method", "path", "status"},
		),
		LinkCacheLookups: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "linkcheck_linkcache_lookups_total",
				Help: "Check cache lookups by result.",
			},
			[]string{"result"}, // hit, miss
		),
		LinkCacheFlushes: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "linkcheck_linkcache_flushes_total",
				Help: "Check cache clears by kind.",
			},
			[]string{"kind"}, // expired, forced
		),
		LinkCacheSize: f.NewGauge(
			prometheus.GaugeOpts{
				Name: "linkcheck_linkcache_size",
				Help: "URLs in the current check cache generation, sampled when sized or flushed.",
			},
		),
		BrokenLinksRecorded: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "linkcheck_broken_links_recorded_total",
				Help: "Broken link records written, by problem.",
			},
			[]string{"problem"},
		),
		BlacklistPurged: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "linkcheck_blacklist_purged_total",
				Help: "Orphaned blacklist entries removed.",
			},
			[]string{"site"},
		),
	}
}
