package metrics

import (
	"mercator-hq/flowc/pkg/config"

	"github.com/prometheus/client_golang/prometheus"
)

// cacheImports is the cache label of the import resolver's module cache.
const cacheImports = "imports"

// CacheMetrics tracks cache performance metrics.
//
// Metrics:
//   - flowc_compiler_cache_hits_total: Lookups served from the cache
//   - flowc_compiler_cache_misses_total: Lookups that had to load and parse
//   - flowc_compiler_cache_lookups_total: All lookups
//   - flowc_compiler_cache_entries: Entries held after the last compilation
type CacheMetrics struct {
	hitsTotal    *prometheus.CounterVec
	missesTotal  *prometheus.CounterVec
	lookupsTotal *prometheus.CounterVec
	entries      *prometheus.GaugeVec
}

// NewCacheMetrics creates and registers cache metrics with the provided registry.
func NewCacheMetrics(cfg *config.MetricsConfig, registry *prometheus.Registry) *CacheMetrics {
	cm := &CacheMetrics{
		hitsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: cfg.Namespace,
				Subsystem: cfg.Subsystem,
				Name:      "cache_hits_total",
				Help:      "Total number of cache hits",
			},
			[]string{"cache"},
		),

		missesTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: cfg.Namespace,
				Subsystem: cfg.Subsystem,
				Name:      "cache_misses_total",
				Help:      "Total number of cache misses",
			},
			[]string{"cache"},
		),

		lookupsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: cfg.Namespace,
				Subsystem: cfg.Subsystem,
				Name:      "cache_lookups_total",
				Help:      "Total number of cache lookups",
			},
			[]string{"cache"},
		),

		entries: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Namespace: cfg.Namespace,
				Subsystem: cfg.Subsystem,
				Name:      "cache_entries",
				Help:      "Current number of entries in cache",
			},
			[]string{"cache"},
		),
	}

	registry.MustRegister(
		cm.hitsTotal,
		cm.missesTotal,
		cm.lookupsTotal,
		cm.entries,
	)

	return cm
}

// RecordHits adds n cache hits.
func (cm *CacheMetrics) RecordHits(cacheName string, n int) {
	cm.hitsTotal.WithLabelValues(cacheName).Add(float64(n))
}

// RecordMisses adds n cache misses.
func (cm *CacheMetrics) RecordMisses(cacheName string, n int) {
	cm.missesTotal.WithLabelValues(cacheName).Add(float64(n))
}

// RecordResolved adds n lookups.
func (cm *CacheMetrics) RecordResolved(cacheName string, n int) {
	cm.lookupsTotal.WithLabelValues(cacheName).Add(float64(n))
}

// UpdateSize sets the current size of a cache.
func (cm *CacheMetrics) UpdateSize(cacheName string, size int) {
	cm.entries.WithLabelValues(cacheName).Set(float64(size))
}
