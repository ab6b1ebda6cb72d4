package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// CacheMetrics tracks metrics related to the parse cache.
//
// Metrics:
//   - callisto_cache_hits_total: Cache hits by backend
//   - callisto_cache_misses_total: Cache misses by backend
//   - callisto_cache_entries: Current entry count by backend
//   - callisto_cache_evictions_total: Evictions by backend
type CacheMetrics struct {
	// Cache hits by backend
	hitsTotal *prometheus.CounterVec

	// Cache misses by backend
	missesTotal *prometheus.CounterVec

	// Current entry count by backend
	entries *prometheus.GaugeVec

	// Evictions by backend
	evictionsTotal *prometheus.CounterVec
}

// NewCacheMetrics creates and registers cache metrics with the provided
// registry.
func NewCacheMetrics(registry *prometheus.Registry) *CacheMetrics {
	cm := &CacheMetrics{
		hitsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: Namespace,
				Subsystem: "cache",
				Name:      "hits_total",
				Help:      "Total number of parse cache hits",
			},
			[]string{"backend"},
		),

		missesTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: Namespace,
				Subsystem: "cache",
				Name:      "misses_total",
				Help:      "Total number of parse cache misses",
			},
			[]string{"backend"},
		),

		entries: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Namespace: Namespace,
				Subsystem: "cache",
				Name:      "entries",
				Help:      "Current number of parse cache entries",
			},
			[]string{"backend"},
		),

		evictionsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: Namespace,
				Subsystem: "cache",
				Name:      "evictions_total",
				Help:      "Total number of parse cache evictions",
			},
			[]string{"backend"},
		),
	}

	// Register all metrics
	registry.MustRegister(
		cm.hitsTotal,
		cm.missesTotal,
		cm.entries,
		cm.evictionsTotal,
	)

	return cm
}

// RecordHit records a cache hit.
func (cm *CacheMetrics) RecordHit(backend string) {
	cm.hitsTotal.WithLabelValues(backend).Inc()
}

// RecordMiss records a cache miss.
func (cm *CacheMetrics) RecordMiss(backend string) {
	cm.missesTotal.WithLabelValues(backend).Inc()
}

// UpdateEntries updates the entry-count gauge.
func (cm *CacheMetrics) UpdateEntries(backend string, n int) {
	cm.entries.WithLabelValues(backend).Set(float64(n))
}

// RecordEviction records a cache eviction.
func (cm *CacheMetrics) RecordEviction(backend string) {
	cm.evictionsTotal.WithLabelValues(backend).Inc()
}
