package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// LibraryMetrics tracks metrics related to the pattern library.
//
// Metrics:
//   - callisto_library_catalogs: Number of loaded catalogs
//   - callisto_library_patterns: Number of patterns per catalog
//   - callisto_library_reloads_total: Catalog reloads by trigger and status
//   - callisto_library_reload_duration_seconds: Reload duration histogram
type LibraryMetrics struct {
	// Number of loaded catalogs
	catalogs prometheus.Gauge

	// Number of patterns per catalog
	patterns *prometheus.GaugeVec

	// Catalog reloads by trigger and status
	reloadsTotal *prometheus.CounterVec

	// Reload duration histogram
	reloadDuration prometheus.Histogram
}

// NewLibraryMetrics creates and registers library metrics with the
// provided registry.
func NewLibraryMetrics(registry *prometheus.Registry) *LibraryMetrics {
	lm := &LibraryMetrics{
		catalogs: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Namespace: Namespace,
				Subsystem: "library",
				Name:      "catalogs",
				Help:      "Number of catalogs currently loaded",
			},
		),

		patterns: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Namespace: Namespace,
				Subsystem: "library",
				Name:      "patterns",
				Help:      "Number of patterns per loaded catalog",
			},
			[]string{"catalog"},
		),

		reloadsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: Namespace,
				Subsystem: "library",
				Name:      "reloads_total",
				Help:      "Total number of catalog reloads by trigger and status",
			},
			[]string{"trigger", "status"},
		),

		reloadDuration: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Namespace: Namespace,
				Subsystem: "library",
				Name:      "reload_duration_seconds",
				Help:      "Duration of catalog reloads in seconds",
				Buckets:   []float64{0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1.0, 5.0},
			},
		),
	}

	// Register all metrics
	registry.MustRegister(
		lm.catalogs,
		lm.patterns,
		lm.reloadsTotal,
		lm.reloadDuration,
	)

	return lm
}

// RecordReload records a catalog reload.
func (lm *LibraryMetrics) RecordReload(trigger, status string, duration time.Duration) {
	lm.reloadsTotal.WithLabelValues(trigger, status).Inc()
	lm.reloadDuration.Observe(duration.Seconds())
}

// UpdateCatalogCount updates the loaded catalog gauge.
func (lm *LibraryMetrics) UpdateCatalogCount(n int) {
	lm.catalogs.Set(float64(n))
}

// UpdatePatternCount updates the per-catalog pattern gauge.
func (lm *LibraryMetrics) UpdatePatternCount(catalog string, n int) {
	lm.patterns.WithLabelValues(catalog).Set(float64(n))
}

// ResetPatternCounts clears all per-catalog pattern gauges. Called
// before repopulating on reload so removed catalogs do not keep stale
// series.
func (lm *LibraryMetrics) ResetPatternCounts() {
	lm.patterns.Reset()
}
