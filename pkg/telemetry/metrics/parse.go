package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// ParseMetrics tracks metrics related to pattern parsing.
//
// Metrics:
//   - callisto_parse_total: Total parse count by status
//   - callisto_parse_duration_seconds: Parse duration histogram
//   - callisto_parse_errors_total: Parse failures by error type
type ParseMetrics struct {
	// Total parse count
	parsesTotal *prometheus.CounterVec

	// Parse duration histogram
	parseDuration prometheus.Histogram

	// Parse failures by error type
	errorsTotal *prometheus.CounterVec
}

// NewParseMetrics creates and registers parse metrics with the provided
// registry.
func NewParseMetrics(registry *prometheus.Registry) *ParseMetrics {
	pm := &ParseMetrics{
		parsesTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: Namespace,
				Name:      "parse_total",
				Help:      "Total number of patterns parsed",
			},
			[]string{"status"},
		),

		parseDuration: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Namespace: Namespace,
				Name:      "parse_duration_seconds",
				Help:      "Duration of pattern parses in seconds",
				// Parses run in microseconds; size buckets accordingly
				Buckets: []float64{0.00001, 0.000025, 0.00005, 0.0001, 0.00025, 0.0005, 0.001, 0.005, 0.025},
			},
		),

		errorsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: Namespace,
				Name:      "parse_errors_total",
				Help:      "Total number of parse failures by error type",
			},
			[]string{"type"},
		),
	}

	// Register all metrics
	registry.MustRegister(
		pm.parsesTotal,
		pm.parseDuration,
		pm.errorsTotal,
	)

	return pm
}

// RecordParse records a completed parse.
func (pm *ParseMetrics) RecordParse(status string, duration time.Duration) {
	pm.parsesTotal.WithLabelValues(status).Inc()
	pm.parseDuration.Observe(duration.Seconds())
}

// RecordError records a parse failure by error type.
func (pm *ParseMetrics) RecordError(errorType string) {
	pm.errorsTotal.WithLabelValues(errorType).Inc()
}
