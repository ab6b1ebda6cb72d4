package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// ReportMetrics tracks metrics related to lint run reports.
//
// Metrics:
//   - callisto_report_runs_total: Completed lint runs by status
//   - callisto_report_findings_total: Lint findings by severity
//   - callisto_report_pruned_runs_total: Runs removed by the retention pruner
type ReportMetrics struct {
	// Completed lint runs by status
	runsTotal *prometheus.CounterVec

	// Lint findings by severity
	findingsTotal *prometheus.CounterVec

	// Retention prune executions
	prunesTotal prometheus.Counter

	// Runs removed by the retention pruner
	prunedRunsTotal prometheus.Counter
}

// NewReportMetrics creates and registers report metrics with the
// provided registry.
func NewReportMetrics(registry *prometheus.Registry) *ReportMetrics {
	rm := &ReportMetrics{
		runsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: Namespace,
				Subsystem: "report",
				Name:      "runs_total",
				Help:      "Total number of completed lint runs by status",
			},
			[]string{"status"},
		),

		findingsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: Namespace,
				Subsystem: "report",
				Name:      "findings_total",
				Help:      "Total number of lint findings by severity",
			},
			[]string{"severity"},
		),

		prunesTotal: prometheus.NewCounter(
			prometheus.CounterOpts{
				Namespace: Namespace,
				Subsystem: "report",
				Name:      "prunes_total",
				Help:      "Total number of retention prune executions",
			},
		),

		prunedRunsTotal: prometheus.NewCounter(
			prometheus.CounterOpts{
				Namespace: Namespace,
				Subsystem: "report",
				Name:      "pruned_runs_total",
				Help:      "Total number of runs removed by the retention pruner",
			},
		),
	}

	// Register all metrics
	registry.MustRegister(
		rm.runsTotal,
		rm.findingsTotal,
		rm.prunesTotal,
		rm.prunedRunsTotal,
	)

	return rm
}

// RecordRun records a completed lint run.
func (rm *ReportMetrics) RecordRun(status string) {
	rm.runsTotal.WithLabelValues(status).Inc()
}

// RecordFindings records lint findings by severity.
func (rm *ReportMetrics) RecordFindings(severity string, count int) {
	if count > 0 {
		rm.findingsTotal.WithLabelValues(severity).Add(float64(count))
	}
}

// RecordPrune records a retention prune and the number of runs removed.
func (rm *ReportMetrics) RecordPrune(removed int64) {
	rm.prunesTotal.Inc()
	if removed > 0 {
		rm.prunedRunsTotal.Add(float64(removed))
	}
}
