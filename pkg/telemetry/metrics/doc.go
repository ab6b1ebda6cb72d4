// Package metrics provides Prometheus metrics collection for Callisto.
//
// # Overview
//
// The Collector orchestrates metric subsystems for parsing, the pattern
// library, lint run reports, and the parse cache. Metrics are registered
// against an explicit prometheus.Registry rather than the global default,
// so tests and embedders stay isolated.
//
// A nil *Collector records nothing; components accept one unconditionally
// and the watch command constructs it only when the metrics endpoint is
// enabled.
//
// # Metrics
//
//	callisto_parse_total{status}
//	callisto_parse_duration_seconds
//	callisto_parse_errors_total{type}
//	callisto_library_catalogs
//	callisto_library_patterns{catalog}
//	callisto_library_reloads_total{trigger,status}
//	callisto_library_reload_duration_seconds
//	callisto_report_runs_total{status}
//	callisto_report_findings_total{severity}
//	callisto_report_prunes_total
//	callisto_report_pruned_runs_total
//	callisto_cache_hits_total{backend}
//	callisto_cache_misses_total{backend}
//	callisto_cache_entries{backend}
//	callisto_cache_evictions_total{backend}
//
// # Cardinality
//
// The per-catalog pattern gauge is the one label with unbounded input
// (catalog names from disk or git). A CardinalityLimiter caps it; label
// sets beyond the cap are aggregated under "other".
//
// # Usage
//
//	collector := metrics.NewCollector(nil)
//	collector.RecordParse("ok", 12*time.Microsecond)
//	collector.RecordReload("fsnotify", "ok", 40*time.Millisecond)
//
//	http.Handle("/metrics", collector.Handler())
package metrics
