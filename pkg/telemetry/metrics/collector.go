package metrics

import (
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Namespace is the Prometheus namespace for all Callisto metrics.
const Namespace = "callisto"

// Collector is the main orchestrator for all Prometheus metrics in
// Callisto. It manages metric registration and provides a unified
// interface for recording metrics across all components.
//
// A nil *Collector is valid and records nothing, so callers can thread
// one through unconditionally and only construct it when metrics are
// enabled (watch mode).
type Collector struct {
	registry *prometheus.Registry

	// Parse metrics
	parseMetrics *ParseMetrics

	// Library metrics
	libraryMetrics *LibraryMetrics

	// Report metrics
	reportMetrics *ReportMetrics

	// Cache metrics
	cacheMetrics *CacheMetrics

	// Cardinality tracking for the per-catalog label
	cardinalityLimiter *CardinalityLimiter
}

// NewCollector creates a new metrics collector with the specified
// Prometheus registry. If registry is nil, a fresh registry is used.
func NewCollector(registry *prometheus.Registry) *Collector {
	if registry == nil {
		registry = prometheus.NewRegistry()
	}

	c := &Collector{
		registry:           registry,
		cardinalityLimiter: NewCardinalityLimiter(1000),
	}

	// Initialize metric subsystems
	c.parseMetrics = NewParseMetrics(registry)
	c.libraryMetrics = NewLibraryMetrics(registry)
	c.reportMetrics = NewReportMetrics(registry)
	c.cacheMetrics = NewCacheMetrics(registry)

	return c
}

// RecordParse records metrics for a completed parse.
//
// Parameters:
//   - status: Parse status ("ok" or "error")
//   - duration: Parse duration
func (c *Collector) RecordParse(status string, duration time.Duration) {
	if c == nil {
		return
	}

	c.parseMetrics.RecordParse(status, duration)
}

// RecordParseError records a parse failure by error type
// ("syntax", "structural", "validation").
func (c *Collector) RecordParseError(errorType string) {
	if c == nil {
		return
	}

	c.parseMetrics.RecordError(errorType)
}

// RecordReload records a catalog reload.
//
// Parameters:
//   - trigger: What initiated the reload ("fsnotify", "rescan", "git", "initial")
//   - status: Reload outcome ("ok" or "error")
//   - duration: Reload duration
func (c *Collector) RecordReload(trigger, status string, duration time.Duration) {
	if c == nil {
		return
	}

	c.libraryMetrics.RecordReload(trigger, status, duration)
}

// UpdateCatalogCount updates the gauge of loaded catalogs.
func (c *Collector) UpdateCatalogCount(n int) {
	if c == nil {
		return
	}

	c.libraryMetrics.UpdateCatalogCount(n)
}

// UpdatePatternCount updates the per-catalog pattern gauge.
// The catalog label is cardinality-limited; catalogs beyond the limit
// are aggregated under "other".
func (c *Collector) UpdatePatternCount(catalog string, n int) {
	if c == nil {
		return
	}

	if !c.cardinalityLimiter.Allow("patterns:" + catalog) {
		catalog = "other"
	}
	c.libraryMetrics.UpdatePatternCount(catalog, n)
}

// ResetPatternCounts clears all per-catalog pattern gauges so a reload
// can repopulate them without leaving series for removed catalogs.
func (c *Collector) ResetPatternCounts() {
	if c == nil {
		return
	}

	c.libraryMetrics.ResetPatternCounts()
}

// RecordRun records a completed lint run by status
// ("passed" or "failed").
func (c *Collector) RecordRun(status string) {
	if c == nil {
		return
	}

	c.reportMetrics.RecordRun(status)
}

// RecordFindings records lint findings by severity
// ("error" or "warning").
func (c *Collector) RecordFindings(severity string, count int) {
	if c == nil {
		return
	}

	c.reportMetrics.RecordFindings(severity, count)
}

// RecordPrune records a retention prune and the number of runs removed.
func (c *Collector) RecordPrune(removed int64) {
	if c == nil {
		return
	}

	c.reportMetrics.RecordPrune(removed)
}

// RecordCacheHit records a parse cache hit for the named backend.
func (c *Collector) RecordCacheHit(backend string) {
	if c == nil {
		return
	}

	c.cacheMetrics.RecordHit(backend)
}

// RecordCacheMiss records a parse cache miss for the named backend.
func (c *Collector) RecordCacheMiss(backend string) {
	if c == nil {
		return
	}

	c.cacheMetrics.RecordMiss(backend)
}

// UpdateCacheEntries updates the entry-count gauge for the named backend.
func (c *Collector) UpdateCacheEntries(backend string, n int) {
	if c == nil {
		return
	}

	c.cacheMetrics.UpdateEntries(backend, n)
}

// RecordCacheEviction records a parse cache eviction for the named
// backend.
func (c *Collector) RecordCacheEviction(backend string) {
	if c == nil {
		return
	}

	c.cacheMetrics.RecordEviction(backend)
}

// Registry returns the Prometheus registry used by this collector.
func (c *Collector) Registry() *prometheus.Registry {
	return c.registry
}

// CardinalityLimiter prevents metric cardinality explosion by limiting
// the number of unique label combinations per metric.
type CardinalityLimiter struct {
	maxCardinality int
	current        map[string]struct{}
	mu             sync.RWMutex
}

// NewCardinalityLimiter creates a new cardinality limiter with the
// specified maximum cardinality.
func NewCardinalityLimiter(maxCardinality int) *CardinalityLimiter {
	return &CardinalityLimiter{
		maxCardinality: maxCardinality,
		current:        make(map[string]struct{}),
	}
}

// Allow checks if a label set is allowed. Returns true if the label set
// already exists or if the cardinality limit has not been reached yet.
func (cl *CardinalityLimiter) Allow(labelSet string) bool {
	cl.mu.RLock()
	if _, exists := cl.current[labelSet]; exists {
		cl.mu.RUnlock()
		return true
	}
	cl.mu.RUnlock()

	cl.mu.Lock()
	defer cl.mu.Unlock()

	// Double-check after acquiring write lock
	if _, exists := cl.current[labelSet]; exists {
		return true
	}

	if len(cl.current) >= cl.maxCardinality {
		return false
	}

	cl.current[labelSet] = struct{}{}
	return true
}

// Count returns the current cardinality.
func (cl *CardinalityLimiter) Count() int {
	cl.mu.RLock()
	defer cl.mu.RUnlock()
	return len(cl.current)
}
