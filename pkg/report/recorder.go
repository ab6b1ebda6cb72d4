package report

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"mercator-hq/callisto/pkg/telemetry/logging"
	"mercator-hq/callisto/pkg/telemetry/metrics"
)

// Config contains configuration for the run recorder.
type Config struct {
	// Enabled enables run recording. When disabled, Complete returns
	// the finished run without persisting anything.
	Enabled bool

	// WriteTimeout is the timeout for writing a run to storage.
	// Default: 5 seconds
	WriteTimeout time.Duration

	// MaxMessageLength is the maximum length for stored finding
	// messages before truncation.
	// Default: 500
	MaxMessageLength int
}

// DefaultConfig returns the default recorder configuration.
func DefaultConfig() *Config {
	return &Config{
		Enabled:          true,
		WriteTimeout:     5 * time.Second,
		MaxMessageLength: 500,
	}
}

// Recorder records lint runs through a Store. One recorder serves any
// number of runs; each run is accumulated in its own RunBuilder.
type Recorder struct {
	store   Store
	config  *Config
	logger  *slog.Logger
	metrics *metrics.Collector
}

// NewRecorder creates a new run recorder with the provided storage
// backend. The collector may be nil when metrics are not being served.
func NewRecorder(store Store, config *Config, logger *slog.Logger, collector *metrics.Collector) *Recorder {
	if config == nil {
		config = DefaultConfig()
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &Recorder{
		store:   store,
		config:  config,
		logger:  logger.With("component", "report.recorder"),
		metrics: collector,
	}
}

// Begin starts a new run. The source names where the patterns come
// from, e.g. "args", "file:patterns.txt", or "catalog:network".
func (r *Recorder) Begin(source string) *RunBuilder {
	return &RunBuilder{
		recorder: r,
		run: &Run{
			ID:        uuid.New().String(),
			StartedAt: time.Now(),
			Source:    source,
		},
	}
}

// RunBuilder accumulates per-pattern verdicts for a run in progress.
// AddResult may be called from multiple goroutines; Complete must be
// called exactly once.
type RunBuilder struct {
	recorder *Recorder
	mu       sync.Mutex
	run      *Run
	records  []*Record
	done     bool
}

// RunID returns the identifier of the run being built.
func (b *RunBuilder) RunID() string {
	return b.run.ID
}

// AddResult appends the verdict for one pattern. The pattern is valid
// when errs is empty; warnings never make a pattern invalid.
func (b *RunBuilder) AddResult(patternName, pattern string, errs, warnings []string) {
	b.mu.Lock()
	defer b.mu.Unlock()

	maxLen := b.recorder.config.MaxMessageLength

	record := &Record{
		ID:          uuid.New().String(),
		RunID:       b.run.ID,
		PatternName: patternName,
		Pattern:     pattern,
		Valid:       len(errs) == 0,
		Errors:      truncateAll(errs, maxLen),
		Warnings:    truncateAll(warnings, maxLen),
		CreatedAt:   time.Now(),
	}
	b.records = append(b.records, record)

	b.run.Stats.Patterns++
	if record.Valid {
		b.run.Stats.Valid++
	} else {
		b.run.Stats.Invalid++
	}
	b.run.Stats.Errors += len(errs)
	b.run.Stats.Warnings += len(warnings)
}

// Complete finalizes the run and writes it with all of its records.
// The returned run is valid even when the write fails, so callers can
// still print the summary.
func (b *RunBuilder) Complete(ctx context.Context) (*Run, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.done {
		return nil, NewRecorderError(b.run.ID, fmt.Errorf("run already completed"))
	}
	b.done = true
	b.run.CompletedAt = time.Now()

	r := b.recorder
	r.recordMetrics(b.run)

	if !r.config.Enabled {
		return b.run, nil
	}

	ctx = logging.WithRunID(ctx, b.run.ID)
	logger := logging.FromContext(ctx, r.logger)

	writeCtx, cancel := context.WithTimeout(ctx, r.config.WriteTimeout)
	defer cancel()

	start := time.Now()

	if err := r.store.StoreRun(writeCtx, b.run); err != nil {
		logger.Error("failed to store run", "error", err)
		return b.run, NewRecorderError(b.run.ID, err)
	}
	if err := r.store.StoreRecords(writeCtx, b.records); err != nil {
		logger.Error("failed to store run records", "error", err)
		return b.run, NewRecorderError(b.run.ID, err)
	}

	logger.Info("lint run recorded",
		"source", b.run.Source,
		"patterns", b.run.Stats.Patterns,
		"invalid", b.run.Stats.Invalid,
		"status", b.run.Status(),
		"write_ms", time.Since(start).Milliseconds(),
	)

	return b.run, nil
}

// recordMetrics publishes run outcome metrics. Safe on a nil
// collector.
func (r *Recorder) recordMetrics(run *Run) {
	r.metrics.RecordRun(run.Status())
	r.metrics.RecordFindings("error", run.Stats.Errors)
	r.metrics.RecordFindings("warning", run.Stats.Warnings)
}

// truncateAll truncates every message to maxLen, appending an ellipsis
// to anything cut.
func truncateAll(messages []string, maxLen int) []string {
	if len(messages) == 0 {
		return nil
	}

	out := make([]string, len(messages))
	for i, m := range messages {
		out[i] = TruncateString(m, maxLen)
	}
	return out
}

// TruncateString truncates a string to the specified maximum length.
// If the string is longer than maxLen, it is truncated and "..." is
// appended.
func TruncateString(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}

	if maxLen <= 3 {
		return s[:maxLen]
	}

	return s[:maxLen-3] + "..."
}
