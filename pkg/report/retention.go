package report

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/robfig/cron/v3"

	"mercator-hq/callisto/pkg/telemetry/metrics"
)

// archiveBatchSize is how many run headers are fetched per page when
// archiving before deletion.
const archiveBatchSize = 500

// RetentionConfig contains configuration for the retention pruner.
type RetentionConfig struct {
	// RetentionDays is the number of days to retain completed runs.
	// 0 means keep runs forever (no pruning).
	RetentionDays int

	// PruneSchedule is a cron expression ("0 3 * * *") or descriptor
	// ("@every 24h") for scheduling pruning. An empty schedule
	// disables automatic pruning; Prune can still be called directly.
	PruneSchedule string

	// ArchiveBeforeDelete enables archiving runs to JSON before
	// deletion.
	ArchiveBeforeDelete bool

	// ArchivePath is the directory to store archived runs.
	ArchivePath string
}

// DefaultRetentionConfig returns the default retention configuration.
func DefaultRetentionConfig() *RetentionConfig {
	return &RetentionConfig{
		RetentionDays:       90,
		PruneSchedule:       "0 3 * * *",
		ArchiveBeforeDelete: false,
		ArchivePath:         "data/archives/",
	}
}

// Pruner enforces the retention policy on stored runs. It can prune
// once via Prune or on a cron schedule via Start.
type Pruner struct {
	store   Store
	config  *RetentionConfig
	logger  *slog.Logger
	metrics *metrics.Collector

	cron    *cron.Cron
	mu      sync.Mutex
	running bool
}

// NewPruner creates a new retention pruner. The collector may be nil
// when metrics are not being served.
func NewPruner(store Store, config *RetentionConfig, logger *slog.Logger, collector *metrics.Collector) *Pruner {
	if config == nil {
		config = DefaultRetentionConfig()
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &Pruner{
		store:   store,
		config:  config,
		logger:  logger.With("component", "report.retention"),
		metrics: collector,
		cron:    cron.New(),
	}
}

// Prune deletes runs older than the retention period along with their
// records. Returns the number of runs deleted.
func (p *Pruner) Prune(ctx context.Context) (int64, error) {
	if p.config.RetentionDays <= 0 {
		p.logger.Debug("retention disabled, nothing to prune")
		return 0, nil
	}

	cutoff := time.Now().AddDate(0, 0, -p.config.RetentionDays)

	p.logger.Debug("pruning runs by age",
		"cutoff_time", cutoff,
		"retention_days", p.config.RetentionDays,
	)

	if p.config.ArchiveBeforeDelete {
		if err := p.archive(ctx, cutoff); err != nil {
			return 0, NewRetentionError(p.config.RetentionDays, err)
		}
	}

	deleted, err := p.store.DeleteRunsBefore(ctx, cutoff)
	if err != nil {
		return 0, NewRetentionError(p.config.RetentionDays, err)
	}

	p.metrics.RecordPrune(deleted)

	if deleted == 0 {
		p.logger.Debug("no runs pruned",
			"retention_days", p.config.RetentionDays,
		)
	} else {
		p.logger.Info("report pruning completed",
			"deleted_runs", deleted,
			"retention_days", p.config.RetentionDays,
		)
	}

	return deleted, nil
}

// archive exports every run that the coming deletion will remove to a
// timestamped JSON file.
func (p *Pruner) archive(ctx context.Context, cutoff time.Time) error {
	exports, err := p.collectExports(ctx, cutoff)
	if err != nil {
		return err
	}

	if len(exports) == 0 {
		p.logger.Debug("no runs to archive")
		return nil
	}

	if err := os.MkdirAll(p.config.ArchivePath, 0755); err != nil {
		return fmt.Errorf("failed to create archive directory: %w", err)
	}

	archiveFile := filepath.Join(p.config.ArchivePath,
		fmt.Sprintf("reports-%s.json", time.Now().Format("2006-01-02-150405")))
	f, err := os.Create(archiveFile)
	if err != nil {
		return fmt.Errorf("failed to create archive file: %w", err)
	}
	defer f.Close()

	exporter := NewJSONExporter(true)
	if err := exporter.ExportMany(ctx, exports, f); err != nil {
		return fmt.Errorf("failed to export runs to archive: %w", err)
	}

	p.logger.Info("runs archived before deletion",
		"archive_file", archiveFile,
		"run_count", len(exports),
	)

	return nil
}

// collectExports pages through all runs completed before the cutoff
// and bundles each with its records.
func (p *Pruner) collectExports(ctx context.Context, cutoff time.Time) ([]*RunExport, error) {
	var exports []*RunExport

	for offset := 0; ; offset += archiveBatchSize {
		runs, err := p.store.Runs(ctx, &Query{
			Until:  &cutoff,
			Limit:  archiveBatchSize,
			Offset: offset,
		})
		if err != nil {
			return nil, fmt.Errorf("failed to query runs for archiving: %w", err)
		}

		for _, run := range runs {
			records, err := p.store.Records(ctx, &Query{RunID: run.ID})
			if err != nil {
				return nil, fmt.Errorf("failed to query records for archiving: %w", err)
			}
			exports = append(exports, &RunExport{Run: run, Records: records})
		}

		if len(runs) < archiveBatchSize {
			return exports, nil
		}
	}
}

// Start begins scheduled pruning. If no schedule is configured, the
// pruner does nothing.
func (p *Pruner) Start(ctx context.Context) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.running {
		return fmt.Errorf("retention pruner already running")
	}

	if p.config.PruneSchedule == "" {
		p.logger.Info("prune schedule not configured, skipping scheduler")
		return nil
	}

	// Validate cron expression
	if _, err := cron.ParseStandard(p.config.PruneSchedule); err != nil {
		return fmt.Errorf("invalid prune schedule %q: %w", p.config.PruneSchedule, err)
	}

	_, err := p.cron.AddFunc(p.config.PruneSchedule, func() {
		p.runScheduledPrune(ctx)
	})
	if err != nil {
		return fmt.Errorf("failed to schedule pruning: %w", err)
	}

	p.cron.Start()
	p.running = true

	p.logger.Info("retention pruner started",
		"schedule", p.config.PruneSchedule,
		"retention_days", p.config.RetentionDays,
	)

	// Wait for context cancellation in background
	go func() {
		<-ctx.Done()
		p.Stop()
	}()

	return nil
}

// runScheduledPrune executes one pruning cycle.
func (p *Pruner) runScheduledPrune(ctx context.Context) {
	p.logger.Debug("starting scheduled report pruning")

	if _, err := p.Prune(ctx); err != nil {
		p.logger.Error("scheduled report pruning failed",
			"error", err,
		)
	}
}

// Stop stops the scheduler and waits for any running prune to
// complete.
func (p *Pruner) Stop() {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.cron != nil && p.running {
		ctx := p.cron.Stop()
		<-ctx.Done() // Wait for running jobs to finish
		p.running = false
		p.logger.Info("retention pruner stopped")
	}
}

// IsRunning returns true if the scheduler is running.
func (p *Pruner) IsRunning() bool {
	p.mu.Lock()
	defer p.mu.Unlock()

	return p.running
}

// NextPruning returns the time of the next scheduled pruning, or nil
// when the scheduler is not running.
func (p *Pruner) NextPruning() *time.Time {
	p.mu.Lock()
	defer p.mu.Unlock()

	if !p.running {
		return nil
	}

	entries := p.cron.Entries()
	if len(entries) == 0 {
		return nil
	}

	next := entries[0].Next
	return &next
}
