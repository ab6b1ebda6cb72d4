package git

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"sync"
	"time"
)

// ReloadCallback is called when catalogs need reloading. It receives
// the local catalog directory and should load and validate all
// catalogs from it. A returned error triggers rollback of the checkout
// to the previous commit.
type ReloadCallback func(catalogPath string) error

// Poller monitors a git catalog source for changes and triggers
// reloads. It polls for new commits and reloads only when catalog
// files (.yaml, .yml) changed. If a reload fails, the checkout is
// rolled back so the files on disk keep matching the catalogs being
// served.
type Poller struct {
	source        *Source
	pollInterval  time.Duration
	stopCh        chan struct{}
	reloadFn      ReloadCallback
	lastCommitSHA string
	mu            sync.RWMutex
	running       bool
	logger        *slog.Logger
	metrics       *PollerMetrics
}

// PollerMetrics tracks poller operation metrics.
type PollerMetrics struct {
	PollCount         int64
	SuccessfulReloads int64
	FailedReloads     int64
	LastReloadTime    time.Time
	LastReloadDur     time.Duration
	SkippedPolls      int64 // Changes that touched no catalog files
}

// NewPoller creates a new change poller for the given source.
// The reloadFn callback is called when catalog files change.
func NewPoller(source *Source, interval time.Duration, reloadFn ReloadCallback) *Poller {
	return &Poller{
		source:       source,
		pollInterval: interval,
		reloadFn:     reloadFn,
		stopCh:       make(chan struct{}),
		logger:       slog.Default(),
		metrics:      &PollerMetrics{},
	}
}

// SetLogger sets a custom logger for the poller.
func (p *Poller) SetLogger(logger *slog.Logger) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.logger = logger
}

// Start begins polling for changes in the repository.
// It starts a background goroutine that polls at the configured
// interval. The context is used for cancellation.
func (p *Poller) Start(ctx context.Context) error {
	p.mu.Lock()
	if p.running {
		p.mu.Unlock()
		return fmt.Errorf("poller already running")
	}

	// Initial commit SHA
	commit, err := p.source.CurrentCommit()
	if err != nil {
		p.mu.Unlock()
		return fmt.Errorf("failed to get initial commit: %w", err)
	}
	p.lastCommitSHA = commit.SHA
	p.running = true
	p.mu.Unlock()

	p.logger.Info("catalog poller started",
		"poll_interval", p.pollInterval,
		"initial_commit", shortSHA(p.lastCommitSHA))

	go p.pollLoop(ctx)

	return nil
}

// Stop gracefully stops the poller.
func (p *Poller) Stop() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if !p.running {
		return fmt.Errorf("poller not running")
	}

	p.logger.Info("stopping catalog poller")
	close(p.stopCh)
	p.running = false

	return nil
}

// IsRunning returns true if the poller is currently running.
func (p *Poller) IsRunning() bool {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.running
}

// pollLoop runs the main change detection loop.
func (p *Poller) pollLoop(ctx context.Context) {
	ticker := time.NewTicker(p.pollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			p.logger.Info("catalog poller stopped by context cancellation")
			return
		case <-p.stopCh:
			p.logger.Info("catalog poller stopped by Stop()")
			return
		case <-ticker.C:
			if err := p.checkForChanges(ctx); err != nil {
				p.logger.Error("error checking for catalog changes",
					"error", err)
			}
		}
	}
}

// checkForChanges pulls the remote and reloads if catalog files
// changed. Non-catalog commits advance the tracked SHA without a
// reload so the same commit is not re-checked every interval.
func (p *Poller) checkForChanges(ctx context.Context) error {
	p.metrics.PollCount++

	result, err := p.source.Pull(ctx)
	if err != nil {
		return fmt.Errorf("failed to pull: %w", err)
	}

	if !result.HadChanges {
		return nil
	}

	p.logger.Info("detected catalog repository changes",
		"from_sha", shortSHA(result.FromSHA),
		"to_sha", shortSHA(result.ToSHA),
		"changed_files", len(result.ChangedFiles))

	if !p.hasCatalogFileChanges(result.ChangedFiles) {
		p.metrics.SkippedPolls++
		p.logger.Info("no catalog files changed, skipping reload",
			"changed_files", result.ChangedFiles)
		p.mu.Lock()
		p.lastCommitSHA = result.ToSHA
		p.mu.Unlock()
		return nil
	}

	return p.performReload(ctx, result.ToSHA)
}

// hasCatalogFileChanges checks if any catalog files changed.
func (p *Poller) hasCatalogFileChanges(files []string) bool {
	for _, file := range files {
		ext := filepath.Ext(file)
		if ext == ".yaml" || ext == ".yml" {
			return true
		}
	}
	return false
}

// performReload executes the reload and rolls the checkout back if it
// fails.
func (p *Poller) performReload(ctx context.Context, newSHA string) error {
	start := time.Now()
	defer func() {
		p.metrics.LastReloadDur = time.Since(start)
		p.metrics.LastReloadTime = time.Now()
	}()

	p.logger.Info("reloading catalogs", "commit_sha", shortSHA(newSHA))

	catalogPath := p.source.CatalogPath()

	if err := p.reloadFn(catalogPath); err != nil {
		p.metrics.FailedReloads++

		p.mu.RLock()
		previousSHA := p.lastCommitSHA
		p.mu.RUnlock()

		p.logger.Error("catalog validation failed, rolling back checkout",
			"error", err,
			"current_sha", shortSHA(newSHA),
			"rollback_to", shortSHA(previousSHA))

		if rollbackErr := p.source.Rollback(ctx, previousSHA); rollbackErr != nil {
			p.logger.Error("rollback failed",
				"error", rollbackErr,
				"target_sha", shortSHA(previousSHA))
			return fmt.Errorf("validation failed and rollback failed: %w (rollback: %v)", err, rollbackErr)
		}

		p.logger.Info("rolled back to previous commit",
			"sha", shortSHA(previousSHA))
		return fmt.Errorf("catalog validation failed: %w", err)
	}

	p.mu.Lock()
	oldSHA := p.lastCommitSHA
	p.lastCommitSHA = newSHA
	p.mu.Unlock()

	p.metrics.SuccessfulReloads++
	p.logger.Info("catalogs reloaded",
		"from_sha", shortSHA(oldSHA),
		"to_sha", shortSHA(newSHA),
		"duration", p.metrics.LastReloadDur)

	return nil
}

// ForceCheck immediately checks for changes without waiting for the
// next poll interval.
func (p *Poller) ForceCheck(ctx context.Context) error {
	p.mu.RLock()
	if !p.running {
		p.mu.RUnlock()
		return fmt.Errorf("poller not running")
	}
	p.mu.RUnlock()

	p.logger.Info("force checking for catalog changes")
	return p.checkForChanges(ctx)
}

// LastCommitSHA returns the SHA of the currently active commit, the
// one catalogs were last successfully loaded from.
func (p *Poller) LastCommitSHA() string {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.lastCommitSHA
}

// Metrics returns a copy of the current poller metrics.
func (p *Poller) Metrics() PollerMetrics {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return *p.metrics
}

// shortSHA truncates a commit SHA for log output.
func shortSHA(sha string) string {
	if len(sha) > 8 {
		return sha[:8]
	}
	return sha
}
