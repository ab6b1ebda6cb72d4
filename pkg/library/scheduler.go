package library

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
)

// RescanScheduler re-lists the catalog directory on a cron schedule.
// It exists for hosts where file notifications are unavailable or
// unreliable (NFS mounts, some containers): the scheduled rescan picks
// up changes the fsnotify watcher would have delivered.
type RescanScheduler struct {
	schedule string
	rescan   func() error
	cron     *cron.Cron
	mu       sync.Mutex
	logger   *slog.Logger
	running  bool
}

// NewRescanScheduler creates a new rescan scheduler. The schedule is a
// cron expression ("0 * * * *") or a descriptor ("@every 30s"). An
// empty schedule disables the scheduler.
func NewRescanScheduler(schedule string, rescan func() error, logger *slog.Logger) *RescanScheduler {
	if logger == nil {
		logger = slog.Default()
	}
	return &RescanScheduler{
		schedule: schedule,
		rescan:   rescan,
		cron:     cron.New(),
		logger:   logger.With("component", "library.rescan"),
	}
}

// Start begins scheduled rescanning. If no schedule is configured, the
// scheduler does nothing.
func (s *RescanScheduler) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.schedule == "" {
		s.logger.Info("rescan schedule not configured, skipping scheduler")
		return nil
	}

	// Validate cron expression
	if _, err := cron.ParseStandard(s.schedule); err != nil {
		return fmt.Errorf("invalid cron schedule %q: %w", s.schedule, err)
	}

	_, err := s.cron.AddFunc(s.schedule, func() {
		s.runRescan()
	})
	if err != nil {
		return fmt.Errorf("failed to schedule rescan: %w", err)
	}

	s.cron.Start()
	s.running = true

	s.logger.Info("catalog rescan scheduler started",
		"schedule", s.schedule,
	)

	// Wait for context cancellation in background
	go func() {
		<-ctx.Done()
		s.Stop()
	}()

	return nil
}

// runRescan executes one rescan cycle.
func (s *RescanScheduler) runRescan() {
	s.logger.Debug("starting scheduled catalog rescan")

	if err := s.rescan(); err != nil {
		s.logger.Error("scheduled catalog rescan failed",
			"error", err,
		)
		return
	}

	s.logger.Debug("scheduled catalog rescan completed")
}

// Stop stops the scheduler and waits for any running jobs to complete.
func (s *RescanScheduler) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.cron != nil && s.running {
		ctx := s.cron.Stop()
		<-ctx.Done() // Wait for running jobs to finish
		s.running = false
		s.logger.Info("catalog rescan scheduler stopped")
	}
}

// IsRunning returns true if the scheduler is running.
func (s *RescanScheduler) IsRunning() bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.running
}

// NextRun returns the next scheduled rescan time.
func (s *RescanScheduler) NextRun() *time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.cron == nil {
		return nil
	}

	entries := s.cron.Entries()
	if len(entries) == 0 {
		return nil
	}

	next := entries[0].Next
	return &next
}
