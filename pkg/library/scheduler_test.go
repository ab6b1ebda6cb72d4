package library

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"
)

func TestRescanScheduler_Start(t *testing.T) {
	tests := []struct {
		name        string
		schedule    string
		wantRunning bool
		wantError   bool
	}{
		{
			name:        "valid daily schedule",
			schedule:    "0 3 * * *",
			wantRunning: true,
			wantError:   false,
		},
		{
			name:        "valid hourly schedule",
			schedule:    "0 * * * *",
			wantRunning: true,
			wantError:   false,
		},
		{
			name:        "interval descriptor",
			schedule:    "@every 1h",
			wantRunning: true,
			wantError:   false,
		},
		{
			name:        "empty schedule - no error, not running",
			schedule:    "",
			wantRunning: false,
			wantError:   false,
		},
		{
			name:        "invalid schedule",
			schedule:    "invalid cron",
			wantRunning: false,
			wantError:   true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			scheduler := NewRescanScheduler(tt.schedule, func() error { return nil }, nil)

			ctx, cancel := context.WithCancel(context.Background())
			defer cancel()

			err := scheduler.Start(ctx)

			if (err != nil) != tt.wantError {
				t.Errorf("Start() error = %v, wantError %v", err, tt.wantError)
			}

			if scheduler.IsRunning() != tt.wantRunning {
				t.Errorf("IsRunning() = %v, want %v", scheduler.IsRunning(), tt.wantRunning)
			}

			if tt.wantRunning {
				next := scheduler.NextRun()
				if next == nil {
					t.Error("NextRun() returned nil for running scheduler")
				}
			}

			scheduler.Stop()

			if scheduler.IsRunning() {
				t.Error("scheduler still running after Stop()")
			}
		})
	}
}

func TestRescanScheduler_ExecutesRescan(t *testing.T) {
	var rescanCount atomic.Int32

	scheduler := NewRescanScheduler("@every 100ms", func() error {
		rescanCount.Add(1)
		return nil
	}, nil)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if err := scheduler.Start(ctx); err != nil {
		t.Fatalf("Start() error = %v", err)
	}
	defer scheduler.Stop()

	time.Sleep(350 * time.Millisecond)

	if count := rescanCount.Load(); count < 2 {
		t.Errorf("rescan ran %d times in 350ms, want >= 2", count)
	}
}

func TestRescanScheduler_RescanFailure(t *testing.T) {
	var rescanCount atomic.Int32

	// A failing rescan is logged but does not stop the scheduler
	scheduler := NewRescanScheduler("@every 100ms", func() error {
		rescanCount.Add(1)
		return errors.New("rescan boom")
	}, nil)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if err := scheduler.Start(ctx); err != nil {
		t.Fatalf("Start() error = %v", err)
	}
	defer scheduler.Stop()

	time.Sleep(250 * time.Millisecond)

	if !scheduler.IsRunning() {
		t.Error("scheduler stopped after rescan failure, want running")
	}

	if rescanCount.Load() == 0 {
		t.Error("rescan was never called")
	}
}

func TestRescanScheduler_GracefulShutdown(t *testing.T) {
	scheduler := NewRescanScheduler("0 3 * * *", func() error { return nil }, nil)

	ctx, cancel := context.WithCancel(context.Background())

	if err := scheduler.Start(ctx); err != nil {
		t.Fatalf("Start() error = %v", err)
	}

	// Cancel context - should trigger shutdown
	cancel()

	// Wait a bit for graceful shutdown
	time.Sleep(100 * time.Millisecond)

	if scheduler.IsRunning() {
		t.Error("scheduler still running after context cancelled")
	}
}

func TestRescanScheduler_NextRun(t *testing.T) {
	scheduler := NewRescanScheduler("0 3 * * *", func() error { return nil }, nil)

	// Before starting, NextRun should return nil
	if next := scheduler.NextRun(); next != nil {
		t.Errorf("NextRun() before start = %v, want nil", next)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if err := scheduler.Start(ctx); err != nil {
		t.Fatalf("Start() error = %v", err)
	}
	defer scheduler.Stop()

	next := scheduler.NextRun()
	if next == nil {
		t.Fatal("NextRun() after start returned nil")
	}

	if !next.After(time.Now()) {
		t.Errorf("NextRun() = %v, want time in future", next)
	}
}

func TestRescanScheduler_StopWithoutStart(t *testing.T) {
	scheduler := NewRescanScheduler("0 3 * * *", func() error { return nil }, nil)

	// Stop before Start is a no-op
	scheduler.Stop()

	if scheduler.IsRunning() {
		t.Error("IsRunning() = true, want false")
	}
}
