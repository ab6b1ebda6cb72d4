package main

import (
	"context"
	"fmt"
	"path/filepath"
	"testing"

	"mercator-hq/callisto/pkg/config"
	"mercator-hq/callisto/pkg/report"
)

func resetReportsFlags() {
	reportsFlags.backend = ""
	reportsFlags.since = 0
	reportsFlags.run = ""
	reportsFlags.onlyFailed = false
	reportsFlags.limit = 100
	reportsFlags.offset = 0
	reportsFlags.format = "text"
	reportsFlags.output = ""
	reportsFlags.olderThan = 0
	reportsFlags.archive = false
	reportsFlags.archiveDir = ""
}

func TestOpenReportStoreMemory(t *testing.T) {
	cfg := config.DefaultConfig()

	store, err := openReportStore(cfg, "memory")
	if err != nil {
		t.Fatalf("openReportStore(memory) returned error: %v", err)
	}
	defer store.Close()

	if store == nil {
		t.Fatal("openReportStore(memory) returned nil store")
	}
}

func TestOpenReportStoreSQLite(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.Reports.SQLitePath = filepath.Join(t.TempDir(), "data", "reports.db")

	store, err := openReportStore(cfg, "sqlite")
	if err != nil {
		t.Fatalf("openReportStore(sqlite) returned error: %v", err)
	}
	defer store.Close()
}

func TestOpenReportStoreUnknownBackend(t *testing.T) {
	cfg := config.DefaultConfig()

	_, err := openReportStore(cfg, "postgres")
	if err == nil {
		t.Error("openReportStore(postgres) should return error")
	}
}

func TestListRunsEmptyStore(t *testing.T) {
	config.SetConfig(config.DefaultConfig())
	resetReportsFlags()
	reportsFlags.backend = "memory"

	err := listRuns(nil, []string{})
	if err != nil {
		t.Errorf("listRuns() with empty store returned error: %v", err)
	}
}

func TestShowRunNotFound(t *testing.T) {
	config.SetConfig(config.DefaultConfig())
	resetReportsFlags()
	reportsFlags.backend = "memory"

	err := showRun(nil, []string{"00000000-0000-0000-0000-000000000000"})
	if err == nil {
		t.Error("showRun() for missing run should return error")
	}
}

func TestPruneRunsNoRetentionWindow(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.Reports.RetentionDays = 0
	config.SetConfig(cfg)
	resetReportsFlags()
	reportsFlags.backend = "memory"

	err := pruneRuns(nil, []string{})
	if err == nil {
		t.Error("pruneRuns() without retention window should return error")
	}
}

func TestAllRunRecordsPagination(t *testing.T) {
	store := report.NewMemoryStore()
	defer store.Close()

	ctx := context.Background()

	// Record more verdicts than the default query limit, so the
	// helper has to page.
	recorder := report.NewRecorder(store, report.DefaultConfig(), nil, nil)
	builder := recorder.Begin("file:patterns.txt")
	for i := 0; i < report.DefaultQueryLimit*2+50; i++ {
		builder.AddResult(fmt.Sprintf("p%d", i), "abc", nil, nil)
	}
	run, err := builder.Complete(ctx)
	if err != nil {
		t.Fatalf("Complete() returned error: %v", err)
	}

	records, err := allRunRecords(ctx, store, run.ID)
	if err != nil {
		t.Fatalf("allRunRecords() returned error: %v", err)
	}

	want := report.DefaultQueryLimit*2 + 50
	if len(records) != want {
		t.Errorf("allRunRecords() returned %d records, want %d", len(records), want)
	}
}

func TestCollectRunExports(t *testing.T) {
	resetReportsFlags()

	store := report.NewMemoryStore()
	defer store.Close()

	ctx := context.Background()
	recorder := report.NewRecorder(store, report.DefaultConfig(), nil, nil)

	var runIDs []string
	for i := 0; i < 3; i++ {
		builder := recorder.Begin("args")
		builder.AddResult("", "abc", nil, nil)
		builder.AddResult("", "(ab", []string{"unbalanced parenthesis"}, nil)
		run, err := builder.Complete(ctx)
		if err != nil {
			t.Fatalf("Complete() returned error: %v", err)
		}
		runIDs = append(runIDs, run.ID)
	}

	// All runs
	exports, err := collectRunExports(ctx, store)
	if err != nil {
		t.Fatalf("collectRunExports() returned error: %v", err)
	}
	if len(exports) != 3 {
		t.Errorf("collectRunExports() returned %d exports, want 3", len(exports))
	}
	for _, export := range exports {
		if len(export.Records) != 2 {
			t.Errorf("export for run %s has %d records, want 2", export.Run.ID, len(export.Records))
		}
	}

	// Single run
	reportsFlags.run = runIDs[1]
	exports, err = collectRunExports(ctx, store)
	if err != nil {
		t.Fatalf("collectRunExports() for single run returned error: %v", err)
	}
	if len(exports) != 1 {
		t.Fatalf("collectRunExports() returned %d exports, want 1", len(exports))
	}
	if exports[0].Run.ID != runIDs[1] {
		t.Errorf("export run ID = %s, want %s", exports[0].Run.ID, runIDs[1])
	}
}
