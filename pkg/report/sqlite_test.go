package report

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"
)

// createTempStore creates a temporary SQLite report store for testing.
func createTempStore(t *testing.T) (*SQLiteStore, string) {
	t.Helper()

	tmpDir := t.TempDir()
	dbPath := filepath.Join(tmpDir, "reports.db")

	config := &SQLiteConfig{
		Path:         dbPath,
		MaxOpenConns: 5,
		MaxIdleConns: 2,
		WALMode:      true,
		BusyTimeout:  5 * time.Second,
	}

	store, err := NewSQLiteStore(config)
	if err != nil {
		t.Fatalf("Failed to create SQLite store: %v", err)
	}

	return store, dbPath
}

// TestSQLiteStore_Initialize tests database initialization.
func TestSQLiteStore_Initialize(t *testing.T) {
	store, dbPath := createTempStore(t)
	defer store.Close()

	// Verify database file was created
	if _, err := os.Stat(dbPath); os.IsNotExist(err) {
		t.Error("Database file was not created")
	}

	// Verify schema version
	var version int
	if err := store.db.QueryRow(GetSchemaVersion).Scan(&version); err != nil {
		t.Fatalf("Failed to read schema version: %v", err)
	}
	if version != SchemaVersion {
		t.Errorf("Schema version = %d, want %d", version, SchemaVersion)
	}
}

// TestSQLiteStore_StoreAndGetRun tests storing and retrieving a run.
func TestSQLiteStore_StoreAndGetRun(t *testing.T) {
	store, _ := createTempStore(t)
	defer store.Close()

	ctx := context.Background()
	now := time.Now().UTC().Truncate(time.Millisecond)

	run := createTestRun("run-1", now)
	run.Source = "catalog:network"
	run.Stats = RunStats{Patterns: 4, Valid: 3, Invalid: 1, Errors: 2, Warnings: 1}

	if err := store.StoreRun(ctx, run); err != nil {
		t.Fatalf("StoreRun() failed: %v", err)
	}

	got, err := store.GetRun(ctx, "run-1")
	if err != nil {
		t.Fatalf("GetRun() failed: %v", err)
	}

	if got.ID != "run-1" {
		t.Errorf("GetRun() ID = %q, want %q", got.ID, "run-1")
	}
	if got.Source != "catalog:network" {
		t.Errorf("GetRun() Source = %q, want %q", got.Source, "catalog:network")
	}
	if got.Stats != run.Stats {
		t.Errorf("GetRun() Stats = %+v, want %+v", got.Stats, run.Stats)
	}
	if !got.CompletedAt.Equal(run.CompletedAt) {
		t.Errorf("GetRun() CompletedAt = %v, want %v", got.CompletedAt, run.CompletedAt)
	}
}

// TestSQLiteStore_GetRunNotFound tests the missing-run error.
func TestSQLiteStore_GetRunNotFound(t *testing.T) {
	store, _ := createTempStore(t)
	defer store.Close()

	_, err := store.GetRun(context.Background(), "no-such-run")
	if err == nil {
		t.Fatal("GetRun() expected error for missing run")
	}
	if !errors.Is(err, ErrRunNotFound) {
		t.Errorf("GetRun() error = %v, want ErrRunNotFound", err)
	}
}

// TestSQLiteStore_RunsFiltersAndOrder tests run queries.
func TestSQLiteStore_RunsFiltersAndOrder(t *testing.T) {
	store, _ := createTempStore(t)
	defer store.Close()

	ctx := context.Background()
	now := time.Now().UTC().Truncate(time.Millisecond)

	oldRun := createTestRun("run-old", now.Add(-2*time.Hour))
	midRun := createTestRun("run-mid", now.Add(-1*time.Hour))
	midRun.Stats.Invalid = 1
	newRun := createTestRun("run-new", now)

	for _, run := range []*Run{oldRun, midRun, newRun} {
		if err := store.StoreRun(ctx, run); err != nil {
			t.Fatalf("StoreRun() failed: %v", err)
		}
	}

	// Newest first
	results, err := store.Runs(ctx, &Query{})
	if err != nil {
		t.Fatalf("Runs() failed: %v", err)
	}
	if len(results) != 3 {
		t.Fatalf("Expected 3 runs, got %d", len(results))
	}
	if results[0].ID != "run-new" || results[2].ID != "run-old" {
		t.Errorf("Runs() order = [%s, %s, %s], want newest first",
			results[0].ID, results[1].ID, results[2].ID)
	}

	// Filter by start time
	since := now.Add(-90 * time.Minute)
	results, err = store.Runs(ctx, &Query{Since: &since})
	if err != nil {
		t.Fatalf("Runs() failed: %v", err)
	}
	if len(results) != 2 {
		t.Errorf("Runs(Since) returned %d results, want 2", len(results))
	}

	// Filter by completion cutoff
	until := now.Add(-30 * time.Minute)
	results, err = store.Runs(ctx, &Query{Until: &until})
	if err != nil {
		t.Fatalf("Runs() failed: %v", err)
	}
	if len(results) != 2 {
		t.Errorf("Runs(Until) returned %d results, want 2", len(results))
	}

	// Filter by verdict
	results, err = store.Runs(ctx, &Query{OnlyInvalid: true})
	if err != nil {
		t.Fatalf("Runs() failed: %v", err)
	}
	if len(results) != 1 || results[0].ID != "run-mid" {
		t.Errorf("Runs(OnlyInvalid) returned %d results, want just run-mid", len(results))
	}

	// Pagination
	results, err = store.Runs(ctx, &Query{Limit: 1, Offset: 1})
	if err != nil {
		t.Fatalf("Runs() failed: %v", err)
	}
	if len(results) != 1 || results[0].ID != "run-mid" {
		t.Errorf("Runs(Limit, Offset) returned %d results, want just run-mid", len(results))
	}
}

// TestSQLiteStore_RecordsRoundTrip tests storing and querying verdicts
// with their finding lists.
func TestSQLiteStore_RecordsRoundTrip(t *testing.T) {
	store, _ := createTempStore(t)
	defer store.Close()

	ctx := context.Background()
	now := time.Now().UTC().Truncate(time.Millisecond)

	clean := createTestRecord("rec-clean", "run-1", now)
	clean.PatternName = "word"

	broken := createTestRecord("rec-broken", "run-1", now.Add(time.Second))
	broken.Pattern = "(a|b"
	broken.Valid = false
	broken.Errors = []string{"unclosed group", "unexpected end of pattern"}
	broken.Warnings = []string{"nested repetition"}

	if err := store.StoreRecords(ctx, []*Record{clean, broken}); err != nil {
		t.Fatalf("StoreRecords() failed: %v", err)
	}

	results, err := store.Records(ctx, &Query{RunID: "run-1"})
	if err != nil {
		t.Fatalf("Records() failed: %v", err)
	}
	if len(results) != 2 {
		t.Fatalf("Expected 2 records, got %d", len(results))
	}

	// Oldest first
	if results[0].ID != "rec-clean" {
		t.Errorf("Records()[0] = %q, want %q", results[0].ID, "rec-clean")
	}
	if len(results[0].Errors) != 0 {
		t.Errorf("Clean record has %d errors, want 0", len(results[0].Errors))
	}

	got := results[1]
	if got.Pattern != "(a|b" {
		t.Errorf("Pattern = %q, want %q", got.Pattern, "(a|b")
	}
	if got.Valid {
		t.Error("Broken record should not be valid")
	}
	if len(got.Errors) != 2 || got.Errors[0] != "unclosed group" {
		t.Errorf("Errors = %v, want the stored finding list", got.Errors)
	}
	if len(got.Warnings) != 1 || got.Warnings[0] != "nested repetition" {
		t.Errorf("Warnings = %v, want the stored finding list", got.Warnings)
	}
	if !got.CreatedAt.Equal(broken.CreatedAt) {
		t.Errorf("CreatedAt = %v, want %v", got.CreatedAt, broken.CreatedAt)
	}

	// Filter by verdict
	results, err = store.Records(ctx, &Query{RunID: "run-1", OnlyInvalid: true})
	if err != nil {
		t.Fatalf("Records() failed: %v", err)
	}
	if len(results) != 1 || results[0].ID != "rec-broken" {
		t.Errorf("Records(OnlyInvalid) returned %d results, want just rec-broken", len(results))
	}
}

// TestSQLiteStore_CountRuns tests counting with filters.
func TestSQLiteStore_CountRuns(t *testing.T) {
	store, _ := createTempStore(t)
	defer store.Close()

	ctx := context.Background()
	now := time.Now().UTC().Truncate(time.Millisecond)

	passed := createTestRun("run-passed", now)
	failed := createTestRun("run-failed", now.Add(-time.Hour))
	failed.Stats.Invalid = 1

	for _, run := range []*Run{passed, failed} {
		if err := store.StoreRun(ctx, run); err != nil {
			t.Fatalf("StoreRun() failed: %v", err)
		}
	}

	count, err := store.CountRuns(ctx, &Query{})
	if err != nil {
		t.Fatalf("CountRuns() failed: %v", err)
	}
	if count != 2 {
		t.Errorf("CountRuns() = %d, want 2", count)
	}

	count, err = store.CountRuns(ctx, &Query{OnlyInvalid: true})
	if err != nil {
		t.Fatalf("CountRuns() failed: %v", err)
	}
	if count != 1 {
		t.Errorf("CountRuns(OnlyInvalid) = %d, want 1", count)
	}
}

// TestSQLiteStore_DeleteRunsBefore tests age-based deletion including
// the owned records.
func TestSQLiteStore_DeleteRunsBefore(t *testing.T) {
	store, _ := createTempStore(t)
	defer store.Close()

	ctx := context.Background()
	now := time.Now().UTC().Truncate(time.Millisecond)

	oldRun := createTestRun("run-old", now.AddDate(0, 0, -10))
	newRun := createTestRun("run-new", now)

	for _, run := range []*Run{oldRun, newRun} {
		if err := store.StoreRun(ctx, run); err != nil {
			t.Fatalf("StoreRun() failed: %v", err)
		}
	}
	records := []*Record{
		createTestRecord("rec-old", "run-old", now.AddDate(0, 0, -10)),
		createTestRecord("rec-new", "run-new", now),
	}
	if err := store.StoreRecords(ctx, records); err != nil {
		t.Fatalf("StoreRecords() failed: %v", err)
	}

	deleted, err := store.DeleteRunsBefore(ctx, now.AddDate(0, 0, -7))
	if err != nil {
		t.Fatalf("DeleteRunsBefore() failed: %v", err)
	}
	if deleted != 1 {
		t.Errorf("DeleteRunsBefore() = %d, want 1", deleted)
	}

	// The old run and its records are gone
	if _, err := store.GetRun(ctx, "run-old"); !errors.Is(err, ErrRunNotFound) {
		t.Errorf("GetRun(run-old) error = %v, want ErrRunNotFound", err)
	}
	results, err := store.Records(ctx, &Query{RunID: "run-old"})
	if err != nil {
		t.Fatalf("Records() failed: %v", err)
	}
	if len(results) != 0 {
		t.Errorf("Expected 0 records for deleted run, got %d", len(results))
	}

	// The recent run survives with its record
	if _, err := store.GetRun(ctx, "run-new"); err != nil {
		t.Errorf("GetRun(run-new) failed: %v", err)
	}
	results, err = store.Records(ctx, &Query{RunID: "run-new"})
	if err != nil {
		t.Fatalf("Records() failed: %v", err)
	}
	if len(results) != 1 {
		t.Errorf("Expected 1 record for surviving run, got %d", len(results))
	}
}

// TestSQLiteStore_Persistence tests that data survives closing and
// reopening the store.
func TestSQLiteStore_Persistence(t *testing.T) {
	store, dbPath := createTempStore(t)
	ctx := context.Background()

	now := time.Now().UTC().Truncate(time.Millisecond)
	run := createTestRun("run-1", now)
	if err := store.StoreRun(ctx, run); err != nil {
		t.Fatalf("StoreRun() failed: %v", err)
	}
	if err := store.Close(); err != nil {
		t.Fatalf("Close() failed: %v", err)
	}

	// Reopen the same file
	reopened, err := NewSQLiteStore(&SQLiteConfig{
		Path:         dbPath,
		MaxOpenConns: 5,
		MaxIdleConns: 2,
		WALMode:      true,
		BusyTimeout:  5 * time.Second,
	})
	if err != nil {
		t.Fatalf("Failed to reopen store: %v", err)
	}
	defer reopened.Close()

	got, err := reopened.GetRun(ctx, "run-1")
	if err != nil {
		t.Fatalf("GetRun() after reopen failed: %v", err)
	}
	if got.ID != "run-1" {
		t.Errorf("GetRun() ID = %q, want %q", got.ID, "run-1")
	}
}

// TestSQLiteStore_CloseIdempotent tests that Close is safe to call
// more than once.
func TestSQLiteStore_CloseIdempotent(t *testing.T) {
	store, _ := createTempStore(t)

	if err := store.Close(); err != nil {
		t.Fatalf("Close() failed: %v", err)
	}
	if err := store.Close(); err != nil {
		t.Errorf("Second Close() failed: %v", err)
	}
}
