// Package report provides durable records of lint runs. Every run
// captures which patterns were linted, the verdict for each one, and
// summary statistics, so results can be listed, exported, and audited
// after the fact.
//
// # Architecture
//
// The report system consists of three layers:
//
//  1. Recorder - Builds a run from per-pattern verdicts
//  2. Store - Persists runs and records (memory, SQLite)
//  3. Exporters - Render stored runs as JSON or CSV
//
// # Recording Flow
//
//	builder := recorder.Begin("file:patterns.txt")
//	for _, p := range patterns {
//	    builder.AddResult(p.Name, p.Text, errs, warnings)
//	}
//	run, err := builder.Complete(ctx)
//
// Complete finalizes the statistics and writes the run with all of its
// records in one shot. Nothing is persisted for abandoned builders.
//
// # Querying
//
//	runs, err := store.Runs(ctx, &report.Query{
//	    Since: &cutoff,
//	    Limit: 20,
//	})
//
//	records, err := store.Records(ctx, &report.Query{
//	    RunID:       run.ID,
//	    OnlyInvalid: true,
//	})
//
// # Retention
//
// Old runs can be pruned automatically on a cron schedule:
//
//	pruner := report.NewPruner(store, &report.RetentionConfig{
//	    RetentionDays: 90,
//	    PruneSchedule: "0 3 * * *", // Daily at 3 AM
//	}, logger, collector)
//
//	pruner.Start(ctx)
//	defer pruner.Stop()
//
// # Storage Backends
//
// Two Store implementations ship with the package: MemoryStore for
// tests and ephemeral use, and SQLiteStore for durable storage with
// WAL mode and prepared statements. Custom backends can be added by
// satisfying the Store interface.
//
// # Thread Safety
//
// Stores are safe for concurrent use. A RunBuilder may be shared
// across goroutines adding results; Complete must be called once.
package report
