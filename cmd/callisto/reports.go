package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"mercator-hq/callisto/pkg/cli"
	"mercator-hq/callisto/pkg/config"
	"mercator-hq/callisto/pkg/report"
)

var reportsFlags struct {
	backend    string
	since      time.Duration
	run        string
	onlyFailed bool
	limit      int
	offset     int
	format     string
	output     string
	olderThan  int
	archive    bool
	archiveDir string
}

var reportsCmd = &cobra.Command{
	Use:   "reports",
	Short: "Query recorded lint runs",
	Long: `Query and export recorded lint runs.

The reports command provides access to the report store: every lint
run recorded with its per-pattern verdicts.

Subcommands:
  list   - List recorded runs
  show   - Show one run with its verdicts
  export - Export runs to JSON or CSV
  prune  - Delete runs older than the retention window

Examples:
  # List the last 24 hours
  callisto reports list --since 24h

  # Show one run
  callisto reports show 2f0c5c9e-8a7b-4f5e-9a1c-3d2e1f0a9b8c

  # Export failed runs to a file
  callisto reports export --since 168h --format csv --output runs.csv

  # Prune runs older than 30 days
  callisto reports prune --older-than 30`,
}

var reportsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List recorded runs",
	Long: `List recorded lint runs, newest first.

Examples:
  # List recent runs
  callisto reports list --since 24h

  # Only failed runs
  callisto reports list --only-failed

  # Page through history
  callisto reports list --limit 20 --offset 20

  # Output as JSON
  callisto reports list --format json`,
	RunE: listRuns,
}

var reportsShowCmd = &cobra.Command{
	Use:   "show <run-id>",
	Short: "Show one run with its verdicts",
	Long: `Show one recorded run and the verdict for every pattern in it.

Examples:
  # Show a run
  callisto reports show 2f0c5c9e-8a7b-4f5e-9a1c-3d2e1f0a9b8c

  # Output as JSON
  callisto reports show 2f0c5c9e-8a7b-4f5e-9a1c-3d2e1f0a9b8c --format json`,
	Args: cobra.ExactArgs(1),
	RunE: showRun,
}

var reportsExportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export runs to JSON or CSV",
	Long: `Export recorded runs with their verdicts.

Examples:
  # Export everything to JSON
  callisto reports export --output runs.json

  # Export one run
  callisto reports export --run 2f0c5c9e-8a7b-4f5e-9a1c-3d2e1f0a9b8c

  # Export the last week as CSV
  callisto reports export --since 168h --format csv --output runs.csv`,
	RunE: exportRuns,
}

var reportsPruneCmd = &cobra.Command{
	Use:   "prune",
	Short: "Delete runs older than the retention window",
	Long: `Delete recorded runs older than the retention window, along with
their verdicts. With --archive the runs are exported to a JSON file
before deletion.

Examples:
  # Prune with the configured retention
  callisto reports prune

  # Prune runs older than 30 days
  callisto reports prune --older-than 30

  # Archive before deleting
  callisto reports prune --older-than 30 --archive --archive-dir backups/`,
	RunE: pruneRuns,
}

func init() {
	rootCmd.AddCommand(reportsCmd)
	reportsCmd.AddCommand(reportsListCmd, reportsShowCmd, reportsExportCmd, reportsPruneCmd)

	reportsCmd.PersistentFlags().StringVar(&reportsFlags.backend, "backend", "", "backend: sqlite, memory (uses config if not specified)")
	reportsCmd.PersistentFlags().StringVar(&reportsFlags.format, "format", "text", "output format: text, json")

	// Flags for list command
	reportsListCmd.Flags().DurationVar(&reportsFlags.since, "since", 0, "only runs started within this duration (e.g. 24h)")
	reportsListCmd.Flags().BoolVar(&reportsFlags.onlyFailed, "only-failed", false, "only runs with invalid patterns")
	reportsListCmd.Flags().IntVar(&reportsFlags.limit, "limit", 100, "max results")
	reportsListCmd.Flags().IntVar(&reportsFlags.offset, "offset", 0, "pagination offset")

	// Flags for export command
	reportsExportCmd.Flags().StringVar(&reportsFlags.run, "run", "", "export a single run by ID")
	reportsExportCmd.Flags().DurationVar(&reportsFlags.since, "since", 0, "only runs started within this duration")
	reportsExportCmd.Flags().StringVarP(&reportsFlags.output, "output", "o", "", "output file (default: stdout)")

	// Flags for prune command
	reportsPruneCmd.Flags().IntVar(&reportsFlags.olderThan, "older-than", 0, "delete runs older than this many days (default: configured retention)")
	reportsPruneCmd.Flags().BoolVar(&reportsFlags.archive, "archive", false, "archive runs to JSON before deleting")
	reportsPruneCmd.Flags().StringVar(&reportsFlags.archiveDir, "archive-dir", "", "archive directory (default: data/archives/)")
}

func listRuns(cmd *cobra.Command, args []string) error {
	cfg, err := loadRuntimeConfig()
	if err != nil {
		return err
	}

	store, err := openReportStore(cfg, reportsFlags.backend)
	if err != nil {
		return cli.NewCommandError("reports", err)
	}
	defer store.Close()

	query := &report.Query{
		OnlyInvalid: reportsFlags.onlyFailed,
		Limit:       reportsFlags.limit,
		Offset:      reportsFlags.offset,
	}
	if reportsFlags.since > 0 {
		since := time.Now().Add(-reportsFlags.since)
		query.Since = &since
	}

	ctx := context.Background()
	runs, err := store.Runs(ctx, query)
	if err != nil {
		return cli.NewCommandError("reports", fmt.Errorf("query failed: %w", err))
	}
	total, err := store.CountRuns(ctx, query)
	if err != nil {
		return cli.NewCommandError("reports", fmt.Errorf("count failed: %w", err))
	}

	if reportsFlags.format == "json" {
		encoder := json.NewEncoder(os.Stdout)
		encoder.SetIndent("", "  ")
		return encoder.Encode(map[string]interface{}{
			"total_runs": total,
			"runs":       runs,
		})
	}

	fmt.Printf("Total runs: %d\n\n", total)

	if len(runs) == 0 {
		fmt.Println("No runs found.")
		return nil
	}

	for i, run := range runs {
		if i > 0 {
			fmt.Println()
		}

		printRunHeader(run)

		// Show limited output for large result sets
		if i >= 9 && len(runs) > 10 {
			remaining := len(runs) - 10
			fmt.Println()
			fmt.Printf("... and %d more runs\n", remaining)
			fmt.Printf("Use --limit and --offset for pagination.\n")
			break
		}
	}

	return nil
}

func showRun(cmd *cobra.Command, args []string) error {
	cfg, err := loadRuntimeConfig()
	if err != nil {
		return err
	}

	store, err := openReportStore(cfg, reportsFlags.backend)
	if err != nil {
		return cli.NewCommandError("reports", err)
	}
	defer store.Close()

	ctx := context.Background()
	run, err := store.GetRun(ctx, args[0])
	if err != nil {
		return cli.NewCommandError("reports", err)
	}
	records, err := allRunRecords(ctx, store, run.ID)
	if err != nil {
		return cli.NewCommandError("reports", fmt.Errorf("query failed: %w", err))
	}

	if reportsFlags.format == "json" {
		encoder := json.NewEncoder(os.Stdout)
		encoder.SetIndent("", "  ")
		return encoder.Encode(&report.RunExport{Run: run, Records: records})
	}

	printRunHeader(run)
	fmt.Println()
	fmt.Printf("Verdicts (%d):\n", len(records))

	for i, record := range records {
		marker := "✓"
		if !record.Valid {
			marker = "✗"
		}
		if record.PatternName != "" {
			fmt.Printf("%d. %s %s %q\n", i+1, marker, record.PatternName, record.Pattern)
		} else {
			fmt.Printf("%d. %s %q\n", i+1, marker, record.Pattern)
		}
		for _, msg := range record.Errors {
			fmt.Printf("     Error: %s\n", msg)
		}
		for _, msg := range record.Warnings {
			fmt.Printf("     Warning: %s\n", msg)
		}
	}

	return nil
}

func exportRuns(cmd *cobra.Command, args []string) error {
	cfg, err := loadRuntimeConfig()
	if err != nil {
		return err
	}

	store, err := openReportStore(cfg, reportsFlags.backend)
	if err != nil {
		return cli.NewCommandError("reports", err)
	}
	defer store.Close()

	ctx := context.Background()
	exports, err := collectRunExports(ctx, store)
	if err != nil {
		return cli.NewCommandError("reports", err)
	}

	// Output destination
	var output *os.File
	if reportsFlags.output != "" {
		output, err = os.Create(reportsFlags.output)
		if err != nil {
			return fmt.Errorf("failed to create output file: %w", err)
		}
		defer output.Close()
	} else {
		output = os.Stdout
	}

	switch reportsFlags.format {
	case "csv":
		for i, export := range exports {
			exporter := report.NewCSVExporter(i == 0)
			if err := exporter.Export(ctx, export, output); err != nil {
				return cli.NewCommandError("reports", err)
			}
		}
		return nil
	default:
		exporter := report.NewJSONExporter(true)
		if err := exporter.ExportMany(ctx, exports, output); err != nil {
			return cli.NewCommandError("reports", err)
		}
		return nil
	}
}

func pruneRuns(cmd *cobra.Command, args []string) error {
	cfg, err := loadRuntimeConfig()
	if err != nil {
		return err
	}

	days := reportsFlags.olderThan
	if days == 0 {
		days = cfg.Reports.RetentionDays
	}
	if days <= 0 {
		return fmt.Errorf("retention window must be positive (set --older-than or reports.retention_days)")
	}

	store, err := openReportStore(cfg, reportsFlags.backend)
	if err != nil {
		return cli.NewCommandError("reports", err)
	}
	defer store.Close()

	retentionCfg := report.DefaultRetentionConfig()
	retentionCfg.RetentionDays = days
	retentionCfg.ArchiveBeforeDelete = reportsFlags.archive
	if reportsFlags.archiveDir != "" {
		retentionCfg.ArchivePath = reportsFlags.archiveDir
	}

	pruner := report.NewPruner(store, retentionCfg, quietLogger(), nil)

	deleted, err := pruner.Prune(context.Background())
	if err != nil {
		return cli.NewCommandError("reports", err)
	}

	fmt.Printf("✓ Pruned %d run(s) older than %d days\n", deleted, days)
	if reportsFlags.archive && deleted > 0 {
		fmt.Printf("  Archived to %s\n", retentionCfg.ArchivePath)
	}

	return nil
}

// Helper functions

// openReportStore creates the report store selected by the backend
// override, or the configured one. The parent directory of a SQLite
// store is created when missing.
func openReportStore(cfg *config.Config, backendOverride string) (report.Store, error) {
	backend := backendOverride
	if backend == "" {
		backend = cfg.Reports.Backend
	}

	switch backend {
	case "sqlite":
		if dir := filepath.Dir(cfg.Reports.SQLitePath); dir != "." {
			if err := os.MkdirAll(dir, 0755); err != nil {
				return nil, fmt.Errorf("failed to create report directory: %w", err)
			}
		}
		sqliteConfig := report.DefaultSQLiteConfig()
		sqliteConfig.Path = cfg.Reports.SQLitePath
		store, err := report.NewSQLiteStore(sqliteConfig)
		if err != nil {
			return nil, fmt.Errorf("failed to create SQLite report store: %w", err)
		}
		return store, nil
	case "memory":
		return report.NewMemoryStore(), nil
	default:
		return nil, fmt.Errorf("unsupported report backend: %s (supported: sqlite, memory)", backend)
	}
}

// collectRunExports gathers the runs selected by the export flags with
// their records. Store queries without an explicit limit are capped at
// DefaultQueryLimit, so exports page through the full result set.
func collectRunExports(ctx context.Context, store report.Store) ([]*report.RunExport, error) {
	var runs []*report.Run

	if reportsFlags.run != "" {
		run, err := store.GetRun(ctx, reportsFlags.run)
		if err != nil {
			return nil, err
		}
		runs = []*report.Run{run}
	} else {
		query := report.Query{Limit: report.DefaultQueryLimit}
		if reportsFlags.since > 0 {
			since := time.Now().Add(-reportsFlags.since)
			query.Since = &since
		}
		for {
			page, err := store.Runs(ctx, &query)
			if err != nil {
				return nil, fmt.Errorf("query failed: %w", err)
			}
			runs = append(runs, page...)
			if len(page) < query.Limit {
				break
			}
			query.Offset += query.Limit
		}
	}

	exports := make([]*report.RunExport, 0, len(runs))
	for _, run := range runs {
		records, err := allRunRecords(ctx, store, run.ID)
		if err != nil {
			return nil, fmt.Errorf("query failed for run %s: %w", run.ID, err)
		}
		exports = append(exports, &report.RunExport{Run: run, Records: records})
	}

	return exports, nil
}

// allRunRecords pages through every verdict of one run.
func allRunRecords(ctx context.Context, store report.Store, runID string) ([]*report.Record, error) {
	var records []*report.Record
	query := report.Query{RunID: runID, Limit: report.DefaultQueryLimit}
	for {
		page, err := store.Records(ctx, &query)
		if err != nil {
			return nil, err
		}
		records = append(records, page...)
		if len(page) < query.Limit {
			return records, nil
		}
		query.Offset += query.Limit
	}
}

// printRunHeader renders one run in the text listing.
func printRunHeader(run *report.Run) {
	fmt.Printf("Run ID: %s\n", run.ID)
	fmt.Printf("Started: %s\n", run.StartedAt.Format(time.RFC3339))
	fmt.Printf("Source: %s\n", run.Source)
	fmt.Printf("Status: %s\n", run.Status())
	fmt.Printf("Patterns: %d (%d valid, %d invalid)\n",
		run.Stats.Patterns, run.Stats.Valid, run.Stats.Invalid)
	if run.Stats.Errors > 0 || run.Stats.Warnings > 0 {
		fmt.Printf("Findings: %d error(s), %d warning(s)\n",
			run.Stats.Errors, run.Stats.Warnings)
	}
}
