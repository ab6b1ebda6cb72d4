package report

import (
	"context"
	"fmt"
	"io"
	"time"
)

// Run represents one lint run: a batch of patterns checked together,
// with summary statistics across all verdicts.
type Run struct {
	// Identity
	ID string `json:"id"` // UUID v4

	// Timestamps
	StartedAt   time.Time `json:"started_at"`
	CompletedAt time.Time `json:"completed_at"`

	// Source names where the patterns came from, e.g. "args",
	// "file:patterns.txt", or "catalog:network".
	Source string `json:"source"`

	// Stats summarizes the verdicts.
	Stats RunStats `json:"stats"`
}

// RunStats summarizes verdicts across a run.
type RunStats struct {
	Patterns int `json:"patterns"` // Patterns checked
	Valid    int `json:"valid"`    // Patterns with no errors
	Invalid  int `json:"invalid"`  // Patterns with at least one error
	Errors   int `json:"errors"`   // Total error findings
	Warnings int `json:"warnings"` // Total warning findings
}

// Status returns "passed" when every pattern in the run was valid and
// "failed" otherwise.
func (r *Run) Status() string {
	if r.Stats.Invalid > 0 {
		return "failed"
	}
	return "passed"
}

// Duration returns how long the run took.
func (r *Run) Duration() time.Duration {
	return r.CompletedAt.Sub(r.StartedAt)
}

// Record is the verdict for a single pattern within a run.
type Record struct {
	// Identity
	ID    string `json:"id"`     // UUID v4
	RunID string `json:"run_id"` // Owning run

	// PatternName is the catalog entry name when the pattern came from
	// a catalog; empty for ad-hoc patterns.
	PatternName string `json:"pattern_name,omitempty"`

	// Pattern is the pattern text exactly as submitted.
	Pattern string `json:"pattern"`

	// Valid is true when the pattern produced no errors. Warnings do
	// not make a pattern invalid.
	Valid bool `json:"valid"`

	// Findings, rendered as display strings.
	Errors   []string `json:"errors,omitempty"`
	Warnings []string `json:"warnings,omitempty"`

	CreatedAt time.Time `json:"created_at"`
}

// Query defines filter parameters for report queries. Zero values
// mean "no filter".
type Query struct {
	// RunID restricts results to a single run.
	RunID string `json:"run_id,omitempty"`

	// PatternName filters records by catalog entry name.
	PatternName string `json:"pattern_name,omitempty"`

	// Since keeps only runs started, or records created, at or after
	// this time.
	Since *time.Time `json:"since,omitempty"`

	// Until keeps only runs completed, or records created, strictly
	// before this time. The retention pruner uses it to select exactly
	// the runs it is about to delete.
	Until *time.Time `json:"until,omitempty"`

	// OnlyInvalid keeps only failed verdicts.
	OnlyInvalid bool `json:"only_invalid,omitempty"`

	// Pagination
	Limit  int `json:"limit,omitempty"`  // Max results to return
	Offset int `json:"offset,omitempty"` // Skip N results
}

// Validate checks the query for impossible parameters.
func (q *Query) Validate() error {
	if q == nil {
		return fmt.Errorf("query cannot be nil")
	}
	if q.Limit < 0 {
		return fmt.Errorf("limit cannot be negative: %d", q.Limit)
	}
	if q.Offset < 0 {
		return fmt.Errorf("offset cannot be negative: %d", q.Offset)
	}
	return nil
}

// DefaultQueryLimit is applied when a query does not set a limit.
const DefaultQueryLimit = 100

// Store defines the interface for report storage backends.
// Implementations must be safe for concurrent use.
type Store interface {
	// StoreRun persists a completed run header.
	StoreRun(ctx context.Context, run *Run) error

	// StoreRecords persists per-pattern verdicts. Records from one run
	// are written together so a run is never half-stored.
	StoreRecords(ctx context.Context, records []*Record) error

	// GetRun retrieves a single run by ID. Returns an error wrapping
	// ErrRunNotFound when no such run exists.
	GetRun(ctx context.Context, id string) (*Run, error)

	// Runs retrieves run headers matching the query, newest first.
	Runs(ctx context.Context, query *Query) ([]*Run, error)

	// Records retrieves verdicts matching the query in the order the
	// patterns were checked.
	Records(ctx context.Context, query *Query) ([]*Record, error)

	// CountRuns returns the number of runs matching the query filters.
	CountRuns(ctx context.Context, query *Query) (int64, error)

	// DeleteRunsBefore removes runs completed before the cutoff along
	// with their records. Returns the number of runs deleted.
	// Used for retention policy enforcement.
	DeleteRunsBefore(ctx context.Context, cutoff time.Time) (int64, error)

	// Close releases any resources held by the storage backend.
	Close() error
}

// Exporter defines the interface for rendering a run to an output
// stream.
type Exporter interface {
	// Export writes a run and its records to the provided writer in
	// the exporter's format.
	Export(ctx context.Context, export *RunExport, w io.Writer) error
}

// RunExport bundles a run header with its records for export.
type RunExport struct {
	Run     *Run      `json:"run"`
	Records []*Record `json:"records"`
}
