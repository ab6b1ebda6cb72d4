package report

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"log/slog"
	"sync"
	"time"

	_ "github.com/mattn/go-sqlite3"
)

// SQLiteConfig contains configuration for the SQLite report store.
type SQLiteConfig struct {
	// Path is the database file path.
	Path string

	// MaxOpenConns is the maximum number of open connections to the database.
	// Default: 10
	MaxOpenConns int

	// MaxIdleConns is the maximum number of idle connections.
	// Default: 5
	MaxIdleConns int

	// WALMode enables Write-Ahead Logging mode for better concurrency.
	// Default: true
	WALMode bool

	// BusyTimeout is the duration to wait when the database is locked.
	// Default: 5 seconds
	BusyTimeout time.Duration
}

// DefaultSQLiteConfig returns the default SQLite configuration.
func DefaultSQLiteConfig() *SQLiteConfig {
	return &SQLiteConfig{
		Path:         "data/reports.db",
		MaxOpenConns: 10,
		MaxIdleConns: 5,
		WALMode:      true,
		BusyTimeout:  5 * time.Second,
	}
}

// SQLiteStore implements the Store interface using SQLite.
type SQLiteStore struct {
	db        *sql.DB
	config    *SQLiteConfig
	stmts     map[string]*sql.Stmt
	closeOnce sync.Once
	closeErr  error
	logger    *slog.Logger
}

// NewSQLiteStore creates a new SQLite report store. It initializes the
// database schema and enables WAL mode if configured.
func NewSQLiteStore(config *SQLiteConfig) (*SQLiteStore, error) {
	if config == nil {
		config = DefaultSQLiteConfig()
	}

	logger := slog.Default().With("component", "report.sqlite")

	db, err := sql.Open("sqlite3", config.Path)
	if err != nil {
		return nil, NewStorageError("sqlite", "open", err)
	}

	db.SetMaxOpenConns(config.MaxOpenConns)
	db.SetMaxIdleConns(config.MaxIdleConns)

	s := &SQLiteStore{
		db:     db,
		config: config,
		stmts:  make(map[string]*sql.Stmt),
		logger: logger,
	}

	if err := s.initialize(); err != nil {
		db.Close()
		return nil, err
	}

	logger.Info("SQLite report store initialized",
		"path", config.Path,
		"wal_mode", config.WALMode,
		"max_open_conns", config.MaxOpenConns,
	)

	return s, nil
}

// initialize sets up the database schema, enables WAL mode, and
// prepares the insert statements.
func (s *SQLiteStore) initialize() error {
	if s.config.WALMode {
		if _, err := s.db.Exec("PRAGMA journal_mode=WAL;"); err != nil {
			return NewStorageError("sqlite", "enable_wal", err)
		}
		s.logger.Debug("WAL mode enabled")
	}

	busyTimeoutMs := s.config.BusyTimeout.Milliseconds()
	if _, err := s.db.Exec(fmt.Sprintf("PRAGMA busy_timeout=%d;", busyTimeoutMs)); err != nil {
		return NewStorageError("sqlite", "set_busy_timeout", err)
	}

	if _, err := s.db.Exec(Schema); err != nil {
		return NewStorageError("sqlite", "create_schema", err)
	}
	s.logger.Debug("database schema created")

	if _, err := s.db.Exec(InsertSchemaVersion, SchemaVersion); err != nil {
		return NewStorageError("sqlite", "insert_schema_version", err)
	}

	var version int
	err := s.db.QueryRow(GetSchemaVersion).Scan(&version)
	if err != nil && err != sql.ErrNoRows {
		return NewStorageError("sqlite", "get_schema_version", err)
	}

	if version != SchemaVersion {
		return NewStorageError("sqlite", "schema_version_mismatch",
			fmt.Errorf("expected schema version %d, got %d", SchemaVersion, version))
	}

	for name, query := range map[string]string{
		"insert_run":    insertRunStmt,
		"insert_record": insertRecordStmt,
	} {
		stmt, err := s.db.Prepare(query)
		if err != nil {
			return NewStorageError("sqlite", "prepare_"+name, err)
		}
		s.stmts[name] = stmt
	}

	return nil
}

// StoreRun persists a run header to the database.
func (s *SQLiteStore) StoreRun(ctx context.Context, run *Run) error {
	if run == nil || run.ID == "" {
		return NewStorageError("sqlite", "store_run", fmt.Errorf("run must have an ID"))
	}

	_, err := s.stmts["insert_run"].ExecContext(ctx,
		run.ID, run.StartedAt, run.CompletedAt, run.Source,
		run.Stats.Patterns, run.Stats.Valid, run.Stats.Invalid,
		run.Stats.Errors, run.Stats.Warnings,
	)
	if err != nil {
		return NewStorageError("sqlite", "store_run", err)
	}

	return nil
}

// StoreRecords persists per-pattern verdicts in a single transaction,
// so a run is never half-stored.
func (s *SQLiteStore) StoreRecords(ctx context.Context, records []*Record) error {
	if len(records) == 0 {
		return nil
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return NewStorageError("sqlite", "store_records", err)
	}

	stmt := tx.StmtContext(ctx, s.stmts["insert_record"])

	for _, record := range records {
		if record == nil || record.RunID == "" {
			tx.Rollback()
			return NewStorageError("sqlite", "store_records", fmt.Errorf("record must reference a run"))
		}

		errs, _ := json.Marshal(record.Errors)
		warnings, _ := json.Marshal(record.Warnings)

		_, err := stmt.ExecContext(ctx,
			record.ID, record.RunID, record.PatternName, record.Pattern,
			record.Valid, string(errs), string(warnings), record.CreatedAt,
		)
		if err != nil {
			tx.Rollback()
			return NewStorageError("sqlite", "store_records", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return NewStorageError("sqlite", "store_records", err)
	}

	return nil
}

// GetRun retrieves a single run by ID.
func (s *SQLiteStore) GetRun(ctx context.Context, id string) (*Run, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, started_at, completed_at, source,
		        patterns, valid, invalid, errors, warnings
		 FROM runs WHERE id = ?`, id)

	run, err := scanRun(row)
	if err == sql.ErrNoRows {
		return nil, NewStorageError("sqlite", "get_run", fmt.Errorf("run %s: %w", id, ErrRunNotFound))
	}
	if err != nil {
		return nil, NewStorageError("sqlite", "get_run", err)
	}

	return run, nil
}

// Runs retrieves run headers matching the query, newest first.
func (s *SQLiteStore) Runs(ctx context.Context, query *Query) ([]*Run, error) {
	if err := query.Validate(); err != nil {
		return nil, NewStorageError("sqlite", "query_runs", err)
	}

	whereClause, args := buildRunWhereClause(query)

	sqlQuery := `SELECT id, started_at, completed_at, source,
	                    patterns, valid, invalid, errors, warnings
	             FROM runs`
	if whereClause != "" {
		sqlQuery += " WHERE " + whereClause
	}
	sqlQuery += " ORDER BY started_at DESC"
	sqlQuery += limitClause(query)

	rows, err := s.db.QueryContext(ctx, sqlQuery, args...)
	if err != nil {
		return nil, NewStorageError("sqlite", "query_runs", err)
	}
	defer rows.Close()

	runs := []*Run{}
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, NewStorageError("sqlite", "scan_run", err)
		}
		runs = append(runs, run)
	}

	if err := rows.Err(); err != nil {
		return nil, NewStorageError("sqlite", "query_runs", err)
	}

	return runs, nil
}

// Records retrieves verdicts matching the query in the order the
// patterns were checked.
func (s *SQLiteStore) Records(ctx context.Context, query *Query) ([]*Record, error) {
	if err := query.Validate(); err != nil {
		return nil, NewStorageError("sqlite", "query_records", err)
	}

	whereClause, args := buildRecordWhereClause(query)

	sqlQuery := `SELECT id, run_id, pattern_name, pattern, valid,
	                    errors, warnings, created_at
	             FROM records`
	if whereClause != "" {
		sqlQuery += " WHERE " + whereClause
	}
	sqlQuery += " ORDER BY created_at ASC"
	sqlQuery += limitClause(query)

	rows, err := s.db.QueryContext(ctx, sqlQuery, args...)
	if err != nil {
		return nil, NewStorageError("sqlite", "query_records", err)
	}
	defer rows.Close()

	records := []*Record{}
	for rows.Next() {
		record, err := scanRecord(rows)
		if err != nil {
			return nil, NewStorageError("sqlite", "scan_record", err)
		}
		records = append(records, record)
	}

	if err := rows.Err(); err != nil {
		return nil, NewStorageError("sqlite", "query_records", err)
	}

	return records, nil
}

// CountRuns returns the number of runs matching the query filters.
func (s *SQLiteStore) CountRuns(ctx context.Context, query *Query) (int64, error) {
	if err := query.Validate(); err != nil {
		return 0, NewStorageError("sqlite", "count_runs", err)
	}

	whereClause, args := buildRunWhereClause(query)

	sqlQuery := "SELECT COUNT(*) FROM runs"
	if whereClause != "" {
		sqlQuery += " WHERE " + whereClause
	}

	var count int64
	if err := s.db.QueryRowContext(ctx, sqlQuery, args...).Scan(&count); err != nil {
		return 0, NewStorageError("sqlite", "count_runs", err)
	}

	return count, nil
}

// DeleteRunsBefore removes runs completed before the cutoff along with
// their records. Returns the number of runs deleted.
func (s *SQLiteStore) DeleteRunsBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, NewStorageError("sqlite", "delete_runs", err)
	}

	// Records first, while the owning run rows still identify them
	_, err = tx.ExecContext(ctx,
		"DELETE FROM records WHERE run_id IN (SELECT id FROM runs WHERE completed_at < ?)", cutoff)
	if err != nil {
		tx.Rollback()
		return 0, NewStorageError("sqlite", "delete_records", err)
	}

	result, err := tx.ExecContext(ctx, "DELETE FROM runs WHERE completed_at < ?", cutoff)
	if err != nil {
		tx.Rollback()
		return 0, NewStorageError("sqlite", "delete_runs", err)
	}

	deleted, err := result.RowsAffected()
	if err != nil {
		tx.Rollback()
		return 0, NewStorageError("sqlite", "delete_runs", err)
	}

	if err := tx.Commit(); err != nil {
		return 0, NewStorageError("sqlite", "delete_runs", err)
	}

	return deleted, nil
}

// Close releases resources held by the store. Safe to call more than
// once.
func (s *SQLiteStore) Close() error {
	s.closeOnce.Do(func() {
		for _, stmt := range s.stmts {
			stmt.Close()
		}

		if err := s.db.Close(); err != nil {
			s.closeErr = NewStorageError("sqlite", "close", err)
			return
		}

		s.logger.Info("SQLite report store closed")
	})

	return s.closeErr
}

// buildRunWhereClause builds a SQL WHERE clause from run query
// filters. Returns the clause (without "WHERE") and the arguments.
func buildRunWhereClause(query *Query) (string, []interface{}) {
	var conditions []string
	var args []interface{}

	if query.RunID != "" {
		conditions = append(conditions, "id = ?")
		args = append(args, query.RunID)
	}
	if query.Since != nil {
		conditions = append(conditions, "started_at >= ?")
		args = append(args, *query.Since)
	}
	if query.Until != nil {
		conditions = append(conditions, "completed_at < ?")
		args = append(args, *query.Until)
	}
	if query.OnlyInvalid {
		conditions = append(conditions, "invalid > 0")
	}

	return joinConditions(conditions), args
}

// buildRecordWhereClause builds a SQL WHERE clause from record query
// filters.
func buildRecordWhereClause(query *Query) (string, []interface{}) {
	var conditions []string
	var args []interface{}

	if query.RunID != "" {
		conditions = append(conditions, "run_id = ?")
		args = append(args, query.RunID)
	}
	if query.PatternName != "" {
		conditions = append(conditions, "pattern_name = ?")
		args = append(args, query.PatternName)
	}
	if query.Since != nil {
		conditions = append(conditions, "created_at >= ?")
		args = append(args, *query.Since)
	}
	if query.Until != nil {
		conditions = append(conditions, "created_at < ?")
		args = append(args, *query.Until)
	}
	if query.OnlyInvalid {
		conditions = append(conditions, "valid = 0")
	}

	return joinConditions(conditions), args
}

// joinConditions joins WHERE conditions with AND.
func joinConditions(conditions []string) string {
	clause := ""
	for i, condition := range conditions {
		if i > 0 {
			clause += " AND "
		}
		clause += condition
	}
	return clause
}

// limitClause renders LIMIT/OFFSET for a query, applying the default
// limit when none is set.
func limitClause(query *Query) string {
	limit := query.Limit
	if limit == 0 {
		limit = DefaultQueryLimit
	}

	clause := fmt.Sprintf(" LIMIT %d", limit)
	if query.Offset > 0 {
		clause += fmt.Sprintf(" OFFSET %d", query.Offset)
	}
	return clause
}

// rowScanner abstracts sql.Row and sql.Rows for the scan helpers.
type rowScanner interface {
	Scan(dest ...interface{}) error
}

// scanRun scans a database row into a Run.
func scanRun(row rowScanner) (*Run, error) {
	var run Run

	err := row.Scan(
		&run.ID, &run.StartedAt, &run.CompletedAt, &run.Source,
		&run.Stats.Patterns, &run.Stats.Valid, &run.Stats.Invalid,
		&run.Stats.Errors, &run.Stats.Warnings,
	)
	if err != nil {
		return nil, err
	}

	return &run, nil
}

// scanRecord scans a database row into a Record.
func scanRecord(row rowScanner) (*Record, error) {
	var record Record
	var errs, warnings string

	err := row.Scan(
		&record.ID, &record.RunID, &record.PatternName, &record.Pattern,
		&record.Valid, &errs, &warnings, &record.CreatedAt,
	)
	if err != nil {
		return nil, err
	}

	if errs != "" {
		json.Unmarshal([]byte(errs), &record.Errors)
	}
	if warnings != "" {
		json.Unmarshal([]byte(warnings), &record.Warnings)
	}

	return &record, nil
}
