package report

// SchemaVersion is the current database schema version.
const SchemaVersion = 1

// Schema contains the SQL statements to create the report database
// schema.
const Schema = `
-- Run headers table
CREATE TABLE IF NOT EXISTS runs (
    id TEXT PRIMARY KEY,

    -- Timestamps
    started_at TIMESTAMP NOT NULL,
    completed_at TIMESTAMP NOT NULL,

    -- Where the patterns came from
    source TEXT NOT NULL,

    -- Verdict statistics
    patterns INTEGER NOT NULL,
    valid INTEGER NOT NULL,
    invalid INTEGER NOT NULL,
    errors INTEGER NOT NULL,
    warnings INTEGER NOT NULL
);

-- Per-pattern verdict table
CREATE TABLE IF NOT EXISTS records (
    id TEXT PRIMARY KEY,
    run_id TEXT NOT NULL,

    pattern_name TEXT,
    pattern TEXT NOT NULL,
    valid BOOLEAN NOT NULL,

    -- Findings as JSON arrays of display strings
    errors TEXT,
    warnings TEXT,

    created_at TIMESTAMP NOT NULL
);

-- Schema version table
CREATE TABLE IF NOT EXISTS schema_version (
    version INTEGER PRIMARY KEY,
    applied_at TIMESTAMP NOT NULL
);

-- Indexes for common queries
CREATE INDEX IF NOT EXISTS idx_runs_started_at ON runs(started_at);
CREATE INDEX IF NOT EXISTS idx_runs_completed_at ON runs(completed_at);
CREATE INDEX IF NOT EXISTS idx_records_run_id ON records(run_id);
CREATE INDEX IF NOT EXISTS idx_records_pattern_name ON records(pattern_name);
CREATE INDEX IF NOT EXISTS idx_records_created_at ON records(created_at);
`

// InsertSchemaVersion inserts the schema version into the
// schema_version table.
const InsertSchemaVersion = `
INSERT INTO schema_version (version, applied_at)
VALUES (?, datetime('now'))
ON CONFLICT(version) DO NOTHING;
`

// GetSchemaVersion retrieves the current schema version from the
// database.
const GetSchemaVersion = `
SELECT version FROM schema_version ORDER BY version DESC LIMIT 1;
`

// insertRunStmt inserts one run header.
const insertRunStmt = `
INSERT INTO runs (
    id, started_at, completed_at, source,
    patterns, valid, invalid, errors, warnings
) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?);
`

// insertRecordStmt inserts one per-pattern verdict.
const insertRecordStmt = `
INSERT INTO records (
    id, run_id, pattern_name, pattern, valid,
    errors, warnings, created_at
) VALUES (?, ?, ?, ?, ?, ?, ?, ?);
`
