package cache

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"log/slog"
	"sync"
	"time"

	_ "modernc.org/sqlite" // SQLite driver

	"mercator-hq/callisto/pkg/cpl/ast"
	"mercator-hq/callisto/pkg/telemetry/metrics"
)

// SQLiteCache implements Cache using SQLite for persistence. Cached
// parses survive restarts, so repeated bench runs and rescans start
// warm.
//
// SQLiteCache uses a write-ahead log (WAL) for better concurrent
// performance and periodic checkpointing to balance write performance
// with durability.
type SQLiteCache struct {
	db         *sql.DB
	dbPath     string
	maxEntries int

	checkpointInterval time.Duration
	done               chan struct{}
	mu                 sync.RWMutex
	closeOnce          sync.Once

	// prepared statements for the hot paths
	getStmt   *sql.Stmt
	putStmt   *sql.Stmt
	lenStmt   *sql.Stmt
	evictStmt *sql.Stmt

	logger  *slog.Logger
	metrics *metrics.Collector
}

// SQLiteCacheConfig configures the SQLite cache.
type SQLiteCacheConfig struct {
	// Path is the path to the SQLite database file.
	Path string

	// MaxEntries is the maximum number of cached patterns. The oldest
	// entries are evicted when the limit is exceeded. A value of 0
	// means unbounded.
	MaxEntries int

	// BusyTimeout is how long to wait for locks before failing.
	// Default: 5 seconds
	BusyTimeout time.Duration

	// CheckpointInterval is how often to checkpoint the WAL.
	// Default: 5 minutes
	CheckpointInterval time.Duration
}

// NewSQLiteCache creates a new SQLite parse cache. The collector may
// be nil when metrics are not being served.
func NewSQLiteCache(cfg SQLiteCacheConfig, logger *slog.Logger, collector *metrics.Collector) (*SQLiteCache, error) {
	if cfg.Path == "" {
		return nil, fmt.Errorf("cache db path cannot be empty")
	}
	if cfg.BusyTimeout == 0 {
		cfg.BusyTimeout = 5 * time.Second
	}
	if cfg.CheckpointInterval == 0 {
		cfg.CheckpointInterval = 5 * time.Minute
	}
	if logger == nil {
		logger = slog.Default()
	}

	db, err := sql.Open("sqlite", cfg.Path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// SQLite only supports a single writer
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	c := &SQLiteCache{
		db:                 db,
		dbPath:             cfg.Path,
		maxEntries:         cfg.MaxEntries,
		checkpointInterval: cfg.CheckpointInterval,
		done:               make(chan struct{}),
		logger:             logger.With("component", "cache.sqlite"),
		metrics:            collector,
	}

	if err := c.initSchema(cfg.BusyTimeout); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}

	if err := c.prepareStatements(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to prepare statements: %w", err)
	}

	// Start background checkpoint goroutine
	go c.checkpointLoop()

	c.logger.Info("SQLite parse cache initialized",
		"path", cfg.Path,
		"max_entries", cfg.MaxEntries,
	)

	return c, nil
}

// initSchema enables WAL mode and creates the schema if it doesn't
// exist. The single pooled connection keeps the pragmas in effect.
func (c *SQLiteCache) initSchema(busyTimeout time.Duration) error {
	pragmas := fmt.Sprintf(`
	PRAGMA journal_mode=WAL;
	PRAGMA busy_timeout=%d;
	PRAGMA synchronous=NORMAL;
	`, busyTimeout.Milliseconds())

	if _, err := c.db.Exec(pragmas); err != nil {
		return err
	}

	// The dump and shape columns exist for inspecting the cache file;
	// Get reads only the tree encoding.
	schema := `
	CREATE TABLE IF NOT EXISTS parse_cache (
		pattern TEXT PRIMARY KEY,
		tree TEXT NOT NULL,
		dump TEXT NOT NULL,
		node_count INTEGER NOT NULL,
		depth INTEGER NOT NULL,
		created_at INTEGER NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_parse_cache_created_at ON parse_cache(created_at);
	`

	_, err := c.db.Exec(schema)
	return err
}

// prepareStatements prepares SQL statements for reuse.
func (c *SQLiteCache) prepareStatements() error {
	var err error

	c.getStmt, err = c.db.Prepare(`
		SELECT tree FROM parse_cache WHERE pattern = ?
	`)
	if err != nil {
		return fmt.Errorf("failed to prepare get statement: %w", err)
	}

	c.putStmt, err = c.db.Prepare(`
		INSERT INTO parse_cache (pattern, tree, dump, node_count, depth, created_at)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT (pattern) DO UPDATE SET
			tree = excluded.tree,
			dump = excluded.dump,
			node_count = excluded.node_count,
			depth = excluded.depth,
			created_at = excluded.created_at
	`)
	if err != nil {
		return fmt.Errorf("failed to prepare put statement: %w", err)
	}

	c.lenStmt, err = c.db.Prepare(`
		SELECT COUNT(*) FROM parse_cache
	`)
	if err != nil {
		return fmt.Errorf("failed to prepare len statement: %w", err)
	}

	c.evictStmt, err = c.db.Prepare(`
		DELETE FROM parse_cache WHERE pattern IN (
			SELECT pattern FROM parse_cache ORDER BY created_at ASC LIMIT ?
		)
	`)
	if err != nil {
		return fmt.Errorf("failed to prepare evict statement: %w", err)
	}

	return nil
}

// Get retrieves the parsed tree for a pattern.
func (c *SQLiteCache) Get(ctx context.Context, pattern string) (*ast.Node, error) {
	if pattern == "" {
		return nil, fmt.Errorf("pattern cannot be empty")
	}

	c.mu.RLock()
	defer c.mu.RUnlock()

	var treeJSON string
	err := c.getStmt.QueryRowContext(ctx, pattern).Scan(&treeJSON)
	if err == sql.ErrNoRows {
		c.metrics.RecordCacheMiss("sqlite")
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load cached tree: %w", err)
	}

	tree := &ast.Node{}
	if err := json.Unmarshal([]byte(treeJSON), tree); err != nil {
		return nil, fmt.Errorf("failed to unmarshal cached tree: %w", err)
	}

	c.metrics.RecordCacheHit("sqlite")
	return tree, nil
}

// Put stores the parsed tree for a pattern.
func (c *SQLiteCache) Put(ctx context.Context, pattern string, tree *ast.Node) error {
	if pattern == "" {
		return fmt.Errorf("pattern cannot be empty")
	}
	if tree == nil {
		return fmt.Errorf("tree cannot be nil")
	}

	treeJSON, err := json.Marshal(tree)
	if err != nil {
		return fmt.Errorf("failed to marshal tree: %w", err)
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	_, err = c.putStmt.ExecContext(ctx,
		pattern,
		string(treeJSON),
		tree.Dump(),
		tree.Count(),
		tree.Depth(),
		time.Now().UnixNano(),
	)
	if err != nil {
		return fmt.Errorf("failed to store tree: %w", err)
	}

	count, err := c.countLocked(ctx)
	if err != nil {
		return err
	}

	// Evict oldest entries beyond the bound. The entry just written is
	// the newest, so it always survives.
	if c.maxEntries > 0 && count > c.maxEntries {
		excess := count - c.maxEntries
		if _, err := c.evictStmt.ExecContext(ctx, excess); err != nil {
			return fmt.Errorf("failed to evict entries: %w", err)
		}
		for i := 0; i < excess; i++ {
			c.metrics.RecordCacheEviction("sqlite")
		}
		count = c.maxEntries
	}

	c.metrics.UpdateCacheEntries("sqlite", count)
	return nil
}

// Len returns the number of cached patterns.
func (c *SQLiteCache) Len(ctx context.Context) (int, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	return c.countLocked(ctx)
}

// countLocked counts cached patterns. Caller must hold the lock.
func (c *SQLiteCache) countLocked(ctx context.Context) (int, error) {
	var count int
	if err := c.lenStmt.QueryRowContext(ctx).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count entries: %w", err)
	}
	return count, nil
}

// Close releases any resources held by the cache.
// Close is idempotent and safe to call multiple times.
func (c *SQLiteCache) Close() error {
	var closeErr error

	c.closeOnce.Do(func() {
		// Signal checkpoint goroutine to stop
		close(c.done)

		for _, stmt := range []*sql.Stmt{c.getStmt, c.putStmt, c.lenStmt, c.evictStmt} {
			if stmt != nil {
				stmt.Close()
			}
		}

		if c.db != nil {
			// Run final checkpoint
			_, _ = c.db.Exec("PRAGMA wal_checkpoint(TRUNCATE)")
			closeErr = c.db.Close()
		}
	})

	return closeErr
}

// checkpointLoop runs periodic WAL checkpoints.
func (c *SQLiteCache) checkpointLoop() {
	ticker := time.NewTicker(c.checkpointInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			_, _ = c.db.Exec("PRAGMA wal_checkpoint(PASSIVE)")
		case <-c.done:
			return
		}
	}
}
