package cache

import (
	"context"
	"fmt"
	"log/slog"

	"mercator-hq/callisto/pkg/config"
	"mercator-hq/callisto/pkg/cpl/ast"
	"mercator-hq/callisto/pkg/telemetry/metrics"
)

// Cache defines the interface for pattern parse caches.
// Implementations must be thread-safe and support concurrent access.
type Cache interface {
	// Get retrieves the parsed tree for a pattern.
	// Returns nil if the pattern is not cached. Returns error on
	// system failure.
	Get(ctx context.Context, pattern string) (*ast.Node, error)

	// Put stores the parsed tree for a pattern. If the pattern is
	// already cached, its entry is replaced.
	Put(ctx context.Context, pattern string, tree *ast.Node) error

	// Len returns the number of cached patterns.
	Len(ctx context.Context) (int, error)

	// Close releases any resources held by the cache.
	// The cache should not be used after calling Close.
	Close() error
}

// New creates a cache for the configured backend. The collector may be
// nil when metrics are not being served.
func New(cfg *config.CacheConfig, logger *slog.Logger, collector *metrics.Collector) (Cache, error) {
	if cfg == nil {
		return nil, fmt.Errorf("cache config cannot be nil")
	}

	switch cfg.Backend {
	case "", "memory":
		return NewMemoryCache(MemoryCacheConfig{
			MaxEntries: cfg.MaxEntries,
		}, logger, collector), nil

	case "sqlite":
		return NewSQLiteCache(SQLiteCacheConfig{
			Path:       cfg.SQLitePath,
			MaxEntries: cfg.MaxEntries,
		}, logger, collector)

	default:
		return nil, fmt.Errorf("unknown cache backend %q", cfg.Backend)
	}
}
