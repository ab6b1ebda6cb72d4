package cache

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"mercator-hq/callisto/pkg/cpl/ast"
	"mercator-hq/callisto/pkg/telemetry/metrics"
)

// memoryEntry holds one cached tree with its insertion time.
// The insertion time drives oldest-first eviction.
type memoryEntry struct {
	tree     *ast.Node
	storedAt time.Time
}

// MemoryCache implements Cache using an in-memory map.
// This is the default backend and provides fast access with no
// persistence. All entries are lost when the process exits.
//
// Trees are stored and returned without copying: ast.Node values are
// immutable after construction.
type MemoryCache struct {
	// entries maps pattern text to its cached tree.
	entries map[string]*memoryEntry

	// mu protects access to the entries map.
	mu sync.RWMutex

	// maxEntries is the maximum number of entries before eviction.
	maxEntries int

	logger  *slog.Logger
	metrics *metrics.Collector
}

// MemoryCacheConfig configures the memory cache.
type MemoryCacheConfig struct {
	// MaxEntries is the maximum number of cached patterns. The oldest
	// entry is evicted when the limit is reached. A value of 0 means
	// unbounded.
	MaxEntries int
}

// NewMemoryCache creates a new in-memory parse cache. The collector
// may be nil when metrics are not being served.
func NewMemoryCache(cfg MemoryCacheConfig, logger *slog.Logger, collector *metrics.Collector) *MemoryCache {
	if logger == nil {
		logger = slog.Default()
	}

	return &MemoryCache{
		entries:    make(map[string]*memoryEntry),
		maxEntries: cfg.MaxEntries,
		logger:     logger.With("component", "cache.memory"),
		metrics:    collector,
	}
}

// Get retrieves the parsed tree for a pattern.
func (c *MemoryCache) Get(ctx context.Context, pattern string) (*ast.Node, error) {
	if pattern == "" {
		return nil, fmt.Errorf("pattern cannot be empty")
	}

	c.mu.RLock()
	entry, exists := c.entries[pattern]
	c.mu.RUnlock()

	if !exists {
		c.metrics.RecordCacheMiss("memory")
		return nil, nil
	}

	c.metrics.RecordCacheHit("memory")
	return entry.tree, nil
}

// Put stores the parsed tree for a pattern.
func (c *MemoryCache) Put(ctx context.Context, pattern string, tree *ast.Node) error {
	if pattern == "" {
		return fmt.Errorf("pattern cannot be empty")
	}
	if tree == nil {
		return fmt.Errorf("tree cannot be nil")
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	// Replacing an existing entry never grows the map
	if _, exists := c.entries[pattern]; !exists {
		if c.maxEntries > 0 && len(c.entries) >= c.maxEntries {
			c.evictOldestLocked()
		}
	}

	c.entries[pattern] = &memoryEntry{
		tree:     tree,
		storedAt: time.Now(),
	}

	c.metrics.UpdateCacheEntries("memory", len(c.entries))
	return nil
}

// Len returns the number of cached patterns.
func (c *MemoryCache) Len(ctx context.Context) (int, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	return len(c.entries), nil
}

// Close releases resources held by the cache.
func (c *MemoryCache) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.entries = make(map[string]*memoryEntry)
	c.metrics.UpdateCacheEntries("memory", 0)
	return nil
}

// evictOldestLocked evicts the oldest entry to make room for new
// entries. Caller must hold the write lock.
func (c *MemoryCache) evictOldestLocked() {
	var (
		oldestKey   string
		oldestTime  time.Time
		foundOldest bool
	)

	for key, entry := range c.entries {
		if !foundOldest || entry.storedAt.Before(oldestTime) {
			oldestKey = key
			oldestTime = entry.storedAt
			foundOldest = true
		}
	}

	if foundOldest {
		delete(c.entries, oldestKey)
		c.metrics.RecordCacheEviction("memory")
	}
}
