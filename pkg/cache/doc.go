// Package cache provides pattern-to-tree caches for parse results.
//
// # Overview
//
// Parsing the same pattern twice always yields an identical tree, so
// repeated parses (bench iterations, catalog rescans) can be served
// from a cache keyed by the exact pattern text:
//
//   - Memory: fast in-process cache with oldest-entry eviction
//     (default, no persistence)
//   - SQLite: file-based cache that survives restarts, so repeated
//     bench runs start warm
//
// # Usage
//
//	// Create a cache from configuration
//	c, err := cache.New(&cfg.Cache, logger, collector)
//
//	// Look up a pattern; a nil tree means not cached
//	tree, err := c.Get(ctx, "(a|b)*")
//	if tree == nil {
//	    tree, err = cpl.Parse("(a|b)*")
//	    _ = c.Put(ctx, "(a|b)*", tree)
//	}
//
// Cached trees are shared, never copied: ast.Node values are immutable
// after construction, so handing the same tree to every caller is safe.
//
// # Thread Safety
//
// All cache backends are thread-safe and support concurrent access
// from multiple goroutines. Locking is handled internally by each
// backend.
package cache
