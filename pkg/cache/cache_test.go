package cache

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"mercator-hq/callisto/pkg/config"
	"mercator-hq/callisto/pkg/cpl"
	"mercator-hq/callisto/pkg/cpl/ast"
)

// mustParse parses a pattern or fails the test.
func mustParse(t *testing.T, pattern string) *ast.Node {
	t.Helper()

	tree, err := cpl.Parse(pattern)
	if err != nil {
		t.Fatalf("Parse(%q) failed: %v", pattern, err)
	}
	return tree
}

// TestMemoryCache_PutAndGet tests storing and retrieving a tree.
func TestMemoryCache_PutAndGet(t *testing.T) {
	c := NewMemoryCache(MemoryCacheConfig{}, nil, nil)
	defer c.Close()

	ctx := context.Background()
	tree := mustParse(t, "(a|b)*")

	if err := c.Put(ctx, "(a|b)*", tree); err != nil {
		t.Fatalf("Put() failed: %v", err)
	}

	got, err := c.Get(ctx, "(a|b)*")
	if err != nil {
		t.Fatalf("Get() failed: %v", err)
	}
	if got == nil {
		t.Fatal("Get() returned nil for cached pattern")
	}
	if !got.Equal(tree) {
		t.Errorf("Get() tree = %s, want %s", got, tree)
	}

	// Missing pattern is a miss, not an error
	got, err = c.Get(ctx, "never.cached")
	if err != nil {
		t.Fatalf("Get() failed: %v", err)
	}
	if got != nil {
		t.Errorf("Get() = %v for uncached pattern, want nil", got)
	}
}

// TestMemoryCache_Validation tests rejection of bad arguments.
func TestMemoryCache_Validation(t *testing.T) {
	c := NewMemoryCache(MemoryCacheConfig{}, nil, nil)
	defer c.Close()

	ctx := context.Background()

	if _, err := c.Get(ctx, ""); err == nil {
		t.Error("Get(\"\") expected error")
	}
	if err := c.Put(ctx, "", mustParse(t, "a")); err == nil {
		t.Error("Put(\"\") expected error")
	}
	if err := c.Put(ctx, "a", nil); err == nil {
		t.Error("Put(nil tree) expected error")
	}
}

// TestMemoryCache_ReplaceEntry tests that re-putting a pattern
// replaces its entry without growing the cache.
func TestMemoryCache_ReplaceEntry(t *testing.T) {
	c := NewMemoryCache(MemoryCacheConfig{MaxEntries: 1}, nil, nil)
	defer c.Close()

	ctx := context.Background()

	if err := c.Put(ctx, "ab", mustParse(t, "ab")); err != nil {
		t.Fatalf("Put() failed: %v", err)
	}
	if err := c.Put(ctx, "ab", mustParse(t, "ab")); err != nil {
		t.Fatalf("Second Put() failed: %v", err)
	}

	n, err := c.Len(ctx)
	if err != nil {
		t.Fatalf("Len() failed: %v", err)
	}
	if n != 1 {
		t.Errorf("Len() = %d, want 1", n)
	}
}

// TestMemoryCache_Eviction tests oldest-first eviction at the bound.
func TestMemoryCache_Eviction(t *testing.T) {
	c := NewMemoryCache(MemoryCacheConfig{MaxEntries: 2}, nil, nil)
	defer c.Close()

	ctx := context.Background()

	for _, pattern := range []string{"a", "b", "c"} {
		if err := c.Put(ctx, pattern, mustParse(t, pattern)); err != nil {
			t.Fatalf("Put(%q) failed: %v", pattern, err)
		}
		// Distinct insertion times make eviction order deterministic
		time.Sleep(time.Millisecond)
	}

	n, err := c.Len(ctx)
	if err != nil {
		t.Fatalf("Len() failed: %v", err)
	}
	if n != 2 {
		t.Errorf("Len() = %d, want 2", n)
	}

	// The oldest entry was evicted
	if got, _ := c.Get(ctx, "a"); got != nil {
		t.Error("Get(a) returned a tree, want eviction")
	}
	for _, pattern := range []string{"b", "c"} {
		if got, _ := c.Get(ctx, pattern); got == nil {
			t.Errorf("Get(%q) returned nil, want cached tree", pattern)
		}
	}
}

// TestMemoryCache_Unbounded tests that zero max entries disables
// eviction.
func TestMemoryCache_Unbounded(t *testing.T) {
	c := NewMemoryCache(MemoryCacheConfig{MaxEntries: 0}, nil, nil)
	defer c.Close()

	ctx := context.Background()
	patterns := []string{"a", "b", "c", "ab", "a*", "b+", "a{2}", "(a|b)", "a.b", "abc"}

	for _, pattern := range patterns {
		if err := c.Put(ctx, pattern, mustParse(t, pattern)); err != nil {
			t.Fatalf("Put(%q) failed: %v", pattern, err)
		}
	}

	n, err := c.Len(ctx)
	if err != nil {
		t.Fatalf("Len() failed: %v", err)
	}
	if n != len(patterns) {
		t.Errorf("Len() = %d, want %d", n, len(patterns))
	}
}

// TestMemoryCache_Close tests that Close drops all entries.
func TestMemoryCache_Close(t *testing.T) {
	c := NewMemoryCache(MemoryCacheConfig{}, nil, nil)
	ctx := context.Background()

	if err := c.Put(ctx, "a", mustParse(t, "a")); err != nil {
		t.Fatalf("Put() failed: %v", err)
	}
	if err := c.Close(); err != nil {
		t.Fatalf("Close() failed: %v", err)
	}

	n, err := c.Len(ctx)
	if err != nil {
		t.Fatalf("Len() failed: %v", err)
	}
	if n != 0 {
		t.Errorf("Len() = %d after Close, want 0", n)
	}
}

// TestNew tests backend selection from configuration.
func TestNew(t *testing.T) {
	if _, err := New(nil, nil, nil); err == nil {
		t.Error("New(nil) expected error")
	}

	c, err := New(&config.CacheConfig{Backend: "memory", MaxEntries: 10}, nil, nil)
	if err != nil {
		t.Fatalf("New(memory) failed: %v", err)
	}
	if _, ok := c.(*MemoryCache); !ok {
		t.Errorf("New(memory) = %T, want *MemoryCache", c)
	}
	c.Close()

	// Empty backend defaults to memory
	c, err = New(&config.CacheConfig{}, nil, nil)
	if err != nil {
		t.Fatalf("New(default) failed: %v", err)
	}
	if _, ok := c.(*MemoryCache); !ok {
		t.Errorf("New(default) = %T, want *MemoryCache", c)
	}
	c.Close()

	c, err = New(&config.CacheConfig{
		Backend:    "sqlite",
		SQLitePath: filepath.Join(t.TempDir(), "cache.db"),
	}, nil, nil)
	if err != nil {
		t.Fatalf("New(sqlite) failed: %v", err)
	}
	if _, ok := c.(*SQLiteCache); !ok {
		t.Errorf("New(sqlite) = %T, want *SQLiteCache", c)
	}
	c.Close()

	if _, err := New(&config.CacheConfig{Backend: "redis"}, nil, nil); err == nil {
		t.Error("New(redis) expected error for unknown backend")
	}
}
