package library

import (
	"crypto/sha256"
	"fmt"
	"sort"
	"sync"
	"time"
)

// Registry is a thread-safe in-memory store for loaded catalogs.
// It uses copy-on-write semantics for atomic updates: Replace swaps
// the whole catalog set in one step so concurrent readers never see a
// partially reloaded library.
type Registry struct {
	mu       sync.RWMutex
	catalogs map[string]*Catalog
	version  string
	loadTime time.Time
}

// NewRegistry creates a new empty catalog registry.
func NewRegistry() *Registry {
	return &Registry{
		catalogs: make(map[string]*Catalog),
		loadTime: time.Now(),
	}
}

// Register adds a catalog to the registry.
// If a catalog with the same name already exists, it will be replaced.
func (r *Registry) Register(catalog *Catalog) error {
	if catalog == nil {
		return &RegistryError{
			Operation: "register",
			Message:   "catalog cannot be nil",
		}
	}

	if catalog.Name == "" {
		return &RegistryError{
			Operation: "register",
			Message:   "catalog name cannot be empty",
		}
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	r.catalogs[catalog.Name] = catalog
	r.updateVersion()

	return nil
}

// Unregister removes a catalog from the registry by name.
func (r *Registry) Unregister(name string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.catalogs[name]; !ok {
		return &RegistryError{
			Catalog:   name,
			Operation: "unregister",
			Message:   "catalog not found",
		}
	}

	delete(r.catalogs, name)
	r.updateVersion()

	return nil
}

// Get retrieves a catalog by name.
func (r *Registry) Get(name string) (*Catalog, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	catalog, ok := r.catalogs[name]
	return catalog, ok
}

// GetAll retrieves all catalogs in the registry.
// The returned slice is a copy and will not be modified by the registry.
func (r *Registry) GetAll() []*Catalog {
	r.mu.RLock()
	defer r.mu.RUnlock()

	catalogs := make([]*Catalog, 0, len(r.catalogs))
	for _, catalog := range r.catalogs {
		catalogs = append(catalogs, catalog)
	}

	return catalogs
}

// GetAllSorted retrieves all catalogs sorted by name.
func (r *Registry) GetAllSorted() []*Catalog {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, 0, len(r.catalogs))
	for name := range r.catalogs {
		names = append(names, name)
	}
	sort.Strings(names)

	catalogs := make([]*Catalog, 0, len(r.catalogs))
	for _, name := range names {
		catalogs = append(catalogs, r.catalogs[name])
	}

	return catalogs
}

// Lookup finds a pattern by name across all catalogs. It searches
// catalogs in name order so the result is deterministic when two
// catalogs define the same pattern name.
func (r *Registry) Lookup(patternName string) (*Pattern, *Catalog, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, 0, len(r.catalogs))
	for name := range r.catalogs {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		catalog := r.catalogs[name]
		if p, ok := catalog.FindPattern(patternName); ok {
			return p, catalog, true
		}
	}

	return nil, nil, false
}

// Count returns the number of catalogs in the registry.
func (r *Registry) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return len(r.catalogs)
}

// PatternCount returns the total number of patterns across all catalogs.
func (r *Registry) PatternCount() int {
	r.mu.RLock()
	defer r.mu.RUnlock()

	total := 0
	for _, catalog := range r.catalogs {
		total += len(catalog.Patterns)
	}
	return total
}

// Clear removes all catalogs from the registry.
func (r *Registry) Clear() {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.catalogs = make(map[string]*Catalog)
	r.updateVersion()
}

// Replace atomically replaces the entire catalog set with a new set.
// This is used for atomic hot-reload operations.
func (r *Registry) Replace(catalogs []*Catalog) error {
	if catalogs == nil {
		return &RegistryError{
			Operation: "replace",
			Message:   "catalogs cannot be nil",
		}
	}

	// Validate all catalogs first
	for _, catalog := range catalogs {
		if catalog == nil {
			return &RegistryError{
				Operation: "replace",
				Message:   "catalog cannot be nil",
			}
		}
		if catalog.Name == "" {
			return &RegistryError{
				Operation: "replace",
				Message:   "catalog name cannot be empty",
			}
		}
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	newCatalogs := make(map[string]*Catalog, len(catalogs))
	for _, catalog := range catalogs {
		newCatalogs[catalog.Name] = catalog
	}

	// Atomic swap
	r.catalogs = newCatalogs
	r.loadTime = time.Now()
	r.updateVersion()

	return nil
}

// Version returns the current version of the registry.
// The version changes whenever catalogs are added, removed, or replaced.
func (r *Registry) Version() string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return r.version
}

// LoadTime returns the timestamp when catalogs were last loaded or updated.
func (r *Registry) LoadTime() time.Time {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return r.loadTime
}

// Names returns a sorted list of all catalog names in the registry.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, 0, len(r.catalogs))
	for name := range r.catalogs {
		names = append(names, name)
	}

	sort.Strings(names)
	return names
}

// Stats returns statistics about the catalogs in the registry.
func (r *Registry) Stats() RegistryStats {
	r.mu.RLock()
	defer r.mu.RUnlock()

	stats := RegistryStats{
		CatalogCount: len(r.catalogs),
		LoadTime:     r.loadTime,
		Version:      r.version,
	}

	for _, catalog := range r.catalogs {
		stats.PatternCount += len(catalog.Patterns)
	}

	return stats
}

// updateVersion updates the registry version based on the current state.
// This must be called with the write lock held.
func (r *Registry) updateVersion() {
	// Hash sorted catalog name / pattern name / pattern text lines so
	// the version is deterministic for a given library state.
	h := sha256.New()

	names := make([]string, 0, len(r.catalogs))
	for name := range r.catalogs {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		catalog := r.catalogs[name]
		h.Write([]byte(catalog.Name))
		for _, p := range catalog.Patterns {
			h.Write([]byte(p.Name))
			h.Write([]byte(p.Pattern))
		}
	}

	r.version = fmt.Sprintf("%x", h.Sum(nil))[:16]
}

// RegistryStats contains statistics about the catalog registry.
type RegistryStats struct {
	CatalogCount int
	PatternCount int
	LoadTime     time.Time
	Version      string
}
