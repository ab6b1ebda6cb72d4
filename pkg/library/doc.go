// Package library provides pattern catalog management: loading,
// validating, and hot-reloading the YAML catalogs of named CPL
// patterns a team shares.
//
// The package supports single-file catalogs, directory structures,
// validation on load (every pattern entry must parse), and hot-reload
// for zero-downtime catalog updates from either the file system or a
// git repository.
//
// # Core Components
//
// Manager is the main orchestrator coordinating loading, registration,
// and hot-reload.
//
// Loader handles file system operations and YAML parsing, and verifies
// every pattern entry parses as CPL before a catalog is accepted.
//
// Registry provides thread-safe in-memory storage for loaded catalogs
// with copy-on-write semantics for atomic updates.
//
// FileWatcher monitors the catalog directory for changes and triggers
// hot-reload with debouncing to prevent reload storms.
//
// RescanScheduler re-lists the catalog directory on a cron schedule
// for hosts without reliable file notifications.
//
// The git subpackage clones and polls a shared catalog repository.
//
// # Basic Usage
//
// Loading catalogs from a directory:
//
//	cfg := &config.LibraryConfig{
//		Dir: "./catalogs",
//	}
//
//	mgr, err := library.NewManager(cfg, parser.NewParser(), logger, nil)
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	if err := mgr.Load(); err != nil {
//		log.Fatal(err)
//	}
//
//	pattern, catalog, ok := mgr.Lookup("greeting")
//
// # Hot-Reload
//
// Watch keeps the registry current until the context is cancelled:
//
//	go func() {
//		if err := mgr.Watch(ctx); err != nil {
//			log.Printf("watcher error: %v", err)
//		}
//	}()
//
// Reloads are atomic. The new catalog set is fully loaded and
// validated before it replaces the old one, and a failed reload leaves
// the previous catalogs active.
//
// # Catalog Files
//
// A catalog is one YAML file:
//
//	version: "1"
//	name: base
//	patterns:
//	  - name: greeting
//	    pattern: "(hi|hello) there"
//	    description: Friendly openers.
//	    tags: [demo]
//
// If name is omitted the file name (without extension) is used.
//
// # Error Handling
//
// LoadError reports file system failures, CatalogError reports bad
// entries (a pattern that does not parse, a duplicate name), and
// ErrorList aggregates them across a directory so one broken file
// reports every problem it has.
package library
