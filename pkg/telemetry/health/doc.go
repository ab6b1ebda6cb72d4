// Package health provides health check endpoints for watch mode.
//
// The Checker runs named component checks concurrently with a per-check
// timeout and aggregates them into a readiness status. Watch mode
// registers checks for the pattern library and, when enabled, the report
// store, and serves the endpoints on the same mux as /metrics.
//
//	checker := health.New(5 * time.Second)
//	checker.RegisterCheck("library", func(ctx context.Context) error {
//		if manager.CatalogCount() == 0 {
//			return errors.New("no catalogs loaded")
//		}
//		return nil
//	})
//
//	mux := http.NewServeMux()
//	health.HTTPMiddleware(mux, checker, version, commit, buildTime)
//
// Endpoints:
//   - /health: liveness probe, always 200 while the process runs
//   - /ready: readiness probe, 503 when any component check fails
//   - /version: build information
package health
