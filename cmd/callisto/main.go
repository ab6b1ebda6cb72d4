// Callisto is a parsing front-end for the CPL pattern language.
//
// It turns pattern text into structured parse trees, providing:
//   - A recursive-descent parser with precise, stable error messages
//   - Tree lints with configurable ceilings and strict mode
//   - Hot-reloaded pattern catalogs from a directory or git repository
//   - Lint-run reports with SQLite storage and retention pruning
//   - An optional parse cache and a Prometheus metrics endpoint
//
// Usage:
//
//	# Parse a pattern and print its tree
//	callisto parse "(a|b)*"
//
//	# Lint patterns from a file
//	callisto lint --file patterns.txt
//
//	# Verify every catalog in the configured directory
//	callisto library verify
//
//	# Inspect recorded lint runs
//	callisto reports list --since 24h
//
//	# Keep catalogs loaded and serve metrics
//	callisto watch --config /path/to/config.yaml
//
//	# Show version information
//	callisto version
//
// For complete documentation, see: https://github.com/mercator-hq/callisto
package main

func main() {
	Execute()
}
