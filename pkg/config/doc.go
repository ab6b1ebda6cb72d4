// Package config provides configuration loading, validation, and access
// for Callisto.
//
// Configuration is defined in YAML and loaded with defaults applied to
// any field left at its zero value:
//
//	logging:
//	  level: info
//	  format: json
//
//	validator:
//	  max_repeat: 1000
//	  strict: false
//
//	library:
//	  dir: ./catalogs
//	  rescan_schedule: "@every 30s"
//
//	reports:
//	  enabled: true
//	  backend: sqlite
//	  sqlite_path: data/reports.db
//
// # Loading
//
// Load a configuration file directly:
//
//	cfg, err := config.LoadConfig("callisto.yaml")
//
// Or with environment overrides, which always win over the file:
//
//	cfg, err := config.LoadConfigWithEnvOverrides("callisto.yaml")
//
// Environment variables follow the CALLISTO_SECTION_FIELD convention,
// e.g. CALLISTO_LIBRARY_DIR or CALLISTO_VALIDATOR_STRICT.
//
// # Validation
//
// Validate collects every problem instead of stopping at the first and
// returns them as a ValidationError with dotted field paths:
//
//	configuration validation failed with 2 errors:
//	  - logging.level: invalid level "loud", must be one of: debug, info, warn, error
//	  - cache.backend: invalid backend "redis", must be one of: memory, sqlite
//
// # Global Access
//
// For application wiring, Initialize loads the configuration once and
// GetConfig hands it out; tests should inject explicit Config values
// instead.
package config
