package config

import "time"

// Config is the root configuration structure for Callisto.
// It contains all configuration sections for parsing, validation, the
// pattern library, report storage, the parse cache, and watch mode.
type Config struct {
	// Logging contains structured logging configuration.
	Logging LoggingConfig `yaml:"logging"`

	// Parser contains limits applied while parsing pattern text.
	Parser ParserConfig `yaml:"parser"`

	// Validator contains ceilings and strictness for tree lints.
	Validator ValidatorConfig `yaml:"validator"`

	// Library contains configuration for pattern catalogs: where they
	// live, how they are reloaded, and the optional git source.
	Library LibraryConfig `yaml:"library"`

	// Reports contains configuration for lint-run report storage and
	// retention.
	Reports ReportsConfig `yaml:"reports"`

	// Cache contains configuration for the parse cache.
	Cache CacheConfig `yaml:"cache"`

	// Watch contains configuration for long-running watch mode,
	// including the metrics endpoint.
	Watch WatchConfig `yaml:"watch"`
}

// LoggingConfig contains structured logging configuration.
type LoggingConfig struct {
	// Level is the minimum log level: "debug", "info", "warn", "error".
	// Default: "info"
	Level string `yaml:"level"`

	// Format selects the log output format: "text" or "json".
	// Default: "json"
	Format string `yaml:"format"`
}

// ParserConfig contains limits applied while parsing pattern text.
type ParserConfig struct {
	// MaxPatternSize is the maximum pattern size in bytes.
	// A value of 0 disables the limit.
	// Default: 65536 (64KB)
	MaxPatternSize int64 `yaml:"max_pattern_size"`

	// MaxDepth is the maximum group nesting depth. Arbitrary nesting is
	// legal CPL, so the guard is off unless set.
	// Default: 0 (disabled)
	MaxDepth int `yaml:"max_depth"`
}

// ValidatorConfig contains ceilings and strictness for tree lints.
type ValidatorConfig struct {
	// MaxRepeat is the ceiling applied to bounded repeat maximums.
	// A value of 0 disables the check.
	// Default: 1000
	MaxRepeat int `yaml:"max_repeat"`

	// MaxDepth is the ceiling applied to pattern tree depth.
	// A value of 0 disables the check.
	// Default: 200
	MaxDepth int `yaml:"max_depth"`

	// Strict promotes advisory findings to errors.
	// Default: false
	Strict bool `yaml:"strict"`
}

// LibraryConfig contains configuration for pattern catalogs.
type LibraryConfig struct {
	// Dir is the directory scanned for catalog YAML files.
	// Default: "./catalogs"
	Dir string `yaml:"dir"`

	// DebounceDelay is how long the file watcher waits after the last
	// change event before reloading a catalog.
	// Default: 500ms
	DebounceDelay time.Duration `yaml:"debounce_delay"`

	// RescanSchedule is a cron expression for periodically re-listing
	// the catalog directory, for hosts without file notifications.
	// Empty disables the rescan.
	// Default: "" (disabled)
	RescanSchedule string `yaml:"rescan_schedule"`

	// Git configures an optional git source for shared catalogs.
	Git GitConfig `yaml:"git"`
}

// GitConfig contains configuration for a git-hosted catalog source.
type GitConfig struct {
	// URL is the clone URL of the catalog repository. Empty disables
	// the git source.
	URL string `yaml:"url"`

	// Branch is the branch to track.
	// Default: "main"
	Branch string `yaml:"branch"`

	// Dir is the local checkout directory.
	// Default: "data/catalog-git"
	Dir string `yaml:"dir"`

	// Token is a bearer token for HTTPS remotes. Prefer setting it via
	// the CALLISTO_LIBRARY_GIT_TOKEN environment variable.
	Token string `yaml:"token"`

	// SSHKeyPath is the path to a private key for SSH remotes.
	SSHKeyPath string `yaml:"ssh_key_path"`

	// PollInterval is how often the checkout is refreshed from the
	// remote in watch mode.
	// Default: 5m
	PollInterval time.Duration `yaml:"poll_interval"`
}

// ReportsConfig contains configuration for lint-run report storage.
type ReportsConfig struct {
	// Enabled turns on report recording for lint runs.
	// Default: false
	Enabled bool `yaml:"enabled"`

	// Backend selects the report store: "memory" or "sqlite".
	// Default: "sqlite"
	Backend string `yaml:"backend"`

	// SQLitePath is the report database path for the sqlite backend.
	// Default: "data/reports.db"
	SQLitePath string `yaml:"sqlite_path"`

	// RetentionDays is how long completed runs are kept before the
	// pruner deletes them. A value of 0 keeps runs forever.
	// Default: 90
	RetentionDays int `yaml:"retention_days"`

	// PruneSchedule is a cron expression for the retention pruner.
	// Default: "0 3 * * *" (daily at 03:00)
	PruneSchedule string `yaml:"prune_schedule"`
}

// CacheConfig contains configuration for the parse cache.
type CacheConfig struct {
	// Enabled turns on the parse cache.
	// Default: false
	Enabled bool `yaml:"enabled"`

	// Backend selects the cache store: "memory" or "sqlite".
	// Default: "memory"
	Backend string `yaml:"backend"`

	// SQLitePath is the cache database path for the sqlite backend.
	// Default: "data/cache.db"
	SQLitePath string `yaml:"sqlite_path"`

	// MaxEntries bounds the number of cached patterns. The oldest
	// entries are evicted when the bound is reached.
	// Default: 1024
	MaxEntries int `yaml:"max_entries"`
}

// WatchConfig contains configuration for long-running watch mode.
type WatchConfig struct {
	// MetricsAddress is the listen address for the Prometheus metrics
	// endpoint in watch mode. The watch command's --no-metrics flag
	// turns the endpoint off.
	// Default: "127.0.0.1:9090"
	MetricsAddress string `yaml:"metrics_address"`

	// MetricsPath is the HTTP path the metrics are served on.
	// Default: "/metrics"
	MetricsPath string `yaml:"metrics_path"`
}
