package config

import "time"

// Default values for configuration fields.
const (
	// Logging defaults
	DefaultLoggingLevel  = "info"
	DefaultLoggingFormat = "json"

	// Parser defaults
	DefaultParserMaxPatternSize = int64(64 * 1024) // 64KB
	DefaultParserMaxDepth       = 0                // disabled

	// Validator defaults
	DefaultValidatorMaxRepeat = 1000
	DefaultValidatorMaxDepth  = 200

	// Library defaults
	DefaultLibraryDir           = "./catalogs"
	DefaultLibraryDebounceDelay = 500 * time.Millisecond
	DefaultGitBranch            = "main"
	DefaultGitDir               = "data/catalog-git"
	DefaultGitPollInterval      = 5 * time.Minute

	// Reports defaults
	DefaultReportsBackend       = "sqlite"
	DefaultReportsSQLitePath    = "data/reports.db"
	DefaultReportsRetentionDays = 90
	DefaultReportsPruneSchedule = "0 3 * * *"

	// Cache defaults
	DefaultCacheBackend    = "memory"
	DefaultCacheSQLitePath = "data/cache.db"
	DefaultCacheMaxEntries = 1024

	// Watch defaults
	DefaultWatchMetricsAddress = "127.0.0.1:9090"
	DefaultWatchMetricsPath    = "/metrics"
)

// ApplyDefaults applies default values to a Config struct.
// It sets defaults for any fields that have zero values.
// This function is idempotent and safe to call multiple times.
//
// Parser.MaxDepth keeps its zero value on purpose: 0 means the nesting
// guard is off, which is the documented default.
func ApplyDefaults(cfg *Config) {
	// Logging defaults
	if cfg.Logging.Level == "" {
		cfg.Logging.Level = DefaultLoggingLevel
	}
	if cfg.Logging.Format == "" {
		cfg.Logging.Format = DefaultLoggingFormat
	}

	// Parser defaults
	if cfg.Parser.MaxPatternSize == 0 {
		cfg.Parser.MaxPatternSize = DefaultParserMaxPatternSize
	}

	// Validator defaults
	if cfg.Validator.MaxRepeat == 0 {
		cfg.Validator.MaxRepeat = DefaultValidatorMaxRepeat
	}
	if cfg.Validator.MaxDepth == 0 {
		cfg.Validator.MaxDepth = DefaultValidatorMaxDepth
	}

	// Library defaults
	if cfg.Library.Dir == "" {
		cfg.Library.Dir = DefaultLibraryDir
	}
	if cfg.Library.DebounceDelay == 0 {
		cfg.Library.DebounceDelay = DefaultLibraryDebounceDelay
	}
	if cfg.Library.Git.Branch == "" {
		cfg.Library.Git.Branch = DefaultGitBranch
	}
	if cfg.Library.Git.Dir == "" {
		cfg.Library.Git.Dir = DefaultGitDir
	}
	if cfg.Library.Git.PollInterval == 0 {
		cfg.Library.Git.PollInterval = DefaultGitPollInterval
	}

	// Reports defaults
	if cfg.Reports.Backend == "" {
		cfg.Reports.Backend = DefaultReportsBackend
	}
	if cfg.Reports.SQLitePath == "" {
		cfg.Reports.SQLitePath = DefaultReportsSQLitePath
	}
	if cfg.Reports.RetentionDays == 0 {
		cfg.Reports.RetentionDays = DefaultReportsRetentionDays
	}
	if cfg.Reports.PruneSchedule == "" {
		cfg.Reports.PruneSchedule = DefaultReportsPruneSchedule
	}

	// Cache defaults
	if cfg.Cache.Backend == "" {
		cfg.Cache.Backend = DefaultCacheBackend
	}
	if cfg.Cache.SQLitePath == "" {
		cfg.Cache.SQLitePath = DefaultCacheSQLitePath
	}
	if cfg.Cache.MaxEntries == 0 {
		cfg.Cache.MaxEntries = DefaultCacheMaxEntries
	}

	// Watch defaults
	if cfg.Watch.MetricsAddress == "" {
		cfg.Watch.MetricsAddress = DefaultWatchMetricsAddress
	}
	if cfg.Watch.MetricsPath == "" {
		cfg.Watch.MetricsPath = DefaultWatchMetricsPath
	}
}

// DefaultConfig returns a Config populated entirely with defaults.
func DefaultConfig() *Config {
	cfg := &Config{}
	ApplyDefaults(cfg)
	return cfg
}
