package config

import "time"

// ConfigBuilder provides a fluent API for building Config instances in tests.
// It starts with default values and allows selective overrides.
type ConfigBuilder struct {
	cfg Config
}

// NewTestConfig creates a new ConfigBuilder with sensible defaults for testing.
// The resulting configuration is valid and can be used immediately.
func NewTestConfig() *ConfigBuilder {
	cfg := Config{}
	ApplyDefaults(&cfg)
	return &ConfigBuilder{cfg: cfg}
}

// Build returns the built Config instance.
func (b *ConfigBuilder) Build() *Config {
	return &b.cfg
}

// WithLoggingLevel sets the logging level.
func (b *ConfigBuilder) WithLoggingLevel(level string) *ConfigBuilder {
	b.cfg.Logging.Level = level
	return b
}

// WithLoggingFormat sets the logging format.
func (b *ConfigBuilder) WithLoggingFormat(format string) *ConfigBuilder {
	b.cfg.Logging.Format = format
	return b
}

// WithMaxPatternSize sets the parser pattern size limit.
func (b *ConfigBuilder) WithMaxPatternSize(n int64) *ConfigBuilder {
	b.cfg.Parser.MaxPatternSize = n
	return b
}

// WithValidatorMaxRepeat sets the validator repeat ceiling.
func (b *ConfigBuilder) WithValidatorMaxRepeat(n int) *ConfigBuilder {
	b.cfg.Validator.MaxRepeat = n
	return b
}

// WithStrictValidation enables strict validation.
func (b *ConfigBuilder) WithStrictValidation() *ConfigBuilder {
	b.cfg.Validator.Strict = true
	return b
}

// WithLibraryDir sets the catalog directory.
func (b *ConfigBuilder) WithLibraryDir(dir string) *ConfigBuilder {
	b.cfg.Library.Dir = dir
	return b
}

// WithDebounceDelay sets the file watcher debounce delay.
func (b *ConfigBuilder) WithDebounceDelay(d time.Duration) *ConfigBuilder {
	b.cfg.Library.DebounceDelay = d
	return b
}

// WithLibraryGitRepo sets the catalog git source.
func (b *ConfigBuilder) WithLibraryGitRepo(url string) *ConfigBuilder {
	b.cfg.Library.Git.URL = url
	if b.cfg.Library.Git.Branch == "" {
		b.cfg.Library.Git.Branch = DefaultGitBranch
	}
	if b.cfg.Library.Git.Dir == "" {
		b.cfg.Library.Git.Dir = DefaultGitDir
	}
	return b
}

// WithReportsEnabled sets whether report recording is enabled.
func (b *ConfigBuilder) WithReportsEnabled(enabled bool) *ConfigBuilder {
	b.cfg.Reports.Enabled = enabled
	return b
}

// WithReportsBackend sets the report store backend.
func (b *ConfigBuilder) WithReportsBackend(backend string) *ConfigBuilder {
	b.cfg.Reports.Backend = backend
	return b
}

// WithReportsSQLitePath sets the report database path and selects the
// sqlite backend.
func (b *ConfigBuilder) WithReportsSQLitePath(path string) *ConfigBuilder {
	b.cfg.Reports.Backend = "sqlite"
	b.cfg.Reports.SQLitePath = path
	return b
}

// WithCacheEnabled sets whether the parse cache is enabled.
func (b *ConfigBuilder) WithCacheEnabled(enabled bool) *ConfigBuilder {
	b.cfg.Cache.Enabled = enabled
	return b
}

// WithCacheBackend sets the cache store backend.
func (b *ConfigBuilder) WithCacheBackend(backend string) *ConfigBuilder {
	b.cfg.Cache.Backend = backend
	return b
}

// WithMetricsAddress sets the watch-mode metrics listen address.
func (b *ConfigBuilder) WithMetricsAddress(addr string) *ConfigBuilder {
	b.cfg.Watch.MetricsAddress = addr
	return b
}

// MinimalConfig returns a minimal valid configuration for testing.
// This is useful for tests that don't care about most configuration values.
func MinimalConfig() *Config {
	return NewTestConfig().Build()
}
