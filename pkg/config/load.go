package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

// LoadConfig loads configuration from a YAML file at the specified path.
// It applies default values, validates the configuration, and returns any
// errors. The configuration is not modified by environment variables; use
// LoadConfigWithEnvOverrides for that functionality.
func LoadConfig(path string) (*Config, error) {
	// Read the file
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read configuration file %q: %w", path, err)
	}

	// Parse YAML
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse configuration file %q: %w", path, err)
	}

	// Apply defaults
	ApplyDefaults(&cfg)

	// Validate
	if err := Validate(&cfg); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return &cfg, nil
}

// LoadConfigWithEnvOverrides loads configuration from a YAML file and
// applies environment variable overrides. Environment variables follow the
// naming convention CALLISTO_SECTION_FIELD (e.g., CALLISTO_LIBRARY_DIR).
// Environment variables always take precedence over file-based
// configuration.
//
// The loading sequence is:
// 1. Load YAML from file
// 2. Apply default values
// 3. Apply environment variable overrides
// 4. Validate final configuration
func LoadConfigWithEnvOverrides(path string) (*Config, error) {
	// First load from file (this already applies defaults)
	cfg, err := LoadConfig(path)
	if err != nil {
		return nil, err
	}

	// Apply environment variable overrides
	applyEnvOverrides(cfg)

	// Re-validate after overrides
	if err := Validate(cfg); err != nil {
		return nil, fmt.Errorf("configuration validation failed after environment overrides: %w", err)
	}

	return cfg, nil
}

// applyEnvOverrides applies environment variable overrides to the
// configuration. Environment variables use the format
// CALLISTO_SECTION_FIELD.
func applyEnvOverrides(cfg *Config) {
	// Logging overrides
	if val := os.Getenv("CALLISTO_LOGGING_LEVEL"); val != "" {
		cfg.Logging.Level = val
	}
	if val := os.Getenv("CALLISTO_LOGGING_FORMAT"); val != "" {
		cfg.Logging.Format = val
	}

	// Parser overrides
	if val := os.Getenv("CALLISTO_PARSER_MAX_PATTERN_SIZE"); val != "" {
		if i, err := strconv.ParseInt(val, 10, 64); err == nil {
			cfg.Parser.MaxPatternSize = i
		}
	}
	if val := os.Getenv("CALLISTO_PARSER_MAX_DEPTH"); val != "" {
		if i, err := strconv.Atoi(val); err == nil {
			cfg.Parser.MaxDepth = i
		}
	}

	// Validator overrides
	if val := os.Getenv("CALLISTO_VALIDATOR_MAX_REPEAT"); val != "" {
		if i, err := strconv.Atoi(val); err == nil {
			cfg.Validator.MaxRepeat = i
		}
	}
	if val := os.Getenv("CALLISTO_VALIDATOR_MAX_DEPTH"); val != "" {
		if i, err := strconv.Atoi(val); err == nil {
			cfg.Validator.MaxDepth = i
		}
	}
	if val := os.Getenv("CALLISTO_VALIDATOR_STRICT"); val != "" {
		if b, err := strconv.ParseBool(val); err == nil {
			cfg.Validator.Strict = b
		}
	}

	// Library overrides
	if val := os.Getenv("CALLISTO_LIBRARY_DIR"); val != "" {
		cfg.Library.Dir = val
	}
	if val := os.Getenv("CALLISTO_LIBRARY_DEBOUNCE_DELAY"); val != "" {
		if d, err := time.ParseDuration(val); err == nil {
			cfg.Library.DebounceDelay = d
		}
	}
	if val := os.Getenv("CALLISTO_LIBRARY_RESCAN_SCHEDULE"); val != "" {
		cfg.Library.RescanSchedule = val
	}
	if val := os.Getenv("CALLISTO_LIBRARY_GIT_URL"); val != "" {
		cfg.Library.Git.URL = val
	}
	if val := os.Getenv("CALLISTO_LIBRARY_GIT_BRANCH"); val != "" {
		cfg.Library.Git.Branch = val
	}
	if val := os.Getenv("CALLISTO_LIBRARY_GIT_DIR"); val != "" {
		cfg.Library.Git.Dir = val
	}
	if val := os.Getenv("CALLISTO_LIBRARY_GIT_TOKEN"); val != "" {
		cfg.Library.Git.Token = val
	}
	if val := os.Getenv("CALLISTO_LIBRARY_GIT_SSH_KEY_PATH"); val != "" {
		cfg.Library.Git.SSHKeyPath = val
	}
	if val := os.Getenv("CALLISTO_LIBRARY_GIT_POLL_INTERVAL"); val != "" {
		if d, err := time.ParseDuration(val); err == nil {
			cfg.Library.Git.PollInterval = d
		}
	}

	// Reports overrides
	if val := os.Getenv("CALLISTO_REPORTS_ENABLED"); val != "" {
		if b, err := strconv.ParseBool(val); err == nil {
			cfg.Reports.Enabled = b
		}
	}
	if val := os.Getenv("CALLISTO_REPORTS_BACKEND"); val != "" {
		cfg.Reports.Backend = val
	}
	if val := os.Getenv("CALLISTO_REPORTS_SQLITE_PATH"); val != "" {
		cfg.Reports.SQLitePath = val
	}
	if val := os.Getenv("CALLISTO_REPORTS_RETENTION_DAYS"); val != "" {
		if i, err := strconv.Atoi(val); err == nil {
			cfg.Reports.RetentionDays = i
		}
	}
	if val := os.Getenv("CALLISTO_REPORTS_PRUNE_SCHEDULE"); val != "" {
		cfg.Reports.PruneSchedule = val
	}

	// Cache overrides
	if val := os.Getenv("CALLISTO_CACHE_ENABLED"); val != "" {
		if b, err := strconv.ParseBool(val); err == nil {
			cfg.Cache.Enabled = b
		}
	}
	if val := os.Getenv("CALLISTO_CACHE_BACKEND"); val != "" {
		cfg.Cache.Backend = val
	}
	if val := os.Getenv("CALLISTO_CACHE_SQLITE_PATH"); val != "" {
		cfg.Cache.SQLitePath = val
	}
	if val := os.Getenv("CALLISTO_CACHE_MAX_ENTRIES"); val != "" {
		if i, err := strconv.Atoi(val); err == nil {
			cfg.Cache.MaxEntries = i
		}
	}

	// Watch overrides
	if val := os.Getenv("CALLISTO_WATCH_METRICS_ADDRESS"); val != "" {
		cfg.Watch.MetricsAddress = val
	}
	if val := os.Getenv("CALLISTO_WATCH_METRICS_PATH"); val != "" {
		cfg.Watch.MetricsPath = val
	}
}
