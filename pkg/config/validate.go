package config

import (
	"fmt"
	"strings"
)

// FieldError represents a validation error for a specific configuration
// field.
type FieldError struct {
	// Field is the dotted path to the configuration field
	// (e.g., "library.dir").
	Field string

	// Message is a human-readable error message.
	Message string
}

// Error returns the error message for this field error.
func (e FieldError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// ValidationError represents one or more validation errors in a
// configuration. It implements the error interface and provides access to
// all field errors.
type ValidationError struct {
	// Errors contains all validation errors found in the configuration.
	Errors []FieldError
}

// Error returns a formatted string containing all validation errors.
func (e ValidationError) Error() string {
	if len(e.Errors) == 0 {
		return "configuration validation failed"
	}
	if len(e.Errors) == 1 {
		return fmt.Sprintf("configuration validation failed: %s", e.Errors[0].Error())
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("configuration validation failed with %d errors:\n", len(e.Errors)))
	for _, err := range e.Errors {
		sb.WriteString(fmt.Sprintf("  - %s\n", err.Error()))
	}
	return sb.String()
}

// Validate validates the entire configuration and returns a
// ValidationError if any validation rules fail. It returns nil if the
// configuration is valid. All validation errors are collected and returned
// together.
func Validate(cfg *Config) error {
	var errs []FieldError

	errs = append(errs, validateLogging(&cfg.Logging)...)
	errs = append(errs, validateParser(&cfg.Parser)...)
	errs = append(errs, validateValidator(&cfg.Validator)...)
	errs = append(errs, validateLibrary(&cfg.Library)...)
	errs = append(errs, validateReports(&cfg.Reports)...)
	errs = append(errs, validateCache(&cfg.Cache)...)

	if len(errs) > 0 {
		return ValidationError{Errors: errs}
	}
	return nil
}

func validateLogging(cfg *LoggingConfig) []FieldError {
	var errs []FieldError

	switch cfg.Level {
	case "debug", "info", "warn", "error":
	default:
		errs = append(errs, FieldError{
			Field:   "logging.level",
			Message: fmt.Sprintf("invalid level %q, must be one of: debug, info, warn, error", cfg.Level),
		})
	}

	switch cfg.Format {
	case "text", "json":
	default:
		errs = append(errs, FieldError{
			Field:   "logging.format",
			Message: fmt.Sprintf("invalid format %q, must be one of: text, json", cfg.Format),
		})
	}

	return errs
}

func validateParser(cfg *ParserConfig) []FieldError {
	var errs []FieldError

	if cfg.MaxPatternSize < 0 {
		errs = append(errs, FieldError{
			Field:   "parser.max_pattern_size",
			Message: "must not be negative",
		})
	}
	if cfg.MaxDepth < 0 {
		errs = append(errs, FieldError{
			Field:   "parser.max_depth",
			Message: "must not be negative",
		})
	}

	return errs
}

func validateValidator(cfg *ValidatorConfig) []FieldError {
	var errs []FieldError

	if cfg.MaxRepeat < 0 {
		errs = append(errs, FieldError{
			Field:   "validator.max_repeat",
			Message: "must not be negative",
		})
	}
	if cfg.MaxDepth < 0 {
		errs = append(errs, FieldError{
			Field:   "validator.max_depth",
			Message: "must not be negative",
		})
	}

	return errs
}

func validateLibrary(cfg *LibraryConfig) []FieldError {
	var errs []FieldError

	if cfg.Dir == "" {
		errs = append(errs, FieldError{
			Field:   "library.dir",
			Message: "must not be empty",
		})
	}
	if cfg.DebounceDelay < 0 {
		errs = append(errs, FieldError{
			Field:   "library.debounce_delay",
			Message: "must not be negative",
		})
	}
	if cfg.Git.URL != "" && cfg.Git.Dir == "" {
		errs = append(errs, FieldError{
			Field:   "library.git.dir",
			Message: "must not be empty when a git URL is configured",
		})
	}
	if cfg.Git.Token != "" && cfg.Git.SSHKeyPath != "" {
		errs = append(errs, FieldError{
			Field:   "library.git",
			Message: "token and ssh_key_path are mutually exclusive",
		})
	}

	return errs
}

func validateReports(cfg *ReportsConfig) []FieldError {
	var errs []FieldError

	switch cfg.Backend {
	case "memory", "sqlite":
	default:
		errs = append(errs, FieldError{
			Field:   "reports.backend",
			Message: fmt.Sprintf("invalid backend %q, must be one of: memory, sqlite", cfg.Backend),
		})
	}
	if cfg.Backend == "sqlite" && cfg.SQLitePath == "" {
		errs = append(errs, FieldError{
			Field:   "reports.sqlite_path",
			Message: "must not be empty for the sqlite backend",
		})
	}
	if cfg.RetentionDays < 0 {
		errs = append(errs, FieldError{
			Field:   "reports.retention_days",
			Message: "must not be negative",
		})
	}

	return errs
}

func validateCache(cfg *CacheConfig) []FieldError {
	var errs []FieldError

	switch cfg.Backend {
	case "memory", "sqlite":
	default:
		errs = append(errs, FieldError{
			Field:   "cache.backend",
			Message: fmt.Sprintf("invalid backend %q, must be one of: memory, sqlite", cfg.Backend),
		})
	}
	if cfg.Backend == "sqlite" && cfg.SQLitePath == "" {
		errs = append(errs, FieldError{
			Field:   "cache.sqlite_path",
			Message: "must not be empty for the sqlite backend",
		})
	}
	if cfg.MaxEntries < 0 {
		errs = append(errs, FieldError{
			Field:   "cache.max_entries",
			Message: "must not be negative",
		})
	}

	return errs
}
