package config

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestLoadConfig_ValidFile(t *testing.T) {
	// Create a temporary config file
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "config.yaml")

	configContent := `
logging:
  level: "debug"
  format: "text"

parser:
  max_pattern_size: 4096

validator:
  max_repeat: 500
  strict: true

library:
  dir: "/srv/patterns"
  debounce_delay: "2s"
  rescan_schedule: "@every 30s"

reports:
  enabled: true
  backend: "sqlite"
  sqlite_path: "./test-reports.db"
  retention_days: 14
`

	if err := os.WriteFile(configPath, []byte(configContent), 0644); err != nil {
		t.Fatalf("failed to write config file: %v", err)
	}

	// Load the config
	cfg, err := LoadConfig(configPath)
	if err != nil {
		t.Fatalf("failed to load config: %v", err)
	}

	// Verify loaded values
	if cfg.Logging.Level != "debug" {
		t.Errorf("expected logging level %q, got %q", "debug", cfg.Logging.Level)
	}
	if cfg.Parser.MaxPatternSize != 4096 {
		t.Errorf("expected max pattern size %d, got %d", 4096, cfg.Parser.MaxPatternSize)
	}
	if cfg.Validator.MaxRepeat != 500 {
		t.Errorf("expected validator max repeat %d, got %d", 500, cfg.Validator.MaxRepeat)
	}
	if !cfg.Validator.Strict {
		t.Error("expected strict validation to be enabled")
	}
	if cfg.Library.Dir != "/srv/patterns" {
		t.Errorf("expected library dir %q, got %q", "/srv/patterns", cfg.Library.Dir)
	}
	if cfg.Library.DebounceDelay != 2*time.Second {
		t.Errorf("expected debounce delay %v, got %v", 2*time.Second, cfg.Library.DebounceDelay)
	}
	if cfg.Reports.RetentionDays != 14 {
		t.Errorf("expected retention days %d, got %d", 14, cfg.Reports.RetentionDays)
	}

	// Verify defaults filled in what the file left out
	if cfg.Validator.MaxDepth != DefaultValidatorMaxDepth {
		t.Errorf("expected default validator max depth %d, got %d", DefaultValidatorMaxDepth, cfg.Validator.MaxDepth)
	}
	if cfg.Cache.Backend != DefaultCacheBackend {
		t.Errorf("expected default cache backend %q, got %q", DefaultCacheBackend, cfg.Cache.Backend)
	}
}

func TestLoadConfig_FileNotFound(t *testing.T) {
	_, err := LoadConfig("/nonexistent/config.yaml")
	if err == nil {
		t.Error("expected error for nonexistent file")
	}
	// Check if error contains file not found message
	if !strings.Contains(err.Error(), "no such file or directory") {
		t.Errorf("expected file not found error, got: %v", err)
	}
}

func TestLoadConfig_MalformedYAML(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "config.yaml")

	malformedContent := `
library:
  dir: "/srv/patterns"
  invalid yaml here: [
`

	if err := os.WriteFile(configPath, []byte(malformedContent), 0644); err != nil {
		t.Fatalf("failed to write config file: %v", err)
	}

	_, err := LoadConfig(configPath)
	if err == nil {
		t.Error("expected error for malformed YAML")
	}
}

func TestLoadConfig_ValidationFailure(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "config.yaml")

	// Config with validation errors (bad logging level, bad cache backend)
	invalidContent := `
logging:
  level: "loud"
  format: "json"

cache:
  backend: "redis"
`

	if err := os.WriteFile(configPath, []byte(invalidContent), 0644); err != nil {
		t.Fatalf("failed to write config file: %v", err)
	}

	_, err := LoadConfig(configPath)
	if err == nil {
		t.Fatal("expected validation error")
	}

	// Check if the error chain contains a ValidationError
	var validationErr ValidationError
	if !errors.As(err, &validationErr) {
		t.Errorf("expected ValidationError in error chain, got %T: %v", err, err)
	}
}

func TestLoadConfigWithEnvOverrides_BasicOverrides(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "config.yaml")

	configContent := `
logging:
  level: "info"
  format: "json"

library:
  dir: "./catalogs"
`

	if err := os.WriteFile(configPath, []byte(configContent), 0644); err != nil {
		t.Fatalf("failed to write config file: %v", err)
	}

	// Set environment variables
	os.Setenv("CALLISTO_LOGGING_LEVEL", "debug")
	os.Setenv("CALLISTO_LIBRARY_DIR", "/env/patterns")
	os.Setenv("CALLISTO_REPORTS_BACKEND", "memory")
	defer func() {
		os.Unsetenv("CALLISTO_LOGGING_LEVEL")
		os.Unsetenv("CALLISTO_LIBRARY_DIR")
		os.Unsetenv("CALLISTO_REPORTS_BACKEND")
	}()

	cfg, err := LoadConfigWithEnvOverrides(configPath)
	if err != nil {
		t.Fatalf("failed to load config: %v", err)
	}

	// Verify environment overrides took effect
	if cfg.Logging.Level != "debug" {
		t.Errorf("expected logging level %q from env, got %q", "debug", cfg.Logging.Level)
	}
	if cfg.Library.Dir != "/env/patterns" {
		t.Errorf("expected library dir %q from env, got %q", "/env/patterns", cfg.Library.Dir)
	}
	if cfg.Reports.Backend != "memory" {
		t.Errorf("expected reports backend %q from env, got %q", "memory", cfg.Reports.Backend)
	}
}

func TestLoadConfigWithEnvOverrides_DurationParsing(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "config.yaml")

	configContent := `
library:
  dir: "./catalogs"
  debounce_delay: "500ms"
  git:
    url: "https://github.com/example/catalogs"
`

	if err := os.WriteFile(configPath, []byte(configContent), 0644); err != nil {
		t.Fatalf("failed to write config file: %v", err)
	}

	os.Setenv("CALLISTO_LIBRARY_DEBOUNCE_DELAY", "3s")
	os.Setenv("CALLISTO_LIBRARY_GIT_POLL_INTERVAL", "30s")
	defer func() {
		os.Unsetenv("CALLISTO_LIBRARY_DEBOUNCE_DELAY")
		os.Unsetenv("CALLISTO_LIBRARY_GIT_POLL_INTERVAL")
	}()

	cfg, err := LoadConfigWithEnvOverrides(configPath)
	if err != nil {
		t.Fatalf("failed to load config: %v", err)
	}

	if cfg.Library.DebounceDelay != 3*time.Second {
		t.Errorf("expected debounce delay %v, got %v", 3*time.Second, cfg.Library.DebounceDelay)
	}
	if cfg.Library.Git.PollInterval != 30*time.Second {
		t.Errorf("expected git poll interval %v, got %v", 30*time.Second, cfg.Library.Git.PollInterval)
	}
}

func TestLoadConfigWithEnvOverrides_IntegerParsing(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "config.yaml")

	configContent := `
validator:
  max_repeat: 1000

reports:
  enabled: true
  backend: "sqlite"
  retention_days: 90

cache:
  max_entries: 1024
`

	if err := os.WriteFile(configPath, []byte(configContent), 0644); err != nil {
		t.Fatalf("failed to write config file: %v", err)
	}

	os.Setenv("CALLISTO_VALIDATOR_MAX_REPEAT", "200")
	os.Setenv("CALLISTO_REPORTS_RETENTION_DAYS", "30")
	os.Setenv("CALLISTO_CACHE_MAX_ENTRIES", "4096")
	defer func() {
		os.Unsetenv("CALLISTO_VALIDATOR_MAX_REPEAT")
		os.Unsetenv("CALLISTO_REPORTS_RETENTION_DAYS")
		os.Unsetenv("CALLISTO_CACHE_MAX_ENTRIES")
	}()

	cfg, err := LoadConfigWithEnvOverrides(configPath)
	if err != nil {
		t.Fatalf("failed to load config: %v", err)
	}

	if cfg.Validator.MaxRepeat != 200 {
		t.Errorf("expected validator max repeat %d, got %d", 200, cfg.Validator.MaxRepeat)
	}
	if cfg.Reports.RetentionDays != 30 {
		t.Errorf("expected retention days %d, got %d", 30, cfg.Reports.RetentionDays)
	}
	if cfg.Cache.MaxEntries != 4096 {
		t.Errorf("expected cache max entries %d, got %d", 4096, cfg.Cache.MaxEntries)
	}
}

func TestLoadConfigWithEnvOverrides_BooleanParsing(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "config.yaml")

	configContent := `
validator:
  strict: false

reports:
  enabled: false
  backend: "sqlite"

cache:
  enabled: false
`

	if err := os.WriteFile(configPath, []byte(configContent), 0644); err != nil {
		t.Fatalf("failed to write config file: %v", err)
	}

	os.Setenv("CALLISTO_VALIDATOR_STRICT", "true")
	os.Setenv("CALLISTO_REPORTS_ENABLED", "true")
	os.Setenv("CALLISTO_CACHE_ENABLED", "true")
	defer func() {
		os.Unsetenv("CALLISTO_VALIDATOR_STRICT")
		os.Unsetenv("CALLISTO_REPORTS_ENABLED")
		os.Unsetenv("CALLISTO_CACHE_ENABLED")
	}()

	cfg, err := LoadConfigWithEnvOverrides(configPath)
	if err != nil {
		t.Fatalf("failed to load config: %v", err)
	}

	if !cfg.Validator.Strict {
		t.Error("expected strict validation to be true from env")
	}
	if !cfg.Reports.Enabled {
		t.Error("expected reports enabled to be true from env")
	}
	if !cfg.Cache.Enabled {
		t.Error("expected cache enabled to be true from env")
	}
}

func TestLoadConfigWithEnvOverrides_InvalidEnvValues(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "config.yaml")

	configContent := `
logging:
  level: "info"
  format: "json"
`

	if err := os.WriteFile(configPath, []byte(configContent), 0644); err != nil {
		t.Fatalf("failed to write config file: %v", err)
	}

	// Set invalid environment variables (they should be ignored or cause
	// validation to fail)
	os.Setenv("CALLISTO_CACHE_MAX_ENTRIES", "not-a-number")
	os.Setenv("CALLISTO_LOGGING_LEVEL", "invalid-level")
	defer func() {
		os.Unsetenv("CALLISTO_CACHE_MAX_ENTRIES")
		os.Unsetenv("CALLISTO_LOGGING_LEVEL")
	}()

	_, err := LoadConfigWithEnvOverrides(configPath)
	// Should fail validation due to invalid logging level
	if err == nil {
		t.Error("expected validation error for invalid env values")
	}
}

func TestLoadConfigWithEnvOverrides_SecretsFromEnv(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "config.yaml")

	configContent := `
library:
  dir: "./catalogs"
  git:
    url: "https://github.com/example/catalogs"
`

	if err := os.WriteFile(configPath, []byte(configContent), 0644); err != nil {
		t.Fatalf("failed to write config file: %v", err)
	}

	// Token should come from the environment rather than the file
	os.Setenv("CALLISTO_LIBRARY_GIT_TOKEN", "env-token-123")
	defer os.Unsetenv("CALLISTO_LIBRARY_GIT_TOKEN")

	cfg, err := LoadConfigWithEnvOverrides(configPath)
	if err != nil {
		t.Fatalf("failed to load config: %v", err)
	}

	if cfg.Library.Git.Token != "env-token-123" {
		t.Errorf("expected git token %q from env, got %q", "env-token-123", cfg.Library.Git.Token)
	}
}
