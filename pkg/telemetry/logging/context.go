package logging

import (
	"context"
	"log/slog"
)

// Context keys for common log fields.
type contextKey string

const (
	// RunIDKey is the context key for lint run identifiers.
	RunIDKey contextKey = "run_id"

	// CatalogKey is the context key for catalog names.
	CatalogKey contextKey = "catalog"

	// PatternKey is the context key for pattern names.
	PatternKey contextKey = "pattern"
)

// WithRunID adds a lint run identifier to the context.
func WithRunID(ctx context.Context, runID string) context.Context {
	return context.WithValue(ctx, RunIDKey, runID)
}

// GetRunID retrieves the lint run identifier from the context.
func GetRunID(ctx context.Context) string {
	if runID, ok := ctx.Value(RunIDKey).(string); ok {
		return runID
	}
	return ""
}

// WithCatalog adds a catalog name to the context.
func WithCatalog(ctx context.Context, catalog string) context.Context {
	return context.WithValue(ctx, CatalogKey, catalog)
}

// GetCatalog retrieves the catalog name from the context.
func GetCatalog(ctx context.Context) string {
	if catalog, ok := ctx.Value(CatalogKey).(string); ok {
		return catalog
	}
	return ""
}

// WithPattern adds a pattern name to the context.
func WithPattern(ctx context.Context, pattern string) context.Context {
	return context.WithValue(ctx, PatternKey, pattern)
}

// GetPattern retrieves the pattern name from the context.
func GetPattern(ctx context.Context) string {
	if pattern, ok := ctx.Value(PatternKey).(string); ok {
		return pattern
	}
	return ""
}

// extractContextFields extracts common fields from context for logging.
// Returns a slice of key-value pairs suitable for logger.With().
func extractContextFields(ctx context.Context) []any {
	var fields []any

	if runID := GetRunID(ctx); runID != "" {
		fields = append(fields, "run_id", runID)
	}

	if catalog := GetCatalog(ctx); catalog != "" {
		fields = append(fields, "catalog", catalog)
	}

	if pattern := GetPattern(ctx); pattern != "" {
		fields = append(fields, "pattern", pattern)
	}

	return fields
}

// FromContext returns a logger with fields carried by the context
// attached. If the context carries no known fields, the logger is
// returned unchanged.
func FromContext(ctx context.Context, logger *slog.Logger) *slog.Logger {
	fields := extractContextFields(ctx)
	if len(fields) == 0 {
		return logger
	}
	return logger.With(fields...)
}
