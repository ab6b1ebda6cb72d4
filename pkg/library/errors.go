package library

import (
	"fmt"
	"strings"
)

// LoadError represents an error that occurred while reading a catalog
// file. This includes file system errors like "file not found" or
// "permission denied", and errors from size or encoding checks.
type LoadError struct {
	// FilePath is the path to the file that failed to load
	FilePath string

	// Message describes the error
	Message string

	// Cause is the underlying error that caused this load error
	Cause error
}

// Error implements the error interface.
func (e *LoadError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("failed to load catalog file %q: %s: %v", e.FilePath, e.Message, e.Cause)
	}
	return fmt.Sprintf("failed to load catalog file %q: %s", e.FilePath, e.Message)
}

// Unwrap implements the errors.Unwrap interface for error chain support.
func (e *LoadError) Unwrap() error {
	return e.Cause
}

// CatalogError represents a bad entry inside an otherwise readable
// catalog: a pattern that does not parse, a duplicate name, or a
// missing required field.
type CatalogError struct {
	// FilePath is the path to the catalog file
	FilePath string

	// PatternName is the name of the offending pattern entry, if known
	PatternName string

	// Message describes the error
	Message string

	// Cause is the underlying error (a pattern parse error, usually)
	Cause error
}

// Error implements the error interface.
func (e *CatalogError) Error() string {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("catalog %q", e.FilePath))
	if e.PatternName != "" {
		sb.WriteString(fmt.Sprintf(": pattern %q", e.PatternName))
	}
	sb.WriteString(": ")
	sb.WriteString(e.Message)
	if e.Cause != nil {
		sb.WriteString(fmt.Sprintf(": %v", e.Cause))
	}
	return sb.String()
}

// Unwrap implements the errors.Unwrap interface for error chain support.
func (e *CatalogError) Unwrap() error {
	return e.Cause
}

// RegistryError represents an error that occurred during registry
// operations such as registering a nil or unnamed catalog.
type RegistryError struct {
	// Catalog is the name of the catalog involved in the error
	Catalog string

	// Operation is the operation that failed (e.g., "register", "replace")
	Operation string

	// Message describes the registry error
	Message string
}

// Error implements the error interface.
func (e *RegistryError) Error() string {
	if e.Catalog != "" {
		return fmt.Sprintf("registry error for catalog %q during %s: %s", e.Catalog, e.Operation, e.Message)
	}
	return fmt.Sprintf("registry error during %s: %s", e.Operation, e.Message)
}

// ErrorList contains multiple errors from loading a catalog directory,
// where some files may succeed and others fail.
type ErrorList struct {
	Errors []error
}

// Error implements the error interface.
func (e *ErrorList) Error() string {
	if len(e.Errors) == 0 {
		return "no errors"
	}
	if len(e.Errors) == 1 {
		return e.Errors[0].Error()
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("%d errors occurred:\n", len(e.Errors)))
	for i, err := range e.Errors {
		sb.WriteString(fmt.Sprintf("  %d. %v\n", i+1, err))
	}
	return sb.String()
}

// Add adds an error to the list.
func (e *ErrorList) Add(err error) {
	if err != nil {
		e.Errors = append(e.Errors, err)
	}
}

// HasErrors returns true if the list contains any errors.
func (e *ErrorList) HasErrors() bool {
	return len(e.Errors) > 0
}

// ToError returns nil if there are no errors, the single error if there
// is one, or the ErrorList itself if there are multiple errors.
func (e *ErrorList) ToError() error {
	if len(e.Errors) == 0 {
		return nil
	}
	if len(e.Errors) == 1 {
		return e.Errors[0]
	}
	return e
}
