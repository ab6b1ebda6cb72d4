package errors

import (
	"fmt"
	"strings"
)

// ErrorType categorizes the type of error encountered while parsing or
// validating a pattern.
type ErrorType string

const (
	ErrorTypeSyntax     ErrorType = "syntax"     // Pattern text does not parse
	ErrorTypeStructural ErrorType = "structural" // Tree construction invariant violated
	ErrorTypeValidation ErrorType = "validation" // Lint finding on a parsed tree
	ErrorTypeIO         ErrorType = "io"         // File I/O error
)

// Severity ranks a finding. Parse failures are always SeverityError.
// Validator lints may carry SeverityWarning until strict mode promotes them.
type Severity string

const (
	SeverityError   Severity = "error"
	SeverityWarning Severity = "warning"
)

// Parse failure messages. These strings are part of the public contract:
// callers and tests match on them byte for byte, so they must never be
// reworded.
const (
	MsgUnexpectedParen   = `unexpected ")"`                     // close paren with no matching open
	MsgUnbalancedParen   = "unbalanced parenthesis"             // open paren never closed
	MsgExpectInt         = "expect int"                         // "{" not followed by an integer
	MsgUnbalancedBrace   = "unbalanced brace"                   // "{" never closed
	MsgMinGreaterThanMax = "min repeat greater than max repeat" // {m,n} with n < m
	MsgRepeatTooLarge    = "the repetition number is too large" // minimum above the repeat cap
)

// NoPos marks an error with no meaningful offset into the pattern.
const NoPos = -1

// Error represents a rich error with pattern context and a suggested fix.
// Error() returns only the bare message so that callers matching on the
// fixed parse failure strings see them exactly; use Detail() for the
// full human-readable rendering.
type Error struct {
	Type       ErrorType // Category of error
	Severity   Severity  // Error or warning; empty means error
	Message    string    // Error message (stable, see message constants)
	Pos        int       // Rune offset into the pattern, or NoPos
	Pattern    string    // The pattern being parsed or validated
	Suggestion string    // Suggested fix (optional)
}

// NewSyntaxError creates a parse error at the given rune offset.
// A canonical suggestion is attached when one exists for the message.
func NewSyntaxError(message string, pos int, pattern string) *Error {
	return &Error{
		Type:       ErrorTypeSyntax,
		Severity:   SeverityError,
		Message:    message,
		Pos:        pos,
		Pattern:    pattern,
		Suggestion: SuggestSyntaxFix(message),
	}
}

// Error implements the error interface.
// It returns the bare message with no decoration.
func (e *Error) Error() string {
	return e.Message
}

// HasPos returns true if the error carries a usable pattern offset.
func (e *Error) HasPos() bool {
	return e.Pos != NoPos && e.Pos >= 0
}

// IsWarning returns true if this finding is advisory rather than fatal.
func (e *Error) IsWarning() bool {
	return e.Severity == SeverityWarning
}

// Detail returns a formatted multi-line rendering with the pattern,
// a caret at the offending offset, and the suggestion if present.
func (e *Error) Detail() string {
	var sb strings.Builder

	sev := e.Severity
	if sev == "" {
		sev = SeverityError
	}
	sb.WriteString(fmt.Sprintf("[%s] %s: %s\n", e.Type, sev, e.Message))

	if e.Pattern != "" {
		if e.HasPos() {
			sb.WriteString(fmt.Sprintf("  --> offset %d\n", e.Pos))
		}
		sb.WriteString(FormatPatternContext(e.Pattern, e.Pos))
	}

	if e.Suggestion != "" {
		sb.WriteString(fmt.Sprintf("  = suggestion: %s\n", e.Suggestion))
	}

	return sb.String()
}

// ErrorList represents a collection of findings from parsing or validation.
// It allows accumulating multiple findings instead of failing on the first.
type ErrorList struct {
	Errors []*Error
}

// NewErrorList creates a new empty error list.
func NewErrorList() *ErrorList {
	return &ErrorList{
		Errors: make([]*Error, 0),
	}
}

// Add appends an error to the list.
func (el *ErrorList) Add(err *Error) {
	el.Errors = append(el.Errors, err)
}

// AddError creates and adds a new error with the given parameters.
func (el *ErrorList) AddError(errType ErrorType, message string, pos int, pattern string) {
	el.Add(&Error{
		Type:     errType,
		Severity: SeverityError,
		Message:  message,
		Pos:      pos,
		Pattern:  pattern,
	})
}

// AddWarning creates and adds a new advisory finding.
func (el *ErrorList) AddWarning(errType ErrorType, message string, pos int, pattern string) {
	el.Add(&Error{
		Type:     errType,
		Severity: SeverityWarning,
		Message:  message,
		Pos:      pos,
		Pattern:  pattern,
	})
}

// HasErrors returns true if the list contains any findings at all,
// warnings included.
func (el *ErrorList) HasErrors() bool {
	return len(el.Errors) > 0
}

// Count returns the number of findings in the list.
func (el *ErrorList) Count() int {
	return len(el.Errors)
}

// Error implements the error interface.
// It returns all findings formatted as a single string.
func (el *ErrorList) Error() string {
	if !el.HasErrors() {
		return ""
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("found %d problem(s):\n\n", el.Count()))

	for i, err := range el.Errors {
		sb.WriteString(fmt.Sprintf("problem %d:\n", i+1))
		sb.WriteString(err.Detail())
		sb.WriteString("\n")
	}

	return sb.String()
}

// ToError returns nil if the list is empty, otherwise the list itself.
func (el *ErrorList) ToError() error {
	if !el.HasErrors() {
		return nil
	}
	return el
}

// ByType returns all findings of the given type.
func (el *ErrorList) ByType(errType ErrorType) []*Error {
	var result []*Error
	for _, err := range el.Errors {
		if err.Type == errType {
			result = append(result, err)
		}
	}
	return result
}

// BySeverity returns all findings of the given severity.
// Findings with an empty severity count as SeverityError.
func (el *ErrorList) BySeverity(sev Severity) []*Error {
	var result []*Error
	for _, err := range el.Errors {
		s := err.Severity
		if s == "" {
			s = SeverityError
		}
		if s == sev {
			result = append(result, err)
		}
	}
	return result
}

// HasErrorType returns true if the list contains at least one finding of
// the given type.
func (el *ErrorList) HasErrorType(errType ErrorType) bool {
	for _, err := range el.Errors {
		if err.Type == errType {
			return true
		}
	}
	return false
}

// HasSeverity returns true if the list contains at least one finding of
// the given severity.
func (el *ErrorList) HasSeverity(sev Severity) bool {
	return len(el.BySeverity(sev)) > 0
}
