package cli

import (
	"errors"
	"fmt"
	"strings"

	cplErrors "mercator-hq/callisto/pkg/cpl/errors"
)

// InputError represents an error reading pattern input from a file,
// argument, or stdin.
type InputError struct {
	Source  string
	Message string
}

func (e *InputError) Error() string {
	return fmt.Sprintf("input error in %s: %s", e.Source, e.Message)
}

// CommandError represents an error from a command execution.
type CommandError struct {
	Command string
	Err     error
}

func (e *CommandError) Error() string {
	return fmt.Sprintf("command %s failed: %v", e.Command, e.Err)
}

func (e *CommandError) Unwrap() error {
	return e.Err
}

// NewInputError creates a new InputError.
func NewInputError(source, message string) *InputError {
	return &InputError{
		Source:  source,
		Message: message,
	}
}

// NewCommandError creates a new CommandError.
func NewCommandError(command string, err error) *CommandError {
	return &CommandError{
		Command: command,
		Err:     err,
	}
}

// FormatError renders err for terminal display. Pattern errors carry
// position context and suggestions which are included in full; other
// errors render as their plain message.
func FormatError(err error) string {
	if err == nil {
		return ""
	}

	var patternErr *cplErrors.Error
	if errors.As(err, &patternErr) {
		return strings.TrimRight(patternErr.Detail(), "\n")
	}

	var list *cplErrors.ErrorList
	if errors.As(err, &list) {
		return strings.TrimRight(list.Error(), "\n")
	}

	return err.Error()
}
