// Package errors provides rich error types for CPL parsing and validation.
//
// The error types carry the pattern text, the rune offset of the problem,
// and a suggested fix, so tooling can render precise diagnostics while
// programmatic callers keep matching on stable message strings.
//
// # Error Types
//
// ErrorTypeSyntax: Pattern text does not parse
//
// ErrorTypeStructural: Tree construction invariant violated
//
// ErrorTypeValidation: Lint finding on a parsed tree
//
// ErrorTypeIO: File I/O errors
//
// # Stable Messages
//
// Parse failures use a fixed set of message strings (MsgUnexpectedParen,
// MsgUnbalancedParen, MsgExpectInt, MsgUnbalancedBrace,
// MsgMinGreaterThanMax, MsgRepeatTooLarge). Error() returns the bare
// message with no decoration, so these strings are safe to match exactly:
//
//	_, err := parser.Parse("a{2")
//	if err != nil && err.Error() == errors.MsgUnbalancedBrace {
//	    // handle the unclosed repetition
//	}
//
// # Rich Rendering
//
// Detail() renders the full diagnostic with a caret into the pattern:
//
//	[syntax] error: unbalanced brace
//	  --> offset 3
//	  | a{2
//	  |    ^
//	  = suggestion: close the repetition with "}"
//
// # Accumulating Findings
//
// Validators collect multiple findings into an ErrorList:
//
//	errList := errors.NewErrorList()
//	errList.AddError(errors.ErrorTypeValidation, "nesting too deep", errors.NoPos, pattern)
//	errList.AddWarning(errors.ErrorTypeValidation, "repetition of empty group", errors.NoPos, pattern)
//
//	if errList.HasSeverity(errors.SeverityError) {
//	    return errList.ToError()
//	}
package errors
