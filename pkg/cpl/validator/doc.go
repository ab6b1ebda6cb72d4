// Package validator provides lint checks for parsed CPL pattern trees.
//
// The parser accepts everything its grammar allows; the validator is
// where operational policy lives. Checks fall into two groups:
//
// Fatal checks (SeverityError):
//
//   - repetition-bound: a bounded repeat maximum above the configured
//     ceiling (default 1000). The parser caps only the minimum, so
//     this check is what rejects "a{0,100000}".
//   - nesting-depth: a tree deeper than the configured ceiling
//     (default 200).
//
// Advisory checks (SeverityWarning):
//
//   - repetition of an empty group, e.g. "()*"
//   - a {0,0} repetition, which never matches its operand
//   - nested unbounded repetition, e.g. "(a*)*"
//   - an alternation whose branches are identical, e.g. "a|a"
//
// # Usage
//
//	v := validator.NewValidator()
//	if err := v.Validate(tree); err != nil {
//	    log.Fatal(err)
//	}
//
// Strict mode promotes advisories to errors:
//
//	v := validator.NewValidator().WithStrictMode(true)
//
// Check returns every finding without failing, for tooling that wants
// to render warnings:
//
//	for _, finding := range v.Check(tree).Errors {
//	    fmt.Print(finding.Detail())
//	}
package validator
