package validator

import (
	"mercator-hq/callisto/pkg/cpl/ast"
	cplErrors "mercator-hq/callisto/pkg/cpl/errors"
)

// Validator runs lint checks over parsed pattern trees.
// The parser accepts anything the grammar allows; the validator is
// where operational policy lives, such as ceilings on repeat bounds
// and tree depth.
type Validator struct {
	// Configuration
	maxRepeat  int  // Ceiling for bounded repeat maximums (default: 1000)
	maxDepth   int  // Ceiling for tree depth (default: 200)
	strictMode bool // Strict mode (warnings become errors)
}

// NewValidator creates a new validator with default configuration.
func NewValidator() *Validator {
	return &Validator{
		maxRepeat: 1000,
		maxDepth:  200,
	}
}

// WithMaxRepeat sets the ceiling applied to bounded repeat maximums.
// The parser only caps repeat minimums, so this check is what rejects
// patterns like "a{0,100000}". A ceiling of 0 disables the check.
func (v *Validator) WithMaxRepeat(n int) *Validator {
	v.maxRepeat = n
	return v
}

// WithMaxDepth sets the ceiling applied to tree depth.
// A ceiling of 0 disables the check.
func (v *Validator) WithMaxDepth(n int) *Validator {
	v.maxDepth = n
	return v
}

// WithStrictMode enables strict validation (warnings become errors).
func (v *Validator) WithStrictMode(strict bool) *Validator {
	v.strictMode = strict
	return v
}

// Check runs every lint over the tree and returns all findings,
// severity-tagged. The list is never nil; an empty list means a clean
// tree. Strict mode does not change what Check reports.
func (v *Validator) Check(node *ast.Node) *cplErrors.ErrorList {
	errList := cplErrors.NewErrorList()
	if node == nil {
		return errList
	}

	v.checkRepeatBounds(node, errList)
	v.checkDepth(node, errList)
	v.checkStructure(node, errList)

	return errList
}

// Validate runs every lint and returns an error when any fatal finding
// exists. In strict mode advisory findings are promoted to errors
// first. The returned error is the full *errors.ErrorList, so callers
// see warnings alongside the failures that triggered it.
func (v *Validator) Validate(node *ast.Node) error {
	errList := v.Check(node)

	if v.strictMode {
		for _, e := range errList.Errors {
			e.Severity = cplErrors.SeverityError
		}
	}

	if !errList.HasSeverity(cplErrors.SeverityError) {
		return nil
	}
	return errList
}
