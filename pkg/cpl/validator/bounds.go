package validator

import (
	"fmt"

	"mercator-hq/callisto/pkg/cpl/ast"
	cplErrors "mercator-hq/callisto/pkg/cpl/errors"
)

// checkRepeatBounds flags bounded Repeat nodes whose maximum exceeds
// the configured ceiling. Unbounded repeats ("*", "+", "{m,}") are
// legal and never flagged; the ceiling exists because the parser
// accepts any finite maximum.
func (v *Validator) checkRepeatBounds(node *ast.Node, errList *cplErrors.ErrorList) {
	if v.maxRepeat <= 0 {
		return
	}

	ast.Walk(node, ast.VisitorFunc(func(n *ast.Node) error {
		if n.Bounded() && n.Max > v.maxRepeat {
			errList.AddError(
				cplErrors.ErrorTypeValidation,
				fmt.Sprintf("repeat maximum %d exceeds limit %d", n.Max, v.maxRepeat),
				cplErrors.NoPos,
				"",
			)
		}
		return nil
	}))
}

// checkDepth flags trees deeper than the configured ceiling. Depth is
// bounded by pattern length, so this is a guard for downstream
// consumers that recurse over the tree.
func (v *Validator) checkDepth(node *ast.Node, errList *cplErrors.ErrorList) {
	if v.maxDepth <= 0 {
		return
	}

	if depth := node.Depth(); depth > v.maxDepth {
		errList.AddError(
			cplErrors.ErrorTypeValidation,
			fmt.Sprintf("pattern tree depth %d exceeds limit %d", depth, v.maxDepth),
			cplErrors.NoPos,
			"",
		)
	}
}
