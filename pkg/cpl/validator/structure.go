package validator

import (
	"mercator-hq/callisto/pkg/cpl/ast"
	cplErrors "mercator-hq/callisto/pkg/cpl/errors"
)

// checkStructure emits advisory findings for tree shapes that parse
// but rarely mean what the author intended. All findings here are
// warnings until strict mode promotes them.
func (v *Validator) checkStructure(node *ast.Node, errList *cplErrors.ErrorList) {
	ast.Walk(node, ast.VisitorFunc(func(n *ast.Node) error {
		switch n.Op {
		case ast.OpRepeat:
			if n.Inner.IsEmpty() {
				// "()*" and friends: a naive engine loops forever here
				errList.AddWarning(
					cplErrors.ErrorTypeValidation,
					"repetition of an empty group",
					cplErrors.NoPos,
					"",
				)
			}
			if n.Min == 0 && n.Max == 0 {
				errList.AddWarning(
					cplErrors.ErrorTypeValidation,
					"repetition {0,0} never matches its operand",
					cplErrors.NoPos,
					"",
				)
			}
			if !n.Inner.IsEmpty() && hasUnboundedRepeat(n.Inner) && n.Max == ast.Unbounded {
				errList.AddWarning(
					cplErrors.ErrorTypeValidation,
					"nested unbounded repetition",
					cplErrors.NoPos,
					"",
				)
			}
		case ast.OpSplit:
			if n.Left.Equal(n.Right) {
				errList.AddWarning(
					cplErrors.ErrorTypeValidation,
					"alternation branches are identical",
					cplErrors.NoPos,
					"",
				)
			}
		}
		return nil
	}))
}

// hasUnboundedRepeat reports whether the tree contains a Repeat node
// with no upper bound.
func hasUnboundedRepeat(node *ast.Node) bool {
	found := false
	ast.Walk(node, ast.VisitorFunc(func(n *ast.Node) error {
		if n.IsRepeat() && n.Max == ast.Unbounded {
			found = true
		}
		return nil
	}))
	return found
}
