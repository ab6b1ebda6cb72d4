package cpl

import (
	"mercator-hq/callisto/pkg/cpl/ast"
	"mercator-hq/callisto/pkg/cpl/parser"
	"mercator-hq/callisto/pkg/cpl/validator"
)

// ParseAndValidate is a convenience function that parses pattern text
// and lints the resulting tree with default settings. It returns the
// tree if both steps succeed.
func ParseAndValidate(pattern string) (*ast.Node, error) {
	// Parse
	p := parser.NewParser()
	node, err := p.Parse(pattern)
	if err != nil {
		return nil, err
	}

	// Validate
	v := validator.NewValidator()
	if err := v.Validate(node); err != nil {
		return nil, err
	}

	return node, nil
}

// Parse parses pattern text without validation.
// Use this if you want to inspect the tree before linting it.
func Parse(pattern string) (*ast.Node, error) {
	p := parser.NewParser()
	return p.Parse(pattern)
}

// Validate lints a parsed tree with default settings.
func Validate(node *ast.Node) error {
	v := validator.NewValidator()
	return v.Validate(node)
}
