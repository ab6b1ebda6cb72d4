// Package cpl provides parsing and validation for the Callisto Pattern
// Language (CPL).
//
// CPL is a small regular-expression dialect for describing text shapes:
// literal characters, "." for any character, "|" alternation, "(...)"
// grouping, and the postfix repetitions "*", "+", "{m}", "{m,}" and
// "{m,n}". This package turns pattern text into a structured tree;
// matching text against a tree is a separate concern and lives with the
// consumers of the tree.
//
// # Architecture
//
// The package is organized into subpackages:
//
// - ast: pattern tree definitions (Node and its six variants)
//
// - parser: recursive descent from pattern text to trees
//
// - validator: lint checks over parsed trees (bound ceilings, depth,
// structural advisories)
//
// - errors: rich error types with pattern offsets and suggestions
//
// # Basic Usage
//
// Parse and validate a pattern:
//
//	import "mercator-hq/callisto/pkg/cpl"
//
//	tree, err := cpl.ParseAndValidate("(ab)+|c{2,5}")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	fmt.Println(tree)        // split(rep(cat(lit('a'),lit('b')),1,inf),rep(lit('c'),2,5))
//	fmt.Print(tree.Dump())   // indented tree rendering
//
// For control over limits and strictness, use the subpackages directly:
//
//	p := parser.NewParser().WithMaxDepth(50)
//	v := validator.NewValidator().WithMaxRepeat(500).WithStrictMode(true)
//
//	tree, err := p.Parse(pattern)
//	if err == nil {
//	    err = v.Validate(tree)
//	}
//
// # Grammar
//
// Five levels, descending:
//
//	alternation   := concatenation ("|" concatenation)*
//	concatenation := (atom postfix?)*
//	atom          := literal | "." | "(" alternation ")"
//	postfix       := "*" | "+" | "{" int ("," int?)? "}"
//	int           := digit+
//
// Both binary operators fold left, the empty pattern is legal (it
// matches the empty string), and a postfix operator binds to exactly
// one preceding atom.
//
// # Errors
//
// Parse failures report one of six fixed messages; see the errors
// package constants. Validation failures accumulate into an
// errors.ErrorList with per-finding severities.
package cpl
