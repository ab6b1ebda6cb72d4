// Package ast provides parse tree definitions for the Callisto Pattern
// Language (CPL).
//
// A parsed pattern is a binary tree of Node values. Each node carries an
// Op tag naming its variant plus the payload fields that variant uses.
// Trees are immutable after construction and safe to share across
// goroutines.
//
// # Node Variants
//
// OpEmpty: matches the empty string
//
// OpLiteral: matches one specific character (Char)
//
// OpAnyChar: "." matches any single character
//
// OpConcat: Left followed by Right
//
// OpSplit: Left or Right
//
// OpRepeat: Inner repeated between Min and Max times, where Max may be
// Unbounded
//
// # Shape Invariants
//
// Sequences and alternations fold to the left, so "abc" parses to
//
//	concat
//	├── concat
//	│   ├── literal 'a'
//	│   └── literal 'b'
//	└── literal 'c'
//
// and "a|b|c" nests its splits the same way. A Repeat node always
// satisfies Min >= 0 and (Max == Unbounded or Max >= Min); NewRepeat
// rejects anything else, so consumers never need to re-check bounds.
//
// # Basic Usage
//
// Build a tree by hand:
//
//	star, err := ast.NewRepeat(ast.NewLiteral('a'), 0, ast.Unbounded)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	tree := ast.NewConcat(star, ast.NewAnyChar())
//	fmt.Println(tree) // cat(rep(lit('a'),0,inf),any)
//
// Traverse with a visitor:
//
//	count := 0
//	ast.Walk(tree, ast.VisitorFunc(func(n *ast.Node) error {
//	    if n.IsRepeat() && !n.Bounded() {
//	        count++
//	    }
//	    return nil
//	}))
package ast
