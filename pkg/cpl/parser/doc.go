// Package parser turns CPL pattern text into pattern trees.
//
// The parser is a hand-written recursive descent over five small
// procedures, one per grammar level:
//
//	alternation   := concatenation ("|" concatenation)*
//	concatenation := (atom postfix?)*
//	atom          := literal | "." | "(" alternation ")"
//	postfix       := "*" | "+" | "{" int ("," int?)? "}"
//	int           := digit+
//
// It makes one left-to-right pass with no backtracking and no
// tokenizer; the cursor is an explicit rune offset threaded through the
// procedures. Both binary operators fold left: "abc" parses to
// cat(cat(a,b),c) and "a|b|c" to split(split(a,b),c).
//
// # Usage
//
//	p := parser.NewParser()
//	tree, err := p.Parse("(ab)+|c{2,5}")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	fmt.Println(tree)
//
// # Errors
//
// Parse failures are *errors.Error values whose Error() string is one
// of a fixed set of messages (see the errors package constants). The
// error also carries the rune offset and the pattern, so Detail() can
// render a caret diagnostic.
//
// # Limits
//
// The repeat minimum is capped at 1000; the repeat maximum is accepted
// unchecked, and the validator's repetition-bound lint is the place to
// reject oversized maximums. Pattern size is capped at 64KB by default
// (WithMaxPatternSize), and an optional group nesting guard is
// available for untrusted input (WithMaxDepth).
package parser
