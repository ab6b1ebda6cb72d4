package parser

import (
	"fmt"

	"mercator-hq/callisto/pkg/cpl/ast"
	cplErrors "mercator-hq/callisto/pkg/cpl/errors"
)

// Parser parses CPL pattern text into pattern trees.
// It makes a single left-to-right pass with no backtracking, so parse
// time is linear in the pattern length.
type Parser struct {
	// Configuration
	maxPatternSize int64 // Maximum pattern size in bytes (default: 64KB)
	maxDepth       int   // Maximum group nesting depth (default: 0, disabled)
}

// NewParser creates a new parser with default configuration.
func NewParser() *Parser {
	return &Parser{
		maxPatternSize: 64 * 1024, // 64KB
		maxDepth:       0,
	}
}

// WithMaxPatternSize sets the maximum pattern size limit.
// A size of 0 disables the limit.
func (p *Parser) WithMaxPatternSize(size int64) *Parser {
	p.maxPatternSize = size
	return p
}

// WithMaxDepth sets the maximum group nesting depth. The guard is off
// by default: arbitrarily nested groups are legal CPL, and recursion is
// already bounded by the pattern length. Enable it when parsing
// untrusted patterns with a small goroutine stack.
func (p *Parser) WithMaxDepth(depth int) *Parser {
	p.maxDepth = depth
	return p
}

// Parse parses pattern text and returns the root of the pattern tree.
// The empty pattern is legal and parses to an Empty node. On failure
// the returned error is a *errors.Error whose Error() string is one of
// the stable parse failure messages.
//
// Parse is a pure function of its input: a fresh cursor backs every
// call, so a single Parser may be used from many goroutines at once.
func (p *Parser) Parse(pattern string) (*ast.Node, error) {
	if p.maxPatternSize > 0 && int64(len(pattern)) > p.maxPatternSize {
		return nil, &cplErrors.Error{
			Type:    cplErrors.ErrorTypeSyntax,
			Message: fmt.Sprintf("pattern length %d exceeds maximum %d bytes", len(pattern), p.maxPatternSize),
			Pos:     cplErrors.NoPos,
			Pattern: pattern,
		}
	}

	c := &cursor{
		pattern:  []rune(pattern),
		source:   pattern,
		maxDepth: p.maxDepth,
	}

	node, err := c.parseAlternation()
	if err != nil {
		return nil, err
	}

	// The grammar stops at any close paren it did not open, so leftover
	// input always begins with ")".
	if !c.eof() {
		return nil, cplErrors.NewSyntaxError(cplErrors.MsgUnexpectedParen, c.pos, pattern)
	}

	return node, nil
}
