package parser

import (
	"math"
	"strconv"

	"mercator-hq/callisto/pkg/cpl/ast"
	cplErrors "mercator-hq/callisto/pkg/cpl/errors"
)

// maxRepeatCount caps the repeat minimum a pattern may request.
// The maximum is deliberately left uncapped here; the validator's
// repetition-bound check closes that gap as configurable policy.
const maxRepeatCount = 1000

// cursor tracks a single parse pass over one pattern. The pattern is
// scanned as runes so multibyte characters parse as single literals;
// pos is a rune offset. Each Parse call creates a fresh cursor, which
// is what makes concurrent parses safe.
type cursor struct {
	pattern  []rune
	pos      int
	source   string // original pattern text, for error context
	depth    int
	maxDepth int // 0 disables the nesting guard
}

func (c *cursor) eof() bool {
	return c.pos >= len(c.pattern)
}

// peek returns the rune at the cursor without consuming it, or 0 at
// end of input.
func (c *cursor) peek() rune {
	if c.eof() {
		return 0
	}
	return c.pattern[c.pos]
}

// enter guards group recursion depth when a limit is configured.
func (c *cursor) enter() error {
	c.depth++
	if c.maxDepth > 0 && c.depth > c.maxDepth {
		return cplErrors.NewSyntaxError("pattern nesting too deep", c.pos, c.source)
	}
	return nil
}

func (c *cursor) leave() {
	c.depth--
}

// parseAlternation parses one alternation level: a concatenation plus
// zero or more "|"-separated concatenations, folded left into Split
// nodes so "a|b|c" becomes split(split(a,b),c).
func (c *cursor) parseAlternation() (*ast.Node, error) {
	node, err := c.parseConcatenation()
	if err != nil {
		return nil, err
	}

	for !c.eof() {
		if c.peek() != '|' {
			break // ")" or any other terminator belongs to the caller
		}
		c.pos++

		right, err := c.parseConcatenation()
		if err != nil {
			return nil, err
		}
		node = ast.NewSplit(node, right)
	}

	return node, nil
}

// parseConcatenation parses a run of postfixed atoms, folded left into
// Concat nodes so "abc" becomes cat(cat(a,b),c). A single atom is
// returned bare, and zero atoms yield Empty.
func (c *cursor) parseConcatenation() (*ast.Node, error) {
	var node *ast.Node

	for !c.eof() {
		ch := c.peek()
		if ch == '|' || ch == ')' {
			break
		}

		atom, err := c.parseAtom()
		if err != nil {
			return nil, err
		}

		if node == nil {
			node = atom
		} else {
			node = ast.NewConcat(node, atom)
		}
	}

	if node == nil {
		node = ast.NewEmpty()
	}
	return node, nil
}

// parseAtom parses one atom: a literal character, ".", or a
// parenthesized alternation, then hands the result to parsePostfix.
// At end of input it yields Empty without consuming anything.
func (c *cursor) parseAtom() (*ast.Node, error) {
	if c.eof() {
		return ast.NewEmpty(), nil
	}

	ch := c.pattern[c.pos]
	c.pos++

	var node *ast.Node
	switch ch {
	case '(':
		if err := c.enter(); err != nil {
			return nil, err
		}
		inner, err := c.parseAlternation()
		if err != nil {
			return nil, err
		}
		c.leave()

		if !c.eof() && c.peek() == ')' {
			c.pos++
		} else {
			return nil, cplErrors.NewSyntaxError(cplErrors.MsgUnbalancedParen, c.pos, c.source)
		}
		node = inner
	case '.':
		node = ast.NewAnyChar()
	default:
		node = ast.NewLiteral(ch)
	}

	return c.parsePostfix(node)
}

// parsePostfix applies at most one postfix operator to the node just
// parsed: "*" (zero or more), "+" (one or more), or a brace form
// "{m}", "{m,}", "{m,n}". A second consecutive operator is left for
// the concatenation loop to re-read as a literal atom.
func (c *cursor) parsePostfix(node *ast.Node) (*ast.Node, error) {
	if c.eof() {
		return node, nil
	}
	ch := c.peek()
	if ch != '*' && ch != '+' && ch != '{' {
		return node, nil
	}
	opPos := c.pos
	c.pos++

	var min, max int
	switch ch {
	case '*':
		min, max = 0, ast.Unbounded
	case '+':
		min, max = 1, ast.Unbounded
	case '{':
		m, ok := c.parseInt()
		if !ok {
			return nil, cplErrors.NewSyntaxError(cplErrors.MsgExpectInt, c.pos, c.source)
		}
		min, max = m, m

		if !c.eof() && c.peek() == ',' {
			c.pos++
			if n, ok := c.parseInt(); ok {
				max = n
			} else {
				max = ast.Unbounded
			}
		}

		if !c.eof() && c.peek() == '}' {
			c.pos++
		} else {
			return nil, cplErrors.NewSyntaxError(cplErrors.MsgUnbalancedBrace, c.pos, c.source)
		}
	}

	// Bound checks run in this order for every operator form, so
	// "{2000,1000}" reports the inverted bounds, not the cap.
	if max != ast.Unbounded && max < min {
		return nil, cplErrors.NewSyntaxError(cplErrors.MsgMinGreaterThanMax, opPos, c.source)
	}
	if min > maxRepeatCount {
		return nil, cplErrors.NewSyntaxError(cplErrors.MsgRepeatTooLarge, opPos, c.source)
	}

	return ast.NewRepeat(node, min, max)
}

// parseInt consumes a greedy run of ASCII digits and returns its value.
// ok is false when no digits were present; the caller decides whether
// that is an error. Runs too large for an int saturate to MaxInt so the
// repeat cap still rejects them.
func (c *cursor) parseInt() (value int, ok bool) {
	start := c.pos
	for !c.eof() && c.pattern[c.pos] >= '0' && c.pattern[c.pos] <= '9' {
		c.pos++
	}
	if c.pos == start {
		return 0, false
	}

	value, err := strconv.Atoi(string(c.pattern[start:c.pos]))
	if err != nil {
		value = math.MaxInt
	}
	return value, true
}
