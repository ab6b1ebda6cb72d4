package ast

import (
	cplErrors "mercator-hq/callisto/pkg/cpl/errors"
)

// NodeOp identifies the variant of a pattern tree node.
type NodeOp string

const (
	OpEmpty   NodeOp = "empty"    // Matches the empty string
	OpLiteral NodeOp = "literal"  // Matches one specific character
	OpAnyChar NodeOp = "any_char" // "." matches any single character
	OpConcat  NodeOp = "concat"   // Left followed by Right
	OpSplit   NodeOp = "split"    // Left or Right
	OpRepeat  NodeOp = "repeat"   // Inner repeated Min through Max times
)

// Unbounded marks a Repeat node with no upper bound ("*", "+", "{m,}").
const Unbounded = -1

// Node represents a single node in a parsed pattern tree.
// Nodes are immutable after construction: a parsed tree may be shared
// across goroutines without synchronization.
type Node struct {
	Op    NodeOp // Variant of this node
	Char  rune   // Matched character (for Literal nodes)
	Left  *Node  // First operand (for Concat/Split nodes)
	Right *Node  // Second operand (for Concat/Split nodes)
	Inner *Node  // Repeated subtree (for Repeat nodes)
	Min   int    // Minimum repetitions (for Repeat nodes)
	Max   int    // Maximum repetitions, or Unbounded (for Repeat nodes)
}

// NewEmpty creates a node matching the empty string.
func NewEmpty() *Node {
	return &Node{Op: OpEmpty}
}

// NewLiteral creates a node matching exactly the given character.
func NewLiteral(ch rune) *Node {
	return &Node{Op: OpLiteral, Char: ch}
}

// NewAnyChar creates a node matching any single character.
func NewAnyChar() *Node {
	return &Node{Op: OpAnyChar}
}

// NewConcat creates a sequence node: left followed by right.
func NewConcat(left, right *Node) *Node {
	return &Node{Op: OpConcat, Left: left, Right: right}
}

// NewSplit creates an alternation node: left or right.
func NewSplit(left, right *Node) *Node {
	return &Node{Op: OpSplit, Left: left, Right: right}
}

// NewRepeat creates a repetition node for inner repeated between min and
// max times, where max may be Unbounded. It returns a structural error
// when the bounds are inconsistent, so a Repeat node with max below min
// cannot exist.
func NewRepeat(inner *Node, min, max int) (*Node, error) {
	if inner == nil {
		return nil, &cplErrors.Error{
			Type:    cplErrors.ErrorTypeStructural,
			Message: "repeat of nil node",
			Pos:     cplErrors.NoPos,
		}
	}
	if min < 0 {
		return nil, &cplErrors.Error{
			Type:    cplErrors.ErrorTypeStructural,
			Message: "negative repeat minimum",
			Pos:     cplErrors.NoPos,
		}
	}
	if max != Unbounded && max < min {
		return nil, &cplErrors.Error{
			Type:    cplErrors.ErrorTypeStructural,
			Message: cplErrors.MsgMinGreaterThanMax,
			Pos:     cplErrors.NoPos,
		}
	}
	return &Node{Op: OpRepeat, Inner: inner, Min: min, Max: max}, nil
}

// MustRepeat is like NewRepeat but panics on inconsistent bounds.
// It is intended for statically known trees, typically in tests.
func MustRepeat(inner *Node, min, max int) *Node {
	n, err := NewRepeat(inner, min, max)
	if err != nil {
		panic(err)
	}
	return n
}

// IsEmpty returns true if this node matches the empty string.
func (n *Node) IsEmpty() bool {
	return n.Op == OpEmpty
}

// IsLiteral returns true if this node matches one specific character.
func (n *Node) IsLiteral() bool {
	return n.Op == OpLiteral
}

// IsAnyChar returns true if this node matches any single character.
func (n *Node) IsAnyChar() bool {
	return n.Op == OpAnyChar
}

// IsBinary returns true if this node combines two subtrees (Concat/Split).
func (n *Node) IsBinary() bool {
	return n.Op == OpConcat || n.Op == OpSplit
}

// IsRepeat returns true if this node repeats a subtree.
func (n *Node) IsRepeat() bool {
	return n.Op == OpRepeat
}

// Bounded returns true for a Repeat node with a finite upper bound.
func (n *Node) Bounded() bool {
	return n.Op == OpRepeat && n.Max != Unbounded
}

// Equal reports whether two trees are structurally identical.
// Nil pointers are equal only to nil.
func (n *Node) Equal(other *Node) bool {
	if n == nil || other == nil {
		return n == other
	}
	if n.Op != other.Op {
		return false
	}
	switch n.Op {
	case OpLiteral:
		return n.Char == other.Char
	case OpConcat, OpSplit:
		return n.Left.Equal(other.Left) && n.Right.Equal(other.Right)
	case OpRepeat:
		return n.Min == other.Min && n.Max == other.Max && n.Inner.Equal(other.Inner)
	default:
		return true
	}
}

// Depth returns the height of the tree rooted at this node.
// A leaf has depth 1.
func (n *Node) Depth() int {
	if n == nil {
		return 0
	}
	depth := 0
	for _, child := range n.children() {
		if d := child.Depth(); d > depth {
			depth = d
		}
	}
	return depth + 1
}

// Count returns the total number of nodes in the tree rooted at this node.
func (n *Node) Count() int {
	if n == nil {
		return 0
	}
	count := 1
	for _, child := range n.children() {
		count += child.Count()
	}
	return count
}

// children returns the non-nil subtrees of this node in evaluation order.
func (n *Node) children() []*Node {
	var result []*Node
	if n.Left != nil {
		result = append(result, n.Left)
	}
	if n.Right != nil {
		result = append(result, n.Right)
	}
	if n.Inner != nil {
		result = append(result, n.Inner)
	}
	return result
}
