package ast

import (
	"fmt"
	"strings"
)

// String returns a compact single-line rendering of the tree, e.g.
// cat(rep(lit('a'),0,inf),lit('b')). The form is stable and intended
// for logs and test comparisons.
func (n *Node) String() string {
	if n == nil {
		return "<nil>"
	}
	switch n.Op {
	case OpEmpty:
		return "empty"
	case OpLiteral:
		return fmt.Sprintf("lit(%q)", n.Char)
	case OpAnyChar:
		return "any"
	case OpConcat:
		return fmt.Sprintf("cat(%s,%s)", n.Left, n.Right)
	case OpSplit:
		return fmt.Sprintf("split(%s,%s)", n.Left, n.Right)
	case OpRepeat:
		return fmt.Sprintf("rep(%s,%d,%s)", n.Inner, n.Min, boundString(n.Max))
	default:
		return fmt.Sprintf("unknown(%s)", string(n.Op))
	}
}

// Dump returns an indented multi-line rendering of the tree for
// human inspection:
//
//	concat
//	├── repeat{0,inf}
//	│   └── literal 'a'
//	└── literal 'b'
func (n *Node) Dump() string {
	if n == nil {
		return "<nil>\n"
	}
	var sb strings.Builder
	dumpNode(&sb, n, "", "")
	return sb.String()
}

func dumpNode(sb *strings.Builder, n *Node, prefix, childPrefix string) {
	sb.WriteString(prefix)
	sb.WriteString(n.label())
	sb.WriteString("\n")

	children := n.children()
	for i, child := range children {
		if i == len(children)-1 {
			dumpNode(sb, child, childPrefix+"└── ", childPrefix+"    ")
		} else {
			dumpNode(sb, child, childPrefix+"├── ", childPrefix+"│   ")
		}
	}
}

// label returns the single-line header for one node in a Dump.
func (n *Node) label() string {
	switch n.Op {
	case OpLiteral:
		return fmt.Sprintf("literal %q", n.Char)
	case OpRepeat:
		return fmt.Sprintf("repeat{%d,%s}", n.Min, boundString(n.Max))
	default:
		return string(n.Op)
	}
}

// boundString renders a repeat bound, mapping Unbounded to "inf".
func boundString(bound int) string {
	if bound == Unbounded {
		return "inf"
	}
	return fmt.Sprintf("%d", bound)
}
