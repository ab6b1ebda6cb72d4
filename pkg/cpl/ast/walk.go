package ast

// Visitor provides an interface for traversing a pattern tree.
// Implement this interface to perform operations on tree nodes
// (validation, transformation, analysis, etc.).
type Visitor interface {
	Visit(n *Node) error
}

// VisitorFunc adapts a plain function into a Visitor.
type VisitorFunc func(*Node) error

// Visit implements the Visitor interface.
func (f VisitorFunc) Visit(n *Node) error {
	return f(n)
}

// Walk traverses the tree in preorder (node, then Left, Right, Inner)
// and calls the visitor for each node. It returns the first error
// encountered, or nil if traversal completes.
func Walk(n *Node, visitor Visitor) error {
	if n == nil {
		return nil
	}
	if err := visitor.Visit(n); err != nil {
		return err
	}
	for _, child := range n.children() {
		if err := Walk(child, visitor); err != nil {
			return err
		}
	}
	return nil
}
