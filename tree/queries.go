package tree

/*
Structural queries. Each query tolerates a nil tree and returns the identity
of its aggregation, and resets the error state of every node it visits.
*/

////////////////////////////////////////////////////////////////////////////////

// Count returns the number of nodes in the subtree rooted at n.
func (n *Node) Count() int {
	if !n.Alive() {
		return 0
	}
	n.resetError()
	return 1 + n.first.Count() + n.second.Count()
}

// CountLeaves returns the number of nodes without children in the subtree
// rooted at n.
func (n *Node) CountLeaves() int {
	if !n.Alive() {
		return 0
	}
	n.resetError()
	if n.Shape() == ShapeLeaf {
		return 1
	}
	return n.first.CountLeaves() + n.second.CountLeaves()
}

// Height returns the number of nodes on the longest path from n to a leaf. A
// single node has height 1.
func (n *Node) Height() int {
	if !n.Alive() {
		return 0
	}
	n.resetError()
	return 1 + max(n.first.Height(), n.second.Height())
}

// Contains reports whether value is stored anywhere in the subtree rooted at
// n. The node itself is checked first, then the first subtree, then the
// second. The search stops at the first match.
func (n *Node) Contains(value int32) bool {
	if !n.Alive() {
		return false
	}
	n.resetError()
	if n.value == value {
		return true
	}
	return n.first.Contains(value) || n.second.Contains(value)
}
