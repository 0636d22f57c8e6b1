package tree

/*
The tree package implements an unordered binary tree of int32 values. Each node
exclusively owns at most two children, called the first and second child. There
is no empty tree: the smallest tree is a single node holding a value. Nodes
carry no parent pointer, so every operation is expressed relative to the node
it is called on.

The package also implements the persistence codec for trees. See codec.go for
the stream format.

A tree is not safe for concurrent use. Callers sharing a tree across goroutines
must serialize access themselves.
*/

////////////////////////////////////////////////////////////////////////////////

// Slot identifies one of the two child positions of a node.
type Slot uint8

const (
	// First is the first child slot.
	First Slot = iota
	// Second is the second child slot.
	Second
)

// String returns a string representation of the slot.
func (s Slot) String() string {
	switch s {
	case First:
		return "first"
	case Second:
		return "second"
	default:
		return "unknown"
	}
}

// Shape flags describe which child slots of a node are occupied. They are the
// children flags of the persisted node stream.
const (
	ShapeLeaf   uint32 = 0
	ShapeFirst  uint32 = 1
	ShapeSecond uint32 = 2
	ShapeBoth   uint32 = 3
)

// Node is a binary tree node. A *Node also serves as the handle to the subtree
// rooted at it.
type Node struct {
	value  int32
	first  *Node
	second *Node

	hasError bool
	errMsg   string
	err      error

	freed bool
}

// New allocates a single node holding value, with no children and no error.
func New(value int32) *Node {
	return &Node{value: value}
}

// Destroy releases the subtree rooted at n, children before parent. The node
// must not be used afterwards; operations on a destroyed node report
// ErrNullTree. Destroying nil is a no-op.
func (n *Node) Destroy() {
	if n == nil || n.freed {
		return
	}
	n.first.Destroy()
	n.second.Destroy()
	n.first = nil
	n.second = nil
	n.resetError()
	n.value = 0
	n.freed = true
}

// Alive reports whether n is a live node. A destroyed child is treated as an
// empty slot by its parent.
func (n *Node) Alive() bool {
	return n != nil && !n.freed
}

func (n *Node) live() *Node {
	if n.Alive() {
		return n
	}
	return nil
}

// Value returns the value stored at n.
func (n *Node) Value() (int32, error) {
	if !n.Alive() {
		return 0, ErrNullTree
	}
	n.resetError()
	return n.value, nil
}

// SetValue overwrites the value stored at n. Children are unaffected.
func (n *Node) SetValue(value int32) error {
	if !n.Alive() {
		return ErrNullTree
	}
	n.resetError()
	n.value = value
	return nil
}

// First returns the first child of n, or nil if there is none.
func (n *Node) First() *Node {
	if !n.Alive() {
		return nil
	}
	n.resetError()
	return n.first.live()
}

// Second returns the second child of n, or nil if there is none.
func (n *Node) Second() *Node {
	if !n.Alive() {
		return nil
	}
	n.resetError()
	return n.second.live()
}

// Child returns the child of n in the given slot, or nil.
func (n *Node) Child(slot Slot) *Node {
	if slot == First {
		return n.First()
	}
	return n.Second()
}

// AttachFirst creates a new single-node subtree holding value in the first
// slot of n and returns it. If the slot is occupied the tree is left
// unmodified and an error matching ErrChildAlreadyExists is returned.
func (n *Node) AttachFirst(value int32) (*Node, error) {
	return n.Attach(First, value)
}

// AttachSecond is AttachFirst for the second slot.
func (n *Node) AttachSecond(value int32) (*Node, error) {
	return n.Attach(Second, value)
}

// Attach creates a new single-node subtree holding value in the given slot.
func (n *Node) Attach(slot Slot, value int32) (*Node, error) {
	if !n.Alive() {
		return nil, ErrNullTree
	}
	n.resetError()
	ptr := n.slot(slot)
	if (*ptr).Alive() {
		return nil, n.setErr(ChildExistsError{Slot: slot})
	}
	*ptr = New(value)
	return *ptr, nil
}

// DetachFirst destroys the first subtree of n and empties the slot. Detaching
// an empty slot is a no-op.
func (n *Node) DetachFirst() error {
	return n.Detach(First)
}

// DetachSecond is DetachFirst for the second slot.
func (n *Node) DetachSecond() error {
	return n.Detach(Second)
}

// Detach destroys the subtree in the given slot and empties the slot.
func (n *Node) Detach(slot Slot) error {
	if !n.Alive() {
		return ErrNullTree
	}
	n.resetError()
	ptr := n.slot(slot)
	(*ptr).Destroy()
	*ptr = nil
	return nil
}

// Shape returns the children flag of n: ShapeLeaf, ShapeFirst, ShapeSecond or
// ShapeBoth.
func (n *Node) Shape() uint32 {
	if !n.Alive() {
		return ShapeLeaf
	}
	var shape uint32
	if n.first.Alive() {
		shape |= ShapeFirst
	}
	if n.second.Alive() {
		shape |= ShapeSecond
	}
	return shape
}

// Clone returns a deep copy of the subtree rooted at n, without error state.
func (n *Node) Clone() *Node {
	if !n.Alive() {
		return nil
	}
	return &Node{
		value:  n.value,
		first:  n.first.Clone(),
		second: n.second.Clone(),
	}
}

// Equal reports whether a and b have the same shape and the same values in
// the same positions. Error state is not compared.
func Equal(a, b *Node) bool {
	if !a.Alive() || !b.Alive() {
		return a.Alive() == b.Alive()
	}
	return a.value == b.value && Equal(a.first, b.first) && Equal(a.second, b.second)
}

// Walk visits the subtree rooted at n in pre-order: a node, then its first
// subtree, then its second subtree. The depth of the root is zero. If fn
// returns false the children of that node are skipped.
func (n *Node) Walk(fn func(depth int, node *Node) bool) {
	if !n.Alive() {
		return
	}
	type frame struct {
		node  *Node
		depth int
	}
	stack := []frame{{n, 0}}
	for len(stack) > 0 {
		f := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if !fn(f.depth, f.node) {
			continue
		}
		// second is pushed first so that first is visited first.
		if f.node.second.Alive() {
			stack = append(stack, frame{f.node.second, f.depth + 1})
		}
		if f.node.first.Alive() {
			stack = append(stack, frame{f.node.first, f.depth + 1})
		}
	}
}

func (n *Node) slot(slot Slot) **Node {
	if slot == First {
		return &n.first
	}
	return &n.second
}
