package handle

import (
	"fmt"
	"sync"

	"github.com/wkalt/bintree/tree"
)

/*
The handle package exposes trees to collaborators that cannot hold Go
pointers, such as a scripting language binding or the interactive shell. Trees
are referred to by opaque integer handles. Every call reports failure through
its return value, and the error state of the node it targeted remains
available through HasError and ErrorMessage until the next call on that node.

Destroying or detaching a subtree invalidates every handle into it. Using an
invalid handle reports tree.ErrNullTree rather than touching freed state.
*/

////////////////////////////////////////////////////////////////////////////////

// Handle is an opaque reference to a node. The zero Handle refers to no node.
type Handle uint64

// None is the zero Handle, returned for absent children.
const None Handle = 0

// String returns a string representation of the handle.
func (h Handle) String() string {
	return fmt.Sprintf("#%d", uint64(h))
}

// Registry maps handles to nodes. It is safe for concurrent use, although the
// trees it holds are not: concurrent calls on handles into the same tree are
// serialized by the registry.
type Registry struct {
	mtx     *sync.Mutex
	next    Handle
	nodes   map[Handle]*tree.Node
	handles map[*tree.Node]Handle
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{
		mtx:     &sync.Mutex{},
		next:    1,
		nodes:   make(map[Handle]*tree.Node),
		handles: make(map[*tree.Node]Handle),
	}
}

// Len returns the number of live handles.
func (r *Registry) Len() int {
	r.mtx.Lock()
	defer r.mtx.Unlock()
	return len(r.nodes)
}

// Create allocates a new single-node tree and returns its handle.
func (r *Registry) Create(value int32) Handle {
	r.mtx.Lock()
	defer r.mtx.Unlock()
	return r.register(tree.New(value))
}

// Adopt registers an existing tree and returns a handle to its root.
func (r *Registry) Adopt(root *tree.Node) (Handle, error) {
	if !root.Alive() {
		return None, tree.ErrNullTree
	}
	r.mtx.Lock()
	defer r.mtx.Unlock()
	return r.register(root), nil
}

// Node returns the node a handle refers to.
func (r *Registry) Node(h Handle) (*tree.Node, error) {
	r.mtx.Lock()
	defer r.mtx.Unlock()
	return r.lookup(h)
}

// Load reads a tree from path. Like tree.Load, a handle to a placeholder tree
// carrying the error is returned even when loading fails, so that callers
// polling the handle observe the failure.
func (r *Registry) Load(path string) (Handle, error) {
	root, err := tree.Load(path)
	r.mtx.Lock()
	defer r.mtx.Unlock()
	return r.register(root), err
}

// Save writes the subtree referred to by h to path.
func (r *Registry) Save(h Handle, path string) error {
	return r.with(h, func(n *tree.Node) error {
		return tree.Save(n, path)
	})
}

// Destroy destroys the subtree referred to by h and invalidates every handle
// into it.
func (r *Registry) Destroy(h Handle) error {
	return r.with(h, func(n *tree.Node) error {
		r.invalidate(n)
		n.Destroy()
		return nil
	})
}

// Value returns the value stored at h.
func (r *Registry) Value(h Handle) (int32, error) {
	var value int32
	err := r.with(h, func(n *tree.Node) (err error) {
		value, err = n.Value()
		return err
	})
	return value, err
}

// SetValue overwrites the value stored at h.
func (r *Registry) SetValue(h Handle, value int32) error {
	return r.with(h, func(n *tree.Node) error {
		return n.SetValue(value)
	})
}

// Contains reports whether value is stored in the subtree referred to by h.
func (r *Registry) Contains(h Handle, value int32) (bool, error) {
	var found bool
	err := r.with(h, func(n *tree.Node) error {
		found = n.Contains(value)
		return nil
	})
	return found, err
}

// Child returns a handle to the child of h in the given slot, or None if the
// slot is empty. Repeated calls for the same child return the same handle.
func (r *Registry) Child(h Handle, slot tree.Slot) (Handle, error) {
	child := None
	err := r.with(h, func(n *tree.Node) error {
		if c := n.Child(slot); c != nil {
			child = r.register(c)
		}
		return nil
	})
	return child, err
}

// Attach creates a child holding value in the given slot of h and returns a
// handle to it.
func (r *Registry) Attach(h Handle, slot tree.Slot, value int32) (Handle, error) {
	child := None
	err := r.with(h, func(n *tree.Node) error {
		c, err := n.Attach(slot, value)
		if err != nil {
			return err
		}
		child = r.register(c)
		return nil
	})
	return child, err
}

// Detach destroys the subtree in the given slot of h, invalidating every
// handle into it.
func (r *Registry) Detach(h Handle, slot tree.Slot) error {
	return r.with(h, func(n *tree.Node) error {
		r.invalidate(n.Child(slot))
		return n.Detach(slot)
	})
}

// First returns a handle to the first child of h, or None.
func (r *Registry) First(h Handle) (Handle, error) { return r.Child(h, tree.First) }

// Second returns a handle to the second child of h, or None.
func (r *Registry) Second(h Handle) (Handle, error) { return r.Child(h, tree.Second) }

// AttachFirst creates a first child of h holding value.
func (r *Registry) AttachFirst(h Handle, value int32) (Handle, error) {
	return r.Attach(h, tree.First, value)
}

// AttachSecond creates a second child of h holding value.
func (r *Registry) AttachSecond(h Handle, value int32) (Handle, error) {
	return r.Attach(h, tree.Second, value)
}

// DetachFirst destroys the first subtree of h.
func (r *Registry) DetachFirst(h Handle) error { return r.Detach(h, tree.First) }

// DetachSecond destroys the second subtree of h.
func (r *Registry) DetachSecond(h Handle) error { return r.Detach(h, tree.Second) }

// Count returns the number of nodes in the subtree referred to by h.
func (r *Registry) Count(h Handle) (int, error) {
	return r.query(h, (*tree.Node).Count)
}

// CountLeaves returns the number of leaves in the subtree referred to by h.
func (r *Registry) CountLeaves(h Handle) (int, error) {
	return r.query(h, (*tree.Node).CountLeaves)
}

// Height returns the height of the subtree referred to by h.
func (r *Registry) Height(h Handle) (int, error) {
	return r.query(h, (*tree.Node).Height)
}

// HasError reports whether the subtree referred to by h carries an error.
func (r *Registry) HasError(h Handle) (bool, error) {
	var has bool
	err := r.with(h, func(n *tree.Node) error {
		has = n.HasError()
		return nil
	})
	return has, err
}

// ErrorMessage returns the error message recorded at h.
func (r *Registry) ErrorMessage(h Handle) (string, error) {
	var msg string
	err := r.with(h, func(n *tree.Node) error {
		msg = n.ErrorMessage()
		return nil
	})
	return msg, err
}

// ClearError resets the error state of the subtree referred to by h.
func (r *Registry) ClearError(h Handle) error {
	return r.with(h, func(n *tree.Node) error {
		n.ClearError()
		return nil
	})
}

func (r *Registry) query(h Handle, f func(*tree.Node) int) (int, error) {
	var result int
	err := r.with(h, func(n *tree.Node) error {
		result = f(n)
		return nil
	})
	return result, err
}

func (r *Registry) with(h Handle, f func(*tree.Node) error) error {
	r.mtx.Lock()
	defer r.mtx.Unlock()
	n, err := r.lookup(h)
	if err != nil {
		return err
	}
	return f(n)
}

func (r *Registry) lookup(h Handle) (*tree.Node, error) {
	n, ok := r.nodes[h]
	if !ok {
		return nil, fmt.Errorf("invalid handle %s: %w", h, tree.ErrNullTree)
	}
	if !n.Alive() {
		// destroyed through another handle or directly.
		r.forget(n)
		return nil, fmt.Errorf("stale handle %s: %w", h, tree.ErrNullTree)
	}
	return n, nil
}

func (r *Registry) register(n *tree.Node) Handle {
	if h, ok := r.handles[n]; ok {
		return h
	}
	h := r.next
	r.next++
	r.nodes[h] = n
	r.handles[n] = h
	return h
}

func (r *Registry) forget(n *tree.Node) {
	if h, ok := r.handles[n]; ok {
		delete(r.handles, n)
		delete(r.nodes, h)
	}
}

func (r *Registry) invalidate(root *tree.Node) {
	root.Walk(func(_ int, n *tree.Node) bool {
		r.forget(n)
		return true
	})
}
