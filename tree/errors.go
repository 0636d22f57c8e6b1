package tree

import (
	"errors"
	"fmt"
	"unicode/utf8"
)

/*
Errors that can be returned by the tree package, and the per-node error state
that records them.

Every fallible operation both returns its error and records it on the node it
was invoked on. Callers that prefer to poll (HasError, ErrorMessage) after
each call get the same information as callers that check return values. Error
state reflects the most recent operation only: operations reset the error
state of their primary node before doing anything else.
*/

////////////////////////////////////////////////////////////////////////////////

// MaxErrorLength is the capacity of a node's error message, in bytes.
const MaxErrorLength = 255

var (
	// ErrNullTree is returned when an operation that requires a live node is
	// given a nil or destroyed one.
	ErrNullTree = errors.New("tree does not exist")

	// ErrChildAlreadyExists is returned when attaching into an occupied slot.
	ErrChildAlreadyExists = errors.New("child already exists")

	// ErrCannotWrite is returned when a destination cannot be written.
	ErrCannotWrite = errors.New("cannot write to destination")

	// ErrCannotRead is returned when a source cannot be opened or read.
	ErrCannotRead = errors.New("cannot read from source")

	// ErrAllocationFailed is returned when a decode exceeds its node budget.
	ErrAllocationFailed = errors.New("allocation failed")

	// ErrCorruptStream is returned when a node stream is malformed.
	ErrCorruptStream = errors.New("corrupt node stream")
)

// ChildExistsError is returned when a child is attached into a slot that is
// already occupied.
type ChildExistsError struct {
	Slot Slot
}

// Error returns a string representation of the error.
func (e ChildExistsError) Error() string {
	return fmt.Sprintf("there is already a %s child", e.Slot)
}

// Is returns true if the target is a ChildExistsError or ErrChildAlreadyExists.
func (e ChildExistsError) Is(target error) bool {
	if target == ErrChildAlreadyExists {
		return true
	}
	_, ok := target.(ChildExistsError)
	return ok
}

// CorruptStreamError is returned when a node stream cannot be decoded.
type CorruptStreamError struct {
	Offset int64
	Reason string
	err    error
}

// Error returns a string representation of the error.
func (e CorruptStreamError) Error() string {
	if e.err != nil {
		return fmt.Sprintf("corrupt node stream at offset %d: %s: %s", e.Offset, e.Reason, e.err)
	}
	return fmt.Sprintf("corrupt node stream at offset %d: %s", e.Offset, e.Reason)
}

// Is returns true if the target is a CorruptStreamError or ErrCorruptStream.
func (e CorruptStreamError) Is(target error) bool {
	if target == ErrCorruptStream {
		return true
	}
	_, ok := target.(CorruptStreamError)
	return ok
}

// Unwrap returns the underlying read error, if any.
func (e CorruptStreamError) Unwrap() error {
	return e.err
}

// SetError marks the node as failed with the provided message. Messages
// longer than MaxErrorLength are truncated on a rune boundary.
func (n *Node) SetError(msg string) {
	n.setErr(errors.New(msg))
}

// ClearError resets the error state of the node and its entire subtree.
func (n *Node) ClearError() {
	if n == nil {
		return
	}
	n.resetError()
	n.first.ClearError()
	n.second.ClearError()
}

// HasError reports whether the node or any of its descendants carries an
// error. The first subtree is consulted before the second.
func (n *Node) HasError() bool {
	if n == nil {
		return false
	}
	if n.hasError {
		return true
	}
	return n.first.HasError() || n.second.HasError()
}

// ErrorMessage returns the message of the error recorded on the node. If the
// node has no error of its own the result is empty. If a child subtree also
// carries an error, that message is preferred, first child before second;
// otherwise the node's own message is returned.
func (n *Node) ErrorMessage() string {
	if n == nil || !n.hasError {
		return ""
	}
	for _, child := range []*Node{n.first, n.second} {
		if msg := child.descendantMessage(); msg != "" {
			return msg
		}
	}
	return n.errMsg
}

// Err returns the error recorded on the node, or nil.
func (n *Node) Err() error {
	if n == nil || !n.hasError {
		return nil
	}
	return n.err
}

func (n *Node) descendantMessage() string {
	if n == nil {
		return ""
	}
	if n.hasError {
		return n.ErrorMessage()
	}
	if msg := n.first.descendantMessage(); msg != "" {
		return msg
	}
	return n.second.descendantMessage()
}

// setErr records err on the node and returns it, so callers can write
// `return n.setErr(err)`.
func (n *Node) setErr(err error) error {
	if n == nil || n.freed {
		return err
	}
	n.hasError = true
	n.err = err
	n.errMsg = truncate(err.Error(), MaxErrorLength)
	return err
}

func (n *Node) resetError() {
	n.hasError = false
	n.err = nil
	n.errMsg = ""
}

func truncate(s string, limit int) string {
	if len(s) <= limit {
		return s
	}
	for limit > 0 && !utf8.RuneStart(s[limit]) {
		limit--
	}
	return s[:limit]
}
