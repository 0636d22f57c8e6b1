package tree

import (
	"bufio"
	"bytes"
	"errors"
	"fmt"
	"io"

	"github.com/spaolacci/murmur3"
	"github.com/wkalt/bintree/util"
)

/*
The node stream is a flat pre-order sequence of fixed-size records, one per
node. Each record is two native-endian 32-bit signed integers:

	[value][children flag]

The children flag is 0 for a leaf, 1 if only a first child follows, 2 if only
a second child follows and 3 if both follow. Children follow their parent
immediately, and the first child's entire subtree is written before the second
child's record begins. There is no header, length prefix, end marker or
checksum: a decoder knows where a subtree ends only by tracking the flags.

A stream holds exactly one tree.
*/

////////////////////////////////////////////////////////////////////////////////

// RecordSize is the size in bytes of one encoded node.
const RecordSize = 8

type decodeConfig struct {
	maxNodes int
}

// DecodeOption configures Decode.
type DecodeOption func(*decodeConfig)

// WithMaxNodes bounds the number of nodes a decode may allocate. Exceeding the
// bound fails the decode with ErrAllocationFailed. Zero means no bound.
func WithMaxNodes(n int) DecodeOption {
	return func(c *decodeConfig) {
		c.maxNodes = n
	}
}

// Encode writes the subtree rooted at n to w and returns the number of bytes
// written. Error state of every encoded node is reset.
func Encode(w io.Writer, n *Node) (int64, error) {
	if !n.Alive() {
		return 0, ErrNullTree
	}
	bw := bufio.NewWriter(w)
	buf := make([]byte, RecordSize)
	var written int64
	var err error
	n.Walk(func(_ int, node *Node) bool {
		node.resetError()
		offset := util.I32(buf, node.value)
		util.I32(buf[offset:], int32(node.Shape()))
		var k int
		k, err = bw.Write(buf)
		written += int64(k)
		return err == nil
	})
	if err != nil {
		return written, fmt.Errorf("failed to write record: %w", err)
	}
	if err := bw.Flush(); err != nil {
		return written, fmt.Errorf("failed to flush records: %w", err)
	}
	return written, nil
}

// Decode reads one tree from r. The root is allocated as a placeholder and the
// tree is rebuilt by attaching exactly the children each record declares, in
// the order the encoder wrote them. Truncated input, an unknown children flag
// or data following the tree fail with an error matching ErrCorruptStream. A
// failing reader yields an error matching ErrCannotRead.
func Decode(r io.Reader, opts ...DecodeOption) (*Node, error) {
	conf := decodeConfig{}
	for _, opt := range opts {
		opt(&conf)
	}
	br := bufio.NewReader(r)
	buf := make([]byte, RecordSize)
	root := New(0)
	pending := []*Node{root}
	nodes := 1
	var offset int64
	for len(pending) > 0 {
		node := pending[len(pending)-1]
		pending = pending[:len(pending)-1]

		if _, err := io.ReadFull(br, buf); err != nil {
			if !errors.Is(err, io.EOF) && !errors.Is(err, io.ErrUnexpectedEOF) {
				return nil, fmt.Errorf("%w at offset %d: %w", ErrCannotRead, offset, err)
			}
			return nil, CorruptStreamError{Offset: offset, Reason: "truncated record", err: io.ErrUnexpectedEOF}
		}
		var value, flag int32
		k := util.ReadI32(buf, &value)
		util.ReadI32(buf[k:], &flag)
		if flag < int32(ShapeLeaf) || flag > int32(ShapeBoth) {
			return nil, CorruptStreamError{
				Offset: offset,
				Reason: fmt.Sprintf("invalid children flag %d", flag),
			}
		}
		offset += RecordSize

		if err := node.SetValue(value); err != nil {
			return nil, err
		}
		shape := uint32(flag)
		children := make([]*Node, 0, 2)
		for _, slot := range []Slot{First, Second} {
			if shape&(1<<slot) == 0 {
				continue
			}
			nodes++
			if conf.maxNodes > 0 && nodes > conf.maxNodes {
				return nil, fmt.Errorf("%w: more than %d nodes", ErrAllocationFailed, conf.maxNodes)
			}
			child, err := node.Attach(slot, 0)
			if err != nil {
				return nil, err
			}
			children = append(children, child)
		}
		// the first child's subtree is read before the second child.
		for i := len(children) - 1; i >= 0; i-- {
			pending = append(pending, children[i])
		}
	}
	if _, err := br.ReadByte(); err == nil {
		return nil, CorruptStreamError{Offset: offset, Reason: "trailing data after tree"}
	} else if !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("%w at offset %d: %w", ErrCannotRead, offset, err)
	}
	return root, nil
}

// MarshalBinary returns the node stream encoding of the subtree rooted at n.
func (n *Node) MarshalBinary() ([]byte, error) {
	buf := &bytes.Buffer{}
	if _, err := Encode(buf, n); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// UnmarshalBinary replaces the subtree rooted at n with the tree decoded from
// data.
func (n *Node) UnmarshalBinary(data []byte) error {
	if n == nil {
		return ErrNullTree
	}
	decoded, err := Decode(bytes.NewReader(data))
	if err != nil {
		return n.setErr(err)
	}
	n.first.Destroy()
	n.second.Destroy()
	*n = *decoded
	return nil
}

// Fingerprint returns a 32-bit murmur3 hash of the node stream encoding of the
// subtree rooted at n. Isomorphic trees have equal fingerprints.
func Fingerprint(n *Node) (uint32, error) {
	h := murmur3.New32()
	if _, err := Encode(h, n); err != nil {
		return 0, err
	}
	return h.Sum32(), nil
}
