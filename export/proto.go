package export

import (
	"errors"
	"fmt"
	"math"

	"github.com/wkalt/bintree/tree"
	"google.golang.org/protobuf/encoding/protowire"
)

/*
Protobuf wire encoding of trees, equivalent to the message

	message Node {
	  sint32 value = 1;
	  Node first = 2;
	  Node second = 3;
	}

The value field is always written, including zero. Unknown fields are skipped
on decode; repeated child fields are rejected.
*/

////////////////////////////////////////////////////////////////////////////////

const (
	fieldValue  protowire.Number = 1
	fieldFirst  protowire.Number = 2
	fieldSecond protowire.Number = 3
)

// ErrInvalidProto is returned when protobuf input cannot be decoded.
var ErrInvalidProto = errors.New("invalid protobuf tree")

// ToProto returns the protobuf wire encoding of the tree rooted at n.
func ToProto(n *tree.Node) ([]byte, error) {
	if !n.Alive() {
		return nil, tree.ErrNullTree
	}
	sizes := make(map[*tree.Node]int)
	size := messageSize(n, sizes)
	return appendNode(make([]byte, 0, size), n, sizes), nil
}

// messageSize records the encoded size of every message in the tree rooted at
// n, so that nested length prefixes can be written before their contents.
func messageSize(n *tree.Node, sizes map[*tree.Node]int) int {
	value, _ := n.Value()
	size := protowire.SizeTag(fieldValue) + protowire.SizeVarint(protowire.EncodeZigZag(int64(value)))
	for _, child := range children(n) {
		size += protowire.SizeTag(child.num) + protowire.SizeBytes(messageSize(child.node, sizes))
	}
	sizes[n] = size
	return size
}

func appendNode(b []byte, n *tree.Node, sizes map[*tree.Node]int) []byte {
	value, _ := n.Value()
	b = protowire.AppendTag(b, fieldValue, protowire.VarintType)
	b = protowire.AppendVarint(b, protowire.EncodeZigZag(int64(value)))
	for _, child := range children(n) {
		b = protowire.AppendTag(b, child.num, protowire.BytesType)
		b = protowire.AppendVarint(b, uint64(sizes[child.node]))
		b = appendNode(b, child.node, sizes)
	}
	return b
}

type childField struct {
	num  protowire.Number
	node *tree.Node
}

func children(n *tree.Node) []childField {
	fields := make([]childField, 0, 2)
	if first := n.First(); first != nil {
		fields = append(fields, childField{fieldFirst, first})
	}
	if second := n.Second(); second != nil {
		fields = append(fields, childField{fieldSecond, second})
	}
	return fields
}

// FromProto builds a tree from its protobuf wire encoding.
func FromProto(data []byte) (*tree.Node, error) {
	root := tree.New(0)
	if err := consumeNode(root, data); err != nil {
		root.Destroy()
		return nil, err
	}
	return root, nil
}

func consumeNode(n *tree.Node, b []byte) error {
	for len(b) > 0 {
		num, typ, k := protowire.ConsumeTag(b)
		if k < 0 {
			return fmt.Errorf("%w: %w", ErrInvalidProto, protowire.ParseError(k))
		}
		b = b[k:]
		switch {
		case num == fieldValue && typ == protowire.VarintType:
			v, k := protowire.ConsumeVarint(b)
			if k < 0 {
				return fmt.Errorf("%w: %w", ErrInvalidProto, protowire.ParseError(k))
			}
			value := protowire.DecodeZigZag(v)
			if value < math.MinInt32 || value > math.MaxInt32 {
				return fmt.Errorf("%w: value %d out of range", ErrInvalidProto, value)
			}
			if err := n.SetValue(int32(value)); err != nil {
				return err
			}
			b = b[k:]
		case (num == fieldFirst || num == fieldSecond) && typ == protowire.BytesType:
			inner, k := protowire.ConsumeBytes(b)
			if k < 0 {
				return fmt.Errorf("%w: %w", ErrInvalidProto, protowire.ParseError(k))
			}
			slot := tree.First
			if num == fieldSecond {
				slot = tree.Second
			}
			child, err := n.Attach(slot, 0)
			if err != nil {
				return fmt.Errorf("%w: %w", ErrInvalidProto, err)
			}
			if err := consumeNode(child, inner); err != nil {
				return err
			}
			b = b[k:]
		default:
			k := protowire.ConsumeFieldValue(num, typ, b)
			if k < 0 {
				return fmt.Errorf("%w: %w", ErrInvalidProto, protowire.ParseError(k))
			}
			b = b[k:]
		}
	}
	return nil
}
