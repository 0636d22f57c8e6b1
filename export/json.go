package export

import (
	"fmt"
	"io"

	"github.com/goccy/go-json"
	"github.com/wkalt/bintree/tree"
)

/*
The export package converts trees to and from interchange formats: JSON and
the protobuf wire format. Neither is used for persistence; the node stream in
the tree package is the storage format.
*/

////////////////////////////////////////////////////////////////////////////////

// JSONNode is the JSON representation of a node.
type JSONNode struct {
	Value  int32     `json:"value"`
	First  *JSONNode `json:"first,omitempty"`
	Second *JSONNode `json:"second,omitempty"`
}

// NewJSONNode converts the tree rooted at n.
func NewJSONNode(n *tree.Node) *JSONNode {
	if !n.Alive() {
		return nil
	}
	value, _ := n.Value()
	return &JSONNode{
		Value:  value,
		First:  NewJSONNode(n.First()),
		Second: NewJSONNode(n.Second()),
	}
}

// Tree builds the tree described by j.
func (j *JSONNode) Tree() (*tree.Node, error) {
	if j == nil {
		return nil, tree.ErrNullTree
	}
	root := tree.New(j.Value)
	if err := j.attach(root); err != nil {
		root.Destroy()
		return nil, err
	}
	return root, nil
}

func (j *JSONNode) attach(n *tree.Node) error {
	for i, child := range []*JSONNode{j.First, j.Second} {
		if child == nil {
			continue
		}
		attached, err := n.Attach(tree.Slot(i), child.Value)
		if err != nil {
			return err
		}
		if err := child.attach(attached); err != nil {
			return err
		}
	}
	return nil
}

// ToJSON returns the JSON encoding of the tree rooted at n.
func ToJSON(n *tree.Node) ([]byte, error) {
	if !n.Alive() {
		return nil, tree.ErrNullTree
	}
	data, err := json.Marshal(NewJSONNode(n))
	if err != nil {
		return nil, fmt.Errorf("failed to encode tree: %w", err)
	}
	return data, nil
}

// WriteJSON writes the indented JSON encoding of the tree rooted at n to w.
func WriteJSON(w io.Writer, n *tree.Node) error {
	if !n.Alive() {
		return tree.ErrNullTree
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(NewJSONNode(n)); err != nil {
		return fmt.Errorf("failed to encode tree: %w", err)
	}
	return nil
}

// FromJSON builds a tree from its JSON encoding.
func FromJSON(data []byte) (*tree.Node, error) {
	j := &JSONNode{}
	if err := json.Unmarshal(data, j); err != nil {
		return nil, fmt.Errorf("failed to decode tree: %w", err)
	}
	return j.Tree()
}

// ReadJSON builds a tree from a JSON document read from r.
func ReadJSON(r io.Reader) (*tree.Node, error) {
	j := &JSONNode{}
	if err := json.NewDecoder(r).Decode(j); err != nil {
		return nil, fmt.Errorf("failed to decode tree: %w", err)
	}
	return j.Tree()
}
