package notation

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/alecthomas/participle/v2"
	"github.com/alecthomas/participle/v2/lexer"
	"github.com/wkalt/bintree/tree"
)

/*
This file contains a participle grammar for tree literals. A literal is a value
optionally followed by a parenthesized pair of children, either of which may be
"_" for an empty slot:

	1
	2(3(5, _), 4)
	7(_, -8)

Format produces the canonical form of a tree, which Parse accepts.
*/

////////////////////////////////////////////////////////////////////////////////

var (
	Options = []participle.Option{ // nolint:gochecknoglobals
		participle.Lexer(
			lexer.MustSimple([]lexer.SimpleRule{
				{Name: "Integer", Pattern: `[-+]?\d+`},
				{Name: "Punct", Pattern: `[(),_]`},
				{Name: "whitespace", Pattern: `\s+`},
			}),
		),
	}

	parser = participle.MustBuild[Literal](Options...) // nolint:gochecknoglobals
)

// Literal is a parsed tree literal.
type Literal struct {
	Pos      lexer.Position
	Value    string    `@Integer`
	Children *Children `( "(" @@ ")" )?`
}

// Children is the parenthesized child pair of a literal.
type Children struct {
	First  *Child `@@ ","`
	Second *Child `@@`
}

// Child is either an empty slot or a nested literal.
type Child struct {
	Empty   bool     `  @"_"`
	Literal *Literal `| @@`
}

// Parse builds a tree from a literal.
func Parse(s string) (*tree.Node, error) {
	lit, err := parser.ParseString("", s)
	if err != nil {
		return nil, fmt.Errorf("failed to parse tree literal: %w", err)
	}
	return lit.Build()
}

// Build constructs the tree described by the literal.
func (l *Literal) Build() (*tree.Node, error) {
	value, err := checkValue(l)
	if err != nil {
		return nil, err
	}
	root := tree.New(value)
	if err := l.attachChildren(root); err != nil {
		root.Destroy()
		return nil, err
	}
	return root, nil
}

func (l *Literal) attachChildren(node *tree.Node) error {
	if l.Children == nil {
		return nil
	}
	for i, child := range []*Child{l.Children.First, l.Children.Second} {
		slot := tree.Slot(i)
		if child.Empty {
			continue
		}
		value, err := checkValue(child.Literal)
		if err != nil {
			return err
		}
		attached, err := node.Attach(slot, value)
		if err != nil {
			return err
		}
		if err := child.Literal.attachChildren(attached); err != nil {
			return err
		}
	}
	return nil
}

func checkValue(l *Literal) (int32, error) {
	value, err := strconv.ParseInt(l.Value, 10, 32)
	if err != nil {
		return 0, fmt.Errorf("%s: invalid value %s: %w", l.Pos, l.Value, err)
	}
	return int32(value), nil
}

// Format returns the canonical literal for the tree rooted at n.
func Format(n *tree.Node) string {
	if !n.Alive() {
		return "_"
	}
	sb := &strings.Builder{}
	format(sb, n)
	return sb.String()
}

func format(sb *strings.Builder, n *tree.Node) {
	value, _ := n.Value()
	sb.WriteString(strconv.FormatInt(int64(value), 10))
	if n.Shape() == tree.ShapeLeaf {
		return
	}
	sb.WriteString("(")
	for i, child := range []*tree.Node{n.First(), n.Second()} {
		if i > 0 {
			sb.WriteString(", ")
		}
		if child == nil {
			sb.WriteString("_")
			continue
		}
		format(sb, child)
	}
	sb.WriteString(")")
}
