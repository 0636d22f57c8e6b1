package tree_test

import (
	"math"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/wkalt/bintree/tree"
)

// sample builds 2(3(5,_),4).
func sample(t *testing.T) *tree.Node {
	t.Helper()
	root := tree.New(2)
	first, err := root.AttachFirst(3)
	require.NoError(t, err)
	_, err = root.AttachSecond(4)
	require.NoError(t, err)
	_, err = first.AttachFirst(5)
	require.NoError(t, err)
	return root
}

func TestNewAndValue(t *testing.T) {
	for _, v := range []int32{0, 1, -1, 42, math.MaxInt32, math.MinInt32} {
		n := tree.New(v)
		value, err := n.Value()
		require.NoError(t, err)
		require.Equal(t, v, value)
		require.Nil(t, n.First())
		require.Nil(t, n.Second())
		require.False(t, n.HasError())
	}
}

func TestSetValue(t *testing.T) {
	root := sample(t)
	require.NoError(t, root.SetValue(10))
	value, err := root.Value()
	require.NoError(t, err)
	require.Equal(t, int32(10), value)
	require.Equal(t, 4, root.Count())
}

func TestNullTree(t *testing.T) {
	var n *tree.Node
	cases := []struct {
		assertion string
		f         func() error
	}{
		{"value", func() error { _, err := n.Value(); return err }},
		{"set value", func() error { return n.SetValue(1) }},
		{"attach first", func() error { _, err := n.AttachFirst(1); return err }},
		{"attach second", func() error { _, err := n.AttachSecond(1); return err }},
		{"detach first", n.DetachFirst},
		{"detach second", n.DetachSecond},
	}
	for _, c := range cases {
		t.Run(c.assertion, func(t *testing.T) {
			require.ErrorIs(t, c.f(), tree.ErrNullTree)
		})
	}

	t.Run("queries return identity", func(t *testing.T) {
		require.Equal(t, 0, n.Count())
		require.Equal(t, 0, n.CountLeaves())
		require.Equal(t, 0, n.Height())
		require.False(t, n.Contains(0))
		require.Nil(t, n.First())
		require.Nil(t, n.Second())
		require.False(t, n.HasError())
		require.Empty(t, n.ErrorMessage())
	})
}

func TestAttach(t *testing.T) {
	t.Run("all four shapes are legal", func(t *testing.T) {
		leaf := tree.New(1)
		require.Equal(t, tree.ShapeLeaf, leaf.Shape())

		first := tree.New(1)
		_, err := first.AttachFirst(2)
		require.NoError(t, err)
		require.Equal(t, tree.ShapeFirst, first.Shape())

		second := tree.New(1)
		_, err = second.AttachSecond(2)
		require.NoError(t, err)
		require.Equal(t, tree.ShapeSecond, second.Shape())

		_, err = second.AttachFirst(3)
		require.NoError(t, err)
		require.Equal(t, tree.ShapeBoth, second.Shape())
	})

	t.Run("occupied slot is not modified", func(t *testing.T) {
		root := sample(t)
		before := root.Clone()

		_, err := root.AttachFirst(100)
		require.ErrorIs(t, err, tree.ErrChildAlreadyExists)
		require.True(t, tree.Equal(before, root))
		require.True(t, root.HasError())
		require.Contains(t, root.ErrorMessage(), "already a first child")

		_, err = root.AttachSecond(100)
		require.ErrorIs(t, err, tree.ErrChildAlreadyExists)
		require.True(t, tree.Equal(before, root))
		require.Contains(t, root.ErrorMessage(), "already a second child")
	})

	t.Run("next operation clears the error", func(t *testing.T) {
		root := sample(t)
		_, err := root.AttachFirst(100)
		require.Error(t, err)
		require.True(t, root.HasError())
		_, err = root.Value()
		require.NoError(t, err)
		require.False(t, root.HasError())
	})
}

func TestDetach(t *testing.T) {
	t.Run("detach destroys the subtree", func(t *testing.T) {
		root := sample(t)
		first := root.First()
		grandchild := first.First()
		require.NoError(t, root.DetachFirst())
		require.Nil(t, root.First())
		require.False(t, first.Alive())
		require.False(t, grandchild.Alive())
		require.Equal(t, 2, root.Count())
	})

	t.Run("detaching an absent child is a no-op", func(t *testing.T) {
		root := tree.New(1)
		require.NoError(t, root.DetachFirst())
		require.NoError(t, root.DetachSecond())
		require.Equal(t, 1, root.Count())
		require.False(t, root.HasError())
	})
}

func TestDestroy(t *testing.T) {
	root := sample(t)
	first := root.First()
	root.Destroy()
	require.False(t, root.Alive())
	require.False(t, first.Alive())

	_, err := root.Value()
	require.ErrorIs(t, err, tree.ErrNullTree)
	_, err = first.AttachSecond(1)
	require.ErrorIs(t, err, tree.ErrNullTree)
	require.Equal(t, 0, root.Count())

	// destroying twice or destroying nil is safe.
	root.Destroy()
	var n *tree.Node
	n.Destroy()
}

func TestQueries(t *testing.T) {
	chain := tree.New(0)
	cur := chain
	for i := int32(1); i < 100; i++ {
		next, err := cur.AttachSecond(i)
		require.NoError(t, err)
		cur = next
	}

	cases := []struct {
		assertion string
		root      *tree.Node
		count     int
		leaves    int
		height    int
	}{
		{"single node", tree.New(1), 1, 1, 1},
		{"sample", sample(t), 4, 2, 3},
		{"chain", chain, 100, 1, 100},
	}
	for _, c := range cases {
		t.Run(c.assertion, func(t *testing.T) {
			require.Equal(t, c.count, c.root.Count())
			require.Equal(t, c.leaves, c.root.CountLeaves())
			require.Equal(t, c.height, c.root.Height())
			require.Equal(t, c.count, 1+c.root.First().Count()+c.root.Second().Count())
		})
	}
}

func TestContains(t *testing.T) {
	root := sample(t)
	for _, v := range []int32{2, 3, 4, 5} {
		require.True(t, root.Contains(v), v)
	}
	require.False(t, root.Contains(6))
	require.False(t, root.First().Contains(4))
}

func TestErrorState(t *testing.T) {
	t.Run("clear error resets the whole subtree", func(t *testing.T) {
		root := sample(t)
		root.First().First().SetError("grandchild")
		root.Second().SetError("second")
		root.SetError("root")
		require.True(t, root.HasError())

		root.ClearError()
		require.False(t, root.HasError())
		require.False(t, root.First().First().HasError())
		require.Empty(t, root.ErrorMessage())
	})

	t.Run("has error sees descendants", func(t *testing.T) {
		root := sample(t)
		root.Second().SetError("boom")
		require.True(t, root.HasError())
		require.Nil(t, root.Err())
		require.Empty(t, root.ErrorMessage())
	})

	cases := []struct {
		assertion string
		setup     func(root *tree.Node)
		expected  string
	}{
		{
			"own message when children are clean",
			func(root *tree.Node) { root.SetError("root") },
			"root",
		},
		{
			"first child preferred",
			func(root *tree.Node) {
				root.Second().SetError("second")
				root.First().First().SetError("grandchild")
				root.SetError("root")
			},
			"grandchild",
		},
		{
			"second child when first is clean",
			func(root *tree.Node) {
				root.Second().SetError("second")
				root.SetError("root")
			},
			"second",
		},
	}
	for _, c := range cases {
		t.Run(c.assertion, func(t *testing.T) {
			root := sample(t)
			c.setup(root)
			require.Equal(t, c.expected, root.ErrorMessage())
		})
	}

	t.Run("messages are bounded", func(t *testing.T) {
		n := tree.New(1)
		n.SetError(strings.Repeat("x", 1000))
		require.Len(t, n.ErrorMessage(), tree.MaxErrorLength)

		n.SetError(strings.Repeat("x", tree.MaxErrorLength-1) + "é")
		require.Len(t, n.ErrorMessage(), tree.MaxErrorLength-1)
	})

	t.Run("clear then poll is idempotent", func(t *testing.T) {
		root := sample(t)
		root.ClearError()
		require.False(t, root.HasError())
		root.ClearError()
		require.False(t, root.HasError())
	})
}

func TestWalk(t *testing.T) {
	root := sample(t)
	var values []int32
	var depths []int
	root.Walk(func(depth int, n *tree.Node) bool {
		v, err := n.Value()
		require.NoError(t, err)
		values = append(values, v)
		depths = append(depths, depth)
		return true
	})
	require.Equal(t, []int32{2, 3, 5, 4}, values)
	require.Equal(t, []int{0, 1, 2, 1}, depths)

	values = values[:0]
	root.Walk(func(_ int, n *tree.Node) bool {
		v, _ := n.Value()
		values = append(values, v)
		return v != 3
	})
	require.Equal(t, []int32{2, 3, 4}, values)
}

func TestCloneAndEqual(t *testing.T) {
	root := sample(t)
	clone := root.Clone()
	require.True(t, tree.Equal(root, clone))
	require.NoError(t, clone.First().SetValue(9))
	require.False(t, tree.Equal(root, clone))
	require.True(t, tree.Equal(nil, nil))
	require.False(t, tree.Equal(root, nil))
}
