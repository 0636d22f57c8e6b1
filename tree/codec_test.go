package tree_test

import (
	"bytes"
	"errors"
	"io"
	"os"
	"path/filepath"
	"testing"
	"testing/iotest"

	"github.com/stretchr/testify/require"
	"github.com/wkalt/bintree/tree"
	"github.com/wkalt/bintree/util"
)

var records = util.I32b

func TestEncode(t *testing.T) {
	cases := []struct {
		assertion string
		build     func(t *testing.T) *tree.Node
		expected  []byte
	}{
		{
			"single node",
			func(t *testing.T) *tree.Node { t.Helper(); return tree.New(7) },
			records(7, 0),
		},
		{
			"second only",
			func(t *testing.T) *tree.Node {
				t.Helper()
				root := tree.New(1)
				_, err := root.AttachSecond(-2)
				require.NoError(t, err)
				return root
			},
			records(1, 2, -2, 0),
		},
		{
			"first subtree precedes second",
			sample,
			records(2, 3, 3, 1, 5, 0, 4, 0),
		},
	}
	for _, c := range cases {
		t.Run(c.assertion, func(t *testing.T) {
			buf := &bytes.Buffer{}
			n, err := tree.Encode(buf, c.build(t))
			require.NoError(t, err)
			require.Equal(t, int64(len(c.expected)), n)
			require.Equal(t, c.expected, buf.Bytes())

			decoded, err := tree.Decode(bytes.NewReader(buf.Bytes()))
			require.NoError(t, err)
			require.True(t, tree.Equal(c.build(t), decoded))
		})
	}
}

func TestDecodeErrors(t *testing.T) {
	cases := []struct {
		assertion string
		input     []byte
		target    error
	}{
		{"empty stream", nil, tree.ErrCorruptStream},
		{"partial record", records(1)[:3], tree.ErrCorruptStream},
		{"missing child", records(1, 1), tree.ErrCorruptStream},
		{"missing second child", records(1, 3, 2, 0), tree.ErrCorruptStream},
		{"invalid flag", records(1, 4), tree.ErrCorruptStream},
		{"negative flag", records(1, -1), tree.ErrCorruptStream},
		{"trailing data", records(1, 0, 2, 0), tree.ErrCorruptStream},
	}
	for _, c := range cases {
		t.Run(c.assertion, func(t *testing.T) {
			_, err := tree.Decode(bytes.NewReader(c.input))
			require.ErrorIs(t, err, c.target)
		})
	}

	t.Run("node budget", func(t *testing.T) {
		data, err := sample(t).MarshalBinary()
		require.NoError(t, err)
		_, err = tree.Decode(bytes.NewReader(data), tree.WithMaxNodes(3))
		require.ErrorIs(t, err, tree.ErrAllocationFailed)
		_, err = tree.Decode(bytes.NewReader(data), tree.WithMaxNodes(4))
		require.NoError(t, err)
	})

	t.Run("offset is reported", func(t *testing.T) {
		_, err := tree.Decode(bytes.NewReader(records(1, 1, 2, 9)))
		var target tree.CorruptStreamError
		require.ErrorAs(t, err, &target)
		require.Equal(t, int64(tree.RecordSize), target.Offset)
	})
}

func TestDeepTreeRoundTrip(t *testing.T) {
	root := tree.New(0)
	cur := root
	for i := int32(1); i < 100000; i++ {
		next, err := cur.AttachFirst(i)
		require.NoError(t, err)
		cur = next
	}
	data, err := root.MarshalBinary()
	require.NoError(t, err)
	require.Len(t, data, 100000*tree.RecordSize)

	var decoded tree.Node
	require.NoError(t, decoded.UnmarshalBinary(data))
	require.True(t, tree.Equal(root, &decoded))
}

func TestFingerprint(t *testing.T) {
	a, err := tree.Fingerprint(sample(t))
	require.NoError(t, err)
	b, err := tree.Fingerprint(sample(t))
	require.NoError(t, err)
	require.Equal(t, a, b)

	other := sample(t)
	require.NoError(t, other.Second().SetValue(40))
	c, err := tree.Fingerprint(other)
	require.NoError(t, err)
	require.NotEqual(t, a, c)
}

func TestSaveLoad(t *testing.T) {
	dir := t.TempDir()

	t.Run("round trip", func(t *testing.T) {
		path := filepath.Join(dir, "sample.bin")
		root := sample(t)
		require.NoError(t, tree.Save(root, path))
		require.False(t, root.HasError())

		loaded, err := tree.Load(path)
		require.NoError(t, err)
		require.False(t, loaded.HasError())
		require.True(t, tree.Equal(root, loaded))
	})

	t.Run("save overwrites", func(t *testing.T) {
		path := filepath.Join(dir, "overwrite.bin")
		require.NoError(t, tree.Save(sample(t), path))
		require.NoError(t, tree.Save(tree.New(9), path))
		loaded, err := tree.Load(path)
		require.NoError(t, err)
		require.Equal(t, 1, loaded.Count())
	})

	t.Run("unwritable destination", func(t *testing.T) {
		root := sample(t)
		err := tree.Save(root, filepath.Join(dir, "missing", "dir", "x.bin"))
		require.ErrorIs(t, err, tree.ErrCannotWrite)
		require.True(t, root.HasError())
		require.Contains(t, root.ErrorMessage(), "cannot write")
	})

	t.Run("missing source", func(t *testing.T) {
		loaded, err := tree.Load(filepath.Join(dir, "nope.bin"))
		require.ErrorIs(t, err, tree.ErrCannotRead)
		require.NotNil(t, loaded)
		require.True(t, loaded.HasError())
		require.Contains(t, loaded.ErrorMessage(), "cannot read")
	})

	t.Run("corrupt source", func(t *testing.T) {
		path := filepath.Join(dir, "corrupt.bin")
		require.NoError(t, os.WriteFile(path, records(1, 3, 2, 0), 0600))
		loaded, err := tree.Load(path)
		require.ErrorIs(t, err, tree.ErrCorruptStream)
		require.True(t, loaded.HasError())
	})

	t.Run("unreadable source", func(t *testing.T) {
		loaded, err := tree.Load(t.TempDir())
		require.ErrorIs(t, err, tree.ErrCannotRead)
		require.NotErrorIs(t, err, tree.ErrCorruptStream)
		require.NotNil(t, loaded)
		require.True(t, loaded.HasError())
		require.Contains(t, loaded.ErrorMessage(), "cannot read")
	})
}

func TestDecodeReadFailure(t *testing.T) {
	errDisk := errors.New("disk failure")
	cases := []struct {
		assertion string
		prefix    []byte
	}{
		{"before first record", nil},
		{"between records", records(1, 1)},
		{"after tree", records(1, 0)},
	}
	for _, c := range cases {
		t.Run(c.assertion, func(t *testing.T) {
			r := io.MultiReader(bytes.NewReader(c.prefix), iotest.ErrReader(errDisk))
			_, err := tree.Decode(r)
			require.ErrorIs(t, err, tree.ErrCannotRead)
			require.ErrorIs(t, err, errDisk)
			require.NotErrorIs(t, err, tree.ErrCorruptStream)
		})
	}
}

// Build, save, destroy and reload the reference tree.
func TestEndToEnd(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tree.bin")

	root := tree.New(1)
	require.NoError(t, root.SetValue(2))
	value, err := root.Value()
	require.NoError(t, err)
	require.Equal(t, int32(2), value)

	_, err = root.AttachFirst(3)
	require.NoError(t, err)
	_, err = root.AttachSecond(4)
	require.NoError(t, err)
	_, err = root.First().AttachFirst(5)
	require.NoError(t, err)
	require.False(t, root.HasError())

	require.NoError(t, tree.Save(root, path))
	root.Destroy()

	reloaded, err := tree.Load(path)
	require.NoError(t, err)
	require.False(t, reloaded.HasError())
	require.True(t, reloaded.Contains(4))
	require.Equal(t, 3, reloaded.Height())
	require.Equal(t, 2, reloaded.CountLeaves())
	require.Equal(t, 4, reloaded.Count())

	require.NoError(t, reloaded.DetachFirst())
	require.NoError(t, reloaded.DetachSecond())
	require.Equal(t, 1, reloaded.Count())
	reloaded.Destroy()
}
