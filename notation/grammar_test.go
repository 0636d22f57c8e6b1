package notation_test

import (
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/wkalt/bintree/notation"
	"github.com/wkalt/bintree/tree"
)

func TestParse(t *testing.T) {
	cases := []struct {
		assertion string
		input     string
		canonical string
		count     int
		height    int
	}{
		{"single value", "1", "1", 1, 1},
		{"negative value", "-42", "-42", 1, 1},
		{"explicit plus", "+7", "7", 1, 1},
		{"leading zeros are decimal", "010", "10", 1, 1},
		{"reference tree", "2(3(5,_),4)", "2(3(5, _), 4)", 4, 3},
		{"second only", "7(_, 8)", "7(_, 8)", 2, 2},
		{"whitespace", " 1 ( 2 , 3 ) ", "1(2, 3)", 3, 2},
		{"empty children collapse", "1(_, _)", "1", 1, 1},
		{"bounds", "2147483647(-2147483648, _)", "2147483647(-2147483648, _)", 2, 2},
	}
	for _, c := range cases {
		t.Run(c.assertion, func(t *testing.T) {
			root, err := notation.Parse(c.input)
			require.NoError(t, err)
			require.Equal(t, c.canonical, notation.Format(root))
			require.Equal(t, c.count, root.Count())
			require.Equal(t, c.height, root.Height())

			reparsed, err := notation.Parse(notation.Format(root))
			require.NoError(t, err)
			require.True(t, tree.Equal(root, reparsed))
		})
	}
}

func TestParseErrors(t *testing.T) {
	cases := []struct {
		assertion string
		input     string
	}{
		{"empty", ""},
		{"bare underscore", "_"},
		{"single child", "1(2)"},
		{"unterminated", "1(2, 3"},
		{"out of range", "2147483648"},
		{"nested out of range", "1(_, -2147483649)"},
		{"garbage", "1(a, b)"},
	}
	for _, c := range cases {
		t.Run(c.assertion, func(t *testing.T) {
			_, err := notation.Parse(c.input)
			require.Error(t, err)
		})
	}
}

func TestFormatNil(t *testing.T) {
	require.Equal(t, "_", notation.Format(nil))
}
