package util_test

import (
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/wkalt/bintree/util"
)

func TestHumanBytes(t *testing.T) {
	cases := []struct {
		assertion string
		input     uint64
		expected  string
	}{
		{"zero", 0, "0 B"},
		{"bytes", 24, "24 B"},
		{"kilobytes", 2048, "2 KB"},
		{"truncates", 1536, "1 KB"},
		{"megabytes", 5 << 20, "5 MB"},
		{"largest suffix", 1 << 63, "8 EB"},
	}
	for _, c := range cases {
		t.Run(c.assertion, func(t *testing.T) {
			require.Equal(t, c.expected, util.HumanBytes(c.input))
		})
	}
}
