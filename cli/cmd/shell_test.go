package cmd

import (
	"bytes"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/wkalt/bintree/tree"
)

func TestShell(t *testing.T) {
	path := filepath.Join(t.TempDir(), "shell.bin")
	cases := []struct {
		assertion string
		input     string
		output    string
		err       error
	}{
		{"create", "new 1", "#1", nil},
		{"set value", "set #1 2", "", nil},
		{"read value", "value #1", "2", nil},
		{"attach first", "attach #1 first 3", "#2", nil},
		{"attach second", "attach 1 second 4", "#3", nil},
		{"attach grandchild", "attach #2 first 5", "#4", nil},
		{"child handle is stable", "first #1", "#2", nil},
		{"empty child", "second #2", "_", nil},
		{"print", "print #1", "2(3(5, _), 4)", nil},
		{"count", "count #1", "4", nil},
		{"leaves", "leaves #1", "2", nil},
		{"height", "height #1", "3", nil},
		{"contains", "contains #1 5", "true", nil},
		{"attach to occupied slot", "attach #1 first 9", "", tree.ErrChildAlreadyExists},
		{"error is recorded", "error #1", "error: there is already a first child", nil},
		{"clear", "clear #1", "", nil},
		{"error is cleared", "error #1", "no error", nil},
		{"attach to occupied grandchild slot", "attach #2 first 9", "", tree.ErrChildAlreadyExists},
		{"subtree error", "error #1", "error: there is already a first child", nil},
		{"clear subtree", "clear #1", "", nil},
		{"subtree error is cleared", "error #1", "no error", nil},
		{"save", "save #1 " + path, "", nil},
		{"detach", "detach #1 first", "", nil},
		{"detached handle is invalid", "value #2", "", tree.ErrNullTree},
		{"count after detach", "count #1", "2", nil},
		{"load", "load " + path, "#5", nil},
		{"loaded tree", "print #5", "2(3(5, _), 4)", nil},
		{"parse", "parse 7(_, 8)", "#6", nil},
		{"parsed tree", "second #6", "#7", nil},
		{"destroy", "destroy #6", "", nil},
		{"destroyed child handle", "value #7", "", tree.ErrNullTree},
		{"unknown handle", "value #99", "", tree.ErrNullTree},
		{"bad slot", "attach #1 third 1", "", nil},
		{"missing argument", "value", "", errUsage},
		{"unknown command", "frobnicate #1", "", errUsage},
	}
	buf := &bytes.Buffer{}
	sh := newShell(buf)
	for _, c := range cases {
		t.Run(c.assertion, func(t *testing.T) {
			buf.Reset()
			err := sh.exec(c.input)
			switch {
			case c.err != nil:
				require.ErrorIs(t, err, c.err)
			case c.assertion == "bad slot":
				require.Error(t, err)
			default:
				require.NoError(t, err)
			}
			require.Equal(t, c.output, strings.TrimSpace(buf.String()))
		})
	}
}

func TestShellHelp(t *testing.T) {
	buf := &bytes.Buffer{}
	require.NoError(t, newShell(buf).exec("help"))
	require.Contains(t, buf.String(), "attach <h> first|second <v>")
}
