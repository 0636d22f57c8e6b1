package cmd

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"github.com/wkalt/bintree/handle"
	"github.com/wkalt/bintree/notation"
)

type demoStep struct {
	name string
	f    func() (any, error)
}

// runDemo walks through building, saving, reloading and pruning a tree
// through a handle registry, writing each step and its result to w.
func runDemo(w io.Writer, dir string) error {
	reg := handle.NewRegistry()
	path := filepath.Join(dir, "demo.bin")
	root := reg.Create(1)
	var first, reloaded handle.Handle
	attach := func(h *handle.Handle, parent *handle.Handle, slot string, value int32) func() (any, error) {
		return func() (any, error) {
			var err error
			var child handle.Handle
			if slot == "first" {
				child, err = reg.AttachFirst(*parent, value)
			} else {
				child, err = reg.AttachSecond(*parent, value)
			}
			if h != nil {
				*h = child
			}
			return child, err
		}
	}
	steps := []demoStep{
		{"create root", func() (any, error) { return root, nil }},
		{"set value 2", func() (any, error) { return nil, reg.SetValue(root, 2) }},
		{"value", func() (any, error) { return reg.Value(root) }},
		{"attach first 3", attach(&first, &root, "first", 3)},
		{"attach second 4", attach(nil, &root, "second", 4)},
		{"attach first 5 under first", attach(nil, &first, "first", 5)},
		{"tree", func() (any, error) {
			n, err := reg.Node(root)
			return notation.Format(n), err
		}},
		{"save " + path, func() (any, error) { return nil, reg.Save(root, path) }},
		{"destroy root", func() (any, error) { return nil, reg.Destroy(root) }},
		{"load " + path, func() (any, error) {
			var err error
			reloaded, err = reg.Load(path)
			return reloaded, err
		}},
		{"contains 4", func() (any, error) { return reg.Contains(reloaded, 4) }},
		{"height", func() (any, error) { return reg.Height(reloaded) }},
		{"leaves", func() (any, error) { return reg.CountLeaves(reloaded) }},
		{"count", func() (any, error) { return reg.Count(reloaded) }},
		{"detach first", func() (any, error) { return nil, reg.DetachFirst(reloaded) }},
		{"detach second", func() (any, error) { return nil, reg.DetachSecond(reloaded) }},
		{"count", func() (any, error) { return reg.Count(reloaded) }},
		{"has error", func() (any, error) { return reg.HasError(reloaded) }},
	}
	for _, step := range steps {
		result, err := step.f()
		if err != nil {
			return fmt.Errorf("%s: %w", step.name, err)
		}
		if result == nil {
			fmt.Fprintf(w, "%-28s ok\n", step.name)
			continue
		}
		fmt.Fprintf(w, "%-28s %v\n", step.name, result)
	}
	return reg.Destroy(reloaded)
}

var demoCmd = &cobra.Command{
	Use:   "demo [dir]",
	Short: "Build, save, reload and prune a small tree",
	Args:  cobra.MaximumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		if len(args) == 1 {
			checkErr(runDemo(os.Stdout, args[0]))
			return
		}
		tmp, err := os.MkdirTemp("", "bintree-demo")
		checkErr(err)
		err = runDemo(os.Stdout, tmp)
		checkErr(errors.Join(err, os.RemoveAll(tmp)))
	},
}

func init() {
	rootCmd.AddCommand(demoCmd)
}
