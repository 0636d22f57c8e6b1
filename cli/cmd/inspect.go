package cmd

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"os"
	"runtime"
	"slices"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"github.com/wkalt/bintree/tree"
	"github.com/wkalt/bintree/util"
	"golang.org/x/sync/errgroup"
)

var (
	inspectStatsOnly bool
	inspectMaxDepth  int
)

var colors = []*color.Color{
	color.New(color.FgRed),
	color.New(color.FgBlue),
	color.New(color.FgYellow),
	color.New(color.FgCyan),
	color.New(color.FgGreen),
	color.New(color.FgMagenta),
}

func depthColor(depth int) *color.Color {
	return colors[depth%len(colors)]
}

// printTree writes one line per node, indented by depth and colored by
// level. Empty first slots are shown as "_" so that a lone second child is
// distinguishable from a lone first child.
func printTree(w io.Writer, root *tree.Node, maxDepth int) {
	root.Walk(func(depth int, n *tree.Node) bool {
		value, _ := n.Value()
		indent := strings.Repeat("  ", depth)
		depthColor(depth).Fprintf(w, "%s%d\n", indent, value)
		if maxDepth > 0 && depth+1 >= maxDepth {
			if n.Shape() != tree.ShapeLeaf {
				fmt.Fprintf(w, "%s  ...\n", indent)
			}
			return false
		}
		if n.Shape() == tree.ShapeSecond {
			depthColor(depth+1).Fprintf(w, "%s  _\n", indent)
		}
		return true
	})
}

func inspectFile(w io.Writer, path string) error {
	info, err := os.Stat(path)
	if err != nil {
		return fmt.Errorf("failed to stat %s: %w", path, err)
	}
	root, err := tree.Load(path)
	if err != nil {
		return err
	}
	defer root.Destroy()
	fingerprint, err := tree.Fingerprint(root)
	if err != nil {
		return err
	}
	fmt.Fprintf(w, "%s: %s, %d nodes, %d leaves, height %d, fingerprint %08x\n",
		path,
		util.HumanBytes(uint64(info.Size())),
		root.Count(),
		root.CountLeaves(),
		root.Height(),
		fingerprint,
	)
	if !inspectStatsOnly {
		printTree(w, root, inspectMaxDepth)
	}
	return nil
}

// expandPatterns resolves doublestar patterns to a sorted, deduplicated list
// of paths. A pattern matching nothing is an error.
func expandPatterns(patterns []string) ([]string, error) {
	paths := []string{}
	for _, pattern := range patterns {
		matches, err := doublestar.FilepathGlob(pattern, doublestar.WithFilesOnly())
		if err != nil {
			return nil, fmt.Errorf("invalid pattern %s: %w", pattern, err)
		}
		if len(matches) == 0 {
			return nil, fmt.Errorf("no files found matching %s", pattern)
		}
		paths = append(paths, matches...)
	}
	slices.Sort(paths)
	return slices.Compact(paths), nil
}

// inspect reports on every file matched by patterns. Files are loaded
// concurrently and reported in path order.
func inspect(ctx context.Context, w io.Writer, patterns []string) error {
	paths, err := expandPatterns(patterns)
	if err != nil {
		return err
	}
	outputs := make([]bytes.Buffer, len(paths))
	g, _ := errgroup.WithContext(ctx)
	g.SetLimit(runtime.NumCPU())
	for i, path := range paths {
		g.Go(func() error {
			return inspectFile(&outputs[i], path)
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}
	for i := range outputs {
		if _, err := outputs[i].WriteTo(w); err != nil {
			return err
		}
	}
	return nil
}

var inspectCmd = &cobra.Command{
	Use:   "inspect [pattern]...",
	Short: "Print the structure and statistics of tree files",
	Long: `Print the structure and statistics of tree files. Patterns may use
doublestar globbing, for example:
  bintree inspect 'data/**/*.bin'`,
	Args: cobra.MinimumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		checkErr(inspect(cmd.Context(), os.Stdout, args))
	},
}

func init() {
	rootCmd.AddCommand(inspectCmd)
	inspectCmd.Flags().BoolVarP(&inspectStatsOnly, "stats", "s", false, "Only print statistics")
	inspectCmd.Flags().IntVarP(&inspectMaxDepth, "max-depth", "d", 0, "Maximum depth to print (0 for all)")
}
