package cmd

import (
	"context"
	"fmt"
	"io"
	"os"
	"strconv"

	"github.com/spf13/cobra"
	"github.com/wkalt/bintree/catalog"
	"github.com/wkalt/bintree/cli/util"
	"github.com/wkalt/bintree/tree"
	"github.com/wkalt/bintree/treemgr"
	"github.com/wkalt/bintree/util/log"
)

var (
	pullOutput  string
	pullVersion uint64
)

func push(ctx context.Context, tm *treemgr.TreeManager, name string, path string) (catalog.Listing, error) {
	root, err := tree.Load(path)
	if err != nil {
		return catalog.Listing{}, err
	}
	defer root.Destroy()
	return tm.Put(log.AddTags(ctx, "file", path), name, root)
}

func pull(ctx context.Context, tm *treemgr.TreeManager, name string, version uint64, path string) error {
	var root *tree.Node
	var err error
	if version == 0 {
		root, _, err = tm.Get(ctx, name)
	} else {
		root, err = tm.GetVersion(ctx, name, version)
	}
	if err != nil {
		return err
	}
	defer root.Destroy()
	return tree.Save(root, path)
}

func listingRows(listings []catalog.Listing) [][]string {
	rows := make([][]string, 0, len(listings))
	for _, l := range listings {
		rows = append(rows, []string{
			l.Name,
			strconv.FormatUint(l.Version, 10),
			strconv.Itoa(l.Count),
			strconv.Itoa(l.Height),
			fmt.Sprintf("%08x", l.Fingerprint),
			l.Timestamp,
		})
	}
	return rows
}

var listingHeaders = []string{"name", "version", "count", "height", "fingerprint", "timestamp"}

// list writes the latest listing of every stored tree, or the full history of
// the named trees.
func list(ctx context.Context, w io.Writer, tm *treemgr.TreeManager, names []string) error {
	listings := []catalog.Listing{}
	if len(names) == 0 {
		all, err := tm.Names(ctx)
		if err != nil {
			return err
		}
		for _, name := range all {
			history, err := tm.History(ctx, name)
			if err != nil {
				return err
			}
			listings = append(listings, history[len(history)-1])
		}
	} else {
		for _, name := range names {
			history, err := tm.History(ctx, name)
			if err != nil {
				return err
			}
			listings = append(listings, history...)
		}
	}
	util.PrintTable(w, util.TermWidth(), listingHeaders, listingRows(listings))
	return nil
}

var pushCmd = &cobra.Command{
	Use:   "push [name] [file]",
	Short: "Store a tree file as a new version of a named tree",
	Args:  cobra.ExactArgs(2),
	Run: func(cmd *cobra.Command, args []string) {
		checkErr(withManager(cmd.Context(), func(tm *treemgr.TreeManager) error {
			listing, err := push(cmd.Context(), tm, args[0], args[1])
			if err != nil {
				return err
			}
			fmt.Printf("%s version %d\n", listing.Name, listing.Version)
			return nil
		}))
	},
}

var pullCmd = &cobra.Command{
	Use:   "pull [name] -o [file]",
	Short: "Write a stored tree to a file",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		checkErr(withManager(cmd.Context(), func(tm *treemgr.TreeManager) error {
			return pull(cmd.Context(), tm, args[0], pullVersion, pullOutput)
		}))
	},
}

var listCmd = &cobra.Command{
	Use:   "list [name]...",
	Short: "List stored trees, or the versions of the named trees",
	Run: func(cmd *cobra.Command, args []string) {
		checkErr(withManager(cmd.Context(), func(tm *treemgr.TreeManager) error {
			return list(cmd.Context(), os.Stdout, tm, args)
		}))
	},
}

func init() {
	rootCmd.AddCommand(pushCmd)
	rootCmd.AddCommand(pullCmd)
	rootCmd.AddCommand(listCmd)
	pullCmd.Flags().StringVarP(&pullOutput, "output", "o", "", "Output file")
	pullCmd.Flags().Uint64VarP(&pullVersion, "version", "v", 0, "Version to pull (default latest)")
	pullCmd.MarkFlagRequired("output")
}
