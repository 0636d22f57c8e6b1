package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/wkalt/bintree/notation"
	"github.com/wkalt/bintree/tree"
)

var buildOutput string

func buildTree(literal string, path string) (*tree.Node, error) {
	root, err := notation.Parse(literal)
	if err != nil {
		return nil, err
	}
	if err := tree.Save(root, path); err != nil {
		root.Destroy()
		return nil, err
	}
	return root, nil
}

var buildCmd = &cobra.Command{
	Use:   "build [literal] -o [file]",
	Short: "Write the tree described by a literal such as '2(3(5, _), 4)' to a file",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		root, err := buildTree(args[0], buildOutput)
		checkErr(err)
		defer root.Destroy()
		fmt.Printf("wrote %d nodes to %s\n", root.Count(), buildOutput)
	},
}

func init() {
	rootCmd.AddCommand(buildCmd)
	buildCmd.Flags().StringVarP(&buildOutput, "output", "o", "", "Output file")
	buildCmd.MarkFlagRequired("output")
}
