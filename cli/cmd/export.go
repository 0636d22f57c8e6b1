package cmd

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
	"github.com/wkalt/bintree/cli/util"
	"github.com/wkalt/bintree/export"
	"github.com/wkalt/bintree/notation"
	"github.com/wkalt/bintree/tree"
)

var (
	exportFormat string
	importFormat string
	importOutput string
)

func exportTree(w io.Writer, root *tree.Node, format string) error {
	switch format {
	case "json":
		return export.WriteJSON(w, root)
	case "proto":
		data, err := export.ToProto(root)
		if err != nil {
			return err
		}
		_, err = w.Write(data)
		return err
	case "notation":
		_, err := fmt.Fprintln(w, notation.Format(root))
		return err
	default:
		return fmt.Errorf("unrecognized format %q", format)
	}
}

func importTree(r io.Reader, format string) (*tree.Node, error) {
	switch format {
	case "json":
		return export.ReadJSON(r)
	case "proto":
		data, err := io.ReadAll(r)
		if err != nil {
			return nil, fmt.Errorf("failed to read input: %w", err)
		}
		return export.FromProto(data)
	default:
		return nil, fmt.Errorf("unrecognized format %q", format)
	}
}

var exportCmd = &cobra.Command{
	Use:   "export [file]",
	Short: "Convert a tree file to JSON, protobuf or literal notation",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		if exportFormat == "proto" && !util.StdoutRedirected() {
			bailf("Binary output can screw up your terminal. Redirect to a file or use --format json.")
		}
		root, err := tree.Load(args[0])
		checkErr(err)
		defer root.Destroy()
		checkErr(exportTree(os.Stdout, root, exportFormat))
	},
}

var importCmd = &cobra.Command{
	Use:   "import [file] -o [file]",
	Short: "Convert a JSON or protobuf tree to a tree file",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		f, err := os.Open(args[0])
		checkErr(err)
		defer f.Close()
		root, err := importTree(f, importFormat)
		checkErr(err)
		defer root.Destroy()
		checkErr(tree.Save(root, importOutput))
	},
}

func init() {
	rootCmd.AddCommand(exportCmd)
	rootCmd.AddCommand(importCmd)
	exportCmd.Flags().StringVarP(&exportFormat, "format", "f", "json", "Output format (json, proto, notation)")
	importCmd.Flags().StringVarP(&importFormat, "format", "f", "json", "Input format (json, proto)")
	importCmd.Flags().StringVarP(&importOutput, "output", "o", "", "Output file")
	importCmd.MarkFlagRequired("output")
}
