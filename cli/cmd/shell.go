package cmd

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/chzyer/readline"
	"github.com/spf13/cobra"
	"github.com/wkalt/bintree/handle"
	"github.com/wkalt/bintree/notation"
	"github.com/wkalt/bintree/tree"
)

const (
	shellPrompt = "bintree # "
	shellHelp   = `Trees are referred to by handles such as #1. Commands:

  new <value>                   create a single-node tree
  parse <literal>               create a tree from a literal, e.g. 2(3(5, _), 4)
  load <path>                   load a tree file
  save <h> <path>               save the subtree at h
  destroy <h>                   destroy the subtree at h
  print <h>                     print the subtree at h as a literal
  value <h>                     print the value at h
  set <h> <value>               set the value at h
  first <h> | second <h>        print the handle of a child
  attach <h> first|second <v>   attach a child
  detach <h> first|second       destroy a child subtree
  count <h> | leaves <h> | height <h>
  contains <h> <value>
  error <h>                     print the error state of h
  clear <h>                     clear the error state of the subtree at h
  help | exit`
)

var errUsage = errors.New("usage")

type shell struct {
	reg *handle.Registry
	out io.Writer
}

func newShell(out io.Writer) *shell {
	return &shell{reg: handle.NewRegistry(), out: out}
}

func parseHandle(s string) (handle.Handle, error) {
	v, err := strconv.ParseUint(strings.TrimPrefix(s, "#"), 10, 64)
	if err != nil {
		return handle.None, fmt.Errorf("invalid handle %q", s)
	}
	return handle.Handle(v), nil
}

func parseValue(s string) (int32, error) {
	v, err := strconv.ParseInt(s, 10, 32)
	if err != nil {
		return 0, fmt.Errorf("invalid value %q", s)
	}
	return int32(v), nil
}

func parseSlot(s string) (tree.Slot, error) {
	switch s {
	case "first":
		return tree.First, nil
	case "second":
		return tree.Second, nil
	default:
		return 0, fmt.Errorf("invalid slot %q", s)
	}
}

func (s *shell) print(v any) {
	fmt.Fprintln(s.out, v)
}

// exec runs a single shell command.
func (s *shell) exec(line string) error { // nolint: funlen
	command, rest, _ := strings.Cut(strings.TrimSpace(line), " ")
	args := strings.Fields(rest)
	if command == "parse" {
		root, err := notation.Parse(rest)
		if err != nil {
			return err
		}
		h, err := s.reg.Adopt(root)
		if err != nil {
			return err
		}
		s.print(h)
		return nil
	}
	if command == "help" {
		s.print(shellHelp)
		return nil
	}
	if len(args) == 0 {
		return fmt.Errorf("%w: %s", errUsage, command)
	}
	switch command {
	case "new":
		value, err := parseValue(args[0])
		if err != nil {
			return err
		}
		s.print(s.reg.Create(value))
		return nil
	case "load":
		h, err := s.reg.Load(args[0])
		s.print(h)
		return err
	}

	h, err := parseHandle(args[0])
	if err != nil {
		return err
	}
	args = args[1:]
	switch {
	case command == "save" && len(args) == 1:
		return s.reg.Save(h, args[0])
	case command == "destroy":
		return s.reg.Destroy(h)
	case command == "print":
		n, err := s.reg.Node(h)
		if err != nil {
			return err
		}
		s.print(notation.Format(n))
	case command == "value":
		v, err := s.reg.Value(h)
		if err != nil {
			return err
		}
		s.print(v)
	case command == "set" && len(args) == 1:
		v, err := parseValue(args[0])
		if err != nil {
			return err
		}
		return s.reg.SetValue(h, v)
	case command == "first" || command == "second":
		slot, _ := parseSlot(command)
		child, err := s.reg.Child(h, slot)
		if err != nil {
			return err
		}
		if child == handle.None {
			s.print("_")
			return nil
		}
		s.print(child)
	case command == "attach" && len(args) == 2:
		slot, err := parseSlot(args[0])
		if err != nil {
			return err
		}
		v, err := parseValue(args[1])
		if err != nil {
			return err
		}
		child, err := s.reg.Attach(h, slot, v)
		if err != nil {
			return err
		}
		s.print(child)
	case command == "detach" && len(args) == 1:
		slot, err := parseSlot(args[0])
		if err != nil {
			return err
		}
		return s.reg.Detach(h, slot)
	case command == "count" || command == "leaves" || command == "height":
		query := map[string]func(handle.Handle) (int, error){
			"count":  s.reg.Count,
			"leaves": s.reg.CountLeaves,
			"height": s.reg.Height,
		}[command]
		v, err := query(h)
		if err != nil {
			return err
		}
		s.print(v)
	case command == "contains" && len(args) == 1:
		v, err := parseValue(args[0])
		if err != nil {
			return err
		}
		ok, err := s.reg.Contains(h, v)
		if err != nil {
			return err
		}
		s.print(ok)
	case command == "error":
		hasError, err := s.reg.HasError(h)
		if err != nil {
			return err
		}
		if !hasError {
			s.print("no error")
			return nil
		}
		msg, err := s.reg.ErrorMessage(h)
		if err != nil {
			return err
		}
		if msg == "" {
			n, err := s.reg.Node(h)
			if err != nil {
				return err
			}
			msg = subtreeError(n)
		}
		s.print("error: " + msg)
	case command == "clear":
		return s.reg.ClearError(h)
	default:
		return fmt.Errorf("%w: %s", errUsage, line)
	}
	return nil
}

func runShell() error {
	home, err := os.UserHomeDir()
	if err != nil {
		return err
	}
	l, err := readline.NewEx(&readline.Config{
		Prompt:          shellPrompt,
		HistoryFile:     filepath.Join(home, ".bintree_history"),
		InterruptPrompt: "^C",
		EOFPrompt:       "exit",
	})
	if err != nil {
		return err
	}
	defer l.Close()
	l.CaptureExitSignal()
	fmt.Println(`Type "help" for help.`)
	sh := newShell(l.Stdout())
	for {
		line, err := l.Readline()
		if err != nil {
			if errors.Is(err, readline.ErrInterrupt) {
				continue
			}
			if errors.Is(err, io.EOF) {
				return nil
			}
			return err
		}
		line = strings.TrimSpace(line)
		switch line {
		case "":
			continue
		case "exit", "quit":
			return nil
		}
		if err := sh.exec(line); err != nil {
			fmt.Fprintln(l.Stderr(), "ERROR: "+err.Error())
		}
	}
}

var shellCmd = &cobra.Command{
	Use:   "shell",
	Short: "Start an interactive shell for building and querying trees",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		checkErr(runShell())
	},
}

func init() {
	rootCmd.AddCommand(shellCmd)
}

// subtreeError returns the message of the first node under n, in pre-order,
// that carries an error of its own.
func subtreeError(n *tree.Node) string {
	var msg string
	n.Walk(func(_ int, node *tree.Node) bool {
		if msg == "" && node.Err() != nil {
			msg = node.ErrorMessage()
		}
		return msg == ""
	})
	return msg
}
