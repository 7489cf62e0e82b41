// Package repl implements `hashc repl`'s interactive loop: since no
// parser/resolver is in scope (spec.md explicitly routes those out),
// this is an IR/layout inspector rather than a read-eval-print loop over
// hashc source — its input language is a handful of inspector commands
// run against whatever bodies cmd/hashc preloaded. The read-eval-print
// shape itself is grounded in sentra-language-sentra's internal/repl
// (prompt, read a line, dispatch, loop until exit/EOF), built here on
// github.com/chzyer/readline for line editing and history instead of a
// bare bufio.Scanner.
package repl

import (
	"fmt"
	"io"
	"strings"

	"github.com/chzyer/readline"

	"github.com/yrnehli/hashc-sub000/internal/ir"
	"github.com/yrnehli/hashc-sub000/internal/layout"
)

// Session holds the type/layout context and the function bodies the
// REPL's commands inspect.
type Session struct {
	Ctx    *ir.Ctx
	Layout *layout.Ctx
	Bodies map[string]*ir.Body
}

// NewSession starts an empty session against ctx/lc; callers add bodies
// with AddBody before calling Run.
func NewSession(ctx *ir.Ctx, lc *layout.Ctx) *Session {
	return &Session{Ctx: ctx, Layout: lc, Bodies: make(map[string]*ir.Body)}
}

// AddBody makes b available to the `body`/`list` commands, keyed by its
// own name.
func (s *Session) AddBody(b *ir.Body) {
	s.Bodies[b.Name] = b
}

const prompt = "hashc> "

// Run drives the loop: read a command, dispatch it, print the result,
// until `exit`/`quit` or EOF.
func Run(s *Session, out io.Writer) error {
	rl, err := readline.New(prompt)
	if err != nil {
		return fmt.Errorf("repl: %w", err)
	}
	defer rl.Close()

	fmt.Fprintln(out, "hashc IR/layout inspector. Type 'help' for commands, 'exit' to quit.")
	for {
		line, err := rl.Readline()
		switch {
		case err == readline.ErrInterrupt:
			continue
		case err == io.EOF:
			return nil
		case err != nil:
			return fmt.Errorf("repl: %w", err)
		}

		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		fields := strings.Fields(line)
		switch fields[0] {
		case "exit", "quit":
			return nil
		case "help":
			printHelp(out)
		case "list":
			s.listBodies(out)
		case "body":
			s.printBody(out, fields[1:])
		case "layout":
			s.printLayout(out, fields[1:])
		default:
			fmt.Fprintf(out, "unknown command %q (try 'help')\n", fields[0])
		}
	}
}

func printHelp(out io.Writer) {
	fmt.Fprint(out, `commands:
  list             list every loaded function body
  body <name>      print a function body's lowered IR
  layout <tyid>    print the computed layout of a type id
  help             show this message
  exit, quit       leave the REPL
`)
}

func (s *Session) listBodies(out io.Writer) {
	if len(s.Bodies) == 0 {
		fmt.Fprintln(out, "(no bodies loaded)")
		return
	}
	for name := range s.Bodies {
		fmt.Fprintln(out, name)
	}
}

func (s *Session) printBody(out io.Writer, args []string) {
	if len(args) != 1 {
		fmt.Fprintln(out, "usage: body <name>")
		return
	}
	b, ok := s.Bodies[args[0]]
	if !ok {
		fmt.Fprintf(out, "no such body %q (see 'list')\n", args[0])
		return
	}
	fmt.Fprintln(out, ir.Print(b))
}

func (s *Session) printLayout(out io.Writer, args []string) {
	if len(args) != 1 {
		fmt.Fprintln(out, "usage: layout <tyid>")
		return
	}
	var id int
	if _, err := fmt.Sscanf(args[0], "%d", &id); err != nil {
		fmt.Fprintf(out, "not a type id: %q\n", args[0])
		return
	}
	l, err := s.Layout.LayoutOf(ir.TyId(id))
	if err != nil {
		fmt.Fprintf(out, "layout error: %v\n", err)
		return
	}
	fmt.Fprintf(out, "size=%d align=%d abi=%v\n", l.Size, l.Align.Abi, l.Abi)
}
