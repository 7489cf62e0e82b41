// Command hashc is the driver for the Hash compiler core: it lowers
// internal/demo's fixed set of already-typed function bodies (there
// being no parser/resolver in scope, spec.md §1) through internal/lower,
// and routes the result to whichever reference backend
// internal/settings.CodeGenBackend selects, the way a real frontend's
// driver would route a parsed, resolved program. Subcommands are built
// with github.com/spf13/cobra, the CLI idiom golang-debug's go.mod pulls
// in but never actually wires into a command tree of its own.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/yrnehli/hashc-sub000/internal/backend/llvmgen"
	"github.com/yrnehli/hashc-sub000/internal/backend/nativegen"
	"github.com/yrnehli/hashc-sub000/internal/demo"
	"github.com/yrnehli/hashc-sub000/internal/diagnostics"
	"github.com/yrnehli/hashc-sub000/internal/ir"
	"github.com/yrnehli/hashc-sub000/internal/layout"
	"github.com/yrnehli/hashc-sub000/internal/lower"
	"github.com/yrnehli/hashc-sub000/internal/repl"
	"github.com/yrnehli/hashc-sub000/internal/settings"
	"github.com/yrnehli/hashc-sub000/internal/target"
	"github.com/yrnehli/hashc-sub000/internal/tir"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	s := settings.Default()

	root := &cobra.Command{
		Use:   "hashc",
		Short: "Hash compiler core: TIR lowering, layout, and code generation",
	}
	root.PersistentFlags().IntVar(&s.LowerWorkers, "workers", s.LowerWorkers, "worker count for internal/lower.LowerAll (0 picks GOMAXPROCS)")

	root.AddCommand(newIRCmd(&s), newEmitCmd(&s), newReplCmd(&s))
	return root
}

// loadDemo builds and lowers internal/demo's fixture, the stand-in for
// "the program the frontend handed us" everywhere this driver needs one.
func loadDemo(s *settings.Settings) (*ir.Ctx, *layout.Ctx, []*ir.Body, error) {
	ctx := ir.NewCtx(target.X86_64Linux())
	store := tir.NewStore()
	lc := layout.NewCtx(ctx)

	sink := &diagnostics.Sink{}
	bodies, err := lower.LowerAll(ctx, lc, store, demo.Build(ctx, store), s.LowerWorkers)
	if err != nil {
		sink.Errorf("", "lowering failed: %v", err)
		for _, d := range sink.Diagnostics() {
			fmt.Fprintln(os.Stderr, d.String())
		}
		return nil, nil, nil, sink.Err()
	}
	return ctx, lc, bodies, nil
}

func newIRCmd(s *settings.Settings) *cobra.Command {
	return &cobra.Command{
		Use:   "ir",
		Short: "Lower the demo fixture and print its IR",
		RunE: func(cmd *cobra.Command, args []string) error {
			_, _, bodies, err := loadDemo(s)
			if err != nil {
				return err
			}
			for _, b := range bodies {
				fmt.Printf("=== %s ===\n", b.Name)
				fmt.Println(ir.Print(b))
			}
			return nil
		},
	}
}

func newEmitCmd(s *settings.Settings) *cobra.Command {
	var backendFlag string

	cmd := &cobra.Command{
		Use:   "emit",
		Short: "Lower the demo fixture and emit code through a reference backend",
		RunE: func(cmd *cobra.Command, args []string) error {
			backend, err := settings.ParseCodeGenBackend(backendFlag)
			if err != nil {
				return err
			}
			s.Backend = backend

			_, lc, bodies, err := loadDemo(s)
			if err != nil {
				return err
			}

			var out []byte
			switch s.Backend {
			case settings.BackendLLVM:
				m, err := llvmgen.CompileModule(lc, bodies)
				if err != nil {
					return fmt.Errorf("llvmgen: %w", err)
				}
				out = []byte(m.String())
			case settings.BackendNative:
				obj, err := nativegen.GenerateObject(lc, nativegen.Module{Name: "hashc", Bodies: bodies})
				if err != nil {
					return fmt.Errorf("nativegen: %w", err)
				}
				out = obj
			}

			if s.OutputPath == "" {
				os.Stdout.Write(out)
				return nil
			}
			return os.WriteFile(s.OutputPath, out, 0644)
		},
	}
	cmd.Flags().StringVar(&backendFlag, "backend", "llvm", `reference backend to emit through ("llvm" or "native")`)
	cmd.Flags().StringVar(&s.OutputPath, "out", "", "output file path (default: stdout)")
	return cmd
}

func newReplCmd(s *settings.Settings) *cobra.Command {
	return &cobra.Command{
		Use:   "repl",
		Short: "Start an interactive IR/layout inspector preloaded with the demo fixture",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, lc, bodies, err := loadDemo(s)
			if err != nil {
				return err
			}
			session := repl.NewSession(ctx, lc)
			for _, b := range bodies {
				session.AddBody(b)
			}
			return repl.Run(session, os.Stdout)
		},
	}
}
