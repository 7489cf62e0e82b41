package llvmgen

import (
	"strings"
	"testing"

	"github.com/yrnehli/hashc-sub000/internal/ir"
	"github.com/yrnehli/hashc-sub000/internal/layout"
	"github.com/yrnehli/hashc-sub000/internal/lower"
	"github.com/yrnehli/hashc-sub000/internal/target"
	"github.com/yrnehli/hashc-sub000/internal/tir"
)

// buildAddFn lowers `fn addfn(a, b: i32) -> i32 { let c = a + b; return c; }`
// through the real internal/lower pass, exercising a local beyond the
// arguments (the `let`) on top of the plain constant-return case
// nativegen's tests use.
func buildAddFn(t *testing.T) (*layout.Ctx, *ir.Body) {
	t.Helper()
	ctx := ir.NewCtx(target.X86_64Linux())
	lc := layout.NewCtx(ctx)
	store := tir.NewStore()

	a := store.DeclareSymbol(tir.SymbolInfo{Name: "a", Ty: ctx.Common.I32, IsArg: true})
	b := store.DeclareSymbol(tir.SymbolInfo{Name: "b", Ty: ctx.Common.I32, IsArg: true})
	aVar := store.Add(tir.Term{Kind: tir.TermVar, Ty: ctx.Common.I32, Symbol: a})
	bVar := store.Add(tir.Term{Kind: tir.TermVar, Ty: ctx.Common.I32, Symbol: b})
	sum := store.Add(tir.Term{Kind: tir.TermBinOp, Ty: ctx.Common.I32, BinOp: ir.BinAdd, Lhs: aVar, Rhs: bVar})
	c := store.DeclareSymbol(tir.SymbolInfo{Name: "c", Ty: ctx.Common.I32})
	decl := store.Add(tir.Term{Kind: tir.TermDeclaration, Ty: ctx.Common.Unit, DeclSymbol: c, DeclInit: sum, HasOperand: true})
	cVar := store.Add(tir.Term{Kind: tir.TermVar, Ty: ctx.Common.I32, Symbol: c})
	ret := store.Add(tir.Term{Kind: tir.TermReturn, Ty: ctx.Common.Never, HasOperand: true, Operand: cVar})

	fn := tir.FnDef{Name: "addfn", Params: []tir.SymbolId{a, b}, ReturnTy: ctx.Common.I32, Body: []tir.TermId{decl, ret}}
	body, err := lower.LowerFn(ctx, lc, store, fn)
	if err != nil {
		t.Fatalf("LowerFn: %v", err)
	}
	return lc, body
}

func TestCompileModuleProducesAFunctionPerBody(t *testing.T) {
	lc, body := buildAddFn(t)

	m, err := CompileModule(lc, []*ir.Body{body})
	if err != nil {
		t.Fatalf("CompileModule: %v", err)
	}
	if len(m.Funcs) != 1 {
		t.Fatalf("got %d funcs, want 1", len(m.Funcs))
	}
	fn := m.Funcs[0]
	if fn.Name() != "addfn" {
		t.Errorf("func name = %q, want %q", fn.Name(), "addfn")
	}
	if len(fn.Params) != 2 {
		t.Errorf("got %d params, want 2", len(fn.Params))
	}
	if len(fn.Blocks) == 0 {
		t.Fatal("function has no basic blocks")
	}

	ir := m.String()
	if !strings.Contains(ir, "alloca") {
		t.Error("expected an alloca in the printed module (every local gets one)")
	}
	if !strings.Contains(ir, "ret ") {
		t.Error("expected a ret instruction in the printed module")
	}
}

func TestCompileModuleWithNoBodiesStillProducesAModule(t *testing.T) {
	ctx := ir.NewCtx(target.X86_64Linux())
	lc := layout.NewCtx(ctx)
	m, err := CompileModule(lc, nil)
	if err != nil {
		t.Fatalf("CompileModule: %v", err)
	}
	if len(m.Funcs) != 0 {
		t.Errorf("got %d funcs, want 0", len(m.Funcs))
	}
}
