package demo

import (
	"testing"

	"github.com/yrnehli/hashc-sub000/internal/ir"
	"github.com/yrnehli/hashc-sub000/internal/layout"
	"github.com/yrnehli/hashc-sub000/internal/lower"
	"github.com/yrnehli/hashc-sub000/internal/target"
	"github.com/yrnehli/hashc-sub000/internal/tir"
)

func TestBuildReturnsTheFixedFunctionSet(t *testing.T) {
	ctx := ir.NewCtx(target.X86_64Linux())
	store := tir.NewStore()
	fns := Build(ctx, store)

	want := []string{"addfn", "maxfn", "sumtonfn", "distsquaredfn"}
	if len(fns) != len(want) {
		t.Fatalf("got %d functions, want %d", len(fns), len(want))
	}
	for i, name := range want {
		if fns[i].Name != name {
			t.Errorf("fns[%d].Name = %q, want %q", i, fns[i].Name, name)
		}
	}
}

func TestBuildFixtureLowersCleanly(t *testing.T) {
	// internal/demo exists so cmd/hashc has something to lower; if
	// LowerAll ever rejects it, the driver has nothing left to
	// demonstrate.
	ctx := ir.NewCtx(target.X86_64Linux())
	lc := layout.NewCtx(ctx)
	store := tir.NewStore()

	bodies, err := lower.LowerAll(ctx, lc, store, Build(ctx, store), 0)
	if err != nil {
		t.Fatalf("LowerAll: %v", err)
	}
	if len(bodies) != 4 {
		t.Fatalf("got %d bodies, want 4", len(bodies))
	}
	for _, b := range bodies {
		if b == nil {
			t.Fatal("LowerAll returned a nil body for a well-formed fixture function")
		}
	}
}

func TestDistSquaredFnDeclaresAPointAdt(t *testing.T) {
	ctx := ir.NewCtx(target.X86_64Linux())
	store := tir.NewStore()
	fn := distSquaredFn(ctx, store)

	if fn.Name != "distsquaredfn" {
		t.Fatalf("Name = %q, want distsquaredfn", fn.Name)
	}
	if len(fn.Params) != 2 {
		t.Fatalf("got %d params, want 2", len(fn.Params))
	}

	decl := store.Get(fn.Body[0])
	if decl.Kind != tir.TermDeclaration {
		t.Fatalf("Body[0].Kind = %v, want TermDeclaration", decl.Kind)
	}
	lit := store.Get(decl.DeclInit)
	if lit.Kind != tir.TermStructLit {
		t.Fatalf("declaration initializer kind = %v, want TermStructLit", lit.Kind)
	}
	if got := ctx.Adts.Get(lit.Adt); got.Name != "Point" || len(got.Variants[0].Fields) != 2 {
		t.Errorf("adt = %+v, want a 2-field Point struct", got)
	}
}
