package nativegen

import (
	"testing"

	"github.com/yrnehli/hashc-sub000/internal/ir"
	"github.com/yrnehli/hashc-sub000/internal/layout"
	"github.com/yrnehli/hashc-sub000/internal/lower"
	"github.com/yrnehli/hashc-sub000/internal/target"
	"github.com/yrnehli/hashc-sub000/internal/tir"
)

// constReturnBody lowers `fn <name>() -> i32 { return <n>; }`.
func constReturnBody(t *testing.T, ctx *ir.Ctx, lc *layout.Ctx, name string, n uint64) *ir.Body {
	t.Helper()
	store := tir.NewStore()
	lit := store.Add(tir.Term{Kind: tir.TermConstInt, Ty: ctx.Common.I32, IntValue: n})
	ret := store.Add(tir.Term{Kind: tir.TermReturn, Ty: ctx.Common.Never, HasOperand: true, Operand: lit})
	fn := tir.FnDef{Name: name, ReturnTy: ctx.Common.I32, Body: []tir.TermId{ret}}
	body, err := lower.LowerFn(ctx, lc, store, fn)
	if err != nil {
		t.Fatalf("LowerFn(%s): %v", name, err)
	}
	return body
}

func TestGenerateObjectProducesWellFormedElfHeader(t *testing.T) {
	ctx := ir.NewCtx(target.X86_64Linux())
	lc := layout.NewCtx(ctx)
	m := Module{Name: "test_unit", Bodies: []*ir.Body{
		constReturnBody(t, ctx, lc, "one", 1),
		constReturnBody(t, ctx, lc, "two", 2),
	}}

	out, err := GenerateObject(lc, m)
	if err != nil {
		t.Fatalf("GenerateObject: %v", err)
	}
	if len(out) < 64 {
		t.Fatalf("output suspiciously small: %d bytes", len(out))
	}

	wantMagic := []byte{0x7f, 'E', 'L', 'F'}
	if string(out[:4]) != string(wantMagic) {
		t.Errorf("ELF magic = % X, want % X", out[:4], wantMagic)
	}
	// e_ident[EI_CLASS] == ELFCLASS64 (2), e_ident[EI_DATA] == ELFDATA2LSB (1)
	if out[4] != 2 {
		t.Errorf("EI_CLASS = %d, want 2 (ELFCLASS64)", out[4])
	}
	if out[5] != 1 {
		t.Errorf("EI_DATA = %d, want 1 (little-endian)", out[5])
	}
	// e_type (offset 16, 2 bytes LE) should be ET_REL (1): a relocatable object.
	eType := uint16(out[16]) | uint16(out[17])<<8
	if eType != 1 {
		t.Errorf("e_type = %d, want 1 (ET_REL)", eType)
	}
}

func TestGenerateObjectWithNoBodiesStillProducesAValidFile(t *testing.T) {
	ctx := ir.NewCtx(target.X86_64Linux())
	lc := layout.NewCtx(ctx)
	out, err := GenerateObject(lc, Module{Name: "empty_unit"})
	if err != nil {
		t.Fatalf("GenerateObject: %v", err)
	}
	if string(out[:4]) != "\x7fELF" {
		t.Errorf("missing ELF magic in empty-module output")
	}
}

func TestParamTysOfReadsDeclaredArgumentTypesInOrder(t *testing.T) {
	ctx := ir.NewCtx(target.X86_64Linux())
	body := ir.NewBody("f", ctx.Common.I32)
	body.AddLocal(ir.LocalDecl{Ty: ctx.Common.I32, IsArg: true})
	body.AddLocal(ir.LocalDecl{Ty: ctx.Common.Bool, IsArg: true})
	body.NumArgs = 2

	got := paramTysOf(body)
	want := []ir.TyId{ctx.Common.I32, ctx.Common.Bool}
	if len(got) != len(want) || got[0] != want[0] || got[1] != want[1] {
		t.Errorf("paramTysOf = %v, want %v", got, want)
	}
}
