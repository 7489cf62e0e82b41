package amd64

import (
	"testing"

	"github.com/yrnehli/hashc-sub000/internal/codegen"
	"github.com/yrnehli/hashc-sub000/internal/ir"
	"github.com/yrnehli/hashc-sub000/internal/layout"
	"github.com/yrnehli/hashc-sub000/internal/lower"
	"github.com/yrnehli/hashc-sub000/internal/target"
	"github.com/yrnehli/hashc-sub000/internal/tir"
)

// buildXorFn lowers `fn xorfn(a, b: i32) -> i32 { return a ^ b; }` through
// the real internal/lower pass, the same pipeline nativegen drives.
func buildXorFn(t *testing.T) (*layout.Ctx, *ir.Body, codegen.FnAbi) {
	t.Helper()
	ctx := ir.NewCtx(target.X86_64Linux())
	lc := layout.NewCtx(ctx)
	store := tir.NewStore()

	a := store.DeclareSymbol(tir.SymbolInfo{Name: "a", Ty: ctx.Common.I32, IsArg: true})
	b := store.DeclareSymbol(tir.SymbolInfo{Name: "b", Ty: ctx.Common.I32, IsArg: true})

	aVar := store.Add(tir.Term{Kind: tir.TermVar, Ty: ctx.Common.I32, Symbol: a})
	bVar := store.Add(tir.Term{Kind: tir.TermVar, Ty: ctx.Common.I32, Symbol: b})
	xorTerm := store.Add(tir.Term{Kind: tir.TermBinOp, Ty: ctx.Common.I32, BinOp: ir.BinBitXor, Lhs: aVar, Rhs: bVar})
	ret := store.Add(tir.Term{Kind: tir.TermReturn, Ty: ctx.Common.Never, HasOperand: true, Operand: xorTerm})

	fn := tir.FnDef{Name: "xorfn", Params: []tir.SymbolId{a, b}, ReturnTy: ctx.Common.I32, Body: []tir.TermId{ret}}
	body, err := lower.LowerFn(ctx, lc, store, fn)
	if err != nil {
		t.Fatalf("LowerFn: %v", err)
	}

	fnAbi, err := codegen.ComputeFnAbi(lc, []ir.TyId{ctx.Common.I32, ctx.Common.I32}, ctx.Common.I32)
	if err != nil {
		t.Fatalf("ComputeFnAbi: %v", err)
	}
	return lc, body, fnAbi
}

func TestCompileBodyEmitsPrologueAndEpilogue(t *testing.T) {
	lc, body, fnAbi := buildXorFn(t)

	artifact, err := CompileBody(lc, body, fnAbi)
	if err != nil {
		t.Fatalf("CompileBody: %v", err)
	}
	text := artifact.TextBuffer
	if len(text) < 8 {
		t.Fatalf("text buffer suspiciously short: %d bytes", len(text))
	}

	// push rbp; mov rbp, rsp; sub rsp, imm32
	wantPrologue := []byte{0x55, 0x48, 0x89, 0xE5, 0x48, 0x81, 0xEC}
	if string(text[:len(wantPrologue)]) != string(wantPrologue) {
		t.Errorf("prologue bytes = % X, want % X", text[:len(wantPrologue)], wantPrologue)
	}

	// leave; ret
	wantEpilogue := []byte{0xC9, 0xC3}
	got := text[len(text)-2:]
	if got[0] != wantEpilogue[0] || got[1] != wantEpilogue[1] {
		t.Errorf("epilogue bytes = % X, want % X", got, wantEpilogue)
	}
}

func TestCompileBodyPatchesFrameSizeToA16ByteMultiple(t *testing.T) {
	lc, body, fnAbi := buildXorFn(t)
	artifact, err := CompileBody(lc, body, fnAbi)
	if err != nil {
		t.Fatalf("CompileBody: %v", err)
	}

	// The sub rsp immediate sits right after the 7-byte prologue opcode
	// sequence (push/mov/sub-opcode), as a little-endian uint32.
	imm := uint32(artifact.TextBuffer[7]) | uint32(artifact.TextBuffer[8])<<8 |
		uint32(artifact.TextBuffer[9])<<16 | uint32(artifact.TextBuffer[10])<<24
	if imm == 0 {
		t.Fatalf("frame size was never patched (still the zero placeholder)")
	}
	if imm%16 != 0 {
		t.Errorf("frame size %d is not 16-byte aligned", imm)
	}
}

func TestCompileBodyProducesOneFunctionSymbol(t *testing.T) {
	lc, body, fnAbi := buildXorFn(t)
	artifact, err := CompileBody(lc, body, fnAbi)
	if err != nil {
		t.Fatalf("CompileBody: %v", err)
	}
	if len(artifact.Symbols) != 1 {
		t.Fatalf("got %d symbols, want 1", len(artifact.Symbols))
	}
	sym := artifact.Symbols[0]
	if sym.Name != "xorfn" || !sym.IsFunc {
		t.Errorf("unexpected symbol: %+v", sym)
	}
	if sym.Size != uint64(len(artifact.TextBuffer)) {
		t.Errorf("symbol size %d does not cover the whole function body (%d bytes)", sym.Size, len(artifact.TextBuffer))
	}
}

func TestClassifyParameterPicksMemoryForLargeAggregates(t *testing.T) {
	big := &layout.Layout{Size: 32}
	if got := ClassifyParameter(big); got != ParamMemory {
		t.Errorf("32-byte aggregate classified as %v, want ParamMemory", got)
	}
	small := &layout.Layout{Size: 4, Abi: layout.AbiScalar, Scalar: layout.Scalar{Kind: layout.ScalarInt}}
	if got := ClassifyParameter(small); got != ParamInteger {
		t.Errorf("scalar int classified as %v, want ParamInteger", got)
	}
	float := &layout.Layout{Size: 8, Abi: layout.AbiScalar, Scalar: layout.Scalar{Kind: layout.ScalarFloat}}
	if got := ClassifyParameter(float); got != ParamSSE {
		t.Errorf("scalar float classified as %v, want ParamSSE", got)
	}
}

func TestMaterializeImmediateUsesXorForZero(t *testing.T) {
	c := &Compiler{}
	c.materialize(RAX, Value{Kind: ValueImm, Imm: 0})
	// xor reg, reg is the emitter's zero-immediate shortcut: REX.W 0x31 /r
	got := c.text.Bytes()
	if len(got) != 3 || got[1] != 0x31 {
		t.Errorf("loading immediate zero did not take the xor shortcut: % X", got)
	}
}
