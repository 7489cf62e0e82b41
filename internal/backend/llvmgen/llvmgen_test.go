package llvmgen

import (
	"testing"

	"github.com/llir/llvm/ir"
	"github.com/llir/llvm/ir/constant"
	"github.com/llir/llvm/ir/types"

	hashir "github.com/yrnehli/hashc-sub000/internal/ir"
)

func newTestBuilder(t *testing.T) *Builder {
	t.Helper()
	m := ir.NewModule()
	b := NewBuilder(m, "add_one", nil, types.I64)
	b.Block = b.NewBlock("entry")
	return b
}

func TestBinOpAddEmitsAddInstruction(t *testing.T) {
	b := newTestBuilder(t)
	lhs := constant.NewInt(types.I64, 1)
	rhs := constant.NewInt(types.I64, 2)
	result := b.BinOp(hashir.BinAdd, lhs, rhs, types.I64)
	if _, ok := result.(*ir.InstAdd); !ok {
		t.Errorf("BinOp(BinAdd) = %T, want *ir.InstAdd", result)
	}
}

func TestICmpEmitsSignedLessThan(t *testing.T) {
	b := newTestBuilder(t)
	lhs := constant.NewInt(types.I64, 1)
	rhs := constant.NewInt(types.I64, 2)
	result := b.ICmp(hashir.BinLt, lhs, rhs)
	inst, ok := result.(*ir.InstICmp)
	if !ok {
		t.Fatalf("ICmp(BinLt) = %T, want *ir.InstICmp", result)
	}
	if inst.Type() != types.I1 {
		t.Errorf("ICmp result type = %v, want i1", inst.Type())
	}
}

func TestAllocaStoreLoadRoundTrip(t *testing.T) {
	b := newTestBuilder(t)
	slot := b.Alloca(types.I64, 8)
	b.Store(constant.NewInt(types.I64, 42), slot, 8, 0)
	loaded := b.Load(types.I64, slot, 8, 0)
	if loaded.Type() != types.I64 {
		t.Errorf("Load result type = %v, want i64", loaded.Type())
	}
}

func TestRetVoidAndRetValue(t *testing.T) {
	b := newTestBuilder(t)
	b.Ret(constant.NewInt(types.I64, 7), true)
	term := b.Block.Term
	ret, ok := term.(*ir.TermRet)
	if !ok {
		t.Fatalf("terminator = %T, want *ir.TermRet", term)
	}
	if ret.X == nil {
		t.Error("TermRet.X is nil, want the returned constant")
	}
}

func TestCondBrWithTrapMarkerSynthesizesUnreachableBlock(t *testing.T) {
	b := newTestBuilder(t)
	thenBlock := b.NewBlock("then")
	cond := constant.NewInt(types.I1, 1)
	startFuncs := len(b.Func.Blocks)
	b.CondBr(cond, thenBlock, trapMarkerStub{})
	if len(b.Func.Blocks) != startFuncs+1 {
		t.Errorf("CondBr with trap marker added %d blocks, want 1", len(b.Func.Blocks)-startFuncs)
	}
	term, ok := b.Block.Term.(*ir.TermCondBr)
	if !ok {
		t.Fatalf("terminator = %T, want *ir.TermCondBr", b.Block.Term)
	}
	if term.TargetFalse == thenBlock {
		t.Error("false target should be the synthesized trap block, not thenBlock")
	}
}

// trapMarkerStub stands in for codegen.trapBlockMarker, which is
// unexported outside the codegen package; CondBr only needs something
// that fails the *ir.Block type assertion, so any distinct type works
// for this test.
type trapMarkerStub struct{}
