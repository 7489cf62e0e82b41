package codegen

import (
	"github.com/yrnehli/hashc-sub000/internal/ir"
	"github.com/yrnehli/hashc-sub000/internal/layout"
)

// BlockBuilderMethods is the capability surface spec.md §4.F asks every
// backend to implement, grouped the way the original groups them: type
// construction, constant materialization, memory access, arithmetic and
// comparison, and control flow. One BlockBuilderMethods value builds one
// function's worth of blocks. The codegen package's lowering functions
// (terminator.go, call.go) hold the CFG and ABI logic, so no backend
// reimplements it; each backend's own body walker calls the remaining
// methods for statements and operands.
//
// Backend type handles (the T a BackendType call would return) are kept
// as `any` rather than a second type parameter: no lowering function in
// this package needs to do anything with a type handle beyond pass it
// back to the same backend, so a second generic parameter would only
// add ceremony at every call site.
type BlockBuilderMethods[V any] interface {
	// --- type construction ---
	BackendType(ty ir.TyId, l *layout.Layout) any
	ScalarPairType(a, b Scalar) any

	// --- constants ---
	ConstInt(t any, bits uint64) V
	ConstFloat(t any, bits uint64) V
	ConstBytes(data []byte) V
	ConstZero(t any) V
	ConstUndef(t any) V

	// --- memory ---
	Alloca(t any, align uint64) V
	Load(t any, addr V, align uint64, flags MemFlags) V
	Store(val V, addr V, align uint64, flags MemFlags) V
	InboundsGEP(base V, byteOffset uint64) V
	InboundsGEPIndexed(base V, index V, stride uint64) V
	Memcpy(dst, src V, size uint64, align uint64, flags MemFlags)

	// --- arithmetic / comparison ---
	BinOp(op ir.BinOp, lhs, rhs V, ty any) V
	CheckedBinOp(op ir.BinOp, lhs, rhs V, ty any) (result V, overflowed V)
	UnOp(op ir.UnaryOp, operand V, ty any) V
	ICmp(op ir.BinOp, lhs, rhs V) V
	Cast(kind ir.CastKind, val V, from, to any) V

	// --- control flow ---
	Br(target BlockRef)
	CondBr(cond V, thenBlock, elseBlock BlockRef)
	Switch(on V, cases []SwitchCase, otherwise BlockRef)
	Ret(val V, hasVal bool)
	Unreachable()
	Call(fn V, args []V, cont BlockRef, hasCont bool) V
	Trap() // lowers an AssertKind failure: calls the abort/trap intrinsic
}

// Scalar mirrors layout.Scalar without importing it twice at call sites
// that only need the ABI shape, not the full layout tree.
type Scalar = layout.Scalar

// BlockRef is a backend-opaque handle to one of its own basic blocks.
// The native backend's BlockRef is a byte offset placeholder patched by
// applyFixups; the LLVM backend's is an *ir.Block.
type BlockRef interface{}

// SwitchCase pairs one scrutinee value with its target block.
type SwitchCase struct {
	Value  uint64
	Target BlockRef
}
