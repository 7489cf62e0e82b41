package codegen

import "github.com/yrnehli/hashc-sub000/internal/ir"

// OperandValueKind enumerates how an already-computed value is held in
// a backend's representation.
type OperandValueKind int

const (
	OperandRefKind   OperandValueKind = iota // value lives in memory; Value1 is its address
	OperandImmediate                         // value lives in a single register
	OperandPairKind                          // value lives in two registers (ScalarPair ABI)
)

// OperandValue is the backend-neutral representation of a computed
// value, parameterised over the backend's own register/value handle
// type V (an llvm.Value, a pseudo-register id, etc.) — spec.md §4.F.
type OperandValue[V any] struct {
	Kind   OperandValueKind
	Value1 V
	Value2 V // OperandPairKind only
}

// OperandRef pairs an OperandValue with the IR type it represents, the
// unit codegen's operand-lowering functions pass around.
type OperandRef[V any] struct {
	Value OperandValue[V]
	Ty    ir.TyId
}
