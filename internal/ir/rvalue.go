package ir

// UnaryOp enumerates the unary operators RValue::UnaryOp can carry.
type UnaryOp int

const (
	UnaryNot UnaryOp = iota
	UnaryNeg
)

// BinOp enumerates the binary operators RValue::BinaryOp /
// RValue::CheckedBinaryOp can carry. Comparison and arithmetic operators
// share one enum, as in the original IR (spec.md §3.4).
type BinOp int

const (
	BinAdd BinOp = iota
	BinSub
	BinMul
	BinDiv
	BinRem
	BinBitXor
	BinBitAnd
	BinBitOr
	BinShl
	BinShr
	BinEq
	BinLt
	BinLe
	BinNe
	BinGe
	BinGt
	BinOffset
)

// IsCheckable reports whether this operator has a CheckedBinaryOp form
// (spec.md: only the arithmetic operators that can overflow do).
func (b BinOp) IsCheckable() bool {
	switch b {
	case BinAdd, BinSub, BinMul, BinShl, BinShr:
		return true
	default:
		return false
	}
}

// IsComparison reports whether b produces a bool result.
func (b BinOp) IsComparison() bool {
	switch b {
	case BinEq, BinLt, BinLe, BinNe, BinGe, BinGt:
		return true
	default:
		return false
	}
}

// CastKind enumerates the ways RValue::Cast can convert a value.
type CastKind int

const (
	CastIntToInt CastKind = iota
	CastFloatToFloat
	CastIntToFloat
	CastFloatToInt
	CastPtrToPtr
	CastUnsize // array/slice-of-known-length to slice, or similar widening
	CastPointerExposeAddress
)

// AggregateKind names what RValue::Aggregate is constructing.
type AggregateKind int

const (
	AggregateArray AggregateKind = iota
	AggregateTuple
	AggregateStruct
	AggregateEnum   // carries Variant
	AggregateSizedPointer
)

// RValueKind is the sum of right-hand-side value forms a Statement's
// Assign can produce (spec.md §3.4).
type RValueKind int

const (
	RValueUse RValueKind = iota
	RValueUnaryOp
	RValueBinaryOp
	RValueCheckedBinaryOp
	RValueCast
	RValueLen
	RValueRef
	RValueAggregate
	RValueRepeat
	RValueDiscriminant
	RValueConstOp
)

// ConstOpKind names the compile-time query RValue::ConstOp performs.
type ConstOpKind int

const (
	ConstOpSizeOf ConstOpKind = iota
	ConstOpAlignOf
)

// RValue is the right-hand side of a Statement::Assign (spec.md §3.4).
// Exactly one group of fields is meaningful, selected by Kind.
type RValue struct {
	Kind RValueKind

	Operand Operand // RValueUse, RValueUnaryOp (operand), RValueCast (operand), RValueRepeat (value)

	UnOp  UnaryOp
	BinOp BinOp

	// RValueBinaryOp / RValueCheckedBinaryOp
	Lhs, Rhs Operand

	CastKind CastKind
	CastTo   TyId

	LenPlace Place // RValueLen

	RefPlace Place      // RValueRef
	RefMut   Mutability // RValueRef

	Aggregate     AggregateKind
	Elements      []Operand // RValueAggregate
	Variant       int       // RValueAggregate when Aggregate == AggregateEnum
	AggregateTy   TyId

	RepeatCount uint64 // RValueRepeat

	DiscriminantPlace Place // RValueDiscriminant

	ConstOp   ConstOpKind
	ConstOpTy TyId
}

// UseRValue wraps a plain operand read.
func UseRValue(op Operand) RValue { return RValue{Kind: RValueUse, Operand: op} }
