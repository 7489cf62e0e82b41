// Package layout computes target-aware memory layouts for IR types: size,
// alignment, field offsets, and ABI classification. It is a close
// structural port of the original compiler's layout-computation pass,
// translated into plain Go control flow.
package layout

import (
	"fmt"

	"github.com/yrnehli/hashc-sub000/internal/ir"
	"github.com/yrnehli/hashc-sub000/internal/target"
)

// Abi classifies how a value of this layout is passed in registers, if
// at all.
type Abi int

const (
	AbiUninhabited Abi = iota
	AbiScalar
	AbiScalarPair
	AbiVector
	AbiAggregate
)

// ScalarKind names the primitive a Scalar holds.
type ScalarKind int

const (
	ScalarInt ScalarKind = iota
	ScalarFloat
	ScalarPointer
)

// Scalar is a single machine-register-sized primitive value.
type Scalar struct {
	Kind    ScalarKind
	Width   uint64 // bytes
	Signed  bool   // ScalarInt
	FloatBits int  // ScalarFloat: 32 or 64
}

// FieldsShapeKind enumerates how a layout's fields are arranged in
// memory.
type FieldsShapeKind int

const (
	FieldsPrimitive FieldsShapeKind = iota // no fields (scalar/never/zst)
	FieldsArray                            // uniform stride, Count repetitions
	FieldsArbitrary                        // explicit per-field offsets
	FieldsUnion                            // Count overlapping fields, all at offset zero
)

// FieldsShape describes the field layout of an aggregate.
type FieldsShape struct {
	Kind FieldsShapeKind

	Stride uint64 // FieldsArray
	Count  uint64 // FieldsArray

	// FieldsArbitrary: Offsets[i] is the byte offset of declaration-order
	// field i; Memory[k] is the declaration-order index of the field that
	// occupies memory position k (the field-reordering permutation).
	Offsets []uint64
	Memory  []int
}

// VariantsKind distinguishes a layout with one shape (Single) from an
// enum with a tag selecting between several (Multiple).
type VariantsKind int

const (
	VariantsSingle VariantsKind = iota
	VariantsMultiple
)

// Variants describes how an ADT's variants are laid out.
type Variants struct {
	Kind VariantsKind

	VariantIndex int // VariantsSingle: which variant (usually 0)

	// VariantsMultiple
	TagField    int      // always 0: the tag is always the first field (prefix)
	Tag         Scalar   // the discriminant's scalar representation
	TagEncoding target.Integer
	Variants    []*Layout // per-variant layout, indexed by variant number
}

// Layout is the complete memory layout of a type: size, alignment, ABI
// classification, field shape, and (for enums) variant information.
type Layout struct {
	Size  uint64
	Align target.Alignment
	Abi   Abi

	Scalar  Scalar // AbiScalar
	Scalar2 Scalar // AbiScalarPair: second half
	Offset2 uint64 // AbiScalarPair: byte offset of the second scalar

	VectorElem  Scalar // AbiVector: the repeated element kind
	VectorCount uint64 // AbiVector: element count

	Fields   FieldsShape
	Variants Variants
}

// IsZst reports whether this layout describes a zero-sized type.
func (l *Layout) IsZst() bool { return l.Size == 0 && l.Abi != AbiScalarPair }

// FieldOffset returns the byte offset of declaration-order field idx:
// idx*Stride for FieldsArray, always 0 for FieldsUnion, otherwise
// Offsets[idx] (FieldsArbitrary).
func (l *Layout) FieldOffset(idx int) uint64 {
	switch l.Fields.Kind {
	case FieldsArray:
		return l.Fields.Stride * uint64(idx)
	case FieldsUnion:
		return 0
	default:
		return l.Fields.Offsets[idx]
	}
}

// ErrOverflow is returned when a type's computed size would exceed the
// target's addressable object bound.
var ErrOverflow = fmt.Errorf("layout: type size exceeds target object bound")

// ErrUnknown is returned for types this engine declines to lay out (see
// DESIGN.md "Open Question decisions": Rc pointers).
var ErrUnknown = fmt.Errorf("layout: unknown/unsupported layout query")

// Ctx is the layout engine's cache and the context (target + type store)
// it computes against.
type Ctx struct {
	ir *ir.Ctx

	cache        map[ir.TyId]*Layout
	pointeeCache map[pointeeKey]*PointeeInfo
}

// NewCtx creates a layout engine over irCtx.
func NewCtx(irCtx *ir.Ctx) *Ctx {
	return &Ctx{
		ir:           irCtx,
		cache:        make(map[ir.TyId]*Layout),
		pointeeCache: make(map[pointeeKey]*PointeeInfo),
	}
}

// TyOf exposes the underlying type store's lookup, for callers (a place
// evaluator walking a projection chain, say) that need a type's shape
// rather than its layout — ProjDeref needs a TyRef's RefPointee, for
// instance, which LayoutOf alone can't answer.
func (c *Ctx) TyOf(ty ir.TyId) ir.Ty {
	return c.ir.Tys.Get(ty)
}

// LayoutOf computes (and caches) the layout of ty.
func (c *Ctx) LayoutOf(ty ir.TyId) (*Layout, error) {
	if l, ok := c.cache[ty]; ok {
		return l, nil
	}
	l, err := c.computeLayout(ty)
	if err != nil {
		return nil, err
	}
	if l.Size >= c.ir.DataLayout.ObjSizeBound() {
		return nil, fmt.Errorf("layout: %w: ty %d has size %d", ErrOverflow, ty, l.Size)
	}
	c.cache[ty] = l
	return l, nil
}

func (c *Ctx) computeLayout(ty ir.TyId) (*Layout, error) {
	t := c.ir.Tys.Get(ty)
	dl := c.ir.DataLayout

	switch t.Kind {
	case ir.TyBool:
		return scalarLayout(Scalar{Kind: ScalarInt, Width: 1, Signed: false}), nil
	case ir.TyChar:
		return scalarLayout(Scalar{Kind: ScalarInt, Width: 4, Signed: false}), nil
	case ir.TyNever:
		return &Layout{Size: 0, Align: target.Alignment{Abi: 1, Pref: 1}, Abi: AbiUninhabited, Fields: FieldsShape{Kind: FieldsPrimitive}}, nil
	case ir.TyInt:
		w := t.IntWidth.Bytes()
		return scalarLayout(Scalar{Kind: ScalarInt, Width: w, Signed: t.IntSigned}), nil
	case ir.TyFloat:
		return scalarLayout(Scalar{Kind: ScalarFloat, Width: uint64(t.FloatBits) / 8, FloatBits: t.FloatBits}), nil
	case ir.TyStr:
		return c.layoutSlice(c.ir.Common.U8)
	case ir.TyRef:
		if t.RefKindValue == ir.RefRc {
			return nil, fmt.Errorf("ir type %d (Rc ref): %w", ty, ErrUnknown)
		}
		ptr := Scalar{Kind: ScalarPointer, Width: dl.PointerSize}
		return scalarLayout(ptr), nil
	case ir.TyArray:
		return c.layoutArray(t.ArrayElem, t.ArrayLength)
	case ir.TySlice:
		return c.layoutSlice(t.ArrayElem)
	case ir.TyFn:
		return scalarLayout(Scalar{Kind: ScalarPointer, Width: dl.PointerSize}), nil
	case ir.TyAdt:
		return c.layoutAdt(t.Adt)
	default:
		return nil, fmt.Errorf("ir type %d: %w", ty, ErrUnknown)
	}
}

func scalarLayout(s Scalar) *Layout {
	return &Layout{
		Size:   s.Width,
		Align:  target.Alignment{Abi: s.Width, Pref: s.Width},
		Abi:    AbiScalar,
		Scalar: s,
		Fields: FieldsShape{Kind: FieldsPrimitive},
	}
}
