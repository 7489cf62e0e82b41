package layout

import (
	"github.com/yrnehli/hashc-sub000/internal/ir"
	"github.com/yrnehli/hashc-sub000/internal/target"
)

// layoutUnion lays out a union: every field shares offset zero, the
// union's size is the largest field (rounded up to the union's
// alignment), and its fields shape is the dedicated Union{field_count}
// shape (spec.md §3.2/§4.C) rather than FieldsArbitrary's per-field
// offset table, since every field's offset is the same constant zero.
// Its ABI stays Aggregate unless every non-ZST field agrees on a common
// Scalar/ScalarPair/Vector ABI, in which case the union adopts it
// (spec.md §4.C: C-repr unions never get this optimisation, since their
// memory layout must match the C union model exactly).
func (c *Ctx) layoutUnion(def ir.AdtData) (*Layout, error) {
	fieldTys := fieldTypesOf(def.Variants[0])
	fieldLayouts := make([]*Layout, len(fieldTys))
	for i, fty := range fieldTys {
		fl, err := c.LayoutOf(fty)
		if err != nil {
			return nil, err
		}
		fieldLayouts[i] = fl
	}

	align := target.Alignment{Abi: 1, Pref: 1}
	var size uint64
	for _, fl := range fieldLayouts {
		align = maxAlign(align, fl.Align)
		if fl.Size > size {
			size = fl.Size
		}
	}
	size = target.AlignTo(size, align.Abi)

	l := &Layout{
		Size:  size,
		Align: align,
		Abi:   AbiAggregate,
		Fields: FieldsShape{
			Kind:  FieldsUnion,
			Count: uint64(len(fieldLayouts)),
		},
		Variants: Variants{Kind: VariantsSingle, VariantIndex: 0},
	}

	if !def.Flags.InhibitsUnionAbiOptimisation() {
		promoteUnionAbi(l, fieldLayouts)
	}
	return l, nil
}

// promoteUnionAbi adopts a single common Scalar, ScalarPair, or Vector
// ABI across every non-ZST field, the way a single-field union always
// could and a multi-field union can whenever its fields happen to agree
// (e.g. `union { a: i32, b: u32 }`) — spec.md §4.C's union ABI rule is
// not limited to the singleton-field case.
func promoteUnionAbi(l *Layout, fields []*Layout) {
	var nonZst []*Layout
	for _, f := range fields {
		if f.Size != 0 {
			nonZst = append(nonZst, f)
		}
	}
	if len(nonZst) == 0 {
		return
	}
	first := nonZst[0]
	if first.Abi != AbiScalar && first.Abi != AbiScalarPair && first.Abi != AbiVector {
		return
	}
	for _, f := range nonZst[1:] {
		if f.Abi != first.Abi {
			return
		}
		switch first.Abi {
		case AbiScalar:
			if !sameRegisterClass(f.Scalar, first.Scalar) {
				return
			}
		case AbiScalarPair:
			if !sameRegisterClass(f.Scalar, first.Scalar) || !sameRegisterClass(f.Scalar2, first.Scalar2) || f.Offset2 != first.Offset2 {
				return
			}
		case AbiVector:
			if !sameRegisterClass(f.VectorElem, first.VectorElem) || f.VectorCount != first.VectorCount {
				return
			}
		}
	}
	l.Abi = first.Abi
	l.Scalar = first.Scalar
	l.Scalar2 = first.Scalar2
	l.Offset2 = first.Offset2
	l.VectorElem = first.VectorElem
	l.VectorCount = first.VectorCount
}

// sameRegisterClass reports whether two scalars occupy the same kind of
// register (int vs float vs pointer) at the same width — signedness is
// an interpretation of the bits, not a distinct calling-convention class.
func sameRegisterClass(a, b Scalar) bool {
	return a.Kind == b.Kind && a.Width == b.Width
}
