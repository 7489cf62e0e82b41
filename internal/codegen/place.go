package codegen

import (
	"github.com/yrnehli/hashc-sub000/internal/ir"
	"github.com/yrnehli/hashc-sub000/internal/layout"
)

// PlaceRef is the backend-neutral representation of an addressable
// memory location: a base address (in the backend's own value type V)
// plus the IR type and layout of the value stored there. Projections
// (Field, Index, ConstantIndex, Downcast below) are free functions that
// return a new PlaceRef rather than mutating in place, mirroring
// ir.Place.Project; there is no discriminant projection helper.
type PlaceRef[V any] struct {
	Addr   V
	Ty     ir.TyId
	Layout *layout.Layout
}

// Builder is the narrow subset of BlockBuilderMethods the projection
// helpers below need: computing a field/element address from a base
// address. Backends' full builder types satisfy this trivially.
type Builder[V any] interface {
	InboundsGEP(base V, byteOffset uint64) V
	InboundsGEPIndexed(base V, index V, stride uint64) V
}

// Field returns the PlaceRef of declaration-order field idx.
func Field[V any](b Builder[V], p PlaceRef[V], idx int, fieldTy ir.TyId, fieldLayout *layout.Layout) PlaceRef[V] {
	offset := p.Layout.FieldOffset(idx)
	return PlaceRef[V]{Addr: b.InboundsGEP(p.Addr, offset), Ty: fieldTy, Layout: fieldLayout}
}

// Index returns the PlaceRef of a runtime-indexed array/slice element.
func Index[V any](b Builder[V], p PlaceRef[V], index V, elemTy ir.TyId, elemLayout *layout.Layout) PlaceRef[V] {
	return PlaceRef[V]{Addr: b.InboundsGEPIndexed(p.Addr, index, p.Layout.Fields.Stride), Ty: elemTy, Layout: elemLayout}
}

// ConstantIndex returns the PlaceRef of a compile-time-known array
// offset, counted from the front or from the end per fromEnd.
func ConstantIndex[V any](b Builder[V], p PlaceRef[V], offset uint64, fromEnd bool, minLength uint64, elemTy ir.TyId, elemLayout *layout.Layout) PlaceRef[V] {
	idx := offset
	if fromEnd {
		idx = minLength - offset
	}
	return PlaceRef[V]{Addr: b.InboundsGEP(p.Addr, p.Layout.Fields.Stride*idx), Ty: elemTy, Layout: elemLayout}
}

// Downcast returns the PlaceRef of one variant's payload, reinterpreting
// p's address using that variant's own layout (the tag occupies the
// same prefix bytes in every variant, so no address adjustment is
// needed beyond swapping which Layout future projections consult).
func Downcast[V any](p PlaceRef[V], variant int, variantTy ir.TyId) PlaceRef[V] {
	return PlaceRef[V]{Addr: p.Addr, Ty: variantTy, Layout: p.Layout.Variants.Variants[variant]}
}
