package layout

import (
	"github.com/yrnehli/hashc-sub000/internal/ir"
	"github.com/yrnehli/hashc-sub000/internal/target"
)

// PointeeInfo describes what a codegen backend needs to know about the
// value living at a given byte offset within a type, without having to
// walk the full layout tree again: its size, alignment, and (reserved
// for a future niche-optimisation pass) whether it is itself safe to
// dereference.
type PointeeInfo struct {
	Size       uint64
	Align      target.Alignment
	SafeToLoad bool
}

type pointeeKey struct {
	ty     ir.TyId
	offset uint64
}

// PointeeInfoAt answers "what lives at byte `offset` inside a value of
// type ty", recursing into aggregate layouts and caching by (ty, offset)
// the same way the layout cache does by ty alone (spec.md §4.C).
func (c *Ctx) PointeeInfoAt(ty ir.TyId, offset uint64) (*PointeeInfo, error) {
	key := pointeeKey{ty, offset}
	if info, ok := c.pointeeCache[key]; ok {
		return info, nil
	}

	l, err := c.LayoutOf(ty)
	if err != nil {
		return nil, err
	}

	info, err := c.pointeeInfoIn(l, offset)
	if err != nil {
		return nil, err
	}
	c.pointeeCache[key] = info
	return info, nil
}

func (c *Ctx) pointeeInfoIn(l *Layout, offset uint64) (*PointeeInfo, error) {
	if offset == 0 {
		switch l.Abi {
		case AbiScalar:
			return &PointeeInfo{Size: l.Scalar.Width, Align: target.Alignment{Abi: l.Scalar.Width, Pref: l.Scalar.Width}, SafeToLoad: true}, nil
		case AbiScalarPair:
			return &PointeeInfo{Size: l.Scalar.Width, Align: target.Alignment{Abi: l.Scalar.Width, Pref: l.Scalar.Width}, SafeToLoad: true}, nil
		}
	}
	if l.Abi == AbiScalarPair && offset == l.Offset2 {
		return &PointeeInfo{Size: l.Scalar2.Width, Align: target.Alignment{Abi: l.Scalar2.Width, Pref: l.Scalar2.Width}, SafeToLoad: true}, nil
	}

	switch l.Fields.Kind {
	case FieldsArbitrary:
		for i, fieldOffset := range l.Fields.Offsets {
			if fieldOffset == offset {
				_ = i
				return &PointeeInfo{Size: l.Size - offset, Align: l.Align, SafeToLoad: false}, nil
			}
		}
	case FieldsUnion:
		if offset == 0 {
			return &PointeeInfo{Size: l.Size, Align: l.Align, SafeToLoad: false}, nil
		}
	case FieldsArray:
		if l.Fields.Stride != 0 {
			within := offset % l.Fields.Stride
			if within == 0 {
				return &PointeeInfo{Size: l.Fields.Stride, Align: l.Align, SafeToLoad: false}, nil
			}
		}
	}
	return &PointeeInfo{Size: l.Size - offset, Align: target.Alignment{Abi: 1, Pref: 1}, SafeToLoad: false}, nil
}
