package layout

import (
	"sort"

	"github.com/yrnehli/hashc-sub000/internal/ir"
	"github.com/yrnehli/hashc-sub000/internal/target"
)

// layoutUnivariant lays out a single variant's fields: one struct, tuple,
// or (one arm of) an enum. Fields are reordered for density unless
// noReorder is set (C representation, or a tag-prefix forces a fixed
// field zero). tagPrefix, when non-nil, is prepended as an already-laid-
// out leading field that must keep memory position zero (the enum tag).
func (c *Ctx) layoutUnivariant(fieldTys []ir.TyId, noReorder bool, tagPrefix *Layout) (*Layout, error) {
	n := len(fieldTys)
	fieldLayouts := make([]*Layout, n)
	for i, fty := range fieldTys {
		fl, err := c.LayoutOf(fty)
		if err != nil {
			return nil, err
		}
		fieldLayouts[i] = fl
	}

	total := n
	if tagPrefix != nil {
		total = n + 1
	}
	order := make([]int, total)
	offset := 0
	if tagPrefix != nil {
		order[0] = -1 // sentinel: the tag, always memory position 0
		offset = 1
	}
	for i := range fieldTys {
		order[offset+i] = i
	}

	if !noReorder {
		tail := order[offset:]
		sort.SliceStable(tail, func(a, b int) bool {
			la, lb := fieldLayouts[tail[a]], fieldLayouts[tail[b]]
			az, bz := la.Size == 0, lb.Size == 0
			if az != bz {
				// zero-sized fields first: they never need padding space,
				// so placing them early never costs anything.
				return az
			}
			if la.Align.Abi != lb.Align.Abi {
				return la.Align.Abi > lb.Align.Abi
			}
			return false
		})
	}

	offsets := make([]uint64, n)
	memory := make([]int, total)
	align := target.Alignment{Abi: 1, Pref: 1}
	if tagPrefix != nil {
		align = maxAlign(align, tagPrefix.Align)
	}

	var cursor uint64
	if tagPrefix != nil {
		cursor = tagPrefix.Size
		memory[0] = -1
	}
	for k, fieldIdx := range order {
		if fieldIdx == -1 {
			continue
		}
		fl := fieldLayouts[fieldIdx]
		align = maxAlign(align, fl.Align)
		cursor = target.AlignTo(cursor, fl.Align.Abi)
		offsets[fieldIdx] = cursor
		cursor += fl.Size
		memory[k] = fieldIdx
	}
	size := target.AlignTo(cursor, align.Abi)

	l := &Layout{
		Size:  size,
		Align: align,
		Abi:   AbiAggregate,
		Fields: FieldsShape{
			Kind:    FieldsArbitrary,
			Offsets: offsets,
			Memory:  memory,
		},
	}

	if tagPrefix == nil {
		promoteAbi(l, fieldLayouts)
	}
	return l, nil
}

func maxAlign(a, b target.Alignment) target.Alignment {
	r := a
	if b.Abi > r.Abi {
		r.Abi = b.Abi
	}
	if b.Pref > r.Pref {
		r.Pref = b.Pref
	}
	return r
}

// promoteAbi upgrades an Aggregate-ABI layout to Scalar or ScalarPair
// when it has at most two non-ZST fields and each of those is itself
// scalar, matching `compute_enum_abi`'s "a struct that is really just a
// thin wrapper gets its field's calling convention" rule (spec.md §4.C
// step 5). The promoted scalar(s) must fully cover the aggregate with
// matching size and alignment (spec.md §3.2's "the scalar layout covers
// the whole aggregate with the same size and alignment" invariant) —
// otherwise a zero-sized field that nonetheless widens the aggregate's
// size or alignment (e.g. `{ a: u8, z: [u16; 0] }`, whose ZST array
// forces align/size 2) would be silently dropped by the promotion.
func promoteAbi(l *Layout, fields []*Layout) {
	var nonZst []*Layout
	var nonZstIdx []int
	for i, f := range fields {
		if f.Size != 0 || f.Abi == AbiScalarPair {
			nonZst = append(nonZst, f)
			nonZstIdx = append(nonZstIdx, i)
		}
	}
	switch len(nonZst) {
	case 0:
		return
	case 1:
		f := nonZst[0]
		if f.Abi == AbiScalar && f.Size == l.Size && f.Align == l.Align {
			l.Abi = AbiScalar
			l.Scalar = f.Scalar
		}
	case 2:
		a, b := nonZst[0], nonZst[1]
		if a.Abi != AbiScalar || b.Abi != AbiScalar {
			return
		}
		offsetA := l.FieldOffset(nonZstIdx[0])
		offsetB := l.FieldOffset(nonZstIdx[1])
		if offsetA > offsetB {
			a, b = b, a
			offsetA, offsetB = offsetB, offsetA
		}
		covered := offsetB + b.Size
		align := maxAlign(a.Align, b.Align)
		if offsetA != 0 || covered != l.Size || align != l.Align {
			return
		}
		l.Abi = AbiScalarPair
		l.Scalar = a.Scalar
		l.Scalar2 = b.Scalar
		l.Offset2 = offsetB
	}
}

func findOffset(l *Layout, all []*Layout, target *Layout) uint64 {
	for i, f := range all {
		if f == target {
			return l.FieldOffset(i)
		}
	}
	return 0
}
