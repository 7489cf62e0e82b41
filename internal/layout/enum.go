package layout

import (
	"github.com/yrnehli/hashc-sub000/internal/ir"
	"github.com/yrnehli/hashc-sub000/internal/target"
)

// layoutEnum lays out a multi-variant ADT: a leading tag field followed
// by each variant's own field layout, all variants padded to a common
// overall size so a single pointer-plus-tag value can address any of
// them (spec.md §4.C).
func (c *Ctx) layoutEnum(adtID ir.AdtId, def ir.AdtData) (*Layout, error) {
	switch len(def.Variants) {
	case 0:
		return &Layout{Size: 0, Align: target.Alignment{Abi: 1, Pref: 1}, Abi: AbiUninhabited, Fields: FieldsShape{Kind: FieldsPrimitive}}, nil
	case 1:
		l, err := c.layoutUnivariant(fieldTypesOf(def.Variants[0]), def.Flags.InhibitsFieldReorder(), nil)
		if err != nil {
			return nil, err
		}
		l.Variants = Variants{Kind: VariantsSingle, VariantIndex: 0}
		return l, nil
	}

	dl := c.ir.DataLayout
	tagClass := def.DiscriminantRepresentation(dl)
	tagScalar := Scalar{Kind: ScalarInt, Width: tagClass.Bytes(), Signed: false}
	tagAlign := tagClass.Align(dl)

	variantFieldTys := make([][]ir.TyId, len(def.Variants))
	for i, v := range def.Variants {
		variantFieldTys[i] = fieldTypesOf(v)
	}

	// ##ExpandEnumTagSize: widen the tag past its natural width when a
	// wider integer class shares its alignment with the variants' common
	// field alignment, so the tag absorbs what would otherwise be pure
	// inter-field padding rather than leaving it dead.
	maxFieldAlign := tagAlign
	for _, fieldTys := range variantFieldTys {
		for _, fty := range fieldTys {
			fl, err := c.LayoutOf(fty)
			if err != nil {
				return nil, err
			}
			maxFieldAlign = maxAlign(maxFieldAlign, fl.Align)
		}
	}
	if maxFieldAlign.Abi > tagAlign.Abi {
		if wider, ok := target.ForAlignment(dl, maxFieldAlign.Abi); ok && wider.Bytes() > tagScalar.Width {
			tagClass = wider
			tagScalar.Width = wider.Bytes()
			tagAlign = wider.Align(dl)
		}
	}

	tagLayout := &Layout{Size: tagScalar.Width, Align: tagAlign, Abi: AbiScalar, Scalar: tagScalar, Fields: FieldsShape{Kind: FieldsPrimitive}}

	variants := make([]*Layout, len(def.Variants))
	overallAlign := tagAlign
	var overallSize uint64
	for i, fieldTys := range variantFieldTys {
		vl, err := c.layoutUnivariant(fieldTys, def.Flags.InhibitsFieldReorder(), tagLayout)
		if err != nil {
			return nil, err
		}
		variants[i] = vl
		overallAlign = maxAlign(overallAlign, vl.Align)
		if vl.Size > overallSize {
			overallSize = vl.Size
		}
	}
	overallSize = target.AlignTo(overallSize, overallAlign.Abi)
	for _, vl := range variants {
		vl.Size = overallSize
		vl.Align = overallAlign
	}

	l := &Layout{
		Size:  overallSize,
		Align: overallAlign,
		Abi:   AbiAggregate,
		Fields: FieldsShape{
			Kind:    FieldsArbitrary,
			Offsets: []uint64{0},
			Memory:  []int{0},
		},
		Variants: Variants{
			Kind:        VariantsMultiple,
			TagField:    0,
			Tag:         tagScalar,
			TagEncoding: tagClass,
			Variants:    variants,
		},
	}
	if err := c.computeEnumAbi(l, tagScalar, variantFieldTys, variants); err != nil {
		return nil, err
	}
	return l, nil
}

// computeEnumAbi promotes an enum's overall ABI past plain Aggregate in
// three cases, checked in the order spec.md §4.C's `compute_enum_abi`
// step 9 lists them:
//
//  1. every variant is uninhabited (one of its own fields is) — the
//     whole enum can never hold a value, so it is Uninhabited too.
//  2. the tag alone already covers the enum's full size (a fieldless,
//     C-like `enum { A, B }`) — there is no room left for a payload, so
//     the enum collapses to a plain Scalar(tag) passed in one register.
//  3. every variant agrees on a single non-tag field of the same scalar
//     kind and width at the same offset — the "tag plus one common
//     primitive payload" shape a Result<T, E>-style two-variant enum
//     typically has. Variants with zero extra fields (e.g. a bare
//     `None`) are compatible with any common field: the pair's second
//     half is simply left undefined on that arm.
func (c *Ctx) computeEnumAbi(l *Layout, tag Scalar, fieldTysPerVariant [][]ir.TyId, variants []*Layout) error {
	allUninhabited := true
	for _, fieldTys := range fieldTysPerVariant {
		variantUninhabited := false
		for _, fty := range fieldTys {
			fl, err := c.LayoutOf(fty)
			if err != nil {
				return err
			}
			if fl.Abi == AbiUninhabited {
				variantUninhabited = true
				break
			}
		}
		if !variantUninhabited {
			allUninhabited = false
			break
		}
	}
	if allUninhabited {
		l.Abi = AbiUninhabited
		return nil
	}

	if tag.Width == l.Size {
		l.Abi = AbiScalar
		l.Scalar = tag
		return nil
	}

	var common *Scalar
	var commonOffset uint64
	for i, fieldTys := range fieldTysPerVariant {
		if len(fieldTys) == 0 {
			continue
		}
		if len(fieldTys) != 1 {
			return nil
		}
		fl, err := c.LayoutOf(fieldTys[0])
		if err != nil {
			return err
		}
		if fl.Abi != AbiScalar {
			return nil
		}
		offset := variants[i].FieldOffset(0)
		if common == nil {
			s := fl.Scalar
			common = &s
			commonOffset = offset
		} else if common.Kind != fl.Scalar.Kind || common.Width != fl.Scalar.Width || offset != commonOffset {
			return nil
		}
	}
	if common == nil {
		return nil
	}
	l.Abi = AbiScalarPair
	l.Scalar = tag
	l.Scalar2 = *common
	l.Offset2 = commonOffset
	return nil
}
