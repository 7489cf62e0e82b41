package layout

import (
	"testing"

	"github.com/yrnehli/hashc-sub000/internal/ir"
	"github.com/yrnehli/hashc-sub000/internal/target"
)

func newTestCtx() (*Ctx, *ir.Ctx) {
	irCtx := ir.NewCtx(target.X86_64Linux())
	return NewCtx(irCtx), irCtx
}

func TestScalarLayouts(t *testing.T) {
	c, irc := newTestCtx()

	l, err := c.LayoutOf(irc.Common.I32)
	if err != nil {
		t.Fatal(err)
	}
	if l.Size != 4 || l.Align.Abi != 4 || l.Abi != AbiScalar {
		t.Errorf("i32 layout = %+v, want size 4 align 4 scalar", l)
	}

	lb, err := c.LayoutOf(irc.Common.Bool)
	if err != nil {
		t.Fatal(err)
	}
	if lb.Size != 1 || lb.Align.Abi != 1 {
		t.Errorf("bool layout = %+v, want size 1 align 1", lb)
	}
}

func TestStructFieldReorderingPacksZstsAndBigAlignmentFirst(t *testing.T) {
	c, irc := newTestCtx()

	unit := irc.Common.Unit // zero-sized
	structDef := ir.AdtData{
		Name:  "S",
		Flags: ir.AdtFlagStruct,
		Variants: []ir.Variant{{Fields: []ir.Field{
			{Name: "a", Ty: irc.Common.U8},
			{Name: "b", Ty: irc.Common.U64},
			{Name: "c", Ty: unit},
			{Name: "d", Ty: irc.Common.U8},
		}}},
	}
	adtID := irc.Adts.Declare(structDef)
	sTy := irc.Tys.Intern(ir.Ty{Kind: ir.TyAdt, Adt: adtID})

	l, err := c.LayoutOf(sTy)
	if err != nil {
		t.Fatal(err)
	}
	// u64 should come before the u8 fields once reordered for density;
	// overall size should be 16 (8-byte field + 2 packed bytes, padded to
	// the 8-byte alignment of the u64 field), not 32 (declaration order
	// would waste 7 bytes of padding after the first u8).
	if l.Align.Abi != 8 {
		t.Errorf("struct align = %d, want 8", l.Align.Abi)
	}
	if l.Size != 16 {
		t.Errorf("struct size = %d, want 16 (reordered+packed)", l.Size)
	}
}

func TestCReprStructKeepsDeclarationOrder(t *testing.T) {
	c, irc := newTestCtx()
	structDef := ir.AdtData{
		Name:  "S",
		Flags: ir.AdtFlagStruct | ir.AdtFlagCRepr,
		Variants: []ir.Variant{{Fields: []ir.Field{
			{Name: "a", Ty: irc.Common.U8},
			{Name: "b", Ty: irc.Common.U64},
		}}},
	}
	adtID := irc.Adts.Declare(structDef)
	sTy := irc.Tys.Intern(ir.Ty{Kind: ir.TyAdt, Adt: adtID})

	l, err := c.LayoutOf(sTy)
	if err != nil {
		t.Fatal(err)
	}
	// a at offset 0, then 7 bytes padding, then b at offset 8: size 16.
	if l.Size != 16 {
		t.Errorf("c-repr struct size = %d, want 16 (no reordering)", l.Size)
	}
	if l.FieldOffset(1) != 8 {
		t.Errorf("c-repr struct field b offset = %d, want 8", l.FieldOffset(1))
	}
}

func TestTwoScalarFieldStructPromotesToPairAbi(t *testing.T) {
	c, irc := newTestCtx()
	structDef := ir.AdtData{
		Name:  "Pair",
		Flags: ir.AdtFlagStruct,
		Variants: []ir.Variant{{Fields: []ir.Field{
			{Name: "a", Ty: irc.Common.I32},
			{Name: "b", Ty: irc.Common.I32},
		}}},
	}
	adtID := irc.Adts.Declare(structDef)
	sTy := irc.Tys.Intern(ir.Ty{Kind: ir.TyAdt, Adt: adtID})

	l, err := c.LayoutOf(sTy)
	if err != nil {
		t.Fatal(err)
	}
	if l.Abi != AbiScalarPair {
		t.Errorf("two-i32 struct abi = %v, want ScalarPair", l.Abi)
	}
}

func TestEnumLayoutTagPlusVariants(t *testing.T) {
	c, irc := newTestCtx()
	enumDef := ir.AdtData{
		Name:  "OptionI64",
		Flags: ir.AdtFlagEnum,
		Variants: []ir.Variant{
			{Name: "None", Fields: nil},
			{Name: "Some", Fields: []ir.Field{{Name: "0", Ty: irc.Common.I64}}},
		},
	}
	adtID := irc.Adts.Declare(enumDef)
	eTy := irc.Tys.Intern(ir.Ty{Kind: ir.TyAdt, Adt: adtID})

	l, err := c.LayoutOf(eTy)
	if err != nil {
		t.Fatal(err)
	}
	if l.Variants.Kind != VariantsMultiple {
		t.Fatalf("expected VariantsMultiple, got %v", l.Variants.Kind)
	}
	if len(l.Variants.Variants) != 2 {
		t.Fatalf("expected 2 variant layouts, got %d", len(l.Variants.Variants))
	}
	// Both variants must agree on overall size/align so either can be
	// stored at the same address.
	if l.Variants.Variants[0].Size != l.Variants.Variants[1].Size {
		t.Errorf("variant sizes disagree: %d vs %d", l.Variants.Variants[0].Size, l.Variants.Variants[1].Size)
	}
}

func TestUnionSharesOffsetZero(t *testing.T) {
	c, irc := newTestCtx()
	unionDef := ir.AdtData{
		Name:  "U",
		Flags: ir.AdtFlagUnion,
		Variants: []ir.Variant{{Fields: []ir.Field{
			{Name: "i", Ty: irc.Common.I32},
			{Name: "f", Ty: irc.Common.F32},
		}}},
	}
	adtID := irc.Adts.Declare(unionDef)
	uTy := irc.Tys.Intern(ir.Ty{Kind: ir.TyAdt, Adt: adtID})

	l, err := c.LayoutOf(uTy)
	if err != nil {
		t.Fatal(err)
	}
	if l.Size != 4 {
		t.Errorf("union size = %d, want 4", l.Size)
	}
	if l.Fields.Kind != FieldsUnion {
		t.Fatalf("Fields.Kind = %v, want FieldsUnion", l.Fields.Kind)
	}
	if l.Fields.Count != 2 {
		t.Errorf("Fields.Count = %d, want 2", l.Fields.Count)
	}
	for i := 0; i < int(l.Fields.Count); i++ {
		if off := l.FieldOffset(i); off != 0 {
			t.Errorf("union field %d at offset %d, want 0", i, off)
		}
	}
}

func TestUnionPromotesCommonScalarAbiAcrossAllFields(t *testing.T) {
	c, irc := newTestCtx()
	unionDef := ir.AdtData{
		Name:  "U",
		Flags: ir.AdtFlagUnion,
		Variants: []ir.Variant{{Fields: []ir.Field{
			{Name: "a", Ty: irc.Common.I32},
			{Name: "b", Ty: irc.Common.U32},
		}}},
	}
	adtID := irc.Adts.Declare(unionDef)
	uTy := irc.Tys.Intern(ir.Ty{Kind: ir.TyAdt, Adt: adtID})

	l, err := c.LayoutOf(uTy)
	if err != nil {
		t.Fatal(err)
	}
	// i32 and u32 share the same Scalar{Kind, Width}; Signed doesn't
	// factor into the ABI promotion check, only the register class does.
	if l.Abi != AbiScalar {
		t.Errorf("union{i32,u32}.Abi = %v, want AbiScalar (common field ABI, not just singleton)", l.Abi)
	}
}

func TestRcReferenceIsUnknownLayout(t *testing.T) {
	c, irc := newTestCtx()
	rcTy := irc.Tys.Intern(ir.Ty{Kind: ir.TyRef, RefPointee: irc.Common.I32, RefKindValue: ir.RefRc})
	if _, err := c.LayoutOf(rcTy); err == nil {
		t.Fatal("expected Rc reference layout to be rejected as unknown")
	}
}

func TestLayoutOfIsCached(t *testing.T) {
	c, irc := newTestCtx()
	l1, err := c.LayoutOf(irc.Common.I64)
	if err != nil {
		t.Fatal(err)
	}
	l2, err := c.LayoutOf(irc.Common.I64)
	if err != nil {
		t.Fatal(err)
	}
	if l1 != l2 {
		t.Errorf("LayoutOf returned different pointers for the same ty across calls")
	}
}

func TestArrayLayoutStride(t *testing.T) {
	c, irc := newTestCtx()
	arrTy := irc.Tys.Intern(ir.Ty{Kind: ir.TyArray, ArrayElem: irc.Common.I32, ArrayLength: 5})
	l, err := c.LayoutOf(arrTy)
	if err != nil {
		t.Fatal(err)
	}
	if l.Size != 20 {
		t.Errorf("[i32; 5] size = %d, want 20", l.Size)
	}
	if l.Fields.Stride != 4 {
		t.Errorf("[i32; 5] stride = %d, want 4", l.Fields.Stride)
	}
}
