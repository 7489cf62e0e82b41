package ir

import (
	"fmt"
	"sync"

	"github.com/yrnehli/hashc-sub000/internal/target"
)

// TyId is a stable handle into a TyStore. Equality of two TyIds implies
// structural equality of the types they name; the converse also holds
// because TyStore interns by structural identity.
type TyId int

// Mutability of a reference or local.
type Mutability int

const (
	Immutable Mutability = iota
	Mutable
)

// RefKind distinguishes the three reference flavours the IR type model
// supports.
type RefKind int

const (
	RefNormal RefKind = iota
	RefRaw
	RefRc
)

// Ty is the sum type of IR types (spec.md §3.1). Exactly one of the
// fields is meaningful per Kind; the others are zeroed.
type Ty struct {
	Kind TyKind

	IntWidth  target.Integer // Kind == TyInt
	IntSigned bool           // Kind == TyInt

	FloatBits int // Kind == TyFloat: 32 or 64

	RefPointee   TyId       // Kind == TyRef
	RefMut       Mutability // Kind == TyRef
	RefKindValue RefKind    // Kind == TyRef

	ArrayElem   TyId // Kind == TyArray | TySlice
	ArrayLength uint64

	FnParams    []TyId // Kind == TyFn
	FnRet       TyId
	FnInstance  string // opaque instance name, resolved by a backend

	Adt AdtId // Kind == TyAdt
}

// TyKind enumerates the IR type constructors from spec.md §3.1.
type TyKind int

const (
	TyInt TyKind = iota
	TyFloat
	TyBool
	TyChar
	TyStr
	TyNever
	TyRef
	TyArray
	TySlice
	TyFn
	TyAdt
)

func (k TyKind) String() string {
	switch k {
	case TyInt:
		return "Int"
	case TyFloat:
		return "Float"
	case TyBool:
		return "Bool"
	case TyChar:
		return "Char"
	case TyStr:
		return "Str"
	case TyNever:
		return "Never"
	case TyRef:
		return "Ref"
	case TyArray:
		return "Array"
	case TySlice:
		return "Slice"
	case TyFn:
		return "Fn"
	case TyAdt:
		return "Adt"
	default:
		return "Unknown"
	}
}

// key is the structural identity used to intern a Ty; two Tys with equal
// keys are given the same TyId.
func (t Ty) key() string {
	switch t.Kind {
	case TyInt:
		return fmt.Sprintf("int:%d:%v", t.IntWidth, t.IntSigned)
	case TyFloat:
		return fmt.Sprintf("float:%d", t.FloatBits)
	case TyBool, TyChar, TyStr, TyNever:
		return t.Kind.String()
	case TyRef:
		return fmt.Sprintf("ref:%d:%d:%d", t.RefPointee, t.RefMut, t.RefKindValue)
	case TyArray:
		return fmt.Sprintf("array:%d:%d", t.ArrayElem, t.ArrayLength)
	case TySlice:
		return fmt.Sprintf("slice:%d", t.ArrayElem)
	case TyFn:
		return fmt.Sprintf("fn:%v:%d:%s", t.FnParams, t.FnRet, t.FnInstance)
	case TyAdt:
		return fmt.Sprintf("adt:%d", t.Adt)
	default:
		panic("ir: key of invalid ty kind")
	}
}

// TyStore is the content-addressed arena for IR types (spec.md §4.B: "a
// content-addressed store keyed by structural identity"). internal/lower
// may intern new function types (e.g. for a list literal's malloc call)
// from several goroutines at once under LowerAll, so access is guarded
// by mu rather than left to callers to serialize.
type TyStore struct {
	mu    sync.RWMutex
	tys   []Ty
	index map[string]TyId
}

// NewTyStore creates an empty store.
func NewTyStore() *TyStore {
	return &TyStore{index: make(map[string]TyId)}
}

// Intern returns a stable TyId for t, reusing an existing id if a
// structurally identical Ty was already interned.
func (s *TyStore) Intern(t Ty) TyId {
	k := t.key()

	s.mu.RLock()
	id, ok := s.index[k]
	s.mu.RUnlock()
	if ok {
		return id
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if id, ok := s.index[k]; ok {
		return id
	}
	id = TyId(len(s.tys))
	s.tys = append(s.tys, t)
	s.index[k] = id
	return id
}

// Get returns the Ty named by id. Panics on an invalid id, matching the
// arena stores' "ids are always valid, produced only by Intern" invariant.
func (s *TyStore) Get(id TyId) Ty {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.tys[id]
}

// CommonTys holds the pre-interned common types spec.md §4.B calls out by
// name: bool, str, usize, each numeric width, unit, never, and a raw
// pointer.
type CommonTys struct {
	Bool, Char, Str, Never                         TyId
	I8, I16, I32, I64, I128, ISize                  TyId
	U8, U16, U32, U64, U128, USize                  TyId
	F32, F64                                        TyId
	Unit                                            TyId // the zero-field tuple ADT
	RawPtr                                          TyId // raw pointer to u8
}

// PopulateCommon interns every common type into s and returns the handle
// table. It declares the zero-field tuple ADT behind Unit into adts.
func PopulateCommon(s *TyStore, adts *AdtStore) CommonTys {
	mk := func(t Ty) TyId { return s.Intern(t) }
	intTy := func(w target.Integer, signed bool) TyId {
		return mk(Ty{Kind: TyInt, IntWidth: w, IntSigned: signed})
	}

	c := CommonTys{
		Bool:  mk(Ty{Kind: TyBool}),
		Char:  mk(Ty{Kind: TyChar}),
		Str:   mk(Ty{Kind: TyStr}),
		Never: mk(Ty{Kind: TyNever}),

		I8:    intTy(target.I8, true),
		I16:   intTy(target.I16, true),
		I32:   intTy(target.I32, true),
		I64:   intTy(target.I64, true),
		I128:  intTy(target.I128, true),
		ISize: intTy(target.I64, true),

		U8:    intTy(target.I8, false),
		U16:   intTy(target.I16, false),
		U32:   intTy(target.I32, false),
		U64:   intTy(target.I64, false),
		U128:  intTy(target.I128, false),
		USize: intTy(target.I64, false),

		F32: mk(Ty{Kind: TyFloat, FloatBits: 32}),
		F64: mk(Ty{Kind: TyFloat, FloatBits: 64}),
	}

	unitAdt := adts.Declare(AdtData{
		Name:  "()",
		Flags: AdtFlagTuple,
		Variants: []Variant{{
			Name:   "",
			Fields: nil,
		}},
	})
	c.Unit = mk(Ty{Kind: TyAdt, Adt: unitAdt})
	c.RawPtr = mk(Ty{Kind: TyRef, RefPointee: c.U8, RefMut: Mutable, RefKindValue: RefRaw})
	return c
}

// --- ADT definitions (spec.md §3.1) ---

// AdtId names an ADT definition in an AdtStore.
type AdtId int

// AdtFlag is a bitset describing what kind of ADT a definition is, and
// which representation constraints apply to it.
type AdtFlag int

const (
	AdtFlagStruct AdtFlag = 1 << iota
	AdtFlagEnum
	AdtFlagTuple
	AdtFlagUnion
	AdtFlagCRepr
	AdtFlagNoFieldReorder
)

func (f AdtFlag) Has(bit AdtFlag) bool { return f&bit != 0 }
func (f AdtFlag) IsStruct() bool       { return f.Has(AdtFlagStruct) }
func (f AdtFlag) IsEnum() bool         { return f.Has(AdtFlagEnum) }
func (f AdtFlag) IsTuple() bool        { return f.Has(AdtFlagTuple) }
func (f AdtFlag) IsUnion() bool        { return f.Has(AdtFlagUnion) }
func (f AdtFlag) IsCLike() bool        { return f.Has(AdtFlagCRepr) }

// InhibitsFieldReorder reports whether this representation forbids the
// layout engine from reordering fields for density.
func (f AdtFlag) InhibitsFieldReorder() bool {
	return f.Has(AdtFlagCRepr) || f.Has(AdtFlagNoFieldReorder)
}

// InhibitsUnionAbiOptimisation reports whether a union repr forbids
// adopting a common scalar/pair/vector ABI across its fields. C-repr
// unions always keep an Aggregate ABI since the layout must match the C
// memory model exactly.
func (f AdtFlag) InhibitsUnionAbiOptimisation() bool {
	return f.Has(AdtFlagCRepr)
}

// Field is one named, typed field of a Variant.
type Field struct {
	Name string
	Ty   TyId
}

// Variant is an ordered list of fields; a struct/tuple/union ADT has
// exactly one Variant (spec.md §3.1).
type Variant struct {
	Name   string
	Fields []Field
}

// AdtData is the full definition of one ADT.
type AdtData struct {
	Name     string
	Flags    AdtFlag
	Variants []Variant

	// DiscriminantOverride, if non-nil, pins the tag's integer class
	// (used in C-like representation mode). nil means "pick the
	// smallest fitting class", per spec.md §4.B.
	DiscriminantOverride *target.Integer
}

// FieldIdx looks up the index of a named field within a variant, used by
// lowering to permute named constructor arguments into declaration order.
func (d AdtData) FieldIdx(variant int, name string) (int, bool) {
	for i, f := range d.Variants[variant].Fields {
		if f.Name == name {
			return i, true
		}
	}
	return 0, false
}

// DiscriminantRepresentation picks the smallest unsigned integer class
// that can represent every variant index of this ADT, honouring an
// explicit override in C-repr mode (spec.md §4.B).
func (d AdtData) DiscriminantRepresentation(dl *target.DataLayout) target.Integer {
	if d.DiscriminantOverride != nil {
		return *d.DiscriminantOverride
	}

	n := uint64(len(d.Variants))
	classes := []target.Integer{target.I8, target.I16, target.I32, target.I64, target.I128}
	for _, c := range classes {
		if n <= (uint64(1)<<c.Bits())-1 || c.Bits() >= 64 {
			return c
		}
	}
	return target.I128
}

// DiscriminantForVariant returns (signed, value) for the discriminant
// value assigned to the given variant. In the absence of user-specified
// discriminant values (spec.md §9 open question (a) — niches are out of
// scope), the value is simply the variant's declaration-order index.
func (d AdtData) DiscriminantForVariant(variant int) (signed bool, value uint64) {
	return false, uint64(variant)
}

// AdtStore is the arena of ADT definitions. Unlike TyStore, ADTs are not
// content-addressed: two structurally identical struct definitions with
// different names are different ADTs (this matches nominal typing, which
// is how every example repo models user-declared aggregate types).
type AdtStore struct {
	defs []AdtData
}

// NewAdtStore creates an empty store.
func NewAdtStore() *AdtStore { return &AdtStore{} }

// Declare registers a new ADT definition and returns its id.
func (s *AdtStore) Declare(d AdtData) AdtId {
	id := AdtId(len(s.defs))
	s.defs = append(s.defs, d)
	return id
}

// Get returns the ADT definition named by id.
func (s *AdtStore) Get(id AdtId) AdtData {
	return s.defs[id]
}

// VariantCount returns the number of variants of the ADT named by id.
func (s *AdtStore) VariantCount(id AdtId) int {
	return len(s.defs[id].Variants)
}
