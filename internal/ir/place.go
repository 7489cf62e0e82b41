package ir

import "fmt"

// LocalId names a local variable (including argument and return-place
// locals) within a Body. Local 0 is always the return place.
type LocalId int

const ReturnLocal LocalId = 0

// ProjectionId is a handle into a Body's interned projection list, used
// so that two Places sharing a projection chain share storage (spec.md
// §3.4: "projections are interned").
type ProjectionId int

// PlaceProjectionKind enumerates the ways a Place can be refined.
type PlaceProjectionKind int

const (
	ProjDeref PlaceProjectionKind = iota
	ProjField
	ProjIndex
	ProjConstantIndex
	ProjSubSlice
	ProjDowncast
)

// PlaceProjection is one link of a Place's projection chain.
type PlaceProjection struct {
	Kind PlaceProjectionKind

	FieldIdx int  // ProjField
	FieldTy  TyId // ProjField: the type of the projected field

	IndexLocal LocalId // ProjIndex: the local holding the runtime index

	// ProjConstantIndex
	ConstantOffset uint64
	FromEnd        bool
	MinLength      uint64

	// ProjSubSlice
	SubSliceFrom uint64
	SubSliceTo   uint64

	Variant int // ProjDowncast
}

func (p PlaceProjection) String() string {
	switch p.Kind {
	case ProjDeref:
		return "*"
	case ProjField:
		return fmt.Sprintf(".%d", p.FieldIdx)
	case ProjIndex:
		return fmt.Sprintf("[_%d]", p.IndexLocal)
	case ProjConstantIndex:
		if p.FromEnd {
			return fmt.Sprintf("[-%d of %d]", p.ConstantOffset, p.MinLength)
		}
		return fmt.Sprintf("[%d of %d]", p.ConstantOffset, p.MinLength)
	case ProjSubSlice:
		return fmt.Sprintf("[%d..%d]", p.SubSliceFrom, p.SubSliceTo)
	case ProjDowncast:
		return fmt.Sprintf(" as variant#%d", p.Variant)
	default:
		return "?"
	}
}

// projectionStore interns projection chains; a Place stores only a
// ProjectionId into one of these, held by the owning Body.
type projectionStore struct {
	chains [][]PlaceProjection
	index  map[string]ProjectionId
}

func newProjectionStore() *projectionStore {
	s := &projectionStore{index: make(map[string]ProjectionId)}
	s.chains = append(s.chains, nil) // id 0 is always the empty chain
	return s
}

func (s *projectionStore) intern(chain []PlaceProjection) ProjectionId {
	if len(chain) == 0 {
		return ProjectionId(0)
	}
	key := ""
	for _, p := range chain {
		key += p.String() + "|"
	}
	if id, ok := s.index[key]; ok {
		return id
	}
	id := ProjectionId(len(s.chains))
	cp := make([]PlaceProjection, len(chain))
	copy(cp, chain)
	s.chains = append(s.chains, cp)
	s.index[key] = id
	return id
}

func (s *projectionStore) get(id ProjectionId) []PlaceProjection {
	return s.chains[id]
}

// Place is a memory location: a base local plus an interned chain of
// projections (spec.md §3.4).
type Place struct {
	Local      LocalId
	Projection ProjectionId
}

// NewPlace returns the unprojected place naming local directly.
func NewPlace(local LocalId) Place {
	return Place{Local: local}
}

// Project returns a new Place extending p's projection chain with extra,
// interning the combined chain in body.
func (p Place) Project(body *Body, extra PlaceProjection) Place {
	chain := append(append([]PlaceProjection{}, body.projections.get(p.Projection)...), extra)
	return Place{Local: p.Local, Projection: body.projections.intern(chain)}
}

// Projections returns the full projection chain of p as a slice.
func (p Place) Projections(body *Body) []PlaceProjection {
	return body.projections.get(p.Projection)
}

// IsDirect reports whether p names its local with no projections at all.
func (p Place) IsDirect(body *Body) bool {
	return len(body.projections.get(p.Projection)) == 0
}

// Operand is an RValue leaf: either a read from a place or a constant.
type Operand struct {
	IsConst bool
	Place   Place
	Const   Const
}

// OperandFromPlace builds a Copy/Move-style operand reading place. The IR
// model here does not distinguish Copy from Move at the type level
// (spec.md §3.4 note: move-checking is out of scope), so both read forms
// collapse to one Operand constructor.
func OperandFromPlace(p Place) Operand {
	return Operand{Place: p}
}

// OperandFromConst builds a constant operand.
func OperandFromConst(c Const) Operand {
	return Operand{IsConst: true, Const: c}
}
