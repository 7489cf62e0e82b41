package ir

import "fmt"

// BasicBlockId names a block within a Body's BasicBlocks.
type BasicBlockId int

const StartBlock BasicBlockId = 0

// StatementKind enumerates Statement forms (spec.md §3.3).
type StatementKind int

const (
	StmtNop StatementKind = iota
	StmtAssign
	StmtDiscriminate // write a discriminant value into an enum place
	StmtLive         // StorageLive
	StmtDead         // StorageDead
)

// Statement is one non-control-flow instruction within a block.
type Statement struct {
	Kind StatementKind

	AssignPlace Place  // StmtAssign
	AssignValue RValue // StmtAssign

	DiscriminatePlace   Place // StmtDiscriminate
	DiscriminateVariant int

	Local LocalId // StmtLive, StmtDead
}

func NopStatement() Statement                       { return Statement{Kind: StmtNop} }
func AssignStatement(p Place, v RValue) Statement    { return Statement{Kind: StmtAssign, AssignPlace: p, AssignValue: v} }
func LiveStatement(l LocalId) Statement              { return Statement{Kind: StmtLive, Local: l} }
func DeadStatement(l LocalId) Statement              { return Statement{Kind: StmtDead, Local: l} }
func DiscriminateStatement(p Place, variant int) Statement {
	return Statement{Kind: StmtDiscriminate, DiscriminatePlace: p, DiscriminateVariant: variant}
}

// TerminatorKind enumerates the ways a block can end (spec.md §3.3).
type TerminatorKind int

const (
	TermGoto TerminatorKind = iota
	TermReturn
	TermUnreachable
	TermCall
	TermSwitch
	TermAssert
)

// SwitchTargets pairs scrutinee values with their destination blocks and
// names the block taken when no value matches.
type SwitchTargets struct {
	Values  []uint64
	Targets []BasicBlockId
	Default BasicBlockId
}

// Terminator ends a basic block (spec.md §3.3). Exactly one field group
// is meaningful, selected by Kind.
type Terminator struct {
	Kind TerminatorKind

	GotoTarget BasicBlockId // TermGoto

	// TermCall
	CallFunc    Operand
	CallArgs    []Operand
	CallDest    Place
	CallTarget  BasicBlockId // block to resume at after the call returns
	CallHasDest bool         // false if the call diverges (never returns)

	SwitchOn      Operand // TermSwitch
	SwitchTargets SwitchTargets

	// TermAssert
	AssertCond     Operand
	AssertExpected bool
	AssertPayload  AssertPayload
	AssertTarget   BasicBlockId
}

// Successors returns every block this terminator can transfer control
// to, in a stable order (spec.md §3.3: used by the dominator-tree and
// predecessor-map builders).
func (t Terminator) Successors() []BasicBlockId {
	switch t.Kind {
	case TermGoto:
		return []BasicBlockId{t.GotoTarget}
	case TermReturn, TermUnreachable:
		return nil
	case TermCall:
		if t.CallHasDest {
			return []BasicBlockId{t.CallTarget}
		}
		return nil
	case TermSwitch:
		succ := make([]BasicBlockId, 0, len(t.SwitchTargets.Targets)+1)
		succ = append(succ, t.SwitchTargets.Targets...)
		succ = append(succ, t.SwitchTargets.Default)
		return succ
	case TermAssert:
		return []BasicBlockId{t.AssertTarget}
	default:
		panic("ir: unknown terminator kind")
	}
}

// ReplaceEdge rewrites every successor edge equal to from to to, in
// place. Used by block-merging and CFG-simplification passes that
// retarget edges without rebuilding the terminator from scratch.
func (t *Terminator) ReplaceEdge(from, to BasicBlockId) {
	switch t.Kind {
	case TermGoto:
		if t.GotoTarget == from {
			t.GotoTarget = to
		}
	case TermCall:
		if t.CallHasDest && t.CallTarget == from {
			t.CallTarget = to
		}
	case TermSwitch:
		for i, tgt := range t.SwitchTargets.Targets {
			if tgt == from {
				t.SwitchTargets.Targets[i] = to
			}
		}
		if t.SwitchTargets.Default == from {
			t.SwitchTargets.Default = to
		}
	case TermAssert:
		if t.AssertTarget == from {
			t.AssertTarget = to
		}
	}
}

// BasicBlockData is one node of a Body's control-flow graph.
type BasicBlockData struct {
	Statements []Statement
	Terminator Terminator
	// TerminatorSet distinguishes a block whose terminator has actually
	// been assigned from one still holding the zero value (which is
	// indistinguishable from a real `goto bb0`); lowering consults this
	// to know whether a block it is about to close already ended itself
	// (e.g. via an explicit return) earlier in the walk.
	TerminatorSet bool
	// Reachable is computed lazily by callers that run reachability
	// analysis; the zero value (false) does not mean unreachable until
	// that analysis has actually run.
	Reachable bool
}

// LocalDecl describes one local slot: its type and whether it is a
// user-named variable, an argument, or a compiler-introduced temporary.
type LocalDecl struct {
	Ty       TyId
	Mutable  Mutability
	Name     string // empty for anonymous temporaries
	IsArg    bool
}

// Body is a single function's lowered IR (spec.md §3.2): a CFG of basic
// blocks plus the local declarations they reference. Local 0 is always
// the return place; locals 1..NumArgs are the arguments in order.
type Body struct {
	Name    string
	Blocks  []BasicBlockData
	Locals  []LocalDecl
	NumArgs int

	projections *projectionStore
}

// NewBody creates an empty body with only the return-place local
// declared; callers then call AddLocal/AddBlock to build it up.
func NewBody(name string, returnTy TyId) *Body {
	return &Body{
		Name:        name,
		Locals:      []LocalDecl{{Ty: returnTy}},
		projections: newProjectionStore(),
	}
}

// AddLocal declares a new local and returns its id.
func (b *Body) AddLocal(decl LocalDecl) LocalId {
	id := LocalId(len(b.Locals))
	b.Locals = append(b.Locals, decl)
	return id
}

// AddBlock appends a new, empty block and returns its id.
func (b *Body) AddBlock() BasicBlockId {
	id := BasicBlockId(len(b.Blocks))
	b.Blocks = append(b.Blocks, BasicBlockData{})
	return id
}

// Block returns a pointer to the block data for id, so callers can push
// statements and set the terminator during lowering.
func (b *Body) Block(id BasicBlockId) *BasicBlockData {
	return &b.Blocks[id]
}

// LocalTy returns the declared type of local.
func (b *Body) LocalTy(local LocalId) TyId {
	return b.Locals[local].Ty
}

// ReturnTy returns the type of local 0.
func (b *Body) ReturnTy() TyId {
	return b.Locals[ReturnLocal].Ty
}

// Predecessors computes, for every block, the set of blocks whose
// terminator names it as a successor. Recomputed on demand rather than
// kept incrementally up to date, matching spec.md §3.2's note that the
// predecessor map is a derived view, not part of the CFG's source of
// truth.
func (b *Body) Predecessors() map[BasicBlockId][]BasicBlockId {
	preds := make(map[BasicBlockId][]BasicBlockId, len(b.Blocks))
	for i := range b.Blocks {
		preds[BasicBlockId(i)] = nil
	}
	for i, blk := range b.Blocks {
		from := BasicBlockId(i)
		for _, succ := range blk.Terminator.Successors() {
			preds[succ] = append(preds[succ], from)
		}
	}
	return preds
}

// Verify checks that the body has at least one block (so block 0 exists)
// and that every terminator's successors are in range. It does not check
// that each block's terminator was explicitly set, nor that local
// references are in range.
func (b *Body) Verify() error {
	if len(b.Blocks) == 0 {
		return fmt.Errorf("ir: body %q has no blocks", b.Name)
	}
	nb := BasicBlockId(len(b.Blocks))
	checkBlock := func(id BasicBlockId) error {
		if id < 0 || id >= nb {
			return fmt.Errorf("ir: body %q references out-of-range block %d", b.Name, id)
		}
		return nil
	}
	for i, blk := range b.Blocks {
		for _, succ := range blk.Terminator.Successors() {
			if err := checkBlock(succ); err != nil {
				return fmt.Errorf("ir: body %q block %d: %w", b.Name, i, err)
			}
		}
	}
	return nil
}
