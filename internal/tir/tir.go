// Package tir is a minimal, hand-built stand-in for the typed
// intermediate representation the lowering pass consumes. It never
// resolves names or infers types — it only stores already-typed terms,
// standing in for the parser/resolver/trait-solver stage spec.md
// explicitly routes out of scope.
package tir

import "github.com/yrnehli/hashc-sub000/internal/ir"

// TermId names a term in a Store.
type TermId int

// TermKind enumerates the TIR term forms lowering needs to consume.
type TermKind int

const (
	TermVar TermKind = iota
	TermConstInt
	TermConstFloat
	TermConstBool
	TermConstStr
	TermUnaryOp
	TermBinOp
	TermLogicalAnd
	TermLogicalOr
	TermCast
	TermFieldAccess
	TermIndex
	TermRef
	TermDeref
	TermTupleLit
	TermStructLit
	TermEnumLit // a specific variant constructor applied to args
	TermListLit // a runtime-sized list literal (drives malloc+aggregate lowering)
	TermCall
	TermIf
	TermMatch
	TermLoop
	TermBreak
	TermContinue
	TermReturn
	TermBlock
	TermAssign
	TermDeclaration
)

// Term is one TIR node.
type Term struct {
	Kind TermKind
	Ty   ir.TyId

	// TermVar
	Symbol SymbolId

	IntValue   uint64 // TermConstInt
	FloatBits  uint64 // TermConstFloat, IEEE-754 bit pattern
	BoolValue  bool   // TermConstBool
	StrValue   string // TermConstStr

	UnOp  ir.UnaryOp // TermUnaryOp
	BinOp ir.BinOp    // TermBinOp

	Operand TermId   // TermUnaryOp, TermCast, TermDeref, TermReturn (value, may be invalid), TermRef
	Lhs, Rhs TermId  // TermBinOp, TermLogicalAnd/Or, TermAssign (place=Lhs is a TermVar/FieldAccess/Index/Deref term)

	CastTo TyAnnotation // TermCast

	Base  TermId // TermFieldAccess, TermIndex
	Field int    // TermFieldAccess: declaration-order field index
	Index TermId // TermIndex: index term

	Elements []TermId // TermTupleLit, TermStructLit (declaration order), TermListLit

	Adt     ir.AdtId // TermStructLit, TermEnumLit
	Variant int      // TermEnumLit

	Callee TermId   // TermCall
	Args   []TermId // TermCall

	Cond TermId   // TermIf, TermLoop (loop condition term, may be invalid for `loop {}`)
	Then TermId   // TermIf
	Else TermId   // TermIf, may be invalid (no else branch)

	MatchSubject TermId // TermMatch
	MatchArms    []MatchArm

	Body []TermId // TermBlock, TermLoop body, function bodies

	DeclSymbol SymbolId // TermDeclaration
	DeclInit   TermId   // TermDeclaration, may be invalid (no initializer)
	DeclMut    ir.Mutability

	HasOperand bool // whether Operand/Cond/Else/DeclInit above is meaningfully set
}

// TyAnnotation is a resolved target type for a cast.
type TyAnnotation struct {
	Ty ir.TyId
}

// MatchArm pairs a literal discriminant value with the block to execute;
// the exhaustiveness/pattern-matching machinery that would normally
// produce this decision table is out of scope (spec.md Non-goals), so
// Store callers build it directly in its already-decided form.
type MatchArm struct {
	Variant int
	Body    TermId
}

// SymbolId names a declared variable (parameter or let-binding).
type SymbolId int

// SymbolInfo records what a Store needs to know about a declared
// variable: its type and whether it is a function parameter (in which
// case it participates in argument/local numbering the way
// `internal/lower` expects).
type SymbolInfo struct {
	Name  string
	Ty    ir.TyId
	IsArg bool
	Mut   ir.Mutability
}

// Store holds a function body's worth of already-typed terms plus its
// symbol table, built directly by a test or an embedding tool rather
// than by parsing source text.
type Store struct {
	terms   []Term
	symbols []SymbolInfo
}

// NewStore creates an empty term store.
func NewStore() *Store { return &Store{} }

// Add appends a term and returns its id.
func (s *Store) Add(t Term) TermId {
	id := TermId(len(s.terms))
	s.terms = append(s.terms, t)
	return id
}

// Get returns the term named by id.
func (s *Store) Get(id TermId) Term {
	return s.terms[id]
}

// DeclareSymbol registers a symbol and returns its id.
func (s *Store) DeclareSymbol(info SymbolInfo) SymbolId {
	id := SymbolId(len(s.symbols))
	s.symbols = append(s.symbols, info)
	return id
}

// Symbol returns the info for a declared symbol.
func (s *Store) Symbol(id SymbolId) SymbolInfo {
	return s.symbols[id]
}

// TyOf returns the type of a term, the minimal surface `lower` needs
// in place of a real type-checker's `ty_id_from_tir_term` query.
func (s *Store) TyOf(id TermId) ir.TyId {
	return s.terms[id].Ty
}

// FnDef describes one lowering unit: a name, its parameter symbols in
// order, its return type, and its body (a sequence of statement terms
// culminating in an implicit return of the last expression's value).
type FnDef struct {
	Name       string
	Params     []SymbolId
	ReturnTy   ir.TyId
	Body       []TermId
}

// LibcFn describes an external function the call-classification helper
// can recognise by name, standing in for `lookup_libc_fn`.
type LibcFn struct {
	Name   string
	Params []ir.TyId
	Ret    ir.TyId
}

var libcFns = map[string]LibcFn{
	"malloc": {Name: "malloc", Ret: 0}, // Ret filled in by callers that know the raw-ptr TyId
	"free":   {Name: "free"},
	"memcpy": {Name: "memcpy"},
	"printf": {Name: "printf"},
	"exit":   {Name: "exit"},
}

// LookupLibcFn is the stand-in for the original's `lookup_libc_fn`:
// recognising a small fixed set of C ABI functions lowering may need to
// call directly (e.g. `malloc` for list initialization).
func LookupLibcFn(name string) (LibcFn, bool) {
	fn, ok := libcFns[name]
	return fn, ok
}

// CallClass enumerates what kind of thing a TermCall's callee resolves
// to, standing in for `classify_fn_call_term`.
type CallClass int

const (
	CallUserFn CallClass = iota
	CallLibcFn
	CallIntrinsic
)

// ClassifyCall inspects a TermCall's callee term to decide how lowering
// should dispatch it (`classify_fn_call_term`): a TermVar naming a
// recognised libc function is CallLibcFn, and every other callee is
// CallUserFn. CallIntrinsic is never returned.
func (s *Store) ClassifyCall(callee TermId) (CallClass, string) {
	t := s.terms[callee]
	if t.Kind == TermVar {
		sym := s.symbols[t.Symbol]
		if fn, ok := LookupLibcFn(sym.Name); ok {
			return CallLibcFn, fn.Name
		}
		return CallUserFn, sym.Name
	}
	return CallUserFn, ""
}
