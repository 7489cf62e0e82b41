// Package lower implements destination-passing-style lowering from a
// typed term store (internal/tir) to the control-flow IR (internal/ir).
package lower

import (
	"fmt"

	"github.com/yrnehli/hashc-sub000/internal/ir"
	"github.com/yrnehli/hashc-sub000/internal/layout"
	"github.com/yrnehli/hashc-sub000/internal/tir"
)

// Lowerer holds the mutable state of one function's lowering pass: the
// body under construction, the block currently being appended to, the
// symbol->local mapping, and the stack of enclosing loops (for
// break/continue targets). lc answers the size_of queries list-literal
// lowering needs (spec.md §4.E step 1); it is read-only for the whole
// pass, same as ctx/store.
type Lowerer struct {
	ctx   *ir.Ctx
	lc    *layout.Ctx
	store *tir.Store
	body  *ir.Body
	cur   ir.BasicBlockId

	locals map[tir.SymbolId]ir.LocalId
	loops  []loopFrame
}

type loopFrame struct {
	continueTarget ir.BasicBlockId
	breakTarget    ir.BasicBlockId
}

// LowerFn lowers one function definition into a Body. This is the
// driver's single entry point into the lowering pass (spec.md §4.E).
func LowerFn(ctx *ir.Ctx, lc *layout.Ctx, store *tir.Store, fn tir.FnDef) (*ir.Body, error) {
	body := ir.NewBody(fn.Name, fn.ReturnTy)
	l := &Lowerer{ctx: ctx, lc: lc, store: store, body: body, locals: make(map[tir.SymbolId]ir.LocalId)}

	for _, sym := range fn.Params {
		info := store.Symbol(sym)
		local := body.AddLocal(ir.LocalDecl{Ty: info.Ty, Mutable: info.Mut, Name: info.Name, IsArg: true})
		l.locals[sym] = local
		body.NumArgs++
	}

	l.cur = body.AddBlock()
	entry := ir.StartBlock
	if l.cur != entry {
		return nil, fmt.Errorf("lower: entry block must be block 0")
	}

	if err := l.blockInto(ir.NewPlace(ir.ReturnLocal), fn.Body); err != nil {
		return nil, fmt.Errorf("lower: function %q: %w", fn.Name, err)
	}
	if !l.blockTerminated(l.cur) {
		l.setTerminator(l.cur, ir.Terminator{Kind: ir.TermReturn})
	}

	if err := body.Verify(); err != nil {
		return nil, err
	}
	return body, nil
}

// blockTerminated reports whether block has already been given a
// terminator by setTerminator. A block's zero-value Terminator (a
// `goto bb0`) does not count: only the TerminatorSet flag that
// setTerminator raises is consulted.
func (l *Lowerer) blockTerminated(id ir.BasicBlockId) bool {
	return l.body.Block(id).TerminatorSet
}

func (l *Lowerer) setTerminator(id ir.BasicBlockId, t ir.Terminator) {
	l.body.Block(id).Terminator = t
	l.body.Block(id).TerminatorSet = true
}

func (l *Lowerer) push(s ir.Statement) {
	blk := l.body.Block(l.cur)
	blk.Statements = append(blk.Statements, s)
}

func (l *Lowerer) newTemp(ty ir.TyId) ir.LocalId {
	return l.body.AddLocal(ir.LocalDecl{Ty: ty})
}

// blockInto lowers a sequence of terms, the last of which produces dest;
// every earlier term is lowered for effect only.
func (l *Lowerer) blockInto(dest ir.Place, terms []tir.TermId) error {
	if len(terms) == 0 {
		return nil
	}
	for _, id := range terms[:len(terms)-1] {
		if err := l.execForEffect(id); err != nil {
			return err
		}
	}
	return l.termIntoDest(dest, terms[len(terms)-1])
}

// execForEffect lowers a term whose value (if any) is discarded.
// Statement-shaped forms (Declaration, Assign, Loop, If-as-statement,
// Return, Break, Continue, Block) are handled directly; anything else
// is lowered into a fresh scratch temporary.
func (l *Lowerer) execForEffect(id tir.TermId) error {
	t := l.store.Get(id)
	switch t.Kind {
	case tir.TermDeclaration:
		local := l.body.AddLocal(ir.LocalDecl{Ty: l.store.Symbol(t.DeclSymbol).Ty, Mutable: t.DeclMut, Name: l.store.Symbol(t.DeclSymbol).Name})
		l.locals[t.DeclSymbol] = local
		l.push(ir.LiveStatement(local))
		if t.HasOperand {
			return l.termIntoDest(ir.NewPlace(local), t.DeclInit)
		}
		return nil
	case tir.TermAssign:
		place, err := l.asPlace(t.Lhs)
		if err != nil {
			return err
		}
		return l.termIntoDest(place, t.Rhs)
	case tir.TermBlock:
		return l.blockInto(l.scratchDest(t.Ty), t.Body)
	case tir.TermIf:
		return l.lowerIf(l.scratchDest(t.Ty), t)
	case tir.TermLoop:
		return l.lowerLoop(t)
	case tir.TermMatch:
		return l.lowerMatch(l.scratchDest(t.Ty), t)
	case tir.TermReturn:
		return l.lowerReturn(t)
	case tir.TermBreak:
		return l.lowerBreak()
	case tir.TermContinue:
		return l.lowerContinue()
	default:
		return l.termIntoDest(l.scratchDest(t.Ty), id)
	}
}

func (l *Lowerer) scratchDest(ty ir.TyId) ir.Place {
	return ir.NewPlace(l.newTemp(ty))
}

func (l *Lowerer) lowerReturn(t tir.Term) error {
	if t.HasOperand {
		if err := l.termIntoDest(ir.NewPlace(ir.ReturnLocal), t.Operand); err != nil {
			return err
		}
	}
	l.setTerminator(l.cur, ir.Terminator{Kind: ir.TermReturn})
	l.cur = l.body.AddBlock() // unreachable tail; later statements (if any) are dead code
	return nil
}

func (l *Lowerer) lowerBreak() error {
	if len(l.loops) == 0 {
		return fmt.Errorf("lower: break outside loop")
	}
	frame := l.loops[len(l.loops)-1]
	l.setTerminator(l.cur, ir.Terminator{Kind: ir.TermGoto, GotoTarget: frame.breakTarget})
	l.cur = l.body.AddBlock()
	return nil
}

func (l *Lowerer) lowerContinue() error {
	if len(l.loops) == 0 {
		return fmt.Errorf("lower: continue outside loop")
	}
	frame := l.loops[len(l.loops)-1]
	l.setTerminator(l.cur, ir.Terminator{Kind: ir.TermGoto, GotoTarget: frame.continueTarget})
	l.cur = l.body.AddBlock()
	return nil
}
