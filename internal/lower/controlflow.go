package lower

import (
	"github.com/yrnehli/hashc-sub000/internal/ir"
	"github.com/yrnehli/hashc-sub000/internal/tir"
)

// lowerIf lowers a two-arm conditional into a three-block diamond: the
// current block ends in a Switch on the condition, each arm lowers into
// dest and falls through to a shared join block, which becomes the new
// current block.
func (l *Lowerer) lowerIf(dest ir.Place, t tir.Term) error {
	condOp, err := l.asOperand(t.Cond)
	if err != nil {
		return err
	}

	thenBlock := l.body.AddBlock()
	elseBlock := l.body.AddBlock()
	l.setTerminator(l.cur, ir.Terminator{
		Kind:     ir.TermSwitch,
		SwitchOn: condOp,
		SwitchTargets: ir.SwitchTargets{
			Values:  []uint64{1},
			Targets: []ir.BasicBlockId{thenBlock},
			Default: elseBlock,
		},
	})

	join := l.body.AddBlock()

	l.cur = thenBlock
	if err := l.termIntoDest(dest, t.Then); err != nil {
		return err
	}
	if !l.blockTerminated(l.cur) {
		l.setTerminator(l.cur, ir.Terminator{Kind: ir.TermGoto, GotoTarget: join})
	}

	l.cur = elseBlock
	if t.HasOperand { // Else branch present
		if err := l.termIntoDest(dest, t.Else); err != nil {
			return err
		}
	}
	if !l.blockTerminated(l.cur) {
		l.setTerminator(l.cur, ir.Terminator{Kind: ir.TermGoto, GotoTarget: join})
	}

	l.cur = join
	return nil
}

// lowerLogical lowers `&&`/`||` as the short-circuit three-block diamond
// spec.md §4.E documents: evaluate lhs; if it already decides the
// result, goto the join with that value; otherwise fall through to
// evaluate rhs and use its value.
func (l *Lowerer) lowerLogical(dest ir.Place, t tir.Term) error {
	lhsOp, err := l.asOperand(t.Lhs)
	if err != nil {
		return err
	}

	rhsBlock := l.body.AddBlock()
	shortCircuitBlock := l.body.AddBlock()
	join := l.body.AddBlock()

	shortOn := uint64(1)
	if t.Kind == tir.TermLogicalAnd {
		// && short-circuits on a false lhs
		shortOn = 0
	}
	l.setTerminator(l.cur, ir.Terminator{
		Kind:     ir.TermSwitch,
		SwitchOn: lhsOp,
		SwitchTargets: ir.SwitchTargets{
			Values:  []uint64{shortOn},
			Targets: []ir.BasicBlockId{shortCircuitBlock},
			Default: rhsBlock,
		},
	})

	l.cur = shortCircuitBlock
	l.push(ir.AssignStatement(dest, ir.UseRValue(ir.OperandFromConst(ir.Const{Kind: ir.ConstScalar, Ty: t.Ty, Bits: shortOn}))))
	l.setTerminator(l.cur, ir.Terminator{Kind: ir.TermGoto, GotoTarget: join})

	l.cur = rhsBlock
	if err := l.termIntoDest(dest, t.Rhs); err != nil {
		return err
	}
	if !l.blockTerminated(l.cur) {
		l.setTerminator(l.cur, ir.Terminator{Kind: ir.TermGoto, GotoTarget: join})
	}

	l.cur = join
	return nil
}

// lowerMatch lowers a match over an already-decided set of variant arms
// (spec.md routes pattern exhaustiveness checking out of scope, so the
// arm list arrives pre-decided) into a Switch over the scrutinee's
// discriminant, one block per arm, joined at a shared successor.
func (l *Lowerer) lowerMatch(dest ir.Place, t tir.Term) error {
	subject, err := l.asPlace(t.MatchSubject)
	if err != nil {
		return err
	}
	discrTemp := l.scratchDest(l.ctx.Common.I32)
	l.push(ir.AssignStatement(discrTemp, ir.RValue{Kind: ir.RValueDiscriminant, DiscriminantPlace: subject}))

	join := l.body.AddBlock()
	values := make([]uint64, 0, len(t.MatchArms))
	targets := make([]ir.BasicBlockId, 0, len(t.MatchArms))

	var defaultBlock ir.BasicBlockId
	for i, arm := range t.MatchArms {
		armBlock := l.body.AddBlock()
		if i == len(t.MatchArms)-1 {
			defaultBlock = armBlock
		} else {
			values = append(values, uint64(arm.Variant))
			targets = append(targets, armBlock)
		}
	}
	l.setTerminator(l.cur, ir.Terminator{
		Kind:     ir.TermSwitch,
		SwitchOn: ir.OperandFromPlace(discrTemp),
		SwitchTargets: ir.SwitchTargets{
			Values:  values,
			Targets: targets,
			Default: defaultBlock,
		},
	})

	armBlocks := append(append([]ir.BasicBlockId{}, targets...), defaultBlock)
	for i, arm := range t.MatchArms {
		l.cur = armBlocks[i]
		if err := l.termIntoDest(dest, arm.Body); err != nil {
			return err
		}
		if !l.blockTerminated(l.cur) {
			l.setTerminator(l.cur, ir.Terminator{Kind: ir.TermGoto, GotoTarget: join})
		}
	}

	l.cur = join
	return nil
}

// lowerLoop lowers `loop { body }` into a header block that re-executes
// the body forever until a Break term (handled by lowerBreak) jumps past
// it; Continue jumps back to the header.
func (l *Lowerer) lowerLoop(t tir.Term) error {
	header := l.body.AddBlock()
	after := l.body.AddBlock()

	l.setTerminator(l.cur, ir.Terminator{Kind: ir.TermGoto, GotoTarget: header})

	l.loops = append(l.loops, loopFrame{continueTarget: header, breakTarget: after})
	l.cur = header
	for _, stmt := range t.Body {
		if err := l.execForEffect(stmt); err != nil {
			return err
		}
	}
	l.loops = l.loops[:len(l.loops)-1]

	if !l.blockTerminated(l.cur) {
		l.setTerminator(l.cur, ir.Terminator{Kind: ir.TermGoto, GotoTarget: header})
	}

	l.cur = after
	return nil
}

// lowerCall lowers a function call into a Call terminator: the current
// block ends with the call, resuming in a fresh continuation block that
// becomes the new current block (spec.md §3.3: Call is a terminator, not
// a statement, since control leaves the body).
func (l *Lowerer) lowerCall(dest ir.Place, t tir.Term) error {
	calleeOp, err := l.asOperand(t.Callee)
	if err != nil {
		return err
	}
	args, err := l.operandList(t.Args)
	if err != nil {
		return err
	}

	cont := l.body.AddBlock()
	l.setTerminator(l.cur, ir.Terminator{
		Kind:        ir.TermCall,
		CallFunc:    calleeOp,
		CallArgs:    args,
		CallDest:    dest,
		CallTarget:  cont,
		CallHasDest: true,
	})
	l.cur = cont
	return nil
}

// lowerListInit lowers a runtime-sized list literal the way spec.md
// §4.E documents: allocate the backing storage with a `malloc` call,
// store each element, then materialize the resulting fat pointer as an
// AggregateSizedPointer(`data ptr`, `len`) value that a later Cast/Ref
// reinterprets as `&[T]` — the pointer/length pair is built directly
// here rather than via a runtime transmute call (DESIGN.md Open
// Question (c)). The `malloc` argument is a byte count
// (`size_of(elem_ty) * len`, per §4.E step 1 and
// hash-lower/src/build/into.rs's `size_of(element_ty).unwrap() *
// args.len()`), not the element count itself — only the fat pointer's
// length field is element-counted.
func (l *Lowerer) lowerListInit(dest ir.Place, t tir.Term) error {
	elemTy := l.body.LocalTy(dest.Local)
	if !dest.IsDirect(l.body) {
		elemTy = t.Ty
	}

	elemLayoutTy := elemTy
	n := uint64(len(t.Elements))

	sizeTy := elemLayoutTy
	if n > 0 {
		sizeTy = l.store.TyOf(t.Elements[0])
	}
	elemLayout, err := l.lc.LayoutOf(sizeTy)
	if err != nil {
		return err
	}
	byteSize := elemLayout.Size * n

	lenConst := ir.OperandFromConst(ir.Const{Kind: ir.ConstScalar, Ty: l.ctx.Common.USize, Bits: n})
	sizeConst := ir.OperandFromConst(ir.Const{Kind: ir.ConstScalar, Ty: l.ctx.Common.USize, Bits: byteSize})

	mallocRet := l.ctx.Common.RawPtr
	mallocFn := ir.OperandFromConst(ir.Const{Kind: ir.ConstBytes, Ty: l.ctx.Tys.Intern(ir.Ty{Kind: ir.TyFn, FnParams: []ir.TyId{l.ctx.Common.USize}, FnRet: mallocRet, FnInstance: "malloc"}), Bytes: []byte("malloc")})

	dataPtr := l.scratchDest(mallocRet)
	cont := l.body.AddBlock()
	l.setTerminator(l.cur, ir.Terminator{
		Kind:        ir.TermCall,
		CallFunc:    mallocFn,
		CallArgs:    []ir.Operand{sizeConst},
		CallDest:    dataPtr,
		CallTarget:  cont,
		CallHasDest: true,
	})
	l.cur = cont

	typedPtrTy := l.ctx.Tys.Intern(ir.Ty{Kind: ir.TyRef, RefPointee: elemLayoutTy, RefMut: ir.Mutable})
	typedPtr := l.scratchDest(typedPtrTy)
	l.push(ir.AssignStatement(typedPtr, ir.RValue{Kind: ir.RValueCast, Operand: ir.OperandFromPlace(dataPtr), CastKind: ir.CastPtrToPtr, CastTo: typedPtrTy}))

	for i, elemID := range t.Elements {
		elemPlace := typedPtr.Project(l.body, ir.PlaceProjection{Kind: ir.ProjDeref}).
			Project(l.body, ir.PlaceProjection{Kind: ir.ProjConstantIndex, ConstantOffset: uint64(i), MinLength: n})
		if err := l.termIntoDest(elemPlace, elemID); err != nil {
			return err
		}
	}

	l.push(ir.AssignStatement(dest, ir.RValue{
		Kind:        ir.RValueAggregate,
		Aggregate:   ir.AggregateSizedPointer,
		Elements:    []ir.Operand{ir.OperandFromPlace(typedPtr), lenConst},
		AggregateTy: t.Ty,
	}))
	return nil
}
