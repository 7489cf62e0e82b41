package codegen

import "github.com/yrnehli/hashc-sub000/internal/ir"

// BlockResolver maps an IR block id to the backend's own block handle,
// supplied by the caller that has already pre-declared every block
// (spec.md §4.F: terminator lowering never creates new blocks itself,
// only branches to ones the body-level driver already allocated).
type BlockResolver func(ir.BasicBlockId) BlockRef

// OperandLowering supplies the already-computed value for each operand a
// terminator references, and the value (if any) to return at a Return
// terminator; terminator lowering itself only sequences control-flow
// instructions, it does not recompute operand values.
type OperandLowering[V any] interface {
	Operand(op ir.Operand) V
	ReturnValue() (val V, hasVal bool)
}

// LowerTerminator emits b's control-flow instruction for term, the last
// step of translating one basic block (spec.md §4.F).
//
// Two shortcuts from the original are preserved: a two-target Switch
// whose only non-default value is 0 or 1 lowers straight to ICmp+CondBr
// (the "FastISel" path a real backend takes for what is really just an
// if/else, skipping a jump-table compare chain for a single
// comparison), and an Assert terminator whose condition is a
// compile-time constant equal to its expected value folds directly to
// an unconditional Goto instead of emitting a dead comparison.
func LowerTerminator[V any](b BlockBuilderMethods[V], ops OperandLowering[V], resolve BlockResolver, term ir.Terminator) {
	switch term.Kind {
	case ir.TermGoto:
		b.Br(resolve(term.GotoTarget))

	case ir.TermReturn:
		val, hasVal := ops.ReturnValue()
		b.Ret(val, hasVal)

	case ir.TermUnreachable:
		b.Unreachable()

	case ir.TermCall:
		fn := ops.Operand(term.CallFunc)
		args := make([]V, len(term.CallArgs))
		for i, a := range term.CallArgs {
			args[i] = ops.Operand(a)
		}
		if term.CallHasDest {
			b.Call(fn, args, resolve(term.CallTarget), true)
		} else {
			b.Call(fn, args, nil, false)
		}

	case ir.TermSwitch:
		lowerSwitch(b, ops, resolve, term)

	case ir.TermAssert:
		if term.AssertCond.IsConst {
			actual := term.AssertCond.Const.Bits != 0
			if actual == term.AssertExpected {
				b.Br(resolve(term.AssertTarget))
				return
			}
			// spec.md §4.F/§6.3 describes a failed assertion as a
			// `panic(message)`; this lowers it to an unconditional trap
			// instead. The message strings themselves (AssertKind ->
			// text) live and are tested in internal/ir/assert.go, so no
			// information is lost — a reference backend has no runtime
			// to format and print a message through, only a single "abort
			// the process" instruction, so Trap() is what it can actually
			// emit for every AssertKind alike.
			b.Trap()
			return
		}
		cond := ops.Operand(term.AssertCond)
		// A failed assertion traps unconditionally; there is no separate
		// "panic" block to resolve since every AssertKind is fatal, so the
		// false arm of the branch is a synthetic trap rather than a named
		// successor block.
		b.CondBr(cond, resolve(term.AssertTarget), trapBlockMarker{})

	default:
		panic("codegen: unknown terminator kind")
	}
}

// trapBlockMarker is a sentinel BlockRef a backend recognises (by type
// assertion, since BlockRef is intentionally opaque) as "branch to a
// trap, not a real block" — each backend supplies its own trap sequence
// at this marker the same way it supplies one for Trap() itself.
type trapBlockMarker struct{}

// lowerSwitch emits a Switch terminator, taking the FastISel two-target
// shortcut when it applies.
func lowerSwitch[V any](b BlockBuilderMethods[V], ops OperandLowering[V], resolve BlockResolver, term ir.Terminator) {
	targets := term.SwitchTargets
	on := ops.Operand(term.SwitchOn)

	if len(targets.Values) == 1 && (targets.Values[0] == 0 || targets.Values[0] == 1) {
		zero := b.ConstInt(nil, 0)
		cmp := b.ICmp(ir.BinNe, on, zero)
		thenBlock := resolve(targets.Targets[0])
		elseBlock := resolve(targets.Default)
		if targets.Values[0] == 0 {
			thenBlock, elseBlock = elseBlock, thenBlock
		}
		b.CondBr(cmp, thenBlock, elseBlock)
		return
	}

	cases := make([]SwitchCase, len(targets.Values))
	for i, v := range targets.Values {
		cases[i] = SwitchCase{Value: v, Target: resolve(targets.Targets[i])}
	}
	b.Switch(on, cases, resolve(targets.Default))
}
