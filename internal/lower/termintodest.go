package lower

import (
	"fmt"

	"github.com/yrnehli/hashc-sub000/internal/ir"
	"github.com/yrnehli/hashc-sub000/internal/tir"
)

// termIntoDest lowers term id so that its value ends up written to
// dest, choosing the cheapest sequence for the term's shape rather than
// always evaluating into a temporary and copying (spec.md §4.E:
// destination-passing style).
func (l *Lowerer) termIntoDest(dest ir.Place, id tir.TermId) error {
	t := l.store.Get(id)

	switch t.Kind {
	case tir.TermIf:
		return l.lowerIf(dest, t)
	case tir.TermMatch:
		return l.lowerMatch(dest, t)
	case tir.TermLoop:
		if err := l.lowerLoop(t); err != nil {
			return err
		}
		return nil // a loop's own value is always unit; dest is left zeroed
	case tir.TermBlock:
		return l.blockInto(dest, t.Body)
	case tir.TermLogicalAnd, tir.TermLogicalOr:
		return l.lowerLogical(dest, t)
	case tir.TermListLit:
		return l.lowerListInit(dest, t)
	case tir.TermCall:
		return l.lowerCall(dest, t)
	case tir.TermReturn:
		return l.lowerReturn(t)
	case tir.TermBreak:
		return l.lowerBreak()
	case tir.TermContinue:
		return l.lowerContinue()
	case tir.TermDeclaration, tir.TermAssign:
		if err := l.execForEffect(id); err != nil {
			return err
		}
		return nil
	default:
		rv, err := l.asRValue(id)
		if err != nil {
			return err
		}
		l.push(ir.AssignStatement(dest, rv))
		return nil
	}
}

// asRValue lowers a term into an RValue, for use as the right-hand side
// of an Assign statement.
func (l *Lowerer) asRValue(id tir.TermId) (ir.RValue, error) {
	t := l.store.Get(id)
	switch t.Kind {
	case tir.TermUnaryOp:
		op, err := l.asOperand(t.Operand)
		if err != nil {
			return ir.RValue{}, err
		}
		return ir.RValue{Kind: ir.RValueUnaryOp, UnOp: t.UnOp, Operand: op}, nil

	case tir.TermBinOp:
		lhs, err := l.asOperand(t.Lhs)
		if err != nil {
			return ir.RValue{}, err
		}
		rhs, err := l.asOperand(t.Rhs)
		if err != nil {
			return ir.RValue{}, err
		}
		kind := ir.RValueBinaryOp
		if t.BinOp.IsCheckable() {
			kind = ir.RValueCheckedBinaryOp
		}
		return ir.RValue{Kind: kind, BinOp: t.BinOp, Lhs: lhs, Rhs: rhs}, nil

	case tir.TermCast:
		op, err := l.asOperand(t.Operand)
		if err != nil {
			return ir.RValue{}, err
		}
		return ir.RValue{Kind: ir.RValueCast, Operand: op, CastTo: t.CastTo.Ty, CastKind: ir.CastIntToInt}, nil

	case tir.TermRef:
		place, err := l.asPlace(t.Operand)
		if err != nil {
			return ir.RValue{}, err
		}
		return ir.RValue{Kind: ir.RValueRef, RefPlace: place}, nil

	case tir.TermTupleLit, tir.TermStructLit:
		elems, err := l.operandList(t.Elements)
		if err != nil {
			return ir.RValue{}, err
		}
		kind := ir.AggregateTuple
		if t.Kind == tir.TermStructLit {
			kind = ir.AggregateStruct
		}
		return ir.RValue{Kind: ir.RValueAggregate, Aggregate: kind, Elements: elems, AggregateTy: t.Ty}, nil

	case tir.TermEnumLit:
		elems, err := l.operandList(t.Elements)
		if err != nil {
			return ir.RValue{}, err
		}
		return ir.RValue{Kind: ir.RValueAggregate, Aggregate: ir.AggregateEnum, Variant: t.Variant, Elements: elems, AggregateTy: t.Ty}, nil

	default:
		op, err := l.asOperand(id)
		if err != nil {
			return ir.RValue{}, err
		}
		return ir.UseRValue(op), nil
	}
}

// asOperand lowers a term into an Operand, recursing through block/if
// forms (which must first be written to a scratch temporary) and
// collapsing the direct cases (variable reads, constants, and anything
// with a natural place) without an intermediate copy.
func (l *Lowerer) asOperand(id tir.TermId) (ir.Operand, error) {
	t := l.store.Get(id)
	switch t.Kind {
	case tir.TermConstInt:
		return ir.OperandFromConst(ir.Const{Kind: ir.ConstScalar, Ty: t.Ty, Bits: t.IntValue}), nil
	case tir.TermConstFloat:
		return ir.OperandFromConst(ir.Const{Kind: ir.ConstScalar, Ty: t.Ty, Bits: t.FloatBits}), nil
	case tir.TermConstBool:
		v := uint64(0)
		if t.BoolValue {
			v = 1
		}
		return ir.OperandFromConst(ir.Const{Kind: ir.ConstScalar, Ty: t.Ty, Bits: v}), nil
	case tir.TermConstStr:
		return ir.OperandFromConst(ir.Const{Kind: ir.ConstBytes, Ty: t.Ty, Bytes: []byte(t.StrValue)}), nil
	case tir.TermVar, tir.TermFieldAccess, tir.TermIndex, tir.TermDeref:
		place, err := l.asPlace(id)
		if err != nil {
			return ir.Operand{}, err
		}
		return ir.OperandFromPlace(place), nil
	default:
		dest := l.scratchDest(t.Ty)
		if err := l.termIntoDest(dest, id); err != nil {
			return ir.Operand{}, err
		}
		return ir.OperandFromPlace(dest), nil
	}
}

// asPlace lowers a term that denotes a memory location directly, without
// a scratch copy.
func (l *Lowerer) asPlace(id tir.TermId) (ir.Place, error) {
	t := l.store.Get(id)
	switch t.Kind {
	case tir.TermVar:
		local, ok := l.locals[t.Symbol]
		if !ok {
			return ir.Place{}, fmt.Errorf("lower: reference to undeclared symbol %d", t.Symbol)
		}
		return ir.NewPlace(local), nil

	case tir.TermFieldAccess:
		base, err := l.asPlace(t.Base)
		if err != nil {
			return ir.Place{}, err
		}
		return base.Project(l.body, ir.PlaceProjection{Kind: ir.ProjField, FieldIdx: t.Field, FieldTy: t.Ty}), nil

	case tir.TermIndex:
		base, err := l.asPlace(t.Base)
		if err != nil {
			return ir.Place{}, err
		}
		idxOp, err := l.asOperand(t.Index)
		if err != nil {
			return ir.Place{}, err
		}
		idxLocal, ok := placeLocalOf(idxOp)
		if !ok {
			tmp := l.scratchDest(l.ctx.Common.USize)
			l.push(ir.AssignStatement(tmp, ir.UseRValue(idxOp)))
			idxLocal = tmp.Local
		}
		return base.Project(l.body, ir.PlaceProjection{Kind: ir.ProjIndex, IndexLocal: idxLocal}), nil

	case tir.TermDeref:
		base, err := l.asPlace(t.Operand)
		if err != nil {
			return ir.Place{}, err
		}
		return base.Project(l.body, ir.PlaceProjection{Kind: ir.ProjDeref}), nil

	default:
		dest := l.scratchDest(t.Ty)
		if err := l.termIntoDest(dest, id); err != nil {
			return ir.Place{}, err
		}
		return dest, nil
	}
}

func placeLocalOf(op ir.Operand) (ir.LocalId, bool) {
	if op.IsConst {
		return 0, false
	}
	if op.Place.Projection == 0 {
		return op.Place.Local, true
	}
	return 0, false
}

func (l *Lowerer) operandList(ids []tir.TermId) ([]ir.Operand, error) {
	ops := make([]ir.Operand, len(ids))
	for i, id := range ids {
		op, err := l.asOperand(id)
		if err != nil {
			return nil, err
		}
		ops[i] = op
	}
	return ops, nil
}
