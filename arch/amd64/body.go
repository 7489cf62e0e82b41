package amd64

import (
	"fmt"

	"github.com/yrnehli/hashc-sub000/internal/codegen"
	"github.com/yrnehli/hashc-sub000/internal/ir"
	"github.com/yrnehli/hashc-sub000/internal/layout"
)

// placeRef is this backend's codegen.PlaceRef[Value]: an address plus
// enough type information to keep projecting further.
type placeRef = codegen.PlaceRef[Value]

// evalPlace walks p's projection chain, starting from its local's own
// address, folding every projection into a new placeRef the same way
// internal/codegen's Field/Index/ConstantIndex/Downcast helpers do for
// any backend whose V can represent an address. ProjDeref is the one
// projection those shared helpers don't cover (it needs a pointee type
// lookup, not just arithmetic), so it's handled directly here.
func (c *Compiler) evalPlace(p ir.Place) (placeRef, error) {
	local, ok := c.locals[p.Local]
	if !ok {
		return placeRef{}, fmt.Errorf("amd64: local %d has no allocated slot", p.Local)
	}
	ty := c.body.LocalTy(p.Local)
	l, err := c.lc.LayoutOf(ty)
	if err != nil {
		return placeRef{}, err
	}
	ref := placeRef{Addr: local, Ty: ty, Layout: l}

	for _, proj := range p.Projections(c.body) {
		switch proj.Kind {
		case ir.ProjDeref:
			pointee := c.lc.TyOf(ref.Ty).RefPointee
			pl, err := c.lc.LayoutOf(pointee)
			if err != nil {
				return placeRef{}, err
			}
			addr := c.Load(nil, ref.Addr, 8, 0)
			ref = placeRef{Addr: addr, Ty: pointee, Layout: pl}

		case ir.ProjField:
			fl, err := c.lc.LayoutOf(proj.FieldTy)
			if err != nil {
				return placeRef{}, err
			}
			ref = codegen.Field(c, ref, proj.FieldIdx, proj.FieldTy, fl)

		case ir.ProjIndex:
			elemTy := c.lc.TyOf(ref.Ty).ArrayElem
			el, err := c.lc.LayoutOf(elemTy)
			if err != nil {
				return placeRef{}, err
			}
			idx := c.locals[proj.IndexLocal]
			idxVal := c.Load(nil, idx, 8, 0)
			ref = codegen.Index(c, ref, idxVal, elemTy, el)

		case ir.ProjConstantIndex:
			elemTy := c.lc.TyOf(ref.Ty).ArrayElem
			el, err := c.lc.LayoutOf(elemTy)
			if err != nil {
				return placeRef{}, err
			}
			ref = codegen.ConstantIndex(c, ref, proj.ConstantOffset, proj.FromEnd, proj.MinLength, elemTy, el)

		case ir.ProjSubSlice:
			// Reference-backend simplification: a sub-slice projection
			// addresses the same way a ConstantIndex-from-front does,
			// since this backend never needs the narrowed slice's own
			// length (the native backend has no bounds-checking pass).
			ref = placeRef{Addr: c.InboundsGEP(ref.Addr, ref.Layout.Fields.Stride*proj.SubSliceFrom), Ty: ref.Ty, Layout: ref.Layout}

		case ir.ProjDowncast:
			ref = codegen.Downcast(ref, proj.Variant, ref.Ty)

		default:
			return placeRef{}, fmt.Errorf("amd64: unhandled place projection kind %v", proj.Kind)
		}
	}
	return ref, nil
}

func (c *Compiler) evalOperand(op ir.Operand) (Value, error) {
	if op.IsConst {
		return c.evalConst(op.Const), nil
	}
	ref, err := c.evalPlace(op.Place)
	if err != nil {
		return Value{}, err
	}
	if ref.Layout.IsZst() {
		return Value{Kind: ValueImm, Imm: 0}, nil
	}
	return c.Load(nil, ref.Addr, ref.Layout.Align.Abi, 0), nil
}

func (c *Compiler) evalConst(k ir.Const) Value {
	switch k.Kind {
	case ir.ConstScalar:
		return Value{Kind: ValueImm, Imm: k.Bits}
	case ir.ConstBytes:
		return c.ConstBytes(k.Bytes)
	default:
		return Value{Kind: ValueImm, Imm: 0}
	}
}

// evalRValueInto evaluates rv and stores the result at dest, handling
// the forms (aggregates, checked ops) that need to write more than one
// value-sized slot, and otherwise delegating to a plain Store.
func (c *Compiler) evalRValueInto(dest placeRef, rv ir.RValue) error {
	switch rv.Kind {
	case ir.RValueUse:
		v, err := c.evalOperand(rv.Operand)
		if err != nil {
			return err
		}
		c.Store(v, dest.Addr, dest.Layout.Align.Abi, 0)

	case ir.RValueUnaryOp:
		v, err := c.evalOperand(rv.Operand)
		if err != nil {
			return err
		}
		c.Store(c.UnOp(rv.UnOp, v, nil), dest.Addr, dest.Layout.Align.Abi, 0)

	case ir.RValueBinaryOp:
		lhs, err := c.evalOperand(rv.Lhs)
		if err != nil {
			return err
		}
		rhs, err := c.evalOperand(rv.Rhs)
		if err != nil {
			return err
		}
		var result Value
		if rv.BinOp.IsComparison() {
			result = c.ICmp(rv.BinOp, lhs, rhs)
		} else {
			result = c.BinOp(rv.BinOp, lhs, rhs, nil)
		}
		c.Store(result, dest.Addr, dest.Layout.Align.Abi, 0)

	case ir.RValueCheckedBinaryOp:
		lhs, err := c.evalOperand(rv.Lhs)
		if err != nil {
			return err
		}
		rhs, err := c.evalOperand(rv.Rhs)
		if err != nil {
			return err
		}
		result, overflowed := c.CheckedBinOp(rv.BinOp, lhs, rhs, nil)
		c.Store(result, dest.Addr, dest.Layout.Align.Abi, 0)
		overflowAddr := c.InboundsGEP(dest.Addr, dest.Layout.Offset2)
		c.Store(overflowed, overflowAddr, 1, 0)

	case ir.RValueCast:
		v, err := c.evalOperand(rv.Operand)
		if err != nil {
			return err
		}
		c.Store(c.Cast(rv.CastKind, v, nil, nil), dest.Addr, dest.Layout.Align.Abi, 0)

	case ir.RValueLen:
		srcTy := c.body.LocalTy(rv.LenPlace.Local)
		t := c.lc.TyOf(srcTy)
		if t.Kind == ir.TyArray {
			c.Store(Value{Kind: ValueImm, Imm: t.ArrayLength}, dest.Addr, dest.Layout.Align.Abi, 0)
			break
		}
		src, err := c.evalPlace(rv.LenPlace)
		if err != nil {
			return err
		}
		lenAddr := c.InboundsGEP(src.Addr, src.Layout.Offset2)
		c.Store(c.Load(nil, lenAddr, 8, 0), dest.Addr, dest.Layout.Align.Abi, 0)

	case ir.RValueRef:
		src, err := c.evalPlace(rv.RefPlace)
		if err != nil {
			return err
		}
		c.Store(src.Addr, dest.Addr, dest.Layout.Align.Abi, 0)

	case ir.RValueAggregate:
		return c.evalAggregateInto(dest, rv)

	case ir.RValueRepeat:
		v, err := c.evalOperand(rv.Operand)
		if err != nil {
			return err
		}
		for i := uint64(0); i < rv.RepeatCount; i++ {
			elemAddr := c.InboundsGEP(dest.Addr, dest.Layout.Fields.Stride*i)
			c.Store(v, elemAddr, dest.Layout.Align.Abi, 0)
		}

	case ir.RValueDiscriminant:
		src, err := c.evalPlace(rv.DiscriminantPlace)
		if err != nil {
			return err
		}
		if src.Layout.Variants.Kind == layout.VariantsSingle {
			c.Store(Value{Kind: ValueImm, Imm: uint64(src.Layout.Variants.VariantIndex)}, dest.Addr, dest.Layout.Align.Abi, 0)
			break
		}
		c.Store(c.Load(nil, src.Addr, 8, 0), dest.Addr, dest.Layout.Align.Abi, 0)

	case ir.RValueConstOp:
		opTyLayout, err := c.lc.LayoutOf(rv.ConstOpTy)
		if err != nil {
			return err
		}
		val := opTyLayout.Size
		if rv.ConstOp == ir.ConstOpAlignOf {
			val = opTyLayout.Align.Abi
		}
		c.Store(Value{Kind: ValueImm, Imm: val}, dest.Addr, dest.Layout.Align.Abi, 0)

	default:
		return fmt.Errorf("amd64: unhandled rvalue kind %v", rv.Kind)
	}
	return nil
}

func (c *Compiler) evalAggregateInto(dest placeRef, rv ir.RValue) error {
	variantLayout := dest.Layout
	if rv.Aggregate == ir.AggregateEnum {
		variantLayout = dest.Layout.Variants.Variants[rv.Variant]
		c.Store(Value{Kind: ValueImm, Imm: uint64(rv.Variant)}, dest.Addr, dest.Layout.Variants.Tag.Width, 0)
	}
	for i, elem := range rv.Elements {
		v, err := c.evalOperand(elem)
		if err != nil {
			return err
		}
		off := variantLayout.FieldOffset(i)
		addr := c.InboundsGEP(dest.Addr, off)
		c.Store(v, addr, 8, 0)
	}
	return nil
}

// compileBlock emits every statement of blk in order, then lowers its
// terminator via internal/codegen's shared logic.
func (c *Compiler) compileBlock(id ir.BasicBlockId, blk *ir.BasicBlockData) error {
	for _, stmt := range blk.Statements {
		if err := c.execStatement(stmt); err != nil {
			return err
		}
	}

	resolve := func(target ir.BasicBlockId) codegen.BlockRef { return c.marks[target] }
	ops := &operandAdapter{c: c}
	codegen.LowerTerminator[Value](c, ops, resolve, blk.Terminator)
	if ops.err != nil {
		return ops.err
	}
	return nil
}

func (c *Compiler) execStatement(s ir.Statement) error {
	switch s.Kind {
	case ir.StmtNop, ir.StmtLive, ir.StmtDead:
		return nil
	case ir.StmtAssign:
		dest, err := c.evalPlace(s.AssignPlace)
		if err != nil {
			return err
		}
		return c.evalRValueInto(dest, s.AssignValue)
	case ir.StmtDiscriminate:
		dest, err := c.evalPlace(s.DiscriminatePlace)
		if err != nil {
			return err
		}
		c.Store(Value{Kind: ValueImm, Imm: uint64(s.DiscriminateVariant)}, dest.Addr, dest.Layout.Variants.Tag.Width, 0)
		return nil
	default:
		return fmt.Errorf("amd64: unhandled statement kind %v", s.Kind)
	}
}

// operandAdapter implements codegen.OperandLowering[Value] by
// delegating every operand read to the Compiler's own evalOperand; it
// captures the first error so LowerTerminator's void-returning calls
// can still surface a lowering failure to compileBlock.
type operandAdapter struct {
	c   *Compiler
	err error
}

func (a *operandAdapter) Operand(op ir.Operand) Value {
	if a.err != nil {
		return Value{}
	}
	v, err := a.c.evalOperand(op)
	if err != nil {
		a.err = err
	}
	return v
}

func (a *operandAdapter) ReturnValue() (Value, bool) {
	ret := a.c.locals[ir.ReturnLocal]
	retLayout, err := a.c.lc.LayoutOf(a.c.body.ReturnTy())
	if err != nil {
		a.err = err
		return Value{}, false
	}
	if retLayout.IsZst() {
		return Value{}, false
	}
	if ret.Kind == ValueStackAddr {
		return a.c.Load(nil, ret, retLayout.Align.Abi, 0), true
	}
	return ret, true
}
