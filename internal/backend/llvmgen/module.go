package llvmgen

import (
	"fmt"

	"github.com/llir/llvm/ir"
	"github.com/llir/llvm/ir/types"
	"github.com/llir/llvm/ir/value"

	"github.com/yrnehli/hashc-sub000/internal/codegen"
	hashir "github.com/yrnehli/hashc-sub000/internal/ir"
	"github.com/yrnehli/hashc-sub000/internal/layout"
)

// CompileModule lowers every body to one llir/llvm function inside a
// single *ir.Module: the whole-program driver loop arch/amd64's
// compiler.go/body.go play for the native backend, just never written
// down for this one. Every local, argument or temporary alike, gets an
// alloca in its function's entry block up front and is addressed by
// that pointer for the rest of its lifetime — the ordinary -O0
// alloca-everything shape real LLVM frontends emit before a later
// mem2reg pass cleans it up, which llc/opt can run on this output same
// as any other.
func CompileModule(lc *layout.Ctx, bodies []*hashir.Body) (*ir.Module, error) {
	m := ir.NewModule()
	for _, body := range bodies {
		if err := compileOneFunc(lc, m, body); err != nil {
			return nil, fmt.Errorf("llvmgen: in function %q: %w", body.Name, err)
		}
	}
	return m, nil
}

// backendTypeOf calls Builder.BackendType without needing a real,
// in-progress function: the method only ever consults l, never b's own
// fields, so a zero-value Builder is a safe stand-in when picking a
// function's llir signature before its Builder exists.
func backendTypeOf(l *layout.Layout) types.Type {
	var zero Builder
	t, _ := zero.BackendType(0, l).(types.Type)
	if t == nil {
		return types.I64
	}
	return t
}

func compileOneFunc(lc *layout.Ctx, m *ir.Module, body *hashir.Body) error {
	paramTys := make([]hashir.TyId, body.NumArgs)
	for i := 0; i < body.NumArgs; i++ {
		paramTys[i] = body.LocalTy(hashir.LocalId(i + 1))
	}
	fnAbi, err := codegen.ComputeFnAbi(lc, paramTys, body.ReturnTy())
	if err != nil {
		return err
	}

	llParams := make([]*ir.Param, body.NumArgs)
	for i, ty := range paramTys {
		l, err := lc.LayoutOf(ty)
		if err != nil {
			return err
		}
		llParams[i] = ir.NewParam(fmt.Sprintf("a%d", i), backendTypeOf(l))
	}

	retLayout, err := lc.LayoutOf(body.ReturnTy())
	if err != nil {
		return err
	}
	retTy := backendTypeOf(retLayout)
	if fnAbi.Ret.Mode == codegen.PassIndirect {
		// The hidden sret pointer is folded into the argument list below,
		// the same System V convention arch/amd64's bindArguments applies.
		retTy = types.Void
		llParams = append([]*ir.Param{ir.NewParam("sret", types.NewPointer(backendTypeOf(retLayout)))}, llParams...)
	}

	b := NewBuilder(m, body.Name, llParams, retTy)

	fc := &funcCompiler{lc: lc, body: body, b: b, marks: make([]*ir.Block, len(body.Blocks)), locals: make(map[hashir.LocalId]value.Value)}
	for i := range body.Blocks {
		fc.marks[i] = b.Func.NewBlock(fmt.Sprintf("bb%d", i))
	}
	b.Block = fc.marks[0]

	if err := fc.bindLocals(fnAbi, llParams); err != nil {
		return err
	}
	for i, blk := range body.Blocks {
		b.Block = fc.marks[i]
		if err := fc.compileBlock(hashir.BasicBlockId(i), &blk); err != nil {
			return fmt.Errorf("block %d: %w", i, err)
		}
	}
	return nil
}

// funcCompiler walks one *ir.Body's blocks, driving b (a fresh Builder)
// through internal/codegen's shared place-projection and
// terminator-lowering helpers the same way arch/amd64's per-body walk
// does, just against value.Value addresses instead of stack offsets.
type funcCompiler struct {
	lc     *layout.Ctx
	body   *hashir.Body
	b      *Builder
	marks  []*ir.Block
	locals map[hashir.LocalId]value.Value // every local's alloca'd address
}

// bindLocals allocas every local up front (arguments, the return slot,
// and every lowering-introduced temporary alike) and stores each
// incoming parameter's value into its local's slot.
func (fc *funcCompiler) bindLocals(fnAbi codegen.FnAbi, llParams []*ir.Param) error {
	argOffset := 0
	if fnAbi.Ret.Mode == codegen.PassIndirect {
		fc.locals[hashir.ReturnLocal] = llParams[0]
		argOffset = 1
	}
	for i := 0; i < len(fc.body.Locals); i++ {
		local := hashir.LocalId(i)
		if local == hashir.ReturnLocal && fnAbi.Ret.Mode == codegen.PassIndirect {
			continue
		}
		l, err := fc.lc.LayoutOf(fc.body.LocalTy(local))
		if err != nil {
			return err
		}
		fc.locals[local] = fc.b.Alloca(backendTypeOf(l), l.Align.Abi)
	}
	for i := 0; i < fc.body.NumArgs; i++ {
		local := hashir.LocalId(i + 1)
		fc.b.Store(llParams[i+argOffset], fc.locals[local], 8, 0)
	}
	return nil
}

func (fc *funcCompiler) evalPlace(p hashir.Place) (codegen.PlaceRef[value.Value], error) {
	addr, ok := fc.locals[p.Local]
	if !ok {
		return codegen.PlaceRef[value.Value]{}, fmt.Errorf("llvmgen: local %d has no allocated slot", p.Local)
	}
	ty := fc.body.LocalTy(p.Local)
	l, err := fc.lc.LayoutOf(ty)
	if err != nil {
		return codegen.PlaceRef[value.Value]{}, err
	}
	ref := codegen.PlaceRef[value.Value]{Addr: addr, Ty: ty, Layout: l}

	for _, proj := range p.Projections(fc.body) {
		switch proj.Kind {
		case hashir.ProjDeref:
			pointee := fc.lc.TyOf(ref.Ty).RefPointee
			pl, err := fc.lc.LayoutOf(pointee)
			if err != nil {
				return codegen.PlaceRef[value.Value]{}, err
			}
			addr := fc.b.Load(backendTypeOf(pl), ref.Addr, 8, 0)
			ref = codegen.PlaceRef[value.Value]{Addr: addr, Ty: pointee, Layout: pl}

		case hashir.ProjField:
			fl, err := fc.lc.LayoutOf(proj.FieldTy)
			if err != nil {
				return codegen.PlaceRef[value.Value]{}, err
			}
			ref = codegen.Field(fc.b, ref, proj.FieldIdx, proj.FieldTy, fl)

		case hashir.ProjIndex:
			elemTy := fc.lc.TyOf(ref.Ty).ArrayElem
			el, err := fc.lc.LayoutOf(elemTy)
			if err != nil {
				return codegen.PlaceRef[value.Value]{}, err
			}
			idxAddr := fc.locals[proj.IndexLocal]
			idxVal := fc.b.Load(types.I64, idxAddr, 8, 0)
			ref = codegen.Index(fc.b, ref, idxVal, elemTy, el)

		case hashir.ProjConstantIndex:
			elemTy := fc.lc.TyOf(ref.Ty).ArrayElem
			el, err := fc.lc.LayoutOf(elemTy)
			if err != nil {
				return codegen.PlaceRef[value.Value]{}, err
			}
			ref = codegen.ConstantIndex(fc.b, ref, proj.ConstantOffset, proj.FromEnd, proj.MinLength, elemTy, el)

		case hashir.ProjSubSlice:
			ref = codegen.PlaceRef[value.Value]{
				Addr:   fc.b.InboundsGEP(ref.Addr, ref.Layout.Fields.Stride*proj.SubSliceFrom),
				Ty:     ref.Ty,
				Layout: ref.Layout,
			}

		case hashir.ProjDowncast:
			ref = codegen.Downcast(ref, proj.Variant, ref.Ty)

		default:
			return codegen.PlaceRef[value.Value]{}, fmt.Errorf("llvmgen: unhandled place projection kind %v", proj.Kind)
		}
	}
	return ref, nil
}

func (fc *funcCompiler) evalOperand(op hashir.Operand) (value.Value, error) {
	if op.IsConst {
		return fc.evalConst(op.Const), nil
	}
	ref, err := fc.evalPlace(op.Place)
	if err != nil {
		return nil, err
	}
	if ref.Layout.IsZst() {
		return fc.b.ConstZero(backendTypeOf(ref.Layout)), nil
	}
	return fc.b.Load(backendTypeOf(ref.Layout), ref.Addr, ref.Layout.Align.Abi, 0), nil
}

func (fc *funcCompiler) evalConst(k hashir.Const) value.Value {
	switch k.Kind {
	case hashir.ConstScalar:
		return fc.b.ConstInt(types.NewInt(64), k.Bits)
	case hashir.ConstBytes:
		return fc.b.ConstBytes(k.Bytes)
	default:
		return fc.b.ConstZero(types.I64)
	}
}

func (fc *funcCompiler) evalRValueInto(dest codegen.PlaceRef[value.Value], rv hashir.RValue) error {
	switch rv.Kind {
	case hashir.RValueUse:
		v, err := fc.evalOperand(rv.Operand)
		if err != nil {
			return err
		}
		fc.b.Store(v, dest.Addr, dest.Layout.Align.Abi, 0)

	case hashir.RValueUnaryOp:
		v, err := fc.evalOperand(rv.Operand)
		if err != nil {
			return err
		}
		fc.b.Store(fc.b.UnOp(rv.UnOp, v, nil), dest.Addr, dest.Layout.Align.Abi, 0)

	case hashir.RValueBinaryOp:
		lhs, err := fc.evalOperand(rv.Lhs)
		if err != nil {
			return err
		}
		rhs, err := fc.evalOperand(rv.Rhs)
		if err != nil {
			return err
		}
		var result value.Value
		if rv.BinOp.IsComparison() {
			result = fc.b.ICmp(rv.BinOp, lhs, rhs)
		} else {
			result = fc.b.BinOp(rv.BinOp, lhs, rhs, nil)
		}
		fc.b.Store(result, dest.Addr, dest.Layout.Align.Abi, 0)

	case hashir.RValueCheckedBinaryOp:
		lhs, err := fc.evalOperand(rv.Lhs)
		if err != nil {
			return err
		}
		rhs, err := fc.evalOperand(rv.Rhs)
		if err != nil {
			return err
		}
		result, overflowed := fc.b.CheckedBinOp(rv.BinOp, lhs, rhs, nil)
		fc.b.Store(result, dest.Addr, dest.Layout.Align.Abi, 0)
		overflowAddr := fc.b.InboundsGEP(dest.Addr, dest.Layout.Offset2)
		fc.b.Store(overflowed, overflowAddr, 1, 0)

	case hashir.RValueCast:
		v, err := fc.evalOperand(rv.Operand)
		if err != nil {
			return err
		}
		fc.b.Store(fc.b.Cast(rv.CastKind, v, nil, backendTypeOf(dest.Layout)), dest.Addr, dest.Layout.Align.Abi, 0)

	case hashir.RValueLen:
		srcTy := fc.body.LocalTy(rv.LenPlace.Local)
		t := fc.lc.TyOf(srcTy)
		if t.Kind == hashir.TyArray {
			fc.b.Store(fc.b.ConstInt(types.I64, t.ArrayLength), dest.Addr, dest.Layout.Align.Abi, 0)
			break
		}
		src, err := fc.evalPlace(rv.LenPlace)
		if err != nil {
			return err
		}
		lenAddr := fc.b.InboundsGEP(src.Addr, src.Layout.Offset2)
		fc.b.Store(fc.b.Load(types.I64, lenAddr, 8, 0), dest.Addr, dest.Layout.Align.Abi, 0)

	case hashir.RValueRef:
		src, err := fc.evalPlace(rv.RefPlace)
		if err != nil {
			return err
		}
		fc.b.Store(src.Addr, dest.Addr, dest.Layout.Align.Abi, 0)

	case hashir.RValueAggregate:
		return fc.evalAggregateInto(dest, rv)

	case hashir.RValueRepeat:
		v, err := fc.evalOperand(rv.Operand)
		if err != nil {
			return err
		}
		for i := uint64(0); i < rv.RepeatCount; i++ {
			elemAddr := fc.b.InboundsGEP(dest.Addr, dest.Layout.Fields.Stride*i)
			fc.b.Store(v, elemAddr, dest.Layout.Align.Abi, 0)
		}

	case hashir.RValueDiscriminant:
		src, err := fc.evalPlace(rv.DiscriminantPlace)
		if err != nil {
			return err
		}
		if src.Layout.Variants.Kind == layout.VariantsSingle {
			fc.b.Store(fc.b.ConstInt(types.I64, uint64(src.Layout.Variants.VariantIndex)), dest.Addr, dest.Layout.Align.Abi, 0)
			break
		}
		fc.b.Store(fc.b.Load(types.I64, src.Addr, 8, 0), dest.Addr, dest.Layout.Align.Abi, 0)

	case hashir.RValueConstOp:
		opLayout, err := fc.lc.LayoutOf(rv.ConstOpTy)
		if err != nil {
			return err
		}
		val := opLayout.Size
		if rv.ConstOp == hashir.ConstOpAlignOf {
			val = opLayout.Align.Abi
		}
		fc.b.Store(fc.b.ConstInt(types.I64, val), dest.Addr, dest.Layout.Align.Abi, 0)

	default:
		return fmt.Errorf("llvmgen: unhandled rvalue kind %v", rv.Kind)
	}
	return nil
}

func (fc *funcCompiler) evalAggregateInto(dest codegen.PlaceRef[value.Value], rv hashir.RValue) error {
	variantLayout := dest.Layout
	if rv.Aggregate == hashir.AggregateEnum {
		variantLayout = dest.Layout.Variants.Variants[rv.Variant]
		fc.b.Store(fc.b.ConstInt(types.NewInt(dest.Layout.Variants.Tag.Width*8), uint64(rv.Variant)), dest.Addr, dest.Layout.Variants.Tag.Width, 0)
	}
	for i, elem := range rv.Elements {
		v, err := fc.evalOperand(elem)
		if err != nil {
			return err
		}
		off := variantLayout.FieldOffset(i)
		addr := fc.b.InboundsGEP(dest.Addr, off)
		fc.b.Store(v, addr, 8, 0)
	}
	return nil
}

func (fc *funcCompiler) compileBlock(id hashir.BasicBlockId, blk *hashir.BasicBlockData) error {
	for _, stmt := range blk.Statements {
		if err := fc.execStatement(stmt); err != nil {
			return err
		}
	}
	resolve := func(target hashir.BasicBlockId) codegen.BlockRef { return fc.marks[target] }
	ops := &llvmOperandAdapter{fc: fc}
	codegen.LowerTerminator[value.Value](fc.b, ops, resolve, blk.Terminator)
	return ops.err
}

func (fc *funcCompiler) execStatement(s hashir.Statement) error {
	switch s.Kind {
	case hashir.StmtNop, hashir.StmtLive, hashir.StmtDead:
		return nil
	case hashir.StmtAssign:
		dest, err := fc.evalPlace(s.AssignPlace)
		if err != nil {
			return err
		}
		return fc.evalRValueInto(dest, s.AssignValue)
	case hashir.StmtDiscriminate:
		dest, err := fc.evalPlace(s.DiscriminatePlace)
		if err != nil {
			return err
		}
		fc.b.Store(fc.b.ConstInt(types.NewInt(dest.Layout.Variants.Tag.Width*8), uint64(s.DiscriminateVariant)), dest.Addr, dest.Layout.Variants.Tag.Width, 0)
		return nil
	default:
		return fmt.Errorf("llvmgen: unhandled statement kind %v", s.Kind)
	}
}

// llvmOperandAdapter implements codegen.OperandLowering[value.Value] the
// same way arch/amd64/body.go's operandAdapter does: delegate to the
// funcCompiler's own evalOperand, latching the first error so
// LowerTerminator's void-returning calls can still surface a failure.
type llvmOperandAdapter struct {
	fc  *funcCompiler
	err error
}

func (a *llvmOperandAdapter) Operand(op hashir.Operand) value.Value {
	if a.err != nil {
		return nil
	}
	v, err := a.fc.evalOperand(op)
	if err != nil {
		a.err = err
	}
	return v
}

func (a *llvmOperandAdapter) ReturnValue() (value.Value, bool) {
	retLayout, err := a.fc.lc.LayoutOf(a.fc.body.ReturnTy())
	if err != nil {
		a.err = err
		return nil, false
	}
	if retLayout.IsZst() {
		return nil, false
	}
	if addr, ok := a.fc.locals[hashir.ReturnLocal]; ok {
		if _, indirect := addr.(*ir.Param); indirect {
			return nil, false
		}
		return a.fc.b.Load(backendTypeOf(retLayout), addr, retLayout.Align.Abi, 0), true
	}
	return nil, false
}
