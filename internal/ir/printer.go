package ir

import (
	"fmt"
	"strconv"
	"strings"
)

// PrintPlace renders p using the projection convention spec.md §6.3
// documents: each projection wraps the accumulated expression so far,
// producing strings like "(((*_0).0)[_1] as variant#0)".
func PrintPlace(body *Body, p Place) string {
	s := fmt.Sprintf("_%d", p.Local)
	simple := true
	for _, proj := range p.Projections(body) {
		switch proj.Kind {
		case ProjDeref:
			if simple {
				s = "*" + s
			} else {
				s = "*(" + s + ")"
			}
		case ProjField:
			s = "(" + s + ")." + strconv.Itoa(proj.FieldIdx)
		case ProjIndex:
			s = "(" + s + ")[_" + strconv.Itoa(int(proj.IndexLocal)) + "]"
		case ProjConstantIndex:
			if proj.FromEnd {
				s = fmt.Sprintf("(%s)[-%d of %d]", s, proj.ConstantOffset, proj.MinLength)
			} else {
				s = fmt.Sprintf("(%s)[%d of %d]", s, proj.ConstantOffset, proj.MinLength)
			}
		case ProjSubSlice:
			s = fmt.Sprintf("(%s)[%d..%d]", s, proj.SubSliceFrom, proj.SubSliceTo)
		case ProjDowncast:
			s = fmt.Sprintf("(%s as variant#%d)", s, proj.Variant)
		}
		simple = false
	}
	return s
}

// PrintOperand renders an Operand.
func PrintOperand(body *Body, op Operand) string {
	if op.IsConst {
		return PrintConst(op.Const)
	}
	return PrintPlace(body, op.Place)
}

// PrintConst renders a Const.
func PrintConst(c Const) string {
	switch c.Kind {
	case ConstZero:
		return "const zero"
	case ConstScalar:
		return fmt.Sprintf("const %d", c.Bits)
	case ConstBytes:
		return fmt.Sprintf("const %q", c.Bytes)
	default:
		return "const ?"
	}
}

var binOpSymbols = map[BinOp]string{
	BinAdd: "+", BinSub: "-", BinMul: "*", BinDiv: "/", BinRem: "%",
	BinBitXor: "^", BinBitAnd: "&", BinBitOr: "|", BinShl: "<<", BinShr: ">>",
	BinEq: "==", BinLt: "<", BinLe: "<=", BinNe: "!=", BinGe: ">=", BinGt: ">",
	BinOffset: "offset",
}

// PrintRValue renders an RValue.
func PrintRValue(body *Body, v RValue) string {
	switch v.Kind {
	case RValueUse:
		return PrintOperand(body, v.Operand)
	case RValueUnaryOp:
		sym := map[UnaryOp]string{UnaryNot: "!", UnaryNeg: "-"}[v.UnOp]
		return fmt.Sprintf("%s%s", sym, PrintOperand(body, v.Operand))
	case RValueBinaryOp:
		return fmt.Sprintf("%s %s %s", PrintOperand(body, v.Lhs), binOpSymbols[v.BinOp], PrintOperand(body, v.Rhs))
	case RValueCheckedBinaryOp:
		return fmt.Sprintf("Checked(%s %s %s)", PrintOperand(body, v.Lhs), binOpSymbols[v.BinOp], PrintOperand(body, v.Rhs))
	case RValueCast:
		return fmt.Sprintf("%s as _", PrintOperand(body, v.Operand))
	case RValueLen:
		return fmt.Sprintf("Len(%s)", PrintPlace(body, v.LenPlace))
	case RValueRef:
		if v.RefMut == Mutable {
			return fmt.Sprintf("&mut %s", PrintPlace(body, v.RefPlace))
		}
		return fmt.Sprintf("&%s", PrintPlace(body, v.RefPlace))
	case RValueAggregate:
		elems := make([]string, len(v.Elements))
		for i, e := range v.Elements {
			elems[i] = PrintOperand(body, e)
		}
		switch v.Aggregate {
		case AggregateArray:
			return fmt.Sprintf("[%s]", strings.Join(elems, ", "))
		case AggregateEnum:
			return fmt.Sprintf("Enum#%d(%s)", v.Variant, strings.Join(elems, ", "))
		case AggregateSizedPointer:
			return fmt.Sprintf("SizedPointer(%s)", strings.Join(elems, ", "))
		default:
			return fmt.Sprintf("(%s)", strings.Join(elems, ", "))
		}
	case RValueRepeat:
		return fmt.Sprintf("[%s; %d]", PrintOperand(body, v.Operand), v.RepeatCount)
	case RValueDiscriminant:
		return fmt.Sprintf("discriminant(%s)", PrintPlace(body, v.DiscriminantPlace))
	case RValueConstOp:
		if v.ConstOp == ConstOpSizeOf {
			return "SizeOf(_)"
		}
		return "AlignOf(_)"
	default:
		return "?"
	}
}

// PrintStatement renders a Statement.
func PrintStatement(body *Body, s Statement) string {
	switch s.Kind {
	case StmtNop:
		return "nop"
	case StmtAssign:
		return fmt.Sprintf("%s = %s", PrintPlace(body, s.AssignPlace), PrintRValue(body, s.AssignValue))
	case StmtDiscriminate:
		return fmt.Sprintf("discriminant(%s) = %d", PrintPlace(body, s.DiscriminatePlace), s.DiscriminateVariant)
	case StmtLive:
		return fmt.Sprintf("StorageLive(_%d)", s.Local)
	case StmtDead:
		return fmt.Sprintf("StorageDead(_%d)", s.Local)
	default:
		return "?"
	}
}

// PrintTerminator renders a Terminator.
func PrintTerminator(body *Body, t Terminator) string {
	switch t.Kind {
	case TermGoto:
		return fmt.Sprintf("goto -> bb%d", t.GotoTarget)
	case TermReturn:
		return "return"
	case TermUnreachable:
		return "unreachable"
	case TermCall:
		args := make([]string, len(t.CallArgs))
		for i, a := range t.CallArgs {
			args[i] = PrintOperand(body, a)
		}
		if t.CallHasDest {
			return fmt.Sprintf("%s = %s(%s) -> bb%d", PrintPlace(body, t.CallDest), PrintOperand(body, t.CallFunc), strings.Join(args, ", "), t.CallTarget)
		}
		return fmt.Sprintf("%s(%s) -> !", PrintOperand(body, t.CallFunc), strings.Join(args, ", "))
	case TermSwitch:
		cases := make([]string, len(t.SwitchTargets.Values))
		for i, v := range t.SwitchTargets.Values {
			cases[i] = fmt.Sprintf("%d -> bb%d", v, t.SwitchTargets.Targets[i])
		}
		return fmt.Sprintf("switch(%s) [%s, otherwise -> bb%d]", PrintOperand(body, t.SwitchOn), strings.Join(cases, ", "), t.SwitchTargets.Default)
	case TermAssert:
		return fmt.Sprintf("assert(%s == %v, %q) -> bb%d", PrintOperand(body, t.AssertCond), t.AssertExpected, t.AssertPayload.Message(), t.AssertTarget)
	default:
		return "?"
	}
}

// Print renders the whole body in a Body.String()-style debug form,
// matching the fallback "print the IR when no textual assembly exists"
// path a code-generation driver reaches for when asked to dump
// intermediate state.
func Print(body *Body) string {
	var b strings.Builder
	fmt.Fprintf(&b, "fn %s {\n", body.Name)
	for i, l := range body.Locals {
		name := l.Name
		if name == "" {
			name = "_"
		}
		fmt.Fprintf(&b, "  let _%d: %s // %s\n", i, "ty", name)
	}
	for i, blk := range body.Blocks {
		fmt.Fprintf(&b, "  bb%d: {\n", i)
		for _, s := range blk.Statements {
			fmt.Fprintf(&b, "    %s;\n", PrintStatement(body, s))
		}
		fmt.Fprintf(&b, "    %s;\n", PrintTerminator(body, blk.Terminator))
		fmt.Fprintf(&b, "  }\n")
	}
	fmt.Fprintf(&b, "}\n")
	return b.String()
}

func (b *Body) String() string { return Print(b) }
