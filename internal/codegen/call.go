package codegen

// FnAbi describes the full calling convention of one function: its
// return value's ArgAbi and each parameter's ArgAbi in order, the unit
// that ComputeFnReturnDestination / CodegenFnArgument / StoreReturnValue
// consult (spec.md §4.F).
type FnAbi struct {
	Ret    ArgAbi
	Params []ArgAbi
}

// CodegenFnArgument marshals one already-computed operand value/place
// according to its ArgAbi into the flattened register-list a call
// instruction expects, appending to out.
//
//   - PassIgnore contributes nothing.
//   - PassDirect contributes the single immediate value.
//   - PassPair contributes both halves of a ScalarPair operand in order.
//   - PassIndirect contributes the address of a Ref-kind operand
//     directly (the value must already live in memory; a caller holding
//     an Immediate/Pair for a PassIndirect argument is a bug upstream of
//     this function, not something it recovers from).
func CodegenFnArgument[V any](abi ArgAbi, operand OperandValue[V], out []V) []V {
	switch abi.Mode {
	case PassIgnore:
		return out
	case PassDirect:
		return append(out, operand.Value1)
	case PassPair:
		return append(out, operand.Value1, operand.Value2)
	case PassIndirect:
		return append(out, operand.Value1) // Value1 holds the address for a Ref-kind operand
	default:
		panic("codegen: unknown pass mode")
	}
}

// StoreReturnValue writes a call's returned register(s) into dest,
// according to the callee's return ArgAbi and the ReturnDestinationKind
// ComputeFnReturnDestination already decided for it.
func StoreReturnValue[V any](b BlockBuilderMethods[V], dest PlaceRef[V], abi ArgAbi, destKind ReturnDestinationKind, returned OperandValue[V]) {
	switch destKind {
	case ReturnDestNothing, ReturnDestIndirect:
		// Nothing: an ignored return has no value; an indirect return was
		// already written in place by the callee through the sret pointer
		// passed as dest.Addr, so there is nothing left to store here.
		return
	case ReturnDestStore:
		switch abi.Mode {
		case PassDirect:
			b.Store(returned.Value1, dest.Addr, dest.Layout.Align.Abi, 0)
		case PassPair:
			b.Store(returned.Value1, dest.Addr, dest.Layout.Align.Abi, 0)
			second := b.InboundsGEP(dest.Addr, dest.Layout.Offset2)
			b.Store(returned.Value2, second, dest.Layout.Align.Abi, 0)
		}
	}
}
