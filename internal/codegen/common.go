// Package codegen defines the backend-agnostic code-generation surface:
// a builder trait any backend implements, and the lowering logic (over
// operands, places, terminators, and call ABI marshalling) that drives
// it from an internal/ir.Body. Backends live in internal/backend/*.
package codegen

import "github.com/yrnehli/hashc-sub000/internal/ir"

// MemFlags are bit flags attached to a memory access, carried unchanged
// from spec.md §6.3.
type MemFlags uint8

const (
	MemFlagVolatile    MemFlags = 1
	MemFlagNonTemporal MemFlags = 2
	MemFlagUnaligned   MemFlags = 4
)

// PassMode describes how one function argument (or the return value)
// crosses the ABI boundary.
type PassMode int

const (
	PassIgnore  PassMode = iota // a ZST: passed as nothing
	PassDirect                  // a single scalar register
	PassPair                    // two scalar registers
	PassIndirect                // passed by pointer to caller-allocated memory
)

// ArgAbi describes the calling-convention treatment of one argument or
// the return value.
type ArgAbi struct {
	Ty   ir.TyId
	Mode PassMode
	// IndirectByVal distinguishes "indirect, callee may mutate in place"
	// (sret-style returns) from "indirect, read-only" (by-value aggregate
	// arguments too large for registers).
	IndirectByVal bool
}

// ReturnDestinationKind selects how a Call terminator's destination
// place is realized once the callee's ArgAbi is known.
type ReturnDestinationKind int

const (
	ReturnDestNothing  ReturnDestinationKind = iota // PassIgnore: no store needed
	ReturnDestStore                                 // PassDirect/PassPair: store returned register(s) to the place
	ReturnDestIndirect                              // PassIndirect: the place's address was already passed as the hidden sret arg
)

// ComputeFnReturnDestination decides how to materialize a call's return
// value into dest given the callee's return ABI (spec.md §4.F).
func ComputeFnReturnDestination(ret ArgAbi) ReturnDestinationKind {
	switch ret.Mode {
	case PassIgnore:
		return ReturnDestNothing
	case PassIndirect:
		return ReturnDestIndirect
	default:
		return ReturnDestStore
	}
}
