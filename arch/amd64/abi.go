// Package amd64 compiles a single hashc function (an *ir.Body, already
// lowered by internal/lower) directly to AMD64 machine code, the way
// arc-language-core-codegen's arch/amd64 package compiled core-builder
// IR. Every value spills to its own rbp-relative stack slot rather than
// being register-allocated — the same "naive, always-spill" codegen
// style the teacher used — since this is the reference native backend,
// not a production-quality optimizing one (internal/backend/llvmgen
// exists for that).
package amd64

import (
	"github.com/yrnehli/hashc-sub000/internal/codegen"
	"github.com/yrnehli/hashc-sub000/internal/layout"
)

// ParamClass classifies an argument for the System V AMD64 calling
// convention: which register file it is passed in, if any.
type ParamClass int

const (
	ParamInteger ParamClass = iota
	ParamSSE
	ParamMemory
)

// ClassifyParameter picks a ParamClass from a value's layout. This is a
// SysV-specific register-file concern internal/codegen's ArgAbi
// deliberately does not model (PassDirect says "one register", not
// "which register file"), so the native backend still needs its own
// classification layered on top of codegen.ClassifyArg.
func ClassifyParameter(l *layout.Layout) ParamClass {
	if l.Size > 16 {
		return ParamMemory
	}
	if l.Abi == layout.AbiScalar && l.Scalar.Kind == layout.ScalarFloat {
		return ParamSSE
	}
	return ParamInteger
}

// intArgRegs and sseArgRegs are the System V AMD64 argument registers in
// order.
var intArgRegs = []int{RDI, RSI, RDX, RCX, R8, R9}
var sseArgRegs = []int{0, 1, 2, 3, 4, 5, 6, 7} // xmm0..xmm7

// argAbiToParamClass derives the ParamClass the native backend needs
// from an already-computed codegen.ArgAbi plus the argument's own
// layout, so callers that already went through internal/codegen's
// backend-agnostic classification don't redo layout lookups.
func argAbiToParamClass(abi codegen.ArgAbi, l *layout.Layout) ParamClass {
	if abi.Mode == codegen.PassIndirect {
		return ParamMemory
	}
	return ClassifyParameter(l)
}
