package amd64

import (
	"fmt"

	"github.com/yrnehli/hashc-sub000/internal/codegen"
	"github.com/yrnehli/hashc-sub000/internal/ir"
	"github.com/yrnehli/hashc-sub000/internal/layout"
)

// ValueKind distinguishes the three shapes a Value can take in this
// naive, always-spill backend: a compile-time-known stack address (the
// result of Alloca, or of GEP-folding a constant offset into one), a
// runtime value materialized into its own stack slot, and an
// immediate that has not yet been materialized into any register.
type ValueKind int

const (
	ValueStackAddr ValueKind = iota
	ValueSlot
	ValueImm
)

// Value is this backend's BlockBuilderMethods value type. Every
// instruction that "produces a value" spills its result to a fresh
// stack slot rather than keeping it in a register across instructions —
// the same style arc-language-core-codegen's compiler.go used (alloc a
// slot per SSA value, reload on every use). This trades performance for
// a one-pass, no-register-allocator implementation appropriate for a
// reference backend.
type Value struct {
	Kind   ValueKind
	Offset int    // ValueStackAddr | ValueSlot: rbp-relative byte offset
	Imm    uint64 // ValueImm
}

// SymbolDef and Artifact mirror the teacher's own output shape: a
// relocatable function body plus the symbol/relocation table format/elf
// needs to build an object file.
type SymbolDef struct {
	Name   string
	Offset uint64
	Size   uint64
	IsFunc bool
}

type Artifact struct {
	TextBuffer  []byte
	Symbols     []SymbolDef
	Relocations []Relocation
}

// Compiler implements codegen.BlockBuilderMethods[Value] for one
// function at a time (spec.md §4.F/§4.G: one BlockBuilderMethods value
// builds one function's blocks).
type Compiler struct {
	emitter
	lc       *layout.Ctx
	body     *ir.Body
	frameLen int // current total stack frame size, grows as slots are allocated

	subRspPatchOffset int // text offset of the prologue's `sub rsp, imm32` operand

	marks  []*blockMark // one per ir.BasicBlockId, in order
	locals map[ir.LocalId]Value
}

var _ codegen.BlockBuilderMethods[Value] = (*Compiler)(nil)

// CompileBody compiles one lowered function body to AMD64 machine code.
// fnAbi gives the return value's and each argument's classification, as
// already computed by internal/codegen.ComputeFnAbi.
func CompileBody(lc *layout.Ctx, body *ir.Body, fnAbi codegen.FnAbi) (*Artifact, error) {
	c := &Compiler{lc: lc, body: body, locals: make(map[ir.LocalId]Value)}

	c.emitProloguePlaceholder()
	if err := c.bindArguments(fnAbi); err != nil {
		return nil, fmt.Errorf("amd64: in function %q: %w", body.Name, err)
	}

	c.marks = make([]*blockMark, len(body.Blocks))
	for i := range body.Blocks {
		c.marks[i] = &blockMark{Offset: -1}
	}

	for i, blk := range body.Blocks {
		c.marks[i].Offset = c.offset()
		if err := c.compileBlock(ir.BasicBlockId(i), &blk); err != nil {
			return nil, fmt.Errorf("amd64: in function %q block %d: %w", body.Name, i, err)
		}
	}

	c.applyFixups()
	c.patchFrameSize()

	return &Artifact{
		TextBuffer:  c.text.Bytes(),
		Relocations: c.relocations,
		Symbols: []SymbolDef{{
			Name:   body.Name,
			Offset: 0,
			Size:   uint64(c.text.Len()),
			IsFunc: true,
		}},
	}, nil
}

// emitProloguePlaceholder emits `push rbp; mov rbp, rsp; sub rsp, imm32`
// with a placeholder immediate, patched by patchFrameSize once every
// local's stack slot has been allocated — the frame size isn't known
// until the whole function has been walked once.
func (c *Compiler) emitProloguePlaceholder() {
	c.emitBytes(0x55)             // push rbp
	c.emitBytes(0x48, 0x89, 0xE5) // mov rbp, rsp
	c.emitBytes(0x48, 0x81, 0xEC) // sub rsp, imm32
	c.subRspPatchOffset = c.offset()
	c.emitUint32(0)
}

func (c *Compiler) patchFrameSize() {
	frame := c.frameLen
	if frame%16 != 0 {
		frame += 16 - frame%16
	}
	buf := c.text.Bytes()
	putUint32LE(buf[c.subRspPatchOffset:], uint32(frame))
}

func putUint32LE(b []byte, v uint32) {
	b[0] = byte(v)
	b[1] = byte(v >> 8)
	b[2] = byte(v >> 16)
	b[3] = byte(v >> 24)
}

// allocSlot reserves size bytes (minimum 8, System-V-aligned) of new
// stack space and returns its rbp-relative offset.
func (c *Compiler) allocSlot(size uint64) int {
	if size < 8 {
		size = 8
	}
	if size%8 != 0 {
		size += 8 - size%8
	}
	c.frameLen += int(size)
	return -c.frameLen
}

// bindArguments allocates a stack slot for every local (the return place
// and the arguments first, then every other local the body declares) and
// emits the incoming-register save the System V calling convention
// requires for the first six arguments.
func (c *Compiler) bindArguments(fnAbi codegen.FnAbi) error {
	retLayout, err := c.lc.LayoutOf(c.body.ReturnTy())
	if err != nil {
		return err
	}
	if fnAbi.Ret.Mode == codegen.PassIndirect {
		// Hidden sret pointer arrives in RDI; local 0's "address" is that
		// pointer value itself, not a freshly allocated local slot.
		slot := c.allocSlot(8)
		c.storeToStack(RDI, slot)
		c.locals[ir.ReturnLocal] = Value{Kind: ValueSlot, Offset: slot}
	} else {
		slot := c.allocSlot(retLayout.Size)
		c.locals[ir.ReturnLocal] = Value{Kind: ValueStackAddr, Offset: slot}
	}

	intArgs, sseArgs := 0, 0
	stackArgOffset := 16
	for i := 0; i < c.body.NumArgs; i++ {
		local := ir.LocalId(i + 1)
		ty := c.body.LocalTy(local)
		l, err := c.lc.LayoutOf(ty)
		if err != nil {
			return err
		}
		slot := c.allocSlot(l.Size)
		c.locals[local] = Value{Kind: ValueStackAddr, Offset: slot}

		class := argAbiToParamClass(fnAbi.Params[i], l)
		switch class {
		case ParamSSE:
			if sseArgs < len(sseArgRegs) {
				// xmm-register args are not modelled in this reference
				// backend's encoder (no SSE move helpers yet); fall
				// through to the integer-register path, matching how the
				// teacher's own loadConstFloat notes "for now" shortcuts.
				sseArgs++
			}
			fallthrough
		case ParamInteger:
			if intArgs < len(intArgRegs) {
				c.storeToStack(intArgRegs[intArgs], slot)
				intArgs++
				continue
			}
			fallthrough
		case ParamMemory:
			c.loadFromStack(RAX, stackArgOffset) // caller's frame, positive rbp offset
			c.storeToStack(RAX, slot)
			stackArgOffset += 8
		}
	}

	// Every local beyond the arguments (user `let`s and lowering-introduced
	// temporaries, internal/lower's newTemp) still needs its own slot before
	// the first block runs, since evalPlace never allocates on demand.
	for i := c.body.NumArgs + 1; i < len(c.body.Locals); i++ {
		local := ir.LocalId(i)
		l, err := c.lc.LayoutOf(c.body.LocalTy(local))
		if err != nil {
			return err
		}
		c.locals[local] = Value{Kind: ValueStackAddr, Offset: c.allocSlot(l.Size)}
	}
	return nil
}

// --- type construction ---

func (c *Compiler) BackendType(ty ir.TyId, l *layout.Layout) any { return l }
func (c *Compiler) ScalarPairType(a, b layout.Scalar) any          { return nil }

// --- constants ---

func (c *Compiler) ConstInt(t any, bits uint64) Value  { return Value{Kind: ValueImm, Imm: bits} }
func (c *Compiler) ConstFloat(t any, bits uint64) Value { return Value{Kind: ValueImm, Imm: bits} }
func (c *Compiler) ConstBytes(data []byte) Value {
	// Placeholder representation for a direct symbol/function reference
	// (see internal/lower's lowerListInit doc comment): there is no
	// dedicated symbol-operand kind yet, so a malloc-style call target
	// lowers to an unresolved zero immediate here; Call ignores it, emits
	// a zero call displacement, and records no relocation for the name.
	return Value{Kind: ValueImm, Imm: 0}
}
func (c *Compiler) ConstZero(t any) Value  { return Value{Kind: ValueImm, Imm: 0} }
func (c *Compiler) ConstUndef(t any) Value { return Value{Kind: ValueImm, Imm: 0} }

// --- memory ---

func (c *Compiler) Alloca(t any, align uint64) Value {
	l, _ := t.(*layout.Layout)
	size := uint64(8)
	if l != nil {
		size = l.Size
	}
	return Value{Kind: ValueStackAddr, Offset: c.allocSlot(size)}
}

// materialize loads v into reg, handling all three Value kinds.
func (c *Compiler) materialize(reg int, v Value) {
	switch v.Kind {
	case ValueImm:
		c.loadConstInt(reg, v.Imm)
	case ValueStackAddr:
		c.leaStack(reg, v.Offset)
	case ValueSlot:
		c.loadFromStack(reg, v.Offset)
	}
}

func (c *Compiler) Load(t any, addr Value, align uint64, flags codegen.MemFlags) Value {
	switch addr.Kind {
	case ValueStackAddr:
		c.loadFromStack(RAX, addr.Offset)
	default:
		c.materialize(RCX, addr)
		c.loadIndirect(RAX, RCX)
	}
	slot := c.allocSlot(8)
	c.storeToStack(RAX, slot)
	return Value{Kind: ValueSlot, Offset: slot}
}

func (c *Compiler) Store(val, addr Value, align uint64, flags codegen.MemFlags) Value {
	c.materialize(RAX, val)
	switch addr.Kind {
	case ValueStackAddr:
		c.storeToStack(RAX, addr.Offset)
	default:
		c.materialize(RCX, addr)
		c.storeIndirect(RCX, RAX)
	}
	return val
}

// InboundsGEP folds a compile-time-known byte offset directly into a
// ValueStackAddr (no instructions needed); a runtime pointer value gets
// a real `add` and a fresh slot.
func (c *Compiler) InboundsGEP(base Value, byteOffset uint64) Value {
	if byteOffset == 0 {
		return base
	}
	if base.Kind == ValueStackAddr {
		return Value{Kind: ValueStackAddr, Offset: base.Offset + int(byteOffset)}
	}
	c.materialize(RAX, base)
	c.addImm32(RAX, int32(byteOffset))
	slot := c.allocSlot(8)
	c.storeToStack(RAX, slot)
	return Value{Kind: ValueSlot, Offset: slot}
}

func (c *Compiler) InboundsGEPIndexed(base, index Value, stride uint64) Value {
	c.materialize(RAX, base)
	c.materialize(RCX, index)
	c.imulImm32(RCX, int32(stride))
	r, rcxLow, raxLow := rex(true, RCX, RAX)
	c.emitBytes(r, 0x01, byte(0xC0|(rcxLow<<3)|raxLow)) // add rax, rcx
	slot := c.allocSlot(8)
	c.storeToStack(RAX, slot)
	return Value{Kind: ValueSlot, Offset: slot}
}

func (c *Compiler) Memcpy(dst, src Value, size uint64, align uint64, flags codegen.MemFlags) {
	// rep movsb: rdi=dst, rsi=src, rcx=size
	c.materialize(RDI, dst)
	c.materialize(RSI, src)
	c.loadConstInt(RCX, size)
	c.emitBytes(0xF3, 0xA4) // rep movsb
}

// --- arithmetic / comparison ---

var binOpcodes = map[ir.BinOp]byte{
	ir.BinAdd:    0x01,
	ir.BinSub:    0x29,
	ir.BinBitAnd: 0x21,
	ir.BinBitOr:  0x09,
	ir.BinBitXor: 0x31,
}

func (c *Compiler) BinOp(op ir.BinOp, lhs, rhs Value, ty any) Value {
	c.materialize(RAX, lhs)
	c.materialize(RCX, rhs)
	switch op {
	case ir.BinMul:
		c.emitBytes(0x48, 0x0F, 0xAF, 0xC1) // imul rax, rcx
	case ir.BinDiv, ir.BinRem:
		c.emitBytes(0x48, 0x99)       // cqo
		c.emitBytes(0x48, 0xF7, 0xF9) // idiv rcx
		if op == ir.BinRem {
			slot := c.allocSlot(8)
			c.storeToStack(RDX, slot)
			return Value{Kind: ValueSlot, Offset: slot}
		}
	case ir.BinShl:
		c.emitBytes(0x48, 0xD3, 0xE0) // shl rax, cl
	case ir.BinShr:
		c.emitBytes(0x48, 0xD3, 0xF8) // sar rax, cl
	default:
		if opcode, ok := binOpcodes[op]; ok {
			c.emitBytes(0x48, opcode, 0xC8) // op rax, rcx
		} else if op.IsComparison() {
			return c.icmpValue(op)
		} else {
			panic(fmt.Sprintf("amd64: unhandled BinOp %v", op))
		}
	}
	slot := c.allocSlot(8)
	c.storeToStack(RAX, slot)
	return Value{Kind: ValueSlot, Offset: slot}
}

// CheckedBinOp emits the arithmetic then SETO to capture the overflow
// flag, matching the pairing internal/ir's CheckedBinaryOp/Assert
// terminator expects.
func (c *Compiler) CheckedBinOp(op ir.BinOp, lhs, rhs Value, ty any) (Value, Value) {
	result := c.BinOp(op, lhs, rhs, ty)
	c.emitBytes(0x0F, 0x90, 0xC0)       // seto al
	c.emitBytes(0x48, 0x0F, 0xB6, 0xC0) // movzx rax, al
	overflowSlot := c.allocSlot(8)
	c.storeToStack(RAX, overflowSlot)
	return result, Value{Kind: ValueSlot, Offset: overflowSlot}
}

func (c *Compiler) UnOp(op ir.UnaryOp, operand Value, ty any) Value {
	c.materialize(RAX, operand)
	switch op {
	case ir.UnaryNeg:
		c.emitBytes(0x48, 0xF7, 0xD8) // neg rax
	case ir.UnaryNot:
		c.emitBytes(0x48, 0xF7, 0xD0) // not rax
	}
	slot := c.allocSlot(8)
	c.storeToStack(RAX, slot)
	return Value{Kind: ValueSlot, Offset: slot}
}

var cmpSetcc = map[ir.BinOp]byte{
	ir.BinEq: setccEqual,
	ir.BinNe: setccNotEqual,
	ir.BinLt: setccLess,
	ir.BinLe: setccLessEqual,
	ir.BinGt: setccGreater,
	ir.BinGe: setccGreaterEqual,
}

func (c *Compiler) icmpValue(op ir.BinOp) Value {
	c.emitBytes(0x48, 0x39, 0xC8) // cmp rax, rcx
	c.setccAl(cmpSetcc[op])
	slot := c.allocSlot(8)
	c.storeToStack(RAX, slot)
	return Value{Kind: ValueSlot, Offset: slot}
}

func (c *Compiler) ICmp(op ir.BinOp, lhs, rhs Value) Value {
	c.materialize(RAX, lhs)
	c.materialize(RCX, rhs)
	return c.icmpValue(op)
}

// Cast elides actual truncation/extension: every scalar is carried as a
// 64-bit slot value in this reference backend, the same simplification
// arc-language-core-codegen's own castOp documented ("naive ... assuming
// implicit truncation/extension via 64-bit registers").
func (c *Compiler) Cast(kind ir.CastKind, val Value, from, to any) Value {
	return val
}

// --- control flow ---

func (c *Compiler) Br(target codegen.BlockRef) {
	c.jmpRel32(target.(*blockMark))
}

func (c *Compiler) CondBr(cond Value, thenBlock, elseBlock codegen.BlockRef) {
	c.materialize(RAX, cond)
	c.emitBytes(0x48, 0x85, 0xC0) // test rax, rax
	if mark, ok := elseBlock.(*blockMark); ok {
		c.jccRel32(jccNotEqual, thenBlock.(*blockMark))
		c.jmpRel32(mark)
		return
	}
	// elseBlock is codegen's trapBlockMarker sentinel: fall straight
	// through into an inline trap sequence rather than resolving a mark.
	c.jccRel32(jccNotEqual, thenBlock.(*blockMark))
	c.Trap()
}

func (c *Compiler) Switch(on Value, cases []codegen.SwitchCase, otherwise codegen.BlockRef) {
	c.materialize(RAX, on)
	for _, cs := range cases {
		c.emitBytes(0x48, 0x3D) // cmp rax, imm32
		c.emitUint32(uint32(cs.Value))
		c.jccRel32(jccEqual, cs.Target.(*blockMark))
	}
	c.jmpRel32(otherwise.(*blockMark))
}

func (c *Compiler) Ret(val Value, hasVal bool) {
	if hasVal {
		c.materialize(RAX, val)
	}
	c.emitBytes(0xC9) // leave
	c.emitBytes(0xC3) // ret
}

func (c *Compiler) Unreachable() {
	c.emitBytes(0x0F, 0x0B) // ud2
}

func (c *Compiler) Call(fn Value, args []Value, cont codegen.BlockRef, hasCont bool) Value {
	for i, a := range args {
		if i >= len(intArgRegs) {
			break // stack-passed arguments beyond the sixth: future work
		}
		c.materialize(intArgRegs[i], a)
	}
	c.emitBytes(0xE8) // call rel32
	c.emitUint32(0)   // left zero: neither a relocation nor a local fixup is recorded
	slot := c.allocSlot(8)
	c.storeToStack(RAX, slot)
	if hasCont {
		c.Br(cont)
	}
	return Value{Kind: ValueSlot, Offset: slot}
}

// Trap lowers an AssertKind failure to ud2, an illegal instruction that
// always faults — the native backend's equivalent of llvmgen's
// llvm.trap + unreachable pair.
func (c *Compiler) Trap() {
	c.emitBytes(0x0F, 0x0B) // ud2
}
