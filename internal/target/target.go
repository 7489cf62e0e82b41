// Package target describes the data-layout facts that every other
// component in the compiler core consults: primitive sizes and
// alignments, pointer width, endianness, and address spaces. No other
// package is allowed to hardcode a target width; they call into here.
package target

import "fmt"

// Endian is the byte order of a target.
type Endian int

const (
	LittleEndian Endian = iota
	BigEndian
)

// Integer is one of the integer bit-width classes the layout engine and
// the ABI machinery reason about.
type Integer int

const (
	I8 Integer = iota
	I16
	I32
	I64
	I128
)

// Bits returns the bit width of the integer class.
func (i Integer) Bits() uint64 {
	switch i {
	case I8:
		return 8
	case I16:
		return 16
	case I32:
		return 32
	case I64:
		return 64
	case I128:
		return 128
	default:
		panic(fmt.Sprintf("target: unknown integer class %d", i))
	}
}

// Bytes returns the size, in bytes, of the integer class.
func (i Integer) Bytes() uint64 { return i.Bits() / 8 }

// Align returns the ABI alignment of the integer class on dl.
func (i Integer) Align(dl *DataLayout) Alignment {
	switch i {
	case I8:
		return dl.I8Align
	case I16:
		return dl.I16Align
	case I32:
		return dl.I32Align
	case I64:
		return dl.I64Align
	case I128:
		return dl.I128Align
	default:
		panic(fmt.Sprintf("target: unknown integer class %d", i))
	}
}

// ForAlignment returns the largest integer class whose ABI alignment, in
// bytes, equals align, or false if none fits. This mirrors
// `Integer::for_alignment` in the original implementation, used by the
// enum tag-expansion heuristic.
func ForAlignment(dl *DataLayout, align uint64) (Integer, bool) {
	candidates := []Integer{I64, I32, I16, I8}
	if dl.I128Align.Abi >= align {
		candidates = []Integer{I128, I64, I32, I16, I8}
	}
	for _, cand := range candidates {
		if cand.Align(dl).Abi == align {
			return cand, true
		}
	}
	return 0, false
}

// PtrSizedInteger returns the integer class matching the target's
// pointer width (i.e. the `usize` class).
func (dl *DataLayout) PtrSizedInteger() Integer {
	switch dl.PointerSize {
	case 2:
		return I16
	case 4:
		return I32
	case 8:
		return I64
	default:
		panic(fmt.Sprintf("target: unsupported pointer size %d", dl.PointerSize))
	}
}

// Alignment records both the required ABI alignment and the preferred
// (potentially larger, purely advisory) alignment for a value, both in
// bytes and both powers of two.
type Alignment struct {
	Abi  uint64
	Pref uint64
}

// AlignTo rounds size up to the nearest multiple of align. align must be
// a power of two.
func AlignTo(size, align uint64) uint64 {
	if align == 0 {
		return size
	}
	return (size + align - 1) &^ (align - 1)
}

// AddressSpace identifies a target address space; data and instruction
// memory are usually, but not always, the same space.
type AddressSpace int

const (
	AddressSpaceData AddressSpace = iota
	AddressSpaceInstruction
)

// DataLayout is the complete set of target facts the layout engine and
// ABI machinery consult. One DataLayout exists per compilation (no
// per-invocation cross-compilation is supported, per spec Non-goals).
type DataLayout struct {
	Name   string
	Endian Endian

	PointerSize  uint64
	PointerAlign Alignment

	I8Align   Alignment
	I16Align  Alignment
	I32Align  Alignment
	I64Align  Alignment
	I128Align Alignment

	F32Align Alignment
	F64Align Alignment

	AggregateAlign Alignment

	InstructionAddressSpace AddressSpace

	// MaxObjSizeBits bounds the largest single object (in bits) the
	// target can address; layout computation rejects sizes at or above
	// this bound with LayoutError::Overflow.
	MaxObjSizeBits uint64
}

// ObjSizeBound returns the maximum permitted object size, in bytes, for
// this target. Kept as a method (rather than a field) to mirror the
// original's `obj_size_bound()` being derived from the address space
// width rather than stored directly.
func (dl *DataLayout) ObjSizeBound() uint64 {
	return uint64(1) << (dl.MaxObjSizeBits - 1)
}

// X86_64Linux is the single fully wired target: the reference native
// backend (arch/amd64 + format/elf) only ever assembles for this target.
func X86_64Linux() *DataLayout {
	return &DataLayout{
		Name:        "x86_64-unknown-linux-gnu",
		Endian:      LittleEndian,
		PointerSize: 8,
		PointerAlign: Alignment{Abi: 8, Pref: 8},

		I8Align:   Alignment{Abi: 1, Pref: 1},
		I16Align:  Alignment{Abi: 2, Pref: 2},
		I32Align:  Alignment{Abi: 4, Pref: 4},
		I64Align:  Alignment{Abi: 8, Pref: 8},
		I128Align: Alignment{Abi: 16, Pref: 16},

		F32Align: Alignment{Abi: 4, Pref: 4},
		F64Align: Alignment{Abi: 8, Pref: 8},

		AggregateAlign: Alignment{Abi: 1, Pref: 8},

		InstructionAddressSpace: AddressSpaceInstruction,
		MaxObjSizeBits:          64,
	}
}

// X86_64Darwin is layout-compatible with X86_64Linux but has no codegen
// backend registered against it (see SPEC_FULL.md §4.A) — it exists so the
// layout engine can be exercised against more than one named target.
func X86_64Darwin() *DataLayout {
	dl := *X86_64Linux()
	dl.Name = "x86_64-apple-darwin"
	return &dl
}

// Wasm32 is a second layout-only target with a narrower pointer width,
// exercising the layout engine's pointer-size parameterisation.
func Wasm32() *DataLayout {
	return &DataLayout{
		Name:         "wasm32-unknown-unknown",
		Endian:       LittleEndian,
		PointerSize:  4,
		PointerAlign: Alignment{Abi: 4, Pref: 4},

		I8Align:   Alignment{Abi: 1, Pref: 1},
		I16Align:  Alignment{Abi: 2, Pref: 2},
		I32Align:  Alignment{Abi: 4, Pref: 4},
		I64Align:  Alignment{Abi: 8, Pref: 8},
		I128Align: Alignment{Abi: 16, Pref: 16},

		F32Align: Alignment{Abi: 4, Pref: 4},
		F64Align: Alignment{Abi: 8, Pref: 8},

		AggregateAlign: Alignment{Abi: 1, Pref: 8},

		InstructionAddressSpace: AddressSpaceData,
		MaxObjSizeBits:          32,
	}
}

// Lookup resolves a target by triple name; an empty name selects X86_64Linux.
func Lookup(name string) (*DataLayout, bool) {
	switch name {
	case "x86_64-unknown-linux-gnu", "":
		return X86_64Linux(), true
	case "x86_64-apple-darwin":
		return X86_64Darwin(), true
	case "wasm32-unknown-unknown":
		return Wasm32(), true
	default:
		return nil, false
	}
}
