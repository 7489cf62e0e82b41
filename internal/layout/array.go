package layout

import (
	"github.com/yrnehli/hashc-sub000/internal/ir"
	"github.com/yrnehli/hashc-sub000/internal/target"
)

// layoutArray lays out [elem; length]: a uniform-stride FieldsArray shape,
// alignment equal to the element's, ABI Aggregate, except that an empty
// array is Uninhabited (Aggregate when the element is zero-sized) and a
// single-element array inherits its element's own ABI.
func (c *Ctx) layoutArray(elem ir.TyId, length uint64) (*Layout, error) {
	el, err := c.LayoutOf(elem)
	if err != nil {
		return nil, err
	}
	stride := target.AlignTo(el.Size, el.Align.Abi)
	size := stride * length

	abi := AbiAggregate
	if length == 0 {
		abi = AbiUninhabited
		if _, isZst := zstAbi(el); isZst {
			abi = AbiAggregate
		}
	}

	l := &Layout{
		Size:  size,
		Align: el.Align,
		Abi:   abi,
		Fields: FieldsShape{
			Kind:   FieldsArray,
			Stride: stride,
			Count:  length,
		},
	}
	if length == 1 {
		l.Abi = el.Abi
		l.Scalar = el.Scalar
		l.Scalar2 = el.Scalar2
		l.Offset2 = el.Offset2
	}
	return l, nil
}

func zstAbi(l *Layout) (Abi, bool) {
	if l.Size == 0 {
		return AbiAggregate, true
	}
	return l.Abi, false
}

// layoutSlice lays out [elem]: the fat-pointer/"unsized" representation
// is not materialised here (the IR never carries a bare TySlice value,
// only a reference to one — spec.md's fat pointer is a Pair of data
// pointer and usize length, built where a &[T] is actually formed,
// e.g. in the array-to-slice Ref rvalue or the list-initialisation
// SizedPointer aggregate). A bare TySlice layout query instead reports
// the layout of a single element run with an unknown (runtime) trip
// count's worth of metadata stripped: this is only reached via TyStr,
// which behaves identically.
func (c *Ctx) layoutSlice(elem ir.TyId) (*Layout, error) {
	el, err := c.LayoutOf(elem)
	if err != nil {
		return nil, err
	}
	return &Layout{
		Size:  0,
		Align: el.Align,
		Abi:   AbiAggregate,
		Fields: FieldsShape{
			Kind:   FieldsArray,
			Stride: target.AlignTo(el.Size, el.Align.Abi),
			Count:  0,
		},
	}, nil
}

// FatPointerLayout builds the Pair layout (data pointer, usize length)
// used wherever a `&[T]` or `&str` value is actually materialised.
func (c *Ctx) FatPointerLayout() *Layout {
	dl := c.ir.DataLayout
	ptr := Scalar{Kind: ScalarPointer, Width: dl.PointerSize}
	length := Scalar{Kind: ScalarInt, Width: dl.PointerSize, Signed: false}
	return &Layout{
		Size:    target.AlignTo(ptr.Width, dl.PointerAlign.Abi) + length.Width,
		Align:   dl.PointerAlign,
		Abi:     AbiScalarPair,
		Scalar:  ptr,
		Scalar2: length,
		Offset2: ptr.Width,
		Fields: FieldsShape{
			Kind:    FieldsArbitrary,
			Offsets: []uint64{0, ptr.Width},
			Memory:  []int{0, 1},
		},
	}
}
