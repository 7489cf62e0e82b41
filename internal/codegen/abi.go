package codegen

import (
	"github.com/yrnehli/hashc-sub000/internal/ir"
	"github.com/yrnehli/hashc-sub000/internal/layout"
)

// ClassifyArg picks an ArgAbi for a value of type ty with the given
// layout, the shared rule both argument and return-value classification
// use: a ZST is ignored, a Scalar/ScalarPair ABI passes in register(s),
// and anything else (a genuine multi-field aggregate with no common
// register shape) passes indirectly by pointer.
func ClassifyArg(ty ir.TyId, l *layout.Layout) ArgAbi {
	switch {
	case l.IsZst():
		return ArgAbi{Ty: ty, Mode: PassIgnore}
	case l.Abi == layout.AbiScalar:
		return ArgAbi{Ty: ty, Mode: PassDirect}
	case l.Abi == layout.AbiScalarPair:
		return ArgAbi{Ty: ty, Mode: PassPair}
	default:
		return ArgAbi{Ty: ty, Mode: PassIndirect}
	}
}

// ComputeFnAbi classifies a whole function signature.
func ComputeFnAbi(lc *layout.Ctx, params []ir.TyId, ret ir.TyId) (FnAbi, error) {
	retLayout, err := lc.LayoutOf(ret)
	if err != nil {
		return FnAbi{}, err
	}
	abi := FnAbi{Ret: ClassifyArg(ret, retLayout), Params: make([]ArgAbi, len(params))}
	for i, p := range params {
		pl, err := lc.LayoutOf(p)
		if err != nil {
			return FnAbi{}, err
		}
		abi.Params[i] = ClassifyArg(p, pl)
	}
	return abi, nil
}
