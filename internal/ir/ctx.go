package ir

import "github.com/yrnehli/hashc-sub000/internal/target"

// Ctx bundles the type/ADT stores and the resolved target that every
// other component (layout, lowering, codegen) is handed as its single
// source of type identity, mirroring how the teacher threads one builder
// context through a whole compilation.
type Ctx struct {
	DataLayout *target.DataLayout
	Tys        *TyStore
	Adts       *AdtStore
	Common     CommonTys
}

// NewCtx creates a Ctx for dl with the common types pre-interned.
func NewCtx(dl *target.DataLayout) *Ctx {
	tys := NewTyStore()
	adts := NewAdtStore()
	common := PopulateCommon(tys, adts)
	return &Ctx{DataLayout: dl, Tys: tys, Adts: adts, Common: common}
}
