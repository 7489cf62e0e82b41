package layout

import "github.com/yrnehli/hashc-sub000/internal/ir"

// layoutAdt dispatches to the union, enum, or plain-struct/tuple layout
// algorithm based on the ADT's declared representation.
func (c *Ctx) layoutAdt(adt ir.AdtId) (*Layout, error) {
	def := c.ir.Adts.Get(adt)

	switch {
	case def.Flags.IsUnion():
		return c.layoutUnion(def)
	case def.Flags.IsEnum():
		return c.layoutEnum(adt, def)
	default:
		fieldTys := fieldTypesOf(def.Variants[0])
		l, err := c.layoutUnivariant(fieldTys, def.Flags.InhibitsFieldReorder(), nil)
		if err != nil {
			return nil, err
		}
		l.Variants = Variants{Kind: VariantsSingle, VariantIndex: 0}
		return l, nil
	}
}

func fieldTypesOf(v ir.Variant) []ir.TyId {
	tys := make([]ir.TyId, len(v.Fields))
	for i, f := range v.Fields {
		tys[i] = f.Ty
	}
	return tys
}
