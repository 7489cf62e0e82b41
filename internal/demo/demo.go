// Package demo builds a small, fixed set of function bodies directly in
// internal/tir's term store, standing in for source a parser/resolver
// would otherwise have produced (spec.md routes parsing out of scope).
// cmd/hashc and the tests load this same fixture so there is one
// grounded place that knows how to build tir.FnDefs by hand, instead of
// every caller improvising its own.
package demo

import (
	"github.com/yrnehli/hashc-sub000/internal/ir"
	"github.com/yrnehli/hashc-sub000/internal/tir"
)

// Build constructs every demo function into store and returns their
// definitions in a fixed order, ready for internal/lower.LowerAll.
func Build(ctx *ir.Ctx, store *tir.Store) []tir.FnDef {
	return []tir.FnDef{
		addFn(ctx, store),
		maxFn(ctx, store),
		sumToNFn(ctx, store),
		distSquaredFn(ctx, store),
	}
}

// addFn builds `fn addfn(a, b: i32) -> i32 { let c = a + b; return c; }`.
func addFn(ctx *ir.Ctx, store *tir.Store) tir.FnDef {
	a := store.DeclareSymbol(tir.SymbolInfo{Name: "a", Ty: ctx.Common.I32, IsArg: true})
	b := store.DeclareSymbol(tir.SymbolInfo{Name: "b", Ty: ctx.Common.I32, IsArg: true})
	aVar := store.Add(tir.Term{Kind: tir.TermVar, Ty: ctx.Common.I32, Symbol: a})
	bVar := store.Add(tir.Term{Kind: tir.TermVar, Ty: ctx.Common.I32, Symbol: b})
	sum := store.Add(tir.Term{Kind: tir.TermBinOp, Ty: ctx.Common.I32, BinOp: ir.BinAdd, Lhs: aVar, Rhs: bVar})
	c := store.DeclareSymbol(tir.SymbolInfo{Name: "c", Ty: ctx.Common.I32})
	decl := store.Add(tir.Term{Kind: tir.TermDeclaration, Ty: ctx.Common.Unit, DeclSymbol: c, DeclInit: sum, HasOperand: true})
	cVar := store.Add(tir.Term{Kind: tir.TermVar, Ty: ctx.Common.I32, Symbol: c})
	ret := store.Add(tir.Term{Kind: tir.TermReturn, Ty: ctx.Common.Never, HasOperand: true, Operand: cVar})
	return tir.FnDef{Name: "addfn", Params: []tir.SymbolId{a, b}, ReturnTy: ctx.Common.I32, Body: []tir.TermId{decl, ret}}
}

// maxFn builds `fn maxfn(a, b: i32) -> i32 { if a > b { a } else { b } }`,
// an expression-bodied if/else whose value flows straight into the
// function's return place via destination-passing, with no explicit
// `return` statement at all.
func maxFn(ctx *ir.Ctx, store *tir.Store) tir.FnDef {
	a := store.DeclareSymbol(tir.SymbolInfo{Name: "a", Ty: ctx.Common.I32, IsArg: true})
	b := store.DeclareSymbol(tir.SymbolInfo{Name: "b", Ty: ctx.Common.I32, IsArg: true})
	aVar := store.Add(tir.Term{Kind: tir.TermVar, Ty: ctx.Common.I32, Symbol: a})
	bVar := store.Add(tir.Term{Kind: tir.TermVar, Ty: ctx.Common.I32, Symbol: b})
	cond := store.Add(tir.Term{Kind: tir.TermBinOp, Ty: ctx.Common.Bool, BinOp: ir.BinGt, Lhs: aVar, Rhs: bVar})

	aVar2 := store.Add(tir.Term{Kind: tir.TermVar, Ty: ctx.Common.I32, Symbol: a})
	thenBlock := store.Add(tir.Term{Kind: tir.TermBlock, Ty: ctx.Common.I32, Body: []tir.TermId{aVar2}})
	bVar2 := store.Add(tir.Term{Kind: tir.TermVar, Ty: ctx.Common.I32, Symbol: b})
	elseBlock := store.Add(tir.Term{Kind: tir.TermBlock, Ty: ctx.Common.I32, Body: []tir.TermId{bVar2}})

	ifTerm := store.Add(tir.Term{Kind: tir.TermIf, Ty: ctx.Common.I32, Cond: cond, Then: thenBlock, Else: elseBlock, HasOperand: true})
	return tir.FnDef{Name: "maxfn", Params: []tir.SymbolId{a, b}, ReturnTy: ctx.Common.I32, Body: []tir.TermId{ifTerm}}
}

// sumToNFn builds
//
//	fn sumtonfn(n: i32) -> i32 {
//	    let mut i = 0;
//	    let mut sum = 0;
//	    loop {
//	        if i >= n { break; }
//	        sum = sum + i;
//	        i = i + 1;
//	    }
//	    sum
//	}
//
// exercising mutable locals, a loop with a break, and in-loop
// reassignment — the control-flow shapes the plain decl/return and
// if/else examples above don't reach.
func sumToNFn(ctx *ir.Ctx, store *tir.Store) tir.FnDef {
	n := store.DeclareSymbol(tir.SymbolInfo{Name: "n", Ty: ctx.Common.I32, IsArg: true})

	zero1 := store.Add(tir.Term{Kind: tir.TermConstInt, Ty: ctx.Common.I32, IntValue: 0})
	i := store.DeclareSymbol(tir.SymbolInfo{Name: "i", Ty: ctx.Common.I32, Mut: ir.Mutable})
	declI := store.Add(tir.Term{Kind: tir.TermDeclaration, Ty: ctx.Common.Unit, DeclSymbol: i, DeclInit: zero1, HasOperand: true, DeclMut: ir.Mutable})

	zero2 := store.Add(tir.Term{Kind: tir.TermConstInt, Ty: ctx.Common.I32, IntValue: 0})
	sum := store.DeclareSymbol(tir.SymbolInfo{Name: "sum", Ty: ctx.Common.I32, Mut: ir.Mutable})
	declSum := store.Add(tir.Term{Kind: tir.TermDeclaration, Ty: ctx.Common.Unit, DeclSymbol: sum, DeclInit: zero2, HasOperand: true, DeclMut: ir.Mutable})

	iVar1 := store.Add(tir.Term{Kind: tir.TermVar, Ty: ctx.Common.I32, Symbol: i})
	nVar := store.Add(tir.Term{Kind: tir.TermVar, Ty: ctx.Common.I32, Symbol: n})
	ge := store.Add(tir.Term{Kind: tir.TermBinOp, Ty: ctx.Common.Bool, BinOp: ir.BinGe, Lhs: iVar1, Rhs: nVar})
	brk := store.Add(tir.Term{Kind: tir.TermBreak, Ty: ctx.Common.Never})
	guard := store.Add(tir.Term{Kind: tir.TermIf, Ty: ctx.Common.Unit, Cond: ge, Then: brk})

	sumVar1 := store.Add(tir.Term{Kind: tir.TermVar, Ty: ctx.Common.I32, Symbol: sum})
	iVar2 := store.Add(tir.Term{Kind: tir.TermVar, Ty: ctx.Common.I32, Symbol: i})
	sumPlusI := store.Add(tir.Term{Kind: tir.TermBinOp, Ty: ctx.Common.I32, BinOp: ir.BinAdd, Lhs: sumVar1, Rhs: iVar2})
	sumLhs := store.Add(tir.Term{Kind: tir.TermVar, Ty: ctx.Common.I32, Symbol: sum})
	assignSum := store.Add(tir.Term{Kind: tir.TermAssign, Ty: ctx.Common.Unit, Lhs: sumLhs, Rhs: sumPlusI})

	iVar3 := store.Add(tir.Term{Kind: tir.TermVar, Ty: ctx.Common.I32, Symbol: i})
	one := store.Add(tir.Term{Kind: tir.TermConstInt, Ty: ctx.Common.I32, IntValue: 1})
	iPlus1 := store.Add(tir.Term{Kind: tir.TermBinOp, Ty: ctx.Common.I32, BinOp: ir.BinAdd, Lhs: iVar3, Rhs: one})
	iLhs := store.Add(tir.Term{Kind: tir.TermVar, Ty: ctx.Common.I32, Symbol: i})
	assignI := store.Add(tir.Term{Kind: tir.TermAssign, Ty: ctx.Common.Unit, Lhs: iLhs, Rhs: iPlus1})

	loop := store.Add(tir.Term{Kind: tir.TermLoop, Ty: ctx.Common.Unit, Body: []tir.TermId{guard, assignSum, assignI}})

	sumFinal := store.Add(tir.Term{Kind: tir.TermVar, Ty: ctx.Common.I32, Symbol: sum})

	return tir.FnDef{
		Name:     "sumtonfn",
		Params:   []tir.SymbolId{n},
		ReturnTy: ctx.Common.I32,
		Body:     []tir.TermId{declI, declSum, loop, sumFinal},
	}
}

// distSquaredFn builds
//
//	fn distsquaredfn(x, y: i32) -> i32 {
//	    let p = Point{x, y};
//	    p.x * p.x + p.y * p.y
//	}
//
// exercising a user-declared struct ADT end to end: aggregate
// construction (TermStructLit), field projection (TermFieldAccess), and
// the layout engine's field-offset computation underneath both.
func distSquaredFn(ctx *ir.Ctx, store *tir.Store) tir.FnDef {
	pointTy := ctx.Tys.Intern(ir.Ty{Kind: ir.TyAdt, Adt: ctx.Adts.Declare(ir.AdtData{
		Name:  "Point",
		Flags: ir.AdtFlagStruct,
		Variants: []ir.Variant{{
			Fields: []ir.Field{{Name: "x", Ty: ctx.Common.I32}, {Name: "y", Ty: ctx.Common.I32}},
		}},
	})})

	x := store.DeclareSymbol(tir.SymbolInfo{Name: "x", Ty: ctx.Common.I32, IsArg: true})
	y := store.DeclareSymbol(tir.SymbolInfo{Name: "y", Ty: ctx.Common.I32, IsArg: true})

	xVar := store.Add(tir.Term{Kind: tir.TermVar, Ty: ctx.Common.I32, Symbol: x})
	yVar := store.Add(tir.Term{Kind: tir.TermVar, Ty: ctx.Common.I32, Symbol: y})
	lit := store.Add(tir.Term{Kind: tir.TermStructLit, Ty: pointTy, Elements: []tir.TermId{xVar, yVar}, Adt: ctx.Tys.Get(pointTy).Adt})

	p := store.DeclareSymbol(tir.SymbolInfo{Name: "p", Ty: pointTy})
	declP := store.Add(tir.Term{Kind: tir.TermDeclaration, Ty: ctx.Common.Unit, DeclSymbol: p, DeclInit: lit, HasOperand: true})

	pVar1 := store.Add(tir.Term{Kind: tir.TermVar, Ty: pointTy, Symbol: p})
	px1 := store.Add(tir.Term{Kind: tir.TermFieldAccess, Ty: ctx.Common.I32, Base: pVar1, Field: 0})
	pVar2 := store.Add(tir.Term{Kind: tir.TermVar, Ty: pointTy, Symbol: p})
	px2 := store.Add(tir.Term{Kind: tir.TermFieldAccess, Ty: ctx.Common.I32, Base: pVar2, Field: 0})
	xSq := store.Add(tir.Term{Kind: tir.TermBinOp, Ty: ctx.Common.I32, BinOp: ir.BinMul, Lhs: px1, Rhs: px2})

	pVar3 := store.Add(tir.Term{Kind: tir.TermVar, Ty: pointTy, Symbol: p})
	py1 := store.Add(tir.Term{Kind: tir.TermFieldAccess, Ty: ctx.Common.I32, Base: pVar3, Field: 1})
	pVar4 := store.Add(tir.Term{Kind: tir.TermVar, Ty: pointTy, Symbol: p})
	py2 := store.Add(tir.Term{Kind: tir.TermFieldAccess, Ty: ctx.Common.I32, Base: pVar4, Field: 1})
	ySq := store.Add(tir.Term{Kind: tir.TermBinOp, Ty: ctx.Common.I32, BinOp: ir.BinMul, Lhs: py1, Rhs: py2})

	sum := store.Add(tir.Term{Kind: tir.TermBinOp, Ty: ctx.Common.I32, BinOp: ir.BinAdd, Lhs: xSq, Rhs: ySq})

	return tir.FnDef{
		Name:     "distsquaredfn",
		Params:   []tir.SymbolId{x, y},
		ReturnTy: ctx.Common.I32,
		Body:     []tir.TermId{declP, sum},
	}
}
