package tir

import (
	"testing"

	"github.com/yrnehli/hashc-sub000/internal/ir"
)

func TestStoreAddAssignsSequentialIds(t *testing.T) {
	s := NewStore()
	a := s.Add(Term{Kind: TermConstInt, IntValue: 1})
	b := s.Add(Term{Kind: TermConstInt, IntValue: 2})
	if a != 0 || b != 1 {
		t.Fatalf("got ids %d, %d, want 0, 1", a, b)
	}
	if s.Get(a).IntValue != 1 || s.Get(b).IntValue != 2 {
		t.Fatalf("Get did not round-trip the stored terms")
	}
}

func TestStoreDeclareSymbolAssignsSequentialIds(t *testing.T) {
	s := NewStore()
	x := s.DeclareSymbol(SymbolInfo{Name: "x", Ty: 1, IsArg: true})
	y := s.DeclareSymbol(SymbolInfo{Name: "y", Ty: 2})
	if x != 0 || y != 1 {
		t.Fatalf("got ids %d, %d, want 0, 1", x, y)
	}
	if got := s.Symbol(x); got.Name != "x" || !got.IsArg {
		t.Errorf("Symbol(x) = %+v, want Name=x IsArg=true", got)
	}
	if got := s.Symbol(y); got.Name != "y" || got.IsArg {
		t.Errorf("Symbol(y) = %+v, want Name=y IsArg=false", got)
	}
}

func TestTyOfReturnsTermType(t *testing.T) {
	s := NewStore()
	id := s.Add(Term{Kind: TermConstInt, Ty: 42, IntValue: 7})
	if got := s.TyOf(id); got != 42 {
		t.Errorf("TyOf = %d, want 42", got)
	}
}

func TestLookupLibcFnKnowsTheFixedSet(t *testing.T) {
	for _, name := range []string{"malloc", "free", "memcpy", "printf", "exit"} {
		if _, ok := LookupLibcFn(name); !ok {
			t.Errorf("LookupLibcFn(%q) = false, want true", name)
		}
	}
	if _, ok := LookupLibcFn("not_a_libc_fn"); ok {
		t.Error("LookupLibcFn(\"not_a_libc_fn\") = true, want false")
	}
}

func TestClassifyCallDistinguishesLibcFromUserFn(t *testing.T) {
	s := NewStore()

	mallocSym := s.DeclareSymbol(SymbolInfo{Name: "malloc"})
	mallocVar := s.Add(Term{Kind: TermVar, Symbol: mallocSym})
	class, name := s.ClassifyCall(mallocVar)
	if class != CallLibcFn || name != "malloc" {
		t.Errorf("ClassifyCall(malloc) = (%v, %q), want (CallLibcFn, \"malloc\")", class, name)
	}

	userSym := s.DeclareSymbol(SymbolInfo{Name: "helper"})
	userVar := s.Add(Term{Kind: TermVar, Symbol: userSym})
	class, name = s.ClassifyCall(userVar)
	if class != CallUserFn || name != "helper" {
		t.Errorf("ClassifyCall(helper) = (%v, %q), want (CallUserFn, \"helper\")", class, name)
	}

	nonVar := s.Add(Term{Kind: TermConstInt, Ty: ir.TyId(0), IntValue: 0})
	class, name = s.ClassifyCall(nonVar)
	if class != CallUserFn || name != "" {
		t.Errorf("ClassifyCall(non-var callee) = (%v, %q), want (CallUserFn, \"\")", class, name)
	}
}
