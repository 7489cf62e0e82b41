package ir

import (
	"testing"

	"github.com/yrnehli/hashc-sub000/internal/target"
)

func TestTyStoreInterningIsStructural(t *testing.T) {
	s := NewTyStore()
	a := s.Intern(Ty{Kind: TyInt, IntWidth: target.I32, IntSigned: true})
	b := s.Intern(Ty{Kind: TyInt, IntWidth: target.I32, IntSigned: true})
	c := s.Intern(Ty{Kind: TyInt, IntWidth: target.I32, IntSigned: false})

	if a != b {
		t.Errorf("identical Ty values interned to different ids: %d vs %d", a, b)
	}
	if a == c {
		t.Errorf("signed and unsigned i32 interned to the same id")
	}
}

func TestPopulateCommonDeduplicatesAgainstManualIntern(t *testing.T) {
	s := NewTyStore()
	adts := NewAdtStore()
	common := PopulateCommon(s, adts)

	again := s.Intern(Ty{Kind: TyInt, IntWidth: target.I32, IntSigned: true})
	if again != common.I32 {
		t.Errorf("manual intern of i32 did not reuse PopulateCommon's id")
	}
}

func TestDiscriminantRepresentationPicksSmallestClass(t *testing.T) {
	dl := target.X86_64Linux()
	twoVariants := AdtData{Flags: AdtFlagEnum, Variants: make([]Variant, 2)}
	if got := twoVariants.DiscriminantRepresentation(dl); got != target.I8 {
		t.Errorf("2-variant enum got %v, want i8", got)
	}

	many := AdtData{Flags: AdtFlagEnum, Variants: make([]Variant, 300)}
	if got := many.DiscriminantRepresentation(dl); got != target.I16 {
		t.Errorf("300-variant enum got %v, want i16", got)
	}
}

func TestDiscriminantRepresentationHonoursOverride(t *testing.T) {
	dl := target.X86_64Linux()
	i32 := target.I32
	d := AdtData{Flags: AdtFlagEnum, Variants: make([]Variant, 2), DiscriminantOverride: &i32}
	if got := d.DiscriminantRepresentation(dl); got != target.I32 {
		t.Errorf("override ignored: got %v, want i32", got)
	}
}
