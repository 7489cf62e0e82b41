package ir

import "testing"

func TestPrintPlaceNestedProjection(t *testing.T) {
	body := NewBody("f", TyId(0))
	idxLocal := body.AddLocal(LocalDecl{Ty: TyId(0)})

	place := NewPlace(LocalId(0))
	place = place.Project(body, PlaceProjection{Kind: ProjDeref})
	place = place.Project(body, PlaceProjection{Kind: ProjField, FieldIdx: 0})
	place = place.Project(body, PlaceProjection{Kind: ProjIndex, IndexLocal: idxLocal})
	place = place.Project(body, PlaceProjection{Kind: ProjDowncast, Variant: 0})

	got := PrintPlace(body, place)
	want := "(((*_0).0)[_1] as variant#0)"
	if got != want {
		t.Fatalf("PrintPlace() = %q, want %q", got, want)
	}
}

func TestPrintPlaceBareLocal(t *testing.T) {
	body := NewBody("f", TyId(0))
	place := NewPlace(LocalId(0))
	if got, want := PrintPlace(body, place), "_0"; got != want {
		t.Fatalf("PrintPlace() = %q, want %q", got, want)
	}
}

func TestProjectionInterning(t *testing.T) {
	body := NewBody("f", TyId(0))
	a := NewPlace(LocalId(0)).Project(body, PlaceProjection{Kind: ProjField, FieldIdx: 1})
	b := NewPlace(LocalId(0)).Project(body, PlaceProjection{Kind: ProjField, FieldIdx: 1})
	if a.Projection != b.Projection {
		t.Fatalf("identical projection chains interned to different ids: %d vs %d", a.Projection, b.Projection)
	}
}

func TestAssertMessages(t *testing.T) {
	cases := []struct {
		payload AssertPayload
		want    string
	}{
		{AssertPayload{Kind: AssertDivisionByZero}, "attempt to divide by zero\n"},
		{AssertPayload{Kind: AssertRemainderByZero}, "attempt to take remainder with a divisor of zero\n"},
		{AssertPayload{Kind: AssertNegativeOverflow}, "attempt to negate with overflow\n"},
		{AssertPayload{Kind: AssertOverflow, Op: OverflowAdd}, "attempt to add with overflow\n"},
		{AssertPayload{Kind: AssertOverflow, Op: OverflowShr}, "attempt to shift right with overflow\n"},
		{AssertPayload{Kind: AssertBoundsCheck, Len: "3", Index: "_5"}, "attempt to index array out of bounds\n"},
	}
	for _, c := range cases {
		if got := c.payload.Message(); got != c.want {
			t.Errorf("Message() = %q, want %q", got, c.want)
		}
	}
}
