package ir

import "testing"

// buildDiamond constructs bb0 -> {bb1, bb2} -> bb3, the canonical
// if/else-join shape, and returns its Body.
func buildDiamond(t *testing.T) *Body {
	t.Helper()
	body := NewBody("diamond", TyId(0))
	cond := body.AddLocal(LocalDecl{Ty: TyId(0)})

	bb0 := body.AddBlock()
	bb1 := body.AddBlock()
	bb2 := body.AddBlock()
	bb3 := body.AddBlock()

	body.Block(bb0).Terminator = Terminator{
		Kind:   TermSwitch,
		SwitchOn: OperandFromPlace(NewPlace(cond)),
		SwitchTargets: SwitchTargets{
			Values:  []uint64{0},
			Targets: []BasicBlockId{bb1},
			Default: bb2,
		},
	}
	body.Block(bb1).Terminator = Terminator{Kind: TermGoto, GotoTarget: bb3}
	body.Block(bb2).Terminator = Terminator{Kind: TermGoto, GotoTarget: bb3}
	body.Block(bb3).Terminator = Terminator{Kind: TermReturn}
	return body
}

func TestDominatorsDiamond(t *testing.T) {
	body := buildDiamond(t)
	doms := BuildDominators(body)

	if got := doms.ImmediateDominator(1); got != StartBlock {
		t.Errorf("idom(bb1) = %d, want bb0", got)
	}
	if got := doms.ImmediateDominator(2); got != StartBlock {
		t.Errorf("idom(bb2) = %d, want bb0", got)
	}
	if got := doms.ImmediateDominator(3); got != StartBlock {
		t.Errorf("idom(bb3) = %d, want bb0 (join point, dominated only by the shared entry)", got)
	}
	if !doms.Dominates(StartBlock, 3) {
		t.Errorf("expected bb0 to dominate bb3")
	}
	if doms.Dominates(1, 3) {
		t.Errorf("bb1 does not dominate bb3: bb2 also reaches it")
	}
}

func TestVerifyCatchesOutOfRangeSuccessor(t *testing.T) {
	body := NewBody("bad", TyId(0))
	bb0 := body.AddBlock()
	body.Block(bb0).Terminator = Terminator{Kind: TermGoto, GotoTarget: BasicBlockId(7)}

	if err := body.Verify(); err == nil {
		t.Fatalf("expected Verify() to reject an out-of-range successor")
	}
}
