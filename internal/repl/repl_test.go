package repl

import (
	"bytes"
	"fmt"
	"strings"
	"testing"

	"github.com/yrnehli/hashc-sub000/internal/ir"
	"github.com/yrnehli/hashc-sub000/internal/layout"
	"github.com/yrnehli/hashc-sub000/internal/lower"
	"github.com/yrnehli/hashc-sub000/internal/target"
	"github.com/yrnehli/hashc-sub000/internal/tir"
)

// Run itself drives a github.com/chzyer/readline terminal loop, so these
// tests exercise the dispatch helpers it calls directly rather than
// faking a terminal.

func newTestSession(t *testing.T) *Session {
	t.Helper()
	ctx := ir.NewCtx(target.X86_64Linux())
	lc := layout.NewCtx(ctx)
	store := tir.NewStore()

	lit := store.Add(tir.Term{Kind: tir.TermConstInt, Ty: ctx.Common.I32, IntValue: 9})
	ret := store.Add(tir.Term{Kind: tir.TermReturn, Ty: ctx.Common.Never, HasOperand: true, Operand: lit})
	fn := tir.FnDef{Name: "ninefn", ReturnTy: ctx.Common.I32, Body: []tir.TermId{ret}}

	bodies, err := lower.LowerAll(ctx, lc, store, []tir.FnDef{fn}, 0)
	if err != nil {
		t.Fatalf("LowerAll: %v", err)
	}

	s := NewSession(ctx, lc)
	for _, b := range bodies {
		s.AddBody(b)
	}
	return s
}

func TestListBodiesReportsEmptySession(t *testing.T) {
	s := NewSession(ir.NewCtx(target.X86_64Linux()), nil)
	var buf bytes.Buffer
	s.listBodies(&buf)
	if !strings.Contains(buf.String(), "no bodies loaded") {
		t.Errorf("listBodies on empty session = %q, want a \"no bodies loaded\" message", buf.String())
	}
}

func TestListAndPrintBodyRoundTrip(t *testing.T) {
	s := newTestSession(t)

	var list bytes.Buffer
	s.listBodies(&list)
	if !strings.Contains(list.String(), "ninefn") {
		t.Errorf("listBodies = %q, want it to mention ninefn", list.String())
	}

	var body bytes.Buffer
	s.printBody(&body, []string{"ninefn"})
	if !strings.Contains(body.String(), "ninefn") {
		t.Errorf("printBody = %q, want the printed IR to mention ninefn", body.String())
	}
}

func TestPrintBodyUnknownName(t *testing.T) {
	s := newTestSession(t)
	var buf bytes.Buffer
	s.printBody(&buf, []string{"nosuchfn"})
	if !strings.Contains(buf.String(), "no such body") {
		t.Errorf("printBody(nosuchfn) = %q, want a \"no such body\" message", buf.String())
	}
}

func TestPrintBodyRequiresExactlyOneArg(t *testing.T) {
	s := newTestSession(t)
	var buf bytes.Buffer
	s.printBody(&buf, nil)
	if !strings.Contains(buf.String(), "usage:") {
		t.Errorf("printBody with no args = %q, want a usage message", buf.String())
	}
}

func TestPrintLayoutKnownType(t *testing.T) {
	s := newTestSession(t)
	var buf bytes.Buffer
	s.printLayout(&buf, []string{fmt.Sprintf("%d", s.Ctx.Common.I32)})
	if !strings.Contains(buf.String(), "size=4") {
		t.Errorf("printLayout(I32) = %q, want it to report size=4", buf.String())
	}
}

func TestPrintLayoutRejectsNonNumericId(t *testing.T) {
	s := newTestSession(t)
	var buf bytes.Buffer
	s.printLayout(&buf, []string{"not-a-number"})
	if !strings.Contains(buf.String(), "not a type id") {
		t.Errorf("printLayout(not-a-number) = %q, want a \"not a type id\" message", buf.String())
	}
}
