package diagnostics

import (
	"errors"
	"strings"
	"testing"
)

func TestSinkErrorfRecordsSeverityError(t *testing.T) {
	var s Sink
	s.Errorf("addfn", "unhandled rvalue kind %d", 7)
	if !s.HasErrors() {
		t.Fatal("expected HasErrors to be true after Errorf")
	}
	diags := s.Diagnostics()
	if len(diags) != 1 {
		t.Fatalf("got %d diagnostics, want 1", len(diags))
	}
	if diags[0].Severity != SeverityError {
		t.Errorf("severity = %v, want SeverityError", diags[0].Severity)
	}
	line := diags[0].String()
	if !strings.Contains(line, "addfn") || !strings.Contains(line, "unhandled rvalue kind 7") {
		t.Errorf("String() = %q, missing body name or message", line)
	}
}

func TestSinkReportWrapsErrorWithTyId(t *testing.T) {
	var s Sink
	s.Report("xorfn", 3, errors.New("layout: unknown/unsupported layout query"))
	diags := s.Diagnostics()
	if len(diags) != 1 {
		t.Fatalf("got %d diagnostics, want 1", len(diags))
	}
	line := diags[0].String()
	if !strings.Contains(line, "xorfn") || !strings.Contains(line, "type 3") {
		t.Errorf("String() = %q, missing body name or type id", line)
	}
}

func TestSinkWithNoErrorsReturnsNilErr(t *testing.T) {
	var s Sink
	s.Warnf("", "just a warning")
	if s.HasErrors() {
		t.Fatal("expected HasErrors to be false: only a warning was recorded")
	}
	if err := s.Err(); err != nil {
		t.Errorf("Err() = %v, want nil", err)
	}
}

func TestSinkErrCountsOnlyErrors(t *testing.T) {
	var s Sink
	s.Warnf("a", "warn one")
	s.Errorf("b", "error one")
	s.Errorf("c", "error two")
	err := s.Err()
	if err == nil {
		t.Fatal("expected a non-nil error")
	}
	if !strings.Contains(err.Error(), "2 error") {
		t.Errorf("Err() = %q, want it to count 2 errors (not the warning)", err.Error())
	}
}

func TestDiagnosticStringWithNoBodyOrTy(t *testing.T) {
	d := Diagnostic{Severity: SeverityNote, Message: "lowering finished"}
	got := d.String()
	want := "note: lowering finished"
	if got != want {
		t.Errorf("String() = %q, want %q", got, want)
	}
}
