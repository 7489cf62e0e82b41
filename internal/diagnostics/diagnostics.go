// Package diagnostics collects the errors layout, lowering, and codegen
// produce into a single severity-leveled sink cmd/hashc can render, the
// way internal/layout's ErrOverflow/ErrUnknown sentinels and
// internal/lower's "lower: %q (index %d): %w" wrapping already report
// failures, just gathered in one place instead of stopping at the first
// one. There is no source span: nothing in this compiler core parses
// source text, so a Diagnostic names the Body and/or TyId it came from
// instead (spec.md's §7 scope, carried into SPEC_FULL.md's expansion).
package diagnostics

import "fmt"

// Severity is a Diagnostic's level.
type Severity int

const (
	SeverityError Severity = iota
	SeverityWarning
	SeverityNote
)

func (s Severity) String() string {
	switch s {
	case SeverityError:
		return "error"
	case SeverityWarning:
		return "warning"
	case SeverityNote:
		return "note"
	default:
		return fmt.Sprintf("Severity(%d)", int(s))
	}
}

// Diagnostic is one reported problem. Body and Ty are optional context
// (the zero value of each means "not applicable"); at least one of Err,
// Body, or a plain Message should be set by the code constructing it.
type Diagnostic struct {
	Severity Severity
	Message  string
	Err      error  // the underlying error, if this diagnostic wraps one
	Body     string // the function name this diagnostic concerns, if any
	HasTy    bool
	Ty       int // ir.TyId, kept as a plain int to avoid importing internal/ir here
}

// String renders a Diagnostic as the one-line, source-less message
// cmd/hashc prints to stderr.
func (d Diagnostic) String() string {
	msg := d.Message
	if msg == "" && d.Err != nil {
		msg = d.Err.Error()
	}
	switch {
	case d.Body != "" && d.HasTy:
		return fmt.Sprintf("%s: in %q (type %d): %s", d.Severity, d.Body, d.Ty, msg)
	case d.Body != "":
		return fmt.Sprintf("%s: in %q: %s", d.Severity, d.Body, msg)
	case d.HasTy:
		return fmt.Sprintf("%s: (type %d): %s", d.Severity, d.Ty, msg)
	default:
		return fmt.Sprintf("%s: %s", d.Severity, msg)
	}
}

// Sink accumulates diagnostics across a whole compilation pass, so a
// driver can report every failure found (e.g. across internal/lower.LowerAll's
// independent bodies) instead of aborting at the first.
type Sink struct {
	diags []Diagnostic
}

// Errorf appends a SeverityError diagnostic, formatted like fmt.Errorf,
// optionally naming the function body it concerns.
func (s *Sink) Errorf(body string, format string, args ...any) {
	s.diags = append(s.diags, Diagnostic{Severity: SeverityError, Body: body, Message: fmt.Sprintf(format, args...)})
}

// Report appends err as a SeverityError diagnostic, naming the function
// body it concerns and the ir.TyId if tyID >= 0.
func (s *Sink) Report(body string, tyID int, err error) {
	s.diags = append(s.diags, Diagnostic{
		Severity: SeverityError,
		Body:     body,
		HasTy:    tyID >= 0,
		Ty:       tyID,
		Err:      err,
	})
}

// Warnf appends a SeverityWarning diagnostic.
func (s *Sink) Warnf(body string, format string, args ...any) {
	s.diags = append(s.diags, Diagnostic{Severity: SeverityWarning, Body: body, Message: fmt.Sprintf(format, args...)})
}

// Diagnostics returns every diagnostic reported so far, in report order.
func (s *Sink) Diagnostics() []Diagnostic {
	return s.diags
}

// HasErrors reports whether any SeverityError diagnostic was recorded.
func (s *Sink) HasErrors() bool {
	for _, d := range s.diags {
		if d.Severity == SeverityError {
			return true
		}
	}
	return false
}

// Err collapses the sink into a single error cmd/hashc can return from
// main, or nil if nothing at SeverityError was recorded. Individual
// diagnostic lines are still meant to be printed via String(), not this
// error's Error() text alone.
func (s *Sink) Err() error {
	if !s.HasErrors() {
		return nil
	}
	n := 0
	for _, d := range s.diags {
		if d.Severity == SeverityError {
			n++
		}
	}
	return fmt.Errorf("diagnostics: %d error(s) reported", n)
}
