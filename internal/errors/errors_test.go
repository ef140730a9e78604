package errors

import (
	"strings"
	"testing"

	"github.com/go-stc/stc/internal/source"
)

func TestDiagnostic_Format(t *testing.T) {
	d := &Diagnostic{
		Kind:     KindType,
		Severity: Error,
		Message:  "cannot assign REAL to Int",
		Pos:      source.Position{File: "main.st", Line: 2, Column: 5},
	}
	src := "PROGRAM main\n  x := 3.14;\nEND_PROGRAM\n"

	out := d.Format(src)
	if !strings.Contains(out, "x := 3.14;") {
		t.Fatalf("expected source line in output, got:\n%s", out)
	}
	if !strings.Contains(out, "^") {
		t.Fatalf("expected caret in output, got:\n%s", out)
	}
	if !strings.Contains(out, "ERROR") {
		t.Fatalf("expected severity label, got:\n%s", out)
	}
}

func TestDiagnostic_FormatWithoutSource(t *testing.T) {
	d := &Diagnostic{
		Kind:     KindDeclaration,
		Severity: Warning,
		Message:  "synthesized constructor shadows declared one",
		Pos:      source.Position{Line: 1, Column: 1},
	}
	out := d.Format("")
	if strings.Contains(out, "^") {
		t.Fatalf("should not render a caret with no source, got:\n%s", out)
	}
}

func TestNewNatureViolation(t *testing.T) {
	pos := source.Position{File: "generics.st", Line: 10, Column: 3}
	d := NewNatureViolation(pos, "REAL", "Int")

	if d.Kind != KindGeneric || d.Severity != Error {
		t.Fatalf("unexpected kind/severity: %+v", d)
	}
	want := `invalid_type_nature("REAL","Int")`
	if d.Message != want {
		t.Fatalf("message = %q, want %q", d.Message, want)
	}
}

func TestBag_HasErrors(t *testing.T) {
	var b Bag
	if b.HasErrors() {
		t.Fatalf("empty bag should not have errors")
	}

	b.Addf(KindDeclaration, Info, source.Position{}, "note: unused local %s", "tmp")
	if b.HasErrors() {
		t.Fatalf("info-only bag should not have errors")
	}

	b.Add(NewNatureViolation(source.Position{}, "REAL", "Int"))
	if !b.HasErrors() {
		t.Fatalf("bag with an Error-severity diagnostic should report HasErrors")
	}
	if len(b.Diagnostics()) != 2 {
		t.Fatalf("expected 2 diagnostics, got %d", len(b.Diagnostics()))
	}
}

func TestBag_ErrorString(t *testing.T) {
	var b Bag
	if b.Error() != "no diagnostics" {
		t.Fatalf("unexpected empty Error() string: %q", b.Error())
	}

	b.Addf(KindResolution, Error, source.Position{Line: 1, Column: 1}, "undefined identifier %s", "foo")
	if !strings.Contains(b.Error(), "foo") {
		t.Fatalf("single-diagnostic Error() should include the message, got %q", b.Error())
	}

	b.Addf(KindResolution, Error, source.Position{Line: 2, Column: 1}, "undefined identifier %s", "bar")
	multi := b.Error()
	if !strings.Contains(multi, "2 diagnostics") || !strings.Contains(multi, "foo") || !strings.Contains(multi, "bar") {
		t.Fatalf("multi-diagnostic Error() missing expected content: %q", multi)
	}
}
