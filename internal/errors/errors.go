// Package errors formats and accumulates compiler diagnostics.
//
// Grounded on the teacher's internal/errors (source-context formatting
// with a caret) and internal/semantic.SemanticError (a structured, typed
// compile error accumulated across a pass rather than returned on first
// failure) — kept in the same package path and carrying the same
// caret-formatting behavior, rewritten so the position type, error kinds,
// and severities match spec §7 "Error Handling Design" instead of
// DWScript's type-mismatch/undefined-variable taxonomy.
package errors

import (
	"fmt"
	"strings"

	"github.com/go-stc/stc/internal/source"
)

// Kind classifies a diagnostic into one of the six error categories named
// by spec §7.
type Kind string

const (
	KindResolution  Kind = "resolution"
	KindType        Kind = "type"
	KindGeneric     Kind = "generic"
	KindAssignment  Kind = "assignment"
	KindDeclaration Kind = "declaration"
	KindIR          Kind = "ir"
)

// Severity is the final-assessment outcome for a diagnostic (spec §7:
// "Final assessment maps each diagnostic to severity {Error, Warning,
// Info}; default policy: improvement suggestions are Warnings, everything
// else is Error").
type Severity int

const (
	Error Severity = iota
	Warning
	Info
)

func (s Severity) String() string {
	switch s {
	case Error:
		return "error"
	case Warning:
		return "warning"
	case Info:
		return "info"
	default:
		return "unknown"
	}
}

// Diagnostic is one structured compiler diagnostic, carrying enough
// context to format a caret-pointed message or to render as a symbol-map
// JSON entry.
type Diagnostic struct {
	Kind     Kind
	Severity Severity
	Message  string
	Pos      source.Position
	Context  map[string]string
}

// Error implements the error interface.
func (d *Diagnostic) Error() string {
	return fmt.Sprintf("%s: %s at %s", d.Severity, d.Message, d.Pos)
}

// Format renders the diagnostic with a source-line caret, matching the
// teacher's CompilerError.Format. src may be empty when no source text is
// available (e.g. a diagnostic anchored to a synthesized node).
func (d *Diagnostic) Format(src string) string {
	var sb strings.Builder

	sb.WriteString(fmt.Sprintf("%s at %s\n", strings.ToUpper(d.Severity.String()), d.Pos))

	if line := sourceLine(src, d.Pos.Line); line != "" {
		lineNumStr := fmt.Sprintf("%4d | ", d.Pos.Line)
		sb.WriteString(lineNumStr)
		sb.WriteString(line)
		sb.WriteString("\n")
		sb.WriteString(strings.Repeat(" ", len(lineNumStr)+d.Pos.Column-1))
		sb.WriteString("^\n")
	}

	sb.WriteString(d.Message)
	return sb.String()
}

func sourceLine(src string, line int) string {
	if src == "" || line <= 0 {
		return ""
	}
	lines := strings.Split(src, "\n")
	if line > len(lines) {
		return ""
	}
	return lines[line-1]
}

// NewNatureViolation builds the exact diagnostic shape spec §8 scenario 5
// names: invalid_type_nature("REAL","Int", <location>).
func NewNatureViolation(pos source.Position, concreteType, nature string) *Diagnostic {
	return &Diagnostic{
		Kind:     KindGeneric,
		Severity: Error,
		Message:  fmt.Sprintf("invalid_type_nature(%q,%q)", concreteType, nature),
		Pos:      pos,
		Context:  map[string]string{"type": concreteType, "nature": nature},
	}
}

// Bag accumulates diagnostics across one pass, mirroring the teacher's
// AnalysisError aggregate-then-report style (internal/semantic.errors.go)
// instead of returning on first failure (spec §5 "Failures abort the
// current pass... the driver decides whether to continue").
type Bag struct {
	diags []*Diagnostic
}

// Add appends a diagnostic.
func (b *Bag) Add(d *Diagnostic) { b.diags = append(b.diags, d) }

// Addf is a convenience wrapper for the common case of a one-off message.
func (b *Bag) Addf(kind Kind, sev Severity, pos source.Position, format string, args ...interface{}) {
	b.Add(&Diagnostic{Kind: kind, Severity: sev, Message: fmt.Sprintf(format, args...), Pos: pos})
}

// Diagnostics returns all accumulated diagnostics in emission order.
func (b *Bag) Diagnostics() []*Diagnostic { return b.diags }

// HasErrors reports whether any accumulated diagnostic is Severity Error
// (spec §7 "a non-zero exit code if any Error was emitted").
func (b *Bag) HasErrors() bool {
	for _, d := range b.diags {
		if d.Severity == Error {
			return true
		}
	}
	return false
}

// Error implements the error interface so a Bag can be returned directly
// from a pass, matching the teacher's AnalysisError.
func (b *Bag) Error() string {
	if len(b.diags) == 0 {
		return "no diagnostics"
	}
	if len(b.diags) == 1 {
		return b.diags[0].Error()
	}
	var sb strings.Builder
	fmt.Fprintf(&sb, "%d diagnostics:\n", len(b.diags))
	for i, d := range b.diags {
		fmt.Fprintf(&sb, "  %d. %s\n", i+1, d.Error())
	}
	return sb.String()
}
