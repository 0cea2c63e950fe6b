package frame

import (
	"fmt"
	"io"
	"strings"

	"github.com/roach88/framecheck/internal/ir"
)

// DiagnosticKind categorizes report findings.
type DiagnosticKind string

const (
	// DiagBranchMismatch indicates the arms of a conditional commit different expressions.
	DiagBranchMismatch DiagnosticKind = "branch_mismatch"

	// DiagMissingField indicates a mutable field with unaccounted instances.
	DiagMissingField DiagnosticKind = "missing_field"

	// DiagMissingSets indicates mutable type-level sets no commitment named.
	DiagMissingSets DiagnosticKind = "missing_sets"
)

// Diagnostic is a non-fatal finding. Diagnostics never abort a run.
type Diagnostic struct {
	Kind      DiagnosticKind `json:"kind"`
	Predicate string         `json:"predicate"`

	// Field is the "Sig.field" id for DiagMissingField.
	Field string `json:"field,omitempty"`

	// Tokens lists the unaccounted instances or sets, sorted.
	Tokens []string `json:"tokens,omitempty"`

	// Covered lists the instances of Field the transition did account
	// for, sorted. Only set for DiagMissingField.
	Covered []string `json:"covered,omitempty"`

	// Then and Else hold both arms for DiagBranchMismatch.
	Then *Commitments `json:"then,omitempty"`
	Else *Commitments `json:"else,omitempty"`
}

// Status summarizes a report.
type Status string

const (
	StatusClean    Status = "clean"
	StatusWarnings Status = "warnings"
	StatusSkipped  Status = "skipped"
)

// Report is the outcome for one transition predicate.
type Report struct {
	Predicate   string       `json:"predicate"`
	Status      Status       `json:"status"`
	Commitments *Commitments `json:"commitments,omitempty"`
	Diagnostics []Diagnostic `json:"diagnostics,omitempty"`
}

func skippedReport(name string) *Report {
	return &Report{Predicate: name, Status: StatusSkipped}
}

// newReport assembles the report for an analyzed transition: branch
// mismatches first, then fields in id order, then type-level sets.
func newReport(name string, c Commitments, mismatches []Diagnostic, cov *Coverage) *Report {
	r := &Report{Predicate: name, Commitments: &c}
	r.Diagnostics = append(r.Diagnostics, mismatches...)
	for _, fc := range cov.Uncovered() {
		r.Diagnostics = append(r.Diagnostics, Diagnostic{
			Kind:      DiagMissingField,
			Predicate: name,
			Field:     fc.Field.ID(),
			Tokens:    fc.Unknown(),
			Covered:   fc.Known(),
		})
	}
	if sets := cov.MissingSets(); len(sets) > 0 {
		r.Diagnostics = append(r.Diagnostics, Diagnostic{
			Kind:      DiagMissingSets,
			Predicate: name,
			Tokens:    sets,
		})
	}
	r.Status = StatusClean
	if len(r.Diagnostics) > 0 {
		r.Status = StatusWarnings
	}
	return r
}

// HasCoverageGaps reports whether any field or set was left unaccounted.
func (r *Report) HasCoverageGaps() bool {
	for _, d := range r.Diagnostics {
		if d.Kind != DiagBranchMismatch {
			return true
		}
	}
	return false
}

// Render writes the text form of the report.
func (r *Report) Render(w io.Writer) error {
	_, err := io.WriteString(w, r.Text())
	return err
}

// Text returns the text form of the report.
func (r *Report) Text() string {
	var b strings.Builder
	if r.Status == StatusSkipped {
		fmt.Fprintf(&b, "Skipped %s\n", r.Predicate)
		return b.String()
	}
	fmt.Fprintf(&b, "%s:\n", r.Predicate)
	for _, d := range r.Diagnostics {
		writeDiagnostic(&b, d)
	}
	if !r.HasCoverageGaps() {
		b.WriteString("\tNo frame condition issues detected\n")
	}
	return b.String()
}

func writeDiagnostic(b *strings.Builder, d Diagnostic) {
	switch d.Kind {
	case DiagBranchMismatch:
		b.WriteString("\tWARNING: if and else branches of an if-then-else statement may not match\n")
		writeListing(b, "Changes in if branch:", d.Then.Changed)
		writeListing(b, "Frame conditions in if branch:", d.Then.Unchanged)
		writeListing(b, "Changes in else branch:", d.Else.Changed)
		writeListing(b, "Frame conditions in else branch:", d.Else.Unchanged)
	case DiagMissingField:
		fmt.Fprintf(b, "\t%s may require a frame condition for [%s]\n", d.Field, strings.Join(d.Tokens, ", "))
	case DiagMissingSets:
		fmt.Fprintf(b, "\tFrame conditions may be missing for [%s]\n", strings.Join(d.Tokens, ", "))
	}
}

func writeListing(b *strings.Builder, title string, exprs []ir.Expr) {
	fmt.Fprintf(b, "\t%s\n", title)
	for _, e := range exprs {
		fmt.Fprintf(b, "\t\t%s\n", e)
	}
}

// RenderDefinitionDiagnostics writes branch mismatches found in library
// definitions, grouped under one header per definition.
func RenderDefinitionDiagnostics(w io.Writer, diags []Diagnostic) error {
	var b strings.Builder
	current := ""
	for _, d := range diags {
		if d.Predicate != current || b.Len() == 0 {
			fmt.Fprintf(&b, "definition %s:\n", d.Predicate)
			current = d.Predicate
		}
		writeDiagnostic(&b, d)
	}
	_, err := io.WriteString(w, b.String())
	return err
}
