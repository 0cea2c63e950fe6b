package harness

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"

	"github.com/roach88/framecheck/internal/frame"
	"github.com/roach88/framecheck/internal/store"
)

// AssertionError is returned when an assertion fails.
// It includes the rendered output to help debug the failure.
type AssertionError struct {
	Type     string // Assertion type for categorization
	Expected string // Human-readable expected outcome
	Actual   string // Human-readable actual outcome
	Output   string // Rendered report text for context
}

// Error implements the error interface.
func (e *AssertionError) Error() string {
	var buf strings.Builder

	fmt.Fprintf(&buf, "Assertion failed: %s\n", e.Type)
	fmt.Fprintf(&buf, "  Expected: %s\n", e.Expected)
	fmt.Fprintf(&buf, "  Actual: %s\n", e.Actual)

	if e.Output != "" {
		fmt.Fprintf(&buf, "\nOutput:\n")
		for _, line := range strings.Split(strings.TrimRight(e.Output, "\n"), "\n") {
			fmt.Fprintf(&buf, "  %s\n", line)
		}
	}

	return buf.String()
}

// AssertionContext provides store access for stored assertions.
type AssertionContext struct {
	Store *store.Store
	Ctx   context.Context
	RunID string
}

// EvaluateAssertions evaluates all assertions against the result.
// Returns a slice of error messages for failed assertions.
//
// A structural error that no error assertion expects is reported as a
// failure of its own.
func EvaluateAssertions(result *Result, assertions []Assertion, actx *AssertionContext) []string {
	var errs []string

	expectsError := false
	for i, a := range assertions {
		var err error

		switch a.Type {
		case AssertClean:
			err = assertStatus(result, a, frame.StatusClean)
		case AssertSkipped:
			err = assertStatus(result, a, frame.StatusSkipped)
		case AssertMissingField:
			err = assertMissingField(result, a)
		case AssertMissingSets:
			err = assertMissingSets(result, a)
		case AssertBranchMismatch:
			err = assertBranchMismatch(result, a)
		case AssertError:
			expectsError = true
			err = assertError(result, a)
		case AssertStored:
			if actx == nil || actx.Store == nil {
				err = fmt.Errorf("assertion[%d]: stored requires database context", i)
			} else {
				err = assertStored(actx, result, a)
			}
		default:
			err = fmt.Errorf("assertion[%d]: unknown assertion type %q", i, a.Type)
		}

		if err != nil {
			errs = append(errs, err.Error())
		}
	}

	if result.RunErr != nil && !expectsError {
		errs = append(errs, (&AssertionError{
			Type:     "run",
			Expected: "run to complete",
			Actual:   result.RunErr.Error(),
			Output:   result.Text,
		}).Error())
	}

	return errs
}

func assertStatus(result *Result, a Assertion, want frame.Status) error {
	rep := result.report(a.Predicate)
	if rep == nil {
		return missingReport(result, a)
	}
	if rep.Status != want {
		return &AssertionError{
			Type:     a.Type,
			Expected: fmt.Sprintf("%s to be %s", a.Predicate, want),
			Actual:   string(rep.Status),
			Output:   rep.Text(),
		}
	}
	return nil
}

func assertMissingField(result *Result, a Assertion) error {
	rep := result.report(a.Predicate)
	if rep == nil {
		return missingReport(result, a)
	}
	for _, d := range rep.Diagnostics {
		if d.Kind == frame.DiagMissingField && d.Field == a.Field {
			return compareTokens(a, d.Tokens, rep)
		}
	}
	return &AssertionError{
		Type:     a.Type,
		Expected: fmt.Sprintf("%s to report %s", a.Predicate, a.Field),
		Actual:   "field not reported",
		Output:   rep.Text(),
	}
}

func assertMissingSets(result *Result, a Assertion) error {
	rep := result.report(a.Predicate)
	if rep == nil {
		return missingReport(result, a)
	}
	for _, d := range rep.Diagnostics {
		if d.Kind == frame.DiagMissingSets {
			return compareTokens(a, d.Tokens, rep)
		}
	}
	return &AssertionError{
		Type:     a.Type,
		Expected: fmt.Sprintf("%s to report missing sets", a.Predicate),
		Actual:   "no sets reported",
		Output:   rep.Text(),
	}
}

func compareTokens(a Assertion, got []string, rep *frame.Report) error {
	if len(a.Tokens) == 0 || slices.Equal(a.Tokens, got) {
		return nil
	}
	return &AssertionError{
		Type:     a.Type,
		Expected: fmt.Sprintf("[%s]", strings.Join(a.Tokens, ", ")),
		Actual:   fmt.Sprintf("[%s]", strings.Join(got, ", ")),
		Output:   rep.Text(),
	}
}

// assertBranchMismatch accepts a mismatch reported either by a transition
// or by a definition of that name.
func assertBranchMismatch(result *Result, a Assertion) error {
	diags := slices.Clone(result.Definitions)
	if rep := result.report(a.Predicate); rep != nil {
		diags = append(diags, rep.Diagnostics...)
	}
	for _, d := range diags {
		if d.Kind == frame.DiagBranchMismatch && d.Predicate == a.Predicate {
			return nil
		}
	}
	return &AssertionError{
		Type:     a.Type,
		Expected: fmt.Sprintf("%s to report a branch mismatch", a.Predicate),
		Actual:   "no mismatch reported",
		Output:   result.Text,
	}
}

func assertError(result *Result, a Assertion) error {
	var ce *frame.CheckerError
	if !errors.As(result.RunErr, &ce) {
		return &AssertionError{
			Type:     a.Type,
			Expected: "run to stop on a structural error",
			Actual:   "run completed",
			Output:   result.Text,
		}
	}
	if a.Code != "" && string(ce.Code) != a.Code {
		return &AssertionError{
			Type:     a.Type,
			Expected: "error code " + a.Code,
			Actual:   "error code " + string(ce.Code),
			Output:   result.Text,
		}
	}
	if a.Predicate != "" && ce.Predicate != a.Predicate {
		return &AssertionError{
			Type:     a.Type,
			Expected: "error in " + a.Predicate,
			Actual:   "error in " + ce.Predicate,
			Output:   result.Text,
		}
	}
	return nil
}

// assertStored checks the run as read back from the store.
func assertStored(actx *AssertionContext, result *Result, a Assertion) error {
	run, err := actx.Store.LoadRun(actx.Ctx, actx.RunID)
	if err != nil {
		return fmt.Errorf("stored: %w", err)
	}
	for _, rep := range run.Reports {
		if rep.Predicate != a.Predicate {
			continue
		}
		if rep.Status != a.Status {
			return &AssertionError{
				Type:     a.Type,
				Expected: fmt.Sprintf("stored %s to be %s", a.Predicate, a.Status),
				Actual:   rep.Status,
				Output:   rep.Text,
			}
		}
		return nil
	}
	return &AssertionError{
		Type:     a.Type,
		Expected: fmt.Sprintf("stored report for %s", a.Predicate),
		Actual:   fmt.Sprintf("run %s holds %d reports", run.ID, len(run.Reports)),
		Output:   result.Text,
	}
}

func missingReport(result *Result, a Assertion) error {
	return &AssertionError{
		Type:     a.Type,
		Expected: fmt.Sprintf("a report for %s", a.Predicate),
		Actual:   "no report",
		Output:   result.Text,
	}
}
