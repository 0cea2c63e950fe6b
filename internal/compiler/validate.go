package compiler

import (
	"fmt"

	"github.com/roach88/framecheck/internal/ir"
)

// Validation error codes (E100-E199)
const (
	// Reference errors (E101-E102)
	ErrUnknownSig   = "E101" // sig reference names no declared sig
	ErrUnknownField = "E102" // field reference names no field of its sig

	// Declaration errors (E103-E105)
	ErrDuplicateName = "E103" // duplicate predicate name within a unit
	ErrEmptyDecl     = "E104" // quantifier without declarations, or declaration without names
	ErrCallArity     = "E105" // call argument count differs from the callee's parameters

	// Warnings (E106-E108)
	ErrUnknownCall   = "E106" // call names no predicate; the checker treats it as inert
	ErrMissingHelper = "E107" // the unchanged helper is not defined
	ErrRecursiveCall = "E108" // predicates call each other recursively
)

// Severity levels for validation findings.
const (
	SeverityError   = "error"
	SeverityWarning = "warning"
)

// ValidationError represents a spec validation finding.
type ValidationError struct {
	Field    string `json:"field"`
	Message  string `json:"message"`
	Code     string `json:"code"`
	Severity string `json:"severity"`
	Line     int    `json:"line,omitempty"`
}

// Error implements the error interface.
func (e ValidationError) Error() string {
	if e.Line > 0 {
		return fmt.Sprintf("[%s] line %d: %s: %s", e.Code, e.Line, e.Field, e.Message)
	}
	return fmt.Sprintf("[%s] %s: %s", e.Code, e.Field, e.Message)
}

// IsWarning reports whether the finding does not block checking.
func (e ValidationError) IsWarning() bool {
	return e.Severity == SeverityWarning
}

// HasErrors reports whether any finding is an error.
func HasErrors(errs []ValidationError) bool {
	for _, e := range errs {
		if !e.IsWarning() {
			return true
		}
	}
	return false
}

// builtinSigs are the predefined relations every spec may reference.
var builtinSigs = map[string]bool{"univ": true, "none": true, "iden": true, "Int": true}

// ValidateSpec checks a compiled spec for references the checker cannot
// resolve. Returns all findings (does not fail-fast). helper is the
// unqualified name of the unchanged helper.
func ValidateSpec(spec *ir.Spec, helper string) []ValidationError {
	var errs []ValidationError

	// E107: the helper must be defined for frame conditions to mean anything
	if _, ok := spec.Definition(helper); !ok {
		errs = append(errs, ValidationError{
			Field:    "definitions.preds",
			Message:  fmt.Sprintf("unchanged helper %q is not defined", helper),
			Code:     ErrMissingHelper,
			Severity: SeverityWarning,
		})
	}

	units := []struct {
		name  string
		preds []*ir.Predicate
	}{
		{"definitions", spec.Definitions},
		{"transitions", spec.Transitions},
	}
	for _, unit := range units {
		names := make(map[string]bool)
		for _, p := range unit.preds {
			field := fmt.Sprintf("%s.preds.%s", unit.name, p.Label())

			// E103: duplicate predicate name
			if names[p.Label()] {
				errs = append(errs, ValidationError{
					Field:    field,
					Message:  fmt.Sprintf("duplicate predicate name: %q", p.Label()),
					Code:     ErrDuplicateName,
					Severity: SeverityError,
					Line:     p.Pos.Line,
				})
			}
			names[p.Label()] = true

			for _, d := range p.Params {
				errs = append(errs, validateDecl(spec, d, field+".params", helper)...)
			}
			errs = append(errs, validateExpr(spec, p.Body, field, helper)...)
		}
	}

	// E108: recursive predicates
	for _, w := range AnalyzeRecursion(spec) {
		errs = append(errs, ValidationError{
			Field:    "preds",
			Message:  w.Message,
			Code:     ErrRecursiveCall,
			Severity: SeverityWarning,
		})
	}

	return errs
}

// validateExpr walks an expression and reports unresolvable references.
func validateExpr(spec *ir.Spec, e ir.Expr, field, helper string) []ValidationError {
	var errs []ValidationError

	ir.Any(e, func(n ir.Expr) bool {
		line := n.Position().Line
		switch node := n.(type) {
		case *ir.SigRef:
			// E101: unknown sig
			if _, ok := spec.Sig(node.Name); !ok && !builtinSigs[ir.Unqualify(node.Name)] {
				errs = append(errs, ValidationError{
					Field:    field,
					Message:  fmt.Sprintf("unknown sig %q", node.Name),
					Code:     ErrUnknownSig,
					Severity: SeverityError,
					Line:     line,
				})
			}

		case *ir.FieldRef:
			if _, ok := spec.Sig(node.Sig); !ok {
				// E101: unknown owning sig
				errs = append(errs, ValidationError{
					Field:    field,
					Message:  fmt.Sprintf("unknown sig %q in field reference %s", node.Sig, node.ID()),
					Code:     ErrUnknownSig,
					Severity: SeverityError,
					Line:     line,
				})
			} else if _, ok := spec.Field(node.Sig, node.Name); !ok {
				// E102: unknown field
				errs = append(errs, ValidationError{
					Field:    field,
					Message:  fmt.Sprintf("sig %q has no field %q", ir.Unqualify(node.Sig), node.Name),
					Code:     ErrUnknownField,
					Severity: SeverityError,
					Line:     line,
				})
			}

		case *ir.Quant:
			// E104: quantifier must declare something
			if len(node.Decls) == 0 {
				errs = append(errs, ValidationError{
					Field:    field,
					Message:  fmt.Sprintf("%s quantifier has no declarations", node.Op),
					Code:     ErrEmptyDecl,
					Severity: SeverityError,
					Line:     line,
				})
			}
			for _, d := range node.Decls {
				if len(d.Names) == 0 {
					errs = append(errs, emptyDecl(field, line))
				}
			}

		case *ir.Call:
			switch {
			case node.Target != nil && node.Target.Arity() != len(node.Args):
				// E105: arity mismatch
				errs = append(errs, ValidationError{
					Field: field,
					Message: fmt.Sprintf("call to %s passes %d arguments, predicate declares %d",
						node.Target.Label(), len(node.Args), node.Target.Arity()),
					Code:     ErrCallArity,
					Severity: SeverityError,
					Line:     line,
				})
			case node.Target == nil && ir.Unqualify(node.Name) != helper:
				// E106: unresolved call
				errs = append(errs, ValidationError{
					Field:    field,
					Message:  fmt.Sprintf("call to undeclared predicate %q commits nothing", node.Name),
					Code:     ErrUnknownCall,
					Severity: SeverityWarning,
					Line:     line,
				})
			}
		}
		return false
	})

	return errs
}

func validateDecl(spec *ir.Spec, d ir.Decl, field, helper string) []ValidationError {
	var errs []ValidationError
	if len(d.Names) == 0 {
		errs = append(errs, emptyDecl(field, 0))
	}
	return append(errs, validateExpr(spec, d.Domain, field, helper)...)
}

func emptyDecl(field string, line int) ValidationError {
	return ValidationError{
		Field:    field,
		Message:  "declaration has no names",
		Code:     ErrEmptyDecl,
		Severity: SeverityError,
		Line:     line,
	}
}
