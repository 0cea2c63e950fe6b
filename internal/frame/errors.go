package frame

import (
	"errors"
	"fmt"

	"github.com/roach88/framecheck/internal/ir"
)

// ErrorCode categorizes structural checker errors.
type ErrorCode string

const (
	// ErrCodeBothPrimed indicates a comparison with next-state values on both sides.
	ErrCodeBothPrimed ErrorCode = "E201"

	// ErrCodeUnsupportedExpr indicates an expression kind the checker cannot analyze.
	ErrCodeUnsupportedExpr ErrorCode = "E202"

	// ErrCodeUnsupportedQuant indicates a quantifier other than "all".
	ErrCodeUnsupportedQuant ErrorCode = "E203"

	// ErrCodeHelperArity indicates an unchanged call without exactly one argument.
	ErrCodeHelperArity ErrorCode = "E204"

	// ErrCodeUnresolvable indicates a commitment whose shape the resolver does not handle.
	ErrCodeUnresolvable ErrorCode = "E205"

	// ErrCodeUncheckedField indicates a commitment on a field that is not mutable.
	ErrCodeUncheckedField ErrorCode = "E206"

	// ErrCodeQuantShape indicates a quantified frame condition with more than one bound name.
	ErrCodeQuantShape ErrorCode = "E207"
)

// CheckerError is a structural failure. It aborts the run: the checker
// cannot say anything about a predicate it could not fully analyze.
type CheckerError struct {
	Code ErrorCode

	// Expr is the offending expression.
	Expr ir.Expr

	// Message is a human-readable description.
	Message string

	// Predicate names the predicate being analyzed when the error occurred.
	Predicate string
}

// Error implements the error interface.
func (e *CheckerError) Error() string {
	expr, pos := "<nil>", ir.Pos{}
	if e.Expr != nil {
		expr, pos = e.Expr.String(), e.Expr.Position()
	}
	return fmt.Sprintf("Error in expr \"%s\" at %s: %s", expr, pos, e.Message)
}

// Pos returns the source position of the offending expression.
func (e *CheckerError) Pos() ir.Pos {
	if e.Expr == nil {
		return ir.Pos{}
	}
	return e.Expr.Position()
}

// IsCheckerError returns true if err is or wraps a CheckerError.
func IsCheckerError(err error) bool {
	var ce *CheckerError
	return errors.As(err, &ce)
}

func newError(code ErrorCode, at ir.Expr, format string, args ...any) *CheckerError {
	return &CheckerError{
		Code:    code,
		Expr:    at,
		Message: fmt.Sprintf(format, args...),
	}
}
