package solver

import (
	"fmt"
	"strings"

	"github.com/pkg/errors"
)

// Code is a machine-readable usage error code.
type Code string

// Usage error codes.
const (
	ErrCodeStateConflict      Code = "STATE_CONFLICT"
	ErrCodeStatusConflict     Code = "STATUS_CONFLICT"
	ErrCodeEnableDuringSearch Code = "ENABLE_DURING_SEARCH"
	ErrCodeInvalidPropagator  Code = "INVALID_PROPAGATOR"
	ErrCodeFineUnsupported    Code = "FINE_EVENTS_UNSUPPORTED"
	ErrCodeUnknownOperator    Code = "UNKNOWN_OPERATOR"
	ErrCodeInvalidArgument    Code = "INVALID_ARGUMENT"
	ErrCodeNotIgnorable       Code = "NOT_IGNORABLE"
)

// SolverError reports a misuse of the solver API: an illegal propagator
// state transition, an illegal constraint status transition, and the like.
// These errors are never caught by the search and always abort it.
type SolverError struct {
	Code    Code
	Message string
}

// Error returns the code followed by the message.
func (e *SolverError) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// newSolverError builds a *SolverError wrapped with a stack trace.
func newSolverError(code Code, format string, args ...interface{}) error {
	return errors.WithStack(&SolverError{Code: code, Message: fmt.Sprintf(format, args...)})
}

// mustNotHappen panics with a *SolverError. Used for malformed construction.
func mustNotHappen(code Code, format string, args ...interface{}) {
	panic(&SolverError{Code: code, Message: fmt.Sprintf(format, args...)})
}

// IsSolverError reports whether err is, or wraps, a *SolverError.
func IsSolverError(err error) bool {
	var se *SolverError
	return errors.As(err, &se)
}

// CodeOf returns the code of the *SolverError wrapped by err, or "".
func CodeOf(err error) Code {
	var se *SolverError
	if errors.As(err, &se) {
		return se.Code
	}
	return ""
}

// ContradictionError signals an empty domain or an unsatisfiable state.
// It is the expected way for filtering to fail: propagators return it, the
// engine forwards it, and only the search (or a direct caller of
// Solver.Propagate) handles it.
type ContradictionError struct {
	// Origin is the propagator that caused the failure, nil for decisions.
	Origin *Propagator
	// Var is the variable whose domain became empty, if any.
	Var     Variable
	Message string
}

// Error describes the failure with its origin and variable when known.
func (e *ContradictionError) Error() string {
	var b strings.Builder
	b.WriteString("contradiction")
	if e.Origin != nil {
		fmt.Fprintf(&b, " in %s", e.Origin)
	}
	if e.Var != nil {
		fmt.Fprintf(&b, " on %s", e.Var.Name())
	}
	if e.Message != "" {
		b.WriteString(": " + e.Message)
	}
	return b.String()
}

// IsContradiction reports whether err is, or wraps, a *ContradictionError.
func IsContradiction(err error) bool {
	var ce *ContradictionError
	return errors.As(err, &ce)
}

// Fail builds a contradiction raised by cause, optionally on v.
func Fail(cause Cause, v Variable, format string, args ...interface{}) error {
	return &ContradictionError{Origin: originOf(cause), Var: v, Message: fmt.Sprintf(format, args...)}
}
