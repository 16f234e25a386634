package domain

import "fmt"

// ValidationError reports a rejected input before any numeric work is done.
// Param names the offending parameter and Constraint states the violated
// precondition, so callers can surface the exact failure.
type ValidationError struct {
	Param      string
	Constraint string
}

func NewValidationError(param, constraint string) *ValidationError {
	return &ValidationError{Param: param, Constraint: constraint}
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Param, e.Constraint)
}
