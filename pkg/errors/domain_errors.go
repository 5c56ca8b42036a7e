package custom_error

import (
	"errors"
	"fmt"
)

// ValidationError blocks the triggering write. Raised synchronously for
// bad input: non-positive quantities, self-referential relations,
// mismatched product classification.
type ValidationError struct {
	message string
}

func (e *ValidationError) Error() string {
	return e.message
}

func NewValidationError(format string, args ...interface{}) *ValidationError {
	return &ValidationError{message: fmt.Sprintf(format, args...)}
}

// OperatorError carries a message for the initiating user. State is left
// intact; the operator is expected to act and retry.
type OperatorError struct {
	message string
}

func (e *OperatorError) Error() string {
	return e.message
}

func NewOperatorError(format string, args ...interface{}) *OperatorError {
	return &OperatorError{message: fmt.Sprintf(format, args...)}
}

// DuplicateAssignmentError means a serialized unit is already the related
// end of another supply line. Under the optimistic commit-time model a
// concurrent session may have consumed the candidate; callers should
// re-fetch the pool and retry rather than fail.
type DuplicateAssignmentError struct {
	RelatedUnitID int
}

func (e *DuplicateAssignmentError) Error() string {
	return fmt.Sprintf("serialized unit %d is already assigned as related", e.RelatedUnitID)
}

func IsDuplicateAssignment(err error) bool {
	var dup *DuplicateAssignmentError
	return errors.As(err, &dup)
}

func IsOperatorError(err error) bool {
	var op *OperatorError
	return errors.As(err, &op)
}

func IsValidationError(err error) bool {
	var v *ValidationError
	return errors.As(err, &v)
}
