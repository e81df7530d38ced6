package engine

import (
	"errors"
	"fmt"

	"github.com/roach88/traitkit/internal/ir"
)

// PreconditionError reports a partial operation invoked outside its domain.
// The check happens before any rewriting, so no partial result exists.
type PreconditionError struct {
	// Code identifies the violated precondition.
	Code ErrorCode

	// Message is a human-readable description.
	Message string

	// Type is the descriptor the operation was applied to, if any.
	Type ir.Descriptor
}

// ErrorCode categorizes precondition failures.
type ErrorCode string

const (
	// ErrCodeNegativeDepth indicates a negative pointer level count.
	ErrCodeNegativeDepth ErrorCode = "NEGATIVE_DEPTH"

	// ErrCodeDepthUnderflow indicates removing more pointer levels than exist.
	ErrCodeDepthUnderflow ErrorCode = "DEPTH_UNDERFLOW"

	// ErrCodeIllFormed indicates a rewrite whose result is not a valid type,
	// such as an array of references.
	ErrCodeIllFormed ErrorCode = "ILL_FORMED"

	// ErrCodeConditionFailed indicates a conditional size whose condition is false.
	ErrCodeConditionFailed ErrorCode = "CONDITION_FAILED"

	// ErrCodeNoSize indicates a type with no storage size.
	ErrCodeNoSize ErrorCode = "NO_SIZE"

	// ErrCodeBadExtent indicates an array extent below the unbounded marker.
	ErrCodeBadExtent ErrorCode = "BAD_EXTENT"

	// ErrCodeUnsupportedTag indicates a tag with no transform, or a flag
	// combination naming more than one form.
	ErrCodeUnsupportedTag ErrorCode = "UNSUPPORTED_TAG"

	// ErrCodeIncompatible indicates an OnlyIf whose condition is false.
	ErrCodeIncompatible ErrorCode = "INCOMPATIBLE"

	// ErrCodeBadQuery indicates a query missing the fields its kind needs.
	ErrCodeBadQuery ErrorCode = "BAD_QUERY"

	// ErrCodeInternal marks an outcome produced by an error that is not a
	// precondition failure.
	ErrCodeInternal ErrorCode = "INTERNAL"
)

// Error implements the error interface.
func (e *PreconditionError) Error() string {
	if !e.Type.IsZero() {
		return fmt.Sprintf("%s: %s (type=%s)", e.Code, e.Message, e.Type)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// IsPreconditionError returns true if err is a PreconditionError with the
// given code. Uses errors.As to handle wrapped errors.
func IsPreconditionError(err error, code ErrorCode) bool {
	var pe *PreconditionError
	if errors.As(err, &pe) {
		return pe.Code == code
	}
	return false
}

func newPreconditionError(code ErrorCode, d ir.Descriptor, format string, args ...any) *PreconditionError {
	return &PreconditionError{
		Code:    code,
		Message: fmt.Sprintf(format, args...),
		Type:    d,
	}
}
