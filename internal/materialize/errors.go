package materialize

import (
	"errors"
	"fmt"
)

// MaterializationErrorCode categorizes pipeline failures.
type MaterializationErrorCode string

const (
	// ErrCodeCanonicalizationFailed indicates graph rewriting during
	// canonicalization could not complete.
	ErrCodeCanonicalizationFailed MaterializationErrorCode = "CANONICALIZATION_FAILED"

	// ErrCodeVerificationFailed indicates the verification gate halted
	// the pipeline.
	ErrCodeVerificationFailed MaterializationErrorCode = "VERIFICATION_FAILED"

	// ErrCodeTransformFailed indicates a registered transform failed.
	ErrCodeTransformFailed MaterializationErrorCode = "TRANSFORM_FAILED"

	// ErrCodeResourceOverflow indicates the estimated layout exceeds
	// the target's resources.
	ErrCodeResourceOverflow MaterializationErrorCode = "RESOURCE_OVERFLOW"

	// ErrCodeSchedulingFailed indicates the schedule could not be
	// computed (typically an illegal cycle).
	ErrCodeSchedulingFailed MaterializationErrorCode = "SCHEDULING_FAILED"

	// ErrCodeLayoutFailed indicates memory layout estimation failed.
	ErrCodeLayoutFailed MaterializationErrorCode = "LAYOUT_FAILED"

	// ErrCodeInvalidGraph indicates the input graph is structurally
	// unsound.
	ErrCodeInvalidGraph MaterializationErrorCode = "INVALID_GRAPH"

	// ErrCodeMissingConfig indicates a required pipeline config field
	// is absent.
	ErrCodeMissingConfig MaterializationErrorCode = "MISSING_CONFIG"
)

// MaterializationError is a structured pipeline failure.
type MaterializationError struct {
	// Code identifies the failure category.
	Code MaterializationErrorCode

	// Message is a human-readable description.
	Message string

	// Failed and Pending carry obligation counts for verification
	// failures.
	Failed  int
	Pending int
}

// Error implements the error interface.
func (e *MaterializationError) Error() string {
	if e.Code == ErrCodeVerificationFailed {
		return fmt.Sprintf("%s: %d failed, %d pending obligations", e.Code, e.Failed, e.Pending)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// NewVerificationFailedError reports a halted verification gate.
func NewVerificationFailedError(failed, pending int) *MaterializationError {
	return &MaterializationError{
		Code:    ErrCodeVerificationFailed,
		Failed:  failed,
		Pending: pending,
	}
}

// NewResourceOverflowError reports resource fitting violations.
func NewResourceOverflowError(message string) *MaterializationError {
	return &MaterializationError{Code: ErrCodeResourceOverflow, Message: message}
}

// NewSchedulingError reports a scheduling failure.
func NewSchedulingError(message string) *MaterializationError {
	return &MaterializationError{Code: ErrCodeSchedulingFailed, Message: message}
}

// NewCanonicalizationError reports a canonicalization failure.
func NewCanonicalizationError(message string) *MaterializationError {
	return &MaterializationError{Code: ErrCodeCanonicalizationFailed, Message: message}
}

// NewTransformError reports a failed transform pass.
func NewTransformError(name, message string) *MaterializationError {
	return &MaterializationError{
		Code:    ErrCodeTransformFailed,
		Message: fmt.Sprintf("transform %s: %s", name, message),
	}
}

// NewMissingConfigError reports an absent required config field.
func NewMissingConfigError(field string) *MaterializationError {
	return &MaterializationError{
		Code:    ErrCodeMissingConfig,
		Message: fmt.Sprintf("missing required config field: %s", field),
	}
}

// IsVerificationError reports whether err is a halted verification
// gate.
func IsVerificationError(err error) bool {
	var me *MaterializationError
	return errors.As(err, &me) && me.Code == ErrCodeVerificationFailed
}

// IsResourceError reports whether err is a resource overflow.
func IsResourceError(err error) bool {
	var me *MaterializationError
	return errors.As(err, &me) && me.Code == ErrCodeResourceOverflow
}

// ErrorCode extracts the materialization error code, if any.
func ErrorCode(err error) (MaterializationErrorCode, bool) {
	var me *MaterializationError
	if errors.As(err, &me) {
		return me.Code, true
	}
	return "", false
}
