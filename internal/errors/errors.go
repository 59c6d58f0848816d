package errors

import (
	stderrors "errors"
	"fmt"
	"strings"
)

// ErrCode represents an error code
type ErrCode string

const (
	ErrCodeNotFound         ErrCode = "NOT_FOUND"
	ErrCodeUnauthorized     ErrCode = "UNAUTHORIZED"
	ErrCodeRateLimited      ErrCode = "RATE_LIMITED"
	ErrCodeInternal         ErrCode = "INTERNAL_ERROR"
	ErrCodeBadRequest       ErrCode = "BAD_REQUEST"
	ErrCodeMalformedRecord  ErrCode = "MALFORMED_RECORD"
	ErrCodeValidationFailed ErrCode = "VALIDATION_FAILED"
	ErrCodeUpstream         ErrCode = "UPSTREAM_ERROR"
)

// AppError represents an application error
type AppError struct {
	Code    ErrCode
	Message string
	Err     error
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s (%v)", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *AppError) Unwrap() error {
	return e.Err
}

// NewNotFoundError creates a new not found error
func NewNotFoundError(resource string) *AppError {
	return &AppError{
		Code:    ErrCodeNotFound,
		Message: fmt.Sprintf("%s not found", resource),
	}
}

// NewUnauthorizedError creates a new unauthorized error
func NewUnauthorizedError(message string) *AppError {
	return &AppError{Code: ErrCodeUnauthorized, Message: message}
}

// NewRateLimitedError creates a new rate limited error
func NewRateLimitedError(message string) *AppError {
	return &AppError{Code: ErrCodeRateLimited, Message: message}
}

// NewInternalError creates a new internal error
func NewInternalError(message string, err error) *AppError {
	return &AppError{Code: ErrCodeInternal, Message: message, Err: err}
}

// NewBadRequestError creates a new bad request error
func NewBadRequestError(message string) *AppError {
	return &AppError{Code: ErrCodeBadRequest, Message: message}
}

// NewMalformedRecordError reports a source record that cannot be aggregated.
func NewMalformedRecordError(message string) *AppError {
	return &AppError{Code: ErrCodeMalformedRecord, Message: message}
}

// NewValidationError joins every problem found in a batch into one error.
func NewValidationError(problems []string) *AppError {
	return &AppError{
		Code:    ErrCodeValidationFailed,
		Message: strings.Join(problems, "; "),
	}
}

// NewUpstreamError wraps a failure reported by the billing service.
func NewUpstreamError(message string, err error) *AppError {
	return &AppError{Code: ErrCodeUpstream, Message: message, Err: err}
}

// CodeOf returns the code of the first AppError in err's chain, or "".
func CodeOf(err error) ErrCode {
	var appErr *AppError
	if stderrors.As(err, &appErr) {
		return appErr.Code
	}
	return ""
}

// IsNotFound checks if the error is a not found error
func IsNotFound(err error) bool {
	return CodeOf(err) == ErrCodeNotFound
}

// IsRateLimited checks if the error is a rate limited error
func IsRateLimited(err error) bool {
	return CodeOf(err) == ErrCodeRateLimited
}

func IsMalformedRecord(err error) bool {
	return CodeOf(err) == ErrCodeMalformedRecord
}

func IsValidation(err error) bool {
	return CodeOf(err) == ErrCodeValidationFailed
}

func IsUnauthorized(err error) bool {
	return CodeOf(err) == ErrCodeUnauthorized
}
