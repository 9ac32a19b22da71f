package errors

import (
	"errors"
	"fmt"
)

// ErrorCode represents a category of application error.
type ErrorCode string

const (
	// ErrCodeInvalidArgument indicates a required parameter was missing or invalid.
	ErrCodeInvalidArgument ErrorCode = "invalid_argument"
	// ErrCodeNotAuthenticated indicates an operation needed an active identity.
	ErrCodeNotAuthenticated ErrorCode = "not_authenticated"
	// ErrCodeForbidden indicates the active role may not perform the operation.
	ErrCodeForbidden ErrorCode = "forbidden"
	// ErrCodeRemoteRead indicates a read from a remote store failed.
	ErrCodeRemoteRead ErrorCode = "remote_read_failure"
	// ErrCodeRemoteWrite indicates a write to a remote store failed.
	ErrCodeRemoteWrite ErrorCode = "remote_write_failure"
	// ErrCodeConflict indicates a stale version or duplicate key.
	ErrCodeConflict ErrorCode = "conflict"
	// ErrCodeBusy indicates another write is already in flight.
	ErrCodeBusy ErrorCode = "busy"
	// ErrCodeNotFound indicates a resource was not found.
	ErrCodeNotFound ErrorCode = "not_found"
	// ErrCodeValidation indicates invalid input data.
	ErrCodeValidation ErrorCode = "validation"
	// ErrCodeInternal indicates an internal error.
	ErrCodeInternal ErrorCode = "internal"
	// ErrCodeTimeout indicates a timeout occurred.
	ErrCodeTimeout ErrorCode = "timeout"
	// ErrCodeCanceled indicates the operation was canceled.
	ErrCodeCanceled ErrorCode = "canceled"
)

// AppError represents a structured application error with a code, message, and optional cause.
// It supports error wrapping and unwrapping for use with errors.Is and errors.As.
type AppError struct {
	// Code categorizes the error type
	Code ErrorCode
	// Message is a human-readable error message
	Message string
	// Cause is the underlying error that caused this error (optional)
	Cause error
	// Field is the specific field that caused the error (optional, for validation errors)
	Field string
}

// Error implements the error interface.
func (e *AppError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Cause)
	}
	return e.Message
}

// Unwrap returns the underlying cause, enabling errors.Is and errors.As.
func (e *AppError) Unwrap() error {
	return e.Cause
}

func newError(code ErrorCode, message string) *AppError {
	return &AppError{Code: code, Message: message}
}

// InvalidArgument creates a new InvalidArgument error.
func InvalidArgument(message string) *AppError { return newError(ErrCodeInvalidArgument, message) }

// InvalidArgumentField creates a new InvalidArgument error for a specific field.
func InvalidArgumentField(field, message string) *AppError {
	return &AppError{Code: ErrCodeInvalidArgument, Message: message, Field: field}
}

// NotAuthenticated creates a new NotAuthenticated error.
func NotAuthenticated(message string) *AppError { return newError(ErrCodeNotAuthenticated, message) }

// Forbidden creates a new Forbidden error.
func Forbidden(message string) *AppError { return newError(ErrCodeForbidden, message) }

// Busy creates a new Busy error.
func Busy(message string) *AppError { return newError(ErrCodeBusy, message) }

// NotFound creates a new NotFound error.
func NotFound(message string) *AppError { return newError(ErrCodeNotFound, message) }

// NotFoundf creates a new NotFound error with formatted message.
func NotFoundf(format string, args ...any) *AppError {
	return newError(ErrCodeNotFound, fmt.Sprintf(format, args...))
}

// Conflict creates a new Conflict error.
func Conflict(message string) *AppError { return newError(ErrCodeConflict, message) }

// Conflictf creates a new Conflict error with formatted message.
func Conflictf(format string, args ...any) *AppError {
	return newError(ErrCodeConflict, fmt.Sprintf(format, args...))
}

// Validation creates a new Validation error.
func Validation(message string) *AppError { return newError(ErrCodeValidation, message) }

// ValidationField creates a new Validation error for a specific field.
func ValidationField(field, message string) *AppError {
	return &AppError{Code: ErrCodeValidation, Message: message, Field: field}
}

// Internal creates a new Internal error.
func Internal(message string) *AppError { return newError(ErrCodeInternal, message) }

// RemoteRead wraps a failed remote read. Classified causes (conflict, timeout, ...) keep their code.
func RemoteRead(err error, message string) *AppError {
	return wrapRemote(err, ErrCodeRemoteRead, message)
}

// RemoteWrite wraps a failed remote write. Classified causes (conflict, timeout, ...) keep their code.
func RemoteWrite(err error, message string) *AppError {
	return wrapRemote(err, ErrCodeRemoteWrite, message)
}

func wrapRemote(err error, code ErrorCode, message string) *AppError {
	if err == nil {
		return nil
	}
	if inner := GetCode(err); inner == ErrCodeConflict || inner == ErrCodeValidation {
		code = inner
	}
	return &AppError{Code: code, Message: message, Cause: err}
}

// Wrap wraps an existing error with an AppError, preserving the cause.
func Wrap(err error, code ErrorCode, message string) *AppError {
	if err == nil {
		return nil
	}
	return &AppError{
		Code:    code,
		Message: message,
		Cause:   err,
	}
}

// Wrapf wraps an existing error with an AppError and formatted message.
func Wrapf(err error, code ErrorCode, format string, args ...any) *AppError {
	return Wrap(err, code, fmt.Sprintf(format, args...))
}

// isCode checks if an error has a specific error code.
func isCode(err error, code ErrorCode) bool {
	return GetCode(err) == code
}

// IsInvalidArgument checks if an error is an InvalidArgument error.
func IsInvalidArgument(err error) bool { return isCode(err, ErrCodeInvalidArgument) }

// IsNotAuthenticated checks if an error is a NotAuthenticated error.
func IsNotAuthenticated(err error) bool { return isCode(err, ErrCodeNotAuthenticated) }

// IsForbidden checks if an error is a Forbidden error.
func IsForbidden(err error) bool { return isCode(err, ErrCodeForbidden) }

// IsRemoteRead checks if an error is a RemoteReadFailure.
func IsRemoteRead(err error) bool { return isCode(err, ErrCodeRemoteRead) }

// IsRemoteWrite checks if an error is a RemoteWriteFailure.
func IsRemoteWrite(err error) bool { return isCode(err, ErrCodeRemoteWrite) }

// IsConflict checks if an error is a Conflict error.
func IsConflict(err error) bool { return isCode(err, ErrCodeConflict) }

// IsBusy checks if an error is a Busy error.
func IsBusy(err error) bool { return isCode(err, ErrCodeBusy) }

// IsNotFound checks if an error is a NotFound error.
func IsNotFound(err error) bool { return isCode(err, ErrCodeNotFound) }

// IsValidation checks if an error is a Validation error.
func IsValidation(err error) bool { return isCode(err, ErrCodeValidation) }

// IsTimeout checks if an error is a Timeout error.
func IsTimeout(err error) bool { return isCode(err, ErrCodeTimeout) }

// IsCanceled checks if an error is a Canceled error.
func IsCanceled(err error) bool { return isCode(err, ErrCodeCanceled) }

// GetCode returns the outermost ErrorCode from an error, or empty string if not an AppError.
func GetCode(err error) ErrorCode {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Code
	}
	return ""
}

// GetField returns the Field from an error, or empty string if not an AppError or no field set.
func GetField(err error) string {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Field
	}
	return ""
}
