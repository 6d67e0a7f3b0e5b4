package apperror

import (
	"errors"
	"fmt"
)

// Kind classifies an application error for HTTP mapping and retry policy.
type Kind int

const (
	KindUnknown Kind = iota
	KindNotFound
	KindInvalidTransition
	KindValidation
	KindExecutorFailure
	KindConcurrencyConflict
)

func (k Kind) String() string {
	switch k {
	case KindNotFound:
		return "NOT_FOUND"
	case KindInvalidTransition:
		return "INVALID_TRANSITION"
	case KindValidation:
		return "VALIDATION_ERROR"
	case KindExecutorFailure:
		return "EXECUTOR_FAILURE"
	case KindConcurrencyConflict:
		return "CONCURRENCY_CONFLICT"
	default:
		return "UNKNOWN"
	}
}

// AppError is the typed error returned by services.
// Only KindConcurrencyConflict is ever retried, and only internally.
type AppError struct {
	Kind    Kind
	Message string

	// CurrentStatus is populated for invalid-transition errors so the caller
	// can react to the actual state of the session.
	CurrentStatus string

	// Fields holds field-level validation detail.
	Fields map[string]string

	Err error
}

func (e *AppError) Error() string {
	if e.CurrentStatus != "" {
		return fmt.Sprintf("%s: %s (current status: %s)", e.Kind, e.Message, e.CurrentStatus)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *AppError) Unwrap() error {
	return e.Err
}

func NotFound(format string, args ...interface{}) *AppError {
	return &AppError{Kind: KindNotFound, Message: fmt.Sprintf(format, args...)}
}

func InvalidTransition(currentStatus, format string, args ...interface{}) *AppError {
	return &AppError{
		Kind:          KindInvalidTransition,
		Message:       fmt.Sprintf(format, args...),
		CurrentStatus: currentStatus,
	}
}

func Validation(message string, fields map[string]string) *AppError {
	return &AppError{Kind: KindValidation, Message: message, Fields: fields}
}

func ExecutorFailure(err error, format string, args ...interface{}) *AppError {
	return &AppError{Kind: KindExecutorFailure, Message: fmt.Sprintf(format, args...), Err: err}
}

func ConcurrencyConflict(format string, args ...interface{}) *AppError {
	return &AppError{Kind: KindConcurrencyConflict, Message: fmt.Sprintf(format, args...)}
}

// IsKind reports whether err (or anything it wraps) is an AppError of the given kind.
func IsKind(err error, kind Kind) bool {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Kind == kind
	}
	return false
}

// KindOf extracts the kind from err, or KindUnknown.
func KindOf(err error) Kind {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Kind
	}
	return KindUnknown
}
