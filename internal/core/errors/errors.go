package errors

import (
	"errors"
	"fmt"
)

// Domain errors - these represent violations of the delivery layer's rules
var (
	// Authentication & Authorization
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrForbidden          = errors.New("action forbidden")
	ErrUnauthorized       = errors.New("unauthorized")

	// Addressing & catalog
	ErrUnknownRole    = errors.New("unknown role")
	ErrInvalidAddress = errors.New("invalid room address")
	ErrUnknownEvent   = errors.New("event name not present in catalog")

	// Generic
	ErrNotFound    = errors.New("resource not found")
	ErrInternal    = errors.New("internal server error")
	ErrBadRequest  = errors.New("bad request")
	ErrRateLimited = errors.New("rate limit exceeded")
)

// InvalidAddressError reports room key construction from malformed or
// missing identifying fields. Surfaced synchronously to the caller of the
// addressing function; no room key is constructed.
type InvalidAddressError struct {
	Field  string
	Value  string
	Reason string
}

func (e *InvalidAddressError) Error() string {
	return fmt.Sprintf("invalid room address: %s=%q (%s)", e.Field, e.Value, e.Reason)
}

func (e *InvalidAddressError) Is(target error) bool {
	return target == ErrInvalidAddress
}

// UnknownEventError reports an attempt to dispatch a name absent from the
// event catalog. Static typos fail at initialization; dynamically built
// names are rejected at call time with this error.
type UnknownEventError struct {
	Name string
}

func (e *UnknownEventError) Error() string {
	return fmt.Sprintf("unknown event %q: not registered in the catalog", e.Name)
}

func (e *UnknownEventError) Is(target error) bool {
	return target == ErrUnknownEvent
}

// DeliveryFailure reports a transport-level failure during broadcast. It is
// recovered locally: logged, reported as a failed Outcome, never re-thrown
// to the triggering business operation.
type DeliveryFailure struct {
	Room string
	Err  error
}

func (e *DeliveryFailure) Error() string {
	return fmt.Sprintf("delivery to room %q failed: %v", e.Room, e.Err)
}

func (e *DeliveryFailure) Unwrap() error {
	return e.Err
}

// ValidationFailure reports an inbound listener payload missing required
// correlation fields. Recovered locally: logged, the listener exits without
// dispatching.
type ValidationFailure struct {
	Listener string
	Err      error
}

func (e *ValidationFailure) Error() string {
	return fmt.Sprintf("listener %q rejected payload: %v", e.Listener, e.Err)
}

func (e *ValidationFailure) Unwrap() error {
	return e.Err
}

// AppError wraps errors with additional context for HTTP responses
type AppError struct {
	Err        error  // The underlying error
	Message    string // User-friendly message
	Code       string // Machine-readable error code
	StatusCode int    // HTTP status code
	Details    map[string]interface{}
}

func (e *AppError) Error() string {
	if e.Message != "" {
		return e.Message
	}
	return e.Err.Error()
}

func (e *AppError) Unwrap() error {
	return e.Err
}

// Error constructors for common cases
func NewBadRequestError(err error, message string) *AppError {
	return &AppError{
		Err:        err,
		Message:    message,
		Code:       "BAD_REQUEST",
		StatusCode: 400,
	}
}

func NewUnauthorizedError(message string) *AppError {
	return &AppError{
		Err:        ErrUnauthorized,
		Message:    message,
		Code:       "UNAUTHORIZED",
		StatusCode: 401,
	}
}

func NewForbiddenError(message string) *AppError {
	return &AppError{
		Err:        ErrForbidden,
		Message:    message,
		Code:       "FORBIDDEN",
		StatusCode: 403,
	}
}

func NewNotFoundError(err error, message string) *AppError {
	return &AppError{
		Err:        err,
		Message:    message,
		Code:       "NOT_FOUND",
		StatusCode: 404,
	}
}

func NewValidationError(err error, message string, details map[string]interface{}) *AppError {
	return &AppError{
		Err:        err,
		Message:    message,
		Code:       "VALIDATION_ERROR",
		StatusCode: 422,
		Details:    details,
	}
}

func NewRateLimitError() *AppError {
	return &AppError{
		Err:        ErrRateLimited,
		Message:    "Too many requests. Please try again later.",
		Code:       "RATE_LIMITED",
		StatusCode: 429,
	}
}

func NewInternalError(err error) *AppError {
	return &AppError{
		Err:        err,
		Message:    "An unexpected error occurred",
		Code:       "INTERNAL_ERROR",
		StatusCode: 500,
	}
}
