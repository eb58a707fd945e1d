// Package errors provides structured error types for tokenfolio.
//
// Every failure that leaves the data gateway is one of a small, fixed set of
// codes. Callers branch on the code rather than on transport details:
//
//   - NETWORK_UNAVAILABLE: no response from the market data service (retried internally)
//   - RATE_LIMITED: the service answered 429 (retried internally)
//   - NOT_FOUND: the requested asset does not exist
//   - INVALID_ARGUMENT: a precondition failed before any request was made
//   - UPSTREAM_ERROR: any other non-2xx response or an unreadable payload
//
// # Usage
//
//	err := errors.New(errors.ErrCodeInvalidArgument, "asset id cannot be empty")
//	if errors.Is(err, errors.ErrCodeInvalidArgument) {
//	    // Handle validation error
//	}
//
//	// Wrap existing errors
//	err := errors.Wrap(errors.ErrCodeUpstream, origErr, "fetch %s", url)
package errors

import (
	"errors"
	"fmt"
)

// Code represents a machine-readable error code.
type Code string

// Error codes surfaced by the gateway.
const (
	ErrCodeNetworkUnavailable Code = "NETWORK_UNAVAILABLE"
	ErrCodeRateLimited        Code = "RATE_LIMITED"
	ErrCodeNotFound           Code = "NOT_FOUND"
	ErrCodeInvalidArgument    Code = "INVALID_ARGUMENT"
	ErrCodeUpstream           Code = "UPSTREAM_ERROR"
)

// Error is a structured error with a code and optional cause.
type Error struct {
	Code    Code   // Machine-readable error code
	Message string // Human-readable message
	Cause   error  // Underlying error (optional)
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Unwrap returns the underlying cause for errors.Is/As compatibility.
func (e *Error) Unwrap() error {
	return e.Cause
}

// New creates a new Error with the given code and formatted message.
func New(code Code, format string, args ...any) *Error {
	return &Error{
		Code:    code,
		Message: fmt.Sprintf(format, args...),
	}
}

// Wrap creates a new Error wrapping an existing error.
func Wrap(code Code, cause error, format string, args ...any) *Error {
	return &Error{
		Code:    code,
		Message: fmt.Sprintf(format, args...),
		Cause:   cause,
	}
}

// Is reports whether err has the given error code.
// It unwraps the error chain looking for an *Error with a matching code.
func Is(err error, code Code) bool {
	var e *Error
	if errors.As(err, &e) {
		return e.Code == code
	}
	return false
}

// GetCode extracts the error code from an error, if available.
// Returns empty string if the error is not an *Error.
func GetCode(err error) Code {
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return ""
}

// UserMessage returns a user-friendly message for the error.
// For *Error types, returns the message without the code prefix.
// For other errors, returns the error string as-is.
func UserMessage(err error) string {
	var e *Error
	if errors.As(err, &e) {
		return e.Message
	}
	return err.Error()
}

// Retryable reports whether the code describes a condition that may clear up
// on its own. Only the two transient codes qualify.
func (c Code) Retryable() bool {
	return c == ErrCodeNetworkUnavailable || c == ErrCodeRateLimited
}

// Hint returns the advice shown next to a failure. Exhausted transient
// failures suggest waiting (for the server's Retry-After when it sent one).
// Missing assets suggest fixing the identifier. Everything else gets a
// generic retry prompt.
func Hint(err error) string {
	var rl *RateLimitedError
	switch code := GetCode(err); {
	case code == ErrCodeRateLimited && errors.As(err, &rl) && rl.RetryAfter > 0:
		return fmt.Sprintf("The market data service is rate limiting requests. Try again in %d seconds.", rl.RetryAfter)
	case code.Retryable():
		return "The market data service is unavailable right now. Try again later."
	case code == ErrCodeNotFound:
		return "Check the asset id (for example \"bitcoin\", not \"BTC\")."
	case code == ErrCodeInvalidArgument:
		return "Check the command arguments."
	default:
		return "Something went wrong. Retry the command."
	}
}

// RateLimitedError carries the server's Retry-After hint for a 429 response.
type RateLimitedError struct {
	RetryAfter int   // Seconds to wait before retrying, 0 if the server sent none
	Err        error // Transport error it was built from (optional)
}

// Error implements the error interface.
func (e *RateLimitedError) Error() string {
	if e.RetryAfter > 0 {
		return fmt.Sprintf("rate limited: retry after %d seconds", e.RetryAfter)
	}
	return "rate limited"
}

// Code returns the error code for this error type.
func (e *RateLimitedError) Code() Code {
	return ErrCodeRateLimited
}

// Unwrap returns the transport error, if any.
func (e *RateLimitedError) Unwrap() error {
	return e.Err
}
