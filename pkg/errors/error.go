// Package errors provides structured error handling with typed error codes.
//
// Error codes are organized into categories:
//   - General errors (1-99): Unknown and general errors
//   - Configuration errors (100-199): Invalid bot configuration, missing entry lines
//   - Data errors (200-299): Non-finite prices, malformed anchors, out-of-range ticks
//   - State errors (300-399): Control calls invalid for the current bot state
//   - Line/ladder errors (400-499): Price line and allocation failures
//   - Execution errors (500-599): Order placement, amendment, and cancellation failures
//   - Tick feed errors (700-799): Price feed connection and parsing failures
//   - Callback errors (800-899): Callback execution failures
//
// Usage:
//
//	// Create a new error
//	err := errors.New(errors.ErrCodeInvalidConfig, "invalid bot configuration")
//
//	// Create a formatted error
//	err := errors.Newf(errors.ErrCodeInvalidPrice, "invalid price %f for symbol %s", price, symbol)
//
//	// Wrap an existing error
//	err := errors.Wrap(errors.ErrCodeFeedConnectFailed, "failed to connect to feed", originalErr)
//
//	// Check error code
//	if errors.HasCode(err, errors.ErrCodeNoEntryLine) { ... }
package errors

import (
	"errors"
	"fmt"
)

// Error represents a structured error with an error code and message.
type Error struct {
	Code    ErrorCode
	Message string
	Cause   error
}

// New creates a new Error with the given code and message.
func New(code ErrorCode, message string) *Error {
	return &Error{
		Code:    code,
		Message: message,
		Cause:   nil,
	}
}

// Newf creates a new Error with the given code and formatted message.
func Newf(code ErrorCode, format string, args ...any) *Error {
	return &Error{
		Code:    code,
		Message: fmt.Sprintf(format, args...),
		Cause:   nil,
	}
}

// Wrap wraps an existing error with a new Error containing the given code and message.
func Wrap(code ErrorCode, message string, cause error) *Error {
	return &Error{
		Code:    code,
		Message: message,
		Cause:   cause,
	}
}

// Wrapf wraps an existing error with a new Error containing the given code and formatted message.
func Wrapf(code ErrorCode, cause error, format string, args ...any) *Error {
	return &Error{
		Code:    code,
		Message: fmt.Sprintf(format, args...),
		Cause:   cause,
	}
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("[%d] %s: %v", e.Code, e.Message, e.Cause)
	}

	return fmt.Sprintf("[%d] %s", e.Code, e.Message)
}

// Unwrap returns the underlying error cause.
func (e *Error) Unwrap() error {
	return e.Cause
}

// Is reports whether any error in err's chain matches target.
// This is a convenience wrapper around the standard errors.Is function.
func Is(err, target error) bool {
	return errors.Is(err, target)
}

// As finds the first error in err's chain that matches target.
// This is a convenience wrapper around the standard errors.As function.
func As(err error, target any) bool {
	return errors.As(err, target)
}

// GetCode extracts the ErrorCode from an error if it's an *Error type.
// Returns ErrCodeUnknown if the error is not an *Error type.
func GetCode(err error) ErrorCode {
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}

	return ErrCodeUnknown
}

// HasCode checks if an error has a specific ErrorCode.
func HasCode(err error, code ErrorCode) bool {
	return GetCode(err) == code
}

// IsConfigurationError reports whether err carries a configuration error code.
func IsConfigurationError(err error) bool {
	code := GetCode(err)

	return code >= 100 && code < 200
}

// IsDataError reports whether err carries a data error code.
// Data errors are absorbed per tick: the tick is skipped and processing continues.
func IsDataError(err error) bool {
	code := GetCode(err)

	return code >= 200 && code < 300
}

// IsStateError reports whether err carries a state error code.
// State errors are treated as no-op warnings, never as fatal conditions.
func IsStateError(err error) bool {
	code := GetCode(err)

	return code >= 300 && code < 400
}
