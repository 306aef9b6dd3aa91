// Package errors provides the structured error type shared by the engines,
// usecases and HTTP adapters. Every failure that crosses a layer boundary is an
// *AppError carrying one of the codes in codes.go, so handlers can map it to a
// status without string matching.
package errors

import (
	"errors"
	"fmt"
)

// AppError is the single structured error type of the service. It supports
// errors.Is / errors.As through Unwrap.
type AppError struct {
	Code    ErrorCode
	Message string
	// Detail carries extra context (ids, parameter names) for logs and clients.
	Detail string
	Cause  error
}

func (e *AppError) Error() string {
	msg := fmt.Sprintf("[%s] %s", e.Code, e.Message)
	if e.Detail != "" {
		msg += ": " + e.Detail
	}
	if e.Cause != nil {
		msg += ": " + e.Cause.Error()
	}
	return msg
}

func (e *AppError) Unwrap() error { return e.Cause }

// WithDetail returns a copy of e with Detail set. Safe on nil.
func (e *AppError) WithDetail(detail string) *AppError {
	if e == nil {
		return nil
	}
	clone := *e
	clone.Detail = detail
	return &clone
}

// New constructs an AppError with no underlying cause.
func New(code ErrorCode, message string) *AppError {
	return &AppError{Code: code, Message: message}
}

// Newf is New with a formatted message.
func Newf(code ErrorCode, format string, args ...any) *AppError {
	return &AppError{Code: code, Message: fmt.Sprintf(format, args...)}
}

// Wrap attaches code and message to err. It returns nil when err is nil so it
// can be used inline on repository calls.
func Wrap(err error, code ErrorCode, message string) error {
	if err == nil {
		return nil
	}
	return &AppError{Code: code, Message: message, Cause: err}
}

// IsCode reports whether any error in err's chain is an *AppError with code.
func IsCode(err error, code ErrorCode) bool {
	for err != nil {
		var ae *AppError
		if !errors.As(err, &ae) {
			return false
		}
		if ae.Code == code {
			return true
		}
		err = ae.Cause
	}
	return false
}

// CodeOf returns the code of the outermost *AppError in err's chain, or
// CodeInternal when there is none.
func CodeOf(err error) ErrorCode {
	var ae *AppError
	if errors.As(err, &ae) {
		return ae.Code
	}
	return CodeInternal
}
