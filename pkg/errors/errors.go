// Package errors provides structured error handling for ProcFlow.
// Errors carry a code for programmatic handling plus optional context.
package errors

import (
	"errors"
	"fmt"
	"strings"
)

// Code identifies an error class.
type Code string

const (
	// Invalid-input errors (1xx)
	CodeInvalidInput     Code = "E101"
	CodeMissingColumn    Code = "E102"
	CodeInvalidTimestamp Code = "E103"
	CodeInvalidRange     Code = "E104"
	CodeInvalidFormat    Code = "E105"

	// Not-found errors (2xx)
	CodeProcessNotFound Code = "E201"
	CodeNotFound        Code = "E202"

	// Precondition errors (3xx)
	CodePreconditionFailed Code = "E301"

	// System errors (4xx)
	CodeContextCanceled Code = "E401"

	// Unknown
	CodeUnknown Code = "E999"
)

// Error is the base error type for all ProcFlow errors.
type Error struct {
	Code    Code
	Message string
	Cause   error
	Context map[string]interface{}
}

// Error implements the error interface.
func (e *Error) Error() string {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("[%s] %s", e.Code, e.Message))

	if len(e.Context) > 0 {
		sb.WriteString(" (")
		first := true
		for k, v := range e.Context {
			if !first {
				sb.WriteString(", ")
			}
			sb.WriteString(fmt.Sprintf("%s=%v", k, v))
			first = false
		}
		sb.WriteString(")")
	}

	if e.Cause != nil {
		sb.WriteString(": ")
		sb.WriteString(e.Cause.Error())
	}

	return sb.String()
}

// Unwrap returns the underlying cause.
func (e *Error) Unwrap() error {
	return e.Cause
}

// Is checks if this error matches a target error by code.
func (e *Error) Is(target error) bool {
	if t, ok := target.(*Error); ok {
		return e.Code == t.Code
	}
	return false
}

// WithContext adds context to the error.
func (e *Error) WithContext(key string, value interface{}) *Error {
	if e.Context == nil {
		e.Context = make(map[string]interface{})
	}
	e.Context[key] = value
	return e
}

// New creates a new Error.
func New(code Code, message string) *Error {
	return &Error{Code: code, Message: message}
}

// Wrap wraps an existing error with a code and message.
func Wrap(err error, code Code, message string) *Error {
	if err == nil {
		return nil
	}
	return &Error{Code: code, Message: message, Cause: err}
}

// Wrapf wraps an error with a formatted message.
func Wrapf(err error, code Code, format string, args ...interface{}) *Error {
	return Wrap(err, code, fmt.Sprintf(format, args...))
}

// --- Convenience constructors ---

// InvalidInput creates an invalid-input error.
func InvalidInput(message string) *Error {
	return New(CodeInvalidInput, message)
}

// InvalidInputf creates a formatted invalid-input error.
func InvalidInputf(format string, args ...interface{}) *Error {
	return New(CodeInvalidInput, fmt.Sprintf(format, args...))
}

// MissingColumn creates a missing required column error.
func MissingColumn(column string, available []string) *Error {
	return New(CodeMissingColumn, "required column not found").
		WithContext("column", column).
		WithContext("available", available)
}

// InvalidTimestamp creates a timestamp parsing error.
func InvalidTimestamp(value string) *Error {
	return New(CodeInvalidTimestamp, "failed to parse timestamp").
		WithContext("value", value)
}

// ProcessNotFound creates an unknown-process error.
func ProcessNotFound(id string) *Error {
	return New(CodeProcessNotFound, "unknown process").WithContext("process", id)
}

// ContextCanceled creates a cancellation error.
func ContextCanceled(operation string) *Error {
	return New(CodeContextCanceled, "operation canceled").
		WithContext("operation", operation)
}

// --- Error checking utilities ---

// IsCode checks if an error has a specific code.
func IsCode(err error, code Code) bool {
	var pfErr *Error
	if errors.As(err, &pfErr) {
		return pfErr.Code == code
	}
	return false
}

// IsInvalidInput reports whether err belongs to the invalid-input family.
func IsInvalidInput(err error) bool {
	switch GetCode(err) {
	case CodeInvalidInput, CodeMissingColumn, CodeInvalidTimestamp, CodeInvalidRange, CodeInvalidFormat:
		return true
	default:
		return false
	}
}

// IsNotFound reports whether err belongs to the not-found family.
func IsNotFound(err error) bool {
	switch GetCode(err) {
	case CodeProcessNotFound, CodeNotFound:
		return true
	default:
		return false
	}
}

// GetCode extracts the error code from an error.
func GetCode(err error) Code {
	var pfErr *Error
	if errors.As(err, &pfErr) {
		return pfErr.Code
	}
	return CodeUnknown
}

// MultiError collects multiple errors.
type MultiError struct {
	Errors []error
}

// Error implements the error interface.
func (m *MultiError) Error() string {
	if len(m.Errors) == 0 {
		return "no errors"
	}
	if len(m.Errors) == 1 {
		return m.Errors[0].Error()
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("%d errors occurred:\n", len(m.Errors)))
	for i, err := range m.Errors {
		sb.WriteString(fmt.Sprintf("  %d. %s\n", i+1, err.Error()))
	}
	return sb.String()
}

// Add adds an error to the collection.
func (m *MultiError) Add(err error) {
	if err != nil {
		m.Errors = append(m.Errors, err)
	}
}

// HasErrors returns true if any errors were collected.
func (m *MultiError) HasErrors() bool {
	return len(m.Errors) > 0
}

// Combined returns nil if no errors, the single error if one, or the MultiError.
func (m *MultiError) Combined() error {
	switch len(m.Errors) {
	case 0:
		return nil
	case 1:
		return m.Errors[0]
	default:
		return m
	}
}
