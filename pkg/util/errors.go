// Package util provides utility functions and common error types.
package util

import (
	"errors"
	"fmt"
	"strings"
)

// Sentinel errors. The typed errors below unwrap to one of these so callers
// can branch with errors.Is without caring about the concrete type.
var (
	ErrNotConnected     = errors.New("device not connected")
	ErrDeviceLocked     = errors.New("device locked by another holder")
	ErrNotFound         = errors.New("resource not found")
	ErrInvalidConfig    = errors.New("invalid configuration")
	ErrValidationFailed = errors.New("validation failed")
	ErrTransport        = errors.New("transport failure")
	ErrMalformedCount   = errors.New("malformed count response")
)

// ValidationError represents one or more validation failures
type ValidationError struct {
	Errors []string
}

func (e *ValidationError) Error() string {
	if len(e.Errors) == 1 {
		return "validation failed: " + e.Errors[0]
	}
	return fmt.Sprintf("validation failed:\n  - %s", strings.Join(e.Errors, "\n  - "))
}

func (e *ValidationError) Unwrap() error {
	return ErrValidationFailed
}

// NewValidationError creates a validation error from messages
func NewValidationError(messages ...string) *ValidationError {
	return &ValidationError{Errors: messages}
}

// ValidationBuilder helps accumulate validation errors
type ValidationBuilder struct {
	errors []string
}

// Add adds an error message if condition is false
func (v *ValidationBuilder) Add(condition bool, message string) *ValidationBuilder {
	if !condition {
		v.errors = append(v.errors, message)
	}
	return v
}

// AddError adds an error message unconditionally
func (v *ValidationBuilder) AddError(message string) *ValidationBuilder {
	v.errors = append(v.errors, message)
	return v
}

// AddErrorf adds a formatted error message
func (v *ValidationBuilder) AddErrorf(format string, args ...interface{}) *ValidationBuilder {
	v.errors = append(v.errors, fmt.Sprintf(format, args...))
	return v
}

// HasErrors returns true if there are validation errors
func (v *ValidationBuilder) HasErrors() bool {
	return len(v.errors) > 0
}

// Build returns the validation error or nil if no errors
func (v *ValidationBuilder) Build() error {
	if len(v.errors) == 0 {
		return nil
	}
	return &ValidationError{Errors: v.errors}
}

// TransportError wraps a failure of the command channel itself (dial, auth,
// session, timeout). It is never produced for text the device returned.
type TransportError struct {
	Command string
	Err     error
}

func (e *TransportError) Error() string {
	if e.Command == "" {
		return fmt.Sprintf("transport: %v", e.Err)
	}
	return fmt.Sprintf("transport: executing %q: %v", e.Command, e.Err)
}

// Unwrap exposes both ErrTransport and the underlying cause.
func (e *TransportError) Unwrap() []error {
	return []error{ErrTransport, e.Err}
}

// NewTransportError creates a transport error for the given command
func NewTransportError(command string, err error) *TransportError {
	return &TransportError{Command: command, Err: err}
}

// MalformedCountError reports a count query whose response did not end in a
// non-negative integer.
type MalformedCountError struct {
	Command string
	Line    string
}

func (e *MalformedCountError) Error() string {
	return fmt.Sprintf("malformed count response to %q: %q", e.Command, e.Line)
}

func (e *MalformedCountError) Unwrap() error {
	return ErrMalformedCount
}

// NewMalformedCountError creates a malformed count error
func NewMalformedCountError(command, line string) *MalformedCountError {
	return &MalformedCountError{Command: command, Line: line}
}
