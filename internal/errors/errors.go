package errors

import (
	"errors"
	"fmt"
)

// Sentinel errors for common cases
var (
	// ErrNotFound indicates a collaborator or resource was not found
	ErrNotFound = errors.New("not found")

	// ErrInvalidInput indicates invalid input data
	ErrInvalidInput = errors.New("invalid input")

	// ErrVersionMismatch indicates a provider version outside the required range
	ErrVersionMismatch = errors.New("version mismatch")

	// ErrNotImplemented indicates a capability with no implementation behind it
	ErrNotImplemented = errors.New("not implemented")
)

// PermanentError wraps an error to mark it as permanent (not retryable)
type PermanentError struct {
	Cause error
}

func (e *PermanentError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("permanent error: %v", e.Cause)
	}
	return "permanent error"
}

func (e *PermanentError) Unwrap() error {
	return e.Cause
}

// NewPermanent creates a new permanent error
func NewPermanent(err error) error {
	if err == nil {
		return nil
	}
	return &PermanentError{Cause: err}
}

// NewPermanentf creates a new permanent error with formatting
func NewPermanentf(format string, args ...interface{}) error {
	return &PermanentError{Cause: fmt.Errorf(format, args...)}
}

// IsPermanent checks if an error is permanent (not retryable)
func IsPermanent(err error) bool {
	if err == nil {
		return false
	}

	var permanentErr *PermanentError
	return errors.As(err, &permanentErr)
}

// UnresolvedError reports a collaborator that could not be resolved by name.
// It is the only error the bootstrap sequence produces.
type UnresolvedError struct {
	Name  string
	Cause error
}

func (e *UnresolvedError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("unresolved collaborator %q: %v", e.Name, e.Cause)
	}
	return fmt.Sprintf("unresolved collaborator %q", e.Name)
}

func (e *UnresolvedError) Unwrap() error {
	return e.Cause
}

// NewUnresolved creates a new unresolved collaborator error
func NewUnresolved(name string, cause error) error {
	return &UnresolvedError{Name: name, Cause: cause}
}

// IsUnresolved checks if an error reports an unresolved collaborator
func IsUnresolved(err error) bool {
	if err == nil {
		return false
	}

	var unresolvedErr *UnresolvedError
	return errors.As(err, &unresolvedErr)
}

// UnresolvedName returns the collaborator name carried by err, if any
func UnresolvedName(err error) (string, bool) {
	var unresolvedErr *UnresolvedError
	if errors.As(err, &unresolvedErr) {
		return unresolvedErr.Name, true
	}
	return "", false
}
