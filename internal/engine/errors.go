package engine

import (
	"errors"
	"fmt"
	"time"
)

// Registration and lookup errors.
var (
	// ErrRegistrationClosed is returned when a branch, test or informer is
	// registered after the engine started running.
	ErrRegistrationClosed = errors.New("registration closed: tests cannot be registered once the run has started")
	// ErrDuplicateTestName is returned when a resolved test name is already taken.
	ErrDuplicateTestName = errors.New("duplicate test name")
	// ErrNotFound is returned when no leaf resolves to the requested name.
	ErrNotFound = errors.New("test not found")
	// ErrInvalidTag is returned for empty tag names.
	ErrInvalidTag = errors.New("invalid tag")
	// ErrNestedTest is returned when registering anything below a test leaf.
	ErrNestedTest = errors.New("tests and scopes cannot be nested inside a test")
	// ErrStyleViolation is returned when a flat style is asked for a branch.
	ErrStyleViolation = errors.New("style does not support nested scopes")
	// ErrNilBody is returned when a leaf is registered without a body.
	ErrNilBody = errors.New("test body is nil")

	// ErrPending marks a test as pending. Bodies return it via Pending().
	ErrPending = errors.New("test pending")
)

// RegistrationError describes a rejected registration call.
type RegistrationError struct {
	Op   string
	Name string
	Err  error
}

func (e *RegistrationError) Error() string {
	if e.Name == "" {
		return fmt.Sprintf("%s: %v", e.Op, e.Err)
	}
	return fmt.Sprintf("%s %q: %v", e.Op, e.Name, e.Err)
}

func (e *RegistrationError) Unwrap() error {
	return e.Err
}

// CanceledError signals that a test could not run to completion for a
// reason outside the code under test, such as a missing resource.
type CanceledError struct {
	Reason string
}

func (e *CanceledError) Error() string {
	return "test canceled: " + e.Reason
}

// SevereError wraps an unrecoverable error. A test that returns or panics
// with one aborts its suite and the run.
type SevereError struct {
	Err error
}

func (e *SevereError) Error() string {
	return "severe: " + e.Err.Error()
}

func (e *SevereError) Unwrap() error {
	return e.Err
}

// PanicError carries a recovered panic value from a test body or hook.
type PanicError struct {
	Value interface{}
	Stack []byte
}

func (e *PanicError) Error() string {
	return fmt.Sprintf("panic: %v", e.Value)
}

// TimeoutError is produced when a test exceeds its time limit.
type TimeoutError struct {
	Limit time.Duration
}

func (e *TimeoutError) Error() string {
	return fmt.Sprintf("test timed out after %v", e.Limit)
}

// Pending returns the error a body uses to mark itself pending.
func Pending() error {
	return ErrPending
}

// Cancel returns a CanceledError with a formatted reason.
func Cancel(format string, args ...interface{}) error {
	return &CanceledError{Reason: fmt.Sprintf(format, args...)}
}

// Severe wraps err so that it aborts the suite instead of failing one test.
func Severe(err error) error {
	if err == nil {
		err = errors.New("severe error")
	}
	return &SevereError{Err: err}
}

// Fail returns a plain failure error with a formatted message.
func Fail(format string, args ...interface{}) error {
	return fmt.Errorf(format, args...)
}
