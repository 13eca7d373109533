package engine

import (
	"errors"
	"fmt"
	"runtime/debug"
)

// OutcomeKind is the terminal classification of one test execution.
type OutcomeKind int

const (
	OutcomeSucceeded OutcomeKind = iota
	OutcomeFailed
	OutcomePending
	OutcomeCanceled
	OutcomeAborted
)

// String makes OutcomeKind satisfy the fmt.Stringer interface.
func (k OutcomeKind) String() string {
	switch k {
	case OutcomeSucceeded:
		return "succeeded"
	case OutcomeFailed:
		return "failed"
	case OutcomePending:
		return "pending"
	case OutcomeCanceled:
		return "canceled"
	case OutcomeAborted:
		return "aborted"
	default:
		return "unknown"
	}
}

// Outcome is produced once per leaf execution and never modified.
type Outcome struct {
	Kind OutcomeKind
	Err  error
}

func Succeeded() Outcome { return Outcome{Kind: OutcomeSucceeded} }
func Failed(err error) Outcome { return Outcome{Kind: OutcomeFailed, Err: err} }
func PendingOutcome() Outcome { return Outcome{Kind: OutcomePending, Err: ErrPending} }
func Canceled(err error) Outcome { return Outcome{Kind: OutcomeCanceled, Err: err} }
func Aborted(err error) Outcome { return Outcome{Kind: OutcomeAborted, Err: err} }
func (o Outcome) IsSevere() bool { return o.Kind == OutcomeAborted }
func (o Outcome) Succeeded() bool { return o.Kind == OutcomeSucceeded }

func (o Outcome) String() string {
	if o.Err == nil || o.Kind == OutcomePending {
		return o.Kind.String()
	}
	return fmt.Sprintf("%s: %v", o.Kind, o.Err)
}

// Classify maps the error returned by a test body to an Outcome.
// Severe errors win over every other classification.
func Classify(err error) Outcome {
	if err == nil {
		return Succeeded()
	}

	var severe *SevereError
	if errors.As(err, &severe) {
		return Aborted(err)
	}
	if errors.Is(err, ErrPending) {
		return PendingOutcome()
	}
	var canceled *CanceledError
	if errors.As(err, &canceled) {
		return Canceled(err)
	}
	return Failed(err)
}

// recoverError converts a recovered panic value into an error. Severe
// errors are passed through unchanged so they keep aborting the suite.
func recoverError(r interface{}) error {
	if err, ok := r.(error); ok {
		var severe *SevereError
		if errors.As(err, &severe) {
			return err
		}
	}
	return &PanicError{Value: r, Stack: debug.Stack()}
}

// SafeCall runs fn and turns a panic into an error.
func SafeCall(fn func() error) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = recoverError(r)
		}
	}()
	return fn()
}
