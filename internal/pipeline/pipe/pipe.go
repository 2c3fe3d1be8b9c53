// Package pipe holds the errors shared by the pipeline steps.
package pipe

import (
	"errors"
	"fmt"
)

// IsSkip returns true if the error is an ErrSkip.
func IsSkip(err error) bool {
	return errors.As(err, &ErrSkip{})
}

// ErrSkip occurs when a step has nothing to do, the pipeline carries on.
type ErrSkip struct {
	reason string
}

// Error implements the error interface. returns the reason the step was skipped.
func (e ErrSkip) Error() string {
	return e.reason
}

// Skip skips this step with the given reason.
func Skip(reason string) ErrSkip {
	return ErrSkip{reason: reason}
}

// Skipf skips this step with a formatted reason.
func Skipf(format string, a ...any) ErrSkip {
	return Skip(fmt.Sprintf(format, a...))
}
