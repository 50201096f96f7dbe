package transform

import (
	"errors"
	"fmt"
)

var (
	// ErrNotImplemented is returned when a transform direction was never
	// written.
	ErrNotImplemented = errors.New("transform: not implemented")
	// ErrNamespaceNotFound means a locator names a namespace nothing was
	// registered under.
	ErrNamespaceNotFound = errors.New("transform: namespace not found")
	// ErrMalformedLocator means a locator has no "namespace.BaseName" form.
	ErrMalformedLocator = errors.New("transform: malformed locator")
	// ErrDuplicateIndex means two steps of a family claim the same version.
	ErrDuplicateIndex = errors.New("transform: duplicate version index")
)

func notImplemented(method string) error {
	return fmt.Errorf("%w: .%s() must be overridden", ErrNotImplemented, method)
}

// StepError reports the step of a chain that failed. The chain produces no
// payload once a step fails.
type StepError struct {
	Family    string
	Index     int
	Direction Direction
	Err       error
}

func (e *StepError) Error() string {
	return fmt.Sprintf("transform %s step %04d %s: %v", e.Family, e.Index, e.Direction, e.Err)
}

func (e *StepError) Unwrap() error { return e.Err }
