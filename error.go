package calldep

import (
	"fmt"
)

// ErrorKind classifies the failures the resolution engine itself produces.
// Failures raised by a Validator or by a function body are passed through
// unchanged and are not assigned a kind.
type ErrorKind int

const (
	// KindMissingValue indicates a required parameter had no dependency
	// marker, no supplied value, and no static default.
	KindMissingValue ErrorKind = iota

	// KindInvalidDependency indicates a dependency marker resolved to no
	// usable function: no explicit target and no factory registered for the
	// parameter's declared type.
	KindInvalidDependency

	// KindCircularDependency indicates a function was encountered while it
	// was still being resolved on the same branch of the call tree.
	KindCircularDependency
)

func (k ErrorKind) String() string {
	switch k {
	case KindMissingValue:
		return "missing value"
	case KindInvalidDependency:
		return "invalid dependency"
	case KindCircularDependency:
		return "circular dependency"
	}
	return "unknown"
}

// DependencyError is the error type returned for failures during resolution.
type DependencyError struct {
	Kind        ErrorKind
	Message     string
	FuncName    string
	SourceError error
}

func (e *DependencyError) Error() string {
	msg := e.Message
	if e.FuncName != "" {
		msg = e.FuncName + ": " + msg
	}
	if e.SourceError == nil {
		return fmt.Sprintf("%s: %s", e.Kind, msg)
	}
	return fmt.Sprintf("%s: %s (%v)", e.Kind, msg, e.SourceError)
}

func (e *DependencyError) Unwrap() error {
	return e.SourceError
}

// TeardownError records a failure from a resource finalizer during cleanup.
// When more than one failure occurs on the way out of a call, each new
// TeardownError links the previously recorded failure, so the error surfaced
// to the caller carries the full sequence. Previous may also hold the
// resolution failure that aborted the call in the first place.
type TeardownError struct {
	Err      error
	Previous error
}

func (e *TeardownError) Error() string {
	if e.Previous == nil {
		return fmt.Sprintf("teardown failed: %v", e.Err)
	}
	return fmt.Sprintf("teardown failed: %v (previous: %v)", e.Err, e.Previous)
}

func (e *TeardownError) Unwrap() []error {
	if e.Previous == nil {
		return []error{e.Err}
	}
	return []error{e.Err, e.Previous}
}
