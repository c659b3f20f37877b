package pipeline

import (
	"errors"
	"fmt"
)

// Kind is the semantic error taxonomy surfaced to callers. Exactly one kind
// accompanies any failed operation; callers never see a partial crash.
type Kind string

const (
	KindInvalidInput    Kind = "INVALID_INPUT"
	KindModelNotReady   Kind = "MODEL_NOT_READY" // retryable; back off
	KindCanceled        Kind = "CANCELED"
	KindInternal        Kind = "INTERNAL"
	KindSinkUnavailable Kind = "SINK_UNAVAILABLE"
)

// Error carries a taxonomy kind plus a human-readable summary.
type Error struct {
	Kind    Kind
	Summary string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Summary, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Summary)
}

func (e *Error) Unwrap() error { return e.Err }

func newError(kind Kind, err error, format string, args ...interface{}) *Error {
	return &Error{Kind: kind, Summary: fmt.Sprintf(format, args...), Err: err}
}

// KindOf extracts the taxonomy kind from an error chain; unclassified errors
// report INTERNAL.
func KindOf(err error) Kind {
	var pe *Error
	if errors.As(err, &pe) {
		return pe.Kind
	}
	return KindInternal
}
