package domain

import (
	"context"
	"errors"
	"fmt"
)

// ErrorKind classifies the errors that abort a run.
type ErrorKind uint8

const (
	KindUnknown ErrorKind = iota
	// KindConfig covers bad flags, unreadable ignore lists, missing tools and
	// unusable directories. Raised before any external call.
	KindConfig
	// KindResolution covers failures to resolve the element catalog.
	KindResolution
	// KindOutput covers failures writing the report.
	KindOutput
	// KindInterrupted is a run cancelled by a signal.
	KindInterrupted
	// KindPolicy is a strict-mode run with failed elements or denied licenses.
	KindPolicy
)

func (k ErrorKind) String() string {
	switch k {
	case KindConfig:
		return "configuration error"
	case KindResolution:
		return "resolution error"
	case KindOutput:
		return "output error"
	case KindInterrupted:
		return "interrupted"
	case KindPolicy:
		return "policy failure"
	default:
		return "error"
	}
}

// Error is a fatal pipeline error with a kind and an operation label.
type Error struct {
	kind ErrorKind
	op   string
	msg  string
	orig error
}

func (e *Error) Error() string {
	if e == nil {
		return "<nil>"
	}
	msg := e.msg
	if e.op != "" {
		msg = e.op + ": " + msg
	}
	if e.orig != nil {
		return fmt.Sprintf("%s: %v", msg, e.orig)
	}
	return msg
}

// Unwrap returns the wrapped cause.
func (e *Error) Unwrap() error { return e.orig }

// Kind returns the error classification.
func (e *Error) Kind() ErrorKind { return e.kind }

// Op returns the operation label, if set.
func (e *Error) Op() string { return e.op }

// ConfigError wraps err as a configuration error.
func ConfigError(op string, err error) error {
	return &Error{kind: KindConfig, op: op, msg: "invalid configuration", orig: err}
}

// ConfigErrorf builds a configuration error from a message.
func ConfigErrorf(format string, args ...any) error {
	return &Error{kind: KindConfig, msg: fmt.Sprintf(format, args...)}
}

// ResolutionError wraps err as a catalog resolution error.
func ResolutionError(op string, err error) error {
	return &Error{kind: KindResolution, op: op, msg: "resolving elements", orig: err}
}

// OutputError wraps err as a report output error.
func OutputError(op string, err error) error {
	return &Error{kind: KindOutput, op: op, msg: "writing report", orig: err}
}

// PolicyErrorf builds a strict-mode policy failure.
func PolicyErrorf(format string, args ...any) error {
	return &Error{kind: KindPolicy, msg: fmt.Sprintf(format, args...)}
}

// KindOf returns the kind of the first *Error in err's chain. Context
// cancellation anywhere in the chain counts as an interruption.
func KindOf(err error) ErrorKind {
	if err == nil {
		return KindUnknown
	}
	if errors.Is(err, context.Canceled) {
		return KindInterrupted
	}
	var e *Error
	if errors.As(err, &e) {
		return e.kind
	}
	return KindUnknown
}

// ExitCode maps an error returned by a run to the process exit status.
func ExitCode(err error) int {
	if err == nil {
		return 0
	}
	switch KindOf(err) {
	case KindConfig:
		return 2
	case KindResolution:
		return 3
	case KindOutput:
		return 4
	case KindPolicy:
		return 5
	case KindInterrupted:
		return 130
	default:
		return 1
	}
}
