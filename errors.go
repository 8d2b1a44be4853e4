package libzmx

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrRemoteUnavailable indicates the design server did not answer a call
	// (timeout, busy, disconnected). Callers may retry; the library never does.
	ErrRemoteUnavailable = errors.New("design server unavailable")

	// ErrPushDisabled indicates lens push/pull is disabled in the server
	// preferences. It cannot be recovered without an external config change.
	ErrPushDisabled = errors.New("lens push disabled in server preferences")

	// ErrStaleReference indicates use of a surface or parameter that was
	// detached from its sequence by deletion or a pull.
	ErrStaleReference = errors.New("stale reference to detached surface")

	// ErrUnknownParameter indicates a parameter name that does not exist on
	// the surface type.
	ErrUnknownParameter = errors.New("unknown parameter")

	// ErrTypeMismatch indicates a value whose kind (numeric vs text) does not
	// match the parameter's declared kind.
	ErrTypeMismatch = errors.New("parameter type mismatch")

	// ErrIndexOutOfRange indicates a surface index outside [0, Len).
	ErrIndexOutOfRange = errors.New("surface index out of range")

	// ErrSolveNotSupported indicates a solve kind the parameter's schema
	// entry does not allow (e.g. an f/# solve on a thickness).
	ErrSolveNotSupported = errors.New("solve not supported on this parameter")

	// ErrBusy indicates a push or pull was started while another one is
	// already in flight on the same sequence.
	ErrBusy = errors.New("push or pull already in flight")
)

// SolveCycleError reports a dependency cycle among pickup solves. The push
// that detected it performed no remote writes.
type SolveCycleError struct {
	Cycle []string // parameter identities in cycle order, first repeated last
}

func (e *SolveCycleError) Error() string {
	return fmt.Sprintf("solve dependency cycle: %s", strings.Join(e.Cycle, " -> "))
}

// UnresolvedReferenceError reports a pickup solve whose source parameter
// could not be resolved at push time (its surface was deleted).
type UnresolvedReferenceError struct {
	Param  string // the referencing parameter
	Source string // the missing source
}

func (e *UnresolvedReferenceError) Error() string {
	return fmt.Sprintf("pickup source %s for %s no longer exists", e.Source, e.Param)
}

// PushError identifies the first parameter write that failed during a push.
// Parameters written before it are clean; the rest remain dirty for retry.
type PushError struct {
	Param string
	Err   error
}

func (e *PushError) Error() string {
	return fmt.Sprintf("push failed at %s: %v", e.Param, e.Err)
}

func (e *PushError) Unwrap() error { return e.Err }
