package flow

import (
	"errors"
	"fmt"
)

// ErrUncommittedChanges is returned when the working copy has uncommitted
// changes and a lifecycle refuses to start.
var ErrUncommittedChanges = errors.New("uncommitted changes present")

// ErrNoBranch is returned when no local (or, with remote fetching enabled,
// remote) branch matches the lifecycle's branch prefix.
var ErrNoBranch = errors.New("branch not found")

// ErrAmbiguousBranch is returned when more than one branch matches a prefix
// that is expected to select exactly one branch.
var ErrAmbiguousBranch = errors.New("more than one branch matches")

// ErrBranchExists is returned when a lifecycle would create a branch that
// already exists.
var ErrBranchExists = errors.New("branch already exists")

// ErrNoTag is returned when a lifecycle needs a tag that does not exist or
// was never selected.
var ErrNoTag = errors.New("tag not found")

// ErrSnapshotDependencies is returned when the project resolves snapshot
// dependencies and snapshots are disallowed by configuration.
var ErrSnapshotDependencies = errors.New("snapshot dependencies present")

// ErrInvalidOptions is returned for invalid or contradictory configuration,
// detected before any mutation occurs.
var ErrInvalidOptions = errors.New("invalid options")

// ErrBlankVersion is returned when a computed or supplied version resolves
// to the empty string.
var ErrBlankVersion = errors.New("version is blank")

// StepError wraps a failure with the lifecycle and step it occurred in.
// The remaining steps of the lifecycle never execute; mutations applied by
// earlier steps are left in place.
type StepError struct {
	Lifecycle string
	Step      string
	Err       error
}

// Error implements the error interface.
func (e *StepError) Error() string {
	return fmt.Sprintf("%s: step %q: %v", e.Lifecycle, e.Step, e.Err)
}

// Unwrap returns the underlying cause so sentinel checks keep working.
func (e *StepError) Unwrap() error {
	return e.Err
}

// WrapError wraps an error with additional context while preserving
// the ability to check against sentinel errors using errors.Is().
func WrapError(err error, msg string) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", msg, err)
}

// WrapErrorf wraps an error with formatted additional context while
// preserving the ability to check against sentinel errors using errors.Is().
func WrapErrorf(err error, format string, args ...interface{}) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf(format+": %w", append(args, err)...)
}
