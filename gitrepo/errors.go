package gitrepo

import (
	"errors"
	"fmt"
)

// Common sentinel errors that can be checked with errors.Is().
// These wrap underlying go-git errors while providing a stable API for consumers.

// ErrBranchExists is returned when attempting to create a branch that
// already exists.
var ErrBranchExists = errors.New("branch already exists")

// ErrBranchMissing is returned when attempting to operate on a branch that
// does not exist locally or remotely.
var ErrBranchMissing = errors.New("branch does not exist")

// ErrTagExists is returned when attempting to create a tag that already exists.
var ErrTagExists = errors.New("tag already exists")

// ErrDiverged is returned when the local and remote tips of a branch have
// diverged and the local branch cannot be published without intervention.
var ErrDiverged = errors.New("local and remote branches diverge")

// ErrResolveFailed is returned when a revision specification cannot be
// resolved to a valid commit hash.
var ErrResolveFailed = errors.New("cannot resolve revision")

// ErrInvalidRef is returned when a reference name or option value is
// malformed or missing.
var ErrInvalidRef = errors.New("invalid reference")

// WrapError wraps an error with additional context while preserving
// the ability to check against sentinel errors using errors.Is().
func WrapError(err error, msg string) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", msg, err)
}

// WrapErrorf wraps an error with formatted additional context while preserving
// the ability to check against sentinel errors using errors.Is().
func WrapErrorf(err error, format string, args ...interface{}) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf(format+": %w", append(args, err)...)
}
