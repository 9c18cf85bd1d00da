package submission

import (
	"errors"
	"fmt"
)

var (
	// ErrScopeEmpty means the user has no tasks in the requested project.
	ErrScopeEmpty = errors.New("task not found")
	// ErrNotLoaded is returned when a scope is used before Load.
	ErrNotLoaded = errors.New("submission scope not loaded")
	// ErrCommitInFlight is returned while another commit of the same scope runs.
	ErrCommitInFlight = errors.New("a submission for this project is already in progress")
)

// ValidationError rejects a commit before any network call.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// CommitError is a failed push to the store. Local state is left untouched,
// so the same commit can be repeated.
type CommitError struct {
	Attempts int64
	Err      error
}

func (e *CommitError) Error() string {
	return fmt.Sprintf("failed to update tasks, please try again: %v", e.Err)
}

func (e *CommitError) Unwrap() error { return e.Err }

// Retryable is always true: the commit is a full overwrite of the scope.
func (e *CommitError) Retryable() bool { return true }
