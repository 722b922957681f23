package action

import "errors"

var (
	// ErrNotFound is returned when no action exists with the given ID.
	ErrNotFound = errors.New("action not found")

	// ErrAlreadyResolved is returned when resolving an action whose status
	// has already left pending. The caller that loses a resolve race gets
	// this error; the action is never executed twice.
	ErrAlreadyResolved = errors.New("action already resolved")

	// ErrInvalidTransition is returned by stores when asked to move an
	// action somewhere the state machine does not allow.
	ErrInvalidTransition = errors.New("invalid status transition")
)
