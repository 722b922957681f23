package tools

import "errors"

var (
	// ErrEmptyDomain is returned when an orchestrator declares no domain.
	ErrEmptyDomain = errors.New("orchestrator domain must not be empty")

	// ErrNoWrappers is returned when an orchestrator declares no wrappers.
	ErrNoWrappers = errors.New("orchestrator must declare at least one wrapper")

	// ErrUnknownDomain is returned when no orchestrator owns the requested domain.
	ErrUnknownDomain = errors.New("unknown tool domain")

	// ErrUnknownIntent is returned when a domain does not recognize an intent.
	ErrUnknownIntent = errors.New("unknown intent")

	// ErrNoInstalledWrapper is returned when an intent is recognized but no
	// wrapper able to serve it is currently installed.
	ErrNoInstalledWrapper = errors.New("no installed wrapper for intent")
)
