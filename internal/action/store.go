package action

import (
	"context"
	"time"
)

// Filter narrows List results.
type Filter struct {
	// Status, if non-empty, restricts results to one status.
	Status Status

	// Limit caps the number of rows returned. Zero means DefaultListLimit.
	Limit int
}

// DefaultListLimit is applied when a List call does not specify one.
const DefaultListLimit = 50

// Store persists actions. Implementations must provide the conditional
// updates the resolver's exactly-once guarantee rests on: Transition and
// Complete are compare-and-swap operations, not read-then-write.
type Store interface {
	// Create persists a new action. Green-tier actions arrive already
	// terminal; yellow/red arrive pending.
	Create(ctx context.Context, act Action) error

	// Get returns the action with the given ID or ErrNotFound.
	Get(ctx context.Context, id string) (Action, error)

	// List returns actions most recent first, narrowed by filter.
	List(ctx context.Context, filter Filter) ([]Action, error)

	// Pending returns all pending actions, most recent first.
	Pending(ctx context.Context) ([]Action, error)

	// Transition atomically moves an action from pending to `to`
	// (approved or denied), stamping resolvedAt. It returns ErrNotFound
	// for unknown IDs, ErrAlreadyResolved if the action is not pending,
	// and ErrInvalidTransition if `to` is not reachable from pending.
	Transition(ctx context.Context, id string, to Status, resolvedAt time.Time) error

	// Complete atomically moves an approved action to executed or failed,
	// recording the execution outcome. Exactly one of result and errMsg
	// is non-empty.
	Complete(ctx context.Context, id string, status Status, result, errMsg string) error
}
