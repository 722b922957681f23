package action

import (
	"context"
	"fmt"
	"slices"
	"sync"
	"time"
)

// MemStore is an in-memory Store. It backs tests and configurations without
// a durable database; the same compare-and-swap semantics hold under its
// lock, so the resolver's exactly-once guarantee does not depend on SQLite.
type MemStore struct {
	mu      sync.RWMutex
	actions map[string]Action
}

var _ Store = (*MemStore)(nil)

// NewMemStore creates an empty in-memory store.
func NewMemStore() *MemStore {
	return &MemStore{actions: make(map[string]Action)}
}

// Create implements Store.
func (s *MemStore) Create(_ context.Context, act Action) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.actions[act.ID]; exists {
		return fmt.Errorf("action %s already exists", act.ID)
	}
	s.actions[act.ID] = act
	return nil
}

// Get implements Store.
func (s *MemStore) Get(_ context.Context, id string) (Action, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	act, ok := s.actions[id]
	if !ok {
		return Action{}, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	return act, nil
}

// List implements Store.
func (s *MemStore) List(_ context.Context, filter Filter) ([]Action, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []Action
	for _, act := range s.actions {
		if filter.Status != "" && act.Status != filter.Status {
			continue
		}
		out = append(out, act)
	}

	slices.SortFunc(out, func(a, b Action) int {
		return b.CreatedAt.Compare(a.CreatedAt)
	})

	limit := filter.Limit
	if limit <= 0 {
		limit = DefaultListLimit
	}
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

// Pending implements Store.
func (s *MemStore) Pending(_ context.Context) ([]Action, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []Action
	for _, act := range s.actions {
		if act.Status == StatusPending {
			out = append(out, act)
		}
	}
	slices.SortFunc(out, func(a, b Action) int {
		return b.CreatedAt.Compare(a.CreatedAt)
	})
	return out, nil
}

// Transition implements Store. The check and the write happen under one
// lock, making it a true compare-and-swap.
func (s *MemStore) Transition(_ context.Context, id string, to Status, resolvedAt time.Time) error {
	if to != StatusApproved && to != StatusDenied {
		return fmt.Errorf("%w: pending -> %s", ErrInvalidTransition, to)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	act, ok := s.actions[id]
	if !ok {
		return fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	if act.Status != StatusPending {
		return fmt.Errorf("%w: %s is %s", ErrAlreadyResolved, id, act.Status)
	}

	act.Status = to
	act.ResolvedAt = resolvedAt
	s.actions[id] = act
	return nil
}

// Complete implements Store.
func (s *MemStore) Complete(_ context.Context, id string, status Status, result, errMsg string) error {
	if status != StatusExecuted && status != StatusFailed {
		return fmt.Errorf("%w: approved -> %s", ErrInvalidTransition, status)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	act, ok := s.actions[id]
	if !ok {
		return fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	if act.Status != StatusApproved {
		return fmt.Errorf("%w: %s is %s", ErrInvalidTransition, id, act.Status)
	}

	act.Status = status
	act.Result = result
	act.Error = errMsg
	s.actions[id] = act
	return nil
}
