package action

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/onefuture/futurebuddy/internal/security"
	"github.com/onefuture/futurebuddy/internal/tools"
)

// IntentExecutor dispatches an approved action to its tool domain.
type IntentExecutor interface {
	ExecuteIntent(ctx context.Context, domain, intent string, params map[string]string, actionID string) tools.OperationResult
}

// Resolver applies human approval decisions to staged actions. Exactly one
// resolution wins per action regardless of how many callers race on it.
type Resolver struct {
	store    Store
	executor IntentExecutor
	limiter  *security.RateLimiter
	events   *security.AuditLogger
	logger   *slog.Logger
	now      func() time.Time
}

// NewResolver creates a resolver over the given store and executor.
func NewResolver(store Store, executor IntentExecutor, logger *slog.Logger) *Resolver {
	if logger == nil {
		logger = slog.Default()
	}
	return &Resolver{
		store:    store,
		executor: executor,
		logger:   logger,
		now:      time.Now,
	}
}

// SetRateLimiter enables approval rate limiting.
func (r *Resolver) SetRateLimiter(limiter *security.RateLimiter) { r.limiter = limiter }

// SetEventLogger enables audit events for approval decisions.
func (r *Resolver) SetEventLogger(events *security.AuditLogger) { r.events = events }

// Resolve approves or denies a pending action. On approval the action is
// executed and completed in place, so the returned action is always in a
// terminal state. Returns ErrNotFound for unknown IDs and ErrAlreadyResolved
// when another caller got there first.
func (r *Resolver) Resolve(ctx context.Context, actionID string, approved bool) (Action, error) {
	if r.limiter != nil {
		if err := r.limiter.Allow(security.BucketApproval); err != nil {
			return Action{}, fmt.Errorf("resolving action %s: %w", actionID, err)
		}
	}

	act, err := r.store.Get(ctx, actionID)
	if err != nil {
		return Action{}, err
	}
	if act.Status != StatusPending {
		return Action{}, fmt.Errorf("action %s is %s: %w", actionID, act.Status, ErrAlreadyResolved)
	}

	to := StatusApproved
	if !approved {
		to = StatusDenied
	}

	resolvedAt := r.now()
	// The store transition is the arbiter: only one caller can move the
	// action out of pending.
	if err := r.store.Transition(ctx, actionID, to, resolvedAt); err != nil {
		return Action{}, err
	}

	r.audit(actionID, act, approved)

	if !approved {
		act.Status = StatusDenied
		act.ResolvedAt = resolvedAt
		return act, nil
	}

	// The approval is committed; a caller that disconnects now must not
	// cancel the dispatched execution. The capability's own timeout still
	// bounds it.
	execCtx := context.WithoutCancel(ctx)
	result := r.executor.ExecuteIntent(execCtx, act.Domain, act.Intent, act.Params, act.ID)

	status := StatusExecuted
	if !result.Success {
		status = StatusFailed
	}
	if err := r.store.Complete(execCtx, actionID, status, result.Output, result.Error); err != nil {
		// The execution happened; surface the bookkeeping failure but
		// return the real outcome so the caller sees what ran.
		r.logger.Error("completing action record",
			"action_id", actionID, "error", err)
		err = fmt.Errorf("recording outcome for action %s: %w", actionID, err)
		act.Status = status
		act.Result = result.Output
		act.Error = result.Error
		act.ResolvedAt = resolvedAt
		return act, err
	}

	act.Status = status
	act.Result = result.Output
	act.Error = result.Error
	act.ResolvedAt = resolvedAt
	return act, nil
}

// audit records the approval decision. Failures here never affect the
// resolution itself.
func (r *Resolver) audit(actionID string, act Action, approved bool) {
	if r.events == nil {
		return
	}
	decision := "approved"
	if !approved {
		decision = "denied"
	}
	r.events.Log(security.AuditEvent{
		Type:     security.EventApproval,
		ActionID: actionID,
		Domain:   act.Domain,
		Intent:   act.Intent,
		Detail:   decision,
		Metadata: map[string]string{"tier": string(act.Tier)},
	})
}

// IsRetryable reports whether a resolution error is worth retrying. Rate
// limit errors are, terminal-state conflicts are not.
func IsRetryable(err error) bool {
	return errors.Is(err, security.ErrRateLimited)
}
