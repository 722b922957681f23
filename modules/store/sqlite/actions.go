package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/onefuture/futurebuddy/internal/action"
	"github.com/onefuture/futurebuddy/internal/tools"
)

// timeFormat is the stored timestamp layout. Lexicographic order matches
// chronological order, so ORDER BY works on the raw text.
const timeFormat = time.RFC3339Nano

// actionStore implements action.Store backed by SQLite.
type actionStore struct {
	db *sql.DB
}

const actionColumns = `id, conversation_id, tier, description, command, domain, intent,
	params, status, result, error, created_at, resolved_at`

// Create implements action.Store.
func (s *actionStore) Create(ctx context.Context, act action.Action) error {
	params, err := json.Marshal(act.Params)
	if err != nil {
		return fmt.Errorf("sqlite: marshal params for action %s: %w", act.ID, err)
	}

	resolvedAt := ""
	if !act.ResolvedAt.IsZero() {
		resolvedAt = act.ResolvedAt.UTC().Format(timeFormat)
	}

	_, err = s.db.ExecContext(ctx, `INSERT INTO actions (`+actionColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		act.ID, act.ConversationID, string(act.Tier), act.Description, act.Command,
		act.Domain, act.Intent, string(params), string(act.Status),
		act.Result, act.Error, act.CreatedAt.UTC().Format(timeFormat), resolvedAt,
	)
	if err != nil {
		return fmt.Errorf("sqlite: insert action %s: %w", act.ID, err)
	}
	return nil
}

// Get implements action.Store.
func (s *actionStore) Get(ctx context.Context, id string) (action.Action, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+actionColumns+` FROM actions WHERE id = ?`, id)
	act, err := scanAction(row)
	if errors.Is(err, sql.ErrNoRows) {
		return action.Action{}, fmt.Errorf("%w: %s", action.ErrNotFound, id)
	}
	if err != nil {
		return action.Action{}, fmt.Errorf("sqlite: get action %s: %w", id, err)
	}
	return act, nil
}

// List implements action.Store.
func (s *actionStore) List(ctx context.Context, filter action.Filter) ([]action.Action, error) {
	limit := filter.Limit
	if limit <= 0 {
		limit = action.DefaultListLimit
	}

	query := `SELECT ` + actionColumns + ` FROM actions`
	args := []any{}
	if filter.Status != "" {
		query += ` WHERE status = ?`
		args = append(args, string(filter.Status))
	}
	query += ` ORDER BY created_at DESC LIMIT ?`
	args = append(args, limit)

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("sqlite: list actions: %w", err)
	}
	defer rows.Close()

	var out []action.Action
	for rows.Next() {
		act, err := scanAction(rows)
		if err != nil {
			return nil, fmt.Errorf("sqlite: scan action: %w", err)
		}
		out = append(out, act)
	}
	return out, rows.Err()
}

// Pending implements action.Store.
func (s *actionStore) Pending(ctx context.Context) ([]action.Action, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT `+actionColumns+` FROM actions
		WHERE status = ? ORDER BY created_at DESC`, string(action.StatusPending))
	if err != nil {
		return nil, fmt.Errorf("sqlite: list pending actions: %w", err)
	}
	defer rows.Close()

	var out []action.Action
	for rows.Next() {
		act, err := scanAction(rows)
		if err != nil {
			return nil, fmt.Errorf("sqlite: scan action: %w", err)
		}
		out = append(out, act)
	}
	return out, rows.Err()
}

// Transition implements action.Store. The conditional UPDATE is the
// compare-and-swap: only one caller can move an action out of pending.
func (s *actionStore) Transition(ctx context.Context, id string, to action.Status, resolvedAt time.Time) error {
	if to != action.StatusApproved && to != action.StatusDenied {
		return fmt.Errorf("%w: pending -> %s", action.ErrInvalidTransition, to)
	}

	res, err := s.db.ExecContext(ctx, `UPDATE actions SET status = ?, resolved_at = ?
		WHERE id = ? AND status = ?`,
		string(to), resolvedAt.UTC().Format(timeFormat), id, string(action.StatusPending))
	if err != nil {
		return fmt.Errorf("sqlite: transition action %s: %w", id, err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("sqlite: transition action %s: %w", id, err)
	}
	if n == 0 {
		return s.loseReason(ctx, id, action.ErrAlreadyResolved)
	}
	return nil
}

// Complete implements action.Store.
func (s *actionStore) Complete(ctx context.Context, id string, status action.Status, result, errMsg string) error {
	if status != action.StatusExecuted && status != action.StatusFailed {
		return fmt.Errorf("%w: approved -> %s", action.ErrInvalidTransition, status)
	}

	res, err := s.db.ExecContext(ctx, `UPDATE actions SET status = ?, result = ?, error = ?
		WHERE id = ? AND status = ?`,
		string(status), result, errMsg, id, string(action.StatusApproved))
	if err != nil {
		return fmt.Errorf("sqlite: complete action %s: %w", id, err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("sqlite: complete action %s: %w", id, err)
	}
	if n == 0 {
		return s.loseReason(ctx, id, action.ErrInvalidTransition)
	}
	return nil
}

// loseReason distinguishes a missing row from a row in the wrong state when
// a conditional update matched nothing.
func (s *actionStore) loseReason(ctx context.Context, id string, conflict error) error {
	var status string
	err := s.db.QueryRowContext(ctx, `SELECT status FROM actions WHERE id = ?`, id).Scan(&status)
	if errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("%w: %s", action.ErrNotFound, id)
	}
	if err != nil {
		return fmt.Errorf("sqlite: inspect action %s: %w", id, err)
	}
	return fmt.Errorf("%w: %s is %s", conflict, id, status)
}

// rowScanner abstracts *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}

func scanAction(row rowScanner) (action.Action, error) {
	var (
		act                   action.Action
		tier, status          string
		params                string
		createdAt, resolvedAt string
	)
	err := row.Scan(&act.ID, &act.ConversationID, &tier, &act.Description, &act.Command,
		&act.Domain, &act.Intent, &params, &status, &act.Result, &act.Error,
		&createdAt, &resolvedAt)
	if err != nil {
		return action.Action{}, err
	}

	act.Tier = tools.Tier(tier)
	act.Status = action.Status(status)

	if err := json.Unmarshal([]byte(params), &act.Params); err != nil {
		return action.Action{}, fmt.Errorf("params for %s: %w", act.ID, err)
	}
	if act.CreatedAt, err = time.Parse(timeFormat, createdAt); err != nil {
		return action.Action{}, fmt.Errorf("created_at for %s: %w", act.ID, err)
	}
	if resolvedAt != "" {
		if act.ResolvedAt, err = time.Parse(timeFormat, resolvedAt); err != nil {
			return action.Action{}, fmt.Errorf("resolved_at for %s: %w", act.ID, err)
		}
	}
	return act, nil
}
