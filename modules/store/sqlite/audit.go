package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/onefuture/futurebuddy/internal/tools"
)

// auditLog implements tools.AuditLog. Rows are append-only; nothing in the
// codebase updates or deletes them.
type auditLog struct {
	db *sql.DB
}

// Append implements tools.AuditLog.
func (l *auditLog) Append(ctx context.Context, entry tools.AuditEntry) error {
	params, err := json.Marshal(entry.Params)
	if err != nil {
		return fmt.Errorf("sqlite: marshal audit params: %w", err)
	}

	_, err = l.db.ExecContext(ctx, `INSERT INTO audit_log
		(action_id, tool_id, domain, intent, params, success, output, error, duration_ms, executed_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		entry.ActionID, entry.ToolID, entry.Domain, entry.Intent, string(params),
		boolToInt(entry.Success), entry.Output, entry.Error,
		entry.Duration.Milliseconds(), entry.ExecutedAt.UTC().Format(timeFormat),
	)
	if err != nil {
		return fmt.Errorf("sqlite: append audit entry: %w", err)
	}
	return nil
}

// Recent returns the latest audit entries, newest first.
func (l *auditLog) Recent(ctx context.Context, limit int) ([]tools.AuditEntry, error) {
	if limit <= 0 {
		limit = 50
	}

	rows, err := l.db.QueryContext(ctx, `SELECT action_id, tool_id, domain, intent, params,
		success, output, error, duration_ms, executed_at
		FROM audit_log ORDER BY seq DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("sqlite: query audit log: %w", err)
	}
	defer rows.Close()

	var out []tools.AuditEntry
	for rows.Next() {
		var (
			entry      tools.AuditEntry
			params     string
			success    int
			durationMS int64
			executedAt string
		)
		if err := rows.Scan(&entry.ActionID, &entry.ToolID, &entry.Domain, &entry.Intent,
			&params, &success, &entry.Output, &entry.Error, &durationMS, &executedAt); err != nil {
			return nil, fmt.Errorf("sqlite: scan audit entry: %w", err)
		}
		if err := json.Unmarshal([]byte(params), &entry.Params); err != nil {
			return nil, fmt.Errorf("sqlite: audit params: %w", err)
		}
		entry.Success = success != 0
		entry.Duration = time.Duration(durationMS) * time.Millisecond
		if entry.ExecutedAt, err = time.Parse(timeFormat, executedAt); err != nil {
			return nil, fmt.Errorf("sqlite: audit executed_at: %w", err)
		}
		out = append(out, entry)
	}
	return out, rows.Err()
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
