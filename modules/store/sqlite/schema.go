package sqlite

import (
	"context"
	"database/sql"
	"fmt"
)

const schemaVersion = 1

// schemaStatements are executed in order to create the database schema.
// All use IF NOT EXISTS for idempotent re-application.
var schemaStatements = []string{
	`CREATE TABLE IF NOT EXISTS actions (
		id              TEXT PRIMARY KEY,
		conversation_id TEXT NOT NULL DEFAULT '',
		tier            TEXT NOT NULL,
		description     TEXT NOT NULL DEFAULT '',
		command         TEXT NOT NULL DEFAULT '',
		domain          TEXT NOT NULL,
		intent          TEXT NOT NULL,
		params          TEXT NOT NULL DEFAULT '{}',
		status          TEXT NOT NULL,
		result          TEXT NOT NULL DEFAULT '',
		error           TEXT NOT NULL DEFAULT '',
		created_at      TEXT NOT NULL,
		resolved_at     TEXT NOT NULL DEFAULT ''
	)`,

	`CREATE INDEX IF NOT EXISTS idx_actions_status ON actions(status)`,
	`CREATE INDEX IF NOT EXISTS idx_actions_created ON actions(created_at)`,

	`CREATE TABLE IF NOT EXISTS audit_log (
		seq         INTEGER PRIMARY KEY AUTOINCREMENT,
		action_id   TEXT NOT NULL DEFAULT '',
		tool_id     TEXT NOT NULL DEFAULT '',
		domain      TEXT NOT NULL,
		intent      TEXT NOT NULL,
		params      TEXT NOT NULL DEFAULT '{}',
		success     INTEGER NOT NULL,
		output      TEXT NOT NULL DEFAULT '',
		error       TEXT NOT NULL DEFAULT '',
		duration_ms INTEGER NOT NULL DEFAULT 0,
		executed_at TEXT NOT NULL
	)`,

	`CREATE INDEX IF NOT EXISTS idx_audit_action ON audit_log(action_id)`,

	`CREATE TABLE IF NOT EXISTS tools (
		id           TEXT PRIMARY KEY,
		name         TEXT NOT NULL DEFAULT '',
		description  TEXT NOT NULL DEFAULT '',
		domain       TEXT NOT NULL,
		installed    INTEGER NOT NULL DEFAULT 0,
		version      TEXT NOT NULL DEFAULT '',
		path         TEXT NOT NULL DEFAULT '',
		last_checked TEXT NOT NULL DEFAULT '',
		capabilities TEXT NOT NULL DEFAULT '[]'
	)`,
}

// migrate creates or updates the database schema to the latest version.
// All DDL uses IF NOT EXISTS, making migration idempotent.
func migrate(db *sql.DB) error {
	ctx := context.TODO()

	// Ensure schema_version table exists first.
	if _, err := db.ExecContext(ctx, "CREATE TABLE IF NOT EXISTS schema_version (version INTEGER PRIMARY KEY)"); err != nil {
		return fmt.Errorf("sqlite: create schema_version: %w", err)
	}

	var current int
	if err := db.QueryRowContext(ctx, "SELECT COALESCE(MAX(version), 0) FROM schema_version").Scan(&current); err != nil {
		return fmt.Errorf("sqlite: read schema version: %w", err)
	}

	if current >= schemaVersion {
		return nil
	}

	for _, stmt := range schemaStatements {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("sqlite: migrate: %w\nstatement: %s", err, stmt)
		}
	}

	if _, err := db.ExecContext(ctx, "INSERT OR REPLACE INTO schema_version (version) VALUES (?)", schemaVersion); err != nil {
		return fmt.Errorf("sqlite: record schema version: %w", err)
	}

	return nil
}
