package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/onefuture/futurebuddy/internal/tools"
)

// statusCache implements tools.StatusCache. It mirrors the latest scan so a
// restart can serve capability queries before the first probe completes.
type statusCache struct {
	db *sql.DB
}

// SaveAll implements tools.StatusCache. The whole scan replaces the previous
// mirror in one transaction.
func (c *statusCache) SaveAll(ctx context.Context, infos []tools.Info) error {
	tx, err := c.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("sqlite: begin tool save: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, `DELETE FROM tools`); err != nil {
		return fmt.Errorf("sqlite: clear tools: %w", err)
	}

	for _, info := range infos {
		caps, err := json.Marshal(info.Capabilities)
		if err != nil {
			return fmt.Errorf("sqlite: marshal capabilities for %s: %w", info.ID, err)
		}
		lastChecked := ""
		if !info.LastChecked.IsZero() {
			lastChecked = info.LastChecked.UTC().Format(timeFormat)
		}
		_, err = tx.ExecContext(ctx, `INSERT INTO tools
			(id, name, description, domain, installed, version, path, last_checked, capabilities)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			info.ID, info.Name, info.Description, info.Domain,
			boolToInt(info.Installed), info.Version, info.Path, lastChecked, string(caps))
		if err != nil {
			return fmt.Errorf("sqlite: save tool %s: %w", info.ID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("sqlite: commit tool save: %w", err)
	}
	return nil
}

// LoadAll implements tools.StatusCache.
func (c *statusCache) LoadAll(ctx context.Context) ([]tools.Info, error) {
	rows, err := c.db.QueryContext(ctx, `SELECT id, name, description, domain, installed,
		version, path, last_checked, capabilities FROM tools ORDER BY domain, id`)
	if err != nil {
		return nil, fmt.Errorf("sqlite: load tools: %w", err)
	}
	defer rows.Close()

	var out []tools.Info
	for rows.Next() {
		var (
			info        tools.Info
			installed   int
			lastChecked string
			caps        string
		)
		if err := rows.Scan(&info.ID, &info.Name, &info.Description, &info.Domain,
			&installed, &info.Version, &info.Path, &lastChecked, &caps); err != nil {
			return nil, fmt.Errorf("sqlite: scan tool: %w", err)
		}
		info.Installed = installed != 0
		if lastChecked != "" {
			if info.LastChecked, err = time.Parse(timeFormat, lastChecked); err != nil {
				return nil, fmt.Errorf("sqlite: last_checked for %s: %w", info.ID, err)
			}
		}
		if err := json.Unmarshal([]byte(caps), &info.Capabilities); err != nil {
			return nil, fmt.Errorf("sqlite: capabilities for %s: %w", info.ID, err)
		}
		out = append(out, info)
	}
	return out, rows.Err()
}
