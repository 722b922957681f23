// Package sqlite implements the persistent store module backing the action
// ledger, the execution audit log, and the tool status cache. It uses
// modernc.org/sqlite (pure Go, no CGO) with WAL mode.
package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/onefuture/futurebuddy/internal/action"
	"github.com/onefuture/futurebuddy/internal/core"
	"github.com/onefuture/futurebuddy/internal/tools"

	_ "modernc.org/sqlite" // SQLite driver registration
)

func init() {
	core.RegisterModule(&Module{})
}

// Compile-time interface guards.
var (
	_ action.Store      = (*actionStore)(nil)
	_ tools.AuditLog    = (*auditLog)(nil)
	_ tools.StatusCache = (*statusCache)(nil)
	_ core.Configurable = (*Module)(nil)
	_ core.Provisioner  = (*Module)(nil)
	_ core.Validator    = (*Module)(nil)
	_ core.Stopper      = (*Module)(nil)
)

// Module provides the action store, audit log, and tool status cache backed
// by a single database file.
type Module struct {
	config  Config
	db      *sql.DB
	logger  *slog.Logger
	actions *actionStore
	audit   *auditLog
	cache   *statusCache
}

// ModuleInfo implements core.Module.
func (m *Module) ModuleInfo() core.ModuleInfo {
	return core.ModuleInfo{
		ID:  "store.sqlite",
		New: func() core.Module { return &Module{} },
	}
}

// Configure implements core.Configurable.
func (m *Module) Configure(node *yaml.Node) error {
	if err := node.Decode(&m.config); err != nil {
		return fmt.Errorf("sqlite: decode config: %w", err)
	}
	m.config.defaults()
	return nil
}

// Provision implements core.Provisioner.
func (m *Module) Provision(ctx *core.AppContext) error {
	m.config.defaults()
	m.logger = ctx.Logger

	if m.config.Path == "" {
		m.config.Path = filepath.Join(ctx.DataDir, defaultDBFile)
	}

	if dir := filepath.Dir(m.config.Path); dir != "." {
		if err := os.MkdirAll(dir, 0o700); err != nil {
			return fmt.Errorf("sqlite: create directory %s: %w", dir, err)
		}
	}

	db, err := open(m.config)
	if err != nil {
		return err
	}

	m.db = db
	m.actions = &actionStore{db: db}
	m.audit = &auditLog{db: db}
	m.cache = &statusCache{db: db}

	ctx.RegisterService("action.store", action.Store(m.actions))
	ctx.RegisterService("tools.audit_log", tools.AuditLog(m.audit))
	ctx.RegisterService("tools.status_cache", tools.StatusCache(m.cache))

	m.logger.Info("sqlite store module provisioned",
		"path", m.config.Path,
		"wal", m.config.walEnabled(),
	)

	return nil
}

// open opens the database file, applies PRAGMAs, and migrates the schema.
func open(cfg Config) (*sql.DB, error) {
	db, err := sql.Open("sqlite", cfg.Path)
	if err != nil {
		return nil, fmt.Errorf("sqlite: open %s: %w", cfg.Path, err)
	}

	// SQLite handles one writer at a time; limit pool to 1 connection
	// so PRAGMAs apply consistently.
	db.SetMaxOpenConns(1)

	if cfg.walEnabled() {
		if _, err := db.ExecContext(context.TODO(), "PRAGMA journal_mode=WAL"); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("sqlite: enable WAL: %w", err)
		}
	}

	if _, err := db.ExecContext(context.TODO(), fmt.Sprintf("PRAGMA busy_timeout=%d", cfg.BusyTimeout)); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("sqlite: set busy_timeout: %w", err)
	}

	if err := migrate(db); err != nil {
		_ = db.Close()
		return nil, err
	}

	return db, nil
}

// Validate implements core.Validator.
func (m *Module) Validate() error {
	if err := m.config.validate(); err != nil {
		return err
	}

	if err := m.db.PingContext(context.TODO()); err != nil {
		return fmt.Errorf("sqlite: ping failed: %w", err)
	}

	return nil
}

// Stop implements core.Stopper.
func (m *Module) Stop(_ context.Context) error {
	m.logger.Info("sqlite store module stopping")
	if m.db != nil {
		return m.db.Close()
	}
	return nil
}

// Actions returns the action store implementation.
func (m *Module) Actions() action.Store { return m.actions }

// Audit returns the execution audit log implementation.
func (m *Module) Audit() tools.AuditLog { return m.audit }

// Cache returns the tool status cache implementation.
func (m *Module) Cache() tools.StatusCache { return m.cache }
