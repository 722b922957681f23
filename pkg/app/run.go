// Package app provides the shared entry point for the futurebuddy binary:
// configuration, the security foundation, module loading, governance wiring,
// and the main signal loop.
package app

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/onefuture/futurebuddy/internal/config"
	"github.com/onefuture/futurebuddy/internal/core"
	"github.com/onefuture/futurebuddy/internal/cron"
	"github.com/onefuture/futurebuddy/internal/security"
	"github.com/onefuture/futurebuddy/internal/shell"
	"github.com/onefuture/futurebuddy/internal/tools"
)

// eventLogFile is the JSONL security event stream, relative to the data dir.
const eventLogFile = "events.jsonl"

// RunParams configures the main application loop.
type RunParams struct {
	// ConfigPath is an explicit path to the YAML configuration file.
	// If empty, ResolveConfigPath is called automatically.
	ConfigPath string

	// Version, Commit, and Date are injected at build time via ldflags.
	Version string
	Commit  string
	Date    string

	// DataDir overrides the configured persistent data directory.
	DataDir string

	// LogLevel sets the minimum log level. Defaults to slog.LevelInfo.
	LogLevel slog.Level
}

// Run loads configuration, starts all modules, runs the startup tool scan,
// and blocks until a shutdown signal is received.
func Run(params RunParams) error {
	cfgPath := params.ConfigPath
	if cfgPath == "" {
		resolved, err := ResolveConfigPath()
		if err != nil {
			return err
		}
		cfgPath = resolved
	}

	cfg, err := config.Load(cfgPath)
	if err != nil {
		return err
	}
	if err := config.Validate(cfg); err != nil {
		return err
	}

	// Security foundation first: everything else logs through it.
	redactor := security.NewRedactor()
	for _, lit := range cfg.Security.RedactLiterals {
		redactor.AddLiteral(lit)
	}

	innerHandler := slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: params.LogLevel,
	})
	logger := slog.New(security.NewRedactingHandler(innerHandler, redactor))

	dataDir := params.DataDir
	if dataDir == "" {
		dataDir = cfg.DataDir
	}
	if dataDir == "" {
		dataDir = DefaultDataDir()
	}
	if err := os.MkdirAll(dataDir, 0o700); err != nil {
		return fmt.Errorf("creating data dir: %w", err)
	}

	eventFile, err := os.OpenFile(filepath.Join(dataDir, eventLogFile), os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o600)
	if err != nil {
		return fmt.Errorf("opening event log: %w", err)
	}
	defer eventFile.Close()

	auditLogger := security.NewAuditLogger(security.AuditLoggerConfig{
		Writer:   eventFile,
		Redactor: redactor,
	})

	rateLimiter := security.NewRateLimiter(security.RateLimitConfig{
		ExecutionsPerMin: cfg.Security.RateLimits.ExecutionsPerMin,
		ApprovalsPerMin:  cfg.Security.RateLimits.ApprovalsPerMin,
		AuthPerMin:       cfg.Security.RateLimits.AuthPerMin,
	})

	registry := tools.NewRegistry(logger.With("component", "tools"))
	runner := shell.NewRunner()

	appCtx := core.NewAppContext(logger, dataDir).WithModuleConfigs(cfg.Modules)

	// Shared services the modules resolve during Provision and Start.
	appCtx.RegisterService("shell.runner", runner)
	appCtx.RegisterService("tools.registry", registry)
	appCtx.RegisterService("security.redactor", redactor)
	appCtx.RegisterService("security.audit", auditLogger)
	appCtx.RegisterService("security.ratelimiter", rateLimiter)
	appCtx.RegisterService("config.path", cfgPath)

	application := core.NewApp(appCtx)
	ids := config.Resolve(cfg)
	if err := application.LoadModules(ids); err != nil {
		return err
	}

	// Governance wiring sits between LoadModules (the store module has
	// registered its services) and Start (the gateway resolves them).
	if err := wireGovernance(appCtx, registry, auditLogger, rateLimiter, logger); err != nil {
		return err
	}

	scanCtx, cancelScan := context.WithCancel(context.Background())
	defer cancelScan()

	if err := registry.LoadCached(scanCtx); err != nil {
		logger.Warn("tool status cache unavailable", "error", err)
	}

	// The startup probe pass can take tens of seconds; cached state serves
	// queries until it lands.
	go func() {
		if _, err := registry.Scan(scanCtx); err != nil {
			logger.Warn("startup tool scan failed", "error", err)
		}
	}()

	var scheduler *cron.Scheduler
	if !cfg.Scan.Disabled {
		scheduler = cron.NewScheduler(logger)
		job := &cron.ToolScanJob{
			Registry:     registry,
			Logger:       logger.With("component", "cron"),
			ScheduleExpr: cfg.Scan.Schedule,
		}
		if err := scheduler.RegisterJob(job); err != nil {
			return err
		}
		if err := scheduler.Start(); err != nil {
			return err
		}
	}

	logger.Info("futurebuddy starting",
		"version", params.Version,
		"config", cfgPath,
		"data_dir", dataDir,
		"modules", len(ids),
	)

	runErr := application.Run()

	if scheduler != nil {
		stopCtx, cancel := context.WithTimeout(context.Background(), shutdownGrace)
		defer cancel()
		if err := scheduler.Stop(stopCtx); err != nil {
			logger.Warn("scheduler stop error", "error", err)
		}
	}

	return runErr
}

// ResolveConfigPath searches for a config file in standard locations.
// Search order: $XDG_CONFIG_HOME/futurebuddy/futurebuddy.yaml →
// ~/.config/futurebuddy/futurebuddy.yaml → ./futurebuddy.yaml
func ResolveConfigPath() (string, error) {
	var candidates []string

	if xdg, ok := os.LookupEnv("XDG_CONFIG_HOME"); ok {
		candidates = append(candidates, filepath.Join(xdg, "futurebuddy", "futurebuddy.yaml"))
	} else if home, err := os.UserHomeDir(); err == nil {
		candidates = append(candidates, filepath.Join(home, ".config", "futurebuddy", "futurebuddy.yaml"))
	}

	candidates = append(candidates, "futurebuddy.yaml")

	for _, path := range candidates {
		if _, err := os.Stat(path); err == nil {
			return path, nil
		}
	}

	return "", fmt.Errorf("no configuration file found (searched: %v)", candidates)
}

// DefaultDataDir returns the default persistent data directory.
// Uses $XDG_DATA_HOME/futurebuddy if set, otherwise ~/.local/share/futurebuddy.
func DefaultDataDir() string {
	if dir, ok := os.LookupEnv("XDG_DATA_HOME"); ok {
		return filepath.Join(dir, "futurebuddy")
	}
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".local", "share", "futurebuddy")
}
