package config

import (
	"errors"
	"fmt"

	"github.com/robfig/cron/v3"

	"github.com/onefuture/futurebuddy/internal/core"
)

// scheduleParser accepts the same 5-field cron expressions the scheduler does.
var scheduleParser = cron.NewParser(cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow)

// Validate checks the structural validity of a Config.
// It verifies the version field, ensures modules are present,
// and checks that all referenced module IDs exist in the registry.
// It also enforces that Configurable modules have a config entry
// and validates the scan schedule and rate limit settings.
func Validate(cfg *Config) error {
	var errs []error

	if cfg.Version == "" {
		errs = append(errs, errors.New("config: version field is required"))
	} else if cfg.Version != "1" {
		errs = append(errs, fmt.Errorf("config: unsupported version %q (supported: \"1\")", cfg.Version))
	}

	if len(cfg.Modules) == 0 {
		errs = append(errs, errors.New("config: at least one module must be configured"))
	}

	for id := range cfg.Modules {
		if _, ok := core.GetModule(id); !ok {
			errs = append(errs, fmt.Errorf("config: unknown module %q", id))
		}
	}

	// Strict check: registered Configurable modules must have a config entry.
	for _, info := range core.GetModules() {
		mod := info.New()
		if _, ok := mod.(core.Configurable); ok {
			if _, exists := cfg.Modules[string(info.ID)]; !exists {
				errs = append(errs, fmt.Errorf("config: module %q requires configuration but has no entry", info.ID))
			}
		}
	}

	if cfg.Scan.Schedule != "" {
		if _, err := scheduleParser.Parse(cfg.Scan.Schedule); err != nil {
			errs = append(errs, fmt.Errorf("config: scan.schedule %q: %w", cfg.Scan.Schedule, err))
		}
	}

	errs = append(errs, validateRateLimits(cfg.Security.RateLimits)...)

	return errors.Join(errs...)
}

func validateRateLimits(rl RateLimitConfig) []error {
	var errs []error
	check := func(name string, v int) {
		if v < 0 {
			errs = append(errs, fmt.Errorf("config: security.rate_limits.%s must not be negative, got %d", name, v))
		}
	}
	check("executions_per_min", rl.ExecutionsPerMin)
	check("approvals_per_min", rl.ApprovalsPerMin)
	check("auth_per_min", rl.AuthPerMin)
	return errs
}
