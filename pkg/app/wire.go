package app

import (
	"errors"
	"log/slog"
	"time"

	"github.com/onefuture/futurebuddy/internal/action"
	"github.com/onefuture/futurebuddy/internal/core"
	"github.com/onefuture/futurebuddy/internal/security"
	"github.com/onefuture/futurebuddy/internal/tools"
)

// shutdownGrace bounds background component shutdown after the module
// lifecycle has already completed.
const shutdownGrace = 5 * time.Second

// wireGovernance connects the tool registry, the action store, and the
// security services into the classifier and resolver, then registers both for
// the gateway to discover. Must be called after LoadModules and before Start.
func wireGovernance(
	appCtx *core.AppContext,
	registry *tools.Registry,
	auditLogger *security.AuditLogger,
	rateLimiter *security.RateLimiter,
	logger *slog.Logger,
) error {
	// The sqlite module registers the durable store during Provision. A
	// config without it still gets a working engine on the in-memory store;
	// staged actions then simply do not survive a restart.
	var store action.Store
	if svc, ok := appCtx.Service("action.store"); ok {
		store, ok = svc.(action.Store)
		if !ok {
			return errors.New("action.store service has wrong type")
		}
	}
	if store == nil {
		logger.Warn("no durable action store configured, staged actions will not survive restarts")
		store = action.NewMemStore()
		appCtx.RegisterService("action.store", store)
	}

	if svc, ok := appCtx.Service("tools.audit_log"); ok {
		if auditLog, ok := svc.(tools.AuditLog); ok {
			registry.SetAuditLog(auditLog)
		}
	}
	if svc, ok := appCtx.Service("tools.status_cache"); ok {
		if cache, ok := svc.(tools.StatusCache); ok {
			registry.SetStatusCache(cache)
		}
	}
	registry.SetRateLimiter(rateLimiter)
	registry.SetEventLogger(auditLogger)

	classifier := action.NewClassifier(registry, store, auditLogger, logger.With("component", "classifier"))

	resolver := action.NewResolver(store, registry, logger.With("component", "resolver"))
	resolver.SetRateLimiter(rateLimiter)
	resolver.SetEventLogger(auditLogger)

	appCtx.RegisterService("action.classifier", classifier)
	appCtx.RegisterService("action.resolver", resolver)
	return nil
}
