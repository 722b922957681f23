// Package gateway provides the HTTP surface for the assistant: action
// approval, tool inspection, and health monitoring. It binds to loopback by
// default and follows the module system pattern.
package gateway

import (
	"context"
	"errors"
	"log/slog"
	"net"
	"net/http"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/onefuture/futurebuddy/internal/action"
	"github.com/onefuture/futurebuddy/internal/core"
	"github.com/onefuture/futurebuddy/internal/security"
	"github.com/onefuture/futurebuddy/internal/tools"
)

func init() {
	core.RegisterModule(&Gateway{})
}

// ToolRegistry is the subset of the tool registry the gateway serves.
type ToolRegistry interface {
	Infos() []tools.Info
	Installed() []tools.Info
	Operations() []tools.OperationInfo
	CapabilitiesSummary() string
	Scan(ctx context.Context) ([]tools.Info, error)
	ExecuteIntent(ctx context.Context, domain, intent string, params map[string]string, actionID string) tools.OperationResult
}

// ActionResolver applies approval decisions.
type ActionResolver interface {
	Resolve(ctx context.Context, actionID string, approved bool) (action.Action, error)
}

// ActionClassifier turns assistant output into governed actions. The chat
// pipeline calls this after every assistant turn.
type ActionClassifier interface {
	Classify(ctx context.Context, agentText, conversationID string) ([]action.Action, error)
}

// AuditReader exposes the execution audit trail for inspection.
type AuditReader interface {
	Recent(ctx context.Context, limit int) ([]tools.AuditEntry, error)
}

// Gateway is the HTTP gateway module. It is a leaf module — nothing imports it.
type Gateway struct {
	config    Config
	appCtx    *core.AppContext
	logger    *slog.Logger
	server    *http.Server
	metrics   *Metrics
	startedAt time.Time

	// Resolved lazily at Start() via service registry.
	store      action.Store
	resolver   ActionResolver
	classifier ActionClassifier
	registry   ToolRegistry
	trail      AuditReader
	audit      *security.AuditLogger
	limiter    *security.RateLimiter
}

// ModuleInfo implements core.Module.
func (g *Gateway) ModuleInfo() core.ModuleInfo {
	return core.ModuleInfo{
		ID:  "gateway.http",
		New: func() core.Module { return &Gateway{} },
	}
}

// Configure implements core.Configurable.
func (g *Gateway) Configure(node *yaml.Node) error {
	if err := node.Decode(&g.config); err != nil {
		return err
	}
	g.config.defaults()
	return nil
}

// Provision implements core.Provisioner.
func (g *Gateway) Provision(ctx *core.AppContext) error {
	g.appCtx = ctx
	g.logger = ctx.Logger
	g.metrics = &Metrics{}

	ctx.RegisterService("gateway.metrics", g.metrics)
	return nil
}

// Validate implements core.Validator.
func (g *Gateway) Validate() error {
	if _, err := net.ResolveTCPAddr("tcp", g.config.Bind); err != nil {
		return errors.New("gateway: invalid bind address: " + g.config.Bind)
	}
	return nil
}

// Start implements core.Starter. It resolves dependencies from the service
// registry (lazy binding) and starts the HTTP server.
func (g *Gateway) Start() error {
	// Resolve optional services — endpoints degrade gracefully if missing.
	if svc, ok := g.appCtx.Service("action.store"); ok {
		if store, ok := svc.(action.Store); ok {
			g.store = store
		}
	}
	if svc, ok := g.appCtx.Service("action.resolver"); ok {
		if resolver, ok := svc.(ActionResolver); ok {
			g.resolver = resolver
		}
	}
	if svc, ok := g.appCtx.Service("action.classifier"); ok {
		if classifier, ok := svc.(ActionClassifier); ok {
			g.classifier = classifier
		}
	}
	if svc, ok := g.appCtx.Service("tools.registry"); ok {
		if registry, ok := svc.(ToolRegistry); ok {
			g.registry = registry
		}
	}
	if svc, ok := g.appCtx.Service("tools.audit_log"); ok {
		if trail, ok := svc.(AuditReader); ok {
			g.trail = trail
		}
	}
	if svc, ok := g.appCtx.Service("security.audit"); ok {
		if audit, ok := svc.(*security.AuditLogger); ok {
			g.audit = audit
		}
	}
	if svc, ok := g.appCtx.Service("security.ratelimiter"); ok {
		if limiter, ok := svc.(*security.RateLimiter); ok {
			g.limiter = limiter
		}
	}

	g.startedAt = time.Now()

	mux := g.buildRouter()

	g.server = &http.Server{
		Addr:         g.config.Bind,
		Handler:      mux,
		ReadTimeout:  g.config.ReadTimeout,
		WriteTimeout: g.config.WriteTimeout,
	}

	var lc net.ListenConfig
	ln, err := lc.Listen(context.Background(), "tcp", g.config.Bind)
	if err != nil {
		return errors.New("gateway: listen failed: " + err.Error())
	}

	go func() {
		g.logger.Info("gateway listening", "addr", g.config.Bind)
		if err := g.server.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			g.logger.Error("gateway serve error", "error", err)
		}
	}()

	return nil
}

// Stop implements core.Stopper. Graceful shutdown with configured timeout.
func (g *Gateway) Stop(ctx context.Context) error {
	if g.server == nil {
		return nil
	}

	shutdownCtx, cancel := context.WithTimeout(ctx, g.config.ShutdownTimeout)
	defer cancel()

	g.logger.Info("gateway shutting down")
	return g.server.Shutdown(shutdownCtx)
}
