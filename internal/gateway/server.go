package gateway

import (
	"net/http"

	"github.com/go-chi/chi/v5"
)

// buildRouter constructs the chi mux with all routes wired.
func (g *Gateway) buildRouter() http.Handler {
	r := chi.NewRouter()

	// Public — no auth required.
	r.Get("/health", g.handleHealth())

	// Everything else requires auth. Not mounted if no auth configured —
	// the governed surface never runs open.
	if g.config.Auth.IsConfigured() {
		r.Group(func(r chi.Router) {
			r.Use(authMiddleware(g.config.Auth, g.audit, g.limiter))
			r.Get("/status", g.handleStatus())
			r.Route("/api", func(r chi.Router) {
				r.Post("/classify", g.handleClassify())
				r.Route("/actions", func(r chi.Router) {
					r.Get("/", g.handleListActions())
					r.Get("/pending", g.handlePendingActions())
					r.Get("/{id}", g.handleGetAction())
					r.Post("/{id}/resolve", g.handleResolveAction())
				})
				r.Get("/audit", g.handleAuditLog())
				r.Route("/tools", func(r chi.Router) {
					r.Get("/", g.handleListTools())
					r.Get("/installed", g.handleInstalledTools())
					r.Get("/operations", g.handleOperations())
					r.Get("/summary", g.handleCapabilitiesSummary())
					r.Post("/scan", g.handleScanTools())
					r.Post("/execute", g.handleExecuteIntent())
				})
			})
		})
	} else {
		g.logger.Warn("gateway auth not configured, action and tool endpoints disabled")
	}

	return r
}
