package gateway

import (
	"net/http"
)

// HealthResponse is the JSON response for GET /health.
type HealthResponse struct {
	Status         string `json:"status"`
	ToolsInstalled int    `json:"tools_installed"`
	PendingActions int    `json:"pending_actions"`
}

// handleHealth returns an http.HandlerFunc for GET /health.
func (g *Gateway) handleHealth() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		resp := HealthResponse{Status: "ok"}

		if g.registry != nil {
			resp.ToolsInstalled = len(g.registry.Installed())
		}
		if g.store != nil {
			if pending, err := g.store.Pending(r.Context()); err == nil {
				resp.PendingActions = len(pending)
			} else {
				resp.Status = "degraded"
			}
		}

		status := http.StatusOK
		if resp.Status != "ok" {
			status = http.StatusServiceUnavailable
		}
		writeJSON(w, status, resp)
	}
}
