package gateway

import (
	"net/http"
	"slices"
	"time"
)

// StatusResponse is the JSON response for GET /status.
type StatusResponse struct {
	Uptime         time.Duration   `json:"uptime_seconds"`
	Metrics        MetricsSnapshot `json:"metrics"`
	Domains        []string        `json:"domains,omitempty"`
	ToolsInstalled int             `json:"tools_installed"`
	PendingActions int             `json:"pending_actions"`
}

// handleStatus returns an http.HandlerFunc for GET /status.
func (g *Gateway) handleStatus() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		resp := StatusResponse{
			Uptime:  time.Since(g.startedAt).Truncate(time.Second),
			Metrics: g.metrics.Snapshot(),
		}

		if g.registry != nil {
			resp.ToolsInstalled = len(g.registry.Installed())
			for _, info := range g.registry.Infos() {
				if !slices.Contains(resp.Domains, info.Domain) {
					resp.Domains = append(resp.Domains, info.Domain)
				}
			}
		}
		if g.store != nil {
			if pending, err := g.store.Pending(r.Context()); err == nil {
				resp.PendingActions = len(pending)
			}
		}

		writeJSON(w, http.StatusOK, resp)
	}
}
