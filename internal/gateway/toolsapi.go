package gateway

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/onefuture/futurebuddy/internal/tools"
)

// handleAuditLog returns the most recent execution audit entries.
func (g *Gateway) handleAuditLog() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if g.trail == nil {
			http.Error(w, "audit trail unavailable", http.StatusServiceUnavailable)
			return
		}

		limit := 0
		if l := r.URL.Query().Get("limit"); l != "" {
			n, err := strconv.Atoi(l)
			if err != nil || n <= 0 {
				http.Error(w, "invalid limit", http.StatusBadRequest)
				return
			}
			limit = n
		}

		entries, err := g.trail.Recent(r.Context(), limit)
		if err != nil {
			g.logger.Error("reading audit trail", "error", err)
			http.Error(w, "internal error", http.StatusInternalServerError)
			return
		}
		if entries == nil {
			entries = []tools.AuditEntry{}
		}
		writeJSON(w, http.StatusOK, entries)
	}
}

// handleListTools returns the scan cache for all registered tools.
func (g *Gateway) handleListTools() http.HandlerFunc {
	return func(w http.ResponseWriter, _ *http.Request) {
		if g.registry == nil {
			http.Error(w, "tool registry unavailable", http.StatusServiceUnavailable)
			return
		}
		writeJSON(w, http.StatusOK, g.registry.Infos())
	}
}

// handleInstalledTools returns only tools detected on this machine.
func (g *Gateway) handleInstalledTools() http.HandlerFunc {
	return func(w http.ResponseWriter, _ *http.Request) {
		if g.registry == nil {
			http.Error(w, "tool registry unavailable", http.StatusServiceUnavailable)
			return
		}
		writeJSON(w, http.StatusOK, g.registry.Installed())
	}
}

// handleOperations returns all operations currently available for execution.
func (g *Gateway) handleOperations() http.HandlerFunc {
	return func(w http.ResponseWriter, _ *http.Request) {
		if g.registry == nil {
			http.Error(w, "tool registry unavailable", http.StatusServiceUnavailable)
			return
		}
		writeJSON(w, http.StatusOK, g.registry.Operations())
	}
}

// handleCapabilitiesSummary returns the prompt text describing available
// tools and the action grammar.
func (g *Gateway) handleCapabilitiesSummary() http.HandlerFunc {
	return func(w http.ResponseWriter, _ *http.Request) {
		if g.registry == nil {
			http.Error(w, "tool registry unavailable", http.StatusServiceUnavailable)
			return
		}
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		_, _ = w.Write([]byte(g.registry.CapabilitiesSummary()))
	}
}

// handleScanTools reprobes every wrapper and returns the fresh results.
func (g *Gateway) handleScanTools() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if g.registry == nil {
			http.Error(w, "tool registry unavailable", http.StatusServiceUnavailable)
			return
		}
		infos, err := g.registry.Scan(r.Context())
		if err != nil {
			g.logger.Error("tool scan", "error", err)
			http.Error(w, "scan failed", http.StatusInternalServerError)
			return
		}
		writeJSON(w, http.StatusOK, infos)
	}
}

// executeRequest is the JSON body for POST /api/tools/execute.
type executeRequest struct {
	Domain string            `json:"domain"`
	Intent string            `json:"intent"`
	Params map[string]string `json:"params"`
}

// handleExecuteIntent runs an operation directly, outside the approval flow.
// This surface is for the operator, already authenticated; the tier policy
// governs agent-proposed actions, not explicit operator requests.
func (g *Gateway) handleExecuteIntent() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if g.registry == nil {
			http.Error(w, "tool registry unavailable", http.StatusServiceUnavailable)
			return
		}

		var req executeRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "invalid JSON body", http.StatusBadRequest)
			return
		}
		if req.Domain == "" || req.Intent == "" {
			http.Error(w, "domain and intent are required", http.StatusBadRequest)
			return
		}

		result := g.registry.ExecuteIntent(r.Context(), req.Domain, req.Intent, req.Params, "")
		if g.metrics != nil {
			g.metrics.RecordExecution(result.Success, result.Duration)
		}
		writeJSON(w, http.StatusOK, result)
	}
}
