package gateway

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/onefuture/futurebuddy/internal/action"
	"github.com/onefuture/futurebuddy/internal/security"
)

// writeJSON encodes v as the response body.
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// handleListActions returns the action history, most recent first.
// Supports ?status= and ?limit= query parameters.
func (g *Gateway) handleListActions() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if g.store == nil {
			http.Error(w, "action store unavailable", http.StatusServiceUnavailable)
			return
		}

		var filter action.Filter
		if s := r.URL.Query().Get("status"); s != "" {
			status := action.Status(s)
			if !status.Valid() {
				http.Error(w, "invalid status filter", http.StatusBadRequest)
				return
			}
			filter.Status = status
		}
		if l := r.URL.Query().Get("limit"); l != "" {
			n, err := strconv.Atoi(l)
			if err != nil || n <= 0 {
				http.Error(w, "invalid limit", http.StatusBadRequest)
				return
			}
			filter.Limit = n
		}

		actions, err := g.store.List(r.Context(), filter)
		if err != nil {
			g.logger.Error("listing actions", "error", err)
			http.Error(w, "internal error", http.StatusInternalServerError)
			return
		}
		if actions == nil {
			actions = []action.Action{}
		}
		writeJSON(w, http.StatusOK, actions)
	}
}

// handlePendingActions returns all actions awaiting a decision.
func (g *Gateway) handlePendingActions() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if g.store == nil {
			http.Error(w, "action store unavailable", http.StatusServiceUnavailable)
			return
		}

		actions, err := g.store.Pending(r.Context())
		if err != nil {
			g.logger.Error("listing pending actions", "error", err)
			http.Error(w, "internal error", http.StatusInternalServerError)
			return
		}
		if actions == nil {
			actions = []action.Action{}
		}
		writeJSON(w, http.StatusOK, actions)
	}
}

// handleGetAction returns a single action by ID.
func (g *Gateway) handleGetAction() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if g.store == nil {
			http.Error(w, "action store unavailable", http.StatusServiceUnavailable)
			return
		}

		id := chi.URLParam(r, "id")
		act, err := g.store.Get(r.Context(), id)
		if errors.Is(err, action.ErrNotFound) {
			http.Error(w, "action not found", http.StatusNotFound)
			return
		}
		if err != nil {
			g.logger.Error("fetching action", "action_id", id, "error", err)
			http.Error(w, "internal error", http.StatusInternalServerError)
			return
		}
		writeJSON(w, http.StatusOK, act)
	}
}

// classifyRequest is the JSON body for POST /api/classify.
type classifyRequest struct {
	Text           string `json:"text"`
	ConversationID string `json:"conversation_id"`
}

// handleClassify runs the action classifier over one piece of assistant
// output. Green actions in the response are already executed; yellow and red
// ones are pending and await a resolve call.
func (g *Gateway) handleClassify() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if g.classifier == nil {
			http.Error(w, "classifier unavailable", http.StatusServiceUnavailable)
			return
		}

		var req classifyRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Text == "" {
			http.Error(w, "body must be JSON with a non-empty \"text\" field", http.StatusBadRequest)
			return
		}

		actions, err := g.classifier.Classify(r.Context(), req.Text, req.ConversationID)
		if err != nil {
			// Partial results still go back; persistence hiccups must not
			// hide what did run.
			g.logger.Error("classifying agent output", "error", err)
		}
		if actions == nil {
			actions = []action.Action{}
		}
		writeJSON(w, http.StatusOK, actions)
	}
}

// resolveRequest is the JSON body for POST /api/actions/{id}/resolve.
type resolveRequest struct {
	Approved *bool `json:"approved"`
}

// handleResolveAction applies an approval decision to a pending action.
func (g *Gateway) handleResolveAction() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if g.resolver == nil {
			http.Error(w, "resolver unavailable", http.StatusServiceUnavailable)
			return
		}

		var req resolveRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Approved == nil {
			http.Error(w, "body must be JSON with an \"approved\" boolean", http.StatusBadRequest)
			return
		}

		id := chi.URLParam(r, "id")
		act, err := g.resolver.Resolve(r.Context(), id, *req.Approved)
		switch {
		case errors.Is(err, action.ErrNotFound):
			http.Error(w, "action not found", http.StatusNotFound)
			return
		case errors.Is(err, action.ErrAlreadyResolved):
			http.Error(w, "action already resolved", http.StatusConflict)
			return
		case errors.Is(err, security.ErrRateLimited):
			http.Error(w, "too many requests", http.StatusTooManyRequests)
			return
		case err != nil:
			// Execution happened but bookkeeping failed; the action still
			// carries the real outcome.
			g.logger.Error("resolving action", "action_id", id, "error", err)
		}

		if g.metrics != nil {
			g.metrics.RecordResolution(*req.Approved)
		}

		writeJSON(w, http.StatusOK, act)
	}
}
