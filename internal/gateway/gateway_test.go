package gateway

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/onefuture/futurebuddy/internal/action"
	"github.com/onefuture/futurebuddy/internal/tools"
)

// fakeToolRegistry implements ToolRegistry for handler tests.
type fakeToolRegistry struct {
	infos   []tools.Info
	ops     []tools.OperationInfo
	summary string
	result  tools.OperationResult
	scanErr error
}

func (f *fakeToolRegistry) Infos() []tools.Info { return f.infos }

func (f *fakeToolRegistry) Installed() []tools.Info {
	var out []tools.Info
	for _, info := range f.infos {
		if info.Installed {
			out = append(out, info)
		}
	}
	return out
}

func (f *fakeToolRegistry) Operations() []tools.OperationInfo { return f.ops }
func (f *fakeToolRegistry) CapabilitiesSummary() string       { return f.summary }

func (f *fakeToolRegistry) Scan(context.Context) ([]tools.Info, error) {
	return f.infos, f.scanErr
}

func (f *fakeToolRegistry) ExecuteIntent(_ context.Context, domain, intent string, _ map[string]string, _ string) tools.OperationResult {
	r := f.result
	if r.ToolID == "" {
		r.ToolID = domain + "/" + intent
	}
	return r
}

// fakeResolver implements ActionResolver.
type fakeResolver struct {
	act action.Action
	err error
}

func (f *fakeResolver) Resolve(_ context.Context, id string, approved bool) (action.Action, error) {
	if f.err != nil {
		return action.Action{}, f.err
	}
	act := f.act
	act.ID = id
	if approved {
		act.Status = action.StatusExecuted
	} else {
		act.Status = action.StatusDenied
	}
	return act, nil
}

// fakeClassifier implements ActionClassifier.
type fakeClassifier struct {
	actions  []action.Action
	err      error
	lastText string
	lastConv string
}

func (f *fakeClassifier) Classify(_ context.Context, agentText, conversationID string) ([]action.Action, error) {
	f.lastText = agentText
	f.lastConv = conversationID
	return f.actions, f.err
}

const testToken = "test-token-123"

func newTestGateway(t *testing.T, store action.Store, resolver ActionResolver, registry ToolRegistry) *Gateway {
	t.Helper()
	g := &Gateway{
		config: Config{
			Bind: "127.0.0.1:0",
			Auth: AuthConfig{BearerToken: testToken},
		},
		logger:    slog.New(slog.NewTextHandler(io.Discard, nil)),
		metrics:   &Metrics{},
		store:     store,
		resolver:  resolver,
		registry:  registry,
		startedAt: time.Now(),
	}
	g.config.defaults()
	return g
}

func doRequest(t *testing.T, g *Gateway, method, path, body string, authed bool) *httptest.ResponseRecorder {
	t.Helper()
	var reqBody *strings.Reader
	if body != "" {
		reqBody = strings.NewReader(body)
	} else {
		reqBody = strings.NewReader("")
	}
	req := httptest.NewRequest(method, path, reqBody)
	if authed {
		req.Header.Set("Authorization", "Bearer "+testToken)
	}
	rec := httptest.NewRecorder()
	g.buildRouter().ServeHTTP(rec, req)
	return rec
}

func TestConfigDefaultWriteTimeoutCoversLongExecutions(t *testing.T) {
	t.Parallel()

	var cfg Config
	cfg.defaults()

	// Driver and package installs run inline for up to ten minutes; a
	// shorter write deadline would drop the response after the action
	// record was already written.
	longestCapability := 10 * time.Minute
	if cfg.WriteTimeout <= longestCapability {
		t.Errorf("WriteTimeout = %s, must exceed %s", cfg.WriteTimeout, longestCapability)
	}
}

func TestGateway_HealthPublic(t *testing.T) {
	t.Parallel()

	store := action.NewMemStore()
	g := newTestGateway(t, store, &fakeResolver{}, &fakeToolRegistry{
		infos: []tools.Info{{ID: "winget", Installed: true}, {ID: "scoop"}},
	})

	rec := doRequest(t, g, http.MethodGet, "/health", "", false)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}

	var resp HealthResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatal(err)
	}
	if resp.Status != "ok" {
		t.Errorf("status = %q", resp.Status)
	}
	if resp.ToolsInstalled != 1 {
		t.Errorf("tools_installed = %d, want 1", resp.ToolsInstalled)
	}
}

func TestGateway_AuthRequired(t *testing.T) {
	t.Parallel()

	g := newTestGateway(t, action.NewMemStore(), &fakeResolver{}, &fakeToolRegistry{})

	for _, path := range []string{"/status", "/api/actions/pending", "/api/tools/"} {
		rec := doRequest(t, g, http.MethodGet, path, "", false)
		if rec.Code != http.StatusUnauthorized {
			t.Errorf("%s: status = %d, want 401", path, rec.Code)
		}
	}

	// Wrong token is also rejected.
	req := httptest.NewRequest(http.MethodGet, "/status", nil)
	req.Header.Set("Authorization", "Bearer wrong")
	rec := httptest.NewRecorder()
	g.buildRouter().ServeHTTP(rec, req)
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("wrong token: status = %d, want 401", rec.Code)
	}
}

func TestGateway_NoAuthConfigured_EndpointsAbsent(t *testing.T) {
	t.Parallel()

	g := newTestGateway(t, action.NewMemStore(), &fakeResolver{}, &fakeToolRegistry{})
	g.config.Auth = AuthConfig{}

	rec := doRequest(t, g, http.MethodGet, "/api/actions/pending", "", false)
	if rec.Code != http.StatusNotFound {
		t.Errorf("status = %d, want 404 when auth unset", rec.Code)
	}
	// Health stays public.
	rec = doRequest(t, g, http.MethodGet, "/health", "", false)
	if rec.Code != http.StatusOK {
		t.Errorf("health status = %d, want 200", rec.Code)
	}
}

func TestGateway_ListActions(t *testing.T) {
	t.Parallel()

	store := action.NewMemStore()
	base := time.Now()
	for i, id := range []string{"a1", "a2", "a3"} {
		act := action.Action{
			ID:        id,
			Tier:      tools.TierYellow,
			Domain:    "packages",
			Intent:    "install",
			Status:    action.StatusPending,
			CreatedAt: base.Add(time.Duration(i) * time.Second),
		}
		if err := store.Create(context.Background(), act); err != nil {
			t.Fatal(err)
		}
	}

	g := newTestGateway(t, store, &fakeResolver{}, &fakeToolRegistry{})

	rec := doRequest(t, g, http.MethodGet, "/api/actions/?limit=2", "", true)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200: %s", rec.Code, rec.Body.String())
	}
	var actions []action.Action
	if err := json.Unmarshal(rec.Body.Bytes(), &actions); err != nil {
		t.Fatal(err)
	}
	if len(actions) != 2 {
		t.Fatalf("got %d actions, want 2", len(actions))
	}
	if actions[0].ID != "a3" {
		t.Errorf("first = %s, want a3 (most recent)", actions[0].ID)
	}

	rec = doRequest(t, g, http.MethodGet, "/api/actions/?status=bogus", "", true)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("bogus status filter: code = %d, want 400", rec.Code)
	}
}

func TestGateway_GetAction(t *testing.T) {
	t.Parallel()

	store := action.NewMemStore()
	act := action.Action{ID: "a1", Status: action.StatusPending, CreatedAt: time.Now()}
	if err := store.Create(context.Background(), act); err != nil {
		t.Fatal(err)
	}
	g := newTestGateway(t, store, &fakeResolver{}, &fakeToolRegistry{})

	rec := doRequest(t, g, http.MethodGet, "/api/actions/a1", "", true)
	if rec.Code != http.StatusOK {
		t.Errorf("status = %d, want 200", rec.Code)
	}

	rec = doRequest(t, g, http.MethodGet, "/api/actions/nope", "", true)
	if rec.Code != http.StatusNotFound {
		t.Errorf("status = %d, want 404", rec.Code)
	}
}

func TestGateway_ResolveAction(t *testing.T) {
	t.Parallel()

	g := newTestGateway(t, action.NewMemStore(), &fakeResolver{}, &fakeToolRegistry{})

	rec := doRequest(t, g, http.MethodPost, "/api/actions/a1/resolve", `{"approved":true}`, true)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200: %s", rec.Code, rec.Body.String())
	}
	var act action.Action
	if err := json.Unmarshal(rec.Body.Bytes(), &act); err != nil {
		t.Fatal(err)
	}
	if act.Status != action.StatusExecuted {
		t.Errorf("status = %s, want executed", act.Status)
	}

	// Missing approved field.
	rec = doRequest(t, g, http.MethodPost, "/api/actions/a1/resolve", `{}`, true)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", rec.Code)
	}
}

func TestGateway_ResolveErrors(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		err      error
		wantCode int
	}{
		{"not found", action.ErrNotFound, http.StatusNotFound},
		{"already resolved", action.ErrAlreadyResolved, http.StatusConflict},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g := newTestGateway(t, action.NewMemStore(), &fakeResolver{err: tt.err}, &fakeToolRegistry{})
			rec := doRequest(t, g, http.MethodPost, "/api/actions/x/resolve", `{"approved":false}`, true)
			if rec.Code != tt.wantCode {
				t.Errorf("status = %d, want %d", rec.Code, tt.wantCode)
			}
		})
	}
}

func TestGateway_Classify(t *testing.T) {
	t.Parallel()

	classifier := &fakeClassifier{
		actions: []action.Action{
			{ID: "a1", Tier: tools.TierGreen, Domain: "packages", Intent: "search", Status: action.StatusExecuted},
			{ID: "a2", Tier: tools.TierYellow, Domain: "packages", Intent: "install", Status: action.StatusPending},
		},
	}
	g := newTestGateway(t, action.NewMemStore(), &fakeResolver{}, &fakeToolRegistry{})
	g.classifier = classifier

	body := `{"text":"installing now","conversation_id":"conv-1"}`
	rec := doRequest(t, g, http.MethodPost, "/api/classify", body, true)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200: %s", rec.Code, rec.Body.String())
	}
	var actions []action.Action
	if err := json.Unmarshal(rec.Body.Bytes(), &actions); err != nil {
		t.Fatal(err)
	}
	if len(actions) != 2 {
		t.Fatalf("got %d actions, want 2", len(actions))
	}
	if actions[0].Status != action.StatusExecuted || actions[1].Status != action.StatusPending {
		t.Errorf("statuses = %s, %s", actions[0].Status, actions[1].Status)
	}
	if classifier.lastText != "installing now" || classifier.lastConv != "conv-1" {
		t.Errorf("classifier saw text=%q conv=%q", classifier.lastText, classifier.lastConv)
	}

	// Missing text.
	rec = doRequest(t, g, http.MethodPost, "/api/classify", `{"conversation_id":"c"}`, true)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("missing text: status = %d, want 400", rec.Code)
	}

	// No classifier wired.
	g.classifier = nil
	rec = doRequest(t, g, http.MethodPost, "/api/classify", body, true)
	if rec.Code != http.StatusServiceUnavailable {
		t.Errorf("no classifier: status = %d, want 503", rec.Code)
	}
}

func TestGateway_ExecuteIntent(t *testing.T) {
	t.Parallel()

	registry := &fakeToolRegistry{
		result: tools.OperationResult{Success: true, ToolID: "winget", Output: "done"},
	}
	g := newTestGateway(t, action.NewMemStore(), &fakeResolver{}, registry)

	body := `{"domain":"packages","intent":"install","params":{"package":"7zip"}}`
	rec := doRequest(t, g, http.MethodPost, "/api/tools/execute", body, true)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200: %s", rec.Code, rec.Body.String())
	}
	var result tools.OperationResult
	if err := json.Unmarshal(rec.Body.Bytes(), &result); err != nil {
		t.Fatal(err)
	}
	if !result.Success || result.Output != "done" {
		t.Errorf("result = %+v", result)
	}

	if g.metrics.Snapshot().Executions != 1 {
		t.Errorf("executions = %d, want 1", g.metrics.Snapshot().Executions)
	}

	rec = doRequest(t, g, http.MethodPost, "/api/tools/execute", `{"domain":"packages"}`, true)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("missing intent: status = %d, want 400", rec.Code)
	}
}

func TestGateway_ToolEndpoints(t *testing.T) {
	t.Parallel()

	registry := &fakeToolRegistry{
		infos: []tools.Info{
			{ID: "winget", Domain: "packages", Installed: true},
			{ID: "scoop", Domain: "packages"},
		},
		ops:     []tools.OperationInfo{{ID: "install", ToolID: "winget", Domain: "packages"}},
		summary: "## Available tools",
	}
	g := newTestGateway(t, action.NewMemStore(), &fakeResolver{}, registry)

	rec := doRequest(t, g, http.MethodGet, "/api/tools/installed", "", true)
	var installed []tools.Info
	if err := json.Unmarshal(rec.Body.Bytes(), &installed); err != nil {
		t.Fatal(err)
	}
	if len(installed) != 1 || installed[0].ID != "winget" {
		t.Errorf("installed = %+v", installed)
	}

	rec = doRequest(t, g, http.MethodGet, "/api/tools/summary", "", true)
	if !strings.Contains(rec.Body.String(), "Available tools") {
		t.Errorf("summary body = %q", rec.Body.String())
	}

	rec = doRequest(t, g, http.MethodPost, "/api/tools/scan", "", true)
	if rec.Code != http.StatusOK {
		t.Errorf("scan status = %d, want 200", rec.Code)
	}

	rec = doRequest(t, g, http.MethodGet, "/status", "", true)
	var status StatusResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &status); err != nil {
		t.Fatal(err)
	}
	if status.ToolsInstalled != 1 {
		t.Errorf("tools_installed = %d, want 1", status.ToolsInstalled)
	}
}
