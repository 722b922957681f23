package action

import (
	"context"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/onefuture/futurebuddy/internal/tools"
)

type fakeRegistry struct {
	mu      sync.Mutex
	tiers   map[string]tools.Tier // "domain/intent" -> tier
	results map[string]tools.OperationResult
	calls   []string // action IDs passed to ExecuteIntent
}

func newFakeRegistry() *fakeRegistry {
	return &fakeRegistry{
		tiers:   map[string]tools.Tier{},
		results: map[string]tools.OperationResult{},
	}
}

func (f *fakeRegistry) add(domain, intent string, tier tools.Tier, result tools.OperationResult) {
	f.tiers[domain+"/"+intent] = tier
	f.results[domain+"/"+intent] = result
}

func (f *fakeRegistry) HasIntent(domain, intent string) bool {
	_, ok := f.tiers[domain+"/"+intent]
	return ok
}

func (f *fakeRegistry) IntentTier(domain, intent string) (tools.Tier, bool) {
	tier, ok := f.tiers[domain+"/"+intent]
	return tier, ok
}

func (f *fakeRegistry) ExecuteIntent(ctx context.Context, domain, intent string, params map[string]string, actionID string) tools.OperationResult {
	f.mu.Lock()
	f.calls = append(f.calls, actionID)
	f.mu.Unlock()
	if r, ok := f.results[domain+"/"+intent]; ok {
		return r
	}
	return tools.OperationResult{Success: false, Error: "no result configured"}
}

func (f *fakeRegistry) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.calls)
}

func newTestClassifier(t *testing.T, reg *fakeRegistry, store Store) *Classifier {
	t.Helper()
	c := NewClassifier(reg, store, nil, slog.New(slog.NewTextHandler(io.Discard, nil)))
	c.now = func() time.Time { return time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC) }
	return c
}

func TestClassifyGreenExecutesImmediately(t *testing.T) {
	t.Parallel()

	reg := newFakeRegistry()
	reg.add("packages", "check-version", tools.TierGreen,
		tools.OperationResult{Success: true, ToolID: "winget", Output: "1.2.3"})
	store := NewMemStore()
	c := newTestClassifier(t, reg, store)

	text := "Checking now.\n```futurebuddy-action\n" +
		`{"domain":"packages","intent":"check-version","params":{"package":"git"},"tier":"green","description":"Check git version"}` +
		"\n```\nDone."

	actions, err := c.Classify(context.Background(), text, "conv-1")
	if err != nil {
		t.Fatalf("Classify: %v", err)
	}
	if len(actions) != 1 {
		t.Fatalf("got %d actions, want 1", len(actions))
	}

	act := actions[0]
	if act.Status != StatusExecuted {
		t.Errorf("status = %s, want %s", act.Status, StatusExecuted)
	}
	if act.Result != "1.2.3" {
		t.Errorf("result = %q, want %q", act.Result, "1.2.3")
	}
	if reg.callCount() != 1 {
		t.Errorf("ExecuteIntent called %d times, want 1", reg.callCount())
	}

	pending, err := store.Pending(context.Background())
	if err != nil {
		t.Fatalf("Pending: %v", err)
	}
	if len(pending) != 0 {
		t.Errorf("green action left %d pending entries, want 0", len(pending))
	}
}

func TestClassifyYellowStagesWithoutExecuting(t *testing.T) {
	t.Parallel()

	reg := newFakeRegistry()
	reg.add("packages", "install", tools.TierYellow, tools.OperationResult{Success: true})
	store := NewMemStore()
	c := newTestClassifier(t, reg, store)

	text := "```futurebuddy-action\n" +
		`{"domain":"packages","intent":"install","params":{"package":"7zip"},"tier":"yellow"}` +
		"\n```"

	actions, err := c.Classify(context.Background(), text, "conv-1")
	if err != nil {
		t.Fatalf("Classify: %v", err)
	}
	if len(actions) != 1 {
		t.Fatalf("got %d actions, want 1", len(actions))
	}
	if actions[0].Status != StatusPending {
		t.Errorf("status = %s, want %s", actions[0].Status, StatusPending)
	}
	if reg.callCount() != 0 {
		t.Errorf("ExecuteIntent called %d times for staged action, want 0", reg.callCount())
	}
}

func TestClassifyAgentCannotDowngradeTier(t *testing.T) {
	t.Parallel()

	reg := newFakeRegistry()
	reg.add("packages", "uninstall", tools.TierRed, tools.OperationResult{Success: true})
	store := NewMemStore()
	c := newTestClassifier(t, reg, store)

	// Agent claims green, capability says red.
	text := "```futurebuddy-action\n" +
		`{"domain":"packages","intent":"uninstall","params":{"package":"git"},"tier":"green"}` +
		"\n```"

	actions, err := c.Classify(context.Background(), text, "conv-1")
	if err != nil {
		t.Fatalf("Classify: %v", err)
	}
	if len(actions) != 1 {
		t.Fatalf("got %d actions, want 1", len(actions))
	}
	if actions[0].Tier != tools.TierRed {
		t.Errorf("tier = %s, want %s", actions[0].Tier, tools.TierRed)
	}
	if actions[0].Status != StatusPending {
		t.Errorf("status = %s, want %s", actions[0].Status, StatusPending)
	}
}

func TestClassifyDropsUnknownAndMalformed(t *testing.T) {
	t.Parallel()

	reg := newFakeRegistry()
	reg.add("packages", "install", tools.TierYellow, tools.OperationResult{})
	store := NewMemStore()
	c := newTestClassifier(t, reg, store)

	tests := []struct {
		name string
		text string
	}{
		{"unknown domain", "```futurebuddy-action\n{\"domain\":\"nope\",\"intent\":\"install\"}\n```"},
		{"unknown intent", "```futurebuddy-action\n{\"domain\":\"packages\",\"intent\":\"nope\"}\n```"},
		{"invalid json", "```futurebuddy-action\nnot json at all\n```"},
		{"missing intent", "```futurebuddy-action\n{\"domain\":\"packages\"}\n```"},
		{"empty block", "```futurebuddy-action\n\n```"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			actions, err := c.Classify(context.Background(), tt.text, "conv-1")
			if err != nil {
				t.Fatalf("Classify: %v", err)
			}
			if len(actions) != 0 {
				t.Errorf("got %d actions, want 0", len(actions))
			}
		})
	}
}

func TestClassifyShellBlocks(t *testing.T) {
	t.Parallel()

	reg := newFakeRegistry()
	reg.add("terminal", "run-powershell", tools.TierGreen,
		tools.OperationResult{Success: true, Output: "OK"})
	reg.add("terminal", "run-shell", tools.TierGreen, tools.OperationResult{Success: true})
	store := NewMemStore()
	c := newTestClassifier(t, reg, store)

	text := "First look around:\n```powershell\nGet-Process\n```\n" +
		"Then clean up:\n```bash\nrm -rf /tmp/cache\n```"

	actions, err := c.Classify(context.Background(), text, "conv-1")
	if err != nil {
		t.Fatalf("Classify: %v", err)
	}
	if len(actions) != 2 {
		t.Fatalf("got %d actions, want 2", len(actions))
	}

	byIntent := map[string]Action{}
	for _, a := range actions {
		byIntent[a.Intent] = a
	}

	ps := byIntent["run-powershell"]
	if ps.Tier != tools.TierGreen || ps.Status != StatusExecuted {
		t.Errorf("Get-Process: tier=%s status=%s, want green executed", ps.Tier, ps.Status)
	}
	sh := byIntent["run-shell"]
	if sh.Tier != tools.TierRed || sh.Status != StatusPending {
		t.Errorf("rm -rf: tier=%s status=%s, want red pending", sh.Tier, sh.Status)
	}
	if sh.Params["command"] != "rm -rf /tmp/cache" {
		t.Errorf("command param = %q", sh.Params["command"])
	}
}

func TestClassifyMultipleProposals(t *testing.T) {
	t.Parallel()

	reg := newFakeRegistry()
	reg.add("packages", "search", tools.TierGreen, tools.OperationResult{Success: true, Output: "found"})
	reg.add("packages", "install", tools.TierYellow, tools.OperationResult{})
	store := NewMemStore()
	c := newTestClassifier(t, reg, store)

	text := "```futurebuddy-action\n" +
		`{"domain":"packages","intent":"search","params":{"query":"7zip"},"tier":"green"}` +
		"\n```\nand then\n```futurebuddy-action\n" +
		`{"domain":"packages","intent":"install","params":{"package":"7zip"},"tier":"yellow"}` +
		"\n```"

	actions, err := c.Classify(context.Background(), text, "conv-9")
	if err != nil {
		t.Fatalf("Classify: %v", err)
	}
	if len(actions) != 2 {
		t.Fatalf("got %d actions, want 2", len(actions))
	}
	if actions[0].Status != StatusExecuted {
		t.Errorf("first status = %s, want executed", actions[0].Status)
	}
	if actions[1].Status != StatusPending {
		t.Errorf("second status = %s, want pending", actions[1].Status)
	}
	for _, a := range actions {
		if a.ConversationID != "conv-9" {
			t.Errorf("conversation_id = %q, want conv-9", a.ConversationID)
		}
	}
}

func TestCommandTier(t *testing.T) {
	t.Parallel()

	tests := []struct {
		command string
		want    tools.Tier
	}{
		{"Get-Process", tools.TierGreen},
		{"  Get-ChildItem C:\\", tools.TierGreen},
		{"dir C:\\Users", tools.TierGreen},
		{"ipconfig /all", tools.TierGreen},
		{"whoami", tools.TierGreen},
		{"winget install 7zip", tools.TierYellow},
		{"Start-Service spooler", tools.TierYellow},
		{"rm -rf /", tools.TierRed},
		{"Remove-Item C:\\temp -Recurse", tools.TierRed},
		{"del /F important.txt", tools.TierRed},
		{"Set-ExecutionPolicy Bypass", tools.TierRed},
		{"Disable-WindowsOptionalFeature -Online", tools.TierRed},
		{"reg delete HKLM\\Software\\X", tools.TierRed},
		{"net user admin newpass", tools.TierRed},
	}
	for _, tt := range tests {
		if got := CommandTier(tt.command); got != tt.want {
			t.Errorf("CommandTier(%q) = %s, want %s", tt.command, got, tt.want)
		}
	}
}
