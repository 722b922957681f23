package debloat

import (
	"context"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/onefuture/futurebuddy/internal/shell"
	"github.com/onefuture/futurebuddy/internal/tools"
)

type fakeRunner struct {
	mu        sync.Mutex
	commands  []string
	responses map[string]string
}

func (f *fakeRunner) Run(_ context.Context, command string, _ time.Duration) (shell.Result, error) {
	f.mu.Lock()
	f.commands = append(f.commands, command)
	f.mu.Unlock()
	for sub, out := range f.responses {
		if strings.Contains(command, sub) {
			return shell.Result{Stdout: out}, nil
		}
	}
	return shell.Result{Stdout: "ok"}, nil
}

func (f *fakeRunner) lastCommand() string {
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.commands) == 0 {
		return ""
	}
	return f.commands[len(f.commands)-1]
}

func TestOrchestratorRegistersCleanly(t *testing.T) {
	t.Parallel()

	r := tools.NewRegistry(nil)
	if err := r.RegisterDomain(NewOrchestrator(&fakeRunner{})); err != nil {
		t.Fatal(err)
	}
}

func TestDestructiveIntentsAreRed(t *testing.T) {
	t.Parallel()

	o := NewOrchestrator(&fakeRunner{})
	for _, intent := range []string{"full-debloat", "remove-bloatware", "disable-telemetry", "uninstall-program", "batch-uninstall"} {
		tier, ok := o.IntentTier(intent)
		if !ok || tier != tools.TierRed {
			t.Errorf("intent %s tier = %s, ok = %v, want red", intent, tier, ok)
		}
	}

	tier, ok := o.IntentTier("list-programs")
	if !ok || tier != tools.TierGreen {
		t.Errorf("list-programs tier = %s, want green", tier)
	}
}

func TestRemoveBloatwareInvokesScript(t *testing.T) {
	t.Parallel()

	run := &fakeRunner{}
	o := NewOrchestrator(run)

	res := o.Dispatch(context.Background(), "remove-bloatware", nil, map[string]bool{"win11debloat": true})
	if !res.Success || res.ToolID != "win11debloat" {
		t.Fatalf("result = %+v", res)
	}
	cmd := run.lastCommand()
	if !strings.Contains(cmd, "Win11Debloat.ps1") || !strings.Contains(cmd, "-Silent -RemoveApps") {
		t.Fatalf("command = %q", cmd)
	}
	if strings.Contains(cmd, "-DisableTelemetry") {
		t.Fatalf("apps-only run touched telemetry settings: %q", cmd)
	}
}

func TestDisableTelemetryPrefersWin11Debloat(t *testing.T) {
	t.Parallel()

	run := &fakeRunner{}
	o := NewOrchestrator(run)

	res := o.Dispatch(context.Background(), "disable-telemetry", nil, map[string]bool{"win11debloat": true, "winutil": true})
	if !res.Success || res.ToolID != "win11debloat" {
		t.Fatalf("result = %+v", res)
	}

	// Only the registry tweaks path remains when the script is absent.
	res = o.Dispatch(context.Background(), "disable-telemetry", nil, map[string]bool{"winutil": true})
	if !res.Success || res.ToolID != "winutil" {
		t.Fatalf("fallback result = %+v", res)
	}
	if cmd := run.lastCommand(); !strings.Contains(cmd, "AllowTelemetry") {
		t.Fatalf("command = %q", cmd)
	}
}

func TestBatchUninstallQuotesNames(t *testing.T) {
	t.Parallel()

	run := &fakeRunner{}
	o := NewOrchestrator(run)

	res := o.Dispatch(context.Background(), "batch-uninstall", map[string]string{"names": "McAfee, Candy Crush"}, map[string]bool{"bcuninstaller": true})
	if !res.Success {
		t.Fatalf("result = %+v", res)
	}
	cmd := run.lastCommand()
	if !strings.Contains(cmd, `"McAfee" "Candy Crush"`) || !strings.Contains(cmd, "/quiet") {
		t.Fatalf("command = %q", cmd)
	}
}

func TestWin11DebloatDetectChecksKnownPaths(t *testing.T) {
	t.Parallel()

	run := &fakeRunner{responses: map[string]string{"Win11Debloat.ps1": "found"}}
	status, err := newWin11DebloatWrapper(run).Detect(context.Background())
	if err != nil || !status.Installed {
		t.Fatalf("status = %+v, err = %v", status, err)
	}
	if status.Path == "" {
		t.Fatal("detected install has no path")
	}

	missing := &fakeRunner{responses: map[string]string{"Win11Debloat.ps1": ""}}
	status, err = newWin11DebloatWrapper(missing).Detect(context.Background())
	if err != nil || status.Installed {
		t.Fatalf("absent status = %+v, err = %v", status, err)
	}
}

func TestBCUDetectViaWinget(t *testing.T) {
	t.Parallel()

	run := &fakeRunner{responses: map[string]string{"winget list": "Klocman.BulkCrapUninstaller 5.7"}}
	status, err := newBCUWrapper(run).Detect(context.Background())
	if err != nil || !status.Installed {
		t.Fatalf("status = %+v, err = %v", status, err)
	}
}
