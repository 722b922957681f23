package drivers

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
	failing   map[string]bool
}

func (f *fakeRunner) Run(_ context.Context, command string, _ time.Duration) (shell.Result, error) {
	f.mu.Lock()
	f.commands = append(f.commands, command)
	f.mu.Unlock()
	for sub := range f.failing {
		if strings.Contains(command, sub) {
			return shell.Result{ExitCode: 1}, context.DeadlineExceeded
		}
	}
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

func TestIntentTiers(t *testing.T) {
	t.Parallel()

	o := NewOrchestrator(&fakeRunner{})
	tests := []struct {
		intent string
		want   tools.Tier
	}{
		{"list-drivers", tools.TierGreen},
		{"gpu-info", tools.TierGreen},
		{"check-updates", tools.TierGreen},
		{"install-updates", tools.TierYellow},
		{"export-driver", tools.TierYellow},
		{"delete-driver", tools.TierRed},
		{"clean-uninstall-gpu", tools.TierRed},
		{"driver-store-cleanup", tools.TierRed},
	}
	for _, tt := range tests {
		tier, ok := o.IntentTier(tt.intent)
		if !ok || tier != tt.want {
			t.Errorf("intent %s tier = %s, ok = %v, want %s", tt.intent, tier, ok, tt.want)
		}
	}
}

func TestDeleteDriverForcesRemoval(t *testing.T) {
	t.Parallel()

	run := &fakeRunner{}
	o := NewOrchestrator(run)

	res := o.Dispatch(context.Background(), "delete-driver", map[string]string{"inf": "oem12.inf"}, map[string]bool{"pnputil": true})
	if !res.Success || res.ToolID != "pnputil" {
		t.Fatalf("result = %+v", res)
	}
	if cmd := run.lastCommand(); cmd != "pnputil /delete-driver oem12.inf /force" {
		t.Errorf("command = %q", cmd)
	}
}

func TestCheckUpdatesPrefersPSWindowsUpdate(t *testing.T) {
	t.Parallel()

	run := &fakeRunner{responses: map[string]string{"Get-WindowsUpdate": "KB5031234 NVIDIA display driver"}}
	o := NewOrchestrator(run)

	installed := map[string]bool{"pswindowsupdate": true, "nvidia-downloader": true, "pnputil": true}
	res := o.Dispatch(context.Background(), "check-updates", nil, installed)
	if !res.Success || res.ToolID != "pswindowsupdate" {
		t.Fatalf("result = %+v", res)
	}
	if !strings.Contains(run.lastCommand(), "Get-WindowsUpdate -Category Drivers") {
		t.Errorf("command = %q", run.lastCommand())
	}

	// Without PSWindowsUpdate the intent falls back to nvidia-smi's winget check.
	res = o.Dispatch(context.Background(), "check-updates", nil, map[string]bool{"nvidia-downloader": true})
	if !res.Success || res.ToolID != "nvidia-downloader" {
		t.Fatalf("fallback result = %+v", res)
	}
}

func TestCheckDriverUpdatesEmptyOutputFallback(t *testing.T) {
	t.Parallel()

	run := &fakeRunner{responses: map[string]string{"Get-WindowsUpdate": ""}}
	o := NewOrchestrator(run)

	res := o.Dispatch(context.Background(), "check-updates", nil, map[string]bool{"pswindowsupdate": true})
	if !res.Success {
		t.Fatalf("result = %+v", res)
	}
	if res.Output != "No driver updates available." {
		t.Errorf("output = %q", res.Output)
	}
}

func TestCleanUninstallGPUVendorSelection(t *testing.T) {
	t.Parallel()

	o := NewOrchestrator(&fakeRunner{})

	res := o.Dispatch(context.Background(), "clean-uninstall-gpu", map[string]string{"gpu": "amd"}, map[string]bool{"ddu": true})
	if !res.Success || res.ToolID != "ddu" {
		t.Fatalf("result = %+v", res)
	}
	if !strings.Contains(res.Output, `"AMD"`) {
		t.Errorf("output = %q, want AMD instructions", res.Output)
	}

	// Unknown vendor defaults to NVIDIA.
	res = o.Dispatch(context.Background(), "clean-uninstall-gpu", map[string]string{"gpu": "voodoo"}, map[string]bool{"ddu": true})
	if !strings.Contains(res.Output, `"NVIDIA"`) {
		t.Errorf("output = %q, want NVIDIA instructions", res.Output)
	}
}

func TestUpdateHistoryCount(t *testing.T) {
	t.Parallel()

	run := &fakeRunner{}
	o := NewOrchestrator(run)

	res := o.Dispatch(context.Background(), "update-history", map[string]string{"count": "5"}, map[string]bool{"pswindowsupdate": true})
	if !res.Success {
		t.Fatalf("result = %+v", res)
	}
	if !strings.Contains(run.lastCommand(), "-Last 5") {
		t.Errorf("command = %q", run.lastCommand())
	}

	// Garbage count falls back to the default.
	o.Dispatch(context.Background(), "update-history", map[string]string{"count": "lots"}, map[string]bool{"pswindowsupdate": true})
	if !strings.Contains(run.lastCommand(), "-Last 20") {
		t.Errorf("command = %q", run.lastCommand())
	}
}

func TestPnpUtilDetect(t *testing.T) {
	t.Parallel()

	w := newPnpUtilWrapper(&fakeRunner{})
	status, err := w.Detect(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if !status.Installed || status.Path == "" {
		t.Errorf("status = %+v", status)
	}

	w = newPnpUtilWrapper(&fakeRunner{failing: map[string]bool{"pnputil": true}})
	status, err = w.Detect(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if status.Installed {
		t.Error("absent pnputil reported installed")
	}
}

func TestNvidiaDetectReportsDriverVersion(t *testing.T) {
	t.Parallel()

	run := &fakeRunner{responses: map[string]string{"nvidia-smi": "552.44"}}
	w := newNvidiaWrapper(run)
	status, err := w.Detect(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if !status.Installed || status.Version != "552.44" {
		t.Errorf("status = %+v", status)
	}
}

func TestSDIODetectChecksPathsThenWinget(t *testing.T) {
	t.Parallel()

	run := &fakeRunner{responses: map[string]string{
		"if exist": "",
		"winget list --id GlennDelahoy.SnappyDriverInstallerOrigin": "GlennDelahoy.SnappyDriverInstallerOrigin 1.12",
	}}
	w := newSDIOWrapper(run)
	status, err := w.Detect(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if !status.Installed {
		t.Errorf("status = %+v", status)
	}
}
