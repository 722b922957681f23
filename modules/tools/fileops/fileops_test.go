package fileops

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

func TestBuiltinOrganizerAlwaysInstalled(t *testing.T) {
	t.Parallel()

	w := newOrganizeWrapper()
	status, err := w.Detect(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if !status.Installed {
		t.Error("built-in organizer must always report installed")
	}
}

func TestOrganizePreviewIsGreenExecuteIsYellow(t *testing.T) {
	t.Parallel()

	o := NewOrchestrator(&fakeRunner{})

	tier, ok := o.IntentTier("organize-preview")
	if !ok || tier != tools.TierGreen {
		t.Errorf("organize-preview tier = %s, want green", tier)
	}
	tier, ok = o.IntentTier("organize")
	if !ok || tier != tools.TierYellow {
		t.Errorf("organize tier = %s, want yellow", tier)
	}
}

func TestOrganizePreviewLeavesFilesInPlace(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	writeFiles(t, dir, "report.pdf", "photo.jpg", "mystery.xyz")

	o := NewOrchestrator(&fakeRunner{})
	res := o.Dispatch(context.Background(), "organize-preview", map[string]string{"path": dir}, map[string]bool{"organize-tool": true})
	if !res.Success || res.ToolID != "organize-tool" {
		t.Fatalf("result = %+v", res)
	}
	if !strings.Contains(res.Output, "Would move: 2 files") {
		t.Errorf("output = %q", res.Output)
	}
	if !strings.Contains(res.Output, "Would skip: 1 files") {
		t.Errorf("output = %q", res.Output)
	}

	// Nothing moved.
	assertExists(t, dir, "report.pdf")
	assertExists(t, dir, "photo.jpg")
}

func TestOrganizeMovesByExtension(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	writeFiles(t, dir, "report.pdf", "photo.jpg", "song.mp3", "mystery.xyz")

	o := NewOrchestrator(&fakeRunner{})
	res := o.Dispatch(context.Background(), "organize", map[string]string{"path": dir}, map[string]bool{"organize-tool": true})
	if !res.Success {
		t.Fatalf("result = %+v", res)
	}

	assertExists(t, dir, "Documents/report.pdf")
	assertExists(t, dir, "Images/photo.jpg")
	assertExists(t, dir, "Audio/song.mp3")
	// Unknown extension stays put.
	assertExists(t, dir, "mystery.xyz")
}

func TestOrganizeMissingPathFails(t *testing.T) {
	t.Parallel()

	o := NewOrchestrator(&fakeRunner{})
	res := o.Dispatch(context.Background(), "organize", nil, map[string]bool{"organize-tool": true})
	if res.Success {
		t.Fatal("organize without a path should fail")
	}
	if !strings.Contains(res.Error, "path is required") {
		t.Errorf("error = %q", res.Error)
	}
}

func TestAIOrganizePrefersAifiles(t *testing.T) {
	t.Parallel()

	run := &fakeRunner{}
	o := NewOrchestrator(run)

	installed := map[string]bool{"organize-tool": true, "aifiles": true}
	res := o.Dispatch(context.Background(), "ai-organize", map[string]string{"path": `C:\Downloads`}, installed)
	if !res.Success || res.ToolID != "aifiles" {
		t.Fatalf("result = %+v", res)
	}
	if cmd := run.lastCommand(); !strings.Contains(cmd, `aifiles organize "C:\Downloads"`) {
		t.Errorf("command = %q", cmd)
	}
}

func TestAIOrganizeFallsBackToBuiltin(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	writeFiles(t, dir, "notes.txt")

	o := NewOrchestrator(&fakeRunner{})
	res := o.Dispatch(context.Background(), "ai-organize", map[string]string{"path": dir}, map[string]bool{"organize-tool": true})
	if !res.Success || res.ToolID != "organize-tool" {
		t.Fatalf("result = %+v", res)
	}
	assertExists(t, dir, "Documents/notes.txt")
}

func TestWatchPassesFilter(t *testing.T) {
	t.Parallel()

	run := &fakeRunner{}
	o := NewOrchestrator(run)

	params := map[string]string{"path": `C:\src`, "command": "go build ./...", "filter": "*.go"}
	res := o.Dispatch(context.Background(), "watch", params, map[string]bool{"watchexec": true})
	if !res.Success {
		t.Fatalf("result = %+v", res)
	}
	cmd := run.lastCommand()
	if !strings.Contains(cmd, `-w "C:\src"`) || !strings.Contains(cmd, `-e "*.go"`) {
		t.Errorf("command = %q", cmd)
	}
	if !strings.HasSuffix(cmd, "-- go build ./...") {
		t.Errorf("command = %q", cmd)
	}
}

func TestTagFilesWritesSidecars(t *testing.T) {
	t.Parallel()

	run := &fakeRunner{}
	o := NewOrchestrator(run)

	params := map[string]string{"path": `C:\Photos`, "tag": "vacation"}
	res := o.Dispatch(context.Background(), "tag-files", params, map[string]bool{"tagspaces": true})
	if !res.Success || res.ToolID != "tagspaces" {
		t.Fatalf("result = %+v", res)
	}
	cmd := run.lastCommand()
	if !strings.Contains(cmd, "@{tags=@('vacation')}") {
		t.Errorf("command = %q", cmd)
	}
}

func TestAifilesDetectPipFallback(t *testing.T) {
	t.Parallel()

	run := &fakeRunner{
		failing:   map[string]bool{"aifiles --version": true},
		responses: map[string]string{"pip show": "Name: aifiles\nVersion: 0.3.1\nSummary: AI organizer"},
	}
	w := newAIFilesWrapper(run)
	status, err := w.Detect(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if !status.Installed || status.Version != "0.3.1" {
		t.Errorf("status = %+v", status)
	}
}

func TestWatchexecDetectParsesVersion(t *testing.T) {
	t.Parallel()

	run := &fakeRunner{responses: map[string]string{"watchexec --version": "watchexec 2.1.2"}}
	w := newWatchexecWrapper(run)
	status, err := w.Detect(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if !status.Installed || status.Version != "2.1.2" {
		t.Errorf("status = %+v", status)
	}
}
