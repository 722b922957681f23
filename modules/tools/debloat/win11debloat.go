package debloat

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/onefuture/futurebuddy/internal/shell"
	"github.com/onefuture/futurebuddy/internal/tools"
)

// win11debloatScript is where the install command clones the repo.
const win11debloatScript = `C:\tools\Win11Debloat\Win11Debloat.ps1`

// win11debloatWrapper drives Raphire's Win11Debloat PowerShell script.
type win11debloatWrapper struct {
	run shell.Runner
}

func newWin11DebloatWrapper(run shell.Runner) *win11debloatWrapper {
	return &win11debloatWrapper{run: run}
}

func (w *win11debloatWrapper) ID() string   { return "win11debloat" }
func (w *win11debloatWrapper) Name() string { return "Win11Debloat" }
func (w *win11debloatWrapper) Description() string {
	return "Focused PowerShell debloater for Windows 11. Removes bloatware apps, disables telemetry, and cleans up the Start menu."
}

// Detect checks the known clone locations for the script.
func (w *win11debloatWrapper) Detect(ctx context.Context) (tools.Status, error) {
	paths := []string{
		win11debloatScript,
		`%USERPROFILE%\Win11Debloat\Win11Debloat.ps1`,
	}
	for _, path := range paths {
		res, err := w.run.Run(ctx, fmt.Sprintf(`cmd /c if exist "%s" echo found`, path), 5*time.Second)
		if err != nil {
			continue
		}
		if strings.Contains(res.Stdout, "found") {
			return tools.Status{Installed: true, Path: path}, nil
		}
	}
	return tools.Status{}, nil
}

func (w *win11debloatWrapper) Capabilities() []tools.Capability {
	return []tools.Capability{
		{
			ID:          "win11debloat-default",
			Name:        "Run default debloat",
			Description: "Remove default bloatware apps and apply recommended settings",
			Tier:        tools.TierRed,
			Timeout:     5 * time.Minute,
			Run: func(ctx context.Context, _ map[string]string) (string, error) {
				return w.script(ctx, "-Silent -RemoveApps -DisableTelemetry -DisableBing -DisableSuggestions -DisableLockscreenTips -RevertContextMenu", 5*time.Minute)
			},
		},
		{
			ID:          "win11debloat-apps-only",
			Name:        "Remove bloatware apps only",
			Description: "Remove pre-installed bloatware apps without changing system settings",
			Tier:        tools.TierRed,
			Timeout:     5 * time.Minute,
			Run: func(ctx context.Context, _ map[string]string) (string, error) {
				return w.script(ctx, "-Silent -RemoveApps", 5*time.Minute)
			},
		},
		{
			ID:          "win11debloat-disable-telemetry",
			Name:        "Disable telemetry",
			Description: "Disable Windows telemetry and data collection",
			Tier:        tools.TierRed,
			Timeout:     2 * time.Minute,
			Run: func(ctx context.Context, _ map[string]string) (string, error) {
				return w.script(ctx, "-Silent -DisableTelemetry", 2*time.Minute)
			},
		},
		{
			ID:          "win11debloat-disable-bing",
			Name:        "Disable Bing in Start menu",
			Description: "Remove Bing web search results from the Windows Start menu",
			Tier:        tools.TierYellow,
			Timeout:     time.Minute,
			Run: func(ctx context.Context, _ map[string]string) (string, error) {
				return w.script(ctx, "-Silent -DisableBing", time.Minute)
			},
		},
		{
			ID:          "win11debloat-clean-taskbar",
			Name:        "Clean up taskbar",
			Description: "Remove Widgets, Chat, and Task View from the taskbar",
			Tier:        tools.TierYellow,
			Timeout:     time.Minute,
			Run: func(ctx context.Context, _ map[string]string) (string, error) {
				return w.script(ctx, "-Silent -HideWidgets -HideChat -HideTaskview", time.Minute)
			},
		},
	}
}

// script invokes the debloat script with the given switches.
func (w *win11debloatWrapper) script(ctx context.Context, args string, timeout time.Duration) (string, error) {
	command := shell.PowerShell(fmt.Sprintf("& '%s' %s", win11debloatScript, args))
	res, err := w.run.Run(ctx, command, timeout)
	if err != nil {
		return "", err
	}
	return res.Stdout, nil
}
