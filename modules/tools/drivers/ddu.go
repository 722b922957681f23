package drivers

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/onefuture/futurebuddy/internal/shell"
	"github.com/onefuture/futurebuddy/internal/tools"
)

// dduWrapper drives Display Driver Uninstaller. DDU is fundamentally a GUI
// application with no scriptable removal, so every capability launches it
// with operator instructions.
type dduWrapper struct {
	run shell.Runner
}

func newDDUWrapper(run shell.Runner) *dduWrapper {
	return &dduWrapper{run: run}
}

func (w *dduWrapper) ID() string   { return "ddu" }
func (w *dduWrapper) Name() string { return "Display Driver Uninstaller" }
func (w *dduWrapper) Description() string {
	return "Completely removes GPU drivers (NVIDIA, AMD, Intel) for clean reinstallation. Best used in Safe Mode."
}

func (w *dduWrapper) Detect(ctx context.Context) (tools.Status, error) {
	paths := []string{
		`C:\tools\DDU\Display Driver Uninstaller.exe`,
		`C:\tools\ddu\DDU.exe`,
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

	res, err := w.run.Run(ctx, "winget list --id Wagnardsoft.DisplayDriverUninstaller --accept-source-agreements", 15*time.Second)
	if err == nil && strings.Contains(res.Stdout, "Wagnardsoft") {
		return tools.Status{Installed: true}, nil
	}
	return tools.Status{}, nil
}

func (w *dduWrapper) Capabilities() []tools.Capability {
	return []tools.Capability{
		{
			ID:          "ddu-clean",
			Name:        "Clean uninstall GPU drivers",
			Description: "Completely remove GPU drivers for the selected vendor. Recommend running in Safe Mode for best results.",
			Tier:        tools.TierRed,
			Params: []tools.Param{
				{Name: "gpu", Description: "GPU vendor: nvidia, amd, or intel", Default: "nvidia"},
			},
			Timeout: 10 * time.Second,
			Run: func(ctx context.Context, params map[string]string) (string, error) {
				gpu := params["gpu"]
				switch gpu {
				case "amd", "intel":
				default:
					gpu = "nvidia"
				}
				if _, err := w.run.Run(ctx, `start "" "Display Driver Uninstaller.exe"`, 5*time.Second); err != nil {
					return "", fmt.Errorf("could not launch DDU: %w. You may need to navigate to the DDU folder and run it manually", err)
				}
				return fmt.Sprintf("DDU launched. Please select %q in the dropdown and click \"Clean and restart\" for a full driver removal. For best results, run DDU in Safe Mode.", strings.ToUpper(gpu)), nil
			},
		},
		{
			ID:          "ddu-launch",
			Name:        "Launch DDU",
			Description: "Open Display Driver Uninstaller GUI for manual driver cleanup",
			Tier:        tools.TierYellow,
			Timeout:     10 * time.Second,
			Run: func(ctx context.Context, _ map[string]string) (string, error) {
				if _, err := w.run.Run(ctx, `start "" "Display Driver Uninstaller.exe"`, 5*time.Second); err != nil {
					return "", err
				}
				return "Display Driver Uninstaller launched.", nil
			},
		},
	}
}
