package drivers

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/onefuture/futurebuddy/internal/shell"
	"github.com/onefuture/futurebuddy/internal/tools"
)

// raprWrapper drives Driver Store Explorer (RAPR) for driver store cleanup.
type raprWrapper struct {
	run shell.Runner
}

func newRaprWrapper(run shell.Runner) *raprWrapper {
	return &raprWrapper{run: run}
}

func (w *raprWrapper) ID() string   { return "rapr" }
func (w *raprWrapper) Name() string { return "Driver Store Explorer (RAPR)" }
func (w *raprWrapper) Description() string {
	return "GUI and CLI tool for viewing and cleaning the Windows driver store. Safely remove old/duplicate driver packages."
}

func (w *raprWrapper) Detect(ctx context.Context) (tools.Status, error) {
	res, err := w.run.Run(ctx, "winget list --id lostindark.DriverStoreExplorer --accept-source-agreements", 15*time.Second)
	if err == nil && strings.Contains(res.Stdout, "lostindark") {
		return tools.Status{Installed: true}, nil
	}

	paths := []string{
		`C:\tools\rapr\Rapr.exe`,
		`C:\tools\DriverStoreExplorer\Rapr.exe`,
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

func (w *raprWrapper) Capabilities() []tools.Capability {
	return []tools.Capability{
		{
			ID:          "rapr-list-old",
			Name:        "List old driver packages",
			Description: "List driver store packages that have newer versions installed (safe to clean)",
			Tier:        tools.TierGreen,
			Timeout:     30 * time.Second,
			Run: func(ctx context.Context, _ map[string]string) (string, error) {
				// RAPR has no enumeration CLI; pnputil gives the same view.
				res, err := w.run.Run(ctx, shell.PowerShell("pnputil /enum-drivers | Out-String"), 30*time.Second)
				if err != nil {
					return "", err
				}
				return res.Stdout, nil
			},
		},
		{
			ID:          "rapr-launch",
			Name:        "Launch Driver Store Explorer",
			Description: "Open RAPR GUI for manual driver store management",
			Tier:        tools.TierYellow,
			Timeout:     10 * time.Second,
			Run: func(ctx context.Context, _ map[string]string) (string, error) {
				if _, err := w.run.Run(ctx, `start "" "Rapr.exe"`, 5*time.Second); err != nil {
					return "", err
				}
				return "Driver Store Explorer launched. Use the GUI to review and clean old driver packages.", nil
			},
		},
		{
			ID:          "rapr-cleanup",
			Name:        "Clean old driver packages",
			Description: "Remove old driver packages from the driver store (keeps newest version of each)",
			Tier:        tools.TierRed,
			Timeout:     10 * time.Second,
			Run: func(ctx context.Context, _ map[string]string) (string, error) {
				// No safe batch-cleanup CLI; hand control to the operator.
				if _, err := w.run.Run(ctx, `start "" "Rapr.exe"`, 5*time.Second); err != nil {
					return "", err
				}
				return "Driver Store Explorer launched. Select old driver packages and click 'Delete Package' to clean them. Check 'Force Deletion' only if standard removal fails.", nil
			},
		},
	}
}
