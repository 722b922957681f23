package debloat

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/onefuture/futurebuddy/internal/shell"
	"github.com/onefuture/futurebuddy/internal/tools"
)

// bcuWrapper drives Bulk Crap Uninstaller for batch program removal.
type bcuWrapper struct {
	run shell.Runner
}

func newBCUWrapper(run shell.Runner) *bcuWrapper {
	return &bcuWrapper{run: run}
}

func (w *bcuWrapper) ID() string   { return "bcuninstaller" }
func (w *bcuWrapper) Name() string { return "Bulk Crap Uninstaller" }
func (w *bcuWrapper) Description() string {
	return "Advanced program removal tool. Detects leftovers, supports silent batch uninstall, and handles stubborn programs."
}

// Detect checks the winget registration first, then the common install paths.
func (w *bcuWrapper) Detect(ctx context.Context) (tools.Status, error) {
	res, err := w.run.Run(ctx, "winget list --id Klocman.BulkCrapUninstaller --accept-source-agreements", 15*time.Second)
	if err == nil && strings.Contains(res.Stdout, "Klocman") {
		return tools.Status{Installed: true}, nil
	}

	paths := []string{
		`C:\Program Files\BCUninstaller\BCUninstaller.exe`,
		`%LOCALAPPDATA%\Programs\BCUninstaller\BCUninstaller.exe`,
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

func (w *bcuWrapper) Capabilities() []tools.Capability {
	return []tools.Capability{
		{
			ID:          "bcu-list",
			Name:        "List all programs",
			Description: "List all installed programs detected by BCUninstaller",
			Tier:        tools.TierGreen,
			Timeout:     time.Minute,
			Run: func(ctx context.Context, _ map[string]string) (string, error) {
				return w.listPrograms(ctx)
			},
		},
		{
			ID:          "bcu-launch",
			Name:        "Launch BCUninstaller",
			Description: "Open the BCUninstaller GUI for manual batch uninstall",
			Tier:        tools.TierYellow,
			Timeout:     5 * time.Second,
			Run: func(ctx context.Context, _ map[string]string) (string, error) {
				if _, err := w.run.Run(ctx, `start "" "BCUninstaller.exe"`, 5*time.Second); err != nil {
					return "", err
				}
				return "Bulk Crap Uninstaller launched. Select programs to remove and use batch uninstall.", nil
			},
		},
		{
			ID:          "bcu-uninstall",
			Name:        "Uninstall program",
			Description: "Uninstall a specific program via BCUninstaller CLI",
			Tier:        tools.TierRed,
			Params: []tools.Param{
				{Name: "name", Description: "Program name (or partial match)", Required: true},
			},
			Timeout: 2 * time.Minute,
			Run: func(ctx context.Context, params map[string]string) (string, error) {
				res, err := w.run.Run(ctx, fmt.Sprintf(`BCUninstaller.exe /uninstall "%s"`, params["name"]), 2*time.Minute)
				if err != nil {
					return "", err
				}
				return res.Stdout, nil
			},
		},
		{
			ID:          "bcu-uninstall-quiet",
			Name:        "Silent batch uninstall",
			Description: "Silently uninstall one or more programs by name",
			Tier:        tools.TierRed,
			Params: []tools.Param{
				{Name: "names", Description: "Comma-separated program names to uninstall", Required: true},
			},
			Timeout: 5 * time.Minute,
			Run: func(ctx context.Context, params map[string]string) (string, error) {
				var quoted []string
				for _, n := range strings.Split(params["names"], ",") {
					quoted = append(quoted, fmt.Sprintf("%q", strings.TrimSpace(n)))
				}
				res, err := w.run.Run(ctx, fmt.Sprintf("BCUninstaller.exe /uninstall %s /quiet", strings.Join(quoted, " ")), 5*time.Minute)
				if err != nil {
					return "", err
				}
				return res.Stdout, nil
			},
		},
	}
}

// listPrograms tries the BCU export first and falls back to reading the
// uninstall registry keys through PowerShell when the CLI is unavailable.
func (w *bcuWrapper) listPrograms(ctx context.Context) (string, error) {
	res, err := w.run.Run(ctx, "BCUninstaller.exe /export list.txt && type list.txt", time.Minute)
	if err == nil {
		return res.Stdout, nil
	}

	fallback := shell.PowerShell(`Get-ItemProperty HKLM:\Software\Microsoft\Windows\CurrentVersion\Uninstall\* | Select-Object DisplayName, DisplayVersion, Publisher | Sort-Object DisplayName | Format-Table -AutoSize | Out-String -Width 200`)
	res, err = w.run.Run(ctx, fallback, 30*time.Second)
	if err != nil {
		return "", err
	}
	return res.Stdout, nil
}
