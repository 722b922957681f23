package drivers

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/onefuture/futurebuddy/internal/shell"
	"github.com/onefuture/futurebuddy/internal/tools"
)

// pswuWrapper drives the PSWindowsUpdate PowerShell module for querying and
// installing updates through Windows Update.
type pswuWrapper struct {
	run shell.Runner
}

func newPSWindowsUpdateWrapper(run shell.Runner) *pswuWrapper {
	return &pswuWrapper{run: run}
}

func (w *pswuWrapper) ID() string   { return "pswindowsupdate" }
func (w *pswuWrapper) Name() string { return "PSWindowsUpdate" }
func (w *pswuWrapper) Description() string {
	return "PowerShell module for managing Windows Update. Check, download, and install driver updates via Windows Update."
}

func (w *pswuWrapper) Detect(ctx context.Context) (tools.Status, error) {
	res, err := w.run.Run(ctx, shell.PowerShell("Get-Module -ListAvailable PSWindowsUpdate | Select-Object -ExpandProperty Version | Select-Object -First 1"), 15*time.Second)
	if err != nil || res.Stdout == "" {
		return tools.Status{}, nil
	}
	return tools.Status{Installed: true, Version: res.Stdout}, nil
}

func (w *pswuWrapper) Capabilities() []tools.Capability {
	return []tools.Capability{
		{
			ID:          "pswu-check-drivers",
			Name:        "Check driver updates",
			Description: "Check Windows Update for available driver updates",
			Tier:        tools.TierGreen,
			Timeout:     2 * time.Minute,
			Run: func(ctx context.Context, _ map[string]string) (string, error) {
				return w.ps(ctx, "Import-Module PSWindowsUpdate; Get-WindowsUpdate -Category Drivers -Verbose 4>&1 | Out-String",
					2*time.Minute, "No driver updates available.")
			},
		},
		{
			ID:          "pswu-check-all",
			Name:        "Check all updates",
			Description: "Check Windows Update for all available updates",
			Tier:        tools.TierGreen,
			Timeout:     2 * time.Minute,
			Run: func(ctx context.Context, _ map[string]string) (string, error) {
				return w.ps(ctx, "Import-Module PSWindowsUpdate; Get-WindowsUpdate | Out-String",
					2*time.Minute, "No updates available.")
			},
		},
		{
			ID:          "pswu-install-drivers",
			Name:        "Install driver updates",
			Description: "Download and install all available driver updates from Windows Update",
			Tier:        tools.TierYellow,
			Timeout:     10 * time.Minute,
			Run: func(ctx context.Context, _ map[string]string) (string, error) {
				return w.ps(ctx, "Import-Module PSWindowsUpdate; Install-WindowsUpdate -Category Drivers -AcceptAll -AutoReboot:$false | Out-String",
					10*time.Minute, "")
			},
		},
		{
			ID:          "pswu-install-all",
			Name:        "Install all updates",
			Description: "Download and install all available Windows updates",
			Tier:        tools.TierYellow,
			Timeout:     10 * time.Minute,
			Run: func(ctx context.Context, _ map[string]string) (string, error) {
				return w.ps(ctx, "Import-Module PSWindowsUpdate; Install-WindowsUpdate -AcceptAll -AutoReboot:$false | Out-String",
					10*time.Minute, "")
			},
		},
		{
			ID:          "pswu-history",
			Name:        "Update history",
			Description: "Show recent Windows Update history",
			Tier:        tools.TierGreen,
			Params: []tools.Param{
				{Name: "count", Description: "Number of entries to show", Default: "20"},
			},
			Timeout: 30 * time.Second,
			Run: func(ctx context.Context, params map[string]string) (string, error) {
				count, err := strconv.Atoi(params["count"])
				if err != nil || count <= 0 {
					count = 20
				}
				return w.ps(ctx, fmt.Sprintf(
					"Import-Module PSWindowsUpdate; Get-WUHistory -MaxDate (Get-Date) -Last %d | Format-Table -AutoSize | Out-String -Width 200", count),
					30*time.Second, "")
			},
		},
	}
}

// ps runs a PowerShell command and substitutes fallback when the output is
// empty, since PSWindowsUpdate cmdlets print nothing when there is no work.
func (w *pswuWrapper) ps(ctx context.Context, command string, timeout time.Duration, fallback string) (string, error) {
	res, err := w.run.Run(ctx, shell.PowerShell(command), timeout)
	if err != nil {
		return "", err
	}
	if res.Stdout == "" && fallback != "" {
		return fallback, nil
	}
	return res.Stdout, nil
}
