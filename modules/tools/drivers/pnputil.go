package drivers

import (
	"context"
	"fmt"
	"time"

	"github.com/onefuture/futurebuddy/internal/shell"
	"github.com/onefuture/futurebuddy/internal/tools"
)

// pnputilWrapper drives the built-in Windows driver store utility.
type pnputilWrapper struct {
	run shell.Runner
}

func newPnpUtilWrapper(run shell.Runner) *pnputilWrapper {
	return &pnputilWrapper{run: run}
}

func (w *pnputilWrapper) ID() string   { return "pnputil" }
func (w *pnputilWrapper) Name() string { return "pnputil" }
func (w *pnputilWrapper) Description() string {
	return "Built-in Windows driver utility. List, export, and manage driver packages in the driver store."
}

func (w *pnputilWrapper) Detect(ctx context.Context) (tools.Status, error) {
	if _, err := w.run.Run(ctx, "pnputil /?", 10*time.Second); err != nil {
		return tools.Status{}, nil
	}
	return tools.Status{Installed: true, Path: `C:\Windows\System32\pnputil.exe`}, nil
}

func (w *pnputilWrapper) Capabilities() []tools.Capability {
	return []tools.Capability{
		{
			ID:          "pnputil-list-drivers",
			Name:        "List installed drivers",
			Description: "List all third-party driver packages in the driver store",
			Tier:        tools.TierGreen,
			Timeout:     30 * time.Second,
			Run: func(ctx context.Context, _ map[string]string) (string, error) {
				return w.exec(ctx, "pnputil /enum-drivers", 30*time.Second)
			},
		},
		{
			ID:          "pnputil-list-devices",
			Name:        "List devices",
			Description: "List all connected PnP devices and their status",
			Tier:        tools.TierGreen,
			Timeout:     30 * time.Second,
			Run: func(ctx context.Context, _ map[string]string) (string, error) {
				return w.exec(ctx, "pnputil /enum-devices /connected", 30*time.Second)
			},
		},
		{
			ID:          "pnputil-driver-info",
			Name:        "Get driver info",
			Description: "Get details about a specific driver package",
			Tier:        tools.TierGreen,
			Params: []tools.Param{
				{Name: "inf", Description: "Published driver INF name (e.g. oem12.inf)", Required: true},
			},
			Timeout: 15 * time.Second,
			Run: func(ctx context.Context, params map[string]string) (string, error) {
				return w.exec(ctx, fmt.Sprintf("pnputil /enum-drivers /inf %s", params["inf"]), 15*time.Second)
			},
		},
		{
			ID:          "pnputil-export-driver",
			Name:        "Export driver",
			Description: "Export a driver package to a folder for backup",
			Tier:        tools.TierYellow,
			Params: []tools.Param{
				{Name: "inf", Description: "Published driver INF name (e.g. oem12.inf)", Required: true},
				{Name: "destination", Description: "Folder to export to", Required: true},
			},
			Timeout: 30 * time.Second,
			Run: func(ctx context.Context, params map[string]string) (string, error) {
				return w.exec(ctx, fmt.Sprintf(`pnputil /export-driver %s "%s"`, params["inf"], params["destination"]), 30*time.Second)
			},
		},
		{
			ID:          "pnputil-delete-driver",
			Name:        "Delete driver package",
			Description: "Remove a driver package from the driver store",
			Tier:        tools.TierRed,
			Params: []tools.Param{
				{Name: "inf", Description: "Published driver INF name (e.g. oem12.inf)", Required: true},
			},
			Timeout: 30 * time.Second,
			Run: func(ctx context.Context, params map[string]string) (string, error) {
				return w.exec(ctx, fmt.Sprintf("pnputil /delete-driver %s /force", params["inf"]), 30*time.Second)
			},
		},
	}
}

func (w *pnputilWrapper) exec(ctx context.Context, command string, timeout time.Duration) (string, error) {
	res, err := w.run.Run(ctx, command, timeout)
	if err != nil {
		return "", err
	}
	return res.Stdout, nil
}
