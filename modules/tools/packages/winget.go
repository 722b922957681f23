package packages

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/onefuture/futurebuddy/internal/shell"
	"github.com/onefuture/futurebuddy/internal/tools"
)

// wingetWrapper drives the Windows Package Manager.
type wingetWrapper struct {
	run shell.Runner
}

func newWingetWrapper(run shell.Runner) *wingetWrapper {
	return &wingetWrapper{run: run}
}

func (w *wingetWrapper) ID() string   { return "winget" }
func (w *wingetWrapper) Name() string { return "winget" }
func (w *wingetWrapper) Description() string {
	return "Windows Package Manager (built-in). Install, update, and manage software."
}

func (w *wingetWrapper) Detect(ctx context.Context) (tools.Status, error) {
	res, err := w.run.Run(ctx, "winget --version", 10*time.Second)
	if err != nil {
		return tools.Status{}, nil
	}
	return tools.Status{Installed: true, Version: strings.TrimSpace(res.Stdout)}, nil
}

func (w *wingetWrapper) Capabilities() []tools.Capability {
	return []tools.Capability{
		{
			ID:          "winget-search",
			Name:        "Search packages",
			Description: "Search for available packages",
			Tier:        tools.TierGreen,
			Params: []tools.Param{
				{Name: "query", Description: "Package name or keyword", Required: true},
			},
			Timeout: 30 * time.Second,
			Run: func(ctx context.Context, params map[string]string) (string, error) {
				return w.exec(ctx, fmt.Sprintf(`winget search "%s" --accept-source-agreements`, params["query"]), 30*time.Second)
			},
		},
		{
			ID:          "winget-list",
			Name:        "List installed",
			Description: "List all installed packages",
			Tier:        tools.TierGreen,
			Timeout:     60 * time.Second,
			Run: func(ctx context.Context, _ map[string]string) (string, error) {
				return w.exec(ctx, "winget list --accept-source-agreements", 60*time.Second)
			},
		},
		{
			ID:          "winget-install",
			Name:        "Install package",
			Description: "Install a package by ID",
			Tier:        tools.TierYellow,
			Params: []tools.Param{
				{Name: "id", Description: "Package ID (e.g. Mozilla.Firefox)", Required: true},
			},
			Timeout: 5 * time.Minute,
			Run: func(ctx context.Context, params map[string]string) (string, error) {
				return w.exec(ctx, fmt.Sprintf(`winget install "%s" --accept-package-agreements --accept-source-agreements`, params["id"]), 5*time.Minute)
			},
		},
		{
			ID:          "winget-upgrade",
			Name:        "Upgrade package",
			Description: "Upgrade a specific package or all packages",
			Tier:        tools.TierYellow,
			Params: []tools.Param{
				{Name: "id", Description: "Package ID, or 'all' for everything", Default: "all"},
			},
			Timeout: 5 * time.Minute,
			Run: func(ctx context.Context, params map[string]string) (string, error) {
				id := params["id"]
				if id == "" || id == "all" {
					return w.exec(ctx, "winget upgrade --all --accept-package-agreements --accept-source-agreements", 5*time.Minute)
				}
				return w.exec(ctx, fmt.Sprintf(`winget upgrade "%s" --accept-package-agreements --accept-source-agreements`, id), 5*time.Minute)
			},
		},
		{
			ID:          "winget-uninstall",
			Name:        "Uninstall package",
			Description: "Remove an installed package",
			Tier:        tools.TierRed,
			Params: []tools.Param{
				{Name: "id", Description: "Package ID to remove", Required: true},
			},
			Timeout: 2 * time.Minute,
			Run: func(ctx context.Context, params map[string]string) (string, error) {
				return w.exec(ctx, fmt.Sprintf(`winget uninstall "%s"`, params["id"]), 2*time.Minute)
			},
		},
	}
}

func (w *wingetWrapper) exec(ctx context.Context, command string, timeout time.Duration) (string, error) {
	res, err := w.run.Run(ctx, command, timeout)
	if err != nil {
		return "", err
	}
	return res.Stdout, nil
}
