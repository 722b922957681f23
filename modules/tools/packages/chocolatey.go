package packages

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/onefuture/futurebuddy/internal/shell"
	"github.com/onefuture/futurebuddy/internal/tools"
)

// chocoWrapper drives the Chocolatey package manager.
type chocoWrapper struct {
	run shell.Runner
}

func newChocoWrapper(run shell.Runner) *chocoWrapper {
	return &chocoWrapper{run: run}
}

func (c *chocoWrapper) ID() string   { return "chocolatey" }
func (c *chocoWrapper) Name() string { return "Chocolatey" }
func (c *chocoWrapper) Description() string {
	return "Enterprise-grade Windows package manager. Requires admin for most operations."
}

func (c *chocoWrapper) Detect(ctx context.Context) (tools.Status, error) {
	res, err := c.run.Run(ctx, "choco --version", 10*time.Second)
	if err != nil {
		return tools.Status{}, nil
	}
	return tools.Status{Installed: true, Version: strings.TrimSpace(res.Stdout)}, nil
}

func (c *chocoWrapper) Capabilities() []tools.Capability {
	return []tools.Capability{
		{
			ID:          "choco-search",
			Name:        "Search packages",
			Description: "Search Chocolatey community repository",
			Tier:        tools.TierGreen,
			Params: []tools.Param{
				{Name: "query", Description: "Package name or keyword", Required: true},
			},
			Timeout: 30 * time.Second,
			Run: func(ctx context.Context, params map[string]string) (string, error) {
				return c.exec(ctx, fmt.Sprintf(`choco search "%s" --limit-output`, params["query"]), 30*time.Second)
			},
		},
		{
			ID:          "choco-list",
			Name:        "List installed",
			Description: "List all Chocolatey-installed packages",
			Tier:        tools.TierGreen,
			Timeout:     30 * time.Second,
			Run: func(ctx context.Context, _ map[string]string) (string, error) {
				return c.exec(ctx, "choco list --limit-output", 30*time.Second)
			},
		},
		{
			ID:          "choco-install",
			Name:        "Install package",
			Description: "Install a package via Chocolatey (requires admin)",
			Tier:        tools.TierYellow,
			Params: []tools.Param{
				{Name: "name", Description: "Package name (e.g. firefox)", Required: true},
			},
			Timeout: 5 * time.Minute,
			Run: func(ctx context.Context, params map[string]string) (string, error) {
				return c.exec(ctx, fmt.Sprintf(`choco install "%s" --yes`, params["name"]), 5*time.Minute)
			},
		},
		{
			ID:          "choco-upgrade",
			Name:        "Upgrade package",
			Description: "Upgrade a specific package or all packages",
			Tier:        tools.TierYellow,
			Params: []tools.Param{
				{Name: "name", Description: "Package name, or 'all' for everything", Default: "all"},
			},
			Timeout: 5 * time.Minute,
			Run: func(ctx context.Context, params map[string]string) (string, error) {
				name := params["name"]
				if name == "" {
					name = "all"
				}
				return c.exec(ctx, fmt.Sprintf(`choco upgrade "%s" --yes`, name), 5*time.Minute)
			},
		},
		{
			ID:          "choco-uninstall",
			Name:        "Uninstall package",
			Description: "Remove a Chocolatey-installed package",
			Tier:        tools.TierRed,
			Params: []tools.Param{
				{Name: "name", Description: "Package name to remove", Required: true},
			},
			Timeout: 2 * time.Minute,
			Run: func(ctx context.Context, params map[string]string) (string, error) {
				return c.exec(ctx, fmt.Sprintf(`choco uninstall "%s" --yes`, params["name"]), 2*time.Minute)
			},
		},
	}
}

func (c *chocoWrapper) exec(ctx context.Context, command string, timeout time.Duration) (string, error) {
	res, err := c.run.Run(ctx, command, timeout)
	if err != nil {
		return "", err
	}
	return res.Stdout, nil
}
