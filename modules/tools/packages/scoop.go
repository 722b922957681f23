package packages

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/onefuture/futurebuddy/internal/shell"
	"github.com/onefuture/futurebuddy/internal/tools"
)

// scoopWrapper drives the Scoop package manager.
type scoopWrapper struct {
	run shell.Runner
}

func newScoopWrapper(run shell.Runner) *scoopWrapper {
	return &scoopWrapper{run: run}
}

func (s *scoopWrapper) ID() string   { return "scoop" }
func (s *scoopWrapper) Name() string { return "Scoop" }
func (s *scoopWrapper) Description() string {
	return "Developer-friendly package manager. Installs to ~/scoop, no admin needed."
}

func (s *scoopWrapper) Detect(ctx context.Context) (tools.Status, error) {
	res, err := s.run.Run(ctx, "scoop --version", 10*time.Second)
	if err != nil {
		return tools.Status{}, nil
	}
	// Scoop prints multi-line version info; the first line carries the version.
	version, _, _ := strings.Cut(res.Stdout, "\n")
	return tools.Status{Installed: true, Version: strings.TrimSpace(version)}, nil
}

func (s *scoopWrapper) Capabilities() []tools.Capability {
	return []tools.Capability{
		{
			ID:          "scoop-search",
			Name:        "Search packages",
			Description: "Search Scoop buckets for packages",
			Tier:        tools.TierGreen,
			Params: []tools.Param{
				{Name: "query", Description: "Package name or keyword", Required: true},
			},
			Timeout: 30 * time.Second,
			Run: func(ctx context.Context, params map[string]string) (string, error) {
				return s.exec(ctx, fmt.Sprintf(`scoop search "%s"`, params["query"]), 30*time.Second)
			},
		},
		{
			ID:          "scoop-list",
			Name:        "List installed",
			Description: "List all Scoop-installed packages",
			Tier:        tools.TierGreen,
			Timeout:     30 * time.Second,
			Run: func(ctx context.Context, _ map[string]string) (string, error) {
				return s.exec(ctx, "scoop list", 30*time.Second)
			},
		},
		{
			ID:          "scoop-install",
			Name:        "Install package",
			Description: "Install a package via Scoop",
			Tier:        tools.TierYellow,
			Params: []tools.Param{
				{Name: "name", Description: "Package name (e.g. git, nodejs)", Required: true},
			},
			Timeout: 5 * time.Minute,
			Run: func(ctx context.Context, params map[string]string) (string, error) {
				return s.exec(ctx, fmt.Sprintf(`scoop install "%s"`, params["name"]), 5*time.Minute)
			},
		},
		{
			ID:          "scoop-update",
			Name:        "Update packages",
			Description: "Update a specific package or all packages",
			Tier:        tools.TierYellow,
			Params: []tools.Param{
				{Name: "name", Description: "Package name, or '*' for all", Default: "*"},
			},
			Timeout: 5 * time.Minute,
			Run: func(ctx context.Context, params map[string]string) (string, error) {
				name := params["name"]
				if name == "" || name == "*" {
					return s.exec(ctx, "scoop update *", 5*time.Minute)
				}
				return s.exec(ctx, fmt.Sprintf(`scoop update "%s"`, name), 5*time.Minute)
			},
		},
		{
			ID:          "scoop-uninstall",
			Name:        "Uninstall package",
			Description: "Remove a Scoop-installed package",
			Tier:        tools.TierRed,
			Params: []tools.Param{
				{Name: "name", Description: "Package name to remove", Required: true},
			},
			Timeout: 2 * time.Minute,
			Run: func(ctx context.Context, params map[string]string) (string, error) {
				return s.exec(ctx, fmt.Sprintf(`scoop uninstall "%s"`, params["name"]), 2*time.Minute)
			},
		},
		{
			ID:          "scoop-bucket-add",
			Name:        "Add bucket",
			Description: "Add a Scoop bucket (package source)",
			Tier:        tools.TierYellow,
			Params: []tools.Param{
				{Name: "bucket", Description: "Bucket name (e.g. extras, versions)", Required: true},
			},
			Timeout: time.Minute,
			Run: func(ctx context.Context, params map[string]string) (string, error) {
				return s.exec(ctx, fmt.Sprintf(`scoop bucket add "%s"`, params["bucket"]), time.Minute)
			},
		},
	}
}

func (s *scoopWrapper) exec(ctx context.Context, command string, timeout time.Duration) (string, error) {
	res, err := s.run.Run(ctx, command, timeout)
	if err != nil {
		return "", err
	}
	return res.Stdout, nil
}
