package systools

import (
	"context"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/onefuture/futurebuddy/internal/shell"
	"github.com/onefuture/futurebuddy/internal/tools"
)

var chezmoiVersion = regexp.MustCompile(`chezmoi version v?(\S+)`)

// chezmoiWrapper drives the chezmoi dotfile manager.
type chezmoiWrapper struct {
	run shell.Runner
}

func newChezmoiWrapper(run shell.Runner) *chezmoiWrapper {
	return &chezmoiWrapper{run: run}
}

func (w *chezmoiWrapper) ID() string   { return "chezmoi" }
func (w *chezmoiWrapper) Name() string { return "chezmoi" }
func (w *chezmoiWrapper) Description() string {
	return "Dotfile manager. Sync config files across machines with Git, templates, and encryption support."
}

func (w *chezmoiWrapper) Detect(ctx context.Context) (tools.Status, error) {
	res, err := w.run.Run(ctx, "chezmoi --version", 10*time.Second)
	if err != nil {
		return tools.Status{}, nil
	}
	version := strings.TrimSpace(res.Stdout)
	if m := chezmoiVersion.FindStringSubmatch(res.Stdout); m != nil {
		version = m[1]
	}
	return tools.Status{Installed: true, Version: version}, nil
}

func (w *chezmoiWrapper) Capabilities() []tools.Capability {
	return []tools.Capability{
		{
			ID:          "chezmoi-status",
			Name:        "Dotfile status",
			Description: "Show which managed dotfiles have changed since last apply",
			Tier:        tools.TierGreen,
			Timeout:     15 * time.Second,
			Run: func(ctx context.Context, _ map[string]string) (string, error) {
				return w.exec(ctx, "chezmoi status", 15*time.Second, "All managed files are up to date.")
			},
		},
		{
			ID:          "chezmoi-managed",
			Name:        "List managed files",
			Description: "List all files managed by chezmoi",
			Tier:        tools.TierGreen,
			Timeout:     15 * time.Second,
			Run: func(ctx context.Context, _ map[string]string) (string, error) {
				return w.exec(ctx, "chezmoi managed", 15*time.Second, "No files managed by chezmoi yet.")
			},
		},
		{
			ID:          "chezmoi-diff",
			Name:        "Show dotfile diff",
			Description: "Show what would change if you applied the latest dotfiles",
			Tier:        tools.TierGreen,
			Timeout:     15 * time.Second,
			Run: func(ctx context.Context, _ map[string]string) (string, error) {
				return w.exec(ctx, "chezmoi diff", 15*time.Second, "No differences. Dotfiles are in sync.")
			},
		},
		{
			ID:          "chezmoi-apply",
			Name:        "Apply dotfiles",
			Description: "Apply managed dotfiles to the home directory",
			Tier:        tools.TierYellow,
			Timeout:     30 * time.Second,
			Run: func(ctx context.Context, _ map[string]string) (string, error) {
				return w.exec(ctx, "chezmoi apply --force", 30*time.Second, "Dotfiles applied successfully.")
			},
		},
		{
			ID:          "chezmoi-add",
			Name:        "Add file to dotfiles",
			Description: "Add a file to chezmoi management",
			Tier:        tools.TierYellow,
			Params: []tools.Param{
				{Name: "path", Description: "File path to add (e.g. ~/.gitconfig)", Required: true},
			},
			Timeout: 15 * time.Second,
			Run: func(ctx context.Context, params map[string]string) (string, error) {
				return w.exec(ctx, fmt.Sprintf(`chezmoi add "%s"`, params["path"]), 15*time.Second,
					fmt.Sprintf("Added %s to chezmoi management.", params["path"]))
			},
		},
		{
			ID:          "chezmoi-update",
			Name:        "Pull and apply dotfiles",
			Description: "Pull latest dotfiles from remote repo and apply them",
			Tier:        tools.TierYellow,
			Timeout:     time.Minute,
			Run: func(ctx context.Context, _ map[string]string) (string, error) {
				return w.exec(ctx, "chezmoi update --force", time.Minute, "Dotfiles pulled and applied.")
			},
		},
		{
			ID:          "chezmoi-init",
			Name:        "Initialize chezmoi",
			Description: "Initialize chezmoi with a dotfiles repo",
			Tier:        tools.TierYellow,
			Params: []tools.Param{
				{Name: "repo", Description: "Git repo URL (e.g. github.com/user/dotfiles)", Required: true},
			},
			Timeout: time.Minute,
			Run: func(ctx context.Context, params map[string]string) (string, error) {
				return w.exec(ctx, fmt.Sprintf(`chezmoi init "%s"`, params["repo"]), time.Minute,
					fmt.Sprintf("chezmoi initialized with %s. Run 'chezmoi apply' to apply dotfiles.", params["repo"]))
			},
		},
	}
}

// exec runs command and substitutes fallback when it prints nothing, since
// several chezmoi subcommands are silent on the happy path.
func (w *chezmoiWrapper) exec(ctx context.Context, command string, timeout time.Duration, fallback string) (string, error) {
	res, err := w.run.Run(ctx, command, timeout)
	if err != nil {
		return "", err
	}
	if res.Stdout == "" {
		return fallback, nil
	}
	return res.Stdout, nil
}
