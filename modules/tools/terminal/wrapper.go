package terminal

import (
	"context"
	"errors"
	"time"

	"github.com/onefuture/futurebuddy/internal/shell"
	"github.com/onefuture/futurebuddy/internal/tools"
)

const runTimeout = 2 * time.Minute

// shellWrapper adapts one host shell into a single run capability.
type shellWrapper struct {
	run         shell.Runner
	id          string
	name        string
	description string
	probe       string
	capID       string
	// wrap rewrites the raw command into the shell-specific invocation.
	// Nil means the command runs through the platform shell as-is.
	wrap func(command string) string
}

func newShellWrapper(run shell.Runner, id, name, description, probe, capID string, wrap func(string) string) *shellWrapper {
	return &shellWrapper{
		run:         run,
		id:          id,
		name:        name,
		description: description,
		probe:       probe,
		capID:       capID,
		wrap:        wrap,
	}
}

func (s *shellWrapper) ID() string          { return s.id }
func (s *shellWrapper) Name() string        { return s.name }
func (s *shellWrapper) Description() string { return s.description }

func (s *shellWrapper) Detect(ctx context.Context) (tools.Status, error) {
	res, err := s.run.Run(ctx, s.probe, 10*time.Second)
	if err != nil {
		return tools.Status{}, nil
	}
	return tools.Status{Installed: true, Version: firstLine(res.Stdout)}, nil
}

func (s *shellWrapper) Capabilities() []tools.Capability {
	return []tools.Capability{
		{
			ID:          s.capID,
			Name:        "Run command",
			Description: "Execute a command line in " + s.name,
			Tier:        tools.TierGreen,
			Params: []tools.Param{
				{Name: "command", Description: "Command line to execute", Required: true},
			},
			Timeout: runTimeout,
			Run: func(ctx context.Context, params map[string]string) (string, error) {
				command := params["command"]
				if command == "" {
					return "", errors.New("command param is required")
				}
				if s.wrap != nil {
					command = s.wrap(command)
				}
				res, err := s.run.Run(ctx, command, runTimeout)
				if err != nil {
					return "", err
				}
				out := res.Stdout
				if out == "" {
					out = res.Stderr
				}
				return out, nil
			},
		},
	}
}

func firstLine(s string) string {
	for i, r := range s {
		if r == '\n' || r == '\r' {
			return s[:i]
		}
	}
	return s
}
