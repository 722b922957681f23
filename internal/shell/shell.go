// Package shell provides the generic OS-command execution primitive used by
// tool wrappers. The governance engine gates whether a command runs; this
// package is the only place that actually spawns one.
package shell

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"runtime"
	"strings"
	"time"
)

// Result captures one command execution.
type Result struct {
	Stdout   string
	Stderr   string
	ExitCode int
}

// Runner executes a command line under a timeout. Implementations must kill
// the underlying process on timeout rather than leaving it running.
type Runner interface {
	Run(ctx context.Context, command string, timeout time.Duration) (Result, error)
}

// execRunner runs commands through the platform shell.
type execRunner struct{}

// NewRunner returns a Runner backed by os/exec.
func NewRunner() Runner {
	return execRunner{}
}

// Run executes command via `cmd /C` on Windows and `sh -c` elsewhere.
// A non-zero exit is returned as an error wrapping the captured stderr,
// with the Result still populated so callers can inspect partial output.
func (execRunner) Run(ctx context.Context, command string, timeout time.Duration) (Result, error) {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	var cmd *exec.Cmd
	if runtime.GOOS == "windows" {
		cmd = exec.CommandContext(ctx, "cmd", "/C", command)
	} else {
		cmd = exec.CommandContext(ctx, "sh", "-c", command)
	}

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	// Do not wait forever on inherited pipes after the process is killed.
	cmd.WaitDelay = 5 * time.Second

	err := cmd.Run()

	result := Result{
		Stdout: strings.TrimSpace(stdout.String()),
		Stderr: strings.TrimSpace(stderr.String()),
	}

	if err != nil {
		var exitErr *exec.ExitError
		switch {
		case errors.Is(ctx.Err(), context.DeadlineExceeded):
			result.ExitCode = -1
			return result, fmt.Errorf("command timed out after %s", timeout)
		case errors.As(err, &exitErr):
			result.ExitCode = exitErr.ExitCode()
			if result.Stderr != "" {
				return result, fmt.Errorf("exit %d: %s", result.ExitCode, result.Stderr)
			}
			return result, fmt.Errorf("exit %d", result.ExitCode)
		default:
			result.ExitCode = -1
			return result, err
		}
	}

	return result, nil
}

// PowerShell builds a `powershell -NoProfile -Command` invocation with the
// inner quotes escaped, matching how wrappers drive Windows policy tooling.
func PowerShell(command string) string {
	escaped := strings.ReplaceAll(command, `"`, `\"`)
	return fmt.Sprintf(`powershell -NoProfile -Command "%s"`, escaped)
}
