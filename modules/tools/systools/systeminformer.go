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

var pidPattern = regexp.MustCompile(`^\d+$`)

// siWrapper drives System Informer for process and system inspection.
// Most of the inspection work goes through PowerShell cmdlets so the
// capabilities degrade gracefully when only the GUI binary is present.
type siWrapper struct {
	run shell.Runner
}

func newSystemInformerWrapper(run shell.Runner) *siWrapper {
	return &siWrapper{run: run}
}

func (w *siWrapper) ID() string   { return "system-informer" }
func (w *siWrapper) Name() string { return "System Informer" }
func (w *siWrapper) Description() string {
	return "Advanced process manager (fork of Process Hacker). View processes, services, network connections, and system resource usage."
}

func (w *siWrapper) Detect(ctx context.Context) (tools.Status, error) {
	res, err := w.run.Run(ctx, "winget list --id winsiderss.SystemInformer --accept-source-agreements", 15*time.Second)
	if err == nil && strings.Contains(res.Stdout, "SystemInformer") {
		return tools.Status{Installed: true}, nil
	}

	paths := []string{
		`C:\Program Files\SystemInformer\SystemInformer.exe`,
		`C:\tools\SystemInformer\SystemInformer.exe`,
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

func (w *siWrapper) Capabilities() []tools.Capability {
	return []tools.Capability{
		{
			ID:          "si-launch",
			Name:        "Launch System Informer",
			Description: "Open System Informer for process and system inspection",
			Tier:        tools.TierGreen,
			Timeout:     5 * time.Second,
			Run: func(ctx context.Context, _ map[string]string) (string, error) {
				if _, err := w.run.Run(ctx, `start "" "SystemInformer.exe"`, 5*time.Second); err != nil {
					return "", err
				}
				return "System Informer launched.", nil
			},
		},
		{
			ID:          "si-top-processes",
			Name:        "Top processes",
			Description: "List the top processes by CPU or memory usage",
			Tier:        tools.TierGreen,
			Params: []tools.Param{
				{Name: "sort", Description: "Sort by: cpu or memory", Default: "cpu"},
			},
			Timeout: 15 * time.Second,
			Run: func(ctx context.Context, params map[string]string) (string, error) {
				sortProp := "CPU"
				if params["sort"] == "memory" {
					sortProp = "WorkingSet64"
				}
				return w.ps(ctx, fmt.Sprintf(
					`Get-Process | Sort-Object -Property %s -Descending | Select-Object -First 20 Name, Id, CPU, @{N='MemMB';E={[math]::Round($_.WorkingSet64/1MB,1)}} | Format-Table -AutoSize | Out-String -Width 120`,
					sortProp), 15*time.Second)
			},
		},
		{
			ID:          "si-find-process",
			Name:        "Find process",
			Description: "Search for a running process by name",
			Tier:        tools.TierGreen,
			Params: []tools.Param{
				{Name: "name", Description: "Process name to search for", Required: true},
			},
			Timeout: 10 * time.Second,
			Run: func(ctx context.Context, params map[string]string) (string, error) {
				out, err := w.ps(ctx, fmt.Sprintf(
					`Get-Process -Name '*%s*' -ErrorAction SilentlyContinue | Select-Object Name, Id, CPU, @{N='MemMB';E={[math]::Round($_.WorkingSet64/1MB,1)}}, Path | Format-Table -AutoSize | Out-String -Width 200`,
					params["name"]), 10*time.Second)
				if err != nil {
					return "", err
				}
				if out == "" {
					return fmt.Sprintf("No processes matching %q found.", params["name"]), nil
				}
				return out, nil
			},
		},
		{
			ID:          "si-kill-process",
			Name:        "Kill process",
			Description: "Terminate a process by name or PID",
			Tier:        tools.TierRed,
			Params: []tools.Param{
				{Name: "target", Description: "Process name or PID to kill", Required: true},
			},
			Timeout: 15 * time.Second,
			Run: func(ctx context.Context, params map[string]string) (string, error) {
				target := params["target"]
				var cmd string
				if pidPattern.MatchString(target) {
					cmd = fmt.Sprintf("Stop-Process -Id %s -Force -ErrorAction Stop; Write-Output 'Process %s terminated.'", target, target)
				} else {
					cmd = fmt.Sprintf("Stop-Process -Name '%s' -Force -ErrorAction Stop; Write-Output 'Process %s terminated.'", target, target)
				}
				return w.ps(ctx, cmd, 15*time.Second)
			},
		},
		{
			ID:          "si-services",
			Name:        "List services",
			Description: "List running Windows services",
			Tier:        tools.TierGreen,
			Timeout:     15 * time.Second,
			Run: func(ctx context.Context, _ map[string]string) (string, error) {
				return w.ps(ctx, `Get-Service | Where-Object { $_.Status -eq 'Running' } | Sort-Object DisplayName | Select-Object Status, Name, DisplayName | Format-Table -AutoSize | Out-String -Width 200`, 15*time.Second)
			},
		},
		{
			ID:          "si-network-connections",
			Name:        "Network connections",
			Description: "List active network connections and listening ports",
			Tier:        tools.TierGreen,
			Timeout:     15 * time.Second,
			Run: func(ctx context.Context, _ map[string]string) (string, error) {
				return w.ps(ctx, `Get-NetTCPConnection | Where-Object { $_.State -eq 'Established' -or $_.State -eq 'Listen' } | Select-Object LocalAddress, LocalPort, RemoteAddress, RemotePort, State, @{N='Process';E={(Get-Process -Id $_.OwningProcess -ErrorAction SilentlyContinue).Name}} | Sort-Object State, LocalPort | Format-Table -AutoSize | Out-String -Width 200`, 15*time.Second)
			},
		},
	}
}

func (w *siWrapper) ps(ctx context.Context, command string, timeout time.Duration) (string, error) {
	res, err := w.run.Run(ctx, shell.PowerShell(command), timeout)
	if err != nil {
		return "", err
	}
	return res.Stdout, nil
}
