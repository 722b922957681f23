package main

import (
	"fmt"
	"log/slog"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/onefuture/futurebuddy/internal/core"
	"github.com/onefuture/futurebuddy/internal/shell"
	"github.com/onefuture/futurebuddy/internal/tools"
	"github.com/onefuture/futurebuddy/modules/tools/fileops"
)

func toolsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "tools",
		Short: "Tool catalogue operations",
	}
	cmd.AddCommand(toolsScanCmd(), toolsOrganizeCmd())
	return cmd
}

// toolsOrganizeCmd runs the built-in file organizer directly. Watchers
// started through the file-ops domain invoke this on file changes.
func toolsOrganizeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "organize <path>",
		Short: "Sort files in a directory into category folders",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			preview, _ := cmd.Flags().GetBool("preview")
			result, err := fileops.OrganizeDirectory(args[0], preview)
			if err != nil {
				return err
			}
			verb := "Moved"
			if preview {
				verb = "Would move"
			}
			fmt.Printf("%s %d files, skipped %d\n", verb, result.Moved, result.Skipped)
			for _, move := range result.Details {
				fmt.Printf("  %s -> %s\n", move.From, move.To)
			}
			return nil
		},
	}
	cmd.Flags().Bool("preview", false, "Show the plan without moving anything")
	return cmd
}

// toolsScanCmd probes the local machine directly, without a running server.
// It loads the compiled tool modules into a throwaway registry and prints
// what they detect.
func toolsScanCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "scan",
		Short: "Probe this machine for installed tools",
		RunE: func(cmd *cobra.Command, _ []string) error {
			logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
				Level: slog.LevelWarn,
			}))

			registry := tools.NewRegistry(logger)
			appCtx := core.NewAppContext(logger, os.TempDir())
			appCtx.RegisterService("shell.runner", shell.NewRunner())
			appCtx.RegisterService("tools.registry", registry)

			for _, info := range core.GetModulesByNamespace("tools") {
				if _, err := appCtx.LoadModule(string(info.ID)); err != nil {
					return fmt.Errorf("loading %s: %w", info.ID, err)
				}
			}

			infos, err := registry.Scan(cmd.Context())
			if err != nil {
				return err
			}

			w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "DOMAIN\tTOOL\tINSTALLED\tVERSION")
			for _, info := range infos {
				installed := "no"
				if info.Installed {
					installed = "yes"
				}
				fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", info.Domain, info.ID, installed, info.Version)
			}
			if err := w.Flush(); err != nil {
				return err
			}

			fmt.Printf("\n%d tools, %d installed\n", len(infos), countInstalled(infos))
			return nil
		},
	}
}

func countInstalled(infos []tools.Info) int {
	n := 0
	for _, info := range infos {
		if info.Installed {
			n++
		}
	}
	return n
}
