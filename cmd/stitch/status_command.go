package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"stitch/internal/config"
	"stitch/internal/history"
	"stitch/internal/preflight"
)

func newStatusCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show environment readiness and the most recent run",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			colorize := shouldColorize(out)

			fmt.Fprintln(out, renderSectionHeader("Directories", colorize))
			for _, result := range preflight.CheckDirectories(cfg) {
				kind := statusError
				if result.Passed {
					kind = statusOK
				}
				fmt.Fprintln(out, renderStatusLine(result.Name, kind, result.Detail, colorize))
			}

			fmt.Fprintln(out)
			fmt.Fprintln(out, renderSectionHeader("System dependencies", colorize))
			for _, status := range preflight.CheckSystemDeps(cfg) {
				kind := statusError
				detail := status.Detail
				if status.Available {
					kind = statusOK
					detail = status.Command
				}
				if !status.Available && status.Optional {
					kind = statusWarn
				}
				fmt.Fprintln(out, renderStatusLine(status.Name, kind, detail, colorize))
			}

			fmt.Fprintln(out)
			fmt.Fprintln(out, renderSectionHeader("Last run", colorize))
			renderLastRun(cmd, cfg, colorize)
			return nil
		},
	}
}

func renderLastRun(cmd *cobra.Command, cfg *config.Config, colorize bool) {
	out := cmd.OutOrStdout()
	store, err := history.Open(cfg)
	if err != nil {
		fmt.Fprintln(out, renderStatusLine("History", statusWarn, err.Error(), colorize))
		return
	}
	defer store.Close()

	records, err := store.List(cmd.Context(), 1)
	if err != nil {
		fmt.Fprintln(out, renderStatusLine("History", statusWarn, err.Error(), colorize))
		return
	}
	if len(records) == 0 {
		fmt.Fprintln(out, renderStatusLine("History", statusInfo, "no runs recorded", colorize))
		return
	}

	record := records[0]
	kind := statusInfo
	detail := fmt.Sprintf("%s, %d clips", record.Outcome, record.ClipCount)
	switch record.Outcome {
	case history.OutcomeSucceeded:
		kind = statusOK
		detail = fmt.Sprintf("%s (%s)", record.OutputPath, formatDuration(record.Duration))
	case history.OutcomeFailed:
		kind = statusError
		detail = record.ErrorMessage
	}
	fmt.Fprintln(out, renderStatusLine("Run "+record.RunID, kind, detail, colorize))
}
