package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"stitch/internal/engine"
	"stitch/internal/history"
	"stitch/internal/logging"
	"stitch/internal/pipeline"
)

func newRunCommand(ctx *commandContext) *cobra.Command {
	var noHistory bool

	cmd := &cobra.Command{
		Use:   "run <source>...",
		Short: "Stitch the given clip sources into one file",
		Long:  "Downloads each source (URL or local path), normalizes audio per clip, joins them with stream-copy concatenation, and writes the result to the output directory. Sources are joined in the order given.",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}

			logger, err := logging.NewFromConfig(cfg)
			if err != nil {
				return fmt.Errorf("initialize logging: %w", err)
			}

			runCtx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			eng := engine.New(
				engine.WithBinary(cfg.FFmpegBinary()),
				engine.WithLogger(logger),
			)

			opts := []pipeline.Option{
				pipeline.WithLogger(logger),
				pipeline.WithStatusSink(newStatusPrinter(cmd.OutOrStdout())),
			}
			if !noHistory {
				store, histErr := history.Open(cfg)
				if histErr != nil {
					logger.Warn("run history unavailable", logging.Error(histErr))
				} else {
					defer store.Close()
					opts = append(opts, pipeline.WithHistory(store))
				}
			}

			result, err := pipeline.New(cfg, eng, opts...).Run(runCtx, args)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "\nStitched %d clips into %s (duration %s)\n",
				result.ClipCount, result.OutputPath, result.Duration.Round(centisecond))
			return nil
		},
	}

	cmd.Flags().BoolVar(&noHistory, "no-history", false, "Skip recording this run in the history database")
	return cmd
}
