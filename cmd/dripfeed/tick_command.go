package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"dripfeed/internal/scheduler"
)

func newTickCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "tick",
		Short: "Execute one delivery pass immediately and exit",
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := ctx.openApp()
			if err != nil {
				return err
			}
			defer app.close()

			sched := scheduler.New(app.store, app.pipeline, app.logger, app.schedulerOptions())
			summary := sched.RunOnce(cmd.Context())

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Due: %d  Delivered: %d  Failed: %d  Skipped: %d  (%s)\n",
				summary.Due, summary.Delivered, summary.Failed, summary.Skipped,
				summary.Duration.Round(time.Millisecond))
			if summary.Failed > 0 {
				return fmt.Errorf("%d deliveries failed", summary.Failed)
			}
			return nil
		},
	}
}
