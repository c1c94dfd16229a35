package main

import (
	"fmt"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"dripfeed/internal/bot"
	"dripfeed/internal/daemon"
	"dripfeed/internal/logging"
	"dripfeed/internal/scheduler"
)

func newRunCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "run",
		Short: "Run the bot and the daily scheduler until interrupted",
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := ctx.openApp()
			if err != nil {
				return err
			}
			defer app.close()

			signalCtx, cancel := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer cancel()

			me, err := app.client.GetMe(signalCtx)
			if err != nil {
				return fmt.Errorf("verify bot token: %w", err)
			}
			app.logger.Info("authenticated",
				logging.String("bot", me.Username),
				logging.Int("lessons", app.repo.TotalLessons()),
			)

			sched := scheduler.New(app.store, app.pipeline, app.logger, app.schedulerOptions())
			poller := bot.New(app.client, app.store, app.pipeline, app.logger, bot.Options{
				PollTimeout:  app.cfg.Telegram.PollTimeout,
				TotalLessons: app.repo.TotalLessons(),
			})

			d, err := daemon.New(app.cfg, app.store, app.logger, sched, poller)
			if err != nil {
				return err
			}
			if err := d.Start(signalCtx); err != nil {
				return err
			}

			<-signalCtx.Done()
			app.logger.Info("shutdown signal received")
			d.Stop()
			return nil
		},
	}
}
