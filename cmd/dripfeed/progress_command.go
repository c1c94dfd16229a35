package main

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"
)

func newProgressCommand(ctx *commandContext) *cobra.Command {
	var chatFlag string

	cmd := &cobra.Command{
		Use:   "progress",
		Short: "Show one subscriber's progress",
		RunE: func(cmd *cobra.Command, args []string) error {
			chatID := strings.TrimSpace(chatFlag)
			if chatID == "" {
				return errors.New("--chat is required")
			}

			app, err := ctx.openApp()
			if err != nil {
				return err
			}
			defer app.close()

			record, ok, err := app.store.Get(cmd.Context(), chatID)
			if err != nil {
				return fmt.Errorf("look up chat %s: %w", chatID, err)
			}
			if !ok {
				return fmt.Errorf("chat %s is not subscribed", chatID)
			}

			total := app.repo.TotalLessons()
			delivered := record.NextLesson
			if delivered > total {
				delivered = total
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Chat:      %s\n", record.ChatID)
			fmt.Fprintf(out, "Delivered: %d of %d lessons\n", delivered, total)
			if record.LastSentAt != nil {
				fmt.Fprintf(out, "Last sent: %s\n", record.LastSentAt.UTC().Format(time.RFC3339))
			} else {
				fmt.Fprintln(out, "Last sent: never")
			}
			fmt.Fprintf(out, "Joined:    %s\n", record.JoinedAt.UTC().Format(time.RFC3339))
			if delivered >= total {
				fmt.Fprintln(out, "Curriculum complete")
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&chatFlag, "chat", "", "Chat id to inspect")
	_ = cmd.MarkFlagRequired("chat")

	return cmd
}
