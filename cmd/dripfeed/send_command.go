package main

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"dripfeed/internal/delivery"
)

func newSendCommand(ctx *commandContext) *cobra.Command {
	var chatFlag string
	var lessonFlag int

	cmd := &cobra.Command{
		Use:   "send",
		Short: "Send one lesson to one chat without touching progress",
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

			total := app.repo.TotalLessons()
			if lessonFlag < 1 || lessonFlag > total {
				return fmt.Errorf("--lesson must be between 1 and %d", total)
			}

			result := app.pipeline.Deliver(cmd.Context(), chatID, lessonFlag-1)
			switch result.Outcome {
			case delivery.OutcomeDelivered:
				fmt.Fprintf(cmd.OutOrStdout(), "Sent lesson %d to chat %s\n", lessonFlag, chatID)
				if len(result.AssetErrors) > 0 {
					fmt.Fprintf(cmd.OutOrStdout(), "Warning: %d asset sends failed\n", len(result.AssetErrors))
				}
				return nil
			default:
				return fmt.Errorf("send lesson %d to chat %s: %w", lessonFlag, chatID, result.Err)
			}
		},
	}

	cmd.Flags().StringVar(&chatFlag, "chat", "", "Target chat id")
	cmd.Flags().IntVar(&lessonFlag, "lesson", 0, "Lesson number (1-based)")
	_ = cmd.MarkFlagRequired("chat")
	_ = cmd.MarkFlagRequired("lesson")

	return cmd
}
