package main

import (
	"fmt"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"dripfeed/internal/progress"
)

func newSubscribersCommand(ctx *commandContext) *cobra.Command {
	var plainFlag bool

	cmd := &cobra.Command{
		Use:   "subscribers",
		Short: "List subscribers and their progress",
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := ctx.openApp()
			if err != nil {
				return err
			}
			defer app.close()

			records, err := app.store.List(cmd.Context())
			if err != nil {
				return fmt.Errorf("list subscribers: %w", err)
			}

			out := cmd.OutOrStdout()
			if len(records) == 0 {
				fmt.Fprintln(out, "No subscribers yet")
				return nil
			}

			total := app.repo.TotalLessons()
			rows := make([][]string, 0, len(records))
			for _, record := range records {
				rows = append(rows, subscriberRow(record, total))
			}

			if plainFlag || !stdoutIsTerminal() {
				fmt.Fprint(out, renderPlain(rows))
				return nil
			}

			headers := []string{"Chat", "Delivered", "Total", "Last Sent", "Joined"}
			aligns := []columnAlignment{alignLeft, alignRight, alignRight, alignLeft, alignLeft}
			fmt.Fprintln(out, renderTable(headers, rows, aligns))
			return nil
		},
	}

	cmd.Flags().BoolVar(&plainFlag, "plain", false, "Force plain tab-separated output")
	return cmd
}

func subscriberRow(record progress.Record, total int) []string {
	delivered := record.NextLesson
	if delivered > total {
		delivered = total
	}
	lastSent := "never"
	if record.LastSentAt != nil {
		lastSent = record.LastSentAt.UTC().Format(time.RFC3339)
	}
	return []string{
		record.ChatID,
		strconv.Itoa(delivered),
		strconv.Itoa(total),
		lastSent,
		record.JoinedAt.UTC().Format(time.RFC3339),
	}
}
