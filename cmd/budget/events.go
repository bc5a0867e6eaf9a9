package main

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/Bobboe/hspriveko/internal/amqp"
)

func eventsCmd(opts *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "events",
		Short: "Inspect expense change events on the message broker",
	}
	cmd.AddCommand(tailEventsCmd(opts))
	return cmd
}

func tailEventsCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "tail",
		Short: "Print expense events from the AMQP queue until interrupted",
		Long: `Consume the expense event queue and print one line per event.

Events are acknowledged once printed, so tailing drains the queue.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := opts.loadConfig()
			if err != nil {
				return err
			}
			if cfg.AMQPURL == "" {
				return fmt.Errorf("AMQP_URL is not set")
			}

			client, err := amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPRoutingKey)
			if err != nil {
				return err
			}
			defer client.Close()

			out := cmd.OutOrStdout()
			err = client.ConsumeExpenseEvents(cmd.Context(), func(msg *amqp.ExpenseEventMessage) error {
				_, err := fmt.Fprintln(out, formatEvent(msg))
				return err
			})
			if errors.Is(err, context.Canceled) {
				return nil
			}
			return err
		},
	}
}

func formatEvent(msg *amqp.ExpenseEventMessage) string {
	line := fmt.Sprintf("%s %-9s %s month=%s category=%s amount=%d",
		msg.OccurredAt.Format("2006-01-02T15:04:05"), msg.Type, msg.ExpenseID, msg.Month, msg.CategoryID, msg.AmountCents)
	if msg.PreviousMonth != nil {
		line += " previous=" + msg.PreviousMonth.String()
	}
	if msg.RecurringID != "" {
		line += " recurring=" + msg.RecurringID
	}
	return line
}
