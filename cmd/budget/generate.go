package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/Bobboe/hspriveko/internal/core"
)

func generateCmd(opts *rootOptions) *cobra.Command {
	var month string

	cmd := &cobra.Command{
		Use:   "generate",
		Short: "Materialize recurring expenses for a month",
		Long: `Create the month's expense for every active recurring template that
does not have one yet. Running it again for the same month creates nothing.`,
		Example: "  budget generate --month 2024-02",
		RunE: func(cmd *cobra.Command, _ []string) error {
			b, _, err := opts.open(cmd.Context())
			if err != nil {
				return err
			}
			defer b.Close()

			if month == "" {
				month = core.CurrentMonth(time.Now()).String()
			} else if _, err := core.ParseMonth(month); err != nil {
				return fmt.Errorf("invalid --month %q, want YYYY-MM", month)
			}

			res, err := b.Recurring.GenerateForMonth(cmd.Context(), month)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s: created %d of %d eligible\n", month, res.Created, res.Eligible)
			for _, e := range res.Expenses {
				fmt.Fprintf(cmd.OutOrStdout(), "  %s  %10s  %s\n", e.Date, e.Amount, e.Note)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&month, "month", "", "month to generate, YYYY-MM (default current month)")
	return cmd
}
