package main

import (
	"fmt"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/Bobboe/hspriveko/internal/core"
)

func expensesCmd(opts *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "expenses",
		Aliases: []string{"expense", "exp"},
		Short:   "Record and list expenses",
	}

	cmd.AddCommand(listExpensesCmd(opts))
	cmd.AddCommand(addExpenseCmd(opts))
	cmd.AddCommand(deleteExpenseCmd(opts))

	return cmd
}

// monthFlag parses a --month value; empty means the current month.
func monthFlag(v string) (core.Month, error) {
	if v == "" {
		return core.CurrentMonth(time.Now()), nil
	}
	m, err := core.ParseMonth(v)
	if err != nil {
		return core.Month{}, fmt.Errorf("invalid --month %q, want YYYY-MM", v)
	}
	return m, nil
}

func listExpensesCmd(opts *rootOptions) *cobra.Command {
	var month, category string

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List a month's expenses, newest first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			m, err := monthFlag(month)
			if err != nil {
				return err
			}

			b, _, err := opts.open(cmd.Context())
			if err != nil {
				return err
			}
			defer b.Close()

			list, err := b.Expenses.ListByMonth(cmd.Context(), m, category)
			if err != nil {
				return err
			}
			cats, err := b.Categories.List(cmd.Context())
			if err != nil {
				return err
			}
			names := make(map[string]string, len(cats))
			for _, c := range cats {
				names[c.ID] = c.Name
			}

			if len(list) == 0 {
				fmt.Fprintf(cmd.OutOrStdout(), "No expenses in %s.\n", m)
				return nil
			}

			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
			defer w.Flush()
			fmt.Fprintln(w, "DATE\tAMOUNT\tCATEGORY\tNOTE\tID")
			var total int64
			for _, e := range list {
				note := e.Note
				if e.RecurringID != "" {
					note += " (recurring)"
				}
				fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n", e.Date, e.Amount, names[e.CategoryID], note, e.ID)
				total += e.Amount.Cents
			}
			fmt.Fprintf(w, "\t%s\tTOTAL\t\t\n", core.Money{Cents: total})
			return nil
		},
	}

	cmd.Flags().StringVar(&month, "month", "", "month, YYYY-MM (default current month)")
	cmd.Flags().StringVar(&category, "category", "", "only expenses in this category id")
	return cmd
}

func addExpenseCmd(opts *rootOptions) *cobra.Command {
	var category, date, note string

	cmd := &cobra.Command{
		Use:     "add <amount>",
		Short:   "Record an expense",
		Example: `  budget expenses add 129,50 --category <id> --date 2024-03-02 --note ICA`,
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			amount, err := parseAmount(args[0])
			if err != nil {
				return fmt.Errorf("invalid amount: %w", err)
			}

			b, _, err := opts.open(cmd.Context())
			if err != nil {
				return err
			}
			defer b.Close()

			e, err := b.Expenses.Add(cmd.Context(), core.ExpenseInput{
				Amount:     amount,
				CategoryID: category,
				Date:       date,
				Note:       note,
			})
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Added expense %s: %s on %s\n", e.ID, e.Amount, e.Date)
			return nil
		},
	}

	cmd.Flags().StringVar(&category, "category", "", "category id (required)")
	cmd.Flags().StringVar(&date, "date", "", "date, YYYY-MM-DD (default today)")
	cmd.Flags().StringVar(&note, "note", "", "free-text note")
	_ = cmd.MarkFlagRequired("category")
	return cmd
}

func deleteExpenseCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete an expense",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			b, _, err := opts.open(cmd.Context())
			if err != nil {
				return err
			}
			defer b.Close()

			if err := b.Expenses.Delete(cmd.Context(), args[0]); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Deleted expense %s\n", args[0])
			return nil
		},
	}
}
