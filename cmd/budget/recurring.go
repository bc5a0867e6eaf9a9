package main

import (
	"fmt"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/Bobboe/hspriveko/internal/core"
)

func recurringCmd(opts *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "recurring",
		Aliases: []string{"rec"},
		Short:   "Manage recurring expense templates",
		Long: `Recurring templates produce one expense per month between their start
and end month while active. Use 'budget generate' to materialize a month.`,
	}

	cmd.AddCommand(listRecurringCmd(opts))
	cmd.AddCommand(addRecurringCmd(opts))
	cmd.AddCommand(setActiveCmd(opts, "pause", false))
	cmd.AddCommand(setActiveCmd(opts, "resume", true))
	cmd.AddCommand(deleteRecurringCmd(opts))

	return cmd
}

func listRecurringCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List recurring templates",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			b, _, err := opts.open(cmd.Context())
			if err != nil {
				return err
			}
			defer b.Close()

			list, err := b.Recurring.List(cmd.Context())
			if err != nil {
				return err
			}
			if len(list) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "No recurring expenses. Use 'budget recurring add' to create one.")
				return nil
			}

			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
			defer w.Flush()
			fmt.Fprintln(w, "ID\tNAME\tAMOUNT\tDAY\tFROM\tTO\tSTATUS")
			for _, r := range list {
				end := "-"
				if r.EndMonth != nil {
					end = r.EndMonth.String()
				}
				status := "active"
				if !r.Active {
					status = "paused"
				}
				fmt.Fprintf(w, "%s\t%s\t%s\t%d\t%s\t%s\t%s\n", r.ID, r.Name, r.Amount, r.DayOfMonth, r.StartMonth, end, status)
			}
			return nil
		},
	}
}

func addRecurringCmd(opts *rootOptions) *cobra.Command {
	var (
		category   string
		day        int
		start, end string
		paused     bool
	)

	cmd := &cobra.Command{
		Use:     "add <name> <amount>",
		Short:   "Add a recurring template",
		Example: `  budget recurring add Hyra "8 500" --category <id> --day 31 --start 2024-01`,
		Args:    cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			amount, err := parseAmount(args[1])
			if err != nil {
				return fmt.Errorf("invalid amount: %w", err)
			}
			if start == "" {
				start = core.CurrentMonth(time.Now()).String()
			}
			active := !paused

			b, _, err := opts.open(cmd.Context())
			if err != nil {
				return err
			}
			defer b.Close()

			r, err := b.Recurring.Add(cmd.Context(), core.RecurringInput{
				Name:       args[0],
				Amount:     amount,
				CategoryID: category,
				DayOfMonth: day,
				StartMonth: start,
				EndMonth:   end,
				Active:     &active,
			})
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Added recurring %s (%s): %s on day %d from %s\n", r.Name, r.ID, r.Amount, r.DayOfMonth, r.StartMonth)
			return nil
		},
	}

	cmd.Flags().StringVar(&category, "category", "", "category id (required)")
	cmd.Flags().IntVar(&day, "day", 1, "day of month, 1-31; clamped in shorter months")
	cmd.Flags().StringVar(&start, "start", "", "first month, YYYY-MM (default current month)")
	cmd.Flags().StringVar(&end, "end", "", "last month, YYYY-MM (default none)")
	cmd.Flags().BoolVar(&paused, "paused", false, "create the template paused")
	_ = cmd.MarkFlagRequired("category")
	return cmd
}

func setActiveCmd(opts *rootOptions, use string, active bool) *cobra.Command {
	short := "Pause a recurring template"
	if active {
		short = "Resume a paused recurring template"
	}
	return &cobra.Command{
		Use:   use + " <id>",
		Short: short,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			b, _, err := opts.open(cmd.Context())
			if err != nil {
				return err
			}
			defer b.Close()

			r, err := b.Recurring.SetActive(cmd.Context(), args[0], active)
			if err != nil {
				return err
			}
			state := "paused"
			if r.Active {
				state = "active"
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Recurring %s is now %s\n", r.Name, state)
			return nil
		},
	}
}

func deleteRecurringCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete a recurring template; generated expenses are kept",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			b, _, err := opts.open(cmd.Context())
			if err != nil {
				return err
			}
			defer b.Close()

			if err := b.Recurring.Delete(cmd.Context(), args[0]); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Deleted recurring %s\n", args[0])
			return nil
		},
	}
}
