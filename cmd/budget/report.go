package main

import (
	"fmt"
	"io"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/Bobboe/hspriveko/internal/core"
	"github.com/Bobboe/hspriveko/internal/export"
)

const barWidth = 30

func overviewCmd(opts *rootOptions) *cobra.Command {
	var month string

	cmd := &cobra.Command{
		Use:   "overview",
		Short: "Show spending against budget for a month",
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

			ov, err := b.Overview.Month(cmd.Context(), m)
			if err != nil {
				return err
			}
			printOverview(cmd.OutOrStdout(), ov)
			return nil
		},
	}

	cmd.Flags().StringVar(&month, "month", "", "month, YYYY-MM (default current month)")
	return cmd
}

func printOverview(out io.Writer, ov core.MonthOverview) {
	fmt.Fprintf(out, "%s  spent %s of %s, remaining %s\n\n", ov.Month, ov.TotalSpent, ov.TotalBudget, ov.TotalRemaining)

	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "CATEGORY\tSPENT\tBUDGET\tREMAINING\t")
	for _, c := range ov.Categories {
		flag := ""
		if c.Over {
			flag = "over"
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s %s\n", c.Name, c.Spent, c.Budget, c.Remaining, bar(c.Ratio), flag)
	}
	w.Flush()

	if len(ov.Top) > 0 {
		fmt.Fprintln(out, "\nTop categories:")
		for i, c := range ov.Top {
			fmt.Fprintf(out, "  %d. %s %s\n", i+1, c.Name, c.Spent)
		}
	}
}

// bar renders ratio in [0,1] as a fixed-width progress bar.
func bar(ratio float64) string {
	n := int(ratio*barWidth + 0.5)
	return "[" + strings.Repeat("#", n) + strings.Repeat(".", barWidth-n) + "]"
}

func trendCmd(opts *rootOptions) *cobra.Command {
	var (
		month  string
		months int
	)

	cmd := &cobra.Command{
		Use:   "trend",
		Short: "Show total spending for the months up to a month",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			m, err := monthFlag(month)
			if err != nil {
				return err
			}

			b, cfg, err := opts.open(cmd.Context())
			if err != nil {
				return err
			}
			defer b.Close()

			if months == 0 {
				months = cfg.TrendMonths
			}
			t, err := b.Overview.Trend(cmd.Context(), m, months)
			if err != nil {
				return err
			}

			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
			defer w.Flush()
			for _, p := range t.Points {
				ratio := 0.0
				if t.Max.Cents > 0 {
					ratio = float64(p.Total.Cents) / float64(t.Max.Cents)
				}
				fmt.Fprintf(w, "%s\t%s\t%s\n", p.Month, p.Total, bar(ratio))
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&month, "month", "", "last month of the trend, YYYY-MM (default current month)")
	cmd.Flags().IntVar(&months, "months", 0, "number of months (default TREND_MONTHS)")
	return cmd
}

func exportCmd(opts *rootOptions) *cobra.Command {
	var month, category, output string

	cmd := &cobra.Command{
		Use:     "export",
		Short:   "Export a month's expenses as CSV",
		Example: "  budget export --month 2024-03 --output march.csv",
		Args:    cobra.NoArgs,
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

			out := cmd.OutOrStdout()
			if output != "" && output != "-" {
				f, err := os.Create(output)
				if err != nil {
					return fmt.Errorf("create output file: %w", err)
				}
				defer f.Close()
				out = f
			}

			n, err := export.NewExporter(b.Expenses, b.Categories).WriteMonth(cmd.Context(), out, m, category)
			if err != nil {
				return err
			}
			if out != cmd.OutOrStdout() {
				fmt.Fprintf(cmd.ErrOrStderr(), "Exported %d expenses to %s\n", n, output)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&month, "month", "", "month, YYYY-MM (default current month)")
	cmd.Flags().StringVar(&category, "category", "", "only expenses in this category id")
	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (default stdout)")
	return cmd
}
