package main

import (
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/Bobboe/hspriveko/internal/core"
)

func categoriesCmd(opts *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "categories",
		Aliases: []string{"category", "cat"},
		Short:   "Manage budget categories",
		Long:    `List, add, update, and delete the categories expenses are budgeted against.`,
	}

	cmd.AddCommand(listCategoriesCmd(opts))
	cmd.AddCommand(addCategoryCmd(opts))
	cmd.AddCommand(updateCategoryCmd(opts))
	cmd.AddCommand(deleteCategoryCmd(opts))

	return cmd
}

func listCategoriesCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List all categories",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			b, _, err := opts.open(cmd.Context())
			if err != nil {
				return err
			}
			defer b.Close()

			cats, err := b.Categories.List(cmd.Context())
			if err != nil {
				return err
			}
			if len(cats) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "No categories found. Use 'budget categories add' to create one.")
				return nil
			}

			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
			defer w.Flush()
			fmt.Fprintln(w, "ID\tNAME\tBUDGET")
			for _, c := range cats {
				fmt.Fprintf(w, "%s\t%s\t%s\n", c.ID, c.Name, c.MonthlyBudget)
			}
			return nil
		},
	}
}

func addCategoryCmd(opts *rootOptions) *cobra.Command {
	var budget string

	cmd := &cobra.Command{
		Use:     "add <name>",
		Short:   "Add a category",
		Example: `  budget categories add Mat --budget "5 000"`,
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			amount, err := parseAmount(budget)
			if err != nil {
				return fmt.Errorf("invalid --budget: %w", err)
			}

			b, _, err := opts.open(cmd.Context())
			if err != nil {
				return err
			}
			defer b.Close()

			c, err := b.Categories.Add(cmd.Context(), core.CategoryInput{Name: args[0], MonthlyBudget: amount})
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Added category %s (%s), budget %s\n", c.Name, c.ID, c.MonthlyBudget)
			return nil
		},
	}

	cmd.Flags().StringVar(&budget, "budget", "0", "monthly budget, e.g. 5000 or \"5 000,50\"")
	return cmd
}

func updateCategoryCmd(opts *rootOptions) *cobra.Command {
	var name, budget string

	cmd := &cobra.Command{
		Use:   "update <id>",
		Short: "Rename a category or change its budget",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var patch core.CategoryPatch
			if cmd.Flags().Changed("name") {
				patch.Name = &name
			}
			if cmd.Flags().Changed("budget") {
				amount, err := parseAmount(budget)
				if err != nil {
					return fmt.Errorf("invalid --budget: %w", err)
				}
				patch.MonthlyBudget = &amount
			}
			if patch.Name == nil && patch.MonthlyBudget == nil {
				return fmt.Errorf("nothing to update, pass --name or --budget")
			}

			b, _, err := opts.open(cmd.Context())
			if err != nil {
				return err
			}
			defer b.Close()

			c, err := b.Categories.Update(cmd.Context(), args[0], patch)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Updated category %s (%s), budget %s\n", c.Name, c.ID, c.MonthlyBudget)
			return nil
		},
	}

	cmd.Flags().StringVar(&name, "name", "", "new name")
	cmd.Flags().StringVar(&budget, "budget", "", "new monthly budget")
	return cmd
}

func deleteCategoryCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete a category without expenses or recurring templates",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			b, _, err := opts.open(cmd.Context())
			if err != nil {
				return err
			}
			defer b.Close()

			if err := b.Categories.Delete(cmd.Context(), args[0]); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Deleted category %s\n", args[0])
			return nil
		},
	}
}

// parseAmount reads a display amount ("129,50", "8 500 kr") into money.
func parseAmount(s string) (core.Money, error) {
	if strings.TrimSpace(s) == "" {
		return core.Money{}, nil
	}
	cents, err := core.ParseMoneyToCents(s)
	if err != nil {
		return core.Money{}, err
	}
	return core.Money{Cents: cents}, nil
}
