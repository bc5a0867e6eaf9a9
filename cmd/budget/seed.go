package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/Bobboe/hspriveko/internal/seed"
)

func seedCmd(opts *rootOptions) *cobra.Command {
	var file string

	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Load categories and recurring templates from a YAML file",
		Long: `Create the categories and recurring templates listed in a YAML file.

Entries that already exist (same category name, same template name in the
same category) are skipped, so a seed file can be applied repeatedly.`,
		Example: "  budget seed --file seed.yaml",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			f, err := seed.LoadFile(file)
			if err != nil {
				return err
			}

			b, _, err := opts.open(cmd.Context())
			if err != nil {
				return err
			}
			defer b.Close()

			res, err := seed.Apply(cmd.Context(), f, b.Categories, b.Recurring)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Seeded %d categories and %d recurring templates (%d already present)\n",
				res.CategoriesCreated, res.RecurringCreated, res.Skipped)
			return nil
		},
	}

	cmd.Flags().StringVarP(&file, "file", "f", "", "seed file (required)")
	_ = cmd.MarkFlagRequired("file")
	return cmd
}
