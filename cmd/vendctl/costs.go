package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/ashmitsharp/vendlens-api/internal/services"
)

func newCostsCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "costs <file>",
		Short: "Replace the master cost list with a spreadsheet",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, a, err := opts.open(cmd)
			if err != nil {
				return err
			}
			defer a.Close()

			f, err := os.Open(args[0])
			if err != nil {
				return fmt.Errorf("failed to open %s: %w", args[0], err)
			}
			defer f.Close()

			costs, err := services.ParseMasterCostSheet(f, filepath.Base(args[0]))
			if err != nil {
				return err
			}
			if err := a.Repository.SaveProductCosts(ctx, costs); err != nil {
				return err
			}
			a.Matcher.Invalidate()

			fmt.Fprintf(cmd.OutOrStdout(), "Saved %d products\n", len(costs))
			return nil
		},
	}
}
