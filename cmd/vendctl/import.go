package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/ashmitsharp/vendlens-api/internal/models"
	"github.com/ashmitsharp/vendlens-api/internal/notify"
	"github.com/ashmitsharp/vendlens-api/internal/services"
)

func newImportCmd(opts *rootOptions) *cobra.Command {
	var (
		date   string
		commit bool
	)

	cmd := &cobra.Command{
		Use:   "import <files...>",
		Short: "Parse POS exports and optionally save the new transactions",
		Long: `Parses each file into transactions and prints a per-file report.
Without --commit nothing is saved. With --commit, transactions whose reference
number is already stored are skipped.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, a, err := opts.open(cmd)
			if err != nil {
				return err
			}
			defer a.Close()

			// 1. Open files; one that cannot be opened is reported in its row
			inputs := make([]services.FileInput, 0, len(args))
			for _, path := range args {
				name := filepath.Base(path)
				f, err := os.Open(path)
				if err != nil {
					inputs = append(inputs, services.FileInput{Name: name, Err: fmt.Errorf("failed to open %s: %w", path, err)})
					continue
				}
				defer f.Close()
				inputs = append(inputs, services.FileInput{Name: name, Reader: f})
			}

			// 2. Parse
			batch := a.Importer.ParseFiles(ctx, inputs, date)
			out := cmd.OutOrStdout()
			printBatch(out, batch)

			if !commit {
				return nil
			}

			// 3. Commit
			result, err := a.Commits.Commit(ctx, batch.Transactions)
			notify.CommitOutcome(ctx, a.Notifier, result, err)
			if errors.Is(err, services.ErrEmptyBatch) {
				return errors.New("nothing to commit: no valid transactions")
			}
			if err != nil {
				return err
			}
			fmt.Fprintf(out, "\nSaved %d transactions, skipped %d duplicates\n", result.Accepted, result.Skipped)
			return nil
		},
	}

	cmd.Flags().StringVar(&date, "date", "", "Date (YYYY-MM-DD) for rows without one")
	cmd.Flags().BoolVar(&commit, "commit", false, "Save new transactions")
	return cmd
}

func printBatch(out io.Writer, batch *models.ImportBatch) {
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "FILE\tROWS\tACCEPTED\tREJECTED\tFOOTERS\tFALLBACK DATE\tERROR")
	for _, f := range batch.Files {
		fmt.Fprintf(w, "%s\t%d\t%d\t%d\t%d\t%s\t%s\n",
			f.Name, f.Rows, f.Accepted, f.Rejected, f.Footers, f.FallbackDate, f.Error)
	}
	w.Flush()

	fmt.Fprintf(out, "\n%d transactions, total %s\n", batch.TotalRows, batch.TotalAmount.StringFixed(2))
}
