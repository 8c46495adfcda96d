package main

import (
	"encoding/json"
	"fmt"
	"io"
	"time"

	"github.com/spf13/cobra"

	"github.com/ashmitsharp/vendlens-api/internal/models"
	"github.com/ashmitsharp/vendlens-api/internal/services"
)

func newSummaryCmd(opts *rootOptions) *cobra.Command {
	var (
		summaryOpts services.SummaryOptions
		asJSON      bool
	)

	cmd := &cobra.Command{
		Use:   "summary",
		Short: "Print sales KPIs, the daily trend and top products",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			for _, d := range []string{summaryOpts.From, summaryOpts.To} {
				if d == "" {
					continue
				}
				if _, err := time.Parse(time.DateOnly, d); err != nil {
					return fmt.Errorf("invalid date %q, expected YYYY-MM-DD", d)
				}
			}

			ctx, a, err := opts.open(cmd)
			if err != nil {
				return err
			}
			defer a.Close()

			txs, err := a.Repository.GetTransactions(ctx)
			if err != nil {
				return err
			}
			summary := services.BuildSummary(txs, summaryOpts)

			out := cmd.OutOrStdout()
			if asJSON {
				enc := json.NewEncoder(out)
				enc.SetIndent("", "  ")
				return enc.Encode(summary)
			}
			printSummary(out, summary)
			return nil
		},
	}

	cmd.Flags().IntVar(&summaryOpts.Days, "days", 7, "Length of the daily sales trend")
	cmd.Flags().StringVar(&summaryOpts.From, "from", "", "First day to include (YYYY-MM-DD)")
	cmd.Flags().StringVar(&summaryOpts.To, "to", "", "Last day to include (YYYY-MM-DD)")
	cmd.Flags().BoolVar(&asJSON, "json", false, "Print the summary as JSON")
	return cmd
}

func printSummary(out io.Writer, s models.Summary) {
	k := s.KPIs
	fmt.Fprintf(out, "Transactions:  %d\n", k.TotalTransactions)
	fmt.Fprintf(out, "Total sales:   %s\n", k.TotalSales.StringFixed(2))
	fmt.Fprintf(out, "Total cost:    %s\n", k.TotalCost.StringFixed(2))
	fmt.Fprintf(out, "Total profit:  %s\n", k.TotalProfit.StringFixed(2))
	fmt.Fprintf(out, "Average value: %s\n", k.AvgTransactionValue.StringFixed(2))
	if s.PeakHour != "" {
		fmt.Fprintf(out, "Peak hour:     %s\n", s.PeakHour)
	}
	fmt.Fprintf(out, "Forecast:      %s\n", s.Forecast.StringFixed(2))

	fmt.Fprintln(out, "\nDaily sales:")
	for _, p := range s.SalesTrend {
		fmt.Fprintf(out, "  %s  %s\n", p.Date, p.Amount.StringFixed(2))
	}

	if len(s.TopProducts) > 0 {
		fmt.Fprintln(out, "\nTop products:")
		for i, p := range s.TopProducts {
			fmt.Fprintf(out, "  %d. %s (%d)\n", i+1, p.Name, p.Count)
		}
	}
}
