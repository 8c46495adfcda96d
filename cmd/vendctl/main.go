// Command vendctl imports POS exports and master cost lists from the command line
// and prints sales summaries, using the same services as the API server.
//
//	vendctl import sales_jan.xlsx sales_feb.csv --commit
//	vendctl costs master_cost.xlsx
//	vendctl summary --days 14
package main

import (
	"fmt"
	"os"
)

func main() {
	if err := newRootCmd(buildFromEnv).Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
