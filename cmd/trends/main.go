// Package main provides the trends CLI, which runs the market aggregations
// against a local dataset without starting the API server.
package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

func main() {
	_ = godotenv.Load(".env.local", ".env")

	if err := newRootCommand().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func newRootCommand() *cobra.Command {
	opts := &rootOptions{}
	root := &cobra.Command{
		Use:   "trends",
		Short: "Car market trends from the command line",
		Long: `trends loads the listings dataset and prints market aggregations.

Commands:
  overview   Market overview
  companies  Per-company trends
  report     Full market report as JSON
  charts     Render the report dashboard to an HTML file
  snapshot   Persist a report snapshot to the configured store`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.PersistentFlags().StringVar(&opts.dataset, "dataset", "", "primary CSV (default $DATASET_PATH)")
	root.PersistentFlags().StringVar(&opts.additional, "additional", "", "secondary CSV (default $ADDITIONAL_DATASET_PATH)")
	root.PersistentFlags().IntVar(&opts.year, "current-year", 0, "reference year for car age (default wall clock)")
	root.PersistentFlags().BoolVarP(&opts.verbose, "verbose", "v", false, "log dataset loading")

	root.AddCommand(
		newOverviewCommand(opts),
		newCompaniesCommand(opts),
		newReportCommand(opts),
		newChartsCommand(opts),
		newSnapshotCommand(opts),
	)
	return root
}
