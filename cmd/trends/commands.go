package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/carcrafter/market-api/internal/business/market"
	"github.com/carcrafter/market-api/internal/platform/charts"
	"github.com/carcrafter/market-api/internal/platform/config"
	"github.com/carcrafter/market-api/internal/platform/logging"
	"github.com/carcrafter/market-api/internal/repository"
	"github.com/carcrafter/market-api/pkg/util"
)

var errNoStore = errors.New("SNAPSHOT_STORE is none; choose firestore, sqlite or postgres")

type rootOptions struct {
	dataset    string
	additional string
	year       int
	verbose    bool
}

// settings merges flags over the environment configuration.
func (o *rootOptions) settings() (config.Config, error) {
	cfg, err := config.Load()
	if err != nil {
		return config.Config{}, err
	}
	if o.dataset != "" {
		cfg.DatasetPath = o.dataset
	}
	if o.additional != "" {
		cfg.AdditionalDatasetPath = o.additional
	}
	if o.year != 0 {
		cfg.CurrentYear = o.year
	}
	return cfg, nil
}

func (o *rootOptions) logger(cfg config.Config) (*slog.Logger, error) {
	if !o.verbose {
		return slog.New(slog.NewTextHandler(io.Discard, nil)), nil
	}
	return logging.New(os.Stderr, cfg.LogLevel, cfg.LogFormat)
}

func (o *rootOptions) analyzer() (*market.Analyzer, config.Config, *slog.Logger, error) {
	cfg, err := o.settings()
	if err != nil {
		return nil, config.Config{}, nil, err
	}
	logger, err := o.logger(cfg)
	if err != nil {
		return nil, config.Config{}, nil, err
	}
	ds, err := market.LoadDataset(cfg.DatasetPath, cfg.AdditionalDatasetPath, market.LoadOptions{
		CurrentYear: cfg.CurrentYear,
		Logger:      logger,
	})
	if err != nil {
		return nil, config.Config{}, nil, err
	}
	a, err := market.NewAnalyzer(ds)
	if err != nil {
		return nil, config.Config{}, nil, err
	}
	return a, cfg, logger, nil
}

func newOverviewCommand(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "overview",
		Short: "Print the market overview",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, _, _, err := opts.analyzer()
			if err != nil {
				return err
			}
			ov, err := a.Overview()
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), renderOverview(ov))
			return nil
		},
	}
}

func newCompaniesCommand(opts *rootOptions) *cobra.Command {
	var top int
	cmd := &cobra.Command{
		Use:   "companies",
		Short: "Print per-company trends ordered by market share",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, _, _, err := opts.analyzer()
			if err != nil {
				return err
			}
			trends, err := a.CompanyTrends()
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), renderCompanies(trends, top))
			return nil
		},
	}
	cmd.Flags().IntVar(&top, "top", 20, "number of companies to show (0 for all)")
	return cmd
}

func newReportCommand(opts *rootOptions) *cobra.Command {
	var indent bool
	cmd := &cobra.Command{
		Use:   "report",
		Short: "Print the full market report as JSON",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, _, _, err := opts.analyzer()
			if err != nil {
				return err
			}
			report, err := a.Report()
			if err != nil {
				return err
			}
			enc := json.NewEncoder(cmd.OutOrStdout())
			if indent {
				enc.SetIndent("", "  ")
			}
			return enc.Encode(util.Sanitize(report))
		},
	}
	cmd.Flags().BoolVar(&indent, "indent", true, "indent the JSON output")
	return cmd
}

func newChartsCommand(opts *rootOptions) *cobra.Command {
	var out string
	cmd := &cobra.Command{
		Use:   "charts",
		Short: "Render the market dashboard to an HTML file",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, _, _, err := opts.analyzer()
			if err != nil {
				return err
			}
			report, err := a.Report()
			if err != nil {
				return err
			}
			f, err := os.Create(out)
			if err != nil {
				return fmt.Errorf("create %s: %w", out, err)
			}
			if err := charts.RenderDashboard(f, report); err != nil {
				f.Close()
				return err
			}
			if err := f.Close(); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "dashboard written to %s\n", out)
			return nil
		},
	}
	cmd.Flags().StringVarP(&out, "output", "o", "market_dashboard.html", "output HTML file")
	return cmd
}

func newSnapshotCommand(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "snapshot",
		Short: "Save a report snapshot to the configured store",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, cfg, logger, err := opts.analyzer()
			if err != nil {
				return err
			}
			store, closer, err := repository.OpenSnapshotStore(cmd.Context(), cfg, logger)
			if err != nil {
				return err
			}
			defer closer.Close()
			if store == nil {
				return errNoStore
			}
			snap, err := a.SaveSnapshot(cmd.Context(), store)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "snapshot %s saved (%d listings, dataset %s)\n",
				snap.ID, snap.TotalListings, snap.DatasetFingerprint)
			return nil
		},
	}
}
