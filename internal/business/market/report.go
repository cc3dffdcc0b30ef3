package market

import (
	"fmt"
	"time"

	"github.com/carcrafter/market-api/pkg/model"
)

// Report runs every aggregation in turn and bundles the results. The first
// failing aggregation aborts the report.
func (a *Analyzer) Report() (model.MarketReport, error) {
	var (
		r   model.MarketReport
		err error
	)
	if r.MarketOverview, err = a.Overview(); err != nil {
		return model.MarketReport{}, fmt.Errorf("market overview: %w", err)
	}
	if r.CompanyTrends, err = a.CompanyTrends(); err != nil {
		return model.MarketReport{}, fmt.Errorf("company trends: %w", err)
	}
	if r.PriceTrendsByYear, err = a.PriceTrendsByYear(); err != nil {
		return model.MarketReport{}, fmt.Errorf("price trends: %w", err)
	}
	if r.FuelTypeAnalysis, err = a.FuelTypeAnalysis(); err != nil {
		return model.MarketReport{}, fmt.Errorf("fuel type analysis: %w", err)
	}
	if r.CityMarketAnalysis, err = a.CityMarketAnalysis(); err != nil {
		return model.MarketReport{}, fmt.Errorf("city market analysis: %w", err)
	}
	if r.MarketPredictions, err = a.MarketPredictions(); err != nil {
		return model.MarketReport{}, fmt.Errorf("market predictions: %w", err)
	}
	if r.AdvancedAnalytics, err = a.AdvancedAnalytics(); err != nil {
		return model.MarketReport{}, fmt.Errorf("advanced analytics: %w", err)
	}
	r.Timestamp = a.now().Format(time.RFC3339)
	return r, nil
}
