package charts

import (
	"bytes"
	"math"
	"strings"
	"testing"

	"github.com/carcrafter/market-api/pkg/model"
)

func TestRenderDashboard(t *testing.T) {
	r := model.MarketReport{
		PriceTrendsByYear: map[int]model.YearTrend{
			2020: {PriceMean: 1_000_000, PriceMedian: 950_000, PriceChange: math.NaN()},
			2021: {PriceMean: 1_100_000, PriceMedian: 990_000, PriceChange: 10},
		},
		CompanyTrends: map[string]model.CompanyTrend{
			"Maruti":  {Stats: model.CompanyStats{MarketShare: 60}},
			"Hyundai": {Stats: model.CompanyStats{MarketShare: 40}},
		},
		FuelTypeAnalysis: map[string]model.FuelTypeAnalysis{
			"Petrol": {MarketShare: 70},
			"Diesel": {MarketShare: 30},
		},
		CityMarketAnalysis: map[string]model.CityAnalysis{
			"Delhi": {AveragePrice: 800_000, MedianPrice: 700_000, PriceStd: math.NaN()},
		},
	}

	var buf bytes.Buffer
	if err := RenderDashboard(&buf, r); err != nil {
		t.Fatalf("RenderDashboard: %v", err)
	}
	html := buf.String()
	for _, want := range []string{"Price by model year", "Market share by company", "Fuel type share", "Prices by city", "Hyundai", "2021"} {
		if !strings.Contains(html, want) {
			t.Errorf("dashboard missing %q", want)
		}
	}
}

func TestFinite(t *testing.T) {
	if finite(math.NaN()) != 0 || finite(math.Inf(-1)) != 0 {
		t.Error("non-finite values should render as 0")
	}
	if finite(12.346) != 12.35 {
		t.Errorf("finite(12.346) = %v", finite(12.346))
	}
}
