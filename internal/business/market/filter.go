package market

import "github.com/carcrafter/market-api/pkg/model"

// FilteredTrends summarises the listings matching f. An empty subset yields
// zeros rather than an error.
func (a *Analyzer) FilteredTrends(f model.TrendFilter) (model.FilteredTrends, error) {
	if err := a.requireColumns(colPrice); err != nil {
		return model.FilteredTrends{}, err
	}
	rows := filter(a.listings(), func(l model.Listing) bool {
		if f.FuelType != "" && l.FuelType != f.FuelType {
			return false
		}
		if f.Company != "" && l.Company != f.Company {
			return false
		}
		if f.HasYearRange() && (l.Year < f.YearStart || l.Year > f.YearEnd) {
			return false
		}
		return true
	})
	if len(rows) == 0 {
		return model.FilteredTrends{}, nil
	}

	prices := column(rows, priceOf)
	lo, hi := minMax(prices)
	return model.FilteredTrends{
		AveragePrice:      mean(prices),
		MedianPrice:       median(prices),
		PriceRange:        model.PriceRange{Min: lo, Max: hi},
		TotalListings:     len(rows),
		DepreciationTrend: meanDepreciation(rows),
	}, nil
}
