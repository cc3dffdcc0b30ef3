package market

import "github.com/carcrafter/market-api/pkg/model"

// CityMarketAnalysis covers the ten cities with the most listings.
func (a *Analyzer) CityMarketAnalysis() (map[string]model.CityAnalysis, error) {
	if err := a.require(colCity, colPrice, colCompany, colFuelType, colYear); err != nil {
		return nil, err
	}
	return cityMarketAnalysis(a.listings()), nil
}

func cityMarketAnalysis(listings []model.Listing) map[string]model.CityAnalysis {
	total := len(listings)
	byCity := groupBy(listings, cityOf)
	out := make(map[string]model.CityAnalysis, topCities)
	for _, c := range topN(countBy(listings, cityOf), topCities) {
		rows := byCity[c.Label]
		prices := column(rows, priceOf)
		out[c.Label] = model.CityAnalysis{
			TotalListings:     len(rows),
			MarketShare:       percent(len(rows), total),
			AveragePrice:      mean(prices),
			MedianPrice:       median(prices),
			PriceStd:          stdDev(prices),
			PopularCompanies:  topCounts(rows, companyOf, popularCompanies),
			PopularFuelTypes:  valueCounts(rows, fuelOf),
			AverageCarAge:     mean(column(rows, ageOf)),
			LuxuryMarketShare: percent(count(rows, func(l model.Listing) bool { return l.Price > luxuryFloor }), len(rows)),
			BudgetMarketShare: percent(count(rows, func(l model.Listing) bool { return l.Price < budgetCeiling }), len(rows)),
		}
	}
	return out
}
