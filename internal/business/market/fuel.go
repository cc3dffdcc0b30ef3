package market

import "github.com/carcrafter/market-api/pkg/model"

const (
	popularCompanies = 5
	preferredCities  = 5
)

// FuelTypeAnalysis computes the per-fuel-type market objects.
func (a *Analyzer) FuelTypeAnalysis() (map[string]model.FuelTypeAnalysis, error) {
	if err := a.require(colFuelType, colPrice, colYear, colKilometers, colCompany, colCity, colMaintenanceLevel); err != nil {
		return nil, err
	}
	return fuelTypeAnalysis(a.listings()), nil
}

func fuelTypeAnalysis(listings []model.Listing) map[string]model.FuelTypeAnalysis {
	total := len(listings)
	out := make(map[string]model.FuelTypeAnalysis)
	for fuel, rows := range groupBy(listings, fuelOf) {
		prices := column(rows, priceOf)
		lo, hi := minMax(prices)
		out[fuel] = model.FuelTypeAnalysis{
			MarketShare:      percent(len(rows), total),
			AveragePrice:     mean(prices),
			MedianPrice:      median(prices),
			PriceRange:       model.PriceRange{Min: lo, Max: hi},
			AverageAge:       mean(column(rows, ageOf)),
			AverageMileage:   mean(column(rows, mileageOf)),
			DepreciationRate: meanDepreciation(rows),
			PopularCompanies: topCounts(rows, companyOf, popularCompanies),
			CityPreference:   topCounts(rows, cityOf, preferredCities),
			MaintenanceLevel: valueCounts(rows, maintenanceOf),
		}
	}
	return out
}
