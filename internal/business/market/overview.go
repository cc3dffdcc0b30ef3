package market

import "github.com/carcrafter/market-api/pkg/model"

const topCities = 10

// Overview summarises the whole market.
func (a *Analyzer) Overview() (model.MarketOverview, error) {
	if err := a.require(colPrice, colYear, colKilometers, colCompany, colModel, colFuelType, colTransmission, colCity); err != nil {
		return model.MarketOverview{}, err
	}
	rows := a.listings()
	prices := column(rows, priceOf)

	return model.MarketOverview{
		TotalListings:            len(rows),
		AveragePrice:             mean(prices),
		MedianPrice:              median(prices),
		PriceStd:                 stdDev(prices),
		AverageAge:               mean(column(rows, ageOf)),
		AverageMileage:           mean(column(rows, mileageOf)),
		TotalCompanies:           len(countBy(rows, companyOf)),
		TotalModels:              len(countBy(rows, modelOf)),
		MarketSegments:           valueCounts(rows, segmentOf),
		FuelTypeDistribution:     valueCounts(rows, fuelOf),
		TransmissionDistribution: valueCounts(rows, transmissionOf),
		CityDistribution:         topCounts(rows, cityOf, topCities),
		PriceRangeDistribution:   valueCounts(rows, categoryOf),
	}, nil
}
