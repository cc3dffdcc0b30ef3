package market

import (
	"math"

	"github.com/carcrafter/market-api/pkg/model"
)

// Match levels of the similar-car search, from most to least specific.
const (
	MatchExact       = "exact"
	MatchCompanyYear = "company_year"
	MatchCompany     = "company"
	MatchMarket      = "market"
)

const vehicleTopCities = 10

// similarCars returns the listings closest to q: same company, model and
// year, else same company and year, else same company.
func (a *Analyzer) similarCars(q model.VehicleQuery) ([]model.Listing, string) {
	rows := a.listings()
	levels := []struct {
		name  string
		match func(model.Listing) bool
	}{
		{MatchExact, func(l model.Listing) bool { return l.Company == q.Company && l.Model == q.Model && l.Year == q.Year }},
		{MatchCompanyYear, func(l model.Listing) bool { return l.Company == q.Company && l.Year == q.Year }},
		{MatchCompany, func(l model.Listing) bool { return l.Company == q.Company }},
	}
	for _, lvl := range levels {
		if found := filter(rows, lvl.match); len(found) > 0 {
			return found, lvl.name
		}
	}
	return nil, ""
}

// VehicleInfo describes the dataset context of a queried vehicle.
func (a *Analyzer) VehicleInfo(q model.VehicleQuery) model.VehicleInfo {
	similar, _ := a.similarCars(q)
	if len(similar) == 0 {
		return model.VehicleInfo{Message: "No similar cars found in dataset"}
	}

	rows := a.listings()
	prices := column(similar, priceOf)
	lo, hi := minMax(prices)
	std := stdDev(prices)
	if math.IsNaN(std) {
		std = 0
	}
	years := column(similar, yearOf)
	minYear, maxYear := minMax(years)

	return model.VehicleInfo{
		SimilarCarsFound: len(similar),
		PriceStatistics: &model.PriceStatistics{
			Average:           round2(mean(prices)),
			Minimum:           round2(lo),
			Maximum:           round2(hi),
			StandardDeviation: round2(std),
		},
		FuelTypeDistribution:     valueCounts(similar, fuelOf),
		TransmissionDistribution: valueCounts(similar, transmissionOf),
		ConditionDistribution:    valueCounts(similar, conditionOf),
		TopCities:                topCounts(similar, cityOf, vehicleTopCities),
		YearRange:                &model.YearRange{Min: int(minYear), Max: int(maxYear)},
		AverageKilometers:        math.Round(mean(column(similar, mileageOf))),
		DataAvailability: model.DataAvailability{
			ExactMatch: count(rows, func(l model.Listing) bool {
				return l.Company == q.Company && l.Model == q.Model && l.Year == q.Year
			}) > 0,
			CompanyYearMatch: count(rows, func(l model.Listing) bool { return l.Company == q.Company && l.Year == q.Year }) > 0,
			CompanyMatch:     count(rows, func(l model.Listing) bool { return l.Company == q.Company }) > 0,
		},
	}
}

// BaselinePrice estimates a price as the median of the closest matching
// listings, falling back to the whole market. It reports the match level used;
// ok is false only when the dataset holds no prices at all.
func (a *Analyzer) BaselinePrice(q model.VehicleQuery) (price float64, level string, ok bool) {
	similar, level := a.similarCars(q)
	if len(similar) == 0 {
		similar, level = a.listings(), MatchMarket
	}
	price = median(column(similar, priceOf))
	if math.IsNaN(price) {
		return 0, "", false
	}
	return round2(price), level, true
}
