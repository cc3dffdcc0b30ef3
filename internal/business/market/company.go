package market

import (
	"math"
	"strings"

	"github.com/carcrafter/market-api/pkg/model"
)

const popularModels = 5

// CompanyTrends computes the per-company trend objects.
func (a *Analyzer) CompanyTrends() (map[string]model.CompanyTrend, error) {
	if err := a.require(colCompany, colModel, colPrice, colYear, colKilometers, colAccidents, colInsuranceEligible); err != nil {
		return nil, err
	}
	return companyTrends(a.listings()), nil
}

// CompanyComparison returns the trend objects of the named companies that
// exist in the dataset; unknown names are ignored.
func (a *Analyzer) CompanyComparison(companies []string) (map[string]model.CompanyTrend, error) {
	trends, err := a.CompanyTrends()
	if err != nil {
		return nil, err
	}
	out := make(map[string]model.CompanyTrend, len(companies))
	for _, c := range companies {
		if t, ok := trends[c]; ok {
			out[c] = t
		}
	}
	return out, nil
}

func companyTrends(listings []model.Listing) map[string]model.CompanyTrend {
	total := len(listings)
	out := make(map[string]model.CompanyTrend)
	for company, rows := range groupBy(listings, companyOf) {
		prices := column(rows, priceOf)
		depreciation := meanDepreciation(rows)

		out[company] = model.CompanyTrend{
			Stats: model.CompanyStats{
				PriceMean:            round2(mean(prices)),
				PriceMedian:          round2(median(prices)),
				PriceStd:             round2(stdDev(prices)),
				PriceCount:           len(rows),
				CarAgeMean:           round2(mean(column(rows, ageOf))),
				KilometersDrivenMean: round2(mean(column(rows, mileageOf))),
				DepreciationRateMean: round2(depreciation),
				PricePerKmMean:       round2(mean(column(rows, pricePerKmOf))),
				MarketShare:          round2(percent(len(rows), total)),
			},
			PriceTrend:       priceTrend(rows),
			PopularModels:    topCounts(rows, modelOf, popularModels),
			AvgDepreciation:  depreciation,
			ReliabilityScore: reliabilityScore(rows),
		}
	}
	return out
}

// priceTrend compares recent (age <= 3) against older listings. It is Stable
// when either group is empty.
func priceTrend(rows []model.Listing) string {
	recent := filter(rows, func(l model.Listing) bool { return l.CarAge <= recentAgeYears })
	older := filter(rows, func(l model.Listing) bool { return l.CarAge > recentAgeYears })
	if len(recent) == 0 || len(older) == 0 {
		return model.TrendStable
	}
	if mean(column(recent, priceOf)) > mean(column(older, priceOf)) {
		return model.TrendIncreasing
	}
	return model.TrendDecreasing
}

// reliabilityScore is a 0-100 composite of depreciation, accident rate and
// insurance eligibility. Unknown depreciation leaves the score unadjusted.
func reliabilityScore(rows []model.Listing) float64 {
	score := 50.0

	switch dep := meanDepreciation(rows); {
	case dep < -10:
		score += 20
	case dep < 0:
		score += 10
	case dep > 20:
		score -= 20
	}

	accidentRate := fraction(rows, func(l model.Listing) bool { return l.PreviousAccidents > 0 })
	if accidentRate < 0.2 {
		score += 15
	} else if accidentRate > 0.5 {
		score -= 15
	}

	insured := fraction(rows, func(l model.Listing) bool { return strings.EqualFold(l.InsuranceEligible, "Yes") })
	if !math.IsNaN(insured) {
		score += insured * 15
	}

	return math.Max(0, math.Min(100, score))
}
