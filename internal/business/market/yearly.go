package market

import (
	"math"

	"github.com/carcrafter/market-api/pkg/model"
)

// PriceTrendsByYear aggregates prices per model year. PriceChange is the
// percent change of the mean price against the previous year present in the
// data; the first year has no previous year and reports NaN.
func (a *Analyzer) PriceTrendsByYear() (map[int]model.YearTrend, error) {
	if err := a.require(colYear, colPrice, colKilometers); err != nil {
		return nil, err
	}
	return priceTrendsByYear(a.listings()), nil
}

func priceTrendsByYear(listings []model.Listing) map[int]model.YearTrend {
	years, byYear := listingsByYear(listings)

	out := make(map[int]model.YearTrend, len(years))
	prev := math.NaN()
	for _, y := range years {
		rows := byYear[y]
		prices := column(rows, priceOf)
		t := model.YearTrend{
			PriceMean:            round2(mean(prices)),
			PriceMedian:          round2(median(prices)),
			PriceCount:           len(rows),
			KilometersDrivenMean: round2(mean(column(rows, mileageOf))),
			DepreciationRateMean: round2(meanDepreciation(rows)),
		}
		t.PriceChange = round2((t.PriceMean - prev) / prev * 100)
		prev = t.PriceMean
		out[y] = t
	}
	return out
}
