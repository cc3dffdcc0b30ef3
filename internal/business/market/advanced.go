package market

import (
	"fmt"
	"math"

	"github.com/carcrafter/market-api/pkg/model"
)

// Cluster characterisation thresholds.
const (
	luxuryClusterPrice = 800_000
	budgetClusterPrice = 200_000
	newClusterAge      = 3
	vintageClusterAge  = 10
)

// AdvancedAnalytics correlates price with the numeric columns, segments the
// market with k-means and reports the elasticity indicators.
func (a *Analyzer) AdvancedAnalytics() (model.AdvancedAnalytics, error) {
	if err := a.require(colPrice, colYear, colKilometers, colEngineSize, colPower, colFuelType, colCompany); err != nil {
		return model.AdvancedAnalytics{}, err
	}
	rows := a.listings()

	labels, err := ClusterListings(rows, clusterCount)
	if err != nil {
		return model.AdvancedAnalytics{}, err
	}

	return model.AdvancedAnalytics{
		Correlations:    priceCorrelations(rows),
		MarketSegments:  clusterSummaries(rows, labels, clusterCount),
		PriceElasticity: priceElasticity(rows),
	}, nil
}

// priceCorrelations uses mean-imputed columns. The strongest correlates are
// chosen in feature order; NaN coefficients are never chosen.
func priceCorrelations(rows []model.Listing) model.Correlations {
	price := impute(column(rows, priceOf))
	out := model.Correlations{PriceCorrelations: make(map[string]float64, len(clusterFeatures))}

	maxCorr, minCorr := math.Inf(-1), math.Inf(1)
	for _, f := range clusterFeatures {
		r := pearson(price, impute(column(rows, f.get)))
		out.PriceCorrelations[f.name] = r
		if math.IsNaN(r) {
			continue
		}
		if r > maxCorr {
			maxCorr, out.StrongestPositive = r, f.name
		}
		if r < minCorr {
			minCorr, out.StrongestNegative = r, f.name
		}
	}
	return out
}

func clusterSummaries(rows []model.Listing, labels []int, k int) map[string]model.ClusterSummary {
	members := make([][]model.Listing, k)
	for i, l := range rows {
		members[labels[i]] = append(members[labels[i]], l)
	}

	out := make(map[string]model.ClusterSummary, k)
	for c, m := range members {
		avgPrice := mean(column(m, priceOf))
		avgAge := mean(column(m, ageOf))
		out[fmt.Sprintf("Cluster_%d", c)] = model.ClusterSummary{
			Size:            len(m),
			AvgPrice:        avgPrice,
			AvgAge:          avgAge,
			DominantFuel:    mode(m, fuelOf),
			DominantCompany: mode(m, companyOf),
			Characteristics: describeCluster(len(m), avgPrice, avgAge),
		}
	}
	return out
}

func describeCluster(size int, avgPrice, avgAge float64) string {
	switch {
	case size == 0:
		return "Empty cluster"
	case avgPrice > luxuryClusterPrice:
		return "Luxury segment with premium vehicles"
	case avgPrice < budgetClusterPrice:
		return "Budget segment with affordable options"
	case avgAge < newClusterAge:
		return "New car segment with recent models"
	case avgAge > vintageClusterAge:
		return "Vintage/Classic car segment"
	default:
		return "Mid-market segment with balanced features"
	}
}

// priceElasticity reports |r| of price against age, mileage and engine size,
// each over the rows where both values are present.
func priceElasticity(rows []model.Listing) model.PriceElasticity {
	price := column(rows, priceOf)
	return model.PriceElasticity{
		AgeSensitivity:     math.Abs(pearson(price, column(rows, ageOf))),
		MileageSensitivity: math.Abs(pearson(price, column(rows, mileageOf))),
		EngineSensitivity:  math.Abs(pearson(price, column(rows, engineOf))),
	}
}
