package market

import (
	"sort"

	"github.com/carcrafter/market-api/pkg/model"
)

const (
	trendingShareFloor   = 5.0
	electricShareCeiling = 5.0
	valueRetentionFloor  = -5.0
	emergingSegmentPool  = 3
)

// MarketPredictions derives heuristic insights from the company and fuel-type
// aggregations. These are threshold rules, not forecasts.
func (a *Analyzer) MarketPredictions() (model.MarketPredictions, error) {
	trends, err := a.CompanyTrends()
	if err != nil {
		return model.MarketPredictions{}, err
	}
	fuels, err := a.FuelTypeAnalysis()
	if err != nil {
		return model.MarketPredictions{}, err
	}
	return marketPredictions(a.listings(), trends, fuels), nil
}

func marketPredictions(listings []model.Listing, trends map[string]model.CompanyTrend, fuels map[string]model.FuelTypeAnalysis) model.MarketPredictions {
	p := model.MarketPredictions{
		TrendingUp:       []model.TrendingCompany{},
		TrendingDown:     []model.TrendingCompany{},
		StableMarkets:    []model.TrendingCompany{},
		EmergingSegments: []model.EmergingSegment{},
		Recommendations:  []model.Recommendation{},
	}

	companies := make([]string, 0, len(trends))
	for c := range trends {
		companies = append(companies, c)
	}
	sort.Strings(companies)

	valueRetention := false
	for _, c := range companies {
		t := trends[c]
		entry := model.TrendingCompany{
			Company:     c,
			MarketShare: t.Stats.MarketShare,
			AvgPrice:    t.Stats.PriceMean,
		}
		switch {
		case t.PriceTrend == model.TrendIncreasing && t.Stats.MarketShare > trendingShareFloor:
			score := t.ReliabilityScore
			entry.ReliabilityScore = &score
			p.TrendingUp = append(p.TrendingUp, entry)
		case t.PriceTrend == model.TrendDecreasing:
			p.TrendingDown = append(p.TrendingDown, entry)
		case t.PriceTrend == model.TrendStable && t.Stats.MarketShare > trendingShareFloor:
			p.StableMarkets = append(p.StableMarkets, entry)
		}
		if t.AvgDepreciation < valueRetentionFloor {
			valueRetention = true
		}
	}

	for _, seg := range topN(countBy(listings, segmentOf), emergingSegmentPool) {
		if seg.Label == model.SegmentElectric || seg.Label == model.SegmentPerformance {
			p.EmergingSegments = append(p.EmergingSegments, model.EmergingSegment{
				Segment:         seg.Label,
				MarketShare:     percent(seg.Count, len(listings)),
				GrowthPotential: "High",
			})
		}
	}

	if ev, ok := fuels["Electric"]; ok && ev.MarketShare < electricShareCeiling {
		p.Recommendations = append(p.Recommendations, model.Recommendation{
			Type:        "Investment Opportunity",
			Description: "Electric vehicle market is emerging with high growth potential",
			Confidence:  "High",
		})
	}
	if valueRetention {
		p.Recommendations = append(p.Recommendations, model.Recommendation{
			Type:        "Value Retention",
			Description: "Some brands showing excellent value retention - good for investment",
			Confidence:  "Medium",
		})
	}
	return p
}
