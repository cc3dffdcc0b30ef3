package market

import (
	"github.com/carcrafter/market-api/pkg/model"
)

// Price thresholds used by categorisation, segmentation and city shares.
const (
	budgetCeiling   = 200_000
	midRangeCeiling = 500_000
	luxuryFloor     = 1_000_000
	performanceCC   = 2000
	recentAgeYears  = 3
)

// Derive fills the computed columns of a listing in order: age, price per km,
// depreciation rate, price category, market segment.
func Derive(l *model.Listing, currentYear int) {
	l.CarAge = currentYear - l.Year
	l.PricePerKm = l.Price / (l.KilometersDriven + 1)
	l.DepreciationRate = depreciationRate(l.Price, l.ReferencePrice)
	l.PriceCategory = PriceCategory(l.Price)
	l.MarketSegment = MarketSegment(*l)
}

// depreciationRate is present only when a non-zero reference price is known.
func depreciationRate(price float64, reference *float64) *float64 {
	if reference == nil || *reference == 0 {
		return nil
	}
	rate := (*reference - price) / *reference * 100
	return &rate
}

// PriceCategory buckets a price into right-closed bins (0,200k], (200k,500k],
// (500k,1M], (1M,inf). Non-positive or NaN prices are uncategorised.
func PriceCategory(price float64) string {
	switch {
	case !(price > 0):
		return ""
	case price <= budgetCeiling:
		return model.CategoryBudget
	case price <= midRangeCeiling:
		return model.CategoryMidRange
	case price <= luxuryFloor:
		return model.CategoryPremium
	default:
		return model.CategoryLuxury
	}
}

// MarketSegment assigns the first matching segment rule. The precedence is a
// fixed business rule.
func MarketSegment(l model.Listing) string {
	switch {
	case l.FuelType == "Electric":
		return model.SegmentElectric
	case l.EngineSize > performanceCC:
		return model.SegmentPerformance
	case l.Price > luxuryFloor:
		return model.SegmentLuxury
	case l.FuelType == "Diesel" && l.Price > midRangeCeiling:
		return model.SegmentPremiumDiesel
	case l.CarAge <= recentAgeYears:
		return model.SegmentNewRecent
	default:
		return model.SegmentStandard
	}
}
