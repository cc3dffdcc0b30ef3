package market

import (
	"math"
	"testing"

	"github.com/carcrafter/market-api/pkg/model"
)

func TestPriceCategory(t *testing.T) {
	tests := []struct {
		price float64
		want  string
	}{
		{0, ""},
		{-5, ""},
		{math.NaN(), ""},
		{1, model.CategoryBudget},
		{200_000, model.CategoryBudget},
		{200_001, model.CategoryMidRange},
		{500_000, model.CategoryMidRange},
		{1_000_000, model.CategoryPremium},
		{1_000_001, model.CategoryLuxury},
	}
	for _, tt := range tests {
		if got := PriceCategory(tt.price); got != tt.want {
			t.Errorf("PriceCategory(%v) = %q, want %q", tt.price, got, tt.want)
		}
	}
}

func TestMarketSegmentPrecedence(t *testing.T) {
	tests := []struct {
		name string
		l    model.Listing
		want string
	}{
		{"electric beats luxury", model.Listing{FuelType: "Electric", Price: 1_500_000, EngineSize: 3000}, model.SegmentElectric},
		{"engine beats price", model.Listing{FuelType: "Petrol", Price: 5_000_000, EngineSize: 2500}, model.SegmentPerformance},
		{"luxury", model.Listing{FuelType: "Petrol", Price: 1_200_000, EngineSize: 1500}, model.SegmentLuxury},
		{"premium diesel", model.Listing{FuelType: "Diesel", Price: 600_000, EngineSize: 1500, CarAge: 1}, model.SegmentPremiumDiesel},
		{"recent", model.Listing{FuelType: "Petrol", Price: 600_000, EngineSize: 1200, CarAge: 3}, model.SegmentNewRecent},
		{"standard", model.Listing{FuelType: "Diesel", Price: 400_000, EngineSize: 1200, CarAge: 8}, model.SegmentStandard},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := MarketSegment(tt.l); got != tt.want {
				t.Errorf("MarketSegment = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestDerive(t *testing.T) {
	l := model.Listing{Year: 2020, Price: 900_000, KilometersDriven: 9999, ReferencePrice: ptr(1_000_000), FuelType: "Petrol", EngineSize: 1200}
	Derive(&l, 2024)

	if l.CarAge != 4 {
		t.Errorf("CarAge = %d, want 4", l.CarAge)
	}
	if l.PricePerKm != 90 {
		t.Errorf("PricePerKm = %v, want 90", l.PricePerKm)
	}
	if l.DepreciationRate == nil || *l.DepreciationRate != 10 {
		t.Errorf("DepreciationRate = %v, want 10", l.DepreciationRate)
	}
	if l.PriceCategory != model.CategoryPremium || l.MarketSegment != model.SegmentStandard {
		t.Errorf("category/segment = %q/%q", l.PriceCategory, l.MarketSegment)
	}

	zero := model.Listing{Year: 2020, Price: 1, ReferencePrice: ptr(0)}
	Derive(&zero, 2024)
	if zero.DepreciationRate != nil {
		t.Errorf("zero reference price should leave depreciation unset")
	}
}
