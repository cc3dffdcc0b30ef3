package market

import (
	"errors"
	"math"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/carcrafter/market-api/pkg/model"
)

func TestOverviewSmallFixture(t *testing.T) {
	ds, err := LoadDataset("testdata/small.csv", "", LoadOptions{CurrentYear: fixtureYear, Logger: quietLogger()})
	if err != nil {
		t.Fatalf("LoadDataset: %v", err)
	}
	a, err := NewAnalyzer(ds)
	if err != nil {
		t.Fatalf("NewAnalyzer: %v", err)
	}

	ov, err := a.Overview()
	if err != nil {
		t.Fatalf("Overview: %v", err)
	}
	if ov.TotalListings != 3 {
		t.Errorf("TotalListings = %d, want 3", ov.TotalListings)
	}
	sum := 0
	for _, n := range ov.FuelTypeDistribution {
		sum += n
	}
	if sum != 3 {
		t.Errorf("fuel distribution sums to %d, want 3", sum)
	}
	want := map[string]int{model.SegmentElectric: 1, model.SegmentPremiumDiesel: 1, model.SegmentNewRecent: 1}
	if diff := cmp.Diff(want, ov.MarketSegments); diff != "" {
		t.Errorf("segments mismatch (-want +got):\n%s", diff)
	}
	if ov.MedianPrice != 900_000 {
		t.Errorf("MedianPrice = %v, want 900000", ov.MedianPrice)
	}
	if !approx(ov.AverageMileage, 28666.67) {
		t.Errorf("AverageMileage = %v, want ~28666.67", ov.AverageMileage)
	}
}

func TestOverviewFixture(t *testing.T) {
	ov, err := fixtureAnalyzer(t).Overview()
	if err != nil {
		t.Fatalf("Overview: %v", err)
	}

	if ov.TotalListings != 12 || ov.TotalCompanies != 6 {
		t.Errorf("totals = %d listings / %d companies, want 12 / 6", ov.TotalListings, ov.TotalCompanies)
	}
	if ov.MedianPrice != 750_000 {
		t.Errorf("MedianPrice = %v, want 750000", ov.MedianPrice)
	}
	wantSegments := map[string]int{
		model.SegmentStandard:      6,
		model.SegmentPerformance:   2,
		model.SegmentElectric:      1,
		model.SegmentLuxury:        1,
		model.SegmentNewRecent:     1,
		model.SegmentPremiumDiesel: 1,
	}
	if diff := cmp.Diff(wantSegments, ov.MarketSegments); diff != "" {
		t.Errorf("segments mismatch (-want +got):\n%s", diff)
	}
	wantCategories := map[string]int{
		model.CategoryBudget:   1,
		model.CategoryMidRange: 4,
		model.CategoryPremium:  3,
		model.CategoryLuxury:   4,
	}
	if diff := cmp.Diff(wantCategories, ov.PriceRangeDistribution); diff != "" {
		t.Errorf("price ranges mismatch (-want +got):\n%s", diff)
	}
}

func TestEmptyDataset(t *testing.T) {
	a := analyzerFor(t)
	if _, err := a.Overview(); !errors.Is(err, ErrEmptyDataset) {
		t.Errorf("Overview err = %v, want ErrEmptyDataset", err)
	}
	if _, err := a.Report(); !errors.Is(err, ErrEmptyDataset) {
		t.Errorf("Report err = %v, want ErrEmptyDataset", err)
	}
	got, err := a.FilteredTrends(model.TrendFilter{})
	if err != nil {
		t.Fatalf("FilteredTrends: %v", err)
	}
	if diff := cmp.Diff(model.FilteredTrends{}, got); diff != "" {
		t.Errorf("empty subset should be all zeros (-want +got):\n%s", diff)
	}
}

func TestCompanyTrends(t *testing.T) {
	trends, err := fixtureAnalyzer(t).CompanyTrends()
	if err != nil {
		t.Fatalf("CompanyTrends: %v", err)
	}
	if len(trends) != 6 {
		t.Fatalf("companies = %d, want 6", len(trends))
	}

	share := 0.0
	for _, tr := range trends {
		share += tr.Stats.MarketShare
		if tr.ReliabilityScore < 0 || tr.ReliabilityScore > 100 {
			t.Errorf("reliability %v out of range", tr.ReliabilityScore)
		}
	}
	if math.Abs(share-100) > 0.5 {
		t.Errorf("market shares sum to %v, want 100", share)
	}

	maruti := trends["Maruti"]
	if maruti.PriceTrend != model.TrendIncreasing {
		t.Errorf("Maruti trend = %q, want Increasing", maruti.PriceTrend)
	}
	if maruti.Stats.PriceMean != 500_000 || maruti.Stats.PriceCount != 3 || maruti.Stats.MarketShare != 25 {
		t.Errorf("Maruti stats = %+v", maruti.Stats)
	}
	if maruti.ReliabilityScore != 65 {
		t.Errorf("Maruti reliability = %v, want 65", maruti.ReliabilityScore)
	}
	if diff := cmp.Diff(map[string]int{"Swift": 2, "Baleno": 1}, maruti.PopularModels); diff != "" {
		t.Errorf("popular models (-want +got):\n%s", diff)
	}
	if trends["Honda"].PriceTrend != model.TrendStable {
		t.Errorf("Honda has no recent listings, want Stable, got %q", trends["Honda"].PriceTrend)
	}
}

func TestCompanyTrendStableWhenAllRecent(t *testing.T) {
	a := analyzerFor(t,
		model.Listing{Company: "Kia", Model: "Sonet", Year: fixtureYear - 1, Price: 900_000},
		model.Listing{Company: "Kia", Model: "Seltos", Year: fixtureYear - 3, Price: 1_100_000},
	)
	trends, err := a.CompanyTrends()
	if err != nil {
		t.Fatalf("CompanyTrends: %v", err)
	}
	if got := trends["Kia"].PriceTrend; got != model.TrendStable {
		t.Errorf("trend = %q, want Stable", got)
	}
}

func TestReliabilityScoreClampsAtHundred(t *testing.T) {
	rows := []model.Listing{
		{Company: "Lexus", Year: 2022, Price: 6_000_000, ReferencePrice: ptr(5_000_000), InsuranceEligible: "Yes"},
		{Company: "Lexus", Year: 2021, Price: 5_500_000, ReferencePrice: ptr(4_500_000), InsuranceEligible: "yes"},
	}
	ds := NewDataset(rows, fixtureYear)
	if got := reliabilityScore(ds.Listings); got != 100 {
		t.Errorf("reliabilityScore = %v, want 100", got)
	}
}

func TestCompanyComparison(t *testing.T) {
	got, err := fixtureAnalyzer(t).CompanyComparison([]string{"BMW", "Ferrari"})
	if err != nil {
		t.Fatalf("CompanyComparison: %v", err)
	}
	if len(got) != 1 {
		t.Fatalf("got %d companies, want only BMW", len(got))
	}
	if _, ok := got["BMW"]; !ok {
		t.Error("BMW missing from comparison")
	}
}

func TestFuelTypeAnalysis(t *testing.T) {
	fuels, err := fixtureAnalyzer(t).FuelTypeAnalysis()
	if err != nil {
		t.Fatalf("FuelTypeAnalysis: %v", err)
	}
	diesel := fuels["Diesel"]
	if !approx(diesel.MarketShare, 41.67) {
		t.Errorf("diesel share = %v, want ~41.67", diesel.MarketShare)
	}
	if diesel.PriceRange.Min != 250_000 || diesel.PriceRange.Max != 2_800_000 {
		t.Errorf("diesel range = %+v", diesel.PriceRange)
	}
	if len(fuels["Petrol"].PopularCompanies) > popularCompanies {
		t.Errorf("popular companies not capped")
	}
}

func TestCityMarketAnalysis(t *testing.T) {
	cities, err := fixtureAnalyzer(t).CityMarketAnalysis()
	if err != nil {
		t.Fatalf("CityMarketAnalysis: %v", err)
	}
	mumbai, ok := cities["Mumbai"]
	if !ok {
		t.Fatal("Mumbai missing")
	}
	if mumbai.TotalListings != 3 {
		t.Errorf("Mumbai listings = %d, want 3", mumbai.TotalListings)
	}
	// X5 is the only Mumbai listing above one million.
	if !approx(mumbai.LuxuryMarketShare, 33.33) || mumbai.BudgetMarketShare != 0 {
		t.Errorf("Mumbai shares = %v/%v", mumbai.LuxuryMarketShare, mumbai.BudgetMarketShare)
	}
	if !math.IsNaN(cities["Chennai"].PriceStd) {
		t.Errorf("single-listing city should have undefined std, got %v", cities["Chennai"].PriceStd)
	}
}

func TestPriceTrendsByYear(t *testing.T) {
	a := analyzerFor(t,
		model.Listing{Company: "A", Year: 2020, Price: 1_000_000},
		model.Listing{Company: "A", Year: 2021, Price: 1_100_000},
	)
	trends, err := a.PriceTrendsByYear()
	if err != nil {
		t.Fatalf("PriceTrendsByYear: %v", err)
	}
	if !math.IsNaN(trends[2020].PriceChange) {
		t.Errorf("first year change = %v, want NaN", trends[2020].PriceChange)
	}
	if got := trends[2021].PriceChange; got != 10 {
		t.Errorf("2021 change = %v, want 10", got)
	}
}

func TestMarketPredictions(t *testing.T) {
	p, err := fixtureAnalyzer(t).MarketPredictions()
	if err != nil {
		t.Fatalf("MarketPredictions: %v", err)
	}

	names := func(cs []model.TrendingCompany) []string {
		out := []string{}
		for _, c := range cs {
			out = append(out, c.Company)
		}
		return out
	}
	if diff := cmp.Diff([]string{"Hyundai", "Maruti", "Tata"}, names(p.TrendingUp)); diff != "" {
		t.Errorf("trending up (-want +got):\n%s", diff)
	}
	if len(p.TrendingDown) != 0 {
		t.Errorf("trending down = %v, want none", names(p.TrendingDown))
	}
	if diff := cmp.Diff([]string{"BMW", "Honda", "Mahindra"}, names(p.StableMarkets)); diff != "" {
		t.Errorf("stable markets (-want +got):\n%s", diff)
	}
	for _, c := range p.TrendingUp {
		if c.ReliabilityScore == nil {
			t.Errorf("%s: trending-up entries carry a reliability score", c.Company)
		}
	}

	var segments []string
	for _, s := range p.EmergingSegments {
		segments = append(segments, s.Segment)
	}
	if diff := cmp.Diff([]string{model.SegmentPerformance, model.SegmentElectric}, segments); diff != "" {
		t.Errorf("emerging segments (-want +got):\n%s", diff)
	}
	if len(p.Recommendations) != 0 {
		t.Errorf("recommendations = %+v, want none", p.Recommendations)
	}
}

func TestMarketPredictionsRecommendations(t *testing.T) {
	rows := []model.Listing{
		{Company: "Tata", Model: "Nexon EV", Year: 2023, Price: 1_500_000, FuelType: "Electric"},
		{Company: "Toyota", Model: "Innova", Year: 2018, Price: 1_800_000, ReferencePrice: ptr(1_500_000), FuelType: "Diesel"},
	}
	for i := 0; i < 20; i++ {
		rows = append(rows, model.Listing{Company: "Maruti", Model: "Alto", Year: 2016, Price: 250_000, FuelType: "Petrol"})
	}
	p, err := analyzerFor(t, rows...).MarketPredictions()
	if err != nil {
		t.Fatalf("MarketPredictions: %v", err)
	}
	var types []string
	for _, r := range p.Recommendations {
		types = append(types, r.Type)
	}
	if diff := cmp.Diff([]string{"Investment Opportunity", "Value Retention"}, types); diff != "" {
		t.Errorf("recommendations (-want +got):\n%s", diff)
	}
}

func TestFilteredTrends(t *testing.T) {
	a := fixtureAnalyzer(t)

	got, err := a.FilteredTrends(model.TrendFilter{FuelType: "Diesel", YearStart: 2019, YearEnd: 2022})
	if err != nil {
		t.Fatalf("FilteredTrends: %v", err)
	}
	if got.TotalListings != 3 || got.MedianPrice != 1_250_000 {
		t.Errorf("got %d listings, median %v; want 3, 1250000", got.TotalListings, got.MedianPrice)
	}
	if got.PriceRange != (model.PriceRange{Min: 900_000, Max: 2_100_000}) {
		t.Errorf("range = %+v", got.PriceRange)
	}

	// A half-open year range is ignored.
	got, err = a.FilteredTrends(model.TrendFilter{FuelType: "Diesel", YearStart: 2019})
	if err != nil {
		t.Fatalf("FilteredTrends: %v", err)
	}
	if got.TotalListings != 5 {
		t.Errorf("TotalListings = %d, want all 5 diesel listings", got.TotalListings)
	}
}
