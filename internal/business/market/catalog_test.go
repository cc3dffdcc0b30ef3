package market

import (
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/carcrafter/market-api/pkg/model"
)

func TestCatalogLists(t *testing.T) {
	a := fixtureAnalyzer(t)

	if diff := cmp.Diff([]string{"BMW", "Honda", "Hyundai", "Mahindra", "Maruti", "Tata"}, a.Companies()); diff != "" {
		t.Errorf("companies (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]string{"Creta", "i20"}, a.ModelsByCompany("Hyundai")); diff != "" {
		t.Errorf("Hyundai models (-want +got):\n%s", diff)
	}
	years := a.Years()
	if years[0] != 2023 || years[len(years)-1] != 2014 {
		t.Errorf("years = %v, want newest first", years)
	}
	if diff := cmp.Diff([]string{"Diesel", "Electric", "Petrol"}, a.FuelTypes()); diff != "" {
		t.Errorf("fuel types (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]string{"1", "2", "3"}, a.OwnerTypes()); diff != "" {
		t.Errorf("owner types (-want +got):\n%s", diff)
	}

	info := a.DatasetInfo()
	if info.TotalRecords != 12 || info.SkippedRows != 1 || info.TotalCompanies != 6 {
		t.Errorf("dataset info = %+v", info)
	}
	if info.YearRange != (model.YearRange{Min: 2014, Max: 2023}) {
		t.Errorf("year range = %+v", info.YearRange)
	}
	if info.PriceRange != (model.PriceRange{Min: 180_000, Max: 2_800_000}) {
		t.Errorf("price range = %+v", info.PriceRange)
	}
}

func TestModelsFor(t *testing.T) {
	a := fixtureAnalyzer(t)

	exact := a.ModelsFor("Maruti", 2020, "")
	if !exact.ExactYearAvailable || exact.Note != "Models available in 2020" {
		t.Errorf("exact = %+v", exact)
	}
	if diff := cmp.Diff([]string{"Swift"}, exact.Models); diff != "" {
		t.Errorf("exact models (-want +got):\n%s", diff)
	}

	nearby := a.ModelsFor("Maruti", 2019, "")
	if nearby.ExactYearAvailable || nearby.Note != "Models available around 2019 (±2 years)" || nearby.FuelTypeFiltered != nil {
		t.Errorf("nearby = %+v", nearby)
	}

	fallback := a.ModelsFor("Maruti", 2010, "Petrol")
	if diff := cmp.Diff([]string{"Baleno", "Swift"}, fallback.Models); diff != "" {
		t.Errorf("fallback models (-want +got):\n%s", diff)
	}
	if fallback.Note != "All models for Maruti with Petrol fuel (no data for 2010)" {
		t.Errorf("fallback note = %q", fallback.Note)
	}
	if fallback.FuelTypeFiltered == nil || *fallback.FuelTypeFiltered != "Petrol" {
		t.Errorf("fuel filter not echoed: %v", fallback.FuelTypeFiltered)
	}
}

func TestCars(t *testing.T) {
	a := fixtureAnalyzer(t)

	page := a.Cars(model.CarQuery{Company: "Maruti"}, 2)
	if page.TotalFound != 2 || page.TotalInDataset != 12 {
		t.Errorf("page = %d found of %d", page.TotalFound, page.TotalInDataset)
	}

	page = a.Cars(model.CarQuery{Text: "creta"}, 0)
	if page.TotalFound != 2 {
		t.Errorf("text search found %d, want 2", page.TotalFound)
	}

	page = a.Cars(model.CarQuery{MinPrice: 2_000_000, FuelType: "Diesel"}, 0)
	if page.TotalFound != 2 {
		t.Errorf("price filter found %d, want 2", page.TotalFound)
	}

	page = a.Cars(model.CarQuery{Company: "Ferrari"}, 0)
	if page.Cars == nil || page.TotalFound != 0 {
		t.Errorf("empty page should carry an empty slice, got %+v", page)
	}

	car, ok := a.CarByID("8")
	if !ok || car.Model != "X5" {
		t.Errorf("CarByID(8) = %+v, %v", car, ok)
	}
	if _, ok := a.CarByID("999"); ok {
		t.Error("CarByID(999) should not be found")
	}
}

func TestBaselinePrice(t *testing.T) {
	a := fixtureAnalyzer(t)
	tests := []struct {
		name      string
		q         model.VehicleQuery
		wantPrice float64
		wantLevel string
	}{
		{"exact", model.VehicleQuery{Company: "Hyundai", Model: "Creta", Year: 2021}, 1_250_000, MatchExact},
		{"company and year", model.VehicleQuery{Company: "Hyundai", Model: "Verna", Year: 2021}, 1_250_000, MatchCompanyYear},
		{"company", model.VehicleQuery{Company: "Hyundai", Model: "Verna", Year: 2010}, 900_000, MatchCompany},
		{"market", model.VehicleQuery{Company: "Ferrari", Model: "Roma", Year: 2022}, 750_000, MatchMarket},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			price, level, ok := a.BaselinePrice(tt.q)
			if !ok || price != tt.wantPrice || level != tt.wantLevel {
				t.Errorf("BaselinePrice = (%v, %q, %v), want (%v, %q, true)", price, level, ok, tt.wantPrice, tt.wantLevel)
			}
		})
	}
}

func TestVehicleInfo(t *testing.T) {
	a := fixtureAnalyzer(t)

	info := a.VehicleInfo(model.VehicleQuery{Company: "Hyundai", Model: "Creta", Year: 2019})
	if info.SimilarCarsFound != 1 {
		t.Fatalf("similar = %d, want 1", info.SimilarCarsFound)
	}
	if info.PriceStatistics.StandardDeviation != 0 || info.PriceStatistics.Average != 900_000 {
		t.Errorf("price statistics = %+v", info.PriceStatistics)
	}
	want := model.DataAvailability{ExactMatch: true, CompanyYearMatch: true, CompanyMatch: true}
	if info.DataAvailability != want {
		t.Errorf("availability = %+v", info.DataAvailability)
	}

	none := a.VehicleInfo(model.VehicleQuery{Company: "Ferrari"})
	if none.SimilarCarsFound != 0 || none.Message == "" || none.PriceStatistics != nil {
		t.Errorf("unknown company = %+v", none)
	}
}
