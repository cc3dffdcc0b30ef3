package market

import (
	"errors"
	"fmt"
	"math"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"

	"github.com/carcrafter/market-api/pkg/model"
)

func TestAdvancedAnalytics(t *testing.T) {
	a := fixtureAnalyzer(t)
	before := append([]model.Listing(nil), a.Dataset().Listings...)

	got, err := a.AdvancedAnalytics()
	if err != nil {
		t.Fatalf("AdvancedAnalytics: %v", err)
	}

	if len(got.MarketSegments) != clusterCount {
		t.Fatalf("clusters = %d, want %d", len(got.MarketSegments), clusterCount)
	}
	total := 0
	for i := 0; i < clusterCount; i++ {
		c, ok := got.MarketSegments[fmt.Sprintf("Cluster_%d", i)]
		if !ok {
			t.Fatalf("Cluster_%d missing", i)
		}
		total += c.Size
	}
	if total != 12 {
		t.Errorf("cluster sizes sum to %d, want 12", total)
	}

	corr := got.Correlations.PriceCorrelations
	if len(corr) != len(clusterFeatures) {
		t.Errorf("correlations = %v", corr)
	}
	// car_age is a linear function of year.
	if math.Abs(corr[colYear]+corr[colCarAge]) > 1e-9 {
		t.Errorf("year/age correlations not opposite: %v vs %v", corr[colYear], corr[colCarAge])
	}
	if got.Correlations.StrongestPositive == "" || got.Correlations.StrongestNegative == "" {
		t.Errorf("strongest correlates not chosen: %+v", got.Correlations)
	}
	if math.Abs(got.PriceElasticity.AgeSensitivity-math.Abs(corr[colCarAge])) > 1e-9 {
		t.Errorf("age sensitivity %v != |r| %v", got.PriceElasticity.AgeSensitivity, corr[colCarAge])
	}

	if diff := cmp.Diff(before, a.Dataset().Listings, cmpopts.EquateNaNs()); diff != "" {
		t.Errorf("advanced analytics mutated the dataset (-before +after):\n%s", diff)
	}
}

func TestClusterListingsDeterministic(t *testing.T) {
	rows := fixtureAnalyzer(t).Dataset().Listings

	first, err := ClusterListings(rows, clusterCount)
	if err != nil {
		t.Fatalf("ClusterListings: %v", err)
	}
	second, err := ClusterListings(rows, clusterCount)
	if err != nil {
		t.Fatalf("ClusterListings: %v", err)
	}
	if diff := cmp.Diff(first, second); diff != "" {
		t.Errorf("labels differ between runs (-first +second):\n%s", diff)
	}
	for i, l := range first {
		if l < 0 || l >= clusterCount {
			t.Errorf("label[%d] = %d out of range", i, l)
		}
	}
}

func TestClusterListingsSeparatesObviousGroups(t *testing.T) {
	var rows []model.Listing
	for i := 0; i < 4; i++ {
		rows = append(rows, model.Listing{Year: 2022, KilometersDriven: 10_000 + float64(i), EngineSize: 1200, Power: 80, Price: 1})
		rows = append(rows, model.Listing{Year: 2005, KilometersDriven: 250_000 + float64(i), EngineSize: 3000, Power: 300, Price: 1})
	}
	ds := NewDataset(rows, fixtureYear)

	labels, err := ClusterListings(ds.Listings, 2)
	if err != nil {
		t.Fatalf("ClusterListings: %v", err)
	}
	for i := 2; i < len(labels); i += 2 {
		if labels[i] != labels[0] || labels[i+1] != labels[1] {
			t.Fatalf("labels = %v, want alternating groups", labels)
		}
	}
	if labels[0] == labels[1] {
		t.Errorf("new and old cars share cluster %d", labels[0])
	}
}

func TestAdvancedAnalyticsTooFewListings(t *testing.T) {
	a := analyzerFor(t,
		model.Listing{Company: "A", Year: 2020, Price: 1},
		model.Listing{Company: "B", Year: 2021, Price: 2},
	)
	if _, err := a.AdvancedAnalytics(); !errors.Is(err, ErrTooFewListings) {
		t.Errorf("err = %v, want ErrTooFewListings", err)
	}
}

func TestDescribeCluster(t *testing.T) {
	tests := []struct {
		size  int
		price float64
		age   float64
		want  string
	}{
		{0, math.NaN(), math.NaN(), "Empty cluster"},
		{3, 900_000, 12, "Luxury segment with premium vehicles"},
		{3, 150_000, 1, "Budget segment with affordable options"},
		{3, 500_000, 2, "New car segment with recent models"},
		{3, 500_000, 11, "Vintage/Classic car segment"},
		{3, 500_000, 6, "Mid-market segment with balanced features"},
	}
	for _, tt := range tests {
		if got := describeCluster(tt.size, tt.price, tt.age); got != tt.want {
			t.Errorf("describeCluster(%d, %v, %v) = %q, want %q", tt.size, tt.price, tt.age, got, tt.want)
		}
	}
}

func TestEmptyClusterSummary(t *testing.T) {
	rows := []model.Listing{{Company: "A", FuelType: "Petrol", Price: 100}}
	got := clusterSummaries(rows, []int{0}, 2)
	empty := got["Cluster_1"]
	if empty.Size != 0 || empty.DominantFuel != "N/A" || empty.DominantCompany != "N/A" || empty.Characteristics != "Empty cluster" {
		t.Errorf("empty cluster = %+v", empty)
	}
}

func TestWeightedPick(t *testing.T) {
	tests := []struct {
		name    string
		weights []float64
		target  float64
		want    int
	}{
		{name: "first bucket", weights: []float64{0, 2, 3}, target: 1, want: 1},
		{name: "second bucket", weights: []float64{0, 2, 3}, target: 4, want: 2},
		{name: "zero target skips centres", weights: []float64{0, 0, 5}, target: 0, want: 2},
		{name: "rounding residue takes last weighted point", weights: []float64{1, 1, 0}, target: 2 + 1e-9, want: 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := weightedPick(tt.weights, tt.target); got != tt.want {
				t.Errorf("weightedPick = %d, want %d", got, tt.want)
			}
		})
	}
}
