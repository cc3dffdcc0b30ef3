package market

import (
	"io"
	"log/slog"
	"testing"

	"github.com/carcrafter/market-api/pkg/model"
)

const fixtureYear = 2024

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// fixtureAnalyzer loads testdata/listings.csv with a fixed reference year.
func fixtureAnalyzer(t *testing.T) *Analyzer {
	t.Helper()
	ds, err := LoadDataset("testdata/listings.csv", "", LoadOptions{CurrentYear: fixtureYear, Logger: quietLogger()})
	if err != nil {
		t.Fatalf("LoadDataset: %v", err)
	}
	a, err := NewAnalyzer(ds)
	if err != nil {
		t.Fatalf("NewAnalyzer: %v", err)
	}
	return a
}

func analyzerFor(t *testing.T, listings ...model.Listing) *Analyzer {
	t.Helper()
	a, err := NewAnalyzer(NewDataset(listings, fixtureYear))
	if err != nil {
		t.Fatalf("NewAnalyzer: %v", err)
	}
	return a
}

func ptr(f float64) *float64 { return &f }

func approx(a, b float64) bool {
	d := a - b
	if d < 0 {
		d = -d
	}
	return d < 0.01
}
