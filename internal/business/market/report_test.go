package market

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/carcrafter/market-api/pkg/model"
	"github.com/carcrafter/market-api/pkg/util"
)

func fixedClock() time.Time {
	return time.Date(2025, 1, 2, 3, 4, 5, 0, time.UTC)
}

func TestReport(t *testing.T) {
	a := fixtureAnalyzer(t)
	WithClock(fixedClock)(a)

	r, err := a.Report()
	if err != nil {
		t.Fatalf("Report: %v", err)
	}
	if r.Timestamp != "2025-01-02T03:04:05Z" {
		t.Errorf("Timestamp = %q", r.Timestamp)
	}
	if r.MarketOverview.TotalListings != 12 || len(r.CompanyTrends) != 6 || len(r.PriceTrendsByYear) != 10 {
		t.Errorf("report sections incomplete: %d listings, %d companies, %d years",
			r.MarketOverview.TotalListings, len(r.CompanyTrends), len(r.PriceTrendsByYear))
	}

	// The first year's price change is NaN until sanitized.
	if _, err := json.Marshal(util.Sanitize(r)); err != nil {
		t.Fatalf("sanitized report does not encode: %v", err)
	}
}

type memoryStore struct {
	saved []model.ReportSnapshot
}

func (m *memoryStore) Save(_ context.Context, s model.ReportSnapshot) error {
	m.saved = append(m.saved, s)
	return nil
}

func (m *memoryStore) Get(_ context.Context, id string) (model.ReportSnapshot, error) {
	for _, s := range m.saved {
		if s.ID == id {
			return s, nil
		}
	}
	return model.ReportSnapshot{}, ErrSnapshotNotFound
}

func (m *memoryStore) List(_ context.Context, limit int) ([]model.ReportSnapshot, error) {
	return m.saved, nil
}

func TestSaveSnapshot(t *testing.T) {
	a := fixtureAnalyzer(t)
	WithClock(fixedClock)(a)
	store := &memoryStore{}

	snap, err := a.SaveSnapshot(context.Background(), store)
	if err != nil {
		t.Fatalf("SaveSnapshot: %v", err)
	}
	if snap.ID == "" || snap.TotalListings != 12 || !snap.CreatedAt.Equal(fixedClock()) {
		t.Errorf("snapshot = %+v", snap)
	}
	if snap.DatasetFingerprint != a.Dataset().Fingerprint {
		t.Errorf("fingerprint = %q, want %q", snap.DatasetFingerprint, a.Dataset().Fingerprint)
	}

	var decoded map[string]any
	if err := json.Unmarshal(snap.Payload, &decoded); err != nil {
		t.Fatalf("payload is not JSON: %v", err)
	}
	if decoded["timestamp"] != "2025-01-02T03:04:05Z" {
		t.Errorf("payload timestamp = %v", decoded["timestamp"])
	}
	if len(store.saved) != 1 {
		t.Errorf("store holds %d snapshots, want 1", len(store.saved))
	}
}
