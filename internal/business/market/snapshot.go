package market

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"

	"github.com/carcrafter/market-api/pkg/model"
	"github.com/carcrafter/market-api/pkg/util"
)

// SnapshotStore persists composed reports.
type SnapshotStore interface {
	Save(ctx context.Context, s model.ReportSnapshot) error
	Get(ctx context.Context, id string) (model.ReportSnapshot, error)
	// List returns the newest snapshots first, without payloads.
	List(ctx context.Context, limit int) ([]model.ReportSnapshot, error)
}

// Snapshot composes a report and wraps its sanitized JSON in a new snapshot.
func (a *Analyzer) Snapshot() (model.ReportSnapshot, error) {
	report, err := a.Report()
	if err != nil {
		return model.ReportSnapshot{}, err
	}
	payload, err := json.Marshal(util.Sanitize(report))
	if err != nil {
		return model.ReportSnapshot{}, fmt.Errorf("encode report: %w", err)
	}
	return model.ReportSnapshot{
		ID:                 uuid.NewString(),
		CreatedAt:          a.now().UTC(),
		DatasetFingerprint: a.ds.Fingerprint,
		TotalListings:      report.MarketOverview.TotalListings,
		Payload:            payload,
	}, nil
}

// SaveSnapshot composes a snapshot and stores it.
func (a *Analyzer) SaveSnapshot(ctx context.Context, store SnapshotStore) (model.ReportSnapshot, error) {
	snap, err := a.Snapshot()
	if err != nil {
		return model.ReportSnapshot{}, err
	}
	if err := store.Save(ctx, snap); err != nil {
		return model.ReportSnapshot{}, fmt.Errorf("save snapshot: %w", err)
	}
	return snap, nil
}
