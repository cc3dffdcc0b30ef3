package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"cloud.google.com/go/firestore"
	"google.golang.org/api/iterator"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/carcrafter/market-api/internal/business/market"
	"github.com/carcrafter/market-api/pkg/model"
)

const snapshotCollection = "market_report_snapshots"

// SnapshotRepository stores market report snapshots in Firestore.
type SnapshotRepository struct {
	client *firestore.Client
}

func NewSnapshotRepository(client *firestore.Client) *SnapshotRepository {
	return &SnapshotRepository{client: client}
}

// snapshotDoc keeps the report as a JSON string; Firestore maps cannot hold
// the integer-keyed year table as-is.
type snapshotDoc struct {
	ID                 string    `firestore:"id"`
	CreatedAt          time.Time `firestore:"createdAt"`
	DatasetFingerprint string    `firestore:"datasetFingerprint"`
	TotalListings      int       `firestore:"totalListings"`
	Payload            string    `firestore:"payload"`
}

func (r *SnapshotRepository) Save(ctx context.Context, s model.ReportSnapshot) error {
	if s.ID == "" {
		return fmt.Errorf("snapshot id is required")
	}
	doc := snapshotDoc{
		ID:                 s.ID,
		CreatedAt:          s.CreatedAt.UTC(),
		DatasetFingerprint: s.DatasetFingerprint,
		TotalListings:      s.TotalListings,
		Payload:            string(s.Payload),
	}
	if _, err := r.client.Collection(snapshotCollection).Doc(s.ID).Set(ctx, doc); err != nil {
		return fmt.Errorf("save snapshot %s: %w", s.ID, err)
	}
	return nil
}

func (r *SnapshotRepository) Get(ctx context.Context, id string) (model.ReportSnapshot, error) {
	snap, err := r.client.Collection(snapshotCollection).Doc(id).Get(ctx)
	if status.Code(err) == codes.NotFound {
		return model.ReportSnapshot{}, market.ErrSnapshotNotFound
	}
	if err != nil {
		return model.ReportSnapshot{}, fmt.Errorf("get snapshot %s: %w", id, err)
	}
	var doc snapshotDoc
	if err := snap.DataTo(&doc); err != nil {
		return model.ReportSnapshot{}, fmt.Errorf("decode snapshot %s: %w", id, err)
	}
	out := doc.toModel()
	out.Payload = json.RawMessage(doc.Payload)
	return out, nil
}

func (r *SnapshotRepository) List(ctx context.Context, limit int) ([]model.ReportSnapshot, error) {
	if limit <= 0 {
		limit = 20
	}
	iter := r.client.Collection(snapshotCollection).
		OrderBy("createdAt", firestore.Desc).
		Limit(limit).
		Select("id", "createdAt", "datasetFingerprint", "totalListings").
		Documents(ctx)
	defer iter.Stop()

	var out []model.ReportSnapshot
	for {
		doc, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("list snapshots: %w", err)
		}
		var d snapshotDoc
		if err := doc.DataTo(&d); err != nil {
			return nil, fmt.Errorf("decode snapshot %s: %w", doc.Ref.ID, err)
		}
		out = append(out, d.toModel())
	}
	return out, nil
}

func (d snapshotDoc) toModel() model.ReportSnapshot {
	return model.ReportSnapshot{
		ID:                 d.ID,
		CreatedAt:          d.CreatedAt,
		DatasetFingerprint: d.DatasetFingerprint,
		TotalListings:      d.TotalListings,
	}
}
