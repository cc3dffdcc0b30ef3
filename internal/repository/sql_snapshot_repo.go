package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/carcrafter/market-api/internal/business/market"
	"github.com/carcrafter/market-api/pkg/model"
)

// createdAtLayout sorts lexically in creation order, so text columns work on
// both sqlite and postgres.
const createdAtLayout = "2006-01-02T15:04:05.000000000Z07:00"

// SQLSnapshotRepository stores market report snapshots in a SQL database.
type SQLSnapshotRepository struct {
	db      *sql.DB
	dialect string
}

// NewSQLSnapshotRepository wraps an open database. dialect is "sqlite" or
// "postgres" and only affects placeholder syntax.
func NewSQLSnapshotRepository(db *sql.DB, dialect string) *SQLSnapshotRepository {
	return &SQLSnapshotRepository{db: db, dialect: dialect}
}

func (r *SQLSnapshotRepository) Save(ctx context.Context, s model.ReportSnapshot) error {
	if s.ID == "" {
		return fmt.Errorf("snapshot id is required")
	}
	_, err := r.db.ExecContext(ctx, r.rebind(`
		INSERT INTO report_snapshots (id, created_at, dataset_fingerprint, total_listings, payload)
		VALUES (?, ?, ?, ?, ?)`),
		s.ID, s.CreatedAt.UTC().Format(createdAtLayout), s.DatasetFingerprint, s.TotalListings, string(s.Payload))
	if err != nil {
		return fmt.Errorf("save snapshot %s: %w", s.ID, err)
	}
	return nil
}

func (r *SQLSnapshotRepository) Get(ctx context.Context, id string) (model.ReportSnapshot, error) {
	row := r.db.QueryRowContext(ctx, r.rebind(`
		SELECT id, created_at, dataset_fingerprint, total_listings, payload
		FROM report_snapshots WHERE id = ?`), id)

	var (
		s         model.ReportSnapshot
		createdAt string
		payload   string
	)
	err := row.Scan(&s.ID, &createdAt, &s.DatasetFingerprint, &s.TotalListings, &payload)
	if errors.Is(err, sql.ErrNoRows) {
		return model.ReportSnapshot{}, market.ErrSnapshotNotFound
	}
	if err != nil {
		return model.ReportSnapshot{}, fmt.Errorf("get snapshot %s: %w", id, err)
	}
	if s.CreatedAt, err = time.Parse(createdAtLayout, createdAt); err != nil {
		return model.ReportSnapshot{}, fmt.Errorf("parse created_at of %s: %w", id, err)
	}
	s.Payload = json.RawMessage(payload)
	return s, nil
}

func (r *SQLSnapshotRepository) List(ctx context.Context, limit int) ([]model.ReportSnapshot, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := r.db.QueryContext(ctx, r.rebind(`
		SELECT id, created_at, dataset_fingerprint, total_listings
		FROM report_snapshots ORDER BY created_at DESC LIMIT ?`), limit)
	if err != nil {
		return nil, fmt.Errorf("list snapshots: %w", err)
	}
	defer rows.Close()

	var out []model.ReportSnapshot
	for rows.Next() {
		var (
			s         model.ReportSnapshot
			createdAt string
		)
		if err := rows.Scan(&s.ID, &createdAt, &s.DatasetFingerprint, &s.TotalListings); err != nil {
			return nil, fmt.Errorf("scan snapshot: %w", err)
		}
		if s.CreatedAt, err = time.Parse(createdAtLayout, createdAt); err != nil {
			return nil, fmt.Errorf("parse created_at of %s: %w", s.ID, err)
		}
		out = append(out, s)
	}
	return out, rows.Err()
}

// rebind turns ? placeholders into $n for postgres.
func (r *SQLSnapshotRepository) rebind(query string) string {
	if r.dialect != "postgres" {
		return query
	}
	var b strings.Builder
	n := 0
	for _, ch := range query {
		if ch == '?' {
			n++
			b.WriteString("$" + strconv.Itoa(n))
			continue
		}
		b.WriteRune(ch)
	}
	return b.String()
}
