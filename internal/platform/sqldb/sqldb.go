package sqldb

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/lib/pq"
	_ "modernc.org/sqlite"
)

// Supported dialects. They double as database/sql driver names.
const (
	SQLite   = "sqlite"
	Postgres = "postgres"
)

const schema = `
CREATE TABLE IF NOT EXISTS report_snapshots (
	id                  TEXT PRIMARY KEY,
	created_at          TEXT NOT NULL,
	dataset_fingerprint TEXT NOT NULL DEFAULT '',
	total_listings      INTEGER NOT NULL DEFAULT 0,
	payload             TEXT NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_report_snapshots_created_at ON report_snapshots(created_at);
`

// Open connects to the database, waits for it to answer and creates the
// snapshot schema.
func Open(ctx context.Context, dialect, dsn string) (*sql.DB, error) {
	if dialect != SQLite && dialect != Postgres {
		return nil, fmt.Errorf("unsupported dialect %q", dialect)
	}
	db, err := sql.Open(dialect, dsn)
	if err != nil {
		return nil, fmt.Errorf("%s: open: %w", dialect, err)
	}
	if dialect == SQLite {
		// A single writer avoids SQLITE_BUSY and keeps :memory: databases shared.
		db.SetMaxOpenConns(1)
	}

	if err := ping(ctx, db); err != nil {
		db.Close()
		return nil, fmt.Errorf("%s: ping: %w", dialect, err)
	}
	if err := Migrate(ctx, db, dialect); err != nil {
		db.Close()
		return nil, fmt.Errorf("%s: migrate: %w", dialect, err)
	}
	return db, nil
}

// Migrate creates the tables the repositories need.
func Migrate(ctx context.Context, db *sql.DB, dialect string) error {
	if dialect == SQLite {
		if _, err := db.ExecContext(ctx, `PRAGMA journal_mode=WAL;`); err != nil {
			return err
		}
	}
	_, err := db.ExecContext(ctx, schema)
	return err
}

func ping(ctx context.Context, db *sql.DB) error {
	var err error
	for i := 0; i < 5; i++ {
		if err = db.PingContext(ctx); err == nil {
			return nil
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(time.Second):
		}
	}
	return err
}
