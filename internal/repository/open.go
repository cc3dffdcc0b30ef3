package repository

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/carcrafter/market-api/internal/business/market"
	"github.com/carcrafter/market-api/internal/platform/config"
	firestoreclient "github.com/carcrafter/market-api/internal/platform/firestore"
	"github.com/carcrafter/market-api/internal/platform/sqldb"
)

// OpenSnapshotStore builds the snapshot store selected by cfg.SnapshotStore.
// It returns a nil store for config.StoreNone. The closer releases the
// underlying connection and is never nil.
func OpenSnapshotStore(ctx context.Context, cfg config.Config, logger *slog.Logger) (market.SnapshotStore, io.Closer, error) {
	switch cfg.SnapshotStore {
	case config.StoreNone, "":
		return nil, nopCloser{}, nil
	case config.StoreFirestore:
		client, err := firestoreclient.Open(ctx, cfg, logger)
		if err != nil {
			return nil, nil, err
		}
		return NewSnapshotRepository(client), client, nil
	case config.StoreSQLite:
		db, err := sqldb.Open(ctx, sqldb.SQLite, cfg.SQLitePath)
		if err != nil {
			return nil, nil, err
		}
		logger.Info("snapshot store ready", "backend", sqldb.SQLite, "path", cfg.SQLitePath)
		return NewSQLSnapshotRepository(db, sqldb.SQLite), db, nil
	case config.StorePostgres:
		db, err := sqldb.Open(ctx, sqldb.Postgres, cfg.DatabaseURL)
		if err != nil {
			return nil, nil, err
		}
		logger.Info("snapshot store ready", "backend", sqldb.Postgres)
		return NewSQLSnapshotRepository(db, sqldb.Postgres), db, nil
	default:
		return nil, nil, fmt.Errorf("unknown snapshot store %q", cfg.SnapshotStore)
	}
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }
