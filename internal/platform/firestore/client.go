package firestore

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"cloud.google.com/go/firestore"
	"google.golang.org/api/iterator"
	"google.golang.org/api/option"

	"github.com/carcrafter/market-api/internal/platform/config"
)

const pingTimeout = 5 * time.Second

// Open creates a Firestore client from the configured service account and
// verifies it can reach the project before returning it.
func Open(ctx context.Context, cfg config.Config, logger *slog.Logger) (*firestore.Client, error) {
	creds, source, err := cfg.FirebaseCredentialsJSON()
	if err != nil {
		return nil, err
	}

	client, err := firestore.NewClient(ctx, cfg.FirebaseProjectID, option.WithCredentialsJSON(creds))
	if err != nil {
		return nil, fmt.Errorf("init firestore client: %w", err)
	}
	if err := Ping(ctx, client); err != nil {
		client.Close()
		return nil, fmt.Errorf("firestore ping: %w", err)
	}

	logger.Info("connected to Firestore", "project", cfg.FirebaseProjectID, "credentials", source)
	return client, nil
}

// Ping lists at most one collection; an empty project still counts as reachable.
func Ping(ctx context.Context, client *firestore.Client) error {
	ctx, cancel := context.WithTimeout(ctx, pingTimeout)
	defer cancel()

	_, err := client.Collections(ctx).Next()
	if errors.Is(err, iterator.Done) {
		return nil
	}
	return err
}
