package storage

import (
	"context"
	"fmt"

	"github.com/ckoon-infopro/rxdb-backend/internal/config"
	"github.com/ckoon-infopro/rxdb-backend/internal/storage/memory"
	"github.com/ckoon-infopro/rxdb-backend/internal/storage/mongo"
	"github.com/ckoon-infopro/rxdb-backend/internal/storage/postgres"
)

// Open creates the DocumentStore selected by the configuration.
func Open(ctx context.Context, cfg config.StorageConfig) (DocumentStore, error) {
	switch cfg.Backend {
	case "memory", "":
		return memory.New(), nil
	case "postgres":
		store, err := postgres.Open(ctx, cfg.PostgresDSN)
		if err != nil {
			return nil, err
		}
		return store, nil
	case "mongo":
		store, err := mongo.Open(ctx, cfg.MongoURI, cfg.DatabaseName)
		if err != nil {
			return nil, err
		}
		return store, nil
	default:
		return nil, fmt.Errorf("unknown storage backend: %q", cfg.Backend)
	}
}
