package main

import (
	"context"
	"fmt"

	"github.com/ridwanfathin/invoice-service/internal/config"
	"github.com/ridwanfathin/invoice-service/internal/database"
	"github.com/ridwanfathin/invoice-service/internal/logger"
	"github.com/ridwanfathin/invoice-service/internal/repository"
)

// storage is an opened invoice repository together with its lifecycle hooks
type storage struct {
	repo   repository.InvoiceRepository
	health func(ctx context.Context) error
	close  func()
}

// openStorage connects the backend selected by STORAGE_DRIVER
func openStorage(ctx context.Context, cfg *config.Config) (*storage, error) {
	log := logger.WithComponent("storage").With().Str("driver", cfg.StorageDriver).Logger()

	switch cfg.StorageDriver {
	case config.StoragePostgres:
		db, err := database.NewPostgresDB(ctx, cfg.PostgresURL)
		if err != nil {
			return nil, err
		}
		log.Info().Msg("Connected to PostgreSQL")
		return &storage{
			repo:   repository.NewPostgresInvoiceRepository(db.GetPool()),
			health: func(ctx context.Context) error { return db.GetPool().Ping(ctx) },
			close:  db.Close,
		}, nil

	case config.StorageMongo:
		client, db, err := database.ConnectMongo(ctx, cfg.MongoURI, cfg.MongoDBName)
		if err != nil {
			return nil, err
		}
		repo := repository.NewMongoInvoiceRepository(db)
		if err := repo.EnsureIndexes(ctx); err != nil {
			_ = database.DisconnectMongo(client)
			return nil, fmt.Errorf("failed to create invoice indexes: %w", err)
		}
		return &storage{
			repo:   repo,
			health: func(ctx context.Context) error { return client.Ping(ctx, nil) },
			close: func() {
				if err := database.DisconnectMongo(client); err != nil {
					log.Warn().Err(err).Msg("Failed to disconnect from MongoDB")
				}
			},
		}, nil

	case config.StorageMemory:
		return &storage{
			repo:  repository.NewMemoryInvoiceRepository(),
			close: func() {},
		}, nil

	default:
		return nil, fmt.Errorf("unknown storage driver %q", cfg.StorageDriver)
	}
}
