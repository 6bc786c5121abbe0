package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ridwanfathin/invoice-service/internal/config"
	"github.com/ridwanfathin/invoice-service/internal/database"
	"github.com/ridwanfathin/invoice-service/internal/logger"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Apply the PostgreSQL schema",
	Long: `Apply the embedded PostgreSQL migrations to POSTGRES_DB_URL.
MongoDB needs no migration; its indexes are created when the server starts.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		if err := applyMigrations(cmd.Context(), cfg); err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), "Migration successfully executed!")
		return nil
	},
}

func applyMigrations(ctx context.Context, cfg *config.Config) error {
	if cfg.StorageDriver != config.StoragePostgres {
		log := logger.WithComponent("migrate")
		log.Info().Str("driver", cfg.StorageDriver).Msg("No migrations needed for storage driver")
		return nil
	}

	db, err := database.NewPostgresDB(ctx, cfg.PostgresURL)
	if err != nil {
		return err
	}
	defer db.Close()

	return db.Migrate(ctx)
}
