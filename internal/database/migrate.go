package database

import (
	"context"
	"embed"
	"fmt"
	"io/fs"
	"sort"

	"github.com/ridwanfathin/invoice-service/internal/logger"
)

//go:embed migrations/*.sql
var migrationFiles embed.FS

// Migrate applies every embedded SQL migration in file name order. The scripts
// are idempotent so running them again is harmless.
func (db *PostgresDB) Migrate(ctx context.Context) error {
	log := logger.WithComponent("migrate")

	names, err := fs.Glob(migrationFiles, "migrations/*.sql")
	if err != nil {
		return fmt.Errorf("failed to list migrations: %w", err)
	}
	sort.Strings(names)

	for _, name := range names {
		migrationSQL, err := migrationFiles.ReadFile(name)
		if err != nil {
			return fmt.Errorf("unable to read migration file %s: %w", name, err)
		}

		if _, err := db.pool.Exec(ctx, string(migrationSQL)); err != nil {
			return fmt.Errorf("failed to execute migration %s: %w", name, err)
		}
		log.Info().Str("file", name).Msg("Migration executed")
	}

	return nil
}
