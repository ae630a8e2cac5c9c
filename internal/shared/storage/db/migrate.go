package db

import (
	"context"
	"database/sql"
	"embed"
	"fmt"

	"github.com/pressly/goose/v3"

	"glownexa-backend/internal/shared/telemetry"
)

//go:embed migrations/*.sql
var migrationFiles embed.FS

func prepareGoose() error {
	goose.SetBaseFS(migrationFiles)
	return goose.SetDialect("postgres")
}

// RunMigrations applies the embedded users and skin_analyses schema. A nil database is a no-op.
func RunMigrations(ctx context.Context, database *sql.DB) error {
	if database == nil {
		return nil
	}
	if err := prepareGoose(); err != nil {
		return err
	}
	if err := goose.UpContext(ctx, database, "migrations"); err != nil {
		return fmt.Errorf("migrate up: %w", err)
	}
	version, err := goose.GetDBVersion(database)
	if err != nil {
		return fmt.Errorf("migrate version: %w", err)
	}
	telemetry.Info("db.migrated", map[string]any{"version": version})
	return nil
}

// RollbackMigration reverts the most recent migration.
func RollbackMigration(ctx context.Context, database *sql.DB) error {
	if err := prepareGoose(); err != nil {
		return err
	}
	return goose.DownContext(ctx, database, "migrations")
}
