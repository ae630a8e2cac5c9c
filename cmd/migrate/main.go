package main

// Run database migrations:
//   go run ./cmd/migrate          # apply all
//   go run ./cmd/migrate -down    # revert the latest

import (
	"context"
	"flag"
	"os"

	"glownexa-backend/internal/shared/config"
	"glownexa-backend/internal/shared/storage/db"
	"glownexa-backend/internal/shared/telemetry"
)

func main() {
	down := flag.Bool("down", false, "revert the most recent migration")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		telemetry.Error("migrate.config_failed", map[string]any{"error": err})
		os.Exit(1)
	}
	ctx := context.Background()

	opts := db.OptionsFromEnv(db.DefaultMigrateOptions())
	sqlDB, err := db.Connect(ctx, cfg.DatabaseURL, opts)
	if err != nil {
		telemetry.Error("migrate.connect_failed", map[string]any{"error": err})
		os.Exit(1)
	}
	defer sqlDB.Close()

	if *down {
		err = db.RollbackMigration(ctx, sqlDB)
	} else {
		err = db.RunMigrations(ctx, sqlDB)
	}
	if err != nil {
		telemetry.Error("migrate.failed", map[string]any{"error": err, "down": *down})
		os.Exit(1)
	}
}
