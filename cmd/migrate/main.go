package main

import (
	"context"
	"flag"
	"os"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"

	"library3d/internal/platform/logging"
)

func main() {
	var (
		command = flag.String("command", "up", "Migration command: up, down, status, create")
		name    = flag.String("name", "", "Name for 'create' command")
	)
	flag.Parse()

	loadEnvFiles()
	logger := logging.New(os.Getenv("LOG_LEVEL"))

	dsn := databaseDSN()
	dir := migrationsDir()

	if *command == "create" {
		if *name == "" {
			logger.Fatal("name is required for 'create' command")
		}
		if err := goose.Create(nil, dir, *name, "sql"); err != nil {
			logger.WithError(err).Fatal("failed to create migration")
		}
		logger.WithField("name", *name).Info("migration created")
		return
	}

	ctx := context.Background()
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		logger.WithError(err).Fatal("failed to connect to database")
	}
	defer pool.Close()

	db := stdlib.OpenDBFromPool(pool)
	defer db.Close()

	if err := goose.SetDialect("postgres"); err != nil {
		logger.WithError(err).Fatal("failed to set goose dialect")
	}
	goose.SetLogger(logger)

	switch *command {
	case "up":
		if err := goose.UpContext(ctx, db, dir); err != nil {
			logger.WithError(err).Fatal("failed to run migrations")
		}
		logger.Info("migrations applied successfully")
	case "down":
		if err := goose.DownContext(ctx, db, dir); err != nil {
			logger.WithError(err).Fatal("failed to roll back migrations")
		}
		logger.Info("migrations rolled back successfully")
	case "status":
		if err := goose.StatusContext(ctx, db, dir); err != nil {
			logger.WithError(err).Fatal("failed to check migration status")
		}
	default:
		logger.Fatalf("unknown command: %s. Use: up, down, status, create", *command)
	}
}
