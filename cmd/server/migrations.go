package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/pressly/goose/v3"

	"github.com/phrazzld/tasks-api/internal/config"
	"github.com/phrazzld/tasks-api/internal/platform/postgres"
)

// migrationTableName is the table goose records applied versions in.
const migrationTableName = "schema_migrations"

var errMigrationsNeedPostgres = errors.New("migrations require database.driver=postgres")

// migrationCommands are the goose commands accepted by -migrate.
var migrationCommands = map[string]bool{
	"up":      true,
	"down":    true,
	"status":  true,
	"version": true,
	"reset":   true,
}

// slogGooseLogger forwards goose output to slog. Fatalf logs instead of
// exiting so the caller decides how to terminate.
type slogGooseLogger struct {
	logger *slog.Logger
}

func (l slogGooseLogger) Printf(format string, v ...interface{}) {
	l.logger.Info(fmt.Sprintf(format, v...))
}

func (l slogGooseLogger) Fatalf(format string, v ...interface{}) {
	l.logger.Error(fmt.Sprintf(format, v...))
}

// migrate runs one goose command against the embedded migrations.
func migrate(ctx context.Context, cfg *config.Config, command string, logger *slog.Logger) error {
	if !migrationCommands[command] {
		return fmt.Errorf("unknown migration command %q", command)
	}
	if cfg.Database.Driver != "postgres" {
		return errMigrationsNeedPostgres
	}

	log := logger.With(slog.String("component", "migrations"), slog.String("command", command))

	db, err := openDatabase(ctx, cfg.Database.URL, log)
	if err != nil {
		return err
	}
	defer func() {
		if err := db.Close(); err != nil {
			log.Error("error closing database connection", slog.String("error", err.Error()))
		}
	}()

	goose.SetBaseFS(postgres.Migrations)
	goose.SetTableName(migrationTableName)
	goose.SetLogger(slogGooseLogger{logger: log})
	if err := goose.SetDialect("postgres"); err != nil {
		return fmt.Errorf("failed to set goose dialect: %w", err)
	}

	log.Info("running migration command")
	if err := goose.RunContext(ctx, command, db, postgres.MigrationsDir); err != nil {
		return fmt.Errorf("migration %s failed: %w", command, err)
	}
	log.Info("migration command completed")
	return nil
}
