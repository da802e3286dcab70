package testdb

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"sync"
	"testing"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib" // pgx driver
	"github.com/phrazzld/tasks-api/internal/platform/postgres"
	"github.com/pressly/goose/v3"
	"github.com/stretchr/testify/require"
)

// TestTimeout bounds connection checks and schema setup.
const TestTimeout = 5 * time.Second

// MigrationTableName is the table goose records applied migrations in.
const MigrationTableName = "schema_migrations"

var schemaOnce sync.Once

// DatabaseURL returns the connection string for tests, or "" when none is set.
func DatabaseURL() string {
	if url := os.Getenv("TASKS_TEST_DATABASE_URL"); url != "" {
		return url
	}
	return os.Getenv("DATABASE_URL")
}

// GetTestDBWithT opens a database connection with the schema applied and
// registers its cleanup. The test is skipped when no database is configured.
func GetTestDBWithT(t *testing.T) *sql.DB {
	t.Helper()

	url := DatabaseURL()
	if url == "" {
		t.Skip("TASKS_TEST_DATABASE_URL not set - skipping integration test")
	}

	db, err := sql.Open("pgx", url)
	require.NoError(t, err, "failed to open database connection")
	t.Cleanup(func() {
		if err := db.Close(); err != nil {
			t.Logf("warning: failed to close database: %v", err)
		}
	})

	ctx, cancel := context.WithTimeout(context.Background(), TestTimeout)
	defer cancel()
	require.NoError(t, db.PingContext(ctx), "database ping failed")

	SetupSchema(t, db)
	return db
}

// SetupSchema applies the embedded migrations once per test binary.
func SetupSchema(t *testing.T, db *sql.DB) {
	t.Helper()

	var err error
	schemaOnce.Do(func() {
		goose.SetBaseFS(postgres.Migrations)
		goose.SetTableName(MigrationTableName)
		goose.SetLogger(quietGooseLogger{})
		if err = goose.SetDialect("postgres"); err != nil {
			return
		}
		err = goose.Up(db, postgres.MigrationsDir)
	})
	require.NoError(t, err, "failed to apply migrations")
}

// WithTx runs fn inside a transaction that is always rolled back.
func WithTx(t *testing.T, db *sql.DB, fn func(t *testing.T, tx *sql.Tx)) {
	t.Helper()

	tx, err := db.Begin()
	require.NoError(t, err, "failed to begin transaction")
	defer func() {
		if err := tx.Rollback(); err != nil && !errors.Is(err, sql.ErrTxDone) {
			slog.Warn("failed to roll back test transaction", slog.String("error", err.Error()))
		}
	}()

	fn(t, tx)
}

// quietGooseLogger keeps migration chatter out of test output.
type quietGooseLogger struct{}

func (quietGooseLogger) Printf(string, ...interface{}) {}

func (quietGooseLogger) Fatalf(format string, v ...interface{}) {
	panic(fmt.Sprintf(format, v...))
}
