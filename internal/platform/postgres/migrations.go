package postgres

import "embed"

// Migrations holds the goose SQL migrations that create the documents table.
// Paths inside the FS are relative to MigrationsDir.
//
//go:embed migrations/*.sql
var Migrations embed.FS

// MigrationsDir is the directory inside Migrations holding the SQL files.
const MigrationsDir = "migrations"
