package database

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
)

// Both schemas keep identifiers monotonic: AUTOINCREMENT on SQLite and a
// sequence on PostgreSQL never hand out a deleted id again.
var schemas = map[string][]string{
	"postgres": {
		`CREATE TABLE IF NOT EXISTS characters (
			id BIGSERIAL PRIMARY KEY,
			name VARCHAR(100) NOT NULL,
			house VARCHAR(100) NOT NULL,
			age INTEGER NOT NULL CHECK (age >= 0),
			role VARCHAR(100) NOT NULL,
			created_at TIMESTAMPTZ NOT NULL,
			updated_at TIMESTAMPTZ NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS users (
			id BIGSERIAL PRIMARY KEY,
			username VARCHAR(80) NOT NULL UNIQUE,
			password_hash VARCHAR(255) NOT NULL,
			role VARCHAR(20) NOT NULL DEFAULT 'user',
			created_at TIMESTAMPTZ NOT NULL
		)`,
	},
	DriverSQLite: {
		`CREATE TABLE IF NOT EXISTS characters (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			name TEXT NOT NULL,
			house TEXT NOT NULL,
			age INTEGER NOT NULL CHECK (age >= 0),
			role TEXT NOT NULL,
			created_at TIMESTAMP NOT NULL,
			updated_at TIMESTAMP NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS users (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			username TEXT NOT NULL UNIQUE,
			password_hash TEXT NOT NULL,
			role TEXT NOT NULL DEFAULT 'user',
			created_at TIMESTAMP NOT NULL
		)`,
	},
}

// Migrate creates the tables used by the SQL repositories when missing.
func Migrate(ctx context.Context, db *sqlx.DB) error {
	statements, ok := schemas[db.DriverName()]
	if !ok {
		return fmt.Errorf("migrate: unsupported driver %q", db.DriverName())
	}
	for _, stmt := range statements {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("migrate: %w", err)
		}
	}
	return nil
}
