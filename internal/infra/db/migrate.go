package db

import (
	"database/sql"
	"embed"
	"errors"
	"fmt"

	"github.com/golang-migrate/migrate/v4"
	pgmigrate "github.com/golang-migrate/migrate/v4/database/postgres"
	"github.com/golang-migrate/migrate/v4/source/iofs"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

// MigrateUp brings the schema to the latest embedded migration. Running
// against an up-to-date database is a no-op.
func MigrateUp(pool *sql.DB) error {
	m, err := newMigrator(pool)
	if err != nil {
		return fmt.Errorf("MigrateUp: %w", err)
	}
	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("MigrateUp: %w", err)
	}
	return nil
}

// MigrateDown rolls back every embedded migration. Use with caution:
// this deletes all data.
func MigrateDown(pool *sql.DB) error {
	m, err := newMigrator(pool)
	if err != nil {
		return fmt.Errorf("MigrateDown: %w", err)
	}
	if err := m.Down(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("MigrateDown: %w", err)
	}
	return nil
}

func newMigrator(pool *sql.DB) (*migrate.Migrate, error) {
	source, err := iofs.New(migrationsFS, "migrations")
	if err != nil {
		return nil, fmt.Errorf("iofs: %w", err)
	}
	driver, err := pgmigrate.WithInstance(pool, &pgmigrate.Config{})
	if err != nil {
		return nil, fmt.Errorf("postgres driver: %w", err)
	}
	return migrate.NewWithInstance("iofs", source, "postgres", driver)
}
