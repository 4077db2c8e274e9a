// Package database opens the relational store and applies its schema migrations
package database

import (
	"embed"
	"errors"
	"fmt"
	"time"

	_ "github.com/go-sql-driver/mysql"
	"github.com/golang-migrate/migrate/v4"
	migratemysql "github.com/golang-migrate/migrate/v4/database/mysql"
	migratesqlite "github.com/golang-migrate/migrate/v4/database/sqlite"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	"github.com/jmoiron/sqlx"
	"github.com/studentportal/webapp/internal/config"
	_ "modernc.org/sqlite"
)

//go:embed migrations
var migrations embed.FS

// Connect opens and pings a database for the given driver ("mysql" or "sqlite")
func Connect(driver, dsn string) (*sqlx.DB, error) {
	db, err := sqlx.Open(driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	switch driver {
	case config.DriverSQLite:
		// SQLite allows a single writer; serialise access through one connection
		db.SetMaxOpenConns(1)
	default:
		db.SetMaxOpenConns(25)
		db.SetMaxIdleConns(5)
		db.SetConnMaxLifetime(5 * time.Minute)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return db, nil
}

// RunMigrations applies all pending embedded migrations for the given driver
func RunMigrations(db *sqlx.DB, driver string) error {
	source, err := iofs.New(migrations, "migrations/"+driver)
	if err != nil {
		return fmt.Errorf("failed to open migrations for %s: %w", driver, err)
	}

	var m *migrate.Migrate
	switch driver {
	case config.DriverMySQL:
		instance, err := migratemysql.WithInstance(db.DB, &migratemysql.Config{
			MigrationsTable: "portal_schema_migrations",
		})
		if err != nil {
			return fmt.Errorf("failed to create migration driver: %w", err)
		}
		m, err = migrate.NewWithInstance("iofs", source, "mysql", instance)
		if err != nil {
			return fmt.Errorf("failed to create migrate instance: %w", err)
		}
	case config.DriverSQLite:
		instance, err := migratesqlite.WithInstance(db.DB, &migratesqlite.Config{})
		if err != nil {
			return fmt.Errorf("failed to create migration driver: %w", err)
		}
		m, err = migrate.NewWithInstance("iofs", source, "sqlite", instance)
		if err != nil {
			return fmt.Errorf("failed to create migrate instance: %w", err)
		}
	default:
		return fmt.Errorf("unsupported database driver: %q", driver)
	}

	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("failed to run migrations: %w", err)
	}

	return nil
}
