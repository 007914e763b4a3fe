package storage

import (
	"database/sql"
	"embed"
	"errors"
	"fmt"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/sqlite3"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	"github.com/sirupsen/logrus"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

// MigrationStatus describes the schema version of a SQLite store
type MigrationStatus struct {
	Version uint
	Dirty   bool
	Applied bool
}

func newMigrate(db *sql.DB) (*migrate.Migrate, error) {
	source, err := iofs.New(migrationsFS, "migrations")
	if err != nil {
		return nil, fmt.Errorf("failed to open migration source: %w", err)
	}

	driver, err := sqlite3.WithInstance(db, &sqlite3.Config{})
	if err != nil {
		return nil, fmt.Errorf("failed to create database driver: %w", err)
	}

	m, err := migrate.NewWithInstance("iofs", source, "sqlite3", driver)
	if err != nil {
		return nil, fmt.Errorf("failed to create migrate instance: %w", err)
	}
	return m, nil
}

func status(m *migrate.Migrate) (*MigrationStatus, error) {
	version, dirty, err := m.Version()
	if errors.Is(err, migrate.ErrNilVersion) {
		return &MigrationStatus{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read migration version: %w", err)
	}
	return &MigrationStatus{Version: version, Dirty: dirty, Applied: true}, nil
}

// runMigrations applies every pending schema migration to db.
// The migrate instance is left open: closing it would close db as well.
func runMigrations(db *sql.DB, logger *logrus.Logger) error {
	m, err := newMigrate(db)
	if err != nil {
		return err
	}

	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("failed to run migrations: %w", err)
	}

	st, err := status(m)
	if err != nil {
		return err
	}
	if st.Dirty {
		return fmt.Errorf("database schema is dirty at version %d", st.Version)
	}

	logger.WithField("schema_version", st.Version).Debug("SQLite schema is up to date")
	return nil
}

// SQLiteMigrator manages the schema of a SQLite store file outside of the API
type SQLiteMigrator struct {
	m      *migrate.Migrate
	logger *logrus.Logger
}

// NewSQLiteMigrator opens the database at path for schema management
func NewSQLiteMigrator(path string, logger *logrus.Logger) (*SQLiteMigrator, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	m, err := newMigrate(db)
	if err != nil {
		db.Close()
		return nil, err
	}
	return &SQLiteMigrator{m: m, logger: logger}, nil
}

// Up applies every pending migration
func (s *SQLiteMigrator) Up() error {
	if err := s.m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("failed to run migrations: %w", err)
	}
	s.logger.Info("Migrations applied")
	return nil
}

// Down rolls back the most recent migration
func (s *SQLiteMigrator) Down() error {
	if err := s.m.Steps(-1); err != nil {
		return fmt.Errorf("failed to rollback migration: %w", err)
	}
	s.logger.Info("Migration rolled back")
	return nil
}

// Status reports the current schema version
func (s *SQLiteMigrator) Status() (*MigrationStatus, error) {
	return status(s.m)
}

// Close releases the migrator and its database
func (s *SQLiteMigrator) Close() error {
	srcErr, dbErr := s.m.Close()
	if srcErr != nil {
		return srcErr
	}
	return dbErr
}
