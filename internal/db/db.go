package db

import (
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	"github.com/golang-migrate/migrate/v4/database/sqlite3"
	"github.com/golang-migrate/migrate/v4/source"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	_ "github.com/mattn/go-sqlite3"
)

//go:embed migrations
var migrationsFS embed.FS

type Dialect string

const (
	SQLite   Dialect = "sqlite"
	Postgres Dialect = "postgres"
)

// MigrationStatus holds information about database migration state
type MigrationStatus struct {
	CurrentVersion uint
	LatestVersion  uint
	Dirty          bool
	Pending        bool
}

// OpenSQLite opens (creating if needed) the SQLite file at path. ":memory:"
// gives a private in-memory database.
func OpenSQLite(path string) (*sql.DB, error) {
	if path != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
			return nil, err
		}
	}

	database, err := sql.Open("sqlite3", path+"?_foreign_keys=on")
	if err != nil {
		return nil, err
	}

	// Every pooled connection to :memory: would see its own empty database.
	if path == ":memory:" {
		database.SetMaxOpenConns(1)
	}

	if err := database.Ping(); err != nil {
		database.Close()
		return nil, fmt.Errorf("db: open %s: %w", path, err)
	}
	return database, nil
}

// Migrator applies the embedded migrations for one dialect.
type Migrator struct {
	m       *migrate.Migrate
	dialect Dialect
	owned   bool
}

// NewSQLiteMigrator migrates an already open SQLite database. Closing the
// migrator leaves database open.
func NewSQLiteMigrator(database *sql.DB) (*Migrator, error) {
	driver, err := sqlite3.WithInstance(database, &sqlite3.Config{})
	if err != nil {
		return nil, fmt.Errorf("db: sqlite driver: %w", err)
	}

	src, err := migrationSource(SQLite)
	if err != nil {
		return nil, err
	}

	m, err := migrate.NewWithInstance("iofs", src, "sqlite3", driver)
	if err != nil {
		return nil, fmt.Errorf("db: create migrator: %w", err)
	}
	return &Migrator{m: m, dialect: SQLite}, nil
}

// NewPostgresMigrator opens its own connection to dsn.
func NewPostgresMigrator(dsn string) (*Migrator, error) {
	src, err := migrationSource(Postgres)
	if err != nil {
		return nil, err
	}

	m, err := migrate.NewWithSourceInstance("iofs", src, dsn)
	if err != nil {
		return nil, fmt.Errorf("db: create migrator: %w", err)
	}
	return &Migrator{m: m, dialect: Postgres, owned: true}, nil
}

func migrationSource(dialect Dialect) (source.Driver, error) {
	src, err := iofs.New(migrationsFS, "migrations/"+string(dialect))
	if err != nil {
		return nil, fmt.Errorf("db: migration source: %w", err)
	}
	return src, nil
}

// Up runs all pending migrations
func (m *Migrator) Up() error {
	if err := m.m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return err
	}
	return nil
}

// Down reverts every applied migration.
func (m *Migrator) Down() error {
	if err := m.m.Down(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return err
	}
	return nil
}

// Status returns the current migration status
func (m *Migrator) Status() (*MigrationStatus, error) {
	version, dirty, err := m.m.Version()
	if err != nil && !errors.Is(err, migrate.ErrNilVersion) {
		return nil, err
	}

	latest, err := LatestVersion(m.dialect)
	if err != nil {
		return nil, err
	}

	return &MigrationStatus{
		CurrentVersion: version,
		LatestVersion:  latest,
		Dirty:          dirty,
		Pending:        version < latest,
	}, nil
}

// Close releases the migrator. For SQLite the caller's *sql.DB stays open.
func (m *Migrator) Close() error {
	if !m.owned {
		return nil
	}
	srcErr, dbErr := m.m.Close()
	return errors.Join(srcErr, dbErr)
}

// LatestVersion is the highest embedded migration version for dialect.
func LatestVersion(dialect Dialect) (uint, error) {
	src, err := migrationSource(dialect)
	if err != nil {
		return 0, err
	}
	defer src.Close()

	var latest uint
	first, err := src.First()
	if err != nil {
		return 0, nil
	}
	latest = first
	for {
		next, err := src.Next(latest)
		if err != nil {
			break
		}
		latest = next
	}
	return latest, nil
}

// MigrateSQLite brings database up to the latest schema.
func MigrateSQLite(database *sql.DB) error {
	m, err := NewSQLiteMigrator(database)
	if err != nil {
		return err
	}
	defer m.Close()
	return m.Up()
}
