package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/emilianohg/dashone/internal/models"
	"github.com/emilianohg/dashone/internal/seed"
)

// DBTX is satisfied by both *sql.DB and *sql.Tx.
type DBTX interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// Store serves the dashboard tables from a local SQLite database and can
// be seeded.
type Store struct {
	Employees *EmployeeRepo
	Sessions  *SessionRepo

	// db is nil for a Store bound to a transaction.
	db *sql.DB
}

func NewStore(db *sql.DB) *Store {
	return &Store{
		Employees: NewEmployeeRepo(db),
		Sessions:  NewSessionRepo(db),
		db:        db,
	}
}

func newTxStore(tx *sql.Tx) *Store {
	return &Store{
		Employees: NewEmployeeRepo(tx),
		Sessions:  NewSessionRepo(tx),
	}
}

func (s *Store) FetchRoster(ctx context.Context) ([]models.Employee, error) {
	return s.Employees.GetAll(ctx)
}

func (s *Store) FetchSessions(ctx context.Context) ([]models.SessionRecord, error) {
	return s.Sessions.GetAllWithEmployee(ctx)
}

func (s *Store) CountEmployees(ctx context.Context) (int, error) {
	return s.Employees.Count(ctx)
}

func (s *Store) InsertEmployee(ctx context.Context, e models.Employee) (models.ID, error) {
	return s.Employees.Create(ctx, e)
}

func (s *Store) InsertSession(ctx context.Context, rec models.SessionRecord) error {
	return s.Sessions.Create(ctx, rec)
}

// WithTx runs fn against a Store bound to one transaction, committing only
// if fn succeeds. A Store that is already in a transaction runs fn on itself.
func (s *Store) WithTx(ctx context.Context, fn func(seed.Store) error) error {
	if s.db == nil {
		return fn(s)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("repository: begin: %w", err)
	}

	if err := fn(newTxStore(tx)); err != nil {
		if rbErr := tx.Rollback(); rbErr != nil {
			return errors.Join(err, fmt.Errorf("repository: rollback: %w", rbErr))
		}
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("repository: commit: %w", err)
	}
	return nil
}
