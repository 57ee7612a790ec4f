// Package postgres reads the dashboard tables straight from PostgreSQL.
package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/emilianohg/dashone/internal/models"
	"github.com/emilianohg/dashone/internal/seed"
)

const (
	rosterQuery = `
        SELECT id::text,
               first_name,
               last_name,
               COALESCE(program, ''),
               COALESCE(avatar_url, ''),
               COALESCE(email, ''),
               COALESCE(company_details, '')
          FROM employees
         ORDER BY id
    `

	sessionsQuery = `
        SELECT s.id::text,
               s.created_at,
               s.session_date,
               s.duration_minutes,
               COALESCE(s.notes, ''),
               s.employee_id::text,
               e.first_name,
               e.last_name,
               COALESCE(e.program, ''),
               COALESCE(e.avatar_url, '')
          FROM sessions s
          JOIN employees e ON e.id = s.employee_id
         ORDER BY s.session_date DESC
    `

	countEmployeesQuery = `SELECT COUNT(*) FROM employees`

	insertEmployeeQuery = `
        INSERT INTO employees (first_name, last_name, program, avatar_url, email, company_details)
        VALUES ($1, $2, $3, NULLIF($4, ''), NULLIF($5, ''), NULLIF($6, ''))
        RETURNING id::text
    `

	insertSessionQuery = `
        INSERT INTO sessions (created_at, session_date, duration_minutes, notes, employee_id)
        VALUES ($1, $2, $3, $4, $5::bigint)
    `
)

// Queryer is satisfied by *pgxpool.Pool, pgx.Tx and pgxmock pools.
type Queryer interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
}

// Beginner is satisfied by *pgxpool.Pool, pgx.Tx and pgxmock pools.
type Beginner interface {
	Begin(ctx context.Context) (pgx.Tx, error)
}

type Provider struct {
	db Queryer
}

func New(db Queryer) *Provider {
	return &Provider{db: db}
}

func (p *Provider) FetchRoster(ctx context.Context) ([]models.Employee, error) {
	rows, err := p.db.Query(ctx, rosterQuery)
	if err != nil {
		return nil, fmt.Errorf("postgres: query employees: %w", err)
	}
	defer rows.Close()

	employees := []models.Employee{}
	for rows.Next() {
		var (
			e  models.Employee
			id string
		)
		if err := rows.Scan(&id, &e.FirstName, &e.LastName, &e.Program, &e.AvatarURL, &e.Email, &e.CompanyDetails); err != nil {
			return nil, fmt.Errorf("postgres: scan employee: %w", err)
		}
		e.ID = models.ID(id)
		employees = append(employees, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("postgres: read employees: %w", err)
	}
	return employees, nil
}

func (p *Provider) FetchSessions(ctx context.Context) ([]models.SessionRecord, error) {
	rows, err := p.db.Query(ctx, sessionsQuery)
	if err != nil {
		return nil, fmt.Errorf("postgres: query sessions: %w", err)
	}
	defer rows.Close()

	sessions := []models.SessionRecord{}
	for rows.Next() {
		s, err := scanSession(rows)
		if err != nil {
			return nil, err
		}
		sessions = append(sessions, s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("postgres: read sessions: %w", err)
	}
	return sessions, nil
}

func scanSession(row pgx.Row) (models.SessionRecord, error) {
	var (
		s           models.SessionRecord
		id, empID   string
		sessionDate time.Time
	)
	if err := row.Scan(
		&id, &s.CreatedAt, &sessionDate, &s.DurationMinutes, &s.Notes, &empID,
		&s.Employee.FirstName, &s.Employee.LastName, &s.Employee.Program, &s.Employee.AvatarURL,
	); err != nil {
		return models.SessionRecord{}, fmt.Errorf("postgres: scan session: %w", err)
	}
	s.ID = models.ID(id)
	s.EmployeeID = models.ID(empID)
	s.SessionDate = models.DateOf(sessionDate)
	return s, nil
}

func (p *Provider) CountEmployees(ctx context.Context) (int, error) {
	var n int
	if err := p.db.QueryRow(ctx, countEmployeesQuery).Scan(&n); err != nil {
		return 0, fmt.Errorf("postgres: count employees: %w", err)
	}
	return n, nil
}

func (p *Provider) InsertEmployee(ctx context.Context, e models.Employee) (models.ID, error) {
	var id string
	err := p.db.QueryRow(ctx, insertEmployeeQuery,
		e.FirstName, e.LastName, e.Program, e.AvatarURL, e.Email, e.CompanyDetails,
	).Scan(&id)
	if err != nil {
		return "", fmt.Errorf("postgres: insert employee: %w", err)
	}
	return models.ID(id), nil
}

func (p *Provider) InsertSession(ctx context.Context, s models.SessionRecord) error {
	createdAt := s.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now().UTC()
	}
	_, err := p.db.Exec(ctx, insertSessionQuery,
		createdAt, s.SessionDate.Time, s.DurationMinutes, s.Notes, s.EmployeeID.String(),
	)
	if err != nil {
		return fmt.Errorf("postgres: insert session: %w", err)
	}
	return nil
}

// WithTx runs fn against a Provider bound to one transaction, committing
// only if fn succeeds. Without a Beginner fn runs on p directly.
func (p *Provider) WithTx(ctx context.Context, fn func(seed.Store) error) error {
	b, ok := p.db.(Beginner)
	if !ok {
		return fn(p)
	}

	tx, err := b.Begin(ctx)
	if err != nil {
		return fmt.Errorf("postgres: begin: %w", err)
	}

	if err := fn(New(tx)); err != nil {
		if rbErr := tx.Rollback(ctx); rbErr != nil {
			return errors.Join(err, fmt.Errorf("postgres: rollback: %w", rbErr))
		}
		return err
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("postgres: commit: %w", err)
	}
	return nil
}
