package repository

import (
	"context"
	"database/sql"
	"time"

	"github.com/emilianohg/dashone/internal/models"
)

type SessionRepo struct {
	db DBTX
}

func NewSessionRepo(db DBTX) *SessionRepo {
	return &SessionRepo{db: db}
}

func (r *SessionRepo) Create(ctx context.Context, s models.SessionRecord) error {
	createdAt := s.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now().UTC()
	}

	_, err := r.db.ExecContext(ctx, `
		INSERT INTO sessions (created_at, session_date, duration_minutes, notes, employee_id)
		VALUES (?, ?, ?, ?, ?)
	`, createdAt, s.SessionDate.String(), s.DurationMinutes, s.Notes, s.EmployeeID.String())
	return err
}

// GetAllWithEmployee returns every session that has an employee, newest
// first, with the employee's display fields joined in.
func (r *SessionRepo) GetAllWithEmployee(ctx context.Context) ([]models.SessionRecord, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT s.id, s.created_at, s.session_date, s.duration_minutes, s.notes, s.employee_id,
		       e.first_name, e.last_name, e.program, COALESCE(e.avatar_url, '')
		FROM sessions s
		INNER JOIN employees e ON e.id = s.employee_id
		ORDER BY s.session_date DESC
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return r.scanSessions(rows)
}

func (r *SessionRepo) scanSessions(rows *sql.Rows) ([]models.SessionRecord, error) {
	sessions := []models.SessionRecord{}
	for rows.Next() {
		var s models.SessionRecord
		var id, employeeID string
		var sessionDate time.Time

		if err := rows.Scan(
			&id, &s.CreatedAt, &sessionDate, &s.DurationMinutes, &s.Notes, &employeeID,
			&s.Employee.FirstName, &s.Employee.LastName, &s.Employee.Program, &s.Employee.AvatarURL,
		); err != nil {
			return nil, err
		}

		s.ID = models.ID(id)
		s.EmployeeID = models.ID(employeeID)
		s.SessionDate = models.DateOf(sessionDate)
		sessions = append(sessions, s)
	}
	return sessions, rows.Err()
}
