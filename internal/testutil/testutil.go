package testutil

import (
	"context"
	"database/sql"
	"sync/atomic"
	"testing"
	"time"

	"github.com/emilianohg/dashone/internal/db"
	"github.com/emilianohg/dashone/internal/models"
)

// NewTestDB creates an in-memory SQLite database with all migrations applied.
// The database is closed when the test completes.
func NewTestDB(t *testing.T) *sql.DB {
	t.Helper()
	database, err := db.OpenSQLite(":memory:")
	if err != nil {
		t.Fatalf("failed to create test database: %v", err)
	}
	t.Cleanup(func() {
		database.Close()
	})
	if err := db.MigrateSQLite(database); err != nil {
		t.Fatalf("failed to migrate test database: %v", err)
	}
	return database
}

func NewEmployee(id, first, last, program string) models.Employee {
	return models.Employee{
		ID:        models.ID(id),
		FirstName: first,
		LastName:  last,
		Program:   program,
	}
}

// NewSession joins a session to emp on the given day of May 2024.
func NewSession(id string, emp models.Employee, minutes, day int) models.SessionRecord {
	return models.SessionRecord{
		ID:              models.ID(id),
		CreatedAt:       time.Date(2024, time.May, day, 9, 0, 0, 0, time.UTC),
		SessionDate:     models.NewDate(2024, time.May, day),
		DurationMinutes: minutes,
		Notes:           "notes for " + id,
		EmployeeID:      emp.ID,
		Employee:        emp.Summary(),
	}
}

// StubSource is an in-memory provider.Source with injectable failures.
type StubSource struct {
	Employees   []models.Employee
	Sessions    []models.SessionRecord
	RosterErr   error
	SessionsErr error

	// Block, when set, holds FetchSessions until it is closed or the
	// context ends.
	Block chan struct{}

	RosterCalls   atomic.Int32
	SessionsCalls atomic.Int32
}

func (s *StubSource) FetchRoster(ctx context.Context) ([]models.Employee, error) {
	s.RosterCalls.Add(1)
	if s.RosterErr != nil {
		return nil, s.RosterErr
	}
	return s.Employees, nil
}

func (s *StubSource) FetchSessions(ctx context.Context) ([]models.SessionRecord, error) {
	s.SessionsCalls.Add(1)
	if s.Block != nil {
		select {
		case <-s.Block:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	if s.SessionsErr != nil {
		return nil, s.SessionsErr
	}
	return s.Sessions, nil
}

// ExampleSource is the two-person data set used across tests.
func ExampleSource() *StubSource {
	ann := NewEmployee("1", "Ann", "Lee", "X")
	bo := NewEmployee("2", "Bo", "Kim", "Y")
	return &StubSource{
		Employees: []models.Employee{ann, bo},
		Sessions: []models.SessionRecord{
			NewSession("s1", ann, 30, 2),
			NewSession("s2", bo, 45, 1),
		},
	}
}
