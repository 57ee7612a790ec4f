package repository

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/emilianohg/dashone/internal/models"
	"github.com/emilianohg/dashone/internal/seed"
	"github.com/emilianohg/dashone/internal/testutil"
)

func TestEmployeeRepo_CreateAndGetAll(t *testing.T) {
	store := NewStore(testutil.NewTestDB(t))
	ctx := context.Background()

	annID, err := store.Employees.Create(ctx, models.Employee{FirstName: "Ann", LastName: "Lee", Program: "X", Email: "ann@example.com"})
	require.NoError(t, err)
	_, err = store.Employees.Create(ctx, models.Employee{FirstName: "Bo", LastName: "Kim"})
	require.NoError(t, err)

	employees, err := store.FetchRoster(ctx)
	require.NoError(t, err)

	require.Len(t, employees, 2)
	assert.Equal(t, annID, employees[0].ID)
	assert.Equal(t, "ann@example.com", employees[0].Email)
	assert.Empty(t, employees[0].AvatarURL)
	assert.Empty(t, employees[1].Program)

	n, err := store.CountEmployees(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, n)
}

func TestSessionRepo_JoinedNewestFirst(t *testing.T) {
	store := NewStore(testutil.NewTestDB(t))
	ctx := context.Background()

	annID, err := store.InsertEmployee(ctx, models.Employee{FirstName: "Ann", LastName: "Lee", Program: "X", AvatarURL: "ann.png"})
	require.NoError(t, err)
	boID, err := store.InsertEmployee(ctx, models.Employee{FirstName: "Bo", LastName: "Kim", Program: "Y"})
	require.NoError(t, err)

	created := time.Date(2024, 5, 1, 9, 30, 0, 0, time.UTC)
	require.NoError(t, store.InsertSession(ctx, models.SessionRecord{
		CreatedAt: created, SessionDate: models.NewDate(2024, time.May, 1), DurationMinutes: 30, Notes: "old", EmployeeID: annID,
	}))
	require.NoError(t, store.InsertSession(ctx, models.SessionRecord{
		SessionDate: models.NewDate(2024, time.May, 3), DurationMinutes: 45, Notes: "new", EmployeeID: boID,
	}))

	sessions, err := store.FetchSessions(ctx)
	require.NoError(t, err)

	require.Len(t, sessions, 2)
	assert.Equal(t, "new", sessions[0].Notes)
	assert.Equal(t, "2024-05-03", sessions[0].SessionDate.String())
	assert.Equal(t, boID, sessions[0].EmployeeID)
	assert.Equal(t, models.EmployeeSummary{FirstName: "Bo", LastName: "Kim", Program: "Y"}, sessions[0].Employee)

	assert.Equal(t, "old", sessions[1].Notes)
	assert.Equal(t, "ann.png", sessions[1].Employee.AvatarURL)
	assert.True(t, created.Equal(sessions[1].CreatedAt))
}

func TestSessionRepo_EmptyTables(t *testing.T) {
	store := NewStore(testutil.NewTestDB(t))

	sessions, err := store.FetchSessions(context.Background())
	require.NoError(t, err)
	assert.NotNil(t, sessions)
	assert.Empty(t, sessions)
}

func TestStore_WithTxRollsBack(t *testing.T) {
	store := NewStore(testutil.NewTestDB(t))
	ctx := context.Background()
	cause := errors.New("stop")

	err := store.WithTx(ctx, func(tx seed.Store) error {
		if _, err := tx.InsertEmployee(ctx, models.Employee{FirstName: "Ann", LastName: "Lee"}); err != nil {
			return err
		}
		return cause
	})
	require.ErrorIs(t, err, cause)

	n, err := store.CountEmployees(ctx)
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestStore_WithTxCommits(t *testing.T) {
	store := NewStore(testutil.NewTestDB(t))
	ctx := context.Background()

	err := store.WithTx(ctx, func(tx seed.Store) error {
		id, err := tx.InsertEmployee(ctx, models.Employee{FirstName: "Ann", LastName: "Lee"})
		if err != nil {
			return err
		}
		return tx.InsertSession(ctx, models.SessionRecord{
			SessionDate: models.NewDate(2024, time.May, 1), DurationMinutes: 30, EmployeeID: id,
		})
	})
	require.NoError(t, err)

	sessions, err := store.FetchSessions(ctx)
	require.NoError(t, err)
	assert.Len(t, sessions, 1)
}
