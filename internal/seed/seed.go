// Package seed loads a data set into an empty SQL backend so the dashboard
// has something to show without a hosted database.
package seed

import (
	"context"
	"fmt"

	"github.com/emilianohg/dashone/internal/models"
)

type Store interface {
	CountEmployees(ctx context.Context) (int, error)
	InsertEmployee(ctx context.Context, e models.Employee) (models.ID, error)
	InsertSession(ctx context.Context, s models.SessionRecord) error

	// WithTx runs fn in a single transaction. Nothing fn wrote is kept if
	// it returns an error.
	WithTx(ctx context.Context, fn func(Store) error) error
}

type Result struct {
	Employees int
	Sessions  int
	Skipped   bool
}

// Run inserts employees and sessions unless the store already has
// employees. All rows go in one transaction, so a failed run leaves the
// store empty and can be retried. Stores assign their own keys, so each
// session's employee_id is rewritten to the key its employee received.
// Sessions whose employee is not in employees are skipped.
func Run(ctx context.Context, store Store, employees []models.Employee, sessions []models.SessionRecord) (Result, error) {
	count, err := store.CountEmployees(ctx)
	if err != nil {
		return Result{}, fmt.Errorf("seed: count employees: %w", err)
	}
	if count > 0 {
		return Result{Skipped: true}, nil
	}

	var res Result
	err = store.WithTx(ctx, func(tx Store) error {
		res = Result{}
		keys := make(map[models.ID]models.ID, len(employees))
		for _, e := range employees {
			id, err := tx.InsertEmployee(ctx, e)
			if err != nil {
				return fmt.Errorf("seed: employee %s: %w", e.ID, err)
			}
			keys[e.ID] = id
			res.Employees++
		}

		// Insert oldest first so generated keys follow session order.
		for i := len(sessions) - 1; i >= 0; i-- {
			s := sessions[i]
			key, ok := keys[s.EmployeeID]
			if !ok {
				continue
			}
			s.EmployeeID = key
			if err := tx.InsertSession(ctx, s); err != nil {
				return fmt.Errorf("seed: session %s: %w", s.ID, err)
			}
			res.Sessions++
		}
		return nil
	})
	if err != nil {
		return Result{}, err
	}

	return res, nil
}
