// Package provider reads the roster and session snapshots the dashboard is
// built from, and chooses which backend serves them.
package provider

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/emilianohg/dashone/internal/logging"
	"github.com/emilianohg/dashone/internal/models"
)

const (
	OpRoster   = "roster"
	OpSessions = "sessions"
)

type RosterProvider interface {
	FetchRoster(ctx context.Context) ([]models.Employee, error)
}

// SessionProvider returns sessions newest first, each joined to its
// employee. Sessions whose employee cannot be resolved are left out.
type SessionProvider interface {
	FetchSessions(ctx context.Context) ([]models.SessionRecord, error)
}

type Source interface {
	RosterProvider
	SessionProvider
}

// FetchError is the only failure a load surfaces. Its message is the
// underlying cause's, verbatim, so it can be shown as is.
type FetchError struct {
	Op  string
	Err error
}

func (e *FetchError) Error() string {
	return e.Err.Error()
}

func (e *FetchError) Unwrap() error {
	return e.Err
}

func wrapFetch(op string, err error) error {
	if err == nil {
		return nil
	}
	var fe *FetchError
	if errors.As(err, &fe) {
		return err
	}
	return &FetchError{Op: op, Err: err}
}

// Guard makes every error src returns a *FetchError.
func Guard(src Source) Source {
	if _, ok := src.(guarded); ok {
		return src
	}
	return guarded{src: src}
}

type guarded struct {
	src Source
}

func (g guarded) FetchRoster(ctx context.Context) ([]models.Employee, error) {
	employees, err := g.src.FetchRoster(ctx)
	if err != nil {
		return nil, wrapFetch(OpRoster, err)
	}
	return employees, nil
}

func (g guarded) FetchSessions(ctx context.Context) ([]models.SessionRecord, error) {
	sessions, err := g.src.FetchSessions(ctx)
	if err != nil {
		return nil, wrapFetch(OpSessions, err)
	}
	return sessions, nil
}

// Snapshot is one dashboard load: both tables as they were at fetch time.
type Snapshot struct {
	LoadID    string
	Employees []models.Employee
	Sessions  []models.SessionRecord
	LoadedAt  time.Time
}

// Load fetches the roster and the sessions concurrently. If either fetch
// fails the other is cancelled and no snapshot is returned.
func Load(ctx context.Context, src Source, logger *slog.Logger) (*Snapshot, error) {
	loadID := uuid.NewString()
	ctx = logging.WithLoadID(ctx, loadID)
	start := time.Now()

	var (
		employees []models.Employee
		sessions  []models.SessionRecord
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		employees, err = src.FetchRoster(gctx)
		return wrapFetch(OpRoster, err)
	})
	g.Go(func() error {
		var err error
		sessions, err = src.FetchSessions(gctx)
		return wrapFetch(OpSessions, err)
	})

	if err := g.Wait(); err != nil {
		var fe *FetchError
		op := ""
		if errors.As(err, &fe) {
			op = fe.Op
		}
		logger.ErrorContext(ctx, "dashboard load failed", "op", op, "error", err.Error())
		return nil, err
	}

	logger.InfoContext(ctx, "dashboard loaded",
		"employees", len(employees),
		"sessions", len(sessions),
		"elapsed", time.Since(start).String(),
	)

	return &Snapshot{
		LoadID:    loadID,
		Employees: employees,
		Sessions:  sessions,
		LoadedAt:  time.Now(),
	}, nil
}
