// Package fixture serves a fixed demo data set with the same shapes as the
// live schema. It is used when no live backend is configured.
package fixture

import (
	"context"
	_ "embed"
	"fmt"
	"log/slog"
	"slices"
	"sort"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/emilianohg/dashone/internal/logging"
	"github.com/emilianohg/dashone/internal/models"
)

const (
	DefaultRosterDelay  = 800 * time.Millisecond
	DefaultSessionDelay = 1200 * time.Millisecond
)

//go:embed data.yaml
var dataYAML []byte

type document struct {
	Employees []employeeRow `yaml:"employees"`
	Sessions  []sessionRow  `yaml:"sessions"`
}

type employeeRow struct {
	ID             string `yaml:"id"`
	FirstName      string `yaml:"first_name"`
	LastName       string `yaml:"last_name"`
	Program        string `yaml:"program"`
	Email          string `yaml:"email"`
	AvatarURL      string `yaml:"avatar_url"`
	CompanyDetails string `yaml:"company_details"`
}

type sessionRow struct {
	ID              string `yaml:"id"`
	CreatedAt       string `yaml:"created_at"`
	SessionDate     string `yaml:"session_date"`
	DurationMinutes int    `yaml:"duration_minutes"`
	Notes           string `yaml:"notes"`
	EmployeeID      string `yaml:"employee_id"`
}

type Provider struct {
	employees    []models.Employee
	sessions     []models.SessionRecord
	rosterDelay  time.Duration
	sessionDelay time.Duration
	logger       *slog.Logger
}

type Option func(*Provider)

func WithDelays(roster, sessions time.Duration) Option {
	return func(p *Provider) {
		p.rosterDelay = roster
		p.sessionDelay = sessions
	}
}

func WithLogger(logger *slog.Logger) Option {
	return func(p *Provider) {
		p.logger = logger
	}
}

func New(opts ...Option) (*Provider, error) {
	employees, sessions, err := Data()
	if err != nil {
		return nil, err
	}

	p := &Provider{
		employees:    employees,
		sessions:     sessions,
		rosterDelay:  DefaultRosterDelay,
		sessionDelay: DefaultSessionDelay,
		logger:       logging.Discard(),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p, nil
}

func (p *Provider) FetchRoster(ctx context.Context) ([]models.Employee, error) {
	p.logger.WarnContext(ctx, "no live backend configured, returning mock employees")
	if err := wait(ctx, p.rosterDelay); err != nil {
		return nil, err
	}
	return slices.Clone(p.employees), nil
}

func (p *Provider) FetchSessions(ctx context.Context) ([]models.SessionRecord, error) {
	p.logger.WarnContext(ctx, "no live backend configured, returning mock sessions")
	if err := wait(ctx, p.sessionDelay); err != nil {
		return nil, err
	}
	return slices.Clone(p.sessions), nil
}

// Data decodes the embedded data set. Sessions come back joined to their
// employees and ordered newest first, as a live backend would return them.
func Data() ([]models.Employee, []models.SessionRecord, error) {
	return decode(dataYAML)
}

func decode(raw []byte) ([]models.Employee, []models.SessionRecord, error) {
	var doc document
	if err := yaml.Unmarshal(raw, &doc); err != nil {
		return nil, nil, fmt.Errorf("fixture: decode: %w", err)
	}

	employees := make([]models.Employee, 0, len(doc.Employees))
	for _, e := range doc.Employees {
		employees = append(employees, models.Employee{
			ID:             models.ID(e.ID),
			FirstName:      e.FirstName,
			LastName:       e.LastName,
			Program:        e.Program,
			AvatarURL:      e.AvatarURL,
			Email:          e.Email,
			CompanyDetails: e.CompanyDetails,
		})
	}

	sessions, err := join(doc.Sessions, employees)
	if err != nil {
		return nil, nil, err
	}
	return employees, sessions, nil
}

func join(rows []sessionRow, employees []models.Employee) ([]models.SessionRecord, error) {
	byID := make(map[models.ID]models.Employee, len(employees))
	for _, e := range employees {
		byID[e.ID] = e
	}

	sessions := make([]models.SessionRecord, 0, len(rows))
	for _, r := range rows {
		emp, ok := byID[models.ID(r.EmployeeID)]
		if !ok {
			continue
		}

		date, err := models.ParseDate(r.SessionDate)
		if err != nil {
			return nil, fmt.Errorf("fixture: session %s: %w", r.ID, err)
		}
		var createdAt time.Time
		if r.CreatedAt != "" {
			createdAt, err = time.Parse(time.RFC3339, r.CreatedAt)
			if err != nil {
				return nil, fmt.Errorf("fixture: session %s: created_at: %w", r.ID, err)
			}
		}

		sessions = append(sessions, models.SessionRecord{
			ID:              models.ID(r.ID),
			CreatedAt:       createdAt,
			SessionDate:     date,
			DurationMinutes: r.DurationMinutes,
			Notes:           r.Notes,
			EmployeeID:      emp.ID,
			Employee:        emp.Summary(),
		})
	}

	sort.SliceStable(sessions, func(i, j int) bool {
		return sessions[i].SessionDate.After(sessions[j].SessionDate.Time)
	})
	return sessions, nil
}

func wait(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
