// Package rest reads the dashboard tables through a hosted PostgREST query
// layer (the REST interface Supabase exposes) using the project's URL and
// anonymous key.
package rest

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/emilianohg/dashone/internal/models"
)

const (
	restPath = "/rest/v1/"

	rosterSelect  = "*"
	sessionSelect = "*,employees!inner(first_name,last_name,program,avatar_url)"
	sessionOrder  = "session_date.desc"
)

// Client is a read-only client for the employees and sessions tables.
type Client struct {
	baseURL    string
	anonKey    string
	httpClient *http.Client
}

type Option func(*Client)

func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		c.httpClient = hc
	}
}

func New(baseURL, anonKey string, opts ...Option) *Client {
	c := &Client{
		baseURL: baseURL,
		anonKey: anonKey,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// APIError is a non-2xx answer from the query layer.
type APIError struct {
	Status  int
	Code    string
	Message string
}

func (e *APIError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("HTTP %d", e.Status)
	}
	return e.Message
}

type errorBody struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Details string `json:"details"`
	Hint    string `json:"hint"`
}

type employeeRow struct {
	ID             models.ID `json:"id"`
	FirstName      string    `json:"first_name"`
	LastName       string    `json:"last_name"`
	Program        *string   `json:"program"`
	AvatarURL      *string   `json:"avatar_url"`
	Email          *string   `json:"email"`
	CompanyDetails *string   `json:"company_details"`
}

type summaryRow struct {
	FirstName string  `json:"first_name"`
	LastName  string  `json:"last_name"`
	Program   *string `json:"program"`
	AvatarURL *string `json:"avatar_url"`
}

type sessionRow struct {
	ID              models.ID   `json:"id"`
	CreatedAt       time.Time   `json:"created_at"`
	SessionDate     models.Date `json:"session_date"`
	DurationMinutes int         `json:"duration_minutes"`
	Notes           *string     `json:"notes"`
	EmployeeID      models.ID   `json:"employee_id"`
	Employees       *summaryRow `json:"employees"`
}

func (c *Client) FetchRoster(ctx context.Context) ([]models.Employee, error) {
	var rows []employeeRow
	if err := c.get(ctx, "employees", url.Values{"select": {rosterSelect}}, &rows); err != nil {
		return nil, err
	}

	employees := make([]models.Employee, 0, len(rows))
	for _, r := range rows {
		employees = append(employees, models.Employee{
			ID:             r.ID,
			FirstName:      r.FirstName,
			LastName:       r.LastName,
			Program:        deref(r.Program),
			AvatarURL:      deref(r.AvatarURL),
			Email:          deref(r.Email),
			CompanyDetails: deref(r.CompanyDetails),
		})
	}
	return employees, nil
}

func (c *Client) FetchSessions(ctx context.Context) ([]models.SessionRecord, error) {
	query := url.Values{
		"select": {sessionSelect},
		"order":  {sessionOrder},
	}

	var rows []sessionRow
	if err := c.get(ctx, "sessions", query, &rows); err != nil {
		return nil, err
	}

	sessions := make([]models.SessionRecord, 0, len(rows))
	for _, r := range rows {
		// !inner already filters these server side; a null embed would
		// only come from a misconfigured relationship.
		if r.Employees == nil {
			continue
		}
		sessions = append(sessions, models.SessionRecord{
			ID:              r.ID,
			CreatedAt:       r.CreatedAt,
			SessionDate:     r.SessionDate,
			DurationMinutes: r.DurationMinutes,
			Notes:           deref(r.Notes),
			EmployeeID:      r.EmployeeID,
			Employee: models.EmployeeSummary{
				FirstName: r.Employees.FirstName,
				LastName:  r.Employees.LastName,
				Program:   deref(r.Employees.Program),
				AvatarURL: deref(r.Employees.AvatarURL),
			},
		})
	}
	return sessions, nil
}

func (c *Client) get(ctx context.Context, table string, query url.Values, out any) error {
	endpoint := c.baseURL + restPath + table + "?" + query.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("apikey", c.anonKey)
	req.Header.Set("Authorization", "Bearer "+c.anonKey)
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("execute request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		apiErr := &APIError{Status: resp.StatusCode}
		var eb errorBody
		if json.Unmarshal(body, &eb) == nil && eb.Message != "" {
			apiErr.Code = eb.Code
			apiErr.Message = eb.Message
		} else if len(body) > 0 {
			apiErr.Message = fmt.Sprintf("HTTP %d: %s", resp.StatusCode, string(body))
		}
		return apiErr
	}

	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("unmarshal %s: %w", table, err)
	}
	return nil
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
