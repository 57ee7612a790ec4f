package models

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

const DateLayout = "2006-01-02"

// ID is an opaque record identifier. Backends may hand out numeric keys or
// strings; both are kept as their decimal/text form.
type ID string

func (id *ID) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if bytes.Equal(b, []byte("null")) {
		*id = ""
		return nil
	}
	if len(b) > 0 && b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*id = ID(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(b, &n); err != nil {
		return fmt.Errorf("models: id must be a string or number, got %s", b)
	}
	*id = ID(n.String())
	return nil
}

func (id ID) String() string {
	return string(id)
}

// Date is a calendar date without a time of day.
type Date struct {
	time.Time
}

func NewDate(year int, month time.Month, day int) Date {
	return Date{time.Date(year, month, day, 0, 0, 0, 0, time.UTC)}
}

func ParseDate(s string) (Date, error) {
	// Timestamps are accepted and truncated to their date.
	if len(s) > len(DateLayout) {
		s = s[:len(DateLayout)]
	}
	t, err := time.Parse(DateLayout, s)
	if err != nil {
		return Date{}, fmt.Errorf("models: parse date %q: %w", s, err)
	}
	return Date{t}, nil
}

func DateOf(t time.Time) Date {
	y, m, d := t.Date()
	return NewDate(y, m, d)
}

func (d Date) String() string {
	return d.Format(DateLayout)
}

func (d Date) MarshalJSON() ([]byte, error) {
	return json.Marshal(d.String())
}

func (d *Date) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return err
	}
	parsed, err := ParseDate(s)
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}

type Employee struct {
	ID             ID     `json:"id"`
	FirstName      string `json:"first_name"`
	LastName       string `json:"last_name"`
	Program        string `json:"program"`
	AvatarURL      string `json:"avatar_url,omitempty"`
	Email          string `json:"email,omitempty"`
	CompanyDetails string `json:"company_details,omitempty"`
}

func (e Employee) FullName() string {
	return e.FirstName + " " + e.LastName
}

func (e Employee) Summary() EmployeeSummary {
	return EmployeeSummary{
		FirstName: e.FirstName,
		LastName:  e.LastName,
		Program:   e.Program,
		AvatarURL: e.AvatarURL,
	}
}

// EmployeeSummary is the slice of an employee row carried by a joined
// session. It is a snapshot taken at fetch time.
type EmployeeSummary struct {
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Program   string `json:"program"`
	AvatarURL string `json:"avatar_url,omitempty"`
}

func (s EmployeeSummary) FullName() string {
	return s.FirstName + " " + s.LastName
}

// Initials is what the table shows in place of a missing avatar.
func (s EmployeeSummary) Initials() string {
	var b strings.Builder
	for _, part := range []string{s.FirstName, s.LastName} {
		for _, r := range part {
			b.WriteRune(r)
			break
		}
	}
	return strings.ToUpper(b.String())
}

type SessionRecord struct {
	ID              ID        `json:"id"`
	CreatedAt       time.Time `json:"created_at"`
	SessionDate     Date      `json:"session_date"`
	DurationMinutes int       `json:"duration_minutes"`
	Notes           string    `json:"notes"`
	EmployeeID      ID        `json:"employee_id"`

	// Joined fields. Always populated: sessions without a matching
	// employee are dropped by the join.
	Employee EmployeeSummary `json:"employees"`
}
