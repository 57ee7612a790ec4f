// Package dashboard derives what the session dashboard displays from a
// loaded roster and session list plus the current search and program
// filters.
package dashboard

import (
	"math"
	"strings"

	"github.com/emilianohg/dashone/internal/models"
)

const (
	// AllPrograms disables the program filter.
	AllPrograms = "All"

	// UnknownProgram stands in for a session whose employee has no program.
	UnknownProgram = "Unknown"
)

type ViewState struct {
	FilteredSessions     []models.SessionRecord `json:"filtered_sessions"`
	TotalSessions        int                    `json:"total_sessions"`
	TotalDurationMinutes int                    `json:"total_duration_minutes"`
	UniqueEmployeeCount  int                    `json:"unique_employee_count"`
	AvailablePrograms    []string               `json:"available_programs"`
}

// Compute filters sessions by employee name and program and aggregates the
// result. Input order is preserved. It never fails; empty inputs give a
// zero view whose program list is just AllPrograms.
func Compute(sessions []models.SessionRecord, employees []models.Employee, searchTerm, programFilter string) ViewState {
	needle := strings.ToLower(searchTerm)

	filtered := make([]models.SessionRecord, 0, len(sessions))
	seen := make(map[models.ID]struct{})
	total := 0

	for _, s := range sessions {
		if !matches(s, needle, programFilter) {
			continue
		}
		filtered = append(filtered, s)
		total += s.DurationMinutes
		seen[s.EmployeeID] = struct{}{}
	}

	return ViewState{
		FilteredSessions:     filtered,
		TotalSessions:        len(filtered),
		TotalDurationMinutes: total,
		UniqueEmployeeCount:  len(seen),
		AvailablePrograms:    Programs(employees),
	}
}

func matches(s models.SessionRecord, needle, programFilter string) bool {
	name := strings.ToLower(s.Employee.FullName())
	if !strings.Contains(name, needle) {
		return false
	}
	return programFilter == AllPrograms || SessionProgram(s) == programFilter
}

// NormalizeProgram treats an unset program filter as AllPrograms.
func NormalizeProgram(program string) string {
	if program == "" {
		return AllPrograms
	}
	return program
}

// SessionProgram is the program a session is filtered under.
func SessionProgram(s models.SessionRecord) string {
	if s.Employee.Program == "" {
		return UnknownProgram
	}
	return s.Employee.Program
}

// Programs lists AllPrograms followed by each distinct non-empty roster
// program in first-seen order.
func Programs(employees []models.Employee) []string {
	programs := []string{AllPrograms}
	seen := make(map[string]struct{})
	for _, e := range employees {
		if e.Program == "" {
			continue
		}
		if _, ok := seen[e.Program]; ok {
			continue
		}
		seen[e.Program] = struct{}{}
		programs = append(programs, e.Program)
	}
	return programs
}

// TotalHours rounds the filtered duration to whole hours.
func (v ViewState) TotalHours() int {
	return int(math.Round(float64(v.TotalDurationMinutes) / 60))
}

// Empty reports whether no session survived the filters.
func (v ViewState) Empty() bool {
	return len(v.FilteredSessions) == 0
}
