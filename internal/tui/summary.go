package tui

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"text/tabwriter"

	"github.com/emilianohg/dashone/internal/dashboard"
	"github.com/emilianohg/dashone/internal/provider"
	"github.com/emilianohg/dashone/internal/tui/screens"
)

// PrintSummary loads the backend once and writes the filtered view to w.
func PrintSummary(ctx context.Context, w io.Writer, backend *provider.Backend, logger *slog.Logger, opts Options) error {
	snap, err := provider.Load(ctx, backend, logger)
	if err != nil {
		return err
	}
	view := dashboard.Compute(snap.Sessions, snap.Employees, opts.Search, dashboard.NormalizeProgram(opts.Program))
	return WriteSummary(w, backend.Label(), view)
}

// WriteSummary prints the view as plain text, for when there is no
// terminal to draw the dashboard on.
func WriteSummary(w io.Writer, label string, v dashboard.ViewState) error {
	fmt.Fprintf(w, "Session Tracking (%s)\n\n", label)
	fmt.Fprintf(w, "Total Sessions:   %d\n", v.TotalSessions)
	fmt.Fprintf(w, "Active Employees: %d\n", v.UniqueEmployeeCount)
	fmt.Fprintf(w, "Total Duration:   %d hrs (%d minutes)\n\n", v.TotalHours(), v.TotalDurationMinutes)

	if v.Empty() {
		_, err := fmt.Fprintln(w, screens.EmptyResultText)
		return err
	}

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "DATE\tEMPLOYEE\tPROGRAM\tDURATION\tNOTES")
	for _, s := range v.FilteredSessions {
		program := s.Employee.Program
		if program == "" {
			program = "N/A"
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%d min\t%s\n",
			s.SessionDate, s.Employee.FullName(), program, s.DurationMinutes, s.Notes)
	}
	return tw.Flush()
}
