package screens

import (
	"context"
	"fmt"
	"log/slog"
	"slices"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/emilianohg/dashone/internal/dashboard"
	"github.com/emilianohg/dashone/internal/models"
	"github.com/emilianohg/dashone/internal/provider"
)

const EmptyResultText = "No sessions found matching your criteria."

type Dashboard struct {
	src    provider.Source
	logger *slog.Logger
	label  string
	demo   bool
	width  int
	height int

	keys    KeyMap
	search  textinput.Model
	spinner spinner.Model
	table   table.Model

	program  string
	loading  bool
	err      error
	snapshot *provider.Snapshot
	view     dashboard.ViewState

	// seq identifies the load in flight; older results are dropped.
	seq int
}

func NewDashboard(src provider.Source, logger *slog.Logger, label string, demo bool) *Dashboard {
	ti := textinput.New()
	ti.Placeholder = "Search by employee name..."
	ti.Prompt = "Search: "
	ti.CharLimit = 100
	ti.Width = 40

	keys := DefaultKeyMap()

	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = WarningStyle

	tbl := table.New(
		table.WithColumns([]table.Column{
			{Title: "Date", Width: 12},
			{Title: "Employee", Width: 22},
			{Title: "Program", Width: 14},
			{Title: "Duration", Width: 9},
			{Title: "Notes", Width: 40},
		}),
		table.WithFocused(true),
		table.WithKeyMap(keys.tableKeyMap()),
		table.WithHeight(10),
	)

	return &Dashboard{
		src:     src,
		logger:  logger,
		label:   label,
		demo:    demo,
		keys:    keys,
		search:  ti,
		spinner: sp,
		table:   tbl,
		program: dashboard.AllPrograms,
		loading: true,
	}
}

// SetFilters presets the search term and program filter.
func (d *Dashboard) SetFilters(search, program string) {
	d.search.SetValue(search)
	d.program = dashboard.NormalizeProgram(program)
	d.recompute()
}

func (d *Dashboard) SetSize(width, height int) {
	d.width = width
	d.height = height
	d.table.SetHeight(max(5, height-22))
}

// Capturing reports whether keystrokes belong to the search input.
func (d *Dashboard) Capturing() bool {
	return d.search.Focused()
}

func (d *Dashboard) Loading() bool { return d.loading }

func (d *Dashboard) Err() error { return d.err }

// State is the view currently on screen.
func (d *Dashboard) State() dashboard.ViewState { return d.view }

func (d *Dashboard) Program() string { return d.program }

func (d *Dashboard) SearchTerm() string { return d.search.Value() }

type dashboardDataMsg struct {
	seq      int
	snapshot *provider.Snapshot
	err      error
}

func (d *Dashboard) Init() tea.Cmd {
	d.seq++
	d.loading = true
	d.err = nil
	d.snapshot = nil
	return tea.Batch(d.loadData(d.seq), d.spinner.Tick)
}

func (d *Dashboard) loadData(seq int) tea.Cmd {
	src, logger := d.src, d.logger
	return func() tea.Msg {
		snap, err := provider.Load(context.Background(), src, logger)
		return dashboardDataMsg{seq: seq, snapshot: snap, err: err}
	}
}

func (d *Dashboard) Update(msg tea.Msg) tea.Cmd {
	switch msg := msg.(type) {
	case dashboardDataMsg:
		if msg.seq != d.seq {
			return nil
		}
		d.loading = false
		d.err = msg.err
		d.snapshot = msg.snapshot
		d.recompute()
		return nil

	case spinner.TickMsg:
		if !d.loading {
			return nil
		}
		var cmd tea.Cmd
		d.spinner, cmd = d.spinner.Update(msg)
		return cmd

	case RefreshMsg:
		return d.Init()

	case tea.KeyMsg:
		if d.search.Focused() {
			return d.handleSearchKey(msg)
		}
		return d.handleKey(msg)
	}

	if d.search.Focused() {
		var cmd tea.Cmd
		d.search, cmd = d.search.Update(msg)
		return cmd
	}
	return nil
}

func (d *Dashboard) handleSearchKey(msg tea.KeyMsg) tea.Cmd {
	if key.Matches(msg, d.keys.Blur) {
		d.search.Blur()
		d.table.Focus()
		return nil
	}

	before := d.search.Value()
	var cmd tea.Cmd
	d.search, cmd = d.search.Update(msg)
	if d.search.Value() != before {
		d.recompute()
	}
	return cmd
}

func (d *Dashboard) handleKey(msg tea.KeyMsg) tea.Cmd {
	if key.Matches(msg, d.keys.Reload) {
		return d.Init()
	}
	if d.loading || d.err != nil {
		return nil
	}

	switch {
	case key.Matches(msg, d.keys.Search):
		d.table.Blur()
		return d.search.Focus()
	case key.Matches(msg, d.keys.NextProgram):
		d.cycleProgram(1)
		return nil
	case key.Matches(msg, d.keys.PrevProgram):
		d.cycleProgram(-1)
		return nil
	case key.Matches(msg, d.keys.Employees):
		return Navigate(ScreenNameEmployees)
	}

	var cmd tea.Cmd
	d.table, cmd = d.table.Update(msg)
	return cmd
}

func (d *Dashboard) cycleProgram(step int) {
	programs := d.view.AvailablePrograms
	if len(programs) == 0 {
		return
	}
	idx := slices.Index(programs, d.program)
	if idx < 0 {
		idx = 0
		if step > 0 {
			idx = -1
		}
	}
	d.program = programs[(idx+step+len(programs))%len(programs)]
	d.recompute()
}

func (d *Dashboard) recompute() {
	if d.snapshot == nil {
		d.view = dashboard.ViewState{}
		d.table.SetRows(nil)
		return
	}
	d.view = dashboard.Compute(d.snapshot.Sessions, d.snapshot.Employees, d.search.Value(), d.program)
	d.table.SetRows(sessionRows(d.view.FilteredSessions))
	d.table.GotoTop()
}

func sessionRows(sessions []models.SessionRecord) []table.Row {
	rows := make([]table.Row, 0, len(sessions))
	for _, s := range sessions {
		program := s.Employee.Program
		if program == "" {
			program = "N/A"
		}
		rows = append(rows, table.Row{
			s.SessionDate.Format("Jan 02, 2006"),
			fmt.Sprintf("%s  %s", s.Employee.Initials(), s.Employee.FullName()),
			program,
			fmt.Sprintf("%d min", s.DurationMinutes),
			s.Notes,
		})
	}
	return rows
}

func (d *Dashboard) View() string {
	var b strings.Builder

	b.WriteString(TitleStyle.Render("SESSION TRACKING"))
	b.WriteString("\n")
	b.WriteString(Badge(d.label, d.demo))
	b.WriteString("\n\n")

	if d.loading {
		b.WriteString(d.viewSkeleton())
		return b.String()
	}

	if d.err != nil {
		b.WriteString(ErrorStyle.Bold(true).Render("Failed to Load Dashboard"))
		b.WriteString("\n\n")
		b.WriteString(NormalStyle.Render(d.err.Error()))
		b.WriteString("\n")
		b.WriteString(HelpStyle.Render("[r] Retry  [q] Quit"))
		return b.String()
	}

	b.WriteString(lipgloss.JoinHorizontal(lipgloss.Top,
		CardStyle.Render(fmt.Sprintf("Total Sessions\n%s", SelectedStyle.Render(fmt.Sprintf("%d", d.view.TotalSessions)))),
		CardStyle.Render(fmt.Sprintf("Active Employees\n%s", SelectedStyle.Render(fmt.Sprintf("%d", d.view.UniqueEmployeeCount)))),
		CardStyle.Render(fmt.Sprintf("Total Duration\n%s %s",
			SelectedStyle.Render(fmt.Sprintf("%d hrs", d.view.TotalHours())),
			DimStyle.Render(fmt.Sprintf("(%d minutes)", d.view.TotalDurationMinutes)),
		)),
	))
	b.WriteString("\n\n")

	b.WriteString(d.search.View())
	b.WriteString("    ")
	b.WriteString(d.viewProgram())
	b.WriteString("\n\n")

	if d.view.Empty() {
		b.WriteString(BoxStyle.Render(DimStyle.Render(EmptyResultText)))
	} else {
		b.WriteString(d.table.View())
	}
	b.WriteString("\n")

	help := "[/] Search  [tab] Program  [e] Employees  [r] Reload  [q] Quit"
	if d.search.Focused() {
		help = "[esc] Done"
	}
	b.WriteString(HelpStyle.Render(help))

	return b.String()
}

func (d *Dashboard) viewSkeleton() string {
	card := SkeletonStyle.Render("░░░░░░░░░░\n░░░░")
	var b strings.Builder
	b.WriteString(lipgloss.JoinHorizontal(lipgloss.Top, card, card, card))
	b.WriteString("\n\n")
	b.WriteString(d.spinner.View())
	b.WriteString(" Loading sessions...\n")
	return b.String()
}

func (d *Dashboard) viewProgram() string {
	var parts []string
	for _, p := range d.view.AvailablePrograms {
		if p == d.program {
			parts = append(parts, SelectedStyle.Render("["+p+"]"))
		} else {
			parts = append(parts, DimStyle.Render(p))
		}
	}
	if !slices.Contains(d.view.AvailablePrograms, d.program) {
		parts = append(parts, SelectedStyle.Render("["+d.program+"]"))
	}
	return "Program: " + strings.Join(parts, " ")
}
