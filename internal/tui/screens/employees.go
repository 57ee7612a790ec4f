package screens

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/table"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/emilianohg/dashone/internal/models"
	"github.com/emilianohg/dashone/internal/provider"
)

// Employees lists the roster.
type Employees struct {
	src    provider.RosterProvider
	width  int
	height int

	keys      KeyMap
	table     table.Model
	employees []models.Employee
	loading   bool
	err       error
}

func NewEmployees(src provider.RosterProvider) *Employees {
	keys := DefaultKeyMap()
	tbl := table.New(
		table.WithColumns([]table.Column{
			{Title: "Name", Width: 24},
			{Title: "Program", Width: 14},
			{Title: "Email", Width: 28},
			{Title: "Company", Width: 24},
		}),
		table.WithFocused(true),
		table.WithKeyMap(keys.tableKeyMap()),
		table.WithHeight(12),
	)

	return &Employees{
		src:   src,
		keys:  keys,
		table: tbl,
	}
}

func (e *Employees) SetSize(width, height int) {
	e.width = width
	e.height = height
	e.table.SetHeight(max(5, height-10))
}

type employeesDataMsg struct {
	employees []models.Employee
	err       error
}

func (e *Employees) Init() tea.Cmd {
	e.loading = true
	e.err = nil
	return e.loadData
}

func (e *Employees) loadData() tea.Msg {
	employees, err := e.src.FetchRoster(context.Background())
	return employeesDataMsg{employees: employees, err: err}
}

func (e *Employees) Update(msg tea.Msg) tea.Cmd {
	switch msg := msg.(type) {
	case employeesDataMsg:
		e.loading = false
		e.err = msg.err
		e.employees = msg.employees
		e.table.SetRows(employeeRows(e.employees))
		return nil

	case RefreshMsg:
		return e.Init()

	case tea.KeyMsg:
		switch {
		case key.Matches(msg, e.keys.Back):
			return Navigate(ScreenNameDashboard)
		case key.Matches(msg, e.keys.Reload):
			return Refresh()
		}
		var cmd tea.Cmd
		e.table, cmd = e.table.Update(msg)
		return cmd
	}

	return nil
}

func employeeRows(employees []models.Employee) []table.Row {
	rows := make([]table.Row, 0, len(employees))
	for _, emp := range employees {
		program := emp.Program
		if program == "" {
			program = "N/A"
		}
		rows = append(rows, table.Row{emp.FullName(), program, emp.Email, emp.CompanyDetails})
	}
	return rows
}

func (e *Employees) View() string {
	var b strings.Builder

	b.WriteString(TitleStyle.Render("EMPLOYEES"))
	b.WriteString("\n")

	if e.loading {
		b.WriteString("Loading...\n")
		return b.String()
	}

	if e.err != nil {
		b.WriteString(ErrorStyle.Render(fmt.Sprintf("Error: %v", e.err)))
		b.WriteString("\n")
		b.WriteString(HelpStyle.Render("[r] Retry  [esc] Back"))
		return b.String()
	}

	b.WriteString(SubtitleStyle.Render(fmt.Sprintf("%d employees", len(e.employees))))
	b.WriteString("\n")

	if len(e.employees) == 0 {
		b.WriteString(DimStyle.Render("No employees yet."))
	} else {
		b.WriteString(e.table.View())
	}
	b.WriteString("\n")

	b.WriteString(HelpStyle.Render("[↑/↓] Navigate  [r] Reload  [esc] Back"))

	return b.String()
}
