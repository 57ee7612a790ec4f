package tui

import (
	"log/slog"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/emilianohg/dashone/internal/provider"
	"github.com/emilianohg/dashone/internal/tui/screens"
)

type Screen int

const (
	ScreenDashboard Screen = iota
	ScreenEmployees
)

// Options are the initial filter values, usually taken from flags.
type Options struct {
	Search  string
	Program string
}

type App struct {
	backend       *provider.Backend
	logger        *slog.Logger
	opts          Options
	currentScreen Screen
	width         int
	height        int

	// Screen models
	dashboard *screens.Dashboard
	employees *screens.Employees
}

func NewApp(backend *provider.Backend, logger *slog.Logger, opts Options) *App {
	a := &App{
		backend:       backend,
		logger:        logger,
		opts:          opts,
		currentScreen: ScreenDashboard,
	}
	a.dashboard = screens.NewDashboard(backend, logger, backend.Label(), backend.Demo)
	a.dashboard.SetFilters(opts.Search, opts.Program)
	a.employees = screens.NewEmployees(backend)
	return a
}

func (a *App) Init() tea.Cmd {
	return a.dashboard.Init()
}

func (a *App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c":
			return a, tea.Quit
		case "q":
			if a.currentScreen == ScreenDashboard && !a.dashboard.Capturing() {
				return a, tea.Quit
			}
			// Let individual screens handle 'q' for going back
		}

	case tea.WindowSizeMsg:
		a.width = msg.Width
		a.height = msg.Height
		a.dashboard.SetSize(msg.Width, msg.Height)
		a.employees.SetSize(msg.Width, msg.Height)

	case screens.NavigateMsg:
		return a.handleNavigation(msg)
	}

	// Update current screen
	var cmd tea.Cmd
	switch a.currentScreen {
	case ScreenDashboard:
		cmd = a.dashboard.Update(msg)
	case ScreenEmployees:
		cmd = a.employees.Update(msg)
	}

	return a, cmd
}

func (a *App) handleNavigation(msg screens.NavigateMsg) (tea.Model, tea.Cmd) {
	switch msg.Screen {
	case screens.ScreenNameDashboard:
		// The dashboard keeps its snapshot; 'r' reloads it.
		a.currentScreen = ScreenDashboard
		return a, nil
	case screens.ScreenNameEmployees:
		a.currentScreen = ScreenEmployees
		return a, a.employees.Init()
	}
	return a, nil
}

func (a *App) View() string {
	var content string

	switch a.currentScreen {
	case ScreenDashboard:
		content = a.dashboard.View()
	case ScreenEmployees:
		content = a.employees.View()
	}

	return lipgloss.NewStyle().
		Width(a.width).
		Height(a.height).
		Render(content)
}

func Run(backend *provider.Backend, logger *slog.Logger, opts Options) error {
	app := NewApp(backend, logger, opts)
	p := tea.NewProgram(app, tea.WithAltScreen())
	_, err := p.Run()
	return err
}
