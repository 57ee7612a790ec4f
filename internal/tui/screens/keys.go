package screens

import (
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/table"
)

// KeyMap defines the key bindings shared by the screens
type KeyMap struct {
	Up   key.Binding
	Down key.Binding

	Search      key.Binding
	Blur        key.Binding
	NextProgram key.Binding
	PrevProgram key.Binding
	Reload      key.Binding
	Employees   key.Binding
	Back        key.Binding
}

func DefaultKeyMap() KeyMap {
	return KeyMap{
		Up: key.NewBinding(
			key.WithKeys("up", "k"),
			key.WithHelp("↑/k", "up"),
		),
		Down: key.NewBinding(
			key.WithKeys("down", "j"),
			key.WithHelp("↓/j", "down"),
		),
		Search: key.NewBinding(
			key.WithKeys("/"),
			key.WithHelp("/", "search"),
		),
		Blur: key.NewBinding(
			key.WithKeys("esc", "enter"),
			key.WithHelp("esc", "done"),
		),
		NextProgram: key.NewBinding(
			key.WithKeys("tab"),
			key.WithHelp("tab", "next program"),
		),
		PrevProgram: key.NewBinding(
			key.WithKeys("shift+tab"),
			key.WithHelp("shift+tab", "previous program"),
		),
		Reload: key.NewBinding(
			key.WithKeys("r"),
			key.WithHelp("r", "reload"),
		),
		Employees: key.NewBinding(
			key.WithKeys("e"),
			key.WithHelp("e", "employees"),
		),
		Back: key.NewBinding(
			key.WithKeys("esc", "q"),
			key.WithHelp("esc", "back"),
		),
	}
}

// tableKeyMap moves table rows with the shared Up/Down bindings.
func (k KeyMap) tableKeyMap() table.KeyMap {
	km := table.DefaultKeyMap()
	km.LineUp = k.Up
	km.LineDown = k.Down
	return km
}
