package dashboard

import "github.com/charmbracelet/bubbles/key"

// keyMap holds the dashboard key bindings and feeds the help view.
type keyMap struct {
	Quit   key.Binding
	Help   key.Binding
	Spark  key.Binding
	Freeze key.Binding
}

var keys = keyMap{
	Quit: key.NewBinding(
		key.WithKeys("q", "ctrl+c"),
		key.WithHelp("q", "quit"),
	),
	Help: key.NewBinding(
		key.WithKeys("?"),
		key.WithHelp("?", "help"),
	),
	Spark: key.NewBinding(
		key.WithKeys("s"),
		key.WithHelp("s", "toggle sparkline"),
	),
	Freeze: key.NewBinding(
		key.WithKeys("p", " "),
		key.WithHelp("p", "pause display"),
	),
}

// ShortHelp implements help.KeyMap.
func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Quit, k.Help}
}

// FullHelp implements help.KeyMap.
func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Quit, k.Help},
		{k.Spark, k.Freeze},
	}
}
