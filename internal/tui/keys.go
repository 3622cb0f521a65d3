package tui

import "github.com/charmbracelet/bubbles/key"

// keyMap defines the key bindings of normal mode.
type keyMap struct {
	Left     key.Binding
	Right    key.Binding
	Up       key.Binding
	Down     key.Binding
	PrevWeek key.Binding
	NextWeek key.Binding
	Today    key.Binding
	Detail   key.Binding
	Reminder key.Binding
	Copy     key.Binding
	Search   key.Binding
	Clear    key.Binding
	Reload   key.Binding
	Help     key.Binding
	Quit     key.Binding
}

func defaultKeyMap() keyMap {
	return keyMap{
		Left: key.NewBinding(
			key.WithKeys("left", "h"),
			key.WithHelp("←/h", "prev day"),
		),
		Right: key.NewBinding(
			key.WithKeys("right", "l"),
			key.WithHelp("→/l", "next day"),
		),
		Up: key.NewBinding(
			key.WithKeys("up", "k"),
			key.WithHelp("↑/k", "prev period"),
		),
		Down: key.NewBinding(
			key.WithKeys("down", "j"),
			key.WithHelp("↓/j", "next period"),
		),
		PrevWeek: key.NewBinding(
			key.WithKeys("p", "["),
			key.WithHelp("p/[", "prev week"),
		),
		NextWeek: key.NewBinding(
			key.WithKeys("n", "]"),
			key.WithHelp("n/]", "next week"),
		),
		Today: key.NewBinding(
			key.WithKeys("t"),
			key.WithHelp("t", "this week"),
		),
		Detail: key.NewBinding(
			key.WithKeys("enter"),
			key.WithHelp("enter", "details"),
		),
		Reminder: key.NewBinding(
			key.WithKeys("r"),
			key.WithHelp("r", "toggle reminder"),
		),
		Copy: key.NewBinding(
			key.WithKeys("y"),
			key.WithHelp("y", "copy"),
		),
		Search: key.NewBinding(
			key.WithKeys("/"),
			key.WithHelp("/", "search"),
		),
		Clear: key.NewBinding(
			key.WithKeys("esc"),
			key.WithHelp("esc", "clear search"),
		),
		Reload: key.NewBinding(
			key.WithKeys("R"),
			key.WithHelp("R", "reload"),
		),
		Help: key.NewBinding(
			key.WithKeys("?"),
			key.WithHelp("?", "more"),
		),
		Quit: key.NewBinding(
			key.WithKeys("q", "ctrl+c"),
			key.WithHelp("q", "quit"),
		),
	}
}

// ShortHelp implements help.KeyMap.
func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.PrevWeek, k.NextWeek, k.Detail, k.Search, k.Help, k.Quit}
}

// FullHelp implements help.KeyMap.
func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Left, k.Right, k.Up, k.Down},
		{k.PrevWeek, k.NextWeek, k.Today},
		{k.Detail, k.Reminder, k.Copy},
		{k.Search, k.Clear, k.Reload, k.Help, k.Quit},
	}
}
