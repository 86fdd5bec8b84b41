package tui

import "github.com/charmbracelet/bubbles/key"

type keyMap struct {
	Player  key.Binding
	Banker  key.Binding
	Tie     key.Binding
	Undo    key.Binding
	Shuffle key.Binding
	Help    key.Binding
	Quit    key.Binding
}

func defaultKeyMap() keyMap {
	return keyMap{
		Player: key.NewBinding(
			key.WithKeys("p", "1"),
			key.WithHelp("p", "player"),
		),
		Banker: key.NewBinding(
			key.WithKeys("b", "2"),
			key.WithHelp("b", "banker"),
		),
		Tie: key.NewBinding(
			key.WithKeys("t", "3"),
			key.WithHelp("t", "tie"),
		),
		Undo: key.NewBinding(
			key.WithKeys("u", "backspace"),
			key.WithHelp("u", "undo"),
		),
		Shuffle: key.NewBinding(
			key.WithKeys("r"),
			key.WithHelp("r", "new shoe"),
		),
		Help: key.NewBinding(
			key.WithKeys("?"),
			key.WithHelp("?", "help"),
		),
		Quit: key.NewBinding(
			key.WithKeys("q", "ctrl+c", "esc"),
			key.WithHelp("q", "quit"),
		),
	}
}

// ShortHelp implements help.KeyMap.
func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Player, k.Banker, k.Tie, k.Undo, k.Shuffle, k.Quit}
}

// FullHelp implements help.KeyMap.
func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Player, k.Banker, k.Tie},
		{k.Undo, k.Shuffle},
		{k.Help, k.Quit},
	}
}
