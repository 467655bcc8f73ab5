package ui

import "github.com/charmbracelet/bubbles/key"

// keyMap lists the bindings shown in the help bar. Navigation keys are
// resolved through navigator.ActionForKey so every shell agrees on them;
// the bindings here only describe them.
type keyMap struct {
	Prev   key.Binding
	Next   key.Binding
	First  key.Binding
	Last   key.Binding
	Jump   key.Binding
	Scroll key.Binding
	Help   key.Binding
	Quit   key.Binding
}

func defaultKeyMap() keyMap {
	return keyMap{
		Prev: key.NewBinding(
			key.WithKeys("left", "h", "pgup"),
			key.WithHelp("←/h", "prev"),
		),
		Next: key.NewBinding(
			key.WithKeys("right", "l", "pgdown", " "),
			key.WithHelp("→/l", "next"),
		),
		First: key.NewBinding(
			key.WithKeys("home", "g"),
			key.WithHelp("home/g", "first"),
		),
		Last: key.NewBinding(
			key.WithKeys("end", "G"),
			key.WithHelp("end/G", "last"),
		),
		Jump: key.NewBinding(
			key.WithKeys(":"),
			key.WithHelp(":", "jump to id"),
		),
		Scroll: key.NewBinding(
			key.WithKeys("up", "down", "j", "k"),
			key.WithHelp("↑/↓", "scroll"),
		),
		Help: key.NewBinding(
			key.WithKeys("?"),
			key.WithHelp("?", "help"),
		),
		Quit: key.NewBinding(
			key.WithKeys("q", "ctrl+c"),
			key.WithHelp("q", "quit"),
		),
	}
}

func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Prev, k.Next, k.Jump, k.Help, k.Quit}
}

func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Prev, k.Next, k.First, k.Last},
		{k.Jump, k.Scroll},
		{k.Help, k.Quit},
	}
}
