package tui

import "github.com/charmbracelet/bubbles/key"

type keyMap struct {
	Up      key.Binding
	Down    key.Binding
	Left    key.Binding
	Right   key.Binding
	Select  key.Binding
	Restart key.Binding
	Exit    key.Binding
	Quit    key.Binding
	Help    key.Binding
}

func newKeyMap() keyMap {
	return keyMap{
		Up: key.NewBinding(
			key.WithKeys("up", "k"),
			key.WithHelp("↑/k", "up"),
		),
		Down: key.NewBinding(
			key.WithKeys("down", "j"),
			key.WithHelp("↓/j", "down"),
		),
		Left: key.NewBinding(
			key.WithKeys("left", "h"),
			key.WithHelp("←/h", "left"),
		),
		Right: key.NewBinding(
			key.WithKeys("right", "l"),
			key.WithHelp("→/l", "right"),
		),
		Select: key.NewBinding(
			key.WithKeys("enter", " "),
			key.WithHelp("enter", "select"),
		),
		Restart: key.NewBinding(
			key.WithKeys("r"),
			key.WithHelp("r", "play again"),
		),
		Exit: key.NewBinding(
			key.WithKeys("x", "esc"),
			key.WithHelp("x/esc", "exit game"),
		),
		Quit: key.NewBinding(
			key.WithKeys("q", "ctrl+c"),
			key.WithHelp("q", "quit"),
		),
		Help: key.NewBinding(
			key.WithKeys("?"),
			key.WithHelp("?", "more keys"),
		),
	}
}

// forSetup adjusts help text and enabled keys for the size selector
func (k *keyMap) forSetup() {
	k.Up.SetEnabled(true)
	k.Down.SetEnabled(true)
	k.Left.SetEnabled(true)
	k.Right.SetEnabled(true)
	k.Select.SetEnabled(true)
	k.Left.SetHelp("←/h", "smaller")
	k.Right.SetHelp("→/l", "larger")
	k.Select.SetHelp("enter", "start")
	k.Restart.SetEnabled(false)
	k.Exit.SetEnabled(false)
}

// forRun adjusts help text and enabled keys for the board
func (k *keyMap) forRun(over bool) {
	k.Up.SetEnabled(!over)
	k.Down.SetEnabled(!over)
	k.Left.SetEnabled(!over)
	k.Right.SetEnabled(!over)
	k.Select.SetEnabled(!over)
	k.Left.SetHelp("←/h", "left")
	k.Right.SetHelp("→/l", "right")
	k.Select.SetHelp("enter", "select")
	k.Restart.SetEnabled(true)
	k.Exit.SetEnabled(true)
}

func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Select, k.Restart, k.Exit, k.Quit, k.Help}
}

func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Up, k.Down, k.Left, k.Right},
		{k.Select, k.Restart, k.Exit},
		{k.Help, k.Quit},
	}
}
