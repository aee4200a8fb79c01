package tui

import "github.com/charmbracelet/bubbles/key"

// keyMap holds every binding the app responds to, grouped by concern.
// Text-entry states bypass it and consume runes directly.
type keyMap struct {
	Quit    key.Binding
	Tab     key.Binding
	PrevTab key.Binding

	Up    key.Binding
	Down  key.Binding
	Left  key.Binding
	Right key.Binding
	Enter key.Binding
	Back  key.Binding

	AddMode    key.Binding
	DeleteMode key.Binding
	Toggle     key.Binding
	Range      key.Binding
	Proceed    key.Binding
	SelectAll  key.Binding

	New    key.Binding
	Edit   key.Binding
	Delete key.Binding
	Paste  key.Binding

	NextPage key.Binding
	PrevPage key.Binding
}

func newKeyMap() keyMap {
	return keyMap{
		Quit:    key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "quit")),
		Tab:     key.NewBinding(key.WithKeys("tab"), key.WithHelp("tab", "next view")),
		PrevTab: key.NewBinding(key.WithKeys("shift+tab"), key.WithHelp("shift+tab", "prev view")),

		Up:    key.NewBinding(key.WithKeys("up", "k"), key.WithHelp("↑/k", "up")),
		Down:  key.NewBinding(key.WithKeys("down", "j"), key.WithHelp("↓/j", "down")),
		Left:  key.NewBinding(key.WithKeys("left", "h"), key.WithHelp("←/h", "left")),
		Right: key.NewBinding(key.WithKeys("right", "l"), key.WithHelp("→/l", "right")),
		Enter: key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "open")),
		Back:  key.NewBinding(key.WithKeys("esc"), key.WithHelp("esc", "back")),

		AddMode:    key.NewBinding(key.WithKeys("a"), key.WithHelp("a", "add samples")),
		DeleteMode: key.NewBinding(key.WithKeys("d"), key.WithHelp("d", "delete samples")),
		Toggle:     key.NewBinding(key.WithKeys(" "), key.WithHelp("space", "toggle cell")),
		Range:      key.NewBinding(key.WithKeys("v"), key.WithHelp("v", "select to anchor")),
		Proceed:    key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "proceed")),
		SelectAll:  key.NewBinding(key.WithKeys("ctrl+a"), key.WithHelp("ctrl+a", "select all")),

		New:    key.NewBinding(key.WithKeys("n"), key.WithHelp("n", "new")),
		Edit:   key.NewBinding(key.WithKeys("e"), key.WithHelp("e", "edit")),
		Delete: key.NewBinding(key.WithKeys("x"), key.WithHelp("x", "delete")),
		Paste:  key.NewBinding(key.WithKeys("p"), key.WithHelp("p", "paste rows")),

		NextPage: key.NewBinding(key.WithKeys("]", "pgdown"), key.WithHelp("]", "next page")),
		PrevPage: key.NewBinding(key.WithKeys("[", "pgup"), key.WithHelp("[", "prev page")),
	}
}
