package tui

import "github.com/charmbracelet/bubbles/key"

// keyMap defines the dashboard shortcuts. It implements help.KeyMap.
type keyMap struct {
	NextTab  key.Binding
	PrevTab  key.Binding
	New      key.Binding
	Edit     key.Binding
	Delete   key.Binding
	PrevPage key.Binding
	NextPage key.Binding
	Size     key.Binding
	Refresh  key.Binding
	Logout   key.Binding
	Quit     key.Binding
}

var keys = keyMap{
	NextTab:  key.NewBinding(key.WithKeys("tab"), key.WithHelp("tab", "next")),
	PrevTab:  key.NewBinding(key.WithKeys("shift+tab"), key.WithHelp("shift+tab", "prev")),
	New:      key.NewBinding(key.WithKeys("n"), key.WithHelp("n", "new")),
	Edit:     key.NewBinding(key.WithKeys("e"), key.WithHelp("e", "edit")),
	Delete:   key.NewBinding(key.WithKeys("d"), key.WithHelp("d", "delete")),
	PrevPage: key.NewBinding(key.WithKeys("["), key.WithHelp("[", "prev page")),
	NextPage: key.NewBinding(key.WithKeys("]"), key.WithHelp("]", "next page")),
	Size:     key.NewBinding(key.WithKeys("+"), key.WithHelp("+", "page size")),
	Refresh:  key.NewBinding(key.WithKeys("r"), key.WithHelp("r", "refresh")),
	Logout:   key.NewBinding(key.WithKeys("L"), key.WithHelp("L", "logout")),
	Quit:     key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "quit")),
}

func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.NextTab, k.New, k.Edit, k.Delete, k.Refresh, k.Logout, k.Quit}
}

func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.NextTab, k.PrevTab},
		{k.New, k.Edit, k.Delete},
		{k.PrevPage, k.NextPage, k.Size, k.Refresh},
		{k.Logout, k.Quit},
	}
}
