package ui

import "github.com/charmbracelet/bubbles/key"

type keyMap struct {
	Next       key.Binding
	Submit     key.Binding
	Up         key.Binding
	Down       key.Binding
	Dismiss    key.Binding
	DismissAll key.Binding
	Action     key.Binding
	Quit       key.Binding
}

func defaultKeyMap() keyMap {
	return keyMap{
		Next:       key.NewBinding(key.WithKeys("tab"), key.WithHelp("tab", "focus")),
		Submit:     key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "run")),
		Up:         key.NewBinding(key.WithKeys("up", "k"), key.WithHelp("↑", "up")),
		Down:       key.NewBinding(key.WithKeys("down", "j"), key.WithHelp("↓", "down")),
		Dismiss:    key.NewBinding(key.WithKeys("ctrl+d"), key.WithHelp("^d", "dismiss")),
		DismissAll: key.NewBinding(key.WithKeys("ctrl+x"), key.WithHelp("^x", "dismiss all")),
		Action:     key.NewBinding(key.WithKeys("ctrl+y"), key.WithHelp("^y", "toast action")),
		Quit:       key.NewBinding(key.WithKeys("ctrl+c"), key.WithHelp("^c", "quit")),
	}
}

func (k keyMap) help() []key.Binding {
	return []key.Binding{k.Next, k.Submit, k.Dismiss, k.DismissAll, k.Action, k.Quit}
}
