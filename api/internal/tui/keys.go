package tui

import (
	"github.com/charmbracelet/bubbles/key"
)

type keymap struct {
	next      key.Binding
	prev      key.Binding
	up        key.Binding
	down      key.Binding
	toggle    key.Binding
	submit    key.Binding
	clear     key.Binding
	scan      key.Binding
	confirm   key.Binding
	escape    key.Binding
	openHelp  key.Binding
	closeHelp key.Binding
	quit      key.Binding
}

func newKeymap() keymap {
	km := keymap{
		next: key.NewBinding(
			key.WithKeys("tab"),
			key.WithHelp("tab", "next field"),
		),
		prev: key.NewBinding(
			key.WithKeys("shift+tab"),
			key.WithHelp("shift+tab", "prev field"),
		),
		up: key.NewBinding(
			key.WithKeys("up", "k"),
			key.WithHelp("↑/k", "up"),
		),
		down: key.NewBinding(
			key.WithKeys("down", "j"),
			key.WithHelp("↓/j", "down"),
		),
		toggle: key.NewBinding(
			key.WithKeys(" ", "enter"),
			key.WithHelp("space", "toggle"),
		),
		submit: key.NewBinding(
			key.WithKeys("ctrl+s"),
			key.WithHelp("ctrl+s", "submit"),
		),
		clear: key.NewBinding(
			key.WithKeys("ctrl+l"),
			key.WithHelp("ctrl+l", "clear"),
		),
		scan: key.NewBinding(
			key.WithKeys("ctrl+o"),
			key.WithHelp("ctrl+o", "scan file"),
		),
		confirm: key.NewBinding(
			key.WithKeys("enter"),
			key.WithHelp("enter", "scan"),
		),
		escape: key.NewBinding(
			key.WithKeys("esc"),
			key.WithHelp("esc", "back"),
		),
		openHelp: key.NewBinding(
			key.WithKeys("ctrl+h"),
			key.WithHelp("ctrl+h", "more"),
		),
		closeHelp: key.NewBinding(
			key.WithKeys("ctrl+h"),
			key.WithHelp("ctrl+h", "close help"),
		),
		quit: key.NewBinding(
			key.WithKeys("ctrl+c"),
			key.WithHelp("ctrl+c", "quit"),
		),
	}
	km.closeHelp.SetEnabled(false)
	return km
}

func (k keymap) ShortHelp() []key.Binding {
	return []key.Binding{k.next, k.submit, k.scan, k.clear, k.quit, k.openHelp}
}

func (k keymap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.next, k.prev, k.up, k.down, k.toggle},
		{k.submit, k.scan, k.confirm, k.escape},
		{k.clear, k.quit, k.closeHelp},
	}
}
