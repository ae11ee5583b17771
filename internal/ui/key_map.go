package ui

import "github.com/charmbracelet/bubbles/key"

// keyMap defines the [key.Binding] mapping for the TUI.
type keyMap struct {
	up       key.Binding
	down     key.Binding
	enter    key.Binding
	back     key.Binding
	search   key.Binding
	genre    key.Binding
	wishlist key.Binding
	tab      key.Binding
	refresh  key.Binding
	sync     key.Binding
	quit     key.Binding
}

func newKeyMap() keyMap {
	return keyMap{
		up:       key.NewBinding(key.WithKeys("up", "k"), key.WithHelp("↑/k", "up")),
		down:     key.NewBinding(key.WithKeys("down", "j"), key.WithHelp("↓/j", "down")),
		enter:    key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "details")),
		back:     key.NewBinding(key.WithKeys("esc"), key.WithHelp("esc", "back")),
		search:   key.NewBinding(key.WithKeys("/"), key.WithHelp("/", "search")),
		genre:    key.NewBinding(key.WithKeys("g"), key.WithHelp("g", "genre")),
		wishlist: key.NewBinding(key.WithKeys("w"), key.WithHelp("w", "wishlist ♥")),
		tab:      key.NewBinding(key.WithKeys("tab"), key.WithHelp("tab", "wishlist view")),
		refresh:  key.NewBinding(key.WithKeys("r"), key.WithHelp("r", "reload")),
		sync:     key.NewBinding(key.WithKeys("S"), key.WithHelp("S", "sync now")),
		quit:     key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "quit")),
	}
}

func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.search, k.genre, k.wishlist, k.tab, k.quit}
}

func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.up, k.down, k.enter},
		{k.search, k.genre, k.wishlist},
		{k.tab, k.refresh, k.sync},
		{k.back, k.quit},
	}
}
