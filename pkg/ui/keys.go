package ui

import (
	"github.com/charmbracelet/bubbles/key"
)

// KeyMap is the viewer's key bindings. It implements help.KeyMap.
type KeyMap struct {
	NextPanel key.Binding
	PrevPanel key.Binding
	Up        key.Binding
	Down      key.Binding
	Select    key.Binding
	Clear     key.Binding
	Center    key.Binding
	Search    key.Binding
	Open      key.Binding
	Copy      key.Binding
	Help      key.Binding
	Quit      key.Binding
}

// DefaultKeyMap returns the default bindings.
func DefaultKeyMap() KeyMap {
	return KeyMap{
		NextPanel: key.NewBinding(key.WithKeys("tab", "right", "l"), key.WithHelp("tab", "panneau suivant")),
		PrevPanel: key.NewBinding(key.WithKeys("shift+tab", "left", "h"), key.WithHelp("⇧tab", "panneau précédent")),
		Up:        key.NewBinding(key.WithKeys("up", "k"), key.WithHelp("↑/k", "monter")),
		Down:      key.NewBinding(key.WithKeys("down", "j"), key.WithHelp("↓/j", "descendre")),
		Select:    key.NewBinding(key.WithKeys("enter", " "), key.WithHelp("entrée", "sélectionner")),
		Clear:     key.NewBinding(key.WithKeys("esc"), key.WithHelp("échap", "effacer le focus")),
		Center:    key.NewBinding(key.WithKeys("g"), key.WithHelp("g", "centrer")),
		Search:    key.NewBinding(key.WithKeys("/"), key.WithHelp("/", "chercher")),
		Open:      key.NewBinding(key.WithKeys("o"), key.WithHelp("o", "aller à la fiche")),
		Copy:      key.NewBinding(key.WithKeys("c"), key.WithHelp("c", "copier le lien")),
		Help:      key.NewBinding(key.WithKeys("?"), key.WithHelp("?", "aide")),
		Quit:      key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "quitter")),
	}
}

// ShortHelp implements help.KeyMap.
func (k KeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.NextPanel, k.Select, k.Clear, k.Search, k.Open, k.Help, k.Quit}
}

// FullHelp implements help.KeyMap.
func (k KeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.NextPanel, k.PrevPanel, k.Up, k.Down},
		{k.Select, k.Clear, k.Center, k.Search},
		{k.Open, k.Copy, k.Help, k.Quit},
	}
}
