package ui

import (
	"strings"

	"github.com/charmbracelet/bubbles/viewport"
	"github.com/charmbracelet/glamour"
)

const helpMarkdown = `# Pantheon

Le graphe est centré sur une figure. Autour d'elle, quatre panneaux :
**Parents**, **Fratrie**, **Consorts** et **Enfants**.

## Focus

- Un clic sur un **consort** met en avant ses enfants ; les autres enfants
  sont atténués.
- Un clic sur un **enfant** met en avant ses parents parmi les consorts et
  regroupe sa fratrie autour de lui.
- Un second clic sur le même nœud recentre le graphe sur cette figure.
- Un clic hors des nœuds efface le focus et rétablit l'ordre alphabétique.

## Légende

| Marque | Sens |
|---|---|
| ▶ | nœud actif |
| ● | lié au focus |
| ◆ | fratrie de l'enfant en focus |
| · | atténué |

## Souris

Glisser dans un panneau le fait défiler, comme la molette.
`

// helpOverlay renders the help text with glamour inside a viewport.
type helpOverlay struct {
	vp       viewport.Model
	rendered string
	width    int
	style    string
}

func newHelpOverlay(theme string) helpOverlay {
	style := "dark"
	if theme == "light" {
		style = "light"
	}
	return helpOverlay{vp: viewport.New(0, 0), style: style}
}

// resize rerenders the markdown when the width changes.
func (h *helpOverlay) resize(width, height int) {
	h.vp.Width = width
	h.vp.Height = height
	if width == h.width && h.rendered != "" {
		return
	}
	h.width = width
	h.rendered = renderHelp(width, h.style)
	h.vp.SetContent(h.rendered)
}

func (h helpOverlay) View() string { return h.vp.View() }

// renderHelp falls back to the raw markdown when glamour cannot render.
func renderHelp(width int, style string) string {
	r, err := glamour.NewTermRenderer(
		glamour.WithStandardStyle(style),
		glamour.WithWordWrap(max(width-4, 20)),
	)
	if err != nil {
		return helpMarkdown
	}
	out, err := r.Render(helpMarkdown)
	if err != nil {
		return helpMarkdown
	}
	return strings.TrimRight(out, "\n")
}
