package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"

	"github.com/vanderheijden86/pantheon/pkg/layout"
	"github.com/vanderheijden86/pantheon/pkg/metrics"
	"github.com/vanderheijden86/pantheon/pkg/model"
)

// actionLabel is the clickable text on the central card.
const actionLabel = "→ " + ProfileAction

// View implements tea.Model.
func (m Model) View() string {
	w, h := m.size.W, m.size.H
	switch {
	case m.loading:
		return m.centered(LoadingMessage, m.theme.Message)
	case m.loadErr != nil:
		return m.centered(LoadErrorMessage+"\n"+m.loadErr.Error(), m.theme.ErrorText)
	case !m.columns.Fits(m.size):
		return m.centered(fmt.Sprintf("Terminal trop petit (%dx%d minimum)", layout.MinWidth, layout.MinHeight), m.theme.ErrorText)
	}
	if m.showHelp {
		return lipgloss.JoinVertical(lipgloss.Left,
			m.renderHeader(w),
			m.helpView.View(),
			m.theme.MutedText.Render(fit(" ? ou échap pour fermer", w)),
		)
	}
	if m.ctrl == nil || m.ctrl.Central() == nil {
		msg := NoDataMessage
		if m.ctrl != nil && m.ctrl.Message() != "" {
			msg = m.ctrl.Message()
		}
		body := lipgloss.Place(w, h-1, lipgloss.Center, lipgloss.Center, m.theme.Message.Render(msg))
		return lipgloss.JoinVertical(lipgloss.Left, m.renderHeader(w), body)
	}

	defer metrics.Timer(metrics.UIRender)()
	g := m.grid
	top := lipgloss.JoinHorizontal(lipgloss.Top,
		m.renderPanel(model.SectionParents, g.Panels[model.SectionParents]),
		m.renderPanel(model.SectionSiblings, g.Panels[model.SectionSiblings]),
	)
	var bottom string
	if m.search.active {
		r := g.Panels[model.SectionConsorts]
		bottom = m.theme.PanelFocus.
			Width(w - 2).
			Height(max(r.H-2, 0)).
			Render(m.search.view(m.theme, w-2, max(r.H-2, 1)))
	} else {
		bottom = lipgloss.JoinHorizontal(lipgloss.Top,
			m.renderPanel(model.SectionConsorts, g.Panels[model.SectionConsorts]),
			m.renderPanel(model.SectionChildren, g.Panels[model.SectionChildren]),
		)
	}
	return lipgloss.JoinVertical(lipgloss.Left,
		m.renderHeader(w),
		top,
		m.renderCentral(g.Central),
		bottom,
		m.renderFooter(w),
	)
}

func (m Model) centered(text string, style lipgloss.Style) string {
	return lipgloss.Place(m.size.W, m.size.H, lipgloss.Center, lipgloss.Center, style.Render(text))
}

func (m Model) renderHeader(w int) string {
	parts := []string{"Pantheon"}
	if m.ctrl != nil && m.ctrl.Central() != nil {
		parts = append(parts, m.ctrl.Central().Entity.Name)
		if label := focusLabel(m.ctrl.State()); label != "" {
			parts = append(parts, label)
		}
	}
	// Header has one cell of padding on each side.
	return m.theme.Header.Render(fit(strings.Join(parts, " │ "), max(w-2, 0)))
}

// renderPanel draws one ring panel into r: a bordered box whose first inner
// line is the title and whose remaining lines are node rows.
func (m Model) renderPanel(s model.Section, r layout.Rect) string {
	if r.W < 2 || r.H < 3 {
		return strings.Repeat("\n", max(r.H-1, 0))
	}
	innerW := r.W - 2
	p := m.ctrl.Panel(s)
	rows := m.ctrl.Rows(s)

	ind := m.indicators(p)
	title := m.theme.PanelTitle.Render(fit(fmt.Sprintf("%s (%d)", s.Title(), len(rows)), max(innerW-2, 0))) + ind

	lines := []string{title}
	if !p.HasContent {
		lines = append(lines, m.theme.MutedText.Render(fit(" —", innerW)))
	}
	end := min(p.Scroll+p.Height, len(rows))
	for i := p.Scroll; i < end; i++ {
		lines = append(lines, m.renderRow(s, rows[i], innerW))
	}

	style := m.theme.Panel
	if s == m.panel {
		style = m.theme.PanelFocus
	}
	return style.Width(innerW).Height(r.H - 2).MaxHeight(r.H).Render(strings.Join(lines, "\n"))
}

func (m Model) indicators(p PanelState) string {
	up, down := " ", " "
	if p.HasMoreTop {
		up = "▲"
	}
	if p.HasMoreBottom {
		down = "▼"
	}
	return m.theme.Indicator.Render(up + down)
}

func (m Model) renderRow(s model.Section, v *NodeView, width int) string {
	active := v.Key == m.ctrl.ActiveKey()
	cur := " "
	if s == m.panel && m.cursor[s] == v.Index {
		cur = "›"
	}
	text := fit(cur+HighlightMarker(v.Highlight, active)+" "+v.Entity.Name, width)
	return m.theme.CardStyle(v.Highlight, active, v.Settled()).Render(text)
}

// renderCentral draws the central card: name, identity line and the
// profile action, in that order inside a double border.
func (m Model) renderCentral(r layout.Rect) string {
	c := m.ctrl.Central()
	innerW := max(r.W-2, 0)
	e := c.Entity

	name := truncate(e.Name, innerW)
	nameStyle := m.theme.CardStyle(0, m.ctrl.ActiveKey() == c.Key, c.Settled()).Bold(true)

	meta := []string{e.Culture, e.Slug}
	if m.lineage != nil {
		if st, ok := m.lineage.Stats(e.Slug); ok {
			meta = append(meta, fmt.Sprintf("%d ascendants", st.Ancestors), fmt.Sprintf("%d descendants", st.Descendants))
		}
	}

	action := " " + actionLabel
	rest := fit("  "+m.opts.Config.Assets.FaceURL(e.Slug), max(innerW-runewidth.StringWidth(action), 0))
	lines := []string{
		lipgloss.PlaceHorizontal(innerW, lipgloss.Center, nameStyle.Render(name)),
		lipgloss.PlaceHorizontal(innerW, lipgloss.Center, m.theme.MutedText.Render(truncate(strings.Join(meta, " · "), innerW))),
		m.theme.Action.Render(action) + m.theme.MutedText.Render(rest),
	}
	return m.theme.Central.Width(innerW).Height(r.H - 2).Render(strings.Join(lines, "\n"))
}

// actionBounds is the screen area of the profile action on the central card.
func (m Model) actionBounds() layout.Rect {
	c := m.grid.Central
	return layout.Rect{X: c.X + 2, Y: c.Y + 3, W: runewidth.StringWidth(actionLabel), H: 1}
}

func (m Model) renderFooter(w int) string {
	var line string
	switch {
	case m.status != "" && m.statusErr:
		line = m.theme.ErrorText.Render(fit(m.status, w))
	case m.status != "":
		line = m.theme.Message.Render(fit(m.status, w))
	case m.ctrl.Message() != "":
		line = m.theme.ErrorText.Render(fit(m.ctrl.Message(), w))
	default:
		if v, ok := m.activeNode(); ok {
			line = m.theme.Base.Render(fit(nodeDetail(v), w))
		} else {
			line = m.theme.MutedText.Render(fit("Cliquer sur une figure pour la mettre en avant", w))
		}
	}
	return line + "\n" + m.help.View(m.keys)
}

// nodeDetail describes a node by role, name and relation metadata.
func nodeDetail(v *NodeView) string {
	parts := []string{v.Section.Role(), v.Entity.Name}
	if v.Relation.Variant != "" {
		parts = append(parts, v.Relation.Variant)
	}
	if n := len(v.Relation.SourceTexts); n > 0 {
		cites := make([]string, 0, n)
		for _, src := range v.Relation.SourceTexts {
			cites = append(cites, src.String())
		}
		parts = append(parts, strings.Join(cites, " ; "))
	}
	return strings.Join(parts, " · ")
}
