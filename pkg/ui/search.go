package ui

import (
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/vanderheijden86/pantheon/pkg/model"
	"github.com/vanderheijden86/pantheon/pkg/search"
)

const searchLimit = 8

// searchBox is the "/" overlay: a text input over a fuzzy entity index.
type searchBox struct {
	input  textinput.Model
	index  *search.Index
	hits   []search.Hit
	cursor int
	active bool
}

func newSearchBox(entities []model.Entity) searchBox {
	ti := textinput.New()
	ti.Placeholder = "nom d'une figure…"
	ti.Prompt = "/ "
	ti.CharLimit = 64
	return searchBox{input: ti, index: search.NewIndex(entities)}
}

func (s *searchBox) open() tea.Cmd {
	s.active = true
	s.cursor = 0
	s.input.SetValue("")
	s.refresh()
	return s.input.Focus()
}

func (s *searchBox) close() {
	s.active = false
	s.input.Blur()
}

func (s *searchBox) refresh() {
	if s.index == nil {
		s.hits = nil
		return
	}
	s.hits = s.index.Search(s.input.Value(), searchLimit)
	s.cursor = clamp(s.cursor, 0, len(s.hits)-1)
}

// selected returns the slug under the cursor.
func (s searchBox) selected() (string, bool) {
	if s.cursor < 0 || s.cursor >= len(s.hits) {
		return "", false
	}
	return s.hits[s.cursor].Entity.Slug, true
}

// update handles a key while the box is open. It returns the chosen slug
// once enter is pressed.
func (s *searchBox) update(msg tea.KeyMsg) (slug string, cmd tea.Cmd) {
	switch msg.String() {
	case "esc":
		s.close()
		return "", nil
	case "enter":
		slug, ok := s.selected()
		s.close()
		if !ok {
			return "", nil
		}
		return slug, nil
	case "up", "ctrl+p":
		s.cursor = clamp(s.cursor-1, 0, len(s.hits)-1)
		return "", nil
	case "down", "ctrl+n":
		s.cursor = clamp(s.cursor+1, 0, len(s.hits)-1)
		return "", nil
	}
	before := s.input.Value()
	s.input, cmd = s.input.Update(msg)
	if s.input.Value() != before {
		s.cursor = 0
		s.refresh()
	}
	return "", cmd
}

// view renders the box in width cells and at most height lines.
func (s searchBox) view(t Theme, width, height int) string {
	lines := []string{s.input.View()}
	for i, h := range s.hits {
		if len(lines) >= height {
			break
		}
		prefix := "  "
		if i == s.cursor {
			prefix = "› "
		}
		lines = append(lines, prefix+highlightRunes(t, h.Entity.Name, h.NameRunes)+t.MutedText.Render(" "+h.Entity.Slug))
	}
	if len(s.hits) == 0 && len(lines) < height {
		lines = append(lines, t.Message.Render("  aucune figure"))
	}
	for len(lines) < height {
		lines = append(lines, "")
	}
	for i := range lines {
		lines[i] = t.Renderer.NewStyle().MaxWidth(width).Render(lines[i])
	}
	return strings.Join(lines, "\n")
}

// highlightRunes styles the runes of s at the given positions.
func highlightRunes(t Theme, s string, positions []int) string {
	if len(positions) == 0 {
		return s
	}
	hit := make(map[int]bool, len(positions))
	for _, p := range positions {
		hit[p] = true
	}
	var sb strings.Builder
	i := 0
	for _, r := range s {
		if hit[i] {
			sb.WriteString(t.Match.Render(string(r)))
		} else {
			sb.WriteRune(r)
		}
		i++
	}
	return sb.String()
}
