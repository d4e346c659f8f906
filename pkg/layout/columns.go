package layout

import (
	"github.com/vanderheijden86/pantheon/pkg/model"
	"github.com/vanderheijden86/pantheon/pkg/rings"
)

const (
	// MinWidth and MinHeight are the smallest terminal the grid fits in.
	MinWidth  = 40
	MinHeight = 16

	headerRows  = 1
	footerRows  = 2
	centralRows = 5
)

// Grid is the terminal geometry: a card list per ring around the central card.
//
//	header
//	Parents  | Fratrie
//	   central card
//	Consorts | Enfants
//	footer
type Grid struct {
	Header  Rect
	Central Rect
	Footer  Rect
	Panels  map[model.Section]Rect
}

// Content returns the rows of a panel available to node cards: inside the
// border and below the title line.
func (g Grid) Content(s model.Section) Rect {
	p := g.Panels[s]
	r := Rect{X: p.X + 1, Y: p.Y + 2, W: p.W - 2, H: p.H - 3}
	if r.W < 0 {
		r.W = 0
	}
	if r.H < 0 {
		r.H = 0
	}
	return r
}

// PanelAt returns the section whose panel contains (x, y).
func (g Grid) PanelAt(x, y int) (model.Section, bool) {
	for _, s := range model.Sections {
		if g.Panels[s].Contains(x, y) {
			return s, true
		}
	}
	return "", false
}

// Columns is the card-list-per-ring strategy used by the terminal UI.
type Columns struct{}

// Name implements Strategy.
func (Columns) Name() string { return "columns" }

// Fits reports whether size is large enough for the grid.
func (Columns) Fits(size Size) bool {
	return size.W >= MinWidth && size.H >= MinHeight
}

// Grid derives the panel geometry from size alone, so that rendering and
// mouse hit tests agree.
func (Columns) Grid(size Size) Grid {
	w, h := size.W, size.H
	avail := h - headerRows - footerRows - centralRows
	if avail < 0 {
		avail = 0
	}
	top := avail * 2 / 5
	bottom := avail - top
	half := w / 2

	y := headerRows
	g := Grid{
		Header: Rect{0, 0, w, headerRows},
		Panels: map[model.Section]Rect{
			model.SectionParents:  {0, y, half, top},
			model.SectionSiblings: {half, y, w - half, top},
		},
	}
	y += top
	g.Central = Rect{0, y, w, centralRows}
	y += centralRows
	g.Panels[model.SectionConsorts] = Rect{0, y, half, bottom}
	g.Panels[model.SectionChildren] = Rect{half, y, w - half, bottom}
	g.Footer = Rect{0, h - footerRows, w, footerRows}
	return g
}

// Place implements Strategy. Ring nodes get the unscrolled cell position of
// their row: panel content origin plus their index.
func (c Columns) Place(res rings.Result, size Size) []Placement {
	g := c.Grid(size)
	out := make([]Placement, 0, res.Len()+1)
	out = append(out, centralPlacement(res, g.Central.X+1, g.Central.Y+1))
	for _, s := range model.Sections {
		content := g.Content(s)
		for i, n := range res.Ring(s) {
			out = append(out, Placement{
				Key:     n.Key,
				Section: s,
				Index:   i,
				Node:    n,
				X:       content.X,
				Y:       content.Y + i,
			})
		}
	}
	return out
}
