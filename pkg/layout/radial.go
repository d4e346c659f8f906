package layout

import (
	"math"

	"github.com/vanderheijden86/pantheon/pkg/model"
	"github.com/vanderheijden86/pantheon/pkg/rings"
)

// sector is the arc a ring occupies, in degrees with y pointing down.
// Nodes run from From to To in ring order.
type sector struct {
	From, To float64
}

var sectors = map[model.Section]sector{
	model.SectionParents:  {225, 315}, // top, left to right
	model.SectionSiblings: {210, 150}, // left, top to bottom
	model.SectionConsorts: {330, 390}, // right, top to bottom
	model.SectionChildren: {135, 45},  // bottom, left to right
}

// Radial places nodes on concentric arcs around the central node, with
// absolute pixel coordinates. It is used for image snapshots.
type Radial struct {
	// PerBand is how many nodes fit on one arc before a wider arc starts.
	PerBand int
	// Radius and BandGap are fractions of the smaller side of the area.
	Radius  float64
	BandGap float64
}

// DefaultRadial returns the snapshot layout.
func DefaultRadial() Radial {
	return Radial{PerBand: 6, Radius: 0.28, BandGap: 0.1}
}

// Name implements Strategy.
func (Radial) Name() string { return "radial" }

// Place implements Strategy. Placement coordinates are node centres.
func (r Radial) Place(res rings.Result, size Size) []Placement {
	per := r.PerBand
	if per <= 0 {
		per = 6
	}
	cx, cy := float64(size.W)/2, float64(size.H)/2
	side := math.Min(float64(size.W), float64(size.H))

	out := make([]Placement, 0, res.Len()+1)
	out = append(out, centralPlacement(res, int(math.Round(cx)), int(math.Round(cy))))
	for _, s := range model.Sections {
		nodes := res.Ring(s)
		sec := sectors[s]
		for i, n := range nodes {
			band := i / per
			inBand := min(per, len(nodes)-band*per)
			slot := i % per

			angle := (sec.From + sec.To) / 2
			if inBand > 1 {
				angle = sec.From + (sec.To-sec.From)*float64(slot)/float64(inBand-1)
			}
			radius := side * (r.Radius + r.BandGap*float64(band))
			rad := angle * math.Pi / 180
			out = append(out, Placement{
				Key:     n.Key,
				Section: s,
				Index:   i,
				Node:    n,
				X:       int(math.Round(cx + radius*math.Cos(rad))),
				Y:       int(math.Round(cy + radius*math.Sin(rad))),
			})
		}
	}
	return out
}
