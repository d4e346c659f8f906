// Package layout places ordered, classified ring nodes. The engine in
// pkg/rings decides order and highlighting; a Strategy only decides where
// each node goes.
package layout

import (
	"github.com/vanderheijden86/pantheon/pkg/model"
	"github.com/vanderheijden86/pantheon/pkg/rings"
)

// Size is a drawing area: terminal cells for Columns, pixels for Radial.
type Size struct {
	W, H int
}

// Rect is an axis-aligned rectangle.
type Rect struct {
	X, Y, W, H int
}

// Contains reports whether (x, y) lies inside r.
func (r Rect) Contains(x, y int) bool {
	return x >= r.X && x < r.X+r.W && y >= r.Y && y < r.Y+r.H
}

// Empty reports whether r has no area.
func (r Rect) Empty() bool { return r.W <= 0 || r.H <= 0 }

// Placement is a node with a position. Section is empty for the central node.
type Placement struct {
	Key     string
	Section model.Section
	Index   int
	Node    rings.Node
	X, Y    int
}

// Central reports whether p is the central node.
func (p Placement) Central() bool { return p.Section == "" }

// Strategy places the central node and every ring node of res inside size.
// The central node is always first; ring nodes follow in display order.
type Strategy interface {
	Name() string
	Place(res rings.Result, size Size) []Placement
}

// centralPlacement builds the placement for the central node at (x, y).
func centralPlacement(res rings.Result, x, y int) Placement {
	key := rings.CentralKey(res.Central.ID)
	return Placement{
		Key:  key,
		Node: rings.Node{Key: key, Entity: res.Central},
		X:    x,
		Y:    y,
	}
}

// ByKey indexes placements by node key.
func ByKey(ps []Placement) map[string]Placement {
	out := make(map[string]Placement, len(ps))
	for _, p := range ps {
		out[p.Key] = p
	}
	return out
}
