// Package rings turns an ego graph and the current focus into four ordered,
// classified rings. Everything here is pure: no I/O, no retained state.
package rings

import (
	"github.com/vanderheijden86/pantheon/pkg/metrics"
	"github.com/vanderheijden86/pantheon/pkg/model"
)

// ParentOracle answers "is parentSlug a parent of childSlug".
// *genealogy.Store satisfies it.
type ParentOracle interface {
	HasParent(childSlug, parentSlug string) bool
}

// Highlight is the secondary styling of a ring node.
type Highlight int

const (
	HighlightNone Highlight = iota
	HighlightMuted
	HighlightRelated
	HighlightSibling
)

func (h Highlight) String() string {
	switch h {
	case HighlightMuted:
		return "muted"
	case HighlightRelated:
		return "related"
	case HighlightSibling:
		return "sibling"
	}
	return "none"
}

// MarshalText renders the highlight by name in robot output.
func (h Highlight) MarshalText() ([]byte, error) {
	return []byte(h.String()), nil
}

// Shape is the kind of focus currently driving the rings.
type Shape int

const (
	ShapeNone Shape = iota
	ShapeConsort
	ShapeChild
)

func (s Shape) String() string {
	switch s {
	case ShapeConsort:
		return "consort"
	case ShapeChild:
		return "child"
	}
	return "none"
}

func (s Shape) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// FocusState is the part of the session state the engine reads.
// At most one of FocusedConsortSlug and FocusedChildSlug is set.
type FocusState struct {
	FocusedConsortSlug  string
	SelectedConsortSlug string
	FocusedChildSlug    string
	// ChildrenOrder and ConsortOrder are the baseline orders: the last
	// displayed order of those rings. Empty means base order.
	ChildrenOrder []string
	ConsortOrder  []string
}

// Shape returns the active focus kind. Consort focus wins if both are set.
func (f FocusState) Shape() Shape {
	switch {
	case f.FocusedConsortSlug != "":
		return ShapeConsort
	case f.FocusedChildSlug != "":
		return ShapeChild
	}
	return ShapeNone
}

// Node is one classified ring member.
type Node struct {
	Key       string
	Section   model.Section
	Entity    model.Entity
	Relation  model.Relation
	Highlight Highlight
}

// NodeKey is the stable identity of a ring node across renders.
func NodeKey(section model.Section, entityID string) string {
	return string(section) + "-" + entityID
}

// CentralKey is the identity of the central node.
func CentralKey(entityID string) string {
	return "central-" + entityID
}

// Result is the output of ComputeRings.
type Result struct {
	Central  model.Entity
	Parents  []Node
	Siblings []Node
	Consorts []Node
	Children []Node
	// Updated baseline orders, to be stored by the caller.
	ChildrenOrder []string
	ConsortOrder  []string
}

// Ring returns the nodes of one section.
func (r Result) Ring(s model.Section) []Node {
	switch s {
	case model.SectionParents:
		return r.Parents
	case model.SectionSiblings:
		return r.Siblings
	case model.SectionConsorts:
		return r.Consorts
	case model.SectionChildren:
		return r.Children
	}
	return nil
}

// Len returns the total number of ring nodes.
func (r Result) Len() int {
	return len(r.Parents) + len(r.Siblings) + len(r.Consorts) + len(r.Children)
}

// ComputeRings orders and classifies the four rings of g under state.
//
// Parents and siblings are always in base order and never highlighted.
// Consorts follow the stored consort order; under child focus the focused
// child's parents move first and the rest are muted. Children follow the
// stored children order; under consort focus that consort's children move
// first and the rest are muted, under child focus siblings cluster around
// the focused child. A selected consort mutes the other consorts whatever
// the focus shape.
func ComputeRings(g *model.EgoGraph, state FocusState, rel ParentOracle) Result {
	defer metrics.Timer(metrics.RingCompute)()

	res := Result{
		ChildrenOrder: state.ChildrenOrder,
		ConsortOrder:  state.ConsortOrder,
	}
	if g == nil {
		return res
	}
	res.Central = g.Central
	shape := state.Shape()

	res.Parents = classify(model.SectionParents, SortByName(g.Parents), func(model.RelatedNode) Highlight {
		return HighlightNone
	})
	res.Siblings = classify(model.SectionSiblings, SortByName(g.Siblings), func(model.RelatedNode) Highlight {
		return HighlightNone
	})

	consorts := SortByOrder(SortByName(g.Consorts), state.ConsortOrder)
	if shape == ShapeChild {
		first, rest := Prioritize(consorts, func(n model.RelatedNode) bool {
			return rel.HasParent(state.FocusedChildSlug, n.Entity.Slug)
		})
		consorts = append(first, rest...)
		res.ConsortOrder = Slugs(consorts)
	}
	res.Consorts = classify(model.SectionConsorts, consorts, func(n model.RelatedNode) Highlight {
		slug := n.Entity.Slug
		if state.SelectedConsortSlug != "" && state.SelectedConsortSlug != slug {
			return HighlightMuted
		}
		if shape == ShapeChild {
			if rel.HasParent(state.FocusedChildSlug, slug) {
				return HighlightRelated
			}
			return HighlightMuted
		}
		return HighlightNone
	})

	children := SortByOrder(SortByName(g.Children), state.ChildrenOrder)
	switch shape {
	case ShapeConsort:
		first, rest := Prioritize(children, func(n model.RelatedNode) bool {
			return rel.HasParent(n.Entity.Slug, state.FocusedConsortSlug)
		})
		children = append(first, rest...)
		res.ChildrenOrder = Slugs(children)
	case ShapeChild:
		children = ReorderSiblings(children, state.FocusedChildSlug, g.Consorts, rel)
		res.ChildrenOrder = Slugs(children)
	}
	// Sibling membership is resolved once per render, not per node.
	var focusParents []string
	if shape == ShapeChild {
		focusParents = parentConsorts(state.FocusedChildSlug, g.Consorts, rel)
	}
	res.Children = classify(model.SectionChildren, children, func(n model.RelatedNode) Highlight {
		slug := n.Entity.Slug
		switch shape {
		case ShapeConsort:
			if rel.HasParent(slug, state.FocusedConsortSlug) {
				return HighlightRelated
			}
			return HighlightMuted
		case ShapeChild:
			if slug != state.FocusedChildSlug && sharesParent(slug, focusParents, rel) {
				return HighlightSibling
			}
		}
		return HighlightNone
	})

	return res
}

func classify(section model.Section, nodes []model.RelatedNode, highlight func(model.RelatedNode) Highlight) []Node {
	out := make([]Node, 0, len(nodes))
	for _, n := range nodes {
		out = append(out, Node{
			Key:       NodeKey(section, n.Entity.ID),
			Section:   section,
			Entity:    n.Entity,
			Relation:  n.Relation,
			Highlight: highlight(n),
		})
	}
	return out
}

// NodeSlugs returns the entity slugs of classified nodes, in order.
func NodeSlugs(nodes []Node) []string {
	out := make([]string, len(nodes))
	for i, n := range nodes {
		out[i] = n.Entity.Slug
	}
	return out
}
