package model

// Section names one of the four relation rings.
type Section string

const (
	SectionParents  Section = "parents"
	SectionSiblings Section = "siblings"
	SectionConsorts Section = "consorts"
	SectionChildren Section = "children"
)

// Sections lists the rings in display order.
var Sections = []Section{SectionParents, SectionSiblings, SectionConsorts, SectionChildren}

// Title returns the heading shown above the ring.
func (s Section) Title() string {
	switch s {
	case SectionParents:
		return "Parents"
	case SectionSiblings:
		return "Fratrie"
	case SectionConsorts:
		return "Consorts"
	case SectionChildren:
		return "Enfants"
	}
	return string(s)
}

// Role is the singular label of a node in the ring.
func (s Section) Role() string {
	switch s {
	case SectionParents:
		return "Parent"
	case SectionSiblings:
		return "Fratrie"
	case SectionConsorts:
		return "Consort"
	case SectionChildren:
		return "Enfant"
	}
	return "Centre"
}

// Ring returns the nodes of g for section s. A nil graph has empty rings.
func (g *EgoGraph) Ring(s Section) []RelatedNode {
	if g == nil {
		return nil
	}
	switch s {
	case SectionParents:
		return g.Parents
	case SectionSiblings:
		return g.Siblings
	case SectionConsorts:
		return g.Consorts
	case SectionChildren:
		return g.Children
	}
	return nil
}
