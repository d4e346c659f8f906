package genealogy

import "github.com/vanderheijden86/pantheon/pkg/model"

// NodeCard is the flattened view of a related node used by list renderers
// and the robot output.
type NodeCard struct {
	ID           string                 `json:"id"`
	Name         string                 `json:"name"`
	Slug         string                 `json:"slug"`
	RelationType model.RelationType     `json:"relation_type"`
	Variant      string                 `json:"variant,omitempty"`
	Sources      []model.RelationSource `json:"sources"`
}

// GraphSection is one titled ring.
type GraphSection struct {
	ID    model.Section `json:"id"`
	Title string        `json:"title"`
	Nodes []NodeCard    `json:"nodes"`
}

// GraphDisplayData is the ego graph shaped for display, sections in
// display order.
type GraphDisplayData struct {
	Central  model.Entity   `json:"central"`
	Sections []GraphSection `json:"sections"`
}

// CardOf flattens a related node.
func CardOf(n model.RelatedNode) NodeCard {
	sources := n.Relation.SourceTexts
	if sources == nil {
		sources = []model.RelationSource{}
	}
	return NodeCard{
		ID:           n.Entity.ID,
		Name:         n.Entity.Name,
		Slug:         n.Entity.Slug,
		RelationType: n.Relation.Type,
		Variant:      n.Relation.Variant,
		Sources:      sources,
	}
}

// GraphDisplayData returns the unordered display sections for slug.
func (s *Store) GraphDisplayData(slug string) (*GraphDisplayData, bool) {
	g, ok := s.EgoGraph(slug)
	if !ok {
		return nil, false
	}
	out := &GraphDisplayData{Central: g.Central}
	for _, section := range model.Sections {
		ring := g.Ring(section)
		cards := make([]NodeCard, 0, len(ring))
		for _, n := range ring {
			cards = append(cards, CardOf(n))
		}
		out.Sections = append(out.Sections, GraphSection{ID: section, Title: section.Title(), Nodes: cards})
	}
	return out, true
}
