// Package genealogy indexes a read-only dataset and answers ego-graph and
// lineage queries against it.
package genealogy

import (
	"sort"

	"github.com/vanderheijden86/pantheon/pkg/collation"
	"github.com/vanderheijden86/pantheon/pkg/debug"
	"github.com/vanderheijden86/pantheon/pkg/metrics"
	"github.com/vanderheijden86/pantheon/pkg/model"
)

// Store is an immutable index over a dataset. It is safe for concurrent reads.
type Store struct {
	entities []model.Entity
	sorted   []model.Entity
	byID     map[string]int
	bySlug   map[string]int

	relations []model.Relation
	// parentEdges holds "parentID|childID" for every parent relation.
	parentEdges map[string]struct{}
	// touching maps an entity id to the relations it is an endpoint of, in
	// dataset order.
	touching map[string][]int

	dropped int
}

// BuildStore indexes data. Relations with an endpoint that names no entity
// are dropped here and never reach a query.
func BuildStore(data model.Dataset) *Store {
	defer metrics.Timer(metrics.StoreBuild)()

	s := &Store{
		entities:    make([]model.Entity, 0, len(data.Entities)),
		byID:        make(map[string]int, len(data.Entities)),
		bySlug:      make(map[string]int, len(data.Entities)),
		parentEdges: make(map[string]struct{}),
		touching:    make(map[string][]int),
	}

	for _, e := range data.Entities {
		// First occurrence wins for both keys.
		if _, dup := s.byID[e.ID]; dup {
			continue
		}
		if _, dup := s.bySlug[e.Slug]; dup {
			continue
		}
		idx := len(s.entities)
		s.entities = append(s.entities, e)
		s.byID[e.ID] = idx
		s.bySlug[e.Slug] = idx
	}

	for _, rel := range data.Relations {
		_, srcOK := s.byID[rel.SourceID]
		_, dstOK := s.byID[rel.TargetID]
		if !srcOK || !dstOK || !rel.Type.IsValid() {
			s.dropped++
			continue
		}
		idx := len(s.relations)
		s.relations = append(s.relations, rel)
		s.touching[rel.SourceID] = append(s.touching[rel.SourceID], idx)
		if rel.TargetID != rel.SourceID {
			s.touching[rel.TargetID] = append(s.touching[rel.TargetID], idx)
		}
		if rel.Type == model.RelParent {
			s.parentEdges[edgeKey(rel.SourceID, rel.TargetID)] = struct{}{}
		}
	}

	s.sorted = append([]model.Entity(nil), s.entities...)
	sort.SliceStable(s.sorted, func(i, j int) bool {
		return collation.Less(s.sorted[i].Name, s.sorted[i].Slug, s.sorted[j].Name, s.sorted[j].Slug)
	})

	debug.LogIf(s.dropped > 0, "store: dropped %d relations with unknown endpoints", s.dropped)
	return s
}

func edgeKey(parentID, childID string) string {
	return parentID + "|" + childID
}

// Len returns the number of indexed entities.
func (s *Store) Len() int { return len(s.entities) }

// RelationCount returns the number of relations kept after dropping
// dangling ones.
func (s *Store) RelationCount() int { return len(s.relations) }

// DroppedRelations returns how many relations named an unknown entity.
func (s *Store) DroppedRelations() int { return s.dropped }

// Entity looks an entity up by slug.
func (s *Store) Entity(slug string) (model.Entity, bool) {
	idx, ok := s.bySlug[slug]
	if !ok {
		return model.Entity{}, false
	}
	return s.entities[idx], true
}

// EntityByID looks an entity up by id.
func (s *Store) EntityByID(id string) (model.Entity, bool) {
	idx, ok := s.byID[id]
	if !ok {
		return model.Entity{}, false
	}
	return s.entities[idx], true
}

// Entities returns all entities in name order. The slice is a copy.
func (s *Store) Entities() []model.Entity {
	return append([]model.Entity(nil), s.sorted...)
}

// Relations returns the kept relations in dataset order. The slice is a copy.
func (s *Store) Relations() []model.Relation {
	return append([]model.Relation(nil), s.relations...)
}

// HasParent reports whether parentSlug is recorded as a parent of childSlug.
// Unknown slugs yield false.
func (s *Store) HasParent(childSlug, parentSlug string) bool {
	child, ok := s.Entity(childSlug)
	if !ok {
		return false
	}
	parent, ok := s.Entity(parentSlug)
	if !ok {
		return false
	}
	_, ok = s.parentEdges[edgeKey(parent.ID, child.ID)]
	return ok
}

// EgoGraph derives the one-hop neighbourhood of slug. Each ring lists an
// entity at most once; the first relation in dataset order is kept.
func (s *Store) EgoGraph(slug string) (*model.EgoGraph, bool) {
	central, ok := s.Entity(slug)
	if !ok {
		return nil, false
	}

	g := &model.EgoGraph{
		Central:  central,
		Parents:  []model.RelatedNode{},
		Children: []model.RelatedNode{},
		Siblings: []model.RelatedNode{},
		Consorts: []model.RelatedNode{},
	}
	seen := map[model.Section]map[string]bool{
		model.SectionParents:  {},
		model.SectionChildren: {},
		model.SectionSiblings: {},
		model.SectionConsorts: {},
	}
	add := func(section model.Section, ring *[]model.RelatedNode, otherID string, rel model.Relation) {
		if seen[section][otherID] {
			return
		}
		other, ok := s.EntityByID(otherID)
		if !ok {
			return
		}
		seen[section][otherID] = true
		*ring = append(*ring, model.RelatedNode{Entity: other, Relation: rel})
	}

	for _, idx := range s.touching[central.ID] {
		rel := s.relations[idx]
		switch rel.Type {
		case model.RelParent:
			if rel.TargetID == central.ID {
				add(model.SectionParents, &g.Parents, rel.SourceID, rel)
			}
			if rel.SourceID == central.ID {
				add(model.SectionChildren, &g.Children, rel.TargetID, rel)
			}
		case model.RelSibling:
			if other, ok := rel.Other(central.ID); ok {
				add(model.SectionSiblings, &g.Siblings, other, rel)
			}
		case model.RelConsort:
			if other, ok := rel.Other(central.ID); ok {
				add(model.SectionConsorts, &g.Consorts, other, rel)
			}
		}
	}
	return g, true
}
