package model

import (
	"fmt"
	"strings"
)

// DefaultCulture is assigned to entities exported without a culture.
const DefaultCulture = "grecque"

// RelationType classifies an edge between two entities.
type RelationType string

const (
	// RelParent is the only directed type: source is a parent of target.
	RelParent RelationType = "parent"
	// RelChild is accepted on input but never read for lineage; children
	// are derived from parent rows read in reverse.
	RelChild RelationType = "child"
	// RelSibling is symmetric.
	RelSibling RelationType = "sibling"
	// RelConsort is symmetric.
	RelConsort RelationType = "consort"
)

// IsValid returns true for the known relation types.
func (t RelationType) IsValid() bool {
	switch t {
	case RelParent, RelChild, RelSibling, RelConsort:
		return true
	}
	return false
}

// IsSymmetric reports whether either endpoint may be the queried entity.
func (t RelationType) IsSymmetric() bool {
	return t == RelSibling || t == RelConsort
}

// Entity is a mythological figure. Entities are immutable once exported.
type Entity struct {
	ID      string `json:"id" yaml:"id"`
	Slug    string `json:"slug" yaml:"slug"`
	Name    string `json:"name" yaml:"name"`
	Culture string `json:"culture" yaml:"culture"`
}

// String returns a short label for logs.
func (e Entity) String() string {
	return fmt.Sprintf("%s (%s)", e.Name, e.Slug)
}

// RelationSource is citation metadata. It is descriptive only.
type RelationSource struct {
	Author string `json:"author" yaml:"author"`
	Work   string `json:"work" yaml:"work"`
	Note   string `json:"note,omitempty" yaml:"note,omitempty"`
}

// String formats the citation as "Author, Work (note)".
func (s RelationSource) String() string {
	var sb strings.Builder
	sb.WriteString(s.Author)
	if s.Work != "" {
		if sb.Len() > 0 {
			sb.WriteString(", ")
		}
		sb.WriteString(s.Work)
	}
	if s.Note != "" {
		sb.WriteString(" (")
		sb.WriteString(s.Note)
		sb.WriteString(")")
	}
	return sb.String()
}

// Relation is an edge between two entity ids.
type Relation struct {
	SourceID    string           `json:"source_id" yaml:"source_id"`
	TargetID    string           `json:"target_id" yaml:"target_id"`
	Type        RelationType     `json:"type" yaml:"type"`
	Variant     string           `json:"variant,omitempty" yaml:"variant,omitempty"`
	SourceTexts []RelationSource `json:"source_texts" yaml:"source_texts"`
}

// Other returns the endpoint that is not id, and whether id is an endpoint at all.
func (r Relation) Other(id string) (string, bool) {
	switch id {
	case r.SourceID:
		return r.TargetID, true
	case r.TargetID:
		return r.SourceID, true
	}
	return "", false
}

// Dataset is the exported document consumed at runtime.
type Dataset struct {
	Entities  []Entity   `json:"entities" yaml:"entities"`
	Relations []Relation `json:"relations" yaml:"relations"`
}

// RelatedNode pairs a related entity with the relation that links it to the
// central entity of an ego graph.
type RelatedNode struct {
	Entity   Entity
	Relation Relation
}

// EgoGraph is the one-hop neighbourhood of a central entity. It is derived
// per query and never cached by the store.
type EgoGraph struct {
	Central  Entity
	Parents  []RelatedNode
	Children []RelatedNode
	Siblings []RelatedNode
	Consorts []RelatedNode
}

// NormalizeCulture lower-cases culture and applies DefaultCulture when blank.
func NormalizeCulture(culture string) string {
	c := strings.ToLower(strings.TrimSpace(culture))
	if c == "" {
		return DefaultCulture
	}
	return c
}

// NormalizeID derives the stable entity id "<culture>-<slug>".
func NormalizeID(culture, slug string) string {
	return NormalizeCulture(culture) + "-" + slug
}
