// Package testutil provides dataset fixtures and assertions shared by tests.
// Every generator is deterministic for a given seed.
package testutil

import (
	"fmt"
	"math/rand"

	"github.com/vanderheijden86/pantheon/pkg/model"
)

// Builder assembles a dataset fluently.
type Builder struct {
	ds model.Dataset
}

// NewBuilder starts an empty dataset.
func NewBuilder() *Builder {
	return &Builder{ds: model.Dataset{Entities: []model.Entity{}, Relations: []model.Relation{}}}
}

// Entity adds a greek entity.
func (b *Builder) Entity(slug, name string) *Builder {
	b.ds.Entities = append(b.ds.Entities, model.Entity{
		ID: EntityID(slug), Slug: slug, Name: name, Culture: model.DefaultCulture,
	})
	return b
}

// Parent records parent as a parent of each child.
func (b *Builder) Parent(parent string, children ...string) *Builder {
	for _, c := range children {
		b.ds.Relations = append(b.ds.Relations, b.rel(model.RelParent, parent, c))
	}
	return b
}

// Consort links two entities as consorts.
func (b *Builder) Consort(a, c string) *Builder {
	b.ds.Relations = append(b.ds.Relations, b.rel(model.RelConsort, a, c))
	return b
}

// Sibling links two entities as siblings.
func (b *Builder) Sibling(a, c string) *Builder {
	b.ds.Relations = append(b.ds.Relations, b.rel(model.RelSibling, a, c))
	return b
}

func (b *Builder) rel(t model.RelationType, src, dst string) model.Relation {
	return model.Relation{
		SourceID:    EntityID(src),
		TargetID:    EntityID(dst),
		Type:        t,
		SourceTexts: []model.RelationSource{{Author: "Hésiode", Work: "Théogonie"}},
	}
}

// Build returns the dataset.
func (b *Builder) Build() model.Dataset {
	return b.ds
}

// Olympus is the hand-written fixture used across UI and export tests:
// zeus with parents cronos and rhea, siblings poseidon and hades, consorts
// hera and leto, and children split between them (athena has no mother).
func Olympus() model.Dataset {
	return NewBuilder().
		Entity("zeus", "Zeus").
		Entity("hera", "Héra").
		Entity("leto", "Léto").
		Entity("cronos", "Cronos").
		Entity("rhea", "Rhéa").
		Entity("poseidon", "Poséidon").
		Entity("hades", "Hadès").
		Entity("ares", "Arès").
		Entity("hebe", "Hébé").
		Entity("apollon", "Apollon").
		Entity("artemis", "Artémis").
		Entity("athena", "Athéna").
		Parent("cronos", "zeus", "hera", "poseidon", "hades").
		Parent("rhea", "zeus", "hera", "poseidon", "hades").
		Parent("zeus", "ares", "hebe", "apollon", "artemis", "athena").
		Parent("hera", "ares", "hebe").
		Parent("leto", "apollon", "artemis").
		Consort("zeus", "hera").
		Consort("leto", "zeus").
		Consort("cronos", "rhea").
		Sibling("zeus", "poseidon").
		Sibling("hades", "zeus").
		Sibling("zeus", "hera").
		Build()
}

// Minimal is the three-entity dataset: zeus, his consort hera and his
// child ares.
func Minimal() model.Dataset {
	return NewBuilder().
		Entity("zeus", "Zeus").
		Entity("hera", "Héra").
		Entity("ares", "Arès").
		Parent("zeus", "ares").
		Consort("zeus", "hera").
		Build()
}

// Random builds a dataset of size entities with roughly density relations
// per entity, deterministic for seed.
func Random(seed int64, size int, density float64) model.Dataset {
	rng := rand.New(rand.NewSource(seed))
	b := NewBuilder()
	for i := 0; i < size; i++ {
		b.Entity(fmt.Sprintf("e%03d", i), fmt.Sprintf("Entité %03d", rng.Intn(1000)))
	}
	if size < 2 {
		return b.Build()
	}
	n := int(float64(size) * density)
	for i := 0; i < n; i++ {
		a := fmt.Sprintf("e%03d", rng.Intn(size))
		c := fmt.Sprintf("e%03d", rng.Intn(size))
		if a == c {
			continue
		}
		switch rng.Intn(3) {
		case 0:
			b.Parent(a, c)
		case 1:
			b.Consort(a, c)
		default:
			b.Sibling(a, c)
		}
	}
	return b.Build()
}
