package genealogy

import (
	"fmt"
	"testing"

	"pgregory.net/rapid"

	"github.com/vanderheijden86/pantheon/pkg/model"
)

func ent(slug, name string) model.Entity {
	return model.Entity{ID: model.NormalizeID("", slug), Slug: slug, Name: name, Culture: model.DefaultCulture}
}

func rel(t model.RelationType, src, dst string) model.Relation {
	return model.Relation{SourceID: model.NormalizeID("", src), TargetID: model.NormalizeID("", dst), Type: t}
}

func slugs(nodes []model.RelatedNode) []string {
	out := make([]string, len(nodes))
	for i, n := range nodes {
		out[i] = n.Entity.Slug
	}
	return out
}

func contains(nodes []model.RelatedNode, slug string) bool {
	for _, n := range nodes {
		if n.Entity.Slug == slug {
			return true
		}
	}
	return false
}

func olympus() model.Dataset {
	return model.Dataset{
		Entities: []model.Entity{ent("zeus", "Zeus"), ent("hera", "Héra"), ent("ares", "Arès")},
		Relations: []model.Relation{
			rel(model.RelParent, "zeus", "ares"),
			rel(model.RelConsort, "zeus", "hera"),
		},
	}
}

func TestEgoGraph_ZeusScenario(t *testing.T) {
	s := BuildStore(olympus())

	g, ok := s.EgoGraph("zeus")
	if !ok {
		t.Fatal("zeus should resolve")
	}
	if g.Central.Slug != "zeus" {
		t.Errorf("central = %s", g.Central.Slug)
	}
	if got := slugs(g.Children); len(got) != 1 || got[0] != "ares" {
		t.Errorf("children = %v, want [ares]", got)
	}
	if got := slugs(g.Consorts); len(got) != 1 || got[0] != "hera" {
		t.Errorf("consorts = %v, want [hera]", got)
	}
	if len(g.Parents) != 0 || len(g.Siblings) != 0 {
		t.Errorf("parents=%v siblings=%v, want empty", slugs(g.Parents), slugs(g.Siblings))
	}

	// Reverse reading of the same rows.
	hera, _ := s.EgoGraph("hera")
	if !contains(hera.Consorts, "zeus") {
		t.Errorf("consort relation should be symmetric")
	}
	ares, _ := s.EgoGraph("ares")
	if !contains(ares.Parents, "zeus") {
		t.Errorf("ares parents = %v", slugs(ares.Parents))
	}
}

func TestEgoGraph_UnknownSlug(t *testing.T) {
	s := BuildStore(olympus())
	if g, ok := s.EgoGraph("cronos"); ok || g != nil {
		t.Errorf("unknown slug should yield (nil, false), got %v, %v", g, ok)
	}
}

func TestBuildStore_DropsDanglingRelations(t *testing.T) {
	ds := olympus()
	ds.Relations = append(ds.Relations,
		model.Relation{SourceID: "grecque-zeus", TargetID: "grecque-nobody", Type: model.RelParent},
		model.Relation{SourceID: "grecque-ghost", TargetID: "grecque-zeus", Type: model.RelSibling},
		model.Relation{SourceID: "grecque-zeus", TargetID: "grecque-hera", Type: "cousin"},
	)
	s := BuildStore(ds)

	if s.RelationCount() != 2 || s.DroppedRelations() != 3 {
		t.Errorf("kept=%d dropped=%d, want 2/3", s.RelationCount(), s.DroppedRelations())
	}
	g, _ := s.EgoGraph("zeus")
	if len(g.Children) != 1 || len(g.Siblings) != 0 {
		t.Errorf("dangling relation leaked: children=%v siblings=%v", slugs(g.Children), slugs(g.Siblings))
	}
}

func TestBuildStore_ChildRowsIgnoredForLineage(t *testing.T) {
	ds := olympus()
	ds.Relations = append(ds.Relations, rel(model.RelChild, "hera", "ares"))
	s := BuildStore(ds)

	if s.HasParent("ares", "hera") {
		t.Error("child rows must not create parent edges")
	}
	g, _ := s.EgoGraph("hera")
	if len(g.Children) != 0 {
		t.Errorf("hera children = %v, want none", slugs(g.Children))
	}
}

func TestEgoGraph_DeduplicatesRingMembers(t *testing.T) {
	ds := olympus()
	second := rel(model.RelConsort, "hera", "zeus")
	second.Variant = "Homère"
	ds.Relations = append(ds.Relations, second)
	s := BuildStore(ds)

	g, _ := s.EgoGraph("zeus")
	if len(g.Consorts) != 1 {
		t.Fatalf("consorts = %v, want one entry", slugs(g.Consorts))
	}
	if g.Consorts[0].Relation.Variant != "" {
		t.Errorf("first relation should be kept, got variant %q", g.Consorts[0].Relation.Variant)
	}
}

func TestHasParent(t *testing.T) {
	s := BuildStore(olympus())
	tests := []struct {
		child, parent string
		want          bool
	}{
		{"ares", "zeus", true},
		{"zeus", "ares", false},
		{"ares", "hera", false},
		{"ares", "unknown", false},
		{"unknown", "zeus", false},
		{"", "", false},
	}
	for _, tt := range tests {
		if got := s.HasParent(tt.child, tt.parent); got != tt.want {
			t.Errorf("HasParent(%q, %q) = %v, want %v", tt.child, tt.parent, got, tt.want)
		}
	}
}

func TestEntitiesCollated(t *testing.T) {
	s := BuildStore(olympus())
	got := s.Entities()
	want := []string{"ares", "hera", "zeus"}
	for i, w := range want {
		if got[i].Slug != w {
			t.Fatalf("Entities()[%d] = %s, want %s", i, got[i].Slug, w)
		}
	}
	got[0].Name = "mutated"
	if e, _ := s.Entity("ares"); e.Name != "Arès" {
		t.Error("Entities() must return a copy")
	}
	if _, ok := s.EntityByID("grecque-hera"); !ok {
		t.Error("EntityByID should find hera")
	}
	if s.Len() != 3 {
		t.Errorf("Len = %d", s.Len())
	}
}

func TestGraphDisplayData(t *testing.T) {
	s := BuildStore(olympus())
	d, ok := s.GraphDisplayData("zeus")
	if !ok {
		t.Fatal("expected display data")
	}
	titles := []string{"Parents", "Fratrie", "Consorts", "Enfants"}
	if len(d.Sections) != len(titles) {
		t.Fatalf("sections = %d", len(d.Sections))
	}
	for i, title := range titles {
		if d.Sections[i].Title != title {
			t.Errorf("section %d title = %q, want %q", i, d.Sections[i].Title, title)
		}
	}
	if d.Sections[3].Nodes[0].Sources == nil {
		t.Error("sources should never be nil")
	}
	if _, ok := s.GraphDisplayData("nobody"); ok {
		t.Error("unknown slug should not produce display data")
	}
}

// genDataset draws a small dataset with unique slugs and arbitrary relations
// between them, including self loops and repeated pairs.
func genDataset(t *rapid.T) model.Dataset {
	n := rapid.IntRange(1, 8).Draw(t, "entities")
	ds := model.Dataset{}
	for i := 0; i < n; i++ {
		slug := fmt.Sprintf("e%d", i)
		ds.Entities = append(ds.Entities, ent(slug, rapid.StringMatching(`[A-Za-zÉéè]{1,6}`).Draw(t, "name")))
	}
	types := []model.RelationType{model.RelParent, model.RelChild, model.RelSibling, model.RelConsort}
	m := rapid.IntRange(0, 20).Draw(t, "relations")
	for i := 0; i < m; i++ {
		src := rapid.IntRange(0, n).Draw(t, "src") // n is a dangling id
		dst := rapid.IntRange(0, n).Draw(t, "dst")
		ds.Relations = append(ds.Relations, rel(rapid.SampledFrom(types).Draw(t, "type"),
			fmt.Sprintf("e%d", src), fmt.Sprintf("e%d", dst)))
	}
	return ds
}

func TestProperty_CentralSlug(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		ds := genDataset(t)
		s := BuildStore(ds)
		for _, e := range ds.Entities {
			g, ok := s.EgoGraph(e.Slug)
			if !ok || g.Central.Slug != e.Slug {
				t.Fatalf("EgoGraph(%s) central mismatch", e.Slug)
			}
		}
	})
}

func TestProperty_ParentChildDuality(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		s := BuildStore(genDataset(t))
		for _, r := range s.Relations() {
			if r.Type != model.RelParent {
				continue
			}
			p, _ := s.EntityByID(r.SourceID)
			c, _ := s.EntityByID(r.TargetID)
			pg, _ := s.EgoGraph(p.Slug)
			cg, _ := s.EgoGraph(c.Slug)
			if !contains(pg.Children, c.Slug) {
				t.Fatalf("%s missing from children of %s", c.Slug, p.Slug)
			}
			if !contains(cg.Parents, p.Slug) {
				t.Fatalf("%s missing from parents of %s", p.Slug, c.Slug)
			}
			if !s.HasParent(c.Slug, p.Slug) {
				t.Fatalf("HasParent(%s, %s) = false", c.Slug, p.Slug)
			}
		}
	})
}

func TestProperty_SymmetricRings(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		ds := genDataset(t)
		s := BuildStore(ds)
		for _, a := range ds.Entities {
			ga, _ := s.EgoGraph(a.Slug)
			for _, b := range ga.Siblings {
				gb, _ := s.EgoGraph(b.Entity.Slug)
				if !contains(gb.Siblings, a.Slug) {
					t.Fatalf("sibling %s->%s not symmetric", a.Slug, b.Entity.Slug)
				}
			}
			for _, b := range ga.Consorts {
				gb, _ := s.EgoGraph(b.Entity.Slug)
				if !contains(gb.Consorts, a.Slug) {
					t.Fatalf("consort %s->%s not symmetric", a.Slug, b.Entity.Slug)
				}
			}
		}
	})
}

func TestProperty_HasParentUnknownSlug(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		s := BuildStore(genDataset(t))
		known := rapid.StringMatching(`e[0-7]`).Draw(t, "known")
		unknown := rapid.StringMatching(`x[a-z]{0,4}`).Draw(t, "unknown")
		if s.HasParent(known, unknown) || s.HasParent(unknown, known) {
			t.Fatalf("HasParent must be false for unknown slug %q", unknown)
		}
	})
}
