package model

import "testing"

func TestNormalizeID(t *testing.T) {
	tests := []struct {
		culture, slug, want string
	}{
		{"grecque", "zeus", "grecque-zeus"},
		{"", "zeus", "grecque-zeus"},
		{"  Romaine ", "jupiter", "romaine-jupiter"},
		{"NORDIQUE", "odin", "nordique-odin"},
	}
	for _, tt := range tests {
		if got := NormalizeID(tt.culture, tt.slug); got != tt.want {
			t.Errorf("NormalizeID(%q, %q) = %q, want %q", tt.culture, tt.slug, got, tt.want)
		}
	}
}

func TestRelationOther(t *testing.T) {
	r := Relation{SourceID: "a", TargetID: "b", Type: RelConsort}

	if other, ok := r.Other("a"); !ok || other != "b" {
		t.Errorf("Other(a) = %q, %v", other, ok)
	}
	if other, ok := r.Other("b"); !ok || other != "a" {
		t.Errorf("Other(b) = %q, %v", other, ok)
	}
	if _, ok := r.Other("c"); ok {
		t.Error("Other(c) should report false for a non-endpoint")
	}
}

func TestRelationTypeClassification(t *testing.T) {
	if !RelSibling.IsSymmetric() || !RelConsort.IsSymmetric() {
		t.Error("sibling and consort must be symmetric")
	}
	if RelParent.IsSymmetric() {
		t.Error("parent must be directed")
	}
	if RelationType("cousin").IsValid() {
		t.Error("unknown type reported valid")
	}
	for _, typ := range []RelationType{RelParent, RelChild, RelSibling, RelConsort} {
		if !typ.IsValid() {
			t.Errorf("%s should be valid", typ)
		}
	}
}

func TestRelationSourceString(t *testing.T) {
	tests := []struct {
		src  RelationSource
		want string
	}{
		{RelationSource{Author: "Hésiode", Work: "Théogonie"}, "Hésiode, Théogonie"},
		{RelationSource{Author: "Homère", Work: "Iliade", Note: "chant V"}, "Homère, Iliade (chant V)"},
		{RelationSource{Work: "Hymnes"}, "Hymnes"},
	}
	for _, tt := range tests {
		if got := tt.src.String(); got != tt.want {
			t.Errorf("String() = %q, want %q", got, tt.want)
		}
	}
}
