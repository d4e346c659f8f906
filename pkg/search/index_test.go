package search

import (
	"testing"

	"github.com/vanderheijden86/pantheon/pkg/genealogy"
	"github.com/vanderheijden86/pantheon/pkg/testutil"
)

func olympusIndex() *Index {
	return NewIndex(genealogy.BuildStore(testutil.Olympus()).Entities())
}

func TestSearch_AccentInsensitive(t *testing.T) {
	hits := olympusIndex().Search("hera", 5)
	if len(hits) == 0 || hits[0].Entity.Slug != "hera" {
		t.Fatalf("expected hera first, got %v", hits)
	}
	// "Héra": every rune of the query matched in the name.
	want := []int{0, 1, 2, 3}
	if got := hits[0].NameRunes; len(got) != len(want) {
		t.Errorf("NameRunes = %v, want %v", got, want)
	} else {
		for i := range want {
			if got[i] != want[i] {
				t.Errorf("NameRunes = %v, want %v", got, want)
				break
			}
		}
	}
}

func TestSearch_UpperCaseQuery(t *testing.T) {
	hits := olympusIndex().Search("ATHÉNA", 0)
	if len(hits) == 0 || hits[0].Entity.Slug != "athena" {
		t.Fatalf("expected athena, got %v", hits)
	}
}

func TestSearch_BlankQueryListsInOrder(t *testing.T) {
	idx := olympusIndex()
	hits := idx.Search("   ", 3)
	testutil.AssertSlugs(t, "blank query", []string{hits[0].Entity.Slug, hits[1].Entity.Slug, hits[2].Entity.Slug},
		[]string{"apollon", "ares", "artemis"})
	if got := len(idx.Search("", 100)); got != 12 {
		t.Errorf("blank query returned %d hits, want 12", got)
	}
}

func TestSearch_NoMatchAndLimit(t *testing.T) {
	idx := olympusIndex()
	if hits := idx.Search("zzzz", 5); len(hits) != 0 {
		t.Errorf("expected no hits, got %v", hits)
	}
	if hits := idx.Search("e", 2); len(hits) != 2 {
		t.Errorf("limit not applied: %d hits", len(hits))
	}
}

func TestFoldKey(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"Héra", "hera"},
		{"Hébé", "hebe"},
		{"Poséidon", "poseidon"},
		{"Gaïa", "gaia"},
		{"Œdipe", "œdipe"},
	}
	for _, tt := range tests {
		got, offsets := foldKey(tt.in)
		if got != tt.want {
			t.Errorf("foldKey(%q) = %q, want %q", tt.in, got, tt.want)
		}
		if len(offsets) != len(got) {
			t.Errorf("foldKey(%q): %d offsets for %d bytes", tt.in, len(offsets), len(got))
		}
	}
}
