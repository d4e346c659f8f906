package collation

import (
	"sort"
	"testing"
)

func TestCompare(t *testing.T) {
	tests := []struct {
		a, b string
		want int
	}{
		{"Zeus", "zeus", 0},
		{"Éris", "Eros", -1},
		{"Héra", "Hermès", -1},
		{"Aphrodite", "Arès", -1},
		{"Hera", "Héra", -1},
	}
	for _, tt := range tests {
		if got := Compare(tt.a, tt.b); got != tt.want {
			t.Errorf("Compare(%q, %q) = %d, want %d", tt.a, tt.b, got, tt.want)
		}
	}
}

func TestLessIsTotal(t *testing.T) {
	names := []struct{ name, slug string }{
		{"zeus", "zeus-b"},
		{"Zeus", "zeus-a"},
		{"Athéna", "athena"},
		{"Apollon", "apollon"},
	}
	sort.Slice(names, func(i, j int) bool {
		return Less(names[i].name, names[i].slug, names[j].name, names[j].slug)
	})
	want := []string{"apollon", "athena", "zeus-a", "zeus-b"}
	for i, w := range want {
		if names[i].slug != w {
			t.Fatalf("position %d = %s, want %s (%v)", i, names[i].slug, w, names)
		}
	}
}
