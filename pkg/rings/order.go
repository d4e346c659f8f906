package rings

import (
	"math"
	"sort"

	"github.com/vanderheijden86/pantheon/pkg/collation"
	"github.com/vanderheijden86/pantheon/pkg/model"
)

// SortByName returns nodes in base order: French, case-insensitive collation
// on the entity name with slug as tie-break. The input is not modified.
func SortByName(nodes []model.RelatedNode) []model.RelatedNode {
	out := make([]model.RelatedNode, len(nodes))
	copy(out, nodes)
	sort.SliceStable(out, func(i, j int) bool {
		a, b := out[i].Entity, out[j].Entity
		return collation.Less(a.Name, a.Slug, b.Name, b.Slug)
	})
	return out
}

// SortByOrder stably re-sorts nodes by their slug's rank in order. Slugs
// absent from order go last, keeping their relative order.
func SortByOrder(nodes []model.RelatedNode, order []string) []model.RelatedNode {
	out := make([]model.RelatedNode, len(nodes))
	copy(out, nodes)
	if len(order) == 0 {
		return out
	}

	rank := make(map[string]int, len(order))
	for i, slug := range order {
		if _, dup := rank[slug]; !dup {
			rank[slug] = i
		}
	}
	rankOf := func(slug string) int {
		if r, ok := rank[slug]; ok {
			return r
		}
		return math.MaxInt
	}
	sort.SliceStable(out, func(i, j int) bool {
		return rankOf(out[i].Entity.Slug) < rankOf(out[j].Entity.Slug)
	})
	return out
}

// Prioritize splits nodes into those matching keep and the rest, each
// keeping its relative order.
func Prioritize(nodes []model.RelatedNode, keep func(model.RelatedNode) bool) (prioritized, rest []model.RelatedNode) {
	for _, n := range nodes {
		if keep(n) {
			prioritized = append(prioritized, n)
		} else {
			rest = append(rest, n)
		}
	}
	return prioritized, rest
}

// Slugs returns the slug of each node, in order.
func Slugs(nodes []model.RelatedNode) []string {
	out := make([]string, len(nodes))
	for i, n := range nodes {
		out[i] = n.Entity.Slug
	}
	return out
}
