package rings

import "github.com/vanderheijden86/pantheon/pkg/model"

// parentConsorts returns the consorts of the central entity that are
// recorded as parents of childSlug.
func parentConsorts(childSlug string, consorts []model.RelatedNode, rel ParentOracle) []string {
	var out []string
	for _, c := range consorts {
		if rel.HasParent(childSlug, c.Entity.Slug) {
			out = append(out, c.Entity.Slug)
		}
	}
	return out
}

func sharesParent(childSlug string, parents []string, rel ParentOracle) bool {
	for _, p := range parents {
		if rel.HasParent(childSlug, p) {
			return true
		}
	}
	return false
}

// IsSiblingOf reports whether childSlug shares at least one parent-consort
// with focusSlug. A child is never its own sibling.
func IsSiblingOf(childSlug, focusSlug string, consorts []model.RelatedNode, rel ParentOracle) bool {
	if childSlug == focusSlug {
		return false
	}
	return sharesParent(childSlug, parentConsorts(focusSlug, consorts, rel), rel)
}

// ReorderSiblings moves the siblings of focusSlug next to it. Siblings are
// placed alternately left then right of the focus index, starting at
// distance 1 and skipping filled slots; the remaining children fill the
// gaps in their prior relative order. The focused child keeps its index.
// The ring is returned unchanged when focusSlug is absent or has no
// parent-consort.
func ReorderSiblings(nodes []model.RelatedNode, focusSlug string, consorts []model.RelatedNode, rel ParentOracle) []model.RelatedNode {
	focus := -1
	for i, n := range nodes {
		if n.Entity.Slug == focusSlug {
			focus = i
			break
		}
	}
	if focus < 0 {
		return nodes
	}
	parents := parentConsorts(focusSlug, consorts, rel)
	if len(parents) == 0 {
		return nodes
	}

	var siblings, others []model.RelatedNode
	for i, n := range nodes {
		switch {
		case i == focus:
		case n.Entity.Slug != focusSlug && sharesParent(n.Entity.Slug, parents, rel):
			siblings = append(siblings, n)
		default:
			others = append(others, n)
		}
	}

	placed := make([]bool, len(nodes))
	out := make([]model.RelatedNode, len(nodes))
	out[focus], placed[focus] = nodes[focus], true

	next := 0
	for offset := 1; next < len(siblings) && (focus-offset >= 0 || focus+offset < len(nodes)); offset++ {
		if left := focus - offset; left >= 0 && next < len(siblings) && !placed[left] {
			out[left], placed[left] = siblings[next], true
			next++
		}
		if right := focus + offset; right < len(nodes) && next < len(siblings) && !placed[right] {
			out[right], placed[right] = siblings[next], true
			next++
		}
	}

	rest := others
	for i := range out {
		if !placed[i] && len(rest) > 0 {
			out[i], placed[i] = rest[0], true
			rest = rest[1:]
		}
	}
	return out
}
