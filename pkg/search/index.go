// Package search finds entities by approximate name. Queries are matched
// without regard to case or accents, so "hera" finds "Héra".
package search

import (
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/sahilm/fuzzy"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"

	"github.com/vanderheijden86/pantheon/pkg/metrics"
	"github.com/vanderheijden86/pantheon/pkg/model"
)

// DefaultLimit caps the hits returned for a query.
const DefaultLimit = 20

// Hit is one search result.
type Hit struct {
	Entity model.Entity
	Score  int
	// NameRunes are the rune positions in Entity.Name that matched the query,
	// for highlighting. Matches in the slug are not reported.
	NameRunes []int
}

// Index is an immutable search index over a set of entities.
type Index struct {
	entities []model.Entity
	keys     []string
	// runeAt maps a byte offset in keys[i] to its rune position.
	runeAt    [][]int
	nameRunes []int
}

// NewIndex indexes entities. Their order is kept for empty queries and for
// tie-breaking equal scores.
func NewIndex(entities []model.Entity) *Index {
	idx := &Index{
		entities:  append([]model.Entity(nil), entities...),
		keys:      make([]string, len(entities)),
		runeAt:    make([][]int, len(entities)),
		nameRunes: make([]int, len(entities)),
	}
	for i, e := range entities {
		key, offsets := foldKey(e.Name + " " + e.Slug)
		idx.keys[i] = key
		idx.runeAt[i] = offsets
		idx.nameRunes[i] = utf8.RuneCountInString(e.Name)
	}
	return idx
}

// Len implements fuzzy.Source.
func (idx *Index) Len() int { return len(idx.keys) }

// String implements fuzzy.Source.
func (idx *Index) String(i int) string { return idx.keys[i] }

// Search returns up to limit hits for query, best first. A blank query
// returns the first limit entities in index order. limit <= 0 means
// DefaultLimit.
func (idx *Index) Search(query string, limit int) []Hit {
	defer metrics.Timer(metrics.SearchQuery)()

	if limit <= 0 {
		limit = DefaultLimit
	}
	query = strings.TrimSpace(query)
	if query == "" {
		n := min(limit, len(idx.entities))
		hits := make([]Hit, n)
		for i := range n {
			hits[i] = Hit{Entity: idx.entities[i]}
		}
		return hits
	}

	folded, _ := foldKey(query)
	matches := fuzzy.FindFrom(folded, idx)
	if len(matches) > limit {
		matches = matches[:limit]
	}
	hits := make([]Hit, 0, len(matches))
	for _, m := range matches {
		hits = append(hits, Hit{
			Entity:    idx.entities[m.Index],
			Score:     m.Score,
			NameRunes: idx.namePositions(m.Index, m.MatchedIndexes),
		})
	}
	return hits
}

func (idx *Index) namePositions(i int, byteIdx []int) []int {
	var out []int
	for _, b := range byteIdx {
		if b >= len(idx.runeAt[i]) {
			continue
		}
		if r := idx.runeAt[i][b]; r < idx.nameRunes[i] {
			out = append(out, r)
		}
	}
	return out
}

var stripMarks = runes.Remove(runes.In(unicode.Mn))

// foldKey lower-cases s and strips diacritics rune by rune, so the folded
// string has one rune per input rune. offsets maps each byte of the result
// to the rune position it came from.
func foldKey(s string) (string, []int) {
	var (
		sb      strings.Builder
		offsets []int
		pos     int
	)
	t := transform.Chain(norm.NFD, stripMarks)
	for _, r := range s {
		folded, _, err := transform.String(t, string(r))
		if err != nil || utf8.RuneCountInString(folded) != 1 {
			folded = string(r)
		}
		folded = strings.ToLower(folded)
		sb.WriteString(folded)
		for range len(folded) {
			offsets = append(offsets, pos)
		}
		pos++
		t.Reset()
	}
	return sb.String(), offsets
}
