// Package collation orders display names the way a French reader expects:
// letters first, accents as a secondary difference, case ignored.
package collation

import (
	"sync"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"
)

// collate.Collator keeps internal buffers and is not safe for concurrent use.
var pool = sync.Pool{
	New: func() any {
		return collate.New(language.French, collate.IgnoreCase)
	},
}

// Compare returns -1, 0 or 1 comparing a and b under French collation.
func Compare(a, b string) int {
	c := pool.Get().(*collate.Collator)
	defer pool.Put(c)
	return c.CompareString(a, b)
}

// Less orders by name, falling back to tie for a deterministic total order.
func Less(nameA, tieA, nameB, tieB string) bool {
	if c := Compare(nameA, nameB); c != 0 {
		return c < 0
	}
	return tieA < tieB
}
