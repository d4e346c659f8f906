package datasource

import (
	"fmt"
	"sort"
	"strings"

	"github.com/vanderheijden86/pantheon/pkg/model"
)

// SourceDiff represents differences between two data sources, typically the
// YAML source and a JSON export that was not regenerated after an edit.
type SourceDiff struct {
	SourceA string
	SourceB string
	// MissingInA contains entity ids present in B but not in A
	MissingInA []string
	// MissingInB contains entity ids present in A but not in B
	MissingInB []string
	// RenamedEntities contains ids whose display name differs
	RenamedEntities []NameDifference
	RelationsA      int
	RelationsB      int
	CountA          int
	CountB          int
}

// NameDifference is a name mismatch for a single entity
type NameDifference struct {
	ID    string `json:"id"`
	NameA string `json:"name_a"`
	NameB string `json:"name_b"`
}

// HasInconsistencies returns true if there are any differences between sources
func (d SourceDiff) HasInconsistencies() bool {
	return len(d.MissingInA) > 0 || len(d.MissingInB) > 0 ||
		len(d.RenamedEntities) > 0 || d.RelationsA != d.RelationsB
}

// Summary returns a human-readable summary of the differences
func (d SourceDiff) Summary() string {
	if !d.HasInconsistencies() {
		return fmt.Sprintf("Sources match (%d entities each)", d.CountA)
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "Inconsistencies found between %s and %s:\n", d.SourceA, d.SourceB)
	if d.CountA != d.CountB {
		fmt.Fprintf(&sb, "  - Entity count mismatch: %d vs %d\n", d.CountA, d.CountB)
	}
	if d.RelationsA != d.RelationsB {
		fmt.Fprintf(&sb, "  - Relation count mismatch: %d vs %d\n", d.RelationsA, d.RelationsB)
	}
	writeIDs := func(ids []string, in, notIn string) {
		if len(ids) == 0 {
			return
		}
		fmt.Fprintf(&sb, "  - %d entities in %s but not %s\n", len(ids), in, notIn)
		if len(ids) <= 5 {
			for _, id := range ids {
				fmt.Fprintf(&sb, "    - %s\n", id)
			}
		}
	}
	writeIDs(d.MissingInA, d.SourceB, d.SourceA)
	writeIDs(d.MissingInB, d.SourceA, d.SourceB)
	for _, n := range d.RenamedEntities {
		fmt.Fprintf(&sb, "  - %s: %q vs %q\n", n.ID, n.NameA, n.NameB)
	}
	return sb.String()
}

// DetectInconsistencies compares two datasets by entity id.
func DetectInconsistencies(a, b model.Dataset, sourceA, sourceB string) SourceDiff {
	diff := SourceDiff{
		SourceA:    sourceA,
		SourceB:    sourceB,
		CountA:     len(a.Entities),
		CountB:     len(b.Entities),
		RelationsA: len(a.Relations),
		RelationsB: len(b.Relations),
	}

	namesA := make(map[string]string, len(a.Entities))
	for _, e := range a.Entities {
		namesA[e.ID] = e.Name
	}
	namesB := make(map[string]string, len(b.Entities))
	for _, e := range b.Entities {
		namesB[e.ID] = e.Name
	}

	for id, nameA := range namesA {
		nameB, ok := namesB[id]
		if !ok {
			diff.MissingInB = append(diff.MissingInB, id)
			continue
		}
		if nameA != nameB {
			diff.RenamedEntities = append(diff.RenamedEntities, NameDifference{ID: id, NameA: nameA, NameB: nameB})
		}
	}
	for id := range namesB {
		if _, ok := namesA[id]; !ok {
			diff.MissingInA = append(diff.MissingInA, id)
		}
	}

	sort.Strings(diff.MissingInA)
	sort.Strings(diff.MissingInB)
	sort.Slice(diff.RenamedEntities, func(i, j int) bool {
		return diff.RenamedEntities[i].ID < diff.RenamedEntities[j].ID
	})
	return diff
}

// CompareSources loads both local sources and diffs them.
func CompareSources(sourceA, sourceB DataSource) (*SourceDiff, error) {
	a, err := readLocal(sourceA)
	if err != nil {
		return nil, fmt.Errorf("failed to load %s: %w", sourceA.Path, err)
	}
	b, err := readLocal(sourceB)
	if err != nil {
		return nil, fmt.Errorf("failed to load %s: %w", sourceB.Path, err)
	}
	diff := DetectInconsistencies(a, b, sourceA.Path, sourceB.Path)
	return &diff, nil
}
