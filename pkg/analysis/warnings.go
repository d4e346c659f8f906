package analysis

import (
	"fmt"
	"strings"

	"github.com/vanderheijden86/pantheon/pkg/model"
)

// WarningKind classifies a lineage data error.
type WarningKind string

const (
	WarningSelfParent WarningKind = "self_parent"
	WarningCycle      WarningKind = "cycle"
)

// DefaultMaxWarnings caps Warnings when max is not positive.
const DefaultMaxWarnings = 10

// Warning is a parent relation the dataset should not contain.
type Warning struct {
	Kind    WarningKind `json:"kind"`
	Slugs   []string    `json:"slugs"`
	Summary string      `json:"summary"`
}

// Warnings reports self-parent rows and parent cycles, at most max of them.
// Self-parent rows come first, in dataset order.
func (l *Lineage) Warnings(max int) []Warning {
	if max <= 0 {
		max = DefaultMaxWarnings
	}
	var out []Warning
	for _, rel := range l.src.Relations() {
		if len(out) >= max {
			return out
		}
		if rel.Type != model.RelParent || rel.SourceID != rel.TargetID {
			continue
		}
		e, ok := l.entities[rel.SourceID]
		if !ok {
			continue
		}
		out = append(out, Warning{
			Kind:    WarningSelfParent,
			Slugs:   []string{e.Slug},
			Summary: fmt.Sprintf("%s est son propre parent", e.Name),
		})
	}
	for _, group := range l.Cycles() {
		if len(out) >= max {
			break
		}
		slugs := make([]string, len(group))
		names := make([]string, len(group))
		for i, e := range group {
			slugs[i] = e.Slug
			names[i] = e.Name
		}
		out = append(out, Warning{
			Kind:    WarningCycle,
			Slugs:   slugs,
			Summary: fmt.Sprintf("Cycle de filiation : %s", formatCyclePath(names)),
		})
	}
	return out
}

// formatCyclePath closes the loop on the first member.
func formatCyclePath(names []string) string {
	if len(names) == 0 {
		return ""
	}
	return strings.Join(append(names, names[0]), " → ")
}
