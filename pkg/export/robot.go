package export

import (
	"io"

	"github.com/goccy/go-json"

	"github.com/vanderheijden86/pantheon/pkg/analysis"
	"github.com/vanderheijden86/pantheon/pkg/genealogy"
	"github.com/vanderheijden86/pantheon/pkg/model"
	"github.com/vanderheijden86/pantheon/pkg/rings"
)

// RobotFocus is the focus state a report was computed under.
type RobotFocus struct {
	Shape               rings.Shape `json:"shape"`
	FocusedConsortSlug  string      `json:"focused_consort,omitempty"`
	SelectedConsortSlug string      `json:"selected_consort,omitempty"`
	FocusedChildSlug    string      `json:"focused_child,omitempty"`
}

// RobotNode is one ring member in display order.
type RobotNode struct {
	Key       string          `json:"key"`
	Highlight rings.Highlight `json:"highlight"`
	genealogy.NodeCard
}

// RobotSection is one ring.
type RobotSection struct {
	ID    model.Section `json:"id"`
	Title string        `json:"title"`
	Nodes []RobotNode   `json:"nodes"`
}

// RobotEgo is the machine-readable form of a rendered ego graph.
type RobotEgo struct {
	Central  model.Entity           `json:"central"`
	Focus    RobotFocus             `json:"focus"`
	Lineage  *analysis.LineageStats `json:"lineage,omitempty"`
	Sections []RobotSection         `json:"sections"`
	Warnings []analysis.Warning     `json:"warnings,omitempty"`
}

// BuildRobotEgo shapes res for output. lin may be nil.
func BuildRobotEgo(res rings.Result, state rings.FocusState, lin *analysis.Lineage) RobotEgo {
	out := RobotEgo{
		Central: res.Central,
		Focus: RobotFocus{
			Shape:               state.Shape(),
			FocusedConsortSlug:  state.FocusedConsortSlug,
			SelectedConsortSlug: state.SelectedConsortSlug,
			FocusedChildSlug:    state.FocusedChildSlug,
		},
		Sections: make([]RobotSection, 0, len(model.Sections)),
	}
	if lin != nil {
		if st, ok := lin.Stats(res.Central.Slug); ok {
			out.Lineage = &st
		}
		out.Warnings = lin.Warnings(analysis.DefaultMaxWarnings)
	}
	for _, s := range model.Sections {
		ring := res.Ring(s)
		nodes := make([]RobotNode, 0, len(ring))
		for _, n := range ring {
			nodes = append(nodes, RobotNode{
				Key:       n.Key,
				Highlight: n.Highlight,
				NodeCard:  genealogy.CardOf(model.RelatedNode{Entity: n.Entity, Relation: n.Relation}),
			})
		}
		out.Sections = append(out.Sections, RobotSection{ID: s, Title: s.Title(), Nodes: nodes})
	}
	return out
}

// WriteRobotEgo writes r as indented JSON.
func WriteRobotEgo(w io.Writer, r RobotEgo) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(r)
}
