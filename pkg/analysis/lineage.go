// Package analysis computes lineage statistics over the parent relation:
// ancestor and descendant sets, generation depth and parent cycles.
package analysis

import (
	"sort"

	"gonum.org/v1/gonum/graph"
	"gonum.org/v1/gonum/graph/simple"
	"gonum.org/v1/gonum/graph/topo"
	"gonum.org/v1/gonum/graph/traverse"

	"github.com/vanderheijden86/pantheon/pkg/collation"
	"github.com/vanderheijden86/pantheon/pkg/metrics"
	"github.com/vanderheijden86/pantheon/pkg/model"
)

// Source is the read side of a genealogy store used to build the graph.
type Source interface {
	Entities() []model.Entity
	Relations() []model.Relation
	Entity(slug string) (model.Entity, bool)
}

// LineageStats summarises one entity's place in the family tree.
type LineageStats struct {
	Ancestors   int `json:"ancestors"`
	Descendants int `json:"descendants"`
	// Generations above and below: 1 means parents only / children only.
	AncestorDepth   int `json:"ancestor_depth"`
	DescendantDepth int `json:"descendant_depth"`
}

// Lineage is an immutable directed view of the parent relation.
type Lineage struct {
	down     *simple.DirectedGraph // parent -> child
	up       *simple.DirectedGraph // child -> parent
	idToNode map[string]int64
	nodeToID map[int64]string
	entities map[string]model.Entity
	src      Source
}

// NewLineage builds the parent graph. Self-parent rows are ignored; the
// graph library rejects self edges.
func NewLineage(src Source) *Lineage {
	defer metrics.Timer(metrics.LineageAnalysis)()

	l := &Lineage{
		down:     simple.NewDirectedGraph(),
		up:       simple.NewDirectedGraph(),
		idToNode: make(map[string]int64),
		nodeToID: make(map[int64]string),
		entities: make(map[string]model.Entity),
		src:      src,
	}
	for _, e := range src.Entities() {
		n := l.down.NewNode()
		l.down.AddNode(n)
		l.up.AddNode(simple.Node(n.ID()))
		l.idToNode[e.ID] = n.ID()
		l.nodeToID[n.ID()] = e.ID
		l.entities[e.ID] = e
	}
	for _, r := range src.Relations() {
		if r.Type != model.RelParent || r.SourceID == r.TargetID {
			continue
		}
		p, ok := l.idToNode[r.SourceID]
		if !ok {
			continue
		}
		c, ok := l.idToNode[r.TargetID]
		if !ok {
			continue
		}
		l.down.SetEdge(l.down.NewEdge(l.down.Node(p), l.down.Node(c)))
		l.up.SetEdge(l.up.NewEdge(l.up.Node(c), l.up.Node(p)))
	}
	return l
}

// Stats returns the lineage summary for slug, and false for an unknown slug.
func (l *Lineage) Stats(slug string) (LineageStats, bool) {
	e, ok := l.src.Entity(slug)
	if !ok {
		return LineageStats{}, false
	}
	id, ok := l.idToNode[e.ID]
	if !ok {
		return LineageStats{}, false
	}
	ancestors, upDepth := l.walk(l.up, id)
	descendants, downDepth := l.walk(l.down, id)
	return LineageStats{
		Ancestors:       len(ancestors),
		Descendants:     len(descendants),
		AncestorDepth:   upDepth,
		DescendantDepth: downDepth,
	}, true
}

// Ancestors returns every entity reachable through parent links, in name order.
func (l *Lineage) Ancestors(slug string) []model.Entity {
	return l.reachable(l.up, slug)
}

// Descendants returns every entity reachable through child links, in name order.
func (l *Lineage) Descendants(slug string) []model.Entity {
	return l.reachable(l.down, slug)
}

func (l *Lineage) reachable(g *simple.DirectedGraph, slug string) []model.Entity {
	e, ok := l.src.Entity(slug)
	if !ok {
		return nil
	}
	ids, _ := l.walk(g, l.idToNode[e.ID])
	out := make([]model.Entity, 0, len(ids))
	for _, id := range ids {
		out = append(out, l.entities[l.nodeToID[id]])
	}
	sortEntities(out)
	return out
}

// walk returns the nodes reachable from start (excluding start) and the
// greatest breadth-first depth reached.
func (l *Lineage) walk(g *simple.DirectedGraph, start int64) ([]int64, int) {
	var (
		seen     []int64
		maxDepth int
	)
	bf := traverse.BreadthFirst{
		Visit: func(n graph.Node) {
			if n.ID() != start {
				seen = append(seen, n.ID())
			}
		},
	}
	bf.Walk(g, g.Node(start), func(_ graph.Node, d int) bool {
		if d > maxDepth {
			maxDepth = d
		}
		return false
	})
	return seen, maxDepth
}

// Cycles returns groups of entities that are, through parent links, their
// own ancestors. Such loops are data errors; each group is name-ordered.
func (l *Lineage) Cycles() [][]model.Entity {
	var out [][]model.Entity
	for _, scc := range topo.TarjanSCC(l.down) {
		if len(scc) < 2 {
			continue
		}
		group := make([]model.Entity, 0, len(scc))
		for _, n := range scc {
			group = append(group, l.entities[l.nodeToID[n.ID()]])
		}
		sortEntities(group)
		out = append(out, group)
	}
	sort.Slice(out, func(i, j int) bool { return out[i][0].Slug < out[j][0].Slug })
	return out
}

func sortEntities(es []model.Entity) {
	sort.SliceStable(es, func(i, j int) bool {
		return collation.Less(es[i].Name, es[i].Slug, es[j].Name, es[j].Slug)
	})
}
