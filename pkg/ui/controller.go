package ui

import (
	"github.com/vanderheijden86/pantheon/pkg/debug"
	"github.com/vanderheijden86/pantheon/pkg/genealogy"
	"github.com/vanderheijden86/pantheon/pkg/metrics"
	"github.com/vanderheijden86/pantheon/pkg/model"
	"github.com/vanderheijden86/pantheon/pkg/rings"
)

// NoDataMessage is shown when the focal entity is not in the dataset.
const NoDataMessage = "Pas encore de données pour ce dieu."

// Phase is where a node is in its entry/exit animation.
type Phase int

const (
	PhaseEntering Phase = iota
	PhaseVisible
	PhaseLeaving
)

func (p Phase) String() string {
	switch p {
	case PhaseEntering:
		return "entering"
	case PhaseLeaving:
		return "leaving"
	}
	return "visible"
}

// NodeView is a drawn node. Views are reused across renders by key.
type NodeView struct {
	rings.Node
	// Index is the row within the panel, leaving nodes included.
	Index  int
	Phase  Phase
	frames int
}

// Settled reports whether the node has finished animating in.
func (v *NodeView) Settled() bool { return v.Phase == PhaseVisible }

// PanelState is the scroll position and the overflow flags of a ring panel.
type PanelState struct {
	Scroll int
	// Height is the number of rows the panel shows.
	Height        int
	HasContent    bool
	HasMoreTop    bool
	HasMoreBottom bool
}

// Controller owns the focus state and the keyed set of drawn nodes. It is
// driven synchronously by the Bubble Tea update loop and is not safe for
// concurrent use.
type Controller struct {
	store  *genealogy.Store
	frames int

	currentSlug string
	graph       *model.EgoGraph
	state       rings.FocusState
	activeKey   string
	message     string

	result  rings.Result
	central *NodeView
	views   map[string]*NodeView
	rows    map[model.Section][]string
	panels  map[model.Section]*PanelState
	gen     uint64
}

// NewController returns a controller over store. frames is the length of
// entry and exit animations; zero disables them.
func NewController(store *genealogy.Store, frames int) *Controller {
	c := &Controller{
		store:  store,
		frames: max(frames, 0),
		views:  make(map[string]*NodeView),
		rows:   make(map[model.Section][]string),
		panels: make(map[model.Section]*PanelState),
	}
	for _, s := range model.Sections {
		c.panels[s] = &PanelState{}
	}
	return c
}

// CurrentSlug returns the central entity's slug, or "" before the first
// successful SetCurrentSlug.
func (c *Controller) CurrentSlug() string { return c.currentSlug }

// State returns a copy of the focus state.
func (c *Controller) State() rings.FocusState {
	st := c.state
	st.ChildrenOrder = append([]string(nil), c.state.ChildrenOrder...)
	st.ConsortOrder = append([]string(nil), c.state.ConsortOrder...)
	return st
}

// ActiveKey returns the key of the most recently clicked node.
func (c *Controller) ActiveKey() string { return c.activeKey }

// Message returns the pending message, such as NoDataMessage.
func (c *Controller) Message() string { return c.message }

// Result returns the rings of the last render.
func (c *Controller) Result() rings.Result { return c.result }

// Generation identifies the last render. Frame ticks carry it.
func (c *Controller) Generation() uint64 { return c.gen }

// Central returns the central node view, or nil before the first render.
func (c *Controller) Central() *NodeView { return c.central }

// Panel returns the state of a ring panel.
func (c *Controller) Panel(s model.Section) PanelState {
	if p, ok := c.panels[s]; ok {
		return *p
	}
	return PanelState{}
}

// Rows returns the views of a panel in row order, leaving nodes last.
func (c *Controller) Rows(s model.Section) []*NodeView {
	keys := c.rows[s]
	out := make([]*NodeView, 0, len(keys))
	for _, k := range keys {
		if v, ok := c.views[k]; ok {
			out = append(out, v)
		}
	}
	return out
}

// View looks a node view up by key.
func (c *Controller) View(key string) (*NodeView, bool) {
	if c.central != nil && c.central.Key == key {
		return c.central, true
	}
	v, ok := c.views[key]
	return v, ok
}

// SetCurrentSlug recenters the graph on slug. An unknown slug sets
// NoDataMessage and leaves everything else untouched.
func (c *Controller) SetCurrentSlug(slug string) bool {
	g, ok := c.store.EgoGraph(slug)
	if !ok {
		debug.Log("controller: no entity for slug %q", slug)
		c.message = NoDataMessage
		return false
	}
	c.currentSlug = slug
	c.graph = g
	c.state = rings.FocusState{}
	c.activeKey = ""
	c.message = ""
	for _, p := range c.panels {
		p.Scroll = 0
	}
	c.render()
	return true
}

// ClickNode applies a click on the node with key. It reports whether the
// click recentered the graph. Clicks on unknown or leaving nodes are
// ignored.
//
// Local focus is applied first; a second click on the active node then
// recenters on it, or clears all focus when it already is the centre.
func (c *Controller) ClickNode(key string) bool {
	v, ok := c.View(key)
	if !ok || v.Phase == PhaseLeaving || c.graph == nil {
		return false
	}
	second := c.activeKey == key
	c.activeKey = key
	slug := v.Entity.Slug

	switch v.Section {
	case model.SectionConsorts:
		if order := rings.NodeSlugs(c.result.Consorts); len(order) > 0 {
			c.state.ConsortOrder = order
		}
		c.state.SelectedConsortSlug = slug
		c.state.FocusedConsortSlug = slug
		c.state.FocusedChildSlug = ""
	case model.SectionChildren:
		if order := rings.NodeSlugs(c.result.Children); len(order) > 0 {
			c.state.ChildrenOrder = order
		}
		if order := rings.NodeSlugs(c.result.Consorts); len(order) > 0 {
			c.state.ConsortOrder = order
		}
		c.state.FocusedChildSlug = slug
		c.state.SelectedConsortSlug = ""
		c.state.FocusedConsortSlug = ""
	default:
		// Any other node releases a selected consort.
		c.state.SelectedConsortSlug = ""
		c.state.FocusedConsortSlug = ""
	}
	c.render()

	if !second {
		return false
	}
	if slug != c.currentSlug {
		return c.SetCurrentSlug(slug)
	}
	c.ClickOutside()
	return false
}

// ClickOutside clears the active node, every focus and the stored orders,
// so the next render is in base order.
func (c *Controller) ClickOutside() {
	c.activeKey = ""
	c.state = rings.FocusState{}
	c.render()
}

// render recomputes the rings and reconciles the drawn nodes by key.
func (c *Controller) render() {
	if c.graph == nil {
		return
	}
	defer metrics.Timer(metrics.Reconcile)()

	res := rings.ComputeRings(c.graph, c.state, c.store)
	c.state.ChildrenOrder = res.ChildrenOrder
	c.state.ConsortOrder = res.ConsortOrder
	c.result = res
	c.gen++

	scrolls := c.captureScroll()
	c.reconcile(res)
	c.restoreScroll(scrolls)
	c.refreshPanels()
}

func (c *Controller) newView(n rings.Node, index int) *NodeView {
	v := &NodeView{Node: n, Index: index, Phase: PhaseEntering, frames: c.frames}
	if c.frames == 0 {
		v.Phase = PhaseVisible
	}
	return v
}

func (c *Controller) reconcile(res rings.Result) {
	centralKey := rings.CentralKey(res.Central.ID)
	if c.central == nil || c.central.Key != centralKey {
		c.central = c.newView(rings.Node{Key: centralKey, Entity: res.Central}, 0)
	} else {
		c.central.Entity = res.Central
	}

	prev := c.views
	next := make(map[string]*NodeView, res.Len())
	for _, s := range model.Sections {
		ring := res.Ring(s)
		keys := make([]string, 0, len(ring))
		for i, n := range ring {
			v, ok := prev[n.Key]
			if ok && v.Phase != PhaseLeaving {
				v.Node = n
				v.Index = i
			} else {
				v = c.newView(n, i)
			}
			next[n.Key] = v
			keys = append(keys, n.Key)
		}
		for _, k := range c.rows[s] {
			if _, kept := next[k]; kept {
				continue
			}
			v, ok := prev[k]
			if !ok || c.frames == 0 {
				continue
			}
			if v.Phase != PhaseLeaving {
				v.Phase = PhaseLeaving
				v.frames = c.frames
			}
			v.Index = len(keys)
			next[k] = v
			keys = append(keys, k)
		}
		c.rows[s] = keys
	}
	c.views = next
}

// Tick advances animations by one frame. Ticks from a superseded render are
// ignored. It reports whether another frame is needed.
func (c *Controller) Tick(gen uint64) bool {
	if gen != c.gen {
		return false
	}
	if c.central != nil {
		advance(c.central)
	}
	for _, s := range model.Sections {
		keys := c.rows[s][:0]
		for _, k := range c.rows[s] {
			v, ok := c.views[k]
			if !ok {
				continue
			}
			if advance(v) {
				delete(c.views, k)
				continue
			}
			v.Index = len(keys)
			keys = append(keys, k)
		}
		c.rows[s] = keys
	}
	// The restored offsets are clamped once the content has settled.
	for _, s := range model.Sections {
		c.clampScroll(s)
	}
	c.refreshPanels()
	return c.Animating()
}

// advance moves v one frame on and reports whether it has left.
func advance(v *NodeView) bool {
	switch v.Phase {
	case PhaseEntering:
		if v.frames--; v.frames <= 0 {
			v.Phase = PhaseVisible
		}
	case PhaseLeaving:
		v.frames--
		return v.frames <= 0
	}
	return false
}

// Animating reports whether any node is still entering or leaving.
func (c *Controller) Animating() bool {
	if c.central != nil && !c.central.Settled() {
		return true
	}
	for _, v := range c.views {
		if !v.Settled() {
			return true
		}
	}
	return false
}

func (c *Controller) captureScroll() map[model.Section]int {
	out := make(map[model.Section]int, len(c.panels))
	for s, p := range c.panels {
		out[s] = p.Scroll
	}
	return out
}

func (c *Controller) restoreScroll(scrolls map[model.Section]int) {
	for s, off := range scrolls {
		c.panels[s].Scroll = off
	}
}

// SetPanelHeight records how many rows a panel shows.
func (c *Controller) SetPanelHeight(s model.Section, rows int) {
	p, ok := c.panels[s]
	if !ok {
		return
	}
	p.Height = max(rows, 0)
	c.clampScroll(s)
	c.refreshPanel(s)
}

// ScrollTo sets a panel's offset, clamped to its content. It reports
// whether the offset changed.
func (c *Controller) ScrollTo(s model.Section, offset int) bool {
	p, ok := c.panels[s]
	if !ok {
		return false
	}
	before := p.Scroll
	p.Scroll = offset
	c.clampScroll(s)
	c.refreshPanel(s)
	return p.Scroll != before
}

// ScrollBy moves a panel's offset by delta rows.
func (c *Controller) ScrollBy(s model.Section, delta int) bool {
	return c.ScrollTo(s, c.Panel(s).Scroll+delta)
}

// EnsureVisible scrolls a panel so row index is shown.
func (c *Controller) EnsureVisible(s model.Section, index int) {
	p, ok := c.panels[s]
	if !ok || p.Height == 0 {
		return
	}
	switch {
	case index < p.Scroll:
		c.ScrollTo(s, index)
	case index >= p.Scroll+p.Height:
		c.ScrollTo(s, index-p.Height+1)
	}
}

// NodeAtRow returns the node drawn on a panel's visible row.
func (c *Controller) NodeAtRow(s model.Section, row int) (*NodeView, bool) {
	p, ok := c.panels[s]
	if !ok || row < 0 || row >= p.Height {
		return nil, false
	}
	keys := c.rows[s]
	idx := p.Scroll + row
	if idx >= len(keys) {
		return nil, false
	}
	v, ok := c.views[keys[idx]]
	return v, ok
}

func (c *Controller) clampScroll(s model.Section) {
	p := c.panels[s]
	if p.Height == 0 {
		return
	}
	p.Scroll = clamp(p.Scroll, 0, len(c.rows[s])-p.Height)
}

func (c *Controller) refreshPanels() {
	for _, s := range model.Sections {
		c.refreshPanel(s)
	}
}

// refreshPanel recomputes the overflow flags the view draws as indicators.
func (c *Controller) refreshPanel(s model.Section) {
	p := c.panels[s]
	n := len(c.rows[s])
	p.HasContent = n > 0
	p.HasMoreTop = p.Scroll > 0
	p.HasMoreBottom = p.Height > 0 && p.Scroll+p.Height < n
}
