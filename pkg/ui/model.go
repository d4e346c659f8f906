// Package ui is the interactive terminal viewer: four ring panels around a
// central card, driven by mouse clicks or the keyboard.
package ui

import (
	"context"
	"fmt"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/vanderheijden86/pantheon/pkg/analysis"
	"github.com/vanderheijden86/pantheon/pkg/config"
	"github.com/vanderheijden86/pantheon/pkg/debug"
	"github.com/vanderheijden86/pantheon/pkg/genealogy"
	"github.com/vanderheijden86/pantheon/pkg/layout"
	"github.com/vanderheijden86/pantheon/pkg/loader"
	"github.com/vanderheijden86/pantheon/pkg/model"
	"github.com/vanderheijden86/pantheon/pkg/rings"
	"github.com/vanderheijden86/pantheon/pkg/watcher"
)

// Messages shown in place of the graph.
const (
	LoadingMessage   = "Chargement…"
	LoadErrorMessage = "Impossible de charger les données généalogiques"
)

// Default dimensions until the first WindowSizeMsg arrives.
const (
	defaultWidth  = 100
	defaultHeight = 30
)

// LoadFunc fetches the dataset. It is called once per session.
type LoadFunc func(ctx context.Context) (model.Dataset, error)

// Options configures a Model.
type Options struct {
	Load        LoadFunc
	InitialSlug string
	Config      config.Config
	// Watcher, when set, reloads the dataset on change.
	Watcher *watcher.Watcher
}

// FileChangedMsg is sent when the watched dataset changes on disk.
type FileChangedMsg struct{}

type datasetLoadedMsg struct {
	ds model.Dataset
}

type datasetErrMsg struct {
	err error
}

// frameMsg advances animations of the render identified by gen.
type frameMsg struct {
	gen uint64
}

type dragState struct {
	active      bool
	moved       bool
	section     model.Section
	startY      int
	startScroll int
}

// Model is the Bubble Tea model of the viewer.
type Model struct {
	opts    Options
	theme   Theme
	keys    KeyMap
	help    help.Model
	columns layout.Columns
	size    layout.Size
	grid    layout.Grid

	loading bool
	loadErr error
	store   *genealogy.Store
	lineage *analysis.Lineage
	ctrl    *Controller

	panel  model.Section
	cursor map[model.Section]int
	drag   dragState

	search   searchBox
	helpView helpOverlay
	showHelp bool

	status    string
	statusErr bool
}

// NewModel returns a model that loads its dataset in Init.
func NewModel(opts Options) Model {
	if opts.Config.Data.Timeout <= 0 {
		opts.Config.Data.Timeout = loader.DefaultFetchTimeout
	}
	m := Model{
		opts:     opts,
		theme:    DefaultTheme(lipgloss.DefaultRenderer(), opts.Config.UI.Theme),
		keys:     DefaultKeyMap(),
		help:     help.New(),
		loading:  true,
		panel:    model.SectionChildren,
		cursor:   make(map[model.Section]int),
		helpView: newHelpOverlay(opts.Config.UI.Theme),
	}
	m.resize(defaultWidth, defaultHeight)
	return m
}

// WatchFileCmd waits for the next change of w.
func WatchFileCmd(w *watcher.Watcher) tea.Cmd {
	return func() tea.Msg {
		<-w.Changed()
		return FileChangedMsg{}
	}
}

// Init starts the dataset load and, if configured, the file watch.
func (m Model) Init() tea.Cmd {
	cmds := []tea.Cmd{m.loadCmd()}
	if m.opts.Watcher != nil {
		cmds = append(cmds, WatchFileCmd(m.opts.Watcher))
	}
	return tea.Batch(cmds...)
}

func (m Model) loadCmd() tea.Cmd {
	load := m.opts.Load
	timeout := m.opts.Config.Data.Timeout
	return func() tea.Msg {
		if load == nil {
			return datasetErrMsg{err: loader.ErrNoDataset}
		}
		ctx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()
		ds, err := load(ctx)
		if err != nil {
			return datasetErrMsg{err: err}
		}
		return datasetLoadedMsg{ds: ds}
	}
}

func (m Model) frameCmd() tea.Cmd {
	if m.ctrl == nil {
		return nil
	}
	gen := m.ctrl.Generation()
	interval := m.opts.Config.UI.FrameInterval
	if interval <= 0 {
		interval = 30 * time.Millisecond
	}
	return tea.Tick(interval, func(time.Time) tea.Msg {
		return frameMsg{gen: gen}
	})
}

// Controller exposes the focus controller, nil until the dataset is loaded.
func (m Model) Controller() *Controller { return m.ctrl }

// Update implements tea.Model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.resize(msg.Width, msg.Height)
		return m, nil

	case datasetLoadedMsg:
		m.onLoaded(msg.ds)
		return m, m.frameCmd()

	case datasetErrMsg:
		debug.Error("load dataset", msg.err)
		if m.store != nil {
			// A failed reload keeps the dataset already on screen.
			m.setStatus(LoadErrorMessage, true)
			return m, nil
		}
		m.loading = false
		m.loadErr = msg.err
		return m, nil

	case FileChangedMsg:
		// A reload restarts the session on the same centre; focus is lost.
		if m.ctrl != nil && m.ctrl.CurrentSlug() != "" {
			m.opts.InitialSlug = m.ctrl.CurrentSlug()
		}
		debug.Log("ui: dataset changed, reloading")
		cmds := []tea.Cmd{m.loadCmd()}
		if m.opts.Watcher != nil {
			cmds = append(cmds, WatchFileCmd(m.opts.Watcher))
		}
		return m, tea.Batch(cmds...)

	case frameMsg:
		if m.ctrl != nil && m.ctrl.Tick(msg.gen) {
			return m, m.frameCmd()
		}
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(msg)

	case tea.MouseMsg:
		return m.handleMouse(msg)
	}
	return m, nil
}

func (m *Model) onLoaded(ds model.Dataset) {
	m.loading = false
	m.loadErr = nil
	m.store = genealogy.BuildStore(ds)
	m.lineage = analysis.NewLineage(m.store)
	for _, w := range m.lineage.Warnings(analysis.DefaultMaxWarnings) {
		debug.Log("lineage: %s", w.Summary)
	}
	m.search = newSearchBox(m.store.Entities())
	m.ctrl = NewController(m.store, m.opts.Config.UI.AnimationFrames)
	m.cursor = make(map[model.Section]int)
	m.resize(m.size.W, m.size.H)
	debug.Log("ui: loaded %d entities, %d relations", m.store.Len(), m.store.RelationCount())
	m.ctrl.SetCurrentSlug(m.opts.InitialSlug)
}

func (m *Model) resize(w, h int) {
	m.size = layout.Size{W: w, H: h}
	m.grid = m.columns.Grid(m.size)
	m.help.Width = w
	m.helpView.resize(w, max(h-2, 1))
	if m.ctrl != nil {
		for _, s := range model.Sections {
			m.ctrl.SetPanelHeight(s, m.grid.Content(s).H)
		}
	}
}

func (m *Model) setStatus(text string, isErr bool) {
	m.status = text
	m.statusErr = isErr
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if msg.Type == tea.KeyCtrlC {
		return m, tea.Quit
	}
	if m.search.active {
		slug, cmd := m.search.update(msg)
		if slug != "" && m.ctrl != nil {
			m.ctrl.SetCurrentSlug(slug)
			return m, m.frameCmd()
		}
		return m, cmd
	}
	if m.showHelp {
		switch {
		case key.Matches(msg, m.keys.Help), msg.String() == "esc", key.Matches(msg, m.keys.Quit):
			m.showHelp = false
		default:
			var cmd tea.Cmd
			m.helpView.vp, cmd = m.helpView.vp.Update(msg)
			return m, cmd
		}
		return m, nil
	}

	switch {
	case key.Matches(msg, m.keys.Quit):
		return m, tea.Quit
	case key.Matches(msg, m.keys.Help):
		m.showHelp = true
		return m, nil
	}
	if m.ctrl == nil || m.ctrl.Central() == nil {
		return m, nil
	}

	switch {
	case key.Matches(msg, m.keys.NextPanel):
		m.panel = cycleSection(m.panel, 1)
	case key.Matches(msg, m.keys.PrevPanel):
		m.panel = cycleSection(m.panel, -1)
	case key.Matches(msg, m.keys.Up):
		m.moveCursor(-1)
	case key.Matches(msg, m.keys.Down):
		m.moveCursor(1)
	case key.Matches(msg, m.keys.Select):
		rows := m.ctrl.Rows(m.panel)
		if i := m.cursor[m.panel]; i < len(rows) {
			m.click(rows[i].Key)
		}
		return m, m.frameCmd()
	case key.Matches(msg, m.keys.Clear):
		m.ctrl.ClickOutside()
		m.setStatus("", false)
		return m, m.frameCmd()
	case key.Matches(msg, m.keys.Center):
		m.click(m.ctrl.Central().Key)
		return m, m.frameCmd()
	case key.Matches(msg, m.keys.Search):
		return m, m.search.open()
	case key.Matches(msg, m.keys.Open):
		m.openProfile()
	case key.Matches(msg, m.keys.Copy):
		m.copyProfile()
	}
	return m, nil
}

func cycleSection(s model.Section, step int) model.Section {
	n := len(model.Sections)
	for i, cand := range model.Sections {
		if cand == s {
			return model.Sections[((i+step)%n+n)%n]
		}
	}
	return model.Sections[0]
}

func (m *Model) moveCursor(delta int) {
	rows := m.ctrl.Rows(m.panel)
	if len(rows) == 0 {
		return
	}
	i := clamp(m.cursor[m.panel]+delta, 0, len(rows)-1)
	m.cursor[m.panel] = i
	m.ctrl.EnsureVisible(m.panel, i)
}

// click forwards a node click and keeps the keyboard cursor on it.
func (m *Model) click(k string) {
	if v, ok := m.ctrl.View(k); ok && v.Section != "" {
		m.panel = v.Section
	}
	if m.ctrl.ClickNode(k) {
		m.cursor = make(map[model.Section]int)
		m.setStatus("", false)
		return
	}
	if v, ok := m.ctrl.View(k); ok && v.Section != "" {
		m.cursor[v.Section] = v.Index
	}
	if msg := m.ctrl.Message(); msg != "" {
		m.setStatus(msg, true)
	}
}

func (m *Model) openProfile() {
	slug := m.ctrl.CurrentSlug()
	url := m.opts.Config.Assets.ProfileURL(slug)
	if err := OpenInBrowser(url); err != nil {
		m.setStatus(fmt.Sprintf("Ouverture impossible : %v", err), true)
		return
	}
	m.setStatus(ProfileAction+" : "+url, false)
}

func (m *Model) copyProfile() {
	url := m.opts.Config.Assets.ProfileURL(m.ctrl.CurrentSlug())
	if err := CopyToClipboard(url); err != nil {
		m.setStatus(fmt.Sprintf("Copie impossible : %v", err), true)
		return
	}
	m.setStatus("Lien copié : "+url, false)
}

func (m Model) handleMouse(msg tea.MouseMsg) (tea.Model, tea.Cmd) {
	if m.ctrl == nil || m.ctrl.Central() == nil || m.search.active || m.showHelp {
		return m, nil
	}
	switch {
	case msg.Action == tea.MouseActionPress && msg.Button == tea.MouseButtonLeft:
		m.press(msg.X, msg.Y)
		return m, m.frameCmd()
	case msg.Action == tea.MouseActionMotion && m.drag.active:
		delta := msg.Y - m.drag.startY
		if delta != 0 {
			m.drag.moved = true
		}
		m.ctrl.ScrollTo(m.drag.section, m.drag.startScroll-delta)
	case msg.Action == tea.MouseActionRelease:
		if m.drag.active && !m.drag.moved {
			m.ctrl.ClickOutside()
			m.drag = dragState{}
			return m, m.frameCmd()
		}
		m.drag = dragState{}
	case msg.Button == tea.MouseButtonWheelUp:
		if s, ok := m.grid.PanelAt(msg.X, msg.Y); ok {
			m.ctrl.ScrollBy(s, -1)
		}
	case msg.Button == tea.MouseButtonWheelDown:
		if s, ok := m.grid.PanelAt(msg.X, msg.Y); ok {
			m.ctrl.ScrollBy(s, 1)
		}
	}
	return m, nil
}

// press hit-tests a left press. Presses on a panel background start a drag
// that becomes a click outside if the pointer does not move.
func (m *Model) press(x, y int) {
	if m.grid.Central.Contains(x, y) {
		if m.actionBounds().Contains(x, y) {
			m.openProfile()
			return
		}
		m.click(m.ctrl.Central().Key)
		return
	}
	s, ok := m.grid.PanelAt(x, y)
	if !ok {
		m.ctrl.ClickOutside()
		return
	}
	m.panel = s
	content := m.grid.Content(s)
	if content.Contains(x, y) {
		if v, ok := m.ctrl.NodeAtRow(s, y-content.Y); ok && v.Phase != PhaseLeaving {
			m.click(v.Key)
			return
		}
	}
	m.drag = dragState{
		active:      true,
		section:     s,
		startY:      y,
		startScroll: m.ctrl.Panel(s).Scroll,
	}
}

// activeNode returns the node the detail line describes.
func (m Model) activeNode() (*NodeView, bool) {
	if m.ctrl == nil {
		return nil, false
	}
	if k := m.ctrl.ActiveKey(); k != "" {
		if v, ok := m.ctrl.View(k); ok {
			return v, true
		}
	}
	return nil, false
}

// focusLabel describes the focus shape for the header.
func focusLabel(st rings.FocusState) string {
	switch st.Shape() {
	case rings.ShapeConsort:
		return "focus consort : " + st.FocusedConsortSlug
	case rings.ShapeChild:
		return "focus enfant : " + st.FocusedChildSlug
	}
	return ""
}
