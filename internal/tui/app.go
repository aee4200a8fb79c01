package tui

import (
	"context"
	"fmt"
	"time"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/laureon/labtrack/internal/config"
	"github.com/laureon/labtrack/internal/database/repository"
	"github.com/laureon/labtrack/internal/grid"
	"github.com/laureon/labtrack/internal/service"
)

// bannerDismissDelay is how long a dismissed banner stays visible before it
// is removed, so quick confirmations do not flash away instantly.
const bannerDismissDelay = 300 * time.Millisecond

// App is the bubbletea model tying every view together.
type App struct {
	ctx      context.Context
	cfg      config.Config
	repos    Repos
	services Services
	keys     keyMap
	styles   styles

	state  appState
	width  int
	height int

	// explorer
	tree       []treeNode
	expanded   map[string]bool
	treeCursor int
	current    *repository.Location
	crumb      []repository.Location
	curType    *repository.LocationType

	// grid pane
	grid   *grid.Grid
	sel    *grid.Controller
	cursor grid.Coord

	// flat sample table
	flat        []repository.Sample
	tableSel    *grid.TableSelect
	tableCursor int

	// configure tab
	types      []repository.LocationType
	typeCursor int

	// search tab
	searchInput string
	searchFocus bool
	searchPage  *service.SearchPage

	form    *form
	confirm *confirmState

	banner    banner
	bannerSeq int
}

type Repos struct {
	Types     *repository.LocationTypeRepo
	Locations *repository.LocationRepo
	Spaces    *repository.SpaceRepo
	Samples   *repository.SampleRepo
}

type Services struct {
	Hierarchy *service.HierarchyService
	Placement *service.PlacementService
	Search    *service.SearchService
}

type appState string

const (
	viewExplorer  appState = "explorer"
	viewConfigure appState = "configure"
	viewSearch    appState = "search"
	viewSettings  appState = "settings"
)

var tabOrder = []appState{viewExplorer, viewConfigure, viewSearch, viewSettings}

// treeNode is one visible row of the flattened location tree.
type treeNode struct {
	Loc         repository.Location
	Depth       int
	HasChildren bool
	SpaceLabel  string // e.g. "A1" when stored in a grid space
}

type bannerKind int

const (
	bannerNone bannerKind = iota
	bannerSuccess
	bannerError
	bannerInfo
)

type banner struct {
	Kind bannerKind
	Text string
}

// confirmState is a yes/no prompt guarding a destructive command.
type confirmState struct {
	Prompt string
	Accept func() tea.Cmd
}

func New(ctx context.Context, cfg config.Config, repos Repos, services Services) *App {
	return &App{
		ctx:      ctx,
		cfg:      cfg,
		repos:    repos,
		services: services,
		keys:     newKeyMap(),
		styles:   newStyles(accentColor(cfg.UI.Accent)),
		state:    viewExplorer,
		expanded: make(map[string]bool),
		sel:      grid.NewController(),
	}
}

func (a *App) Init() tea.Cmd {
	return tea.Batch(a.loadTree(), a.loadTypes())
}

// ---------------------------------------------------------------------------
// messages
// ---------------------------------------------------------------------------

type treeMsg []treeNode

type typesMsg []repository.LocationType

type locationOpenedMsg struct {
	Loc   repository.Location
	Type  repository.LocationType
	Crumb []repository.Location
	Grid  *grid.Grid          // nil for flat locations
	Flat  []repository.Sample // nil for grid locations
}

type searchDoneMsg service.SearchPage

type opDoneMsg struct {
	Status string
	Reload []tea.Cmd
}

type errMsg struct{ error }

type bannerClearMsg struct{ seq int }

// ---------------------------------------------------------------------------
// loaders
// ---------------------------------------------------------------------------

func (a *App) loadTree() tea.Cmd {
	return func() tea.Msg {
		roots, err := a.repos.Locations.Roots(a.ctx)
		if err != nil {
			return errMsg{err}
		}
		var nodes []treeNode
		for _, root := range roots {
			ns, err := a.buildSubtree(root, 0, "")
			if err != nil {
				return errMsg{err}
			}
			nodes = append(nodes, ns...)
		}
		return treeMsg(nodes)
	}
}

func (a *App) buildSubtree(loc repository.Location, depth int, spaceLabel string) ([]treeNode, error) {
	direct, err := a.repos.Locations.ChildrenOf(a.ctx, loc.ID)
	if err != nil {
		return nil, err
	}
	nested, err := a.repos.Locations.OccupantsOf(a.ctx, loc.ID)
	if err != nil {
		return nil, err
	}

	node := treeNode{
		Loc:         loc,
		Depth:       depth,
		HasChildren: len(direct)+len(nested) > 0,
		SpaceLabel:  spaceLabel,
	}
	nodes := []treeNode{node}
	if !a.expanded[loc.ID] {
		return nodes, nil
	}
	for _, child := range direct {
		ns, err := a.buildSubtree(child, depth+1, "")
		if err != nil {
			return nil, err
		}
		nodes = append(nodes, ns...)
	}
	for _, child := range nested {
		sp, err := a.repos.Spaces.ByLocationOccupant(a.ctx, child.ID)
		if err != nil {
			return nil, err
		}
		label := ""
		if sp != nil {
			label = grid.Coord{Row: sp.Row, Col: sp.Col}.Label()
		}
		ns, err := a.buildSubtree(child, depth+1, label)
		if err != nil {
			return nil, err
		}
		nodes = append(nodes, ns...)
	}
	return nodes, nil
}

func (a *App) loadTypes() tea.Cmd {
	return func() tea.Msg {
		types, err := a.services.Hierarchy.TypesSorted(a.ctx)
		if err != nil {
			return errMsg{err}
		}
		return typesMsg(types)
	}
}

func (a *App) openLocation(loc repository.Location) tea.Cmd {
	return func() tea.Msg {
		lt, err := a.repos.Types.Get(a.ctx, loc.TypeID)
		if err != nil {
			return errMsg{err}
		}
		if lt == nil {
			return errMsg{fmt.Errorf("location type missing for %s", loc.Name)}
		}
		crumb, err := a.services.Hierarchy.Path(a.ctx, loc)
		if err != nil {
			return errMsg{err}
		}
		msg := locationOpenedMsg{Loc: loc, Type: *lt, Crumb: crumb}
		if lt.Gridded() {
			g, err := a.services.Placement.LoadGrid(a.ctx, loc.ID)
			if err != nil {
				return errMsg{err}
			}
			msg.Grid = g
		} else if lt.CanStoreSamples {
			samples, err := a.services.Placement.SamplesIn(a.ctx, loc.ID)
			if err != nil {
				return errMsg{err}
			}
			msg.Flat = samples
		}
		return msg
	}
}

func (a *App) reopenCurrent() tea.Cmd {
	if a.current == nil {
		return a.loadTree()
	}
	return a.openLocation(*a.current)
}

func (a *App) searchCmd(query string, page int) tea.Cmd {
	return func() tea.Msg {
		res, err := a.services.Search.Search(a.ctx, query, page)
		if err != nil {
			return errMsg{err}
		}
		return searchDoneMsg(res)
	}
}

// ---------------------------------------------------------------------------
// update
// ---------------------------------------------------------------------------

func (a *App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch m := msg.(type) {
	case tea.WindowSizeMsg:
		a.width, a.height = m.Width, m.Height
		return a, nil

	case tea.KeyMsg:
		return a.handleKey(m)

	case treeMsg:
		a.tree = []treeNode(m)
		if a.treeCursor >= len(a.tree) {
			a.treeCursor = 0
		}
	case typesMsg:
		a.types = []repository.LocationType(m)
		if a.typeCursor >= len(a.types) {
			a.typeCursor = 0
		}
	case locationOpenedMsg:
		a.applyOpened(m)
	case searchDoneMsg:
		page := service.SearchPage(m)
		a.searchPage = &page
	case opDoneMsg:
		a.setBanner(bannerSuccess, m.Status)
		cmds := append([]tea.Cmd{}, m.Reload...)
		return a, tea.Batch(cmds...)
	case errMsg:
		a.setBanner(bannerError, m.Error())
	case bannerClearMsg:
		if m.seq == a.bannerSeq {
			a.banner = banner{}
		}
	}
	return a, nil
}

// applyOpened swaps the explorer to the opened location, preserving grid
// state when the same location is merely refreshed.
func (a *App) applyOpened(m locationOpenedMsg) {
	sameLoc := a.current != nil && a.current.ID == m.Loc.ID
	if !sameLoc {
		a.sel.Cancel()
	}
	loc := m.Loc
	a.current = &loc
	lt := m.Type
	a.curType = &lt
	a.crumb = m.Crumb

	a.grid = m.Grid
	if m.Grid != nil && (!sameLoc || !m.Grid.InBounds(a.cursor)) {
		a.cursor = grid.Coord{Row: 1, Col: 1}
	}

	a.flat = m.Flat
	if m.Flat != nil {
		ids := make([]string, len(m.Flat))
		for i, s := range m.Flat {
			ids[i] = s.ID
		}
		if a.tableSel == nil || !sameLoc {
			a.tableSel = grid.NewTableSelect(ids)
			a.tableCursor = 0
		} else {
			a.tableSel.SetRows(ids)
			if a.tableCursor >= len(ids) {
				a.tableCursor = 0
			}
		}
	} else {
		a.tableSel = nil
	}
}

func (a *App) handleKey(m tea.KeyMsg) (tea.Model, tea.Cmd) {
	// Any keypress dismisses a visible banner; the key still takes effect.
	var dismiss tea.Cmd
	if a.banner.Kind != bannerNone {
		dismiss = a.dismissBanner()
	}

	model, cmd := a.dispatchKey(m)
	if dismiss != nil {
		return model, tea.Batch(dismiss, cmd)
	}
	return model, cmd
}

func (a *App) dispatchKey(m tea.KeyMsg) (tea.Model, tea.Cmd) {
	if a.form != nil {
		return a.handleFormKey(m)
	}
	if a.confirm != nil {
		return a.handleConfirmKey(m)
	}
	if a.state == viewSearch && a.searchFocus {
		return a.handleSearchInputKey(m)
	}

	switch {
	case key.Matches(m, a.keys.Quit):
		return a, tea.Quit
	case key.Matches(m, a.keys.Tab):
		a.cycleTab(1)
		return a, nil
	case key.Matches(m, a.keys.PrevTab):
		a.cycleTab(-1)
		return a, nil
	}

	switch a.state {
	case viewExplorer:
		return a.handleExplorerKey(m)
	case viewConfigure:
		return a.handleConfigureKey(m)
	case viewSearch:
		return a.handleSearchKey(m)
	case viewSettings:
		return a.handleSettingsKey(m)
	}
	return a, nil
}

func (a *App) cycleTab(delta int) {
	for i, s := range tabOrder {
		if s == a.state {
			a.state = tabOrder[(i+delta+len(tabOrder))%len(tabOrder)]
			return
		}
	}
}

// ---------------------------------------------------------------------------
// banner
// ---------------------------------------------------------------------------

func (a *App) setBanner(kind bannerKind, text string) {
	a.bannerSeq++
	a.banner = banner{Kind: kind, Text: text}
}

// dismissBanner schedules removal after a short delay rather than clearing
// immediately, so the message is still readable while the next keypress
// takes effect.
func (a *App) dismissBanner() tea.Cmd {
	seq := a.bannerSeq
	return tea.Tick(bannerDismissDelay, func(time.Time) tea.Msg {
		return bannerClearMsg{seq: seq}
	})
}
