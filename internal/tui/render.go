package tui

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/laureon/labtrack/internal/grid"
)

func (a *App) View() string {
	var body string
	switch a.state {
	case viewConfigure:
		body = a.renderConfigure()
	case viewSearch:
		body = a.renderSearch()
	case viewSettings:
		body = a.renderSettings()
	default:
		body = a.renderExplorer()
	}

	out := a.renderTabs() + "\n" + body
	if a.form != nil {
		out += "\n\n" + a.renderForm()
	}
	if a.confirm != nil {
		out += "\n\n" + a.renderConfirm()
	}
	if a.banner.Kind != bannerNone {
		out += "\n" + a.renderBanner()
	}
	return out
}

func (a *App) renderTabs() string {
	labels := map[appState]string{
		viewExplorer:  "Explorer",
		viewConfigure: "Configure",
		viewSearch:    "Search",
		viewSettings:  "Settings",
	}
	var parts []string
	for _, s := range tabOrder {
		if s == a.state {
			parts = append(parts, a.styles.TabActive.Render(labels[s]))
		} else {
			parts = append(parts, a.styles.Tab.Render(labels[s]))
		}
	}
	return strings.Join(parts, " ")
}

func (a *App) renderBanner() string {
	switch a.banner.Kind {
	case bannerError:
		return a.styles.BannerError.Render(a.banner.Text)
	case bannerInfo:
		return a.styles.BannerInfo.Render(a.banner.Text)
	default:
		return a.styles.BannerSuccess.Render(a.banner.Text)
	}
}

func (a *App) renderForm() string {
	f := a.form
	out := a.styles.Title.Render(f.title) + "\n"
	for i, fld := range f.fields {
		marker := "  "
		value := fld.value
		if i == f.focus {
			marker = "▶ "
			value = a.styles.InputActive.Render(value + "█")
		}
		out += fmt.Sprintf("%s%s: %s\n", marker, a.styles.InputLabel.Render(fld.label), value)
	}
	if f.multiline {
		out += a.styles.Help.Render("[ctrl+d] Save  [esc] Cancel")
	} else {
		out += a.styles.Help.Render("[enter] Next/Save  [tab] Next field  [esc] Cancel")
	}
	return out
}

func (a *App) renderConfirm() string {
	return a.styles.Title.Render(a.confirm.Prompt) + "\n" +
		a.styles.Help.Render("[y] Yes  [n] No")
}

// ---------------------------------------------------------------------------
// explorer
// ---------------------------------------------------------------------------

func (a *App) renderExplorer() string {
	if a.current == nil {
		return a.renderTree()
	}
	out := a.styles.Breadcrumb.Render(a.renderCrumb()) + "\n\n"
	if a.grid != nil {
		out += a.renderGrid()
	} else if a.flat != nil || a.curType.CanStoreSamples {
		out += a.renderFlatTable()
	} else {
		out += a.styles.Help.Render("This location holds no samples directly.")
	}
	return out
}

func (a *App) renderCrumb() string {
	var names []string
	for _, l := range a.crumb {
		names = append(names, l.Name)
	}
	return strings.Join(names, " > ")
}

func (a *App) renderTree() string {
	out := a.styles.Title.Render("Locations") + "\n"
	if len(a.tree) == 0 {
		out += a.styles.Help.Render("(no locations yet — press n to create one)") + "\n"
	}
	for i, node := range a.tree {
		marker := "  "
		if i == a.treeCursor {
			marker = a.styles.TreeCursor.Render("▶ ")
		}
		arrow := "  "
		if node.HasChildren {
			if a.expanded[node.Loc.ID] {
				arrow = "▾ "
			} else {
				arrow = "▸ "
			}
		}
		label := node.Loc.Name
		if node.SpaceLabel != "" {
			label += a.styles.Help.Render(" [" + node.SpaceLabel + "]")
		}
		out += fmt.Sprintf("%s%s%s%s\n", marker, strings.Repeat("  ", node.Depth), arrow, label)
	}
	out += "\n" + a.styles.Help.Render("[enter] Open  [→/←] Expand/Collapse  [n] New  [e] Rename  [x] Delete  [tab] Views  [q] Quit")
	return out
}

// ---------------------------------------------------------------------------
// grid pane
// ---------------------------------------------------------------------------

func (a *App) renderGrid() string {
	g := a.grid
	active := a.sel.Active()

	// column header
	header := "    "
	for col := 1; col <= g.Cols; col++ {
		header += fmt.Sprintf("%3s ", strconv.Itoa(col))
	}
	out := a.styles.RowHeader.Render(header) + "\n"

	for row := 1; row <= g.Rows; row++ {
		line := a.styles.RowHeader.Render(fmt.Sprintf("%3s ", grid.RowLetter(row)))
		for col := 1; col <= g.Cols; col++ {
			at := grid.Coord{Row: row, Col: col}
			c, _ := g.Cell(at)
			line += a.renderCell(c, at, active) + " "
		}
		out += line + "\n"
	}

	out += "\n" + a.renderGridStatus(active)
	return out
}

func (a *App) renderCell(c grid.Cell, at grid.Coord, active *grid.Selector) string {
	glyph := " · "
	style := a.styles.CellEmpty
	switch c.OccupantKind {
	case grid.OccupantSample:
		glyph = " ● "
		style = a.styles.CellSample
	case grid.OccupantLocation:
		glyph = " ■ "
		style = a.styles.CellLocation
	}

	if active != nil && active.IsSelected(c) {
		style = a.styles.CellSelected
		if anchor := active.Anchor(); anchor != nil && *anchor == at {
			style = a.styles.CellAnchor
		}
	}
	if at == a.cursor {
		style = a.styles.CellCursor
	}
	return style.Render(glyph)
}

func (a *App) renderGridStatus(active *grid.Selector) string {
	if active == nil {
		c, _ := a.grid.Cell(a.cursor)
		line := a.cursor.Label()
		if !c.Empty() {
			line += ": " + c.OccupantName
		}
		help := "[a] Add samples  [d] Delete samples  [n] New here  [x] Delete here  [enter] Open  [esc] Back"
		if !a.curType.CanStoreSamples {
			help = "[n] New here  [x] Delete here  [enter] Open  [esc] Back"
		}
		return line + "\n" + a.styles.Help.Render(help)
	}

	mode := "add"
	if active.Mode() == grid.ModeDelete {
		mode = "delete"
	}
	line := fmt.Sprintf("%s mode — %d selected", mode, active.Count())
	if !active.CanProceed() {
		line += " (select at least one)"
	}
	return line + "\n" + a.styles.Help.Render("[space] Toggle  [v] Select to anchor  [enter] Proceed  [p] Paste rows  [esc] Cancel")
}

// ---------------------------------------------------------------------------
// flat table
// ---------------------------------------------------------------------------

func (a *App) renderFlatTable() string {
	out := fmt.Sprintf("%-3s %-28s %-14s %-12s %s\n", "", "Name", "Catalog #", "Lot #", "Description")
	if len(a.flat) == 0 {
		out += a.styles.Help.Render("(no samples stored here)") + "\n"
	}
	start, end := a.flatPageBounds()
	for i := start; i < end; i++ {
		s := a.flat[i]
		check := "[ ]"
		if a.tableSel.Checked(s.ID) {
			check = "[x]"
		}
		line := fmt.Sprintf("%s %-28s %-14s %-12s %s", check, truncate(s.Name, 28), s.CatalogNumber, s.LotNumber, truncate(s.Description, 30))
		if a.tableSel.Checked(s.ID) {
			line = a.styles.RowSelected.Render(line)
		}
		marker := "  "
		if i == a.tableCursor {
			marker = a.styles.TreeCursor.Render("▶ ")
		}
		out += marker + line + "\n"
	}

	all := ""
	if a.tableSel.AllChecked() {
		all = " (all)"
	}
	out += fmt.Sprintf("\n%d of %d selected%s", a.tableSel.Count(), len(a.flat), all)
	if ps := a.pageSize(); len(a.flat) > ps {
		out += fmt.Sprintf(" — page %d of %d", a.tableCursor/ps+1, (len(a.flat)+ps-1)/ps)
	}
	out += "\n"
	help := "[space] Select  [ctrl+a] Select all  [n] New  [e] Edit  [p] Repeat-add  [x] Delete selected  [[/]] Page  [esc] Back"
	if !a.tableSel.DeleteEnabled() {
		help = "[space] Select  [ctrl+a] Select all  [n] New  [e] Edit  [p] Repeat-add  [[/]] Page  [esc] Back"
	}
	return out + a.styles.Help.Render(help)
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	if n <= 1 {
		return s[:n]
	}
	return s[:n-1] + "…"
}

// ---------------------------------------------------------------------------
// configure
// ---------------------------------------------------------------------------

func (a *App) renderConfigure() string {
	out := a.styles.Title.Render("Location Types") + "\n"
	for i, lt := range a.types {
		marker := "  "
		if i == a.typeCursor {
			marker = a.styles.TreeCursor.Render("▶ ")
		}
		desc := "container"
		if lt.Gridded() {
			desc = fmt.Sprintf("%dx%d grid", *lt.SpaceRows, *lt.SpaceCols)
		}
		if lt.CanStoreSamples {
			desc += ", stores samples"
		}
		out += fmt.Sprintf("%s%-16s %s\n", marker, lt.Name, a.styles.Help.Render(desc))
	}
	out += "\n" + a.styles.Help.Render("[n] New  [e/enter] Edit  [x] Delete  [tab] Views  [q] Quit")
	return out
}

// ---------------------------------------------------------------------------
// search
// ---------------------------------------------------------------------------

func (a *App) renderSearch() string {
	out := a.styles.Title.Render("Search Samples") + "\n"
	query := a.searchInput
	if a.searchFocus {
		query = a.styles.InputActive.Render(query + "█")
	}
	out += "Query: " + query + "\n\n"

	if a.searchPage == nil {
		out += a.styles.Help.Render("[enter] Edit query, matches name, catalog, lot and description")
		return out
	}

	p := a.searchPage
	if p.Total == 0 {
		out += "No matches.\n"
	}
	for _, hit := range p.Hits {
		where := "(unstored)"
		if len(hit.Path) > 0 {
			var names []string
			for _, l := range hit.Path {
				names = append(names, l.Name)
			}
			where = strings.Join(names, " > ")
			if hit.SpaceRef != "" {
				where += " " + hit.SpaceRef
			}
		}
		out += fmt.Sprintf("%-28s %-14s %s\n", truncate(hit.Sample.Name, 28), hit.Sample.CatalogNumber, a.styles.Breadcrumb.Render(where))
	}
	out += fmt.Sprintf("\nPage %d of %d — %d result(s)\n", p.Page, p.Pages, p.Total)
	out += a.styles.Help.Render("[enter] Edit query  [[/]] Page  [esc] Clear  [tab] Views  [q] Quit")
	return out
}

// ---------------------------------------------------------------------------
// settings
// ---------------------------------------------------------------------------

func (a *App) renderSettings() string {
	out := a.styles.Title.Render("Settings") + "\n"
	out += fmt.Sprintf("Database: %s\n", a.cfg.Database.Path)
	out += fmt.Sprintf("Results per page: %d\n", a.cfg.UI.PageSize)
	out += fmt.Sprintf("Accent: %s\n", a.cfg.UI.Accent)
	out += "\n" + a.styles.Help.Render("[e/enter] Edit  [tab] Views  [q] Quit")
	return out
}
