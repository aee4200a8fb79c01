package tui

import (
	"fmt"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/laureon/labtrack/internal/grid"
	"github.com/laureon/labtrack/internal/service"
)

func (a *App) handleExplorerKey(m tea.KeyMsg) (tea.Model, tea.Cmd) {
	if a.current == nil {
		return a.handleTreeKey(m)
	}
	if a.grid != nil {
		return a.handleGridKey(m)
	}
	return a.handleFlatKey(m)
}

// ---------------------------------------------------------------------------
// location tree
// ---------------------------------------------------------------------------

func (a *App) handleTreeKey(m tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(m, a.keys.Up):
		if a.treeCursor > 0 {
			a.treeCursor--
		}
	case key.Matches(m, a.keys.Down):
		if a.treeCursor < len(a.tree)-1 {
			a.treeCursor++
		}
	case key.Matches(m, a.keys.Right):
		if node := a.treeNodeAtCursor(); node != nil && node.HasChildren && !a.expanded[node.Loc.ID] {
			a.expanded[node.Loc.ID] = true
			return a, a.loadTree()
		}
	case key.Matches(m, a.keys.Left):
		if node := a.treeNodeAtCursor(); node != nil && a.expanded[node.Loc.ID] {
			delete(a.expanded, node.Loc.ID)
			return a, a.loadTree()
		}
	case key.Matches(m, a.keys.Enter):
		if node := a.treeNodeAtCursor(); node != nil {
			return a, a.openLocation(node.Loc)
		}
	case key.Matches(m, a.keys.New):
		a.form = newLocationForm(a)
	case key.Matches(m, a.keys.Edit):
		if node := a.treeNodeAtCursor(); node != nil {
			a.form = renameLocationForm(a, node.Loc)
		}
	case key.Matches(m, a.keys.Delete):
		if node := a.treeNodeAtCursor(); node != nil {
			loc := node.Loc
			a.confirm = &confirmState{
				Prompt: fmt.Sprintf("Delete location %q?", loc.Name),
				Accept: func() tea.Cmd { return a.deleteLocationCmd(loc.ID) },
			}
		}
	}
	return a, nil
}

func (a *App) treeNodeAtCursor() *treeNode {
	if a.treeCursor < 0 || a.treeCursor >= len(a.tree) {
		return nil
	}
	return &a.tree[a.treeCursor]
}

// ---------------------------------------------------------------------------
// grid pane
// ---------------------------------------------------------------------------

func (a *App) handleGridKey(m tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(m, a.keys.Up):
		if a.cursor.Row > 1 {
			a.cursor.Row--
		}
	case key.Matches(m, a.keys.Down):
		if a.cursor.Row < a.grid.Rows {
			a.cursor.Row++
		}
	case key.Matches(m, a.keys.Left):
		if a.cursor.Col > 1 {
			a.cursor.Col--
		}
	case key.Matches(m, a.keys.Right):
		if a.cursor.Col < a.grid.Cols {
			a.cursor.Col++
		}

	case key.Matches(m, a.keys.AddMode):
		if a.curType.CanStoreSamples {
			if !a.sel.Enter(grid.ModeAdd) {
				a.setBanner(bannerInfo, "finish or cancel the current selection first")
			}
		}
	case key.Matches(m, a.keys.DeleteMode):
		if !a.sel.Enter(grid.ModeDelete) {
			a.setBanner(bannerInfo, "finish or cancel the current selection first")
		}
	case key.Matches(m, a.keys.Toggle):
		if s := a.sel.Active(); s != nil {
			s.Click(a.grid, a.cursor, false)
		}
	case key.Matches(m, a.keys.Range):
		if s := a.sel.Active(); s != nil {
			s.Click(a.grid, a.cursor, true)
		}
	case key.Matches(m, a.keys.Paste):
		if s := a.sel.Active(); s != nil && s.CanProceed() {
			sub := s.Submission()
			if sub.Field == grid.ModeAdd.FieldName() {
				a.form = pasteForm(a, sub.Values)
			}
		}
	case key.Matches(m, a.keys.Proceed):
		return a.proceedSelection()
	case key.Matches(m, a.keys.Back):
		if a.sel.Active() != nil {
			a.sel.Cancel()
			return a, nil
		}
		a.closeLocation()
	case key.Matches(m, a.keys.New):
		if a.sel.Active() == nil {
			return a.newOccupantAtCursor()
		}
	case key.Matches(m, a.keys.Delete):
		if a.sel.Active() == nil {
			return a.deleteOccupantAtCursor()
		}
	}
	return a, nil
}

// proceedSelection finishes the active selection: add-mode opens the bulk
// sample form, delete-mode asks for confirmation. With no selection, enter
// descends into a nested location under the cursor.
func (a *App) proceedSelection() (tea.Model, tea.Cmd) {
	s := a.sel.Active()
	if s == nil {
		if c, ok := a.grid.Cell(a.cursor); ok && c.OccupantKind == grid.OccupantLocation {
			if loc, err := a.repos.Locations.Get(a.ctx, c.OccupantID); err == nil && loc != nil {
				return a, a.openLocation(*loc)
			}
		}
		return a, nil
	}
	if !s.CanProceed() {
		return a, nil
	}
	sub := s.Submission()
	switch sub.Field {
	case grid.ModeAdd.FieldName():
		a.form = bulkAddForm(a, sub.Values)
	case grid.ModeDelete.FieldName():
		ids := sub.Values
		a.sel.Cancel()
		a.confirm = &confirmState{
			Prompt: fmt.Sprintf("Delete %d selected sample(s)?", len(ids)),
			Accept: func() tea.Cmd { return a.bulkDeleteCmd(ids) },
		}
	}
	return a, nil
}

func (a *App) newOccupantAtCursor() (tea.Model, tea.Cmd) {
	c, ok := a.grid.Cell(a.cursor)
	if !ok || !c.Empty() {
		return a, nil
	}
	if a.curType.CanStoreSamples {
		a.form = sampleInSpaceForm(a, a.cursor)
	} else {
		a.form = nestedLocationForm(a, a.cursor)
	}
	return a, nil
}

func (a *App) deleteOccupantAtCursor() (tea.Model, tea.Cmd) {
	c, ok := a.grid.Cell(a.cursor)
	if !ok || c.Empty() {
		return a, nil
	}
	switch c.OccupantKind {
	case grid.OccupantSample:
		id := c.OccupantID
		a.confirm = &confirmState{
			Prompt: fmt.Sprintf("Delete sample %q?", c.OccupantName),
			Accept: func() tea.Cmd { return a.deleteSampleCmd(id) },
		}
	case grid.OccupantLocation:
		id := c.OccupantID
		a.confirm = &confirmState{
			Prompt: fmt.Sprintf("Delete location %q?", c.OccupantName),
			Accept: func() tea.Cmd { return a.deleteLocationCmd(id) },
		}
	}
	return a, nil
}

func (a *App) closeLocation() {
	a.sel.Cancel()
	a.current = nil
	a.curType = nil
	a.crumb = nil
	a.grid = nil
	a.flat = nil
	a.tableSel = nil
}

// ---------------------------------------------------------------------------
// flat sample table
// ---------------------------------------------------------------------------

func (a *App) handleFlatKey(m tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(m, a.keys.Up):
		if a.tableCursor > 0 {
			a.tableCursor--
		}
	case key.Matches(m, a.keys.Down):
		if a.tableCursor < len(a.flat)-1 {
			a.tableCursor++
		}
	case key.Matches(m, a.keys.Toggle):
		if a.tableCursor < len(a.flat) {
			a.tableSel.Toggle(a.flat[a.tableCursor].ID)
		}
	case key.Matches(m, a.keys.SelectAll):
		a.tableSel.ToggleAll()
	case key.Matches(m, a.keys.New):
		a.form = sampleFlatForm(a)
	case key.Matches(m, a.keys.Edit):
		if a.tableCursor < len(a.flat) {
			a.form = sampleEditForm(a, a.flat[a.tableCursor])
		}
	case key.Matches(m, a.keys.Paste):
		a.form = pasteCountForm(a)
	case key.Matches(m, a.keys.Delete):
		if !a.tableSel.DeleteEnabled() {
			a.setBanner(bannerInfo, "no samples selected")
			return a, nil
		}
		ids := a.tableSel.Values()
		a.confirm = &confirmState{
			Prompt: fmt.Sprintf("Delete %d selected sample(s)?", len(ids)),
			Accept: func() tea.Cmd { return a.bulkDeleteCmd(ids) },
		}
	case key.Matches(m, a.keys.NextPage):
		if next := a.tableCursor + a.pageSize(); next < len(a.flat) {
			a.tableCursor = next
		}
	case key.Matches(m, a.keys.PrevPage):
		if prev := a.tableCursor - a.pageSize(); prev >= 0 {
			a.tableCursor = prev
		} else if a.tableCursor > 0 {
			a.tableCursor = 0
		}
	case key.Matches(m, a.keys.Back):
		a.closeLocation()
	}
	return a, nil
}

func (a *App) pageSize() int {
	if a.cfg.UI.PageSize < 1 {
		return 1
	}
	return a.cfg.UI.PageSize
}

// flatPageBounds returns the slice of the flat table holding the cursor.
func (a *App) flatPageBounds() (int, int) {
	ps := a.pageSize()
	start := a.tableCursor / ps * ps
	end := start + ps
	if end > len(a.flat) {
		end = len(a.flat)
	}
	return start, end
}

// ---------------------------------------------------------------------------
// commands
// ---------------------------------------------------------------------------

func (a *App) bulkAddCmd(locationID string, spaces []string, rows []service.SampleInput) tea.Cmd {
	return func() tea.Msg {
		res, err := a.services.Placement.BulkAdd(a.ctx, service.BulkAddInput{
			LocationID:     locationID,
			SelectedSpaces: spaces,
			Rows:           rows,
		})
		if err != nil {
			return errMsg{err}
		}
		status := fmt.Sprintf("added %d sample(s)", res.Created)
		if res.Skipped > 0 {
			status += fmt.Sprintf(", skipped %d occupied space(s)", res.Skipped)
		}
		return opDoneMsg{Status: status, Reload: []tea.Cmd{a.reopenCurrent(), a.loadTree()}}
	}
}

func (a *App) bulkAddCountCmd(locationID string, row service.SampleInput, count int) tea.Cmd {
	return func() tea.Msg {
		res, err := a.services.Placement.BulkAddCount(a.ctx, locationID, row, count)
		if err != nil {
			return errMsg{err}
		}
		return opDoneMsg{
			Status: fmt.Sprintf("added %d sample(s)", res.Created),
			Reload: []tea.Cmd{a.reopenCurrent()},
		}
	}
}

func (a *App) bulkDeleteCmd(ids []string) tea.Cmd {
	return func() tea.Msg {
		n, err := a.services.Placement.BulkDelete(a.ctx, ids)
		if err != nil {
			return errMsg{err}
		}
		return opDoneMsg{
			Status: fmt.Sprintf("deleted %d sample(s)", n),
			Reload: []tea.Cmd{a.reopenCurrent(), a.loadTree()},
		}
	}
}

func (a *App) createSampleCmd(in service.SampleInput, locationID string, at *grid.Coord) tea.Cmd {
	return func() tea.Msg {
		var err error
		if at != nil {
			_, err = a.services.Placement.CreateSampleInSpace(a.ctx, in,
				service.SpaceRef{LocationID: locationID, Row: at.Row, Col: at.Col})
		} else {
			_, err = a.services.Placement.CreateSample(a.ctx, in, locationID)
		}
		if err != nil {
			return errMsg{err}
		}
		return opDoneMsg{Status: "sample added", Reload: []tea.Cmd{a.reopenCurrent()}}
	}
}

func (a *App) updateSampleCmd(id string, in service.SampleInput) tea.Cmd {
	return func() tea.Msg {
		if err := a.services.Placement.UpdateSample(a.ctx, id, in); err != nil {
			return errMsg{err}
		}
		return opDoneMsg{Status: "sample updated", Reload: []tea.Cmd{a.reopenCurrent()}}
	}
}

func (a *App) deleteSampleCmd(id string) tea.Cmd {
	return func() tea.Msg {
		if err := a.services.Placement.DeleteSample(a.ctx, id); err != nil {
			return errMsg{err}
		}
		return opDoneMsg{Status: "sample deleted", Reload: []tea.Cmd{a.reopenCurrent()}}
	}
}

func (a *App) deleteLocationCmd(id string) tea.Cmd {
	return func() tea.Msg {
		if err := a.services.Hierarchy.DeleteLocation(a.ctx, id); err != nil {
			return errMsg{err}
		}
		return opDoneMsg{Status: "location deleted", Reload: []tea.Cmd{a.reopenCurrent(), a.loadTree()}}
	}
}
