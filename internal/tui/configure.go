package tui

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/laureon/labtrack/internal/config"
	"github.com/laureon/labtrack/internal/database/repository"
)

// ---------------------------------------------------------------------------
// configure tab — location types
// ---------------------------------------------------------------------------

func (a *App) handleConfigureKey(m tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(m, a.keys.Up):
		if a.typeCursor > 0 {
			a.typeCursor--
		}
	case key.Matches(m, a.keys.Down):
		if a.typeCursor < len(a.types)-1 {
			a.typeCursor++
		}
	case key.Matches(m, a.keys.New):
		a.form = typeForm(a, nil)
	case key.Matches(m, a.keys.Edit), key.Matches(m, a.keys.Enter):
		if a.typeCursor < len(a.types) {
			lt := a.types[a.typeCursor]
			a.form = typeForm(a, &lt)
		}
	case key.Matches(m, a.keys.Delete):
		if a.typeCursor < len(a.types) {
			lt := a.types[a.typeCursor]
			a.confirm = &confirmState{
				Prompt: fmt.Sprintf("Delete location type %q?", lt.Name),
				Accept: func() tea.Cmd { return a.deleteTypeCmd(lt.ID) },
			}
		}
	}
	return a, nil
}

// typeForm edits or creates a location type. Parents are entered as a
// comma-separated list of type names; sample storage as y/n.
func typeForm(a *App, existing *repository.LocationType) *form {
	fields := []formField{
		{label: "Name"},
		{label: "Parent types (comma-separated, blank for root)"},
		{label: "Stores samples (y/n)", value: "n"},
		{label: "Grid rows (blank for none)"},
		{label: "Grid cols (blank for none)"},
	}
	title := "New location type"
	var id string
	if existing != nil {
		title = "Edit location type"
		id = existing.ID
		fields[0].value = existing.Name
		var parents []string
		for _, pid := range existing.ParentTypeIDs {
			for _, t := range a.types {
				if t.ID == pid {
					parents = append(parents, t.Name)
				}
			}
		}
		fields[1].value = strings.Join(parents, ", ")
		if existing.CanStoreSamples {
			fields[2].value = "y"
		}
		if existing.SpaceRows != nil {
			fields[3].value = strconv.Itoa(*existing.SpaceRows)
		}
		if existing.SpaceCols != nil {
			fields[4].value = strconv.Itoa(*existing.SpaceCols)
		}
	}
	return &form{
		title:  title,
		fields: fields,
		submit: func(values []string) tea.Cmd {
			return a.saveTypeCmd(id, values)
		},
	}
}

func (a *App) saveTypeCmd(id string, values []string) tea.Cmd {
	return func() tea.Msg {
		lt := repository.LocationType{
			ID:              id,
			Name:            strings.TrimSpace(values[0]),
			CanStoreSamples: strings.EqualFold(strings.TrimSpace(values[2]), "y"),
		}
		for _, name := range strings.Split(values[1], ",") {
			name = strings.TrimSpace(name)
			if name == "" {
				continue
			}
			parent, err := a.repos.Types.GetByName(a.ctx, name)
			if err != nil {
				return errMsg{err}
			}
			if parent == nil {
				return errMsg{fmt.Errorf("unknown parent type %q", name)}
			}
			lt.ParentTypeIDs = append(lt.ParentTypeIDs, parent.ID)
		}
		for i, raw := range []string{values[3], values[4]} {
			raw = strings.TrimSpace(raw)
			if raw == "" {
				continue
			}
			n, err := strconv.Atoi(raw)
			if err != nil {
				return errMsg{fmt.Errorf("bad grid dimension %q", raw)}
			}
			if i == 0 {
				lt.SpaceRows = &n
			} else {
				lt.SpaceCols = &n
			}
		}
		lt.CanHaveSpaces = lt.SpaceRows != nil || lt.SpaceCols != nil

		var err error
		status := "location type updated"
		if id == "" {
			_, err = a.services.Hierarchy.CreateType(a.ctx, lt)
			status = "location type created"
		} else {
			err = a.services.Hierarchy.UpdateType(a.ctx, lt)
		}
		if err != nil {
			return errMsg{err}
		}
		return opDoneMsg{Status: status, Reload: []tea.Cmd{a.loadTypes()}}
	}
}

func (a *App) deleteTypeCmd(id string) tea.Cmd {
	return func() tea.Msg {
		if err := a.services.Hierarchy.DeleteType(a.ctx, id); err != nil {
			return errMsg{err}
		}
		return opDoneMsg{Status: "location type deleted", Reload: []tea.Cmd{a.loadTypes()}}
	}
}

// ---------------------------------------------------------------------------
// search tab
// ---------------------------------------------------------------------------

func (a *App) handleSearchKey(m tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(m, a.keys.Enter), key.Matches(m, a.keys.Edit):
		a.searchFocus = true
	case key.Matches(m, a.keys.NextPage):
		if a.searchPage != nil && a.searchPage.HasNext {
			return a, a.searchCmd(a.searchInput, a.searchPage.Page+1)
		}
	case key.Matches(m, a.keys.PrevPage):
		if a.searchPage != nil && a.searchPage.HasPrev {
			return a, a.searchCmd(a.searchInput, a.searchPage.Page-1)
		}
	case key.Matches(m, a.keys.Back):
		a.searchInput = ""
		a.searchPage = nil
	}
	return a, nil
}

func (a *App) handleSearchInputKey(m tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch m.Type {
	case tea.KeyCtrlC:
		return a, tea.Quit
	case tea.KeyEsc:
		a.searchFocus = false
	case tea.KeyEnter:
		a.searchFocus = false
		query := strings.TrimSpace(a.searchInput)
		if query == "" {
			a.searchPage = nil
			return a, nil
		}
		return a, a.searchCmd(query, 1)
	case tea.KeyBackspace, tea.KeyCtrlH:
		if len(a.searchInput) > 0 {
			a.searchInput = a.searchInput[:len(a.searchInput)-1]
		}
	case tea.KeySpace:
		a.searchInput += " "
	case tea.KeyRunes:
		a.searchInput += string(m.Runes)
	}
	return a, nil
}

// ---------------------------------------------------------------------------
// settings tab
// ---------------------------------------------------------------------------

func (a *App) handleSettingsKey(m tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(m, a.keys.Edit), key.Matches(m, a.keys.Enter):
		a.form = settingsForm(a)
	}
	return a, nil
}

func settingsForm(a *App) *form {
	return &form{
		title: "Settings (database path applies on next start)",
		fields: []formField{
			{label: "Database path", value: a.cfg.Database.Path},
			{label: "Results per page", value: strconv.Itoa(a.cfg.UI.PageSize)},
			{label: "Accent (catppuccin name, e.g. mauve, teal, peach)", value: a.cfg.UI.Accent},
		},
		submit: func(values []string) tea.Cmd {
			return func() tea.Msg {
				path := strings.TrimSpace(values[0])
				if path == "" {
					return errMsg{fmt.Errorf("database path is required")}
				}
				pageSize, err := strconv.Atoi(strings.TrimSpace(values[1]))
				if err != nil || pageSize < 1 {
					return errMsg{fmt.Errorf("bad page size %q", values[1])}
				}
				accent := strings.ToLower(strings.TrimSpace(values[2]))
				if _, ok := accentByName[accent]; !ok {
					return errMsg{fmt.Errorf("unknown accent %q", accent)}
				}
				a.cfg.Database.Path = path
				a.cfg.UI.PageSize = pageSize
				a.cfg.UI.Accent = accent
				a.styles = newStyles(accentColor(accent))
				a.services.Search.PageSize = pageSize
				if err := config.Save(a.cfg); err != nil {
					return errMsg{err}
				}
				return opDoneMsg{Status: "settings saved"}
			}
		},
	}
}
