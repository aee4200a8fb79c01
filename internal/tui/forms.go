package tui

import (
	"fmt"
	"strconv"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/laureon/labtrack/internal/database/repository"
	"github.com/laureon/labtrack/internal/grid"
	"github.com/laureon/labtrack/internal/service"
)

// form is a minimal line-editor stack: one focused field at a time, tab to
// advance, enter on the last field submits. A multiline form lets enter
// insert newlines and submits on ctrl+d instead, for pasted blocks.
type form struct {
	title     string
	fields    []formField
	focus     int
	multiline bool
	submit    func(values []string) tea.Cmd
}

type formField struct {
	label string
	value string
}

func (f *form) values() []string {
	out := make([]string, len(f.fields))
	for i, fld := range f.fields {
		out[i] = fld.value
	}
	return out
}

func (a *App) handleFormKey(m tea.KeyMsg) (tea.Model, tea.Cmd) {
	f := a.form
	switch m.Type {
	case tea.KeyEsc:
		a.form = nil
		return a, nil
	case tea.KeyCtrlC:
		return a, tea.Quit
	case tea.KeyTab:
		f.focus = (f.focus + 1) % len(f.fields)
		return a, nil
	case tea.KeyShiftTab:
		f.focus = (f.focus - 1 + len(f.fields)) % len(f.fields)
		return a, nil
	case tea.KeyCtrlD:
		if f.multiline {
			return a.submitForm()
		}
	case tea.KeyEnter:
		if f.multiline {
			f.fields[f.focus].value += "\n"
			return a, nil
		}
		if f.focus < len(f.fields)-1 {
			f.focus++
			return a, nil
		}
		return a.submitForm()
	case tea.KeyBackspace, tea.KeyCtrlH:
		v := f.fields[f.focus].value
		if len(v) > 0 {
			f.fields[f.focus].value = v[:len(v)-1]
		}
	case tea.KeySpace:
		f.fields[f.focus].value += " "
	case tea.KeyRunes:
		f.fields[f.focus].value += string(m.Runes)
	}
	return a, nil
}

func (a *App) submitForm() (tea.Model, tea.Cmd) {
	f := a.form
	a.form = nil
	return a, f.submit(f.values())
}

func (a *App) handleConfirmKey(m tea.KeyMsg) (tea.Model, tea.Cmd) {
	c := a.confirm
	switch m.String() {
	case "y", "Y", "enter":
		a.confirm = nil
		return a, c.Accept()
	case "n", "N", "esc":
		a.confirm = nil
	case "ctrl+c":
		return a, tea.Quit
	}
	return a, nil
}

// ---------------------------------------------------------------------------
// sample forms
// ---------------------------------------------------------------------------

func sampleDetailFields() []formField {
	return []formField{
		{label: "Name"},
		{label: "Catalog #"},
		{label: "Lot #"},
		{label: "Description"},
	}
}

func sampleInputFrom(values []string) service.SampleInput {
	return service.SampleInput{
		Name:          values[0],
		CatalogNumber: values[1],
		LotNumber:     values[2],
		Description:   values[3],
	}
}

func sampleFlatForm(a *App) *form {
	locID := a.current.ID
	return &form{
		title:  "New sample in " + a.current.Name,
		fields: sampleDetailFields(),
		submit: func(values []string) tea.Cmd {
			return a.createSampleCmd(sampleInputFrom(values), locID, nil)
		},
	}
}

func sampleInSpaceForm(a *App, at grid.Coord) *form {
	locID := a.current.ID
	coord := at
	return &form{
		title:  fmt.Sprintf("New sample in %s %s", a.current.Name, at.Label()),
		fields: sampleDetailFields(),
		submit: func(values []string) tea.Cmd {
			return a.createSampleCmd(sampleInputFrom(values), locID, &coord)
		},
	}
}

func sampleEditForm(a *App, s repository.Sample) *form {
	fields := sampleDetailFields()
	fields[0].value = s.Name
	fields[1].value = s.CatalogNumber
	fields[2].value = s.LotNumber
	fields[3].value = s.Description
	id := s.ID
	return &form{
		title:  "Edit sample",
		fields: fields,
		submit: func(values []string) tea.Cmd {
			return a.updateSampleCmd(id, sampleInputFrom(values))
		},
	}
}

// bulkAddForm collects one set of details repeated across every selected
// space. The selection is released once the submission payload is captured.
func bulkAddForm(a *App, spaces []string) *form {
	locID := a.current.ID
	a.sel.Cancel()
	return &form{
		title:  fmt.Sprintf("Add %d sample(s) to %s", len(spaces), a.current.Name),
		fields: sampleDetailFields(),
		submit: func(values []string) tea.Cmd {
			return a.bulkAddCmd(locID, spaces, []service.SampleInput{sampleInputFrom(values)})
		},
	}
}

// pasteForm accepts tab-separated rows, one per selected space.
func pasteForm(a *App, spaces []string) *form {
	locID := a.current.ID
	a.sel.Cancel()
	return &form{
		title:     fmt.Sprintf("Paste %d row(s): name, catalog, lot, description (ctrl+d to save)", len(spaces)),
		fields:    []formField{{label: "Rows"}},
		multiline: true,
		submit: func(values []string) tea.Cmd {
			rows, err := service.ParsePastedRows(values[0])
			if err != nil {
				return func() tea.Msg { return errMsg{err} }
			}
			return a.bulkAddCmd(locID, spaces, rows)
		},
	}
}

// pasteCountForm adds N copies of one sample to a flat location.
func pasteCountForm(a *App) *form {
	locID := a.current.ID
	fields := append(sampleDetailFields(), formField{label: "Count", value: "1"})
	return &form{
		title:  "Add repeated samples to " + a.current.Name,
		fields: fields,
		submit: func(values []string) tea.Cmd {
			count, err := strconv.Atoi(strings.TrimSpace(values[4]))
			if err != nil {
				return func() tea.Msg { return errMsg{fmt.Errorf("bad count %q", values[4])} }
			}
			return a.bulkAddCountCmd(locID, sampleInputFrom(values), count)
		},
	}
}

// ---------------------------------------------------------------------------
// location forms
// ---------------------------------------------------------------------------

func newLocationForm(a *App) *form {
	return &form{
		title: "New location",
		fields: []formField{
			{label: "Name"},
			{label: "Type"},
			{label: "Parent location (blank for root)"},
			{label: "Space (e.g. A1, grid parents only)"},
		},
		submit: func(values []string) tea.Cmd {
			return a.createLocationCmd(values[0], values[1], values[2], values[3])
		},
	}
}

// nestedLocationForm creates a location directly into the cursor's space of
// the currently open grid.
func nestedLocationForm(a *App, at grid.Coord) *form {
	parent := a.current.Name
	space := at.Label()
	return &form{
		title: fmt.Sprintf("New location in %s %s", parent, space),
		fields: []formField{
			{label: "Name"},
			{label: "Type"},
		},
		submit: func(values []string) tea.Cmd {
			return a.createLocationCmd(values[0], values[1], parent, space)
		},
	}
}

func renameLocationForm(a *App, loc repository.Location) *form {
	l := loc
	return &form{
		title:  "Rename location",
		fields: []formField{{label: "Name", value: loc.Name}},
		submit: func(values []string) tea.Cmd {
			return func() tea.Msg {
				l.Name = strings.TrimSpace(values[0])
				if err := a.services.Hierarchy.UpdateLocation(a.ctx, l); err != nil {
					return errMsg{err}
				}
				return opDoneMsg{Status: "location renamed", Reload: []tea.Cmd{a.loadTree()}}
			}
		},
	}
}

func (a *App) createLocationCmd(name, typeName, parentName, spaceLabel string) tea.Cmd {
	return func() tea.Msg {
		lt, err := a.repos.Types.GetByName(a.ctx, strings.TrimSpace(typeName))
		if err != nil {
			return errMsg{err}
		}
		if lt == nil {
			return errMsg{fmt.Errorf("unknown location type %q", strings.TrimSpace(typeName))}
		}

		loc := repository.Location{Name: strings.TrimSpace(name), TypeID: lt.ID}
		var ref *service.SpaceRef

		if parent := strings.TrimSpace(parentName); parent != "" {
			p, err := a.repos.Locations.GetByName(a.ctx, parent)
			if err != nil {
				return errMsg{err}
			}
			if p == nil {
				return errMsg{fmt.Errorf("unknown parent location %q", parent)}
			}
			if label := strings.TrimSpace(spaceLabel); label != "" {
				at, err := grid.ParseLabel(label)
				if err != nil {
					return errMsg{err}
				}
				ref = &service.SpaceRef{LocationID: p.ID, Row: at.Row, Col: at.Col}
			} else {
				loc.ParentID = &p.ID
			}
		}

		if _, err := a.services.Hierarchy.CreateLocation(a.ctx, loc, ref); err != nil {
			return errMsg{err}
		}
		return opDoneMsg{Status: "location created", Reload: []tea.Cmd{a.loadTree(), a.reopenCurrent()}}
	}
}
