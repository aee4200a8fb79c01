package grid

// TableSelect synchronizes a "select all" control with per-row checkboxes in
// a flat sample table, the non-grid variant of bulk deletion. Rows are
// unordered for selection purposes; no range logic applies here.
type TableSelect struct {
	rows    []string
	checked map[string]bool
	all     bool
}

// NewTableSelect returns a selection over the given row identifiers with
// everything unchecked.
func NewTableSelect(rows []string) *TableSelect {
	t := &TableSelect{checked: make(map[string]bool)}
	t.SetRows(rows)
	return t
}

// SetRows replaces the visible row set, dropping checks for rows that no
// longer exist.
func (t *TableSelect) SetRows(rows []string) {
	t.rows = append([]string(nil), rows...)
	keep := make(map[string]bool, len(rows))
	for _, id := range rows {
		keep[id] = true
	}
	for id := range t.checked {
		if !keep[id] {
			delete(t.checked, id)
		}
	}
	if len(t.checked) == 0 {
		t.all = false
	}
}

// ToggleAll flips the "select all" control and sets every row checkbox to
// match its new state.
func (t *TableSelect) ToggleAll() {
	t.all = !t.all
	for _, id := range t.rows {
		if t.all {
			t.checked[id] = true
		} else {
			delete(t.checked, id)
		}
	}
}

// Toggle flips one row's checkbox. Unchecking a row forces "select all" off;
// the remaining rows keep their state either way.
func (t *TableSelect) Toggle(id string) {
	if t.checked[id] {
		delete(t.checked, id)
		t.all = false
		return
	}
	t.checked[id] = true
}

// AllChecked reports the state of the "select all" control.
func (t *TableSelect) AllChecked() bool { return t.all }

// Checked reports whether the given row is checked.
func (t *TableSelect) Checked(id string) bool { return t.checked[id] }

// Count returns the number of checked rows.
func (t *TableSelect) Count() int { return len(t.checked) }

// DeleteEnabled reports whether the bulk-delete control should be enabled.
func (t *TableSelect) DeleteEnabled() bool { return len(t.checked) > 0 }

// Clear unchecks every row and the "select all" control.
func (t *TableSelect) Clear() {
	t.checked = make(map[string]bool)
	t.all = false
}

// Values returns the checked row identifiers in table order.
func (t *TableSelect) Values() []string {
	out := make([]string, 0, len(t.checked))
	for _, id := range t.rows {
		if t.checked[id] {
			out = append(out, id)
		}
	}
	return out
}
