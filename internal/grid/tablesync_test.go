package grid

import (
	"reflect"
	"testing"
)

func newThreeRowTable(t *testing.T) *TableSelect {
	t.Helper()
	return NewTableSelect([]string{"r1", "r2", "r3"})
}

func TestTableDeleteEnabledTracksChecks(t *testing.T) {
	// Spec walkthrough: three rows, everything unchecked.
	ts := newThreeRowTable(t)
	if ts.DeleteEnabled() {
		t.Error("delete enabled with nothing checked")
	}

	ts.Toggle("r2")
	if !ts.DeleteEnabled() {
		t.Error("delete disabled with one row checked")
	}

	ts.Toggle("r2")
	if ts.DeleteEnabled() {
		t.Error("delete still enabled after unchecking")
	}
}

func TestSelectAllAfterManualChecksIsStable(t *testing.T) {
	ts := newThreeRowTable(t)
	ts.Toggle("r1")
	ts.Toggle("r2")
	ts.Toggle("r3")

	// Checking "select all" when every row is checked changes nothing.
	ts.ToggleAll()
	if !ts.AllChecked() {
		t.Error("select-all not checked after toggle")
	}
	if ts.Count() != 3 {
		t.Errorf("count = %d, want 3", ts.Count())
	}

	// Unchecking one row drops select-all but keeps the other two.
	ts.Toggle("r2")
	if ts.AllChecked() {
		t.Error("select-all survived a row being unchecked")
	}
	if !ts.Checked("r1") || !ts.Checked("r3") {
		t.Error("sibling rows lost their checks")
	}
	if ts.Checked("r2") {
		t.Error("r2 still checked")
	}
}

func TestToggleAllSetsEveryRow(t *testing.T) {
	ts := newThreeRowTable(t)
	ts.Toggle("r3")

	ts.ToggleAll()
	for _, id := range []string{"r1", "r2", "r3"} {
		if !ts.Checked(id) {
			t.Errorf("row %s unchecked after select-all", id)
		}
	}

	ts.ToggleAll()
	if ts.Count() != 0 {
		t.Errorf("count = %d after deselect-all, want 0", ts.Count())
	}
	if ts.DeleteEnabled() {
		t.Error("delete enabled after deselect-all")
	}
}

func TestManuallyCheckingAllDoesNotCheckSelectAll(t *testing.T) {
	ts := newThreeRowTable(t)
	ts.Toggle("r1")
	ts.Toggle("r2")
	ts.Toggle("r3")
	if ts.AllChecked() {
		t.Error("select-all checked itself")
	}
}

func TestValuesInTableOrder(t *testing.T) {
	ts := newThreeRowTable(t)
	ts.Toggle("r3")
	ts.Toggle("r1")

	want := []string{"r1", "r3"}
	if got := ts.Values(); !reflect.DeepEqual(got, want) {
		t.Errorf("Values = %v, want %v", got, want)
	}
}

func TestSetRowsPrunesStaleChecks(t *testing.T) {
	ts := newThreeRowTable(t)
	ts.Toggle("r1")
	ts.Toggle("r2")

	ts.SetRows([]string{"r2", "r4"})
	if ts.Checked("r1") {
		t.Error("check survived for a removed row")
	}
	if !ts.Checked("r2") {
		t.Error("check lost for a surviving row")
	}
	if got := ts.Values(); !reflect.DeepEqual(got, []string{"r2"}) {
		t.Errorf("Values = %v, want [r2]", got)
	}
}

func TestClearResetsEverything(t *testing.T) {
	ts := newThreeRowTable(t)
	ts.ToggleAll()
	ts.Clear()
	if ts.Count() != 0 || ts.AllChecked() || ts.DeleteEnabled() {
		t.Error("clear left residual state")
	}
}
