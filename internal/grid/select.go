package grid

import "sort"

// ---------------------------------------------------------------------------
// Selection modes
// ---------------------------------------------------------------------------

// Mode distinguishes the two bulk-selection flows over a space grid.
type Mode int

const (
	// ModeAdd marks empty spaces that will receive new samples. Selection
	// members are keyed by coordinate.
	ModeAdd Mode = iota
	// ModeDelete marks occupied spaces whose samples will be removed.
	// Selection members are keyed by sample identifier, since a delete
	// target must reference an existing record rather than a bare location.
	ModeDelete
)

// FieldName returns the submission field that carries this mode's selected
// values, one value per member.
func (m Mode) FieldName() string {
	if m == ModeDelete {
		return "selected_samples"
	}
	return "selected_spaces"
}

func (m Mode) String() string {
	if m == ModeDelete {
		return "delete"
	}
	return "add"
}

// ---------------------------------------------------------------------------
// Selector — one bulk-selection state machine
// ---------------------------------------------------------------------------

// Selector is the selection state machine for one mode: Idle until Enter,
// Selecting until Cancel (or until the selection is consumed). While
// selecting it owns a selection container and the range anchor.
//
// All operations are total: clicks on cells outside the mode's clickable
// predicate are silently ignored, and Cancel is idempotent.
type Selector struct {
	mode     Mode
	active   bool
	selected map[string]string // member key -> coordinate string
	anchor   *Coord
}

// NewSelector returns an idle selector for the given mode.
func NewSelector(mode Mode) *Selector {
	return &Selector{mode: mode, selected: make(map[string]string)}
}

// Mode returns the selector's mode.
func (s *Selector) Mode() Mode { return s.mode }

// Active reports whether selection mode is currently engaged.
func (s *Selector) Active() bool { return s.active }

// Enter engages selection mode. Re-entering always starts from an empty
// selection; members never survive a cancel/exit cycle.
func (s *Selector) Enter() {
	s.active = true
	s.selected = make(map[string]string)
	s.anchor = nil
}

// Cancel leaves selection mode, discarding all members and the anchor.
func (s *Selector) Cancel() {
	s.active = false
	s.selected = make(map[string]string)
	s.anchor = nil
}

// Count returns the number of selected members.
func (s *Selector) Count() int { return len(s.selected) }

// CanProceed reports whether the proceed control should be enabled.
func (s *Selector) CanProceed() bool { return s.active && len(s.selected) > 0 }

// Anchor returns the current range anchor, or nil when none is set.
func (s *Selector) Anchor() *Coord {
	if s.anchor == nil {
		return nil
	}
	a := *s.anchor
	return &a
}

// clickable is the mode's predicate for cells that may join the selection:
// an available space in add mode, a sample-occupied space in delete mode.
func (s *Selector) clickable(c Cell) bool {
	if s.mode == ModeDelete {
		return c.OccupantKind == OccupantSample
	}
	return c.Empty()
}

// keyFor extracts the selection-container key for a clickable cell.
func (s *Selector) keyFor(c Cell) string {
	if s.mode == ModeDelete {
		return c.OccupantID
	}
	return c.Coord.String()
}

// IsSelected reports whether the given cell is currently a member.
func (s *Selector) IsSelected(c Cell) bool {
	if !s.clickable(c) {
		return false
	}
	_, ok := s.selected[s.keyFor(c)]
	return ok
}

// Click applies one operator click at the given coordinate.
//
// A plain click toggles the single cell's membership and moves the anchor to
// the clicked coordinate, whether the toggle added or removed the member. A
// shift click with a prior anchor stamps the axis-aligned rectangle between
// anchor and click into the selection as a union, leaving the anchor where it
// was; with no prior anchor it degrades to a plain toggle. Clicks outside the
// grid, outside selection mode, or on cells failing the clickable predicate
// are no-ops.
func (s *Selector) Click(g *Grid, at Coord, shift bool) {
	if !s.active || g == nil {
		return
	}
	cell, ok := g.Cell(at)
	if !ok || !s.clickable(cell) {
		return
	}

	if shift && s.anchor != nil {
		g.EachInRect(*s.anchor, at, func(c Cell) {
			if s.clickable(c) {
				s.selected[s.keyFor(c)] = c.Coord.String()
			}
		})
		return
	}

	key := s.keyFor(cell)
	if _, on := s.selected[key]; on {
		delete(s.selected, key)
	} else {
		s.selected[key] = at.String()
	}
	a := at
	s.anchor = &a
}

// Submission materializes the current selection as submittable data: the
// mode's field name and exactly one value per member, ordered by coordinate.
// It is a pure function of the selection container; no duplicates, no stale
// entries from prior state.
func (s *Selector) Submission() Submission {
	type member struct {
		key string
		at  Coord
	}
	members := make([]member, 0, len(s.selected))
	for key, coord := range s.selected {
		at, err := ParseCoord(coord)
		if err != nil {
			// Coordinates in the container were produced by Click and are
			// well-formed; a parse failure would mean external mutation.
			continue
		}
		members = append(members, member{key: key, at: at})
	}
	sort.Slice(members, func(i, j int) bool {
		if members[i].at.Row != members[j].at.Row {
			return members[i].at.Row < members[j].at.Row
		}
		return members[i].at.Col < members[j].at.Col
	})

	values := make([]string, len(members))
	for i, m := range members {
		values[i] = m.key
	}
	return Submission{Field: s.mode.FieldName(), Values: values}
}

// SelectedCoords returns the coordinates of all members in row-major order.
// For delete mode these are the coordinates associated with each sample key.
func (s *Selector) SelectedCoords() []Coord {
	out := make([]Coord, 0, len(s.selected))
	for _, coord := range s.selected {
		at, err := ParseCoord(coord)
		if err != nil {
			continue
		}
		out = append(out, at)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Row != out[j].Row {
			return out[i].Row < out[j].Row
		}
		return out[i].Col < out[j].Col
	})
	return out
}

// Submission is the materialized form of a selection, mirroring one hidden
// form field repeated once per member.
type Submission struct {
	Field  string
	Values []string
}

// ---------------------------------------------------------------------------
// Controller — mutual exclusion between the two modes
// ---------------------------------------------------------------------------

// Controller owns both mode selectors for one grid and enforces that at most
// one is active at a time. The two selectors share no selection state; the
// controller holds the single mode-owner value their entry controls consult.
type Controller struct {
	add   *Selector
	del   *Selector
	owner *Selector
}

// NewController returns a controller with both modes idle.
func NewController() *Controller {
	return &Controller{add: NewSelector(ModeAdd), del: NewSelector(ModeDelete)}
}

// Selector returns the selector for the given mode regardless of ownership.
func (c *Controller) Selector(m Mode) *Selector {
	if m == ModeDelete {
		return c.del
	}
	return c.add
}

// Active returns the currently owning selector, or nil when both are idle.
func (c *Controller) Active() *Selector { return c.owner }

// CanEnter reports whether the given mode's entry control is enabled, i.e.
// the sibling mode is not currently active.
func (c *Controller) CanEnter(m Mode) bool {
	return c.owner == nil || c.owner.Mode() == m
}

// Enter engages the given mode. It reports false, leaving all state
// untouched, while the sibling mode holds ownership.
func (c *Controller) Enter(m Mode) bool {
	if !c.CanEnter(m) {
		return false
	}
	s := c.Selector(m)
	s.Enter()
	c.owner = s
	return true
}

// Cancel cancels the active selection, if any, and releases ownership,
// re-enabling both entry controls. Safe to call repeatedly.
func (c *Controller) Cancel() {
	if c.owner != nil {
		c.owner.Cancel()
		c.owner = nil
	}
}
