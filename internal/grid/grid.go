package grid

// OccupantKind states what, if anything, currently occupies a cell.
type OccupantKind int

const (
	OccupantNone OccupantKind = iota
	OccupantSample
	OccupantLocation
)

// Cell is one addressable space in a grid, with its current occupant.
// Occupant IDs are opaque strings owned by the persistence layer.
type Cell struct {
	Coord        Coord
	OccupantKind OccupantKind
	OccupantID   string
	OccupantName string
}

// Empty reports whether the cell has no occupant.
func (c Cell) Empty() bool { return c.OccupantKind == OccupantNone }

// SampleID returns the occupying sample's identifier, or "" when the cell
// holds no sample.
func (c Cell) SampleID() string {
	if c.OccupantKind != OccupantSample {
		return ""
	}
	return c.OccupantID
}

// Grid is the dense rows x cols view of a location's spaces. Persisted
// spaces are sparse; cells without a stored space are empty by default.
type Grid struct {
	Rows int
	Cols int

	occupied map[Coord]Cell
}

// New returns an empty grid with 1-based coordinates up to rows and cols.
func New(rows, cols int) *Grid {
	return &Grid{Rows: rows, Cols: cols, occupied: make(map[Coord]Cell)}
}

// Place records an occupied cell. Cells outside the grid bounds are ignored;
// a cell placed with no occupant clears any previous occupant at that coord.
func (g *Grid) Place(c Cell) {
	if !g.InBounds(c.Coord) {
		return
	}
	if c.Empty() {
		delete(g.occupied, c.Coord)
		return
	}
	g.occupied[c.Coord] = c
}

// InBounds reports whether the coordinate addresses a cell of this grid.
func (g *Grid) InBounds(at Coord) bool {
	return at.Row >= 1 && at.Row <= g.Rows && at.Col >= 1 && at.Col <= g.Cols
}

// Cell returns the cell at the given coordinate. The second return is false
// when the coordinate is outside the grid.
func (g *Grid) Cell(at Coord) (Cell, bool) {
	if !g.InBounds(at) {
		return Cell{}, false
	}
	if c, ok := g.occupied[at]; ok {
		return c, true
	}
	return Cell{Coord: at}, true
}

// EachInRect visits every cell inside the axis-aligned rectangle whose
// opposite corners are a and b, inclusive on both ends, in row-major order.
func (g *Grid) EachInRect(a, b Coord, fn func(Cell)) {
	minRow, maxRow := a.Row, b.Row
	if minRow > maxRow {
		minRow, maxRow = maxRow, minRow
	}
	minCol, maxCol := a.Col, b.Col
	if minCol > maxCol {
		minCol, maxCol = maxCol, minCol
	}
	for r := minRow; r <= maxRow; r++ {
		for c := minCol; c <= maxCol; c++ {
			if cell, ok := g.Cell(Coord{Row: r, Col: c}); ok {
				fn(cell)
			}
		}
	}
}

// OccupiedCount returns how many cells currently hold an occupant.
func (g *Grid) OccupiedCount() int { return len(g.occupied) }
