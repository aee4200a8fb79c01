package grid

import (
	"fmt"
	"strconv"
	"strings"
)

// Coord identifies a single space within one grid-shaped location.
type Coord struct {
	Row int
	Col int
}

// String serializes the coordinate in the wire form "row,col".
func (c Coord) String() string {
	return fmt.Sprintf("%d,%d", c.Row, c.Col)
}

// Label returns the operator-facing form, e.g. "A1" for row 1 col 1.
// Rows below 1 have no letter form and fall back to the raw column number.
func (c Coord) Label() string {
	return RowLetter(c.Row) + strconv.Itoa(c.Col)
}

// ParseCoord parses the "row,col" serialized form back into a Coord.
func ParseCoord(s string) (Coord, error) {
	row, col, ok := strings.Cut(s, ",")
	if !ok {
		return Coord{}, fmt.Errorf("parse coordinate %q: missing separator", s)
	}
	r, err := strconv.Atoi(strings.TrimSpace(row))
	if err != nil {
		return Coord{}, fmt.Errorf("parse coordinate %q: bad row: %w", s, err)
	}
	cl, err := strconv.Atoi(strings.TrimSpace(col))
	if err != nil {
		return Coord{}, fmt.Errorf("parse coordinate %q: bad col: %w", s, err)
	}
	if r < 0 || cl < 0 {
		return Coord{}, fmt.Errorf("parse coordinate %q: negative component", s)
	}
	return Coord{Row: r, Col: cl}, nil
}

// ParseLabel parses the operator-facing form back into a Coord, e.g.
// "B7" -> row 2 col 7. Case-insensitive on the row letters.
func ParseLabel(s string) (Coord, error) {
	s = strings.TrimSpace(strings.ToUpper(s))
	i := 0
	for i < len(s) && s[i] >= 'A' && s[i] <= 'Z' {
		i++
	}
	if i == 0 || i == len(s) {
		return Coord{}, fmt.Errorf("parse label %q: want letters then digits", s)
	}
	row := 0
	for _, ch := range s[:i] {
		row = row*26 + int(ch-'A') + 1
	}
	col, err := strconv.Atoi(s[i:])
	if err != nil || col < 1 {
		return Coord{}, fmt.Errorf("parse label %q: bad column", s)
	}
	return Coord{Row: row, Col: col}, nil
}

// RowLetter converts a 1-based row number into an Excel-style letter
// representation (1 -> A, 26 -> Z, 27 -> AA). Values below 1 yield "".
func RowLetter(row int) string {
	if row < 1 {
		return ""
	}
	var b []byte
	for row > 0 {
		row--
		b = append([]byte{byte('A' + row%26)}, b...)
		row /= 26
	}
	return string(b)
}
