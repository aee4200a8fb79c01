package grid

import "testing"

func TestCoordStringParseRoundTrip(t *testing.T) {
	coords := []Coord{
		{Row: 0, Col: 0},
		{Row: 1, Col: 1},
		{Row: 3, Col: 12},
		{Row: 27, Col: 4},
	}
	for _, c := range coords {
		got, err := ParseCoord(c.String())
		if err != nil {
			t.Fatalf("ParseCoord(%q): %v", c.String(), err)
		}
		if got != c {
			t.Errorf("round trip = %v, want %v", got, c)
		}
	}
}

func TestParseCoordRejectsMalformed(t *testing.T) {
	bad := []string{"", "1", "1;2", "a,2", "1,b", "-1,2", "1,-2", "1,2,3"}
	for _, s := range bad {
		if _, err := ParseCoord(s); err == nil {
			t.Errorf("ParseCoord(%q) = nil error, want failure", s)
		}
	}
}

func TestParseCoordTrimsSpaces(t *testing.T) {
	got, err := ParseCoord(" 2 , 5 ")
	if err != nil {
		t.Fatalf("ParseCoord: %v", err)
	}
	if (got != Coord{Row: 2, Col: 5}) {
		t.Errorf("got %v, want {2 5}", got)
	}
}

func TestRowLetter(t *testing.T) {
	cases := []struct {
		row  int
		want string
	}{
		{0, ""},
		{-3, ""},
		{1, "A"},
		{2, "B"},
		{26, "Z"},
		{27, "AA"},
		{28, "AB"},
		{52, "AZ"},
		{53, "BA"},
		{702, "ZZ"},
		{703, "AAA"},
	}
	for _, tc := range cases {
		if got := RowLetter(tc.row); got != tc.want {
			t.Errorf("RowLetter(%d) = %q, want %q", tc.row, got, tc.want)
		}
	}
}

func TestCoordLabel(t *testing.T) {
	cases := []struct {
		c    Coord
		want string
	}{
		{Coord{Row: 1, Col: 1}, "A1"},
		{Coord{Row: 2, Col: 12}, "B12"},
		{Coord{Row: 27, Col: 3}, "AA3"},
	}
	for _, tc := range cases {
		if got := tc.c.Label(); got != tc.want {
			t.Errorf("Label(%v) = %q, want %q", tc.c, got, tc.want)
		}
	}
}

func TestParseLabel(t *testing.T) {
	cases := []struct {
		in   string
		want Coord
	}{
		{"A1", Coord{Row: 1, Col: 1}},
		{"b12", Coord{Row: 2, Col: 12}},
		{" AA3 ", Coord{Row: 27, Col: 3}},
		{"Z9", Coord{Row: 26, Col: 9}},
	}
	for _, tc := range cases {
		got, err := ParseLabel(tc.in)
		if err != nil {
			t.Errorf("ParseLabel(%q): %v", tc.in, err)
			continue
		}
		if got != tc.want {
			t.Errorf("ParseLabel(%q) = %v, want %v", tc.in, got, tc.want)
		}
	}

	for _, bad := range []string{"", "A", "12", "A0", "1A", "A-1", "A 1 x"} {
		if _, err := ParseLabel(bad); err == nil {
			t.Errorf("ParseLabel(%q) should fail", bad)
		}
	}
}
