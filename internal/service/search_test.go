package service

import (
	"context"
	"testing"
)

func TestSearchMatchesAllTextFields(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	e.createShelfType(t)
	roomID := e.mustCreateLocation(t, "Lab A", "Room", nil, nil)
	shelfID := e.mustCreateLocation(t, "Shelf 1", "Shelf", &roomID, nil)

	seed := []SampleInput{
		{Name: "EGFR Antibody", CatalogNumber: "AB-100"},
		{Name: "Control Serum", LotNumber: "EGFR-LOT"},
		{Name: "Wash Buffer", Description: "for EGFR plates"},
		{Name: "Unrelated", CatalogNumber: "ZZ-9"},
	}
	for _, in := range seed {
		if _, err := e.placement.CreateSample(ctx, in, shelfID); err != nil {
			t.Fatalf("CreateSample(%q): %v", in.Name, err)
		}
	}

	page, err := e.search.Search(ctx, "egfr", 1)
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if page.Total != 3 {
		t.Fatalf("total = %d, want matches in name, lot and description", page.Total)
	}
	// The closest name match leads.
	if page.Hits[0].Sample.Name != "EGFR Antibody" {
		t.Errorf("first hit = %q, want the name match", page.Hits[0].Sample.Name)
	}
}

func TestSearchPagination(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	e.createShelfType(t)
	roomID := e.mustCreateLocation(t, "Lab A", "Room", nil, nil)
	shelfID := e.mustCreateLocation(t, "Shelf 1", "Shelf", &roomID, nil)

	for _, name := range []string{"Buffer A", "Buffer B", "Buffer C", "Buffer D", "Buffer E"} {
		if _, err := e.placement.CreateSample(ctx, SampleInput{Name: name}, shelfID); err != nil {
			t.Fatalf("CreateSample(%q): %v", name, err)
		}
	}
	e.search.PageSize = 2

	page, err := e.search.Search(ctx, "Buffer", 1)
	if err != nil {
		t.Fatalf("Search page 1: %v", err)
	}
	if page.Total != 5 || page.Pages != 3 {
		t.Fatalf("page = %+v, want 5 results over 3 pages", page)
	}
	if len(page.Hits) != 2 || page.HasPrev || !page.HasNext {
		t.Errorf("page 1 = %+v", page)
	}

	last, err := e.search.Search(ctx, "Buffer", 3)
	if err != nil {
		t.Fatalf("Search page 3: %v", err)
	}
	if len(last.Hits) != 1 || !last.HasPrev || last.HasNext {
		t.Errorf("page 3 = %+v", last)
	}

	// Out-of-range pages clamp instead of erroring.
	clamped, err := e.search.Search(ctx, "Buffer", 99)
	if err != nil {
		t.Fatalf("Search page 99: %v", err)
	}
	if clamped.Page != 3 {
		t.Errorf("page = %d, want clamp to 3", clamped.Page)
	}
}

func TestSearchRanksByNameDistance(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	e.createShelfType(t)
	roomID := e.mustCreateLocation(t, "Lab A", "Room", nil, nil)
	shelfID := e.mustCreateLocation(t, "Shelf 1", "Shelf", &roomID, nil)

	for _, name := range []string{"Trizol Reagent Stock", "Trizol", "Trizol Reagent"} {
		if _, err := e.placement.CreateSample(ctx, SampleInput{Name: name}, shelfID); err != nil {
			t.Fatalf("CreateSample(%q): %v", name, err)
		}
	}

	page, err := e.search.Search(ctx, "trizol", 1)
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	want := []string{"Trizol", "Trizol Reagent", "Trizol Reagent Stock"}
	for i, w := range want {
		if page.Hits[i].Sample.Name != w {
			t.Fatalf("rank %d = %q, want %q", i, page.Hits[i].Sample.Name, w)
		}
	}
}

func TestSearchResolvesGridPosition(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	_, _, _, boxID := e.buildChain(t)

	if _, err := e.placement.CreateSampleInSpace(ctx, SampleInput{Name: "Plasma Aliquot"},
		SpaceRef{LocationID: boxID, Row: 2, Col: 7}); err != nil {
		t.Fatalf("CreateSampleInSpace: %v", err)
	}

	page, err := e.search.Search(ctx, "Plasma", 1)
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if len(page.Hits) != 1 {
		t.Fatalf("hits = %d, want 1", len(page.Hits))
	}
	hit := page.Hits[0]
	if hit.SpaceRef != "B7" {
		t.Errorf("space ref = %q, want B7", hit.SpaceRef)
	}
	if hit.LocationName() != "Box 1" {
		t.Errorf("location = %q, want Box 1", hit.LocationName())
	}
	var names []string
	for _, l := range hit.Path {
		names = append(names, l.Name)
	}
	want := []string{"Lab A", "Freezer 1", "Rack 1", "Box 1"}
	for i := range want {
		if i >= len(names) || names[i] != want[i] {
			t.Fatalf("path = %v, want %v", names, want)
		}
	}
}

func TestSearchUnstoredSample(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()

	// A sample whose holder was deleted keeps its record but loses its
	// position; search should still find it with no path.
	e.createShelfType(t)
	roomID := e.mustCreateLocation(t, "Lab A", "Room", nil, nil)
	shelfID := e.mustCreateLocation(t, "Shelf 1", "Shelf", &roomID, nil)
	id, err := e.placement.CreateSample(ctx, SampleInput{Name: "Orphan"}, shelfID)
	if err != nil {
		t.Fatalf("CreateSample: %v", err)
	}
	sample, _ := e.samples.Get(ctx, id)
	sample.LocationID = nil
	if err := e.samples.Update(ctx, nil, *sample); err != nil {
		t.Fatalf("Update: %v", err)
	}

	page, err := e.search.Search(ctx, "Orphan", 1)
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if len(page.Hits) != 1 {
		t.Fatalf("hits = %d, want 1", len(page.Hits))
	}
	if hit := page.Hits[0]; len(hit.Path) != 0 || hit.SpaceRef != "" || hit.LocationName() != "" {
		t.Errorf("hit = %+v, want no resolved position", page.Hits[0])
	}
}
