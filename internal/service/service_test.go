package service

import (
	"context"
	"database/sql"
	"os"
	"testing"

	"github.com/laureon/labtrack/internal/database"
	"github.com/laureon/labtrack/internal/database/repository"
)

// env bundles a migrated, seeded database with the services under test.
type env struct {
	db        *sql.DB
	types     *repository.LocationTypeRepo
	locations *repository.LocationRepo
	spaces    *repository.SpaceRepo
	samples   *repository.SampleRepo
	hierarchy *HierarchyService
	placement *PlacementService
	search    *SearchService
}

func newEnv(t *testing.T) *env {
	t.Helper()
	f, err := os.CreateTemp("", "labtrack-test-*.db")
	if err != nil {
		t.Fatalf("create temp file: %v", err)
	}
	path := f.Name()
	f.Close()

	db, err := database.Open(path)
	if err != nil {
		os.Remove(path)
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() {
		db.Close()
		os.Remove(path)
	})
	if err := database.RunMigrationsWithDB(db); err != nil {
		t.Fatalf("RunMigrationsWithDB: %v", err)
	}
	if err := database.SeedDefaults(context.Background(), db); err != nil {
		t.Fatalf("SeedDefaults: %v", err)
	}

	e := &env{
		db:        db,
		types:     repository.NewLocationTypeRepo(db),
		locations: repository.NewLocationRepo(db),
		spaces:    repository.NewSpaceRepo(db),
		samples:   repository.NewSampleRepo(db),
	}
	e.hierarchy = &HierarchyService{Types: e.types, Locations: e.locations, Spaces: e.spaces}
	e.placement = &PlacementService{DB: db, Samples: e.samples, Spaces: e.spaces, Locations: e.locations, Types: e.types}
	e.search = &SearchService{Samples: e.samples, Spaces: e.spaces, Locations: e.locations, Hierarchy: e.hierarchy}
	return e
}

// typeByName fetches a seeded or test-created location type, failing the
// test when it does not exist.
func (e *env) typeByName(t *testing.T, name string) repository.LocationType {
	t.Helper()
	lt, err := e.types.GetByName(context.Background(), name)
	if err != nil {
		t.Fatalf("GetByName(%q): %v", name, err)
	}
	if lt == nil {
		t.Fatalf("location type %q not found", name)
	}
	return *lt
}

// mustCreateLocation creates a location through the hierarchy service.
func (e *env) mustCreateLocation(t *testing.T, name, typeName string, parentID *string, space *SpaceRef) string {
	t.Helper()
	lt := e.typeByName(t, typeName)
	id, err := e.hierarchy.CreateLocation(context.Background(), repository.Location{
		Name:     name,
		TypeID:   lt.ID,
		ParentID: parentID,
	}, space)
	if err != nil {
		t.Fatalf("CreateLocation(%q): %v", name, err)
	}
	return id
}

// buildChain builds Room > Freezer > Rack > Box with the box in rack space
// (1,1), returning the ids in that order.
func (e *env) buildChain(t *testing.T) (roomID, freezerID, rackID, boxID string) {
	t.Helper()
	roomID = e.mustCreateLocation(t, "Lab A", "Room", nil, nil)
	freezerID = e.mustCreateLocation(t, "Freezer 1", "Freezer", &roomID, nil)
	rackID = e.mustCreateLocation(t, "Rack 1", "Rack", &freezerID, nil)
	boxID = e.mustCreateLocation(t, "Box 1", "Box", nil, &SpaceRef{LocationID: rackID, Row: 1, Col: 1})
	return roomID, freezerID, rackID, boxID
}

// createShelfType adds a flat sample-storing type nested inside Room, for
// tests that need direct (non-grid) placement.
func (e *env) createShelfType(t *testing.T) repository.LocationType {
	t.Helper()
	room := e.typeByName(t, "Room")
	_, err := e.hierarchy.CreateType(context.Background(), repository.LocationType{
		Name:            "Shelf",
		CanStoreSamples: true,
		ParentTypeIDs:   []string{room.ID},
	})
	if err != nil {
		t.Fatalf("CreateType(Shelf): %v", err)
	}
	return e.typeByName(t, "Shelf")
}

func intPtr(n int) *int { return &n }
