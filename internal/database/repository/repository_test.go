package repository_test

import (
	"context"
	"database/sql"
	"os"
	"testing"

	"github.com/google/uuid"

	"github.com/laureon/labtrack/internal/database"
	"github.com/laureon/labtrack/internal/database/repository"
)

func testDB(t *testing.T) *sql.DB {
	t.Helper()
	f, err := os.CreateTemp("", "labtrack-repo-*.db")
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
	return db
}

func TestLocationTypeParentLinksRoundTrip(t *testing.T) {
	db := testDB(t)
	ctx := context.Background()
	repo := repository.NewLocationTypeRepo(db)

	room := repository.LocationType{ID: uuid.NewString(), Name: "Room"}
	if err := repo.Insert(ctx, room); err != nil {
		t.Fatalf("insert room: %v", err)
	}
	rows, cols := 4, 6
	rack := repository.LocationType{
		ID: uuid.NewString(), Name: "Rack",
		CanHaveSpaces: true, SpaceRows: &rows, SpaceCols: &cols,
		ParentTypeIDs: []string{room.ID},
	}
	if err := repo.Insert(ctx, rack); err != nil {
		t.Fatalf("insert rack: %v", err)
	}

	got, err := repo.Get(ctx, rack.ID)
	if err != nil || got == nil {
		t.Fatalf("Get: %v", err)
	}
	if len(got.ParentTypeIDs) != 1 || got.ParentTypeIDs[0] != room.ID {
		t.Errorf("parents = %v, want [room]", got.ParentTypeIDs)
	}
	if !got.Gridded() || *got.SpaceRows != 4 || *got.SpaceCols != 6 {
		t.Errorf("grid = %+v", got)
	}

	// Replacing the parent set on update drops the old link.
	got.ParentTypeIDs = nil
	if err := repo.Update(ctx, *got); err != nil {
		t.Fatalf("Update: %v", err)
	}
	again, _ := repo.Get(ctx, rack.ID)
	if len(again.ParentTypeIDs) != 0 {
		t.Errorf("parents after update = %v, want none", again.ParentTypeIDs)
	}
}

func TestLocationTypeGetByNameCaseInsensitive(t *testing.T) {
	db := testDB(t)
	ctx := context.Background()
	repo := repository.NewLocationTypeRepo(db)

	if err := repo.Insert(ctx, repository.LocationType{ID: uuid.NewString(), Name: "Freezer"}); err != nil {
		t.Fatalf("insert: %v", err)
	}
	got, err := repo.GetByName(ctx, "fReEzEr")
	if err != nil {
		t.Fatalf("GetByName: %v", err)
	}
	if got == nil || got.Name != "Freezer" {
		t.Errorf("got = %+v", got)
	}
	missing, err := repo.GetByName(ctx, "Shelf")
	if err != nil {
		t.Fatalf("GetByName missing: %v", err)
	}
	if missing != nil {
		t.Errorf("missing lookup = %+v, want nil", missing)
	}
}

func TestSampleListSearchFilter(t *testing.T) {
	db := testDB(t)
	ctx := context.Background()
	repo := repository.NewSampleRepo(db)

	seed := []repository.Sample{
		{ID: "s1", Name: "EGFR Antibody"},
		{ID: "s2", Name: "Serum", CatalogNumber: "EGFR-CAT"},
		{ID: "s3", Name: "Buffer", LotNumber: "egfr-lot"},
		{ID: "s4", Name: "Plate", Description: "coated with EGFR"},
		{ID: "s5", Name: "Unrelated"},
	}
	for _, s := range seed {
		if err := repo.Insert(ctx, nil, s); err != nil {
			t.Fatalf("insert %s: %v", s.ID, err)
		}
	}

	got, err := repo.List(ctx, repository.SampleFilters{Search: "egfr"})
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(got) != 4 {
		t.Errorf("matches = %d, want 4 across all text fields", len(got))
	}

	all, err := repo.List(ctx, repository.SampleFilters{})
	if err != nil {
		t.Fatalf("List all: %v", err)
	}
	if len(all) != 5 {
		t.Errorf("all = %d, want 5", len(all))
	}
}

func TestSampleDeleteMany(t *testing.T) {
	db := testDB(t)
	ctx := context.Background()
	repo := repository.NewSampleRepo(db)

	for _, id := range []string{"a", "b", "c"} {
		if err := repo.Insert(ctx, nil, repository.Sample{ID: id, Name: id}); err != nil {
			t.Fatalf("insert: %v", err)
		}
	}
	n, err := repo.DeleteMany(ctx, nil, []string{"a", "c", "ghost"})
	if err != nil {
		t.Fatalf("DeleteMany: %v", err)
	}
	if n != 2 {
		t.Errorf("deleted = %d, want 2", n)
	}
	rest, _ := repo.List(ctx, repository.SampleFilters{})
	if len(rest) != 1 || rest[0].ID != "b" {
		t.Errorf("rest = %+v", rest)
	}
}

func TestSpaceEnsureAndVacate(t *testing.T) {
	db := testDB(t)
	ctx := context.Background()

	typeRepo := repository.NewLocationTypeRepo(db)
	locRepo := repository.NewLocationRepo(db)
	spaceRepo := repository.NewSpaceRepo(db)
	sampleRepo := repository.NewSampleRepo(db)

	rows, cols := 9, 9
	box := repository.LocationType{
		ID: uuid.NewString(), Name: "Box",
		CanStoreSamples: true, CanHaveSpaces: true, SpaceRows: &rows, SpaceCols: &cols,
	}
	if err := typeRepo.Insert(ctx, box); err != nil {
		t.Fatalf("insert type: %v", err)
	}
	loc := repository.Location{ID: uuid.NewString(), Name: "Box 1", TypeID: box.ID}
	if err := locRepo.Insert(ctx, loc); err != nil {
		t.Fatalf("insert location: %v", err)
	}

	// Ensure is lazy and idempotent.
	first, err := spaceRepo.Ensure(ctx, nil, loc.ID, 2, 7)
	if err != nil {
		t.Fatalf("Ensure: %v", err)
	}
	second, err := spaceRepo.Ensure(ctx, nil, loc.ID, 2, 7)
	if err != nil {
		t.Fatalf("Ensure again: %v", err)
	}
	if first.ID != second.ID {
		t.Error("Ensure should reuse the existing space row")
	}

	if err := sampleRepo.Insert(ctx, nil, repository.Sample{ID: "s1", Name: "Aliquot"}); err != nil {
		t.Fatalf("insert sample: %v", err)
	}
	if err := spaceRepo.SetSampleOccupant(ctx, nil, first.ID, "s1"); err != nil {
		t.Fatalf("SetSampleOccupant: %v", err)
	}

	// Deleting the sample nulls the occupant via the FK, and DeleteVacated
	// sweeps the empty row.
	if err := sampleRepo.Delete(ctx, nil, "s1"); err != nil {
		t.Fatalf("delete sample: %v", err)
	}
	if err := spaceRepo.DeleteVacated(ctx, nil); err != nil {
		t.Fatalf("DeleteVacated: %v", err)
	}
	spaces, err := spaceRepo.ListForLocation(ctx, loc.ID)
	if err != nil {
		t.Fatalf("ListForLocation: %v", err)
	}
	if len(spaces) != 0 {
		t.Errorf("spaces = %d, want 0", len(spaces))
	}
}
