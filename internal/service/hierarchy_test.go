package service

import (
	"context"
	"errors"
	"testing"

	"github.com/laureon/labtrack/internal/database/repository"
)

func isValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}

func TestCreateTypeValidation(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	room := e.typeByName(t, "Room")

	tests := []struct {
		name string
		in   repository.LocationType
	}{
		{"blank name", repository.LocationType{Name: "   "}},
		{"duplicate name case-insensitive", repository.LocationType{Name: "room"}},
		{"spaces without dims", repository.LocationType{Name: "Plate", CanHaveSpaces: true}},
		{"dims without spaces", repository.LocationType{Name: "Crate", SpaceRows: intPtr(2), SpaceCols: intPtr(2)}},
		{"zero dims", repository.LocationType{Name: "Tray", CanHaveSpaces: true, SpaceRows: intPtr(0), SpaceCols: intPtr(3)}},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := e.hierarchy.CreateType(ctx, tc.in)
			if !isValidation(err) {
				t.Fatalf("CreateType err = %v, want validation error", err)
			}
		})
	}

	// A valid flat type is accepted.
	id, err := e.hierarchy.CreateType(ctx, repository.LocationType{
		Name:          "Cabinet",
		ParentTypeIDs: []string{room.ID},
	})
	if err != nil {
		t.Fatalf("CreateType(Cabinet): %v", err)
	}
	if id == "" {
		t.Fatal("CreateType returned empty id")
	}
}

func TestUpdateTypeRejectsCircularParents(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	room := e.typeByName(t, "Room")
	freezer := e.typeByName(t, "Freezer")
	box := e.typeByName(t, "Box")

	// Room <- Freezer <- Rack <- Box is seeded; making Box a parent of Room
	// would close the loop through three levels.
	room.ParentTypeIDs = []string{box.ID}
	err := e.hierarchy.UpdateType(ctx, room)
	if !isValidation(err) {
		t.Fatalf("UpdateType err = %v, want circular-dependency validation error", err)
	}

	// Direct self-reference is also rejected.
	freezer.ParentTypeIDs = append(freezer.ParentTypeIDs, freezer.ID)
	err = e.hierarchy.UpdateType(ctx, freezer)
	if !isValidation(err) {
		t.Fatalf("UpdateType err = %v, want self-parent validation error", err)
	}
}

func TestUpdateTypeLocksGridWhileInUse(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	e.buildChain(t)

	box := e.typeByName(t, "Box")
	box.SpaceRows = intPtr(10)
	err := e.hierarchy.UpdateType(ctx, box)
	if !isValidation(err) {
		t.Fatalf("UpdateType err = %v, want grid-lock validation error", err)
	}

	// Renaming stays allowed while instances exist.
	box = e.typeByName(t, "Box")
	box.Name = "Cryobox"
	if err := e.hierarchy.UpdateType(ctx, box); err != nil {
		t.Fatalf("UpdateType rename: %v", err)
	}
	if e.typeByName(t, "Cryobox").ID != box.ID {
		t.Error("rename did not persist")
	}
}

func TestUpdateTypeKeepsUsedParentLink(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	e.buildChain(t)

	// Freezer 1 sits inside Lab A, so the Freezer->Room link is in use.
	freezer := e.typeByName(t, "Freezer")
	freezer.ParentTypeIDs = nil
	err := e.hierarchy.UpdateType(ctx, freezer)
	if !isValidation(err) {
		t.Fatalf("UpdateType err = %v, want parent-link validation error", err)
	}
}

func TestDeleteTypeProtection(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()

	// Room backs both locations (none yet) and the Freezer parent link.
	room := e.typeByName(t, "Room")
	if err := e.hierarchy.DeleteType(ctx, room.ID); !errors.Is(err, ErrInUse) {
		t.Fatalf("DeleteType(Room) err = %v, want ErrInUse", err)
	}

	// A freshly created unused type deletes cleanly.
	id, err := e.hierarchy.CreateType(ctx, repository.LocationType{Name: "Bench"})
	if err != nil {
		t.Fatalf("CreateType(Bench): %v", err)
	}
	if err := e.hierarchy.DeleteType(ctx, id); err != nil {
		t.Fatalf("DeleteType(Bench): %v", err)
	}
	if got, _ := e.types.Get(ctx, id); got != nil {
		t.Error("Bench still present after delete")
	}
}

func TestTypesSortedParentsFirst(t *testing.T) {
	e := newEnv(t)
	sorted, err := e.hierarchy.TypesSorted(context.Background())
	if err != nil {
		t.Fatalf("TypesSorted: %v", err)
	}
	rank := make(map[string]int, len(sorted))
	for i, lt := range sorted {
		rank[lt.Name] = i
	}
	order := []string{"Room", "Freezer", "Rack", "Box"}
	for i := 1; i < len(order); i++ {
		if rank[order[i-1]] > rank[order[i]] {
			t.Errorf("%s sorted after %s: %v", order[i-1], order[i], rank)
		}
	}
	if len(sorted) != 4 {
		t.Errorf("got %d types, want 4", len(sorted))
	}
}

func TestCreateLocationNestingRules(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	roomID, freezerID, rackID, _ := e.buildChain(t)

	freezerType := e.typeByName(t, "Freezer")
	boxType := e.typeByName(t, "Box")
	roomType := e.typeByName(t, "Room")

	t.Run("root type cannot be nested", func(t *testing.T) {
		_, err := e.hierarchy.CreateLocation(ctx, repository.Location{
			Name: "Lab B", TypeID: roomType.ID, ParentID: &roomID,
		}, nil)
		if !isValidation(err) {
			t.Fatalf("err = %v, want validation error", err)
		}
	})

	t.Run("non-root type must be nested", func(t *testing.T) {
		_, err := e.hierarchy.CreateLocation(ctx, repository.Location{
			Name: "Orphan Freezer", TypeID: freezerType.ID,
		}, nil)
		if !isValidation(err) {
			t.Fatalf("err = %v, want validation error", err)
		}
	})

	t.Run("parent type must be allowed", func(t *testing.T) {
		_, err := e.hierarchy.CreateLocation(ctx, repository.Location{
			Name: "Freezer in Freezer", TypeID: freezerType.ID, ParentID: &freezerID,
		}, nil)
		if !isValidation(err) {
			t.Fatalf("err = %v, want validation error", err)
		}
	})

	t.Run("grid container requires a space", func(t *testing.T) {
		_, err := e.hierarchy.CreateLocation(ctx, repository.Location{
			Name: "Box 2", TypeID: boxType.ID, ParentID: &rackID,
		}, nil)
		if !isValidation(err) {
			t.Fatalf("err = %v, want validation error", err)
		}
	})

	t.Run("occupied space rejected", func(t *testing.T) {
		_, err := e.hierarchy.CreateLocation(ctx, repository.Location{
			Name: "Box 2", TypeID: boxType.ID,
		}, &SpaceRef{LocationID: rackID, Row: 1, Col: 1})
		if !isValidation(err) {
			t.Fatalf("err = %v, want validation error", err)
		}
	})

	t.Run("space outside grid rejected", func(t *testing.T) {
		_, err := e.hierarchy.CreateLocation(ctx, repository.Location{
			Name: "Box 2", TypeID: boxType.ID,
		}, &SpaceRef{LocationID: rackID, Row: 5, Col: 1})
		if !isValidation(err) {
			t.Fatalf("err = %v, want validation error", err)
		}
	})

	t.Run("duplicate name rejected case-insensitively", func(t *testing.T) {
		_, err := e.hierarchy.CreateLocation(ctx, repository.Location{
			Name: "lab a", TypeID: roomType.ID,
		}, nil)
		if !isValidation(err) {
			t.Fatalf("err = %v, want validation error", err)
		}
	})

	t.Run("free space accepted", func(t *testing.T) {
		id, err := e.hierarchy.CreateLocation(ctx, repository.Location{
			Name: "Box 2", TypeID: boxType.ID,
		}, &SpaceRef{LocationID: rackID, Row: 2, Col: 3})
		if err != nil {
			t.Fatalf("CreateLocation: %v", err)
		}
		sp, err := e.spaces.ByLocationOccupant(ctx, id)
		if err != nil {
			t.Fatalf("ByLocationOccupant: %v", err)
		}
		if sp == nil || sp.Row != 2 || sp.Col != 3 {
			t.Fatalf("space = %+v, want row 2 col 3", sp)
		}
	})
}

func TestPathThroughGridSpace(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	_, _, _, boxID := e.buildChain(t)

	box, err := e.locations.Get(ctx, boxID)
	if err != nil || box == nil {
		t.Fatalf("Get box: %v", err)
	}
	path, err := e.hierarchy.Path(ctx, *box)
	if err != nil {
		t.Fatalf("Path: %v", err)
	}
	var names []string
	for _, l := range path {
		names = append(names, l.Name)
	}
	want := []string{"Lab A", "Freezer 1", "Rack 1", "Box 1"}
	if len(names) != len(want) {
		t.Fatalf("path = %v, want %v", names, want)
	}
	for i := range want {
		if names[i] != want[i] {
			t.Fatalf("path = %v, want %v", names, want)
		}
	}
}

func TestDeleteLocation(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	roomID, _, rackID, boxID := e.buildChain(t)

	// The room has children; the rack has an occupied space.
	if err := e.hierarchy.DeleteLocation(ctx, roomID); !errors.Is(err, ErrInUse) {
		t.Fatalf("DeleteLocation(room) err = %v, want ErrInUse", err)
	}
	if err := e.hierarchy.DeleteLocation(ctx, rackID); !errors.Is(err, ErrInUse) {
		t.Fatalf("DeleteLocation(rack) err = %v, want ErrInUse", err)
	}

	// The empty box deletes, and the rack space it held is dropped.
	if err := e.hierarchy.DeleteLocation(ctx, boxID); err != nil {
		t.Fatalf("DeleteLocation(box): %v", err)
	}
	spaces, err := e.spaces.ListForLocation(ctx, rackID)
	if err != nil {
		t.Fatalf("ListForLocation: %v", err)
	}
	if len(spaces) != 0 {
		t.Errorf("rack still has %d spaces after box delete", len(spaces))
	}
}
