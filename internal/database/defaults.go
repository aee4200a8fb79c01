package database

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"

	"github.com/laureon/labtrack/internal/database/repository"
)

// defaultType describes one seeded location type and its allowed parents.
type defaultType struct {
	name            string
	parents         []string
	canStoreSamples bool
	rows, cols      int // both zero when the type has no spaces
}

// Baseline storage hierarchy for a fresh database: rooms contain freezers,
// freezers contain racks, racks hold boxes in a slot grid, boxes hold
// samples in a 9x9 grid.
var defaultTypes = []defaultType{
	{name: "Room"},
	{name: "Freezer", parents: []string{"Room"}},
	{name: "Rack", parents: []string{"Freezer"}, rows: 4, cols: 6},
	{name: "Box", parents: []string{"Rack"}, canStoreSamples: true, rows: 9, cols: 9},
}

// SeedDefaults ensures the baseline location types exist for new databases.
// It is idempotent and safe to run on every startup.
func SeedDefaults(ctx context.Context, db *sql.DB) error {
	typeRepo := repository.NewLocationTypeRepo(db)
	existing, err := typeRepo.List(ctx)
	if err != nil {
		return fmt.Errorf("list location types: %w", err)
	}
	if len(existing) > 0 {
		return nil
	}

	idByName := make(map[string]string, len(defaultTypes))
	for _, dt := range defaultTypes {
		id := uuid.NewSHA1(uuid.NameSpaceOID, []byte("loctype:"+dt.name)).String()
		idByName[dt.name] = id

		lt := repository.LocationType{
			ID:              id,
			Name:            dt.name,
			CanStoreSamples: dt.canStoreSamples,
			CanHaveSpaces:   dt.rows > 0,
		}
		if dt.rows > 0 {
			rows, cols := dt.rows, dt.cols
			lt.SpaceRows = &rows
			lt.SpaceCols = &cols
		}
		for _, p := range dt.parents {
			lt.ParentTypeIDs = append(lt.ParentTypeIDs, idByName[p])
		}
		if err := typeRepo.Insert(ctx, lt); err != nil {
			return fmt.Errorf("seed location type %q: %w", dt.name, err)
		}
	}
	return nil
}
