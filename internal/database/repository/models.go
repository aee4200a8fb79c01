package repository

import "time"

// LocationType is a blueprint for a physical location (e.g. "Freezer Rack",
// "96-Well Plate"), defining its nesting and storage rules.
type LocationType struct {
	ID              string
	Name            string
	CanStoreSamples bool
	CanHaveSpaces   bool
	SpaceRows       *int
	SpaceCols       *int
	ParentTypeIDs   []string
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// Gridded reports whether instances of this type expose addressable spaces.
func (t LocationType) Gridded() bool {
	return t.CanHaveSpaces && t.SpaceRows != nil && t.SpaceCols != nil
}

// RootType reports whether this type may only appear at the top of the
// hierarchy (no allowed parents).
func (t LocationType) RootType() bool { return len(t.ParentTypeIDs) == 0 }

// Location is a concrete instance of a physical location, e.g.
// "Lab A, Freezer 1".
type Location struct {
	ID        string
	Name      string
	TypeID    string
	ParentID  *string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Space is a single addressable slot within a grid-based location. At most
// one occupant of either kind; enforced by a schema check constraint.
type Space struct {
	ID                 string
	LocationID         string
	Row                int
	Col                int
	OccupantLocationID *string
	OccupantSampleID   *string
}

// Sample is a unique, individually tracked physical object, such as a
// patient sample or a chemical compound. LocationID is set only for samples
// stored directly in a flat location; grid-stored samples are referenced by
// their space instead.
type Sample struct {
	ID            string
	Name          string
	CatalogNumber string
	LotNumber     string
	Description   string
	LocationID    *string
	CreatedAt     time.Time
	UpdatedAt     time.Time
}
