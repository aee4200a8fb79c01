package service

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/laureon/labtrack/internal/database"
	"github.com/laureon/labtrack/internal/database/repository"
	"github.com/laureon/labtrack/internal/grid"
)

// PlacementService creates, moves and removes samples, keeping the lazily
// created space rows in sync as occupants come and go.
type PlacementService struct {
	DB        *sql.DB
	Samples   *repository.SampleRepo
	Spaces    *repository.SpaceRepo
	Locations *repository.LocationRepo
	Types     *repository.LocationTypeRepo
}

// SampleInput is the operator-entered portion of a sample record.
type SampleInput struct {
	Name          string
	CatalogNumber string
	LotNumber     string
	Description   string
}

func (in SampleInput) validate() error {
	if strings.TrimSpace(in.Name) == "" {
		return validationf("name is required")
	}
	return nil
}

func (in SampleInput) sample() repository.Sample {
	return repository.Sample{
		ID:            uuid.NewString(),
		Name:          strings.TrimSpace(in.Name),
		CatalogNumber: strings.TrimSpace(in.CatalogNumber),
		LotNumber:     strings.TrimSpace(in.LotNumber),
		Description:   strings.TrimSpace(in.Description),
	}
}

// CreateSample stores one sample directly in a flat (non-grid) location.
func (s *PlacementService) CreateSample(ctx context.Context, in SampleInput, locationID string) (string, error) {
	if err := in.validate(); err != nil {
		return "", err
	}
	lt, err := s.storageType(ctx, locationID)
	if err != nil {
		return "", err
	}
	if lt.Gridded() {
		return "", validationf("samples go into specific spaces of a grid location")
	}
	sample := in.sample()
	sample.LocationID = &locationID
	err = database.WithTx(ctx, s.DB, func(tx *sql.Tx) error {
		return s.Samples.Insert(ctx, tx, sample)
	})
	if err != nil {
		return "", fmt.Errorf("create sample: %w", err)
	}
	return sample.ID, nil
}

// CreateSampleInSpace stores one sample into a single grid space.
func (s *PlacementService) CreateSampleInSpace(ctx context.Context, in SampleInput, at SpaceRef) (string, error) {
	if err := in.validate(); err != nil {
		return "", err
	}
	if err := s.checkSpace(ctx, at); err != nil {
		return "", err
	}
	sample := in.sample()
	err := database.WithTx(ctx, s.DB, func(tx *sql.Tx) error {
		if err := s.Samples.Insert(ctx, tx, sample); err != nil {
			return err
		}
		sp, err := s.Spaces.Ensure(ctx, tx, at.LocationID, at.Row, at.Col)
		if err != nil {
			return err
		}
		if sp.OccupantLocationID != nil || sp.OccupantSampleID != nil {
			return validationf("space %s is already occupied", grid.Coord{Row: at.Row, Col: at.Col}.Label())
		}
		return s.Spaces.SetSampleOccupant(ctx, tx, sp.ID, sample.ID)
	})
	if err != nil {
		return "", err
	}
	return sample.ID, nil
}

// BulkAddInput describes one bulk-add request against a grid location. The
// selected spaces arrive as "row,col" strings, the payload produced by a
// finished add-mode selection.
type BulkAddInput struct {
	LocationID     string
	SelectedSpaces []string
	Rows           []SampleInput // one entry per space, or a single entry repeated
}

// BulkAddResult reports what a bulk add actually stored.
type BulkAddResult struct {
	Created int
	Skipped int // spaces that were occupied by the time the write ran
}

// BulkAdd stores one sample per selected space inside a single transaction.
// Rows may contain exactly one entry (repeated across every space) or one
// entry per space in selection order. Spaces occupied since the selection
// was made are skipped rather than failing the batch.
func (s *PlacementService) BulkAdd(ctx context.Context, in BulkAddInput) (BulkAddResult, error) {
	var res BulkAddResult
	if len(in.SelectedSpaces) == 0 {
		return res, validationf("no spaces selected")
	}
	if len(in.Rows) != 1 && len(in.Rows) != len(in.SelectedSpaces) {
		return res, validationf("expected 1 or %d sample rows, got %d", len(in.SelectedSpaces), len(in.Rows))
	}
	for _, row := range in.Rows {
		if err := row.validate(); err != nil {
			return res, err
		}
	}

	lt, err := s.storageType(ctx, in.LocationID)
	if err != nil {
		return res, err
	}
	if !lt.Gridded() {
		return res, validationf("bulk add by space requires a grid location")
	}

	coords := make([]grid.Coord, 0, len(in.SelectedSpaces))
	for _, raw := range in.SelectedSpaces {
		c, err := grid.ParseCoord(raw)
		if err != nil {
			return res, validationf("bad space reference %q", raw)
		}
		if c.Row < 1 || c.Row > *lt.SpaceRows || c.Col < 1 || c.Col > *lt.SpaceCols {
			return res, validationf("space %s is outside the %dx%d grid", c.Label(), *lt.SpaceRows, *lt.SpaceCols)
		}
		coords = append(coords, c)
	}

	err = database.WithTx(ctx, s.DB, func(tx *sql.Tx) error {
		for i, c := range coords {
			row := in.Rows[0]
			if len(in.Rows) > 1 {
				row = in.Rows[i]
			}
			sp, err := s.Spaces.Ensure(ctx, tx, in.LocationID, c.Row, c.Col)
			if err != nil {
				return err
			}
			if sp.OccupantLocationID != nil || sp.OccupantSampleID != nil {
				res.Skipped++
				continue
			}
			sample := row.sample()
			if err := s.Samples.Insert(ctx, tx, sample); err != nil {
				return err
			}
			if err := s.Spaces.SetSampleOccupant(ctx, tx, sp.ID, sample.ID); err != nil {
				return err
			}
			res.Created++
		}
		return nil
	})
	if err != nil {
		return BulkAddResult{}, err
	}
	return res, nil
}

// BulkAddCount stores count copies of one sample row directly into a flat
// location.
func (s *PlacementService) BulkAddCount(ctx context.Context, locationID string, row SampleInput, count int) (BulkAddResult, error) {
	var res BulkAddResult
	if count < 1 {
		return res, validationf("count must be at least 1")
	}
	if err := row.validate(); err != nil {
		return res, err
	}
	lt, err := s.storageType(ctx, locationID)
	if err != nil {
		return res, err
	}
	if lt.Gridded() {
		return res, validationf("samples go into specific spaces of a grid location")
	}
	err = database.WithTx(ctx, s.DB, func(tx *sql.Tx) error {
		for i := 0; i < count; i++ {
			sample := row.sample()
			sample.LocationID = &locationID
			if err := s.Samples.Insert(ctx, tx, sample); err != nil {
				return err
			}
			res.Created++
		}
		return nil
	})
	if err != nil {
		return BulkAddResult{}, err
	}
	return res, nil
}

// ParsePastedRows turns tab-separated clipboard text into sample rows. Each
// line maps to name, catalog number, lot number, description; short lines
// are padded with blanks, lines with more than four columns are rejected.
func ParsePastedRows(text string) ([]SampleInput, error) {
	var rows []SampleInput
	for i, line := range strings.Split(text, "\n") {
		line = strings.TrimRight(line, "\r")
		if strings.TrimSpace(line) == "" {
			continue
		}
		cols := strings.Split(line, "\t")
		if len(cols) > 4 {
			return nil, validationf("line %d has %d columns, expected at most 4", i+1, len(cols))
		}
		for len(cols) < 4 {
			cols = append(cols, "")
		}
		row := SampleInput{
			Name:          strings.TrimSpace(cols[0]),
			CatalogNumber: strings.TrimSpace(cols[1]),
			LotNumber:     strings.TrimSpace(cols[2]),
			Description:   strings.TrimSpace(cols[3]),
		}
		if row.Name == "" {
			return nil, validationf("line %d is missing a name", i+1)
		}
		rows = append(rows, row)
	}
	if len(rows) == 0 {
		return nil, validationf("nothing to paste")
	}
	return rows, nil
}

// UpdateSample stores edits to a sample's details without touching where it
// is stored.
func (s *PlacementService) UpdateSample(ctx context.Context, id string, in SampleInput) error {
	if err := in.validate(); err != nil {
		return err
	}
	current, err := s.Samples.Get(ctx, id)
	if err != nil {
		return err
	}
	if current == nil {
		return validationf("sample no longer exists")
	}
	current.Name = strings.TrimSpace(in.Name)
	current.CatalogNumber = strings.TrimSpace(in.CatalogNumber)
	current.LotNumber = strings.TrimSpace(in.LotNumber)
	current.Description = strings.TrimSpace(in.Description)
	return s.Samples.Update(ctx, nil, *current)
}

// DeleteSample removes one sample and drops the space it vacated.
func (s *PlacementService) DeleteSample(ctx context.Context, id string) error {
	return database.WithTx(ctx, s.DB, func(tx *sql.Tx) error {
		if err := s.Samples.Delete(ctx, tx, id); err != nil {
			return err
		}
		return s.Spaces.DeleteVacated(ctx, tx)
	})
}

// BulkDelete removes the identified samples in one transaction and drops
// every space they vacated. Returns the number of samples removed; IDs that
// no longer exist are counted as already gone, not errors.
func (s *PlacementService) BulkDelete(ctx context.Context, ids []string) (int, error) {
	if len(ids) == 0 {
		return 0, validationf("no samples selected")
	}
	var deleted int
	err := database.WithTx(ctx, s.DB, func(tx *sql.Tx) error {
		n, err := s.Samples.DeleteMany(ctx, tx, ids)
		if err != nil {
			return err
		}
		deleted = n
		return s.Spaces.DeleteVacated(ctx, tx)
	})
	if err != nil {
		return 0, err
	}
	return deleted, nil
}

// MoveSample relocates a stored sample to a new flat location or grid space.
func (s *PlacementService) MoveSample(ctx context.Context, id string, locationID string, at *SpaceRef) error {
	sample, err := s.Samples.Get(ctx, id)
	if err != nil {
		return err
	}
	if sample == nil {
		return validationf("sample no longer exists")
	}

	if at != nil {
		if err := s.checkSpace(ctx, *at); err != nil {
			return err
		}
	} else {
		lt, err := s.storageType(ctx, locationID)
		if err != nil {
			return err
		}
		if lt.Gridded() {
			return validationf("samples go into specific spaces of a grid location")
		}
	}

	return database.WithTx(ctx, s.DB, func(tx *sql.Tx) error {
		if err := s.Spaces.ClearSampleOccupant(ctx, tx, sample.ID); err != nil {
			return err
		}
		if at != nil {
			sample.LocationID = nil
		} else {
			sample.LocationID = &locationID
		}
		if err := s.Samples.Update(ctx, tx, *sample); err != nil {
			return err
		}
		if at != nil {
			sp, err := s.Spaces.Ensure(ctx, tx, at.LocationID, at.Row, at.Col)
			if err != nil {
				return err
			}
			if sp.OccupantLocationID != nil || sp.OccupantSampleID != nil {
				return validationf("space %s is already occupied", grid.Coord{Row: at.Row, Col: at.Col}.Label())
			}
			if err := s.Spaces.SetSampleOccupant(ctx, tx, sp.ID, sample.ID); err != nil {
				return err
			}
		}
		return s.Spaces.DeleteVacated(ctx, tx)
	})
}

// LoadGrid builds the render model for a grid location: dimensions from its
// type, occupants from its lazily created spaces.
func (s *PlacementService) LoadGrid(ctx context.Context, locationID string) (*grid.Grid, error) {
	loc, err := s.Locations.Get(ctx, locationID)
	if err != nil {
		return nil, err
	}
	if loc == nil {
		return nil, validationf("location no longer exists")
	}
	lt, err := s.Types.Get(ctx, loc.TypeID)
	if err != nil {
		return nil, err
	}
	if lt == nil {
		return nil, validationf("location type no longer exists")
	}
	if !lt.Gridded() {
		return nil, validationf("%q has no grid", loc.Name)
	}
	g := grid.New(*lt.SpaceRows, *lt.SpaceCols)

	spaces, err := s.Spaces.ListForLocation(ctx, locationID)
	if err != nil {
		return nil, err
	}
	for _, sp := range spaces {
		at := grid.Coord{Row: sp.Row, Col: sp.Col}
		switch {
		case sp.OccupantSampleID != nil:
			sample, err := s.Samples.Get(ctx, *sp.OccupantSampleID)
			if err != nil {
				return nil, err
			}
			name := ""
			if sample != nil {
				name = sample.Name
			}
			g.Place(grid.Cell{Coord: at, OccupantKind: grid.OccupantSample, OccupantID: *sp.OccupantSampleID, OccupantName: name})
		case sp.OccupantLocationID != nil:
			loc, err := s.Locations.Get(ctx, *sp.OccupantLocationID)
			if err != nil {
				return nil, err
			}
			name := ""
			if loc != nil {
				name = loc.Name
			}
			g.Place(grid.Cell{Coord: at, OccupantKind: grid.OccupantLocation, OccupantID: *sp.OccupantLocationID, OccupantName: name})
		}
	}
	return g, nil
}

// SamplesIn lists the samples stored in a location, covering both direct
// placement and grid spaces.
func (s *PlacementService) SamplesIn(ctx context.Context, locationID string) ([]repository.Sample, error) {
	lt, err := s.storageType(ctx, locationID)
	if err != nil {
		return nil, err
	}
	if !lt.Gridded() {
		return s.Samples.List(ctx, repository.SampleFilters{LocationID: locationID})
	}
	spaces, err := s.Spaces.ListForLocation(ctx, locationID)
	if err != nil {
		return nil, err
	}
	var ids []string
	for _, sp := range spaces {
		if sp.OccupantSampleID != nil {
			ids = append(ids, *sp.OccupantSampleID)
		}
	}
	if len(ids) == 0 {
		return nil, nil
	}
	return s.Samples.ListByIDs(ctx, ids)
}

func (s *PlacementService) storageType(ctx context.Context, locationID string) (*repository.LocationType, error) {
	loc, err := s.Locations.Get(ctx, locationID)
	if err != nil {
		return nil, err
	}
	if loc == nil {
		return nil, validationf("location no longer exists")
	}
	lt, err := s.Types.Get(ctx, loc.TypeID)
	if err != nil {
		return nil, err
	}
	if lt == nil {
		return nil, validationf("location type no longer exists")
	}
	if !lt.CanStoreSamples {
		return nil, validationf("%q cannot store samples", loc.Name)
	}
	return lt, nil
}

func (s *PlacementService) checkSpace(ctx context.Context, at SpaceRef) error {
	lt, err := s.storageType(ctx, at.LocationID)
	if err != nil {
		return err
	}
	if !lt.Gridded() {
		return validationf("location has no spaces")
	}
	if at.Row < 1 || at.Row > *lt.SpaceRows || at.Col < 1 || at.Col > *lt.SpaceCols {
		return validationf("space (%d,%d) is outside the %dx%d grid", at.Row, at.Col, *lt.SpaceRows, *lt.SpaceCols)
	}
	return nil
}
