package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"
)

// SpaceRepo handles the addressable slots of grid-based locations. Spaces
// are created lazily: a coordinate gets a row only once something occupies
// it, and the row is removed again when its occupant goes away.
type SpaceRepo struct {
	db *sql.DB
}

func NewSpaceRepo(db *sql.DB) *SpaceRepo { return &SpaceRepo{db: db} }

// Ensure returns the space at (row, col) under the given location, creating
// it if it does not yet exist. Runs inside tx when one is supplied.
func (r *SpaceRepo) Ensure(ctx context.Context, tx *sql.Tx, locationID string, row, col int) (Space, error) {
	q := querier(r.db, tx)

	s, err := scanSpace(q.QueryRowContext(ctx, `
	SELECT id, location_id, row, col, occupant_location_id, occupant_sample_id
	FROM location_spaces WHERE location_id = ? AND row = ? AND col = ?`, locationID, row, col))
	if err == nil {
		return s, nil
	}
	if err != sql.ErrNoRows {
		return Space{}, fmt.Errorf("lookup space: %w", err)
	}

	s = Space{ID: uuid.NewString(), LocationID: locationID, Row: row, Col: col}
	_, err = q.ExecContext(ctx, `
	INSERT INTO location_spaces(id, location_id, row, col) VALUES(?, ?, ?, ?)`,
		s.ID, s.LocationID, s.Row, s.Col)
	if err != nil {
		return Space{}, fmt.Errorf("insert space: %w", err)
	}
	return s, nil
}

// ListForLocation returns all persisted spaces of a location in grid order.
func (r *SpaceRepo) ListForLocation(ctx context.Context, locationID string) ([]Space, error) {
	rows, err := r.db.QueryContext(ctx, `
	SELECT id, location_id, row, col, occupant_location_id, occupant_sample_id
	FROM location_spaces WHERE location_id = ? ORDER BY row, col`, locationID)
	if err != nil {
		return nil, fmt.Errorf("query spaces: %w", err)
	}
	defer rows.Close()

	var out []Space
	for rows.Next() {
		s, err := scanSpace(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, rows.Err()
}

// BySampleOccupant returns the space holding the given sample, or nil.
func (r *SpaceRepo) BySampleOccupant(ctx context.Context, sampleID string) (*Space, error) {
	s, err := scanSpace(r.db.QueryRowContext(ctx, `
	SELECT id, location_id, row, col, occupant_location_id, occupant_sample_id
	FROM location_spaces WHERE occupant_sample_id = ?`, sampleID))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}
	return &s, nil
}

// ByLocationOccupant returns the space occupied by the given location, or nil.
func (r *SpaceRepo) ByLocationOccupant(ctx context.Context, locationID string) (*Space, error) {
	s, err := scanSpace(r.db.QueryRowContext(ctx, `
	SELECT id, location_id, row, col, occupant_location_id, occupant_sample_id
	FROM location_spaces WHERE occupant_location_id = ?`, locationID))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}
	return &s, nil
}

// SetSampleOccupant stores a sample into a space.
func (r *SpaceRepo) SetSampleOccupant(ctx context.Context, tx *sql.Tx, spaceID, sampleID string) error {
	_, err := querier(r.db, tx).ExecContext(ctx,
		`UPDATE location_spaces SET occupant_sample_id = ? WHERE id = ?`, sampleID, spaceID)
	return err
}

// ClearSampleOccupant vacates whichever space currently holds the sample.
func (r *SpaceRepo) ClearSampleOccupant(ctx context.Context, tx *sql.Tx, sampleID string) error {
	_, err := querier(r.db, tx).ExecContext(ctx,
		`UPDATE location_spaces SET occupant_sample_id = NULL WHERE occupant_sample_id = ?`, sampleID)
	return err
}

// SetLocationOccupant stores a nested location into a space.
func (r *SpaceRepo) SetLocationOccupant(ctx context.Context, tx *sql.Tx, spaceID, locationID string) error {
	_, err := querier(r.db, tx).ExecContext(ctx,
		`UPDATE location_spaces SET occupant_location_id = ? WHERE id = ?`, locationID, spaceID)
	return err
}

// DeleteVacated removes spaces left with no occupant of either kind,
// keeping the table to the sparse occupied set.
func (r *SpaceRepo) DeleteVacated(ctx context.Context, tx *sql.Tx) error {
	_, err := querier(r.db, tx).ExecContext(ctx, `
	DELETE FROM location_spaces
	WHERE occupant_location_id IS NULL AND occupant_sample_id IS NULL`)
	return err
}

// execer is satisfied by both *sql.DB and *sql.Tx.
type execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

func querier(db *sql.DB, tx *sql.Tx) execer {
	if tx != nil {
		return tx
	}
	return db
}

func scanSpace(row scanner) (Space, error) {
	var s Space
	var occLoc, occSample sql.NullString
	if err := row.Scan(&s.ID, &s.LocationID, &s.Row, &s.Col, &occLoc, &occSample); err != nil {
		return Space{}, err
	}
	if occLoc.Valid {
		s.OccupantLocationID = &occLoc.String
	}
	if occSample.Valid {
		s.OccupantSampleID = &occSample.String
	}
	return s, nil
}
