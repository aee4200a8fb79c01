package repository

import (
	"context"
	"database/sql"
	"fmt"
)

// LocationRepo handles concrete location instances.
type LocationRepo struct {
	db *sql.DB
}

func NewLocationRepo(db *sql.DB) *LocationRepo { return &LocationRepo{db: db} }

func (r *LocationRepo) Insert(ctx context.Context, l Location) error {
	_, err := r.db.ExecContext(ctx, `
	INSERT INTO locations(id, name, type_id, parent_id) VALUES(?, ?, ?, ?)`,
		l.ID, l.Name, l.TypeID, l.ParentID)
	return err
}

func (r *LocationRepo) Update(ctx context.Context, l Location) error {
	_, err := r.db.ExecContext(ctx, `
	UPDATE locations SET name = ?, type_id = ?, parent_id = ?, updated_at = datetime('now')
	WHERE id = ?`, l.Name, l.TypeID, l.ParentID, l.ID)
	return err
}

func (r *LocationRepo) Delete(ctx context.Context, id string) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM locations WHERE id = ?`, id)
	return err
}

// Get returns the location with the given id, or nil when it does not exist.
func (r *LocationRepo) Get(ctx context.Context, id string) (*Location, error) {
	row := r.db.QueryRowContext(ctx, `
	SELECT id, name, type_id, parent_id, created_at, updated_at FROM locations WHERE id = ?`, id)
	l, err := scanLocation(row)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}
	return &l, nil
}

// GetByName performs a case-insensitive lookup, or nil when absent.
func (r *LocationRepo) GetByName(ctx context.Context, name string) (*Location, error) {
	row := r.db.QueryRowContext(ctx, `
	SELECT id, name, type_id, parent_id, created_at, updated_at
	FROM locations WHERE name = ? COLLATE NOCASE`, name)
	l, err := scanLocation(row)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}
	return &l, nil
}

// List returns all locations ordered by name.
func (r *LocationRepo) List(ctx context.Context) ([]Location, error) {
	return r.queryMany(ctx, `
	SELECT id, name, type_id, parent_id, created_at, updated_at FROM locations ORDER BY name`)
}

// ChildrenOf returns locations directly nested under the given parent.
func (r *LocationRepo) ChildrenOf(ctx context.Context, parentID string) ([]Location, error) {
	return r.queryMany(ctx, `
	SELECT id, name, type_id, parent_id, created_at, updated_at
	FROM locations WHERE parent_id = ? ORDER BY name`, parentID)
}

// OccupantsOf returns locations stored in the grid spaces of the given
// location, in grid order.
func (r *LocationRepo) OccupantsOf(ctx context.Context, locationID string) ([]Location, error) {
	return r.queryMany(ctx, `
	SELECT l.id, l.name, l.type_id, l.parent_id, l.created_at, l.updated_at
	FROM locations l
	JOIN location_spaces s ON s.occupant_location_id = l.id
	WHERE s.location_id = ?
	ORDER BY s.row, s.col`, locationID)
}

// Roots returns locations with neither a direct parent nor an occupied space.
func (r *LocationRepo) Roots(ctx context.Context) ([]Location, error) {
	return r.queryMany(ctx, `
	SELECT l.id, l.name, l.type_id, l.parent_id, l.created_at, l.updated_at
	FROM locations l
	WHERE l.parent_id IS NULL
	  AND NOT EXISTS (SELECT 1 FROM location_spaces s WHERE s.occupant_location_id = l.id)
	ORDER BY l.name`)
}

// InUse reports whether the location has nested children, stored samples, or
// occupied spaces, and therefore must not be deleted.
func (r *LocationRepo) InUse(ctx context.Context, id string) (bool, error) {
	var n int
	err := r.db.QueryRowContext(ctx, `
	SELECT (SELECT COUNT(*) FROM locations WHERE parent_id = ?)
	     + (SELECT COUNT(*) FROM samples WHERE location_id = ?)
	     + (SELECT COUNT(*) FROM location_spaces
	        WHERE location_id = ? AND (occupant_location_id IS NOT NULL OR occupant_sample_id IS NOT NULL))`,
		id, id, id).Scan(&n)
	if err != nil {
		return false, fmt.Errorf("check location in use: %w", err)
	}
	return n > 0, nil
}

func (r *LocationRepo) queryMany(ctx context.Context, query string, args ...any) ([]Location, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query locations: %w", err)
	}
	defer rows.Close()

	var out []Location
	for rows.Next() {
		l, err := scanLocation(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, l)
	}
	return out, rows.Err()
}

func scanLocation(row scanner) (Location, error) {
	var l Location
	var parent sql.NullString
	if err := row.Scan(&l.ID, &l.Name, &l.TypeID, &parent, &l.CreatedAt, &l.UpdatedAt); err != nil {
		return Location{}, err
	}
	if parent.Valid {
		l.ParentID = &parent.String
	}
	return l, nil
}
