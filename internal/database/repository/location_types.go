package repository

import (
	"context"
	"database/sql"
	"fmt"
)

// LocationTypeRepo handles location types and their allowed-parent links.
type LocationTypeRepo struct {
	db *sql.DB
}

func NewLocationTypeRepo(db *sql.DB) *LocationTypeRepo { return &LocationTypeRepo{db: db} }

func (r *LocationTypeRepo) Insert(ctx context.Context, t LocationType) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx, `
	INSERT INTO location_types(id, name, can_store_samples, can_have_spaces, space_rows, space_cols)
	VALUES(?, ?, ?, ?, ?, ?)`,
		t.ID, t.Name, t.CanStoreSamples, t.CanHaveSpaces, t.SpaceRows, t.SpaceCols)
	if err != nil {
		return fmt.Errorf("insert location type: %w", err)
	}
	if err := replaceParentLinks(ctx, tx, t.ID, t.ParentTypeIDs); err != nil {
		return err
	}
	return tx.Commit()
}

func (r *LocationTypeRepo) Update(ctx context.Context, t LocationType) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx, `
	UPDATE location_types
	SET name = ?, can_store_samples = ?, can_have_spaces = ?, space_rows = ?, space_cols = ?,
	    updated_at = datetime('now')
	WHERE id = ?`,
		t.Name, t.CanStoreSamples, t.CanHaveSpaces, t.SpaceRows, t.SpaceCols, t.ID)
	if err != nil {
		return fmt.Errorf("update location type: %w", err)
	}
	if err := replaceParentLinks(ctx, tx, t.ID, t.ParentTypeIDs); err != nil {
		return err
	}
	return tx.Commit()
}

func (r *LocationTypeRepo) Delete(ctx context.Context, id string) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM location_types WHERE id = ?`, id)
	return err
}

// Get returns the type with the given id, or nil when it does not exist.
func (r *LocationTypeRepo) Get(ctx context.Context, id string) (*LocationType, error) {
	row := r.db.QueryRowContext(ctx, `
	SELECT id, name, can_store_samples, can_have_spaces, space_rows, space_cols, created_at, updated_at
	FROM location_types WHERE id = ?`, id)
	t, err := scanLocationType(row)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}
	if t.ParentTypeIDs, err = r.parentIDs(ctx, t.ID); err != nil {
		return nil, err
	}
	return &t, nil
}

// GetByName performs a case-insensitive lookup, or nil when absent.
func (r *LocationTypeRepo) GetByName(ctx context.Context, name string) (*LocationType, error) {
	row := r.db.QueryRowContext(ctx, `
	SELECT id, name, can_store_samples, can_have_spaces, space_rows, space_cols, created_at, updated_at
	FROM location_types WHERE name = ? COLLATE NOCASE`, name)
	t, err := scanLocationType(row)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}
	if t.ParentTypeIDs, err = r.parentIDs(ctx, t.ID); err != nil {
		return nil, err
	}
	return &t, nil
}

// List returns all types ordered by name, with parent links attached.
func (r *LocationTypeRepo) List(ctx context.Context) ([]LocationType, error) {
	rows, err := r.db.QueryContext(ctx, `
	SELECT id, name, can_store_samples, can_have_spaces, space_rows, space_cols, created_at, updated_at
	FROM location_types ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("query location types: %w", err)
	}
	defer rows.Close()

	var out []LocationType
	for rows.Next() {
		t, err := scanLocationType(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	links, err := r.allParentLinks(ctx)
	if err != nil {
		return nil, err
	}
	for i := range out {
		out[i].ParentTypeIDs = links[out[i].ID]
	}
	return out, nil
}

// InUse reports whether the type has instantiated locations or serves as an
// allowed parent of another type.
func (r *LocationTypeRepo) InUse(ctx context.Context, id string) (bool, error) {
	var n int
	err := r.db.QueryRowContext(ctx, `
	SELECT (SELECT COUNT(*) FROM locations WHERE type_id = ?)
	     + (SELECT COUNT(*) FROM location_type_parents WHERE parent_type_id = ?)`,
		id, id).Scan(&n)
	if err != nil {
		return false, fmt.Errorf("check type in use: %w", err)
	}
	return n > 0, nil
}

func (r *LocationTypeRepo) parentIDs(ctx context.Context, typeID string) ([]string, error) {
	rows, err := r.db.QueryContext(ctx, `
	SELECT parent_type_id FROM location_type_parents WHERE type_id = ? ORDER BY parent_type_id`, typeID)
	if err != nil {
		return nil, fmt.Errorf("query parent links: %w", err)
	}
	defer rows.Close()

	var out []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		out = append(out, id)
	}
	return out, rows.Err()
}

func (r *LocationTypeRepo) allParentLinks(ctx context.Context) (map[string][]string, error) {
	rows, err := r.db.QueryContext(ctx, `
	SELECT type_id, parent_type_id FROM location_type_parents ORDER BY type_id, parent_type_id`)
	if err != nil {
		return nil, fmt.Errorf("query parent links: %w", err)
	}
	defer rows.Close()

	out := make(map[string][]string)
	for rows.Next() {
		var typeID, parentID string
		if err := rows.Scan(&typeID, &parentID); err != nil {
			return nil, err
		}
		out[typeID] = append(out[typeID], parentID)
	}
	return out, rows.Err()
}

func replaceParentLinks(ctx context.Context, tx *sql.Tx, typeID string, parentIDs []string) error {
	if _, err := tx.ExecContext(ctx, `DELETE FROM location_type_parents WHERE type_id = ?`, typeID); err != nil {
		return fmt.Errorf("clear parent links: %w", err)
	}
	for _, pid := range parentIDs {
		_, err := tx.ExecContext(ctx,
			`INSERT INTO location_type_parents(type_id, parent_type_id) VALUES(?, ?)`, typeID, pid)
		if err != nil {
			return fmt.Errorf("insert parent link: %w", err)
		}
	}
	return nil
}

func scanLocationType(row scanner) (LocationType, error) {
	var t LocationType
	var store, spaces int
	var rows, cols sql.NullInt64
	if err := row.Scan(&t.ID, &t.Name, &store, &spaces, &rows, &cols, &t.CreatedAt, &t.UpdatedAt); err != nil {
		return LocationType{}, err
	}
	t.CanStoreSamples = store == 1
	t.CanHaveSpaces = spaces == 1
	if rows.Valid {
		n := int(rows.Int64)
		t.SpaceRows = &n
	}
	if cols.Valid {
		n := int(cols.Int64)
		t.SpaceCols = &n
	}
	return t, nil
}
