package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
)

// SampleFilters defines list filters.
type SampleFilters struct {
	LocationID string // flat-location membership filter
	Search     string // substring across name, catalog, lot, description
}

// SampleRepo handles samples.
type SampleRepo struct {
	db *sql.DB
}

func NewSampleRepo(db *sql.DB) *SampleRepo { return &SampleRepo{db: db} }

func (r *SampleRepo) Insert(ctx context.Context, tx *sql.Tx, s Sample) error {
	_, err := querier(r.db, tx).ExecContext(ctx, `
	INSERT INTO samples(id, name, catalog_number, lot_number, description, location_id)
	VALUES(?, ?, ?, ?, ?, ?)`,
		s.ID, s.Name, s.CatalogNumber, s.LotNumber, s.Description, s.LocationID)
	return err
}

func (r *SampleRepo) Update(ctx context.Context, tx *sql.Tx, s Sample) error {
	_, err := querier(r.db, tx).ExecContext(ctx, `
	UPDATE samples
	SET name = ?, catalog_number = ?, lot_number = ?, description = ?, location_id = ?, updated_at = datetime('now')
	WHERE id = ?`, s.Name, s.CatalogNumber, s.LotNumber, s.Description, s.LocationID, s.ID)
	return err
}

func (r *SampleRepo) Delete(ctx context.Context, tx *sql.Tx, id string) error {
	_, err := querier(r.db, tx).ExecContext(ctx, `DELETE FROM samples WHERE id = ?`, id)
	return err
}

// DeleteMany removes all listed samples. Runs inside tx when one is supplied.
func (r *SampleRepo) DeleteMany(ctx context.Context, tx *sql.Tx, ids []string) (int, error) {
	if len(ids) == 0 {
		return 0, nil
	}
	placeholders := strings.TrimSuffix(strings.Repeat("?,", len(ids)), ",")
	args := make([]any, len(ids))
	for i, id := range ids {
		args[i] = id
	}
	res, err := querier(r.db, tx).ExecContext(ctx,
		`DELETE FROM samples WHERE id IN (`+placeholders+`)`, args...)
	if err != nil {
		return 0, fmt.Errorf("delete samples: %w", err)
	}
	n, err := res.RowsAffected()
	return int(n), err
}

// Get returns the sample with the given id, or nil when it does not exist.
func (r *SampleRepo) Get(ctx context.Context, id string) (*Sample, error) {
	row := r.db.QueryRowContext(ctx, `
	SELECT id, name, catalog_number, lot_number, description, location_id, created_at, updated_at
	FROM samples WHERE id = ?`, id)
	s, err := scanSample(row)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}
	return &s, nil
}

// List returns samples matching the filters, ordered by name.
func (r *SampleRepo) List(ctx context.Context, f SampleFilters) ([]Sample, error) {
	var where []string
	var args []any

	if f.LocationID != "" {
		where = append(where, "location_id = ?")
		args = append(args, f.LocationID)
	}
	if f.Search != "" {
		where = append(where,
			"(name LIKE ? OR catalog_number LIKE ? OR lot_number LIKE ? OR description LIKE ?)")
		pat := "%" + f.Search + "%"
		args = append(args, pat, pat, pat, pat)
	}

	query := `SELECT id, name, catalog_number, lot_number, description, location_id, created_at, updated_at FROM samples`
	if len(where) > 0 {
		query += " WHERE " + strings.Join(where, " AND ")
	}
	query += " ORDER BY name, id"

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query samples: %w", err)
	}
	defer rows.Close()

	var out []Sample
	for rows.Next() {
		s, err := scanSample(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, rows.Err()
}

// ListByIDs returns the samples with the given ids, ordered by name.
func (r *SampleRepo) ListByIDs(ctx context.Context, ids []string) ([]Sample, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	placeholders := strings.TrimSuffix(strings.Repeat("?,", len(ids)), ",")
	args := make([]any, len(ids))
	for i, id := range ids {
		args[i] = id
	}
	rows, err := r.db.QueryContext(ctx, `
	SELECT id, name, catalog_number, lot_number, description, location_id, created_at, updated_at
	FROM samples WHERE id IN (`+placeholders+`) ORDER BY name, id`, args...)
	if err != nil {
		return nil, fmt.Errorf("query samples: %w", err)
	}
	defer rows.Close()

	var out []Sample
	for rows.Next() {
		s, err := scanSample(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, rows.Err()
}

// scanSample handles nullable fields for both Row and Rows.
type scanner interface {
	Scan(dest ...any) error
}

func scanSample(row scanner) (Sample, error) {
	var s Sample
	var loc sql.NullString
	if err := row.Scan(&s.ID, &s.Name, &s.CatalogNumber, &s.LotNumber, &s.Description,
		&loc, &s.CreatedAt, &s.UpdatedAt); err != nil {
		return Sample{}, err
	}
	if loc.Valid {
		s.LocationID = &loc.String
	}
	return s, nil
}
