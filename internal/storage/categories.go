package storage

import (
	"context"
	"fmt"

	"carteira/internal/core"
)

const categoryColumns = `id, household_id, name, kind, color`

func scanCategory(s rowScanner) (core.Category, error) {
	var c core.Category
	if err := s.Scan(&c.ID, &c.HouseholdID, &c.Name, &c.Kind, &c.Color); err != nil {
		return core.Category{}, err
	}
	if err := c.Validate(); err != nil {
		return core.Category{}, &core.RecordError{Entity: "category", ID: c.ID, Err: err}
	}
	return c, nil
}

func insertCategory(ctx context.Context, q queryer, c core.Category) error {
	_, err := q.ExecContext(ctx,
		`INSERT INTO categories (`+categoryColumns+`) VALUES (?, ?, ?, ?, ?)`,
		c.ID, c.HouseholdID, c.Name, c.Kind, c.Color)
	if err != nil {
		return fmt.Errorf("insert category: %w", mapError(err))
	}
	return nil
}

func (r *SQLiteRepository) ListCategories(ctx context.Context, householdID string) ([]core.Category, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+categoryColumns+` FROM categories WHERE household_id = ? ORDER BY kind, name, id`, householdID)
	if err != nil {
		return nil, fmt.Errorf("list categories: %w", err)
	}
	defer rows.Close()

	var out []core.Category
	for rows.Next() {
		c, err := scanCategory(rows)
		if err != nil {
			return nil, fmt.Errorf("scan category: %w", err)
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

func (r *SQLiteRepository) GetCategory(ctx context.Context, householdID, id string) (core.Category, error) {
	c, err := scanCategory(r.db.QueryRowContext(ctx,
		`SELECT `+categoryColumns+` FROM categories WHERE household_id = ? AND id = ?`, householdID, id))
	if err != nil {
		return core.Category{}, fmt.Errorf("get category: %w", mapError(err))
	}
	return c, nil
}

func (r *SQLiteRepository) CreateCategory(ctx context.Context, c core.Category) error {
	return insertCategory(ctx, r.db, c)
}

func (r *SQLiteRepository) UpdateCategory(ctx context.Context, c core.Category) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE categories SET name = ?, color = ? WHERE household_id = ? AND id = ?`,
		c.Name, c.Color, c.HouseholdID, c.ID)
	if err != nil {
		return fmt.Errorf("update category: %w", mapError(err))
	}
	return expectOne(res)
}

func (r *SQLiteRepository) DeleteCategory(ctx context.Context, householdID, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM categories WHERE household_id = ? AND id = ?`, householdID, id)
	if err != nil {
		return fmt.Errorf("delete category: %w", mapError(err))
	}
	return expectOne(res)
}
