package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"contas/internal/core"
)

func (r *Repository) CreateCategory(ctx context.Context, cat core.Category) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO categories (id, name, kind, color_hint)
		VALUES (?, ?, ?, ?)`,
		cat.ID, cat.Name, cat.Kind, cat.ColorHint)
	if err != nil {
		return fmt.Errorf("insert category: %w", err)
	}
	return nil
}

func (r *Repository) GetCategory(ctx context.Context, id string) (core.Category, error) {
	var cat core.Category
	err := r.db.QueryRowContext(ctx,
		`SELECT id, name, kind, color_hint FROM categories WHERE id = ?`, id).
		Scan(&cat.ID, &cat.Name, &cat.Kind, &cat.ColorHint)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return core.Category{}, fmt.Errorf("category %s: %w", id, core.ErrNotFound)
		}
		return core.Category{}, fmt.Errorf("get category: %w", err)
	}
	return cat, nil
}

func (r *Repository) ListCategories(ctx context.Context) ([]core.Category, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, name, kind, color_hint FROM categories ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("list categories: %w", err)
	}
	defer rows.Close()

	var cats []core.Category
	for rows.Next() {
		var cat core.Category
		if err := rows.Scan(&cat.ID, &cat.Name, &cat.Kind, &cat.ColorHint); err != nil {
			return nil, fmt.Errorf("scan category: %w", err)
		}
		cats = append(cats, cat)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate categories: %w", err)
	}
	return cats, nil
}

func (r *Repository) UpdateCategory(ctx context.Context, cat core.Category) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE categories SET name = ?, kind = ?, color_hint = ? WHERE id = ?`,
		cat.Name, cat.Kind, cat.ColorHint, cat.ID)
	if err != nil {
		return fmt.Errorf("update category: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("update category rows affected: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("category %s: %w", cat.ID, core.ErrNotFound)
	}
	return nil
}

// DeleteCategory removes a category; transactions and bills keep their
// category_id as a dangling weak reference.
func (r *Repository) DeleteCategory(ctx context.Context, id string) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM categories WHERE id = ?`, id); err != nil {
		return fmt.Errorf("delete category: %w", err)
	}
	return nil
}
