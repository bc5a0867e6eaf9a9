package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"

	"github.com/Bobboe/hspriveko/internal/core"
)

const categoryColumns = `id, name, monthly_budget_cents, created_at, updated_at`

func scanCategory(row interface{ Scan(...any) error }) (core.Category, error) {
	var c core.Category
	var created, updated int64
	if err := row.Scan(&c.ID, &c.Name, &c.MonthlyBudget.Cents, &created, &updated); err != nil {
		return core.Category{}, err
	}
	c.CreatedAt = fromMillis(created)
	c.UpdatedAt = fromMillis(updated)
	return c, nil
}

func (r *records) ListCategories(ctx context.Context) ([]core.Category, error) {
	rows, err := r.q.QueryContext(ctx, `SELECT `+categoryColumns+` FROM categories ORDER BY name, id`)
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
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate categories: %w", err)
	}
	return out, nil
}

func (r *records) GetCategory(ctx context.Context, id string) (core.Category, error) {
	row := r.q.QueryRowContext(ctx, `SELECT `+categoryColumns+` FROM categories WHERE id = ?`, id)
	c, err := scanCategory(row)
	if errors.Is(err, sql.ErrNoRows) {
		return core.Category{}, &core.NotFoundError{Kind: core.KindCategory, ID: id}
	}
	if err != nil {
		return core.Category{}, fmt.Errorf("get category %s: %w", id, err)
	}
	return c, nil
}

func (r *records) InsertCategory(ctx context.Context, c core.Category) error {
	_, err := r.q.ExecContext(ctx,
		`INSERT INTO categories (`+categoryColumns+`) VALUES (?, ?, ?, ?, ?)`,
		c.ID, c.Name, c.MonthlyBudget.Cents, toMillis(c.CreatedAt), toMillis(c.UpdatedAt))
	if err != nil {
		return insertErr("insert category", err)
	}
	slog.DebugContext(ctx, "Category saved to SQLite", "id", c.ID, "name", c.Name)
	return nil
}

func (r *records) UpdateCategory(ctx context.Context, c core.Category) error {
	res, err := r.q.ExecContext(ctx,
		`UPDATE categories SET name = ?, monthly_budget_cents = ?, updated_at = ? WHERE id = ?`,
		c.Name, c.MonthlyBudget.Cents, toMillis(c.UpdatedAt), c.ID)
	if err != nil {
		return fmt.Errorf("update category %s: %w", c.ID, err)
	}
	return requireAffected(res, &core.NotFoundError{Kind: core.KindCategory, ID: c.ID})
}

func (r *records) DeleteCategory(ctx context.Context, id string) error {
	if _, err := r.q.ExecContext(ctx, `DELETE FROM categories WHERE id = ?`, id); err != nil {
		return fmt.Errorf("delete category %s: %w", id, err)
	}
	slog.DebugContext(ctx, "Category deleted from SQLite", "id", id)
	return nil
}
