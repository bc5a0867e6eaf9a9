package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"

	"github.com/Bobboe/hspriveko/internal/core"
)

const recurringColumns = `id, name, amount_cents, category_id, day_of_month, start_month, end_month, active, created_at, updated_at`

func scanRecurring(row interface{ Scan(...any) error }) (core.RecurringExpense, error) {
	var r core.RecurringExpense
	var start string
	var end sql.NullString
	var created, updated int64
	if err := row.Scan(&r.ID, &r.Name, &r.Amount.Cents, &r.CategoryID, &r.DayOfMonth,
		&start, &end, &r.Active, &created, &updated); err != nil {
		return core.RecurringExpense{}, err
	}
	m, err := core.ParseMonth(start)
	if err != nil {
		return core.RecurringExpense{}, fmt.Errorf("recurring expense %s: %w", r.ID, err)
	}
	r.StartMonth = m
	if end.Valid {
		m, err := core.ParseMonth(end.String)
		if err != nil {
			return core.RecurringExpense{}, fmt.Errorf("recurring expense %s: %w", r.ID, err)
		}
		r.EndMonth = &m
	}
	r.CreatedAt = fromMillis(created)
	r.UpdatedAt = fromMillis(updated)
	return r, nil
}

func endMonthValue(m *core.Month) sql.NullString {
	if m == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: m.String(), Valid: true}
}

func (r *records) queryRecurring(ctx context.Context, query string, args ...any) ([]core.RecurringExpense, error) {
	rows, err := r.q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []core.RecurringExpense
	for rows.Next() {
		rec, err := scanRecurring(rows)
		if err != nil {
			return nil, fmt.Errorf("scan recurring expense: %w", err)
		}
		out = append(out, rec)
	}
	return out, rows.Err()
}

func (r *records) ListRecurringExpenses(ctx context.Context) ([]core.RecurringExpense, error) {
	out, err := r.queryRecurring(ctx, `SELECT `+recurringColumns+` FROM recurring_expenses ORDER BY created_at, id`)
	if err != nil {
		return nil, fmt.Errorf("list recurring expenses: %w", err)
	}
	return out, nil
}

func (r *records) ActiveRecurringExpenses(ctx context.Context) ([]core.RecurringExpense, error) {
	out, err := r.queryRecurring(ctx, `SELECT `+recurringColumns+` FROM recurring_expenses WHERE active = 1 ORDER BY created_at, id`)
	if err != nil {
		return nil, fmt.Errorf("list active recurring expenses: %w", err)
	}
	return out, nil
}

func (r *records) GetRecurringExpense(ctx context.Context, id string) (core.RecurringExpense, error) {
	row := r.q.QueryRowContext(ctx, `SELECT `+recurringColumns+` FROM recurring_expenses WHERE id = ?`, id)
	rec, err := scanRecurring(row)
	if errors.Is(err, sql.ErrNoRows) {
		return core.RecurringExpense{}, &core.NotFoundError{Kind: core.KindRecurring, ID: id}
	}
	if err != nil {
		return core.RecurringExpense{}, fmt.Errorf("get recurring expense %s: %w", id, err)
	}
	return rec, nil
}

func (r *records) InsertRecurringExpense(ctx context.Context, rec core.RecurringExpense) error {
	_, err := r.q.ExecContext(ctx,
		`INSERT INTO recurring_expenses (`+recurringColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		rec.ID, rec.Name, rec.Amount.Cents, rec.CategoryID, rec.DayOfMonth,
		rec.StartMonth.String(), endMonthValue(rec.EndMonth), rec.Active,
		toMillis(rec.CreatedAt), toMillis(rec.UpdatedAt))
	if err != nil {
		return insertErr("insert recurring expense", err)
	}
	slog.DebugContext(ctx, "Recurring expense saved to SQLite", "id", rec.ID, "name", rec.Name)
	return nil
}

func (r *records) UpdateRecurringExpense(ctx context.Context, rec core.RecurringExpense) error {
	res, err := r.q.ExecContext(ctx,
		`UPDATE recurring_expenses
		 SET name = ?, amount_cents = ?, category_id = ?, day_of_month = ?, start_month = ?, end_month = ?, active = ?, updated_at = ?
		 WHERE id = ?`,
		rec.Name, rec.Amount.Cents, rec.CategoryID, rec.DayOfMonth, rec.StartMonth.String(),
		endMonthValue(rec.EndMonth), rec.Active, toMillis(rec.UpdatedAt), rec.ID)
	if err != nil {
		return fmt.Errorf("update recurring expense %s: %w", rec.ID, err)
	}
	return requireAffected(res, &core.NotFoundError{Kind: core.KindRecurring, ID: rec.ID})
}

// DeleteRecurringExpense does not touch expenses generated from the template.
func (r *records) DeleteRecurringExpense(ctx context.Context, id string) error {
	if _, err := r.q.ExecContext(ctx, `DELETE FROM recurring_expenses WHERE id = ?`, id); err != nil {
		return fmt.Errorf("delete recurring expense %s: %w", id, err)
	}
	slog.DebugContext(ctx, "Recurring expense deleted from SQLite", "id", id)
	return nil
}

func (r *records) CountRecurringExpenses(ctx context.Context, categoryID string) (int, error) {
	var n int
	err := r.q.QueryRowContext(ctx, `SELECT COUNT(*) FROM recurring_expenses WHERE category_id = ?`, categoryID).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("count recurring expenses: %w", err)
	}
	return n, nil
}
