package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/Bobboe/hspriveko/internal/core"
)

const expenseColumns = `id, amount_cents, category_id, date, month, recurring_id, note, created_at, updated_at`

func scanExpense(row interface{ Scan(...any) error }) (core.Expense, error) {
	var e core.Expense
	var date, month string
	var recurringID sql.NullString
	var created, updated int64
	if err := row.Scan(&e.ID, &e.Amount.Cents, &e.CategoryID, &date, &month, &recurringID, &e.Note, &created, &updated); err != nil {
		return core.Expense{}, err
	}
	d, err := core.ParseDate(date)
	if err != nil {
		return core.Expense{}, fmt.Errorf("expense %s: %w", e.ID, err)
	}
	m, err := core.ParseMonth(month)
	if err != nil {
		return core.Expense{}, fmt.Errorf("expense %s: %w", e.ID, err)
	}
	e.Date = d
	e.Month = m
	e.RecurringID = recurringID.String
	e.CreatedAt = fromMillis(created)
	e.UpdatedAt = fromMillis(updated)
	return e, nil
}

// expenseWhere renders the non-zero fields of a filter as a WHERE clause.
func expenseWhere(month core.Month, categoryID, recurringID string) (string, []any) {
	var conds []string
	var args []any
	if !month.IsZero() {
		conds = append(conds, "month = ?")
		args = append(args, month.String())
	}
	if categoryID != "" {
		conds = append(conds, "category_id = ?")
		args = append(args, categoryID)
	}
	if recurringID != "" {
		conds = append(conds, "recurring_id = ?")
		args = append(args, recurringID)
	}
	if len(conds) == 0 {
		return "", nil
	}
	return " WHERE " + strings.Join(conds, " AND "), args
}

func (r *records) ListExpenses(ctx context.Context, q core.ExpenseQuery) ([]core.Expense, error) {
	where, args := expenseWhere(q.Month, q.CategoryID, "")
	rows, err := r.q.QueryContext(ctx,
		`SELECT `+expenseColumns+` FROM expenses`+where+` ORDER BY date DESC, created_at DESC, id DESC`, args...)
	if err != nil {
		return nil, fmt.Errorf("list expenses: %w", err)
	}
	defer rows.Close()

	var out []core.Expense
	for rows.Next() {
		e, err := scanExpense(rows)
		if err != nil {
			return nil, fmt.Errorf("scan expense: %w", err)
		}
		out = append(out, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate expenses: %w", err)
	}
	return out, nil
}

func (r *records) GetExpense(ctx context.Context, id string) (core.Expense, error) {
	row := r.q.QueryRowContext(ctx, `SELECT `+expenseColumns+` FROM expenses WHERE id = ?`, id)
	e, err := scanExpense(row)
	if errors.Is(err, sql.ErrNoRows) {
		return core.Expense{}, &core.NotFoundError{Kind: core.KindExpense, ID: id}
	}
	if err != nil {
		return core.Expense{}, fmt.Errorf("get expense %s: %w", id, err)
	}
	return e, nil
}

func (r *records) InsertExpense(ctx context.Context, e core.Expense) error {
	_, err := r.q.ExecContext(ctx,
		`INSERT INTO expenses (`+expenseColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		e.ID, e.Amount.Cents, e.CategoryID, e.Date.String(), e.Month.String(),
		nullString(e.RecurringID), e.Note, toMillis(e.CreatedAt), toMillis(e.UpdatedAt))
	if err != nil {
		return insertErr("insert expense", err)
	}

	slog.DebugContext(ctx, "Expense saved to SQLite",
		"id", e.ID,
		"amount_cents", e.Amount.Cents,
		"date", e.Date.String(),
		"recurring_id", e.RecurringID)
	return nil
}

// UpdateExpense stores e; month is written from e.Date so it can never go stale.
func (r *records) UpdateExpense(ctx context.Context, e core.Expense) error {
	res, err := r.q.ExecContext(ctx,
		`UPDATE expenses SET amount_cents = ?, category_id = ?, date = ?, month = ?, recurring_id = ?, note = ?, updated_at = ?
		 WHERE id = ?`,
		e.Amount.Cents, e.CategoryID, e.Date.String(), e.Date.YearMonth().String(),
		nullString(e.RecurringID), e.Note, toMillis(e.UpdatedAt), e.ID)
	if err != nil {
		return fmt.Errorf("update expense %s: %w", e.ID, err)
	}
	return requireAffected(res, &core.NotFoundError{Kind: core.KindExpense, ID: e.ID})
}

func (r *records) DeleteExpense(ctx context.Context, id string) error {
	if _, err := r.q.ExecContext(ctx, `DELETE FROM expenses WHERE id = ?`, id); err != nil {
		return fmt.Errorf("delete expense %s: %w", id, err)
	}
	slog.DebugContext(ctx, "Expense deleted from SQLite", "id", id)
	return nil
}

func (r *records) CountExpenses(ctx context.Context, f core.ExpenseFilter) (int, error) {
	where, args := expenseWhere(f.Month, f.CategoryID, f.RecurringID)
	var n int
	if err := r.q.QueryRowContext(ctx, `SELECT COUNT(*) FROM expenses`+where, args...).Scan(&n); err != nil {
		return 0, fmt.Errorf("count expenses: %w", err)
	}
	return n, nil
}
