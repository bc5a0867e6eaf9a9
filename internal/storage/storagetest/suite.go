// Package storagetest holds a behavioural test suite shared by every
// storage.Store implementation, plus helpers for service tests.
package storagetest

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Bobboe/hspriveko/internal/core"
	"github.com/Bobboe/hspriveko/internal/storage"
)

var base = time.Date(2024, time.January, 1, 9, 0, 0, 0, time.UTC)

// Category returns a valid category with the given id and name.
func Category(id, name string, budget int64) core.Category {
	return core.Category{ID: id, Name: name, MonthlyBudget: core.Money{Cents: budget}, CreatedAt: base, UpdatedAt: base}
}

// Expense returns a valid expense dated date (YYYY-MM-DD).
func Expense(id, categoryID, date string, cents int64, created time.Time) core.Expense {
	d, err := core.ParseDate(date)
	if err != nil {
		panic(err)
	}
	return core.Expense{
		ID:         id,
		Amount:     core.Money{Cents: cents},
		CategoryID: categoryID,
		Date:       d,
		Month:      d.YearMonth(),
		CreatedAt:  created,
		UpdatedAt:  created,
	}
}

// Recurring returns an active template starting at start (YYYY-MM).
func Recurring(id, categoryID string, day int, start string, created time.Time) core.RecurringExpense {
	return core.RecurringExpense{
		ID:         id,
		Name:       "template " + id,
		Amount:     core.Money{Cents: 1000},
		CategoryID: categoryID,
		DayOfMonth: day,
		StartMonth: core.MustParseMonth(start),
		Active:     true,
		CreatedAt:  created,
		UpdatedAt:  created,
	}
}

// Run exercises newStore against the storage.Store contract.
func Run(t *testing.T, newStore func(t *testing.T) storage.Store) {
	t.Run("categories", func(t *testing.T) { testCategories(t, newStore(t)) })
	t.Run("expenses", func(t *testing.T) { testExpenses(t, newStore(t)) })
	t.Run("recurring", func(t *testing.T) { testRecurring(t, newStore(t)) })
	t.Run("atomic commit", func(t *testing.T) { testAtomicCommit(t, newStore(t)) })
	t.Run("atomic rollback", func(t *testing.T) { testAtomicRollback(t, newStore(t)) })
}

func testCategories(t *testing.T, s storage.Store) {
	ctx := context.Background()

	require.NoError(t, s.InsertCategory(ctx, Category("c2", "Mat", 500000)))
	require.NoError(t, s.InsertCategory(ctx, Category("c1", "Boende", 0)))
	assert.ErrorIs(t, s.InsertCategory(ctx, Category("c1", "Dup", 1)), storage.ErrDuplicateID)

	list, err := s.ListCategories(ctx)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "Boende", list[0].Name)
	assert.Equal(t, "Mat", list[1].Name)

	c, err := s.GetCategory(ctx, "c2")
	require.NoError(t, err)
	assert.Equal(t, int64(500000), c.MonthlyBudget.Cents)
	assert.True(t, base.Equal(c.CreatedAt))

	c.Name = "Livsmedel"
	c.UpdatedAt = base.Add(time.Hour)
	require.NoError(t, s.UpdateCategory(ctx, c))
	c, err = s.GetCategory(ctx, "c2")
	require.NoError(t, err)
	assert.Equal(t, "Livsmedel", c.Name)
	assert.True(t, base.Add(time.Hour).Equal(c.UpdatedAt))

	err = s.UpdateCategory(ctx, Category("missing", "x", 0))
	assert.ErrorIs(t, err, core.ErrNotFound)

	require.NoError(t, s.DeleteCategory(ctx, "c2"))
	require.NoError(t, s.DeleteCategory(ctx, "c2"), "deleting a missing record is a no-op")
	_, err = s.GetCategory(ctx, "c2")
	assert.ErrorIs(t, err, core.ErrNotFound)
}

func testExpenses(t *testing.T, s storage.Store) {
	ctx := context.Background()

	e1 := Expense("e1", "c1", "2024-01-15", 100, base)
	e2 := Expense("e2", "c2", "2024-01-20", 200, base)
	e3 := Expense("e3", "c1", "2024-01-20", 300, base.Add(time.Minute))
	e4 := Expense("e4", "c1", "2024-02-01", 400, base)
	e4.RecurringID = "r1"
	e4.Note = "Hyra"
	for _, e := range []core.Expense{e1, e2, e3, e4} {
		require.NoError(t, s.InsertExpense(ctx, e))
	}
	assert.ErrorIs(t, s.InsertExpense(ctx, e1), storage.ErrDuplicateID)

	jan := core.MustParseMonth("2024-01")
	list, err := s.ListExpenses(ctx, core.ExpenseQuery{Month: jan})
	require.NoError(t, err)
	var ids []string
	for _, e := range list {
		ids = append(ids, e.ID)
	}
	assert.Equal(t, []string{"e3", "e2", "e1"}, ids, "date desc, then creation desc")

	list, err = s.ListExpenses(ctx, core.ExpenseQuery{Month: jan, CategoryID: "c1"})
	require.NoError(t, err)
	assert.Len(t, list, 2)

	got, err := s.GetExpense(ctx, "e4")
	require.NoError(t, err)
	assert.Equal(t, "r1", got.RecurringID)
	assert.Equal(t, "Hyra", got.Note)
	assert.Equal(t, "2024-02", got.Month.String())

	feb := core.MustParseMonth("2024-02")
	counts := []struct {
		f    core.ExpenseFilter
		want int
	}{
		{core.ExpenseFilter{CategoryID: "c1"}, 3},
		{core.ExpenseFilter{Month: jan, CategoryID: "c1"}, 2},
		{core.ExpenseFilter{Month: feb, RecurringID: "r1"}, 1},
		{core.ExpenseFilter{Month: jan, RecurringID: "r1"}, 0},
		{core.ExpenseFilter{}, 4},
	}
	for i, tc := range counts {
		n, err := s.CountExpenses(ctx, tc.f)
		require.NoError(t, err)
		assert.Equal(t, tc.want, n, "count case %d", i)
	}

	moved := e1
	moved.Date = core.NewDate(2024, time.February, 3)
	moved.Month = moved.Date.YearMonth()
	require.NoError(t, s.UpdateExpense(ctx, moved))
	got, err = s.GetExpense(ctx, "e1")
	require.NoError(t, err)
	assert.Equal(t, "2024-02", got.Month.String())

	assert.ErrorIs(t, s.UpdateExpense(ctx, Expense("nope", "c1", "2024-01-01", 1, base)), core.ErrNotFound)

	require.NoError(t, s.DeleteExpense(ctx, "e1"))
	require.NoError(t, s.DeleteExpense(ctx, "e1"))
	_, err = s.GetExpense(ctx, "e1")
	assert.ErrorIs(t, err, core.ErrNotFound)
}

func testRecurring(t *testing.T, s storage.Store) {
	ctx := context.Background()

	r1 := Recurring("r1", "c1", 31, "2024-01", base.Add(2*time.Minute))
	r2 := Recurring("r2", "c1", 1, "2024-03", base)
	end := core.MustParseMonth("2024-06")
	r2.EndMonth = &end
	r3 := Recurring("r3", "c2", 15, "2024-01", base.Add(time.Minute))
	r3.Active = false
	for _, r := range []core.RecurringExpense{r1, r2, r3} {
		require.NoError(t, s.InsertRecurringExpense(ctx, r))
	}
	assert.ErrorIs(t, s.InsertRecurringExpense(ctx, r1), storage.ErrDuplicateID)

	all, err := s.ListRecurringExpenses(ctx)
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, "r2", all[0].ID, "creation order")
	assert.Equal(t, "r3", all[1].ID)
	assert.Equal(t, "r1", all[2].ID)
	require.NotNil(t, all[0].EndMonth)
	assert.Equal(t, "2024-06", all[0].EndMonth.String())
	assert.Nil(t, all[2].EndMonth)

	active, err := s.ActiveRecurringExpenses(ctx)
	require.NoError(t, err)
	assert.Len(t, active, 2)

	n, err := s.CountRecurringExpenses(ctx, "c1")
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	r2.EndMonth = nil
	r2.Active = false
	require.NoError(t, s.UpdateRecurringExpense(ctx, r2))
	got, err := s.GetRecurringExpense(ctx, "r2")
	require.NoError(t, err)
	assert.Nil(t, got.EndMonth)
	assert.False(t, got.Active)

	err = s.UpdateRecurringExpense(ctx, Recurring("missing", "c1", 1, "2024-01", base))
	var nf *core.NotFoundError
	require.True(t, errors.As(err, &nf))
	assert.Equal(t, core.KindRecurring, nf.Kind)

	require.NoError(t, s.DeleteRecurringExpense(ctx, "r1"))
	_, err = s.GetRecurringExpense(ctx, "r1")
	assert.ErrorIs(t, err, core.ErrNotFound)
}

func testAtomicCommit(t *testing.T, s storage.Store) {
	ctx := context.Background()
	err := s.RunAtomic(ctx, func(tx storage.Tx) error {
		if err := tx.InsertCategory(ctx, Category("c1", "Mat", 0)); err != nil {
			return err
		}
		n, err := tx.CountExpenses(ctx, core.ExpenseFilter{CategoryID: "c1"})
		if err != nil {
			return err
		}
		assert.Zero(t, n)
		return tx.InsertExpense(ctx, Expense("e1", "c1", "2024-01-01", 1, base))
	})
	require.NoError(t, err)

	_, err = s.GetExpense(ctx, "e1")
	assert.NoError(t, err)
}

func testAtomicRollback(t *testing.T, s storage.Store) {
	ctx := context.Background()
	require.NoError(t, s.InsertExpense(ctx, Expense("keep", "c1", "2024-01-01", 1, base)))

	boom := errors.New("boom")
	err := s.RunAtomic(ctx, func(tx storage.Tx) error {
		if err := tx.InsertExpense(ctx, Expense("e1", "c1", "2024-01-02", 1, base)); err != nil {
			return err
		}
		if err := tx.DeleteExpense(ctx, "keep"); err != nil {
			return err
		}
		// Writes are visible inside the transaction.
		n, err := tx.CountExpenses(ctx, core.ExpenseFilter{})
		if err != nil {
			return err
		}
		assert.Equal(t, 1, n)
		return boom
	})
	assert.ErrorIs(t, err, boom)

	_, err = s.GetExpense(ctx, "e1")
	assert.ErrorIs(t, err, core.ErrNotFound, "insert rolled back")
	_, err = s.GetExpense(ctx, "keep")
	assert.NoError(t, err, "delete rolled back")
}
