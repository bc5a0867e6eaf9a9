package core

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func ptr[T any](v T) *T { return &v }

func TestCategoryPatchApply(t *testing.T) {
	cur := Category{ID: "c1", Name: "Mat", MonthlyBudget: Money{Cents: 500000}, CreatedAt: testNow, UpdatedAt: testNow}
	later := testNow.Add(time.Hour)

	next, err := CategoryPatch{MonthlyBudget: &Money{Cents: 0}}.Apply(cur, later)
	require.NoError(t, err)
	assert.Equal(t, "Mat", next.Name)
	assert.Equal(t, int64(0), next.MonthlyBudget.Cents)
	assert.Equal(t, testNow, next.CreatedAt)
	assert.Equal(t, later, next.UpdatedAt)
	assert.Equal(t, "c1", next.ID)

	_, err = CategoryPatch{Name: ptr("  ")}.Apply(cur, later)
	assert.ErrorIs(t, err, ErrNameRequired)
}

func TestExpensePatchRecomputesMonth(t *testing.T) {
	cur, err := NewExpense(ExpenseInput{Amount: Money{Cents: 100}, CategoryID: "c1", Date: "2024-01-15"}, "e1", testNow)
	require.NoError(t, err)
	require.Equal(t, "2024-01", cur.Month.String())

	next, err := ExpensePatch{Date: ptr("2024-02-03")}.Apply(cur, testNow.Add(time.Minute))
	require.NoError(t, err)
	assert.Equal(t, "2024-02-03", next.Date.String())
	assert.Equal(t, "2024-02", next.Month.String())

	_, err = ExpensePatch{Date: ptr("2024-02-31")}.Apply(cur, testNow)
	assert.ErrorIs(t, err, ErrInvalidDate)

	_, err = ExpensePatch{Amount: &Money{Cents: 0}}.Apply(cur, testNow)
	assert.ErrorIs(t, err, ErrInvalidAmount)

	next, err = ExpensePatch{Note: ptr(" ")}.Apply(cur, testNow)
	require.NoError(t, err)
	assert.Empty(t, next.Note)
}

func TestRecurringPatchRevalidatesMergedRecord(t *testing.T) {
	cur := RecurringExpense{
		ID:         "r1",
		Name:       "Gym",
		Amount:     Money{Cents: 39900},
		CategoryID: "c1",
		DayOfMonth: 1,
		StartMonth: MustParseMonth("2024-03"),
		EndMonth:   monthPtr("2024-12"),
		Active:     true,
		CreatedAt:  testNow,
	}

	next, err := RecurringPatch{DayOfMonth: ptr(31)}.Apply(cur, testNow)
	require.NoError(t, err)
	assert.Equal(t, 31, next.DayOfMonth)
	assert.Equal(t, "2024-12", next.EndMonth.String())

	_, err = RecurringPatch{DayOfMonth: ptr(40)}.Apply(cur, testNow)
	assert.ErrorIs(t, err, ErrInvalidDay)

	// Only the end month changes, yet the merged range is checked against the existing start.
	_, err = RecurringPatch{EndMonth: ptr("2024-02")}.Apply(cur, testNow)
	assert.ErrorIs(t, err, ErrEndBeforeStart)

	_, err = RecurringPatch{StartMonth: ptr("2025-01")}.Apply(cur, testNow)
	assert.ErrorIs(t, err, ErrEndBeforeStart)

	next, err = RecurringPatch{EndMonth: ptr("")}.Apply(cur, testNow)
	require.NoError(t, err)
	assert.Nil(t, next.EndMonth)

	next, err = RecurringPatch{Active: ptr(false)}.Apply(cur, testNow)
	require.NoError(t, err)
	assert.False(t, next.Active)
	assert.True(t, cur.Active, "current record is not mutated")
}

func TestCategorySummary(t *testing.T) {
	c := Category{ID: "c1", Name: "Mat", MonthlyBudget: Money{Cents: 1000}}
	s := NewCategorySummary(c, Money{Cents: 250})
	assert.InDelta(t, 0.25, s.Ratio, 1e-9)
	assert.Equal(t, int64(750), s.Remaining.Cents)
	assert.False(t, s.Over)

	s = NewCategorySummary(c, Money{Cents: 1500})
	assert.Equal(t, 1.0, s.Ratio)
	assert.True(t, s.Over)
	assert.Equal(t, int64(-500), s.Remaining.Cents)

	s = NewCategorySummary(Category{ID: "c2"}, Money{Cents: 10})
	assert.Zero(t, s.Ratio)
	assert.False(t, s.Over)
}
