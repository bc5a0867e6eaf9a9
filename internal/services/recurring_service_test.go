package services

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Bobboe/hspriveko/internal/core"
	"github.com/Bobboe/hspriveko/internal/storage/memory"
)

func newRecurringFixture(t *testing.T) (*RecurringService, *memory.Store, *recordingPublisher) {
	t.Helper()
	store := memory.New()
	mustCategory(t, store, "boende", "Boende", 900000)
	pub := &recordingPublisher{}
	opts := append(testOptions(), WithPublisher(pub))
	gen := NewRecurringGenerator(store, opts...)
	return NewRecurringService(store, gen, opts...), store, pub
}

func TestRecurringServiceAddValidates(t *testing.T) {
	ctx := context.Background()
	svc, _, _ := newRecurringFixture(t)

	r, err := svc.Add(ctx, core.RecurringInput{
		Name: "Hyra", Amount: core.Money{Cents: 850000}, CategoryID: "boende", DayOfMonth: 31, StartMonth: "2024-01",
	})
	require.NoError(t, err)
	assert.True(t, r.Active)

	_, err = svc.Add(ctx, core.RecurringInput{
		Name: "Hyra", Amount: core.Money{Cents: 850000}, CategoryID: "nowhere", DayOfMonth: 1, StartMonth: "2024-01",
	})
	assert.ErrorIs(t, err, core.ErrUnknownCategory)

	_, err = svc.Add(ctx, core.RecurringInput{
		Name: "Hyra", Amount: core.Money{Cents: 850000}, CategoryID: "boende", DayOfMonth: 1, StartMonth: "2024-05", EndMonth: "2024-04",
	})
	assert.ErrorIs(t, err, core.ErrEndBeforeStart)

	list, err := svc.List(ctx)
	require.NoError(t, err)
	assert.Len(t, list, 1)
}

func TestRecurringServiceUpdate(t *testing.T) {
	ctx := context.Background()
	svc, store, _ := newRecurringFixture(t)
	r := mustRecurring(t, store, template("r1", "boende", 1, "2024-03"))

	day := 28
	updated, err := svc.Update(ctx, r.ID, core.RecurringPatch{DayOfMonth: &day})
	require.NoError(t, err)
	assert.Equal(t, 28, updated.DayOfMonth)
	assert.Equal(t, fixedNow, updated.UpdatedAt)

	end := "2024-01"
	_, err = svc.Update(ctx, r.ID, core.RecurringPatch{EndMonth: &end})
	assert.ErrorIs(t, err, core.ErrEndBeforeStart)

	_, err = svc.Update(ctx, "gone", core.RecurringPatch{DayOfMonth: &day})
	var nf *core.NotFoundError
	require.True(t, errors.As(err, &nf))
	assert.Equal(t, "recurring expense", nf.Kind)
	assert.Equal(t, "gone", nf.ID)

	paused, err := svc.SetActive(ctx, r.ID, false)
	require.NoError(t, err)
	assert.False(t, paused.Active)

	stored, err := store.GetRecurringExpense(ctx, r.ID)
	require.NoError(t, err)
	assert.False(t, stored.Active)
	assert.Equal(t, 28, stored.DayOfMonth)
}

func TestRecurringServiceDeleteDoesNotCascade(t *testing.T) {
	ctx := context.Background()
	svc, store, pub := newRecurringFixture(t)
	r := mustRecurring(t, store, template("r1", "boende", 1, "2024-01"))

	res, err := svc.GenerateForMonth(ctx, "2024-01")
	require.NoError(t, err)
	require.Equal(t, 1, res.Created)
	assert.Equal(t, []core.ExpenseEventType{core.ExpenseGenerated}, pub.types())

	require.NoError(t, svc.Delete(ctx, r.ID))
	require.NoError(t, svc.Delete(ctx, r.ID))

	assert.Equal(t, 1, countGenerated(t, store, "2024-01", r.ID))
}
