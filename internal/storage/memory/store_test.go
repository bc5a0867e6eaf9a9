package memory

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Bobboe/hspriveko/internal/core"
	"github.com/Bobboe/hspriveko/internal/storage"
	"github.com/Bobboe/hspriveko/internal/storage/storagetest"
)

func TestMemoryStoreContract(t *testing.T) {
	storagetest.Run(t, func(*testing.T) storage.Store { return New() })
}

func TestRollbackRestoresEndMonth(t *testing.T) {
	s := New()
	ctx := context.Background()

	r := storagetest.Recurring("r1", "c1", 1, "2024-01", time.Date(2024, time.January, 1, 0, 0, 0, 0, time.UTC))
	end := core.MustParseMonth("2024-06")
	r.EndMonth = &end
	require.NoError(t, s.InsertRecurringExpense(ctx, r))

	err := s.RunAtomic(ctx, func(tx storage.Tx) error {
		changed := r
		changed.EndMonth = nil
		changed.Name = "changed"
		if err := tx.UpdateRecurringExpense(ctx, changed); err != nil {
			return err
		}
		return storagetest.ErrInjected
	})
	require.ErrorIs(t, err, storagetest.ErrInjected)

	got, err := s.GetRecurringExpense(ctx, "r1")
	require.NoError(t, err)
	assert.Equal(t, "template r1", got.Name)
	require.NotNil(t, got.EndMonth)
	assert.Equal(t, "2024-06", got.EndMonth.String())
}
