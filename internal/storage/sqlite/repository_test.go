package sqlite

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Bobboe/hspriveko/internal/core"
	"github.com/Bobboe/hspriveko/internal/storage"
	"github.com/Bobboe/hspriveko/internal/storage/storagetest"
)

func newTestRepo(t *testing.T) *SQLiteRepository {
	t.Helper()
	repo, err := NewSQLiteRepository(filepath.Join(t.TempDir(), "data", "budget.db"))
	require.NoError(t, err)
	t.Cleanup(func() { repo.Close() })
	return repo
}

func TestSQLiteRepositoryContract(t *testing.T) {
	storagetest.Run(t, func(t *testing.T) storage.Store {
		return newTestRepo(t)
	})
}

func TestRunMigrationsIsIdempotent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "budget.db")

	v, err := RunMigrations(path)
	require.NoError(t, err)
	assert.Equal(t, uint(2), v)

	v, err = RunMigrations(path)
	require.NoError(t, err)
	assert.Equal(t, uint(2), v)
}

func TestReopenKeepsData(t *testing.T) {
	path := filepath.Join(t.TempDir(), "budget.db")
	ctx := context.Background()

	repo, err := NewSQLiteRepository(path)
	require.NoError(t, err)
	require.NoError(t, repo.InsertCategory(ctx, storagetest.Category("c1", "Mat", 500000)))
	require.NoError(t, repo.Close())

	repo, err = NewSQLiteRepository(path)
	require.NoError(t, err)
	defer repo.Close()

	c, err := repo.GetCategory(ctx, "c1")
	require.NoError(t, err)
	assert.Equal(t, "Mat", c.Name)
	assert.NoError(t, repo.Ping(ctx))
}

func TestManualExpenseHasNoRecurringID(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	require.NoError(t, repo.InsertExpense(ctx, storagetest.Expense("e1", "c1", "2024-03-01", 100, time.Now())))

	n, err := repo.CountExpenses(ctx, core.ExpenseFilter{Month: core.MustParseMonth("2024-03"), RecurringID: "r1"})
	require.NoError(t, err)
	assert.Zero(t, n)

	e, err := repo.GetExpense(ctx, "e1")
	require.NoError(t, err)
	assert.Empty(t, e.RecurringID)
}
