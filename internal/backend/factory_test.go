package backend

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Bobboe/hspriveko/internal/config"
	"github.com/Bobboe/hspriveko/internal/core"
)

func testConfig(t BackendType) Config {
	return Config{
		Type:              t,
		OverviewCacheSize: 10,
		OverviewCacheTTL:  time.Minute,
	}
}

func TestFromAppConfig(t *testing.T) {
	_, err := FromAppConfig(nil)
	assert.Error(t, err)

	app := &config.Config{DataBackend: "postgres"}
	_, err = FromAppConfig(app)
	assert.Error(t, err)

	app = &config.Config{
		DataBackend:       "sqlite",
		SQLiteDBPath:      "./x.db",
		AMQPRoutingKey:    "events",
		OverviewCacheSize: 5,
		OverviewCacheTTL:  time.Second,
		SeedFile:          "seed.yaml",
	}
	cfg, err := FromAppConfig(app)
	require.NoError(t, err)
	assert.Equal(t, SQLiteBackend, cfg.Type)
	assert.Equal(t, "./x.db", cfg.SQLiteDBPath)
	assert.Equal(t, "events", cfg.AMQPRoutingKey)
	assert.Equal(t, "seed.yaml", cfg.SeedFile)
}

func TestConfigValidate(t *testing.T) {
	cfg := testConfig(SQLiteBackend)
	assert.Error(t, cfg.Validate(), "sqlite needs a path")

	cfg = testConfig(MemoryBackend)
	assert.NoError(t, cfg.Validate())

	cfg.OverviewCacheSize = 0
	assert.Error(t, cfg.Validate())

	assert.Equal(t, []string{"sqlite", "memory"}, GetBackendTypeStrings())
}

func TestCreateMemoryBackend(t *testing.T) {
	ctx := context.Background()
	b, err := NewFactory(nil).CreateBackend(ctx, testConfig(MemoryBackend))
	require.NoError(t, err)
	defer b.Close()

	assert.Nil(t, b.Events())

	cat, err := b.Categories.Add(ctx, core.CategoryInput{Name: "Mat", MonthlyBudget: core.Money{Cents: 1000}})
	require.NoError(t, err)

	march := core.MustParseMonth("2024-03")
	ov, err := b.Overview.Month(ctx, march)
	require.NoError(t, err)
	require.Zero(t, ov.TotalSpent.Cents)

	_, err = b.Expenses.Add(ctx, core.ExpenseInput{Amount: core.Money{Cents: 250}, CategoryID: cat.ID, Date: "2024-03-04"})
	require.NoError(t, err)

	ov, err = b.Overview.Month(ctx, march)
	require.NoError(t, err)
	assert.Equal(t, int64(250), ov.TotalSpent.Cents, "expense writes reach the overview cache")
}

func TestCreateSQLiteBackendWithSeed(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	seedPath := filepath.Join(dir, "seed.yaml")
	require.NoError(t, os.WriteFile(seedPath, []byte(`
categories:
  - name: Boende
    monthlyBudget: "9000"
recurring:
  - name: Hyra
    amount: "8500"
    category: Boende
    dayOfMonth: 31
    startMonth: "2024-01"
`), 0o644))

	cfg := testConfig(SQLiteBackend)
	cfg.SQLiteDBPath = filepath.Join(dir, "nested", "budget.db")
	cfg.SeedFile = seedPath

	b, err := NewFactory(nil).CreateBackend(ctx, cfg)
	require.NoError(t, err)

	res, err := b.Recurring.GenerateForMonth(ctx, "2024-02")
	require.NoError(t, err)
	assert.Equal(t, 1, res.Created)

	list, err := b.Expenses.ListByMonth(ctx, core.MustParseMonth("2024-02"), "")
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "2024-02-29", list[0].Date.String())
	require.NoError(t, b.Close())

	// Reopening applies the seed again without duplicating anything.
	b, err = NewFactory(nil).CreateBackend(ctx, cfg)
	require.NoError(t, err)
	defer b.Close()

	cats, err := b.Categories.List(ctx)
	require.NoError(t, err)
	assert.Len(t, cats, 1)
	templates, err := b.Recurring.List(ctx)
	require.NoError(t, err)
	assert.Len(t, templates, 1)
}

func TestCreateBackendBadSeed(t *testing.T) {
	cfg := testConfig(MemoryBackend)
	cfg.SeedFile = filepath.Join(t.TempDir(), "missing.yaml")

	_, err := NewFactory(nil).CreateBackend(context.Background(), cfg)
	assert.Error(t, err)
}
