package main

import (
	"bytes"
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Bobboe/hspriveko/internal/backend"
	"github.com/Bobboe/hspriveko/internal/core"
	applog "github.com/Bobboe/hspriveko/internal/log"
)

func TestRunWorkerGeneratesCurrentMonthOnce(t *testing.T) {
	ctx := context.Background()
	b, err := backend.NewFactory(nil).CreateBackend(ctx, backend.Config{
		Type:              backend.MemoryBackend,
		OverviewCacheSize: 10,
		OverviewCacheTTL:  time.Minute,
	})
	require.NoError(t, err)
	defer b.Close()

	cat, err := b.Categories.Add(ctx, core.CategoryInput{Name: "Boende"})
	require.NoError(t, err)
	_, err = b.Recurring.Add(ctx, core.RecurringInput{
		Name:       "Hyra",
		Amount:     core.Money{Cents: 850000},
		CategoryID: cat.ID,
		DayOfMonth: 31,
		StartMonth: "2024-01",
	})
	require.NoError(t, err)

	var buf bytes.Buffer
	logger := applog.New(applog.Config{Level: applog.ParseLevel("info"), Component: applog.ComponentWorker, Output: &buf})
	now := func() time.Time { return time.Date(2024, 2, 10, 8, 0, 0, 0, time.UTC) }

	runCtx, cancel := context.WithTimeout(ctx, 120*time.Millisecond)
	defer cancel()
	runWorker(runCtx, b, logger, 20*time.Millisecond, now)

	list, err := b.Expenses.ListByMonth(ctx, core.MustParseMonth("2024-02"), "")
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "2024-02-29", list[0].Date.String())

	assert.Contains(t, buf.String(), "created=1")
	assert.Contains(t, buf.String(), "created=0")
	assert.Contains(t, buf.String(), "Recurring worker stopped")
}
