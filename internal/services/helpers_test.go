package services

import (
	"context"
	"fmt"
	"path/filepath"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/Bobboe/hspriveko/internal/core"
	"github.com/Bobboe/hspriveko/internal/storage"
	"github.com/Bobboe/hspriveko/internal/storage/memory"
	"github.com/Bobboe/hspriveko/internal/storage/sqlite"
)

var fixedNow = time.Date(2024, time.March, 10, 8, 30, 0, 0, time.UTC)

func sequentialIDs(prefix string) func() string {
	var n atomic.Int64
	return func() string { return fmt.Sprintf("%s-%d", prefix, n.Add(1)) }
}

func testOptions() []Option {
	return []Option{
		WithClock(func() time.Time { return fixedNow }),
		WithIDGenerator(sequentialIDs("id")),
	}
}

// stores lists the backends service behaviour is checked against.
var stores = map[string]func(t *testing.T) storage.Store{
	"memory": func(*testing.T) storage.Store { return memory.New() },
	"sqlite": func(t *testing.T) storage.Store {
		repo, err := sqlite.NewSQLiteRepository(filepath.Join(t.TempDir(), "budget.db"))
		require.NoError(t, err)
		t.Cleanup(func() { repo.Close() })
		return repo
	},
}

func forEachStore(t *testing.T, fn func(t *testing.T, store storage.Store)) {
	for name, newStore := range stores {
		t.Run(name, func(t *testing.T) { fn(t, newStore(t)) })
	}
}

func mustCategory(t *testing.T, store storage.Store, id, name string, budget int64) core.Category {
	t.Helper()
	c := core.Category{ID: id, Name: name, MonthlyBudget: core.Money{Cents: budget}, CreatedAt: fixedNow, UpdatedAt: fixedNow}
	require.NoError(t, store.InsertCategory(context.Background(), c))
	return c
}

func mustRecurring(t *testing.T, store storage.Store, r core.RecurringExpense) core.RecurringExpense {
	t.Helper()
	if r.CreatedAt.IsZero() {
		r.CreatedAt, r.UpdatedAt = fixedNow, fixedNow
	}
	require.NoError(t, store.InsertRecurringExpense(context.Background(), r))
	return r
}

func template(id, categoryID string, day int, start string) core.RecurringExpense {
	return core.RecurringExpense{
		ID:         id,
		Name:       "template " + id,
		Amount:     core.Money{Cents: 1000},
		CategoryID: categoryID,
		DayOfMonth: day,
		StartMonth: core.MustParseMonth(start),
		Active:     true,
	}
}

func countGenerated(t *testing.T, store storage.Store, month, recurringID string) int {
	t.Helper()
	n, err := store.CountExpenses(context.Background(), core.ExpenseFilter{
		Month:       core.MustParseMonth(month),
		RecurringID: recurringID,
	})
	require.NoError(t, err)
	return n
}

// recordingPublisher collects published events.
type recordingPublisher struct {
	mu     sync.Mutex
	events []core.ExpenseEvent
	err    error
}

func (p *recordingPublisher) PublishExpenseEvent(_ context.Context, ev core.ExpenseEvent) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, ev)
	return p.err
}

func (p *recordingPublisher) types() []core.ExpenseEventType {
	p.mu.Lock()
	defer p.mu.Unlock()
	var out []core.ExpenseEventType
	for _, ev := range p.events {
		out = append(out, ev.Type)
	}
	return out
}
