package services

import (
	"context"
	"fmt"
	"sort"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/Bobboe/hspriveko/internal/cache"
	"github.com/Bobboe/hspriveko/internal/core"
	"github.com/Bobboe/hspriveko/internal/storage"
)

const (
	DefaultTrendMonths = 6
	topCategoryLimit   = 5
	trendConcurrency   = 4
)

type trendKey struct {
	month core.Month
	n     int
}

// OverviewService computes read-only spending statistics. Results are cached
// until a change to the affected month invalidates them.
type OverviewService struct {
	store     storage.Tx
	overviews *cache.LRUCache[core.Month, core.MonthOverview]
	trends    *cache.LRUCache[trendKey, core.Trend]
}

func NewOverviewService(store storage.Tx, cacheSize int, ttl time.Duration) *OverviewService {
	return &OverviewService{
		store:     store,
		overviews: cache.NewLRUCache[core.Month, core.MonthOverview](cacheSize, ttl),
		trends:    cache.NewLRUCache[trendKey, core.Trend](cacheSize, ttl),
	}
}

// RegisterCaches hands the service caches to m for periodic cleanup.
func (s *OverviewService) RegisterCaches(m *cache.Manager) {
	m.Register(s.overviews)
	m.Register(s.trends)
}

// Month summarizes spending against budget for every category in month.
func (s *OverviewService) Month(ctx context.Context, month core.Month) (core.MonthOverview, error) {
	if ov, ok := s.overviews.Get(month); ok {
		return ov, nil
	}

	cats, err := s.store.ListCategories(ctx)
	if err != nil {
		return core.MonthOverview{}, fmt.Errorf("list categories: %w", err)
	}
	expenses, err := s.store.ListExpenses(ctx, core.ExpenseQuery{Month: month})
	if err != nil {
		return core.MonthOverview{}, fmt.Errorf("list expenses for %s: %w", month, err)
	}

	ov := buildOverview(month, cats, expenses)
	s.overviews.Set(month, ov)
	return ov, nil
}

func buildOverview(month core.Month, cats []core.Category, expenses []core.Expense) core.MonthOverview {
	ov := core.MonthOverview{Month: month, Categories: make([]core.CategorySummary, 0, len(cats))}

	spent := make(map[string]int64)
	for _, e := range expenses {
		spent[e.CategoryID] += e.Amount.Cents
		ov.TotalSpent.Cents += e.Amount.Cents
	}
	for _, c := range cats {
		ov.TotalBudget.Cents += c.MonthlyBudget.Cents
		ov.Categories = append(ov.Categories, core.NewCategorySummary(c, core.Money{Cents: spent[c.ID]}))
	}
	ov.TotalRemaining.Cents = ov.TotalBudget.Cents - ov.TotalSpent.Cents

	top := make([]core.CategorySummary, 0, topCategoryLimit)
	sorted := append([]core.CategorySummary(nil), ov.Categories...)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].Spent.Cents > sorted[j].Spent.Cents })
	for _, c := range sorted {
		if c.Spent.Cents <= 0 || len(top) == topCategoryLimit {
			break
		}
		top = append(top, c)
	}
	ov.Top = top
	return ov
}

// Trend returns total spending for the n months ending at month, oldest
// first. n below 1 means DefaultTrendMonths.
func (s *OverviewService) Trend(ctx context.Context, month core.Month, n int) (core.Trend, error) {
	if n < 1 {
		n = DefaultTrendMonths
	}
	key := trendKey{month: month, n: n}
	if t, ok := s.trends.Get(key); ok {
		return t, nil
	}

	months := core.MonthsBack(month, n)
	points := make([]core.MonthTotal, len(months))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(trendConcurrency)
	for i, m := range months {
		g.Go(func() error {
			list, err := s.store.ListExpenses(gctx, core.ExpenseQuery{Month: m})
			if err != nil {
				return fmt.Errorf("list expenses for %s: %w", m, err)
			}
			var total int64
			for _, e := range list {
				total += e.Amount.Cents
			}
			points[i] = core.MonthTotal{Month: m, Total: core.Money{Cents: total}}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return core.Trend{}, err
	}

	t := core.Trend{Points: points}
	for _, p := range points {
		if p.Total.Cents > t.Max.Cents {
			t.Max = p.Total
		}
	}
	s.trends.Set(key, t)
	return t, nil
}

// Invalidate drops cached results that include month.
func (s *OverviewService) Invalidate(month core.Month) {
	s.overviews.Delete(month)
	s.trends.Clear()
}

func (s *OverviewService) InvalidateAll() {
	s.overviews.Clear()
	s.trends.Clear()
}

// PublishExpenseEvent lets the service sit in a Publishers chain so every
// committed expense change invalidates the months it touched.
func (s *OverviewService) PublishExpenseEvent(_ context.Context, ev core.ExpenseEvent) error {
	s.Invalidate(ev.Month)
	if ev.PreviousMonth != nil {
		s.Invalidate(*ev.PreviousMonth)
	}
	return nil
}
