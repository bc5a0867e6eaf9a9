package services

import (
	"context"
	"fmt"

	"github.com/Bobboe/hspriveko/internal/core"
	"github.com/Bobboe/hspriveko/internal/storage"
)

// GenerationResult reports one GenerateForMonth call.
type GenerationResult struct {
	Created  int            `json:"created"`
	Eligible int            `json:"eligible"`
	Expenses []core.Expense `json:"-"`
}

// RecurringGenerator materializes recurring templates into expenses.
type RecurringGenerator struct {
	base
	store storage.Store
}

func NewRecurringGenerator(store storage.Store, opts ...Option) *RecurringGenerator {
	return &RecurringGenerator{base: newBase(opts), store: store}
}

// GenerateForMonth creates at most one expense per eligible template for
// month (YYYY-MM). Templates that already have an expense in month are
// counted as eligible but skipped, so repeated calls never duplicate.
//
// Everything runs in one atomic unit: on any storage error no expense from
// this call is persisted. A malformed month matches no template and yields
// a zero result without error. Out-of-range months such as "2024-13" count
// as malformed.
func (g *RecurringGenerator) GenerateForMonth(ctx context.Context, month string) (GenerationResult, error) {
	m, err := core.ParseMonth(month)
	if err != nil {
		return GenerationResult{}, nil
	}

	now := g.now()
	var res GenerationResult
	err = g.store.RunAtomic(ctx, func(tx storage.Tx) error {
		res = GenerationResult{}

		templates, err := tx.ActiveRecurringExpenses(ctx)
		if err != nil {
			return fmt.Errorf("list active recurring expenses: %w", err)
		}

		for _, r := range templates {
			if !r.EligibleFor(m) {
				continue
			}
			res.Eligible++

			n, err := tx.CountExpenses(ctx, core.ExpenseFilter{Month: m, RecurringID: r.ID})
			if err != nil {
				return fmt.Errorf("count expenses for template %s: %w", r.ID, err)
			}
			if n > 0 {
				continue
			}

			e := r.Materialize(m, g.newID(), now)
			if err := tx.InsertExpense(ctx, e); err != nil {
				return fmt.Errorf("insert expense for template %s: %w", r.ID, err)
			}
			res.Expenses = append(res.Expenses, e)
		}
		res.Created = len(res.Expenses)
		return nil
	})
	if err != nil {
		return GenerationResult{}, fmt.Errorf("generate recurring expenses for %s: %w", m, err)
	}
	return res, nil
}
