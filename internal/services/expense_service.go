package services

import (
	"context"
	"fmt"

	"github.com/Bobboe/hspriveko/internal/core"
	"github.com/Bobboe/hspriveko/internal/storage"
)

// ExpenseService is the validated write boundary for expenses. Committed
// changes are announced through the configured EventPublisher.
type ExpenseService struct {
	base
	store storage.Store
}

func NewExpenseService(store storage.Store, opts ...Option) *ExpenseService {
	return &ExpenseService{base: newBase(opts), store: store}
}

// ListByMonth returns the month's expenses, newest first, optionally
// restricted to one category.
func (s *ExpenseService) ListByMonth(ctx context.Context, month core.Month, categoryID string) ([]core.Expense, error) {
	list, err := s.store.ListExpenses(ctx, core.ExpenseQuery{Month: month, CategoryID: categoryID})
	if err != nil {
		return nil, fmt.Errorf("list expenses for %s: %w", month, err)
	}
	return list, nil
}

func (s *ExpenseService) Get(ctx context.Context, id string) (core.Expense, error) {
	return s.store.GetExpense(ctx, id)
}

func (s *ExpenseService) Add(ctx context.Context, in core.ExpenseInput) (core.Expense, error) {
	e, err := core.NewExpense(in, s.newID(), s.now())
	if err != nil {
		return core.Expense{}, err
	}

	err = s.store.RunAtomic(ctx, func(tx storage.Tx) error {
		if err := requireCategory(ctx, tx, e.CategoryID); err != nil {
			return err
		}
		return tx.InsertExpense(ctx, e)
	})
	if err != nil {
		return core.Expense{}, wrapStorage("add expense", err)
	}

	s.publish(ctx, core.NewExpenseEvent(core.ExpenseCreated, e, s.now()))
	return e, nil
}

// Update merges patch onto the stored expense; the month follows the date.
func (s *ExpenseService) Update(ctx context.Context, id string, patch core.ExpensePatch) (core.Expense, error) {
	var cur, next core.Expense
	err := s.store.RunAtomic(ctx, func(tx storage.Tx) error {
		var err error
		cur, err = tx.GetExpense(ctx, id)
		if err != nil {
			return err
		}
		next, err = patch.Apply(cur, s.now())
		if err != nil {
			return err
		}
		if patch.TouchesCategory() && next.CategoryID != cur.CategoryID {
			if err := requireCategory(ctx, tx, next.CategoryID); err != nil {
				return err
			}
		}
		return tx.UpdateExpense(ctx, next)
	})
	if err != nil {
		return core.Expense{}, wrapStorage("update expense", err)
	}

	ev := core.NewExpenseEvent(core.ExpenseUpdated, next, s.now())
	if cur.Month != next.Month {
		prev := cur.Month
		ev.PreviousMonth = &prev
	}
	s.publish(ctx, ev)
	return next, nil
}

// Delete removes the expense. Deleting a missing expense is a no-op.
func (s *ExpenseService) Delete(ctx context.Context, id string) error {
	var gone core.Expense
	found := false
	err := s.store.RunAtomic(ctx, func(tx storage.Tx) error {
		e, err := tx.GetExpense(ctx, id)
		if isNotFound(err) {
			return nil
		}
		if err != nil {
			return err
		}
		gone, found = e, true
		return tx.DeleteExpense(ctx, id)
	})
	if err != nil {
		return wrapStorage("delete expense", err)
	}

	if found {
		s.publish(ctx, core.NewExpenseEvent(core.ExpenseDeleted, gone, s.now()))
	}
	return nil
}
