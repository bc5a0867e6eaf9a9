package services

import (
	"context"
	"fmt"

	"github.com/Bobboe/hspriveko/internal/core"
	"github.com/Bobboe/hspriveko/internal/storage"
)

// RecurringService manages recurring templates and triggers generation.
type RecurringService struct {
	base
	store     storage.Store
	generator *RecurringGenerator
}

func NewRecurringService(store storage.Store, generator *RecurringGenerator, opts ...Option) *RecurringService {
	return &RecurringService{base: newBase(opts), store: store, generator: generator}
}

// List returns every template in creation order.
func (s *RecurringService) List(ctx context.Context) ([]core.RecurringExpense, error) {
	list, err := s.store.ListRecurringExpenses(ctx)
	if err != nil {
		return nil, fmt.Errorf("list recurring expenses: %w", err)
	}
	return list, nil
}

func (s *RecurringService) Get(ctx context.Context, id string) (core.RecurringExpense, error) {
	return s.store.GetRecurringExpense(ctx, id)
}

func (s *RecurringService) Add(ctx context.Context, in core.RecurringInput) (core.RecurringExpense, error) {
	r, err := core.NewRecurringExpense(in, s.newID(), s.now())
	if err != nil {
		return core.RecurringExpense{}, err
	}

	err = s.store.RunAtomic(ctx, func(tx storage.Tx) error {
		if err := requireCategory(ctx, tx, r.CategoryID); err != nil {
			return err
		}
		return tx.InsertRecurringExpense(ctx, r)
	})
	if err != nil {
		return core.RecurringExpense{}, wrapStorage("add recurring expense", err)
	}
	return r, nil
}

// Update merges patch onto the stored template and re-validates the merged
// record, so a change to one field is still checked against the others.
func (s *RecurringService) Update(ctx context.Context, id string, patch core.RecurringPatch) (core.RecurringExpense, error) {
	var next core.RecurringExpense
	err := s.store.RunAtomic(ctx, func(tx storage.Tx) error {
		cur, err := tx.GetRecurringExpense(ctx, id)
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
		return tx.UpdateRecurringExpense(ctx, next)
	})
	if err != nil {
		return core.RecurringExpense{}, wrapStorage("update recurring expense", err)
	}
	return next, nil
}

// SetActive pauses or resumes a template.
func (s *RecurringService) SetActive(ctx context.Context, id string, active bool) (core.RecurringExpense, error) {
	return s.Update(ctx, id, core.RecurringPatch{Active: &active})
}

// Delete removes the template. Expenses it already generated are kept.
func (s *RecurringService) Delete(ctx context.Context, id string) error {
	if err := s.store.DeleteRecurringExpense(ctx, id); err != nil {
		return fmt.Errorf("delete recurring expense: %w", err)
	}
	return nil
}

// GenerateForMonth materializes month and announces each created expense.
func (s *RecurringService) GenerateForMonth(ctx context.Context, month string) (GenerationResult, error) {
	res, err := s.generator.GenerateForMonth(ctx, month)
	if err != nil {
		return res, err
	}
	at := s.now()
	for _, e := range res.Expenses {
		s.publish(ctx, core.NewExpenseEvent(core.ExpenseGenerated, e, at))
	}
	return res, nil
}
