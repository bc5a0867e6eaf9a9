package services

import (
	"context"
	"fmt"

	"github.com/Bobboe/hspriveko/internal/core"
	"github.com/Bobboe/hspriveko/internal/storage"
)

// Invalidator drops derived data after category changes.
type Invalidator interface {
	InvalidateAll()
}

type CategoryService struct {
	base
	store       storage.Store
	invalidator Invalidator
}

func NewCategoryService(store storage.Store, invalidator Invalidator, opts ...Option) *CategoryService {
	return &CategoryService{base: newBase(opts), store: store, invalidator: invalidator}
}

func (s *CategoryService) List(ctx context.Context) ([]core.Category, error) {
	cats, err := s.store.ListCategories(ctx)
	if err != nil {
		return nil, fmt.Errorf("list categories: %w", err)
	}
	return cats, nil
}

func (s *CategoryService) Get(ctx context.Context, id string) (core.Category, error) {
	return s.store.GetCategory(ctx, id)
}

func (s *CategoryService) Add(ctx context.Context, in core.CategoryInput) (core.Category, error) {
	c, err := core.NewCategory(in, s.newID(), s.now())
	if err != nil {
		return core.Category{}, err
	}
	if err := s.store.InsertCategory(ctx, c); err != nil {
		return core.Category{}, fmt.Errorf("add category: %w", err)
	}
	s.invalidate()
	return c, nil
}

// Update merges patch onto the stored category and re-validates it.
func (s *CategoryService) Update(ctx context.Context, id string, patch core.CategoryPatch) (core.Category, error) {
	var next core.Category
	err := s.store.RunAtomic(ctx, func(tx storage.Tx) error {
		cur, err := tx.GetCategory(ctx, id)
		if err != nil {
			return err
		}
		next, err = patch.Apply(cur, s.now())
		if err != nil {
			return err
		}
		return tx.UpdateCategory(ctx, next)
	})
	if err != nil {
		return core.Category{}, wrapStorage("update category", err)
	}
	s.invalidate()
	return next, nil
}

// Delete removes the category unless an expense or a recurring template
// still references it. The check and the delete run atomically.
func (s *CategoryService) Delete(ctx context.Context, id string) error {
	err := s.store.RunAtomic(ctx, func(tx storage.Tx) error {
		n, err := tx.CountExpenses(ctx, core.ExpenseFilter{CategoryID: id})
		if err != nil {
			return fmt.Errorf("count expenses: %w", err)
		}
		if n > 0 {
			return core.ErrCategoryHasExpenses
		}

		n, err = tx.CountRecurringExpenses(ctx, id)
		if err != nil {
			return fmt.Errorf("count recurring expenses: %w", err)
		}
		if n > 0 {
			return core.ErrCategoryHasRecurring
		}

		return tx.DeleteCategory(ctx, id)
	})
	if err != nil {
		return wrapStorage("delete category", err)
	}
	s.invalidate()
	return nil
}

func (s *CategoryService) invalidate() {
	if s.invalidator != nil {
		s.invalidator.InvalidateAll()
	}
}
