// Package memory is a process-local storage.Store used for tests and for the
// "memory" data backend.
package memory

import (
	"context"
	"log/slog"
	"sort"
	"sync"

	"github.com/Bobboe/hspriveko/internal/core"
	"github.com/Bobboe/hspriveko/internal/storage"
)

type data struct {
	categories map[string]core.Category
	expenses   map[string]core.Expense
	recurring  map[string]core.RecurringExpense
}

func newData() *data {
	return &data{
		categories: make(map[string]core.Category),
		expenses:   make(map[string]core.Expense),
		recurring:  make(map[string]core.RecurringExpense),
	}
}

func (d *data) clone() *data {
	c := newData()
	for k, v := range d.categories {
		c.categories[k] = v
	}
	for k, v := range d.expenses {
		c.expenses[k] = v
	}
	for k, v := range d.recurring {
		if v.EndMonth != nil {
			end := *v.EndMonth
			v.EndMonth = &end
		}
		c.recurring[k] = v
	}
	return c
}

// Store keeps all records in maps guarded by a single mutex.
type Store struct {
	mu sync.Mutex
	d  *data
}

var _ storage.Store = (*Store)(nil)

func New() *Store {
	return &Store{d: newData()}
}

func (s *Store) Close() error { return nil }

// RunAtomic holds the store lock for the whole of fn. fn works on the live
// data; if it fails, the snapshot taken beforehand is restored.
func (s *Store) RunAtomic(ctx context.Context, fn func(tx storage.Tx) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	snapshot := s.d.clone()
	if err := fn(&view{d: s.d}); err != nil {
		s.d = snapshot
		slog.DebugContext(ctx, "Memory transaction rolled back", "error", err)
		return err
	}
	return nil
}

// locked runs fn on the current data under the store lock.
func (s *Store) locked(fn func(v *view) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return fn(&view{d: s.d})
}

func (s *Store) ListCategories(ctx context.Context) (out []core.Category, err error) {
	err = s.locked(func(v *view) error {
		out, err = v.ListCategories(ctx)
		return err
	})
	return out, err
}

func (s *Store) GetCategory(ctx context.Context, id string) (c core.Category, err error) {
	err = s.locked(func(v *view) error {
		c, err = v.GetCategory(ctx, id)
		return err
	})
	return c, err
}

func (s *Store) InsertCategory(ctx context.Context, c core.Category) error {
	return s.locked(func(v *view) error { return v.InsertCategory(ctx, c) })
}

func (s *Store) UpdateCategory(ctx context.Context, c core.Category) error {
	return s.locked(func(v *view) error { return v.UpdateCategory(ctx, c) })
}

func (s *Store) DeleteCategory(ctx context.Context, id string) error {
	return s.locked(func(v *view) error { return v.DeleteCategory(ctx, id) })
}

func (s *Store) ListExpenses(ctx context.Context, q core.ExpenseQuery) (out []core.Expense, err error) {
	err = s.locked(func(v *view) error {
		out, err = v.ListExpenses(ctx, q)
		return err
	})
	return out, err
}

func (s *Store) GetExpense(ctx context.Context, id string) (e core.Expense, err error) {
	err = s.locked(func(v *view) error {
		e, err = v.GetExpense(ctx, id)
		return err
	})
	return e, err
}

func (s *Store) InsertExpense(ctx context.Context, e core.Expense) error {
	return s.locked(func(v *view) error { return v.InsertExpense(ctx, e) })
}

func (s *Store) UpdateExpense(ctx context.Context, e core.Expense) error {
	return s.locked(func(v *view) error { return v.UpdateExpense(ctx, e) })
}

func (s *Store) DeleteExpense(ctx context.Context, id string) error {
	return s.locked(func(v *view) error { return v.DeleteExpense(ctx, id) })
}

func (s *Store) CountExpenses(ctx context.Context, f core.ExpenseFilter) (n int, err error) {
	err = s.locked(func(v *view) error {
		n, err = v.CountExpenses(ctx, f)
		return err
	})
	return n, err
}

func (s *Store) ListRecurringExpenses(ctx context.Context) (out []core.RecurringExpense, err error) {
	err = s.locked(func(v *view) error {
		out, err = v.ListRecurringExpenses(ctx)
		return err
	})
	return out, err
}

func (s *Store) ActiveRecurringExpenses(ctx context.Context) (out []core.RecurringExpense, err error) {
	err = s.locked(func(v *view) error {
		out, err = v.ActiveRecurringExpenses(ctx)
		return err
	})
	return out, err
}

func (s *Store) GetRecurringExpense(ctx context.Context, id string) (r core.RecurringExpense, err error) {
	err = s.locked(func(v *view) error {
		r, err = v.GetRecurringExpense(ctx, id)
		return err
	})
	return r, err
}

func (s *Store) InsertRecurringExpense(ctx context.Context, r core.RecurringExpense) error {
	return s.locked(func(v *view) error { return v.InsertRecurringExpense(ctx, r) })
}

func (s *Store) UpdateRecurringExpense(ctx context.Context, r core.RecurringExpense) error {
	return s.locked(func(v *view) error { return v.UpdateRecurringExpense(ctx, r) })
}

func (s *Store) DeleteRecurringExpense(ctx context.Context, id string) error {
	return s.locked(func(v *view) error { return v.DeleteRecurringExpense(ctx, id) })
}

func (s *Store) CountRecurringExpenses(ctx context.Context, categoryID string) (n int, err error) {
	err = s.locked(func(v *view) error {
		n, err = v.CountRecurringExpenses(ctx, categoryID)
		return err
	})
	return n, err
}

// view implements storage.Tx over data without any locking; callers hold
// the store lock.
type view struct {
	d *data
}

func (v *view) ListCategories(context.Context) ([]core.Category, error) {
	out := make([]core.Category, 0, len(v.d.categories))
	for _, c := range v.d.categories {
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Name != out[j].Name {
			return out[i].Name < out[j].Name
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}

func (v *view) GetCategory(_ context.Context, id string) (core.Category, error) {
	c, ok := v.d.categories[id]
	if !ok {
		return core.Category{}, &core.NotFoundError{Kind: core.KindCategory, ID: id}
	}
	return c, nil
}

func (v *view) InsertCategory(_ context.Context, c core.Category) error {
	if _, ok := v.d.categories[c.ID]; ok {
		return storage.ErrDuplicateID
	}
	v.d.categories[c.ID] = c
	return nil
}

func (v *view) UpdateCategory(_ context.Context, c core.Category) error {
	cur, ok := v.d.categories[c.ID]
	if !ok {
		return &core.NotFoundError{Kind: core.KindCategory, ID: c.ID}
	}
	c.CreatedAt = cur.CreatedAt
	v.d.categories[c.ID] = c
	return nil
}

func (v *view) DeleteCategory(_ context.Context, id string) error {
	delete(v.d.categories, id)
	return nil
}

func (v *view) ListExpenses(_ context.Context, q core.ExpenseQuery) ([]core.Expense, error) {
	var out []core.Expense
	for _, e := range v.d.expenses {
		if !q.Month.IsZero() && e.Month != q.Month {
			continue
		}
		if q.CategoryID != "" && e.CategoryID != q.CategoryID {
			continue
		}
		out = append(out, e)
	}
	sort.Slice(out, func(i, j int) bool {
		a, b := out[i], out[j]
		if !a.Date.Equal(b.Date.Time) {
			return a.Date.After(b.Date.Time)
		}
		if !a.CreatedAt.Equal(b.CreatedAt) {
			return a.CreatedAt.After(b.CreatedAt)
		}
		return a.ID > b.ID
	})
	return out, nil
}

func (v *view) GetExpense(_ context.Context, id string) (core.Expense, error) {
	e, ok := v.d.expenses[id]
	if !ok {
		return core.Expense{}, &core.NotFoundError{Kind: core.KindExpense, ID: id}
	}
	return e, nil
}

func (v *view) InsertExpense(_ context.Context, e core.Expense) error {
	if _, ok := v.d.expenses[e.ID]; ok {
		return storage.ErrDuplicateID
	}
	v.d.expenses[e.ID] = e
	return nil
}

func (v *view) UpdateExpense(_ context.Context, e core.Expense) error {
	cur, ok := v.d.expenses[e.ID]
	if !ok {
		return &core.NotFoundError{Kind: core.KindExpense, ID: e.ID}
	}
	e.CreatedAt = cur.CreatedAt
	e.Month = e.Date.YearMonth()
	v.d.expenses[e.ID] = e
	return nil
}

func (v *view) DeleteExpense(_ context.Context, id string) error {
	delete(v.d.expenses, id)
	return nil
}

func (v *view) CountExpenses(_ context.Context, f core.ExpenseFilter) (int, error) {
	n := 0
	for _, e := range v.d.expenses {
		if !f.Month.IsZero() && e.Month != f.Month {
			continue
		}
		if f.CategoryID != "" && e.CategoryID != f.CategoryID {
			continue
		}
		if f.RecurringID != "" && e.RecurringID != f.RecurringID {
			continue
		}
		n++
	}
	return n, nil
}

func (v *view) recurringSorted(keep func(core.RecurringExpense) bool) []core.RecurringExpense {
	var out []core.RecurringExpense
	for _, r := range v.d.recurring {
		if keep(r) {
			out = append(out, r)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.Before(out[j].CreatedAt)
		}
		return out[i].ID < out[j].ID
	})
	return out
}

func (v *view) ListRecurringExpenses(context.Context) ([]core.RecurringExpense, error) {
	return v.recurringSorted(func(core.RecurringExpense) bool { return true }), nil
}

func (v *view) ActiveRecurringExpenses(context.Context) ([]core.RecurringExpense, error) {
	return v.recurringSorted(func(r core.RecurringExpense) bool { return r.Active }), nil
}

func (v *view) GetRecurringExpense(_ context.Context, id string) (core.RecurringExpense, error) {
	r, ok := v.d.recurring[id]
	if !ok {
		return core.RecurringExpense{}, &core.NotFoundError{Kind: core.KindRecurring, ID: id}
	}
	return r, nil
}

func (v *view) InsertRecurringExpense(_ context.Context, r core.RecurringExpense) error {
	if _, ok := v.d.recurring[r.ID]; ok {
		return storage.ErrDuplicateID
	}
	v.d.recurring[r.ID] = r
	return nil
}

func (v *view) UpdateRecurringExpense(_ context.Context, r core.RecurringExpense) error {
	cur, ok := v.d.recurring[r.ID]
	if !ok {
		return &core.NotFoundError{Kind: core.KindRecurring, ID: r.ID}
	}
	r.CreatedAt = cur.CreatedAt
	v.d.recurring[r.ID] = r
	return nil
}

func (v *view) DeleteRecurringExpense(_ context.Context, id string) error {
	delete(v.d.recurring, id)
	return nil
}

func (v *view) CountRecurringExpenses(_ context.Context, categoryID string) (int, error) {
	n := 0
	for _, r := range v.d.recurring {
		if r.CategoryID == categoryID {
			n++
		}
	}
	return n, nil
}
