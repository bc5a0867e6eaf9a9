// Package storage defines the persistence ports used by the services.
//
// Implementations live in the sqlite and memory subpackages. Every write
// method touches exactly one record; multi-record work goes through
// Store.RunAtomic.
package storage

import (
	"context"
	"errors"

	"github.com/Bobboe/hspriveko/internal/core"
)

// ErrDuplicateID is returned when inserting a record whose id already exists.
var ErrDuplicateID = errors.New("record with this id already exists")

// Tx is the set of record operations available both on a Store and inside
// a RunAtomic callback.
type Tx interface {
	// ListCategories returns all categories ordered by name.
	ListCategories(ctx context.Context) ([]core.Category, error)
	GetCategory(ctx context.Context, id string) (core.Category, error)
	InsertCategory(ctx context.Context, c core.Category) error
	UpdateCategory(ctx context.Context, c core.Category) error
	DeleteCategory(ctx context.Context, id string) error

	// ListExpenses returns matching expenses, newest date first and newest
	// creation first for same-day ties.
	ListExpenses(ctx context.Context, q core.ExpenseQuery) ([]core.Expense, error)
	GetExpense(ctx context.Context, id string) (core.Expense, error)
	InsertExpense(ctx context.Context, e core.Expense) error
	UpdateExpense(ctx context.Context, e core.Expense) error
	DeleteExpense(ctx context.Context, id string) error
	CountExpenses(ctx context.Context, f core.ExpenseFilter) (int, error)

	// ListRecurringExpenses returns all templates in creation order.
	ListRecurringExpenses(ctx context.Context) ([]core.RecurringExpense, error)
	ActiveRecurringExpenses(ctx context.Context) ([]core.RecurringExpense, error)
	GetRecurringExpense(ctx context.Context, id string) (core.RecurringExpense, error)
	InsertRecurringExpense(ctx context.Context, r core.RecurringExpense) error
	UpdateRecurringExpense(ctx context.Context, r core.RecurringExpense) error
	DeleteRecurringExpense(ctx context.Context, id string) error
	CountRecurringExpenses(ctx context.Context, categoryID string) (int, error)
}

// Store is a Tx that can also run a function atomically.
type Store interface {
	Tx
	// RunAtomic runs fn so that either all of its writes become visible or,
	// when fn returns an error, none do. Calls are serialized.
	RunAtomic(ctx context.Context, fn func(tx Tx) error) error
	Close() error
}
