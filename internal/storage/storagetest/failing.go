package storagetest

import (
	"context"
	"errors"
	"sync"

	"github.com/Bobboe/hspriveko/internal/core"
	"github.com/Bobboe/hspriveko/internal/storage"
)

// ErrInjected is returned by FailingStore when a configured failure fires.
var ErrInjected = errors.New("injected storage failure")

// FailingStore wraps a Store and fails the nth expense insert (1-based),
// counted across direct calls and calls made inside RunAtomic.
type FailingStore struct {
	storage.Store

	mu            sync.Mutex
	inserts       int
	FailInsertAt  int
	FailActiveGet bool
}

func NewFailingStore(s storage.Store) *FailingStore {
	return &FailingStore{Store: s}
}

func (f *FailingStore) nextInsertFails() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.inserts++
	return f.FailInsertAt > 0 && f.inserts == f.FailInsertAt
}

func (f *FailingStore) InsertExpense(ctx context.Context, e core.Expense) error {
	if f.nextInsertFails() {
		return ErrInjected
	}
	return f.Store.InsertExpense(ctx, e)
}

func (f *FailingStore) ActiveRecurringExpenses(ctx context.Context) ([]core.RecurringExpense, error) {
	if f.FailActiveGet {
		return nil, ErrInjected
	}
	return f.Store.ActiveRecurringExpenses(ctx)
}

func (f *FailingStore) RunAtomic(ctx context.Context, fn func(tx storage.Tx) error) error {
	return f.Store.RunAtomic(ctx, func(tx storage.Tx) error {
		return fn(&failingTx{Tx: tx, owner: f})
	})
}

type failingTx struct {
	storage.Tx
	owner *FailingStore
}

func (t *failingTx) InsertExpense(ctx context.Context, e core.Expense) error {
	if t.owner.nextInsertFails() {
		return ErrInjected
	}
	return t.Tx.InsertExpense(ctx, e)
}

func (t *failingTx) ActiveRecurringExpenses(ctx context.Context) ([]core.RecurringExpense, error) {
	if t.owner.FailActiveGet {
		return nil, ErrInjected
	}
	return t.Tx.ActiveRecurringExpenses(ctx)
}
