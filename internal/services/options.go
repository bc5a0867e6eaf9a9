package services

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/Bobboe/hspriveko/internal/core"
)

// EventPublisher receives expense changes after they are committed.
type EventPublisher interface {
	PublishExpenseEvent(ctx context.Context, ev core.ExpenseEvent) error
}

// Publishers fans an event out to every publisher in order.
type Publishers []EventPublisher

func (ps Publishers) PublishExpenseEvent(ctx context.Context, ev core.ExpenseEvent) error {
	var errs []error
	for _, p := range ps {
		if p == nil {
			continue
		}
		if err := p.PublishExpenseEvent(ctx, ev); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// base carries the collaborators every service shares.
type base struct {
	now       func() time.Time
	newID     func() string
	publisher EventPublisher
}

type Option func(*base)

// WithClock sets the time source used for timestamps and default dates.
func WithClock(now func() time.Time) Option {
	return func(b *base) { b.now = now }
}

// WithIDGenerator sets the function producing new record ids.
func WithIDGenerator(newID func() string) Option {
	return func(b *base) { b.newID = newID }
}

// WithPublisher sets where committed expense changes are announced.
func WithPublisher(p EventPublisher) Option {
	return func(b *base) { b.publisher = p }
}

func newBase(opts []Option) base {
	b := base{now: time.Now, newID: uuid.NewString}
	for _, opt := range opts {
		opt(&b)
	}
	return b
}

// publish announces a committed change. The write already succeeded, so a
// failure is logged and otherwise ignored.
func (b *base) publish(ctx context.Context, ev core.ExpenseEvent) {
	if b.publisher == nil {
		return
	}
	if err := b.publisher.PublishExpenseEvent(ctx, ev); err != nil {
		slog.ErrorContext(ctx, "Failed to publish expense event",
			"type", ev.Type,
			"expense_id", ev.ExpenseID,
			"error", err)
	}
}
