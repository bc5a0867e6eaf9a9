// Package export writes a month of expenses as CSV.
package export

import (
	"context"
	"fmt"
	"io"
	"slices"

	"github.com/gocarina/gocsv"
	"github.com/shopspring/decimal"

	"github.com/Bobboe/hspriveko/internal/core"
)

// Row is one exported expense. Amount is in kronor with two decimals.
type Row struct {
	Date        string `csv:"date"`
	Month       string `csv:"month"`
	Category    string `csv:"category"`
	Amount      string `csv:"amount"`
	AmountCents int64  `csv:"amount_cents"`
	Note        string `csv:"note"`
	Recurring   bool   `csv:"recurring"`
	ID          string `csv:"id"`
}

type ExpenseLister interface {
	ListByMonth(ctx context.Context, month core.Month, categoryID string) ([]core.Expense, error)
}

type CategoryLister interface {
	List(ctx context.Context) ([]core.Category, error)
}

type Exporter struct {
	expenses   ExpenseLister
	categories CategoryLister
}

func NewExporter(expenses ExpenseLister, categories CategoryLister) *Exporter {
	return &Exporter{expenses: expenses, categories: categories}
}

// WriteMonth writes the month's expenses, oldest first, optionally limited
// to one category. A month without expenses still gets a header row.
func (x *Exporter) WriteMonth(ctx context.Context, w io.Writer, month core.Month, categoryID string) (int, error) {
	expenses, err := x.expenses.ListByMonth(ctx, month, categoryID)
	if err != nil {
		return 0, fmt.Errorf("list expenses: %w", err)
	}
	cats, err := x.categories.List(ctx)
	if err != nil {
		return 0, fmt.Errorf("list categories: %w", err)
	}

	rows := Rows(expenses, cats)
	if err := gocsv.Marshal(rows, w); err != nil {
		return 0, fmt.Errorf("write csv: %w", err)
	}
	return len(rows), nil
}

// Rows converts expenses (newest first, as listed) into export rows in
// chronological order. Unknown category ids are exported as-is.
func Rows(expenses []core.Expense, cats []core.Category) []*Row {
	names := make(map[string]string, len(cats))
	for _, c := range cats {
		names[c.ID] = c.Name
	}

	rows := make([]*Row, 0, len(expenses))
	for _, e := range expenses {
		name, ok := names[e.CategoryID]
		if !ok {
			name = e.CategoryID
		}
		rows = append(rows, &Row{
			Date:        e.Date.String(),
			Month:       e.Month.String(),
			Category:    name,
			Amount:      decimal.New(e.Amount.Cents, -2).StringFixed(2),
			AmountCents: e.Amount.Cents,
			Note:        e.Note,
			Recurring:   e.RecurringID != "",
			ID:          e.ID,
		})
	}
	slices.Reverse(rows)
	return rows
}
