package core

import (
	"strings"
	"time"
)

// Patches hold proposed changes; nil fields are left untouched. Apply merges
// a patch onto the current record and re-validates the merged result, so a
// partial update can never leave an invalid record behind.
type (
	CategoryPatch struct {
		Name          *string `json:"name,omitempty"`
		MonthlyBudget *Money  `json:"monthlyBudgetCents,omitempty"`
	}

	ExpensePatch struct {
		Amount     *Money  `json:"amountCents,omitempty"`
		CategoryID *string `json:"categoryId,omitempty"`
		Date       *string `json:"date,omitempty"`
		Note       *string `json:"note,omitempty"`
	}

	RecurringPatch struct {
		Name       *string `json:"name,omitempty"`
		Amount     *Money  `json:"amountCents,omitempty"`
		CategoryID *string `json:"categoryId,omitempty"`
		DayOfMonth *int    `json:"dayOfMonth,omitempty"`
		StartMonth *string `json:"startMonth,omitempty"`
		EndMonth   *string `json:"endMonth,omitempty"` // "" clears the end month
		Active     *bool   `json:"active,omitempty"`
	}
)

func (p CategoryPatch) Apply(cur Category, now time.Time) (Category, error) {
	next := cur
	if p.Name != nil {
		next.Name = strings.TrimSpace(*p.Name)
	}
	if p.MonthlyBudget != nil {
		next.MonthlyBudget = *p.MonthlyBudget
	}
	if err := next.Validate(); err != nil {
		return cur, err
	}
	next.UpdatedAt = now
	return next, nil
}

// Apply recomputes Month whenever Date is part of the patch.
func (p ExpensePatch) Apply(cur Expense, now time.Time) (Expense, error) {
	next := cur
	if p.Amount != nil {
		next.Amount = *p.Amount
	}
	if p.CategoryID != nil {
		next.CategoryID = strings.TrimSpace(*p.CategoryID)
	}
	if p.Date != nil {
		d, err := ParseDate(strings.TrimSpace(*p.Date))
		if err != nil {
			return cur, ErrInvalidDate
		}
		next.Date = d
	}
	if p.Note != nil {
		next.Note = strings.TrimSpace(*p.Note)
	}
	next.Month = next.Date.YearMonth()
	if err := next.Validate(); err != nil {
		return cur, err
	}
	next.UpdatedAt = now
	return next, nil
}

// TouchesCategory reports whether the patch may move the expense to another category.
func (p ExpensePatch) TouchesCategory() bool {
	return p.CategoryID != nil
}

func (p RecurringPatch) Apply(cur RecurringExpense, now time.Time) (RecurringExpense, error) {
	next := cur
	if p.Name != nil {
		next.Name = strings.TrimSpace(*p.Name)
	}
	if p.Amount != nil {
		next.Amount = *p.Amount
	}
	if p.CategoryID != nil {
		next.CategoryID = strings.TrimSpace(*p.CategoryID)
	}
	if p.DayOfMonth != nil {
		next.DayOfMonth = *p.DayOfMonth
	}
	if p.StartMonth != nil {
		m, err := ParseMonth(strings.TrimSpace(*p.StartMonth))
		if err != nil {
			return cur, ErrInvalidStartMonth
		}
		next.StartMonth = m
	}
	if p.EndMonth != nil {
		end, err := parseOptionalMonth(*p.EndMonth)
		if err != nil {
			return cur, err
		}
		next.EndMonth = end
	}
	if p.Active != nil {
		next.Active = *p.Active
	}
	if err := next.Validate(); err != nil {
		return cur, err
	}
	next.UpdatedAt = now
	return next, nil
}

func (p RecurringPatch) TouchesCategory() bool {
	return p.CategoryID != nil
}
