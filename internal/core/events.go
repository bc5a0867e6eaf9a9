package core

import "time"

type ExpenseEventType string

const (
	ExpenseCreated   ExpenseEventType = "created"
	ExpenseUpdated   ExpenseEventType = "updated"
	ExpenseDeleted   ExpenseEventType = "deleted"
	ExpenseGenerated ExpenseEventType = "generated"
)

// ExpenseEvent describes a committed change to one expense.
type ExpenseEvent struct {
	Type        ExpenseEventType `json:"type"`
	ExpenseID   string           `json:"expenseId"`
	CategoryID  string           `json:"categoryId,omitempty"`
	RecurringID string           `json:"recurringId,omitempty"`
	Month       Month            `json:"month"`
	// PreviousMonth is set on updates that moved the expense to another month.
	PreviousMonth *Month    `json:"previousMonth,omitempty"`
	AmountCents   int64     `json:"amountCents"`
	OccurredAt    time.Time `json:"occurredAt"`
}

// NewExpenseEvent builds an event of type t for e.
func NewExpenseEvent(t ExpenseEventType, e Expense, at time.Time) ExpenseEvent {
	return ExpenseEvent{
		Type:        t,
		ExpenseID:   e.ID,
		CategoryID:  e.CategoryID,
		RecurringID: e.RecurringID,
		Month:       e.Month,
		AmountCents: e.Amount.Cents,
		OccurredAt:  at,
	}
}
