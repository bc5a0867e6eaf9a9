package core

import (
	"strings"
	"time"
)

const (
	minDayOfMonth = 1
	maxDayOfMonth = 31
)

type (
	Category struct {
		ID            string    `json:"id"`
		Name          string    `json:"name"`
		MonthlyBudget Money     `json:"monthlyBudgetCents"`
		CreatedAt     time.Time `json:"createdAt"`
		UpdatedAt     time.Time `json:"updatedAt"`
	}

	// Expense is a single dated spend. Month always equals Date.YearMonth().
	Expense struct {
		ID          string    `json:"id"`
		Amount      Money     `json:"amountCents"`
		CategoryID  string    `json:"categoryId"`
		Date        Date      `json:"date"`
		Month       Month     `json:"month"`
		RecurringID string    `json:"recurringId,omitempty"` // empty for manual expenses
		Note        string    `json:"note,omitempty"`
		CreatedAt   time.Time `json:"createdAt"`
		UpdatedAt   time.Time `json:"updatedAt"`
	}

	// RecurringExpense is a template that materializes one Expense per
	// eligible month.
	RecurringExpense struct {
		ID         string    `json:"id"`
		Name       string    `json:"name"`
		Amount     Money     `json:"amountCents"`
		CategoryID string    `json:"categoryId"`
		DayOfMonth int       `json:"dayOfMonth"` // nominal, clamped per month
		StartMonth Month     `json:"startMonth"`
		EndMonth   *Month    `json:"endMonth,omitempty"` // nil means unbounded
		Active     bool      `json:"active"`
		CreatedAt  time.Time `json:"createdAt"`
		UpdatedAt  time.Time `json:"updatedAt"`
	}

	CategoryInput struct {
		Name          string `json:"name"`
		MonthlyBudget Money  `json:"monthlyBudgetCents"`
	}

	ExpenseInput struct {
		Amount     Money  `json:"amountCents"`
		CategoryID string `json:"categoryId"`
		Date       string `json:"date"` // YYYY-MM-DD, empty means today
		Note       string `json:"note"`
	}

	RecurringInput struct {
		Name       string `json:"name"`
		Amount     Money  `json:"amountCents"`
		CategoryID string `json:"categoryId"`
		DayOfMonth int    `json:"dayOfMonth"`
		StartMonth string `json:"startMonth"`
		EndMonth   string `json:"endMonth"`
		Active     *bool  `json:"active"` // nil means active
	}

	// ExpenseFilter selects expenses to count. Zero fields match anything.
	ExpenseFilter struct {
		Month       Month
		CategoryID  string
		RecurringID string
	}

	// ExpenseQuery selects expenses to list. Zero fields match anything.
	ExpenseQuery struct {
		Month      Month
		CategoryID string
	}
)

// EligibleFor reports whether the template should produce an expense in m:
// it is active and m lies in [StartMonth, EndMonth].
func (r RecurringExpense) EligibleFor(m Month) bool {
	if !r.Active || m.IsZero() {
		return false
	}
	if m.Before(r.StartMonth) {
		return false
	}
	return r.EndMonth == nil || !m.After(*r.EndMonth)
}

// Materialize builds the expense this template generates for m. The day of
// month is clamped to the length of m.
func (r RecurringExpense) Materialize(m Month, id string, now time.Time) Expense {
	return Expense{
		ID:          id,
		Amount:      r.Amount,
		CategoryID:  r.CategoryID,
		Date:        m.Day(r.DayOfMonth),
		Month:       m,
		RecurringID: r.ID,
		Note:        r.Name,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
}

// NewCategory validates in and returns a new category with the given id.
func NewCategory(in CategoryInput, id string, now time.Time) (Category, error) {
	c := Category{
		ID:            id,
		Name:          strings.TrimSpace(in.Name),
		MonthlyBudget: in.MonthlyBudget,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	if err := c.Validate(); err != nil {
		return Category{}, err
	}
	return c, nil
}

// NewExpense validates in and returns a new expense. An empty date means
// today according to now.
func NewExpense(in ExpenseInput, id string, now time.Time) (Expense, error) {
	date := Today(now)
	if s := strings.TrimSpace(in.Date); s != "" {
		d, err := ParseDate(s)
		if err != nil {
			return Expense{}, ErrInvalidDate
		}
		date = d
	}
	e := Expense{
		ID:         id,
		Amount:     in.Amount,
		CategoryID: strings.TrimSpace(in.CategoryID),
		Date:       date,
		Month:      date.YearMonth(),
		Note:       strings.TrimSpace(in.Note),
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	if err := e.Validate(); err != nil {
		return Expense{}, err
	}
	return e, nil
}

// NewRecurringExpense validates in and returns a new template.
func NewRecurringExpense(in RecurringInput, id string, now time.Time) (RecurringExpense, error) {
	start, err := ParseMonth(strings.TrimSpace(in.StartMonth))
	if err != nil {
		return RecurringExpense{}, ErrInvalidStartMonth
	}
	end, err := parseOptionalMonth(in.EndMonth)
	if err != nil {
		return RecurringExpense{}, err
	}
	active := true
	if in.Active != nil {
		active = *in.Active
	}
	r := RecurringExpense{
		ID:         id,
		Name:       strings.TrimSpace(in.Name),
		Amount:     in.Amount,
		CategoryID: strings.TrimSpace(in.CategoryID),
		DayOfMonth: in.DayOfMonth,
		StartMonth: start,
		EndMonth:   end,
		Active:     active,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	if err := r.Validate(); err != nil {
		return RecurringExpense{}, err
	}
	return r, nil
}

func parseOptionalMonth(s string) (*Month, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, nil
	}
	m, err := ParseMonth(s)
	if err != nil {
		return nil, ErrInvalidEndMonth
	}
	return &m, nil
}

func (m Money) Validate() error {
	if m.Cents <= 0 {
		return ErrInvalidAmount
	}
	return nil
}

func (c Category) Validate() error {
	if strings.TrimSpace(c.Name) == "" {
		return ErrNameRequired
	}
	if c.MonthlyBudget.Cents < 0 {
		return ErrInvalidBudget
	}
	return nil
}

func (e Expense) Validate() error {
	if err := e.Amount.Validate(); err != nil {
		return err
	}
	if strings.TrimSpace(e.CategoryID) == "" {
		return ErrCategoryRequired
	}
	if e.Date.IsZero() {
		return ErrInvalidDate
	}
	return nil
}

func (r RecurringExpense) Validate() error {
	if strings.TrimSpace(r.Name) == "" {
		return ErrNameRequired
	}
	if err := r.Amount.Validate(); err != nil {
		return err
	}
	if strings.TrimSpace(r.CategoryID) == "" {
		return ErrCategoryRequired
	}
	if r.DayOfMonth < minDayOfMonth || r.DayOfMonth > maxDayOfMonth {
		return ErrInvalidDay
	}
	if r.StartMonth.IsZero() {
		return ErrInvalidStartMonth
	}
	if r.EndMonth != nil {
		if r.EndMonth.IsZero() {
			return ErrInvalidEndMonth
		}
		if r.EndMonth.Before(r.StartMonth) {
			return ErrEndBeforeStart
		}
	}
	return nil
}
