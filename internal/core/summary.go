package core

// CategorySummary is one category's spending against its budget for a month.
type CategorySummary struct {
	ID        string  `json:"id"`
	Name      string  `json:"name"`
	Budget    Money   `json:"budgetCents"`
	Spent     Money   `json:"spentCents"`
	Remaining Money   `json:"remainingCents"`
	Ratio     float64 `json:"ratio"` // spent/budget capped to [0,1], 0 without a budget
	Over      bool    `json:"over"`
}

// MonthOverview is a compact summary for a specific year+month.
type MonthOverview struct {
	Month          Month             `json:"month"`
	TotalSpent     Money             `json:"totalSpentCents"`
	TotalBudget    Money             `json:"totalBudgetCents"`
	TotalRemaining Money             `json:"totalRemainingCents"`
	Categories     []CategorySummary `json:"categories"`
	Top            []CategorySummary `json:"top"`
}

// MonthTotal is the amount spent in a single month.
type MonthTotal struct {
	Month Month `json:"month"`
	Total Money `json:"totalCents"`
}

// Trend is a run of consecutive month totals, oldest first.
type Trend struct {
	Points []MonthTotal `json:"points"`
	Max    Money        `json:"maxCents"`
}

// NewCategorySummary derives remaining, ratio and over from budget and spent.
func NewCategorySummary(c Category, spent Money) CategorySummary {
	s := CategorySummary{
		ID:        c.ID,
		Name:      c.Name,
		Budget:    c.MonthlyBudget,
		Spent:     spent,
		Remaining: Money{Cents: c.MonthlyBudget.Cents - spent.Cents},
	}
	if c.MonthlyBudget.Cents > 0 {
		s.Ratio = float64(spent.Cents) / float64(c.MonthlyBudget.Cents)
		if s.Ratio > 1 {
			s.Ratio = 1
		}
		s.Over = spent.Cents > c.MonthlyBudget.Cents
	}
	return s
}
