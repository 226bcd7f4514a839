package core

import "time"

// CategoryAmount is an expense total aggregated by category. Name is empty
// when the category was deleted (weak reference).
type CategoryAmount struct {
	CategoryID  string `json:"categoryId"`
	Name        string `json:"name,omitempty"`
	AmountCents int64  `json:"amountCents"`
}

// MonthOverview is the dashboard summary of one accounting month.
// Projected installment rows are excluded from all of its totals.
type MonthOverview struct {
	Month        MonthKey         `json:"month"`
	IncomeCents  int64            `json:"incomeCents"`
	ExpenseCents int64            `json:"expenseCents"`
	BalanceCents int64            `json:"balanceCents"`
	PendingCents int64            `json:"pendingCents"`
	ByCategory   []CategoryAmount `json:"byCategory,omitempty"`
}

// MonthSummary is the denormalized projection row the event worker keeps
// refreshed per accounting month.
type MonthSummary struct {
	Month        MonthKey  `json:"month"`
	IncomeCents  int64     `json:"incomeCents"`
	ExpenseCents int64     `json:"expenseCents"`
	UpdatedAt    time.Time `json:"updatedAt"`
}
