package core

import (
	"time"

	"github.com/shopspring/decimal"
)

type (
	// UserProfile holds the budgets a user has configured. A user without a
	// stored profile is represented by the zero value with UserID set.
	UserProfile struct {
		UserID          string
		MonthlyBudget   decimal.Decimal
		CategoryBudgets map[string]decimal.Decimal
	}

	// Transaction is a single ledger record. Negative amounts are expenses,
	// positive amounts are income.
	Transaction struct {
		Amount   decimal.Decimal
		Date     time.Time
		Category string // optional
	}

	// Window is the half-open interval [Start, End).
	Window struct {
		Start time.Time
		End   time.Time
	}
)

// CategoryBudget returns the budget for category, or zero when none is set.
func (p UserProfile) CategoryBudget(category string) decimal.Decimal {
	if b, ok := p.CategoryBudgets[category]; ok {
		return b
	}
	return decimal.Zero
}

// IsExpense reports whether the transaction is money going out.
func (t Transaction) IsExpense() bool {
	return t.Amount.IsNegative()
}

// Spent returns the absolute amount of an expense and zero for income.
func (t Transaction) Spent() decimal.Decimal {
	if !t.IsExpense() {
		return decimal.Zero
	}
	return t.Amount.Abs()
}

// MonthWindow returns [first instant of the month containing now, first
// instant of the following month) evaluated in loc. A nil loc means time.Local.
func MonthWindow(now time.Time, loc *time.Location) Window {
	if loc == nil {
		loc = time.Local
	}
	now = now.In(loc)
	start := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, loc)
	return Window{Start: start, End: start.AddDate(0, 1, 0)}
}

// IsZero reports whether the window is unbounded (covers all time).
func (w Window) IsZero() bool {
	return w.Start.IsZero() && w.End.IsZero()
}

// Contains reports whether t falls in the window. The zero Window contains
// every instant.
func (w Window) Contains(t time.Time) bool {
	if w.IsZero() {
		return true
	}
	return !t.Before(w.Start) && t.Before(w.End)
}
