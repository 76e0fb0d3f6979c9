// Package facts computes the per-request budget figures the chat answers are
// built from. Nothing here is cached: every call reads the ledger again.
package facts

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"

	"finchat/internal/core"
	"finchat/internal/ledger"
)

var (
	// WeekendSafetyFactor is the share of the remaining budget suggested for
	// the weekend.
	WeekendSafetyFactor = decimal.RequireFromString("0.5")

	// WasteThreshold is the largest expense counted as possible waste.
	WasteThreshold = decimal.NewFromInt(50)

	hundred = decimal.NewFromInt(100)
)

type (
	RemainingResult struct {
		MonthlyBudget decimal.Decimal
		Spent         decimal.Decimal
		Remaining     decimal.Decimal
	}

	// WeekendResult carries the suggested allowance. Saturday and Sunday are
	// the upcoming weekend days and do not influence WeekendBudget.
	WeekendResult struct {
		WeekendBudget decimal.Decimal
		SafetyFactor  decimal.Decimal
		Saturday      time.Time
		Sunday        time.Time
	}

	CategoryResult struct {
		Category  string
		CatBudget decimal.Decimal
		Spent     decimal.Decimal
		Remaining decimal.Decimal
	}

	WasteResult struct {
		TotalSpent    decimal.Decimal
		PossibleWaste decimal.Decimal
		Pct           int64
		Threshold     decimal.Decimal
	}

	// Snapshot is the fact sheet handed to the language model.
	Snapshot struct {
		Remaining RemainingResult
		Waste     WasteResult
	}
)

// Engine aggregates ledger data for one user at a time.
type Engine struct {
	store ledger.Store
	now   func() time.Time
	loc   *time.Location
}

type Option func(*Engine)

// WithClock overrides the time source used to pick the monthly window.
func WithClock(now func() time.Time) Option {
	return func(e *Engine) { e.now = now }
}

// WithLocation sets the time zone month boundaries are computed in.
func WithLocation(loc *time.Location) Option {
	return func(e *Engine) { e.loc = loc }
}

func NewEngine(store ledger.Store, opts ...Option) *Engine {
	e := &Engine{store: store, now: time.Now, loc: time.Local}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// RemainingBudget reports the monthly budget, the amount spent in the
// current month and what is left, floored at zero.
func (e *Engine) RemainingBudget(ctx context.Context, userID string) (RemainingResult, error) {
	profile, err := e.store.ReadProfile(ctx, userID)
	if err != nil {
		return RemainingResult{}, storeErr("read profile", err)
	}

	txs, err := e.store.ListTransactions(ctx, userID, e.month())
	if err != nil {
		return RemainingResult{}, storeErr("list transactions", err)
	}

	spent := sumSpent(txs, "")
	return RemainingResult{
		MonthlyBudget: profile.MonthlyBudget,
		Spent:         spent,
		Remaining:     core.NonNegative(profile.MonthlyBudget.Sub(spent)),
	}, nil
}

// WeekendAllowance suggests a weekend spend of remaining times the safety
// factor, rounded to whole units.
func (e *Engine) WeekendAllowance(remaining decimal.Decimal) WeekendResult {
	today := e.now().In(e.loc)
	daysToSaturday := (int(time.Saturday) - int(today.Weekday()) + 7) % 7
	saturday := time.Date(today.Year(), today.Month(), today.Day()+daysToSaturday, 0, 0, 0, 0, e.loc)

	return WeekendResult{
		WeekendBudget: core.RoundHalfUp(remaining.Mul(WeekendSafetyFactor)),
		SafetyFactor:  WeekendSafetyFactor,
		Saturday:      saturday,
		Sunday:        saturday.AddDate(0, 0, 1),
	}
}

// CategoryRemaining reports budget and spend for one category in the
// current month. Category names match exactly.
func (e *Engine) CategoryRemaining(ctx context.Context, userID, category string) (CategoryResult, error) {
	profile, err := e.store.ReadProfile(ctx, userID)
	if err != nil {
		return CategoryResult{}, storeErr("read profile", err)
	}

	txs, err := e.store.ListTransactions(ctx, userID, e.month())
	if err != nil {
		return CategoryResult{}, storeErr("list transactions", err)
	}

	budget := profile.CategoryBudget(category)
	spent := sumSpent(txs, category)
	return CategoryResult{
		Category:  category,
		CatBudget: budget,
		Spent:     spent,
		Remaining: core.NonNegative(budget.Sub(spent)),
	}, nil
}

// WastePercentage estimates the share of all-time spending made of small
// purchases (at most WasteThreshold each).
func (e *Engine) WastePercentage(ctx context.Context, userID string) (WasteResult, error) {
	txs, err := e.store.ListTransactions(ctx, userID, core.Window{})
	if err != nil {
		return WasteResult{}, storeErr("list transactions", err)
	}

	res := WasteResult{Threshold: WasteThreshold}
	for _, tx := range txs {
		if !tx.IsExpense() {
			continue
		}
		spent := tx.Spent()
		res.TotalSpent = res.TotalSpent.Add(spent)
		if spent.LessThanOrEqual(WasteThreshold) {
			res.PossibleWaste = res.PossibleWaste.Add(spent)
		}
	}
	if res.TotalSpent.IsPositive() {
		res.Pct = core.RoundHalfUp(res.PossibleWaste.Div(res.TotalSpent).Mul(hundred)).IntPart()
	}
	return res, nil
}

// Snapshot gathers the remaining budget and waste estimate concurrently.
// The first failure cancels the other query.
func (e *Engine) Snapshot(ctx context.Context, userID string) (Snapshot, error) {
	var snap Snapshot
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		r, err := e.RemainingBudget(gctx, userID)
		if err != nil {
			return err
		}
		snap.Remaining = r
		return nil
	})
	g.Go(func() error {
		w, err := e.WastePercentage(gctx, userID)
		if err != nil {
			return err
		}
		snap.Waste = w
		return nil
	})

	if err := g.Wait(); err != nil {
		return Snapshot{}, err
	}
	return snap, nil
}

func (e *Engine) month() core.Window {
	return core.MonthWindow(e.now(), e.loc)
}

// sumSpent adds up expenses, restricted to category when it is non-empty.
func sumSpent(txs []core.Transaction, category string) decimal.Decimal {
	total := decimal.Zero
	for _, tx := range txs {
		if category != "" && tx.Category != category {
			continue
		}
		total = total.Add(tx.Spent())
	}
	return total
}

func storeErr(op string, err error) error {
	return fmt.Errorf("%w: %s: %w", core.ErrStoreUnavailable, op, err)
}
