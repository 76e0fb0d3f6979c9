package storage

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"finchat/internal/core"
	"finchat/internal/ledger"
)

func newTestRepo(t *testing.T) *SQLiteRepository {
	t.Helper()
	repo, err := NewSQLiteRepository(filepath.Join(t.TempDir(), "data", "test.db"))
	if err != nil {
		t.Fatalf("new repository: %v", err)
	}
	t.Cleanup(func() { repo.Close() })
	return repo
}

func TestProfileRoundTrip(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	p, err := repo.ReadProfile(ctx, "ghost")
	if err != nil || !p.MonthlyBudget.IsZero() {
		t.Fatalf("missing user should be zero profile, got %+v err=%v", p, err)
	}

	err = repo.UpsertProfile(ctx, core.UserProfile{
		UserID:          "u1",
		MonthlyBudget:   decimal.RequireFromString("1000.50"),
		CategoryBudgets: map[string]decimal.Decimal{"food": decimal.NewFromInt(300)},
	})
	if err != nil {
		t.Fatalf("upsert: %v", err)
	}
	// Second upsert replaces category budgets.
	err = repo.UpsertProfile(ctx, core.UserProfile{
		UserID:          "u1",
		MonthlyBudget:   decimal.NewFromInt(1000),
		CategoryBudgets: map[string]decimal.Decimal{"travel": decimal.NewFromInt(200)},
	})
	if err != nil {
		t.Fatalf("second upsert: %v", err)
	}

	p, err = repo.ReadProfile(ctx, "u1")
	if err != nil {
		t.Fatalf("read profile: %v", err)
	}
	if !p.MonthlyBudget.Equal(decimal.NewFromInt(1000)) {
		t.Fatalf("monthly budget: got %s", p.MonthlyBudget)
	}
	if _, ok := p.CategoryBudgets["food"]; ok {
		t.Fatalf("stale category budget survived upsert: %+v", p.CategoryBudgets)
	}
	if !p.CategoryBudget("travel").Equal(decimal.NewFromInt(200)) {
		t.Fatalf("travel budget: got %s", p.CategoryBudget("travel"))
	}
}

func TestListTransactionsWindow(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()
	w := core.MonthWindow(time.Date(2025, time.March, 10, 0, 0, 0, 0, time.UTC), time.UTC)

	records := []core.Transaction{
		{Amount: decimal.NewFromInt(-200), Date: w.Start, Category: "food"},
		{Amount: decimal.RequireFromString("-0.10"), Date: w.End.Add(-time.Nanosecond)},
		{Amount: decimal.NewFromInt(-10), Date: w.End},
		{Amount: decimal.NewFromInt(300), Date: w.Start.Add(-time.Nanosecond)},
	}
	for _, r := range records {
		if _, err := repo.AddTransaction(ctx, "u1", r); err != nil {
			t.Fatalf("add transaction: %v", err)
		}
	}

	got, err := repo.ListTransactions(ctx, "u1", w)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("expected 2 transactions in window, got %d", len(got))
	}
	if got[0].Category != "food" || got[1].Category != "" {
		t.Fatalf("unexpected categories: %+v", got)
	}
	if !got[1].Amount.Equal(decimal.RequireFromString("-0.1")) {
		t.Fatalf("amount lost precision: %s", got[1].Amount)
	}

	all, err := repo.ListTransactions(ctx, "u1", core.Window{})
	if err != nil || len(all) != 4 {
		t.Fatalf("expected 4 transactions overall, got %d (err=%v)", len(all), err)
	}
}

func TestSeed(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()
	f := &ledger.Fixture{Users: map[string]ledger.FixtureUser{
		"u1": {
			MonthlyBudget: decimal.NewFromInt(1000),
			Transactions: []ledger.FixtureTransaction{
				{Amount: decimal.NewFromInt(-5), Date: time.Now()},
				{Amount: decimal.NewFromInt(-7), Date: time.Now()},
			},
		},
	}}
	n, err := repo.Seed(ctx, f)
	if err != nil || n != 2 {
		t.Fatalf("seed: n=%d err=%v", n, err)
	}
	p, _ := repo.ReadProfile(ctx, "u1")
	if !p.MonthlyBudget.Equal(decimal.NewFromInt(1000)) {
		t.Fatalf("seeded budget: got %s", p.MonthlyBudget)
	}
}

func TestRecordChatEventIsIdempotent(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()
	e := ChatEvent{ID: "evt-1", UserID: "u1", Intent: "remaining", Question: "how much left", Answer: "₹740", OccurredAt: time.Now()}

	inserted, err := repo.RecordChatEvent(ctx, e)
	if err != nil || !inserted {
		t.Fatalf("first insert: inserted=%v err=%v", inserted, err)
	}
	inserted, err = repo.RecordChatEvent(ctx, e)
	if err != nil || inserted {
		t.Fatalf("duplicate insert: inserted=%v err=%v", inserted, err)
	}

	events, err := repo.ListChatEvents(ctx, "u1", 10)
	if err != nil || len(events) != 1 || events[0].Answer != "₹740" {
		t.Fatalf("unexpected events: %+v err=%v", events, err)
	}
}
